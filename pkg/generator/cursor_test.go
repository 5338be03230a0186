package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func walk(c *Cursor, steps int) []int {
	indices := []int{c.Index()}
	for i := 0; i < steps; i++ {
		c.Advance()
		indices = append(indices, c.Index())
	}
	return indices
}

func TestCursorAdvance(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		direction Direction
		steps     int
		want      []int
	}{
		{"forward wraps", 3, DirectionForward, 5, []int{0, 1, 2, 0, 1, 2}},
		{"empty direction is forward", 3, "", 3, []int{0, 1, 2, 0}},
		{"backward wraps", 4, DirectionBackward, 5, []int{0, 3, 2, 1, 0, 3}},
		{"pingpong visits extremes once", 3, DirectionPingPong, 8, []int{0, 1, 2, 1, 0, 1, 2, 1, 0}},
		{"pingpong length 4", 4, DirectionPingPong, 7, []int{0, 1, 2, 3, 2, 1, 0, 1}},
		{"pingpong length 2", 2, DirectionPingPong, 4, []int{0, 1, 0, 1, 0}},
		{"pingpong length 1", 1, DirectionPingPong, 3, []int{0, 0, 0, 0}},
		{"backward length 1", 1, DirectionBackward, 2, []int{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor(tt.length, tt.direction)
			assert.Equal(t, tt.want, walk(c, tt.steps))
		})
	}
}

func TestCursorPingPongHeading(t *testing.T) {
	c := NewCursor(3, DirectionPingPong)
	assert.True(t, c.Forward())

	c.Advance() // 1
	c.Advance() // 2
	assert.True(t, c.Forward())

	c.Advance() // bounced to 1
	assert.False(t, c.Forward())
	assert.Equal(t, 1, c.Index())
}

func TestCursorBeginChord(t *testing.T) {
	c := NewCursor(4, DirectionPingPong)
	for i := 0; i < 4; i++ {
		c.Advance()
	}
	assert.Equal(t, 2, c.Index())
	assert.False(t, c.Forward())

	c.BeginChord(BehaviorContinuous)
	assert.Equal(t, 2, c.Index(), "continuous keeps its phase")
	assert.False(t, c.Forward())

	c.BeginChord(BehaviorRepeatPerChord)
	assert.Equal(t, 0, c.Index())
	assert.True(t, c.Forward())
}
