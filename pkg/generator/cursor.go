package generator

// Cursor is a bounded cyclic index over a fixed-length pattern.
// The zero position is (index 0, moving forward).
type Cursor struct {
	index     int
	forward   bool
	length    int
	direction Direction
}

// NewCursor creates a cursor over length elements. An empty direction
// means forward.
func NewCursor(length int, direction Direction) *Cursor {
	if direction == "" {
		direction = DirectionForward
	}
	return &Cursor{
		forward:   true,
		length:    length,
		direction: direction,
	}
}

// Index returns the current position
func (c *Cursor) Index() int {
	return c.index
}

// Forward reports the pingpong heading
func (c *Cursor) Forward() bool {
	return c.forward
}

// Reset returns the cursor to its initial position
func (c *Cursor) Reset() {
	c.index = 0
	c.forward = true
}

// BeginChord applies the reset policy at a chord boundary
func (c *Cursor) BeginChord(behavior Behavior) {
	if behavior == BehaviorRepeatPerChord {
		c.Reset()
	}
}

// Advance moves one step in the cursor's direction
func (c *Cursor) Advance() {
	if c.length <= 1 {
		c.index = 0
		return
	}

	switch c.direction {
	case DirectionBackward:
		c.index = (c.index - 1 + c.length) % c.length
	case DirectionPingPong:
		step := 1
		if !c.forward {
			step = -1
		}
		next := c.index + step
		if next < 0 || next >= c.length {
			// Bounce off the boundary so the extreme is visited once
			c.forward = !c.forward
			next = c.index - step
		}
		c.index = next
	default:
		c.index = (c.index + 1) % c.length
	}
}
