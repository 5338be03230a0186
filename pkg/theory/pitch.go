package theory

import (
	"fmt"
	"strings"
)

var pitchClasses = map[string]int{
	"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11,
}

// ParseKey converts a key name ("C", "F#", "Bb") to a pitch class 0..11
func ParseKey(name string) (int, error) {
	key := strings.TrimSpace(name)
	if key == "" {
		return 0, fmt.Errorf("empty key")
	}

	pc, ok := pitchClasses[strings.ToUpper(key[:1])]
	if !ok {
		return 0, fmt.Errorf("invalid key %q", name)
	}

	for _, accidental := range key[1:] {
		switch accidental {
		case '#':
			pc++
		case 'b':
			pc--
		default:
			return 0, fmt.Errorf("invalid accidental in key %q", name)
		}
	}

	return (pc + 12) % 12, nil
}

// MIDINote returns the MIDI note number for a scale degree in the given key
// and octave, using the C4 = 60 convention. The result is clamped to 0..127.
func MIDINote(scale Scale, keyRoot, octave, degree int) uint8 {
	n := 12*(octave+1) + keyRoot + scale.Semitones(degree)
	if n < 0 {
		n = 0
	}
	if n > 127 {
		n = 127
	}
	return uint8(n)
}
