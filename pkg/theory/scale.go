// Package theory provides the diatonic building blocks used by the generator:
// scales, scale-degree arithmetic, chord symbols and MIDI pitch mapping.
package theory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DegreesPerScale is the number of degrees in a diatonic scale
const DegreesPerScale = 7

// Scale is a seven-note scale: degrees 1..7 and their semitone offsets from the root
type Scale struct {
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Degrees   []int  `json:"degrees" yaml:"degrees"`
	Intervals []int  `json:"intervals" yaml:"intervals"`
}

// Wrap folds n into the 1-indexed degree range, mapping 0 to 7.
func Wrap(n int) int {
	m := n % DegreesPerScale
	if m <= 0 {
		m += DegreesPerScale
	}
	return m
}

// Scale definitions - intervals from root (semitones), seven-note modes only
var scaleIntervals = map[string][]int{
	"major":          {0, 2, 4, 5, 7, 9, 11},
	"minor":          {0, 2, 3, 5, 7, 8, 10},
	"dorian":         {0, 2, 3, 5, 7, 9, 10},
	"phrygian":       {0, 1, 3, 5, 7, 8, 10},
	"lydian":         {0, 2, 4, 6, 7, 9, 11},
	"mixolydian":     {0, 2, 4, 5, 7, 9, 10},
	"locrian":        {0, 1, 3, 5, 6, 8, 10},
	"harmonic-minor": {0, 2, 3, 5, 7, 8, 11},
	"melodic-minor":  {0, 2, 3, 5, 7, 9, 11},
}

// Major returns the major scale
func Major() Scale {
	s, _ := ScaleByName("major")
	return s
}

// ScaleByName returns a named scale preset
func ScaleByName(name string) (Scale, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, " ", "-")
	intervals, ok := scaleIntervals[key]
	if !ok {
		return Scale{}, false
	}
	return Scale{
		Name:      key,
		Degrees:   []int{1, 2, 3, 4, 5, 6, 7},
		Intervals: append([]int(nil), intervals...),
	}, true
}

// ScaleNames returns the preset names in alphabetical order
func ScaleNames() []string {
	names := make([]string, 0, len(scaleIntervals))
	for name := range scaleIntervals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check verifies the scale shape: seven degrees 1..7 in order and
// strictly ascending intervals starting at 0 within one octave.
func (s Scale) Check() error {
	if len(s.Degrees) != DegreesPerScale {
		return fmt.Errorf("expected %d degrees, got %d", DegreesPerScale, len(s.Degrees))
	}
	if len(s.Intervals) != DegreesPerScale {
		return fmt.Errorf("expected %d intervals, got %d", DegreesPerScale, len(s.Intervals))
	}
	for i, d := range s.Degrees {
		if d != i+1 {
			return fmt.Errorf("degree at position %d is %d, want %d", i, d, i+1)
		}
	}
	if s.Intervals[0] != 0 {
		return errors.New("first interval must be 0")
	}
	for i := 1; i < len(s.Intervals); i++ {
		if s.Intervals[i] <= s.Intervals[i-1] || s.Intervals[i] > 11 {
			return fmt.Errorf("interval at position %d (%d) must ascend within one octave", i, s.Intervals[i])
		}
	}
	return nil
}

// Semitones returns the offset of a degree from the scale root.
// Degrees outside 1..7 are wrapped.
func (s Scale) Semitones(degree int) int {
	return s.Intervals[Wrap(degree)-1]
}

// NearestDegree maps a pitch class (0..11, relative to the scale root) to the
// closest scale degree. Ties resolve to the lower degree.
func (s Scale) NearestDegree(pitchClass int) int {
	pc := ((pitchClass % 12) + 12) % 12
	best, bestDist := 1, 12
	for i, iv := range s.Intervals {
		dist := pc - iv
		if dist < 0 {
			dist = -dist
		}
		if wrapped := 12 - dist; wrapped < dist {
			dist = wrapped
		}
		if dist < bestDist {
			best, bestDist = i+1, dist
		}
	}
	return best
}
