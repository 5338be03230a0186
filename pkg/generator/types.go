// Package generator turns a chord progression plus melodic and rhythmic
// templates into a concrete sequence of scale degrees and durations
package generator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Direction is the traversal order of a note template
type Direction string

const (
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
	DirectionPingPong Direction = "pingpong"
)

// Behavior controls whether a template's phase survives chord boundaries
type Behavior string

const (
	BehaviorContinuous     Behavior = "continuous"
	BehaviorRepeatPerChord Behavior = "repeat-per-chord"
)

// Chord is one entry of a progression
type Chord struct {
	Symbol   string  `json:"symbol" yaml:"symbol"`
	Duration float64 `json:"duration" yaml:"duration"` // beats
}

// ChordProgression is an ordered list of chords
type ChordProgression struct {
	ID     string  `json:"id,omitempty" yaml:"id,omitempty"`
	Name   string  `json:"name,omitempty" yaml:"name,omitempty"`
	Chords []Chord `json:"chords" yaml:"chords"`
}

// TotalDuration returns the summed chord durations in beats
func (p ChordProgression) TotalDuration() float64 {
	var total float64
	for _, c := range p.Chords {
		total += c.Duration
	}
	return total
}

// NoteTemplate describes a melodic contour
type NoteTemplate struct {
	ID            string    `json:"id,omitempty" yaml:"id,omitempty"`
	Name          string    `json:"name,omitempty" yaml:"name,omitempty"`
	ScaleDegrees  []int     `json:"scaleDegrees" yaml:"scaleDegrees"`
	Weights       []float64 `json:"weights,omitempty" yaml:"weights,omitempty"` // not used by Generate
	Direction     Direction `json:"direction,omitempty" yaml:"direction,omitempty"`
	Behavior      Behavior  `json:"behavior,omitempty" yaml:"behavior,omitempty"`
	UseChordTones bool      `json:"useChordTones" yaml:"useChordTones"`
}

// RhythmTemplate describes a rhythmic pattern
type RhythmTemplate struct {
	ID        string    `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	Durations []float64 `json:"durations" yaml:"durations"`
	Rests     []bool    `json:"rests,omitempty" yaml:"rests,omitempty"`
	Behavior  Behavior  `json:"behavior,omitempty" yaml:"behavior,omitempty"`
}

// IsRest reports whether slot i of the pattern is silent
func (r RhythmTemplate) IsRest(i int) bool {
	return i < len(r.Rests) && r.Rests[i]
}

// Degree is an emitted scale degree 1..7, or Rest
type Degree int

// Rest marks a silent slot
const Rest Degree = 0

// IsRest reports whether d is a rest
func (d Degree) IsRest() bool {
	return d == Rest
}

func (d Degree) String() string {
	if d.IsRest() {
		return "-"
	}
	return fmt.Sprintf("%d", int(d))
}

// MarshalJSON encodes rests as null
func (d Degree) MarshalJSON() ([]byte, error) {
	if d.IsRest() {
		return []byte("null"), nil
	}
	return json.Marshal(int(d))
}

// UnmarshalJSON decodes null as a rest. An explicit 0 is rejected so a
// rest is never written two ways.
func (d *Degree) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Rest
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n == 0 {
		return errors.New("scale degree 0 is not valid, use null for a rest")
	}
	*d = Degree(n)
	return nil
}

// NoteSequence is the generated output: parallel degrees and durations,
// plus the progression they were generated against
type NoteSequence struct {
	Degrees          []Degree         `json:"scaleDegrees" yaml:"scaleDegrees"` // rests are 0 in YAML
	Durations        []float64        `json:"durations" yaml:"durations"`
	ChordProgression ChordProgression `json:"chordProgression" yaml:"chordProgression"`
	Warnings         []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func newSequence(p ChordProgression, warnings []string) *NoteSequence {
	return &NoteSequence{
		Degrees:          make([]Degree, 0),
		Durations:        make([]float64, 0),
		ChordProgression: p,
		Warnings:         warnings,
	}
}

func (s *NoteSequence) push(d Degree, duration float64) {
	s.Degrees = append(s.Degrees, d)
	s.Durations = append(s.Durations, duration)
}

// Len returns the number of slots
func (s *NoteSequence) Len() int {
	return len(s.Degrees)
}

// TotalDuration returns the summed slot durations in beats
func (s *NoteSequence) TotalDuration() float64 {
	var total float64
	for _, d := range s.Durations {
		total += d
	}
	return total
}

// Event is one slot of a sequence positioned in time
type Event struct {
	Degree     Degree
	Start      float64 // beats from the start of the sequence
	Duration   float64
	ChordIndex int
}

// Events positions every slot in time and aligns it with the chord it falls in
func (s *NoteSequence) Events() []Event {
	events := make([]Event, 0, len(s.Degrees))
	chords := s.ChordProgression.Chords

	var start, chordEnd float64
	chordIdx := -1
	for i, d := range s.Degrees {
		for chordIdx+1 < len(chords) && start >= chordEnd-beatEpsilon {
			chordIdx++
			chordEnd += chords[chordIdx].Duration
		}
		events = append(events, Event{
			Degree:     d,
			Start:      start,
			Duration:   s.Durations[i],
			ChordIndex: chordIdx,
		})
		start += s.Durations[i]
	}
	return events
}
