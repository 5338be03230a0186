// Package converter renders note sequences to Standard MIDI Files and
// extracts note and rhythm templates from existing MIDI performances
package converter

import "github.com/james-see/seqgen/pkg/generator"

// NoteEvent is a single sounding note read from a MIDI file
type NoteEvent struct {
	Pitch         uint8   `json:"pitch"`    // MIDI note number (0-127)
	Velocity      uint8   `json:"velocity"` // note-on velocity
	StartBeat     float64 `json:"startBeat"`
	DurationBeats float64 `json:"durationBeats"`
}

// EndBeat returns the beat at which the note is released
func (n NoteEvent) EndBeat() float64 {
	return n.StartBeat + n.DurationBeats
}

// Recording is the note content of a parsed MIDI file
type Recording struct {
	Tempo           float64     `json:"tempo"`
	TicksPerQuarter uint16      `json:"ticksPerQuarter"`
	Notes           []NoteEvent `json:"notes"`
}

// Extracted holds the templates recovered from a recording
type Extracted struct {
	NoteTemplate   generator.NoteTemplate   `json:"noteTemplate" yaml:"noteTemplate"`
	RhythmTemplate generator.RhythmTemplate `json:"rhythmTemplate" yaml:"rhythmTemplate"`
	Tempo          float64                  `json:"tempo" yaml:"tempo"`
}
