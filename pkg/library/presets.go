// Package library holds the built-in template presets and loads
// user-defined templates from YAML or JSON files
package library

import "github.com/james-see/seqgen/pkg/generator"

// Default preset IDs used when a caller supplies no template
const (
	DefaultNoteTemplate   = "basic-scale"
	DefaultRhythmTemplate = "quarter-notes"
	DefaultProgression    = "ii-V-I"
)

func noteTemplates() []generator.NoteTemplate {
	return []generator.NoteTemplate{
		{
			ID:           "basic-scale",
			Name:         "Basic Scale",
			ScaleDegrees: []int{1, 2, 3, 4, 5},
			Weights:      []float64{1, 1, 1, 1, 1},
			Direction:    generator.DirectionForward,
			Behavior:     generator.BehaviorContinuous,
		},
		{
			ID:            "arpeggio-up",
			Name:          "Arpeggio Up",
			ScaleDegrees:  []int{1, 3, 5, 7},
			Weights:       []float64{1, 1, 1, 1},
			Direction:     generator.DirectionForward,
			Behavior:      generator.BehaviorRepeatPerChord,
			UseChordTones: true,
		},
		{
			ID:            "arpeggio-down",
			Name:          "Arpeggio Down",
			ScaleDegrees:  []int{5, 3, 1, 3},
			Weights:       []float64{1, 1, 1, 1},
			Direction:     generator.DirectionBackward,
			Behavior:      generator.BehaviorRepeatPerChord,
			UseChordTones: true,
		},
		{
			ID:           "pendulum",
			Name:         "Pendulum",
			ScaleDegrees: []int{1, 2, 3, 5, 6},
			Weights:      []float64{1, 1, 1, 1, 1},
			Direction:    generator.DirectionPingPong,
			Behavior:     generator.BehaviorContinuous,
		},
		{
			ID:           "bebop-approach",
			Name:         "Bebop Approach",
			ScaleDegrees: []int{7, 1, 2, 3, 5, 3},
			Weights:      []float64{0.5, 1, 0.5, 1, 1, 1},
			Direction:    generator.DirectionForward,
			Behavior:     generator.BehaviorRepeatPerChord,
		},
	}
}

func rhythmTemplates() []generator.RhythmTemplate {
	return []generator.RhythmTemplate{
		{
			ID:        "quarter-notes",
			Name:      "Quarter Notes",
			Durations: []float64{1, 1, 1, 1},
			Behavior:  generator.BehaviorContinuous,
		},
		{
			ID:        "half-notes",
			Name:      "Half Notes",
			Durations: []float64{2, 2},
			Behavior:  generator.BehaviorContinuous,
		},
		{
			ID:        "eighth-notes",
			Name:      "Eighth Notes",
			Durations: []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
			Behavior:  generator.BehaviorContinuous,
		},
		{
			ID:        "swing",
			Name:      "Swing",
			Durations: []float64{1.5, 0.5, 1, 1},
			Behavior:  generator.BehaviorRepeatPerChord,
		},
		{
			ID:        "syncopated",
			Name:      "Syncopated",
			Durations: []float64{0.5, 1, 0.5, 1, 1},
			Rests:     []bool{false, false, true, false, false},
			Behavior:  generator.BehaviorRepeatPerChord,
		},
	}
}

func progressions() []generator.ChordProgression {
	return []generator.ChordProgression{
		{
			ID:   "ii-V-I",
			Name: "ii-V-I",
			Chords: []generator.Chord{
				{Symbol: "ii7", Duration: 4},
				{Symbol: "V7", Duration: 4},
				{Symbol: "Imaj7", Duration: 8},
			},
		},
		{
			ID:   "I-IV-V",
			Name: "I-IV-V",
			Chords: []generator.Chord{
				{Symbol: "I", Duration: 4},
				{Symbol: "IV", Duration: 2},
				{Symbol: "V", Duration: 2},
			},
		},
		{
			ID:   "pop",
			Name: "I-vi-IV-V",
			Chords: []generator.Chord{
				{Symbol: "I", Duration: 4},
				{Symbol: "vi", Duration: 4},
				{Symbol: "IV", Duration: 4},
				{Symbol: "V", Duration: 4},
			},
		},
		{
			ID:   "turnaround",
			Name: "Jazz Turnaround",
			Chords: []generator.Chord{
				{Symbol: "Imaj7", Duration: 2},
				{Symbol: "vi", Duration: 2},
				{Symbol: "ii7", Duration: 2},
				{Symbol: "V7", Duration: 2},
			},
		},
	}
}

// DefaultWeights is the fallback probability table used when none is supplied
func DefaultWeights() []generator.WeightedDegree {
	return []generator.WeightedDegree{
		{ScaleDegree: 1, Weight: 0.4},
		{ScaleDegree: 3, Weight: 0.3},
		{ScaleDegree: 5, Weight: 0.3},
	}
}
