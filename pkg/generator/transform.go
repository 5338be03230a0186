package generator

import (
	"fmt"
	"math"

	"github.com/james-see/seqgen/pkg/theory"
)

// TransformType names a sequence transformation
type TransformType string

const (
	TransformReverse   TransformType = "reverse"
	TransformInvert    TransformType = "invert"
	TransformTranspose TransformType = "transpose"
)

// TransformOptions selects a transformation; Value is the transpose interval in degrees
type TransformOptions struct {
	Type  TransformType `json:"type"`
	Value int           `json:"value,omitempty"`
}

// Transform returns a transformed copy of seq. Rests stay rests.
func Transform(seq *NoteSequence, opts TransformOptions) (*NoteSequence, error) {
	if seq == nil {
		return nil, invalid("sequence", "sequence is nil")
	}
	if err := validateSequence(seq); err != nil {
		return nil, err
	}

	switch opts.Type {
	case TransformReverse:
		return Reverse(seq), nil
	case TransformInvert:
		return Invert(seq), nil
	case TransformTranspose:
		return Transpose(seq, opts.Value), nil
	default:
		return nil, invalid("transform.type", "unknown transform %q", opts.Type)
	}
}

// validateSequence checks a caller-supplied sequence holds only rests or
// degrees 1..7 with positive durations
func validateSequence(seq *NoteSequence) error {
	if len(seq.Degrees) != len(seq.Durations) {
		return invalid("sequence", "got %d degrees for %d durations", len(seq.Degrees), len(seq.Durations))
	}
	for i, d := range seq.Degrees {
		if !d.IsRest() && (d < 1 || d > theory.DegreesPerScale) {
			return invalid(fmt.Sprintf("sequence.scaleDegrees[%d]", i), "degree %d outside 1..7", int(d))
		}
	}
	for i, d := range seq.Durations {
		if !(d > 0) || math.IsInf(d, 0) {
			return nonPositive(fmt.Sprintf("sequence.durations[%d]", i), d)
		}
	}
	return nil
}

// Reverse plays the sequence backwards
func Reverse(seq *NoteSequence) *NoteSequence {
	out := clone(seq)
	n := len(out.Degrees)
	for i := 0; i < n/2; i++ {
		j := n - 1 - i
		out.Degrees[i], out.Degrees[j] = out.Degrees[j], out.Degrees[i]
		out.Durations[i], out.Durations[j] = out.Durations[j], out.Durations[i]
	}
	return out
}

// Invert mirrors every degree around the highest one: d' = max - d + 1
func Invert(seq *NoteSequence) *NoteSequence {
	out := clone(seq)
	highest := Rest
	for _, d := range out.Degrees {
		if d > highest {
			highest = d
		}
	}
	for i, d := range out.Degrees {
		if !d.IsRest() {
			out.Degrees[i] = highest - d + 1
		}
	}
	return out
}

// Transpose shifts every degree by interval, wrapping into 1..7
func Transpose(seq *NoteSequence, interval int) *NoteSequence {
	out := clone(seq)
	for i, d := range out.Degrees {
		if !d.IsRest() {
			out.Degrees[i] = Degree(theory.Wrap(int(d) + interval))
		}
	}
	return out
}

func clone(seq *NoteSequence) *NoteSequence {
	out := &NoteSequence{
		Degrees:          append([]Degree(nil), seq.Degrees...),
		Durations:        append([]float64(nil), seq.Durations...),
		ChordProgression: seq.ChordProgression,
		Warnings:         append([]string(nil), seq.Warnings...),
	}
	out.ChordProgression.Chords = append([]Chord(nil), seq.ChordProgression.Chords...)
	return out
}
