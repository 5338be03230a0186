package generator

import (
	"fmt"
	"log"
	"math"

	"github.com/james-see/seqgen/pkg/theory"
)

const (
	// MaxChordDuration caps a single chord's beat budget
	MaxChordDuration = 1024.0
	// MaxSequenceSlots caps how many slots one generated sequence can hold
	MaxSequenceSlots = 65536
)

// ValidateScale checks the scale has seven ascending degrees
func ValidateScale(scale theory.Scale) error {
	if err := scale.Check(); err != nil {
		return invalid("scale", "%v", err)
	}
	return nil
}

// ValidateProgression checks the progression is non-empty and every chord
// has a symbol and a positive duration of at most MaxChordDuration beats
func ValidateProgression(p ChordProgression) error {
	if len(p.Chords) == 0 {
		return invalid("chordProgression.chords", "progression has no chords")
	}
	if len(p.Chords) > MaxSequenceSlots {
		return invalid("chordProgression.chords", "%d chords exceed %d", len(p.Chords), MaxSequenceSlots)
	}
	for i, c := range p.Chords {
		if c.Symbol == "" {
			return invalid(fmt.Sprintf("chordProgression.chords[%d].symbol", i), "symbol is empty")
		}
		field := fmt.Sprintf("chordProgression.chords[%d].duration", i)
		if !(c.Duration > 0) {
			return nonPositive(field, c.Duration)
		}
		if c.Duration > MaxChordDuration {
			return invalid(field, "duration %g exceeds %g beats", c.Duration, MaxChordDuration)
		}
	}
	return nil
}

// ValidateDensity checks the progression cut by the rhythm's shortest
// duration stays within MaxSequenceSlots. Every chord adds at most one
// clipped slot on top of its whole steps.
func ValidateDensity(p ChordProgression, t RhythmTemplate) error {
	if len(t.Durations) == 0 {
		return nil
	}
	shortest := t.Durations[0]
	for _, d := range t.Durations[1:] {
		shortest = math.Min(shortest, d)
	}
	slots := float64(len(p.Chords)) + p.TotalDuration()/shortest
	if slots > MaxSequenceSlots {
		return invalid("rhythmTemplate.durations",
			"%g beats in steps of %g would exceed %d slots", p.TotalDuration(), shortest, MaxSequenceSlots)
	}
	return nil
}

// ValidateNoteTemplate checks degrees, weights, direction and behavior
func ValidateNoteTemplate(t NoteTemplate) error {
	if len(t.ScaleDegrees) == 0 {
		return invalid("noteTemplate.scaleDegrees", "template has no scale degrees")
	}
	for i, d := range t.ScaleDegrees {
		if d < 1 || d > theory.DegreesPerScale {
			return invalid(fmt.Sprintf("noteTemplate.scaleDegrees[%d]", i), "degree %d outside 1..7", d)
		}
	}
	if len(t.Weights) > 0 && len(t.Weights) != len(t.ScaleDegrees) {
		return invalid("noteTemplate.weights", "got %d weights for %d scale degrees", len(t.Weights), len(t.ScaleDegrees))
	}
	for i, w := range t.Weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return invalid(fmt.Sprintf("noteTemplate.weights[%d]", i), "weight %g must be a finite non-negative number", w)
		}
	}
	switch t.Direction {
	case "", DirectionForward, DirectionBackward, DirectionPingPong:
	default:
		return invalid("noteTemplate.direction", "unknown direction %q", t.Direction)
	}
	if err := validateBehavior("noteTemplate.behavior", t.Behavior); err != nil {
		return err
	}
	return nil
}

// ValidateRhythmTemplate checks durations are positive and rests are parallel
func ValidateRhythmTemplate(t RhythmTemplate) error {
	if len(t.Durations) == 0 {
		return invalid("rhythmTemplate.durations", "template has no durations")
	}
	for i, d := range t.Durations {
		if !(d > 0) || math.IsInf(d, 0) {
			return nonPositive(fmt.Sprintf("rhythmTemplate.durations[%d]", i), d)
		}
	}
	if len(t.Rests) > 0 && len(t.Rests) != len(t.Durations) {
		return invalid("rhythmTemplate.rests", "got %d rest flags for %d durations", len(t.Rests), len(t.Durations))
	}
	return validateBehavior("rhythmTemplate.behavior", t.Behavior)
}

// ValidateWeightTable checks the fallback probability table
func ValidateWeightTable(table []WeightedDegree) error {
	if len(table) == 0 {
		return invalid("probabilities", "table is empty")
	}
	var total float64
	for i, wd := range table {
		if wd.ScaleDegree < 1 || wd.ScaleDegree > theory.DegreesPerScale {
			return invalid(fmt.Sprintf("probabilities[%d].scaleDegree", i), "degree %d outside 1..7", wd.ScaleDegree)
		}
		if wd.Weight < 0 || math.IsNaN(wd.Weight) || math.IsInf(wd.Weight, 0) {
			return invalid(fmt.Sprintf("probabilities[%d].weight", i), "weight %g must be a finite non-negative number", wd.Weight)
		}
		total += wd.Weight
	}
	if total <= 0 {
		return invalid("probabilities", "weights sum to zero")
	}
	return nil
}

// TemplateWarnings returns non-fatal remarks about a note template
func TemplateWarnings(t NoteTemplate) []string {
	var warnings []string
	if len(t.Weights) == 0 {
		warnings = append(warnings, "note template has no weights defined")
	}
	return warnings
}

func validateBehavior(field string, b Behavior) error {
	switch b {
	case "", BehaviorContinuous, BehaviorRepeatPerChord:
		return nil
	default:
		return invalid(field, "unknown behavior %q", b)
	}
}

// resolveProgression validates the progression and decodes every chord
// symbol once. Unknown symbols default to root 1 and produce a warning.
func resolveProgression(p ChordProgression) ([]theory.Chord, []string, error) {
	if err := ValidateProgression(p); err != nil {
		return nil, nil, err
	}

	chords := make([]theory.Chord, len(p.Chords))
	var warnings []string
	for i, c := range p.Chords {
		resolved, ok := theory.ResolveChord(c.Symbol)
		if !ok {
			msg := fmt.Sprintf("chord %d: %v %q, defaulting root to 1", i, theory.ErrUnknownSymbol, c.Symbol)
			log.Printf("warning: %s", msg)
			warnings = append(warnings, msg)
		}
		chords[i] = resolved
	}
	return chords, warnings, nil
}
