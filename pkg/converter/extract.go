package converter

import (
	"errors"
	"math"
	"sort"

	"github.com/james-see/seqgen/pkg/generator"
	"github.com/james-see/seqgen/pkg/theory"
)

// extractEpsilon absorbs tick rounding when comparing beat positions
const extractEpsilon = 1e-6

// ErrNoNotes is returned when a recording holds nothing to extract
var ErrNoNotes = errors.New("recording contains no notes")

// ExtractTemplates derives a note and a rhythm template from a recording.
// Chords are reduced to their highest note. Gaps between notes become rests;
// since rests advance the melody, each rest slot repeats the previous degree
// in the note template so both templates stay aligned. A positive quantize
// snaps note boundaries to that grid (in beats).
func ExtractTemplates(rec *Recording, scale theory.Scale, keyRoot int, quantize float64) (*Extracted, error) {
	if rec == nil || len(rec.Notes) == 0 {
		return nil, ErrNoNotes
	}
	if err := scale.Check(); err != nil {
		return nil, err
	}

	notes := melodyLine(rec.Notes, quantize)
	if len(notes) == 0 {
		return nil, ErrNoNotes
	}

	out := &Extracted{
		NoteTemplate: generator.NoteTemplate{
			ID:        "extracted",
			Name:      "Extracted",
			Direction: generator.DirectionForward,
			Behavior:  generator.BehaviorContinuous,
		},
		RhythmTemplate: generator.RhythmTemplate{
			ID:       "extracted",
			Name:     "Extracted",
			Behavior: generator.BehaviorContinuous,
		},
		Tempo: rec.Tempo,
	}

	push := func(degree int, duration float64, rest bool) {
		out.NoteTemplate.ScaleDegrees = append(out.NoteTemplate.ScaleDegrees, degree)
		out.NoteTemplate.Weights = append(out.NoteTemplate.Weights, 1)
		out.RhythmTemplate.Durations = append(out.RhythmTemplate.Durations, duration)
		out.RhythmTemplate.Rests = append(out.RhythmTemplate.Rests, rest)
	}

	last := 1
	var cursor float64
	for i, n := range notes {
		if gap := n.StartBeat - cursor; gap > extractEpsilon {
			push(last, gap, true)
		}

		end := n.EndBeat()
		if i+1 < len(notes) && notes[i+1].StartBeat < end {
			end = notes[i+1].StartBeat
		}

		pc := (int(n.Pitch) - keyRoot) % 12
		last = scale.NearestDegree(pc)
		push(last, end-n.StartBeat, false)
		cursor = end
	}

	// A template with no rests at all does not need the flags
	hasRest := false
	for _, r := range out.RhythmTemplate.Rests {
		hasRest = hasRest || r
	}
	if !hasRest {
		out.RhythmTemplate.Rests = nil
	}

	return out, nil
}

// melodyLine quantizes the notes, keeps the highest pitch of every onset and
// drops notes that end up with no length
func melodyLine(in []NoteEvent, quantize float64) []NoteEvent {
	notes := make([]NoteEvent, 0, len(in))
	for _, n := range in {
		start, end := n.StartBeat, n.EndBeat()
		if quantize > 0 {
			start = snap(start, quantize)
			end = snap(end, quantize)
			if end <= start {
				end = start + quantize
			}
		}
		if end-start <= extractEpsilon {
			continue
		}
		n.StartBeat, n.DurationBeats = start, end-start
		notes = append(notes, n)
	}

	sort.SliceStable(notes, func(i, j int) bool {
		if math.Abs(notes[i].StartBeat-notes[j].StartBeat) > extractEpsilon {
			return notes[i].StartBeat < notes[j].StartBeat
		}
		return notes[i].Pitch > notes[j].Pitch
	})

	line := notes[:0]
	for _, n := range notes {
		if len(line) > 0 && math.Abs(line[len(line)-1].StartBeat-n.StartBeat) <= extractEpsilon {
			continue
		}
		line = append(line, n)
	}
	return line
}

func snap(beat, grid float64) float64 {
	return math.Round(beat/grid) * grid
}
