package generator

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/james-see/seqgen/pkg/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func progression(chords ...Chord) ChordProgression {
	return ChordProgression{Chords: chords}
}

func ones(n int) []float64 {
	d := make([]float64, n)
	for i := range d {
		d[i] = 1
	}
	return d
}

func degrees(ints ...int) []Degree {
	out := make([]Degree, len(ints))
	for i, n := range ints {
		out[i] = Degree(n)
	}
	return out
}

func TestGenerateScaleRelative(t *testing.T) {
	seq, err := Generate(
		theory.Major(),
		progression(Chord{Symbol: "Imaj7", Duration: 4}),
		NoteTemplate{ScaleDegrees: []int{1, 2, 3}, Direction: DirectionForward, Behavior: BehaviorContinuous},
		RhythmTemplate{Durations: []float64{1, 1, 1, 1}, Behavior: BehaviorContinuous},
	)
	require.NoError(t, err)

	assert.Equal(t, degrees(1, 2, 3, 1), seq.Degrees)
	assert.Equal(t, []float64{1, 1, 1, 1}, seq.Durations)
	assert.Empty(t, seq.Warnings)
}

func TestGenerateChordTones(t *testing.T) {
	seq, err := Generate(
		theory.Major(),
		progression(Chord{Symbol: "V7", Duration: 5}),
		NoteTemplate{ScaleDegrees: []int{1, 2, 3, 4, 5}, UseChordTones: true},
		RhythmTemplate{Durations: ones(5)},
	)
	require.NoError(t, err)

	assert.Equal(t, degrees(5, 7, 2, 4, 5), seq.Degrees)
	assert.Equal(t, ones(5), seq.Durations)
}

func TestGenerateRests(t *testing.T) {
	seq, err := Generate(
		theory.Major(),
		progression(Chord{Symbol: "I", Duration: 4}),
		NoteTemplate{ScaleDegrees: []int{1, 2, 3, 4}},
		RhythmTemplate{Durations: ones(4), Rests: []bool{false, true, false, false}},
	)
	require.NoError(t, err)

	require.Len(t, seq.Degrees, 4)
	assert.True(t, seq.Degrees[1].IsRest())
	assert.Equal(t, 1.0, seq.Durations[1])
}

func TestRestAdvancesMelody(t *testing.T) {
	// The rest consumes degree 2, so the next pitch is 3, not 2
	seq, err := Generate(
		theory.Major(),
		progression(Chord{Symbol: "I", Duration: 4}),
		NoteTemplate{ScaleDegrees: []int{1, 2, 3, 4}},
		RhythmTemplate{Durations: ones(4), Rests: []bool{false, true, false, false}},
	)
	require.NoError(t, err)
	assert.Equal(t, degrees(1, 0, 3, 4), seq.Degrees)
}

func TestPingPongBoundary(t *testing.T) {
	seq, err := Generate(
		theory.Major(),
		progression(Chord{Symbol: "I", Duration: 7}),
		NoteTemplate{ScaleDegrees: []int{1, 2, 3}, Direction: DirectionPingPong},
		RhythmTemplate{Durations: []float64{1}},
	)
	require.NoError(t, err)
	assert.Equal(t, degrees(1, 2, 3, 2, 1, 2, 3), seq.Degrees)
}

func TestBackwardDirection(t *testing.T) {
	seq, err := Generate(
		theory.Major(),
		progression(Chord{Symbol: "I", Duration: 6}),
		NoteTemplate{ScaleDegrees: []int{1, 2, 3, 4}, Direction: DirectionBackward},
		RhythmTemplate{Durations: []float64{1}},
	)
	require.NoError(t, err)
	assert.Equal(t, degrees(1, 4, 3, 2, 1, 4), seq.Degrees)

	// Successive template indices strictly decrease modulo wraparound
	c := NewCursor(4, DirectionBackward)
	prev := c.Index()
	for i := 0; i < 10; i++ {
		c.Advance()
		assert.Equal(t, (prev-1+4)%4, c.Index())
		prev = c.Index()
	}
}

func TestRepeatPerChordResets(t *testing.T) {
	note := NoteTemplate{ScaleDegrees: []int{3, 1, 2}, Behavior: BehaviorRepeatPerChord}
	prog := progression(
		Chord{Symbol: "ii", Duration: 2},
		Chord{Symbol: "V", Duration: 3},
		Chord{Symbol: "I", Duration: 1},
		Chord{Symbol: "vi", Duration: 2},
	)

	seq, err := Generate(theory.Major(), prog, note, RhythmTemplate{Durations: []float64{1}})
	require.NoError(t, err)

	events := seq.Events()
	seen := map[int]bool{}
	for _, ev := range events {
		if seen[ev.ChordIndex] {
			continue
		}
		seen[ev.ChordIndex] = true
		chord, _ := theory.ResolveChord(prog.Chords[ev.ChordIndex].Symbol)
		want := Degree(theory.Wrap(note.ScaleDegrees[0] + chord.Root - 1))
		assert.Equal(t, want, ev.Degree, "first degree of chord %d", ev.ChordIndex)
	}
	assert.Len(t, seen, 4)
}

func TestContinuousKeepsPhaseAcrossChords(t *testing.T) {
	seq, err := Generate(
		theory.Major(),
		progression(Chord{Symbol: "I", Duration: 2}, Chord{Symbol: "IV", Duration: 2}),
		NoteTemplate{ScaleDegrees: []int{1, 2, 3}, Behavior: BehaviorContinuous},
		RhythmTemplate{Durations: []float64{1}},
	)
	require.NoError(t, err)
	// IV continues at template index 2 (degree 3 -> 6) and wraps to index 0 (1 -> 4)
	assert.Equal(t, degrees(1, 2, 6, 4), seq.Degrees)
}

func TestRhythmBehavior(t *testing.T) {
	prog := progression(Chord{Symbol: "I", Duration: 2}, Chord{Symbol: "I", Duration: 2})
	note := NoteTemplate{ScaleDegrees: []int{1}}

	seq, err := Generate(theory.Major(), prog, note, RhythmTemplate{Durations: []float64{3, 1}, Behavior: BehaviorContinuous})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1, 1}, seq.Durations)

	seq, err = Generate(theory.Major(), prog, note, RhythmTemplate{Durations: []float64{3, 1}, Behavior: BehaviorRepeatPerChord})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2}, seq.Durations)
}

func TestLastSlotClipped(t *testing.T) {
	seq, err := Generate(
		theory.Major(),
		progression(Chord{Symbol: "I", Duration: 4}, Chord{Symbol: "V", Duration: 2.5}),
		NoteTemplate{ScaleDegrees: []int{1, 3, 5}},
		RhythmTemplate{Durations: []float64{1.5}, Behavior: BehaviorRepeatPerChord},
	)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 1.5, 1, 1.5, 1}, seq.Durations)
	assert.InDelta(t, 6.5, seq.TotalDuration(), 1e-12)
}

func TestUnknownChordSymbolWarns(t *testing.T) {
	seq, err := Generate(
		theory.Major(),
		progression(Chord{Symbol: "Xyz", Duration: 2}),
		NoteTemplate{ScaleDegrees: []int{1, 2}},
		RhythmTemplate{Durations: []float64{1}},
	)
	require.NoError(t, err)
	require.Len(t, seq.Warnings, 1)
	assert.Contains(t, seq.Warnings[0], "Xyz")
	// Root defaults to 1, so the template degrees pass through unchanged
	assert.Equal(t, degrees(1, 2), seq.Degrees)
}

// Invariants over a spread of generated inputs
func TestGenerateProperties(t *testing.T) {
	rng := NewRand(7)
	symbols := []string{"I", "ii", "iii", "IV", "V", "vi", "vii", "ii7", "V7", "Imaj7", "IVmaj7", "3"}
	directions := []Direction{DirectionForward, DirectionBackward, DirectionPingPong}
	behaviors := []Behavior{BehaviorContinuous, BehaviorRepeatPerChord}
	durationChoices := []float64{0.25, 0.5, 0.75, 1, 1.5, 2, 3}

	for trial := 0; trial < 200; trial++ {
		var prog ChordProgression
		for i := 0; i < 1+rng.Intn(6); i++ {
			prog.Chords = append(prog.Chords, Chord{
				Symbol:   symbols[rng.Intn(len(symbols))],
				Duration: float64(1+rng.Intn(8)) / 2,
			})
		}

		note := NoteTemplate{
			Direction:     directions[rng.Intn(len(directions))],
			Behavior:      behaviors[rng.Intn(len(behaviors))],
			UseChordTones: rng.Intn(2) == 0,
		}
		for i := 0; i < 1+rng.Intn(8); i++ {
			note.ScaleDegrees = append(note.ScaleDegrees, 1+rng.Intn(7))
		}

		rhythm := RhythmTemplate{Behavior: behaviors[rng.Intn(len(behaviors))]}
		for i := 0; i < 1+rng.Intn(6); i++ {
			rhythm.Durations = append(rhythm.Durations, durationChoices[rng.Intn(len(durationChoices))])
			rhythm.Rests = append(rhythm.Rests, rng.Intn(5) == 0)
		}

		seq, err := Generate(theory.Major(), prog, note, rhythm)
		require.NoError(t, err)

		require.Equal(t, len(seq.Degrees), len(seq.Durations))
		assert.InDelta(t, prog.TotalDuration(), seq.TotalDuration(), 1e-9)

		for _, ev := range seq.Events() {
			assert.Greater(t, ev.Duration, 0.0)
			if ev.Degree.IsRest() {
				continue
			}
			assert.GreaterOrEqual(t, int(ev.Degree), 1)
			assert.LessOrEqual(t, int(ev.Degree), 7)
			if note.UseChordTones {
				chord, _ := theory.ResolveChord(prog.Chords[ev.ChordIndex].Symbol)
				assert.Contains(t, chord.Tones(), int(ev.Degree))
			}
		}
	}
}

func TestGenerateIdempotent(t *testing.T) {
	prog := progression(
		Chord{Symbol: "ii7", Duration: 4},
		Chord{Symbol: "V7", Duration: 4},
		Chord{Symbol: "Imaj7", Duration: 8},
	)
	note := NoteTemplate{ScaleDegrees: []int{1, 3, 5, 3}, Direction: DirectionPingPong}
	rhythm := RhythmTemplate{Durations: []float64{1.5, 0.5, 1}, Rests: []bool{false, false, true}}

	first, err := Generate(theory.Major(), prog, note, rhythm)
	require.NoError(t, err)
	second, err := Generate(theory.Major(), prog, note, rhythm)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateValidation(t *testing.T) {
	validProg := progression(Chord{Symbol: "I", Duration: 4})
	validNote := NoteTemplate{ScaleDegrees: []int{1, 2, 3}}
	validRhythm := RhythmTemplate{Durations: []float64{1}}

	tests := []struct {
		name        string
		scale       theory.Scale
		prog        ChordProgression
		note        NoteTemplate
		rhythm      RhythmTemplate
		field       string
		nonPositive bool
	}{
		{"bad scale", theory.Scale{Degrees: []int{1}}, validProg, validNote, validRhythm, "scale", false},
		{"empty progression", theory.Major(), ChordProgression{}, validNote, validRhythm, "chordProgression.chords", false},
		{"empty symbol", theory.Major(), progression(Chord{Duration: 1}), validNote, validRhythm, "chordProgression.chords[0].symbol", false},
		{"zero chord duration", theory.Major(), progression(Chord{Symbol: "I"}), validNote, validRhythm, "chordProgression.chords[0].duration", true},
		{"empty degrees", theory.Major(), validProg, NoteTemplate{}, validRhythm, "noteTemplate.scaleDegrees", false},
		{"degree out of range", theory.Major(), validProg, NoteTemplate{ScaleDegrees: []int{1, 8}}, validRhythm, "noteTemplate.scaleDegrees[1]", false},
		{"weights mismatch", theory.Major(), validProg, NoteTemplate{ScaleDegrees: []int{1, 2}, Weights: []float64{1}}, validRhythm, "noteTemplate.weights", false},
		{"negative weight", theory.Major(), validProg, NoteTemplate{ScaleDegrees: []int{1}, Weights: []float64{-1}}, validRhythm, "noteTemplate.weights[0]", false},
		{"bad direction", theory.Major(), validProg, NoteTemplate{ScaleDegrees: []int{1}, Direction: "sideways"}, validRhythm, "noteTemplate.direction", false},
		{"bad note behavior", theory.Major(), validProg, NoteTemplate{ScaleDegrees: []int{1}, Behavior: "sometimes"}, validRhythm, "noteTemplate.behavior", false},
		{"empty durations", theory.Major(), validProg, validNote, RhythmTemplate{}, "rhythmTemplate.durations", false},
		{"zero duration", theory.Major(), validProg, validNote, RhythmTemplate{Durations: []float64{1, 0}}, "rhythmTemplate.durations[1]", true},
		{"negative duration", theory.Major(), validProg, validNote, RhythmTemplate{Durations: []float64{-0.5}}, "rhythmTemplate.durations[0]", true},
		{"rests mismatch", theory.Major(), validProg, validNote, RhythmTemplate{Durations: []float64{1, 1}, Rests: []bool{true}}, "rhythmTemplate.rests", false},
		{"chord too long", theory.Major(), progression(Chord{Symbol: "I", Duration: 1 << 54}), validNote, validRhythm, "chordProgression.chords[0].duration", false},
		{"nan chord duration", theory.Major(), progression(Chord{Symbol: "I", Duration: math.NaN()}), validNote, validRhythm, "chordProgression.chords[0].duration", true},
		{"rhythm too dense", theory.Major(), progression(Chord{Symbol: "I", Duration: 1000}), validNote, RhythmTemplate{Durations: []float64{1, 0.001}}, "rhythmTemplate.durations", false},
		{"bad rhythm behavior", theory.Major(), validProg, validNote, RhythmTemplate{Durations: []float64{1}, Behavior: "loop"}, "rhythmTemplate.behavior", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := Generate(tt.scale, tt.prog, tt.note, tt.rhythm)
			require.Error(t, err)
			assert.Nil(t, seq)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.nonPositive, errors.Is(err, ErrNonPositiveDuration))

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestDensityLimit(t *testing.T) {
	rhythm := RhythmTemplate{Durations: []float64{0.25}}
	note := NoteTemplate{ScaleDegrees: []int{1}}

	// 64 chords of MaxChordDuration in sixteenths is far past the cap
	long := make([]Chord, 64)
	for i := range long {
		long[i] = Chord{Symbol: "I", Duration: MaxChordDuration}
	}
	_, err := Generate(theory.Major(), progression(long...), note, rhythm)
	assert.ErrorIs(t, err, ErrValidation)

	// many short chords each still cost a slot
	short := make([]Chord, MaxSequenceSlots)
	for i := range short {
		short[i] = Chord{Symbol: "I", Duration: 0.001}
	}
	_, err = Generate(theory.Major(), progression(short...), note, RhythmTemplate{Durations: []float64{1}})
	assert.ErrorIs(t, err, ErrValidation)

	seq, err := Generate(theory.Major(), progression(Chord{Symbol: "I", Duration: MaxChordDuration}), note, rhythm)
	require.NoError(t, err)
	assert.Len(t, seq.Degrees, int(MaxChordDuration/0.25))
}

func TestTemplateWarnings(t *testing.T) {
	assert.Len(t, TemplateWarnings(NoteTemplate{ScaleDegrees: []int{1}}), 1)
	assert.Empty(t, TemplateWarnings(NoteTemplate{ScaleDegrees: []int{1}, Weights: []float64{1}}))
}

func TestDegreeJSON(t *testing.T) {
	seq := &NoteSequence{
		Degrees:   degrees(1, 0, 5),
		Durations: []float64{1, 1, 2},
	}
	data, err := json.Marshal(seq)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scaleDegrees":[1,null,5]`)

	var decoded NoteSequence
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, seq.Degrees, decoded.Degrees)

	err = json.Unmarshal([]byte(`{"scaleDegrees":[1,0,5],"durations":[1,1,2]}`), &decoded)
	assert.Error(t, err)
}

func TestEvents(t *testing.T) {
	seq := &NoteSequence{
		Degrees:          degrees(1, 3, 5, 0),
		Durations:        []float64{1, 1, 1.5, 0.5},
		ChordProgression: progression(Chord{Symbol: "I", Duration: 2}, Chord{Symbol: "V", Duration: 2}),
	}

	events := seq.Events()
	require.Len(t, events, 4)
	assert.Equal(t, []int{0, 0, 1, 1}, []int{events[0].ChordIndex, events[1].ChordIndex, events[2].ChordIndex, events[3].ChordIndex})
	assert.Equal(t, 3.5, events[3].Start)
	assert.True(t, events[3].Degree.IsRest())
}
