package generator

import (
	"testing"

	"github.com/james-see/seqgen/pkg/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand always returns the same draw
type fixedRand struct {
	u float64
}

func (f fixedRand) Float64() float64 { return f.u }
func (f fixedRand) Intn(n int) int   { return 0 }

var basicTable = []WeightedDegree{
	{ScaleDegree: 1, Weight: 0.4},
	{ScaleDegree: 3, Weight: 0.3},
	{ScaleDegree: 5, Weight: 0.3},
}

func TestGenerateFallbackDurations(t *testing.T) {
	prog := progression(
		Chord{Symbol: "I", Duration: 4},
		Chord{Symbol: "IV", Duration: 2},
		Chord{Symbol: "V", Duration: 2},
	)

	seq, err := GenerateFallback(theory.Major(), prog, basicTable, NewRand(1))
	require.NoError(t, err)

	require.Equal(t, len(seq.Degrees), len(seq.Durations))
	assert.InDelta(t, prog.TotalDuration(), seq.TotalDuration(), 1e-9)
	for _, d := range seq.Degrees {
		assert.Contains(t, []Degree{1, 3, 5}, d)
	}
}

func TestGenerateFallbackUncataloguedDuration(t *testing.T) {
	seq, err := GenerateFallback(theory.Major(), progression(Chord{Symbol: "I", Duration: 5}), basicTable, NewRand(3))
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, seq.Durations)
}

func TestGenerateFallbackDeterministic(t *testing.T) {
	prog := progression(
		Chord{Symbol: "ii7", Duration: 4},
		Chord{Symbol: "V7", Duration: 4},
		Chord{Symbol: "Imaj7", Duration: 4},
	)
	table := []WeightedDegree{
		{ScaleDegree: 1, Weight: 1}, {ScaleDegree: 2, Weight: 1}, {ScaleDegree: 3, Weight: 1},
		{ScaleDegree: 4, Weight: 1}, {ScaleDegree: 5, Weight: 1}, {ScaleDegree: 6, Weight: 1},
		{ScaleDegree: 7, Weight: 1},
	}

	a, err := GenerateFallback(theory.Major(), prog, table, NewRand(42))
	require.NoError(t, err)
	b, err := GenerateFallback(theory.Major(), prog, table, NewRand(42))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFallbackConsonanceBoost(t *testing.T) {
	// Over I, degree 1 is a triad member and a chord tone:
	// 1 * 1.5 * 1.25 = 1.875 against 1 for degree 2, so P(1) = 1.875/2.875
	table := []WeightedDegree{{ScaleDegree: 1, Weight: 1}, {ScaleDegree: 2, Weight: 1}}
	prog := progression(Chord{Symbol: "I", Duration: 5})

	seq, err := NewFallbackGenerator(fixedRand{u: 0.6}).Generate(theory.Major(), prog, table)
	require.NoError(t, err)
	assert.Equal(t, degrees(1), seq.Degrees)

	seq, err = NewFallbackGenerator(fixedRand{u: 0.7}).Generate(theory.Major(), prog, table)
	require.NoError(t, err)
	assert.Equal(t, degrees(2), seq.Degrees)

	// Without boosts the split is even
	g := NewFallbackGenerator(fixedRand{u: 0.6})
	g.TriadBoost, g.ChordToneBoost = 1, 1
	seq, err = g.Generate(theory.Major(), prog, table)
	require.NoError(t, err)
	assert.Equal(t, degrees(2), seq.Degrees)
}

func TestFallbackSkipsZeroWeights(t *testing.T) {
	table := []WeightedDegree{{ScaleDegree: 4, Weight: 1}, {ScaleDegree: 6, Weight: 0}}
	seq, err := NewFallbackGenerator(fixedRand{u: 0.9999999999}).Generate(theory.Major(), progression(Chord{Symbol: "I", Duration: 1}), table)
	require.NoError(t, err)
	assert.Equal(t, degrees(4), seq.Degrees)
}

func TestFallbackValidation(t *testing.T) {
	prog := progression(Chord{Symbol: "I", Duration: 4})

	tests := []struct {
		name  string
		table []WeightedDegree
		field string
	}{
		{"empty", nil, "probabilities"},
		{"degree out of range", []WeightedDegree{{ScaleDegree: 0, Weight: 1}}, "probabilities[0].scaleDegree"},
		{"negative weight", []WeightedDegree{{ScaleDegree: 1, Weight: -1}}, "probabilities[0].weight"},
		{"all zero", []WeightedDegree{{ScaleDegree: 1, Weight: 0}}, "probabilities"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateFallback(theory.Major(), prog, tt.table, NewRand(1))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestRhythmsFor(t *testing.T) {
	for _, pattern := range rhythmsFor(4) {
		var total float64
		for _, d := range pattern {
			total += d
		}
		assert.Equal(t, 4.0, total)
	}
	assert.NotEmpty(t, rhythmsFor(2))
	assert.Empty(t, rhythmsFor(7))
}
