package generator

import (
	"math"
	"math/rand"
	"time"

	"github.com/james-see/seqgen/pkg/theory"
)

// Default consonance boosts applied by the fallback generator
const (
	DefaultTriadBoost     = 1.5
	DefaultChordToneBoost = 1.25
)

// WeightedDegree is one entry of the fallback probability table
type WeightedDegree struct {
	ScaleDegree int     `json:"scaleDegree" yaml:"scaleDegree"`
	Weight      float64 `json:"weight" yaml:"weight"`
}

// Rand is the random source used by the fallback path. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NewRand returns a deterministic random source for seed
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Rhythm catalogue for the fallback path, grouped by total length in beats
var rhythmCatalogue = [][]float64{
	{1},
	{0.5, 0.5},
	{2},
	{1, 1},
	{1.5, 0.5},
	{3},
	{1, 1, 1},
	{2, 1},
	{1, 2},
	{4},
	{2, 2},
	{1, 1, 1, 1},
	{2, 1, 1},
	{1, 1, 2},
	{1.5, 0.5, 2},
	{1, 0.5, 0.5, 2},
}

// rhythmsFor returns the catalogue patterns totalling exactly duration beats
func rhythmsFor(duration float64) [][]float64 {
	var matches [][]float64
	for _, pattern := range rhythmCatalogue {
		var total float64
		for _, d := range pattern {
			total += d
		}
		if math.Abs(total-duration) < beatEpsilon {
			matches = append(matches, pattern)
		}
	}
	return matches
}

// FallbackGenerator draws degrees from a weighted table, favouring the
// current chord's tones
type FallbackGenerator struct {
	TriadBoost     float64
	ChordToneBoost float64
	rng            Rand
}

// NewFallbackGenerator creates a generator with the default boosts. A nil
// rng is replaced by a time-seeded source.
func NewFallbackGenerator(rng Rand) *FallbackGenerator {
	if rng == nil {
		rng = NewRand(time.Now().UnixNano())
	}
	return &FallbackGenerator{
		TriadBoost:     DefaultTriadBoost,
		ChordToneBoost: DefaultChordToneBoost,
		rng:            rng,
	}
}

// GenerateFallback generates a sequence without templates using the default boosts
func GenerateFallback(scale theory.Scale, progression ChordProgression, table []WeightedDegree, rng Rand) (*NoteSequence, error) {
	return NewFallbackGenerator(rng).Generate(scale, progression, table)
}

// Generate picks a rhythm per chord from the catalogue, then draws one
// degree per slot from the boosted, normalized weight table
func (g *FallbackGenerator) Generate(scale theory.Scale, progression ChordProgression, table []WeightedDegree) (*NoteSequence, error) {
	if err := ValidateScale(scale); err != nil {
		return nil, err
	}
	chords, warnings, err := resolveProgression(progression)
	if err != nil {
		return nil, err
	}
	if err := ValidateWeightTable(table); err != nil {
		return nil, err
	}

	seq := newSequence(progression, warnings)
	for i, chord := range chords {
		duration := progression.Chords[i].Duration

		pattern := []float64{duration}
		if options := rhythmsFor(duration); len(options) > 0 {
			pattern = options[g.rng.Intn(len(options))]
		}

		for _, d := range pattern {
			seq.push(g.pick(table, chord), d)
		}
	}
	return seq, nil
}

// pick walks the cumulative distribution of the boosted weights
func (g *FallbackGenerator) pick(table []WeightedDegree, chord theory.Chord) Degree {
	triad := chord.Triad()
	tones := chord.Tones()

	weights := make([]float64, len(table))
	var total float64
	for i, wd := range table {
		w := wd.Weight
		if containsDegree(triad, wd.ScaleDegree) {
			w *= g.TriadBoost
		}
		if containsDegree(tones, wd.ScaleDegree) {
			w *= g.ChordToneBoost
		}
		weights[i] = w
		total += w
	}

	u := g.rng.Float64()
	var cumulative float64
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		cumulative += w / total
		if u < cumulative {
			return Degree(table[i].ScaleDegree)
		}
	}
	// u landed in the rounding gap at the top of the distribution
	return Degree(table[last].ScaleDegree)
}

func containsDegree(degrees []int, d int) bool {
	for _, x := range degrees {
		if x == d {
			return true
		}
	}
	return false
}
