package library

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/james-see/seqgen/pkg/generator"
)

// ParseProgression parses an inline progression such as "ii7:4,V7:4,Imaj7:8".
// A chord without a duration lasts 4 beats.
func ParseProgression(s string) (generator.ChordProgression, error) {
	var p generator.ChordProgression
	for _, part := range splitList(s) {
		symbol, duration := part, "4"
		if i := strings.LastIndex(part, ":"); i >= 0 {
			symbol, duration = strings.TrimSpace(part[:i]), strings.TrimSpace(part[i+1:])
		}
		if symbol == "" {
			return p, fmt.Errorf("empty chord symbol in %q", part)
		}

		beats, err := strconv.ParseFloat(duration, 64)
		if err != nil {
			return p, fmt.Errorf("invalid duration in %q: %w", part, err)
		}
		p.Chords = append(p.Chords, generator.Chord{Symbol: symbol, Duration: beats})
	}

	if len(p.Chords) == 0 {
		return p, fmt.Errorf("progression is empty")
	}
	p.Name = s
	return p, generator.ValidateProgression(p)
}

// ParseWeights parses a fallback table such as "1:0.4,3:0.3,5:0.3"
func ParseWeights(s string) ([]generator.WeightedDegree, error) {
	var table []generator.WeightedDegree
	for _, part := range splitList(s) {
		degree, weight, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("expected degree:weight, got %q", part)
		}

		d, err := strconv.Atoi(strings.TrimSpace(degree))
		if err != nil {
			return nil, fmt.Errorf("invalid degree in %q: %w", part, err)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight in %q: %w", part, err)
		}
		table = append(table, generator.WeightedDegree{ScaleDegree: d, Weight: w})
	}
	return table, generator.ValidateWeightTable(table)
}

// ResolveProgression returns the preset named by ref, or parses ref as an
// inline progression when no preset matches
func (l *Library) ResolveProgression(ref string) (generator.ChordProgression, error) {
	if p, ok := l.Progression(ref); ok {
		return p, nil
	}
	if !strings.ContainsAny(ref, ",:") && !looksLikeSymbol(ref) {
		return generator.ChordProgression{}, fmt.Errorf("unknown progression: %s", ref)
	}
	return ParseProgression(ref)
}

func looksLikeSymbol(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) > 1 {
		s = strings.TrimSuffix(strings.TrimSuffix(s, "7"), "maj")
	}
	switch s {
	case "i", "ii", "iii", "iv", "v", "vi", "vii", "1", "2", "3", "4", "5", "6", "7":
		return true
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
