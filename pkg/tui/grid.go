package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/james-see/seqgen/pkg/generator"
	"github.com/james-see/seqgen/pkg/theory"
)

const (
	gridNote  = '█'
	gridEmpty = '·'
)

// renderGrid draws a piano-roll of a sequence: one row per scale degree
// (7 at the top), one column per cellBeats, chord symbols above.
func renderGrid(seq *generator.NoteSequence, cellBeats float64) string {
	if seq == nil || cellBeats <= 0 {
		return ""
	}

	cells := int(math.Ceil(seq.TotalDuration()/cellBeats - 1e-9))
	if cells <= 0 {
		return ""
	}

	rows := make([][]rune, theory.DegreesPerScale)
	for i := range rows {
		rows[i] = []rune(strings.Repeat(string(gridEmpty), cells))
	}

	for _, ev := range seq.Events() {
		if ev.Degree.IsRest() {
			continue
		}
		from := int(math.Round(ev.Start / cellBeats))
		to := int(math.Round((ev.Start + ev.Duration) / cellBeats))
		if to <= from {
			to = from + 1
		}
		for c := from; c < to && c < cells; c++ {
			rows[int(ev.Degree)-1][c] = gridNote
		}
	}

	header := []rune(strings.Repeat(" ", cells))
	var beat float64
	for _, chord := range seq.ChordProgression.Chords {
		pos := int(math.Round(beat / cellBeats))
		for i, r := range []rune(chord.Symbol) {
			if pos+i >= cells {
				break
			}
			header[pos+i] = r
		}
		beat += chord.Duration
	}

	var sb strings.Builder
	sb.WriteString("   ")
	sb.WriteString(strings.TrimRight(string(header), " "))
	sb.WriteString("\n")
	for d := theory.DegreesPerScale; d >= 1; d-- {
		fmt.Fprintf(&sb, "%d  %s\n", d, string(rows[d-1]))
	}
	return sb.String()
}
