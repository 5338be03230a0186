package generator

import "github.com/james-see/seqgen/pkg/theory"

// mapDegree converts a melody position into an emitted degree. With chord
// tones the position indexes the chord's tone set directly; otherwise the
// template degree is transposed onto the chord root.
func mapDegree(tmpl NoteTemplate, chord theory.Chord, tones []int, index int) Degree {
	if tmpl.UseChordTones {
		return Degree(tones[index%len(tones)])
	}
	return Degree(theory.Wrap(tmpl.ScaleDegrees[index] + chord.Root - 1))
}
