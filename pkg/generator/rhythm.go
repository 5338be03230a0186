package generator

// beatEpsilon absorbs floating-point residue when consuming a chord's budget
const beatEpsilon = 1e-9

// slot is one allocated piece of a chord's beat budget
type slot struct {
	Duration    float64
	Rest        bool
	MelodyIndex int
}

// allocate splits budget beats into slots read from the rhythm cursor.
// Both cursors advance once per slot, rests included, so a rest consumes a
// position of melodic phase. The final slot is clipped to what remains.
func allocate(budget float64, rhythm RhythmTemplate, beat, melody *Cursor, emit func(slot)) {
	remaining := budget
	for remaining > beatEpsilon {
		i := beat.Index()
		d := rhythm.Durations[i]
		if d >= remaining-beatEpsilon {
			d = remaining
		}

		emit(slot{
			Duration:    d,
			Rest:        rhythm.IsRest(i),
			MelodyIndex: melody.Index(),
		})

		remaining -= d
		beat.Advance()
		melody.Advance()
	}
}
