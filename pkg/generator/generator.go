package generator

import "github.com/james-see/seqgen/pkg/theory"

// Generate builds a sequence by walking the progression and, for every
// chord, filling its beat budget from the rhythm template while reading
// pitches from the note template. Inputs are validated first; the returned
// sequence always spans exactly the progression's total duration.
func Generate(scale theory.Scale, progression ChordProgression, note NoteTemplate, rhythm RhythmTemplate) (*NoteSequence, error) {
	if err := ValidateScale(scale); err != nil {
		return nil, err
	}
	chords, warnings, err := resolveProgression(progression)
	if err != nil {
		return nil, err
	}
	if err := ValidateNoteTemplate(note); err != nil {
		return nil, err
	}
	if err := ValidateRhythmTemplate(rhythm); err != nil {
		return nil, err
	}
	if err := ValidateDensity(progression, rhythm); err != nil {
		return nil, err
	}

	melody := NewCursor(len(note.ScaleDegrees), note.Direction)
	// Rhythm direction is not configurable
	beat := NewCursor(len(rhythm.Durations), DirectionForward)

	seq := newSequence(progression, warnings)
	for i, chord := range chords {
		melody.BeginChord(note.Behavior)
		beat.BeginChord(rhythm.Behavior)

		tones := chord.Tones()
		allocate(progression.Chords[i].Duration, rhythm, beat, melody, func(s slot) {
			degree := Rest
			if !s.Rest {
				degree = mapDegree(note, chord, tones, s.MelodyIndex)
			}
			seq.push(degree, s.Duration)
		})
	}

	return seq, nil
}
