package converter

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/james-see/seqgen/pkg/generator"
	"github.com/james-see/seqgen/pkg/theory"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// MIDIRenderer writes note sequences as Standard MIDI Files
type MIDIRenderer struct {
	TicksPerQuarter uint16
	Tempo           float64 // BPM
	Channel         uint8
	Velocity        uint8
	// ChordTrack adds a second track holding the progression's chord tones
	// one octave below the melody
	ChordTrack bool
}

// NewMIDIRenderer creates a renderer with 480 PPQ at 120 BPM
func NewMIDIRenderer() *MIDIRenderer {
	return &MIDIRenderer{
		TicksPerQuarter: 480,
		Tempo:           120.0,
		Channel:         0,
		Velocity:        100,
	}
}

// Render creates MIDI data from a NoteSequence. Degrees are resolved against
// scale in the key whose tonic is keyRoot (pitch class, 0 = C).
func (m *MIDIRenderer) Render(seq *generator.NoteSequence, scale theory.Scale, keyRoot, octave int) ([]byte, error) {
	if seq == nil {
		return nil, errors.New("nil sequence")
	}
	if len(seq.Degrees) != len(seq.Durations) {
		return nil, fmt.Errorf("sequence has %d degrees but %d durations", len(seq.Degrees), len(seq.Durations))
	}
	if err := scale.Check(); err != nil {
		return nil, fmt.Errorf("invalid scale: %w", err)
	}

	tempo := m.Tempo
	if tempo <= 0 {
		tempo = 120.0
	}
	tpq := m.TicksPerQuarter
	if tpq == 0 {
		tpq = 480
	}
	velocity := m.Velocity
	if velocity == 0 {
		velocity = 100
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(tpq)

	var track smf.Track

	// Add tempo meta event
	microsecondsPerBeat := uint32(60000000.0 / tempo)
	tempoData := smf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(microsecondsPerBeat >> 16),
		byte(microsecondsPerBeat >> 8),
		byte(microsecondsPerBeat),
	})
	track.Add(0, tempoData)

	// Add time signature (4/4)
	timeSigData := smf.Message([]byte{0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08})
	track.Add(0, timeSigData)

	// Positions are computed in absolute ticks so rounding never accumulates
	var currentTick uint32
	for _, ev := range seq.Events() {
		if ev.Degree.IsRest() {
			continue
		}

		startTick := beatsToTicks(ev.Start, tpq)
		endTick := beatsToTicks(ev.Start+ev.Duration, tpq)
		if endTick <= startTick {
			continue
		}

		note := theory.MIDINote(scale, keyRoot, octave, int(ev.Degree))
		track.Add(startTick-currentTick, midi.NoteOn(m.Channel, note, velocity))
		track.Add(endTick-startTick, midi.NoteOff(m.Channel, note))
		currentTick = endTick
	}

	// Trailing rests still count towards the length of the file
	totalTicks := beatsToTicks(seq.TotalDuration(), tpq)
	if totalTicks < currentTick {
		totalTicks = currentTick
	}
	track.Close(totalTicks - currentTick)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	if m.ChordTrack {
		chords, err := m.chordTrack(seq.ChordProgression, scale, keyRoot, octave-1, tpq, velocity)
		if err != nil {
			return nil, err
		}
		if err := s.Add(chords); err != nil {
			return nil, fmt.Errorf("failed to add chord track: %w", err)
		}
	}

	// Write to buffer
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}

	return buf.Bytes(), nil
}

func (m *MIDIRenderer) chordTrack(p generator.ChordProgression, scale theory.Scale, keyRoot, octave int, tpq uint16, velocity uint8) (smf.Track, error) {
	var track smf.Track
	channel := (m.Channel + 1) % 16
	velocity = uint8(int(velocity) * 3 / 4)

	var beat float64
	var currentTick uint32
	for _, c := range p.Chords {
		if !(c.Duration > 0) {
			return nil, fmt.Errorf("chord %q has non-positive duration", c.Symbol)
		}
		chord, _ := theory.ResolveChord(c.Symbol)
		tones := chord.Tones()

		startTick := beatsToTicks(beat, tpq)
		endTick := beatsToTicks(beat+c.Duration, tpq)
		beat += c.Duration

		notes := make([]uint8, len(tones))
		for i, t := range tones {
			// Keep voicing ascending from the root
			oct := octave
			if t < chord.Root {
				oct++
			}
			notes[i] = theory.MIDINote(scale, keyRoot, oct, t)
		}

		delta := startTick - currentTick
		for _, n := range notes {
			track.Add(delta, midi.NoteOn(channel, n, velocity))
			delta = 0
		}
		delta = endTick - startTick
		for _, n := range notes {
			track.Add(delta, midi.NoteOff(channel, n))
			delta = 0
		}
		currentTick = endTick
	}

	track.Close(0)
	return track, nil
}

// RenderFile writes MIDI data for a sequence to a file
func (m *MIDIRenderer) RenderFile(seq *generator.NoteSequence, scale theory.Scale, keyRoot, octave int, filename string) error {
	data, err := m.Render(seq, scale, keyRoot, octave)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

func beatsToTicks(beats float64, tpq uint16) uint32 {
	return uint32(math.Round(beats * float64(tpq)))
}

// ParseMIDIFile reads a MIDI file and extracts its notes
func ParseMIDIFile(filename string) (*Recording, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return ParseMIDI(data)
}

// ParseMIDI parses MIDI data into note events across all tracks, sorted by
// start beat and then pitch
func ParseMIDI(data []byte) (*Recording, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	rec := &Recording{
		Tempo:           120.0,
		TicksPerQuarter: 480,
	}

	// Get ticks per quarter note from time format
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		rec.TicksPerQuarter = mt.Resolution()
	}
	tpq := float64(rec.TicksPerQuarter)

	type pending struct {
		tick     int64
		velocity uint8
	}

	for _, track := range s.Tracks {
		// Open notes keyed by channel and pitch, oldest first
		open := make(map[[2]uint8][]pending)
		var currentTick int64

		closeNote := func(key [2]uint8, tick int64) {
			queue := open[key]
			if len(queue) == 0 {
				return
			}
			on := queue[0]
			open[key] = queue[1:]
			rec.Notes = append(rec.Notes, NoteEvent{
				Pitch:         key[1],
				Velocity:      on.velocity,
				StartBeat:     float64(on.tick) / tpq,
				DurationBeats: float64(tick-on.tick) / tpq,
			})
		}

		for _, ev := range track {
			currentTick += int64(ev.Delta)

			msg := ev.Message

			// Check for tempo meta message (FF 51 03 ...)
			if len(msg) >= 6 && msg[0] == 0xFF && msg[1] == 0x51 && msg[2] == 0x03 {
				microsecondsPerBeat := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
				if microsecondsPerBeat > 0 {
					rec.Tempo = 60000000.0 / float64(microsecondsPerBeat)
				}
				continue
			}

			// Note On: 0x9n nn vv, Note Off: 0x8n nn vv
			if len(msg) < 3 {
				continue
			}
			status := msg[0] & 0xF0
			key := [2]uint8{msg[0] & 0x0F, msg[1]}
			velocity := msg[2]

			switch {
			case status == 0x90 && velocity > 0:
				open[key] = append(open[key], pending{tick: currentTick, velocity: velocity})
			case status == 0x80 || status == 0x90:
				closeNote(key, currentTick)
			}
		}

		// Notes still held at the end of the track end with it
		for key := range open {
			for len(open[key]) > 0 {
				closeNote(key, currentTick)
			}
		}
	}

	sort.SliceStable(rec.Notes, func(i, j int) bool {
		if rec.Notes[i].StartBeat != rec.Notes[j].StartBeat {
			return rec.Notes[i].StartBeat < rec.Notes[j].StartBeat
		}
		return rec.Notes[i].Pitch < rec.Notes[j].Pitch
	})

	return rec, nil
}
