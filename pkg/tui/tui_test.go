package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/james-see/seqgen/pkg/converter"
	"github.com/james-see/seqgen/pkg/generator"
	"github.com/james-see/seqgen/pkg/library"
	"github.com/james-see/seqgen/pkg/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(Model)
	}
	return m, cmd
}

func TestGenerateFlow(t *testing.T) {
	lib := library.New()
	m := New(lib, DefaultOptions())
	assert.Equal(t, StateMenu, m.state)

	m, _ = press(t, m, "enter")
	assert.Equal(t, StatePickProgression, m.state)

	m, _ = press(t, m, "enter")
	assert.Equal(t, StatePickNotes, m.state)
	assert.Equal(t, lib.Progressions()[0].ID, m.progression.ID)

	m, _ = press(t, m, "down", "enter")
	assert.Equal(t, StatePickRhythm, m.state)
	assert.Equal(t, lib.NoteTemplates()[1].ID, m.note.ID)

	m, _ = press(t, m, "enter")
	require.Equal(t, StateSequence, m.state)
	require.NotNil(t, m.seq)
	assert.InDelta(t, m.progression.TotalDuration(), m.seq.TotalDuration(), 1e-9)
	assert.Contains(t, m.View(), "write MIDI")
}

func TestPickerBack(t *testing.T) {
	m := New(library.New(), DefaultOptions())
	m, _ = press(t, m, "enter", "enter", "esc")
	assert.Equal(t, StatePickProgression, m.state)

	m, _ = press(t, m, "esc")
	assert.Equal(t, StateMenu, m.state)
}

func generated(t *testing.T) Model {
	t.Helper()
	m := New(library.New(), DefaultOptions())
	m, _ = press(t, m, "enter", "enter", "enter", "enter")
	require.Equal(t, StateSequence, m.state)
	return m
}

func TestSequenceTransforms(t *testing.T) {
	m := generated(t)
	original := m.seq

	m, _ = press(t, m, "r")
	assert.Equal(t, generator.Reverse(original).Degrees, m.seq.Degrees)
	assert.Contains(t, m.status, "reverse")

	m, _ = press(t, m, "r", "+")
	assert.Equal(t, generator.Transpose(original, 1).Degrees, m.seq.Degrees)

	m, _ = press(t, m, "-")
	assert.Equal(t, original.Degrees, m.seq.Degrees)
}

func TestExport(t *testing.T) {
	m := generated(t)

	m, _ = press(t, m, "w")
	require.Equal(t, StateExport, m.state)

	path := filepath.Join(t.TempDir(), "riff")
	m.input.SetValue(path)

	m, cmd := press(t, m, "enter")
	assert.Equal(t, StateSequence, m.state)
	require.NotNil(t, cmd)

	next, _ := m.Update(cmd())
	m = next.(Model)
	require.NoError(t, m.err)
	assert.Equal(t, "Wrote "+path+".mid", m.status)

	data, err := os.ReadFile(path + ".mid")
	require.NoError(t, err)
	assert.Equal(t, converter.FormatMIDI, converter.DetectFormatFromContent(data))
}

func TestExportCancel(t *testing.T) {
	m := generated(t)
	m, _ = press(t, m, "w", "esc")
	assert.Equal(t, StateSequence, m.state)
}

func TestExtract(t *testing.T) {
	seq := &generator.NoteSequence{
		Degrees:   []generator.Degree{1, 3, 5, 3},
		Durations: []float64{1, 1, 1, 1},
	}
	path := filepath.Join(t.TempDir(), "lick.mid")
	require.NoError(t, converter.NewMIDIRenderer().RenderFile(seq, theory.Major(), 0, 4, path))

	lib := library.New()
	m := New(lib, DefaultOptions())
	m.selectedFile = path
	m.state = StateWorking

	next, _ := m.Update(m.performExtract()())
	m = next.(Model)
	require.Equal(t, StateResult, m.state)
	require.NoError(t, m.err)
	require.NotNil(t, m.extracted)
	assert.Equal(t, []int{1, 3, 5, 3}, m.extracted.NoteTemplate.ScaleDegrees)
	assert.Contains(t, m.View(), "TEMPLATES EXTRACTED")

	m, _ = press(t, m, "a")
	_, ok := lib.NoteTemplate("extracted-lick")
	assert.True(t, ok)
	_, ok = lib.RhythmTemplate("extracted-lick")
	assert.True(t, ok)

	m, _ = press(t, m, "enter")
	assert.Equal(t, StateMenu, m.state)
	assert.Nil(t, m.extracted)
}

func TestExtractError(t *testing.T) {
	m := New(library.New(), DefaultOptions())
	m.selectedFile = filepath.Join(t.TempDir(), "missing.mid")

	next, _ := m.Update(m.performExtract()())
	m = next.(Model)
	assert.Equal(t, StateResult, m.state)
	assert.Error(t, m.err)
	assert.Contains(t, m.View(), "ERROR")
}

func TestMenuExit(t *testing.T) {
	m := New(library.New(), DefaultOptions())
	m, cmd := press(t, m, "down", "down", "enter")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestRenderGrid(t *testing.T) {
	seq := &generator.NoteSequence{
		Degrees:   []generator.Degree{1, generator.Rest, 3},
		Durations: []float64{1, 0.5, 0.5},
		ChordProgression: generator.ChordProgression{
			Chords: []generator.Chord{{Symbol: "I", Duration: 1}, {Symbol: "V", Duration: 1}},
		},
	}

	lines := strings.Split(strings.TrimRight(renderGrid(seq, 0.5), "\n"), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "   I V", lines[0])
	assert.Equal(t, "3  ···█", lines[5])
	assert.Equal(t, "1  ██··", lines[7])

	assert.Empty(t, renderGrid(nil, 0.5))
}

func TestRenderGridUnicodeSymbols(t *testing.T) {
	seq := &generator.NoteSequence{
		Degrees:   []generator.Degree{1, 5},
		Durations: []float64{1, 1},
		ChordProgression: generator.ChordProgression{
			Chords: []generator.Chord{{Symbol: "♭VII", Duration: 1}, {Symbol: "I", Duration: 1}},
		},
	}

	lines := strings.Split(renderGrid(seq, 0.25), "\n")
	assert.Equal(t, "   ♭VIII", lines[0])
}
