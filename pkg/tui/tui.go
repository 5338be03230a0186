// Package tui provides a terminal user interface for seqgen
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/seqgen/pkg/converter"
	"github.com/james-see/seqgen/pkg/generator"
	"github.com/james-see/seqgen/pkg/library"
	"github.com/james-see/seqgen/pkg/theory"
)

// Acid-inspired color scheme
var (
	acidGreen  = lipgloss.Color("#39FF14")
	acidYellow = lipgloss.Color("#FFFF00")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(acidGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(acidYellow).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	gridStyle = lipgloss.NewStyle().
			Foreground(acidGreen)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(acidGreen).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StatePickProgression
	StatePickNotes
	StatePickRhythm
	StateSequence
	StateExport
	StateFilePicker
	StateWorking
	StateResult
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Next        State
}

var menuItems = []MenuItem{
	{Title: "Generate sequence", Description: "Pick a progression, a note template and a rhythm template", Next: StatePickProgression},
	{Title: "Extract templates", Description: "Derive note and rhythm templates from a MIDI file", Next: StateFilePicker},
	{Title: "Exit", Description: "Exit the application"},
}

// Options controls how sequences are rendered and exported
type Options struct {
	Scale   theory.Scale
	Key     string
	KeyRoot int
	Octave  int
	Tempo   float64
}

// DefaultOptions renders in C major, octave 4, at 120 BPM
func DefaultOptions() Options {
	return Options{Scale: theory.Major(), Key: "C", Octave: 4, Tempo: 120}
}

type choice struct {
	title       string
	description string
}

// Model represents the TUI model
type Model struct {
	state      State
	menuIndex  int
	cursor     int
	lib        *library.Library
	opts       Options
	filePicker filepicker.Model
	spinner    spinner.Model
	input      textinput.Model

	progression generator.ChordProgression
	note        generator.NoteTemplate
	rhythm      generator.RhythmTemplate
	seq         *generator.NoteSequence

	selectedFile string
	extracted    *converter.Extracted
	status       string
	err          error
	width        int
	height       int
}

// extractDoneMsg signals template extraction completion
type extractDoneMsg struct {
	extracted *converter.Extracted
	err       error
}

// exportDoneMsg signals that a sequence was written to disk
type exportDoneMsg struct {
	path string
	err  error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New(lib *library.Library, opts Options) Model {
	if lib == nil {
		lib = library.New()
	}

	// Initialize file picker
	fp := filepicker.New()
	fp.AllowedTypes = []string{".mid", ".midi"}
	fp.CurrentDirectory, _ = os.Getwd()

	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(acidGreen)

	// Export filename input
	ti := textinput.New()
	ti.Placeholder = "sequence.mid"
	ti.CharLimit = 256
	ti.Width = 40

	return Model{
		state:      StateMenu,
		lib:        lib,
		opts:       opts,
		filePicker: fp,
		spinner:    s,
		input:      ti,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle file picker state first - it needs to receive all messages
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateWorking
			return m, tea.Batch(m.spinner.Tick, m.performExtract())
		}

		return m, cmd
	}

	// The export input owns the keyboard while focused
	if m.state == StateExport {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.input.Blur()
				m.state = StateSequence
				return m, nil
			case "enter":
				path := strings.TrimSpace(m.input.Value())
				if path == "" {
					path = m.input.Placeholder
				}
				if filepath.Ext(path) == "" {
					path += ".mid"
				}
				m.input.Blur()
				m.state = StateSequence
				return m, m.performExport(path)
			case "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StatePickProgression, StatePickNotes, StatePickRhythm:
			return m.updatePicker(msg)
		case StateSequence:
			return m.updateSequence(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case extractDoneMsg:
		m.state = StateResult
		m.extracted = msg.extracted
		m.err = msg.err
		m.status = ""
		return m, nil

	case exportDoneMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = fmt.Sprintf("Wrote %s", msg.path)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		if m.menuIndex == len(menuItems)-1 {
			return m, tea.Quit
		}
		m.state = menuItems[m.menuIndex].Next
		m.cursor = 0
		m.err = nil
		if m.state == StateFilePicker {
			return m, m.filePicker.Init()
		}
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.choices()

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case "esc":
		if m.state == StatePickProgression {
			m.state = StateMenu
		} else {
			m.state--
		}
		m.cursor = 0
	case "enter":
		if len(items) == 0 {
			return m, nil
		}
		switch m.state {
		case StatePickProgression:
			m.progression = m.lib.Progressions()[m.cursor]
			m.state = StatePickNotes
		case StatePickNotes:
			m.note = m.lib.NoteTemplates()[m.cursor]
			m.state = StatePickRhythm
		case StatePickRhythm:
			m.rhythm = m.lib.RhythmTemplates()[m.cursor]
			return m.generate(), nil
		}
		m.cursor = 0
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateSequence(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var opts *generator.TransformOptions

	switch msg.String() {
	case "r":
		opts = &generator.TransformOptions{Type: generator.TransformReverse}
	case "i":
		opts = &generator.TransformOptions{Type: generator.TransformInvert}
	case "+", "=":
		opts = &generator.TransformOptions{Type: generator.TransformTranspose, Value: 1}
	case "-":
		opts = &generator.TransformOptions{Type: generator.TransformTranspose, Value: -1}
	case "w":
		m.state = StateExport
		m.status = ""
		m.input.SetValue("")
		return m, m.input.Focus()
	case "n":
		m.state = StatePickProgression
		m.cursor = 0
		m.status = ""
		return m, nil
	case "esc":
		m.state = StateMenu
		m.status = ""
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	if opts != nil {
		seq, err := generator.Transform(m.seq, *opts)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.seq = seq
		m.status = fmt.Sprintf("Applied %s", opts.Type)
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "a":
		if m.extracted == nil {
			return m, nil
		}
		if err := m.lib.Add(&library.File{
			NoteTemplates:   []generator.NoteTemplate{m.extracted.NoteTemplate},
			RhythmTemplates: []generator.RhythmTemplate{m.extracted.RhythmTemplate},
		}); err != nil {
			m.err = err
			return m, nil
		}
		m.status = fmt.Sprintf("Added %q to the template library", m.extracted.NoteTemplate.ID)
		return m, nil
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.selectedFile = ""
		m.extracted = nil
		m.status = ""
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// generate runs the chosen templates over the chosen progression
func (m Model) generate() Model {
	seq, err := generator.Generate(m.opts.Scale, m.progression, m.note, m.rhythm)
	if err != nil {
		m.err = err
		m.state = StateResult
		return m
	}
	m.seq = seq
	m.err = nil
	m.status = ""
	m.state = StateSequence
	return m
}

func (m Model) performExtract() tea.Cmd {
	path := m.selectedFile
	opts := m.opts
	return func() tea.Msg {
		rec, err := converter.ParseMIDIFile(path)
		if err != nil {
			return extractDoneMsg{err: err}
		}

		extracted, err := converter.ExtractTemplates(rec, opts.Scale, opts.KeyRoot, 0.25)
		if err != nil {
			return extractDoneMsg{err: err}
		}

		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		extracted.NoteTemplate.ID = "extracted-" + base
		extracted.NoteTemplate.Name = base
		extracted.RhythmTemplate.ID = "extracted-" + base
		extracted.RhythmTemplate.Name = base
		return extractDoneMsg{extracted: extracted}
	}
}

func (m Model) performExport(path string) tea.Cmd {
	seq := m.seq
	conv := converter.New(m.opts.Scale, m.opts.KeyRoot, m.opts.Octave)
	conv.Renderer.Tempo = m.opts.Tempo
	return func() tea.Msg {
		return exportDoneMsg{path: path, err: conv.ExportFile(seq, path)}
	}
}

// choices lists the entries of the current picker
func (m Model) choices() []choice {
	var items []choice
	switch m.state {
	case StatePickProgression:
		for _, p := range m.lib.Progressions() {
			symbols := make([]string, len(p.Chords))
			for i, c := range p.Chords {
				symbols[i] = fmt.Sprintf("%s:%g", c.Symbol, c.Duration)
			}
			items = append(items, choice{title: p.Name, description: strings.Join(symbols, " ")})
		}
	case StatePickNotes:
		for _, t := range m.lib.NoteTemplates() {
			desc := fmt.Sprintf("%s · %s · %s", joinInts(t.ScaleDegrees), orDefault(string(t.Direction), "forward"), orDefault(string(t.Behavior), "continuous"))
			if t.UseChordTones {
				desc += " · chord tones"
			}
			items = append(items, choice{title: t.Name, description: desc})
		}
	case StatePickRhythm:
		for _, t := range m.lib.RhythmTemplates() {
			steps := make([]string, len(t.Durations))
			for i, d := range t.Durations {
				if t.IsRest(i) {
					steps[i] = fmt.Sprintf("r%g", d)
				} else {
					steps[i] = fmt.Sprintf("%g", d)
				}
			}
			desc := fmt.Sprintf("%s · %s", strings.Join(steps, " "), orDefault(string(t.Behavior), "continuous"))
			items = append(items, choice{title: t.Name, description: desc})
		}
	}
	return items
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, " ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	// Header
	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StatePickProgression, StatePickNotes, StatePickRhythm:
		s.WriteString(m.viewPicker())
	case StateSequence, StateExport:
		s.WriteString(m.viewSequence())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateWorking:
		s.WriteString(m.viewWorking())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	// Footer help
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help()))

	return s.String()
}

func (m Model) help() string {
	switch m.state {
	case StateSequence:
		return "r: reverse • i: invert • +/-: transpose • w: write MIDI • n: new • esc: menu • q: quit"
	case StateExport:
		return "enter: save • esc: cancel"
	case StatePickProgression, StatePickNotes, StatePickRhythm:
		return "↑/↓: navigate • enter: select • esc: back • q: quit"
	default:
		return "↑/↓: navigate • enter: select • q: quit"
	}
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SEQGEN "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(acidYellow).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewPicker() string {
	var s strings.Builder

	title := map[State]string{
		StatePickProgression: " SELECT PROGRESSION ",
		StatePickNotes:       " SELECT NOTE TEMPLATE ",
		StatePickRhythm:      " SELECT RHYTHM TEMPLATE ",
	}[m.state]
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n\n")

	for i, item := range m.choices() {
		if i == m.cursor {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(acidYellow).PaddingLeft(4).Render(item.description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewSequence() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf(" %s · %s · %s ", m.progression.Name, m.note.Name, m.rhythm.Name)))
	s.WriteString("\n\n")
	s.WriteString(gridStyle.Render(renderGrid(m.seq, 0.5)))
	s.WriteString("\n")
	s.WriteString(menuStyle.Render(fmt.Sprintf("%d notes · %g beats · %s %s", m.seq.Len(), m.seq.TotalDuration(), m.opts.Key, m.opts.Scale.Name)))

	for _, w := range m.seq.Warnings {
		s.WriteString("\n")
		s.WriteString(statusStyle.Render("⚠ " + w))
	}

	if m.state == StateExport {
		s.WriteString("\n\n")
		s.WriteString("Save as: ")
		s.WriteString(m.input.View())
	}
	if m.status != "" {
		s.WriteString("\n")
		s.WriteString(successStyle.Render("✓ " + m.status))
	}
	if m.err != nil {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render("✗ " + m.err.Error()))
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT MIDI FILE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewWorking() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" EXTRACTING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Reading %s...\n", m.spinner.View(), filepath.Base(m.selectedFile)))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s", m.err.Error())))
	} else if m.extracted != nil {
		ex := m.extracted
		s.WriteString(titleStyle.Render(" TEMPLATES EXTRACTED "))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Input:   %s\n", filepath.Base(m.selectedFile)))
		s.WriteString(fmt.Sprintf("Tempo:   %.1f BPM\n", ex.Tempo))
		s.WriteString(fmt.Sprintf("Degrees: %s\n", joinInts(ex.NoteTemplate.ScaleDegrees)))

		steps := make([]string, len(ex.RhythmTemplate.Durations))
		for i, d := range ex.RhythmTemplate.Durations {
			if ex.RhythmTemplate.IsRest(i) {
				steps[i] = fmt.Sprintf("r%g", d)
			} else {
				steps[i] = fmt.Sprintf("%g", d)
			}
		}
		s.WriteString(fmt.Sprintf("Rhythm:  %s", strings.Join(steps, " ")))
		if m.status != "" {
			s.WriteString("\n\n")
			s.WriteString(successStyle.Render("✓ " + m.status))
		}
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("a: add to library"))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
   ____  _____ ___   ____ _____ _   _
  / ___|| ____/ _ \ / ___| ____| \ | |
  \___ \|  _|| | | | |  _|  _| |  \| |
   ___) | |__| |_| | |_| | |___| |\  |
  |____/|_____\__\_\\____|_____|_| \_|
`
	return lipgloss.NewStyle().Foreground(acidGreen).Render(logo)
}

// Run starts the TUI application
func Run(lib *library.Library, opts Options) error {
	p := tea.NewProgram(New(lib, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
