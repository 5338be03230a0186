package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/james-see/seqgen/pkg/generator"
	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a template collection
type File struct {
	NoteTemplates   []generator.NoteTemplate     `json:"noteTemplates,omitempty" yaml:"noteTemplates,omitempty"`
	RhythmTemplates []generator.RhythmTemplate   `json:"rhythmTemplates,omitempty" yaml:"rhythmTemplates,omitempty"`
	Progressions    []generator.ChordProgression `json:"progressions,omitempty" yaml:"progressions,omitempty"`
}

// Library is a read-only set of templates and progressions keyed by ID
type Library struct {
	notes        map[string]generator.NoteTemplate
	rhythms      map[string]generator.RhythmTemplate
	progressions map[string]generator.ChordProgression
}

// New creates a library holding the built-in presets
func New() *Library {
	l := &Library{
		notes:        make(map[string]generator.NoteTemplate),
		rhythms:      make(map[string]generator.RhythmTemplate),
		progressions: make(map[string]generator.ChordProgression),
	}
	// Presets are known-good
	_ = l.Add(&File{
		NoteTemplates:   noteTemplates(),
		RhythmTemplates: rhythmTemplates(),
		Progressions:    progressions(),
	})
	return l
}

// Add validates every entry of f and merges it into the library.
// Entries with an existing ID replace the previous one.
func (l *Library) Add(f *File) error {
	for i, t := range f.NoteTemplates {
		if t.ID == "" {
			return fmt.Errorf("note template %d has no id", i)
		}
		if err := generator.ValidateNoteTemplate(t); err != nil {
			return fmt.Errorf("note template %q: %w", t.ID, err)
		}
	}
	for i, t := range f.RhythmTemplates {
		if t.ID == "" {
			return fmt.Errorf("rhythm template %d has no id", i)
		}
		if err := generator.ValidateRhythmTemplate(t); err != nil {
			return fmt.Errorf("rhythm template %q: %w", t.ID, err)
		}
	}
	for i, p := range f.Progressions {
		if p.ID == "" {
			return fmt.Errorf("progression %d has no id", i)
		}
		if err := generator.ValidateProgression(p); err != nil {
			return fmt.Errorf("progression %q: %w", p.ID, err)
		}
	}

	for _, t := range f.NoteTemplates {
		l.notes[t.ID] = t
	}
	for _, t := range f.RhythmTemplates {
		l.rhythms[t.ID] = t
	}
	for _, p := range f.Progressions {
		l.progressions[p.ID] = p
	}
	return nil
}

// NoteTemplate looks up a note template by ID
func (l *Library) NoteTemplate(id string) (generator.NoteTemplate, bool) {
	t, ok := l.notes[id]
	return t, ok
}

// RhythmTemplate looks up a rhythm template by ID
func (l *Library) RhythmTemplate(id string) (generator.RhythmTemplate, bool) {
	t, ok := l.rhythms[id]
	return t, ok
}

// Progression looks up a progression by ID
func (l *Library) Progression(id string) (generator.ChordProgression, bool) {
	p, ok := l.progressions[id]
	return p, ok
}

// NoteTemplates returns all note templates sorted by ID
func (l *Library) NoteTemplates() []generator.NoteTemplate {
	out := make([]generator.NoteTemplate, 0, len(l.notes))
	for _, id := range sortedKeys(l.notes) {
		out = append(out, l.notes[id])
	}
	return out
}

// RhythmTemplates returns all rhythm templates sorted by ID
func (l *Library) RhythmTemplates() []generator.RhythmTemplate {
	out := make([]generator.RhythmTemplate, 0, len(l.rhythms))
	for _, id := range sortedKeys(l.rhythms) {
		out = append(out, l.rhythms[id])
	}
	return out
}

// Progressions returns all progressions sorted by ID
func (l *Library) Progressions() []generator.ChordProgression {
	out := make([]generator.ChordProgression, 0, len(l.progressions))
	for _, id := range sortedKeys(l.progressions) {
		out = append(out, l.progressions[id])
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Decode parses a template collection. JSON is accepted as a subset of YAML.
func Decode(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &f, nil
}

// Encode writes a template collection as YAML
func Encode(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

// LoadFile reads a template collection from a YAML or JSON file
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}
	return Decode(data)
}

// LoadDir merges every .yaml, .yml and .json file in dir into the library
func (l *Library) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read template dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}

		path := filepath.Join(dir, entry.Name())
		f, err := LoadFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := l.Add(f); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}
