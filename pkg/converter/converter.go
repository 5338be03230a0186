package converter

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/james-see/seqgen/pkg/generator"
	"github.com/james-see/seqgen/pkg/theory"
	"gopkg.in/yaml.v3"
)

// Format represents an output or input file format
type Format string

const (
	FormatMIDI    Format = "midi"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatText    Format = "text"
	FormatUnknown Format = "unknown"
)

// DetectFormat detects the format of a file based on its extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mid", ".midi":
		return FormatMIDI
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".txt":
		return FormatText
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return FormatUnknown
	}

	// Check for MIDI file signature "MThd"
	if len(data) >= 4 && string(data[:4]) == "MThd" {
		return FormatMIDI
	}

	if trimmed[0] == '{' || trimmed[0] == '[' {
		return FormatJSON
	}

	// Anything else textual is treated as YAML
	return FormatYAML
}

// Converter exports note sequences in a key and octave
type Converter struct {
	Renderer *MIDIRenderer
	Scale    theory.Scale
	KeyRoot  int // pitch class of the tonic, 0 = C
	Octave   int
}

// New creates a Converter for the given scale, key and octave
func New(scale theory.Scale, keyRoot, octave int) *Converter {
	return &Converter{
		Renderer: NewMIDIRenderer(),
		Scale:    scale,
		KeyRoot:  keyRoot,
		Octave:   octave,
	}
}

// Export encodes a sequence in the requested format
func (c *Converter) Export(seq *generator.NoteSequence, format Format) ([]byte, error) {
	if seq == nil {
		return nil, errors.New("nil sequence")
	}

	switch format {
	case FormatMIDI:
		return c.Renderer.Render(seq, c.Scale, c.KeyRoot, c.Octave)
	case FormatJSON:
		return json.MarshalIndent(seq, "", "  ")
	case FormatYAML:
		return yaml.Marshal(seq)
	case FormatText:
		return []byte(Table(seq)), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// ExportFile writes a sequence to outputPath, choosing the format from
// the file extension
func (c *Converter) ExportFile(seq *generator.NoteSequence, outputPath string) error {
	format := DetectFormat(outputPath)
	if format == FormatUnknown {
		return errors.New("cannot determine output format from filename")
	}

	data, err := c.Export(seq, format)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// Table renders a sequence as an aligned plain-text listing
func Table(seq *generator.NoteSequence) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tCHORD\tSTART\tDEGREE\tBEATS")

	chords := seq.ChordProgression.Chords
	for i, ev := range seq.Events() {
		symbol := ""
		if ev.ChordIndex >= 0 && ev.ChordIndex < len(chords) {
			symbol = chords[ev.ChordIndex].Symbol
		}
		fmt.Fprintf(w, "%d\t%s\t%g\t%s\t%g\n", i+1, symbol, ev.Start, ev.Degree, ev.Duration)
	}
	w.Flush()

	for _, warning := range seq.Warnings {
		fmt.Fprintf(&sb, "warning: %s\n", warning)
	}
	return sb.String()
}

// GetSupportedFormats returns the output formats Export understands
func GetSupportedFormats() []string {
	return []string{
		string(FormatMIDI),
		string(FormatJSON),
		string(FormatYAML),
		string(FormatText),
	}
}
