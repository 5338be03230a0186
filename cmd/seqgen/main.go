// Package main is the entry point for the seqgen CLI
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/james-see/seqgen/pkg/api"
	"github.com/james-see/seqgen/pkg/config"
	"github.com/james-see/seqgen/pkg/converter"
	"github.com/james-see/seqgen/pkg/generator"
	"github.com/james-see/seqgen/pkg/library"
	"github.com/james-see/seqgen/pkg/theory"
	"github.com/james-see/seqgen/pkg/tui"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var cfg *config.Config

var (
	outputFile     string
	scaleName      string
	keyName        string
	octave         int
	tempo          float64
	templateDir    string
	progressionRef string
	noteTemplateID string
	rhythmID       string
	transformFlag  string
	chordTrack     bool
	weightsFlag    string
	seed           int64
	quantize       float64
	serverPort     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "seqgen",
	Short: "Generate melodic sequences from chord progressions and templates",
	Long: `seqgen expands a chord progression into a melody by walking a note
template (scale degrees) and a rhythm template (durations and rests) across
every chord.

Examples:
  seqgen generate -p ii-V-I -n arpeggio-up -r swing -o line.mid
  seqgen generate -p "I:4,vi:4,IV:4,V:4" --transform transpose:2
  seqgen fallback -p I-IV-V --weights "1:0.4,3:0.3,5:0.3" --seed 7
  seqgen extract riff.mid -o riff.yaml
  seqgen presets
  seqgen tui
  seqgen serve --port 8080`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a sequence from templates",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

var fallbackCmd = &cobra.Command{
	Use:   "fallback",
	Short: "Generate a weighted random sequence",
	Args:  cobra.NoArgs,
	RunE:  runFallback,
}

var extractCmd = &cobra.Command{
	Use:   "extract <input.mid>",
	Short: "Extract note and rhythm templates from a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List progressions, templates, scales and chord types",
	Args:  cobra.NoArgs,
	RunE:  runPresets,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Environment first so .env values become flag defaults
	_ = godotenv.Load()
	cfg = config.Load()

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&scaleName, "scale", "s", cfg.DefaultScale, "Scale name ("+strings.Join(theory.ScaleNames(), ", ")+")")
	rootCmd.PersistentFlags().StringVarP(&keyName, "key", "k", cfg.DefaultKey, "Key used for MIDI rendering and extraction")
	rootCmd.PersistentFlags().IntVar(&octave, "octave", cfg.DefaultOctave, "Octave of the tonic (C4 = 60)")
	rootCmd.PersistentFlags().Float64Var(&tempo, "tempo", cfg.Tempo, "Tempo in BPM")
	rootCmd.PersistentFlags().StringVar(&templateDir, "templates", cfg.TemplateDir, "Directory of extra YAML/JSON templates")

	// generate command
	generateCmd.Flags().StringVarP(&progressionRef, "progression", "p", library.DefaultProgression, "Progression preset or inline chords (ii7:4,V7:4)")
	generateCmd.Flags().StringVarP(&noteTemplateID, "notes", "n", library.DefaultNoteTemplate, "Note template ID")
	generateCmd.Flags().StringVarP(&rhythmID, "rhythm", "r", library.DefaultRhythmTemplate, "Rhythm template ID")
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (.mid, .json, .yaml, .txt); prints a table when empty")
	generateCmd.Flags().StringVar(&transformFlag, "transform", "", "Transform to apply: reverse, invert or transpose:N")
	generateCmd.Flags().BoolVar(&chordTrack, "chords", false, "Add a chord track to MIDI output")

	// fallback command
	fallbackCmd.Flags().StringVarP(&progressionRef, "progression", "p", library.DefaultProgression, "Progression preset or inline chords")
	fallbackCmd.Flags().StringVarP(&weightsFlag, "weights", "w", "", "Degree weights (1:0.4,3:0.3,5:0.3)")
	fallbackCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 picks one from the clock)")
	fallbackCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (.mid, .json, .yaml, .txt)")
	fallbackCmd.Flags().StringVar(&transformFlag, "transform", "", "Transform to apply: reverse, invert or transpose:N")
	fallbackCmd.Flags().BoolVar(&chordTrack, "chords", false, "Add a chord track to MIDI output")

	// extract command
	extractCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output template file (.yaml or .json); prints YAML when empty")
	extractCmd.Flags().Float64VarP(&quantize, "quantize", "q", 0.25, "Quantize grid in beats (0 disables)")

	// serve command
	serveCmd.Flags().StringVarP(&serverPort, "port", "p", cfg.Port, "Server port")

	// Add commands
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(fallbackCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadLibrary() (*library.Library, error) {
	lib := library.New()
	if templateDir != "" {
		if err := lib.LoadDir(templateDir); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

func getScale() (theory.Scale, error) {
	scale, ok := theory.ScaleByName(scaleName)
	if !ok {
		return scale, fmt.Errorf("unknown scale %q (available: %s)", scaleName, strings.Join(theory.ScaleNames(), ", "))
	}
	return scale, nil
}

func getConverter(scale theory.Scale) (*converter.Converter, error) {
	root, err := theory.ParseKey(keyName)
	if err != nil {
		return nil, err
	}
	conv := converter.New(scale, root, octave)
	conv.Renderer.Tempo = tempo
	conv.Renderer.ChordTrack = chordTrack
	return conv, nil
}

func parseTransform(arg string) (*generator.TransformOptions, error) {
	if arg == "" {
		return nil, nil
	}
	name, value, hasValue := strings.Cut(arg, ":")
	opts := &generator.TransformOptions{Type: generator.TransformType(strings.ToLower(name))}
	if hasValue {
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid transform value %q: %w", value, err)
		}
		opts.Value = n
	}
	return opts, nil
}

// writeSequence applies the requested transform and writes the result
func writeSequence(seq *generator.NoteSequence, scale theory.Scale) error {
	opts, err := parseTransform(transformFlag)
	if err != nil {
		return err
	}
	if opts != nil {
		if seq, err = generator.Transform(seq, *opts); err != nil {
			return err
		}
	}

	if outputFile == "" {
		fmt.Print(converter.Table(seq))
		return nil
	}

	conv, err := getConverter(scale)
	if err != nil {
		return err
	}
	if err := conv.ExportFile(seq, outputFile); err != nil {
		return err
	}
	fmt.Printf("Wrote %d notes (%g beats) -> %s\n", seq.Len(), seq.TotalDuration(), outputFile)
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	lib, err := loadLibrary()
	if err != nil {
		return err
	}
	scale, err := getScale()
	if err != nil {
		return err
	}

	prog, err := lib.ResolveProgression(progressionRef)
	if err != nil {
		return err
	}
	note, ok := lib.NoteTemplate(noteTemplateID)
	if !ok {
		return fmt.Errorf("unknown note template %q", noteTemplateID)
	}
	rhythm, ok := lib.RhythmTemplate(rhythmID)
	if !ok {
		return fmt.Errorf("unknown rhythm template %q", rhythmID)
	}

	for _, w := range generator.TemplateWarnings(note) {
		log.Printf("warning: %s", w)
	}

	seq, err := generator.Generate(scale, prog, note, rhythm)
	if err != nil {
		return err
	}
	return writeSequence(seq, scale)
}

func runFallback(cmd *cobra.Command, args []string) error {
	lib, err := loadLibrary()
	if err != nil {
		return err
	}
	scale, err := getScale()
	if err != nil {
		return err
	}

	prog, err := lib.ResolveProgression(progressionRef)
	if err != nil {
		return err
	}

	table := library.DefaultWeights()
	if weightsFlag != "" {
		if table, err = library.ParseWeights(weightsFlag); err != nil {
			return err
		}
	}

	var rng generator.Rand
	if seed != 0 {
		rng = generator.NewRand(seed)
	}

	seq, err := generator.GenerateFallback(scale, prog, table, rng)
	if err != nil {
		return err
	}
	return writeSequence(seq, scale)
}

func runExtract(cmd *cobra.Command, args []string) error {
	input := args[0]

	scale, err := getScale()
	if err != nil {
		return err
	}
	root, err := theory.ParseKey(keyName)
	if err != nil {
		return err
	}

	rec, err := converter.ParseMIDIFile(input)
	if err != nil {
		return err
	}
	extracted, err := converter.ExtractTemplates(rec, scale, root, quantize)
	if err != nil {
		return err
	}

	file := &library.File{
		NoteTemplates:   []generator.NoteTemplate{extracted.NoteTemplate},
		RhythmTemplates: []generator.RhythmTemplate{extracted.RhythmTemplate},
	}

	var data []byte
	switch converter.DetectFormat(outputFile) {
	case converter.FormatJSON:
		data, err = json.MarshalIndent(file, "", "  ")
	default:
		data, err = library.Encode(file)
	}
	if err != nil {
		return err
	}

	if outputFile == "" {
		fmt.Print(string(data))
		return nil
	}
	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return err
	}
	fmt.Printf("Extracted %d steps at %.1f BPM: %s -> %s\n", len(extracted.RhythmTemplate.Durations), extracted.Tempo, input, outputFile)
	return nil
}

func runPresets(cmd *cobra.Command, args []string) error {
	lib, err := loadLibrary()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "PROGRESSIONS")
	for _, p := range lib.Progressions() {
		chords := make([]string, len(p.Chords))
		for i, c := range p.Chords {
			chords[i] = fmt.Sprintf("%s:%g", c.Symbol, c.Duration)
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", p.ID, p.Name, strings.Join(chords, ","))
	}

	fmt.Fprintln(w, "\nNOTE TEMPLATES")
	for _, t := range lib.NoteTemplates() {
		degrees := make([]string, len(t.ScaleDegrees))
		for i, d := range t.ScaleDegrees {
			degrees[i] = strconv.Itoa(d)
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\tchordTones=%t\n", t.ID, t.Name, strings.Join(degrees, " "), t.Direction, t.Behavior, t.UseChordTones)
	}

	fmt.Fprintln(w, "\nRHYTHM TEMPLATES")
	for _, t := range lib.RhythmTemplates() {
		steps := make([]string, len(t.Durations))
		for i, d := range t.Durations {
			steps[i] = strconv.FormatFloat(d, 'g', -1, 64)
			if t.IsRest(i) {
				steps[i] = "r" + steps[i]
			}
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", t.ID, t.Name, strings.Join(steps, " "), t.Behavior)
	}

	fmt.Fprintln(w, "\nSCALES")
	for _, name := range theory.ScaleNames() {
		scale, _ := theory.ScaleByName(name)
		intervals := make([]string, len(scale.Intervals))
		for i, iv := range scale.Intervals {
			intervals[i] = strconv.Itoa(iv)
		}
		fmt.Fprintf(w, "  %s\t%s\n", name, strings.Join(intervals, " "))
	}

	fmt.Fprintln(w, "\nCHORD TYPES")
	for _, ct := range theory.ChordTypes() {
		fmt.Fprintf(w, "  %s\t%s\te.g. %s\t%v\n", ct.Name, ct.Symbol, ct.Example, ct.Offsets)
	}

	return w.Flush()
}

func runTUI(cmd *cobra.Command, args []string) error {
	lib, err := loadLibrary()
	if err != nil {
		return err
	}
	scale, err := getScale()
	if err != nil {
		return err
	}
	root, err := theory.ParseKey(keyName)
	if err != nil {
		return err
	}

	return tui.Run(lib, tui.Options{
		Scale:   scale,
		Key:     keyName,
		KeyRoot: root,
		Octave:  octave,
		Tempo:   tempo,
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	lib, err := loadLibrary()
	if err != nil {
		return err
	}

	serveCfg := *cfg
	serveCfg.Port = serverPort
	serveCfg.DefaultScale = scaleName
	serveCfg.DefaultKey = keyName
	serveCfg.DefaultOctave = octave
	serveCfg.Tempo = tempo

	flush, err := api.InitSentry(&serveCfg, version)
	if err != nil {
		log.Printf("Failed to initialize Sentry: %v", err)
	}
	defer flush()

	fmt.Printf("Starting seqgen API server on port %s...\n", serverPort)
	fmt.Printf("Swagger docs available at http://localhost:%s/swagger/index.html\n", serverPort)
	return api.StartServer(&serveCfg, lib)
}
