package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/james-see/seqgen/pkg/converter"
	"github.com/james-see/seqgen/pkg/generator"
	"github.com/james-see/seqgen/pkg/theory"
)

// maxUploadSize caps MIDI uploads for template extraction
const maxUploadSize = 4 << 20

// GenerateRequest is the body of /sequence/generate. Templates can be sent
// inline or referenced by preset ID; inline values win.
type GenerateRequest struct {
	Scale            *theory.Scale              `json:"scale,omitempty"`
	ScaleName        string                     `json:"scaleName,omitempty"`
	ChordProgression generator.ChordProgression `json:"chordProgression"`
	NoteTemplate     generator.NoteTemplate     `json:"noteTemplate"`
	RhythmTemplate   generator.RhythmTemplate   `json:"rhythmTemplate"`
	ProgressionID    string                     `json:"progressionId,omitempty"`
	NoteTemplateID   string                     `json:"noteTemplateId,omitempty"`
	RhythmTemplateID string                     `json:"rhythmTemplateId,omitempty"`
}

// MIDIRequest is the body of /sequence/midi
type MIDIRequest struct {
	GenerateRequest
	Key        string  `json:"key,omitempty"`
	Octave     *int    `json:"octave,omitempty"`
	Tempo      float64 `json:"tempo,omitempty"`
	ChordTrack bool    `json:"chordTrack,omitempty"`
}

// FallbackRequest is the body of /sequence/fallback
type FallbackRequest struct {
	Scale            *theory.Scale              `json:"scale,omitempty"`
	ScaleName        string                     `json:"scaleName,omitempty"`
	ChordProgression generator.ChordProgression `json:"chordProgression"`
	ProgressionID    string                     `json:"progressionId,omitempty"`
	Probabilities    []generator.WeightedDegree `json:"probabilities"`
	Seed             *int64                     `json:"seed,omitempty"`
}

// TransformRequest is the body of /sequence/transform
type TransformRequest struct {
	Sequence generator.NoteSequence `json:"sequence"`
	Type     generator.TransformType `json:"type"`
	Value    int                     `json:"value,omitempty"`
}

// handleGenerate godoc
// @Summary Generate a sequence
// @Description Expands a chord progression with a note and a rhythm template
// @Tags sequence
// @Accept json
// @Produce json
// @Param request body GenerateRequest true "Generation input"
// @Success 200 {object} generator.NoteSequence
// @Failure 400 {object} map[string]string
// @Router /api/v1/sequence/generate [post]
func (s *Server) handleGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	seq, _, err := s.generate(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, seq)
}

// handleFallback godoc
// @Summary Generate a weighted random sequence
// @Description Draws scale degrees from a probability table, favouring chord tones
// @Tags sequence
// @Accept json
// @Produce json
// @Param request body FallbackRequest true "Fallback input"
// @Success 200 {object} generator.NoteSequence
// @Failure 400 {object} map[string]string
// @Router /api/v1/sequence/fallback [post]
func (s *Server) handleFallback(c *gin.Context) {
	var req FallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	scale, err := s.scale(req.Scale, req.ScaleName)
	if err != nil {
		respondError(c, err)
		return
	}
	prog, err := s.progression(req.ChordProgression, req.ProgressionID)
	if err != nil {
		respondError(c, err)
		return
	}

	var rng generator.Rand
	if req.Seed != nil {
		rng = generator.NewRand(*req.Seed)
	}

	seq, err := generator.GenerateFallback(scale, prog, req.Probabilities, rng)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, seq)
}

// handleMIDI godoc
// @Summary Generate a sequence as MIDI
// @Description Generates a sequence and renders it to a Standard MIDI File
// @Tags sequence
// @Accept json
// @Produce audio/midi
// @Param request body MIDIRequest true "Generation and rendering input"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/sequence/midi [post]
func (s *Server) handleMIDI(c *gin.Context) {
	var req MIDIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	seq, scale, err := s.generate(req.GenerateRequest)
	if err != nil {
		respondError(c, err)
		return
	}

	keyName := req.Key
	if keyName == "" {
		keyName = s.cfg.DefaultKey
	}
	key, err := theory.ParseKey(keyName)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	octave := s.cfg.DefaultOctave
	if req.Octave != nil {
		octave = *req.Octave
	}

	renderer := converter.NewMIDIRenderer()
	renderer.Tempo = s.cfg.Tempo
	if req.Tempo > 0 {
		renderer.Tempo = req.Tempo
	}
	renderer.ChordTrack = req.ChordTrack

	data, err := renderer.Render(seq, scale, key, octave)
	if err != nil {
		respondError(c, err)
		return
	}

	if len(seq.Warnings) > 0 {
		c.Header("X-Seqgen-Warnings", strconv.Itoa(len(seq.Warnings)))
	}
	c.Header("Content-Disposition", "attachment; filename=sequence.mid")
	c.Data(http.StatusOK, "audio/midi", data)
}

// handleTransform godoc
// @Summary Transform a sequence
// @Description Reverses, inverts or transposes a generated sequence
// @Tags sequence
// @Accept json
// @Produce json
// @Param request body TransformRequest true "Sequence and transform"
// @Success 200 {object} generator.NoteSequence
// @Failure 400 {object} map[string]string
// @Router /api/v1/sequence/transform [post]
func (s *Server) handleTransform(c *gin.Context) {
	var req TransformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	out, err := generator.Transform(&req.Sequence, generator.TransformOptions{Type: req.Type, Value: req.Value})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// handleExtract godoc
// @Summary Extract templates from MIDI
// @Description Upload a MIDI file and receive the note and rhythm templates it implies
// @Tags templates
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file"
// @Param key formData string false "Key of the performance (default: server key)"
// @Param scale formData string false "Scale name (default: server scale)"
// @Param quantize formData number false "Grid in beats, 0 to disable"
// @Success 200 {object} converter.Extracted
// @Failure 400 {object} map[string]string
// @Router /api/v1/templates/extract [post]
func (s *Server) handleExtract(c *gin.Context) {
	// Get uploaded file
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		badRequest(c, "No file uploaded")
		return
	}
	defer func() { _ = file.Close() }()

	// Read file content
	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		badRequest(c, "Failed to read file")
		return
	}
	if len(data) > maxUploadSize {
		badRequest(c, "File too large")
		return
	}
	if converter.DetectFormatFromContent(data) != converter.FormatMIDI {
		badRequest(c, fmt.Sprintf("%s is not a MIDI file", filepath.Base(header.Filename)))
		return
	}

	key, err := theory.ParseKey(c.DefaultPostForm("key", s.cfg.DefaultKey))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	scale, err := s.scale(nil, c.PostForm("scale"))
	if err != nil {
		respondError(c, err)
		return
	}
	quantize, err := strconv.ParseFloat(c.DefaultPostForm("quantize", "0"), 64)
	if err != nil || quantize < 0 {
		badRequest(c, "quantize must be a non-negative number")
		return
	}

	rec, err := converter.ParseMIDI(data)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	extracted, err := converter.ExtractTemplates(rec, scale, key, quantize)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	name := strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	extracted.NoteTemplate.Name = name
	extracted.RhythmTemplate.Name = name
	c.JSON(http.StatusOK, extracted)
}

// generate resolves presets and runs the deterministic generator
func (s *Server) generate(req GenerateRequest) (*generator.NoteSequence, theory.Scale, error) {
	scale, err := s.scale(req.Scale, req.ScaleName)
	if err != nil {
		return nil, scale, err
	}
	prog, err := s.progression(req.ChordProgression, req.ProgressionID)
	if err != nil {
		return nil, scale, err
	}

	note := req.NoteTemplate
	if len(note.ScaleDegrees) == 0 && req.NoteTemplateID != "" {
		t, ok := s.lib.NoteTemplate(req.NoteTemplateID)
		if !ok {
			return nil, scale, &generator.ValidationError{Field: "noteTemplateId", Reason: "unknown note template " + req.NoteTemplateID}
		}
		note = t
	}

	rhythm := req.RhythmTemplate
	if len(rhythm.Durations) == 0 && req.RhythmTemplateID != "" {
		t, ok := s.lib.RhythmTemplate(req.RhythmTemplateID)
		if !ok {
			return nil, scale, &generator.ValidationError{Field: "rhythmTemplateId", Reason: "unknown rhythm template " + req.RhythmTemplateID}
		}
		rhythm = t
	}

	seq, err := generator.Generate(scale, prog, note, rhythm)
	if err != nil {
		return nil, scale, err
	}
	seq.Warnings = append(seq.Warnings, generator.TemplateWarnings(note)...)
	return seq, scale, nil
}

func (s *Server) scale(inline *theory.Scale, name string) (theory.Scale, error) {
	if inline != nil {
		return *inline, generator.ValidateScale(*inline)
	}
	if name == "" {
		name = s.cfg.DefaultScale
	}
	scale, ok := theory.ScaleByName(name)
	if !ok {
		return scale, &generator.ValidationError{Field: "scaleName", Reason: "unknown scale " + name}
	}
	return scale, nil
}

func (s *Server) progression(inline generator.ChordProgression, id string) (generator.ChordProgression, error) {
	if len(inline.Chords) > 0 || id == "" {
		return inline, nil
	}
	p, ok := s.lib.Progression(id)
	if !ok {
		return p, &generator.ValidationError{Field: "progressionId", Reason: "unknown progression " + id}
	}
	return p, nil
}
