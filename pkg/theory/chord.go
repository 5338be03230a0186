package theory

import (
	"errors"
	"strconv"
	"strings"
)

// ErrUnknownSymbol is reported for chord tokens the resolver cannot decode
var ErrUnknownSymbol = errors.New("unknown chord symbol")

// Quality is the diatonic chord quality decoded from a symbol
type Quality int

const (
	QualityMajor Quality = iota
	QualityMinor
	QualityDominant7
	QualityMajor7
)

func (q Quality) String() string {
	switch q {
	case QualityMinor:
		return "minor"
	case QualityDominant7:
		return "7"
	case QualityMajor7:
		return "maj7"
	default:
		return "major"
	}
}

// MarshalText encodes the quality by name
func (q Quality) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// Degree offsets from the chord root, by quality. Dominant and major
// sevenths share the diatonic seventh; the difference is chromatic.
var qualityOffsets = map[Quality][]int{
	QualityMajor:     {0, 2, 4},
	QualityMinor:     {0, 1, 4},
	// TODO: switch to {0, 2, 4, 5} with the V7 generator test if the r+5 dominant shape is confirmed
	QualityDominant7: {0, 2, 4, 6},
	QualityMajor7:    {0, 2, 4, 6},
}

var numerals = map[string]int{
	"i":   1,
	"ii":  2,
	"iii": 3,
	"iv":  4,
	"v":   5,
	"vi":  6,
	"vii": 7,
}

// Chord is a decoded chord symbol
type Chord struct {
	Symbol  string  `json:"symbol"`
	Root    int     `json:"root"`
	Quality Quality `json:"quality"`
}

// ResolveChord decodes a roman-numeral token ("ii7", "V7", "Imaj7", "vi")
// or a bare numeric root ("1".."7"). When the root cannot be decoded the
// chord falls back to root 1 and ok is false; the quality is still derived
// from the token's suffix and case.
func ResolveChord(symbol string) (c Chord, ok bool) {
	token := strings.TrimSpace(symbol)
	c = Chord{Symbol: symbol, Root: 1, Quality: QualityMajor}

	if n, err := strconv.Atoi(token); err == nil {
		if n < 1 || n > DegreesPerScale {
			return c, false
		}
		c.Root = n
		return c, true
	}

	body := token
	switch {
	case strings.HasSuffix(strings.ToLower(body), "maj7"):
		body = body[:len(body)-len("maj7")]
		c.Quality = QualityMajor7
	case strings.HasSuffix(body, "7"):
		body = body[:len(body)-1]
		c.Quality = QualityDominant7
	case body != "" && body == strings.ToLower(body):
		c.Quality = QualityMinor
	}

	root, found := numerals[strings.ToLower(body)]
	if !found {
		return c, false
	}
	c.Root = root
	return c, true
}

// Tones returns the chord-tone degrees, root first
func (c Chord) Tones() []int {
	offsets := qualityOffsets[c.Quality]
	tones := make([]int, len(offsets))
	for i, off := range offsets {
		tones[i] = Wrap(c.Root + off)
	}
	return tones
}

// Triad returns the basic root/third/fifth degrees regardless of quality
func (c Chord) Triad() []int {
	return []int{c.Root, Wrap(c.Root + 2), Wrap(c.Root + 4)}
}

// ChordType describes a supported chord quality
type ChordType struct {
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Example string `json:"example"`
	Offsets []int  `json:"offsets"`
}

// ChordTypes lists the qualities the resolver understands
func ChordTypes() []ChordType {
	return []ChordType{
		{Name: "Major", Symbol: "", Example: "IV", Offsets: qualityOffsets[QualityMajor]},
		{Name: "Minor", Symbol: "(lowercase)", Example: "vi", Offsets: qualityOffsets[QualityMinor]},
		{Name: "Dominant 7th", Symbol: "7", Example: "V7", Offsets: qualityOffsets[QualityDominant7]},
		{Name: "Major 7th", Symbol: "maj7", Example: "Imaj7", Offsets: qualityOffsets[QualityMajor7]},
	}
}
