package frameprocessing

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/text/unicode/norm"
)

const embeddedFontName = "embedded:DejaVuSans-Bold"

// dejaVuSansBold covers Latin Extended Additional, so every Vietnamese label renders precomposed
//
//go:embed fonts/DejaVuSans-Bold.ttf
var dejaVuSansBold []byte

// FontSource is one candidate in the font acquisition chain
type FontSource struct {
	Name string
	Load func() ([]byte, error)
}

// FileFont reads a TrueType font from disk
func FileFont(path string) FontSource {
	return FontSource{
		Name: path,
		Load: func() ([]byte, error) { return os.ReadFile(path) },
	}
}

// MemoryFont wraps an in-memory TrueType font
func MemoryFont(name string, ttf []byte) FontSource {
	return FontSource{
		Name: name,
		Load: func() ([]byte, error) { return ttf, nil },
	}
}

// FileFonts turns configured font paths into sources, keeping their order
func FileFonts(paths []string) []FontSource {
	sources := make([]FontSource, 0, len(paths))
	for _, p := range paths {
		sources = append(sources, FileFont(p))
	}
	return sources
}

// Typeface is a parsed TrueType font plus what it can and cannot render
type Typeface struct {
	Name     string
	Fallback bool
	Missing  []rune // runes the typeface renders as the missing-glyph box

	font *truetype.Font
}

var (
	embeddedOnce sync.Once
	embeddedFont *truetype.Font
)

func embeddedTypeface() *Typeface {
	embeddedOnce.Do(func() {
		f, err := truetype.Parse(dejaVuSansBold)
		if err != nil {
			panic(err)
		}
		embeddedFont = f
	})
	return &Typeface{Name: embeddedFontName, Fallback: true, font: embeddedFont}
}

func loadTypeface(src FontSource) (*Typeface, error) {
	data, err := src.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to read font %s: %w", src.Name, err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", src.Name, err)
	}
	return &Typeface{Name: src.Name, font: f}, nil
}

// AcquireTypeface walks sources in order and returns the first one that covers every required rune.
// When none qualifies the embedded DejaVu Sans Bold is used. It never fails.
func AcquireTypeface(sources []FontSource, required []rune) *Typeface {
	for _, src := range sources {
		tf, err := loadTypeface(src)
		if err != nil {
			log.Warn().Err(err).Str("font", src.Name).Msg("⚠️ Font unavailable, trying next candidate")
			continue
		}
		if missing := tf.missing(required); len(missing) > 0 {
			log.Warn().Str("font", src.Name).Str("missing", string(missing)).Msg("⚠️ Font lacks glyphs for label text, trying next candidate")
			continue
		}
		log.Info().Str("font", src.Name).Msg("🔤 Label font loaded")
		return tf
	}

	tf := embeddedTypeface()
	tf.Missing = tf.missing(required)
	event := log.Warn().Str("font", tf.Name).Int("candidates", len(sources))
	if len(tf.Missing) > 0 {
		event = event.Str("missing", string(tf.Missing))
	}
	event.Msg("⚠️ Using embedded fallback font for labels")
	return tf
}

// Face returns a new face at size pixels. Faces cache glyphs and are not safe for concurrent use.
func (t *Typeface) Face(size float64) font.Face {
	return truetype.NewFace(t.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func (t *Typeface) has(r rune) bool {
	return t.font.Index(r) != 0
}

func (t *Typeface) hasAll(s string) bool {
	for _, r := range s {
		if !t.has(r) {
			return false
		}
	}
	return true
}

// decomposed returns the NFD form of r when it differs from r and every part has a glyph
func (t *Typeface) decomposed(r rune) (string, bool) {
	d := norm.NFD.String(string(r))
	if d == string(r) || !t.hasAll(d) {
		return "", false
	}
	return d, true
}

// Covers reports whether r can be drawn precomposed or decomposed
func (t *Typeface) Covers(r rune) bool {
	if t.has(r) {
		return true
	}
	_, ok := t.decomposed(r)
	return ok
}

func (t *Typeface) missing(required []rune) []rune {
	var out []rune
	for _, r := range required {
		if !t.Covers(r) {
			out = append(out, r)
		}
	}
	return out
}

// Renderable rewrites s so that every rune uses glyphs the typeface has.
// Precomposed glyphs win, then the canonical decomposition. Anything else is left untouched.
func (t *Typeface) Renderable(s string) string {
	var b strings.Builder
	for _, r := range norm.NFC.String(s) {
		if t.has(r) {
			b.WriteRune(r)
			continue
		}
		if d, ok := t.decomposed(r); ok {
			b.WriteString(d)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
