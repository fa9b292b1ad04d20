package frameprocessing

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"yolo-webcam-go/internal/config"
	"yolo-webcam-go/internal/helpers"
	"yolo-webcam-go/internal/labels"
	"yolo-webcam-go/internal/models"
)

// labelDigits are drawn by every label through the confidence suffix
const labelDigits = "0123456789. "

// AnnotatorOptions controls how boxes and labels look
type AnnotatorOptions struct {
	Color        color.RGBA
	FontSize     float64
	LabelOffsetY int
	Thickness    int
	DrawOrder    string
}

// DefaultAnnotatorOptions matches the stock magenta box with a 24px label 25px above it
func DefaultAnnotatorOptions() AnnotatorOptions {
	return AnnotatorOptions{
		Color:        color.RGBA{R: 255, G: 0, B: 255, A: 255},
		FontSize:     24,
		LabelOffsetY: 25,
		Thickness:    2,
		DrawOrder:    config.DrawOrderBoxFirst,
	}
}

// AnnotatorOptionsFromConfig builds options from the worker config
func AnnotatorOptionsFromConfig(cfg *config.Config) (AnnotatorOptions, error) {
	c, err := parseHexColor(cfg.AnnotationColor)
	if err != nil {
		return AnnotatorOptions{}, fmt.Errorf("%w: ANNOTATION_COLOR: %v", config.ErrInvalid, err)
	}
	return AnnotatorOptions{
		Color:        c,
		FontSize:     cfg.FontSize,
		LabelOffsetY: cfg.LabelOffsetY,
		Thickness:    cfg.BoxThickness,
		DrawOrder:    cfg.DrawOrder,
	}, nil
}

// RequiredRunes lists every rune a label drawn from table can contain
func RequiredRunes(table *labels.Table) []rune {
	runes := table.Runes()
	seen := make(map[rune]bool, len(runes))
	for _, r := range runes {
		seen[r] = true
	}
	for _, r := range labelDigits {
		if !seen[r] {
			seen[r] = true
			runes = append(runes, r)
		}
	}
	return runes
}

// FormatLabel renders the text drawn above a box
func FormatLabel(name string, confidence float32) string {
	return fmt.Sprintf("%s %.2f", name, confidence)
}

// Annotator draws boxes and localized labels onto BGR24 frames in place
type Annotator struct {
	table    *labels.Table
	typeface *Typeface
	opts     AnnotatorOptions

	mu   sync.Mutex // guards face
	face font.Face
}

// NewAnnotator binds a label table and typeface. A nil typeface means the embedded fallback.
func NewAnnotator(table *labels.Table, typeface *Typeface, opts AnnotatorOptions) *Annotator {
	if typeface == nil {
		typeface = AcquireTypeface(nil, RequiredRunes(table))
	}
	return &Annotator{
		table:    table,
		typeface: typeface,
		opts:     opts,
		face:     typeface.Face(opts.FontSize),
	}
}

// Labels returns the label table the annotator resolves class ids with
func (a *Annotator) Labels() *labels.Table {
	return a.table
}

// Typeface returns the font used for labels
func (a *Annotator) Typeface() *Typeface {
	return a.typeface
}

// Annotate draws det onto frame using the configured draw order and returns the same frame.
func (a *Annotator) Annotate(frame *models.RawFrame, det models.Detection) (*models.RawFrame, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	name, err := a.table.Lookup(det.ClassID)
	if err != nil {
		return nil, err
	}
	a.draw(frame, det, FormatLabel(name, det.Confidence), a.opts.DrawOrder)
	return frame, nil
}

func (a *Annotator) draw(frame *models.RawFrame, det models.Detection, text, order string) {
	if order == config.DrawOrderLabelFirst {
		a.drawLabel(frame, text, det.BBox.X1, det.BBox.Y1-a.opts.LabelOffsetY)
		drawRectangle(frame, det.BBox, a.opts.Color, a.opts.Thickness)
		return
	}
	drawRectangle(frame, det.BBox, a.opts.Color, a.opts.Thickness)
	a.drawLabel(frame, text, det.BBox.X1, det.BBox.Y1-a.opts.LabelOffsetY)
}

// drawLabel draws text with its top-left corner at (x, y). Only the pixels under the
// text bounds are converted to RGBA and back.
func (a *Annotator) drawLabel(frame *models.RawFrame, text string, x, y int) {
	text = a.typeface.Renderable(text)

	a.mu.Lock()
	defer a.mu.Unlock()

	baseline := y + a.face.Metrics().Ascent.Ceil()
	bounds, _ := font.BoundString(a.face, text)
	region := image.Rect(
		x+bounds.Min.X.Floor(), baseline+bounds.Min.Y.Floor(),
		x+bounds.Max.X.Ceil(), baseline+bounds.Max.Y.Ceil(),
	).Inset(-2).Intersect(image.Rect(0, 0, frame.Width, frame.Height))
	if region.Empty() {
		return
	}

	rgba := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	helpers.CopyBGRToRGBA(frame, region, rgba)

	dc := gg.NewContextForRGBA(rgba)
	dc.SetFontFace(a.face)
	dc.SetColor(a.opts.Color)
	dc.DrawString(text, float64(x-region.Min.X), float64(baseline-region.Min.Y))

	helpers.CopyRGBAToBGR(rgba, frame, region)
}

// drawRectangle strokes an unfilled box with corners inclusive, growing the stroke inward.
// Every edge is clipped to the frame before it is walked, so cost is bounded by the frame size.
func drawRectangle(frame *models.RawFrame, b models.BBox, c color.RGBA, thickness int) {
	for t := 0; t < thickness; t++ {
		x1, y1, x2, y2 := b.X1+t, b.Y1+t, b.X2-t, b.Y2-t
		if x1 > x2 || y1 > y2 {
			return
		}
		drawHLine(frame, x1, x2, y1, c)
		drawHLine(frame, x1, x2, y2, c)
		drawVLine(frame, x1, y1, y2, c)
		drawVLine(frame, x2, y1, y2, c)
	}
}

func drawHLine(frame *models.RawFrame, x1, x2, y int, c color.RGBA) {
	if y < 0 || y >= frame.Height {
		return
	}
	for x := max(x1, 0); x <= min(x2, frame.Width-1); x++ {
		setPixel(frame, x, y, c)
	}
}

func drawVLine(frame *models.RawFrame, x, y1, y2 int, c color.RGBA) {
	if x < 0 || x >= frame.Width {
		return
	}
	for y := max(y1, 0); y <= min(y2, frame.Height-1); y++ {
		setPixel(frame, x, y, c)
	}
}

func setPixel(frame *models.RawFrame, x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= frame.Width || y >= frame.Height {
		return
	}
	off := (y*frame.Width + x) * 3
	frame.Data[off] = c.B
	frame.Data[off+1] = c.G
	frame.Data[off+2] = c.R
}

// parseHexColor converts a color string like "#RRGGBB" to color.RGBA
func parseHexColor(s string) (color.RGBA, error) {
	var c color.RGBA
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return c, fmt.Errorf("invalid color length: %s", s)
	}
	r, err := strconv.ParseUint(s[0:2], 16, 8)
	if err != nil {
		return c, err
	}
	g, err := strconv.ParseUint(s[2:4], 16, 8)
	if err != nil {
		return c, err
	}
	b, err := strconv.ParseUint(s[4:6], 16, 8)
	if err != nil {
		return c, err
	}
	c = color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
	return c, nil
}
