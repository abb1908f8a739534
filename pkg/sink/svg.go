package sink

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/archdiagram/pkg/canvas"
	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/fonts"
)

// SVGOption configures SVG rendering.
type SVGOption func(*SVG)

// WithTitle sets the document <title>.
func WithTitle(title string) SVGOption {
	return func(s *SVG) { s.title = title }
}

// WithFontFamily overrides the CSS font-family list.
func WithFontFamily(family string) SVGOption {
	return func(s *SVG) { s.family = family }
}

// SVG writes drawings as SVG. Coordinates are emitted in whole pixels at
// the requested DPI.
type SVG struct {
	title  string
	family string
}

// NewSVG returns an SVG encoder.
func NewSVG(opts ...SVGOption) *SVG {
	s := &SVG{family: fonts.FallbackFamily}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Format implements canvas.Encoder.
func (*SVG) Format() string { return FormatSVG }

// Encode implements canvas.Encoder.
func (s *SVG) Encode(w io.Writer, d *canvas.Drawing, opts canvas.EncodeOptions) error {
	pw, ph := d.PixelSize(opts.DPI)
	if pw <= 0 || ph <= 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "svg size %dx%d is empty", pw, ph)
	}
	bw := bufio.NewWriter(w)
	doc := svg.New(bw)
	doc.Start(pw, ph)
	if s.title != "" {
		doc.Title(s.title)
	}
	doc.Rect(0, 0, pw, ph, "fill:"+hex(d.Background)+fillOpacity(d.Background, 1))

	v := &vectorizer{doc: doc, dpi: opts.DPI, height: d.Height, family: s.family}
	for _, op := range d.Ops {
		if err := v.draw(op); err != nil {
			return err
		}
	}
	doc.End()
	if err := bw.Flush(); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "write svg")
	}
	return nil
}

type vectorizer struct {
	doc    *svg.SVG
	dpi    float64
	height float64
	family string
}

func (v *vectorizer) x(f float64) int { return int(math.Round(f * v.dpi)) }
func (v *vectorizer) y(f float64) int { return int(math.Round((v.height - f) * v.dpi)) }
func (v *vectorizer) n(f float64) int { return int(math.Round(f * v.dpi)) }

func (v *vectorizer) pt(f float64) string {
	return fmt.Sprintf("%.2f", canvas.PointsToPixels(f, v.dpi))
}

func (v *vectorizer) draw(op canvas.Op) error {
	switch op := op.(type) {
	case *canvas.RectOp:
		v.rect(op)
	case *canvas.TextOp:
		v.text(op)
	case *canvas.LineOp:
		v.line(op)
	case *canvas.HeadOp:
		v.head(op)
	default:
		return errors.New(errors.ErrCodeUnsupported, "svg: unsupported operation %T", op)
	}
	return nil
}

func (v *vectorizer) rect(op *canvas.RectOp) {
	style := "fill:" + hex(op.Fill) + fillOpacity(op.Fill, op.Opacity)
	if op.StrokeWidth > 0 {
		style += ";stroke:" + hex(op.Stroke) + ";stroke-width:" + v.pt(op.StrokeWidth) +
			";stroke-linejoin:round" + strokeOpacity(op.Stroke, op.Opacity)
	} else {
		style += ";stroke:none"
	}
	x, y, w, h := v.x(op.X), v.y(op.Y+op.H), v.n(op.W), v.n(op.H)
	if r := v.n(op.Radius); r > 0 {
		v.doc.Roundrect(x, y, w, h, r, r, style)
		return
	}
	v.doc.Rect(x, y, w, h, style)
}

func (v *vectorizer) line(op *canvas.LineOp) {
	style := "fill:none;stroke:" + hex(op.Color) + ";stroke-width:" + v.pt(op.Width) + strokeOpacity(op.Color, 1)
	if op.Dashed {
		pattern := canvas.DashPattern(op.Width)
		style += ";stroke-dasharray:" + v.pt(pattern[0]) + "," + v.pt(pattern[1])
	}
	if op.Curved {
		v.doc.Qbez(v.x(op.From.X), v.y(op.From.Y), v.x(op.Control.X), v.y(op.Control.Y), v.x(op.To.X), v.y(op.To.Y), style)
		return
	}
	v.doc.Line(v.x(op.From.X), v.y(op.From.Y), v.x(op.To.X), v.y(op.To.Y), style)
}

func (v *vectorizer) head(op *canvas.HeadOp) {
	xs := []int{v.x(op.Left.X), v.x(op.Tip.X), v.x(op.Right.X)}
	ys := []int{v.y(op.Left.Y), v.y(op.Tip.Y), v.y(op.Right.Y)}
	v.doc.Polyline(xs, ys, "fill:none;stroke:"+hex(op.Color)+";stroke-width:"+v.pt(op.Width)+
		";stroke-linecap:round;stroke-linejoin:round"+strokeOpacity(op.Color, 1))
}

func (v *vectorizer) text(op *canvas.TextOp) {
	if op.Text == "" {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "font-family:%s;font-size:%spx;fill:%s", v.family, v.pt(op.Size), hex(op.Color))
	b.WriteString(fillOpacity(op.Color, 1))
	b.WriteString(";text-anchor:" + anchor(op.HAlign))
	b.WriteString(";dominant-baseline:" + baseline(op.VAlign))
	if op.Bold {
		b.WriteString(";font-weight:bold")
	}
	if op.Italic {
		b.WriteString(";font-style:italic")
	}
	b.WriteString(";white-space:pre")
	v.doc.Text(v.x(op.X), v.y(op.Y), op.Text, b.String())
}

func anchor(a canvas.HAlign) string {
	switch a {
	case canvas.HAlignLeft:
		return "start"
	case canvas.HAlignRight:
		return "end"
	default:
		return "middle"
	}
}

func baseline(a canvas.VAlign) string {
	switch a {
	case canvas.VAlignTop:
		return "text-before-edge"
	case canvas.VAlignBottom:
		return "text-after-edge"
	case canvas.VAlignBaseline:
		return "alphabetic"
	default:
		return "central"
	}
}

func hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func alpha(c color.NRGBA, opacity float64) float64 {
	return float64(c.A) / 255 * opacity
}

func fillOpacity(c color.NRGBA, opacity float64) string {
	if a := alpha(c, opacity); a < 1 {
		return fmt.Sprintf(";fill-opacity:%.3f", a)
	}
	return ""
}

func strokeOpacity(c color.NRGBA, opacity float64) string {
	if a := alpha(c, opacity); a < 1 {
		return fmt.Sprintf(";stroke-opacity:%.3f", a)
	}
	return ""
}
