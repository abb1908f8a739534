package sink

import (
	"image/color"
	"io"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/matzehuels/archdiagram/pkg/canvas"
	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/fonts"
)

// DefaultMaxPixels bounds raster output to keep a mistyped DPI from
// allocating gigabytes.
const DefaultMaxPixels = 200_000_000

// PNGOption configures PNG rendering.
type PNGOption func(*PNG)

// WithMaxPixels overrides DefaultMaxPixels.
func WithMaxPixels(n int) PNGOption {
	return func(p *PNG) { p.maxPixels = n }
}

// PNG rasterizes drawings with gogpu/gg.
type PNG struct {
	maxPixels int
}

// NewPNG returns a PNG encoder.
func NewPNG(opts ...PNGOption) *PNG {
	p := &PNG{maxPixels: DefaultMaxPixels}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Format implements canvas.Encoder.
func (*PNG) Format() string { return FormatPNG }

// Encode implements canvas.Encoder.
func (p *PNG) Encode(w io.Writer, d *canvas.Drawing, opts canvas.EncodeOptions) error {
	pw, ph := d.PixelSize(opts.DPI)
	if pw <= 0 || ph <= 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "raster size %dx%d is empty", pw, ph)
	}
	if p.maxPixels > 0 && pw*ph > p.maxPixels {
		return errors.New(errors.ErrCodeInvalidGeometry,
			"raster size %dx%d exceeds the %d pixel limit; lower the DPI", pw, ph, p.maxPixels)
	}

	dc := gg.NewContext(pw, ph)
	defer dc.Close()

	r := &rasterizer{
		dc:     dc,
		dpi:    opts.DPI,
		height: d.Height,
		faces:  make(map[faceKey]text.Face),
	}
	dc.ClearWithColor(straight(d.Background, 1))
	for _, op := range d.Ops {
		if err := r.draw(op); err != nil {
			return err
		}
	}
	if err := dc.EncodePNG(w); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "encode png")
	}
	return nil
}

type faceKey struct {
	style fonts.Style
	px    float64
}

type rasterizer struct {
	dc     *gg.Context
	dpi    float64
	height float64
	faces  map[faceKey]text.Face
}

func (r *rasterizer) x(v float64) float64  { return v * r.dpi }
func (r *rasterizer) y(v float64) float64  { return (r.height - v) * r.dpi }
func (r *rasterizer) pt(v float64) float64 { return canvas.PointsToPixels(v, r.dpi) }

func (r *rasterizer) draw(op canvas.Op) error {
	switch op := op.(type) {
	case *canvas.RectOp:
		return r.rect(op)
	case *canvas.TextOp:
		return r.text(op)
	case *canvas.LineOp:
		return r.line(op)
	case *canvas.HeadOp:
		return r.head(op)
	}
	return errors.New(errors.ErrCodeUnsupported, "png: unsupported operation %T", op)
}

func (r *rasterizer) rectPath(op *canvas.RectOp) {
	x, y := r.x(op.X), r.y(op.Y+op.H)
	w, h := op.W*r.dpi, op.H*r.dpi
	if op.Radius > 0 {
		r.dc.DrawRoundedRectangle(x, y, w, h, op.Radius*r.dpi)
		return
	}
	r.dc.DrawRectangle(x, y, w, h)
}

func (r *rasterizer) rect(op *canvas.RectOp) error {
	r.dc.SetRGBA(rgba(op.Fill, op.Opacity))
	r.rectPath(op)
	if err := r.dc.Fill(); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "fill rectangle")
	}
	if op.StrokeWidth <= 0 {
		return nil
	}
	r.dc.SetStroke(gg.DefaultStroke().WithWidth(r.pt(op.StrokeWidth)).WithJoin(gg.LineJoinRound))
	r.dc.SetRGBA(rgba(op.Stroke, op.Opacity))
	r.rectPath(op)
	if err := r.dc.Stroke(); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "stroke rectangle")
	}
	return nil
}

func (r *rasterizer) line(op *canvas.LineOp) error {
	stroke := gg.DefaultStroke().WithWidth(r.pt(op.Width)).WithCap(gg.LineCapButt)
	if op.Dashed {
		pattern := canvas.DashPattern(op.Width)
		for i := range pattern {
			pattern[i] = r.pt(pattern[i])
		}
		stroke = stroke.WithDashPattern(pattern...)
	}
	r.dc.SetStroke(stroke)
	r.dc.SetRGBA(rgba(op.Color, 1))
	r.dc.MoveTo(r.x(op.From.X), r.y(op.From.Y))
	if op.Curved {
		r.dc.QuadraticTo(r.x(op.Control.X), r.y(op.Control.Y), r.x(op.To.X), r.y(op.To.Y))
	} else {
		r.dc.LineTo(r.x(op.To.X), r.y(op.To.Y))
	}
	if err := r.dc.Stroke(); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "stroke line")
	}
	return nil
}

func (r *rasterizer) head(op *canvas.HeadOp) error {
	r.dc.SetStroke(gg.RoundStroke().WithWidth(r.pt(op.Width)))
	r.dc.SetRGBA(rgba(op.Color, 1))
	r.dc.MoveTo(r.x(op.Left.X), r.y(op.Left.Y))
	r.dc.LineTo(r.x(op.Tip.X), r.y(op.Tip.Y))
	r.dc.LineTo(r.x(op.Right.X), r.y(op.Right.Y))
	if err := r.dc.Stroke(); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "stroke arrowhead")
	}
	return nil
}

func (r *rasterizer) face(style fonts.Style, px float64) (text.Face, error) {
	key := faceKey{style, px}
	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	f, err := fonts.Face(style, px)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load %s font", style)
	}
	r.faces[key] = f
	return f, nil
}

func (r *rasterizer) text(op *canvas.TextOp) error {
	if op.Text == "" {
		return nil
	}
	face, err := r.face(fonts.StyleOf(op.Bold, op.Italic), r.pt(op.Size))
	if err != nil {
		return err
	}
	m := face.Metrics()
	x := r.x(op.X) - face.Advance(op.Text)*op.HAlign.Anchor()
	y := r.y(op.Y)
	switch op.VAlign {
	case canvas.VAlignTop:
		y += m.Ascent
	case canvas.VAlignBottom:
		y -= m.Descent
	case canvas.VAlignCenter:
		y += (m.Ascent - m.Descent) / 2
	}
	r.dc.SetFont(face)
	r.dc.SetRGBA(rgba(op.Color, 1))
	r.dc.DrawString(op.Text, x, y)
	return nil
}

// rgba splits c into straight-alpha components with the extra opacity applied.
func rgba(c color.NRGBA, opacity float64) (r, g, b, a float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255 * opacity
}

func straight(c color.NRGBA, opacity float64) gg.RGBA {
	r, g, b, a := rgba(c, opacity)
	return gg.RGBA{R: r, G: g, B: b, A: a}
}
