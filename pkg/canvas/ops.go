package canvas

import (
	"image/color"
	"math"
)

// Op is one resolved drawing operation. Backends switch on the concrete
// type: *RectOp, *TextOp, *LineOp or *HeadOp.
type Op interface {
	op()
}

// RectOp fills and optionally strokes a rounded rectangle.
type RectOp struct {
	X, Y, W, H  float64 // canvas units, (X, Y) bottom-left
	Radius      float64
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64 // points; 0 means no stroke
	Opacity     float64 // applied to fill and stroke
}

// TextOp draws one line of text.
type TextOp struct {
	X, Y   float64
	Text   string
	Size   float64 // points
	Color  color.NRGBA
	Bold   bool
	Italic bool
	HAlign HAlign
	VAlign VAlign
}

// LineOp strokes a straight segment, or a quadratic curve when Curved is set.
type LineOp struct {
	From, To Point
	Control  Point
	Curved   bool
	Color    color.NRGBA
	Width    float64 // points
	Dashed   bool
}

// Midpoint returns the point halfway along the line. For a curved line it
// is the apex of the quadratic arc, not the chord midpoint.
func (l *LineOp) Midpoint() Point {
	if !l.Curved {
		return l.From.Mid(l.To)
	}
	return Point{
		X: 0.25*l.From.X + 0.5*l.Control.X + 0.25*l.To.X,
		Y: 0.25*l.From.Y + 0.5*l.Control.Y + 0.25*l.To.Y,
	}
}

// HeadOp strokes an open arrowhead: two wings meeting at Tip.
type HeadOp struct {
	Tip         Point
	Left, Right Point
	Color       color.NRGBA
	Width       float64 // points
}

func (*RectOp) op() {}
func (*TextOp) op() {}
func (*LineOp) op() {}
func (*HeadOp) op() {}

// Drawing is the sealed, resolution-independent content of a canvas.
type Drawing struct {
	Width, Height float64 // canvas units
	Background    color.NRGBA
	Ops           []Op
}

// PixelSize returns the raster dimensions at the given resolution.
func (d *Drawing) PixelSize(dpi float64) (w, h int) {
	return int(math.Round(d.Width * dpi)), int(math.Round(d.Height * dpi))
}

// Count tallies operations by kind, keyed "rect", "text", "line", "head".
func (d *Drawing) Count() map[string]int {
	out := make(map[string]int, 4)
	for _, op := range d.Ops {
		switch op.(type) {
		case *RectOp:
			out["rect"]++
		case *TextOp:
			out["text"]++
		case *LineOp:
			out["line"]++
		case *HeadOp:
			out["head"]++
		}
	}
	return out
}

// PointsToPixels converts a length in points to pixels at dpi.
func PointsToPixels(pt, dpi float64) float64 { return pt * dpi / 72 }
