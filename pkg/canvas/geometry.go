package canvas

import (
	"fmt"
	"math"
	"strings"
)

// Point is a position in canvas units.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale multiplies both components by k.
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Len returns the Euclidean length of p as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Mid returns the midpoint between p and q.
func (p Point) Mid(q Point) Point { return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2} }

func (p Point) finite() bool { return finite(p.X) && finite(p.Y) }

func (p Point) String() string { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }

// HAlign is the horizontal anchor of a label relative to its position.
// The zero value centers the text.
type HAlign int

const (
	HAlignCenter HAlign = iota
	HAlignLeft
	HAlignRight
)

// Anchor returns the fraction of the text width that lies left of the anchor.
func (a HAlign) Anchor() float64 {
	switch a {
	case HAlignLeft:
		return 0
	case HAlignRight:
		return 1
	default:
		return 0.5
	}
}

func (a HAlign) String() string {
	switch a {
	case HAlignLeft:
		return "left"
	case HAlignRight:
		return "right"
	default:
		return "center"
	}
}

// ParseHAlign parses "left", "center" or "right". Empty means center.
func ParseHAlign(s string) (HAlign, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "center", "centre":
		return HAlignCenter, nil
	case "left":
		return HAlignLeft, nil
	case "right":
		return HAlignRight, nil
	}
	return HAlignCenter, fmt.Errorf("unknown horizontal alignment %q", s)
}

// VAlign is the vertical anchor of a label relative to its position.
// The zero value centers the text on the line box.
type VAlign int

const (
	VAlignCenter VAlign = iota
	VAlignTop
	VAlignBottom
	VAlignBaseline
)

func (a VAlign) String() string {
	switch a {
	case VAlignTop:
		return "top"
	case VAlignBottom:
		return "bottom"
	case VAlignBaseline:
		return "baseline"
	default:
		return "center"
	}
}

// ParseVAlign parses "top", "center", "bottom" or "baseline". Empty means center.
func ParseVAlign(s string) (VAlign, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "center", "centre", "middle":
		return VAlignCenter, nil
	case "top":
		return VAlignTop, nil
	case "bottom":
		return VAlignBottom, nil
	case "baseline":
		return VAlignBaseline, nil
	}
	return VAlignCenter, fmt.Errorf("unknown vertical alignment %q", s)
}

// LineStyle selects solid or dashed strokes.
type LineStyle int

const (
	Solid LineStyle = iota
	Dashed
)

func (s LineStyle) String() string {
	if s == Dashed {
		return "dashed"
	}
	return "solid"
}

// ParseLineStyle parses "solid" or "dashed". Empty means solid.
func ParseLineStyle(s string) (LineStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "solid":
		return Solid, nil
	case "dashed", "dash", "--":
		return Dashed, nil
	}
	return Solid, fmt.Errorf("unknown line style %q", s)
}

// DashPattern returns the on/off lengths, in points, for a dashed stroke of
// the given width.
func DashPattern(width float64) []float64 {
	if width <= 0 {
		width = 1
	}
	return []float64{3.7 * width, 1.6 * width}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
