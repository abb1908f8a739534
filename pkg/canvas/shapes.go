package canvas

import (
	"math"
	"strings"

	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/palette"
)

// Defaults applied when a descriptor leaves a field at its zero value.
const (
	DefaultLabelSize      = 7.5  // points
	DefaultConnectorWidth = 1.2  // points
	DefaultConnectorLabel = 5.5  // points
	SectionOpacity        = 0.55 // section fills let the canvas show through
	SectionBorderWidth    = 1.5  // points
	SectionRadius         = 0.3
	SectionTitleSize      = 7.5 // points
)

// Section title inset from the top-left corner, in canvas units.
var sectionTitleInset = Point{X: 0.18, Y: 0.22}

// DefaultLabelOffset is where a connector label sits relative to the
// connector midpoint when no explicit position is given. For a curved
// connector the midpoint lies on the arc.
var DefaultLabelOffset = Point{X: 0, Y: 0.16}

// Panel is a filled, optionally bordered, optionally rounded rectangle.
// (X, Y) is the bottom-left corner. The zero Opacity draws an opaque fill,
// so a fully transparent panel is expressed by not drawing it. Every
// named role is resolved, including a Border with no BorderWidth.
type Panel struct {
	X, Y, W, H  float64
	Fill        palette.Role
	Border      palette.Role // empty: no outline
	BorderWidth float64      // points; 0 draws no outline
	Radius      float64      // corner radius in canvas units
	Opacity     float64      // fill opacity in [0, 1]; 0 is treated as opaque
}

// Validate checks the panel geometry. Colors are checked when drawn.
func (p Panel) Validate() error {
	if !finite(p.X) || !finite(p.Y) || !finite(p.W) || !finite(p.H) {
		return errors.New(errors.ErrCodeInvalidGeometry, "panel coordinates must be finite")
	}
	if p.W <= 0 || p.H <= 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "panel size must be positive, got %gx%g", p.W, p.H)
	}
	if p.Radius < 0 || !finite(p.Radius) {
		return errors.New(errors.ErrCodeInvalidGeometry, "panel radius must be non-negative, got %g", p.Radius)
	}
	if limit := math.Min(p.W, p.H) / 2; p.Radius > limit {
		return errors.New(errors.ErrCodeInvalidGeometry, "panel radius %g exceeds half the shorter side (%g)", p.Radius, limit)
	}
	if p.BorderWidth < 0 || !finite(p.BorderWidth) {
		return errors.New(errors.ErrCodeInvalidGeometry, "border width must be non-negative, got %g", p.BorderWidth)
	}
	if p.Opacity < 0 || p.Opacity > 1 || math.IsNaN(p.Opacity) {
		return errors.New(errors.ErrCodeInvalidGeometry, "opacity must be within [0, 1], got %g", p.Opacity)
	}
	return nil
}

// Top returns the y coordinate of the upper edge.
func (p Panel) Top() float64 { return p.Y + p.H }

// Center returns the center of the panel.
func (p Panel) Center() Point { return Point{p.X + p.W/2, p.Y + p.H/2} }

// Contains reports whether q lies inside the panel, edges included.
func (p Panel) Contains(q Point) bool {
	return q.X >= p.X && q.X <= p.X+p.W && q.Y >= p.Y && q.Y <= p.Y+p.H
}

// Label is a single line of monospace text anchored at a point.
type Label struct {
	At     Point
	Text   string
	Size   float64      // points; 0 uses DefaultLabelSize
	Color  palette.Role // empty uses palette.Text
	Bold   bool
	Italic bool
	HAlign HAlign
	VAlign VAlign
}

// Validate checks the label position, size and text.
func (l Label) Validate() error {
	if !l.At.finite() {
		return errors.New(errors.ErrCodeInvalidGeometry, "label position must be finite")
	}
	if l.Size < 0 || !finite(l.Size) {
		return errors.New(errors.ErrCodeInvalidGeometry, "label size must be non-negative, got %g", l.Size)
	}
	if strings.ContainsAny(l.Text, "\r\n") {
		return errors.New(errors.ErrCodeInvalidGeometry, "label %q spans multiple lines", firstLine(l.Text))
	}
	return nil
}

func (l Label) size() float64 {
	if l.Size == 0 {
		return DefaultLabelSize
	}
	return l.Size
}

func (l Label) color() palette.Role {
	if l.Color == "" {
		return palette.Text
	}
	return l.Color
}

// Section is a translucent background panel with a title in its top-left
// corner, used to group related cards.
type Section struct {
	X, Y, W, H float64
	Title      string
	Fill       palette.Role
	Border     palette.Role
	TitleColor palette.Role // empty uses Border
}

// Panel returns the background panel drawn for the section.
func (s Section) Panel() Panel {
	return Panel{
		X: s.X, Y: s.Y, W: s.W, H: s.H,
		Fill:        s.Fill,
		Border:      s.Border,
		BorderWidth: SectionBorderWidth,
		Radius:      math.Min(SectionRadius, math.Min(s.W, s.H)/2),
		Opacity:     SectionOpacity,
	}
}

// TitleLabel returns the label drawn for the section title.
func (s Section) TitleLabel() Label {
	c := s.TitleColor
	if c == "" {
		c = s.Border
	}
	return Label{
		At:     Point{s.X + sectionTitleInset.X, s.Y + s.H - sectionTitleInset.Y},
		Text:   s.Title,
		Size:   SectionTitleSize,
		Color:  c,
		Bold:   true,
		Italic: true,
		HAlign: HAlignLeft,
		VAlign: VAlignTop,
	}
}

// Validate checks the section background and title.
func (s Section) Validate() error {
	if err := s.Panel().Validate(); err != nil {
		return err
	}
	if s.Title == "" {
		return nil
	}
	return s.TitleLabel().Validate()
}

// Connector is a line from one point to another with an arrowhead at To
// and an optional label near its midpoint.
type Connector struct {
	From, To   Point
	Color      palette.Role
	Width      float64 // points; 0 uses DefaultConnectorWidth
	Style      LineStyle
	Label      string
	LabelColor palette.Role // empty uses Color
	LabelSize  float64      // points; 0 uses DefaultConnectorLabel
	LabelAt    *Point       // nil places the label at the midpoint plus DefaultLabelOffset
}

// Validate checks the end points, stroke width and label.
func (c Connector) Validate() error {
	if !c.From.finite() || !c.To.finite() {
		return errors.New(errors.ErrCodeInvalidGeometry, "connector end points must be finite")
	}
	if c.Width < 0 || !finite(c.Width) {
		return errors.New(errors.ErrCodeInvalidGeometry, "connector width must be non-negative, got %g", c.Width)
	}
	if c.Label == "" {
		return nil
	}
	return c.label(c.From.Mid(c.To)).Validate()
}

func (c Connector) width() float64 {
	if c.Width == 0 {
		return DefaultConnectorWidth
	}
	return c.Width
}

// label builds the connector label, anchored relative to mid unless an
// explicit position was given.
func (c Connector) label(mid Point) Label {
	at := mid.Add(DefaultLabelOffset)
	if c.LabelAt != nil {
		at = *c.LabelAt
	}
	lc := c.LabelColor
	if lc == "" {
		lc = c.Color
	}
	size := c.LabelSize
	if size == 0 {
		size = DefaultConnectorLabel
	}
	return Label{At: at, Text: c.Label, Size: size, Color: lc}
}

// headSize returns the arrowhead length and half-width in canvas units.
func headSize(style LineStyle) (length, halfWidth float64) {
	if style == Dashed {
		return 0.13, 0.075
	}
	return 0.15, 0.09
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i] + "..."
	}
	return s
}

// Lines expands a label template into one label per line, each pitch units
// below the previous one.
func Lines(tmpl Label, pitch float64, lines ...string) []Label {
	out := make([]Label, 0, len(lines))
	for i, text := range lines {
		l := tmpl
		l.Text = text
		l.At.Y = tmpl.At.Y - float64(i)*pitch
		out = append(out, l)
	}
	return out
}
