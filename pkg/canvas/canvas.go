package canvas

import (
	"image/color"
	"slices"
	"sync"

	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/palette"
)

// Canvas is a fixed-size drawing surface. Draw calls append to an ordered
// display list until the canvas is sealed by Save or Seal.
//
// A Canvas is safe for concurrent use, but the relative order of
// concurrent draw calls is unspecified.
type Canvas struct {
	width, height float64
	background    palette.Role
	palette       *palette.Palette
	curvature     float64

	mu     sync.Mutex
	bg     color.NRGBA
	ops    []Op
	sealed bool
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithCurvature bends every connector into a quadratic arc. rad is the
// control point's offset from the midpoint as a fraction of the segment
// length; 0 keeps connectors straight.
func WithCurvature(rad float64) Option {
	return func(c *Canvas) { c.curvature = rad }
}

// New creates an empty canvas of width x height units filled with the
// background role.
func New(width, height float64, background palette.Role, p *palette.Palette, opts ...Option) (*Canvas, error) {
	if p == nil {
		return nil, errors.New(errors.ErrCodeInvalidColor, "canvas requires a palette")
	}
	if !finite(width) || !finite(height) || width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidGeometry, "canvas size must be positive, got %gx%g", width, height)
	}
	bg, err := p.Resolve(background)
	if err != nil {
		return nil, err
	}
	c := &Canvas{
		width:      width,
		height:     height,
		background: background,
		palette:    p,
		bg:         bg,
	}
	for _, opt := range opts {
		opt(c)
	}
	if !finite(c.curvature) {
		return nil, errors.New(errors.ErrCodeInvalidGeometry, "connector curvature must be finite")
	}
	return c, nil
}

// Width returns the canvas width in units.
func (c *Canvas) Width() float64 { return c.width }

// Height returns the canvas height in units.
func (c *Canvas) Height() float64 { return c.height }

// Background returns the background role.
func (c *Canvas) Background() palette.Role { return c.background }

// Palette returns the palette the canvas resolves roles against.
func (c *Canvas) Palette() *palette.Palette { return c.palette }

// Len returns the number of recorded operations.
func (c *Canvas) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ops)
}

// Ops returns a copy of the recorded operations in draw order.
func (c *Canvas) Ops() []Op {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.ops)
}

// Sealed reports whether the canvas has been sealed.
func (c *Canvas) Sealed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sealed
}

// Seal freezes the canvas and returns its drawing. Sealing twice returns an
// equivalent drawing.
func (c *Canvas) Seal() *Drawing {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sealed = true
	return &Drawing{
		Width:      c.width,
		Height:     c.height,
		Background: c.bg,
		Ops:        slices.Clone(c.ops),
	}
}

// Panel draws a filled, optionally bordered rectangle.
func (c *Canvas) Panel(p Panel) error {
	if err := p.Validate(); err != nil {
		return err
	}
	op, err := c.rectOp(p)
	if err != nil {
		return err
	}
	return c.append(op)
}

// Label draws a single line of text.
func (c *Canvas) Label(l Label) error {
	if err := l.Validate(); err != nil {
		return err
	}
	op, err := c.textOp(l)
	if err != nil {
		return err
	}
	return c.append(op)
}

// Labels draws several labels as one unit: if any label is invalid or names
// an unknown role, none are drawn.
func (c *Canvas) Labels(ls ...Label) error {
	ops := make([]Op, 0, len(ls))
	for _, l := range ls {
		if err := l.Validate(); err != nil {
			return err
		}
		op, err := c.textOp(l)
		if err != nil {
			return err
		}
		ops = append(ops, op)
	}
	return c.append(ops...)
}

// Section draws a translucent grouping panel and its title.
func (c *Canvas) Section(s Section) error {
	if err := s.Validate(); err != nil {
		return err
	}
	rect, err := c.rectOp(s.Panel())
	if err != nil {
		return err
	}
	if _, err := c.palette.Resolve(s.TitleLabel().Color); err != nil {
		return err
	}
	if s.Title == "" {
		return c.append(rect)
	}
	title, err := c.textOp(s.TitleLabel())
	if err != nil {
		return err
	}
	return c.append(rect, title)
}

// Connector draws a line with an arrowhead at its end point and an
// optional label. A zero-length connector has no direction, so it is drawn
// without a head.
func (c *Canvas) Connector(conn Connector) error {
	if err := conn.Validate(); err != nil {
		return err
	}
	col, err := c.palette.Resolve(conn.Color)
	if err != nil {
		return err
	}
	if conn.LabelColor != "" {
		if _, err := c.palette.Resolve(conn.LabelColor); err != nil {
			return err
		}
	}
	width := conn.width()

	shaft, head := connectorGeometry(conn.From, conn.To, c.curvature, conn.Style)
	shaft.Color, shaft.Width, shaft.Dashed = col, width, conn.Style == Dashed
	ops := []Op{shaft}
	if head != nil {
		head.Color, head.Width = col, width
		ops = append(ops, head)
	}
	if conn.Label != "" {
		text, err := c.textOp(conn.label(shaft.Midpoint()))
		if err != nil {
			return err
		}
		ops = append(ops, text)
	}
	return c.append(ops...)
}

// Line draws a plain segment with no arrowhead.
func (c *Canvas) Line(from, to Point, role palette.Role, width float64, style LineStyle) error {
	if !from.finite() || !to.finite() {
		return errors.New(errors.ErrCodeInvalidGeometry, "line end points must be finite")
	}
	if width < 0 || !finite(width) {
		return errors.New(errors.ErrCodeInvalidGeometry, "line width must be non-negative, got %g", width)
	}
	col, err := c.palette.Resolve(role)
	if err != nil {
		return err
	}
	if width == 0 {
		width = DefaultConnectorWidth
	}
	return c.append(&LineOp{
		From: from, To: to, Control: from.Mid(to),
		Color: col, Width: width, Dashed: style == Dashed,
	})
}

// connectorGeometry computes the shaft and the arrowhead wings. With a
// non-zero curvature the shaft is a quadratic arc and the head follows the
// tangent at the end point. The head is nil for a zero-length connector.
func connectorGeometry(from, to Point, curvature float64, style LineStyle) (*LineOp, *HeadOp) {
	d := to.Sub(from)
	mid := from.Mid(to)
	shaft := &LineOp{From: from, To: to, Control: mid}
	tangent := d
	if curvature != 0 {
		shaft.Control = Point{mid.X + curvature*d.Y, mid.Y - curvature*d.X}
		shaft.Curved = true
		tangent = to.Sub(shaft.Control)
	}

	n := tangent.Len()
	if n == 0 {
		return shaft, nil
	}
	length, half := headSize(style)
	ux, uy := tangent.X/n, tangent.Y/n
	base := Point{to.X - ux*length, to.Y - uy*length}
	// perpendicular (-uy, ux) points left of the direction of travel
	head := &HeadOp{
		Tip:   to,
		Left:  Point{base.X - uy*half, base.Y + ux*half},
		Right: Point{base.X + uy*half, base.Y - ux*half},
	}
	return shaft, head
}

func (c *Canvas) rectOp(p Panel) (*RectOp, error) {
	fill, err := c.palette.Resolve(p.Fill)
	if err != nil {
		return nil, err
	}
	op := &RectOp{
		X: p.X, Y: p.Y, W: p.W, H: p.H,
		Radius:  p.Radius,
		Fill:    fill,
		Opacity: p.Opacity,
	}
	if op.Opacity == 0 {
		op.Opacity = 1
	}
	if p.Border != "" {
		stroke, err := c.palette.Resolve(p.Border)
		if err != nil {
			return nil, err
		}
		if p.BorderWidth > 0 {
			op.Stroke = stroke
			op.StrokeWidth = p.BorderWidth
		}
	}
	return op, nil
}

func (c *Canvas) textOp(l Label) (*TextOp, error) {
	col, err := c.palette.Resolve(l.color())
	if err != nil {
		return nil, err
	}
	return &TextOp{
		X: l.At.X, Y: l.At.Y,
		Text:   l.Text,
		Size:   l.size(),
		Color:  col,
		Bold:   l.Bold,
		Italic: l.Italic,
		HAlign: l.HAlign,
		VAlign: l.VAlign,
	}, nil
}

// append records ops atomically: either all of them land or none do.
func (c *Canvas) append(ops ...Op) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed {
		return errors.New(errors.ErrCodeCanvasSealed, "canvas has been sealed")
	}
	c.ops = append(c.ops, ops...)
	return nil
}

// Bounds reports whether the point lies on the canvas.
func (c *Canvas) Bounds(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= c.width && p.Y <= c.height
}
