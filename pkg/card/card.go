// Package card draws title-barred composite cards.
//
// A card is an outer rounded panel, a flat accent-colored title bar across
// its top, a bold title centered in the bar, and a vertical stack of
// center-aligned rows below it. Row k sits at
//
//	top - Template.FirstRow - k*Template.Pitch
//
// where row 0 is the subtitle. The three shapes used in deployment
// diagrams (service, cluster node, monitoring component) are presets over
// the same [Template]; see [Service], [ClusterNode] and [Monitoring].
package card

import (
	"github.com/matzehuels/archdiagram/pkg/canvas"
	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/palette"
)

// rowMargin is the minimum distance between the last row and the card bottom.
const rowMargin = 0.1

// Template fixes the vertical rhythm and typography of a card.
type Template struct {
	BarHeight    float64 // title bar height, canvas units
	TitleSize    float64 // points
	FirstRow     float64 // distance from card top to row 0
	Pitch        float64 // distance between consecutive rows
	SubtitleSize float64 // points
	RowSize      float64 // points, used when a row leaves Size at 0
	BorderWidth  float64 // points
	Radius       float64
	TitleColor   palette.Role // empty uses palette.TextInverse
	RowColor     palette.Role // empty uses palette.TextDim
}

// Validate checks the template on its own, independent of any card size.
func (t Template) Validate() error {
	switch {
	case t.BarHeight <= 0:
		return errors.New(errors.ErrCodeInvalidGeometry, "card bar height must be positive, got %g", t.BarHeight)
	case t.Pitch <= 0:
		return errors.New(errors.ErrCodeInvalidGeometry, "card row pitch must be positive, got %g", t.Pitch)
	case t.FirstRow < t.BarHeight:
		return errors.New(errors.ErrCodeInvalidGeometry, "first row (%g) overlaps the title bar (%g)", t.FirstRow, t.BarHeight)
	case t.TitleSize < 0 || t.SubtitleSize < 0 || t.RowSize < 0:
		return errors.New(errors.ErrCodeInvalidGeometry, "card font sizes must be non-negative")
	}
	return nil
}

func (t Template) titleColor() palette.Role {
	if t.TitleColor == "" {
		return palette.TextInverse
	}
	return t.TitleColor
}

func (t Template) rowColor() palette.Role {
	if t.RowColor == "" {
		return palette.TextDim
	}
	return t.RowColor
}

// Row is one line of card text below the title bar.
type Row struct {
	Text      string
	Color     palette.Role // empty uses the template row color, or the highlight color
	Size      float64      // points; 0 uses the template row size
	Bold      bool
	Highlight bool // draw in the light variant of the card accent
}

// Card is a title-barred rectangle with a stack of rows.
// (X, Y) is the bottom-left corner.
type Card struct {
	X, Y, W, H float64
	Title      string
	Subtitle   string
	Rows       []Row
	Fill       palette.Role
	Accent     palette.Role // title bar and outline
	Template   Template     // zero value uses DefaultTemplate
}

func (k Card) template() Template {
	if k.Template == (Template{}) {
		return DefaultTemplate
	}
	return k.Template
}

// Top returns the y coordinate of the card's upper edge.
func (k Card) Top() float64 { return k.Y + k.H }

// RowY returns the y coordinate of row k. Row 0 is the subtitle.
func (k Card) RowY(row int) float64 {
	t := k.template()
	return k.Top() - t.FirstRow - float64(row)*t.Pitch
}

// Outline returns the outer panel.
func (k Card) Outline() canvas.Panel {
	t := k.template()
	return canvas.Panel{
		X: k.X, Y: k.Y, W: k.W, H: k.H,
		Fill:        k.Fill,
		Border:      k.Accent,
		BorderWidth: t.BorderWidth,
		Radius:      t.Radius,
	}
}

// Bar returns the title bar panel: a square strip filled and outlined
// with the accent color.
func (k Card) Bar() canvas.Panel {
	t := k.template()
	return canvas.Panel{
		X: k.X, Y: k.Top() - t.BarHeight, W: k.W, H: t.BarHeight,
		Fill:   k.Accent,
		Border: k.Accent,
	}
}

// Validate checks geometry: the template, both panels, and that every row
// stays above the card bottom.
func (k Card) Validate() error {
	t := k.template()
	if err := t.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidGeometry, err, "card %q", k.Title)
	}
	if err := k.Outline().Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidGeometry, err, "card %q", k.Title)
	}
	if t.BarHeight > k.H {
		return errors.New(errors.ErrCodeInvalidGeometry, "card %q: title bar (%g) taller than card (%g)", k.Title, t.BarHeight, k.H)
	}
	last := len(k.Rows)
	if y := k.RowY(last); y < k.Y+rowMargin {
		return errors.New(errors.ErrCodeInvalidGeometry,
			"card %q: row %d at y=%.2f falls below the card bottom (%.2f)", k.Title, last, y, k.Y)
	}
	for _, l := range k.labels(palette.TextDim) {
		if err := l.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidGeometry, err, "card %q", k.Title)
		}
	}
	return nil
}

// Draw validates the card, resolves every role it uses, and then draws the
// outline, title bar, title and rows in that order. A card that fails
// validation or names an unknown role leaves the canvas unchanged.
func (k Card) Draw(c *canvas.Canvas) error {
	if err := k.Validate(); err != nil {
		return err
	}
	p := c.Palette()
	highlight := Highlight(p, k.Accent)
	labels := k.labels(highlight)
	roles := []palette.Role{k.Fill, k.Accent}
	for _, l := range labels {
		roles = append(roles, l.Color)
	}
	for _, r := range roles {
		if _, err := p.Resolve(r); err != nil {
			return errors.Wrap(errors.ErrCodeUnknownRole, err, "card %q", k.Title)
		}
	}

	if err := c.Panel(k.Outline()); err != nil {
		return err
	}
	if err := c.Panel(k.Bar()); err != nil {
		return err
	}
	return c.Labels(labels...)
}

// labels builds the title label followed by one label per non-empty row.
func (k Card) labels(highlight palette.Role) []canvas.Label {
	t := k.template()
	cx := k.X + k.W/2
	out := make([]canvas.Label, 0, len(k.Rows)+2)
	out = append(out, canvas.Label{
		At:    canvas.Pt(cx, k.Top()-t.BarHeight/2),
		Text:  k.Title,
		Size:  t.TitleSize,
		Color: t.titleColor(),
		Bold:  true,
	})
	if k.Subtitle != "" {
		out = append(out, canvas.Label{
			At:    canvas.Pt(cx, k.RowY(0)),
			Text:  k.Subtitle,
			Size:  t.SubtitleSize,
			Color: t.rowColor(),
		})
	}
	for i, r := range k.Rows {
		if r.Text == "" {
			continue
		}
		col := r.Color
		if col == "" {
			col = t.rowColor()
			if r.Highlight {
				col = highlight
			}
		}
		size := r.Size
		if size == 0 {
			size = t.RowSize
		}
		out = append(out, canvas.Label{
			At:    canvas.Pt(cx, k.RowY(i+1)),
			Text:  r.Text,
			Size:  size,
			Color: col,
			Bold:  r.Bold,
		})
	}
	return out
}

// Highlight returns the light variant of accent ("<accent>-light") when the
// palette defines it, and accent itself otherwise.
func Highlight(p *palette.Palette, accent palette.Role) palette.Role {
	light := accent + "-light"
	if p.Has(light) {
		return light
	}
	return accent
}
