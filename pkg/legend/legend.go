// Package legend lays out tabular and list-shaped label groups: column
// tables, line-style keys, and titled item lists.
//
// Every layout validates its whole shape and resolves all of its roles
// before drawing, so a failing layout leaves the canvas unchanged.
package legend

import (
	"math"

	"github.com/matzehuels/archdiagram/pkg/canvas"
	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/palette"
)

// DetailOffset is the drop from a list item to its detail line.
const DetailOffset = 0.18

// Table is a header row plus data rows at fixed column positions.
// Cells are left-aligned.
type Table struct {
	X, Y        float64   // origin; Y is the header row
	Columns     []float64 // column x offsets from X
	Header      []string  // optional; must match Columns when present
	Rows        [][]string
	Pitch       float64 // distance between data rows
	HeaderGap   float64 // distance from header to the first data row; 0 uses Pitch
	HeaderColor palette.Role
	CellColor   palette.Role // empty uses palette.TextDim
	HeaderSize  float64      // points; 0 uses 5.5
	CellSize    float64      // points; 0 uses 5.5
}

// Validate checks that the table is rectangular.
func (t Table) Validate() error {
	if len(t.Columns) == 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "table has no columns")
	}
	if t.Pitch <= 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "table pitch must be positive, got %g", t.Pitch)
	}
	if t.HeaderGap < 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "table header gap must be non-negative, got %g", t.HeaderGap)
	}
	if len(t.Header) > 0 && len(t.Header) != len(t.Columns) {
		return errors.New(errors.ErrCodeInvalidGeometry, "table header has %d cells for %d columns", len(t.Header), len(t.Columns))
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return errors.New(errors.ErrCodeInvalidGeometry, "table row %d has %d cells for %d columns", i, len(row), len(t.Columns))
		}
	}
	return nil
}

// RowY returns the y coordinate of data row i.
func (t Table) RowY(i int) float64 {
	gap := t.HeaderGap
	if gap == 0 {
		gap = t.Pitch
	}
	return t.Y - gap - float64(i)*t.Pitch
}

// Labels returns the header and cell labels in row-major order.
func (t Table) Labels() []canvas.Label {
	out := make([]canvas.Label, 0, (len(t.Rows)+1)*len(t.Columns))
	for j, text := range t.Header {
		out = append(out, canvas.Label{
			At:     canvas.Pt(t.X+t.Columns[j], t.Y),
			Text:   text,
			Size:   orDefault(t.HeaderSize, 5.5),
			Color:  orRole(t.HeaderColor, palette.Text),
			Bold:   true,
			HAlign: canvas.HAlignLeft,
		})
	}
	for i, row := range t.Rows {
		y := t.RowY(i)
		for j, text := range row {
			if text == "" {
				continue
			}
			out = append(out, canvas.Label{
				At:     canvas.Pt(t.X+t.Columns[j], y),
				Text:   text,
				Size:   orDefault(t.CellSize, 5.5),
				Color:  orRole(t.CellColor, palette.TextDim),
				HAlign: canvas.HAlignLeft,
			})
		}
	}
	return out
}

// Draw validates the table and draws it.
func (t Table) Draw(c *canvas.Canvas) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return c.Labels(t.Labels()...)
}

// Key is one legend entry: a short line sample and its description.
type Key struct {
	Color  palette.Role
	Text   string
	Dashed bool
}

// Keys draws a column of line-style samples, each ending in an arrowhead,
// followed by a description.
type Keys struct {
	X, Y        float64 // start of the first sample
	Pitch       float64
	SwatchWidth float64      // 0 uses 0.5
	LineWidth   float64      // points; 0 uses 1.8
	TextGap     float64      // 0 uses 0.15
	TextColor   palette.Role // empty uses palette.TextDim
	TextSize    float64      // points; 0 uses 6.0
	Items       []Key
}

// Validate checks the key layout and every item's label.
func (k Keys) Validate() error {
	for _, v := range []float64{k.X, k.Y, k.Pitch, k.SwatchWidth, k.LineWidth, k.TextGap, k.TextSize} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidGeometry, "key layout values must be finite")
		}
	}
	if k.Pitch <= 0 && len(k.Items) > 1 {
		return errors.New(errors.ErrCodeInvalidGeometry, "key pitch must be positive, got %g", k.Pitch)
	}
	if k.SwatchWidth < 0 || k.LineWidth < 0 || k.TextGap < 0 || k.TextSize < 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "key swatch dimensions must be non-negative")
	}
	for i, it := range k.Items {
		if it.Color == "" {
			return errors.New(errors.ErrCodeInvalidGeometry, "key %d has no color", i)
		}
		if err := k.label(i, it, "").Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidGeometry, err, "key %d", i)
		}
	}
	return nil
}

func (k Keys) rowY(i int) float64 {
	return k.Y - float64(i)*k.Pitch
}

func (k Keys) label(i int, it Key, color palette.Role) canvas.Label {
	sw := orDefault(k.SwatchWidth, 0.5)
	return canvas.Label{
		At:     canvas.Pt(k.X+sw+orDefault(k.TextGap, 0.15), k.rowY(i)),
		Text:   it.Text,
		Size:   orDefault(k.TextSize, 6.0),
		Color:  color,
		HAlign: canvas.HAlignLeft,
	}
}

// Draw validates the keys, resolves their colors, and draws them.
func (k Keys) Draw(c *canvas.Canvas) error {
	if err := k.Validate(); err != nil {
		return err
	}
	p := c.Palette()
	textColor := orRole(k.TextColor, palette.TextDim)
	if _, err := p.Resolve(textColor); err != nil {
		return err
	}
	for _, it := range k.Items {
		if _, err := p.Resolve(it.Color); err != nil {
			return errors.Wrap(errors.ErrCodeUnknownRole, err, "key %q", it.Text)
		}
	}

	sw := orDefault(k.SwatchWidth, 0.5)
	lw := orDefault(k.LineWidth, 1.8)
	for i, it := range k.Items {
		y := k.rowY(i)
		style := canvas.Solid
		if it.Dashed {
			style = canvas.Dashed
		}
		end := canvas.Pt(k.X+sw, y)
		if err := c.Line(canvas.Pt(k.X, y), end, it.Color, lw, style); err != nil {
			return err
		}
		// a short tail so the head points along the sample
		if err := c.Connector(canvas.Connector{
			From: canvas.Pt(end.X-0.15, y), To: end,
			Color: it.Color, Width: lw * 0.8,
		}); err != nil {
			return err
		}
		if err := c.Label(k.label(i, it, textColor)); err != nil {
			return err
		}
	}
	return nil
}

// Item is one entry of a List.
type Item struct {
	Text   string
	Color  palette.Role // empty uses the list color
	Bold   bool
	Detail string // optional second line, DetailOffset below
}

// List is a centered bold title followed by left-aligned items.
type List struct {
	X, Y       float64 // item x and title y
	Title      string
	TitleX     float64 // title center x
	TitleColor palette.Role
	TitleSize  float64 // points; 0 uses 6.5
	TitleGap   float64 // drop from title to first item; 0 uses Pitch
	Pitch      float64
	Color      palette.Role // empty uses palette.TextDim
	Size       float64      // points; 0 uses 5.5
	DetailSize float64      // points; 0 uses Size
	Items      []Item
}

// Validate checks the list layout.
func (l List) Validate() error {
	if l.Pitch <= 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "list pitch must be positive, got %g", l.Pitch)
	}
	if l.TitleGap < 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "list title gap must be non-negative, got %g", l.TitleGap)
	}
	return nil
}

// ItemY returns the y coordinate of item i.
func (l List) ItemY(i int) float64 {
	gap := l.TitleGap
	if gap == 0 {
		gap = l.Pitch
	}
	return l.Y - gap - float64(i)*l.Pitch
}

// Labels returns the title label followed by each item and its detail.
func (l List) Labels() []canvas.Label {
	size := orDefault(l.Size, 5.5)
	var out []canvas.Label
	if l.Title != "" {
		out = append(out, canvas.Label{
			At:    canvas.Pt(l.TitleX, l.Y),
			Text:  l.Title,
			Size:  orDefault(l.TitleSize, 6.5),
			Color: orRole(l.TitleColor, palette.TextHeader),
			Bold:  true,
		})
	}
	for i, it := range l.Items {
		y := l.ItemY(i)
		out = append(out, canvas.Label{
			At:     canvas.Pt(l.X, y),
			Text:   it.Text,
			Size:   size,
			Color:  orRole(it.Color, orRole(l.Color, palette.TextDim)),
			Bold:   it.Bold,
			HAlign: canvas.HAlignLeft,
		})
		if it.Detail != "" {
			out = append(out, canvas.Label{
				At:     canvas.Pt(l.X, y-DetailOffset),
				Text:   it.Detail,
				Size:   orDefault(l.DetailSize, size),
				Color:  orRole(l.Color, palette.TextDim),
				HAlign: canvas.HAlignLeft,
			})
		}
	}
	return out
}

// Draw validates the list and draws it.
func (l List) Draw(c *canvas.Canvas) error {
	if err := l.Validate(); err != nil {
		return err
	}
	return c.Labels(l.Labels()...)
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func orRole(r, def palette.Role) palette.Role {
	if r == "" {
		return def
	}
	return r
}
