package sink

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"

	"github.com/matzehuels/archdiagram/pkg/canvas"
	"github.com/matzehuels/archdiagram/pkg/errors"
)

// JSONOption configures JSON rendering.
type JSONOption func(*JSON)

// WithCompactJSON disables indentation.
func WithCompactJSON() JSONOption { return func(j *JSON) { j.indent = "" } }

// JSON writes the display list as JSON. Coordinates stay in canvas units
// so the output does not depend on DPI beyond the recorded pixel size.
type JSON struct {
	indent string
}

// NewJSON returns a JSON encoder.
func NewJSON(opts ...JSONOption) *JSON {
	j := &JSON{indent: "  "}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Format implements canvas.Encoder.
func (*JSON) Format() string { return FormatJSON }

type jsonOutput struct {
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
	DPI        float64  `json:"dpi"`
	PixelW     int      `json:"pixel_width"`
	PixelH     int      `json:"pixel_height"`
	Background string   `json:"background"`
	Ops        []jsonOp `json:"ops"`
}

type jsonOp struct {
	Kind    string    `json:"kind"`
	X       float64   `json:"x,omitempty"`
	Y       float64   `json:"y,omitempty"`
	W       float64   `json:"w,omitempty"`
	H       float64   `json:"h,omitempty"`
	Radius  float64   `json:"radius,omitempty"`
	Points  []float64 `json:"points,omitempty"`
	Fill    string    `json:"fill,omitempty"`
	Stroke  string    `json:"stroke,omitempty"`
	Width   float64   `json:"width,omitempty"`
	Opacity float64   `json:"opacity,omitempty"`
	Dashed  bool      `json:"dashed,omitempty"`
	Curved  bool      `json:"curved,omitempty"`
	Text    string    `json:"text,omitempty"`
	Size    float64   `json:"size,omitempty"`
	Bold    bool      `json:"bold,omitempty"`
	Italic  bool      `json:"italic,omitempty"`
	HAlign  string    `json:"halign,omitempty"`
	VAlign  string    `json:"valign,omitempty"`
}

// Encode implements canvas.Encoder.
func (j *JSON) Encode(w io.Writer, d *canvas.Drawing, opts canvas.EncodeOptions) error {
	pw, ph := d.PixelSize(opts.DPI)
	out := jsonOutput{
		Width:      d.Width,
		Height:     d.Height,
		DPI:        opts.DPI,
		PixelW:     pw,
		PixelH:     ph,
		Background: hexAlpha(d.Background),
		Ops:        make([]jsonOp, 0, len(d.Ops)),
	}
	for _, op := range d.Ops {
		jo, err := toJSONOp(op)
		if err != nil {
			return err
		}
		out.Ops = append(out.Ops, jo)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", j.indent)
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "encode json")
	}
	return nil
}

func toJSONOp(op canvas.Op) (jsonOp, error) {
	switch op := op.(type) {
	case *canvas.RectOp:
		jo := jsonOp{
			Kind: "rect", X: op.X, Y: op.Y, W: op.W, H: op.H,
			Radius: op.Radius, Fill: hexAlpha(op.Fill), Opacity: op.Opacity,
		}
		if op.StrokeWidth > 0 {
			jo.Stroke, jo.Width = hexAlpha(op.Stroke), op.StrokeWidth
		}
		return jo, nil
	case *canvas.TextOp:
		return jsonOp{
			Kind: "text", X: op.X, Y: op.Y, Text: op.Text, Size: op.Size,
			Fill: hexAlpha(op.Color), Bold: op.Bold, Italic: op.Italic,
			HAlign: op.HAlign.String(), VAlign: op.VAlign.String(),
		}, nil
	case *canvas.LineOp:
		pts := []float64{op.From.X, op.From.Y, op.To.X, op.To.Y}
		if op.Curved {
			pts = []float64{op.From.X, op.From.Y, op.Control.X, op.Control.Y, op.To.X, op.To.Y}
		}
		return jsonOp{
			Kind: "line", Points: pts, Stroke: hexAlpha(op.Color),
			Width: op.Width, Dashed: op.Dashed, Curved: op.Curved,
		}, nil
	case *canvas.HeadOp:
		return jsonOp{
			Kind:   "head",
			Points: []float64{op.Left.X, op.Left.Y, op.Tip.X, op.Tip.Y, op.Right.X, op.Right.Y},
			Stroke: hexAlpha(op.Color), Width: op.Width,
		}, nil
	}
	return jsonOp{}, errors.New(errors.ErrCodeUnsupported, "json: unsupported operation %T", op)
}

func hexAlpha(c color.NRGBA) string {
	if c.A == 0xff {
		return hex(c)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
