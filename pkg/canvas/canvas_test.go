package canvas

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/palette"
)

func newTestCanvas(t *testing.T, opts ...Option) *Canvas {
	t.Helper()
	c, err := New(22, 17, palette.Background, palette.Default(), opts...)
	require.NoError(t, err)
	return c
}

// textEncoder writes a line per op so tests can compare output cheaply.
type textEncoder struct{ calls int }

func (e *textEncoder) Format() string { return "txt" }

func (e *textEncoder) Encode(w io.Writer, d *Drawing, opts EncodeOptions) error {
	e.calls++
	pw, ph := d.PixelSize(opts.DPI)
	fmt.Fprintf(w, "%dx%d bg=%v\n", pw, ph, d.Background)
	for _, op := range d.Ops {
		fmt.Fprintf(w, "%T %+v\n", op, op)
	}
	return nil
}

type failingEncoder struct{}

func (failingEncoder) Format() string { return "broken" }
func (failingEncoder) Encode(io.Writer, *Drawing, EncodeOptions) error {
	return fmt.Errorf("disk on fire")
}

func TestNewRejectsBadSize(t *testing.T) {
	for _, tc := range []struct{ w, h float64 }{{0, 10}, {10, -1}, {math.NaN(), 3}, {math.Inf(1), 3}} {
		_, err := New(tc.w, tc.h, palette.Background, palette.Default())
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidGeometry), "%gx%g", tc.w, tc.h)
	}
	_, err := New(10, 10, "no-such-role", palette.Default())
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownRole))
	_, err = New(10, 10, palette.Background, nil)
	assert.Error(t, err)
}

func TestPanelGeometryRejected(t *testing.T) {
	base := Panel{X: 1, Y: 1, W: 2, H: 1, Fill: palette.Surface, Border: palette.Border, BorderWidth: 1}
	tests := []struct {
		name   string
		mutate func(*Panel)
	}{
		{"negative width", func(p *Panel) { p.W = -1 }},
		{"negative height", func(p *Panel) { p.H = -0.5 }},
		{"zero width", func(p *Panel) { p.W = 0 }},
		{"radius beyond half height", func(p *Panel) { p.Radius = 0.51 }},
		{"negative radius", func(p *Panel) { p.Radius = -0.1 }},
		{"negative border", func(p *Panel) { p.BorderWidth = -1 }},
		{"opacity above one", func(p *Panel) { p.Opacity = 1.5 }},
		{"nan x", func(p *Panel) { p.X = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCanvas(t)
			p := base
			tt.mutate(&p)
			err := c.Panel(p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidGeometry), err.Error())
			assert.Zero(t, c.Len(), "canvas must be unchanged")
		})
	}
}

func TestPanelRadiusAtLimit(t *testing.T) {
	c := newTestCanvas(t)
	require.NoError(t, c.Panel(Panel{X: 0, Y: 0, W: 2, H: 1, Fill: palette.Surface, Radius: 0.5}))
	op := c.Ops()[0].(*RectOp)
	assert.Equal(t, 0.5, op.Radius)
	assert.Equal(t, 1.0, op.Opacity)
	assert.Zero(t, op.StrokeWidth)
}

func TestUnknownRoleLeavesCanvasUnchanged(t *testing.T) {
	c := newTestCanvas(t)
	require.NoError(t, c.Panel(Panel{X: 0, Y: 0, W: 1, H: 1, Fill: palette.Surface}))

	err := c.Panel(Panel{X: 0, Y: 0, W: 1, H: 1, Fill: palette.Surface, Border: "accent-pink", BorderWidth: 1})
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownRole))

	err = c.Label(Label{At: Pt(1, 1), Text: "x", Color: "accent-pink"})
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownRole))

	err = c.Section(Section{X: 0, Y: 0, W: 4, H: 4, Title: "T", Fill: palette.Surface, Border: palette.Border, TitleColor: "accent-pink"})
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownRole))

	err = c.Connector(Connector{From: Pt(0, 0), To: Pt(1, 1), Color: "accent-pink"})
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownRole))

	err = c.Connector(Connector{From: Pt(0, 0), To: Pt(1, 1), Color: palette.Border, Label: "x", LabelColor: "accent-pink"})
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownRole))

	assert.Equal(t, 1, c.Len())
}

func TestUnusedRolesAreStillResolved(t *testing.T) {
	c := newTestCanvas(t)

	err := c.Panel(Panel{X: 0, Y: 0, W: 1, H: 1, Fill: palette.Surface, Border: "no-such-role"})
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownRole), "border without width")

	err = c.Section(Section{X: 0, Y: 0, W: 4, H: 4, Fill: palette.Surface, Border: palette.Border, TitleColor: "no-such-role"})
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownRole), "title color without title")

	err = c.Section(Section{X: 0, Y: 0, W: 4, H: 4, Fill: palette.Surface, Border: "no-such-role"})
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownRole), "border of untitled section")

	err = c.Connector(Connector{From: Pt(0, 0), To: Pt(1, 1), Color: palette.Border, LabelColor: "no-such-role"})
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownRole), "label color without label")

	assert.Zero(t, c.Len())
}

func TestPanelZeroOpacityIsOpaque(t *testing.T) {
	c := newTestCanvas(t)
	require.NoError(t, c.Panel(Panel{X: 0, Y: 0, W: 1, H: 1, Fill: palette.Surface}))
	require.NoError(t, c.Panel(Panel{X: 0, Y: 0, W: 1, H: 1, Fill: palette.Surface, Opacity: 0.25}))
	ops := c.Ops()
	assert.Equal(t, 1.0, ops[0].(*RectOp).Opacity)
	assert.Equal(t, 0.25, ops[1].(*RectOp).Opacity)

	err := c.Panel(Panel{X: 0, Y: 0, W: 1, H: 1, Fill: palette.Surface, Opacity: 1.5})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidGeometry))
}

func TestLabelRejectsMultiline(t *testing.T) {
	c := newTestCanvas(t)
	err := c.Label(Label{At: Pt(1, 1), Text: "two\nlines"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidGeometry))
	assert.Zero(t, c.Len())
}

func TestLabelDefaults(t *testing.T) {
	c := newTestCanvas(t)
	require.NoError(t, c.Label(Label{At: Pt(3, 4), Text: "hello"}))
	op := c.Ops()[0].(*TextOp)
	assert.Equal(t, DefaultLabelSize, op.Size)
	assert.Equal(t, palette.Default().MustResolve(palette.Text), op.Color)
	assert.Equal(t, HAlignCenter, op.HAlign)
	assert.Equal(t, VAlignCenter, op.VAlign)
}

func TestSectionTitlePlacement(t *testing.T) {
	c := newTestCanvas(t)
	require.NoError(t, c.Section(Section{
		X: 0.3, Y: 0.4, W: 21.4, H: 1.3, Title: "NETWORK",
		Fill: palette.Surface, Border: palette.Border,
	}))
	ops := c.Ops()
	require.Len(t, ops, 2)

	rect := ops[0].(*RectOp)
	assert.Equal(t, SectionOpacity, rect.Opacity)
	assert.Equal(t, SectionBorderWidth, rect.StrokeWidth)
	assert.Equal(t, SectionRadius, rect.Radius)

	title := ops[1].(*TextOp)
	assert.InDelta(t, 0.48, title.X, 1e-9)
	assert.InDelta(t, 1.48, title.Y, 1e-9)
	assert.True(t, title.Bold)
	assert.True(t, title.Italic)
	assert.Equal(t, HAlignLeft, title.HAlign)
	assert.Equal(t, VAlignTop, title.VAlign)
	assert.Equal(t, rect.Stroke, title.Color, "title defaults to the border color")
}

func TestSectionWithoutTitle(t *testing.T) {
	c := newTestCanvas(t)
	require.NoError(t, c.Section(Section{X: 0, Y: 0, W: 1, H: 0.4, Fill: palette.Surface, Border: palette.Border}))
	ops := c.Ops()
	require.Len(t, ops, 1)
	assert.Equal(t, 0.2, ops[0].(*RectOp).Radius, "radius clamps to half the shorter side")
}

func TestDrawOrderIsRecordOrder(t *testing.T) {
	c := newTestCanvas(t)
	require.NoError(t, c.Section(Section{X: 1, Y: 1, W: 10, H: 5, Title: "S", Fill: "kafka-background", Border: "accent-orange"}))
	require.NoError(t, c.Panel(Panel{X: 2, Y: 2, W: 2, H: 1, Fill: palette.Surface}))
	require.NoError(t, c.Connector(Connector{From: Pt(4, 2.5), To: Pt(8, 2.5), Color: "accent-blue"}))
	require.NoError(t, c.Label(Label{At: Pt(5, 5), Text: "top"}))

	var kinds []string
	for _, op := range c.Ops() {
		kinds = append(kinds, fmt.Sprintf("%T", op))
	}
	assert.Equal(t, []string{
		"*canvas.RectOp", "*canvas.TextOp",
		"*canvas.RectOp",
		"*canvas.LineOp", "*canvas.HeadOp",
		"*canvas.TextOp",
	}, kinds)
}

func TestConnectorHeadAtEnd(t *testing.T) {
	cases := []struct {
		name     string
		from, to Point
	}{
		{"rightward", Pt(1, 1), Pt(4, 1)},
		{"leftward", Pt(4, 1), Pt(1, 1)},
		{"upward", Pt(2, 1), Pt(2, 6)},
		{"downward", Pt(2, 6), Pt(2, 1)},
		{"diagonal", Pt(1, 1), Pt(3, 4)},
	}
	for _, curvature := range []float64{0, 0.2, -0.3} {
		for _, tc := range cases {
			t.Run(fmt.Sprintf("%s/rad=%g", tc.name, curvature), func(t *testing.T) {
				c := newTestCanvas(t, WithCurvature(curvature))
				require.NoError(t, c.Connector(Connector{From: tc.from, To: tc.to, Color: "accent-blue"}))
				ops := c.Ops()
				require.Len(t, ops, 2)

				shaft := ops[0].(*LineOp)
				assert.Equal(t, tc.from, shaft.From)
				assert.Equal(t, tc.to, shaft.To)
				assert.Equal(t, curvature != 0, shaft.Curved)

				head := ops[1].(*HeadOp)
				assert.Equal(t, tc.to, head.Tip)

				// Both wings sit behind the tip, measured along the final tangent.
				dir := tc.to.Sub(shaft.Control)
				for _, wing := range []Point{head.Left, head.Right} {
					back := wing.Sub(tc.to)
					assert.Less(t, back.X*dir.X+back.Y*dir.Y, 0.0)
					assert.InDelta(t, math.Hypot(0.15, 0.09), back.Len(), 1e-9)
				}
			})
		}
	}
}

func TestConnectorDashedHeadIsSmaller(t *testing.T) {
	c := newTestCanvas(t)
	require.NoError(t, c.Connector(Connector{From: Pt(0, 0), To: Pt(2, 0), Color: palette.Border, Style: Dashed}))
	ops := c.Ops()
	assert.True(t, ops[0].(*LineOp).Dashed)
	head := ops[1].(*HeadOp)
	assert.InDelta(t, 2-0.13, head.Left.X, 1e-9)
	assert.InDelta(t, 0.075, head.Left.Y, 1e-9)
	assert.InDelta(t, -0.075, head.Right.Y, 1e-9)
}

func TestConnectorLabel(t *testing.T) {
	c := newTestCanvas(t)
	require.NoError(t, c.Connector(Connector{From: Pt(2, 4), To: Pt(6, 4), Color: "accent-green", Label: "2 sends"}))
	ops := c.Ops()
	require.Len(t, ops, 3)
	label := ops[2].(*TextOp)
	assert.InDelta(t, 4, label.X, 1e-9)
	assert.InDelta(t, 4.16, label.Y, 1e-9)
	assert.Equal(t, DefaultConnectorLabel, label.Size)
	assert.Equal(t, ops[0].(*LineOp).Color, label.Color)

	at := Pt(10, 10)
	require.NoError(t, c.Connector(Connector{From: Pt(2, 4), To: Pt(6, 4), Color: "accent-green", Label: "x", LabelAt: &at}))
	label = c.Ops()[5].(*TextOp)
	assert.Equal(t, 10.0, label.X)
}

func TestCurvedConnectorLabelOnArc(t *testing.T) {
	c := newTestCanvas(t, WithCurvature(0.2))
	require.NoError(t, c.Connector(Connector{From: Pt(2, 4), To: Pt(6, 4), Color: "accent-green", Label: "2 sends"}))
	ops := c.Ops()
	require.Len(t, ops, 3)
	shaft := ops[0].(*LineOp)
	require.True(t, shaft.Curved)
	assert.InDelta(t, 3.2, shaft.Control.Y, 1e-9)

	// the arc apex is halfway between the chord and the control point
	mid := shaft.Midpoint()
	assert.InDelta(t, 4, mid.X, 1e-9)
	assert.InDelta(t, 3.6, mid.Y, 1e-9)

	label := ops[2].(*TextOp)
	assert.InDelta(t, 4, label.X, 1e-9)
	assert.InDelta(t, 3.6+DefaultLabelOffset.Y, label.Y, 1e-9)
}

func TestZeroLengthConnector(t *testing.T) {
	c := newTestCanvas(t)
	require.NoError(t, c.Connector(Connector{From: Pt(2, 2), To: Pt(2, 2), Color: palette.Border}))
	ops := c.Ops()
	require.Len(t, ops, 1)
	assert.IsType(t, &LineOp{}, ops[0])
}

func TestLine(t *testing.T) {
	c := newTestCanvas(t)
	require.NoError(t, c.Line(Pt(0, 1), Pt(5, 1), palette.Border, 0, Dashed))
	op := c.Ops()[0].(*LineOp)
	assert.Equal(t, DefaultConnectorWidth, op.Width)
	assert.True(t, op.Dashed)
	assert.False(t, op.Curved)
}

func TestSealedCanvasRejectsDraws(t *testing.T) {
	c := newTestCanvas(t)
	require.NoError(t, c.Panel(Panel{X: 0, Y: 0, W: 1, H: 1, Fill: palette.Surface}))
	d := c.Seal()
	assert.True(t, c.Sealed())
	assert.Len(t, d.Ops, 1)

	for name, err := range map[string]error{
		"panel":     c.Panel(Panel{X: 0, Y: 0, W: 1, H: 1, Fill: palette.Surface}),
		"label":     c.Label(Label{At: Pt(1, 1), Text: "late"}),
		"section":   c.Section(Section{X: 0, Y: 0, W: 2, H: 2, Fill: palette.Surface, Border: palette.Border}),
		"connector": c.Connector(Connector{From: Pt(0, 0), To: Pt(1, 0), Color: palette.Border}),
		"line":      c.Line(Pt(0, 0), Pt(1, 0), palette.Border, 1, Solid),
	} {
		assert.True(t, errors.Is(err, errors.ErrCodeCanvasSealed), name)
	}
	assert.Equal(t, 1, c.Len())
}

func TestSaveIsAtomicAndRepeatable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	c := newTestCanvas(t)
	require.NoError(t, c.Panel(Panel{X: 0, Y: 0, W: 1, H: 1, Fill: palette.Surface}))

	enc := &textEncoder{}
	require.NoError(t, c.Save(path, SaveOptions{DPI: 100, Encoder: enc}))
	first, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(first), "2200x1700")

	require.NoError(t, c.Save(path, SaveOptions{DPI: 100, Encoder: enc}))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, enc.calls)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestSaveBackgroundOverride(t *testing.T) {
	c := newTestCanvas(t)
	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf, SaveOptions{Background: palette.Surface, Encoder: &textEncoder{}}))
	assert.Contains(t, buf.String(), fmt.Sprint(palette.Default().MustResolve(palette.Surface)))
	assert.Contains(t, buf.String(), "4400x3400", "default resolution")

	err := c.Encode(&buf, SaveOptions{Background: "accent-pink", Encoder: &textEncoder{}})
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownRole))
}

func TestSaveFailures(t *testing.T) {
	c := newTestCanvas(t)
	dir := t.TempDir()

	err := c.Save(filepath.Join(dir, "missing", "out.png"), SaveOptions{Encoder: &textEncoder{}})
	assert.True(t, errors.Is(err, errors.ErrCodeExport))

	err = c.Save(filepath.Join(dir, "out.png"), SaveOptions{Encoder: failingEncoder{}})
	assert.True(t, errors.Is(err, errors.ErrCodeExport))
	_, statErr := os.Stat(filepath.Join(dir, "out.png"))
	assert.True(t, os.IsNotExist(statErr))

	err = c.Save("", SaveOptions{Encoder: &textEncoder{}})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPath))

	err = c.Save(filepath.Join(dir, "out.png"), SaveOptions{DPI: -5, Encoder: &textEncoder{}})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidGeometry))

	err = c.Save(filepath.Join(dir, "out.png"), SaveOptions{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestParseAlignments(t *testing.T) {
	h, err := ParseHAlign("Right")
	require.NoError(t, err)
	assert.Equal(t, HAlignRight, h)
	_, err = ParseHAlign("justify")
	assert.Error(t, err)

	v, err := ParseVAlign("baseline")
	require.NoError(t, err)
	assert.Equal(t, VAlignBaseline, v)

	s, err := ParseLineStyle("dashed")
	require.NoError(t, err)
	assert.Equal(t, Dashed, s)
	assert.Equal(t, []float64{3.7 * 2, 1.6 * 2}, DashPattern(2))
}

func TestLines(t *testing.T) {
	c := newTestCanvas(t)
	for _, l := range Lines(Label{At: Pt(13.5, 11.2), Color: "accent-teal-light"}, 0.2, "/actuator", "/prometheus") {
		require.NoError(t, c.Label(l))
	}
	ops := c.Ops()
	require.Len(t, ops, 2)
	assert.Equal(t, "/prometheus", ops[1].(*TextOp).Text)
	assert.InDelta(t, 11.0, ops[1].(*TextOp).Y, 1e-9)
}

func TestLabelsAllOrNothing(t *testing.T) {
	c := newTestCanvas(t)
	err := c.Labels(
		Label{At: Pt(1, 1), Text: "ok"},
		Label{At: Pt(1, 2), Text: "bad", Color: "accent-pink"},
	)
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownRole))
	assert.Zero(t, c.Len())

	require.NoError(t, c.Labels(Label{At: Pt(1, 1), Text: "a"}, Label{At: Pt(1, 2), Text: "b"}))
	assert.Equal(t, 2, c.Len())
}
