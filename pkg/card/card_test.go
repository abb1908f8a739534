package card

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/archdiagram/pkg/canvas"
	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/palette"
)

func newCanvas(t *testing.T) *canvas.Canvas {
	t.Helper()
	c, err := canvas.New(28, 20, palette.Background, palette.Default())
	require.NoError(t, err)
	return c
}

func texts(c *canvas.Canvas) []*canvas.TextOp {
	var out []*canvas.TextOp
	for _, op := range c.Ops() {
		if t, ok := op.(*canvas.TextOp); ok {
			out = append(out, t)
		}
	}
	return out
}

func TestRowLayout(t *testing.T) {
	for n := 0; n <= 10; n++ {
		t.Run(fmt.Sprintf("rows=%d", n), func(t *testing.T) {
			k := Card{
				X: 1, Y: 1, W: 4, H: 5,
				Title:    "svc",
				Subtitle: "sub",
				Fill:     palette.PanelBackground,
				Accent:   "accent-green",
				Template: Template{BarHeight: 0.4, TitleSize: 7, FirstRow: 0.6, Pitch: 0.25, RowSize: 5.5},
			}
			for i := range n {
				k.Rows = append(k.Rows, Row{Text: fmt.Sprintf("row %d", i)})
			}
			c := newCanvas(t)
			require.NoError(t, k.Draw(c))

			ts := texts(c)
			require.Len(t, ts, n+2)
			// title, then subtitle (row 0), then Rows[i] (row i+1)
			for row, op := range ts[1:] {
				assert.InDelta(t, 6-0.6-float64(row)*0.25, op.Y, 1e-9)
				assert.InDelta(t, 3, op.X, 1e-9)
				assert.Equal(t, canvas.HAlignCenter, op.HAlign)
			}
			for i := 2; i < len(ts); i++ {
				assert.InDelta(t, 0.25, ts[i-1].Y-ts[i].Y, 1e-9, "consecutive rows differ by the pitch")
			}
		})
	}
}

func TestDrawOrder(t *testing.T) {
	c := newCanvas(t)
	k := Service(ServiceSpec{
		X: 0.55, Y: 9.1, W: 3.8, H: 4.3,
		Name:     "alert-api",
		Subtitle: "Spring Boot 4 · Java 25",
		Capacity: Capacity{Label: "JVM", Min: "Xms128m", Max: "Xmx256m", Suffix: "ZGC+Gen"},
		Port:     "8080 ✦ external",
		Details:  []string{"Kafka producer  acks=all", "JWT HS256 auth"},
		Fill:     palette.PanelBackground,
		Accent:   "accent-green",
	})
	require.NoError(t, k.Draw(c))
	ops := c.Ops()
	require.Len(t, ops, 2+1+1+2+2)

	outline := ops[0].(*canvas.RectOp)
	bar := ops[1].(*canvas.RectOp)
	assert.Equal(t, 1.5, outline.StrokeWidth)
	assert.Equal(t, 0.25, outline.Radius)
	assert.Zero(t, bar.StrokeWidth)
	assert.Zero(t, bar.Radius)
	assert.Equal(t, outline.Stroke, bar.Fill, "title bar uses the accent")
	assert.InDelta(t, 13.4-0.48, bar.Y, 1e-9)

	title := ops[2].(*canvas.TextOp)
	assert.Equal(t, "alert-api", title.Text)
	assert.True(t, title.Bold)
	assert.InDelta(t, 13.4-0.24, title.Y, 1e-9)
	assert.Equal(t, palette.Default().MustResolve(palette.TextInverse), title.Color)

	capRow := ops[4].(*canvas.TextOp)
	assert.Equal(t, "JVM  Xms128m / Xmx256m  ZGC+Gen", capRow.Text)
	assert.Equal(t, palette.Default().MustResolve("accent-yellow-light"), capRow.Color)

	port := ops[5].(*canvas.TextOp)
	assert.Equal(t, "port 8080 ✦ external", port.Text)
	assert.Equal(t, palette.Default().MustResolve("accent-green-light"), port.Color)
}

func TestRowsBelowBottomRejected(t *testing.T) {
	c := newCanvas(t)
	k := Monitoring(MonitorSpec{
		X: 1, Y: 1, W: 3, H: 1.2,
		Name: "Loki", Image: "grafana/loki:latest", Access: "port 3100",
		Details: []string{"one", "two", "three", "four"},
		Fill:    palette.PanelBackground, Accent: "accent-teal",
	})
	err := k.Draw(c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidGeometry))
	assert.Zero(t, c.Len())
}

func TestUnknownRoleLeavesCanvasUnchanged(t *testing.T) {
	c := newCanvas(t)
	k := ClusterNode(NodeSpec{
		X: 7.95, Y: 14.05, W: 1.75, H: 2.45,
		Name: "kafka", Image: "apache/kafka:3.9.0", Role: "KRaft broker+controller",
		Attributes: []Attribute{{Text: "Node ID: 1"}, {Text: "EXTERNAL :9092", Highlight: true}},
		Fill:       "kafka-background", Accent: "accent-orange",
	})
	k.Rows[1].Color = "accent-pink"
	err := k.Draw(c)
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownRole))
	assert.Zero(t, c.Len())
}

func TestClusterNodeHighlights(t *testing.T) {
	c := newCanvas(t)
	k := ClusterNode(NodeSpec{
		X: 7.95, Y: 14.05, W: 1.75, H: 2.45,
		Name: "kafka-2", Image: "apache/kafka:3.9.0", Role: "KRaft broker+controller",
		Attributes: []Attribute{
			{Text: "Node ID: 2"},
			{Text: "INTERNAL :19092"},
			{Text: "EXTERNAL :9095  ✦ host", Highlight: true},
			{Text: "CONTROLLER :9093"},
			{Text: "Healthcheck  10s/10r/30s"},
		},
		Fill: "kafka-background", Accent: "accent-orange",
	})
	require.NoError(t, k.Validate())
	require.NoError(t, k.Draw(c))

	light := palette.Default().MustResolve("accent-orange-light")
	dim := palette.Default().MustResolve(palette.TextDim)
	ts := texts(c)
	require.Len(t, ts, 8)
	assert.Equal(t, light, ts[2].Color, "role line")
	assert.Equal(t, dim, ts[3].Color)
	assert.Equal(t, light, ts[5].Color, "external port")
	assert.InDelta(t, 16.5-0.72-6*0.25, ts[7].Y, 1e-9)
}

func TestHighlightFallsBackToAccent(t *testing.T) {
	p, err := palette.New(map[palette.Role]string{"brand": "#123456"})
	require.NoError(t, err)
	assert.Equal(t, palette.Role("brand"), Highlight(p, "brand"))
	assert.Equal(t, palette.Role("accent-teal-light"), Highlight(palette.Default(), "accent-teal"))
}

func TestTemplateValidate(t *testing.T) {
	bad := []Template{
		{BarHeight: 0, Pitch: 0.2, FirstRow: 0.5},
		{BarHeight: 0.4, Pitch: 0, FirstRow: 0.5},
		{BarHeight: 0.4, Pitch: 0.2, FirstRow: 0.3},
		{BarHeight: 0.4, Pitch: 0.2, FirstRow: 0.5, RowSize: -1},
	}
	for i, tmpl := range bad {
		assert.Error(t, tmpl.Validate(), "case %d", i)
	}
	for _, tmpl := range []Template{ServiceTemplate, NodeTemplate, MonitorTemplate} {
		assert.NoError(t, tmpl.Validate())
	}
}

func TestBarTallerThanCard(t *testing.T) {
	k := Card{X: 0, Y: 0, W: 2, H: 0.3, Title: "x", Fill: palette.Surface, Accent: palette.Border}
	assert.True(t, errors.Is(k.Validate(), errors.ErrCodeInvalidGeometry))
}

func TestCapacityString(t *testing.T) {
	assert.Equal(t, "JVM  Xms64m / Xmx128m  ZGC+Gen", Capacity{"JVM", "Xms64m", "Xmx128m", "ZGC+Gen"}.String())
	assert.Equal(t, "heap  512m", Capacity{Label: "heap", Max: "512m"}.String())
	assert.Empty(t, Capacity{}.String())
}
