package scene

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/archdiagram/pkg/canvas"
	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/palette"
)

const demoTOML = `
title = "Demo"

[canvas]
width = 10.0
height = 6.0
dpi = 100.0

[palette]
accent-pink = "#ff00aa"

[[element]]
kind = "section"
x = 0.2
y = 0.2
w = 9.6
h = 5.6
title = "[LANE]"
fill = "infra-background"
border = "accent-blue"

[[element]]
kind = "service"
id = "api"
x = 0.5
y = 1.0
w = 3.5
h = 3.0
title = "alert-api"
subtitle = "Spring Boot"
port = "8080"
details = ["REST + WS"]
fill = "panel-background"
accent = "accent-green"
capacity = { label = "JVM", min = "Xms128m", max = "Xmx256m" }

[[element]]
kind = "monitor"
id = "prom"
x = 6.0
y = 1.0
w = 3.5
h = 3.0
title = "Prometheus"
image = "prom/prometheus"
access = "port 9090"
fill = "monitor-background"
accent = "accent-teal"

[[element]]
kind = "connector"
from = [4.0, 2.5]
to = [6.0, 2.5]
from_id = "api"
to_id = "prom"
color = "accent-pink"
label = "scrape"

[[element]]
kind = "label"
x = 5.0
y = 5.0
lines = ["a", "b"]
`

const demoYAML = `
title: Demo
canvas:
  width: 10
  height: 6
  dpi: 100
palette:
  accent-pink: "#ff00aa"
elements:
  - kind: section
    x: 0.2
    y: 0.2
    w: 9.6
    h: 5.6
    title: "[LANE]"
    fill: infra-background
    border: accent-blue
  - kind: service
    id: api
    x: 0.5
    y: 1.0
    w: 3.5
    h: 3.0
    title: alert-api
    subtitle: Spring Boot
    port: "8080"
    details: ["REST + WS"]
    fill: panel-background
    accent: accent-green
    capacity: {label: JVM, min: Xms128m, max: Xmx256m}
  - kind: monitor
    id: prom
    x: 6.0
    y: 1.0
    w: 3.5
    h: 3.0
    title: Prometheus
    image: prom/prometheus
    access: port 9090
    fill: monitor-background
    accent: accent-teal
  - kind: connector
    from: [4.0, 2.5]
    to: [6.0, 2.5]
    from_id: api
    to_id: prom
    color: accent-pink
    label: scrape
  - kind: label
    x: 5.0
    y: 5.0
    lines: [a, b]
`

func parseValid(t *testing.T, data, format string) *Scene {
	t.Helper()
	s, err := Parse([]byte(data), format)
	require.NoError(t, err)
	require.NoError(t, Validate(s))
	return s
}

func TestParseTOML(t *testing.T) {
	s := parseValid(t, demoTOML, FormatTOML)

	assert.Equal(t, "Demo", s.Title)
	assert.Equal(t, 10.0, s.Canvas.Width)
	require.Len(t, s.Elements, 5)
	assert.Equal(t, KindService, s.Elements[1].Kind)
	assert.Equal(t, "api", s.Elements[1].ID)
	assert.Equal(t, "Xms128m", s.Elements[1].Service.Capacity.Min)
	assert.Equal(t, []float64{4, 2.5}, s.Elements[3].Connector.From)
	assert.Equal(t, []string{"a", "b"}, s.Elements[4].Label.Lines)
}

func TestYAMLMatchesTOML(t *testing.T) {
	fromTOML, err := Build(parseValid(t, demoTOML, FormatTOML))
	require.NoError(t, err)
	fromYAML, err := Build(parseValid(t, demoYAML, FormatYAML))
	require.NoError(t, err)

	assert.Equal(t, fromTOML.Ops(), fromYAML.Ops())
}

func TestBuildDrawsInDocumentOrder(t *testing.T) {
	c, err := Build(parseValid(t, demoTOML, FormatTOML))
	require.NoError(t, err)

	// section 2, service 7, monitor 5, connector 3, two lines 2
	ops := c.Ops()
	require.Len(t, ops, 19)

	bg, ok := ops[0].(*canvas.RectOp)
	require.True(t, ok)
	assert.InDelta(t, canvas.SectionOpacity, bg.Opacity, 1e-9)

	line, ok := ops[14].(*canvas.LineOp)
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0x00, B: 0xaa, A: 0xff}, line.Color)

	last, ok := ops[18].(*canvas.TextOp)
	require.True(t, ok)
	assert.Equal(t, "b", last.Text)
	assert.InDelta(t, 5.0-DefaultLinePitch, last.Y, 1e-9)
}

func TestElementHook(t *testing.T) {
	var counts []int
	_, err := Build(parseValid(t, demoTOML, FormatTOML), WithElementHook(func(i int, el Element, ops int, err error) {
		assert.NoError(t, err)
		counts = append(counts, ops)
	}))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 7, 5, 3, 2}, counts)
}

func TestBuildOptions(t *testing.T) {
	s := parseValid(t, demoTOML, FormatTOML)

	c, err := Build(s, WithBackground("surface"), WithPaletteOverrides(map[string]string{"accent-pink": "#00ff00"}))
	require.NoError(t, err)
	assert.Equal(t, palette.Role("surface"), c.Background())
	pink := c.Palette().MustResolve("accent-pink")
	assert.Equal(t, uint8(0xff), pink.G)

	base, err := palette.New(map[palette.Role]string{palette.Background: "#fff"})
	require.NoError(t, err)
	_, err = Build(s, WithBasePalette(base))
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownRole), "got %v", err)
}

func TestPaletteLayers(t *testing.T) {
	s := parseValid(t, demoTOML, FormatTOML)

	p, err := Palette(s)
	require.NoError(t, err)
	assert.Equal(t, palette.Default().Len()+1, p.Len())

	_, err = Palette(s, WithPaletteOverrides(map[string]string{"accent-pink": "pink"}))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidColor))
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		name, format, doc string
	}{
		{"toml top level", FormatTOML, "bogus = 1\n[canvas]\nwidth = 1.0\nheight = 1.0\n"},
		{"toml element", FormatTOML, "[[element]]\nkind = \"label\"\ntext = \"x\"\ncolour = \"text\"\n"},
		{"yaml top level", FormatYAML, "bogus: 1\n"},
		{"yaml element", FormatYAML, "elements:\n  - kind: label\n    text: x\n    colour: text\n"},
		{"toml bad kind", FormatTOML, "[[element]]\nkind = \"circle\"\n"},
		{"yaml missing kind", FormatYAML, "elements:\n  - text: x\n"},
		{"toml syntax", FormatTOML, "[canvas\n"},
		{"yaml empty", FormatYAML, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc), tc.format)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidScene), "got %v", err)
		})
	}

	_, err := Parse([]byte("x"), "json")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestValidateRejects(t *testing.T) {
	head := "[canvas]\nwidth = 10.0\nheight = 6.0\n"
	card := "[[element]]\nkind = \"card\"\nid = \"a\"\nx = 1.0\ny = 1.0\nw = 3.0\nh = 2.0\ntitle = \"A\"\nfill = \"surface\"\naccent = \"accent-blue\"\n"
	section := "[[element]]\nkind = \"section\"\nx = 0.0\ny = 0.0\nw = 5.0\nh = 5.0\nfill = \"surface\"\nborder = \"border\"\n"

	tests := []struct {
		name string
		doc  string
		code errors.Code
		msg  string
	}{
		{"zero width", "[canvas]\nwidth = 0.0\nheight = 6.0\n", errors.ErrCodeInvalidScene, "canvas.width"},
		{"bad palette color", head + "[palette]\nink = \"blue\"\n", errors.ErrCodeInvalidScene, "palettecolor"},
		{"bad palette role", head + "[palette]\n\"Ink!\" = \"#000\"\n", errors.ErrCodeInvalidScene, "role"},
		{"unknown role", head + "[[element]]\nkind = \"label\"\ntext = \"x\"\ncolor = \"nope\"\n", errors.ErrCodeUnknownRole, "element[0]"},
		{"negative width", head + "[[element]]\nkind = \"panel\"\nx = 0.0\ny = 0.0\nw = -1.0\nh = 1.0\nfill = \"surface\"\n", errors.ErrCodeInvalidScene, "w"},
		{"label text and lines", head + "[[element]]\nkind = \"label\"\ntext = \"x\"\nlines = [\"y\"]\n", errors.ErrCodeInvalidScene, "mutually exclusive"},
		{"label without text", head + "[[element]]\nkind = \"label\"\nx = 1.0\n", errors.ErrCodeInvalidScene, "text"},
		{"bad align", head + "[[element]]\nkind = \"label\"\ntext = \"x\"\nalign = \"justify\"\n", errors.ErrCodeInvalidScene, "oneof"},
		{"duplicate id", head + card + card, errors.ErrCodeInvalidScene, "duplicate id"},
		{"unknown ref", head + card + "[[element]]\nkind = \"connector\"\nfrom = [0.0, 0.0]\nto = [1.0, 1.0]\ncolor = \"text\"\nto_id = \"b\"\n", errors.ErrCodeInvalidScene, "unknown id"},
		{"short point", head + "[[element]]\nkind = \"connector\"\nfrom = [0.0]\nto = [1.0, 1.0]\ncolor = \"text\"\n", errors.ErrCodeInvalidScene, "len"},
		{"section over card", head + card + section, errors.ErrCodeInvalidScene, "sections must come before"},
		{"ragged table", head + "[[element]]\nkind = \"table\"\ncolumns = [0.0, 1.0]\nrows = [[\"a\"]]\npitch = 0.2\n", errors.ErrCodeInvalidScene, "rows[0]"},
		{"row below card", head + "[[element]]\nkind = \"card\"\nx = 1.0\ny = 1.0\nw = 3.0\nh = 1.0\ntitle = \"A\"\nfill = \"surface\"\naccent = \"accent-blue\"\nrows = [{text = \"1\"}, {text = \"2\"}, {text = \"3\"}]\n", errors.ErrCodeInvalidGeometry, "element[0]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Parse([]byte(tc.doc), FormatTOML)
			require.NoError(t, err)
			err = Validate(s)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.code), "got %v", err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestValidateBodyMismatch(t *testing.T) {
	s := &Scene{
		Canvas:   CanvasSpec{Width: 4, Height: 4},
		Elements: []Element{{Kind: KindPanel, Label: &LabelElement{Text: "x"}}},
	}
	err := Validate(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panel configuration is required")

	s.Elements[0].Panel = &PanelElement{Box: Box{W: 1, H: 1}, Fill: "surface"}
	err = Validate(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected label configuration")

	assert.Error(t, Validate(nil))
}

func TestPanelDefaults(t *testing.T) {
	p := (&PanelElement{Box: Box{W: 0.3, H: 2}, Fill: "surface", Border: "border"}).descriptor()
	assert.Equal(t, DefaultPanelBorderWidth, p.BorderWidth)
	assert.InDelta(t, 0.15, p.Radius, 1e-9)

	zero := 0.0
	p = (&PanelElement{Box: Box{W: 2, H: 2}, Fill: "surface", Border: "border", BorderWidth: &zero, Radius: &zero}).descriptor()
	assert.Zero(t, p.BorderWidth)
	assert.Zero(t, p.Radius)

	p = (&PanelElement{Box: Box{W: 2, H: 2}, Fill: "surface"}).descriptor()
	assert.Zero(t, p.BorderWidth)
	assert.Equal(t, DefaultPanelRadius, p.Radius)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "demo.toml")
	require.NoError(t, os.WriteFile(path, []byte(demoTOML), 0o644))
	s, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, s.Elements, 5)

	path = filepath.Join(dir, "demo.yml")
	require.NoError(t, os.WriteFile(path, []byte(demoYAML), 0o644))
	_, err = Load(path)
	require.NoError(t, err)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))

	_, err = Load(filepath.Join(dir, "demo.json"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestLoadPalette(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "light.toml")
	require.NoError(t, os.WriteFile(path, []byte("[palette]\nbackground = \"#ffffff\"\ntext = \"#111\"\n"), 0o644))
	entries, err := LoadPalette(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"background": "#ffffff", "text": "#111"}, entries)

	path = filepath.Join(dir, "light.yaml")
	require.NoError(t, os.WriteFile(path, []byte("palette:\n  background: \"#fff\"\n"), 0o644))
	entries, err = LoadPalette(path)
	require.NoError(t, err)
	assert.Equal(t, "#fff", entries["background"])

	path = filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[palette]\nbackground = \"white\"\n"), 0o644))
	_, err = LoadPalette(path)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidColor))

	path = filepath.Join(dir, "extra.toml")
	require.NoError(t, os.WriteFile(path, []byte("[palette]\nbackground = \"#fff\"\n[other]\nx = 1\n"), 0o644))
	_, err = LoadPalette(path)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidColor))

	_, err = LoadPalette(filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestIDs(t *testing.T) {
	s := parseValid(t, demoTOML, FormatTOML)
	assert.Equal(t, map[string]int{"api": 1, "prom": 2}, IDs(s))
}

func TestFormatForPath(t *testing.T) {
	for path, want := range map[string]string{"a.toml": FormatTOML, "b.YAML": FormatYAML, "c.yml": FormatYAML} {
		got, err := FormatForPath(path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := FormatForPath("noext")
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "noext"))
}
