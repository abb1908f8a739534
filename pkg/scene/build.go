package scene

import (
	"github.com/matzehuels/archdiagram/pkg/canvas"
	"github.com/matzehuels/archdiagram/pkg/card"
	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/legend"
	"github.com/matzehuels/archdiagram/pkg/palette"
)

// Defaults applied to fields a scene leaves empty.
const (
	DefaultPanelBorderWidth = 1.2
	DefaultPanelRadius      = 0.25
	DefaultLinePitch        = 0.2
)

// ElementHook observes each element after it has been drawn. ops is the
// number of display-list entries the element added.
type ElementHook func(index int, el Element, ops int, err error)

type buildConfig struct {
	base       *palette.Palette
	overrides  map[string]string
	background string
	onElement  ElementHook
}

// Option configures Build.
type Option func(*buildConfig)

// WithBasePalette replaces the built-in dark theme as the starting palette.
func WithBasePalette(p *palette.Palette) Option {
	return func(c *buildConfig) { c.base = p }
}

// WithPaletteOverrides merges entries over the scene's own palette table.
func WithPaletteOverrides(entries map[string]string) Option {
	return func(c *buildConfig) { c.overrides = entries }
}

// WithBackground overrides the canvas background role.
func WithBackground(role string) Option {
	return func(c *buildConfig) { c.background = role }
}

// WithElementHook registers fn to run after each element is drawn.
func WithElementHook(fn ElementHook) Option {
	return func(c *buildConfig) { c.onElement = fn }
}

// Palette returns the frozen palette a scene draws with: the base palette,
// then the scene's table, then any overrides.
func Palette(s *Scene, opts ...Option) (*palette.Palette, error) {
	cfg := newBuildConfig(opts)
	return cfg.palette(s)
}

func newBuildConfig(opts []Option) *buildConfig {
	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.base == nil {
		cfg.base = palette.Default()
	}
	return cfg
}

func (cfg *buildConfig) palette(s *Scene) (*palette.Palette, error) {
	entries := make(map[palette.Role]string, len(s.Palette)+len(cfg.overrides))
	for role, hex := range s.Palette {
		entries[palette.Role(role)] = hex
	}
	for role, hex := range cfg.overrides {
		entries[palette.Role(role)] = hex
	}
	if len(entries) == 0 {
		return cfg.base, nil
	}
	return cfg.base.Merge(entries)
}

// Build creates the canvas described by s and draws every element in
// document order. It does not run Validate; Validate runs Build.
func Build(s *Scene, opts ...Option) (*canvas.Canvas, error) {
	if s == nil {
		return nil, errors.New(errors.ErrCodeInvalidScene, "scene is nil")
	}
	cfg := newBuildConfig(opts)

	p, err := cfg.palette(s)
	if err != nil {
		return nil, err
	}

	background := s.Canvas.Background
	if cfg.background != "" {
		background = cfg.background
	}
	if background == "" {
		background = string(palette.Background)
	}

	c, err := canvas.New(s.Canvas.Width, s.Canvas.Height, palette.Role(background), p,
		canvas.WithCurvature(s.Canvas.Curvature))
	if err != nil {
		return nil, err
	}

	for i, el := range s.Elements {
		before := c.Len()
		err := el.Draw(c)
		if cfg.onElement != nil {
			cfg.onElement(i, el, c.Len()-before, err)
		}
		if err != nil {
			code := errors.GetCode(err)
			if code == "" {
				code = errors.ErrCodeInvalidScene
			}
			return nil, errors.Wrap(code, err, "%s", fieldForElement(i, el.Kind))
		}
	}
	return c, nil
}

// Draw issues the element's draw calls on c.
func (el Element) Draw(c *canvas.Canvas) error {
	if err := validateElement(el); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScene, err, "%s element", el.Kind)
	}

	switch el.Kind {
	case KindPanel:
		return c.Panel(el.Panel.descriptor())
	case KindLabel:
		return c.Labels(el.Label.descriptors()...)
	case KindSection:
		return c.Section(el.Section.descriptor())
	case KindConnector:
		return c.Connector(el.Connector.descriptor())
	case KindCard:
		return el.Card.descriptor().Draw(c)
	case KindService:
		return el.Service.descriptor().Draw(c)
	case KindNode:
		return el.Node.descriptor().Draw(c)
	case KindMonitor:
		return el.Monitor.descriptor().Draw(c)
	case KindTable:
		return el.Table.descriptor().Draw(c)
	case KindKeys:
		return el.Keys.descriptor().Draw(c)
	case KindList:
		return el.List.descriptor().Draw(c)
	default:
		return errors.New(errors.ErrCodeInvalidScene, "unknown element kind %q", el.Kind)
	}
}

func (p *PanelElement) descriptor() canvas.Panel {
	out := canvas.Panel{
		X: p.X, Y: p.Y, W: p.W, H: p.H,
		Fill:    palette.Role(p.Fill),
		Border:  palette.Role(p.Border),
		Opacity: p.Opacity,
	}
	switch {
	case p.BorderWidth != nil:
		out.BorderWidth = *p.BorderWidth
	case p.Border != "":
		out.BorderWidth = DefaultPanelBorderWidth
	}
	if p.Radius != nil {
		out.Radius = *p.Radius
	} else {
		out.Radius = min(DefaultPanelRadius, min(p.W, p.H)/2)
	}
	return out
}

func (l *LabelElement) descriptors() []canvas.Label {
	tmpl := canvas.Label{
		At:     canvas.Pt(l.X, l.Y),
		Size:   l.Size,
		Color:  palette.Role(l.Color),
		Bold:   l.Bold,
		Italic: l.Italic,
	}
	// Values were checked by the validator; unknown strings fall back to center.
	tmpl.HAlign, _ = canvas.ParseHAlign(l.Align)
	tmpl.VAlign, _ = canvas.ParseVAlign(l.VAlign)

	if len(l.Lines) == 0 {
		tmpl.Text = l.Text
		return []canvas.Label{tmpl}
	}
	pitch := l.Pitch
	if pitch == 0 {
		pitch = DefaultLinePitch
	}
	return canvas.Lines(tmpl, pitch, l.Lines...)
}

func (s *SectionElement) descriptor() canvas.Section {
	return canvas.Section{
		X: s.X, Y: s.Y, W: s.W, H: s.H,
		Title:      s.Title,
		Fill:       palette.Role(s.Fill),
		Border:     palette.Role(s.Border),
		TitleColor: palette.Role(s.TitleColor),
	}
}

func (c *ConnectorElement) descriptor() canvas.Connector {
	out := canvas.Connector{
		Color:      palette.Role(c.Color),
		Width:      c.Width,
		Label:      c.Label,
		LabelColor: palette.Role(c.LabelColor),
		LabelSize:  c.LabelSize,
	}
	if len(c.From) == 2 {
		out.From = canvas.Pt(c.From[0], c.From[1])
	}
	if len(c.To) == 2 {
		out.To = canvas.Pt(c.To[0], c.To[1])
	}
	out.Style, _ = canvas.ParseLineStyle(c.Style)
	if len(c.LabelAt) == 2 {
		at := canvas.Pt(c.LabelAt[0], c.LabelAt[1])
		out.LabelAt = &at
	}
	return out
}

// Templates maps template names to card templates.
var Templates = map[string]card.Template{
	"service": card.ServiceTemplate,
	"node":    card.NodeTemplate,
	"monitor": card.MonitorTemplate,
}

func (k *CardElement) descriptor() card.Card {
	tmpl := card.DefaultTemplate
	if t, ok := Templates[k.Template]; ok {
		tmpl = t
	}
	if k.Pitch > 0 {
		tmpl.Pitch = k.Pitch
	}
	if k.BarHeight > 0 {
		tmpl.BarHeight = k.BarHeight
	}
	if k.TitleSize > 0 {
		tmpl.TitleSize = k.TitleSize
	}
	rows := make([]card.Row, len(k.Rows))
	for i, r := range k.Rows {
		rows[i] = card.Row{
			Text:      r.Text,
			Color:     palette.Role(r.Color),
			Size:      r.Size,
			Bold:      r.Bold,
			Highlight: r.Highlight,
		}
	}
	return card.Card{
		X: k.X, Y: k.Y, W: k.W, H: k.H,
		Title:    k.Title,
		Subtitle: k.Subtitle,
		Rows:     rows,
		Fill:     palette.Role(k.Fill),
		Accent:   palette.Role(k.Accent),
		Template: tmpl,
	}
}

func (s *ServiceElement) descriptor() card.Card {
	return card.Service(card.ServiceSpec{
		X: s.X, Y: s.Y, W: s.W, H: s.H,
		Name:     s.Title,
		Subtitle: s.Subtitle,
		Capacity: card.Capacity{
			Label:  s.Capacity.Label,
			Min:    s.Capacity.Min,
			Max:    s.Capacity.Max,
			Suffix: s.Capacity.Suffix,
		},
		Port:          s.Port,
		Details:       s.Details,
		Fill:          palette.Role(s.Fill),
		Accent:        palette.Role(s.Accent),
		CapacityColor: palette.Role(s.CapacityColor),
		PortColor:     palette.Role(s.PortColor),
	})
}

func (n *NodeElement) descriptor() card.Card {
	attrs := make([]card.Attribute, len(n.Attributes))
	for i, a := range n.Attributes {
		attrs[i] = card.Attribute{Text: a.Text, Highlight: a.Highlight}
	}
	return card.ClusterNode(card.NodeSpec{
		X: n.X, Y: n.Y, W: n.W, H: n.H,
		Name:       n.Title,
		Image:      n.Image,
		Role:       n.Role,
		Attributes: attrs,
		Fill:       palette.Role(n.Fill),
		Accent:     palette.Role(n.Accent),
	})
}

func (m *MonitorElement) descriptor() card.Card {
	return card.Monitoring(card.MonitorSpec{
		X: m.X, Y: m.Y, W: m.W, H: m.H,
		Name:    m.Title,
		Image:   m.Image,
		Access:  m.Access,
		Details: m.Details,
		Fill:    palette.Role(m.Fill),
		Accent:  palette.Role(m.Accent),
	})
}

func (t *TableElement) descriptor() legend.Table {
	return legend.Table{
		X: t.X, Y: t.Y,
		Columns:     t.Columns,
		Header:      t.Header,
		Rows:        t.Rows,
		Pitch:       t.Pitch,
		HeaderGap:   t.HeaderGap,
		HeaderColor: palette.Role(t.HeaderColor),
		CellColor:   palette.Role(t.CellColor),
		HeaderSize:  t.HeaderSize,
		CellSize:    t.CellSize,
	}
}

func (k *KeysElement) descriptor() legend.Keys {
	items := make([]legend.Key, len(k.Items))
	for i, it := range k.Items {
		items[i] = legend.Key{Color: palette.Role(it.Color), Text: it.Text, Dashed: it.Dashed}
	}
	return legend.Keys{
		X: k.X, Y: k.Y,
		Pitch:       k.Pitch,
		SwatchWidth: k.SwatchWidth,
		LineWidth:   k.LineWidth,
		TextColor:   palette.Role(k.TextColor),
		TextSize:    k.TextSize,
		Items:       items,
	}
}

func (l *ListElement) descriptor() legend.List {
	items := make([]legend.Item, len(l.Items))
	for i, it := range l.Items {
		items[i] = legend.Item{Text: it.Text, Color: palette.Role(it.Color), Bold: it.Bold, Detail: it.Detail}
	}
	return legend.List{
		X: l.X, Y: l.Y,
		Title:      l.Title,
		TitleX:     l.TitleX,
		TitleColor: palette.Role(l.TitleColor),
		TitleSize:  l.TitleSize,
		TitleGap:   l.TitleGap,
		Pitch:      l.Pitch,
		Color:      palette.Role(l.Color),
		Size:       l.Size,
		DetailSize: l.DetailSize,
		Items:      items,
	}
}

// IDs returns the ids used in s mapped to their element index.
func IDs(s *Scene) map[string]int {
	out := make(map[string]int)
	for i, el := range s.Elements {
		if el.ID != "" {
			out[el.ID] = i
		}
	}
	return out
}
