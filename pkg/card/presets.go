package card

import (
	"strings"

	"github.com/matzehuels/archdiagram/pkg/palette"
)

// Templates for the three card shapes.
var (
	ServiceTemplate = Template{
		BarHeight:    0.48,
		TitleSize:    7.5,
		FirstRow:     0.72,
		Pitch:        0.27,
		SubtitleSize: 6.2,
		RowSize:      5.8,
		BorderWidth:  1.5,
		Radius:       0.25,
	}
	NodeTemplate = Template{
		BarHeight:    0.45,
		TitleSize:    7.0,
		FirstRow:     0.72,
		Pitch:        0.25,
		SubtitleSize: 5.5,
		RowSize:      5.5,
		BorderWidth:  1.5,
		Radius:       0.25,
	}
	MonitorTemplate = Template{
		BarHeight:    0.38,
		TitleSize:    7.0,
		FirstRow:     0.55,
		Pitch:        0.24,
		SubtitleSize: 5.5,
		RowSize:      5.5,
		BorderWidth:  1.3,
		Radius:       0.25,
	}

	// DefaultTemplate is used by cards that leave Template zero.
	DefaultTemplate = ServiceTemplate
)

// Capacity is a min/max resource bound such as a heap range.
type Capacity struct {
	Label  string // e.g. "JVM"
	Min    string // e.g. "Xms128m"
	Max    string // e.g. "Xmx256m"
	Suffix string // e.g. "ZGC+Gen"
}

// String renders the bound as "Label  Min / Max  Suffix", skipping empty parts.
func (c Capacity) String() string {
	var parts []string
	if c.Label != "" {
		parts = append(parts, c.Label)
	}
	switch {
	case c.Min != "" && c.Max != "":
		parts = append(parts, c.Min+" / "+c.Max)
	case c.Min != "":
		parts = append(parts, c.Min)
	case c.Max != "":
		parts = append(parts, c.Max)
	}
	if c.Suffix != "" {
		parts = append(parts, c.Suffix)
	}
	return strings.Join(parts, "  ")
}

// ServiceSpec describes an application service.
type ServiceSpec struct {
	X, Y, W, H    float64
	Name          string
	Subtitle      string
	Capacity      Capacity
	Port          string // rendered as "port <Port>"
	Details       []string
	Fill          palette.Role
	Accent        palette.Role
	CapacityColor palette.Role // empty uses accent-yellow-light
	PortColor     palette.Role // empty uses the accent's light variant
}

// Service builds a service card: subtitle, capacity row, port row, details.
func Service(s ServiceSpec) Card {
	capColor := s.CapacityColor
	if capColor == "" {
		capColor = "accent-yellow-light"
	}
	rows := []Row{
		{Text: s.Capacity.String(), Color: capColor, Size: 6.0},
		{Text: portText(s.Port), Color: s.PortColor, Size: 6.0, Highlight: s.PortColor == ""},
	}
	for _, d := range s.Details {
		rows = append(rows, Row{Text: d})
	}
	return Card{
		X: s.X, Y: s.Y, W: s.W, H: s.H,
		Title:    s.Name,
		Subtitle: s.Subtitle,
		Rows:     rows,
		Fill:     s.Fill,
		Accent:   s.Accent,
		Template: ServiceTemplate,
	}
}

// Attribute is one fixed line on a cluster node card.
type Attribute struct {
	Text      string
	Highlight bool
}

// NodeSpec describes one member of a replicated cluster.
type NodeSpec struct {
	X, Y, W, H float64
	Name       string
	Image      string
	Role       string // highlighted line below the image tag
	Attributes []Attribute
	Fill       palette.Role
	Accent     palette.Role
}

// ClusterNode builds a cluster node card: image tag, role, attributes.
func ClusterNode(n NodeSpec) Card {
	rows := []Row{{Text: n.Role, Size: 5.7, Highlight: true}}
	for _, a := range n.Attributes {
		rows = append(rows, Row{Text: a.Text, Highlight: a.Highlight})
	}
	return Card{
		X: n.X, Y: n.Y, W: n.W, H: n.H,
		Title:    n.Name,
		Subtitle: n.Image,
		Rows:     rows,
		Fill:     n.Fill,
		Accent:   n.Accent,
		Template: NodeTemplate,
	}
}

// MonitorSpec describes an observability component.
type MonitorSpec struct {
	X, Y, W, H float64
	Name       string
	Image      string
	Access     string // how operators reach it, e.g. "port 9090"
	Details    []string
	Fill       palette.Role
	Accent     palette.Role
}

// Monitoring builds a monitoring card: image tag, highlighted access line,
// details.
func Monitoring(m MonitorSpec) Card {
	rows := []Row{{Text: m.Access, Size: 5.8, Highlight: true}}
	for _, d := range m.Details {
		rows = append(rows, Row{Text: d})
	}
	return Card{
		X: m.X, Y: m.Y, W: m.W, H: m.H,
		Title:    m.Name,
		Subtitle: m.Image,
		Rows:     rows,
		Fill:     m.Fill,
		Accent:   m.Accent,
		Template: MonitorTemplate,
	}
}

func portText(port string) string {
	if port == "" {
		return ""
	}
	return "port " + port
}
