// Package scene loads diagram documents and assembles them onto a canvas.
//
// A scene is a canvas size, an optional palette override, and an ordered
// list of elements. Elements are drawn strictly in document order, so the
// order of the list is the z-order of the picture: put sections first,
// then cards and connectors, then free-standing labels.
//
// Scenes are written in TOML or YAML:
//
//	title = "Price Alert System"
//
//	[canvas]
//	width = 28
//	height = 20
//	dpi = 160
//
//	[[element]]
//	kind = "section"
//	x = 0.3
//	y = 13.8
//	w = 7.2
//	h = 3.0
//	title = "[INGESTION]"
//	fill = "infra-background"
//	border = "accent-blue"
//
// YAML documents use the key "elements" for the list.
package scene

// Element kinds.
const (
	KindPanel     = "panel"
	KindLabel     = "label"
	KindSection   = "section"
	KindConnector = "connector"
	KindCard      = "card"
	KindService   = "service"
	KindNode      = "node"
	KindMonitor   = "monitor"
	KindTable     = "table"
	KindKeys      = "keys"
	KindList      = "list"
)

// Kinds lists every element kind in documentation order.
var Kinds = []string{
	KindPanel, KindLabel, KindSection, KindConnector,
	KindCard, KindService, KindNode, KindMonitor,
	KindTable, KindKeys, KindList,
}

// Scene is a parsed diagram document.
type Scene struct {
	Title    string            `toml:"title" yaml:"title"`
	Canvas   CanvasSpec        `toml:"canvas" yaml:"canvas"`
	Palette  map[string]string `toml:"palette" yaml:"palette" validate:"omitempty,dive,keys,role,endkeys,palettecolor"`
	Elements []Element         `toml:"-" yaml:"elements" validate:"dive"`
}

// CanvasSpec sizes the drawing surface.
type CanvasSpec struct {
	Width      float64 `toml:"width" yaml:"width" validate:"gt=0,lte=1000"`
	Height     float64 `toml:"height" yaml:"height" validate:"gt=0,lte=1000"`
	Background string  `toml:"background" yaml:"background" validate:"omitempty,role"`
	DPI        float64 `toml:"dpi" yaml:"dpi" validate:"gte=0,lte=2400"`
	Curvature  float64 `toml:"curvature" yaml:"curvature" validate:"gte=-1,lte=1"`
}

// Element is one entry of the element list. Exactly one of the kind
// specific fields is set, matching Kind.
type Element struct {
	Kind string `validate:"required,oneof=panel label section connector card service node monitor table keys list"`
	ID   string `validate:"omitempty,ident"`

	Panel     *PanelElement
	Label     *LabelElement
	Section   *SectionElement
	Connector *ConnectorElement
	Card      *CardElement
	Service   *ServiceElement
	Node      *NodeElement
	Monitor   *MonitorElement
	Table     *TableElement
	Keys      *KeysElement
	List      *ListElement
}

// Box is the shared position and size of rectangular elements.
type Box struct {
	X float64 `toml:"x" yaml:"x"`
	Y float64 `toml:"y" yaml:"y"`
	W float64 `toml:"w" yaml:"w" validate:"gt=0"`
	H float64 `toml:"h" yaml:"h" validate:"gt=0"`
}

// PanelElement is a plain rounded rectangle.
type PanelElement struct {
	Box `yaml:",inline"`

	Fill        string   `toml:"fill" yaml:"fill" validate:"required,role"`
	Border      string   `toml:"border" yaml:"border" validate:"omitempty,role"`
	BorderWidth *float64 `toml:"border_width" yaml:"border_width" validate:"omitempty,gte=0"`
	Radius      *float64 `toml:"radius" yaml:"radius" validate:"omitempty,gte=0"`
	Opacity     float64  `toml:"opacity" yaml:"opacity" validate:"gte=0,lte=1"`
}

// LabelElement is one line of text, or several lines at a fixed pitch.
type LabelElement struct {
	X      float64  `toml:"x" yaml:"x"`
	Y      float64  `toml:"y" yaml:"y"`
	Text   string   `toml:"text" yaml:"text" validate:"required_without=Lines"`
	Lines  []string `toml:"lines" yaml:"lines"`
	Pitch  float64  `toml:"pitch" yaml:"pitch" validate:"gte=0"`
	Size   float64  `toml:"size" yaml:"size" validate:"gte=0,lte=200"`
	Color  string   `toml:"color" yaml:"color" validate:"omitempty,role"`
	Bold   bool     `toml:"bold" yaml:"bold"`
	Italic bool     `toml:"italic" yaml:"italic"`
	Align  string   `toml:"align" yaml:"align" validate:"omitempty,oneof=left center right"`
	VAlign string   `toml:"valign" yaml:"valign" validate:"omitempty,oneof=top center bottom baseline"`
}

// SectionElement is a translucent grouping background with a title.
type SectionElement struct {
	Box `yaml:",inline"`

	Title      string `toml:"title" yaml:"title"`
	Fill       string `toml:"fill" yaml:"fill" validate:"required,role"`
	Border     string `toml:"border" yaml:"border" validate:"required,role"`
	TitleColor string `toml:"title_color" yaml:"title_color" validate:"omitempty,role"`
}

// ConnectorElement is a directed line between two absolute points.
// FromID and ToID name the elements it links for the topology view.
type ConnectorElement struct {
	From       []float64 `toml:"from" yaml:"from" validate:"len=2"`
	To         []float64 `toml:"to" yaml:"to" validate:"len=2"`
	FromID     string    `toml:"from_id" yaml:"from_id" validate:"omitempty,ident"`
	ToID       string    `toml:"to_id" yaml:"to_id" validate:"omitempty,ident"`
	Color      string    `toml:"color" yaml:"color" validate:"required,role"`
	Width      float64   `toml:"width" yaml:"width" validate:"gte=0"`
	Style      string    `toml:"style" yaml:"style" validate:"omitempty,oneof=solid dashed"`
	Label      string    `toml:"label" yaml:"label"`
	LabelColor string    `toml:"label_color" yaml:"label_color" validate:"omitempty,role"`
	LabelSize  float64   `toml:"label_size" yaml:"label_size" validate:"gte=0"`
	LabelAt    []float64 `toml:"label_at" yaml:"label_at" validate:"omitempty,len=2"`
}

// RowElement is one row of a generic card.
type RowElement struct {
	Text      string  `toml:"text" yaml:"text"`
	Color     string  `toml:"color" yaml:"color" validate:"omitempty,role"`
	Size      float64 `toml:"size" yaml:"size" validate:"gte=0"`
	Bold      bool    `toml:"bold" yaml:"bold"`
	Highlight bool    `toml:"highlight" yaml:"highlight"`
}

// CardElement is a card with free-form rows on one of the named templates.
type CardElement struct {
	Box `yaml:",inline"`

	Title    string       `toml:"title" yaml:"title" validate:"required"`
	Subtitle string       `toml:"subtitle" yaml:"subtitle"`
	Rows     []RowElement `toml:"rows" yaml:"rows" validate:"dive"`
	Fill     string       `toml:"fill" yaml:"fill" validate:"required,role"`
	Accent   string       `toml:"accent" yaml:"accent" validate:"required,role"`
	Template string       `toml:"template" yaml:"template" validate:"omitempty,oneof=service node monitor"`

	// Template overrides; zero keeps the template value.
	Pitch     float64 `toml:"pitch" yaml:"pitch" validate:"gte=0"`
	BarHeight float64 `toml:"bar_height" yaml:"bar_height" validate:"gte=0"`
	TitleSize float64 `toml:"title_size" yaml:"title_size" validate:"gte=0"`
}

// CapacityElement is a min/max resource bound.
type CapacityElement struct {
	Label  string `toml:"label" yaml:"label"`
	Min    string `toml:"min" yaml:"min"`
	Max    string `toml:"max" yaml:"max"`
	Suffix string `toml:"suffix" yaml:"suffix"`
}

// ServiceElement is an application service card.
type ServiceElement struct {
	Box `yaml:",inline"`

	Title         string          `toml:"title" yaml:"title" validate:"required"`
	Subtitle      string          `toml:"subtitle" yaml:"subtitle"`
	Capacity      CapacityElement `toml:"capacity" yaml:"capacity"`
	Port          string          `toml:"port" yaml:"port"`
	Details       []string        `toml:"details" yaml:"details"`
	Fill          string          `toml:"fill" yaml:"fill" validate:"required,role"`
	Accent        string          `toml:"accent" yaml:"accent" validate:"required,role"`
	PortColor     string          `toml:"port_color" yaml:"port_color" validate:"omitempty,role"`
	CapacityColor string          `toml:"capacity_color" yaml:"capacity_color" validate:"omitempty,role"`
}

// AttributeElement is one fixed line of a cluster node card.
type AttributeElement struct {
	Text      string `toml:"text" yaml:"text" validate:"required"`
	Highlight bool   `toml:"highlight" yaml:"highlight"`
}

// NodeElement is one member of a replicated cluster.
type NodeElement struct {
	Box `yaml:",inline"`

	Title      string             `toml:"title" yaml:"title" validate:"required"`
	Image      string             `toml:"image" yaml:"image"`
	Role       string             `toml:"role" yaml:"role"`
	Attributes []AttributeElement `toml:"attributes" yaml:"attributes" validate:"max=6,dive"`
	Fill       string             `toml:"fill" yaml:"fill" validate:"required,role"`
	Accent     string             `toml:"accent" yaml:"accent" validate:"required,role"`
}

// MonitorElement is an observability component card.
type MonitorElement struct {
	Box `yaml:",inline"`

	Title   string   `toml:"title" yaml:"title" validate:"required"`
	Image   string   `toml:"image" yaml:"image"`
	Access  string   `toml:"access" yaml:"access"`
	Details []string `toml:"details" yaml:"details"`
	Fill    string   `toml:"fill" yaml:"fill" validate:"required,role"`
	Accent  string   `toml:"accent" yaml:"accent" validate:"required,role"`
}

// TableElement is a header row plus data rows at fixed columns.
type TableElement struct {
	X           float64    `toml:"x" yaml:"x"`
	Y           float64    `toml:"y" yaml:"y"`
	Columns     []float64  `toml:"columns" yaml:"columns" validate:"min=1"`
	Header      []string   `toml:"header" yaml:"header"`
	Rows        [][]string `toml:"rows" yaml:"rows"`
	Pitch       float64    `toml:"pitch" yaml:"pitch" validate:"gt=0"`
	HeaderGap   float64    `toml:"header_gap" yaml:"header_gap" validate:"gte=0"`
	HeaderColor string     `toml:"header_color" yaml:"header_color" validate:"omitempty,role"`
	CellColor   string     `toml:"cell_color" yaml:"cell_color" validate:"omitempty,role"`
	HeaderSize  float64    `toml:"header_size" yaml:"header_size" validate:"gte=0"`
	CellSize    float64    `toml:"cell_size" yaml:"cell_size" validate:"gte=0"`
}

// KeyElement is one line-style legend entry.
type KeyElement struct {
	Color  string `toml:"color" yaml:"color" validate:"required,role"`
	Text   string `toml:"text" yaml:"text"`
	Dashed bool   `toml:"dashed" yaml:"dashed"`
}

// KeysElement is a column of line-style samples.
type KeysElement struct {
	X           float64      `toml:"x" yaml:"x"`
	Y           float64      `toml:"y" yaml:"y"`
	Pitch       float64      `toml:"pitch" yaml:"pitch" validate:"gte=0"`
	SwatchWidth float64      `toml:"swatch_width" yaml:"swatch_width" validate:"gte=0"`
	LineWidth   float64      `toml:"line_width" yaml:"line_width" validate:"gte=0"`
	TextColor   string       `toml:"text_color" yaml:"text_color" validate:"omitempty,role"`
	TextSize    float64      `toml:"text_size" yaml:"text_size" validate:"gte=0"`
	Items       []KeyElement `toml:"items" yaml:"items" validate:"min=1,dive"`
}

// ItemElement is one entry of a list.
type ItemElement struct {
	Text   string `toml:"text" yaml:"text"`
	Color  string `toml:"color" yaml:"color" validate:"omitempty,role"`
	Bold   bool   `toml:"bold" yaml:"bold"`
	Detail string `toml:"detail" yaml:"detail"`
}

// ListElement is a titled stack of items.
type ListElement struct {
	X          float64       `toml:"x" yaml:"x"`
	Y          float64       `toml:"y" yaml:"y"`
	Title      string        `toml:"title" yaml:"title"`
	TitleX     float64       `toml:"title_x" yaml:"title_x"`
	TitleColor string        `toml:"title_color" yaml:"title_color" validate:"omitempty,role"`
	TitleSize  float64       `toml:"title_size" yaml:"title_size" validate:"gte=0"`
	TitleGap   float64       `toml:"title_gap" yaml:"title_gap" validate:"gte=0"`
	Pitch      float64       `toml:"pitch" yaml:"pitch" validate:"gt=0"`
	Color      string        `toml:"color" yaml:"color" validate:"omitempty,role"`
	Size       float64       `toml:"size" yaml:"size" validate:"gte=0"`
	DetailSize float64       `toml:"detail_size" yaml:"detail_size" validate:"gte=0"`
	Items      []ItemElement `toml:"items" yaml:"items" validate:"dive"`
}
