package palette

import "maps"

// Roles used by the built-in components. Scenes may define any other role
// names they like; these are the ones presets fall back on.
const (
	Background      Role = "background"
	PanelBackground Role = "panel-background"
	Border          Role = "border"
	Surface         Role = "surface"
	Text            Role = "text"
	TextDim         Role = "text-dim"
	TextHeader      Role = "text-header"
	TextInverse     Role = "text-inverse"
)

// defaultEntries is the dark theme the deployment diagram was designed for.
var defaultEntries = map[Role]string{
	Background:      "#0d1117",
	PanelBackground: "#161b22",
	Border:          "#30363d",
	Surface:         "#21262d",
	Text:            "#e6edf3",
	TextDim:         "#8b949e",
	TextHeader:      "#f0f6fc",
	TextInverse:     "#ffffff",

	"accent-green":        "#238636",
	"accent-green-light":  "#2ea043",
	"accent-blue":         "#1f6feb",
	"accent-blue-light":   "#388bfd",
	"accent-purple":       "#6e40c9",
	"accent-purple-light": "#8957e5",
	"accent-orange":       "#d1782a",
	"accent-orange-light": "#e8912d",
	"accent-red":          "#b91c1c",
	"accent-red-light":    "#dc2626",
	"accent-teal":         "#0e7490",
	"accent-teal-light":   "#0891b2",
	"accent-yellow":       "#9e6a03",
	"accent-yellow-light": "#d29922",

	"kafka-background":   "#1a2332",
	"infra-background":   "#141d26",
	"monitor-background": "#1a1f2e",
	"topics-background":  "#1c2a1c",
	"oneshot-background": "#1a1a2e",
}

// DefaultEntries returns a copy of the built-in dark theme table.
func DefaultEntries() map[Role]string {
	return maps.Clone(defaultEntries)
}

// Default returns the built-in dark theme.
func Default() *Palette {
	p, err := New(defaultEntries)
	if err != nil {
		panic(err) // built-in table is static
	}
	return p
}
