package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/palette"
	"github.com/matzehuels/archdiagram/pkg/scene"
)

// Options configures topology rendering.
type Options struct {
	// Detailed adds the element kind and subtitle to node labels.
	// When false, only the title (or id) is shown.
	Detailed bool

	// Palette resolves element colors. Nil uses the scene's own palette.
	Palette *palette.Palette
}

// Node is one id'd element of the topology.
type Node struct {
	ID       string
	Kind     string
	Title    string
	Subtitle string
	Fill     palette.Role
	Border   palette.Role
}

// Edge is a connector that names both of its ends.
type Edge struct {
	From, To string
	Label    string
	Color    palette.Role
	Dashed   bool
}

// Graph is the topology extracted from a scene.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Extract collects the id'd elements and the connectors between them, in
// document order. Connectors missing either end are skipped.
func Extract(s *scene.Scene) Graph {
	var g Graph
	for _, el := range s.Elements {
		if el.Kind == scene.KindConnector {
			c := el.Connector
			if c == nil || c.FromID == "" || c.ToID == "" {
				continue
			}
			g.Edges = append(g.Edges, Edge{
				From:   c.FromID,
				To:     c.ToID,
				Label:  c.Label,
				Color:  palette.Role(c.Color),
				Dashed: c.Style == "dashed",
			})
			continue
		}
		if el.ID == "" {
			continue
		}
		g.Nodes = append(g.Nodes, nodeFor(el))
	}
	return g
}

func nodeFor(el scene.Element) Node {
	n := Node{ID: el.ID, Kind: el.Kind, Title: el.ID}
	set := func(title, subtitle, fill, border string) {
		if title != "" {
			n.Title = title
		}
		n.Subtitle = subtitle
		n.Fill = palette.Role(fill)
		n.Border = palette.Role(border)
	}
	switch el.Kind {
	case scene.KindPanel:
		set("", "", el.Panel.Fill, el.Panel.Border)
	case scene.KindSection:
		set(el.Section.Title, "", el.Section.Fill, el.Section.Border)
	case scene.KindCard:
		set(el.Card.Title, el.Card.Subtitle, el.Card.Fill, el.Card.Accent)
	case scene.KindService:
		set(el.Service.Title, el.Service.Subtitle, el.Service.Fill, el.Service.Accent)
	case scene.KindNode:
		set(el.Node.Title, el.Node.Image, el.Node.Fill, el.Node.Accent)
	case scene.KindMonitor:
		set(el.Monitor.Title, el.Monitor.Image, el.Monitor.Fill, el.Monitor.Accent)
	case scene.KindLabel:
		set(el.Label.Text, "", "", el.Label.Color)
	}
	return n
}

// ToDOT converts the topology of s to Graphviz DOT.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(s *scene.Scene, opts Options) (string, error) {
	p := opts.Palette
	if p == nil {
		var err error
		if p, err = scene.Palette(s); err != nil {
			return "", err
		}
	}
	g := Extract(s)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", hexOr(p, palette.Background, "transparent"))
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fontname=\"monospace\", fontsize=12, margin=\"0.2,0.1\", fontcolor=%q];\n",
		hexOr(p, palette.Text, "black"))
	fmt.Fprintf(&buf, "  edge [fontname=\"monospace\", fontsize=9, color=%q];\n", hexOr(p, palette.TextDim, "gray"))
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs, err := nodeAttrs(p, n, opts.Detailed)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		attrs, err := edgeAttrs(p, e)
		if err != nil {
			return "", err
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func fmtLabel(n Node, detailed bool) string {
	if !detailed {
		return n.Title
	}
	parts := []string{n.Title, "(" + n.Kind + ")"}
	if n.Subtitle != "" {
		parts = append(parts, n.Subtitle)
	}
	return strings.Join(parts, "\n")
}

func nodeAttrs(p *palette.Palette, n Node, detailed bool) ([]string, error) {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed))}
	if n.Fill != "" {
		hex, err := p.Hex(n.Fill)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnknownRole, err, "node %q", n.ID)
		}
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", hex))
	}
	if n.Border != "" {
		hex, err := p.Hex(n.Border)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnknownRole, err, "node %q", n.ID)
		}
		attrs = append(attrs, fmt.Sprintf("color=%q", hex), "penwidth=1.5")
	}
	return attrs, nil
}

func edgeAttrs(p *palette.Palette, e Edge) ([]string, error) {
	var attrs []string
	if e.Color != "" {
		hex, err := p.Hex(e.Color)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnknownRole, err, "edge %s -> %s", e.From, e.To)
		}
		attrs = append(attrs, fmt.Sprintf("color=%q", hex), fmt.Sprintf("fontcolor=%q", hex))
	}
	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	if e.Dashed {
		attrs = append(attrs, "style=dashed")
	}
	return attrs, nil
}

func hexOr(p *palette.Palette, role palette.Role, fallback string) string {
	if hex, err := p.Hex(role); err == nil {
		return hex
	}
	return fallback
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeExport, err, "render topology")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with a
// viewBox-only header so the SVG scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(header))
}
