// Package nodelink renders the topology of a scene as a node-link diagram.
//
// # Overview
//
// Scene elements may carry an id, and connectors may name the elements they
// link with from_id and to_id. This package turns those references into a
// Graphviz digraph, which is a quick way to check that the hand-placed
// arrows of a diagram actually connect what they claim to. Positions in the
// scene are ignored; Graphviz lays the graph out on its own.
//
// # Usage
//
//	dot, err := nodelink.ToDOT(s, nodelink.Options{Palette: p})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Colors
//
// Nodes are filled with the element's fill role and outlined with its
// accent or border role; edges use the connector's color role. Dashed
// connectors become dashed edges.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package nodelink
