// Package pkg provides the libraries behind archdiagram, a renderer for
// static architecture diagrams.
//
// # Overview
//
// A diagram is a fixed-size canvas onto which rounded panels, labels,
// translucent sections, arrows, cards and legends are drawn in order, each
// colored through a named role of a palette. The pkg directory is organized
// into four areas:
//
//  1. Drawing: [palette], [canvas], [card] and [legend] build the display
//     list of a diagram
//  2. Output: [sink] encodes a sealed display list as PNG, SVG or JSON
//  3. Documents: [scene] loads TOML and YAML scene files and assembles
//     them onto a canvas; [scenes] embeds the built-in diagrams
//  4. Orchestration: [pipeline] runs load → draw → export; [nodelink]
//     exports the wiring of a scene as a Graphviz graph
//
// [errors], [observability], [fonts] and [buildinfo] support the rest.
//
// # Architecture
//
// The typical data flow:
//
//	scene.toml / scene.yaml / built-in scene
//	         ↓
//	    [scene] package (parse, validate)
//	         ↓
//	    [canvas] package (display list, palette-resolved colors)
//	         ↓
//	    [sink] package (PNG raster, SVG vector, JSON)
//	         ↓
//	    atomic file write
//
// # Quick Start
//
// Draw a diagram in code:
//
//	import (
//	    "github.com/matzehuels/archdiagram/pkg/canvas"
//	    "github.com/matzehuels/archdiagram/pkg/card"
//	    "github.com/matzehuels/archdiagram/pkg/palette"
//	    "github.com/matzehuels/archdiagram/pkg/sink"
//	)
//
//	c, _ := canvas.New(10, 6, palette.Background, palette.Default())
//	_ = card.Service(card.ServiceSpec{
//	    X: 1, Y: 1, W: 3.8, H: 4,
//	    Name:   "alert-api",
//	    Fill:   palette.PanelBackground,
//	    Accent: "accent-green",
//	}).Draw(c)
//	_ = c.Save("diagram.png", canvas.SaveOptions{DPI: 200, Encoder: sink.NewPNG()})
//
// Or render a scene file:
//
//	s, _ := scene.Load("arch.toml")
//	c, _ := scene.Build(s)
//	_ = c.Save("arch.svg", canvas.SaveOptions{Encoder: sink.NewSVG()})
package pkg
