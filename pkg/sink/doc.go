// Package sink provides the output formats a sealed canvas can be saved in.
//
// # Overview
//
// A "sink" is a [canvas.Encoder]: it turns a resolution-independent
// [canvas.Drawing] into bytes. This package provides:
//
//   - PNG: raster output drawn with github.com/gogpu/gg
//   - SVG: vector output written with github.com/ajstarks/svgo
//   - JSON: the display list itself, for diffing and external tools
//
// All three walk the drawing's operations in order, so later operations
// paint over earlier ones exactly as they were issued.
//
// # Coordinates
//
// Drawings use canvas units with y growing upward. Sinks scale by the
// requested DPI and flip y once, so pixel (0, 0) is the top-left corner.
// Font sizes and stroke widths are in points and are scaled by DPI/72.
//
// # Usage
//
//	enc, err := sink.ForFormat("png")
//	if err != nil {
//	    return err
//	}
//	err = c.Save("diagram.png", canvas.SaveOptions{DPI: 160, Encoder: enc})
//
// # Fonts
//
// Text is set in Go Mono (see the fonts package). Raster output embeds the
// glyphs; SVG output names the family and lists monospace fallbacks.
package sink
