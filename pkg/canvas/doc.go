// Package canvas provides the fixed-size drawing surface that architecture
// diagrams are composed on.
//
// # Coordinates
//
// Positions and extents are expressed in canvas units with the origin at the
// bottom-left corner and y growing upward. One unit maps to one inch of
// output, so a 22x17 canvas saved at 200 DPI produces a 4400x3400 pixel
// image. Font sizes and line widths are given in points (1/72 inch) and
// therefore scale with resolution as well.
//
// # Drawing
//
// Every draw call validates its descriptor, resolves palette roles to
// concrete colors, and appends one or more operations to an ordered display
// list. There is no depth attribute: later calls paint over earlier ones.
// Callers place section backgrounds first, then cards and connectors, then
// free-standing labels.
//
// # Export
//
// [Canvas.Save] seals the canvas and hands the display list to an [Encoder]
// (see the sink package for PNG and SVG). Once sealed, further draw calls
// fail with CANVAS_SEALED. Saving is repeatable and deterministic.
package canvas
