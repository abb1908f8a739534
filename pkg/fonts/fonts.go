// Package fonts provides the monospace font family used by every backend.
//
// The Go Mono faces ship with golang.org/x/image, so diagrams render the
// same on every host without touching system fonts.
package fonts

import (
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
)

// Family is the CSS font-family name written into SVG output.
const Family = "Go Mono"

// FallbackFamily lists fallbacks for viewers that lack Go Mono.
const FallbackFamily = `'Go Mono', 'DejaVu Sans Mono', Menlo, Consolas, monospace`

// Style selects one of the four embedded faces.
type Style int

const (
	Regular Style = iota
	Bold
	Italic
	BoldItalic
)

// StyleOf maps weight and slant flags to a Style.
func StyleOf(bold, italic bool) Style {
	switch {
	case bold && italic:
		return BoldItalic
	case bold:
		return Bold
	case italic:
		return Italic
	default:
		return Regular
	}
}

func (s Style) String() string {
	switch s {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case BoldItalic:
		return "bold-italic"
	default:
		return "regular"
	}
}

// TTF returns the raw font data for the style.
func TTF(s Style) []byte {
	switch s {
	case Bold:
		return gomonobold.TTF
	case Italic:
		return gomonoitalic.TTF
	case BoldItalic:
		return gomonobolditalic.TTF
	default:
		return gomono.TTF
	}
}

// Parsed sources are shared process-wide (computed once on first access).
var (
	sources     [4]*text.FontSource
	sourcesErr  error
	sourcesOnce sync.Once
)

// Source returns the shared parsed font source for the style.
func Source(s Style) (*text.FontSource, error) {
	sourcesOnce.Do(func() {
		for _, st := range []Style{Regular, Bold, Italic, BoldItalic} {
			src, err := text.NewFontSource(TTF(st))
			if err != nil {
				sourcesErr = err
				return
			}
			sources[st] = src
		}
	})
	if sourcesErr != nil {
		return nil, sourcesErr
	}
	if s < Regular || s > BoldItalic {
		s = Regular
	}
	return sources[s], nil
}

// Face returns a face of the given style at size pixels.
func Face(s Style, px float64) (text.Face, error) {
	src, err := Source(s)
	if err != nil {
		return nil, err
	}
	return src.Face(px), nil
}

// AdvanceRatio is the advance width of one Go Mono glyph relative to the
// font size. Every glyph in a monospace face shares it, which lets layout
// code estimate text extents without loading a face.
const AdvanceRatio = 0.6
