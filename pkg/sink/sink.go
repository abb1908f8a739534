package sink

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/archdiagram/pkg/canvas"
	"github.com/matzehuels/archdiagram/pkg/errors"
)

// Supported format names.
const (
	FormatPNG  = "png"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

var formats = map[string]func() canvas.Encoder{
	FormatPNG:  func() canvas.Encoder { return NewPNG() },
	FormatSVG:  func() canvas.Encoder { return NewSVG() },
	FormatJSON: func() canvas.Encoder { return NewJSON() },
}

// Formats returns the supported format names, sorted.
func Formats() []string {
	out := make([]string, 0, len(formats))
	for f := range formats {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// ForFormat returns an encoder with default options for the named format.
func ForFormat(name string) (canvas.Encoder, error) {
	mk, ok := formats[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"unsupported format %q (supported: %s)", name, strings.Join(Formats(), ", "))
	}
	return mk(), nil
}

// ForPath picks an encoder from the file extension of path.
func ForPath(path string) (canvas.Encoder, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "cannot infer format from %q", path)
	}
	return ForFormat(ext)
}
