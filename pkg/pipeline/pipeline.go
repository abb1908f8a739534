// Package pipeline provides the load → draw → export pipeline shared by the
// archdiagram commands.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a scene file (or a built-in scene), parse and validate it
//  2. Draw: Resolve the palette and issue every element onto a canvas
//  3. Export: Encode the sealed canvas once per requested format and write
//     each file atomically
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    SceneName: "price-alert",
//	    Formats:   []string{"png", "svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Artifacts["png"])
package pipeline

import (
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/scene"
	"github.com/matzehuels/archdiagram/pkg/scenes"
	"github.com/matzehuels/archdiagram/pkg/sink"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultFormat is the export format used when none is requested.
	DefaultFormat = sink.FormatPNG

	// MaxDPI bounds the export resolution.
	MaxDPI = 2400
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	sink.FormatPNG:  true,
	sink.FormatSVG:  true,
	sink.FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Load options. ScenePath wins over SceneName; both empty renders the
	// default built-in scene.
	ScenePath   string `json:"scene,omitempty"`
	SceneName   string `json:"scene_name,omitempty"`
	PaletteFile string `json:"palette,omitempty"`

	// Draw options
	Background string `json:"background,omitempty"` // overrides the scene's canvas background

	// Export options
	Output  string   `json:"output,omitempty"` // file path; its extension is replaced per format
	Formats []string `json:"formats,omitempty"`
	DPI     float64  `json:"dpi,omitempty"` // 0 uses the scene's dpi, then canvas.DefaultDPI

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Scene is the loaded scene.
	Scene *scene.Scene

	// Artifacts maps each exported format to the file written.
	Artifacts map[string]string

	// Digests maps each exported format to the SHA-256 of its bytes.
	Digests map[string]string

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Elements   int
	Ops        int
	Width      int // pixels at the export resolution
	Height     int
	DPI        float64
	Bytes      int // total bytes written across formats
	LoadTime   time.Duration
	DrawTime   time.Duration
	ExportTime time.Duration
}

// =============================================================================
// Validation
// =============================================================================

// ValidateAndSetDefaults validates options and fills in defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.ScenePath == "" && o.SceneName == "" {
		o.SceneName = scenes.Default
	}
	if len(o.Formats) == 0 {
		if o.Output != "" {
			if ext := strings.TrimPrefix(filepath.Ext(o.Output), "."); ValidFormats[strings.ToLower(ext)] {
				o.Formats = []string{strings.ToLower(ext)}
			}
		}
		if len(o.Formats) == 0 {
			o.Formats = []string{DefaultFormat}
		}
	}
	o.Formats = normalizeFormats(o.Formats)
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.DPI < 0 || o.DPI > MaxDPI {
		return errors.New(errors.ErrCodeInvalidGeometry, "dpi must be in (0, %d], got %g", MaxDPI, o.DPI)
	}
	if o.Background != "" {
		if err := errors.ValidateRoleName(o.Background); err != nil {
			return err
		}
	}
	if o.Output != "" {
		if err := errors.ValidateOutputPath(o.Output); err != nil {
			return err
		}
	}

	o.validated = true
	return nil
}

// ValidateFormat checks that a single format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format %q: must be one of %s", format, strings.Join(sink.Formats(), ", "))
	}
	return nil
}

// ValidateFormats checks that every format is supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// normalizeFormats lowercases, splits comma lists, and drops duplicates
// while keeping the first occurrence order.
func normalizeFormats(in []string) []string {
	var out []string
	for _, f := range in {
		for _, part := range strings.Split(f, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" || slices.Contains(out, part) {
				continue
			}
			out = append(out, part)
		}
	}
	return out
}

// SceneLabel names the scene source for logs and hooks.
func (o Options) SceneLabel() string {
	if o.ScenePath != "" {
		return o.ScenePath
	}
	return "builtin:" + o.SceneName
}

// OutputPaths returns the file each format is written to. With no Output
// set the files are named after the scene in the current directory.
func (o Options) OutputPaths() map[string]string {
	base := o.Output
	if base == "" {
		name := o.SceneName
		if o.ScenePath != "" {
			name = filepath.Base(o.ScenePath)
		}
		base = strings.TrimSuffix(name, filepath.Ext(name))
	} else if ext := filepath.Ext(base); ValidFormats[strings.ToLower(strings.TrimPrefix(ext, "."))] {
		base = strings.TrimSuffix(base, ext)
	}

	out := make(map[string]string, len(o.Formats))
	for _, f := range o.Formats {
		out[f] = base + "." + f
	}
	return out
}
