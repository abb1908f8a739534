package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archdiagram/pkg/canvas"
	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/observability"
	"github.com/matzehuels/archdiagram/pkg/palette"
	"github.com/matzehuels/archdiagram/pkg/scene"
	"github.com/matzehuels/archdiagram/pkg/scenes"
	"github.com/matzehuels/archdiagram/pkg/sink"
)

// Runner executes the pipeline.
//
// The Runner is stateless except for the logger; it doesn't store pipeline
// results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger uses log.Default().
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete load → draw → export pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)
	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	s, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Scene = s
	result.Stats.Elements = len(s.Elements)
	result.Stats.LoadTime = time.Since(loadStart)

	logger.Info("loaded scene",
		"scene", opts.SceneLabel(),
		"elements", len(s.Elements),
		"duration", result.Stats.LoadTime)

	// Stage 2: Draw
	drawStart := time.Now()
	c, err := r.Draw(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.Ops = c.Len()
	result.Stats.DrawTime = time.Since(drawStart)

	logger.Info("drew scene",
		"ops", c.Len(),
		"duration", result.Stats.DrawTime)

	// Stage 3: Export
	exportStart := time.Now()
	artifacts, digests, size, err := r.Export(ctx, c, s, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Digests = digests
	result.Stats.Bytes = size
	result.Stats.DPI = ResolveDPI(opts, s)
	result.Stats.Width, result.Stats.Height = c.Seal().PixelSize(result.Stats.DPI)
	result.Stats.ExportTime = time.Since(exportStart)

	logger.Info("exported diagram",
		"formats", opts.Formats,
		"bytes", size,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// Load reads, parses and validates the scene named by opts. The palette
// file, when set, is validated here too so a bad override fails early.
func (r *Runner) Load(ctx context.Context, opts Options) (s *scene.Scene, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source := opts.SceneLabel()
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()
	defer func() {
		n := 0
		if s != nil {
			n = len(s.Elements)
		}
		hooks.OnLoadComplete(ctx, source, n, time.Since(start), err)
	}()

	if opts.ScenePath != "" {
		s, err = scene.Load(opts.ScenePath)
	} else {
		s, err = scenes.Load(opts.SceneName)
	}
	if err != nil {
		return nil, err
	}

	if _, err := r.palette(s, opts); err != nil {
		return nil, err
	}
	r.logger(opts).Debug("scene validated", "scene", source, "title", s.Title)
	return s, nil
}

// Palette returns the frozen palette the scene is drawn with, including
// the palette file from opts.
func (r *Runner) Palette(s *scene.Scene, opts Options) (*palette.Palette, error) {
	return r.palette(s, opts)
}

func (r *Runner) palette(s *scene.Scene, opts Options) (*palette.Palette, error) {
	buildOpts, err := r.buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return scene.Palette(s, buildOpts...)
}

func (r *Runner) buildOptions(opts Options) ([]scene.Option, error) {
	var out []scene.Option
	if opts.PaletteFile != "" {
		entries, err := scene.LoadPalette(opts.PaletteFile)
		if err != nil {
			return nil, err
		}
		out = append(out, scene.WithPaletteOverrides(entries))
	}
	if opts.Background != "" {
		out = append(out, scene.WithBackground(opts.Background))
	}
	return out, nil
}

// Draw assembles the scene onto a new canvas.
func (r *Runner) Draw(ctx context.Context, s *scene.Scene, opts Options) (c *canvas.Canvas, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buildOpts, err := r.buildOptions(opts)
	if err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	logger := r.logger(opts)
	hooks.OnDrawStart(ctx, len(s.Elements))
	start := time.Now()
	defer func() {
		n := 0
		if c != nil {
			n = c.Len()
		}
		hooks.OnDrawComplete(ctx, n, time.Since(start), err)
	}()

	buildOpts = append(buildOpts, scene.WithElementHook(func(i int, el scene.Element, ops int, err error) {
		hooks.OnElement(ctx, i, el.Kind, ops, err)
		if err == nil {
			logger.Debug("drew element", "index", i, "kind", el.Kind, "id", el.ID, "ops", ops)
		}
	}))
	return scene.Build(s, buildOpts...)
}

// ResolveDPI picks the export resolution: the explicit option, then the
// scene's own dpi, then canvas.DefaultDPI.
func ResolveDPI(opts Options, s *scene.Scene) float64 {
	switch {
	case opts.DPI > 0:
		return opts.DPI
	case s != nil && s.Canvas.DPI > 0:
		return s.Canvas.DPI
	default:
		return canvas.DefaultDPI
	}
}

// Export encodes c once per format and writes each file atomically. It
// returns the written paths, their digests, and the total byte count.
func (r *Runner) Export(ctx context.Context, c *canvas.Canvas, s *scene.Scene, opts Options) (map[string]string, map[string]string, int, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, 0, err
	}
	logger := r.logger(opts)
	hooks := observability.Pipeline()
	dpi := ResolveDPI(opts, s)
	paths := opts.OutputPaths()

	artifacts := make(map[string]string, len(opts.Formats))
	digests := make(map[string]string, len(opts.Formats))
	total := 0
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, nil, 0, err
		}
		path := paths[format]
		hooks.OnExportStart(ctx, format, path)
		start := time.Now()

		data, err := Encode(c, s, format, dpi)
		if err == nil {
			err = writeArtifact(path, data)
		}
		hooks.OnExportComplete(ctx, format, path, len(data), time.Since(start), err)
		if err != nil {
			return nil, nil, 0, err
		}

		artifacts[format] = path
		digests[format] = Hash(data)
		total += len(data)
		logger.Info("exported", "format", format, "path", path, "bytes", len(data))
	}
	return artifacts, digests, total, nil
}

// Encode renders c in the named format at dpi.
func Encode(c *canvas.Canvas, s *scene.Scene, format string, dpi float64) ([]byte, error) {
	enc, err := encoderFor(format, s)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.Encode(&buf, canvas.SaveOptions{DPI: dpi, Encoder: enc}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encoderFor(format string, s *scene.Scene) (canvas.Encoder, error) {
	if format == sink.FormatSVG && s != nil && s.Title != "" {
		return sink.NewSVG(sink.WithTitle(s.Title)), nil
	}
	return sink.ForFormat(format)
}

func writeArtifact(path string, data []byte) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeExport, err, "create %s", dir)
		}
	}
	if err := canvas.WriteFileAtomic(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "write %s", path)
	}
	return nil
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}
