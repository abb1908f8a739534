package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archdiagram/pkg/pipeline"
	"github.com/matzehuels/archdiagram/pkg/scene"
)

// validateCommand creates the validate command, which loads a scene and
// draws it onto a canvas without exporting anything.
func (c *CLI) validateCommand() *cobra.Command {
	var flags sceneFlags

	cmd := &cobra.Command{
		Use:   "validate [scene]",
		Short: "Check a scene without writing files",
		Long: `Check a scene without writing files.

The scene is parsed strictly (unknown keys are errors), validated, and drawn
onto an in-memory canvas, so every error render would report is reported here.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd, flags.options(args))
		},
	}
	flags.register(cmd)

	return cmd
}

func (c *CLI) runValidate(cmd *cobra.Command, opts pipeline.Options) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	ctx := cmd.Context()
	opts.Logger = loggerFromContext(ctx)
	out := newPrinter(cmd.OutOrStdout())
	runner := c.newRunner()

	s, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	cv, err := runner.Draw(ctx, s, opts)
	if err != nil {
		return err
	}
	d := cv.Seal()

	dpi := pipeline.ResolveDPI(opts, s)
	w, h := d.PixelSize(dpi)
	counts := d.Count()

	out.success("%s is valid", StyleHighlight.Render(opts.SceneLabel()))
	if s.Title != "" {
		out.keyValue("Title", s.Title)
	}
	out.keyValue("Canvas", fmt.Sprintf("%g × %g in", s.Canvas.Width, s.Canvas.Height))
	out.keyValue("Output", fmt.Sprintf("%d × %d px @ %g dpi", w, h, dpi))
	out.keyValue("Elements", StyleNumber.Render(strconv.Itoa(len(s.Elements))))
	for kind, n := range kindCounts(s) {
		out.detail("%-10s %d", kind, n)
	}
	out.keyValue("Ops", fmt.Sprintf("%d rect · %d text · %d line · %d head",
		counts["rect"], counts["text"], counts["line"], counts["head"]))

	if ids := scene.IDs(s); len(ids) == 0 {
		out.warning("no element ids; the topology view will be empty")
	} else {
		out.keyValue("IDs", strconv.Itoa(len(ids)))
	}
	return nil
}

// kindCounts yields each element kind present in s with its count, in
// scene.Kinds order.
func kindCounts(s *scene.Scene) func(yield func(string, int) bool) {
	n := make(map[string]int, len(scene.Kinds))
	for _, el := range s.Elements {
		n[el.Kind]++
	}
	return func(yield func(string, int) bool) {
		for _, kind := range scene.Kinds {
			if n[kind] == 0 {
				continue
			}
			if !yield(kind, n[kind]) {
				return
			}
		}
	}
}
