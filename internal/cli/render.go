package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archdiagram/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	scene      sceneFlags
	output     string  // output file; its extension is replaced per format
	formats    string  // comma-separated output formats
	dpi        float64 // export resolution; 0 uses the scene's dpi
	background string  // background role override
}

// renderCommand creates the render command for drawing a scene to files.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [scene]",
		Short: "Render a scene to PNG, SVG or JSON",
		Long: `Render a scene to PNG, SVG or JSON.

The scene is a .toml or .yaml file, or the name of a built-in scene. With no
scene the built-in price-alert diagram is rendered. Each requested format is
written next to the output path with the matching extension, and every file
is written atomically.`,
		Example: `  archdiagram render
  archdiagram render docs/arch.toml -f png,svg -o out/arch
  archdiagram render --name price-alert --palette light.toml --dpi 300`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			po := opts.scene.options(args)
			po.Output = opts.output
			po.Formats = parseFormats(opts.formats)
			po.DPI = opts.dpi
			po.Background = opts.background
			return c.runRender(cmd, po)
		},
	}

	opts.scene.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <scene>.<format>)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): png (default), svg, json (comma-separated)")
	cmd.Flags().Float64Var(&opts.dpi, "dpi", 0, "export resolution (default: scene dpi, then 200)")
	cmd.Flags().StringVar(&opts.background, "background", "", "background color role")

	return cmd
}

// runRender executes the pipeline and reports the written files.
func (c *CLI) runRender(cmd *cobra.Command, opts pipeline.Options) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	ctx := cmd.Context()
	out := newPrinter(cmd.OutOrStdout())
	opts.Logger = loggerFromContext(ctx)

	prog := newProgress(opts.Logger)
	spinner := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Rendering %s...", opts.SceneLabel()))
	spinner.Start()

	result, err := c.newRunner().Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError(out, "Render failed")
		return err
	}
	spinner.Stop()
	if err := ctx.Err(); err != nil {
		return err
	}
	prog.done("Rendered " + opts.SceneLabel())

	out.success("Rendered %s", StyleTitle.Render(sceneTitle(result, opts)))
	for _, format := range sortedFormats(result.Artifacts) {
		out.file(result.Artifacts[format])
	}
	out.stats(result.Stats)
	out.newline()
	out.nextStep("Check the wiring", appName+" topology "+sceneArg(opts))

	return nil
}

// sceneTitle returns the scene's own title, or its source label.
func sceneTitle(result *pipeline.Result, opts pipeline.Options) string {
	if result.Scene != nil && result.Scene.Title != "" {
		return result.Scene.Title
	}
	return opts.SceneLabel()
}

// sceneArg is the positional argument that selects the same scene again.
func sceneArg(opts pipeline.Options) string {
	if opts.ScenePath != "" {
		return opts.ScenePath
	}
	return opts.SceneName
}

func sortedFormats(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
