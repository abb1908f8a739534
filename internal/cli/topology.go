package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archdiagram/pkg/canvas"
	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/nodelink"
	"github.com/matzehuels/archdiagram/pkg/pipeline"
)

const (
	topologyDOT = "dot"
	topologySVG = "svg"
)

// topologyOpts holds the command-line flags for the topology command.
type topologyOpts struct {
	scene    sceneFlags
	output   string
	format   string
	detailed bool
}

// topologyCommand creates the topology command, which exports the id'd
// elements of a scene and the connectors between them as a graph.
func (c *CLI) topologyCommand() *cobra.Command {
	var opts topologyOpts

	cmd := &cobra.Command{
		Use:   "topology [scene]",
		Short: "Export the scene's wiring as DOT or SVG",
		Long: `Export the scene's wiring as a Graphviz graph.

Elements with an id become nodes, and connectors that name both ends with
from_id and to_id become edges. Graphviz lays the graph out on its own, so the
result shows what the hand-placed arrows connect regardless of where they
were drawn. Without -o the DOT source is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTopology(cmd, opts.scene.options(args), opts)
		},
	}
	opts.scene.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: print DOT)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg (default: from -o extension, then dot)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "add element kind and subtitle to node labels")

	return cmd
}

func (c *CLI) runTopology(cmd *cobra.Command, po pipeline.Options, opts topologyOpts) error {
	format, err := topologyFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	if err := po.ValidateAndSetDefaults(); err != nil {
		return err
	}
	ctx := cmd.Context()
	po.Logger = loggerFromContext(ctx)
	runner := c.newRunner()

	s, err := runner.Load(ctx, po)
	if err != nil {
		return err
	}
	p, err := runner.Palette(s, po)
	if err != nil {
		return err
	}

	dot, err := nodelink.ToDOT(s, nodelink.Options{Detailed: opts.detailed, Palette: p})
	if err != nil {
		return err
	}
	data := []byte(dot)
	if format == topologySVG {
		if data, err = nodelink.RenderSVG(ctx, dot); err != nil {
			return err
		}
	}

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := errors.ValidateOutputPath(opts.output); err != nil {
		return err
	}
	if dir := filepath.Dir(opts.output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeExport, err, "create %s", dir)
		}
	}
	if err := canvas.WriteFileAtomic(opts.output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "write %s", opts.output)
	}

	g := nodelink.Extract(s)
	out := newPrinter(cmd.OutOrStdout())
	out.success("Wrote topology of %s", po.SceneLabel())
	out.file(opts.output)
	out.detail("%d nodes · %d edges", len(g.Nodes), len(g.Edges))
	return nil
}

// topologyFormat picks the output format from the flag, then the output
// extension, then DOT.
func topologyFormat(flag, output string) (string, error) {
	format := strings.ToLower(flag)
	if format == "" {
		format = strings.ToLower(strings.TrimPrefix(filepath.Ext(output), "."))
		if format != topologySVG {
			format = topologyDOT
		}
	}
	switch format {
	case topologyDOT, topologySVG:
		return format, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "invalid topology format %q: must be dot or svg", flag)
	}
}
