package cli

import (
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archdiagram/pkg/palette"
	"github.com/matzehuels/archdiagram/pkg/pipeline"
)

// paletteCommand creates the palette command, which lists the color roles
// a scene is drawn with.
func (c *CLI) paletteCommand() *cobra.Command {
	var (
		flags  sceneFlags
		asTOML bool
	)

	cmd := &cobra.Command{
		Use:   "palette [scene]",
		Short: "List the color roles of a scene",
		Long: `List the color roles of a scene with a swatch of each color.

The palette shown is the default theme, then the scene's own [palette]
table, then the --palette override file. With --toml the table is printed
as a palette file that can be edited and passed back with --palette.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPalette(cmd, flags.options(args), asTOML)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&asTOML, "toml", false, "print the palette as a TOML palette file")

	return cmd
}

// paletteFile is the layout of a palette override file.
type paletteFile struct {
	Palette map[palette.Role]string `toml:"palette"`
}

func (c *CLI) runPalette(cmd *cobra.Command, opts pipeline.Options, asTOML bool) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	ctx := cmd.Context()
	opts.Logger = loggerFromContext(ctx)
	runner := c.newRunner()

	s, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	p, err := runner.Palette(s, opts)
	if err != nil {
		return err
	}

	if asTOML {
		return toml.NewEncoder(cmd.OutOrStdout()).Encode(paletteFile{Palette: p.Entries()})
	}

	out := newPrinter(cmd.OutOrStdout())
	out.info("%s · %s roles", opts.SceneLabel(), StyleNumber.Render(strconv.Itoa(p.Len())))
	entries := p.Entries()
	for _, role := range p.Roles() {
		out.swatch(string(role), entries[role])
	}
	return nil
}
