package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archdiagram/pkg/scenes"
)

// scenesCommand creates the scenes command for listing built-in scenes.
func (c *CLI) scenesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenes",
		Short: "List the built-in scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newPrinter(cmd.OutOrStdout())
			for _, name := range scenes.Names() {
				s, err := scenes.Load(name)
				if err != nil {
					return err
				}
				label := name
				if name == scenes.Default {
					label += " " + StyleDim.Render("(default)")
				}
				out.keyValue(label, s.Title)
				out.detail("%g × %g in · %d elements", s.Canvas.Width, s.Canvas.Height, len(s.Elements))
			}
			return nil
		},
	}
	cmd.AddCommand(c.scenesShowCommand())

	return cmd
}

// scenesShowCommand prints the TOML source of a built-in scene, a starting
// point for a custom scene file.
func (c *CLI) scenesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print the TOML source of a built-in scene",
		Example: `  archdiagram scenes show price-alert > my-scene.toml
  archdiagram render my-scene.toml`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return scenes.Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := scenes.Source(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
