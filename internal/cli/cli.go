package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archdiagram/pkg/buildinfo"
	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/pipeline"
	"github.com/matzehuels/archdiagram/pkg/scene"
	"github.com/matzehuels/archdiagram/pkg/scenes"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "archdiagram"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Archdiagram renders static architecture diagrams",
		Long:         `Archdiagram draws deployment and architecture diagrams from declarative scene files (TOML or YAML) to PNG, SVG and JSON.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.paletteCommand())
	root.AddCommand(c.scenesCommand())
	root.AddCommand(c.topologyCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(c.Logger)
}

// =============================================================================
// Scene Selection
// =============================================================================

// sceneFlags selects the scene and palette a command works on.
type sceneFlags struct {
	scene   string // scene file
	name    string // built-in scene
	palette string // palette override file
}

func (f *sceneFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.scene, "scene", "", "scene file (.toml, .yaml)")
	cmd.Flags().StringVar(&f.name, "name", "", "built-in scene (default: "+scenes.Default+")")
	cmd.Flags().StringVar(&f.palette, "palette", "", "palette override file")
	cmd.MarkFlagsMutuallyExclusive("scene", "name")
}

// options turns the flags and an optional positional argument into
// pipeline options. The argument is a scene file when it carries a scene
// extension and a built-in name otherwise.
func (f *sceneFlags) options(args []string) pipeline.Options {
	opts := pipeline.Options{
		ScenePath:   f.scene,
		SceneName:   f.name,
		PaletteFile: f.palette,
	}
	if len(args) > 0 {
		path, name := resolveScene(args[0])
		opts.ScenePath, opts.SceneName = path, name
	}
	return opts
}

func resolveScene(arg string) (path, name string) {
	if _, err := scene.FormatForPath(arg); err == nil {
		return arg, ""
	}
	if strings.ContainsRune(arg, filepath.Separator) {
		return arg, ""
	}
	return "", arg
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
// Empty leaves the choice to the pipeline (output extension, then png).
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// ErrorMessage formats err for the terminal: the user-facing message
// followed by its error code when it carries one.
func ErrorMessage(err error) string {
	msg := errors.UserMessage(err)
	if code := errors.GetCode(err); code != "" {
		return fmt.Sprintf("%s [%s]", msg, code)
	}
	return msg
}
