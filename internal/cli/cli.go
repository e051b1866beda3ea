// Package cli implements the heightwalk command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/heightwalk/pkg/buildinfo"
	"github.com/matzehuels/heightwalk/pkg/config"
	"github.com/matzehuels/heightwalk/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "heightwalk"

	// presetExt is the file extension of user presets.
	presetExt = ".toml"
)

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
		Short:        "Heightwalk grows heightmaps from branching random walks",
		Long:         `Heightwalk simulates branching random walkers on a square grid, scales the age of every visited cell into an 8-bit height, and optionally softens the result with a two-pass stack blur.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.imageCommand())
	root.AddCommand(c.blurCommand())
	root.AddCommand(c.helloCommand())
	root.AddCommand(c.presetCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(nil, c.Logger)
}

// =============================================================================
// Paths
// =============================================================================

// presetDir returns the user preset directory using XDG standard
// (~/.config/heightwalk/presets/).
func presetDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "presets"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "presets"), nil
}

// resolvePreset looks up a built-in preset, then a user preset in
// presetDir, then treats the name as a path.
func resolvePreset(name string) (config.Preset, error) {
	if p, ok := config.Builtin(name); ok {
		return p, nil
	}
	if !strings.ContainsAny(name, `/\`) {
		if dir, err := presetDir(); err == nil {
			path := filepath.Join(dir, strings.TrimSuffix(name, presetExt)+presetExt)
			if _, err := os.Stat(path); err == nil {
				return config.Load(path)
			}
		}
	}
	return config.Resolve(name)
}

// userPresets lists the preset names found in presetDir.
func userPresets() []string {
	dir, err := presetDir()
	if err != nil {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), presetExt) {
			names = append(names, strings.TrimSuffix(e.Name(), presetExt))
		}
	}
	return names
}

// completePresets offers preset names for shell completion.
func completePresets(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return append(config.Names(), userPresets()...), cobra.ShellCompDirectiveNoFileComp
}
