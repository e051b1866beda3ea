package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/heightwalk/pkg/config"
	"github.com/matzehuels/heightwalk/pkg/errors"
)

// presetCommand creates the preset command with list, show and init subcommands.
func (c *CLI) presetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage TOML presets",
		Long: `Presets bundle simulation, blur and output settings. Built-in presets are
always available; user presets live in ~/.config/heightwalk/presets/ (or
$XDG_CONFIG_HOME/heightwalk/presets/) and can be referenced by name.`,
	}

	cmd.AddCommand(c.presetListCommand())
	cmd.AddCommand(c.presetShowCommand())
	cmd.AddCommand(c.presetInitCommand())
	return cmd
}

func (c *CLI) presetListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and user presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(StyleTitle.Render("Built-in presets"))
			for _, name := range config.Names() {
				p, _ := config.Builtin(name)
				printKeyValue(name, p.Description)
			}

			names := userPresets()
			if len(names) == 0 {
				return nil
			}
			dir, _ := presetDir()
			fmt.Println()
			fmt.Println(StyleTitle.Render("User presets"))
			printDetail("%s", dir)
			for _, name := range names {
				p, err := resolvePreset(name)
				if err != nil {
					printWarning("%s: %s", name, errors.UserMessage(err))
					continue
				}
				printKeyValue(name, p.Description)
			}
			return nil
		},
	}
}

func (c *CLI) presetShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show <name|file>",
		Short:             "Print a preset as TOML",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completePresets,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolvePreset(args[0])
			if err != nil {
				return err
			}
			return p.Encode(cmd.OutOrStdout())
		},
	}
}

func (c *CLI) presetInitCommand() *cobra.Command {
	var from string
	var force bool

	cmd := &cobra.Command{
		Use:   "init <name|file>",
		Short: "Write a new preset file based on an existing preset",
		Long: `Write a preset file to edit. A bare name is created in the user preset
directory; anything containing a path separator or ending in .toml is
written as given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			p, err := resolvePreset(from)
			if err != nil {
				return err
			}
			target := args[0]
			p.Name = strings.TrimSuffix(filepath.Base(target), presetExt)

			path := target
			if !strings.ContainsAny(target, `/\`) && !strings.HasSuffix(target, presetExt) {
				dir, err := presetDir()
				if err != nil {
					return err
				}
				path = filepath.Join(dir, target+presetExt)
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(errors.ErrCodeInvalidPath, "%s already exists (use --force to overwrite)", path)
			}

			var buf bytes.Buffer
			if err := p.Encode(&buf); err != nil {
				return err
			}
			if err := writeFile(path, buf.Bytes()); err != nil {
				return err
			}
			logger.Debug("wrote preset", "name", p.Name, "from", from, "path", path)
			printSuccess("Created preset %s", StyleNumber.Render(p.Name))
			printFile(path)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", config.PresetDefault, "preset to copy")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	_ = cmd.RegisterFlagCompletionFunc("from", completePresets)
	return cmd
}
