package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// previewSize is the grid side used by preview unless --size is given.
const previewSize = 128

// previewCommand opens the interactive terminal preview.
func (c *CLI) previewCommand() *cobra.Command {
	var sim simFlags

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Explore heightmaps interactively in the terminal",
		Long: `Open a full-screen preview. Press r for a new seed, +/- to change the blur
radius, d to toggle the detail pass, s to toggle saturation, m to toggle
the binary mask view and q to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := sim.options(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("size") {
				opts.Size = previewSize
			}

			// Log output would corrupt the alternate screen.
			logger := loggerFromContext(cmd.Context()).WithPrefix("preview")
			logger.Debug("starting", "size", opts.Size, "preset", sim.preset)
			runner := c.newRunner()
			runner.Logger = quietLogger()

			m := NewPreviewModel(cmd.Context(), runner, opts)
			final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			if pm, ok := final.(PreviewModel); ok && pm.Result != nil {
				printStats(pm.Result)
			}
			return nil
		},
	}

	sim.register(cmd)
	return cmd
}
