package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/heightwalk/pkg/api"
)

// serveCommand runs the HTTP API until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the heightmap operations over HTTP",
		Long: `Start the HTTP API. Routes:

  GET  /hello
  GET  /healthz
  GET  /presets
  POST /generate?format=png&preset=&seed=   (JSON options body)
  POST /image                              (raw heights body)
  POST /blur?radius=&detail_max=&saturate=&width=   (raw heights body)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printInfo("Serving on %s", StyleNumber.Render(addr))
			srv := api.NewServer(c.newRunner(), loggerFromContext(cmd.Context()))
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", api.DefaultAddr, "listen address")
	return cmd
}
