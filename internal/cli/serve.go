package cli

import (
	"github.com/spf13/cobra"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server.

Endpoints:
  GET  /healthz                  liveness check
  GET  /api/plants               list stored plants
  GET  /api/plants/{name}        one plant's care data
  POST /api/plants/{name}/card   generate a care card

Card generation is serialized per plant so concurrent requests cannot
race the database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			srv, st, err := c.newServer(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
