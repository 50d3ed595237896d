package cli

import (
	"github.com/spf13/cobra"

	"github.com/xianaiyang/vlsiFloorplan/internal/server"
)

// serveCommand creates the serve command, which runs the HTTP API until
// interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the floorplanning API over HTTP",
		Long: `Serve POST /v1/optimize and POST /v1/pack. Request defaults and limits
come from the [anneal], [render] and [server] sections of the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *c.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			c.Logger.Info("starting server", "cache", c.cfg.Cache.Backend, "max_modules", cfg.Server.MaxModules)
			return server.New(runner, &cfg, c.Logger).ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
