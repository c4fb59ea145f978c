package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eringen/spacetraveling"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Pre-render the site and serve it over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			site := c.cfg.site()
			if addr != "" {
				site.Addr = addr
			}
			loader, err := c.loader()
			if err != nil {
				return err
			}
			vf, err := c.views(site, false)
			if err != nil {
				return err
			}

			app := spacetraveling.New(site, loader, vf,
				spacetraveling.WithLogger(c.logger.With().Str("component", "server").Logger()))
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
