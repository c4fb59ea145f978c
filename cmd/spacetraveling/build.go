package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/eringen/spacetraveling"
)

func newBuildCmd(c *cli) *cobra.Command {
	var outputDir string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Export the site as static files",
		RunE: func(cmd *cobra.Command, args []string) error {
			site := c.cfg.site()
			if outputDir != "" {
				site.OutputDir = outputDir
			}
			loader, err := c.loader()
			if err != nil {
				return err
			}
			vf, err := c.views(site, true)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			gen := spacetraveling.NewGenerator(site, loader, vf, c.logger.With().Str("component", "build").Logger())
			_, err = gen.Build(ctx)
			return err
		},
	}
	cmd.Flags().StringVarP(&outputDir, "out", "o", "", "output directory (overrides build.output_dir)")
	return cmd
}
