package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/blog"
	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/views"
)

type cli struct {
	cfgFile string
	cfg     config
	logger  zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "spacetraveling",
		Short: "spacetraveling - a Prismic-backed blog",
		Long: `spacetraveling renders a blog whose posts live in a Prismic repository.
It can serve the site with on-demand resolution of new posts, or export it
as static files.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return c.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is ./spacetraveling.yaml)")

	root.AddCommand(newServeCmd(c), newBuildCmd(c), newVersionCmd())
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(c.cfgFile, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger
	return nil
}

// loader builds the content loader shared by serve and build.
func (c *cli) loader() (*blog.Loader, error) {
	client, err := prismic.New(prismic.Config{
		Endpoint:    c.cfg.Prismic.Endpoint,
		AccessToken: c.cfg.Prismic.AccessToken,
		Timeout:     c.cfg.Prismic.Timeout,
		Logger:      c.logger.With().Str("component", "prismic").Logger(),
	})
	if err != nil {
		return nil, err
	}
	return blog.NewLoader(client, c.cfg.Prismic.Lang), nil
}

func (c *cli) views(site spacetraveling.SiteConfig, static bool) (spacetraveling.ViewFuncs, error) {
	vs, err := site.ViewSite()
	if err != nil {
		return spacetraveling.ViewFuncs{}, err
	}
	v := views.New(vs, nil)
	v.StaticLinks = static
	return spacetraveling.DefaultViews(v), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the spacetraveling version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "spacetraveling %s\n", version)
		},
	}
}
