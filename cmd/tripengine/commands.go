package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/tripengine"
)

// setup loads the config and builds the logger every command shares.
func setup(configPath string) (tripengine.SiteConfig, *zap.SugaredLogger, error) {
	cfg, err := tripengine.LoadConfig(configPath)
	if err != nil {
		return tripengine.SiteConfig{}, nil, err
	}
	log, err := tripengine.NewLogger(cfg.Log)
	if err != nil {
		return tripengine.SiteConfig{}, nil, err
	}
	return cfg, log, nil
}

func newBuildCommand(configPath *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the static site",
		Long:  "Render index.html, post pages, feed.xml, sitemap.xml and public assets into the output directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()
			if out != "" {
				cfg.OutputDir = out
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			report, err := tripengine.New(cfg, tripengine.WithLogger(log)).Build(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Built %d pages for %d posts into %s\n", report.Pages, report.Posts, cfg.OutputDir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory (overrides output_dir)")
	return cmd
}

func newServeCommand(configPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a local preview with the authoring tool",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()
			if addr != "" {
				cfg.Addr = addr
			}
			if !strings.HasPrefix(cfg.Addr, "127.") && !strings.HasPrefix(cfg.Addr, "localhost:") && !strings.HasPrefix(cfg.Addr, "[::1]") {
				log.Warnw("preview server has no authentication; it should only listen on loopback", "addr", cfg.Addr)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(cmd.OutOrStdout(), "Preview at http://%s/ (editor at /editor)\n", cfg.Addr)
			return tripengine.New(cfg, tripengine.WithLogger(log)).Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides addr)")
	return cmd
}

func newSearchCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "search <place>",
		Short: "Look up a place the way the location picker does",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Geocoder.Timeout)
			defer cancel()

			found, err := tripengine.NewGeocoder(cfg.Geocoder, log.Named("geocode")).Search(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No places found.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLNG\tLAT\tADDRESS")
			for _, c := range found {
				fmt.Fprintf(tw, "%s\t%v\t%v\t%s\n", c.Name, c.Lng, c.Lat, c.DisplayAddress)
			}
			return tw.Flush()
		},
	}
}
