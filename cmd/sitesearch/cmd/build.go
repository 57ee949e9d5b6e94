package cmd

import (
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/sitesearch/internal/build"
	"github.com/Aman-CERP/sitesearch/internal/config"
	serrors "github.com/Aman-CERP/sitesearch/internal/errors"
	"github.com/Aman-CERP/sitesearch/internal/output"
	"github.com/Aman-CERP/sitesearch/internal/telemetry"
	"github.com/Aman-CERP/sitesearch/internal/watcher"
	"github.com/Aman-CERP/sitesearch/pkg/version"
)

func newBuildCmd() *cobra.Command {
	var (
		flags           siteFlags
		watch           bool
		metricsTextfile string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Resolve pages and emit lunr.client.js",
		Long: `Resolve the site's routes to rendered pages, register the configured
lunr-languages extensions and write lunr.client.js into the output directory.

With --watch, the output directory is watched and the build reruns whenever
the site generator rewrites it.`,
		Example: `  # Build with the project configuration
  sitesearch build

  # French and Japanese search over ./public
  sitesearch build --out-dir public --language fr,ja

  # Rebuild on every change
  sitesearch build --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			base, err := requireConfig()
			if err != nil {
				return err
			}
			cfg, err := flags.apply(cmd, base)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("metrics-textfile") {
				cfg.Metrics.Textfile = metricsTextfile
			}
			return runBuild(cmd, cfg, watch)
		},
	}

	flags.bind(cmd)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Rebuild when the output directory changes")
	cmd.Flags().StringVar(&metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file (overrides metrics.textfile)")

	return cmd
}

func runBuild(cmd *cobra.Command, cfg *config.Config, watch bool) error {
	out := newOutput(cmd)

	req, err := build.RequestFromConfig(cfg)
	if err != nil {
		return err
	}

	opts := []build.Option{build.WithLogger(logger)}
	if cfg.Metrics.Textfile != "" {
		opts = append(opts, build.WithMetrics(telemetry.NewMetrics(version.Version, version.GoVersion), cfg.Metrics.Textfile))
	}
	runner, err := build.NewRunner(opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !watch {
		res, err := runner.Run(ctx, req)
		if err != nil {
			return err
		}
		printBuildSummary(out, res)
		return nil
	}

	out.Statusf(">", "Watching %s (Ctrl+C to stop)", req.OutDir)
	return runner.Watch(ctx, req, watcher.Options{DebounceWindow: cfg.WatchDebounce()},
		func(res *build.Result, err error, batch []watcher.FileEvent) {
			if batch != nil {
				out.Statusf(">", "%d change(s), rebuilding", len(batch))
			}
			if err != nil {
				out.Error(strings.TrimSpace(serrors.FormatForCLI(err)))
				return
			}
			printBuildSummary(out, res)
		})
}

func printBuildSummary(out *output.Writer, res *build.Result) {
	out.Successf("Indexed %d of %d routes in %s", len(res.Entries), res.Routes, res.Duration.Round(time.Millisecond))
	out.KeyValue("Language", res.Language.String())
	out.KeyValue("Client", filepath.Base(res.ClientPath))
	out.KeyValue("Build ID", res.BuildID)
	if res.Meta.ExcludedCount > 0 {
		out.KeyValue("Excluded", res.Meta.ExcludedCount)
	}
	if res.Meta.UnresolvedCount > 0 {
		out.Warningf("%d route(s) had no rendered file and are missing from the index", res.Meta.UnresolvedCount)
	}
}

// newOutput returns a console writer honoring --no-color.
func newOutput(cmd *cobra.Command) *output.Writer {
	if noColor {
		return output.New(cmd.OutOrStdout(), output.WithColor(false))
	}
	return output.New(cmd.OutOrStdout())
}
