package cmd

import (
	"encoding/json"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/sitesearch/internal/route"
	"github.com/Aman-CERP/sitesearch/internal/scanner"
)

// resolveReport is the --json output of the resolve command.
type resolveReport struct {
	Routes  int           `json:"routes"`
	Entries []route.Entry `json:"entries"`
	Meta    route.Meta    `json:"meta"`
}

func newResolveCmd() *cobra.Command {
	var (
		flags      siteFlags
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "List the pages that would be indexed",
		Long: `Resolve the site's routes to rendered HTML files and print them, without
writing anything. Routes filtered by include/exclude rules and routes with no
rendered file are counted in the summary.`,
		Example: `  # Show what would be indexed
  sitesearch resolve

  # Machine-readable output
  sitesearch resolve --json --exclude '/blog/**'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			base, err := requireConfig()
			if err != nil {
				return err
			}
			cfg, err := flags.apply(cmd, base)
			if err != nil {
				return err
			}

			outDir, err := filepath.Abs(cfg.Site.OutDir)
			if err != nil {
				return err
			}
			var routes []string
			if cfg.Site.RoutesFile != "" {
				routes, err = scanner.LoadRoutes(cfg.Site.RoutesFile)
			} else {
				routes, err = scanner.New(scanner.WithLogger(logger)).
					DiscoverRoutes(cmd.Context(), outDir, cfg.Site.BaseURL)
			}
			if err != nil {
				return err
			}

			resolver, err := route.NewResolver(route.WithLogger(logger))
			if err != nil {
				return err
			}
			entries, meta := resolver.Resolve(routes, outDir, cfg.Site.BaseURL, cfg.RouteOptions())
			report := resolveReport{Routes: len(routes), Entries: entries, Meta: meta}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printResolveReport(cmd, outDir, report)
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func printResolveReport(cmd *cobra.Command, outDir string, report resolveReport) {
	out := newOutput(cmd)
	out.Header("Pages")
	lines := make([]string, 0, len(report.Entries))
	for _, e := range report.Entries {
		rel, err := filepath.Rel(outDir, e.Path)
		if err != nil {
			rel = e.Path
		}
		lines = append(lines, e.URL+"  ->  "+filepath.ToSlash(rel))
	}
	out.List(lines)
	out.Newline()
	out.KeyValue("Routes", report.Routes)
	out.KeyValue("Indexed", len(report.Entries))
	out.KeyValue("Excluded", report.Meta.ExcludedCount)
	if report.Meta.UnresolvedCount > 0 {
		out.Warningf("%d route(s) had no rendered file", report.Meta.UnresolvedCount)
	}
}
