package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/sitesearch/internal/config"
)

// siteFlags are the per-command overrides of the site and search settings.
type siteFlags struct {
	outDir       string
	baseURL      string
	routesFile   string
	languages    []string
	exclude      []string
	include      []string
	indexBaseURL bool
}

func (f *siteFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.outDir, "out-dir", "", "Rendered site directory (overrides site.out_dir)")
	fs.StringVar(&f.baseURL, "base-url", "", "Public path prefix (overrides site.base_url)")
	fs.StringVar(&f.routesFile, "routes-file", "", "Routes list, JSON array or one per line (overrides site.routes_file)")
	fs.StringSliceVar(&f.languages, "language", nil, "Search language code(s), e.g. fr or en,ja (overrides search.language)")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "Route glob to exclude, repeatable (overrides search.exclude_routes)")
	fs.StringSliceVar(&f.include, "include", nil, "Route glob to include, repeatable (overrides search.include_routes)")
	fs.BoolVar(&f.indexBaseURL, "index-base-url", false, "Index the site's landing page (overrides search.index_base_url)")
}

// apply copies the flags the user set onto a copy of cfg and validates it.
func (f *siteFlags) apply(cmd *cobra.Command, base *config.Config) (*config.Config, error) {
	cfg := *base
	fs := cmd.Flags()
	if fs.Changed("out-dir") {
		cfg.Site.OutDir = f.outDir
	}
	if fs.Changed("base-url") {
		cfg.Site.BaseURL = config.NormalizeBaseURL(f.baseURL)
	}
	if fs.Changed("routes-file") {
		cfg.Site.RoutesFile = f.routesFile
	}
	if fs.Changed("language") {
		if len(f.languages) == 1 {
			cfg.Search.Language = f.languages[0]
		} else {
			cfg.Search.Language = f.languages
		}
	}
	if fs.Changed("exclude") {
		cfg.Search.ExcludeRoutes = f.exclude
	}
	if fs.Changed("include") {
		cfg.Search.IncludeRoutes = f.include
	}
	if fs.Changed("index-base-url") {
		v := f.indexBaseURL
		cfg.Search.IndexBaseURL = &v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
