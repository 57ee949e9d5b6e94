// Package route resolves the logical routes produced by a static site
// generator into the rendered HTML files that should be indexed for search.
//
// A route such as "/docs/intro" may be rendered as "docs/intro.html" or
// "docs/intro/index.html" depending on the generator's trailing-slash
// settings, and may appear with or without the site's base URL. The resolver
// tries each naming convention in a fixed order, keeps the first file that
// exists, drops routes that alias an already indexed file, and applies the
// user's include/exclude glob filters.
package route

// Entry is one page accepted for indexing: the physical file and the route
// that produced it.
type Entry struct {
	// Path is the rendered HTML file under the output directory.
	Path string `json:"path"`
	// URL is the originating route, as given by the generator.
	URL string `json:"url"`
}

// Meta carries counters accumulated during one Resolve call.
type Meta struct {
	// ExcludedCount is the number of routes dropped by include/exclude rules.
	ExcludedCount int `json:"excludedCount"`
	// UnresolvedCount is the number of routes that passed the filters but
	// had no rendered file on disk.
	UnresolvedCount int `json:"unresolvedCount"`
}

// Options are the user-facing resolution settings.
type Options struct {
	// ExcludeRoutes drops any route matching one of these globs.
	ExcludeRoutes []string `json:"excludeRoutes" yaml:"exclude_routes"`
	// IncludeRoutes, when non-empty, keeps only routes matching one of these globs.
	IncludeRoutes []string `json:"includeRoutes" yaml:"include_routes"`
	// IndexBaseURL indexes the site root page itself.
	IndexBaseURL bool `json:"indexBaseUrl" yaml:"index_base_url"`
}

// NotFoundPage is the generator's reserved 404 page, relative to the base URL.
const NotFoundPage = "404.html"

// unresolved marks a route with no rendered file. filepath.Join never
// returns an empty string, so this cannot collide with a real path.
const unresolved = ""
