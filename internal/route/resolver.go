package route

import (
	"log/slog"
)

// Resolver maps generator routes to rendered files.
//
// A Resolver may be reused across builds (watch mode). Each Resolve call keeps
// its own seen-file set and counters.
type Resolver struct {
	exists   func(string) bool
	patterns *patternCache
	logger   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for resolution warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithExistsFunc replaces the filesystem existence check.
func WithExistsFunc(exists func(string) bool) Option {
	return func(r *Resolver) {
		if exists != nil {
			r.exists = exists
		}
	}
}

// NewResolver creates a Resolver that checks the real filesystem.
func NewResolver(opts ...Option) (*Resolver, error) {
	r := &Resolver{
		exists: fileExists,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	patterns, err := newPatternCache(r.logger)
	if err != nil {
		return nil, err
	}
	r.patterns = patterns
	return r, nil
}

// Resolve returns the deduplicated, filtered list of pages to index for
// routes, in route order, plus filter statistics. It never fails: routes
// without a rendered file are logged and left out.
func (r *Resolver) Resolve(routes []string, outDir, baseURL string, opts Options) ([]Entry, Meta) {
	var (
		entries = make([]Entry, 0, len(routes))
		seen    = make(map[string]struct{}, len(routes))
		meta    Meta
	)

	include := r.patterns.compile(opts.IncludeRoutes)
	exclude := r.patterns.compile(opts.ExcludeRoutes)
	notFound := baseURL + NotFoundPage

	for _, route := range routes {
		if route == notFound {
			continue
		}
		if route == baseURL && !opts.IndexBaseURL {
			continue
		}

		relativePath := relativeTo(route, baseURL)
		filePath := firstExisting(Candidates(outDir, route, baseURL), r.exists)

		// A route and its aliases (trailing slash, base-URL-relative form)
		// render to the same file; only the first one is indexed.
		if filePath != unresolved {
			if _, dup := seen[filePath]; dup {
				continue
			}
		}

		if len(opts.IncludeRoutes) > 0 && !matchesAny(include, route, relativePath) {
			meta.ExcludedCount++
			continue
		}
		if matchesAny(exclude, route, relativePath) {
			meta.ExcludedCount++
			continue
		}

		if filePath == unresolved {
			meta.UnresolvedCount++
			r.logger.Warn("could not resolve file for route, it will be missing in the search index",
				slog.String("route", route),
				slog.String("out_dir", outDir))
			continue
		}

		entries = append(entries, Entry{Path: filePath, URL: route})
		seen[filePath] = struct{}{}
	}

	r.logger.Debug("routes resolved",
		slog.Int("routes", len(routes)),
		slog.Int("entries", len(entries)),
		slog.Int("excluded", meta.ExcludedCount),
		slog.Int("unresolved", meta.UnresolvedCount))

	return entries, meta
}
