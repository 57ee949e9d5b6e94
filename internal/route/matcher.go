package route

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gobwas/glob"
	lru "github.com/hashicorp/golang-lru/v2"

	serrors "github.com/Aman-CERP/sitesearch/internal/errors"
)

// patternCacheSize bounds the number of compiled globs kept per Resolver.
const patternCacheSize = 256

// CompilePattern compiles a route glob. '/' is the separator, so '*' stays
// within one path segment and '**' spans segments.
func CompilePattern(pattern string) (glob.Glob, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, serrors.InvalidPatternError(pattern, err)
	}
	return g, nil
}

// ValidatePatterns returns the first pattern that fails to compile.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if _, err := CompilePattern(p); err != nil {
			return err
		}
	}
	return nil
}

// patternCache memoizes compiled globs. Compiled globs are immutable, so
// sharing them across Resolve calls cannot leak per-build state.
type patternCache struct {
	cache  *lru.Cache[string, glob.Glob]
	logger *slog.Logger
}

func newPatternCache(logger *slog.Logger) (*patternCache, error) {
	cache, err := lru.New[string, glob.Glob](patternCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create pattern cache: %w", err)
	}
	return &patternCache{cache: cache, logger: logger}, nil
}

// compile returns the compiled form of every valid pattern. Invalid patterns
// are logged and left out, so they never match.
func (c *patternCache) compile(patterns []string) []glob.Glob {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		if g, ok := c.cache.Get(p); ok {
			out = append(out, g)
			continue
		}
		g, err := CompilePattern(p)
		if err != nil {
			c.logger.Warn("ignoring invalid route pattern",
				slog.String("pattern", p),
				slog.String("error", err.Error()))
			continue
		}
		c.cache.Add(p, g)
		out = append(out, g)
	}
	return out
}

// matchesAny reports whether any of the candidate strings matches any glob.
// A trailing slash is optional, so "/blog/*" matches "/blog/post/".
func matchesAny(globs []glob.Glob, forms ...string) bool {
	for _, g := range globs {
		for _, s := range forms {
			if g.Match(s) {
				return true
			}
			if len(s) > 1 && strings.HasSuffix(s, "/") && g.Match(strings.TrimSuffix(s, "/")) {
				return true
			}
		}
	}
	return false
}
