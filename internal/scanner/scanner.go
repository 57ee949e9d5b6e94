// Package scanner finds the routes a site generator produced, either from a
// routes file it wrote or by walking the rendered output directory.
package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	serrors "github.com/Aman-CERP/sitesearch/internal/errors"
	"github.com/Aman-CERP/sitesearch/internal/route"
)

// defaultSkipDirs hold bundled assets, never pages.
var defaultSkipDirs = []string{"assets", "img", "static", "node_modules"}

// Scanner discovers routes in a rendered site.
type Scanner struct {
	skipDirs map[string]bool
	logger   *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithSkipDirs replaces the directory names that are never descended into.
func WithSkipDirs(names ...string) Option {
	return func(s *Scanner) {
		s.skipDirs = make(map[string]bool, len(names))
		for _, n := range names {
			s.skipDirs[n] = true
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// New creates a Scanner.
func New(opts ...Option) *Scanner {
	s := &Scanner{logger: slog.Default()}
	WithSkipDirs(defaultSkipDirs...)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DiscoverRoutes walks outDir for rendered pages and returns their routes
// under baseURL, sorted and unique:
//
//	index.html        -> <base>
//	docs/index.html   -> <base>docs
//	docs/intro.html   -> <base>docs/intro
//	404.html          -> <base>404.html
//
// Hidden directories and asset directories are skipped.
func (s *Scanner) DiscoverRoutes(ctx context.Context, outDir, baseURL string) ([]string, error) {
	info, err := os.Stat(outDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, serrors.New(serrors.ErrCodeFileNotFound,
				fmt.Sprintf("output directory %s does not exist", outDir), err).
				WithSuggestion("run the site build first, or set site.out_dir")
		}
		return nil, serrors.New(serrors.ErrCodeFilePermission,
			fmt.Sprintf("failed to stat output directory %s", outDir), err)
	}
	if !info.IsDir() {
		return nil, serrors.New(serrors.ErrCodeInvalidPath,
			fmt.Sprintf("output path is not a directory: %s", outDir), nil)
	}

	seen := make(map[string]bool)
	err = filepath.WalkDir(outDir, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return nil // skip what we can't read
		}

		relPath, err := filepath.Rel(outDir, path)
		if err != nil || relPath == "." {
			return nil
		}

		if d.IsDir() {
			name := d.Name()
			if strings.HasPrefix(name, ".") || s.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}

		seen[RouteForFile(filepath.ToSlash(relPath), baseURL)] = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	routes := make([]string, 0, len(seen))
	for r := range seen {
		routes = append(routes, r)
	}
	sort.Strings(routes)

	s.logger.Debug("discovered routes",
		slog.String("out_dir", outDir),
		slog.Int("routes", len(routes)))
	return routes, nil
}

// RouteForFile maps a slash-separated page path relative to the output
// directory to the route it is served at.
func RouteForFile(relPath, baseURL string) string {
	if relPath == route.NotFoundPage {
		return baseURL + relPath
	}
	if relPath == "index.html" {
		return baseURL
	}
	if dir, ok := strings.CutSuffix(relPath, "/index.html"); ok {
		return baseURL + dir
	}
	return baseURL + strings.TrimSuffix(relPath, filepath.Ext(relPath))
}

// LoadRoutes reads routes from path. The file is either a JSON array of
// strings or one route per line; blank lines and lines starting with # are
// ignored.
func LoadRoutes(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, serrors.New(serrors.ErrCodeFileNotFound,
				fmt.Sprintf("routes file %s does not exist", path), err)
		}
		return nil, serrors.New(serrors.ErrCodeFilePermission,
			fmt.Sprintf("failed to read routes file %s", path), err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var routes []string
		if err := json.Unmarshal([]byte(trimmed), &routes); err != nil {
			return nil, serrors.ValidationError(
				fmt.Sprintf("routes file %s is not a JSON array of strings", path), err)
		}
		return routes, nil
	}

	var routes []string
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		routes = append(routes, line)
	}
	return routes, nil
}
