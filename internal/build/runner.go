package build

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/sitesearch/internal/config"
	serrors "github.com/Aman-CERP/sitesearch/internal/errors"
	"github.com/Aman-CERP/sitesearch/internal/lang"
	"github.com/Aman-CERP/sitesearch/internal/route"
	"github.com/Aman-CERP/sitesearch/internal/scanner"
	"github.com/Aman-CERP/sitesearch/internal/telemetry"
)

// Request describes one build.
type Request struct {
	// OutDir is the directory the site was rendered into.
	OutDir string
	// BaseURL is the normalized public path prefix ("/" or "/docs/").
	BaseURL string
	// Routes, when non-nil, is used as is.
	Routes []string
	// RoutesFile is read when Routes is nil. When both are empty the routes
	// are discovered from OutDir.
	RoutesFile string
	// Language selects the search language(s).
	Language lang.Spec
	// Options are the include/exclude settings.
	Options route.Options
}

// RequestFromConfig builds a Request from a validated configuration.
func RequestFromConfig(cfg *config.Config) (Request, error) {
	spec, err := cfg.LanguageSpec()
	if err != nil {
		return Request{}, serrors.ConfigError("invalid search.language", err)
	}
	return Request{
		OutDir:     cfg.Site.OutDir,
		BaseURL:    cfg.Site.BaseURL,
		RoutesFile: cfg.Site.RoutesFile,
		Language:   spec,
		Options:    cfg.RouteOptions(),
	}, nil
}

// Result is the outcome of a successful build.
type Result struct {
	BuildID    string
	Routes     int
	Entries    []route.Entry
	Meta       route.Meta
	Language   lang.Spec
	Extensions []string
	// Factory is nil for the default language.
	Factory    lang.IndexFactory
	ClientPath string
	Duration   time.Duration
}

// Runner executes builds. It is safe for sequential reuse; concurrent runs
// against one output directory are serialized by the build lock.
type Runner struct {
	resolver    *route.Resolver
	builder     *lang.Builder
	scanner     *scanner.Scanner
	metrics     *telemetry.Metrics
	metricsPath string
	lockTimeout time.Duration
	lockRetry   time.Duration
	logger      *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger for the runner and its components.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithMetrics records every build in m and, when path is non-empty,
// rewrites the textfile at path after each build.
func WithMetrics(m *telemetry.Metrics, path string) Option {
	return func(r *Runner) {
		r.metrics = m
		r.metricsPath = path
	}
}

// WithLockTimeout sets how long a build waits for another build of the
// same output directory. Zero fails immediately.
func WithLockTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.lockTimeout = d
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) (*Runner, error) {
	r := &Runner{
		lockTimeout: 30 * time.Second,
		lockRetry:   100 * time.Millisecond,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	resolver, err := route.NewResolver(route.WithLogger(r.logger))
	if err != nil {
		return nil, err
	}
	r.resolver = resolver
	r.builder = lang.NewBuilder(lang.WithBuilderLogger(r.logger))
	r.scanner = scanner.New(scanner.WithLogger(r.logger))
	return r, nil
}

// MetricsPath returns the textfile path, or "" when export is disabled.
func (r *Runner) MetricsPath() string {
	return r.metricsPath
}

// Run executes one build.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	id := uuid.NewString()
	logger := r.logger.With(slog.String("build_id", id))

	res, err := r.run(ctx, logger, id, req)
	elapsed := time.Since(start)
	if err != nil {
		logger.Error("search build failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", elapsed))
		r.recordFailure(logger, elapsed)
		return nil, err
	}

	res.Duration = elapsed
	r.recordSuccess(logger, res)
	logger.Info("search build finished",
		slog.Int("routes", res.Routes),
		slog.Int("indexed", len(res.Entries)),
		slog.Int("excluded", res.Meta.ExcludedCount),
		slog.Int("unresolved", res.Meta.UnresolvedCount),
		slog.String("language", res.Language.String()),
		slog.Duration("duration", elapsed))
	return res, nil
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger, id string, req Request) (*Result, error) {
	outDir, err := checkOutDir(req.OutDir)
	if err != nil {
		return nil, err
	}

	lock := NewFileLock(outDir)
	if err := lock.Acquire(ctx, r.lockTimeout, r.lockRetry); err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release build lock", slog.String("error", err.Error()))
		}
	}()

	baseURL := config.NormalizeBaseURL(req.BaseURL)
	routes, err := r.routes(ctx, req, outDir, baseURL)
	if err != nil {
		return nil, err
	}

	res := &Result{
		BuildID:    id,
		Routes:     len(routes),
		Language:   req.Language.Normalize(),
		ClientPath: lang.ClientPath(outDir),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		res.Entries, res.Meta = r.resolver.Resolve(routes, outDir, baseURL, req.Options)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		factory, err := r.builder.Build(outDir, res.Language)
		if err != nil {
			return err
		}
		res.Factory = factory
		if factory != nil {
			res.Extensions = factory.Extensions()
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// routes picks the route source: explicit list, routes file, or discovery.
func (r *Runner) routes(ctx context.Context, req Request, outDir, baseURL string) ([]string, error) {
	switch {
	case req.Routes != nil:
		return req.Routes, nil
	case req.RoutesFile != "":
		return scanner.LoadRoutes(req.RoutesFile)
	default:
		return r.scanner.DiscoverRoutes(ctx, outDir, baseURL)
	}
}

func checkOutDir(dir string) (string, error) {
	if dir == "" {
		return "", serrors.ConfigError("site.out_dir is required", nil)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", serrors.New(serrors.ErrCodeInvalidPath, "invalid output directory", err).
			WithDetail("path", dir)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", serrors.New(serrors.ErrCodeFileNotFound, "output directory does not exist", err).
				WithDetail("path", abs).
				WithSuggestion("Run the site generator before building the search index")
		}
		return "", serrors.New(serrors.ErrCodeFilePermission, "cannot access output directory", err).
			WithDetail("path", abs)
	}
	if !info.IsDir() {
		return "", serrors.New(serrors.ErrCodeInvalidPath, "output path is not a directory", nil).
			WithDetail("path", abs)
	}
	return abs, nil
}

func (r *Runner) recordSuccess(logger *slog.Logger, res *Result) {
	if r.metrics == nil {
		return
	}
	r.metrics.ObserveBuild(telemetry.BuildStats{
		Seen:       res.Routes,
		Indexed:    len(res.Entries),
		Excluded:   res.Meta.ExcludedCount,
		Unresolved: res.Meta.UnresolvedCount,
		Extensions: len(res.Extensions),
		Duration:   res.Duration,
	})
	r.writeMetrics(logger)
}

func (r *Runner) recordFailure(logger *slog.Logger, d time.Duration) {
	if r.metrics == nil {
		return
	}
	r.metrics.ObserveFailure(d)
	r.writeMetrics(logger)
}

// writeMetrics never fails a build.
func (r *Runner) writeMetrics(logger *slog.Logger) {
	if r.metricsPath == "" {
		return
	}
	if err := r.metrics.WriteTextfile(r.metricsPath); err != nil {
		logger.Warn("failed to write metrics textfile",
			slog.String("path", r.metricsPath),
			slog.String("error", err.Error()))
	}
}
