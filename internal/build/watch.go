package build

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/Aman-CERP/sitesearch/internal/lang"
	"github.com/Aman-CERP/sitesearch/internal/watcher"
)

// BuildFunc receives the outcome of every build in watch mode. batch is
// nil for the initial build.
type BuildFunc func(res *Result, err error, batch []watcher.FileEvent)

// Watch builds once, then rebuilds whenever the output directory changes,
// until ctx is cancelled. Build failures are reported to onBuild and do not
// stop watching. Routes are rediscovered on every rebuild unless the
// request carries an explicit list.
func (r *Runner) Watch(ctx context.Context, req Request, opts watcher.Options, onBuild BuildFunc) error {
	res, err := r.Run(ctx, req)
	onBuild(res, err, nil)

	names, patterns := r.ownOutputs(req.OutDir)
	opts.IgnoreNames = append(opts.IgnoreNames, names...)
	opts.IgnorePatterns = append(opts.IgnorePatterns, patterns...)
	if opts.Logger == nil {
		opts.Logger = r.logger
	}
	w, err := watcher.NewHybridWatcher(opts)
	if err != nil {
		return err
	}
	defer w.Stop()

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- w.Start(ctx, req.OutDir)
	}()

	for {
		select {
		case err := <-watchErr:
			if err == nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case batch, ok := <-w.Events():
			if !ok {
				// Stop closed the channel; wait for Start to report why.
				err := <-watchErr
				if err == nil || errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
			r.logger.Info("site changed, rebuilding search index",
				slog.Int("changes", len(batch)),
				slog.String("first", batch[0].Path))
			res, err := r.Run(ctx, req)
			if ctx.Err() != nil {
				return nil
			}
			onBuild(res, err, batch)
		case err, ok := <-w.Errors():
			if ok {
				r.logger.Warn("watcher error", slog.String("error", err.Error()))
			}
		}
	}
}

// ownOutputs lists what the build itself writes into outDir, so a rebuild
// never re-triggers itself. The lock file and client temp files are hidden
// and always ignored. The metrics textfile and its temp files are matched
// by a glob on its relative path.
func (r *Runner) ownOutputs(outDir string) (names, patterns []string) {
	names = []string{lang.ClientFileName}
	if r.metricsPath == "" {
		return names, nil
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return names, nil
	}
	absMetrics, err := filepath.Abs(r.metricsPath)
	if err != nil {
		return names, nil
	}
	rel, err := filepath.Rel(absOut, absMetrics)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return names, nil
	}
	return names, []string{glob.QuoteMeta(filepath.ToSlash(rel)) + "*"}
}
