package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/sitesearch/internal/config"
	serrors "github.com/Aman-CERP/sitesearch/internal/errors"
	"github.com/Aman-CERP/sitesearch/internal/lang"
	"github.com/Aman-CERP/sitesearch/internal/route"
	"github.com/Aman-CERP/sitesearch/internal/telemetry"
)

func newTestRunner(t *testing.T, opts ...Option) *Runner {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.DiscardHandler)), WithLockTimeout(0)}, opts...)
	r, err := NewRunner(opts...)
	require.NoError(t, err)
	return r
}

func TestRunner_DiscoversAndResolves(t *testing.T) {
	out := writeSite(t)
	r := newTestRunner(t)

	res, err := r.Run(context.Background(), Request{
		OutDir:   out,
		BaseURL:  "/",
		Language: lang.Single("en"),
	})
	require.NoError(t, err)

	_, err = uuid.Parse(res.BuildID)
	assert.NoError(t, err)
	assert.Equal(t, []string{"docs/guide/index.html", "docs/internal/x.html", "docs/intro.html"}, entryPaths(t, out, res))
	assert.Equal(t, 5, res.Routes, "index, 404 and three docs pages")
	assert.Zero(t, res.Meta.UnresolvedCount)
	assert.Nil(t, res.Factory)
	assert.Empty(t, res.Extensions)
	assert.Equal(t, filepath.Join(out, lang.ClientFileName), res.ClientPath)
	assert.FileExists(t, res.ClientPath)
	assert.Positive(t, res.Duration)
}

func TestRunner_FiltersAndLanguage(t *testing.T) {
	out := writeSite(t)
	r := newTestRunner(t)

	res, err := r.Run(context.Background(), Request{
		OutDir:   out,
		BaseURL:  "/",
		Language: lang.Multi("en", "ja", "fr"),
		Options: route.Options{
			IncludeRoutes: []string{"/docs/**"},
			ExcludeRoutes: []string{"/docs/internal/**"},
			IndexBaseURL:  true,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"docs/guide/index.html", "docs/intro.html"}, entryPaths(t, out, res))
	// "/" fails the include rule and /docs/internal/x is excluded.
	assert.Equal(t, 2, res.Meta.ExcludedCount)
	require.NotNil(t, res.Factory)
	assert.Equal(t, []string{"ja", "fr"}, res.Factory.Languages())
	assert.Equal(t, []string{
		lang.StemmerSupportModule,
		lang.SegmenterModule,
		lang.LanguageModule("ja"),
		lang.LanguageModule("fr"),
		lang.MultiLanguageModule,
	}, res.Extensions)
}

func TestRunner_ExplicitRoutesAndBaseURL(t *testing.T) {
	out := writeSite(t)
	r := newTestRunner(t)

	res, err := r.Run(context.Background(), Request{
		OutDir:   out,
		BaseURL:  "/site",
		Routes:   []string{"/site/", "/site/docs/guide", "/site/docs/guide/", "/site/missing", "/site/404.html"},
		Language: lang.Single("fr"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"docs/guide/index.html"}, entryPaths(t, out, res))
	assert.Equal(t, 1, res.Meta.UnresolvedCount)
	assert.Equal(t, 5, res.Routes)
	require.NotNil(t, res.Factory)
	assert.Equal(t, []string{"fr"}, res.Factory.Languages())
}

func TestRunner_RoutesFile(t *testing.T) {
	out := writeSite(t)
	routesFile := filepath.Join(t.TempDir(), "routes.json")
	writeFile(t, routesFile, `["/docs/intro", "/docs/guide/"]`)

	res, err := newTestRunner(t).Run(context.Background(), Request{
		OutDir:     out,
		BaseURL:    "/",
		RoutesFile: routesFile,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/intro.html", "docs/guide/index.html"}, entryPaths(t, out, res))
}

func TestRunner_UnknownLanguageAbortsBuild(t *testing.T) {
	out := writeSite(t)
	m := telemetry.NewMetrics("test", "go")
	r := newTestRunner(t, WithMetrics(m, ""))

	res, err := r.Run(context.Background(), Request{OutDir: out, BaseURL: "/", Language: lang.Single("xx")})

	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, serrors.ErrCodeUnknownLanguage, serrors.GetCode(err))
	assert.NoFileExists(t, filepath.Join(out, lang.ClientFileName))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BuildsTotal.WithLabelValues(telemetry.ResultFailure)))
}

func TestRunner_OutDirErrors(t *testing.T) {
	r := newTestRunner(t)
	file := filepath.Join(t.TempDir(), "file.html")
	writeFile(t, file, "x")

	tests := []struct {
		name   string
		outDir string
		code   string
	}{
		{"empty", "", serrors.ErrCodeConfigInvalid},
		{"missing", filepath.Join(t.TempDir(), "missing"), serrors.ErrCodeFileNotFound},
		{"not a directory", file, serrors.ErrCodeInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Run(context.Background(), Request{OutDir: tt.outDir, BaseURL: "/"})
			require.Error(t, err)
			assert.Equal(t, tt.code, serrors.GetCode(err))
		})
	}
}

func TestRunner_LockHeld(t *testing.T) {
	out := writeSite(t)
	held := NewFileLock(out)
	require.NoError(t, held.Acquire(context.Background(), 0, 0))
	defer held.Release()

	_, err := newTestRunner(t).Run(context.Background(), Request{OutDir: out, BaseURL: "/"})

	require.Error(t, err)
	assert.Equal(t, serrors.ErrCodeLockHeld, serrors.GetCode(err))
	assert.NoFileExists(t, filepath.Join(out, lang.ClientFileName))
}

func TestRunner_ReleasesLock(t *testing.T) {
	out := writeSite(t)
	r := newTestRunner(t)

	for i := 0; i < 2; i++ {
		_, err := r.Run(context.Background(), Request{OutDir: out, BaseURL: "/"})
		require.NoError(t, err)
	}
}

func TestRunner_CancelledContext(t *testing.T) {
	out := writeSite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestRunner(t, WithLockTimeout(time.Second)).Run(ctx, Request{OutDir: out, BaseURL: "/"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_WritesMetricsTextfile(t *testing.T) {
	out := writeSite(t)
	metricsPath := filepath.Join(t.TempDir(), "sitesearch.prom")
	m := telemetry.NewMetrics("test", "go")
	r := newTestRunner(t, WithMetrics(m, metricsPath))

	_, err := r.Run(context.Background(), Request{OutDir: out, BaseURL: "/", Language: lang.Single("de")})
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `sitesearch_routes{outcome="indexed"} 3`)
	assert.Contains(t, string(data), "sitesearch_language_extensions 2")
	assert.Equal(t, metricsPath, r.MetricsPath())
}

func TestRequestFromConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Site.OutDir = "/srv/site"
	cfg.Site.BaseURL = "/docs/"
	cfg.Search.Language = []any{"en", "fr"}
	cfg.Search.ExcludeRoutes = []string{"/docs/private/**"}

	req, err := RequestFromConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "/srv/site", req.OutDir)
	assert.Equal(t, "/docs/", req.BaseURL)
	assert.Equal(t, lang.Multi("en", "fr"), req.Language)
	assert.Equal(t, []string{"/docs/private/**"}, req.Options.ExcludeRoutes)

	cfg.Search.Language = 7
	_, err = RequestFromConfig(cfg)
	assert.Equal(t, serrors.ErrCodeConfigInvalid, serrors.GetCode(err))
}
