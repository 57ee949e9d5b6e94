package route

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeSite creates an output directory with the given rendered files.
func writeSite(t *testing.T, files ...string) string {
	t.Helper()
	outDir := t.TempDir()
	for _, f := range files {
		path := filepath.Join(outDir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("<html></html>"), 0o644))
	}
	return outDir
}

func newTestResolver(t *testing.T, opts ...Option) *Resolver {
	t.Helper()
	r, err := NewResolver(append([]Option{WithLogger(discardLogger())}, opts...)...)
	require.NoError(t, err)
	return r
}

func urls(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.URL)
	}
	return out
}

func TestCandidates_Order(t *testing.T) {
	got := Candidates("/out", "/site/docs/a", "/site/")

	assert.Equal(t, []string{
		filepath.Join("/out", "site/docs/a.html"),
		filepath.Join("/out", "site/docs/a", "index.html"),
		filepath.Join("/out", "docs/a.html"),
		filepath.Join("/out", "docs/a", "index.html"),
	}, got)
}

func TestResolve_SkipsNotFoundPage(t *testing.T) {
	outDir := writeSite(t, "404.html", "docs/a/index.html")
	r := newTestResolver(t)

	entries, meta := r.Resolve([]string{"/404.html", "/docs/a"}, outDir, "/", Options{})

	assert.Equal(t, []string{"/docs/a"}, urls(entries))
	assert.Equal(t, 0, meta.ExcludedCount)
}

func TestResolve_BaseURLGate(t *testing.T) {
	outDir := writeSite(t, "index.html", "docs/a/index.html")
	r := newTestResolver(t)

	tests := []struct {
		name         string
		indexBaseURL bool
		want         []string
	}{
		{name: "skipped by default", indexBaseURL: false, want: []string{"/docs/a"}},
		{name: "indexed when enabled", indexBaseURL: true, want: []string{"/", "/docs/a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, _ := r.Resolve([]string{"/", "/docs/a"}, outDir, "/", Options{IndexBaseURL: tt.indexBaseURL})
			assert.Equal(t, tt.want, urls(entries))
		})
	}
}

func TestResolve_BaseURLGateIgnoresFilters(t *testing.T) {
	outDir := writeSite(t, "index.html")
	r := newTestResolver(t)

	entries, meta := r.Resolve([]string{"/"}, outDir, "/", Options{IncludeRoutes: []string{"**"}})

	assert.Empty(t, entries)
	assert.Equal(t, 0, meta.ExcludedCount)
}

func TestResolve_CandidateConventions(t *testing.T) {
	outDir := writeSite(t,
		"blog/post.html",
		"docs/guide/index.html",
		"docs/raw.html",
	)
	r := newTestResolver(t)

	entries, meta := r.Resolve([]string{"/blog/post", "/docs/guide", "/docs/raw"}, outDir, "/", Options{})

	require.Len(t, entries, 3)
	assert.Equal(t, filepath.Join(outDir, "blog/post.html"), entries[0].Path)
	assert.Equal(t, filepath.Join(outDir, "docs/guide", "index.html"), entries[1].Path)
	assert.Equal(t, filepath.Join(outDir, "docs/raw.html"), entries[2].Path)
	assert.Equal(t, Meta{}, meta)
}

func TestResolve_BaseURLRelativeCandidate(t *testing.T) {
	// Sites served under a sub-path render pages without the base URL segment.
	outDir := writeSite(t, "docs/a/index.html")
	r := newTestResolver(t)

	entries, _ := r.Resolve([]string{"/site/docs/a"}, outDir, "/site/", Options{})

	require.Len(t, entries, 1)
	assert.Equal(t, Entry{Path: filepath.Join(outDir, "docs/a", "index.html"), URL: "/site/docs/a"}, entries[0])
}

func TestResolve_AmbiguousCandidatesTakeFirstTemplate(t *testing.T) {
	outDir := writeSite(t, "docs/a.html", "docs/a/index.html")
	r := newTestResolver(t)

	entries, _ := r.Resolve([]string{"/docs/a"}, outDir, "/", Options{})

	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Join(outDir, "docs/a.html"), entries[0].Path)
}

func TestResolve_DeduplicatesAliases(t *testing.T) {
	outDir := writeSite(t, "docs/guide/index.html")
	r := newTestResolver(t)

	entries, meta := r.Resolve([]string{"/docs/guide", "/docs/guide/"}, outDir, "/", Options{
		ExcludeRoutes: []string{"/docs/guide/"},
	})

	// The trailing-slash alias is dropped as a duplicate before the exclude
	// filter sees it, so it is not counted.
	assert.Equal(t, []string{"/docs/guide"}, urls(entries))
	assert.Equal(t, 0, meta.ExcludedCount)
}

func TestResolve_FirstSeenWinsOnDuplicate(t *testing.T) {
	outDir := writeSite(t, "docs/guide/index.html")
	r := newTestResolver(t)

	entries, _ := r.Resolve([]string{"/docs/guide/", "/docs/guide"}, outDir, "/", Options{})

	assert.Equal(t, []string{"/docs/guide/"}, urls(entries))
}

func TestResolve_ExcludedRouteDoesNotClaimPath(t *testing.T) {
	outDir := writeSite(t, "docs/guide/index.html")
	r := newTestResolver(t)

	entries, meta := r.Resolve([]string{"/docs/guide/", "/docs/guide"}, outDir, "/", Options{
		ExcludeRoutes: []string{"/docs/guide/"},
	})

	assert.Equal(t, []string{"/docs/guide"}, urls(entries))
	assert.Equal(t, 1, meta.ExcludedCount)
}

func TestResolve_FilterComposition(t *testing.T) {
	outDir := writeSite(t,
		"docs/internal/x/index.html",
		"docs/guide/index.html",
		"blog/post/index.html",
	)
	r := newTestResolver(t)

	entries, meta := r.Resolve(
		[]string{"/docs/internal/x", "/docs/guide", "/blog/post"},
		outDir, "/",
		Options{
			IncludeRoutes: []string{"/docs/**"},
			ExcludeRoutes: []string{"/docs/internal/**"},
		},
	)

	assert.Equal(t, []string{"/docs/guide"}, urls(entries))
	assert.Equal(t, 2, meta.ExcludedCount)
}

func TestResolve_FiltersMatchRelativeForm(t *testing.T) {
	outDir := writeSite(t, "docs/a/index.html", "blog/b/index.html")
	r := newTestResolver(t)

	tests := []struct {
		name     string
		opts     Options
		want     []string
		excluded int
	}{
		{
			name: "include relative",
			opts: Options{IncludeRoutes: []string{"docs/*"}},
			want: []string{"/site/docs/a"}, excluded: 1,
		},
		{
			name: "include raw",
			opts: Options{IncludeRoutes: []string{"/site/blog/*"}},
			want: []string{"/site/blog/b"}, excluded: 1,
		},
		{
			name: "exclude relative",
			opts: Options{ExcludeRoutes: []string{"blog/**"}},
			want: []string{"/site/docs/a"}, excluded: 1,
		},
		{
			name: "single star stays in segment",
			opts: Options{IncludeRoutes: []string{"/site/*"}},
			want: []string{}, excluded: 2,
		},
		{
			name: "question mark and class",
			opts: Options{IncludeRoutes: []string{"/site/[db]???/?"}},
			want: []string{"/site/docs/a", "/site/blog/b"}, excluded: 0,
		},
		{
			name: "case sensitive",
			opts: Options{ExcludeRoutes: []string{"/site/DOCS/**"}},
			want: []string{"/site/docs/a", "/site/blog/b"}, excluded: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, meta := r.Resolve([]string{"/site/docs/a", "/site/blog/b"}, outDir, "/site/", tt.opts)
			assert.Equal(t, tt.want, urls(entries))
			assert.Equal(t, tt.excluded, meta.ExcludedCount)
		})
	}
}

func TestResolve_FiltersMatchTrailingSlashRoutes(t *testing.T) {
	outDir := writeSite(t, "docs/internal/foo/index.html", "docs/guide/index.html", "blog/post/index.html")
	r := newTestResolver(t)
	routes := []string{"/docs/internal/foo/", "/docs/guide/", "/blog/post/"}

	tests := []struct {
		name     string
		opts     Options
		want     []string
		excluded int
	}{
		{
			name: "exclude single star",
			opts: Options{ExcludeRoutes: []string{"/docs/internal/*"}},
			want: []string{"/docs/guide/", "/blog/post/"}, excluded: 1,
		},
		{
			name: "include single star",
			opts: Options{IncludeRoutes: []string{"/blog/*"}},
			want: []string{"/blog/post/"}, excluded: 2,
		},
		{
			name: "include and exclude",
			opts: Options{
				IncludeRoutes: []string{"/blog/*", "/docs/**"},
				ExcludeRoutes: []string{"/docs/internal/*"},
			},
			want: []string{"/docs/guide/", "/blog/post/"}, excluded: 1,
		},
		{
			name: "relative form",
			opts: Options{ExcludeRoutes: []string{"docs/*/foo"}},
			want: []string{"/docs/guide/", "/blog/post/"}, excluded: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, meta := r.Resolve(routes, outDir, "/", tt.opts)
			assert.Equal(t, tt.want, urls(entries))
			assert.Equal(t, tt.excluded, meta.ExcludedCount)
		})
	}
}

func TestResolve_UnresolvedRoutes(t *testing.T) {
	outDir := writeSite(t, "docs/a/index.html")
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	r, err := NewResolver(WithLogger(logger))
	require.NoError(t, err)

	entries, meta := r.Resolve([]string{"/missing", "/also-missing", "/docs/a"}, outDir, "/", Options{})

	// Two unresolved routes are never treated as duplicates of each other.
	assert.Equal(t, []string{"/docs/a"}, urls(entries))
	assert.Equal(t, 2, meta.UnresolvedCount)
	assert.Equal(t, 0, meta.ExcludedCount)
	assert.Contains(t, logs.String(), "could not resolve file for route")
	assert.Contains(t, logs.String(), "route=/missing")
	assert.Contains(t, logs.String(), "route=/also-missing")
}

func TestResolve_UnresolvedRouteStillFiltered(t *testing.T) {
	outDir := writeSite(t)
	r := newTestResolver(t)

	_, meta := r.Resolve([]string{"/blog/missing"}, outDir, "/", Options{IncludeRoutes: []string{"/docs/**"}})

	assert.Equal(t, 1, meta.ExcludedCount)
	assert.Equal(t, 0, meta.UnresolvedCount)
}

func TestResolve_InvalidPatternNeverMatches(t *testing.T) {
	outDir := writeSite(t, "docs/a/index.html")
	r := newTestResolver(t)

	entries, meta := r.Resolve([]string{"/docs/a"}, outDir, "/", Options{ExcludeRoutes: []string{"/docs/["}})

	assert.Equal(t, []string{"/docs/a"}, urls(entries))
	assert.Equal(t, 0, meta.ExcludedCount)
}

func TestResolve_Idempotent(t *testing.T) {
	outDir := writeSite(t, "docs/a/index.html", "docs/b.html", "blog/c/index.html")
	r := newTestResolver(t)
	routes := []string{"/", "/docs/a", "/docs/a/", "/docs/b", "/blog/c", "/gone"}
	opts := Options{ExcludeRoutes: []string{"/blog/**"}}

	first, firstMeta := r.Resolve(routes, outDir, "/", opts)
	second, secondMeta := r.Resolve(routes, outDir, "/", opts)

	assert.Equal(t, first, second)
	assert.Equal(t, firstMeta, secondMeta)
}

func TestResolve_CustomExistsFunc(t *testing.T) {
	present := map[string]bool{filepath.Join("out", "a.html"): true}
	r := newTestResolver(t, WithExistsFunc(func(p string) bool { return present[p] }))

	entries, _ := r.Resolve([]string{"/a"}, "out", "/", Options{})

	assert.Equal(t, []Entry{{Path: filepath.Join("out", "a.html"), URL: "/a"}}, entries)
}

func TestValidatePatterns(t *testing.T) {
	assert.NoError(t, ValidatePatterns([]string{"/docs/**", "*.html", "/a/[bc]/?"}))
	assert.Error(t, ValidatePatterns([]string{"/docs/**", "/docs/["}))
	assert.NoError(t, ValidatePatterns(nil))
}
