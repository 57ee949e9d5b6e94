package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeSite renders a small site into a temp dir and returns its path.
func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	pages := map[string]string{
		"index.html":             "<h1>Home</h1>",
		"404.html":               "<h1>Not found</h1>",
		"docs/intro.html":        "<h1>Introduction</h1>",
		"docs/guide/index.html":  "<h1>Guide</h1>",
		"docs/internal/x.html":   "<h1>Internal</h1>",
		"assets/app.css":         "body{}",
		"assets/vendor/foo.html": "<p>vendored</p>",
	}
	for rel, content := range pages {
		writeFile(t, filepath.Join(dir, rel), content)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func entryPaths(t *testing.T, outDir string, res *Result) []string {
	t.Helper()
	paths := make([]string, 0, len(res.Entries))
	for _, e := range res.Entries {
		rel, err := filepath.Rel(outDir, e.Path)
		require.NoError(t, err)
		paths = append(paths, filepath.ToSlash(rel))
	}
	return paths
}
