package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	serrors "github.com/Aman-CERP/sitesearch/internal/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestOperation_String(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpCreate, "CREATE"},
		{OpModify, "MODIFY"},
		{OpDelete, "DELETE"},
		{OpRename, "RENAME"},
		{Operation(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.op.String())
	}
}

func TestOptions_WithDefaults(t *testing.T) {
	opts := Options{DebounceWindow: time.Second}.WithDefaults()

	assert.Equal(t, time.Second, opts.DebounceWindow)
	assert.Equal(t, 2*time.Second, opts.PollInterval)
	assert.Equal(t, 16, opts.EventBufferSize)
	assert.NotNil(t, opts.Logger)
}

func TestIgnoreMatcher(t *testing.T) {
	m, err := newIgnoreMatcher([]string{"lunr.client.js", "search.prom"}, []string{"assets/**", "**/*.map"})
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{".", true},
		{"", true},
		{".sitesearch.lock", true},
		{".lunr.client.js.123456", true},
		{".git/HEAD", true},
		{"docs/.cache/page.html", true},
		{"lunr.client.js", true},
		{"nested/lunr.client.js", true},
		{"search.prom", true},
		{"assets/app.css", true},
		{"js/app.js.map", true},
		{"assets", false},
		{"index.html", false},
		{"docs/guide/index.html", false},
		{"lunr.client.js.bak", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Match(tt.path), tt.path)
	}
}

func TestNewHybridWatcher_InvalidPattern(t *testing.T) {
	_, err := NewHybridWatcher(Options{IgnorePatterns: []string{"assets/["}})

	require.Error(t, err)
	assert.Equal(t, serrors.ErrCodeConfigInvalid, serrors.GetCode(err))
}

// runHybrid starts h on root and returns a func that cancels and waits.
func runHybrid(t *testing.T, h *HybridWatcher, root string) (stop func() error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Start(ctx, root) }()
	// Let the watch registration or baseline scan finish.
	time.Sleep(150 * time.Millisecond)
	return func() error {
		cancel()
		return <-done
	}
}

func waitBatch(t *testing.T, h *HybridWatcher, timeout time.Duration) []FileEvent {
	t.Helper()
	select {
	case batch := <-h.Events():
		return batch
	case err := <-h.Errors():
		t.Fatalf("unexpected watcher error: %v", err)
	case <-time.After(timeout):
		t.Fatal("timeout waiting for batch")
	}
	return nil
}

func batchPaths(batch []FileEvent) map[string]Operation {
	paths := make(map[string]Operation, len(batch))
	for _, e := range batch {
		paths[e.Path] = e.Operation
	}
	return paths
}

func testWatcherModes(t *testing.T, fn func(t *testing.T, opts Options)) {
	t.Run("fsnotify", func(t *testing.T) {
		fn(t, Options{DebounceWindow: 50 * time.Millisecond, IgnoreNames: []string{"lunr.client.js"}})
	})
	t.Run("polling", func(t *testing.T) {
		fn(t, Options{
			DebounceWindow: 50 * time.Millisecond,
			PollInterval:   30 * time.Millisecond,
			IgnoreNames:    []string{"lunr.client.js"},
			ForcePolling:   true,
		})
	})
}

func TestHybridWatcher_DetectsPageChanges(t *testing.T) {
	testWatcherModes(t, func(t *testing.T, opts Options) {
		root := t.TempDir()
		h, err := NewHybridWatcher(opts)
		require.NoError(t, err)
		stop := runHybrid(t, h, root)

		require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>Home</h1>"), 0o644))

		batch := waitBatch(t, h, 2*time.Second)
		assert.Contains(t, batchPaths(batch), "index.html")

		assert.ErrorIs(t, stop(), context.Canceled)
	})
}

func TestHybridWatcher_IgnoresOwnOutputs(t *testing.T) {
	testWatcherModes(t, func(t *testing.T, opts Options) {
		root := t.TempDir()
		h, err := NewHybridWatcher(opts)
		require.NoError(t, err)
		stop := runHybrid(t, h, root)
		defer stop()

		require.NoError(t, os.WriteFile(filepath.Join(root, ".lunr.client.js.42"), []byte("x"), 0o644))
		require.NoError(t, os.Rename(filepath.Join(root, ".lunr.client.js.42"), filepath.Join(root, "lunr.client.js")))
		require.NoError(t, os.WriteFile(filepath.Join(root, ".sitesearch.lock"), nil, 0o644))

		select {
		case batch := <-h.Events():
			t.Fatalf("expected no batch, got %v", batch)
		case <-time.After(300 * time.Millisecond):
		}
	})
}

func TestHybridWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	h, err := NewHybridWatcher(Options{DebounceWindow: 50 * time.Millisecond})
	require.NoError(t, err)
	require.Equal(t, "fsnotify", h.WatcherType())
	stop := runHybrid(t, h, root)
	defer stop()

	dir := filepath.Join(root, "blog")
	require.NoError(t, os.Mkdir(dir, 0o755))
	waitBatch(t, h, 2*time.Second)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("post"), 0o644))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case batch := <-h.Events():
			if _, ok := batchPaths(batch)["blog/index.html"]; ok {
				return
			}
		case <-deadline:
			t.Fatal("change in new directory was not reported")
		}
	}
}

func TestHybridWatcher_StartErrors(t *testing.T) {
	h, err := NewHybridWatcher(Options{})
	require.NoError(t, err)
	defer h.Stop()

	err = h.Start(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	err = h.Start(context.Background(), file)
	assert.Error(t, err)
}

func TestHybridWatcher_StopClosesChannels(t *testing.T) {
	h, err := NewHybridWatcher(Options{ForcePolling: true})
	require.NoError(t, err)
	assert.Equal(t, "polling", h.WatcherType())

	require.NoError(t, h.Stop())
	require.NoError(t, h.Stop())

	_, ok := <-h.Events()
	assert.False(t, ok)
	_, ok = <-h.Errors()
	assert.False(t, ok)
	assert.Zero(t, h.DroppedBatches())
}
