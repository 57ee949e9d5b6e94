// Package watcher watches a rendered site for changes so the search runtime
// can be rebuilt.
//
// fsnotify is the primary mechanism, with polling as a fallback where it
// fails (network mounts, some container volumes). Events are debounced into
// batches so a site generator rewriting hundreds of pages triggers one
// rebuild, and the tool's own outputs are ignored so a rebuild never
// re-triggers itself.
//
// Usage:
//
//	w, err := watcher.NewHybridWatcher(watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	go w.Start(ctx, outDir)
//	for batch := range w.Events() {
//	    rebuild(batch)
//	}
package watcher
