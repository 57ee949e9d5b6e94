package watcher

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"

	serrors "github.com/Aman-CERP/sitesearch/internal/errors"
)

// ignoreMatcher decides which paths never produce events: hidden entries
// (lock files, temp files, VCS dirs), configured base names and globs.
type ignoreMatcher struct {
	names map[string]bool
	globs []glob.Glob
}

func newIgnoreMatcher(names, patterns []string) (*ignoreMatcher, error) {
	m := &ignoreMatcher{names: make(map[string]bool, len(names))}
	for _, n := range names {
		m.names[n] = true
	}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, serrors.ConfigError(fmt.Sprintf("invalid watch ignore pattern %q", p), err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Match reports whether relPath (slash-separated) is ignored.
func (m *ignoreMatcher) Match(relPath string) bool {
	if relPath == "" || relPath == "." {
		return true
	}
	for _, seg := range strings.Split(relPath, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	if m.names[path.Base(relPath)] {
		return true
	}
	for _, g := range m.globs {
		if g.Match(relPath) {
			return true
		}
	}
	return false
}
