package route

import (
	"os"
	"path/filepath"
	"strings"
)

// pathTemplate maps an output directory and a route-like string to one
// guessed location of the rendered page.
type pathTemplate func(outDir, route string) string

// pageTemplates are the generator's rendering conventions, in priority order.
var pageTemplates = []pathTemplate{
	// "/docs/intro" -> "<out>/docs/intro.html"
	func(outDir, route string) string { return filepath.Join(outDir, route+".html") },
	// "/docs/intro" -> "<out>/docs/intro/index.html"
	func(outDir, route string) string { return filepath.Join(outDir, route, "index.html") },
}

// relativeTo strips the base URL prefix from route.
func relativeTo(route, baseURL string) string {
	return strings.TrimPrefix(route, baseURL)
}

// Candidates returns every file path a route could have been rendered to,
// in the order they are tried: raw route first, then the base-URL-relative
// form, each under every page template.
func Candidates(outDir, route, baseURL string) []string {
	forms := [2]string{route, relativeTo(route, baseURL)}
	out := make([]string, 0, len(forms)*len(pageTemplates))
	for _, form := range forms {
		for _, tmpl := range pageTemplates {
			out = append(out, tmpl(outDir, form))
		}
	}
	return out
}

// firstExisting returns the first candidate for which exists reports true,
// or unresolved.
func firstExisting(candidates []string, exists func(string) bool) string {
	for _, c := range candidates {
		if exists(c) {
			return c
		}
	}
	return unresolved
}

// fileExists reports whether a regular file exists at path.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
