// Package lang assembles the language-aware search runtime for a site.
//
// For a configured language it plans the ordered list of search-library
// extensions (stemmer support, per-language stemmers, word segmentation,
// multi-language composition), applies them to a fresh Runtime, renders the
// same list as the generated lunr.client.js module, and hands back a bleve
// index factory whose analyzers match what the browser will use.
package lang

import (
	"sort"

	"github.com/blevesearch/bleve/v2/analysis/lang/ar"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/analysis/lang/da"
	"github.com/blevesearch/bleve/v2/analysis/lang/de"
	"github.com/blevesearch/bleve/v2/analysis/lang/es"
	"github.com/blevesearch/bleve/v2/analysis/lang/fi"
	"github.com/blevesearch/bleve/v2/analysis/lang/fr"
	"github.com/blevesearch/bleve/v2/analysis/lang/hi"
	"github.com/blevesearch/bleve/v2/analysis/lang/hu"
	"github.com/blevesearch/bleve/v2/analysis/lang/it"
	"github.com/blevesearch/bleve/v2/analysis/lang/nl"
	"github.com/blevesearch/bleve/v2/analysis/lang/no"
	"github.com/blevesearch/bleve/v2/analysis/lang/pt"
	"github.com/blevesearch/bleve/v2/analysis/lang/ro"
	"github.com/blevesearch/bleve/v2/analysis/lang/ru"
	"github.com/blevesearch/bleve/v2/analysis/lang/sv"
	"github.com/blevesearch/bleve/v2/analysis/lang/tr"
)

// UnicodeAnalyzerName is the fallback analyzer registered by stemmer support
// for languages bleve has no stemmer for.
const UnicodeAnalyzerName = "sitesearch_unicode"

// language describes one supported code.
type language struct {
	// analyzer is the bleve analyzer used server-side. Empty means the
	// analyzer comes from the segmentation extension.
	analyzer string
	// segmented languages have no whitespace word boundaries and need the
	// segmentation extension registered before their own.
	segmented bool
}

// catalog lists every code that has a client-side language extension.
var catalog = map[string]language{
	"ar": {analyzer: ar.AnalyzerName},
	"da": {analyzer: da.AnalyzerName},
	"de": {analyzer: de.AnalyzerName},
	"du": {analyzer: nl.AnalyzerName}, // historical alias for Dutch
	"el": {analyzer: UnicodeAnalyzerName},
	"es": {analyzer: es.AnalyzerName},
	"fi": {analyzer: fi.AnalyzerName},
	"fr": {analyzer: fr.AnalyzerName},
	"he": {analyzer: UnicodeAnalyzerName},
	"hi": {analyzer: hi.AnalyzerName},
	"hu": {analyzer: hu.AnalyzerName},
	"hy": {analyzer: UnicodeAnalyzerName},
	"it": {analyzer: it.AnalyzerName},
	"ja": {segmented: true},
	"jp": {segmented: true}, // historical alias for Japanese
	"kn": {analyzer: UnicodeAnalyzerName},
	"ko": {analyzer: cjk.AnalyzerName},
	"nl": {analyzer: nl.AnalyzerName},
	"no": {analyzer: no.AnalyzerName},
	"pt": {analyzer: pt.AnalyzerName},
	"ro": {analyzer: ro.AnalyzerName},
	"ru": {analyzer: ru.AnalyzerName},
	"sa": {analyzer: UnicodeAnalyzerName},
	"sv": {analyzer: sv.AnalyzerName},
	"ta": {analyzer: UnicodeAnalyzerName},
	"te": {analyzer: UnicodeAnalyzerName},
	"th": {analyzer: UnicodeAnalyzerName},
	"tr": {analyzer: tr.AnalyzerName},
	"vi": {analyzer: UnicodeAnalyzerName},
	"zh": {analyzer: cjk.AnalyzerName},
}

// Supported returns every supported code, sorted, including the default.
func Supported() []string {
	codes := make([]string, 0, len(catalog)+1)
	codes = append(codes, DefaultLanguage)
	for code := range catalog {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// IsSupported reports whether code can be used in a Spec.
func IsSupported(code string) bool {
	if code == DefaultLanguage {
		return true
	}
	_, ok := catalog[code]
	return ok
}
