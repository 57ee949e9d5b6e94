package lang

import (
	"fmt"

	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"

	serrors "github.com/Aman-CERP/sitesearch/internal/errors"
)

// Runtime is the search library instance extensions register into. Each
// build gets a fresh one; nothing is shared between builds.
type Runtime struct {
	applied        []string
	stemmerSupport bool
	segmenter      string
	multi          bool
	analyzers      map[string]string
	custom         map[string]map[string]any
}

// NewRuntime returns an empty runtime with only the default language.
func NewRuntime() *Runtime {
	return &Runtime{
		analyzers: make(map[string]string),
		custom:    make(map[string]map[string]any),
	}
}

// Applied returns the extension names in the order they were applied.
func (r *Runtime) Applied() []string {
	return append([]string(nil), r.applied...)
}

// Analyzer returns the analyzer registered for code.
func (r *Runtime) Analyzer(code string) (string, bool) {
	a, ok := r.analyzers[code]
	return a, ok
}

// MultiLanguageEnabled reports whether the composition extension is loaded.
func (r *Runtime) MultiLanguageEnabled() bool {
	return r.multi
}

func (r *Runtime) registerStemmerSupport() error {
	r.stemmerSupport = true
	r.custom[UnicodeAnalyzerName] = map[string]any{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	}
	return nil
}

func (r *Runtime) registerSegmenter(analyzer string) error {
	r.segmenter = analyzer
	return nil
}

func (r *Runtime) registerLanguage(code string) error {
	l, ok := catalog[code]
	if !ok {
		return serrors.UnknownLanguageError(code)
	}
	if !r.stemmerSupport {
		return serrors.New(serrors.ErrCodeExtensionOrdering,
			fmt.Sprintf("language %q registered before stemmer support", code), nil)
	}
	analyzer := l.analyzer
	if l.segmented {
		if r.segmenter == "" {
			return serrors.New(serrors.ErrCodeExtensionOrdering,
				fmt.Sprintf("language %q registered before word segmentation", code), nil)
		}
		analyzer = r.segmenter
	}
	r.analyzers[code] = analyzer
	return nil
}

func (r *Runtime) registerMulti() error {
	if !r.stemmerSupport {
		return serrors.New(serrors.ErrCodeExtensionOrdering,
			"multi-language composition registered before stemmer support", nil)
	}
	r.multi = true
	return nil
}

// Language returns the single-language index factory for code. The code's
// extension must already be registered.
func (r *Runtime) Language(code string) (IndexFactory, error) {
	return r.factory(false, code)
}

// MultiLanguage returns an index factory spanning codes. The composition
// extension and every code's extension must already be registered.
func (r *Runtime) MultiLanguage(codes ...string) (IndexFactory, error) {
	if !r.multi {
		return nil, serrors.New(serrors.ErrCodeExtensionOrdering,
			"multi-language index requested without the composition extension", nil)
	}
	return r.factory(true, codes...)
}

func (r *Runtime) factory(multi bool, codes ...string) (IndexFactory, error) {
	f := &factory{
		multi:      multi,
		extensions: r.Applied(),
		custom:     make(map[string]map[string]any, len(r.custom)),
	}
	// One sub-field per code; a repeat would map the same field twice.
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		if seen[code] {
			continue
		}
		seen[code] = true
		analyzer, ok := r.analyzers[code]
		if !ok {
			return nil, serrors.New(serrors.ErrCodeExtensionOrdering,
				fmt.Sprintf("no extension registered for language %q", code), nil)
		}
		f.codes = append(f.codes, code)
		f.analyzers = append(f.analyzers, analyzer)
	}
	if len(f.codes) == 0 {
		return nil, serrors.InternalError("index factory needs at least one language", nil)
	}
	for name, def := range r.custom {
		f.custom[name] = def
	}
	return f, nil
}
