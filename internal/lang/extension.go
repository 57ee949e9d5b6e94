package lang

import (
	"fmt"

	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"

	serrors "github.com/Aman-CERP/sitesearch/internal/errors"
)

// Extension module names as they appear in the generated client module.
const (
	extensionPrefix      = "lunr-languages/"
	StemmerSupportModule = extensionPrefix + "lunr.stemmer.support"
	SegmenterModule      = extensionPrefix + "tinyseg"
	MultiLanguageModule  = extensionPrefix + "lunr.multi"
)

// LanguageModule returns the extension module name for a language code.
func LanguageModule(code string) string {
	return extensionPrefix + "lunr." + code
}

// Extension is one registration step against a Runtime. The same value drives
// both the in-process runtime and the generated client module, so the two
// never disagree on order.
type Extension struct {
	Name  string
	apply func(*Runtime) error
}

// Plan is the ordered list of extensions for a language spec.
type Plan []Extension

// Names returns the module names in plan order.
func (p Plan) Names() []string {
	names := make([]string, 0, len(p))
	for _, e := range p {
		names = append(names, e.Name)
	}
	return names
}

// Apply registers every extension into rt in plan order. It stops at the
// first failure.
func (p Plan) Apply(rt *Runtime) error {
	for _, e := range p {
		if err := e.apply(rt); err != nil {
			return fmt.Errorf("apply extension %s: %w", e.Name, err)
		}
		rt.applied = append(rt.applied, e.Name)
	}
	return nil
}

// PlanFor computes the extension plan for spec. Every code is validated
// before anything is returned, so an unknown code never yields a partial
// plan. The default language yields an empty plan.
//
// Order: stemmer support first; then for each code its language extension,
// preceded by the segmenter when the code needs word segmentation (once per
// such code, so ja and jp together register it twice); the multi-language
// composition last.
func PlanFor(spec Spec) (Plan, error) {
	spec = spec.Normalize()
	if spec.IsDefault() {
		return nil, nil
	}

	codes := spec.extensionCodes()
	for _, code := range codes {
		if _, ok := catalog[code]; !ok {
			return nil, serrors.UnknownLanguageError(code)
		}
	}

	plan := Plan{{Name: StemmerSupportModule, apply: (*Runtime).registerStemmerSupport}}
	for _, code := range codes {
		if catalog[code].segmented {
			plan = append(plan, Extension{
				Name:  SegmenterModule,
				apply: func(rt *Runtime) error { return rt.registerSegmenter(cjk.AnalyzerName) },
			})
		}
		plan = append(plan, Extension{
			Name:  LanguageModule(code),
			apply: func(rt *Runtime) error { return rt.registerLanguage(code) },
		})
	}
	if spec.IsMulti() {
		plan = append(plan, Extension{Name: MultiLanguageModule, apply: (*Runtime).registerMulti})
	}
	return plan, nil
}
