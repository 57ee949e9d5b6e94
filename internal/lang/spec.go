package lang

import (
	"fmt"
	"strings"

	serrors "github.com/Aman-CERP/sitesearch/internal/errors"
)

// DefaultLanguage is the search library's built-in language. It needs no
// extension at all.
const DefaultLanguage = "en"

// Spec is the configured search language: one code, or an ordered list of
// codes for a combined multi-language index.
type Spec struct {
	codes []string
	multi bool
}

// Single returns a single-language spec.
func Single(code string) Spec {
	return Spec{codes: []string{code}}
}

// Multi returns a multi-language spec. Duplicates are kept; they only cost an
// extra registration.
func Multi(codes ...string) Spec {
	return Spec{codes: append([]string(nil), codes...), multi: true}
}

// ParseSpec converts a decoded config value (a string, or a list of strings
// from YAML or TOML) into a Spec. nil and "" mean the default language.
func ParseSpec(v any) (Spec, error) {
	switch t := v.(type) {
	case nil:
		return Single(DefaultLanguage), nil
	case string:
		code := strings.TrimSpace(t)
		if code == "" {
			return Single(DefaultLanguage), nil
		}
		return Single(code), nil
	case Spec:
		return t, nil
	case []string:
		return parseList(t)
	case []any:
		codes := make([]string, 0, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return Spec{}, serrors.ConfigError(
					fmt.Sprintf("search.language[%d] must be a string, got %T", i, item), nil)
			}
			codes = append(codes, s)
		}
		return parseList(codes)
	default:
		return Spec{}, serrors.ConfigError(
			fmt.Sprintf("search.language must be a string or a list of strings, got %T", v), nil)
	}
}

func parseList(codes []string) (Spec, error) {
	if len(codes) == 0 {
		return Spec{}, serrors.ConfigError("search.language list must not be empty", nil)
	}
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			return Spec{}, serrors.ConfigError("search.language list contains an empty code", nil)
		}
		out = append(out, c)
	}
	return Multi(out...), nil
}

// Normalize collapses trivial multi-language specs: a one-element list
// becomes that single code, and a list holding nothing but the default code
// becomes the default. The zero Spec is the default language.
func (s Spec) Normalize() Spec {
	if len(s.codes) == 0 {
		return Single(DefaultLanguage)
	}
	if !s.multi {
		return s
	}
	if len(s.codes) == 1 {
		return Single(s.codes[0])
	}
	// ["en", "en"] needs no extensions, so it skips the multi-language
	// composition a list would otherwise get.
	if len(s.extensionCodes()) == 0 {
		return Single(DefaultLanguage)
	}
	return s
}

// IsDefault reports whether the normalized spec is the default language.
func (s Spec) IsDefault() bool {
	n := s.Normalize()
	return !n.multi && n.codes[0] == DefaultLanguage
}

// IsMulti reports whether the normalized spec builds a multi-language index.
func (s Spec) IsMulti() bool {
	return s.Normalize().multi
}

// Codes returns the configured codes in order.
func (s Spec) Codes() []string {
	return append([]string(nil), s.codes...)
}

// extensionCodes returns the codes that need a language extension, in order.
func (s Spec) extensionCodes() []string {
	out := make([]string, 0, len(s.codes))
	for _, c := range s.codes {
		if c != DefaultLanguage {
			out = append(out, c)
		}
	}
	return out
}

// String renders the spec the way it appears in config.
func (s Spec) String() string {
	if !s.multi && len(s.codes) == 1 {
		return s.codes[0]
	}
	if len(s.codes) == 0 {
		return DefaultLanguage
	}
	return "[" + strings.Join(s.codes, ", ") + "]"
}

// MarshalYAML writes a single code as a scalar and a list as a sequence.
func (s Spec) MarshalYAML() (any, error) {
	if !s.multi && len(s.codes) == 1 {
		return s.codes[0], nil
	}
	return s.Codes(), nil
}
