package lang

import (
	"fmt"
	"slices"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Page document field names.
const (
	FieldURL     = "url"
	FieldTitle   = "title"
	FieldContent = "content"
)

// PageDocument is one rendered page as stored in the index.
type PageDocument struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// IndexFactory builds search indexes configured for one language setup. It
// is nil for the default language, where the library's built-in behavior
// applies.
type IndexFactory interface {
	// Languages returns the codes the index is analyzed for, in first-seen
	// order. A repeated code appears once, since each code owns one
	// sub-field per page field.
	Languages() []string
	// Extensions returns the extension names registered for this factory.
	Extensions() []string
	// Mapping returns a fresh index mapping.
	Mapping() (*mapping.IndexMappingImpl, error)
	// New opens or creates an index at path. An empty path creates an
	// in-memory index.
	New(path string) (bleve.Index, error)
	// Fields returns the indexed field names that hold the given page field.
	Fields(name string) []string
	// Query builds a query for text across every language field of name.
	Query(name, text string) query.Query
}

type factory struct {
	multi      bool
	codes      []string
	analyzers  []string
	extensions []string
	custom     map[string]map[string]any
}

func (f *factory) Languages() []string {
	return slices.Clone(f.codes)
}

func (f *factory) Extensions() []string {
	return slices.Clone(f.extensions)
}

// Fields returns name itself for a single language and name_<code> per
// language for a multi-language factory.
func (f *factory) Fields(name string) []string {
	if name == FieldURL {
		return []string{FieldURL}
	}
	if !f.multi {
		return []string{name}
	}
	out := make([]string, 0, len(f.codes))
	for _, code := range f.codes {
		out = append(out, name+"_"+code)
	}
	return out
}

func (f *factory) Mapping() (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()

	names := make([]string, 0, len(f.custom))
	for name := range f.custom {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if err := im.AddCustomAnalyzer(name, f.custom[name]); err != nil {
			return nil, fmt.Errorf("failed to add analyzer %s: %w", name, err)
		}
	}

	doc := bleve.NewDocumentMapping()
	urlField := bleve.NewKeywordFieldMapping()
	doc.AddFieldMappingsAt(FieldURL, urlField)
	for _, name := range []string{FieldTitle, FieldContent} {
		doc.AddFieldMappingsAt(name, f.textFields(name)...)
	}

	im.DefaultMapping = doc
	im.DefaultAnalyzer = f.analyzers[0]
	return im, nil
}

func (f *factory) textFields(name string) []*mapping.FieldMapping {
	fields := f.Fields(name)
	out := make([]*mapping.FieldMapping, 0, len(fields))
	for i, field := range fields {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = f.analyzers[i]
		fm.Store = name == FieldTitle
		if f.multi {
			fm.Name = field
		}
		out = append(out, fm)
	}
	return out
}

func (f *factory) New(path string) (bleve.Index, error) {
	im, err := f.Mapping()
	if err != nil {
		return nil, err
	}
	return openIndex(path, im)
}

func (f *factory) Query(name, text string) query.Query {
	fields := f.Fields(name)
	queries := make([]query.Query, 0, len(fields))
	for i, field := range fields {
		q := bleve.NewMatchQuery(text)
		q.SetField(field)
		if name != FieldURL {
			q.Analyzer = f.analyzers[i]
		}
		queries = append(queries, q)
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewDisjunctionQuery(queries...)
}
