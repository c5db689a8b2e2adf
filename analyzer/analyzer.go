// Package analyzer implements the per-field analyzer selector described
// in spec.md §4.3: a small, schema-driven cache deciding whether a field
// is analyzed with a tokenizing full-text analyzer or indexed verbatim.
//
// Grounded on schema.Field's RWMutex-guarded getters (this package never
// reaches into Field internals, only its exported accessors) and on the
// cache-on-read pattern used by dynamodb/ddbstore/type_cast.go's
// dispatch-by-type helpers (github.com/acksell/bezos).
package analyzer

import (
	"sync"

	bleveanalyzer "github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/acksell/docustore/schema"
	"github.com/acksell/docustore/value"
)

// Tokenizer and Verbatim are the two analyzer names this selector ever
// returns. They name the actual bleve-registered analyzers so callers can
// pass them straight into a mapping.FieldMapping.Analyzer.
const (
	Tokenizer = standard.Name
	Verbatim  = bleveanalyzer.Name
)

type cacheEntry struct {
	dataType    value.Kind
	isTokenized bool
	analyzer    string
}

// Selector chooses an analyzer name for a field, consulting sch and
// caching the decision per field name until the schema's knowledge of
// that field changes (spec.md §4.3).
type Selector struct {
	sch   *schema.Schema
	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// New returns a Selector backed by sch.
func New(sch *schema.Schema) *Selector {
	return &Selector{sch: sch, cache: make(map[string]cacheEntry)}
}

// Select returns the analyzer name for fieldName per spec.md §4.3:
//   - declared Text and tokenized -> Tokenizer
//   - declared (anything else, i.e. Bool/Number/Timestamp/Guid/Array/Object)
//     -> Verbatim
//   - unknown field name -> Tokenizer (the spec's default)
func (s *Selector) Select(fieldName string) string {
	f, ok := s.sch.Field(fieldName)
	if !ok {
		return Tokenizer
	}

	dataType := f.DataType()
	isTokenized := f.IsTokenized()

	s.mu.RLock()
	entry, cached := s.cache[fieldName]
	s.mu.RUnlock()
	if cached && entry.dataType == dataType && entry.isTokenized == isTokenized {
		return entry.analyzer
	}

	analyzerName := Verbatim
	if dataType == value.KindText && isTokenized {
		analyzerName = Tokenizer
	}

	s.mu.Lock()
	s.cache[fieldName] = cacheEntry{dataType: dataType, isTokenized: isTokenized, analyzer: analyzerName}
	s.mu.Unlock()

	return analyzerName
}
