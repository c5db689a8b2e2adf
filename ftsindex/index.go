// Package ftsindex implements the full-text engine interface spec.md §6
// describes in Lucene's vocabulary (writer, searcher manager, commit,
// maybeRefresh) over github.com/blevesearch/bleve/v2. See SPEC_FULL.md §6
// for why bleve is the one ungrounded dependency in this module: no
// example repo in the retrieved pack implements an inverted-index engine.
//
// A bleve.Index is consulted against its *mapping.IndexMapping on every
// Index() call rather than baking field types in at creation time, so
// this package grows the mapping additively as the projector discovers
// new field names — the same additive-growth discipline schema.Schema
// already applies to the live schema itself.
package ftsindex

import (
	"fmt"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/acksell/docustore/analyzer"
	"github.com/acksell/docustore/project"
)

const refreshInterval = 500 * time.Millisecond

// Index owns one bleve index directory, its field mapping, and the
// refresh ticker described in spec.md §4.5.
type Index struct {
	mu       sync.RWMutex
	idx      bleve.Index
	docMap   *mapping.DocumentMapping
	analyzer *analyzer.Selector

	fieldsMu     sync.Mutex
	mappedFields map[string]bool

	stopRefresh chan struct{}
	refreshDone chan struct{}
}

// Open creates or opens the bleve index at path (an empty path means
// in-memory, used by collections created ad hoc in tests), wires sel as
// the per-field analyzer selector consulted for every Search-kind text
// field, and starts the 500ms refresh-tick goroutine (spec.md §4.5, §5).
// The mapping's default field is set to "_full_text", the projector's
// composite field, so a bare-term query (spec.md §4.6 step 1) is parsed
// against it instead of bleve's empty "_all" field.
func Open(path string, sel *analyzer.Selector) (*Index, error) {
	indexMapping := bleve.NewIndexMapping()
	docMap := mapping.NewDocumentMapping()
	docMap.Dynamic = false
	indexMapping.DefaultMapping = docMap
	indexMapping.DefaultAnalyzer = analyzer.Verbatim
	indexMapping.DefaultField = "_full_text"

	var idx bleve.Index
	var err error
	if path == "" {
		idx, err = bleve.NewMemOnly(indexMapping)
	} else {
		idx, err = bleve.New(path, indexMapping)
		if err != nil {
			idx, err = bleve.Open(path)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open bleve index: %w", err)
	}

	ix := &Index{
		idx:          idx,
		docMap:       docMap,
		analyzer:     sel,
		mappedFields: make(map[string]bool),
		stopRefresh:  make(chan struct{}),
		refreshDone:  make(chan struct{}),
	}
	go ix.refreshLoop()
	return ix, nil
}

// refreshLoop invokes maybeRefresh every 500ms, per spec.md §4.5/§5.
// bleve's Search already observes every synchronous commit immediately,
// so maybeRefresh has nothing to do here; the goroutine is kept to
// preserve the lifecycle shape (a single owned timer thread tied to the
// Index's lifetime) described in spec.md §5, should a future backend swap
// need genuine manual-refresh semantics.
func (ix *Index) refreshLoop() {
	defer close(ix.refreshDone)
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ix.maybeRefresh()
		case <-ix.stopRefresh:
			return
		}
	}
}

func (ix *Index) maybeRefresh() {
	// No-op: see refreshLoop's doc comment.
}

// Close stops the refresh goroutine and closes the underlying bleve
// index.
func (ix *Index) Close() error {
	close(ix.stopRefresh)
	<-ix.refreshDone
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.idx.Close()
}

// ensureFieldMapping registers a *mapping.FieldMapping for f's name the
// first time that name is seen, per the value-kind/tokenization rules in
// spec.md §4.2/§4.3. Subsequent calls for an already-mapped name are
// no-ops: once a field's shape is mapped it cannot change, matching
// schema.Field's own "dataType never changes" invariant.
func (ix *Index) ensureFieldMapping(f project.IndexField) {
	ix.fieldsMu.Lock()
	defer ix.fieldsMu.Unlock()
	if ix.mappedFields[f.Name] {
		return
	}
	ix.mappedFields[f.Name] = true

	var fm *mapping.FieldMapping
	switch f.ValueKind {
	case project.VText:
		fm = mapping.NewTextFieldMapping()
		fm.Store = f.Stored
		fm.IncludeInAll = false
		if f.Kind == project.KindSearch {
			fm.Analyzer = ix.analyzer.Select(f.Name)
		} else {
			fm.Analyzer = analyzer.Verbatim
		}
	default: // VDouble, VLong
		fm = mapping.NewNumericFieldMapping()
		fm.Store = f.Stored
		fm.IncludeInAll = false
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.docMap.AddFieldMappingsAt(f.Name, fm)
}
