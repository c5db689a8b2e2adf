package ftsindex

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
)

// Searcher is a handle acquired for exactly one query and released
// afterward, per spec.md §4.5's acquire/release protocol. bleve's
// bleve.Index is itself safe for concurrent search, so Searcher exists to
// preserve that protocol's shape (and its RWMutex pairing with a future
// index-swapping Close) rather than to hold a point-in-time snapshot the
// way a Lucene SearcherManager does.
type Searcher struct {
	idx bleve.Index
}

// Acquire returns a Searcher handle. Callers must call Release exactly
// once, in a guaranteed-release scope, regardless of query outcome.
func (ix *Index) Acquire() *Searcher {
	ix.mu.RLock()
	return &Searcher{idx: ix.idx}
}

// Release returns the handle. Acquired searchers are never cached across
// queries (spec.md §4.5).
func (ix *Index) Release(*Searcher) {
	ix.mu.RUnlock()
}

// Hit is one resolved search result: the document id and its relevance
// score.
type Hit struct {
	ID    string
	Score float64
}

// Result is the raw outcome of Search, before Collection.search applies
// pagination (spec.md §4.6).
type Result struct {
	Hits      []Hit
	TotalHits uint64
}

// Search runs queryString (empty meaning match-all, per spec.md §4.6's
// default `*:*`) against the index, optionally sorted by sortField (the
// mangled `__<name>_sort__` field name; descending reverses the order),
// returning up to size hits starting at from.
func (s *Searcher) Search(queryString string, sortField string, descending bool, size, from int) (*Result, error) {
	var q bleve.Query
	if strings.TrimSpace(queryString) == "" {
		q = bleve.NewMatchAllQuery()
	} else {
		q = bleve.NewQueryStringQuery(queryString)
	}

	req := bleve.NewSearchRequestOptions(q, size, from, false)
	if sortField != "" {
		name := sortField
		if descending {
			name = "-" + sortField
		}
		req.SortBy([]string{name})
	}

	res, err := s.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	return &Result{Hits: hits, TotalHits: res.Total}, nil
}
