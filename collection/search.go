package collection

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/acksell/docustore"
	"github.com/acksell/docustore/value"
)

const (
	defaultTopN         = 100_000
	defaultItemsPerPage = 10
	defaultPageNumber   = 1
)

// Criteria is spec.md §4.6's SearchCriteria, with the documented defaults
// applied by WithDefaults.
type Criteria struct {
	Query        string
	SortByField  string
	TopN         int
	ItemsPerPage int
	PageNumber   int
}

// WithDefaults returns a copy of c with spec.md §4.6's defaults applied:
// empty query -> "*:*" (handled by ftsindex.Searcher.Search treating ""
// as match-all), TopN 100000, ItemsPerPage 10, PageNumber 1.
func (c Criteria) WithDefaults() Criteria {
	if c.TopN <= 0 {
		c.TopN = defaultTopN
	}
	if c.ItemsPerPage <= 0 {
		c.ItemsPerPage = defaultItemsPerPage
	}
	if c.PageNumber <= 0 {
		c.PageNumber = defaultPageNumber
	}
	return c
}

// Result is spec.md §4.6's SearchResult.
type Result struct {
	Query         string
	SortByField   string
	TopN          int
	ItemsPerPage  int
	PageNumber    int
	HitCount      int
	TotalHitCount int
	PageCount     int
	Items         []*value.Object
}

// Search executes criteria against the collection's index, per spec.md
// §4.6's six-step algorithm: parse, build sort, acquire+execute,
// paginate, resolve against KV, release.
func (c *Collection) Search(ctx context.Context, criteria Criteria) (*Result, error) {
	if err := c.checkUsable(); err != nil {
		return nil, err
	}

	crit := criteria.WithDefaults()
	if crit.ItemsPerPage <= 0 || crit.PageNumber <= 0 || crit.TopN <= 0 {
		return nil, docustore.NewError(docustore.KindInvalidArgument, "paging parameters must be positive", nil)
	}

	sortField, descending := parseSortSpec(crit.SortByField)

	searcher := c.index.Acquire()
	defer c.index.Release(searcher)

	res, err := searcher.Search(crit.Query, sortField, descending, crit.TopN, 0)
	if err != nil {
		return nil, docustore.NewError(docustore.KindTransient, "execute search", err)
	}

	total := int(res.TotalHits)
	clippedTotal := total
	if clippedTotal > crit.TopN {
		clippedTotal = crit.TopN
	}

	start := (crit.PageNumber - 1) * crit.ItemsPerPage
	end := crit.PageNumber * crit.ItemsPerPage
	if end > clippedTotal {
		end = clippedTotal
	}
	if start > end {
		start = end
	}

	items := make([]*value.Object, 0, end-start)
	for i := start; i < end && i < len(res.Hits); i++ {
		id, err := uuid.Parse(res.Hits[i].ID)
		if err != nil {
			return nil, docustore.NewError(docustore.KindTransient, fmt.Sprintf("parse hit id %q", res.Hits[i].ID), err)
		}
		doc, err := c.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			items = append(items, doc)
		}
	}

	pageCount := int(math.Ceil(float64(clippedTotal) / float64(crit.ItemsPerPage)))

	return &Result{
		Query:         crit.Query,
		SortByField:   crit.SortByField,
		TopN:          crit.TopN,
		ItemsPerPage:  crit.ItemsPerPage,
		PageNumber:    crit.PageNumber,
		HitCount:      len(items),
		TotalHitCount: total,
		PageCount:     pageCount,
		Items:         items,
	}, nil
}

// parseSortSpec implements spec.md §4.6 step 2: strip an optional leading
// "-" (descending flag) and mangle the remaining name into the
// `__<name>_sort__` synthetic field. An empty spec means relevance order
// (no sort field at all).
func parseSortSpec(spec string) (field string, descending bool) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", false
	}
	if strings.HasPrefix(spec, "-") {
		descending = true
		spec = spec[1:]
	}
	return "__" + spec + "_sort__", descending
}
