package ftsindex

import (
	"fmt"

	"github.com/acksell/docustore/project"
)

// Add indexes a freshly-projected document under id (the document's
// canonical lowercased _id string), registering any not-yet-seen field
// mappings first. Commit is implicit: bleve.Index.Index commits
// synchronously, satisfying spec.md §4.5's "every mutation commits
// synchronously before returning."
func (ix *Index) Add(id string, fields []project.IndexField) error {
	return ix.index(id, fields)
}

// Update replaces the indexed document at id, corresponding to spec.md
// §4.5's writer.updateDocument(term, doc). bleve has no separate update
// call: Index() with an existing id overwrites it in place.
func (ix *Index) Update(id string, fields []project.IndexField) error {
	return ix.index(id, fields)
}

func (ix *Index) index(id string, fields []project.IndexField) error {
	for _, f := range fields {
		ix.ensureFieldMapping(f)
	}
	doc := buildDocument(fields)

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if err := ix.idx.Index(id, doc); err != nil {
		return fmt.Errorf("index document %q: %w", id, err)
	}
	return nil
}

// Delete removes the document at id from the index, corresponding to
// spec.md §4.5's writer.deleteDocuments(term).
func (ix *Index) Delete(id string) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if err := ix.idx.Delete(id); err != nil {
		return fmt.Errorf("delete document %q: %w", id, err)
	}
	return nil
}

// buildDocument flattens projected index fields into the map[string]any
// shape bleve's mapping walks, grouping repeated field names (array
// elements projected under the same name) into a single multi-valued
// field the way bleve expects for arrays.
func buildDocument(fields []project.IndexField) map[string]any {
	order := make([]string, 0, len(fields))
	grouped := make(map[string][]project.IndexField, len(fields))
	for _, f := range fields {
		if _, ok := grouped[f.Name]; !ok {
			order = append(order, f.Name)
		}
		grouped[f.Name] = append(grouped[f.Name], f)
	}

	doc := make(map[string]any, len(order))
	for _, name := range order {
		group := grouped[name]
		if len(group) == 1 {
			doc[name] = fieldValue(group[0])
			continue
		}
		vals := make([]any, len(group))
		for i, f := range group {
			vals[i] = fieldValue(f)
		}
		doc[name] = vals
	}
	return doc
}

func fieldValue(f project.IndexField) any {
	switch f.ValueKind {
	case project.VText:
		return f.Text
	case project.VDouble:
		return f.Double
	case project.VLong:
		// bleve's numeric field type is always float64; see DESIGN.md for
		// the precision tradeoff this implies for the extreme tail of
		// raw-bit-pattern sort keys.
		return float64(f.Long)
	default:
		return nil
	}
}
