// Package project implements the document-to-index projector described
// in spec.md §4.2: a pure function from (document, schema) to a set of
// index-field entries, evolving the schema as a side effect.
//
// Grounded on dynamodb/ddbstore/store_put_item.go's document traversal
// (github.com/acksell/bezos) for the walk-and-encode shape, on
// dynamodb/ddbstore's encodeNumber for the raw-bit-pattern sort encoding
// (see value.NumericSortKey), and on
// other_examples/.../Skroby-mongopal__internal-schema-inference.go.go for
// the recursive object/array walk that drives schema evolution.
package project

import (
	"strings"

	"github.com/acksell/docustore/schema"
	"github.com/acksell/docustore/value"
)

// FieldKind identifies which of the three access paths (or the null
// marker) an IndexField serves.
type FieldKind int

const (
	KindSearch FieldKind = iota
	KindSort
	KindGroup
	KindNullMarker
)

// ValueKind identifies the Go-level payload type carried in an
// IndexField, letting ftsindex pick the matching bleve field type without
// re-deriving it from the schema.
type ValueKind int

const (
	VText ValueKind = iota
	VDouble
	VLong
)

// IndexField is one projected entry: a physical field name, which access
// path it serves, and its typed payload.
type IndexField struct {
	Name      string
	Kind      FieldKind
	ValueKind ValueKind
	Text      string
	Tokenized bool
	Double    float64
	Long      int64
	Stored    bool
}

// WarningKind classifies a locally-recovered condition the projector
// logs but does not fail on (spec.md §7).
type WarningKind int

const (
	WarningSchemaConflict WarningKind = iota
	WarningIllegalFieldName
	WarningFacetBuildFailure
	WarningArrayElementSkipped
)

// Warning reports a locally-recovered condition for the caller to log.
type Warning struct {
	Kind  WarningKind
	Field string
	Note  string
}

// ErrMissingID is returned when the document has no _id field, per
// spec.md §4.2's precondition.
type ErrMissingID struct{}

func (ErrMissingID) Error() string { return "document has no _id field" }

// FacetBuilder rebuilds the projected field set with hierarchical facet
// entries for fields the schema marks isFacet. A nil FacetBuilder skips
// faceting entirely.
type FacetBuilder interface {
	BuildFacets(fields []IndexField, facetFields map[string]value.Value) ([]IndexField, error)
}

const (
	fieldID        = "_id"
	fieldCreated   = "_createdTimestamp"
	fieldModified  = "_modifiedTimestamp"
	fieldFullText  = "_full_text"
)

var reservedMetadata = map[string]bool{
	fieldID:       true,
	fieldCreated:  true,
	fieldModified: true,
}

// Project walks doc against sch, evolving sch additively, and returns the
// flattened set of index-field entries with _id emitted first (spec.md
// §4.2).
func Project(doc *value.Object, sch *schema.Schema, facets FacetBuilder) ([]IndexField, []Warning, error) {
	if _, ok := doc.Get(fieldID); !ok {
		return nil, nil, ErrMissingID{}
	}

	var fields []IndexField
	var warnings []Warning
	facetCandidates := make(map[string]value.Value)
	var fullTextParts []string

	emit := func(ifs ...IndexField) {
		fields = append(fields, ifs...)
	}
	warn := func(w Warning) {
		warnings = append(warnings, w)
	}

	// _id first, per spec.md §4.2.
	idVal, _ := doc.Get(fieldID)
	idField, _ := sch.AddOrGetField(fieldID, idVal.Kind(), false, true)
	projectLeaf(idField, fieldID, idVal, true, emit, warn)

	for _, key := range doc.Keys() {
		if key == fieldID {
			continue
		}
		v, _ := doc.Get(key)

		if IsIllegalFieldName(key) {
			warn(Warning{Kind: WarningIllegalFieldName, Field: key, Note: "field name contains forbidden characters"})
			continue
		}

		projectField(sch, key, key, v, true, emit, warn, facetCandidates)

		if !reservedMetadata[key] {
			fullTextParts = append(fullTextParts, v.String())
		}
	}

	emit(IndexField{
		Name:      fieldFullText,
		Kind:      KindSearch,
		ValueKind: VText,
		Text:      strings.Join(fullTextParts, "\n"),
		Tokenized: true,
	})

	if len(facetCandidates) > 0 && facets != nil {
		rebuilt, err := facets.BuildFacets(fields, facetCandidates)
		if err != nil {
			warn(Warning{Kind: WarningFacetBuildFailure, Note: err.Error()})
		} else {
			fields = rebuilt
		}
	}

	return fields, warnings, nil
}

// projectField registers/evolves the schema field for name, tracks facet
// candidates, and then projects the leaf/array/object value.
func projectField(sch *schema.Schema, localName, dottedName string, v value.Value, topLevel bool,
	emit func(...IndexField), warn func(Warning), facetCandidates map[string]value.Value) {

	f, conflict := sch.AddOrGetField(localName, v.Kind(), false, topLevel)
	if conflict != nil {
		warn(Warning{Kind: WarningSchemaConflict, Field: dottedName, Note: conflict.Error()})
		return
	}

	if f.IsFacet() {
		facetCandidates[dottedName] = v
	}

	switch v.Kind() {
	case value.KindArray:
		projectArray(sch, f, localName, dottedName, v, warn, emit, facetCandidates)
	case value.KindObject:
		projectObject(sch, localName, dottedName, v, emit, warn, facetCandidates)
	default:
		projectLeaf(f, dottedName, v, f.IsSortable(), emit, warn)
	}
}

func projectObject(sch *schema.Schema, localName, dottedName string, v value.Value, emit func(...IndexField), warn func(Warning), facetCandidates map[string]value.Value) {
	obj, _ := v.AsObject()
	child := sch.ChildSchema(localName, dottedName)
	if child == nil {
		return
	}
	for _, key := range obj.Keys() {
		childVal, _ := obj.Get(key)
		if IsIllegalFieldName(key) {
			warn(Warning{Kind: WarningIllegalFieldName, Field: dottedName + "." + key, Note: "field name contains forbidden characters"})
			continue
		}
		projectField(child, key, dottedName+"."+key, childVal, false, emit, warn, facetCandidates)
	}
}

func projectArray(sch *schema.Schema, field *schema.Field, localName, dottedName string, v value.Value, warn func(Warning), emit func(...IndexField), facetCandidates map[string]value.Value) {
	elems, _ := v.AsArray()
	for _, elem := range elems {
		if elem.Kind() == value.KindArray {
			warn(Warning{Kind: WarningArrayElementSkipped, Field: dottedName, Note: "nested arrays are unsupported"})
			continue
		}
		if conflict := sch.AddOrGetArrayElementType(localName, elem.Kind()); conflict != nil {
			warn(Warning{Kind: WarningArrayElementSkipped, Field: dottedName, Note: conflict.Error()})
			continue
		}
		if elem.Kind() == value.KindObject {
			obj, _ := elem.AsObject()
			child := sch.ChildSchema(localName, dottedName)
			if child == nil {
				continue
			}
			for _, key := range obj.Keys() {
				childVal, _ := obj.Get(key)
				if IsIllegalFieldName(key) {
					warn(Warning{Kind: WarningIllegalFieldName, Field: dottedName + "." + key, Note: "field name contains forbidden characters"})
					continue
				}
				projectField(child, key, dottedName+"."+key, childVal, false, emit, warn, facetCandidates)
			}
			continue
		}
		// Array elements are never top-level leaf fields, so isSortable is
		// always false for them (spec.md §3).
		projectLeaf(field, dottedName, elem, false, emit, warn)
	}
}

// projectLeaf projects a single scalar value under name, emitting up to
// three IndexField entries per spec.md §4.2's table. field is the schema
// descriptor governing name (used only to read IsTokenized for Text
// values); it may be nil for contexts where no descriptor applies.
func projectLeaf(field *schema.Field, name string, v value.Value, isSortable bool, emit func(...IndexField), warn func(Warning)) {
	switch v.Kind() {
	case value.KindNull:
		emit(IndexField{Name: nullFieldName(name), Kind: KindNullMarker, ValueKind: VLong, Long: 1})

	case value.KindNumber:
		n, _ := v.AsNumber()
		emit(IndexField{Name: name, Kind: KindSearch, ValueKind: VDouble, Double: n})
		long := value.NumericSortKey(n)
		if isSortable {
			emit(IndexField{Name: sortFieldName(name), Kind: KindSort, ValueKind: VLong, Long: long})
		}
		emit(IndexField{Name: groupFieldName(name), Kind: KindGroup, ValueKind: VLong, Long: long})

	case value.KindBool:
		b, _ := v.AsBool()
		long := value.BoolSortKey(b)
		emit(IndexField{Name: name, Kind: KindSearch, ValueKind: VLong, Long: long})
		if isSortable {
			emit(IndexField{Name: sortFieldName(name), Kind: KindSort, ValueKind: VLong, Long: long})
		}
		emit(IndexField{Name: groupFieldName(name), Kind: KindGroup, ValueKind: VLong, Long: long})

	case value.KindText:
		s, _ := v.AsText()
		tokenized := field == nil || field.IsTokenized()
		emit(IndexField{Name: name, Kind: KindSearch, ValueKind: VText, Text: s, Tokenized: tokenized})
		trimmed := truncate(s)
		if isSortable {
			emit(IndexField{Name: sortFieldName(name), Kind: KindSort, ValueKind: VText, Text: strings.ToLower(trimmed)})
		}
		emit(IndexField{Name: groupFieldName(name), Kind: KindGroup, ValueKind: VText, Text: trimmed})

	case value.KindTimestamp:
		ts, _ := v.AsTimestamp()
		long := int64(ts)
		emit(IndexField{Name: name, Kind: KindSearch, ValueKind: VLong, Long: long})
		if isSortable {
			emit(IndexField{Name: sortFieldName(name), Kind: KindSort, ValueKind: VLong, Long: long})
		}
		emit(IndexField{Name: groupFieldName(name), Kind: KindGroup, ValueKind: VLong, Long: long})

	case value.KindGuid:
		g, _ := v.AsGuid()
		canonical := strings.ToLower(g.String())
		emit(IndexField{Name: name, Kind: KindSearch, ValueKind: VText, Text: canonical, Stored: name == fieldID})
		if isSortable {
			emit(IndexField{Name: sortFieldName(name), Kind: KindSort, ValueKind: VText, Text: canonical})
		}
		emit(IndexField{Name: groupFieldName(name), Kind: KindGroup, ValueKind: VText, Text: canonical})
	}
}
