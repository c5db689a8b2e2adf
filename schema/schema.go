// Package schema implements the per-collection live schema registry
// described in spec.md §4.1: a concurrency-safe, additively-growing map
// from field path to field descriptor.
//
// Grounded on dynamodb/schema/schema.go's Table/Field shape
// (github.com/acksell/bezos), generalized from a static YAML-described
// table schema into a mutable, concurrent registry that the projector
// evolves at write time, and on the field-type-inference approach in
// other_examples/.../Skroby-mongopal__internal-schema-inference.go.go.
package schema

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/acksell/docustore/value"
)

// Field describes one field of a Schema. See spec.md §3 "Field
// descriptor".
type Field struct {
	Name string

	mu                   sync.RWMutex
	dataType             value.Kind
	isTokenized          bool
	isSortable           bool
	isFacet              bool
	arrayElementDataType value.Kind
	objectSchema         *Schema
}

// DataType returns the field's established data type, or value.KindNull
// if no non-null value has been observed yet.
func (f *Field) DataType() value.Kind {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dataType
}

// IsTokenized reports whether text in this field is analyzed with a
// tokenizing analyzer rather than indexed verbatim.
func (f *Field) IsTokenized() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.isTokenized
}

// IsSortable reports whether the field may carry a sort docvalue. Per
// spec.md §3, true only for top-level, non-array leaf fields.
func (f *Field) IsSortable() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.isSortable
}

// IsFacet reports the caller-declared facet flag.
func (f *Field) IsFacet() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.isFacet
}

// ArrayElementDataType returns the established element type for an Array
// field, or value.KindNull if not yet observed.
func (f *Field) ArrayElementDataType() value.Kind {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.arrayElementDataType
}

// ObjectSchema returns the nested schema for an Object field (or an
// Array-of-Object field), or nil if the field isn't object-shaped.
func (f *Field) ObjectSchema() *Schema {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.objectSchema
}

// SetFacet marks the field as a caller-declared facet.
func (f *Field) SetFacet(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.isFacet = v
}

// Schema is a collection's (or a nested object's) live, additively-growing
// field registry. All methods are safe for concurrent use: readers
// (analyzer selector, query parser) may call Field/Fields while the
// projector concurrently calls AddOrGetField from a different insert.
type Schema struct {
	Name string

	mu                sync.RWMutex
	id                uuid.UUID
	createdTimestamp  time.Time
	modifiedTimestamp time.Time
	order             []string
	fields            map[string]*Field
}

// New returns a fresh, empty Schema named name, with the three reserved
// metadata fields (spec.md §3 invariant 3) pre-registered so they are
// always the first fields of any schema.
func New(name string) *Schema {
	s := &Schema{
		Name:              name,
		id:                uuid.New(),
		createdTimestamp:  time.Now().UTC(),
		modifiedTimestamp: time.Now().UTC(),
		fields:            make(map[string]*Field),
	}
	s.reserveMetadataFields()
	return s
}

func (s *Schema) reserveMetadataFields() {
	s.addFieldLocked("_id", value.KindGuid)
	s.addFieldLocked("_createdTimestamp", value.KindTimestamp)
	s.addFieldLocked("_modifiedTimestamp", value.KindTimestamp)
}

// ID returns the schema's stable identity.
func (s *Schema) ID() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// SetID overrides the schema's identity, used when loading a persisted
// schema row back from the KV engine at Database open.
func (s *Schema) SetID(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
}

// CreatedTimestamp returns when the schema was first created.
func (s *Schema) CreatedTimestamp() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.createdTimestamp
}

// SetCreatedTimestamp overrides the created timestamp, used when loading
// a persisted schema row.
func (s *Schema) SetCreatedTimestamp(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createdTimestamp = t
}

// ModifiedTimestamp returns when a field was last added to the schema.
// Adopting a data type or array element type for an existing field, or
// creating a nested child schema, does not update it.
func (s *Schema) ModifiedTimestamp() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modifiedTimestamp
}

func (s *Schema) touch() {
	s.modifiedTimestamp = time.Now().UTC()
}

// SetModifiedTimestamp overrides the modified timestamp, used when
// loading a persisted schema row back from the KV engine.
func (s *Schema) SetModifiedTimestamp(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modifiedTimestamp = t
}

// Equal reports whether s and other have the same name and the same set
// of field descriptors (ignoring id and timestamps), used by the
// schema-persist tick to decide whether a save is a no-op (spec.md §4.7,
// §8 invariant 5).
func (s *Schema) Equal(other *Schema) bool {
	if other == nil {
		return false
	}
	return reflect.DeepEqual(toExportSchema(s), toExportSchema(other))
}

// Field looks up a field by its local (non-dotted) name.
func (s *Schema) Field(name string) (*Field, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fields[name]
	return f, ok
}

// Fields returns every field descriptor in declaration order, with _id
// first per spec.md §3 invariant 3.
func (s *Schema) Fields() []*Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Field, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.fields[name])
	}
	return out
}

func (s *Schema) addFieldLocked(name string, dataType value.Kind) *Field {
	f := &Field{Name: name, dataType: dataType, isTokenized: dataType == value.KindText}
	s.fields[name] = f
	s.order = append(s.order, name)
	return f
}

// Conflict describes why a field addition could not adopt the incoming
// type. The caller (the projector) skips indexing the offending value but
// the document as a whole still indexes.
type Conflict struct {
	Field        string
	Stored       value.Kind
	Incoming     value.Kind
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("field %q: stored type %s conflicts with incoming type %s", c.Field, c.Stored, c.Incoming)
}

// AddOrGetField implements spec.md §4.1's field-addition algorithm:
//   - Null stored type adopts the incoming type (setting isTokenized for
//     Text).
//   - A matching (or incoming-Null) type is accepted silently.
//   - A true conflict is reported via the returned *Conflict; the field
//     itself is left untouched (its previously-established type stands).
//
// isFacet is only applied the first time the field is created; later
// calls with a different value are ignored (facet-ness is a caller
// declaration, not inferred).
func (s *Schema) AddOrGetField(name string, incoming value.Kind, isFacet bool, topLevel bool) (*Field, *Conflict) {
	s.mu.Lock()
	f, ok := s.fields[name]
	if !ok {
		f = &Field{
			Name:        name,
			dataType:    value.KindNull,
			isSortable:  topLevel,
			isFacet:     isFacet,
		}
		s.fields[name] = f
		s.order = append(s.order, name)
		s.touch()
	}
	s.mu.Unlock()

	if incoming == value.KindNull {
		return f, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.dataType == value.KindNull {
		f.dataType = incoming
		f.isTokenized = incoming == value.KindText
		if incoming == value.KindArray || incoming == value.KindObject {
			f.isSortable = false
		}
		return f, nil
	}
	if f.dataType == incoming {
		return f, nil
	}
	return f, &Conflict{Field: name, Stored: f.dataType, Incoming: incoming}
}

// AddOrGetArrayElementType records the element type of an Array field on
// first sight (spec.md §3 invariant 2); later calls with a mismatched
// non-null type report a *Conflict and the element is skipped by the
// projector.
func (s *Schema) AddOrGetArrayElementType(name string, incoming value.Kind) *Conflict {
	f, ok := s.Field(name)
	if !ok {
		return &Conflict{Field: name, Stored: value.KindNull, Incoming: incoming}
	}
	if incoming == value.KindNull {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.arrayElementDataType == value.KindNull {
		f.arrayElementDataType = incoming
		return nil
	}
	if f.arrayElementDataType == incoming {
		return nil
	}
	return &Conflict{Field: name, Stored: f.arrayElementDataType, Incoming: incoming}
}

// ChildSchema returns the nested Schema for an Object (or array-of-Object)
// field, creating it on first use. dottedName is the fully-qualified
// (parent-prefixed) name given to the child schema itself; the child's
// fields are keyed by their local names.
func (s *Schema) ChildSchema(fieldName, dottedName string) *Schema {
	f, ok := s.Field(fieldName)
	if !ok {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objectSchema == nil {
		f.objectSchema = New(dottedName)
		f.objectSchema.order = nil
		f.objectSchema.fields = make(map[string]*Field)
	}
	return f.objectSchema
}
