package schema

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/acksell/docustore/value"
)

// ToDocument encodes s as a value.Object suitable for storage in the
// reserved `__schema__` KV namespace (spec.md §4.7): _id and the two
// timestamps as top-level reserved fields (matching every other
// document's shape), plus the full field tree folded into a single YAML
// blob reusing ExportYAML's encoding.
func (s *Schema) ToDocument() (*value.Object, error) {
	var buf bytes.Buffer
	if err := s.ExportYAML(&buf); err != nil {
		return nil, fmt.Errorf("export schema %q: %w", s.Name, err)
	}

	doc := value.NewDocument()
	doc.Set("_id", value.Guid(s.ID()))
	doc.Set("_createdTimestamp", value.TimestampFromTime(s.CreatedTimestamp()))
	doc.Set("_modifiedTimestamp", value.TimestampFromTime(s.ModifiedTimestamp()))
	doc.Set("name", value.Text(s.Name))
	doc.Set("definition", value.Text(buf.String()))
	return doc, nil
}

// FromDocument decodes a schema row persisted by ToDocument back into a
// live *Schema.
func FromDocument(doc *value.Object) (*Schema, error) {
	nameVal, ok := doc.Get("name")
	if !ok {
		return nil, fmt.Errorf("schema document missing %q", "name")
	}
	name, _ := nameVal.AsText()

	defVal, ok := doc.Get("definition")
	if !ok {
		return nil, fmt.Errorf("schema document missing %q", "definition")
	}
	definition, _ := defVal.AsText()

	var exported exportSchema
	if err := yaml.Unmarshal([]byte(definition), &exported); err != nil {
		return nil, fmt.Errorf("decode schema definition for %q: %w", name, err)
	}

	s, err := fromExportSchema(&exported)
	if err != nil {
		return nil, err
	}

	if idVal, ok := doc.Get("_id"); ok {
		if id, ok := idVal.AsGuid(); ok {
			s.SetID(id)
		}
	}
	if createdVal, ok := doc.Get("_createdTimestamp"); ok {
		if ticks, ok := createdVal.AsTimestamp(); ok {
			s.SetCreatedTimestamp(ticks.Time())
		}
	}
	if modifiedVal, ok := doc.Get("_modifiedTimestamp"); ok {
		if ticks, ok := modifiedVal.AsTimestamp(); ok {
			s.SetModifiedTimestamp(ticks.Time())
		}
	}
	return s, nil
}

// fromExportSchema rebuilds a live Schema from its YAML-friendly
// projection, the inverse of toExportSchema.
func fromExportSchema(es *exportSchema) (*Schema, error) {
	s := &Schema{
		Name:   es.Name,
		fields: make(map[string]*Field),
	}
	for _, ef := range es.Fields {
		dataType, err := value.ParseKind(ef.DataType)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", ef.Name, err)
		}
		f := &Field{
			Name:        ef.Name,
			dataType:    dataType,
			isTokenized: ef.IsTokenized,
			isSortable:  ef.IsSortable,
			isFacet:     ef.IsFacet,
		}
		if ef.ArrayElementDataType != "" {
			elemType, err := value.ParseKind(ef.ArrayElementDataType)
			if err != nil {
				return nil, fmt.Errorf("field %q array element type: %w", ef.Name, err)
			}
			f.arrayElementDataType = elemType
		}
		if ef.ObjectSchema != nil {
			child, err := fromExportSchema(ef.ObjectSchema)
			if err != nil {
				return nil, err
			}
			f.objectSchema = child
		}
		s.fields[ef.Name] = f
		s.order = append(s.order, ef.Name)
	}
	return s, nil
}
