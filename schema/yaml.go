package schema

import (
	"io"

	"gopkg.in/yaml.v3"
)

// exportField is the YAML-friendly projection of a *Field, the same
// split-struct approach dynamodb/ddbui/schema.go uses to keep the
// runtime types (with their mutexes) out of the serialized form.
type exportField struct {
	Name                 string       `yaml:"name"`
	DataType             string       `yaml:"dataType"`
	IsTokenized          bool         `yaml:"isTokenized,omitempty"`
	IsSortable           bool         `yaml:"isSortable,omitempty"`
	IsFacet              bool         `yaml:"isFacet,omitempty"`
	ArrayElementDataType string       `yaml:"arrayElementDataType,omitempty"`
	ObjectSchema         *exportSchema `yaml:"objectSchema,omitempty"`
}

type exportSchema struct {
	Name   string        `yaml:"name"`
	Fields []exportField `yaml:"fields"`
}

func toExportSchema(s *Schema) *exportSchema {
	out := &exportSchema{Name: s.Name}
	for _, f := range s.Fields() {
		ef := exportField{
			Name:        f.Name,
			DataType:    f.DataType().String(),
			IsTokenized: f.IsTokenized(),
			IsSortable:  f.IsSortable(),
			IsFacet:     f.IsFacet(),
		}
		if et := f.ArrayElementDataType(); et != 0 {
			ef.ArrayElementDataType = et.String()
		}
		if os := f.ObjectSchema(); os != nil {
			ef.ObjectSchema = toExportSchema(os)
		}
		out.Fields = append(out.Fields, ef)
	}
	return out
}

// ExportYAML writes a human-readable dump of the schema's current field
// descriptors to w. It is a read-only debugging view (spec.md §4.8
// supplement) — it has no effect on the live schema or its persistence
// tick.
func (s *Schema) ExportYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(toExportSchema(s))
}
