package value

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ToJSON converts v into a plain Go value (nil, bool, float64, string,
// []any, map[string]any) suitable for json.Marshal, the shape
// cmd/docustore's get/search commands print to stdout. Timestamp
// renders as RFC3339 and Guid as its canonical string form, since JSON
// has no native representation for either.
func (v Value) ToJSON() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindText:
		return v.s
	case KindTimestamp:
		return v.ts.Time().Format(time.RFC3339Nano)
	case KindGuid:
		return v.g.String()
	case KindArray:
		out := make([]any, 0, len(v.arr))
		for _, e := range v.arr {
			out = append(out, e.ToJSON())
		}
		return out
	case KindObject:
		out := make(map[string]any, v.obj.Len())
		for _, k := range v.obj.Keys() {
			val, _ := v.obj.Get(k)
			out[k] = val.ToJSON()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON lets a Value participate directly in json.Marshal. *Object
// values (such as a search Result's Items) are encoded by
// Object.MarshalJSON below.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.ToJSON())
}

// MarshalJSON encodes o the same way a raw JSON object literal would,
// preserving field order via Keys().
func (o *Object) MarshalJSON() ([]byte, error) {
	return json.Marshal(ObjectValue(o).ToJSON())
}

// DocumentFromJSON parses a JSON object (as produced by `docustore put`'s
// stdin input) into a document Object. JSON null/bool/string/array/object
// map onto the matching Value kind; JSON numbers become Number; a JSON
// string that parses as a UUID becomes Guid. Nothing in plain JSON
// produces a Timestamp, matching the CLI's role as a thin text interface
// rather than a full client SDK.
func DocumentFromJSON(data []byte) (*Object, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode json document: %w", err)
	}
	obj := NewObject()
	for k, v := range raw {
		obj.Set(k, fromJSONAny(v))
	}
	return obj, nil
}

func fromJSONAny(x any) Value {
	switch x := x.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(x)
	case float64:
		return Number(x)
	case string:
		if id, err := uuid.Parse(x); err == nil {
			return Guid(id)
		}
		return Text(x)
	case []any:
		out := make([]Value, 0, len(x))
		for _, e := range x {
			out = append(out, fromJSONAny(e))
		}
		return Array(out)
	case map[string]any:
		obj := NewObject()
		for k, v := range x {
			obj.Set(k, fromJSONAny(v))
		}
		return ObjectValue(obj)
	default:
		return Null()
	}
}
