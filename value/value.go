// Package value implements the recursive document value model: a tagged
// sum type covering every shape a stored document field can take.
//
// Grounded on dynamodb/table's AttributeValue traversal
// (github.com/acksell/bezos) and dynamodb/ddbstore/type_cast.go's
// dispatch-by-type helpers; the wire encoding reuses
// github.com/aws/aws-sdk-go-v2/service/dynamodb/types.AttributeValue the
// same way the teacher and cloudxsgmbh-dynamodb-onetable-go both do.
package value

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the active variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindText
	KindTimestamp
	KindGuid
	KindArray
	KindObject
)

// ParseKind is the inverse of Kind.String, used to decode a persisted
// schema row back into live Field descriptors.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "Null":
		return KindNull, nil
	case "Bool":
		return KindBool, nil
	case "Number":
		return KindNumber, nil
	case "Text":
		return KindText, nil
	case "Timestamp":
		return KindTimestamp, nil
	case "Guid":
		return KindGuid, nil
	case "Array":
		return KindArray, nil
	case "Object":
		return KindObject, nil
	default:
		return KindNull, fmt.Errorf("unknown kind %q", s)
	}
}

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindNumber:
		return "Number"
	case KindText:
		return "Text"
	case KindTimestamp:
		return "Timestamp"
	case KindGuid:
		return "Guid"
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Ticks counts 100-nanosecond intervals since the Unix epoch, giving the
// value model the same sub-microsecond timestamp resolution described in
// spec.md §3 without pulling in a locale-sensitive time representation.
type Ticks int64

const ticksPerSecond = 10_000_000

// FromTime converts a UTC time.Time to Ticks, truncating to the nearest
// 100ns interval.
func FromTime(t time.Time) Ticks {
	secs := t.Unix()
	nanos := int64(t.Nanosecond())
	return Ticks(secs*ticksPerSecond + nanos/100)
}

// Time converts Ticks back to a UTC time.Time.
func (t Ticks) Time() time.Time {
	secs := int64(t) / ticksPerSecond
	rem := int64(t) % ticksPerSecond
	return time.Unix(secs, rem*100).UTC()
}

// Value is a recursive, tagged document value. The zero Value is Null.
type Value struct {
	kind   Kind
	b      bool
	n      float64
	s      string
	ts     Ticks
	g      uuid.UUID
	arr    []Value
	obj    *Object
}

// Object is an ordered string -> Value mapping. Ordering is preserved on
// insert the way Schema.fields preserves field-declaration order.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject returns an empty, ordered Object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Set inserts or replaces key, preserving first-insertion order.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value at key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// SortedKeys returns a copy of the keys sorted lexically, for callers that
// want deterministic iteration regardless of insertion order.
func (o *Object) SortedKeys() []string {
	out := o.Keys()
	sort.Strings(out)
	return out
}

func Null() Value                { return Value{kind: KindNull} }
func Bool(b bool) Value          { return Value{kind: KindBool, b: b} }
func Number(n float64) Value     { return Value{kind: KindNumber, n: n} }
func Text(s string) Value        { return Value{kind: KindText, s: s} }
func Timestamp(t Ticks) Value    { return Value{kind: KindTimestamp, ts: t} }
func TimestampFromTime(t time.Time) Value {
	return Timestamp(FromTime(t))
}
func Guid(id uuid.UUID) Value { return Value{kind: KindGuid, g: id} }
func NewGuid() Value          { return Guid(uuid.New()) }
func Array(vs []Value) Value  { return Value{kind: KindArray, arr: vs} }
func ObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, obj: o}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool)        { return v.b, v.kind == KindBool }
func (v Value) AsNumber() (float64, bool)   { return v.n, v.kind == KindNumber }
func (v Value) AsText() (string, bool)      { return v.s, v.kind == KindText }
func (v Value) AsTimestamp() (Ticks, bool)  { return v.ts, v.kind == KindTimestamp }
func (v Value) AsGuid() (uuid.UUID, bool)   { return v.g, v.kind == KindGuid }
func (v Value) AsArray() ([]Value, bool)    { return v.arr, v.kind == KindArray }
func (v Value) AsObject() (*Object, bool)   { return v.obj, v.kind == KindObject }

// String renders the canonical textual form of v, used both for
// _full_text generation (spec.md §4.2) and debugging. Numbers use an
// invariant, non-localized format (strconv via FormatFloat), matching the
// spec's open question about locale-independent number stringification.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.n)
	case KindText:
		return v.s
	case KindTimestamp:
		return v.ts.Time().Format("2006-01-02")
	case KindGuid:
		return v.g.String()
	case KindArray:
		parts := make([]string, 0, len(v.arr))
		for _, e := range v.arr {
			parts = append(parts, e.String())
		}
		return joinLines(parts)
	case KindObject:
		parts := make([]string, 0, v.obj.Len())
		for _, k := range v.obj.Keys() {
			val, _ := v.obj.Get(k)
			parts = append(parts, val.String())
		}
		return joinLines(parts)
	default:
		return ""
	}
}

func joinLines(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "\n"
		}
		out += p
	}
	return out
}

func formatNumber(n float64) string {
	return trimFloat(n)
}
