package value

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// Tag bytes distinguish Value kinds that would otherwise collide when
// round-tripped through types.AttributeValue (e.g. Timestamp and Guid both
// naturally encode as AttributeValueMemberS/N). Stored as the first
// element of a 2-tuple list so a single AttributeValue carries both the
// kind and the payload.
const (
	tagTimestamp = "ts"
	tagGuid      = "guid"
)

// ToAttributeValue encodes v losslessly as a DynamoDB AttributeValue, the
// same wire representation dynamodb/ddbstore and
// cloudxsgmbh-dynamodb-onetable-go use for arbitrary documents.
func ToAttributeValue(v Value) types.AttributeValue {
	switch v.kind {
	case KindNull:
		return &types.AttributeValueMemberNULL{Value: true}
	case KindBool:
		return &types.AttributeValueMemberBOOL{Value: v.b}
	case KindNumber:
		return &types.AttributeValueMemberN{Value: trimFloat(v.n)}
	case KindText:
		return &types.AttributeValueMemberS{Value: v.s}
	case KindTimestamp:
		return &types.AttributeValueMemberL{Value: []types.AttributeValue{
			&types.AttributeValueMemberS{Value: tagTimestamp},
			&types.AttributeValueMemberN{Value: strconv.FormatInt(int64(v.ts), 10)},
		}}
	case KindGuid:
		return &types.AttributeValueMemberL{Value: []types.AttributeValue{
			&types.AttributeValueMemberS{Value: tagGuid},
			&types.AttributeValueMemberS{Value: v.g.String()},
		}}
	case KindArray:
		out := make([]types.AttributeValue, 0, len(v.arr))
		for _, e := range v.arr {
			out = append(out, ToAttributeValue(e))
		}
		return &types.AttributeValueMemberL{Value: out}
	case KindObject:
		m := make(map[string]types.AttributeValue, v.obj.Len())
		order := make([]types.AttributeValue, 0, v.obj.Len())
		for _, k := range v.obj.Keys() {
			val, _ := v.obj.Get(k)
			m[k] = ToAttributeValue(val)
			order = append(order, &types.AttributeValueMemberS{Value: k})
		}
		return &types.AttributeValueMemberL{Value: []types.AttributeValue{
			&types.AttributeValueMemberS{Value: "obj"},
			&types.AttributeValueMemberL{Value: order},
			&types.AttributeValueMemberM{Value: m},
		}}
	default:
		return &types.AttributeValueMemberNULL{Value: true}
	}
}

// FromAttributeValue decodes an AttributeValue produced by
// ToAttributeValue back into a Value. Round-tripping an arbitrary Value
// through ToAttributeValue then FromAttributeValue must be lossless
// (spec.md §8 invariant 2).
func FromAttributeValue(av types.AttributeValue) (Value, error) {
	switch av := av.(type) {
	case *types.AttributeValueMemberNULL:
		return Null(), nil
	case *types.AttributeValueMemberBOOL:
		return Bool(av.Value), nil
	case *types.AttributeValueMemberN:
		f, err := strconv.ParseFloat(av.Value, 64)
		if err != nil {
			return Value{}, fmt.Errorf("decode number %q: %w", av.Value, err)
		}
		return Number(f), nil
	case *types.AttributeValueMemberS:
		return Text(av.Value), nil
	case *types.AttributeValueMemberL:
		return fromList(av.Value)
	default:
		return Value{}, fmt.Errorf("unsupported attribute value %T", av)
	}
}

func fromList(list []types.AttributeValue) (Value, error) {
	if len(list) == 0 {
		return Array(nil), nil
	}
	if tag, ok := list[0].(*types.AttributeValueMemberS); ok {
		switch tag.Value {
		case tagTimestamp:
			n, ok := list[1].(*types.AttributeValueMemberN)
			if !ok {
				return Value{}, fmt.Errorf("timestamp payload is not numeric")
			}
			ticks, err := strconv.ParseInt(n.Value, 10, 64)
			if err != nil {
				return Value{}, fmt.Errorf("decode timestamp ticks: %w", err)
			}
			return Timestamp(Ticks(ticks)), nil
		case tagGuid:
			s, ok := list[1].(*types.AttributeValueMemberS)
			if !ok {
				return Value{}, fmt.Errorf("guid payload is not a string")
			}
			id, err := uuid.Parse(s.Value)
			if err != nil {
				return Value{}, fmt.Errorf("decode guid %q: %w", s.Value, err)
			}
			return Guid(id), nil
		case "obj":
			return fromObjectList(list)
		}
	}
	elems := make([]Value, 0, len(list))
	for _, av := range list {
		v, err := FromAttributeValue(av)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, v)
	}
	return Array(elems), nil
}

func fromObjectList(list []types.AttributeValue) (Value, error) {
	if len(list) != 3 {
		return Value{}, fmt.Errorf("malformed object encoding: want 3 elements, got %d", len(list))
	}
	orderList, ok := list[1].(*types.AttributeValueMemberL)
	if !ok {
		return Value{}, fmt.Errorf("object key order is not a list")
	}
	valueMap, ok := list[2].(*types.AttributeValueMemberM)
	if !ok {
		return Value{}, fmt.Errorf("object values are not a map")
	}
	obj := NewObject()
	for _, k := range orderList.Value {
		keyAV, ok := k.(*types.AttributeValueMemberS)
		if !ok {
			return Value{}, fmt.Errorf("object key is not a string")
		}
		raw, ok := valueMap.Value[keyAV.Value]
		if !ok {
			return Value{}, fmt.Errorf("object key %q missing from value map", keyAV.Value)
		}
		v, err := FromAttributeValue(raw)
		if err != nil {
			return Value{}, err
		}
		obj.Set(keyAV.Value, v)
	}
	return ObjectValue(obj), nil
}

// NewDocument returns a fresh Object representing a document with no
// fields set yet.
func NewDocument() *Object { return NewObject() }

// DocumentToAttributeValues encodes every field of doc to the
// map[string]types.AttributeValue shape kvstore.Document persists,
// preserving field order is not needed here since the map itself is
// unordered; Object.Keys() still governs projection order elsewhere.
func DocumentToAttributeValues(doc *Object) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, doc.Len())
	for _, k := range doc.Keys() {
		v, _ := doc.Get(k)
		out[k] = ToAttributeValue(v)
	}
	return out
}

// DocumentFromAttributeValues decodes a stored row back into an Object,
// the inverse of DocumentToAttributeValues.
func DocumentFromAttributeValues(item map[string]types.AttributeValue) (*Object, error) {
	obj := NewObject()
	for k, av := range item {
		v, err := FromAttributeValue(av)
		if err != nil {
			return nil, fmt.Errorf("decode field %q: %w", k, err)
		}
		obj.Set(k, v)
	}
	return obj, nil
}
