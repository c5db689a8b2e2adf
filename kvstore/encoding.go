package kvstore

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// serializableAV is a gob-encodable representation of an
// types.AttributeValue, adapted directly from dynamodb/ddbstore's
// encoding.go (github.com/acksell/bezos): AttributeValue is an interface
// over unexported concrete types, so gob needs a concrete, tagged
// stand-in to round-trip it.
type serializableAV struct {
	Type  string
	Value any
}

func init() {
	gob.Register(map[string]serializableAV{})
	gob.Register([]serializableAV{})
}

// SerializeDocument encodes a document (already shaped as an
// AttributeValue map via value.ToAttributeValue on each field) to bytes
// for storage in the KV engine.
func SerializeDocument(item map[string]types.AttributeValue) ([]byte, error) {
	serializable := make(map[string]serializableAV, len(item))
	for k, v := range item {
		serializable[k] = toSerializable(v)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(serializable); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeDocument decodes bytes produced by SerializeDocument back
// into an AttributeValue map.
func DeserializeDocument(data []byte) (map[string]types.AttributeValue, error) {
	var serializable map[string]serializableAV
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&serializable); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	result := make(map[string]types.AttributeValue, len(serializable))
	for k, v := range serializable {
		result[k] = fromSerializable(v)
	}
	return result, nil
}

func toSerializable(av types.AttributeValue) serializableAV {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return serializableAV{Type: "S", Value: v.Value}
	case *types.AttributeValueMemberN:
		return serializableAV{Type: "N", Value: v.Value}
	case *types.AttributeValueMemberBOOL:
		return serializableAV{Type: "BOOL", Value: v.Value}
	case *types.AttributeValueMemberNULL:
		return serializableAV{Type: "NULL", Value: v.Value}
	case *types.AttributeValueMemberM:
		m := make(map[string]serializableAV, len(v.Value))
		for k, val := range v.Value {
			m[k] = toSerializable(val)
		}
		return serializableAV{Type: "M", Value: m}
	case *types.AttributeValueMemberL:
		l := make([]serializableAV, len(v.Value))
		for i, val := range v.Value {
			l[i] = toSerializable(val)
		}
		return serializableAV{Type: "L", Value: l}
	default:
		panic(fmt.Sprintf("unsupported attribute value type: %T", av))
	}
}

func fromSerializable(sav serializableAV) types.AttributeValue {
	switch sav.Type {
	case "S":
		return &types.AttributeValueMemberS{Value: sav.Value.(string)}
	case "N":
		return &types.AttributeValueMemberN{Value: sav.Value.(string)}
	case "BOOL":
		return &types.AttributeValueMemberBOOL{Value: sav.Value.(bool)}
	case "NULL":
		return &types.AttributeValueMemberNULL{Value: sav.Value.(bool)}
	case "M":
		m := make(map[string]types.AttributeValue, len(sav.Value.(map[string]serializableAV)))
		for k, v := range sav.Value.(map[string]serializableAV) {
			m[k] = fromSerializable(v)
		}
		return &types.AttributeValueMemberM{Value: m}
	case "L":
		raw := sav.Value.([]serializableAV)
		l := make([]types.AttributeValue, len(raw))
		for i, v := range raw {
			l[i] = fromSerializable(v)
		}
		return &types.AttributeValueMemberL{Value: l}
	default:
		panic(fmt.Sprintf("unsupported serializable type: %s", sav.Type))
	}
}
