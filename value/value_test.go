package value_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acksell/docustore/value"
)

func roundTrip(t *testing.T, v value.Value) value.Value {
	t.Helper()
	av := value.ToAttributeValue(v)
	got, err := value.FromAttributeValue(av)
	require.NoError(t, err)
	return got
}

func TestRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	id := uuid.New()

	obj := value.NewObject()
	obj.Set("name", value.Text("Ada"))
	obj.Set("age", value.Number(36))

	cases := map[string]value.Value{
		"null":      value.Null(),
		"bool":      value.Bool(true),
		"number":    value.Number(3.14159),
		"negative":  value.Number(-42),
		"text":      value.Text("hello world"),
		"timestamp": value.TimestampFromTime(now),
		"guid":      value.Guid(id),
		"array":     value.Array([]value.Value{value.Text("a"), value.Number(1), value.Text("c")}),
		"object":    value.ObjectValue(obj),
	}

	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			got := roundTrip(t, v)
			assert.Equal(t, v.Kind(), got.Kind())

			switch v.Kind() {
			case value.KindTimestamp:
				wantTicks, _ := v.AsTimestamp()
				gotTicks, _ := got.AsTimestamp()
				assert.Equal(t, wantTicks, gotTicks)
			case value.KindGuid:
				wantID, _ := v.AsGuid()
				gotID, _ := got.AsGuid()
				assert.Equal(t, wantID, gotID)
			case value.KindObject:
				wantObj, _ := v.AsObject()
				gotObj, _ := got.AsObject()
				assert.Equal(t, wantObj.Keys(), gotObj.Keys())
			default:
				assert.Equal(t, v.String(), got.String())
			}
		})
	}
}

func TestObjectPreservesInsertionOrder(t *testing.T) {
	obj := value.NewObject()
	obj.Set("z", value.Number(1))
	obj.Set("a", value.Number(2))
	obj.Set("m", value.Number(3))

	assert.Equal(t, []string{"z", "a", "m"}, obj.Keys())
}

func TestNumericSortKeyPreservesOrdering(t *testing.T) {
	values := []float64{-100.5, -1, 0, 1, 100.5}
	var keys []int64
	for _, v := range values {
		keys = append(keys, value.NumericSortKey(v))
	}
	for i := 1; i < len(keys); i++ {
		assert.Less(t, keys[i-1], keys[i])
	}
}

func TestNumericSortKeyOrdersNegativesCorrectly(t *testing.T) {
	assert.Less(t, value.NumericSortKey(-100.5), value.NumericSortKey(-1))
	assert.Less(t, value.NumericSortKey(-1), value.NumericSortKey(0))
	assert.Less(t, value.NumericSortKey(-1), value.NumericSortKey(1))
	assert.Less(t, value.NumericSortKey(0), value.NumericSortKey(1))
}

func TestParseKind_RoundTripsWithString(t *testing.T) {
	kinds := []value.Kind{
		value.KindNull, value.KindBool, value.KindNumber, value.KindText,
		value.KindTimestamp, value.KindGuid, value.KindArray, value.KindObject,
	}
	for _, k := range kinds {
		parsed, err := value.ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
}

func TestParseKind_UnknownIsError(t *testing.T) {
	_, err := value.ParseKind("Frobnicate")
	assert.Error(t, err)
}

func TestDocumentFromJSON_DecodesScalarsAndNesting(t *testing.T) {
	doc, err := value.DocumentFromJSON([]byte(`{
		"title": "Hello",
		"count": 3,
		"active": true,
		"tags": ["a", "b"],
		"meta": {"k": "v"},
		"missing": null
	}`))
	require.NoError(t, err)

	title, _ := doc.Get("title")
	text, ok := title.AsText()
	require.True(t, ok)
	assert.Equal(t, "Hello", text)

	count, _ := doc.Get("count")
	n, ok := count.AsNumber()
	require.True(t, ok)
	assert.Equal(t, float64(3), n)

	missing, _ := doc.Get("missing")
	assert.True(t, missing.IsNull())
}

func TestObjectMarshalJSON_RoundTripsThroughToJSON(t *testing.T) {
	obj := value.NewObject()
	obj.Set("title", value.Text("Hello"))
	obj.Set("count", value.Number(2))

	data, err := obj.MarshalJSON()
	require.NoError(t, err)

	decoded, err := value.DocumentFromJSON(data)
	require.NoError(t, err)
	title, _ := decoded.Get("title")
	text, _ := title.AsText()
	assert.Equal(t, "Hello", text)
}
