package schema_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acksell/docustore/schema"
	"github.com/acksell/docustore/value"
)

func TestReservedFieldsAreFirst(t *testing.T) {
	s := schema.New("widgets")
	fields := s.Fields()
	require.GreaterOrEqual(t, len(fields), 3)
	assert.Equal(t, "_id", fields[0].Name)
	assert.Equal(t, "_createdTimestamp", fields[1].Name)
	assert.Equal(t, "_modifiedTimestamp", fields[2].Name)
}

func TestAddOrGetField_AdoptsTypeFromNull(t *testing.T) {
	s := schema.New("widgets")
	f, conflict := s.AddOrGetField("count", value.KindNumber, false, true)
	require.Nil(t, conflict)
	assert.Equal(t, value.KindNumber, f.DataType())
	assert.True(t, f.IsSortable())
}

func TestAddOrGetField_SilentOnMatch(t *testing.T) {
	s := schema.New("widgets")
	_, conflict := s.AddOrGetField("count", value.KindNumber, false, true)
	require.Nil(t, conflict)
	_, conflict = s.AddOrGetField("count", value.KindNumber, false, true)
	assert.Nil(t, conflict)
}

func TestAddOrGetField_ConflictDoesNotChangeStoredType(t *testing.T) {
	s := schema.New("widgets")
	_, conflict := s.AddOrGetField("count", value.KindNumber, false, true)
	require.Nil(t, conflict)

	f, conflict := s.AddOrGetField("count", value.KindText, false, true)
	require.NotNil(t, conflict)
	assert.Equal(t, value.KindNumber, f.DataType())
}

func TestAddOrGetField_NullIncomingNeverConflicts(t *testing.T) {
	s := schema.New("widgets")
	_, conflict := s.AddOrGetField("count", value.KindNumber, false, true)
	require.Nil(t, conflict)
	_, conflict = s.AddOrGetField("count", value.KindNull, false, true)
	assert.Nil(t, conflict)
}

func TestAddOrGetArrayElementType(t *testing.T) {
	s := schema.New("widgets")
	_, _ = s.AddOrGetField("tags", value.KindArray, false, true)

	conflict := s.AddOrGetArrayElementType("tags", value.KindText)
	require.Nil(t, conflict)

	conflict = s.AddOrGetArrayElementType("tags", value.KindNumber)
	require.NotNil(t, conflict)

	f, _ := s.Field("tags")
	assert.Equal(t, value.KindText, f.ArrayElementDataType())
}

func TestChildSchemaIsStableAcrossCalls(t *testing.T) {
	s := schema.New("widgets")
	_, _ = s.AddOrGetField("author", value.KindObject, false, true)

	child1 := s.ChildSchema("author", "author")
	child2 := s.ChildSchema("author", "author")
	assert.Same(t, child1, child2)
}

func TestExportYAML(t *testing.T) {
	s := schema.New("widgets")
	_, _ = s.AddOrGetField("title", value.KindText, false, true)

	var buf bytes.Buffer
	require.NoError(t, s.ExportYAML(&buf))
	assert.Contains(t, buf.String(), "title")
}
