package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acksell/docustore/schema"
	"github.com/acksell/docustore/value"
)

func TestToDocumentFromDocument_RoundTripsFields(t *testing.T) {
	s := schema.New("widgets")
	_, conflict := s.AddOrGetField("title", value.KindText, false, true)
	require.Nil(t, conflict)
	_, conflict = s.AddOrGetField("count", value.KindNumber, false, true)
	require.Nil(t, conflict)

	doc, err := s.ToDocument()
	require.NoError(t, err)

	restored, err := schema.FromDocument(doc)
	require.NoError(t, err)

	assert.Equal(t, s.Name, restored.Name)
	assert.Equal(t, s.ID(), restored.ID())
	assert.True(t, s.Equal(restored))

	f, ok := restored.Field("title")
	require.True(t, ok)
	assert.Equal(t, value.KindText, f.DataType())
}

func TestEqual_DetectsFieldAddition(t *testing.T) {
	s := schema.New("widgets")
	snapshot, err := s.ToDocument()
	require.NoError(t, err)
	before, err := schema.FromDocument(snapshot)
	require.NoError(t, err)

	_, conflict := s.AddOrGetField("title", value.KindText, false, true)
	require.Nil(t, conflict)

	assert.False(t, s.Equal(before))
}
