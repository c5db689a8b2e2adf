package project_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acksell/docustore/project"
	"github.com/acksell/docustore/schema"
	"github.com/acksell/docustore/value"
)

func newDocWithID() *value.Object {
	doc := value.NewObject()
	doc.Set("_id", value.NewGuid())
	return doc
}

func findField(t *testing.T, fields []project.IndexField, name string, kind project.FieldKind) project.IndexField {
	t.Helper()
	for _, f := range fields {
		if f.Name == name && f.Kind == kind {
			return f
		}
	}
	t.Fatalf("no field %q with kind %v among %d fields", name, kind, len(fields))
	return project.IndexField{}
}

func TestProject_MissingIDFails(t *testing.T) {
	doc := value.NewObject()
	doc.Set("title", value.Text("hello"))
	sch := schema.New("widgets")

	_, _, err := project.Project(doc, sch, nil)
	require.Error(t, err)
	assert.IsType(t, project.ErrMissingID{}, err)
}

func TestProject_IDFirst(t *testing.T) {
	doc := newDocWithID()
	doc.Set("title", value.Text("hello"))
	sch := schema.New("widgets")

	fields, warnings, err := project.Project(doc, sch, nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.NotEmpty(t, fields)
	assert.Equal(t, "_id", fields[0].Name)
}

func TestProject_NumberEmitsSearchSortGroup(t *testing.T) {
	doc := newDocWithID()
	doc.Set("count", value.Number(42))
	sch := schema.New("widgets")

	fields, _, err := project.Project(doc, sch, nil)
	require.NoError(t, err)

	search := findField(t, fields, "count", project.KindSearch)
	assert.Equal(t, project.VDouble, search.ValueKind)
	assert.Equal(t, 42.0, search.Double)

	sort := findField(t, fields, "__count_sort__", project.KindSort)
	assert.Equal(t, project.VLong, sort.ValueKind)

	group := findField(t, fields, "__count_docvalues__", project.KindGroup)
	assert.Equal(t, sort.Long, group.Long)
}

func TestProject_TextVerbatimVsTokenized(t *testing.T) {
	doc := newDocWithID()
	doc.Set("title", value.Text("The Quick Fox"))
	sch := schema.New("widgets")

	fields, _, err := project.Project(doc, sch, nil)
	require.NoError(t, err)

	search := findField(t, fields, "title", project.KindSearch)
	assert.True(t, search.Tokenized)
	assert.Equal(t, "The Quick Fox", search.Text)

	sortF := findField(t, fields, "__title_sort__", project.KindSort)
	assert.Equal(t, "the quick fox", sortF.Text)
}

func TestProject_NullEmitsOnlyMarker(t *testing.T) {
	doc := newDocWithID()
	doc.Set("nickname", value.Null())
	sch := schema.New("widgets")

	fields, _, err := project.Project(doc, sch, nil)
	require.NoError(t, err)

	marker := findField(t, fields, "__nickname_null__", project.KindNullMarker)
	assert.Equal(t, int64(1), marker.Long)

	for _, f := range fields {
		assert.NotEqual(t, "nickname", f.Name, "a null value must not produce a plain search entry")
	}
}

func TestProject_IllegalFieldNameSkipped(t *testing.T) {
	doc := newDocWithID()
	doc.Set("bad*name", value.Text("x"))
	sch := schema.New("widgets")

	fields, warnings, err := project.Project(doc, sch, nil)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, project.WarningIllegalFieldName, warnings[0].Kind)
	for _, f := range fields {
		assert.NotContains(t, f.Name, "bad*name")
	}
}

func TestProject_SchemaConflictSkipsValueButKeepsDocument(t *testing.T) {
	sch := schema.New("widgets")
	_, conflict := sch.AddOrGetField("count", value.KindNumber, false, true)
	require.Nil(t, conflict)

	doc := newDocWithID()
	doc.Set("count", value.Text("not a number"))

	fields, warnings, err := project.Project(doc, sch, nil)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, project.WarningSchemaConflict, warnings[0].Kind)

	for _, f := range fields {
		assert.NotEqual(t, "count", f.Name)
	}
}

func TestProject_ArrayMismatchedElementSkipped(t *testing.T) {
	doc := newDocWithID()
	doc.Set("tags", value.Array([]value.Value{value.Text("a"), value.Number(1), value.Text("b")}))
	sch := schema.New("widgets")

	fields, warnings, err := project.Project(doc, sch, nil)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, project.WarningArrayElementSkipped, warnings[0].Kind)

	var searchHits int
	for _, f := range fields {
		if f.Name == "tags" && f.Kind == project.KindSearch {
			searchHits++
		}
	}
	assert.Equal(t, 2, searchHits)
}

func TestProject_NestedObjectFieldsUseDottedNames(t *testing.T) {
	doc := newDocWithID()
	author := value.NewObject()
	author.Set("name", value.Text("Ada"))
	doc.Set("author", value.ObjectValue(author))
	sch := schema.New("widgets")

	fields, warnings, err := project.Project(doc, sch, nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	search := findField(t, fields, "author.name", project.KindSearch)
	assert.Equal(t, "Ada", search.Text)
}

func TestProject_TextTruncatedAt256Runes(t *testing.T) {
	long := strings.Repeat("a", 300)
	doc := newDocWithID()
	doc.Set("bio", value.Text(long))
	sch := schema.New("widgets")

	fields, _, err := project.Project(doc, sch, nil)
	require.NoError(t, err)

	group := findField(t, fields, "__bio_docvalues__", project.KindGroup)
	assert.Len(t, []rune(group.Text), 256)

	search := findField(t, fields, "bio", project.KindSearch)
	assert.Len(t, []rune(search.Text), 300)
}

func TestProject_FullTextAggregatesFieldValues(t *testing.T) {
	doc := newDocWithID()
	doc.Set("title", value.Text("hello world"))
	doc.Set("count", value.Number(7))
	sch := schema.New("widgets")

	fields, _, err := project.Project(doc, sch, nil)
	require.NoError(t, err)

	ft := findField(t, fields, "_full_text", project.KindSearch)
	assert.Contains(t, ft.Text, "hello world")
	assert.Contains(t, ft.Text, "7")
}

func TestProject_GuidIDIsStoredOnlyOnSearch(t *testing.T) {
	doc := newDocWithID()
	sch := schema.New("widgets")

	fields, _, err := project.Project(doc, sch, nil)
	require.NoError(t, err)

	idSearch := findField(t, fields, "_id", project.KindSearch)
	assert.True(t, idSearch.Stored)

	for _, f := range fields {
		if f.Name != "_id" && f.Kind == project.KindSearch && strings.Contains(f.Text, idSearch.Text) {
			assert.False(t, f.Stored, "only the _id search entry should be marked stored")
		}
	}
}

type stubFacetBuilder struct {
	called bool
}

func (s *stubFacetBuilder) BuildFacets(fields []project.IndexField, facets map[string]value.Value) ([]project.IndexField, error) {
	s.called = true
	return fields, nil
}

func TestProject_FacetBuilderInvokedForFacetFields(t *testing.T) {
	sch := schema.New("widgets")
	f, conflict := sch.AddOrGetField("category", value.KindText, true, true)
	require.Nil(t, conflict)
	f.SetFacet(true)

	doc := newDocWithID()
	doc.Set("category", value.Text("electronics"))

	fb := &stubFacetBuilder{}
	_, _, err := project.Project(doc, sch, fb)
	require.NoError(t, err)
	assert.True(t, fb.called)
}
