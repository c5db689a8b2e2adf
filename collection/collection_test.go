package collection_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acksell/docustore/analyzer"
	"github.com/acksell/docustore/collection"
	"github.com/acksell/docustore/ftsindex"
	"github.com/acksell/docustore/kvstore"
	"github.com/acksell/docustore/schema"
	"github.com/acksell/docustore/value"
)

func newTestCollection(t *testing.T, name string) *collection.Collection {
	t.Helper()
	kv, err := kvstore.Open(kvstore.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	sch := schema.New(name)
	sel := analyzer.New(sch)
	idx, err := ftsindex.Open("", sel)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	return collection.New(name, kv, idx, sch, sel, nil, nil)
}

func TestInsertAssignsIDAndIsRetrievable(t *testing.T) {
	c := newTestCollection(t, "widgets")
	ctx := context.Background()

	doc := value.NewDocument()
	doc.Set("title", value.Text("Hello"))
	doc.Set("count", value.Number(3))

	id, err := c.Insert(ctx, doc)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := c.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	title, ok := got.Get("title")
	require.True(t, ok)
	text, _ := title.AsText()
	require.Equal(t, "Hello", text)
}

func TestSearch_FindsInsertedDocumentByField(t *testing.T) {
	c := newTestCollection(t, "widgets")
	ctx := context.Background()

	doc := value.NewDocument()
	doc.Set("title", value.Text("Hello"))
	doc.Set("count", value.Number(3))
	id, err := c.Insert(ctx, doc)
	require.NoError(t, err)

	res, err := c.Search(ctx, collection.Criteria{Query: "title:Hello"})
	require.NoError(t, err)
	require.Equal(t, 1, res.HitCount)
	require.Equal(t, id.String(), mustGetID(t, res.Items[0]))
}

func TestUpdate_FailsNotFoundWhenMissing(t *testing.T) {
	c := newTestCollection(t, "widgets")
	ctx := context.Background()

	doc := value.NewDocument()
	doc.Set("_id", value.NewGuid())

	err := c.Update(ctx, doc)
	require.Error(t, err)
}

func TestDelete_RemovesDocument(t *testing.T) {
	c := newTestCollection(t, "widgets")
	ctx := context.Background()

	doc := value.NewDocument()
	doc.Set("title", value.Text("Hello"))
	id, err := c.Insert(ctx, doc)
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, id))

	got, err := c.Get(ctx, id)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPagination_ThirdPageOfTwentyFive(t *testing.T) {
	c := newTestCollection(t, "widgets")
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		doc := value.NewDocument()
		doc.Set("n", value.Number(float64(i)))
		_, err := c.Insert(ctx, doc)
		require.NoError(t, err)
	}

	res, err := c.Search(ctx, collection.Criteria{ItemsPerPage: 10, PageNumber: 3})
	require.NoError(t, err)
	require.Equal(t, 5, res.HitCount)
	require.Equal(t, 25, res.TotalHitCount)
	require.Equal(t, 3, res.PageCount)
}

func TestDrop_MakesCollectionUnusable(t *testing.T) {
	c := newTestCollection(t, "widgets")
	ctx := context.Background()
	require.NoError(t, c.Drop(ctx))

	doc := value.NewDocument()
	_, err := c.Insert(ctx, doc)
	require.Error(t, err)
}

func mustGetID(t *testing.T, doc *value.Object) string {
	t.Helper()
	v, ok := doc.Get("_id")
	require.True(t, ok)
	g, ok := v.AsGuid()
	require.True(t, ok)
	return g.String()
}
