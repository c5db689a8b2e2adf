package kvstore_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acksell/docustore/kvstore"
)

func newTestEngine(t *testing.T) *kvstore.Engine {
	t.Helper()
	e, err := kvstore.Open(kvstore.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestInsertGetRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	doc := kvstore.Document{
		"title": &types.AttributeValueMemberS{Value: "hello"},
		"count": &types.AttributeValueMemberN{Value: "3"},
	}
	require.NoError(t, e.Insert(ctx, "widgets", []byte("id-1"), doc))

	got, found, err := e.Get(ctx, "widgets", []byte("id-1"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, doc, got)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	e := newTestEngine(t)
	_, found, err := e.Get(context.Background(), "widgets", []byte("missing"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpdateReportsExistence(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	doc := kvstore.Document{"a": &types.AttributeValueMemberS{Value: "1"}}

	existed, err := e.Update(ctx, "widgets", []byte("id-1"), doc)
	require.NoError(t, err)
	assert.False(t, existed)

	existed, err = e.Update(ctx, "widgets", []byte("id-1"), doc)
	require.NoError(t, err)
	assert.True(t, existed)
}

func TestDeleteReportsExistence(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	doc := kvstore.Document{"a": &types.AttributeValueMemberS{Value: "1"}}
	require.NoError(t, e.Insert(ctx, "widgets", []byte("id-1"), doc))

	deleted, err := e.Delete(ctx, "widgets", []byte("id-1"))
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = e.Delete(ctx, "widgets", []byte("id-1"))
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestGetAllScopesToNamespace(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, e.Insert(ctx, "widgets", []byte("1"), kvstore.Document{"a": &types.AttributeValueMemberS{Value: "1"}}))
	require.NoError(t, e.Insert(ctx, "widgets", []byte("2"), kvstore.Document{"a": &types.AttributeValueMemberS{Value: "2"}}))
	require.NoError(t, e.Insert(ctx, "gadgets", []byte("1"), kvstore.Document{"a": &types.AttributeValueMemberS{Value: "other"}}))

	docs, err := e.GetAll(ctx, "widgets")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestDropNamespaceRemovesAllRows(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, e.Insert(ctx, "widgets", []byte{byte(i)}, kvstore.Document{"a": &types.AttributeValueMemberS{Value: "x"}}))
	}
	require.NoError(t, e.DropNamespace(ctx, "widgets"))

	docs, err := e.GetAll(ctx, "widgets")
	require.NoError(t, err)
	assert.Empty(t, docs)
}
