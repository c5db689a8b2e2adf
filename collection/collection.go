// Package collection implements spec.md §4.4's Collection: the binding
// of one schema, one KV namespace, and one index writer/searcher, with
// the insert/update/delete/get/search/drop operations and the
// isDropped/isDisposed lifecycle flags.
//
// Grounded on dynamodb/ddbstore.Store (github.com/acksell/bezos) for the
// "one struct owns the KV handle plus supporting state, guarded by a
// lifecycle flag" shape, generalized from a single DynamoDB table wrapper
// to a (KV namespace, schema, search index) triple.
package collection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/acksell/docustore"
	"github.com/acksell/docustore/analyzer"
	"github.com/acksell/docustore/ftsindex"
	"github.com/acksell/docustore/kvstore"
	"github.com/acksell/docustore/project"
	"github.com/acksell/docustore/schema"
	"github.com/acksell/docustore/value"
)

const fieldID = "_id"

// Collection binds one schema, one KV namespace, and one full-text index,
// per spec.md §4.4.
type Collection struct {
	Name string

	kv       *kvstore.Engine
	index    *ftsindex.Index
	schema   *schema.Schema
	analyzer *analyzer.Selector
	facets   project.FacetBuilder
	log      *slog.Logger

	stateMu    sync.RWMutex
	isDropped  bool
	isDisposed bool
}

// New constructs a Collection over an already-open KV engine and index,
// bound to sch. facets may be nil (no fields faceted).
func New(name string, kv *kvstore.Engine, index *ftsindex.Index, sch *schema.Schema, sel *analyzer.Selector, facets project.FacetBuilder, log *slog.Logger) *Collection {
	if log == nil {
		log = slog.Default()
	}
	return &Collection{
		Name:     name,
		kv:       kv,
		index:    index,
		schema:   sch,
		analyzer: sel,
		facets:   facets,
		log:      log.With("collection", name),
	}
}

// Schema returns the collection's live schema.
func (c *Collection) Schema() *schema.Schema { return c.schema }

func (c *Collection) checkUsable() error {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	if c.isDropped || c.isDisposed {
		return docustore.NewError(docustore.KindNotFound, fmt.Sprintf("collection %q has been dropped", c.Name), nil)
	}
	return nil
}

// Insert assigns _id if absent, stamps created/modified timestamps,
// persists to the KV store, projects against the schema, and indexes the
// result, per spec.md §4.4. It returns the document's id.
func (c *Collection) Insert(ctx context.Context, doc *value.Object) (uuid.UUID, error) {
	if err := c.checkUsable(); err != nil {
		return uuid.Nil, err
	}

	if _, ok := doc.Get(fieldID); !ok {
		doc.Set(fieldID, value.NewGuid())
	}
	now := time.Now().UTC()
	doc.Set("_createdTimestamp", value.TimestampFromTime(now))
	doc.Set("_modifiedTimestamp", value.TimestampFromTime(now))

	idVal, _ := doc.Get(fieldID)
	id, _ := idVal.AsGuid()

	if err := c.persist(ctx, id, doc); err != nil {
		return uuid.Nil, err
	}
	if err := c.indexDocument(id, doc); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Update requires _id, bumps _modifiedTimestamp, replaces the KV row, and
// re-indexes the document. Fails with NotFound if the document doesn't
// already exist in the KV store.
func (c *Collection) Update(ctx context.Context, doc *value.Object) error {
	if err := c.checkUsable(); err != nil {
		return err
	}

	idVal, ok := doc.Get(fieldID)
	if !ok {
		return docustore.NewError(docustore.KindMissingID, "update requires _id", nil)
	}
	id, _ := idVal.AsGuid()

	_, found, err := c.kv.Get(ctx, c.Name, idKey(id))
	if err != nil {
		return docustore.NewError(docustore.KindTransient, "check existing document", err)
	}
	if !found {
		return docustore.NewError(docustore.KindNotFound, fmt.Sprintf("document %s not found", id), nil)
	}

	doc.Set("_modifiedTimestamp", value.TimestampFromTime(time.Now().UTC()))
	if err := c.persist(ctx, id, doc); err != nil {
		return err
	}
	return c.indexDocument(id, doc)
}

// Delete removes the document from the KV store and the index. Fails with
// NotFound if the document isn't in the KV store; any index entry for id
// is removed either way.
func (c *Collection) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.checkUsable(); err != nil {
		return err
	}
	deleted, err := c.kv.Delete(ctx, c.Name, idKey(id))
	if err != nil {
		return docustore.NewError(docustore.KindTransient, "delete from kv store", err)
	}
	if err := c.index.Delete(canonicalID(id)); err != nil {
		return docustore.NewError(docustore.KindTransient, "delete from index", err)
	}
	if !deleted {
		return docustore.NewError(docustore.KindNotFound, fmt.Sprintf("document %s not found", id), nil)
	}
	return nil
}

// Get returns the document for id, or nil if it doesn't exist.
func (c *Collection) Get(ctx context.Context, id uuid.UUID) (*value.Object, error) {
	if err := c.checkUsable(); err != nil {
		return nil, err
	}
	item, found, err := c.kv.Get(ctx, c.Name, idKey(id))
	if err != nil {
		return nil, docustore.NewError(docustore.KindTransient, "get from kv store", err)
	}
	if !found {
		return nil, nil
	}
	doc, err := value.DocumentFromAttributeValues(item)
	if err != nil {
		return nil, docustore.NewError(docustore.KindTransient, "decode document", err)
	}
	return doc, nil
}

// Drop closes the index, deletes the KV namespace, and marks the
// collection dropped and disposed (spec.md §4.4).
func (c *Collection) Drop(ctx context.Context) error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.isDropped {
		return nil
	}
	c.isDropped = true

	var firstErr error
	if err := c.index.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close index: %w", err)
	}
	if err := c.kv.DropNamespace(ctx, c.Name); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("drop kv namespace: %w", err)
	}
	c.isDisposed = true
	if firstErr != nil {
		return docustore.NewError(docustore.KindTransient, "drop collection", firstErr)
	}
	return nil
}

func (c *Collection) persist(ctx context.Context, id uuid.UUID, doc *value.Object) error {
	item := value.DocumentToAttributeValues(doc)
	if _, err := c.kv.Update(ctx, c.Name, idKey(id), item); err != nil {
		return docustore.NewError(docustore.KindTransient, "persist document", err)
	}
	return nil
}

func (c *Collection) indexDocument(id uuid.UUID, doc *value.Object) error {
	fields, warnings, err := project.Project(doc, c.schema, c.facets)
	if err != nil {
		return docustore.NewError(docustore.KindTransient, "project document", err)
	}
	for _, w := range warnings {
		c.logWarning(id, w)
	}
	if err := c.index.Update(canonicalID(id), fields); err != nil {
		return docustore.NewError(docustore.KindTransient, "index document", err)
	}
	return nil
}

func (c *Collection) logWarning(id uuid.UUID, w project.Warning) {
	kind := docustore.KindSchemaConflict
	switch w.Kind {
	case project.WarningIllegalFieldName:
		kind = docustore.KindIllegalFieldName
	case project.WarningFacetBuildFailure:
		kind = docustore.KindFacetBuildFailure
	case project.WarningArrayElementSkipped:
		kind = docustore.KindSchemaConflict
	}
	c.log.Warn("projection warning",
		"kind", kind.String(),
		"doc_id", id.String(),
		"field", w.Field,
		"note", w.Note,
	)
}

func idKey(id uuid.UUID) []byte {
	return []byte(strings.ToLower(id.String()))
}

func canonicalID(id uuid.UUID) string {
	return strings.ToLower(id.String())
}
