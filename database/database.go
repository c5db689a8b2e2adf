// Package database implements spec.md §4.7's Database: the top-level
// entry point that multiplexes named collections over a shared KV
// engine and a shared data directory, and periodically persists each
// collection's live schema back to the reserved `__schema__` namespace.
//
// Grounded on dynamodb/cmd/ddb's "open a data directory, wire up the
// store, start a background maintenance loop" bootstrap
// (github.com/acksell/bezos), generalized from a single DynamoDB table
// handle into a name -> *collection.Collection registry.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/acksell/docustore"
	"github.com/acksell/docustore/analyzer"
	"github.com/acksell/docustore/collection"
	"github.com/acksell/docustore/ftsindex"
	"github.com/acksell/docustore/kvstore"
	"github.com/acksell/docustore/project"
	"github.com/acksell/docustore/schema"
	"github.com/acksell/docustore/value"
)

// schemaNamespace is the reserved KV namespace schema rows are stored
// under (spec.md §6 "Reserved identifiers").
const schemaNamespace = "__schema__"

// Options configures Open.
type Options struct {
	// DataDir is the root directory; "data/" and "data/index/" are
	// created under it if missing.
	DataDir string
	// SchemaPersistenceInterval is the period of the schema-persist
	// tick. Zero means 1 second (spec.md §4.7 default).
	SchemaPersistenceInterval time.Duration
	// Facets, if set, is used by every collection to build facet
	// fields at index time.
	Facets project.FacetBuilder
	// Log receives structured diagnostics. Nil uses slog.Default().
	Log *slog.Logger
}

// Database is the top-level handle: one shared KV engine, one index
// directory per collection, and a background schema-persist tick.
type Database struct {
	dataDir  string
	indexDir string
	kv       *kvstore.Engine
	facets   project.FacetBuilder
	log      *slog.Logger
	interval time.Duration

	registryMu  sync.Mutex
	collections map[string]*collection.Collection

	persistMu   sync.Mutex
	stopPersist chan struct{}
	persistDone chan struct{}
}

// Open opens (creating if necessary) the data directory described by
// opts, starts the shared KV engine, loads every persisted schema from
// the `__schema__` namespace, instantiates one Collection per schema,
// and starts the background schema-persist tick (spec.md §4.7).
func Open(opts Options) (*Database, error) {
	if opts.DataDir == "" {
		return nil, docustore.NewError(docustore.KindInvalidArgument, "data dir must not be blank", nil)
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	interval := opts.SchemaPersistenceInterval
	if interval <= 0 {
		interval = time.Second
	}

	dataDir := filepath.Join(opts.DataDir, "data")
	indexDir := filepath.Join(dataDir, "index")
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directories: %w", err)
	}

	kv, err := kvstore.Open(kvstore.Options{Path: dataDir})
	if err != nil {
		return nil, fmt.Errorf("open kv engine: %w", err)
	}

	db := &Database{
		dataDir:     dataDir,
		indexDir:    indexDir,
		kv:          kv,
		facets:      opts.Facets,
		log:         log,
		interval:    interval,
		collections: make(map[string]*collection.Collection),
		stopPersist: make(chan struct{}),
		persistDone: make(chan struct{}),
	}

	if err := db.loadPersistedSchemas(); err != nil {
		_ = kv.Close()
		return nil, err
	}

	go db.persistLoop()
	return db, nil
}

// loadPersistedSchemas reads every schema row from the `__schema__`
// namespace and instantiates a Collection for each.
func (db *Database) loadPersistedSchemas() error {
	rows, err := db.kv.GetAll(context.Background(), schemaNamespace)
	if err != nil {
		return fmt.Errorf("load persisted schemas: %w", err)
	}
	for _, row := range rows {
		doc, err := value.DocumentFromAttributeValues(row)
		if err != nil {
			db.log.Warn("skip unreadable schema row", "error", err)
			continue
		}
		sch, err := schema.FromDocument(doc)
		if err != nil {
			db.log.Warn("skip unreadable schema row", "error", err)
			continue
		}
		c, err := db.newCollection(sch.Name, sch)
		if err != nil {
			return err
		}
		db.collections[sch.Name] = c
	}
	return nil
}

// Collection returns the collection named name, creating it with a
// fresh default schema if it doesn't exist yet (spec.md §4.7 "Lookup-or-
// create under a coarse mutex").
func (db *Database) Collection(name string) (*collection.Collection, error) {
	if name == "" {
		return nil, docustore.NewError(docustore.KindInvalidArgument, "collection name must not be blank", nil)
	}

	db.registryMu.Lock()
	defer db.registryMu.Unlock()

	if c, ok := db.collections[name]; ok {
		return c, nil
	}

	c, err := db.newCollection(name, schema.New(name))
	if err != nil {
		return nil, err
	}
	db.collections[name] = c
	return c, nil
}

func (db *Database) newCollection(name string, sch *schema.Schema) (*collection.Collection, error) {
	sel := analyzer.New(sch)
	idx, err := ftsindex.Open(filepath.Join(db.indexDir, name), sel)
	if err != nil {
		return nil, fmt.Errorf("open index for collection %q: %w", name, err)
	}
	return collection.New(name, db.kv, idx, sch, sel, db.facets, db.log), nil
}

// Drop removes the collection from the registry, drops it, and deletes
// its persisted schema row (spec.md §4.7 "Drop"). Any step failing is
// reported but leaves the registry already updated.
func (db *Database) Drop(ctx context.Context, name string) error {
	db.registryMu.Lock()
	c, ok := db.collections[name]
	if ok {
		delete(db.collections, name)
	}
	db.registryMu.Unlock()

	if !ok {
		return docustore.NewError(docustore.KindNotFound, fmt.Sprintf("collection %q not found", name), nil)
	}

	var firstErr error
	if err := c.Drop(ctx); err != nil {
		firstErr = err
	}
	if _, err := db.kv.Delete(ctx, schemaNamespace, []byte(name)); err != nil && firstErr == nil {
		firstErr = docustore.NewError(docustore.KindTransient, "delete schema row", err)
	}
	return firstErr
}

// Close stops the schema-persist tick and closes the shared KV engine.
func (db *Database) Close() error {
	close(db.stopPersist)
	<-db.persistDone
	return db.kv.Close()
}

// persistLoop runs the schema-persist tick described by spec.md §4.7
// and §5: every interval, try-lock (skip the tick on contention rather
// than queue), snapshot each live collection's schema, and write it
// back — insert on first sight, update only if changed.
func (db *Database) persistLoop() {
	defer close(db.persistDone)
	ticker := time.NewTicker(db.interval)
	defer ticker.Stop()
	for {
		select {
		case <-db.stopPersist:
			return
		case <-ticker.C:
			db.tryPersistTick()
		}
	}
}

const tryLockTimeout = 500 * time.Millisecond
const tryLockPollInterval = 10 * time.Millisecond

// tryPersistTick implements spec.md §5's "acquires a try-lock with
// 500ms timeout; skipped ticks are not queued." sync.Mutex has no
// native timed TryLock, so this polls TryLock rather than spawning a
// goroutine that would otherwise outlive a timed-out attempt and
// deadlock every subsequent tick once it eventually acquired the lock.
func (db *Database) tryPersistTick() {
	deadline := time.Now().Add(tryLockTimeout)
	for {
		if db.persistMu.TryLock() {
			defer db.persistMu.Unlock()
			db.persistSchemas()
			return
		}
		if time.Now().After(deadline) {
			return
		}
		time.Sleep(tryLockPollInterval)
	}
}

func (db *Database) persistSchemas() {
	db.registryMu.Lock()
	collections := make([]*collection.Collection, 0, len(db.collections))
	for _, c := range db.collections {
		collections = append(collections, c)
	}
	db.registryMu.Unlock()

	ctx := context.Background()
	for _, c := range collections {
		if err := db.persistOne(ctx, c); err != nil {
			db.log.Warn("schema persist failed", "collection", c.Name, "error", err)
		}
	}
}

func (db *Database) persistOne(ctx context.Context, c *collection.Collection) error {
	sch := c.Schema()

	existingRow, found, err := db.kv.Get(ctx, schemaNamespace, []byte(sch.Name))
	if err != nil {
		return fmt.Errorf("read existing schema row: %w", err)
	}
	if found {
		existingDoc, err := value.DocumentFromAttributeValues(existingRow)
		if err != nil {
			return fmt.Errorf("decode existing schema row: %w", err)
		}
		existing, err := schema.FromDocument(existingDoc)
		if err != nil {
			return fmt.Errorf("parse existing schema row: %w", err)
		}
		if existing.Equal(sch) {
			return nil
		}
	}

	doc, err := sch.ToDocument()
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	item := value.DocumentToAttributeValues(doc)
	if _, err := db.kv.Update(ctx, schemaNamespace, []byte(sch.Name), item); err != nil {
		return fmt.Errorf("write schema row: %w", err)
	}
	return nil
}
