// Package kvstore implements the embedded KV storage engine spec.md §6
// treats as an external collaborator, backed by BadgerDB exactly the way
// dynamodb/ddbstore.Store is (github.com/acksell/bezos) — generalized
// from a DynamoDB-table-with-GSIs model down to the simple
// namespace-scoped byte-key store the spec actually needs (spec.md §5:
// "each collection has a logically separate namespace keyed by
// collection name").
package kvstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dgraph-io/badger/v4"
)

const namespaceSeparator byte = 0x00

// Document is the stored row shape: an AttributeValue-encoded document
// keyed by attribute name, the same representation
// dynamodb/ddbstore.Store persists.
type Document = map[string]types.AttributeValue

// Options configures the BadgerDB-backed engine, mirroring
// dynamodb/ddbstore.StoreOptions.
type Options struct {
	// Path is the on-disk directory. Empty means in-memory.
	Path string
	// InMemory forces in-memory mode even if Path is set.
	InMemory bool
	// Logger receives BadgerDB's internal log lines. Nil disables it.
	Logger badger.Logger
}

// Engine is the single shared KV engine a Database hands out namespaced
// views of to each Collection (spec.md §4.7, §5).
type Engine struct {
	db *badger.DB
}

// Open starts the shared KV engine over opts, creating the on-disk
// directory if needed (spec.md §4.7: "starts the shared KV engine over
// data/").
func Open(opts Options) (*Engine, error) {
	badgerOpts := badger.DefaultOptions(opts.Path)
	if opts.Path == "" || opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	badgerOpts = badgerOpts.WithLogger(opts.Logger)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return &Engine{db: db}, nil
}

// Close closes the underlying BadgerDB handle.
func (e *Engine) Close() error {
	return e.db.Close()
}

func encodeKey(namespace string, key []byte) []byte {
	buf := make([]byte, 0, len(namespace)+1+len(key))
	buf = append(buf, namespace...)
	buf = append(buf, namespaceSeparator)
	buf = append(buf, key...)
	return buf
}

// Insert persists value under (namespace, key), creating or overwriting
// the row. It corresponds to spec.md §6's insertAsync.
func (e *Engine) Insert(ctx context.Context, namespace string, key []byte, value Document) error {
	data, err := SerializeDocument(value)
	if err != nil {
		return fmt.Errorf("serialize document: %w", err)
	}
	return e.db.Update(func(txn *badger.Txn) error {
		return txn.Set(encodeKey(namespace, key), data)
	})
}

// Update replaces the row at (namespace, key) and reports whether a row
// existed to be replaced, corresponding to spec.md §6's
// updateAsync -> updatedCount.
func (e *Engine) Update(ctx context.Context, namespace string, key []byte, value Document) (bool, error) {
	data, err := SerializeDocument(value)
	if err != nil {
		return false, fmt.Errorf("serialize document: %w", err)
	}
	existed := false
	err = e.db.Update(func(txn *badger.Txn) error {
		encKey := encodeKey(namespace, key)
		_, getErr := txn.Get(encKey)
		switch {
		case getErr == nil:
			existed = true
		case getErr == badger.ErrKeyNotFound:
			existed = false
		default:
			return getErr
		}
		return txn.Set(encKey, data)
	})
	if err != nil {
		return false, err
	}
	return existed, nil
}

// Delete removes the row at (namespace, key) and reports whether a row
// was actually deleted, corresponding to spec.md §6's
// deleteAsync -> deletedCount.
func (e *Engine) Delete(ctx context.Context, namespace string, key []byte) (bool, error) {
	existed := false
	err := e.db.Update(func(txn *badger.Txn) error {
		encKey := encodeKey(namespace, key)
		_, getErr := txn.Get(encKey)
		switch {
		case getErr == nil:
			existed = true
		case getErr == badger.ErrKeyNotFound:
			return nil
		default:
			return getErr
		}
		return txn.Delete(encKey)
	})
	if err != nil {
		return false, err
	}
	return existed, nil
}

// Get retrieves the row at (namespace, key), corresponding to spec.md
// §6's getAsync -> kv | null.
func (e *Engine) Get(ctx context.Context, namespace string, key []byte) (Document, bool, error) {
	var doc Document
	found := false
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(encodeKey(namespace, key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			doc, err = DeserializeDocument(val)
			return err
		})
	})
	if err != nil {
		return nil, false, err
	}
	return doc, found, nil
}

// GetAll returns every row in namespace, corresponding to spec.md §6's
// getAllAsync -> sequence of kv.
func (e *Engine) GetAll(ctx context.Context, namespace string) ([]Document, error) {
	var docs []Document
	prefix := encodeKey(namespace, nil)
	err := e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.Valid(); it.Next() {
			if !bytes.HasPrefix(it.Item().Key(), prefix) {
				break
			}
			err := it.Item().Value(func(val []byte) error {
				doc, err := DeserializeDocument(val)
				if err != nil {
					return err
				}
				docs = append(docs, doc)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// DropNamespace deletes every row under namespace, used by
// collection.Drop (spec.md §4.4, §4.7).
func (e *Engine) DropNamespace(ctx context.Context, namespace string) error {
	prefix := encodeKey(namespace, nil)
	for {
		var keys [][]byte
		err := e.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = false
			it := txn.NewIterator(opts)
			defer it.Close()
			for it.Seek(prefix); it.Valid() && len(keys) < 1000; it.Next() {
				if !bytes.HasPrefix(it.Item().Key(), prefix) {
					break
				}
				keys = append(keys, it.Item().KeyCopy(nil))
			}
			return nil
		})
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			return nil
		}
		err = e.db.Update(func(txn *badger.Txn) error {
			for _, k := range keys {
				if err := txn.Delete(k); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
}
