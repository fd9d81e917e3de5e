package docstore

import (
	"context"
	"errors"
)

// IDField is the key under which every document carries its identifier.
const IDField = "id"

var (
	// ErrNotFound is returned when a document or counter does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when a counter changed between read and write
	// or when a document id is already taken.
	ErrConflict = errors.New("concurrent modification")
)

// Document is a JSON-shaped record. Feature adapters convert their typed
// structs with Encode and Decode at the boundary.
type Document map[string]any

// ID returns the document identifier, or "" when unset.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// ChangeFunc receives the full collection after every change.
type ChangeFunc func(docs []Document)

// Collection is a named set of documents.
type Collection interface {
	// List returns every document in insertion order.
	List(ctx context.Context) ([]Document, error)
	// Get returns the document with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (Document, error)
	// Create stores doc and returns its id. A random UUID is assigned when doc has no id.
	Create(ctx context.Context, doc Document) (string, error)
	// Update merges patch into the document with the given id.
	Update(ctx context.Context, id string, patch Document) error
	// Delete removes the document with the given id.
	Delete(ctx context.Context, id string) error
	// FindByField returns the documents whose top-level field equals value.
	FindByField(ctx context.Context, field string, value any) ([]Document, error)
	// ExistsByField reports whether any document has field equal to value.
	ExistsByField(ctx context.Context, field string, value any) (bool, error)
	// Subscribe calls onChange with the current snapshot and again after every
	// change until ctx is done or the returned function is called.
	Subscribe(ctx context.Context, onChange ChangeFunc) (unsubscribe func(), err error)
}

// Counters hands out values from named single-document counters.
type Counters interface {
	// UpdateCounter reads the counter, computes its successor with next and
	// writes it back atomically. It returns ErrConflict when another writer
	// updated the counter in between; callers are expected to retry.
	UpdateCounter(ctx context.Context, name string, next func(current int64, exists bool) int64) (int64, error)
}

// Store groups the collections and counters of one database.
type Store interface {
	Collection(name string) Collection
	Counters() Counters
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
