package docstore

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps every collection in process memory. All writes are
// serialized by a single lock, which makes counter updates trivially atomic.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
	counters    map[string]int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memoryCollection),
		counters:    make(map[string]int64),
	}
}

var (
	_ Store      = (*MemoryStore)(nil)
	_ Counters   = (*MemoryStore)(nil)
	_ Collection = (*memoryCollection)(nil)
)

// Collection returns the named collection, creating it on first use.
func (m *MemoryStore) Collection(name string) Collection {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[name]
	if !ok {
		c = &memoryCollection{
			store:       m,
			docs:        make(map[string]Document),
			subscribers: make(map[int]chan struct{}),
		}
		m.collections[name] = c
	}
	return c
}

// Counters returns the store itself.
func (m *MemoryStore) Counters() Counters { return m }

// UpdateCounter applies next under the store's write lock.
func (m *MemoryStore) UpdateCounter(ctx context.Context, name string, next func(int64, bool) int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current, exists := m.counters[name]
	value := next(current, exists)
	m.counters[name] = value
	return value, nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (m *MemoryStore) Close(context.Context) error { return nil }

type memoryCollection struct {
	store       *MemoryStore
	order       []string
	docs        map[string]Document
	subscribers map[int]chan struct{}
	nextSubID   int
}

func (c *memoryCollection) List(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return c.snapshot(), nil
}

func (c *memoryCollection) Get(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	doc, ok := c.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return clone(doc), nil
}

func (c *memoryCollection) Create(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	stored, err := normalizeDocument(doc)
	if err != nil {
		return "", err
	}
	id := stored.ID()
	if id == "" {
		id = uuid.NewString()
		stored[IDField] = id
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if _, exists := c.docs[id]; exists {
		return "", fmt.Errorf("%w: document %s already exists", ErrConflict, id)
	}
	c.docs[id] = stored
	c.order = append(c.order, id)
	c.notify()
	return id, nil
}

func (c *memoryCollection) Update(ctx context.Context, id string, patch Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	normalized, err := normalizeDocument(patch)
	if err != nil {
		return err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	doc, ok := c.docs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	updated := clone(doc)
	for k, v := range normalized {
		if k == IDField {
			continue
		}
		updated[k] = v
	}
	c.docs[id] = updated
	c.notify()
	return nil
}

func (c *memoryCollection) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if _, ok := c.docs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.notify()
	return nil
}

func (c *memoryCollection) FindByField(ctx context.Context, field string, value any) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want, err := normalize(value)
	if err != nil {
		return nil, fmt.Errorf("docstore: invalid filter value: %w", err)
	}
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	out := make([]Document, 0)
	for _, id := range c.order {
		doc := c.docs[id]
		if got, ok := doc[field]; ok && reflect.DeepEqual(got, want) {
			out = append(out, clone(doc))
		}
	}
	return out, nil
}

func (c *memoryCollection) ExistsByField(ctx context.Context, field string, value any) (bool, error) {
	docs, err := c.FindByField(ctx, field, value)
	if err != nil {
		return false, err
	}
	return len(docs) > 0, nil
}

// Subscribe runs onChange on its own goroutine. Bursts of writes may be
// coalesced into a single snapshot.
func (c *memoryCollection) Subscribe(ctx context.Context, onChange ChangeFunc) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	changed := make(chan struct{}, 1)
	changed <- struct{}{}

	c.store.mu.Lock()
	subID := c.nextSubID
	c.nextSubID++
	c.subscribers[subID] = changed
	c.store.mu.Unlock()

	go func() {
		defer func() {
			c.store.mu.Lock()
			delete(c.subscribers, subID)
			c.store.mu.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
				c.store.mu.RLock()
				docs := c.snapshot()
				c.store.mu.RUnlock()
				onChange(docs)
			}
		}
	}()

	return cancel, nil
}

// notify must be called with the write lock held.
func (c *memoryCollection) notify() {
	for _, ch := range c.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// snapshot must be called with at least the read lock held.
func (c *memoryCollection) snapshot() []Document {
	out := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, clone(c.docs[id]))
	}
	return out
}

func normalizeDocument(doc Document) (Document, error) {
	n, err := normalize(doc)
	if err != nil {
		return nil, fmt.Errorf("docstore: failed to encode document: %w", err)
	}
	out, ok := n.(map[string]any)
	if !ok {
		out = map[string]any{}
	}
	return Document(out), nil
}
