package docstore

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrClosed is returned by every operation after Close
var ErrClosed = errors.New("document store closed")

// MemoryStore is an in-process Store for development and tests. Listeners
// run on their own goroutines, coalesce pending snapshots (only the latest
// is delivered) and are never called while the store lock is held.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
	listeners   map[uint64]*listener
	nextID      uint64
	closed      bool
	logger      *zap.Logger
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		collections: make(map[string]map[string]map[string]any),
		listeners:   make(map[uint64]*listener),
		logger:      logger,
	}
}

// listener is one live subscription. snapshot is evaluated under the store
// read lock and returns the delivery to run outside of it.
type listener struct {
	collection string
	snapshot   func() func()

	mu      sync.Mutex
	pending func()
	signal  chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newListener(collection string, snapshot func() func()) *listener {
	return &listener{
		collection: collection,
		snapshot:   snapshot,
		signal:     make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

func (l *listener) push(deliver func()) {
	l.mu.Lock()
	l.pending = deliver
	l.mu.Unlock()
	select {
	case l.signal <- struct{}{}:
	default:
	}
}

func (l *listener) run(ctx context.Context) {
	for {
		select {
		case <-l.done:
			return
		case <-ctx.Done():
			l.stop()
			return
		case <-l.signal:
			l.mu.Lock()
			deliver := l.pending
			l.pending = nil
			l.mu.Unlock()
			if deliver == nil {
				continue
			}
			select {
			case <-l.done:
				return
			default:
			}
			deliver()
		}
	}
}

func (l *listener) stop() {
	l.once.Do(func() { close(l.done) })
}

// Get reads one document
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	data, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Data: normalizeData(data)}, nil
}

// Create writes a document under a generated id
func (s *MemoryStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.write(ctx, collection, func(docs map[string]map[string]any) error {
		docs[id] = normalizeData(data)
		return nil
	}); err != nil {
		return "", err
	}
	return id, nil
}

// Set writes a document, replacing previous content
func (s *MemoryStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	return s.write(ctx, collection, func(docs map[string]map[string]any) error {
		docs[id] = normalizeData(data)
		return nil
	})
}

// Update patches fields of an existing document
func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	return s.write(ctx, collection, func(docs map[string]map[string]any) error {
		doc, ok := docs[id]
		if !ok {
			return ErrNotFound
		}
		for k, v := range fields {
			doc[k] = normalize(v)
		}
		return nil
	})
}

// Delete removes a document
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	return s.write(ctx, collection, func(docs map[string]map[string]any) error {
		delete(docs, id)
		return nil
	})
}

// write applies a mutation and schedules a snapshot for every listener of the collection
func (s *MemoryStore) write(ctx context.Context, collection string, mutate func(map[string]map[string]any) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]map[string]any)
		s.collections[collection] = docs
	}
	if err := mutate(docs); err != nil {
		s.mu.Unlock()
		return err
	}

	deliveries := make([]func(), 0)
	targets := make([]*listener, 0)
	for _, l := range s.listeners {
		if l.collection == collection {
			deliveries = append(deliveries, l.snapshot())
			targets = append(targets, l)
		}
	}
	s.mu.Unlock()

	for i, l := range targets {
		l.push(deliveries[i])
	}
	return nil
}

// Find runs a query once
func (s *MemoryStore) Find(ctx context.Context, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.evaluate(q), nil
}

// evaluate runs a query against the current state. Callers hold the lock.
func (s *MemoryStore) evaluate(q Query) []Document {
	docs := make([]Document, 0)
	for id, data := range s.collections[q.Collection] {
		if !matchesAll(q.Filters, data) {
			continue
		}
		if q.OrderBy != "" {
			if _, ok := lookup(data, q.OrderBy); !ok {
				continue
			}
		}
		docs = append(docs, Document{ID: id, Data: normalizeData(data)})
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if q.OrderBy == "" {
			return docs[i].ID < docs[j].ID
		}
		a, _ := lookup(docs[i].Data, q.OrderBy)
		b, _ := lookup(docs[j].Data, q.OrderBy)
		cmp, ok := compareValues(a, b)
		if !ok || cmp == 0 {
			return docs[i].ID < docs[j].ID
		}
		if q.Descending {
			return cmp > 0
		}
		return cmp < 0
	})

	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs
}

func matchesAll(filters []Filter, data map[string]any) bool {
	for _, f := range filters {
		if !f.matches(data) {
			return false
		}
	}
	return true
}

// OnDocument subscribes to one document
func (s *MemoryStore) OnDocument(ctx context.Context, collection, id string, fn DocumentListener) Unsubscribe {
	return s.listen(ctx, collection, func() func() {
		data, ok := s.collections[collection][id]
		if !ok {
			return func() { fn(nil, nil) }
		}
		doc := &Document{ID: id, Data: normalizeData(data)}
		return func() { fn(doc, nil) }
	}, func(err error) { fn(nil, err) })
}

// OnQuery subscribes to a query result
func (s *MemoryStore) OnQuery(ctx context.Context, q Query, fn QueryListener) Unsubscribe {
	return s.listen(ctx, q.Collection, func() func() {
		docs := s.evaluate(q)
		return func() { fn(docs, nil) }
	}, func(err error) { fn(nil, err) })
}

func (s *MemoryStore) listen(ctx context.Context, collection string, snapshot func() func(), fail func(error)) Unsubscribe {
	l := newListener(collection, snapshot)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		l.push(func() { fail(ErrClosed) })
		go l.run(ctx)
		return l.stop
	}
	s.nextID++
	key := s.nextID
	s.listeners[key] = l
	initial := snapshot()
	s.mu.Unlock()

	l.push(initial)
	go func() {
		l.run(ctx)
		s.mu.Lock()
		delete(s.listeners, key)
		s.mu.Unlock()
	}()

	return l.stop
}

// Close stops every listener and rejects further calls
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	listeners := make([]*listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l.stop()
	}
	s.logger.Debug("Memory document store closed", zap.Int("listeners", len(listeners)))
	return nil
}
