// Package docstore is the document database boundary. Collections hold
// schemaless documents addressed by collection path and document id;
// subcollections use slash-separated paths such as "users/<id>/favorites".
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a point read or patch targets a missing document
var ErrNotFound = errors.New("document not found")

// Document is one stored document
type Document struct {
	ID   string
	Data map[string]any
}

// Op is a comparison operator usable in a filter
type Op string

const (
	OpEqual        Op = "=="
	OpGreaterEqual Op = ">="
	OpGreater      Op = ">"
	OpLessEqual    Op = "<="
	OpLess         Op = "<"
)

// Filter is one field condition of a query
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Query selects documents of one collection
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// NewQuery starts a query over a collection
func NewQuery(collection string) Query {
	return Query{Collection: collection}
}

// Where adds a field condition
func (q Query) Where(field string, op Op, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: op, Value: value})
	return q
}

// Order sorts the result by a field
func (q Query) Order(field string, descending bool) Query {
	q.OrderBy = field
	q.Descending = descending
	return q
}

// Take limits the number of returned documents
func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}

// DocumentListener receives document snapshots. A nil document with a nil
// error means the document does not exist (yet or anymore).
type DocumentListener func(doc *Document, err error)

// QueryListener receives the full result set of a query on every change
type QueryListener func(docs []Document, err error)

// Unsubscribe stops a listener. It is safe to call more than once.
type Unsubscribe func()

// Store is a document database with live queries
type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Create writes a new document under a generated id and returns the id
	Create(ctx context.Context, collection string, data map[string]any) (string, error)
	// Set writes the document, replacing any previous content
	Set(ctx context.Context, collection, id string, data map[string]any) error
	// Update patches top-level fields of an existing document
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
	Find(ctx context.Context, q Query) ([]Document, error)
	// OnDocument delivers the current snapshot and every later change until
	// unsubscribed or ctx is done
	OnDocument(ctx context.Context, collection, id string, fn DocumentListener) Unsubscribe
	// OnQuery delivers the current result set and every later change until
	// unsubscribed or ctx is done
	OnQuery(ctx context.Context, q Query, fn QueryListener) Unsubscribe
	Close() error
}
