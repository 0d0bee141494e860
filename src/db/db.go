package db

import (
	"context"
	"ddtours/src/types"
)

// ErrNotFound is returned when a document id does not resolve.
var ErrNotFound = types.ErrNotFound

type Filter struct {
	Field string
	Value any
}

type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

func Where(field string, value any) Query {
	return Query{Filters: []Filter{{Field: field, Value: value}}}
}

func (q Query) Newest(field string) Query {
	q.OrderBy = field
	q.Desc = true
	return q
}

func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}

type Update struct {
	Path  string
	Value any
}

type Document struct {
	ID     string
	decode func(dst any) error
}

func (d Document) DataTo(dst any) error {
	return d.decode(dst)
}

// Store is the document database used by every controller. Writes are single
// document operations; there are no transactions.
type Store interface {
	Get(ctx context.Context, collection, id string, dst any) error
	Create(ctx context.Context, collection string, data any) (string, error)
	Merge(ctx context.Context, collection, id string, fields map[string]any) error
	Update(ctx context.Context, collection, id string, updates []Update) error
	Delete(ctx context.Context, collection, id string) error
	Find(ctx context.Context, collection string, q Query) ([]Document, error)
}

type identifiable[T any] interface {
	*T
	SetID(id string)
}

// FindAll runs a query and decodes every document into T.
func FindAll[T any, PT identifiable[T]](ctx context.Context, s Store, collection string, q Query) ([]T, error) {
	docs, err := s.Find(ctx, collection, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := d.DataTo(&v); err != nil {
			return nil, err
		}
		PT(&v).SetID(d.ID)
		out = append(out, v)
	}
	return out, nil
}

// GetByID loads a single document and stamps its id.
func GetByID[T any, PT identifiable[T]](ctx context.Context, s Store, collection, id string) (*T, error) {
	var v T
	if err := s.Get(ctx, collection, id, &v); err != nil {
		return nil, err
	}
	PT(&v).SetID(id)
	return &v, nil
}
