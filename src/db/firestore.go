package db

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Client() *firestore.Client {
	return s.client
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string, dst any) error {
	if id == "" {
		return ErrNotFound
	}
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return mapError(err)
	}
	return snap.DataTo(dst)
}

func (s *FirestoreStore) Create(ctx context.Context, collection string, data any) (string, error) {
	ref := s.client.Collection(collection).NewDoc()
	if _, err := ref.Create(ctx, data); err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Merge(ctx context.Context, collection, id string, fields map[string]any) error {
	_, err := s.client.Collection(collection).Doc(id).Set(ctx, fields, firestore.MergeAll)
	return err
}

func (s *FirestoreStore) Update(ctx context.Context, collection, id string, updates []Update) error {
	if id == "" {
		return ErrNotFound
	}
	fu := make([]firestore.Update, 0, len(updates))
	for _, u := range updates {
		fu = append(fu, firestore.Update{Path: u.Path, Value: u.Value})
	}
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, fu)
	return mapError(err)
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx)
	return err
}

func (s *FirestoreStore) Find(ctx context.Context, collection string, q Query) ([]Document, error) {
	query := s.client.Collection(collection).Query
	for _, f := range q.Filters {
		query = query.Where(f.Field, "==", f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	iter := query.Documents(ctx)
	defer iter.Stop()
	snaps, err := iter.GetAll()
	if err != nil {
		log.Printf("[firestore] Error querying %s: %s\n", collection, err.Error())
		return nil, err
	}
	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, Document{ID: snap.Ref.ID, decode: snap.DataTo})
	}
	return docs, nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}
