package docstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/storeadmin/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements Store on Cloud Firestore
type FirestoreStore struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreStore creates a Firestore client for the configured project
func NewFirestoreStore(ctx context.Context, cfg *config.DocStoreConfig, logger *zap.Logger) (*FirestoreStore, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("docstore project_id must be provided for the firestore driver")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	logger.Info("Firestore document store initialized", zap.String("project_id", cfg.ProjectID))
	return &FirestoreStore{client: client, logger: logger}, nil
}

func mapError(err error) error {
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

func toDocument(snap *firestore.DocumentSnapshot) Document {
	return Document{ID: snap.Ref.ID, Data: snap.Data()}
}

// Get reads one document
func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	doc := toDocument(snap)
	return &doc, nil
}

// Create adds a document under a generated id
func (s *FirestoreStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("failed to create document in %s: %w", collection, err)
	}
	return ref.ID, nil
}

// Set writes a document, replacing previous content
func (s *FirestoreStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, data); err != nil {
		return fmt.Errorf("failed to set document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update patches top-level fields. Keys are literal field names, dots are not path separators.
func (s *FirestoreStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: v})
	}
	if _, err := s.client.Collection(collection).Doc(id).Update(ctx, updates); err != nil {
		return mapError(err)
	}
	return nil
}

// Delete removes a document
func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) buildQuery(q Query) firestore.Query {
	query := s.client.Collection(q.Collection).Query
	for _, f := range q.Filters {
		query = query.Where(f.Field, string(f.Op), f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Descending {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	return query
}

// Find runs a query once
func (s *FirestoreStore) Find(ctx context.Context, q Query) ([]Document, error) {
	snaps, err := s.buildQuery(q).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", q.Collection, err)
	}
	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, toDocument(snap))
	}
	return docs, nil
}

// stopped reports whether a snapshot iterator error is the result of cancellation
func stopped(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled
}

// OnDocument listens to one document
func (s *FirestoreStore) OnDocument(ctx context.Context, collection, id string, fn DocumentListener) Unsubscribe {
	ctx, cancel := context.WithCancel(ctx)
	it := s.client.Collection(collection).Doc(id).Snapshots(ctx)

	go func() {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if stopped(ctx, err) {
					return
				}
				s.logger.Warn("Document listener failed",
					zap.String("collection", collection),
					zap.String("id", id),
					zap.Error(err))
				fn(nil, err)
				return
			}
			if !snap.Exists() {
				fn(nil, nil)
				continue
			}
			doc := toDocument(snap)
			fn(&doc, nil)
		}
	}()

	return Unsubscribe(cancel)
}

// OnQuery listens to a query result
func (s *FirestoreStore) OnQuery(ctx context.Context, q Query, fn QueryListener) Unsubscribe {
	ctx, cancel := context.WithCancel(ctx)
	it := s.buildQuery(q).Snapshots(ctx)

	go func() {
		defer it.Stop()
		for {
			qs, err := it.Next()
			if err == nil {
				var snaps []*firestore.DocumentSnapshot
				snaps, err = qs.Documents.GetAll()
				if err == nil {
					docs := make([]Document, 0, len(snaps))
					for _, snap := range snaps {
						docs = append(docs, toDocument(snap))
					}
					fn(docs, nil)
					continue
				}
			}
			if stopped(ctx, err) {
				return
			}
			s.logger.Warn("Query listener failed", zap.String("collection", q.Collection), zap.Error(err))
			fn(nil, err)
			return
		}
	}()

	return Unsubscribe(cancel)
}

// Close closes the client connection
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
