package persistence

import (
	"context"
	"errors"

	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/infrastructure/docstore"
	"go.uber.org/zap"
)

type decodeFunc[T any] func(id string, data map[string]any) (*T, error)

// decodeAll decodes a result set, skipping documents that do not decode
func decodeAll[T any](logger *zap.Logger, collection string, docs []docstore.Document, decode decodeFunc[T]) []T {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := decode(doc.ID, doc.Data)
		if err != nil {
			logger.Warn("Skipping undecodable document",
				zap.String("collection", collection),
				zap.String("id", doc.ID),
				zap.Error(err))
			continue
		}
		out = append(out, *v)
	}
	return out
}

// getOne reads and decodes one document; a missing document is a NOT_FOUND domain error
func getOne[T any](ctx context.Context, store docstore.Store, collection, id, entity string, decode decodeFunc[T]) (*T, error) {
	doc, err := store.Get(ctx, collection, id)
	if err != nil {
		return nil, mapNotFound(err, entity)
	}
	return decode(doc.ID, doc.Data)
}

func mapNotFound(err error, entity string) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return shared.WrapDomainError("NOT_FOUND", entity+" not found", err)
	}
	return err
}
