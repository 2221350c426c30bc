package catalog

import (
	"context"
	"fmt"
	"mime"

	"github.com/shopspring/decimal"
	"github.com/storeadmin/backend/internal/domain/catalog"
	"github.com/storeadmin/backend/internal/domain/shared"
)

func upload(ctx context.Context, objects shared.ObjectStorage, key string, file *shared.FileUpload) error {
	contentType := file.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension("." + catalog.FileExtension(file.Filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := objects.Upload(ctx, key, file.Body, file.Size, contentType); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// deleteSequentially removes keys in order and stops at the first failure.
// It returns how many keys were removed.
func deleteSequentially(ctx context.Context, objects shared.ObjectStorage, keys []string) (int, error) {
	for i, key := range keys {
		if err := objects.Delete(ctx, key); err != nil {
			return i, fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return len(keys), nil
}

func parsePrice(value string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, shared.NewDomainError("INVALID_INPUT", "Price must be a number")
	}
	return price, nil
}
