package persistence

import (
	"context"
	"errors"

	"github.com/spf13/cast"
	"github.com/storeadmin/backend/internal/infrastructure/docstore"
)

// packageDocID is the single document holding the download link
const packageDocID = "package"

// DocPackageRepository implements report.PackageRepository as package/package{link}
type DocPackageRepository struct {
	store docstore.Store
}

// NewDocPackageRepository creates a package link repository
func NewDocPackageRepository(store docstore.Store) *DocPackageRepository {
	return &DocPackageRepository{store: store}
}

// Link returns the stored link, "" when none was published
func (r *DocPackageRepository) Link(ctx context.Context) (string, error) {
	doc, err := r.store.Get(ctx, CollectionPackage, packageDocID)
	if errors.Is(err, docstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return cast.ToString(doc.Data["link"]), nil
}

// SetLink overwrites the link document
func (r *DocPackageRepository) SetLink(ctx context.Context, link string) error {
	return r.store.Set(ctx, CollectionPackage, packageDocID, map[string]any{"link": link})
}
