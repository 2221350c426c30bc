package catalog

import (
	"context"

	"github.com/storeadmin/backend/internal/domain/shared"
)

// CategoryFilter narrows a category listing. An empty filter lists everything.
type CategoryFilter struct {
	Name string
}

// CategoryRepository defines persistence for categories
type CategoryRepository interface {
	FindByID(ctx context.Context, id string) (*Category, error)
	FindAll(ctx context.Context, filter CategoryFilter) ([]Category, error)
	// Create writes a new document and assigns its id to the category
	Create(ctx context.Context, category *Category) error
	// Save patches the editable fields and image path
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id string) error
	WatchAll(ctx context.Context, filter CategoryFilter, fn func([]Category, error)) shared.Unsubscribe
}

// BrandFilter narrows a brand listing
type BrandFilter struct {
	Name string
}

// BrandRepository defines persistence for brands
type BrandRepository interface {
	FindByID(ctx context.Context, id string) (*Brand, error)
	FindAll(ctx context.Context, filter BrandFilter) ([]Brand, error)
	Create(ctx context.Context, brand *Brand) error
	Save(ctx context.Context, brand *Brand) error
	Delete(ctx context.Context, id string) error
	WatchAll(ctx context.Context, filter BrandFilter, fn func([]Brand, error)) shared.Unsubscribe
}

// ProductFilter narrows a product listing
type ProductFilter struct {
	Name  string
	Limit int
}

// ProductRepository defines persistence for products
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, product *Product) error
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error
	// WatchByID delivers the product on every change; a nil product means the document does not exist
	WatchByID(ctx context.Context, id string, fn func(*Product, error)) shared.Unsubscribe
	WatchAll(ctx context.Context, filter ProductFilter, fn func([]Product, error)) shared.Unsubscribe
}
