package persistence

import (
	"context"

	"github.com/storeadmin/backend/internal/domain/catalog"
	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/infrastructure/docstore"
	"go.uber.org/zap"
)

// DocCategoryRepository implements catalog.CategoryRepository on the document store
type DocCategoryRepository struct {
	store    docstore.Store
	resolver *ReferenceResolver
	logger   *zap.Logger
}

// NewDocCategoryRepository creates a category repository
func NewDocCategoryRepository(store docstore.Store, resolver *ReferenceResolver, logger *zap.Logger) *DocCategoryRepository {
	return &DocCategoryRepository{store: store, resolver: resolver, logger: logger}
}

func (r *DocCategoryRepository) FindByID(ctx context.Context, id string) (*catalog.Category, error) {
	c, err := getOne(ctx, r.store, CollectionCategories, id, "Category", decodeCategory)
	if err != nil {
		return nil, err
	}
	r.resolver.ResolveCategory(ctx, c)
	return c, nil
}

func (r *DocCategoryRepository) FindAll(ctx context.Context, filter catalog.CategoryFilter) ([]catalog.Category, error) {
	docs, err := r.store.Find(ctx, categoryQuery(filter))
	if err != nil {
		return nil, err
	}
	list := decodeAll(r.logger, CollectionCategories, docs, decodeCategory)
	r.resolver.ResolveCategories(ctx, list)
	return list, nil
}

func (r *DocCategoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	id, err := r.store.Create(ctx, CollectionCategories, encodeCategory(c))
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *DocCategoryRepository) Save(ctx context.Context, c *catalog.Category) error {
	return mapNotFound(r.store.Update(ctx, CollectionCategories, c.ID, encodeCategory(c)), "Category")
}

func (r *DocCategoryRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionCategories, id)
}

func (r *DocCategoryRepository) WatchAll(ctx context.Context, filter catalog.CategoryFilter, fn func([]catalog.Category, error)) shared.Unsubscribe {
	unsub := r.store.OnQuery(ctx, categoryQuery(filter), func(docs []docstore.Document, err error) {
		if err != nil {
			fn(nil, err)
			return
		}
		list := decodeAll(r.logger, CollectionCategories, docs, decodeCategory)
		r.resolver.ResolveCategories(ctx, list)
		fn(list, nil)
	})
	return shared.Unsubscribe(unsub)
}

func categoryQuery(filter catalog.CategoryFilter) docstore.Query {
	q := docstore.NewQuery(CollectionCategories)
	if filter.Name != "" {
		q = q.Where("name", docstore.OpEqual, filter.Name)
	}
	return q
}

// DocBrandRepository implements catalog.BrandRepository on the document store
type DocBrandRepository struct {
	store  docstore.Store
	logger *zap.Logger
}

// NewDocBrandRepository creates a brand repository
func NewDocBrandRepository(store docstore.Store, logger *zap.Logger) *DocBrandRepository {
	return &DocBrandRepository{store: store, logger: logger}
}

func (r *DocBrandRepository) FindByID(ctx context.Context, id string) (*catalog.Brand, error) {
	return getOne(ctx, r.store, CollectionBrands, id, "Brand", decodeBrand)
}

func (r *DocBrandRepository) FindAll(ctx context.Context, filter catalog.BrandFilter) ([]catalog.Brand, error) {
	docs, err := r.store.Find(ctx, brandQuery(filter))
	if err != nil {
		return nil, err
	}
	return decodeAll(r.logger, CollectionBrands, docs, decodeBrand), nil
}

func (r *DocBrandRepository) Create(ctx context.Context, b *catalog.Brand) error {
	id, err := r.store.Create(ctx, CollectionBrands, encodeBrand(b))
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

func (r *DocBrandRepository) Save(ctx context.Context, b *catalog.Brand) error {
	return mapNotFound(r.store.Update(ctx, CollectionBrands, b.ID, encodeBrand(b)), "Brand")
}

func (r *DocBrandRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionBrands, id)
}

func (r *DocBrandRepository) WatchAll(ctx context.Context, filter catalog.BrandFilter, fn func([]catalog.Brand, error)) shared.Unsubscribe {
	unsub := r.store.OnQuery(ctx, brandQuery(filter), func(docs []docstore.Document, err error) {
		if err != nil {
			fn(nil, err)
			return
		}
		fn(decodeAll(r.logger, CollectionBrands, docs, decodeBrand), nil)
	})
	return shared.Unsubscribe(unsub)
}

func brandQuery(filter catalog.BrandFilter) docstore.Query {
	q := docstore.NewQuery(CollectionBrands)
	if filter.Name != "" {
		q = q.Where("name", docstore.OpEqual, filter.Name)
	}
	return q
}

// DocProductRepository implements catalog.ProductRepository on the document store.
// Loaded products carry resolved category name, brand name and image URLs.
type DocProductRepository struct {
	store    docstore.Store
	resolver *ReferenceResolver
	logger   *zap.Logger
}

// NewDocProductRepository creates a product repository
func NewDocProductRepository(store docstore.Store, resolver *ReferenceResolver, logger *zap.Logger) *DocProductRepository {
	return &DocProductRepository{store: store, resolver: resolver, logger: logger}
}

func (r *DocProductRepository) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	p, err := getOne(ctx, r.store, CollectionProducts, id, "Product", decodeProduct)
	if err != nil {
		return nil, err
	}
	if err := r.resolver.ResolveProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *DocProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	docs, err := r.store.Find(ctx, productQuery(filter))
	if err != nil {
		return nil, err
	}
	list := decodeAll(r.logger, CollectionProducts, docs, decodeProduct)
	if err := r.resolver.ResolveProducts(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *DocProductRepository) Count(ctx context.Context) (int, error) {
	docs, err := r.store.Find(ctx, docstore.NewQuery(CollectionProducts))
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

func (r *DocProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	id, err := r.store.Create(ctx, CollectionProducts, encodeProduct(p))
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *DocProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	return mapNotFound(r.store.Update(ctx, CollectionProducts, p.ID, encodeProduct(p)), "Product")
}

func (r *DocProductRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionProducts, id)
}

func (r *DocProductRepository) WatchByID(ctx context.Context, id string, fn func(*catalog.Product, error)) shared.Unsubscribe {
	unsub := r.store.OnDocument(ctx, CollectionProducts, id, func(doc *docstore.Document, err error) {
		if err != nil || doc == nil {
			fn(nil, err)
			return
		}
		p, err := decodeProduct(doc.ID, doc.Data)
		if err == nil {
			err = r.resolver.ResolveProduct(ctx, p)
		}
		if err != nil {
			fn(nil, err)
			return
		}
		fn(p, nil)
	})
	return shared.Unsubscribe(unsub)
}

func (r *DocProductRepository) WatchAll(ctx context.Context, filter catalog.ProductFilter, fn func([]catalog.Product, error)) shared.Unsubscribe {
	unsub := r.store.OnQuery(ctx, productQuery(filter), func(docs []docstore.Document, err error) {
		if err != nil {
			fn(nil, err)
			return
		}
		list := decodeAll(r.logger, CollectionProducts, docs, decodeProduct)
		if err := r.resolver.ResolveProducts(ctx, list); err != nil {
			fn(nil, err)
			return
		}
		fn(list, nil)
	})
	return shared.Unsubscribe(unsub)
}

func productQuery(filter catalog.ProductFilter) docstore.Query {
	q := docstore.NewQuery(CollectionProducts)
	if filter.Name != "" {
		q = q.Where("name", docstore.OpEqual, filter.Name)
	}
	if filter.Limit > 0 {
		q = q.Take(filter.Limit)
	}
	return q
}
