package persistence

import (
	"context"
	"errors"

	"github.com/spf13/cast"
	"github.com/storeadmin/backend/internal/domain/catalog"
	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/infrastructure/docstore"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultResolveConcurrency bounds the parallel point reads of a list resolution
const DefaultResolveConcurrency = 8

// ReferenceResolver fills the derived fields of decoded entities with
// secondary point reads. Missing referenced documents and unresolvable
// image paths leave the field empty.
type ReferenceResolver struct {
	store   docstore.Store
	objects shared.ObjectStorage
	limit   int
	logger  *zap.Logger
}

// NewReferenceResolver creates a resolver
func NewReferenceResolver(store docstore.Store, objects shared.ObjectStorage, logger *zap.Logger) *ReferenceResolver {
	return &ReferenceResolver{
		store:   store,
		objects: objects,
		limit:   DefaultResolveConcurrency,
		logger:  logger,
	}
}

// ResolveProduct resolves category name, brand name and image URLs
func (r *ReferenceResolver) ResolveProduct(ctx context.Context, p *catalog.Product) error {
	name, err := r.fieldOf(ctx, CollectionCategories, p.CategoryID, "name")
	if err != nil {
		return err
	}
	p.CategoryName = name

	if name, err = r.fieldOf(ctx, CollectionBrands, p.BrandID, "name"); err != nil {
		return err
	}
	p.BrandName = name

	p.Images = make([]catalog.ProductImage, 0, len(p.ImagePaths))
	for _, path := range p.ImagePaths {
		p.Images = append(p.Images, catalog.ProductImage{Path: path, URL: r.url(ctx, path)})
	}
	return nil
}

// ResolveProducts resolves a list concurrently
func (r *ReferenceResolver) ResolveProducts(ctx context.Context, products []catalog.Product) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)
	for i := range products {
		p := &products[i]
		g.Go(func() error {
			return r.ResolveProduct(gctx, p)
		})
	}
	return g.Wait()
}

// ResolveCategory resolves the image URL
func (r *ReferenceResolver) ResolveCategory(ctx context.Context, c *catalog.Category) {
	c.ImageURL = ""
	if c.ImagePath != "" {
		c.ImageURL = r.url(ctx, c.ImagePath)
	}
}

// ResolveCategories resolves a list concurrently
func (r *ReferenceResolver) ResolveCategories(ctx context.Context, categories []catalog.Category) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)
	for i := range categories {
		c := &categories[i]
		g.Go(func() error {
			r.ResolveCategory(gctx, c)
			return nil
		})
	}
	_ = g.Wait()
}

func (r *ReferenceResolver) fieldOf(ctx context.Context, collection, id, field string) (string, error) {
	if id == "" {
		return "", nil
	}
	doc, err := r.store.Get(ctx, collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return cast.ToString(doc.Data[field]), nil
}

func (r *ReferenceResolver) url(ctx context.Context, path string) string {
	u, err := r.objects.URL(ctx, path)
	if err != nil {
		r.logger.Debug("Image not resolvable", zap.String("path", path), zap.Error(err))
		return ""
	}
	return u
}
