package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/storeadmin/backend/internal/application/live"
	"github.com/storeadmin/backend/internal/domain/catalog"
	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/infrastructure/telemetry"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo catalog.ProductRepository
	objects     shared.ObjectStorage
	events      shared.EventPublisher
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	objects shared.ObjectStorage,
	events shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		objects:     objects,
		events:      events,
		logger:      logger,
	}
}

// List returns all products with resolved category and brand names, or the
// ones named exactly like a search of at least three characters
func (s *ProductService) List(ctx context.Context, filter ListFilter) ([]ProductResponse, error) {
	var query catalog.ProductFilter
	if term, ok := live.UseSearch(filter.Search); ok {
		query.Name = term
	}
	products, err := s.productRepo.FindAll(ctx, query)
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

// GetByID returns a product with its references resolved
func (s *ProductService) GetByID(ctx context.Context, id string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Create writes the product document, uploads every image under a path
// derived from the new id and then records the paths. A failure after the
// document was written is reported as a partial failure and leaves the
// document in place.
func (s *ProductService) Create(ctx context.Context, req ProductRequest, images []shared.FileUpload) (*ProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "create")
	defer span.End()

	fields, err := req.fields()
	if err != nil {
		return nil, err
	}
	product, err := catalog.NewProduct(fields)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Please select at least one image")
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	paths := make([]string, 0, len(images))
	for i := range images {
		path := catalog.ProductImagePath(product.ID, images[i].Filename)
		if err := upload(ctx, s.objects, path, &images[i]); err != nil {
			telemetry.RecordError(span, err)
			return nil, shared.NewPartialFailure(
				fmt.Sprintf("Product %s created but image upload failed after %d of %d images", product.ID, len(paths), len(images)), err)
		}
		paths = append(paths, path)
	}

	product.SetImagePaths(paths)
	if err := s.productRepo.Save(ctx, product); err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewPartialFailure(
			fmt.Sprintf("Product %s created and images uploaded but the image paths could not be saved", product.ID), err)
	}

	return s.GetByID(ctx, product.ID)
}

// Update applies the edited fields and the pending image changes: new
// images are uploaded, the document is patched with the kept and new paths,
// and the images marked for removal are deleted last.
func (s *ProductService) Update(ctx context.Context, id string, req UpdateProductRequest, images []shared.FileUpload) (*ProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "update", telemetry.SpanAttrProductID, id)
	defer span.End()

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fields, err := req.fields()
	if err != nil {
		return nil, err
	}
	if err := product.Update(fields); err != nil {
		return nil, err
	}

	added := make([]string, len(images))
	for i := range images {
		added[i] = catalog.ProductImagePath(product.ID, images[i].Filename)
	}
	change, err := product.PlanImageChange(req.RemovedPaths, added)
	if err != nil {
		return nil, err
	}

	for i := range images {
		if err := upload(ctx, s.objects, added[i], &images[i]); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	product.SetImagePaths(change.Kept)
	if err := s.productRepo.Save(ctx, product); err != nil {
		telemetry.RecordError(span, err)
		if len(added) > 0 {
			return nil, shared.NewPartialFailure("New images uploaded but the product could not be saved", err)
		}
		return nil, err
	}

	if removed, err := deleteSequentially(ctx, s.objects, change.Removed); err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewPartialFailure(
			fmt.Sprintf("Product updated but only %d of %d removed images were deleted", removed, len(change.Removed)), err)
	}

	return s.GetByID(ctx, id)
}

// Delete removes the product document and then its images one by one,
// stopping at the first image that cannot be deleted.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "delete", telemetry.SpanAttrProductID, id)
	defer span.End()

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	product.MarkDeleted()
	s.publish(ctx, product)

	removed, err := deleteSequentially(ctx, s.objects, product.ImagePaths)
	if err != nil {
		telemetry.RecordError(span, err)
		return shared.NewPartialFailure(
			fmt.Sprintf("Product deleted but only %d of %d images were removed", removed, len(product.ImagePaths)), err)
	}
	return nil
}

func (s *ProductService) publish(ctx context.Context, product *catalog.Product) {
	events := product.PullDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish product events", zap.String("product_id", product.ID), zap.Error(err))
	}
}

// ExportHeaders are the column captions of the product workbook
var ExportHeaders = []string{"ID", "Name", "Category", "Brand", "Price", "Featured", "Images"}

// ExportWorkbook writes every product as one row of an xlsx sheet
func (s *ProductService) ExportWorkbook(ctx context.Context, w io.Writer) error {
	products, err := s.productRepo.FindAll(ctx, catalog.ProductFilter{})
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	header := sheet.AddRow()
	for _, h := range ExportHeaders {
		header.AddCell().SetString(h)
	}
	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.CategoryName)
		row.AddCell().SetString(p.BrandName)
		price, _ := p.Price.Float64()
		row.AddCell().SetFloatWithFormat(price, "0.00")
		row.AddCell().SetBool(p.Featured)
		row.AddCell().SetString(strings.Join(p.ImagePaths, ", "))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// LiveSource opens product list subscriptions
func (s *ProductService) LiveSource() live.Source[ProductResponse] {
	convert := func(fn func([]ProductResponse, error)) func([]catalog.Product, error) {
		return func(products []catalog.Product, err error) {
			if err != nil {
				fn(nil, err)
				return
			}
			fn(toProductResponses(products), nil)
		}
	}
	return live.Source[ProductResponse]{
		Default: func(ctx context.Context, _ live.Filter, fn func([]ProductResponse, error)) shared.Unsubscribe {
			return s.productRepo.WatchAll(ctx, catalog.ProductFilter{}, convert(fn))
		},
		Search: func(ctx context.Context, text string, fn func([]ProductResponse, error)) shared.Unsubscribe {
			return s.productRepo.WatchAll(ctx, catalog.ProductFilter{Name: text}, convert(fn))
		},
	}
}

func toProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}
