package catalog

import (
	"context"
	"fmt"

	"github.com/storeadmin/backend/internal/application/live"
	"github.com/storeadmin/backend/internal/domain/catalog"
	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	objects      shared.ObjectStorage
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo catalog.CategoryRepository, objects shared.ObjectStorage, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		objects:      objects,
		logger:       logger,
	}
}

// List returns all categories, or the ones named exactly like a search of at least three characters
func (s *CategoryService) List(ctx context.Context, filter ListFilter) ([]CategoryResponse, error) {
	var query catalog.CategoryFilter
	if term, ok := live.UseSearch(filter.Search); ok {
		query.Name = term
	}
	categories, err := s.categoryRepo.FindAll(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return out, nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, id string) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Create writes the category document, uploads its image and records the image path.
// The steps are not atomic: a failure after the document was written leaves
// it in place and is reported as a partial failure.
func (s *CategoryService) Create(ctx context.Context, req CategoryRequest, image *shared.FileUpload) (*CategoryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "category", "create")
	defer span.End()

	category, err := catalog.NewCategory(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if image == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Please select an image")
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	path := catalog.ImagePathFor(category.ID, image.Filename)
	if err := upload(ctx, s.objects, path, image); err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewPartialFailure(
			fmt.Sprintf("Category %s created but image upload failed", category.ID), err)
	}

	category.SetImagePath(path)
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewPartialFailure(
			fmt.Sprintf("Category %s created and image uploaded but the image path could not be saved", category.ID), err)
	}

	return s.GetByID(ctx, category.ID)
}

// Update changes the category fields. A new image replaces the previous one,
// which is removed after the document was patched.
func (s *CategoryService) Update(ctx context.Context, id string, req CategoryRequest, image *shared.FileUpload) (*CategoryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "category", "update", telemetry.SpanAttrCategoryID, id)
	defer span.End()

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := category.Update(req.Name, req.Description); err != nil {
		return nil, err
	}

	previous := category.ImagePath
	if image != nil {
		path := catalog.ImagePathFor(category.ID, image.Filename)
		if err := upload(ctx, s.objects, path, image); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		category.SetImagePath(path)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		telemetry.RecordError(span, err)
		if image != nil {
			return nil, shared.NewPartialFailure("New image uploaded but the category could not be saved", err)
		}
		return nil, err
	}

	if image != nil && previous != "" && previous != category.ImagePath {
		if err := s.objects.Delete(ctx, previous); err != nil {
			telemetry.RecordError(span, err)
			return nil, shared.NewPartialFailure("Category updated but the previous image could not be removed", err)
		}
	}

	return s.GetByID(ctx, id)
}

// Delete removes the category document and then its image
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "category", "delete", telemetry.SpanAttrCategoryID, id)
	defer span.End()

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if category.ImagePath == "" {
		return nil
	}
	if err := s.objects.Delete(ctx, category.ImagePath); err != nil {
		telemetry.RecordError(span, err)
		return shared.NewPartialFailure("Category deleted but its image could not be removed", err)
	}
	return nil
}

// LiveSource opens category list subscriptions
func (s *CategoryService) LiveSource() live.Source[CategoryResponse] {
	convert := func(fn func([]CategoryResponse, error)) func([]catalog.Category, error) {
		return func(categories []catalog.Category, err error) {
			if err != nil {
				fn(nil, err)
				return
			}
			out := make([]CategoryResponse, len(categories))
			for i := range categories {
				out[i] = ToCategoryResponse(&categories[i])
			}
			fn(out, nil)
		}
	}
	return live.Source[CategoryResponse]{
		Default: func(ctx context.Context, _ live.Filter, fn func([]CategoryResponse, error)) shared.Unsubscribe {
			return s.categoryRepo.WatchAll(ctx, catalog.CategoryFilter{}, convert(fn))
		},
		Search: func(ctx context.Context, text string, fn func([]CategoryResponse, error)) shared.Unsubscribe {
			return s.categoryRepo.WatchAll(ctx, catalog.CategoryFilter{Name: text}, convert(fn))
		},
	}
}
