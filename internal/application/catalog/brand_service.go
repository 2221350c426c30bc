package catalog

import (
	"context"

	"github.com/storeadmin/backend/internal/application/live"
	"github.com/storeadmin/backend/internal/domain/catalog"
	"github.com/storeadmin/backend/internal/domain/shared"
)

// BrandService handles brand-related business operations
type BrandService struct {
	brandRepo catalog.BrandRepository
}

// NewBrandService creates a new BrandService
func NewBrandService(brandRepo catalog.BrandRepository) *BrandService {
	return &BrandService{brandRepo: brandRepo}
}

func (s *BrandService) List(ctx context.Context, filter ListFilter) ([]BrandResponse, error) {
	var query catalog.BrandFilter
	if term, ok := live.UseSearch(filter.Search); ok {
		query.Name = term
	}
	brands, err := s.brandRepo.FindAll(ctx, query)
	if err != nil {
		return nil, err
	}
	return toBrandResponses(brands), nil
}

func (s *BrandService) GetByID(ctx context.Context, id string) (*BrandResponse, error) {
	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToBrandResponse(brand)
	return &resp, nil
}

func (s *BrandService) Create(ctx context.Context, req BrandRequest) (*BrandResponse, error) {
	brand, err := catalog.NewBrand(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.brandRepo.Create(ctx, brand); err != nil {
		return nil, err
	}
	resp := ToBrandResponse(brand)
	return &resp, nil
}

func (s *BrandService) Update(ctx context.Context, id string, req BrandRequest) (*BrandResponse, error) {
	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := brand.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	if err := s.brandRepo.Save(ctx, brand); err != nil {
		return nil, err
	}
	resp := ToBrandResponse(brand)
	return &resp, nil
}

func (s *BrandService) Delete(ctx context.Context, id string) error {
	if _, err := s.brandRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.brandRepo.Delete(ctx, id)
}

// LiveSource opens brand list subscriptions
func (s *BrandService) LiveSource() live.Source[BrandResponse] {
	convert := func(fn func([]BrandResponse, error)) func([]catalog.Brand, error) {
		return func(brands []catalog.Brand, err error) {
			if err != nil {
				fn(nil, err)
				return
			}
			fn(toBrandResponses(brands), nil)
		}
	}
	return live.Source[BrandResponse]{
		Default: func(ctx context.Context, _ live.Filter, fn func([]BrandResponse, error)) shared.Unsubscribe {
			return s.brandRepo.WatchAll(ctx, catalog.BrandFilter{}, convert(fn))
		},
		Search: func(ctx context.Context, text string, fn func([]BrandResponse, error)) shared.Unsubscribe {
			return s.brandRepo.WatchAll(ctx, catalog.BrandFilter{Name: text}, convert(fn))
		},
	}
}

func toBrandResponses(brands []catalog.Brand) []BrandResponse {
	out := make([]BrandResponse, len(brands))
	for i := range brands {
		out[i] = ToBrandResponse(&brands[i])
	}
	return out
}
