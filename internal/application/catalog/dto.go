package catalog

import (
	"github.com/shopspring/decimal"
	"github.com/storeadmin/backend/internal/domain/catalog"
)

// CategoryRequest is the category form
type CategoryRequest struct {
	Name        string `form:"name" json:"name" binding:"required,max=200"`
	Description string `form:"description" json:"description" binding:"max=2000"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImagePath   string `json:"image_path"`
	ImageURL    string `json:"image_url"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ImagePath:   c.ImagePath,
		ImageURL:    c.ImageURL,
	}
}

// BrandRequest is the brand form
type BrandRequest struct {
	Name        string `form:"name" json:"name" binding:"required,max=200"`
	Description string `form:"description" json:"description" binding:"max=2000"`
}

// BrandResponse represents a brand in API responses
type BrandResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToBrandResponse converts a domain Brand to BrandResponse
func ToBrandResponse(b *catalog.Brand) BrandResponse {
	return BrandResponse{ID: b.ID, Name: b.Name, Description: b.Description}
}

// ProductRequest is the product form. Price arrives as text and is parsed into a decimal.
type ProductRequest struct {
	Name        string `form:"name" json:"name" binding:"required,max=200"`
	Description string `form:"description" json:"description" binding:"max=5000"`
	CategoryID  string `form:"category_id" json:"category_id"`
	BrandID     string `form:"brand_id" json:"brand_id"`
	Price       string `form:"price" json:"price" binding:"required"`
	Featured    bool   `form:"featured" json:"featured"`
}

// UpdateProductRequest is the product edit form
type UpdateProductRequest struct {
	ProductRequest
	// RemovedPaths are the images marked for removal; they are removed only when the edit is saved
	RemovedPaths []string `form:"removed_paths[]" json:"removed_paths"`
}

func (r ProductRequest) fields() (catalog.ProductFields, error) {
	price, err := parsePrice(r.Price)
	if err != nil {
		return catalog.ProductFields{}, err
	}
	return catalog.ProductFields{
		Name:        r.Name,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		BrandID:     r.BrandID,
		Price:       price,
		Featured:    r.Featured,
	}, nil
}

// ProductImageResponse is one product image
type ProductImageResponse struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// ProductResponse represents a product with its resolved references
type ProductResponse struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	CategoryID   string                 `json:"category_id"`
	CategoryName string                 `json:"category_name"`
	BrandID      string                 `json:"brand_id"`
	BrandName    string                 `json:"brand_name"`
	Price        decimal.Decimal        `json:"price"`
	Featured     bool                   `json:"featured"`
	Images       []ProductImageResponse `json:"images"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	images := make([]ProductImageResponse, 0, len(p.ImagePaths))
	urls := make(map[string]string, len(p.Images))
	for _, img := range p.Images {
		urls[img.Path] = img.URL
	}
	for _, path := range p.ImagePaths {
		images = append(images, ProductImageResponse{Path: path, URL: urls[path]})
	}
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		BrandID:      p.BrandID,
		BrandName:    p.BrandName,
		Price:        p.Price,
		Featured:     p.Featured,
		Images:       images,
	}
}

// ListFilter is the query of a plain list request
type ListFilter struct {
	Search string `form:"search"`
}
