package catalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storeadmin/backend/internal/domain/shared"
)

// ProductImage is a stored product image with its resolved download URL
type ProductImage struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Product is a sellable item. Category and brand are referenced by id;
// their names are resolved by a secondary read after loading.
type Product struct {
	shared.BaseAggregateRoot
	Name        string
	Description string
	CategoryID  string
	BrandID     string
	Price       decimal.Decimal
	Featured    bool
	ImagePaths  []string

	// Resolved references, never persisted.
	CategoryName string
	BrandName    string
	Images       []ProductImage
}

// ProductFields holds the editable fields of a product
type ProductFields struct {
	Name        string
	Description string
	CategoryID  string
	BrandID     string
	Price       decimal.Decimal
	Featured    bool
}

// NewProduct creates a product that has not been written yet.
// Image paths are attached after the document exists because they embed its id.
func NewProduct(fields ProductFields) (*Product, error) {
	p := &Product{}
	if err := p.Update(fields); err != nil {
		return nil, err
	}
	p.ImagePaths = []string{}
	return p, nil
}

// Update validates and applies the editable fields
func (p *Product) Update(fields ProductFields) error {
	fields.Name = strings.TrimSpace(fields.Name)
	if err := validateName("Product", fields.Name); err != nil {
		return err
	}
	if !fields.Price.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Price must be greater than 0")
	}
	if strings.TrimSpace(fields.CategoryID) == "" {
		return shared.NewDomainError("INVALID_INPUT", "Please select an item")
	}
	if strings.TrimSpace(fields.BrandID) == "" {
		return shared.NewDomainError("INVALID_INPUT", "Please select an item")
	}

	p.Name = fields.Name
	p.Description = strings.TrimSpace(fields.Description)
	p.CategoryID = strings.TrimSpace(fields.CategoryID)
	p.BrandID = strings.TrimSpace(fields.BrandID)
	p.Price = fields.Price
	p.Featured = fields.Featured
	return nil
}

// ImageChange is the outcome of applying a pending image edit
type ImageChange struct {
	Kept    []string
	Removed []string
}

// PlanImageChange validates a "marked for removal" set against the current
// images and returns the resulting image list with the new paths appended.
// The product is not modified; callers commit with SetImagePaths once the
// uploads succeeded.
func (p *Product) PlanImageChange(removed, added []string) (ImageChange, error) {
	current := make(map[string]bool, len(p.ImagePaths))
	for _, path := range p.ImagePaths {
		current[path] = true
	}

	removeSet := make(map[string]bool, len(removed))
	for _, path := range removed {
		if !current[path] {
			return ImageChange{}, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Image %s does not belong to this product", path))
		}
		removeSet[path] = true
	}

	kept := make([]string, 0, len(p.ImagePaths)+len(added))
	removedOrdered := make([]string, 0, len(removeSet))
	for _, path := range p.ImagePaths {
		if removeSet[path] {
			removedOrdered = append(removedOrdered, path)
			continue
		}
		kept = append(kept, path)
	}
	kept = append(kept, added...)

	if len(kept) == 0 {
		return ImageChange{}, shared.NewDomainError("INVALID_INPUT", "Please select at least one image")
	}

	return ImageChange{Kept: kept, Removed: removedOrdered}, nil
}

// SetImagePaths replaces the stored image paths
func (p *Product) SetImagePaths(paths []string) {
	p.ImagePaths = append([]string(nil), paths...)
}

// ProductImagePath returns a unique storage path for an image of the product
func ProductImagePath(productID, filename string) string {
	name := productID + "-" + uuid.NewString()
	if ext := FileExtension(filename); ext != "" {
		name += "." + ext
	}
	return "products/" + name
}

// MarkDeleted records the deletion of the product
func (p *Product) MarkDeleted() {
	p.Record(NewProductDeletedEvent(p))
}
