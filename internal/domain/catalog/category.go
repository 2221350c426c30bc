package catalog

import (
	"strings"

	"github.com/storeadmin/backend/internal/domain/shared"
)

// Category groups products on the storefront. Its image lives in object
// storage under categories/<id>.<ext>.
type Category struct {
	shared.BaseEntity
	Name        string
	Description string
	ImagePath   string

	// ImageURL is resolved from ImagePath after loading; it is never persisted.
	ImageURL string
}

// NewCategory creates a category that has not been written yet
func NewCategory(name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateName("Category", name); err != nil {
		return nil, err
	}

	return &Category{
		Name:        name,
		Description: strings.TrimSpace(description),
	}, nil
}

// Update changes the editable fields of the category
func (c *Category) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if err := validateName("Category", name); err != nil {
		return err
	}
	c.Name = name
	c.Description = strings.TrimSpace(description)
	return nil
}

// SetImagePath records the storage path of the category image
func (c *Category) SetImagePath(path string) {
	c.ImagePath = path
}

// ImagePathFor returns the storage path of a category image uploaded as filename
func ImagePathFor(categoryID, filename string) string {
	ext := FileExtension(filename)
	if ext == "" {
		return "categories/" + categoryID
	}
	return "categories/" + categoryID + "." + ext
}

func validateName(entity, name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", entity+" name is required")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_INPUT", entity+" name cannot exceed 200 characters")
	}
	return nil
}
