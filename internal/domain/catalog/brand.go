package catalog

import (
	"strings"

	"github.com/storeadmin/backend/internal/domain/shared"
)

// Brand is a product manufacturer
type Brand struct {
	shared.BaseEntity
	Name        string
	Description string
}

// NewBrand creates a brand that has not been written yet
func NewBrand(name, description string) (*Brand, error) {
	name = strings.TrimSpace(name)
	if err := validateName("Brand", name); err != nil {
		return nil, err
	}
	return &Brand{
		Name:        name,
		Description: strings.TrimSpace(description),
	}, nil
}

// Update changes the editable fields of the brand
func (b *Brand) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if err := validateName("Brand", name); err != nil {
		return err
	}
	b.Name = name
	b.Description = strings.TrimSpace(description)
	return nil
}
