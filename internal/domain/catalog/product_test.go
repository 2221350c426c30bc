package catalog

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFields() ProductFields {
	return ProductFields{
		Name:       "Phone X",
		CategoryID: "c1",
		BrandID:    "b1",
		Price:      decimal.NewFromInt(999),
	}
}

func TestNewProduct(t *testing.T) {
	t.Run("valid fields", func(t *testing.T) {
		p, err := NewProduct(validFields())
		require.NoError(t, err)
		assert.Equal(t, "Phone X", p.Name)
		assert.NotNil(t, p.ImagePaths)
		assert.Empty(t, p.ImagePaths)
	})

	tests := []struct {
		name   string
		modify func(*ProductFields)
		msg    string
	}{
		{"missing name", func(f *ProductFields) { f.Name = "  " }, "Product name is required"},
		{"zero price", func(f *ProductFields) { f.Price = decimal.Zero }, "Price must be greater than 0"},
		{"negative price", func(f *ProductFields) { f.Price = decimal.NewFromInt(-1) }, "Price must be greater than 0"},
		{"missing category", func(f *ProductFields) { f.CategoryID = "" }, "Please select an item"},
		{"missing brand", func(f *ProductFields) { f.BrandID = "" }, "Please select an item"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFields()
			tt.modify(&f)
			_, err := NewProduct(f)
			require.Error(t, err)
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestProduct_PlanImageChange(t *testing.T) {
	p, err := NewProduct(validFields())
	require.NoError(t, err)
	p.ID = "p1"
	p.SetImagePaths([]string{"products/p1-a.png", "products/p1-b.png"})

	t.Run("keeps order and appends new paths", func(t *testing.T) {
		change, err := p.PlanImageChange([]string{"products/p1-a.png"}, []string{"products/p1-c.png"})
		require.NoError(t, err)
		assert.Equal(t, []string{"products/p1-b.png", "products/p1-c.png"}, change.Kept)
		assert.Equal(t, []string{"products/p1-a.png"}, change.Removed)
		assert.Len(t, p.ImagePaths, 2, "planning must not modify the product")
	})

	t.Run("rejects paths of other products", func(t *testing.T) {
		_, err := p.PlanImageChange([]string{"products/p9-a.png"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not belong")
	})

	t.Run("requires one image to remain", func(t *testing.T) {
		_, err := p.PlanImageChange(p.ImagePaths, nil)
		require.Error(t, err)
		assert.Equal(t, "Please select at least one image", err.Error())
	})

	t.Run("removing everything while adding is allowed", func(t *testing.T) {
		change, err := p.PlanImageChange(p.ImagePaths, []string{"products/p1-z.png"})
		require.NoError(t, err)
		assert.Equal(t, []string{"products/p1-z.png"}, change.Kept)
		assert.Len(t, change.Removed, 2)
	})
}

func TestProductImagePath(t *testing.T) {
	path := ProductImagePath("p1", "photo.JPG")
	assert.True(t, strings.HasPrefix(path, "products/p1-"))
	assert.True(t, strings.HasSuffix(path, ".JPG"))
	assert.NotEqual(t, path, ProductImagePath("p1", "photo.JPG"))

	assert.False(t, strings.Contains(ProductImagePath("p1", "noext"), "."))
}

func TestProduct_MarkDeleted(t *testing.T) {
	p, err := NewProduct(validFields())
	require.NoError(t, err)
	p.ID = "p1"
	p.SetImagePaths([]string{"products/p1-a.png"})
	p.MarkDeleted()

	events := p.PendingEvents()
	require.Len(t, events, 1)
	e := events[0].(*ProductDeletedEvent)
	assert.Equal(t, EventTypeProductDeleted, e.EventType())
	assert.Equal(t, "p1", e.AggregateID())
	assert.Equal(t, []string{"products/p1-a.png"}, e.ImagePaths)
}
