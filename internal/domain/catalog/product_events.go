package catalog

import "github.com/storeadmin/backend/internal/domain/shared"

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductDeleted = "ProductDeleted"
)

// ProductDeletedEvent is raised after a product document has been removed
type ProductDeletedEvent struct {
	shared.BaseDomainEvent
	Name       string   `json:"name"`
	ImagePaths []string `json:"image_paths"`
}

// NewProductDeletedEvent creates a new ProductDeletedEvent
func NewProductDeletedEvent(p *Product) *ProductDeletedEvent {
	return &ProductDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductDeleted, AggregateTypeProduct, p.ID),
		Name:            p.Name,
		ImagePaths:      append([]string(nil), p.ImagePaths...),
	}
}
