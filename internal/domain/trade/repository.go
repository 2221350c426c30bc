package trade

import (
	"context"
	"time"

	"github.com/storeadmin/backend/internal/domain/shared"
)

// OrderFilter narrows an order query. Zero values are ignored.
type OrderFilter struct {
	Status      OrderStatus
	OrderNumber string
	UserID      string
	// Since keeps orders dated at or after the given time
	Since time.Time
	Limit int
}

// OrderRepository defines persistence for orders
type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, error)
	// UpdateStatus patches the status field only; concurrent writers race and the last write wins
	UpdateStatus(ctx context.Context, id string, status OrderStatus) error
	// WatchByID delivers the order on every change; a nil order means the document does not exist
	WatchByID(ctx context.Context, id string, fn func(*Order, error)) shared.Unsubscribe
	WatchAll(ctx context.Context, filter OrderFilter, fn func([]Order, error)) shared.Unsubscribe
}
