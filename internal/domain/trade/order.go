package trade

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/domain/shared/valueobject"
)

// LineItem is one product entry of an order
type LineItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Order is a customer order placed through the storefront
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber   string
	Status        OrderStatus
	Date          time.Time
	Total         decimal.Decimal
	UserID        string
	CustomerEmail string
	Shipping      valueobject.ShippingAddress
	Items         []LineItem
}

// Advance moves the order one step along the delivery path
func (o *Order) Advance() error {
	next, err := o.Status.Next()
	if err != nil {
		return err
	}
	from := o.Status
	o.Status = next
	o.Record(NewOrderStatusChangedEvent(o, from))
	return nil
}

// Cancel cancels a pending order
func (o *Order) Cancel() error {
	if !o.Status.CanCancel() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	from := o.Status
	o.Status = OrderStatusCanceled
	o.Record(NewOrderStatusChangedEvent(o, from))
	return nil
}

// ProductIDs returns the product ids of the line items in order
func (o *Order) ProductIDs() []string {
	ids := make([]string, len(o.Items))
	for i, item := range o.Items {
		ids[i] = item.ProductID
	}
	return ids
}

// SameItems reports whether two item lists reference the same products in the same order
func SameItems(a, b []LineItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ProductID != b[i].ProductID {
			return false
		}
	}
	return true
}
