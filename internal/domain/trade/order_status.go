package trade

import (
	"fmt"

	"github.com/storeadmin/backend/internal/domain/shared"
)

// OrderStatus represents the delivery status of a customer order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCanceled   OrderStatus = "Canceled"
)

// AllOrderStatuses lists the statuses in stepper order
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCanceled,
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCanceled
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// Next returns the status that follows s on the delivery path.
// Delivered and Canceled have no successor.
func (s OrderStatus) Next() (OrderStatus, error) {
	switch s {
	case OrderStatusPending:
		return OrderStatusProcessing, nil
	case OrderStatusProcessing:
		return OrderStatusShipped, nil
	case OrderStatusShipped:
		return OrderStatusDelivered, nil
	}
	return "", shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot advance order in %s status", s))
}

// CanCancel reports whether the order may move to Canceled. Only pending orders can.
func (s OrderStatus) CanCancel() bool {
	return s == OrderStatusPending
}

// StepIndex is the position of the status in the progress stepper
func (s OrderStatus) StepIndex() int {
	switch s {
	case OrderStatusPending:
		return 0
	case OrderStatusProcessing:
		return 1
	case OrderStatusShipped:
		return 2
	case OrderStatusDelivered:
		return 3
	case OrderStatusCanceled:
		return 4
	}
	return 0
}

// NextActionLabel is the caption of the button that advances the order
func (s OrderStatus) NextActionLabel() string {
	switch s {
	case OrderStatusPending:
		return "Accept Order"
	case OrderStatusProcessing:
		return "Mark as Shipped"
	case OrderStatusShipped:
		return "Mark as Delivered"
	}
	return ""
}

// ParseOrderStatus converts a stored or requested value into an OrderStatus
func ParseOrderStatus(value string) (OrderStatus, error) {
	s := OrderStatus(value)
	if !s.IsValid() {
		return "", shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown order status %q", value))
	}
	return s, nil
}
