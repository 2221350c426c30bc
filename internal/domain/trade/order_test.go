package trade

import (
	"testing"

	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(status OrderStatus) *Order {
	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot("order-1"),
		OrderNumber:       "100234",
		Status:            status,
		Items: []LineItem{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
	}
}

func TestOrder_Advance(t *testing.T) {
	t.Run("walks the delivery path", func(t *testing.T) {
		o := newTestOrder(OrderStatusPending)
		require.NoError(t, o.Advance())
		require.NoError(t, o.Advance())
		require.NoError(t, o.Advance())
		assert.Equal(t, OrderStatusDelivered, o.Status)

		events := o.PendingEvents()
		require.Len(t, events, 3)
		last := events[2].(*OrderStatusChangedEvent)
		assert.Equal(t, OrderStatusShipped, last.From)
		assert.Equal(t, OrderStatusDelivered, last.To)
		assert.Equal(t, "order-1", last.AggregateID())
	})

	t.Run("delivered order stays delivered", func(t *testing.T) {
		o := newTestOrder(OrderStatusDelivered)
		require.Error(t, o.Advance())
		assert.Equal(t, OrderStatusDelivered, o.Status)
		assert.Empty(t, o.PendingEvents())
	})
}

func TestOrder_Cancel(t *testing.T) {
	t.Run("pending order", func(t *testing.T) {
		o := newTestOrder(OrderStatusPending)
		require.NoError(t, o.Cancel())
		assert.Equal(t, OrderStatusCanceled, o.Status)
		assert.Len(t, o.PendingEvents(), 1)
	})

	for _, s := range []OrderStatus{OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCanceled} {
		t.Run(s.String(), func(t *testing.T) {
			o := newTestOrder(s)
			err := o.Cancel()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "Cannot cancel order")
			assert.Equal(t, s, o.Status)
		})
	}
}

func TestOrder_ProductIDs(t *testing.T) {
	o := newTestOrder(OrderStatusPending)
	assert.Equal(t, []string{"p1", "p2"}, o.ProductIDs())
}

func TestSameItems(t *testing.T) {
	a := []LineItem{{ProductID: "p1", Quantity: 1}, {ProductID: "p2", Quantity: 1}}
	assert.True(t, SameItems(a, []LineItem{{ProductID: "p1", Quantity: 5}, {ProductID: "p2"}}))
	assert.False(t, SameItems(a, []LineItem{{ProductID: "p2"}, {ProductID: "p1"}}))
	assert.False(t, SameItems(a, a[:1]))
	assert.True(t, SameItems(nil, nil))
}
