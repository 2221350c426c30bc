package trade

import (
	"errors"
	"testing"

	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_Next(t *testing.T) {
	tests := []struct {
		from OrderStatus
		want OrderStatus
	}{
		{OrderStatusPending, OrderStatusProcessing},
		{OrderStatusProcessing, OrderStatusShipped},
		{OrderStatusShipped, OrderStatusDelivered},
	}
	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			got, err := tt.from.Next()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, terminal := range []OrderStatus{OrderStatusDelivered, OrderStatusCanceled} {
		t.Run(terminal.String()+" has no successor", func(t *testing.T) {
			_, err := terminal.Next()
			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.ErrInvalidState))
		})
	}
}

func TestOrderStatus_OnlyPendingReachesCanceled(t *testing.T) {
	for _, s := range AllOrderStatuses {
		next, err := s.Next()
		if err == nil {
			assert.NotEqual(t, OrderStatusCanceled, next, "Next must never produce Canceled from %s", s)
		}
		assert.Equal(t, s == OrderStatusPending, s.CanCancel(), s.String())
	}
}

func TestOrderStatus_StepIndexAndLabel(t *testing.T) {
	assert.Equal(t, 0, OrderStatusPending.StepIndex())
	assert.Equal(t, 1, OrderStatusProcessing.StepIndex())
	assert.Equal(t, 2, OrderStatusShipped.StepIndex())
	assert.Equal(t, 3, OrderStatusDelivered.StepIndex())
	assert.Equal(t, 4, OrderStatusCanceled.StepIndex())

	assert.Equal(t, "Accept Order", OrderStatusPending.NextActionLabel())
	assert.Equal(t, "Mark as Shipped", OrderStatusProcessing.NextActionLabel())
	assert.Equal(t, "Mark as Delivered", OrderStatusShipped.NextActionLabel())
	assert.Empty(t, OrderStatusDelivered.NextActionLabel())
	assert.Empty(t, OrderStatusCanceled.NextActionLabel())
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.False(t, OrderStatusShipped.IsTerminal())
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCanceled.IsTerminal())
}

func TestParseOrderStatus(t *testing.T) {
	s, err := ParseOrderStatus("Shipped")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, s)

	_, err = ParseOrderStatus("shipped")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}
