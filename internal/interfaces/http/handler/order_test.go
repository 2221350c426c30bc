package handler

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apptrade "github.com/storeadmin/backend/internal/application/trade"
	"github.com/storeadmin/backend/internal/infrastructure/persistence"
	"github.com/storeadmin/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(t *testing.T, env *testEnv, id, number, status string, total float64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, env.store.Set(ctx, persistence.CollectionProducts, "p1", map[string]any{"name": "Desk Lamp", "price": 25}))
	require.NoError(t, env.store.Set(ctx, persistence.CollectionUsers, "u1", map[string]any{"username": "nimal"}))
	require.NoError(t, env.store.Set(ctx, persistence.CollectionOrders, id, map[string]any{
		"orderId":       number,
		"orderStatus":   status,
		"orderDate":     time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
		"totalPaid":     total,
		"userId":        "u1",
		"customerEmail": "buyer@example.com",
		"addressOne":    "12 Main St",
		"country":       "sri lanka",
		"zipCode":       "10100",
		"products":      []any{map[string]any{"productId": "p1", "quantity": int64(2)}},
	}))
}

func TestOrderHandler_Advance(t *testing.T) {
	env := newTestEnv(t)
	session := env.signedIn(t)
	seedOrder(t, env, "o1", "ORD-1", "Pending", 50)

	w := env.doAs(httptest.NewRequest(http.MethodPost, "/orders/o1/advance", nil), session)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var order apptrade.OrderResponse
	decodeResponse(t, w, &order)
	assert.Equal(t, "Processing", order.Status)
	assert.False(t, order.CanCancel)

	get := env.doAs(httptest.NewRequest(http.MethodGet, "/orders/o1", nil), session)
	decodeResponse(t, get, &order)
	assert.Equal(t, "Processing", order.Status)
}

func TestOrderHandler_AdvanceDelivered(t *testing.T) {
	env := newTestEnv(t)
	session := env.signedIn(t)
	seedOrder(t, env, "o1", "ORD-1", "Delivered", 50)

	w := env.doAs(httptest.NewRequest(http.MethodPost, "/orders/o1/advance", nil), session)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w, nil)
	assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
}

func TestOrderHandler_Cancel(t *testing.T) {
	t.Run("pending order", func(t *testing.T) {
		env := newTestEnv(t)
		session := env.signedIn(t)
		seedOrder(t, env, "o1", "ORD-1", "Pending", 50)

		w := env.doAs(httptest.NewRequest(http.MethodPost, "/orders/o1/cancel", nil), session)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var order apptrade.OrderResponse
		decodeResponse(t, w, &order)
		assert.Equal(t, "Canceled", order.Status)
	})

	t.Run("shipped order cannot be canceled", func(t *testing.T) {
		env := newTestEnv(t)
		session := env.signedIn(t)
		seedOrder(t, env, "o1", "ORD-1", "Shipped", 50)

		w := env.doAs(httptest.NewRequest(http.MethodPost, "/orders/o1/cancel", nil), session)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w, nil)
		assert.Equal(t, "Cannot cancel order in Shipped status", resp.Error.Message)
	})

	t.Run("unknown order", func(t *testing.T) {
		env := newTestEnv(t)
		session := env.signedIn(t)

		w := env.doAs(httptest.NewRequest(http.MethodPost, "/orders/missing/cancel", nil), session)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrderHandler_List(t *testing.T) {
	env := newTestEnv(t)
	session := env.signedIn(t)
	seedOrder(t, env, "o1", "ORD-1", "Pending", 50)
	seedOrder(t, env, "o2", "ORD-2", "Delivered", 75)

	w := env.doAs(httptest.NewRequest(http.MethodGet, "/orders?status=Pending", nil), session)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []apptrade.OrderResponse
	resp := decodeResponse(t, w, &orders)
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-1", orders[0].OrderNumber)
	assert.Equal(t, 1, resp.Meta.Total)

	bad := env.doAs(httptest.NewRequest(http.MethodGet, "/orders?status=Lost", nil), session)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestOrderHandler_Export(t *testing.T) {
	env := newTestEnv(t)
	session := env.signedIn(t)
	seedOrder(t, env, "o1", "ORD-1", "Pending", 1234.5)
	seedOrder(t, env, "o2", "ORD-2", "Delivered", 75)

	w := env.doAs(httptest.NewRequest(http.MethodGet, "/orders/export?status=Pending", nil), session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="orders-pending.csv"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))

	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Order ID", records[0][0])
	assert.Equal(t, "ORD-1", records[1][0])
	assert.Contains(t, records[1], "1,234.50")
	assert.Contains(t, records[1], "Sri Lanka")
}

func TestOrderHandler_Live(t *testing.T) {
	env := newTestEnv(t)
	session := env.signedIn(t)
	seedOrder(t, env, "o1", "ORD-1", "Pending", 50)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/orders/o1/live", nil).WithContext(ctx)
	req.AddCookie(session)

	w := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		env.engine.ServeHTTP(w, req)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not end after the client went away")
	}

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/event-stream"))
	body := w.Body.String()
	assert.Contains(t, body, "event:snapshot")
	assert.Contains(t, body, `"order_id":"o1"`)
	assert.Contains(t, body, "ORD-1")
	assert.Contains(t, body, ": heartbeat")
}
