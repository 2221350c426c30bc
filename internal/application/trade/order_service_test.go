package trade

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/domain/trade"
	"github.com/storeadmin/backend/internal/infrastructure/docstore"
	"github.com/storeadmin/backend/internal/infrastructure/persistence"
	"github.com/storeadmin/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

type orderEnv struct {
	store   *docstore.MemoryStore
	service *OrderService
	events  *recordingPublisher
}

func newOrderEnv(t *testing.T) *orderEnv {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := docstore.NewMemoryStore(logger)
	t.Cleanup(func() { _ = store.Close() })
	objects := storage.NewMemoryObjectStorage("http://files.test")
	resolver := persistence.NewReferenceResolver(store, objects, logger)
	events := &recordingPublisher{}

	service := NewOrderService(
		persistence.NewDocOrderRepository(store, logger),
		persistence.NewDocProductRepository(store, resolver, logger),
		persistence.NewDocUserRepository(store, logger),
		events,
		logger,
	)
	return &orderEnv{store: store, service: service, events: events}
}

type orderDoc struct {
	id, number, status, userID string
	date                       time.Time
	total                      float64
	items                      map[string]int
	order                      []string
}

func seedOrder(t *testing.T, store *docstore.MemoryStore, o orderDoc) {
	t.Helper()
	if o.date.IsZero() {
		o.date = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	}
	products := make([]any, 0, len(o.order))
	for _, id := range o.order {
		products = append(products, map[string]any{"productId": id, "quantity": int64(o.items[id])})
	}
	require.NoError(t, store.Set(context.Background(), persistence.CollectionOrders, o.id, map[string]any{
		"orderId":       o.number,
		"orderStatus":   o.status,
		"orderDate":     o.date,
		"totalPaid":     o.total,
		"userId":        o.userID,
		"customerEmail": "buyer@example.com",
		"addressOne":    "12 Main St",
		"country":       "sri lanka",
		"zipCode":       "10100",
		"products":      products,
	}))
}

func TestOrderService_List(t *testing.T) {
	ctx := context.Background()
	env := newOrderEnv(t)
	seedOrder(t, env.store, orderDoc{id: "o1", number: "1001", status: "Pending", date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)})
	seedOrder(t, env.store, orderDoc{id: "o2", number: "1002", status: "Shipped", date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)})
	seedOrder(t, env.store, orderDoc{id: "o3", number: "1003", status: "Pending", date: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)})

	t.Run("newest first", func(t *testing.T) {
		got, err := env.service.List(ctx, OrderListFilter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "o3", got[0].ID)
		assert.Equal(t, "o1", got[2].ID)
	})

	t.Run("status filter", func(t *testing.T) {
		got, err := env.service.List(ctx, OrderListFilter{Status: "Pending"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("search wins over status", func(t *testing.T) {
		got, err := env.service.List(ctx, OrderListFilter{Status: "Pending", Search: "1002"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Shipped", got[0].Status)
	})

	t.Run("search is trimmed", func(t *testing.T) {
		got, err := env.service.List(ctx, OrderListFilter{Search: " 1003 "})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "o3", got[0].ID)
	})

	t.Run("short search keeps status filter", func(t *testing.T) {
		got, err := env.service.List(ctx, OrderListFilter{Status: "Shipped", Search: "10"})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := env.service.List(ctx, OrderListFilter{Status: "Lost"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestOrderService_GetByID(t *testing.T) {
	ctx := context.Background()
	env := newOrderEnv(t)
	require.NoError(t, env.store.Set(ctx, persistence.CollectionUsers, "u1", map[string]any{"username": "nimal", "userStatus": true}))
	seedOrder(t, env.store, orderDoc{id: "o1", number: "1001", status: "Pending", userID: "u1"})
	seedOrder(t, env.store, orderDoc{id: "o2", number: "1002", status: "Pending", userID: "ghost"})

	got, err := env.service.GetByID(ctx, "o1")
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, "nimal", got.User.Username)
	assert.True(t, got.User.Online)
	assert.Equal(t, "Accept Order", got.NextActionLabel)

	orphan, err := env.service.GetByID(ctx, "o2")
	require.NoError(t, err)
	assert.Nil(t, orphan.User)

	_, err = env.service.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrderService_AdvanceAlongDeliveryPath(t *testing.T) {
	ctx := context.Background()
	env := newOrderEnv(t)
	seedOrder(t, env.store, orderDoc{id: "o1", number: "1001", status: "Pending"})

	for _, want := range []string{"Processing", "Shipped", "Delivered"} {
		got, err := env.service.Advance(ctx, "o1")
		require.NoError(t, err)
		assert.Equal(t, want, got.Status)
	}

	_, err := env.service.Advance(ctx, "o1")
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	stored, err := env.service.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "Delivered", stored.Status)
	assert.Equal(t, 3, stored.StepIndex)

	require.Len(t, env.events.events, 3)
	last := env.events.events[2].(*trade.OrderStatusChangedEvent)
	assert.Equal(t, trade.OrderStatusShipped, last.From)
	assert.Equal(t, trade.OrderStatusDelivered, last.To)
}

func TestOrderService_Cancel(t *testing.T) {
	ctx := context.Background()
	env := newOrderEnv(t)
	seedOrder(t, env.store, orderDoc{id: "pending", number: "1", status: "Pending"})
	seedOrder(t, env.store, orderDoc{id: "processing", number: "2", status: "Processing"})

	got, err := env.service.Cancel(ctx, "pending")
	require.NoError(t, err)
	assert.Equal(t, "Canceled", got.Status)
	assert.Equal(t, 4, got.StepIndex)
	assert.False(t, got.CanCancel)

	_, err = env.service.Cancel(ctx, "processing")
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = env.service.Cancel(ctx, "pending")
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestOrderService_ExportCSV(t *testing.T) {
	ctx := context.Background()
	env := newOrderEnv(t)
	seedOrder(t, env.store, orderDoc{
		id: "o1", number: "1001", status: "Pending", total: 1234.5,
		items: map[string]int{"p1": 2, "p2": 1}, order: []string{"p1", "p2"},
	})

	var buf bytes.Buffer
	require.NoError(t, env.service.ExportCSV(ctx, OrderListFilter{}, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Order ID,Date,Status,Customer Email,Country,Address,Items,Total Paid", lines[0])
	assert.Contains(t, lines[1], "1001,10 Mar 2024 09:00,Pending,buyer@example.com,Sri Lanka")
	assert.Contains(t, lines[1], ",3,")
	assert.True(t, strings.HasSuffix(lines[1], `"1,234.50"`))
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "orders.csv", ExportFilename(""))
	assert.Equal(t, "orders-pending.csv", ExportFilename("Pending"))
}

func TestOrderService_LiveSourceHonoursStatusFilter(t *testing.T) {
	ctx := context.Background()
	env := newOrderEnv(t)
	seedOrder(t, env.store, orderDoc{id: "o1", number: "1001", status: "Pending"})
	seedOrder(t, env.store, orderDoc{id: "o2", number: "1002", status: "Shipped"})

	rows := make(chan []OrderResponse, 4)
	unsub := env.service.LiveSource().Default(ctx, map[string]string{"status": "Shipped"}, func(r []OrderResponse, err error) {
		assert.NoError(t, err)
		rows <- r
	})
	defer unsub()

	select {
	case got := <-rows:
		require.Len(t, got, 1)
		assert.Equal(t, "o2", got[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}
}
