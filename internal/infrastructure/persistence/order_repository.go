package persistence

import (
	"context"
	"sort"

	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/domain/trade"
	"github.com/storeadmin/backend/internal/infrastructure/docstore"
	"go.uber.org/zap"
)

// DocOrderRepository implements trade.OrderRepository on the document store
type DocOrderRepository struct {
	store  docstore.Store
	logger *zap.Logger
}

// NewDocOrderRepository creates an order repository
func NewDocOrderRepository(store docstore.Store, logger *zap.Logger) *DocOrderRepository {
	return &DocOrderRepository{store: store, logger: logger}
}

func (r *DocOrderRepository) FindByID(ctx context.Context, id string) (*trade.Order, error) {
	return getOne(ctx, r.store, CollectionOrders, id, "Order", decodeOrder)
}

// FindAll returns matching orders, newest first
func (r *DocOrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]trade.Order, error) {
	docs, err := r.store.Find(ctx, orderQuery(filter))
	if err != nil {
		return nil, err
	}
	return r.decode(docs), nil
}

func (r *DocOrderRepository) UpdateStatus(ctx context.Context, id string, status trade.OrderStatus) error {
	err := r.store.Update(ctx, CollectionOrders, id, map[string]any{"orderStatus": string(status)})
	return mapNotFound(err, "Order")
}

func (r *DocOrderRepository) WatchByID(ctx context.Context, id string, fn func(*trade.Order, error)) shared.Unsubscribe {
	unsub := r.store.OnDocument(ctx, CollectionOrders, id, func(doc *docstore.Document, err error) {
		if err != nil || doc == nil {
			fn(nil, err)
			return
		}
		fn(decodeOrder(doc.ID, doc.Data))
	})
	return shared.Unsubscribe(unsub)
}

func (r *DocOrderRepository) WatchAll(ctx context.Context, filter trade.OrderFilter, fn func([]trade.Order, error)) shared.Unsubscribe {
	unsub := r.store.OnQuery(ctx, orderQuery(filter), func(docs []docstore.Document, err error) {
		if err != nil {
			fn(nil, err)
			return
		}
		fn(r.decode(docs), nil)
	})
	return shared.Unsubscribe(unsub)
}

func (r *DocOrderRepository) decode(docs []docstore.Document) []trade.Order {
	orders := decodeAll(r.logger, CollectionOrders, docs, decodeOrder)
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Date.After(orders[j].Date)
	})
	return orders
}

func orderQuery(filter trade.OrderFilter) docstore.Query {
	q := docstore.NewQuery(CollectionOrders)
	if filter.Status != "" {
		q = q.Where("orderStatus", docstore.OpEqual, string(filter.Status))
	}
	if filter.OrderNumber != "" {
		q = q.Where("orderId", docstore.OpEqual, filter.OrderNumber)
	}
	if filter.UserID != "" {
		q = q.Where("userId", docstore.OpEqual, filter.UserID)
	}
	if !filter.Since.IsZero() {
		q = q.Where("orderDate", docstore.OpGreaterEqual, filter.Since)
	}
	if filter.Limit > 0 {
		q = q.Take(filter.Limit)
	}
	return q
}
