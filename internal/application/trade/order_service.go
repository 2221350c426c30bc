package trade

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/storeadmin/backend/internal/application/live"
	"github.com/storeadmin/backend/internal/domain/catalog"
	"github.com/storeadmin/backend/internal/domain/identity"
	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/domain/trade"
	"github.com/storeadmin/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// OrderService handles order business operations
type OrderService struct {
	orderRepo   trade.OrderRepository
	productRepo catalog.ProductRepository
	userRepo    identity.UserRepository
	events      shared.EventPublisher
	logger      *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo trade.OrderRepository,
	productRepo catalog.ProductRepository,
	userRepo identity.UserRepository,
	events shared.EventPublisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		events:      events,
		logger:      logger,
	}
}

// List returns the orders matching the filter, newest first
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, error) {
	query, err := toOrderFilter(filter)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.FindAll(ctx, query)
	if err != nil {
		return nil, err
	}
	return toOrderResponses(orders), nil
}

func toOrderFilter(filter OrderListFilter) (trade.OrderFilter, error) {
	if term, ok := live.UseSearch(filter.Search); ok {
		return trade.OrderFilter{OrderNumber: term}, nil
	}
	if filter.Status == "" {
		return trade.OrderFilter{}, nil
	}
	status, err := trade.ParseOrderStatus(filter.Status)
	if err != nil {
		return trade.OrderFilter{}, err
	}
	return trade.OrderFilter{Status: status}, nil
}

// GetByID returns the order with its customer
func (s *OrderService) GetByID(ctx context.Context, id string) (*OrderDetailResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &OrderDetailResponse{OrderResponse: ToOrderResponse(order)}
	if order.UserID == "" {
		return resp, nil
	}

	user, err := s.userRepo.FindByID(ctx, order.UserID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		resp.User = ToUserSummary(user)
	}
	return resp, nil
}

// Advance moves the order to the next status of the delivery path
func (s *OrderService) Advance(ctx context.Context, id string) (*OrderResponse, error) {
	return s.transition(ctx, id, "advance", (*trade.Order).Advance)
}

// Cancel cancels a pending order
func (s *OrderService) Cancel(ctx context.Context, id string) (*OrderResponse, error) {
	return s.transition(ctx, id, "cancel", (*trade.Order).Cancel)
}

// transition applies a status change and patches the status field.
// Concurrent transitions are not guarded; the last write wins.
func (s *OrderService) transition(ctx context.Context, id, method string, apply func(*trade.Order) error) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", method, telemetry.SpanAttrOrderID, id)
	defer span.End()

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(order); err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdateStatus(ctx, id, order.Status); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.AddEvent(span, "status_changed", telemetry.SpanAttrOrderStatus, order.Status.String())

	s.publish(ctx, order)
	resp := ToOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) publish(ctx context.Context, order *trade.Order) {
	events := order.PullDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish order events", zap.String("order_id", order.ID), zap.Error(err))
	}
}

// ExportCSV writes the orders matching the filter as CSV
func (s *OrderService) ExportCSV(ctx context.Context, filter OrderListFilter, w io.Writer) error {
	query, err := toOrderFilter(filter)
	if err != nil {
		return err
	}
	orders, err := s.orderRepo.FindAll(ctx, query)
	if err != nil {
		return err
	}
	rows := make([]*OrderCSVRow, len(orders))
	for i := range orders {
		row := toOrderCSVRow(&orders[i])
		rows[i] = &row
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write orders csv: %w", err)
	}
	return nil
}

// LiveSource opens order list subscriptions. The default subscription
// honours the "status" filter key; search matches the order number.
func (s *OrderService) LiveSource() live.Source[OrderResponse] {
	convert := func(fn func([]OrderResponse, error)) func([]trade.Order, error) {
		return func(orders []trade.Order, err error) {
			if err != nil {
				fn(nil, err)
				return
			}
			fn(toOrderResponses(orders), nil)
		}
	}
	return live.Source[OrderResponse]{
		Default: func(ctx context.Context, filter live.Filter, fn func([]OrderResponse, error)) shared.Unsubscribe {
			query, err := toOrderFilter(OrderListFilter{Status: filter["status"]})
			if err != nil {
				go fn(nil, err)
				return func() {}
			}
			return s.orderRepo.WatchAll(ctx, query, convert(fn))
		},
		Search: func(ctx context.Context, text string, fn func([]OrderResponse, error)) shared.Unsubscribe {
			return s.orderRepo.WatchAll(ctx, trade.OrderFilter{OrderNumber: text}, convert(fn))
		},
	}
}

// NewDetailView creates an order detail view over the service's repositories
func (s *OrderService) NewDetailView() *OrderDetailView {
	return NewOrderDetailView(s.orderRepo, s.productRepo, s.userRepo, s.logger)
}

func toOrderResponses(orders []trade.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}
