package report

import (
	"context"
	"sync"
	"time"

	apptrade "github.com/storeadmin/backend/internal/application/trade"
	"github.com/storeadmin/backend/internal/application/live"
	"github.com/storeadmin/backend/internal/domain/catalog"
	"github.com/storeadmin/backend/internal/domain/identity"
	"github.com/storeadmin/backend/internal/domain/report"
	"github.com/storeadmin/backend/internal/domain/trade"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WidgetLimit is the number of rows of the dashboard widgets
const WidgetLimit = 10

// OnlineUser is one row of the online users widget
type OnlineUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	ImageURL string `json:"image_url"`
}

// DashboardService computes the dashboard figures
type DashboardService struct {
	orderRepo   trade.OrderRepository
	productRepo catalog.ProductRepository
	userRepo    identity.UserRepository
	now         func() time.Time
	logger      *zap.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	orderRepo trade.OrderRepository,
	productRepo catalog.ProductRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		now:         time.Now,
		logger:      logger,
	}
}

// Overview returns total orders, total revenue, today's new orders and the product count
func (s *DashboardService) Overview(ctx context.Context) (*report.Overview, error) {
	var (
		orders   []trade.Order
		products int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.orderRepo.FindAll(gctx, trade.OrderFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.productRepo.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overview := report.ComputeOverview(orders, products, s.now())
	return &overview, nil
}

// PendingOrders returns the newest pending orders
func (s *DashboardService) PendingOrders(ctx context.Context) ([]apptrade.OrderResponse, error) {
	orders, err := s.orderRepo.FindAll(ctx, trade.OrderFilter{Status: trade.OrderStatusPending, Limit: WidgetLimit})
	if err != nil {
		return nil, err
	}
	out := make([]apptrade.OrderResponse, len(orders))
	for i := range orders {
		out[i] = apptrade.ToOrderResponse(&orders[i])
	}
	return out, nil
}

// OnlineUsers returns customers currently flagged online
func (s *DashboardService) OnlineUsers(ctx context.Context) ([]OnlineUser, error) {
	users, err := s.userRepo.FindAll(ctx, identity.UserFilter{OnlineOnly: true, Limit: WidgetLimit})
	if err != nil {
		return nil, err
	}
	out := make([]OnlineUser, len(users))
	for i, u := range users {
		out[i] = OnlineUser{ID: u.ID, Username: u.Username, ImageURL: u.ImageURL}
	}
	return out, nil
}

// Revenue folds the orders of the revenue window into buckets once
func (s *DashboardService) Revenue(ctx context.Context, basisValue string) ([]report.RevenueBucket, error) {
	basis, err := report.ParseRevenueBasis(basisValue)
	if err != nil {
		return nil, err
	}
	now := s.now()
	orders, err := s.orderRepo.FindAll(ctx, trade.OrderFilter{Since: report.RevenueWindowStart(basis, now)})
	if err != nil {
		return nil, err
	}
	return report.AggregateRevenue(basis, orders, now), nil
}

// RevenueUpdate is one recomputation of the live revenue chart
type RevenueUpdate struct {
	Basis   report.RevenueBasis    `json:"basis"`
	Buckets []report.RevenueBucket `json:"buckets"`
	Error   string                 `json:"error,omitempty"`
}

// RevenueView keeps the revenue chart of one basis live. Every snapshot of
// the windowed order query is refolded from scratch.
type RevenueView struct {
	subs *live.SubscriptionSet
	out  *live.Latest[RevenueUpdate]
	once sync.Once
}

// WatchRevenue opens a live revenue chart. A different basis needs a new view.
func (s *DashboardService) WatchRevenue(ctx context.Context, basisValue string) (*RevenueView, error) {
	basis, err := report.ParseRevenueBasis(basisValue)
	if err != nil {
		return nil, err
	}

	v := &RevenueView{subs: live.NewSubscriptionSet(), out: live.NewLatest[RevenueUpdate]()}
	gen := v.subs.Replace()
	since := report.RevenueWindowStart(basis, s.now())
	unsub := s.orderRepo.WatchAll(ctx, trade.OrderFilter{Since: since}, func(orders []trade.Order, err error) {
		if !v.subs.IsCurrent(gen) {
			return
		}
		if err != nil {
			s.logger.Warn("Revenue subscription failed", zap.String("basis", string(basis)), zap.Error(err))
			v.out.Publish(RevenueUpdate{Basis: basis, Error: err.Error()})
			return
		}
		v.out.Publish(RevenueUpdate{Basis: basis, Buckets: report.AggregateRevenue(basis, orders, s.now())})
	})
	v.subs.Add(gen, unsub)
	return v, nil
}

// Updates delivers recomputed charts, latest wins
func (v *RevenueView) Updates() <-chan RevenueUpdate {
	return v.out.C()
}

// Close cancels the order subscription
func (v *RevenueView) Close() {
	v.once.Do(func() {
		v.subs.Close()
		v.out.Close()
	})
}
