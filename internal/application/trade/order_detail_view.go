package trade

import (
	"context"
	"sync"

	"github.com/storeadmin/backend/internal/application/live"
	"github.com/storeadmin/backend/internal/domain/catalog"
	"github.com/storeadmin/backend/internal/domain/identity"
	"github.com/storeadmin/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// SlotState is the progress of one line item's product subscription
type SlotState string

const (
	SlotPending  SlotState = "pending"
	SlotResolved SlotState = "resolved"
	SlotFailed   SlotState = "failed"
)

// ItemSlot is the result slot of one line item. Missing is set when the
// product document does not exist; the slot still counts as resolved.
// Resolved stays set once a snapshot arrived, even if the subscription
// fails later.
type ItemSlot struct {
	State     SlotState       `json:"state"`
	Resolved  bool            `json:"resolved"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Product   *ProductSummary `json:"product,omitempty"`
	Missing   bool            `json:"missing"`
	Error     string          `json:"error,omitempty"`
}

// OrderDetailSnapshot is one consistent state of the order detail page
type OrderDetailSnapshot struct {
	OrderID         string         `json:"order_id"`
	Loading         bool           `json:"loading"`
	NotFound        bool           `json:"not_found"`
	Order           *OrderResponse `json:"order"`
	User            *UserSummary   `json:"user"`
	UserLoading     bool           `json:"user_loading"`
	Items           []ItemSlot     `json:"items"`
	ProductsLoading bool           `json:"products_loading"`
	StepIndex       int            `json:"step_index"`
	NextActionLabel string         `json:"next_action_label"`
	CanCancel       bool           `json:"can_cancel"`
	Error           string         `json:"error,omitempty"`
}

// ProductsResolved counts the slots that received at least one snapshot
func ProductsResolved(items []ItemSlot) int {
	n := 0
	for _, item := range items {
		if item.Resolved {
			n++
		}
	}
	return n
}

// OrderDetailView keeps the order, its user and one product per line item
// live. Each kind of subscription is owned by its own SubscriptionSet so a
// change of the order's items or user replaces exactly the affected
// subscriptions, and callbacks of replaced generations are dropped.
type OrderDetailView struct {
	orders   trade.OrderRepository
	products catalog.ProductRepository
	users    identity.UserRepository
	logger   *zap.Logger

	orderSubs   *live.SubscriptionSet
	productSubs *live.SubscriptionSet
	userSubs    *live.SubscriptionSet
	out         *live.Latest[OrderDetailSnapshot]

	mu     sync.Mutex
	ctx    context.Context
	state  OrderDetailSnapshot
	order  *trade.Order
	closed bool
}

// NewOrderDetailView creates a view that is not yet watching any order
func NewOrderDetailView(
	orders trade.OrderRepository,
	products catalog.ProductRepository,
	users identity.UserRepository,
	logger *zap.Logger,
) *OrderDetailView {
	return &OrderDetailView{
		orders:      orders,
		products:    products,
		users:       users,
		logger:      logger,
		orderSubs:   live.NewSubscriptionSet(),
		productSubs: live.NewSubscriptionSet(),
		userSubs:    live.NewSubscriptionSet(),
		out:         live.NewLatest[OrderDetailSnapshot](),
	}
}

// Open starts watching orderID. Subscriptions of a previously opened order
// are cancelled first.
func (v *OrderDetailView) Open(ctx context.Context, orderID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}

	v.productSubs.Replace()
	v.userSubs.Replace()
	gen := v.orderSubs.Replace()

	v.ctx = ctx
	v.order = nil
	v.state = OrderDetailSnapshot{OrderID: orderID, Loading: true, Items: []ItemSlot{}}
	v.publishLocked()

	unsub := v.orders.WatchByID(ctx, orderID, func(order *trade.Order, err error) {
		v.onOrder(gen, order, err)
	})
	v.orderSubs.Add(gen, unsub)
}

// Updates delivers snapshots, latest wins. The channel is closed by Close.
func (v *OrderDetailView) Updates() <-chan OrderDetailSnapshot {
	return v.out.C()
}

// Snapshot returns the current state
func (v *OrderDetailView) Snapshot() OrderDetailSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

// Close cancels every subscription opened for the view
func (v *OrderDetailView) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.mu.Unlock()

	v.orderSubs.Close()
	v.productSubs.Close()
	v.userSubs.Close()
	v.out.Close()
}

func (v *OrderDetailView) onOrder(gen uint64, order *trade.Order, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.orderSubs.IsCurrent(gen) {
		return
	}

	v.state.Loading = false
	if err != nil {
		v.logger.Warn("Order subscription failed", zap.String("order_id", v.state.OrderID), zap.Error(err))
		v.state.Error = err.Error()
		v.publishLocked()
		return
	}
	v.state.Error = ""

	if order == nil {
		v.productSubs.Replace()
		v.userSubs.Replace()
		v.order = nil
		v.state.NotFound = true
		v.state.Order = nil
		v.state.User = nil
		v.state.UserLoading = false
		v.state.Items = []ItemSlot{}
		v.publishLocked()
		return
	}

	previous := v.order
	v.order = order
	v.state.NotFound = false
	resp := ToOrderResponse(order)
	v.state.Order = &resp

	if previous == nil || !trade.SameItems(previous.Items, order.Items) {
		v.watchProductsLocked(order.Items)
	} else {
		for i, item := range order.Items {
			v.state.Items[i].Quantity = item.Quantity
		}
	}

	if previous == nil || previous.UserID != order.UserID {
		v.watchUserLocked(order.UserID)
	}

	v.publishLocked()
}

func (v *OrderDetailView) watchProductsLocked(items []trade.LineItem) {
	gen := v.productSubs.Replace()
	v.state.Items = make([]ItemSlot, len(items))
	for i, item := range items {
		v.state.Items[i] = ItemSlot{State: SlotPending, ProductID: item.ProductID, Quantity: item.Quantity}
	}
	for i, item := range items {
		index := i
		unsub := v.products.WatchByID(v.ctx, item.ProductID, func(p *catalog.Product, err error) {
			v.onProduct(gen, index, p, err)
		})
		v.productSubs.Add(gen, unsub)
	}
}

func (v *OrderDetailView) onProduct(gen uint64, index int, p *catalog.Product, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.productSubs.IsCurrent(gen) || index >= len(v.state.Items) {
		return
	}

	slot := &v.state.Items[index]
	switch {
	case err != nil:
		slot.State = SlotFailed
		slot.Error = err.Error()
		if !slot.Resolved {
			slot.Product = nil
		}
	case p == nil:
		slot.State = SlotResolved
		slot.Resolved = true
		slot.Product = nil
		slot.Missing = true
		slot.Error = ""
	default:
		slot.State = SlotResolved
		slot.Resolved = true
		slot.Product = ToProductSummary(p)
		slot.Missing = false
		slot.Error = ""
	}
	v.publishLocked()
}

func (v *OrderDetailView) watchUserLocked(userID string) {
	gen := v.userSubs.Replace()
	v.state.User = nil
	v.state.UserLoading = userID != ""
	if userID == "" {
		return
	}
	unsub := v.users.WatchByID(v.ctx, userID, func(u *identity.User, err error) {
		v.onUser(gen, u, err)
	})
	v.userSubs.Add(gen, unsub)
}

func (v *OrderDetailView) onUser(gen uint64, u *identity.User, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.userSubs.IsCurrent(gen) {
		return
	}
	v.state.UserLoading = false
	if err != nil {
		v.logger.Warn("User subscription failed", zap.String("order_id", v.state.OrderID), zap.Error(err))
		v.state.User = nil
	} else {
		v.state.User = ToUserSummary(u)
	}
	v.publishLocked()
}

func (v *OrderDetailView) snapshotLocked() OrderDetailSnapshot {
	s := v.state
	s.Items = append([]ItemSlot(nil), v.state.Items...)
	if s.Items == nil {
		s.Items = []ItemSlot{}
	}
	if v.order != nil {
		s.ProductsLoading = ProductsResolved(s.Items) < len(v.order.Items)
		s.StepIndex = v.order.Status.StepIndex()
		s.NextActionLabel = v.order.Status.NextActionLabel()
		s.CanCancel = v.order.Status.CanCancel()
	}
	if s.Order != nil {
		o := *s.Order
		s.Order = &o
	}
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func (v *OrderDetailView) publishLocked() {
	if v.closed {
		return
	}
	v.out.Publish(v.snapshotLocked())
}
