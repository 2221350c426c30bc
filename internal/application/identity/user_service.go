package identity

import (
	"context"
	"errors"

	appcatalog "github.com/storeadmin/backend/internal/application/catalog"
	"github.com/storeadmin/backend/internal/application/live"
	apptrade "github.com/storeadmin/backend/internal/application/trade"
	"github.com/storeadmin/backend/internal/domain/catalog"
	"github.com/storeadmin/backend/internal/domain/identity"
	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// UserService reads storefront customers. Customers are never written here.
type UserService struct {
	userRepo    identity.UserRepository
	orderRepo   trade.OrderRepository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo identity.UserRepository,
	orderRepo trade.OrderRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

func (s *UserService) List(ctx context.Context, filter UserListFilter) ([]UserResponse, error) {
	query := identity.UserFilter{OnlineOnly: filter.OnlineOnly, Limit: filter.Limit}
	if term, ok := live.UseSearch(filter.Search); ok {
		query.Username = term
	}
	users, err := s.userRepo.FindAll(ctx, query)
	if err != nil {
		return nil, err
	}
	return toUserResponses(users), nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Orders returns the orders placed by the user, newest first
func (s *UserService) Orders(ctx context.Context, id string) ([]apptrade.OrderResponse, error) {
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.FindAll(ctx, trade.OrderFilter{UserID: id})
	if err != nil {
		return nil, err
	}
	out := make([]apptrade.OrderResponse, len(orders))
	for i := range orders {
		out[i] = apptrade.ToOrderResponse(&orders[i])
	}
	return out, nil
}

// Favorites returns the user's favourite products. Favourites pointing at
// deleted products are skipped.
func (s *UserService) Favorites(ctx context.Context, id string) ([]appcatalog.ProductResponse, error) {
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	ids, err := s.userRepo.FavoriteProductIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	out := make([]appcatalog.ProductResponse, 0, len(ids))
	for _, productID := range ids {
		product, err := s.productRepo.FindByID(ctx, productID)
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Debug("Skipping missing favourite", zap.String("user_id", id), zap.String("product_id", productID))
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, appcatalog.ToProductResponse(product))
	}
	return out, nil
}

// LiveSource opens customer list subscriptions. The default subscription
// honours the "online" filter key; search matches the username.
func (s *UserService) LiveSource() live.Source[UserResponse] {
	convert := func(fn func([]UserResponse, error)) func([]identity.User, error) {
		return func(users []identity.User, err error) {
			if err != nil {
				fn(nil, err)
				return
			}
			fn(toUserResponses(users), nil)
		}
	}
	return live.Source[UserResponse]{
		Default: func(ctx context.Context, filter live.Filter, fn func([]UserResponse, error)) shared.Unsubscribe {
			query := identity.UserFilter{OnlineOnly: filter["online"] == "true"}
			return s.userRepo.WatchAll(ctx, query, convert(fn))
		},
		Search: func(ctx context.Context, text string, fn func([]UserResponse, error)) shared.Unsubscribe {
			return s.userRepo.WatchAll(ctx, identity.UserFilter{Username: text}, convert(fn))
		},
	}
}

func toUserResponses(users []identity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out
}
