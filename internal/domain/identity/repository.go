package identity

import (
	"context"

	"github.com/storeadmin/backend/internal/domain/shared"
)

// AdminRepository defines persistence for admin documents
type AdminRepository interface {
	FindByID(ctx context.Context, id string) (*Admin, error)
	FindAll(ctx context.Context) ([]Admin, error)
	Exists(ctx context.Context, id string) (bool, error)
	// Save writes the admin document under the admin's id, replacing any previous content
	Save(ctx context.Context, admin *Admin) error
	Delete(ctx context.Context, id string) error
	WatchAll(ctx context.Context, fn func([]Admin, error)) shared.Unsubscribe
}

// UserFilter narrows a user listing
type UserFilter struct {
	Username   string
	OnlineOnly bool
	Limit      int
}

// UserRepository defines read access to customer documents
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindAll(ctx context.Context, filter UserFilter) ([]User, error)
	// FavoriteProductIDs returns the ids of the user's favourites subcollection
	FavoriteProductIDs(ctx context.Context, userID string) ([]string, error)
	// WatchByID delivers the user on every change; a nil user means the document does not exist
	WatchByID(ctx context.Context, id string, fn func(*User, error)) shared.Unsubscribe
	WatchAll(ctx context.Context, filter UserFilter, fn func([]User, error)) shared.Unsubscribe
}
