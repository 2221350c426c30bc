package persistence

import (
	"context"
	"errors"

	"github.com/storeadmin/backend/internal/domain/identity"
	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/infrastructure/docstore"
	"go.uber.org/zap"
)

// DocUserRepository implements identity.UserRepository on the document store
type DocUserRepository struct {
	store  docstore.Store
	logger *zap.Logger
}

// NewDocUserRepository creates a user repository
func NewDocUserRepository(store docstore.Store, logger *zap.Logger) *DocUserRepository {
	return &DocUserRepository{store: store, logger: logger}
}

func (r *DocUserRepository) FindByID(ctx context.Context, id string) (*identity.User, error) {
	return getOne(ctx, r.store, CollectionUsers, id, "User", decodeUser)
}

func (r *DocUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]identity.User, error) {
	docs, err := r.store.Find(ctx, userQuery(filter))
	if err != nil {
		return nil, err
	}
	return decodeAll(r.logger, CollectionUsers, docs, decodeUser), nil
}

func (r *DocUserRepository) FavoriteProductIDs(ctx context.Context, userID string) ([]string, error) {
	docs, err := r.store.Find(ctx, docstore.NewQuery(favoritesCollection(userID)))
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}
	return ids, nil
}

func (r *DocUserRepository) WatchByID(ctx context.Context, id string, fn func(*identity.User, error)) shared.Unsubscribe {
	unsub := r.store.OnDocument(ctx, CollectionUsers, id, func(doc *docstore.Document, err error) {
		if err != nil || doc == nil {
			fn(nil, err)
			return
		}
		fn(decodeUser(doc.ID, doc.Data))
	})
	return shared.Unsubscribe(unsub)
}

func (r *DocUserRepository) WatchAll(ctx context.Context, filter identity.UserFilter, fn func([]identity.User, error)) shared.Unsubscribe {
	unsub := r.store.OnQuery(ctx, userQuery(filter), func(docs []docstore.Document, err error) {
		if err != nil {
			fn(nil, err)
			return
		}
		fn(decodeAll(r.logger, CollectionUsers, docs, decodeUser), nil)
	})
	return shared.Unsubscribe(unsub)
}

func userQuery(filter identity.UserFilter) docstore.Query {
	q := docstore.NewQuery(CollectionUsers)
	if filter.Username != "" {
		q = q.Where("username", docstore.OpEqual, filter.Username)
	}
	if filter.OnlineOnly {
		q = q.Where("userStatus", docstore.OpEqual, true)
	}
	if filter.Limit > 0 {
		q = q.Take(filter.Limit)
	}
	return q
}

// DocAdminRepository implements identity.AdminRepository on the document store.
// Email and display name are not stored here.
type DocAdminRepository struct {
	store  docstore.Store
	logger *zap.Logger
}

// NewDocAdminRepository creates an admin repository
func NewDocAdminRepository(store docstore.Store, logger *zap.Logger) *DocAdminRepository {
	return &DocAdminRepository{store: store, logger: logger}
}

func (r *DocAdminRepository) FindByID(ctx context.Context, id string) (*identity.Admin, error) {
	return getOne(ctx, r.store, CollectionAdmins, id, "Admin", decodeAdmin)
}

func (r *DocAdminRepository) FindAll(ctx context.Context) ([]identity.Admin, error) {
	docs, err := r.store.Find(ctx, docstore.NewQuery(CollectionAdmins))
	if err != nil {
		return nil, err
	}
	return decodeAll(r.logger, CollectionAdmins, docs, decodeAdmin), nil
}

func (r *DocAdminRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.store.Get(ctx, CollectionAdmins, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *DocAdminRepository) Save(ctx context.Context, admin *identity.Admin) error {
	return r.store.Set(ctx, CollectionAdmins, admin.ID, encodeAdmin(admin))
}

func (r *DocAdminRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionAdmins, id)
}

func (r *DocAdminRepository) WatchAll(ctx context.Context, fn func([]identity.Admin, error)) shared.Unsubscribe {
	unsub := r.store.OnQuery(ctx, docstore.NewQuery(CollectionAdmins), func(docs []docstore.Document, err error) {
		if err != nil {
			fn(nil, err)
			return
		}
		fn(decodeAll(r.logger, CollectionAdmins, docs, decodeAdmin), nil)
	})
	return shared.Unsubscribe(unsub)
}
