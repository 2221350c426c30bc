package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/infrastructure/auth"
	"github.com/storeadmin/backend/internal/infrastructure/docstore"
	"github.com/storeadmin/backend/internal/infrastructure/persistence"
	"github.com/storeadmin/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockIdentityProvider is a mock implementation of auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) CreateUser(ctx context.Context, in auth.NewIdentity) (*auth.Identity, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Identity), args.Error(1)
}

func (m *MockIdentityProvider) GetUser(ctx context.Context, uid string) (*auth.Identity, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Identity), args.Error(1)
}

func (m *MockIdentityProvider) GetUserByEmail(ctx context.Context, email string) (*auth.Identity, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Identity), args.Error(1)
}

func (m *MockIdentityProvider) DeleteUser(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *MockIdentityProvider) UpdatePassword(ctx context.Context, uid, password string) error {
	return m.Called(ctx, uid, password).Error(0)
}

func (m *MockIdentityProvider) SignInWithPassword(ctx context.Context, email, password string) (*auth.SignIn, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.SignIn), args.Error(1)
}

func (m *MockIdentityProvider) CreateSession(ctx context.Context, idToken string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, idToken, expiresIn)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityProvider) VerifySession(ctx context.Context, token string) (*auth.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *MockIdentityProvider) RevokeSessions(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

// MockSessionProvider also revokes single sessions
type MockSessionProvider struct {
	MockIdentityProvider
}

func (m *MockSessionProvider) RevokeSession(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type identityEnv struct {
	store *docstore.MemoryStore
	repo  *persistence.DocAdminRepository
}

func newIdentityEnv(t *testing.T) *identityEnv {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := docstore.NewMemoryStore(logger)
	t.Cleanup(func() { _ = store.Close() })
	return &identityEnv{store: store, repo: persistence.NewDocAdminRepository(store, logger)}
}

func (e *identityEnv) seedAdmin(t *testing.T, id string, superAdmin bool) {
	t.Helper()
	require.NoError(t, e.store.Set(context.Background(), persistence.CollectionAdmins, id, map[string]any{"superAdmin": superAdmin}))
}

const sessionTTL = 12 * 24 * time.Hour

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("admin signs in", func(t *testing.T) {
		env := newIdentityEnv(t)
		env.seedAdmin(t, "uid-1", true)
		provider := new(MockIdentityProvider)
		provider.On("SignInWithPassword", ctx, "a@shop.lk", "secret1").Return(&auth.SignIn{UID: "uid-1", IDToken: "id"}, nil)
		provider.On("CreateSession", ctx, "id", sessionTTL).Return("session", nil)
		provider.On("GetUser", ctx, "uid-1").Return(&auth.Identity{UID: "uid-1", Email: "a@shop.lk", DisplayName: "Asha"}, nil)

		svc := NewAuthService(provider, env.repo, sessionTTL, zaptest.NewLogger(t))
		got, err := svc.Login(ctx, LoginRequest{Email: "a@shop.lk", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "session", got.SessionToken)
		assert.Equal(t, SessionResponse{ID: "uid-1", Email: "a@shop.lk", DisplayName: "Asha", SuperAdmin: true}, got.Admin)
		provider.AssertExpectations(t)
	})

	t.Run("account without admin record is signed out", func(t *testing.T) {
		env := newIdentityEnv(t)
		provider := new(MockSessionProvider)
		provider.On("SignInWithPassword", ctx, "c@shop.lk", "secret1").Return(&auth.SignIn{UID: "customer", IDToken: "id"}, nil)
		provider.On("CreateSession", ctx, "id", sessionTTL).Return("session", nil)
		provider.On("RevokeSession", ctx, "session").Return(nil)

		svc := NewAuthService(provider, env.repo, sessionTTL, zaptest.NewLogger(t))
		got, err := svc.Login(ctx, LoginRequest{Email: "c@shop.lk", Password: "secret1"})
		assert.Nil(t, got)
		require.ErrorIs(t, err, shared.ErrAccessDenied)
		assert.Equal(t, "Access Denied", err.Error())
		provider.AssertExpectations(t)
	})

	t.Run("providers without single revocation revoke the account", func(t *testing.T) {
		env := newIdentityEnv(t)
		provider := new(MockIdentityProvider)
		provider.On("SignInWithPassword", ctx, "c@shop.lk", "secret1").Return(&auth.SignIn{UID: "customer", IDToken: "id"}, nil)
		provider.On("CreateSession", ctx, "id", sessionTTL).Return("session", nil)
		provider.On("RevokeSessions", ctx, "customer").Return(nil)

		svc := NewAuthService(provider, env.repo, sessionTTL, zaptest.NewLogger(t))
		_, err := svc.Login(ctx, LoginRequest{Email: "c@shop.lk", Password: "secret1"})
		assert.ErrorIs(t, err, shared.ErrAccessDenied)
		provider.AssertExpectations(t)
	})

	tests := []struct {
		name    string
		signErr error
		want    string
	}{
		{"wrong password", auth.ErrInvalidPassword, "Invalid email or password"},
		{"unknown account", auth.ErrIdentityNotFound, "Logged In Failed"},
		{"provider failure", errors.New("unavailable"), "Logged In Failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newIdentityEnv(t)
			provider := new(MockIdentityProvider)
			provider.On("SignInWithPassword", ctx, "a@shop.lk", "secret1").Return(nil, tt.signErr)

			svc := NewAuthService(provider, env.repo, sessionTTL, zaptest.NewLogger(t))
			_, err := svc.Login(ctx, LoginRequest{Email: "a@shop.lk", Password: "secret1"})
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.ErrorIs(t, err, shared.ErrUnauthorized)
		})
	}

	t.Run("form validation happens before sign-in", func(t *testing.T) {
		env := newIdentityEnv(t)
		provider := new(MockIdentityProvider)
		svc := NewAuthService(provider, env.repo, sessionTTL, zaptest.NewLogger(t))

		_, err := svc.Login(ctx, LoginRequest{Email: "not-an-email", Password: "secret1"})
		assert.EqualError(t, err, "Invalid email")
		_, err = svc.Login(ctx, LoginRequest{Email: "a@shop.lk", Password: "12345"})
		assert.EqualError(t, err, "Password length should be more than 6 characters")
		provider.AssertNotCalled(t, "SignInWithPassword", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	env := newIdentityEnv(t)
	env.seedAdmin(t, "admin", false)

	provider := new(MockIdentityProvider)
	provider.On("VerifySession", ctx, "good").Return(&auth.Session{UID: "admin"}, nil)
	provider.On("VerifySession", ctx, "orphan").Return(&auth.Session{UID: "gone"}, nil)
	provider.On("VerifySession", ctx, "expired").Return(nil, auth.ErrInvalidSession)
	svc := NewAuthService(provider, env.repo, sessionTTL, zaptest.NewLogger(t))

	p, err := svc.Authenticate(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, Principal{UID: "admin", SuperAdmin: false}, *p)

	_, err = svc.Authenticate(ctx, "orphan")
	assert.ErrorIs(t, err, shared.ErrAccessDenied)

	_, err = svc.Authenticate(ctx, "expired")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	_, err = svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	env := newIdentityEnv(t)

	provider := new(MockSessionProvider)
	provider.On("VerifySession", ctx, "session").Return(&auth.Session{UID: "admin"}, nil)
	provider.On("VerifySession", ctx, "junk").Return(nil, auth.ErrInvalidSession)
	provider.On("RevokeSession", ctx, "session").Return(nil)
	svc := NewAuthService(provider, env.repo, sessionTTL, zaptest.NewLogger(t))

	require.NoError(t, svc.Logout(ctx, "session"))
	require.NoError(t, svc.Logout(ctx, "junk"))
	require.NoError(t, svc.Logout(ctx, ""))
	provider.AssertNumberOfCalls(t, "RevokeSession", 1)
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	provider := new(MockIdentityProvider)
	provider.On("GetUser", ctx, "admin").Return(&auth.Identity{UID: "admin", Email: "a@shop.lk", DisplayName: "Asha"}, nil)
	provider.On("GetUser", ctx, "ghost").Return(nil, auth.ErrIdentityNotFound)
	svc := NewAuthService(provider, newIdentityEnv(t).repo, sessionTTL, zaptest.NewLogger(t))

	me, err := svc.Me(ctx, Principal{UID: "admin", SuperAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, "Asha", me.DisplayName)
	assert.True(t, me.SuperAdmin)

	ghost, err := svc.Me(ctx, Principal{UID: "ghost"})
	require.NoError(t, err)
	assert.Empty(t, ghost.Email)
}

var super = Principal{UID: "root", SuperAdmin: true}

func TestAdminService_Create(t *testing.T) {
	ctx := context.Background()
	req := CreateAdminRequest{DisplayName: "Nuwan", Email: "n@shop.lk", Password: "secret1", SuperAdmin: false}

	t.Run("creates account and admin record", func(t *testing.T) {
		env := newIdentityEnv(t)
		provider := new(MockIdentityProvider)
		provider.On("CreateUser", mock.Anything, auth.NewIdentity{Email: "n@shop.lk", Password: "secret1", DisplayName: "Nuwan"}).
			Return(&auth.Identity{UID: "new", Email: "n@shop.lk", DisplayName: "Nuwan"}, nil)

		got, err := NewAdminService(provider, env.repo, zaptest.NewLogger(t)).Create(ctx, super, req)
		require.NoError(t, err)
		assert.Equal(t, "new", got.ID)

		exists, err := env.repo.Exists(ctx, "new")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("existing email reuses the account", func(t *testing.T) {
		env := newIdentityEnv(t)
		provider := new(MockIdentityProvider)
		provider.On("CreateUser", mock.Anything, mock.Anything).Return(nil, auth.ErrEmailExists)
		provider.On("GetUserByEmail", mock.Anything, "n@shop.lk").Return(&auth.Identity{UID: "existing", Email: "n@shop.lk"}, nil)

		got, err := NewAdminService(provider, env.repo, zaptest.NewLogger(t)).Create(ctx, super, req)
		require.NoError(t, err)
		assert.Equal(t, "existing", got.ID)
	})

	t.Run("regular admins are rejected", func(t *testing.T) {
		provider := new(MockIdentityProvider)
		_, err := NewAdminService(provider, newIdentityEnv(t).repo, zaptest.NewLogger(t)).Create(ctx, Principal{UID: "x"}, req)
		assert.ErrorIs(t, err, shared.ErrForbidden)
		provider.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("short password", func(t *testing.T) {
		bad := req
		bad.Password = "123"
		_, err := NewAdminService(new(MockIdentityProvider), newIdentityEnv(t).repo, zaptest.NewLogger(t)).Create(ctx, super, bad)
		assert.EqualError(t, err, "Password length should be more than 6 characters")
	})
}

func TestAdminService_ListResolvesIdentities(t *testing.T) {
	ctx := context.Background()
	env := newIdentityEnv(t)
	env.seedAdmin(t, "a", true)
	env.seedAdmin(t, "b", false)

	provider := new(MockIdentityProvider)
	provider.On("GetUser", mock.Anything, "a").Return(&auth.Identity{UID: "a", Email: "a@shop.lk", DisplayName: "A"}, nil)
	provider.On("GetUser", mock.Anything, "b").Return(nil, auth.ErrIdentityNotFound)

	got, err := NewAdminService(provider, env.repo, zaptest.NewLogger(t)).List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	byID := map[string]AdminResponse{}
	for _, a := range got {
		byID[a.ID] = a
	}
	assert.Equal(t, "a@shop.lk", byID["a"].Email)
	assert.True(t, byID["a"].SuperAdmin)
	assert.Empty(t, byID["b"].Email)
}

func TestAdminService_PrivilegedOperations(t *testing.T) {
	ctx := context.Background()
	env := newIdentityEnv(t)
	env.seedAdmin(t, "a", false)

	provider := new(MockIdentityProvider)
	provider.On("GetUser", mock.Anything, "a").Return(&auth.Identity{UID: "a"}, nil)
	provider.On("UpdatePassword", mock.Anything, "a", "newpass").Return(nil)
	provider.On("DeleteUser", mock.Anything, "a").Return(nil)
	svc := NewAdminService(provider, env.repo, zaptest.NewLogger(t))

	updated, err := svc.UpdateSuperAdmin(ctx, super, "a", true)
	require.NoError(t, err)
	assert.True(t, updated.SuperAdmin)

	assert.EqualError(t, svc.ChangePassword(ctx, super, "a", "short"), "Password length should be more than 6 characters")
	require.NoError(t, svc.ChangePassword(ctx, super, "a", "newpass"))
	assert.ErrorIs(t, svc.ChangePassword(ctx, super, "missing", "newpass"), shared.ErrNotFound)

	regular := Principal{UID: "b"}
	assert.ErrorIs(t, svc.Delete(ctx, regular, "a"), shared.ErrForbidden)
	_, err = svc.UpdateSuperAdmin(ctx, regular, "a", false)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, super, "a"))
	exists, err := env.repo.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, exists)
	provider.AssertExpectations(t)
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	store := docstore.NewMemoryStore(logger)
	t.Cleanup(func() { _ = store.Close() })
	objects := storage.NewMemoryObjectStorage("http://files.test")
	resolver := persistence.NewReferenceResolver(store, objects, logger)

	svc := NewUserService(
		persistence.NewDocUserRepository(store, logger),
		persistence.NewDocOrderRepository(store, logger),
		persistence.NewDocProductRepository(store, resolver, logger),
		logger,
	)

	require.NoError(t, store.Set(ctx, persistence.CollectionUsers, "u1", map[string]any{"username": "nimal", "userStatus": true}))
	require.NoError(t, store.Set(ctx, persistence.CollectionUsers, "u2", map[string]any{"username": "kamal", "userStatus": false}))
	require.NoError(t, store.Set(ctx, persistence.CollectionProducts, "p1", map[string]any{"name": "Lamp", "price": 10}))
	require.NoError(t, store.Set(ctx, "users/u1/favorites", "p1", map[string]any{}))
	require.NoError(t, store.Set(ctx, "users/u1/favorites", "deleted", map[string]any{}))
	require.NoError(t, store.Set(ctx, persistence.CollectionOrders, "o1", map[string]any{
		"orderId": "1001", "orderStatus": "Pending", "orderDate": time.Now(), "totalPaid": 10, "userId": "u1",
	}))
	require.NoError(t, store.Set(ctx, persistence.CollectionOrders, "o2", map[string]any{
		"orderId": "1002", "orderStatus": "Pending", "orderDate": time.Now(), "totalPaid": 10, "userId": "u2",
	}))

	t.Run("list and search", func(t *testing.T) {
		all, err := svc.List(ctx, UserListFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		online, err := svc.List(ctx, UserListFilter{OnlineOnly: true})
		require.NoError(t, err)
		require.Len(t, online, 1)
		assert.Equal(t, "nimal", online[0].Username)

		found, err := svc.List(ctx, UserListFilter{Search: "kamal"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "u2", found[0].ID)
	})

	t.Run("orders of a user", func(t *testing.T) {
		orders, err := svc.Orders(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "1001", orders[0].OrderNumber)
	})

	t.Run("favourites skip deleted products", func(t *testing.T) {
		favs, err := svc.Favorites(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, favs, 1)
		assert.Equal(t, "Lamp", favs[0].Name)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Orders(ctx, "nobody")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
