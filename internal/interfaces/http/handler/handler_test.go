package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcatalog "github.com/storeadmin/backend/internal/application/catalog"
	appidentity "github.com/storeadmin/backend/internal/application/identity"
	appreport "github.com/storeadmin/backend/internal/application/report"
	apptrade "github.com/storeadmin/backend/internal/application/trade"
	"github.com/storeadmin/backend/internal/infrastructure/auth"
	"github.com/storeadmin/backend/internal/infrastructure/config"
	"github.com/storeadmin/backend/internal/infrastructure/docstore"
	"github.com/storeadmin/backend/internal/infrastructure/event"
	"github.com/storeadmin/backend/internal/infrastructure/persistence"
	"github.com/storeadmin/backend/internal/infrastructure/storage"
	"github.com/storeadmin/backend/internal/interfaces/http/dto"
	"github.com/storeadmin/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testPassword = "secret1"

// testEnv wires the handlers to in-memory backends and a local identity
// provider on an in-memory sqlite database.
type testEnv struct {
	store    *docstore.MemoryStore
	objects  *storage.MemoryObjectStorage
	provider *auth.LocalProvider
	cookie   *auth.SessionCookie
	engine   *gin.Engine

	authService  *appidentity.AuthService
	orderService *apptrade.OrderService
	heartbeat    time.Duration
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zaptest.NewLogger(t)

	store := docstore.NewMemoryStore(logger)
	t.Cleanup(func() { _ = store.Close() })
	objects := storage.NewMemoryObjectStorage("http://files.test")

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
	}, nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	tokens := auth.NewTokenService(config.JWTConfig{
		Secret:            "test-secret-with-enough-length-123456",
		Issuer:            "storeadmin-test",
		SessionExpiration: time.Hour,
	})
	provider := auth.NewLocalProvider(
		persistence.NewGormCredentialRepository(db.DB),
		tokens,
		auth.NewInMemoryRevocationList(),
		logger,
		auth.WithBcryptCost(bcrypt.MinCost),
	)

	cookie, err := auth.NewSessionCookie(config.CookieConfig{
		Name:    "session",
		HashKey: "0123456789abcdef0123456789abcdef",
		MaxAge:  time.Hour,
	})
	require.NoError(t, err)

	bus := event.NewInMemoryEventBus(logger)
	resolver := persistence.NewReferenceResolver(store, objects, logger)
	categoryRepo := persistence.NewDocCategoryRepository(store, resolver, logger)
	brandRepo := persistence.NewDocBrandRepository(store, logger)
	productRepo := persistence.NewDocProductRepository(store, resolver, logger)
	userRepo := persistence.NewDocUserRepository(store, logger)
	adminRepo := persistence.NewDocAdminRepository(store, logger)
	orderRepo := persistence.NewDocOrderRepository(store, logger)
	packageRepo := persistence.NewDocPackageRepository(store)

	authService := appidentity.NewAuthService(provider, adminRepo, time.Hour, logger)
	categoryService := appcatalog.NewCategoryService(categoryRepo, objects, logger)
	brandService := appcatalog.NewBrandService(brandRepo)
	productService := appcatalog.NewProductService(productRepo, objects, bus, logger)
	orderService := apptrade.NewOrderService(orderRepo, productRepo, userRepo, bus, logger)
	userService := appidentity.NewUserService(userRepo, orderRepo, productRepo, logger)
	adminService := appidentity.NewAdminService(provider, adminRepo, logger)
	dashboardService := appreport.NewDashboardService(orderRepo, productRepo, userRepo, logger)
	packageService := appreport.NewPackageService(objects, packageRepo, logger)

	env := &testEnv{
		store:        store,
		objects:      objects,
		provider:     provider,
		cookie:       cookie,
		authService:  authService,
		orderService: orderService,
		heartbeat:    20 * time.Millisecond,
	}

	authH := NewAuthHandler(authService, cookie)
	categoryH := NewCategoryHandler(categoryService)
	brandH := NewBrandHandler(brandService)
	productH := NewProductHandler(productService)
	orderH := NewOrderHandler(orderService, env.heartbeat)
	userH := NewUserHandler(userService)
	adminH := NewAdminHandler(adminService)
	dashboardH := NewDashboardHandler(dashboardService, packageService, env.heartbeat)
	liveH := NewLiveHandler(LiveSources{
		Categories: categoryService.LiveSource(),
		Brands:     brandService.LiveSource(),
		Products:   productService.LiveSource(),
		Orders:     orderService.LiveSource(),
		Users:      userService.LiveSource(),
	}, []string{"*"})

	engine := gin.New()
	engine.Use(middleware.RequestID())
	session := middleware.Session(authService, cookie)

	engine.POST("/auth/login", authH.Login)
	engine.POST("/auth/logout", authH.Logout)
	engine.GET("/auth/me", session, authH.Me)

	api := engine.Group("", session)
	api.GET("/categories", categoryH.List)
	api.POST("/categories", categoryH.Create)
	api.GET("/categories/:id", categoryH.Get)
	api.DELETE("/categories/:id", categoryH.Delete)
	api.GET("/brands", brandH.List)
	api.POST("/brands", brandH.Create)
	api.GET("/products", productH.List)
	api.POST("/products", productH.Create)
	api.PUT("/products/:id", productH.Update)
	api.GET("/products/export", productH.Export)
	api.GET("/orders", orderH.List)
	api.GET("/orders/export", orderH.Export)
	api.GET("/orders/:id", orderH.Get)
	api.GET("/orders/:id/live", orderH.Live)
	api.POST("/orders/:id/advance", orderH.Advance)
	api.POST("/orders/:id/cancel", orderH.Cancel)
	api.GET("/users/:id/favorites", userH.Favorites)
	api.GET("/admins", adminH.List)
	api.POST("/admins", middleware.RequireSuperAdmin(), adminH.Create)
	api.GET("/dashboard/overview", dashboardH.Overview)
	api.GET("/dashboard/revenue", dashboardH.Revenue)
	api.GET("/dashboard/package", dashboardH.Package)
	api.POST("/dashboard/package", dashboardH.UploadPackage)
	api.DELETE("/dashboard/package", dashboardH.RemovePackage)
	api.GET("/live/ws", liveH.Serve)

	env.engine = engine
	return env
}

// createAdmin registers an account and, when withDoc is set, its admin document
func (e *testEnv) createAdmin(t *testing.T, email string, superAdmin, withDoc bool) string {
	t.Helper()
	ident, err := e.provider.CreateUser(context.Background(), auth.NewIdentity{Email: email, Password: testPassword, DisplayName: "Admin"})
	require.NoError(t, err)
	if withDoc {
		require.NoError(t, e.store.Set(context.Background(), persistence.CollectionAdmins, ident.UID, map[string]any{"superAdmin": superAdmin}))
	}
	return ident.UID
}

// login signs in through the handler and returns the session cookie
func (e *testEnv) login(t *testing.T, email string) *http.Cookie {
	t.Helper()
	w := e.do(jsonRequest(http.MethodPost, "/auth/login", map[string]string{"email": email, "password": testPassword}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == e.cookie.Name() && c.MaxAge >= 0 {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

// signedIn creates a super admin and returns its session cookie
func (e *testEnv) signedIn(t *testing.T) *http.Cookie {
	t.Helper()
	e.createAdmin(t, "root@shop.test", true, true)
	return e.login(t, "root@shop.test")
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doAs(req *http.Request, session *http.Cookie) *httptest.ResponseRecorder {
	if session != nil {
		req.AddCookie(session)
	}
	return e.do(req)
}

func jsonRequest(method, path string, body any) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type formFile struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, method, path string, fields map[string][]string, files ...formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, data any) dto.Response {
	t.Helper()
	var raw struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.Response
}
