package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storeadmin/backend/internal/application/live"
	"github.com/storeadmin/backend/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("items", "/items")
	ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
	g.GET("", ok).POST("", ok).PUT("/:id", ok).PATCH("/:id", ok).DELETE("/:id", ok)
	g.RegisterRoutes(engine.Group("/api/v1"))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/items"},
		{http.MethodPost, "/api/v1/items"},
		{http.MethodPut, "/api/v1/items/1"},
		{http.MethodPatch, "/api/v1/items/1"},
		{http.MethodDelete, "/api/v1/items/1"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.method, w.Body.String())
		})
	}
	assert.Equal(t, 5, g.RouteCount())
}

func TestDomainGroup_MiddlewareAndSubgroups(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("dashboard", "/dashboard").Use(func(c *gin.Context) {
		c.Header("X-Guard", "on")
		c.Next()
	})
	g.GET("/overview", func(c *gin.Context) { c.Status(http.StatusOK) })
	g.Group("package", "/package").GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	g.RegisterRoutes(engine.Group("/api/v1"))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/package", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "on", w.Header().Get("X-Guard"))
	assert.Equal(t, 2, g.RouteCount())
}

// routeTestHandlers builds handlers without services. Requests in these
// tests stop at a guard, so no service is ever called.
func routeTestHandlers() Handlers {
	return Handlers{
		System:    handler.NewSystemHandler("store-admin", "test", nil),
		Auth:      handler.NewAuthHandler(nil, nil),
		Category:  handler.NewCategoryHandler(nil),
		Brand:     handler.NewBrandHandler(nil),
		Product:   handler.NewProductHandler(nil),
		Order:     handler.NewOrderHandler(nil, 0),
		User:      handler.NewUserHandler(nil),
		Admin:     handler.NewAdminHandler(nil),
		Dashboard: handler.NewDashboardHandler(nil, nil, 0),
		Analytics: handler.NewAnalyticsHandler(nil),
		Live:      handler.NewLiveHandler(handler.LiveSources{}, nil, live.WithDebounce(0)),
	}
}

func TestRegister_Guards(t *testing.T) {
	engine := gin.New()
	deny := func(status int) gin.HandlerFunc {
		return func(c *gin.Context) { c.AbortWithStatus(status) }
	}
	Register(NewRouter(engine), routeTestHandlers(), Guards{
		Session:    deny(http.StatusUnauthorized),
		SuperAdmin: deny(http.StatusForbidden),
		LoginLimit: deny(http.StatusTooManyRequests),
	})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodPost, "/api/v1/auth/login", http.StatusTooManyRequests},
		{http.MethodGet, "/api/v1/auth/me", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/auth/logout", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/categories", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/brands/b1", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/products/export", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/orders/o1/live", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/orders/o1/advance", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/users/u1/favorites", http.StatusUnauthorized},
		{http.MethodDelete, "/api/v1/admins/a1", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/dashboard/revenue/live", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/dashboard/package", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/analytics/users-by-platform", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/live/ws", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRegister_SuperAdminRoutes(t *testing.T) {
	engine := gin.New()
	pass := func(c *gin.Context) { c.Next() }
	Register(NewRouter(engine), routeTestHandlers(), Guards{
		Session:    pass,
		SuperAdmin: func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) },
		LoginLimit: pass,
	})

	for _, tt := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/admins"},
		{http.MethodPatch, "/api/v1/admins/a1"},
		{http.MethodPut, "/api/v1/admins/a1/password"},
		{http.MethodDelete, "/api/v1/admins/a1"},
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, http.StatusForbidden, w.Code, tt.path)
	}
}

func TestRouter_RoutesMatchEngine(t *testing.T) {
	engine := gin.New()
	pass := func(c *gin.Context) { c.Next() }
	r := NewRouter(engine)
	Register(r, routeTestHandlers(), Guards{Session: pass, SuperAdmin: pass, LoginLimit: pass})

	mounted := map[string]bool{}
	for _, info := range engine.Routes() {
		mounted[info.Method+" "+info.Path] = true
	}
	routes := r.Routes()
	assert.Len(t, routes, len(mounted)-1, "every route except /health belongs to a domain group")
	for _, route := range routes {
		assert.True(t, mounted[route.Method+" "+route.Path], route.Path)
	}
	assert.Contains(t, routes, RouteInfo{Group: "package", Method: http.MethodDelete, Path: "/api/v1/dashboard/package"})
	assert.Contains(t, routes, RouteInfo{Group: "auth", Method: http.MethodPost, Path: "/api/v1/auth/login"})
}
