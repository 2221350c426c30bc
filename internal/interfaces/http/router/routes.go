package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storeadmin/backend/internal/interfaces/http/handler"
)

// Handlers are the endpoint handlers of the admin API
type Handlers struct {
	System    *handler.SystemHandler
	Auth      *handler.AuthHandler
	Category  *handler.CategoryHandler
	Brand     *handler.BrandHandler
	Product   *handler.ProductHandler
	Order     *handler.OrderHandler
	User      *handler.UserHandler
	Admin     *handler.AdminHandler
	Dashboard *handler.DashboardHandler
	Analytics *handler.AnalyticsHandler
	Live      *handler.LiveHandler
}

// Guards are the per-route middleware
type Guards struct {
	// Session requires a signed-in admin
	Session gin.HandlerFunc
	// SuperAdmin requires the super admin flag, after Session
	SuperAdmin gin.HandlerFunc
	// LoginLimit is the stricter rate limit of the login form
	LoginLimit gin.HandlerFunc
	// AfterSession runs after Session on every protected route
	AfterSession []gin.HandlerFunc
}

func (g Guards) protected(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, 1+len(g.AfterSession)+len(handlers))
	chain = append(chain, g.Session)
	chain = append(chain, g.AfterSession...)
	return append(chain, handlers...)
}

// Register mounts /health and every domain group of the admin API.
// Everything except /health and /auth/login requires a session.
func Register(r *Router, h Handlers, g Guards) {
	r.engine.GET("/health", h.System.Health)

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/login", g.LoginLimit, h.Auth.Login)
	auth.POST("/logout", g.protected(h.Auth.Logout)...)
	auth.GET("/me", g.protected(h.Auth.Me)...)

	categories := NewDomainGroup("categories", "/categories").Use(g.protected()...)
	categories.GET("", h.Category.List).
		GET("/:id", h.Category.Get).
		POST("", h.Category.Create).
		PUT("/:id", h.Category.Update).
		DELETE("/:id", h.Category.Delete)

	brands := NewDomainGroup("brands", "/brands").Use(g.protected()...)
	brands.GET("", h.Brand.List).
		GET("/:id", h.Brand.Get).
		POST("", h.Brand.Create).
		PUT("/:id", h.Brand.Update).
		DELETE("/:id", h.Brand.Delete)

	products := NewDomainGroup("products", "/products").Use(g.protected()...)
	products.GET("", h.Product.List).
		GET("/export", h.Product.Export).
		GET("/:id", h.Product.Get).
		POST("", h.Product.Create).
		PUT("/:id", h.Product.Update).
		DELETE("/:id", h.Product.Delete)

	orders := NewDomainGroup("orders", "/orders").Use(g.protected()...)
	orders.GET("", h.Order.List).
		GET("/export", h.Order.Export).
		GET("/:id", h.Order.Get).
		GET("/:id/live", h.Order.Live).
		POST("/:id/advance", h.Order.Advance).
		POST("/:id/cancel", h.Order.Cancel)

	users := NewDomainGroup("users", "/users").Use(g.protected()...)
	users.GET("", h.User.List).
		GET("/:id", h.User.Get).
		GET("/:id/orders", h.User.Orders).
		GET("/:id/favorites", h.User.Favorites)

	admins := NewDomainGroup("admins", "/admins").Use(g.protected()...)
	admins.GET("", h.Admin.List).
		GET("/:id", h.Admin.Get).
		POST("", g.SuperAdmin, h.Admin.Create).
		PATCH("/:id", g.SuperAdmin, h.Admin.Update).
		PUT("/:id/password", g.SuperAdmin, h.Admin.ChangePassword).
		DELETE("/:id", g.SuperAdmin, h.Admin.Delete)

	dashboard := NewDomainGroup("dashboard", "/dashboard").Use(g.protected()...)
	dashboard.GET("/overview", h.Dashboard.Overview).
		GET("/pending-orders", h.Dashboard.PendingOrders).
		GET("/online-users", h.Dashboard.OnlineUsers).
		GET("/revenue", h.Dashboard.Revenue).
		GET("/revenue/live", h.Dashboard.RevenueLive)
	dashboard.Group("package", "/package").
		GET("", h.Dashboard.Package).
		POST("", h.Dashboard.UploadPackage).
		DELETE("", h.Dashboard.RemovePackage)

	analytics := NewDomainGroup("analytics", "/analytics").Use(g.protected()...)
	analytics.GET("/total-users", h.Analytics.TotalUsers()).
		GET("/page-views", h.Analytics.PageViews()).
		GET("/user-engagement-duration", h.Analytics.UserEngagementDuration()).
		GET("/users-by-country", h.Analytics.UsersByCountry()).
		GET("/users-by-platform", h.Analytics.UsersByPlatform())

	liveGroup := NewDomainGroup("live", "/live").Use(g.protected()...)
	liveGroup.GET("/ws", h.Live.Serve)

	r.Register(auth).
		Register(categories).
		Register(brands).
		Register(products).
		Register(orders).
		Register(users).
		Register(admins).
		Register(dashboard).
		Register(analytics).
		Register(liveGroup)
	r.Setup()
}
