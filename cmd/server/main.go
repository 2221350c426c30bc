package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	catalogapp "github.com/storeadmin/backend/internal/application/catalog"
	identityapp "github.com/storeadmin/backend/internal/application/identity"
	reportapp "github.com/storeadmin/backend/internal/application/report"
	tradeapp "github.com/storeadmin/backend/internal/application/trade"
	"github.com/storeadmin/backend/internal/infrastructure/analytics"
	"github.com/storeadmin/backend/internal/infrastructure/auth"
	"github.com/storeadmin/backend/internal/infrastructure/cache"
	"github.com/storeadmin/backend/internal/infrastructure/config"
	"github.com/storeadmin/backend/internal/infrastructure/docstore"
	"github.com/storeadmin/backend/internal/infrastructure/event"
	"github.com/storeadmin/backend/internal/infrastructure/logger"
	"github.com/storeadmin/backend/internal/infrastructure/persistence"
	"github.com/storeadmin/backend/internal/infrastructure/scheduler"
	"github.com/storeadmin/backend/internal/infrastructure/storage"
	"github.com/storeadmin/backend/internal/infrastructure/telemetry"
	"github.com/storeadmin/backend/internal/interfaces/http/handler"
	"github.com/storeadmin/backend/internal/interfaces/http/middleware"
	"github.com/storeadmin/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/storeadmin/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Store Admin API
//	@version		1.0
//	@description	Back office API of the online store: catalog, orders, customers, admins and dashboard.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	SessionCookie
//	@in							cookie
//	@name						session
//	@description				httpOnly session cookie set by POST /auth/login

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting store admin backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	cfg.Telemetry.ServiceVersion = version
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Document database and object storage
	store, err := docstore.New(ctx, &cfg.DocStore, log)
	if err != nil {
		log.Fatal("Failed to open document store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing document store", zap.Error(err))
		}
	}()

	objects, err := storage.New(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	// Redis backs the report cache and session revocations when enabled
	cacheFactory := cache.NewFactory(cfg.Redis, cache.WithLogger(log))
	redisClient, err := cacheFactory.Client(ctx)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient != nil {
		defer func() {
			_ = redisClient.Close()
		}()
	}

	checks := map[string]handler.HealthCheck{}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	provider, closeProvider := newIdentityProvider(ctx, cfg, redisClient, checks, log)
	defer closeProvider()

	// Domain events
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Repositories
	resolver := persistence.NewReferenceResolver(store, objects, log)
	categoryRepo := persistence.NewDocCategoryRepository(store, resolver, log)
	brandRepo := persistence.NewDocBrandRepository(store, log)
	productRepo := persistence.NewDocProductRepository(store, resolver, log)
	userRepo := persistence.NewDocUserRepository(store, log)
	adminRepo := persistence.NewDocAdminRepository(store, log)
	orderRepo := persistence.NewDocOrderRepository(store, log)
	packageRepo := persistence.NewDocPackageRepository(store)

	// Application services
	categoryService := catalogapp.NewCategoryService(categoryRepo, objects, log)
	brandService := catalogapp.NewBrandService(brandRepo)
	productService := catalogapp.NewProductService(productRepo, objects, eventBus, log)
	orderService := tradeapp.NewOrderService(orderRepo, productRepo, userRepo, eventBus, log)
	userService := identityapp.NewUserService(userRepo, orderRepo, productRepo, log)
	authService := identityapp.NewAuthService(provider, adminRepo, cfg.Cookie.MaxAge, log)
	adminService := identityapp.NewAdminService(provider, adminRepo, log)
	dashboardService := reportapp.NewDashboardService(orderRepo, productRepo, userRepo, log)
	packageService := reportapp.NewPackageService(objects, packageRepo, log)

	runner, err := analytics.New(ctx, &cfg.Analytics, log)
	if err != nil {
		log.Fatal("Failed to initialize analytics", zap.Error(err))
	}
	analyticsService := reportapp.NewAnalyticsService(runner, cacheFactory.ReportCache(redisClient), cfg.Analytics, log)

	// Keep the analytics report cache warm
	if cfg.Scheduler.Enabled {
		jobs := scheduler.New(scheduler.Config{
			Enabled:    true,
			JobTimeout: cfg.Scheduler.JobTimeout,
		}, log)
		if err := jobs.Register(cfg.Scheduler.AnalyticsRefreshCron, analyticsService.RefreshJob()); err != nil {
			log.Fatal("Failed to register analytics refresh job", zap.Error(err))
		}
		if err := jobs.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer func() {
			if err := jobs.Stop(context.Background()); err != nil {
				log.Error("Error stopping scheduler", zap.Error(err))
			}
		}()
		log.Info("Scheduler started", zap.String("analytics_refresh", cfg.Scheduler.AnalyticsRefreshCron))
	}

	sessionCookie, err := auth.NewSessionCookie(cfg.Cookie)
	if err != nil {
		log.Fatal("Failed to initialize session cookie", zap.Error(err))
	}

	handlers := router.Handlers{
		System:    handler.NewSystemHandler(cfg.App.Name, version, checks),
		Auth:      handler.NewAuthHandler(authService, sessionCookie),
		Category:  handler.NewCategoryHandler(categoryService),
		Brand:     handler.NewBrandHandler(brandService),
		Product:   handler.NewProductHandler(productService),
		Order:     handler.NewOrderHandler(orderService, cfg.HTTP.SSEHeartbeat),
		User:      handler.NewUserHandler(userService),
		Admin:     handler.NewAdminHandler(adminService),
		Dashboard: handler.NewDashboardHandler(dashboardService, packageService, cfg.HTTP.SSEHeartbeat),
		Analytics: handler.NewAnalyticsHandler(analyticsService),
		Live: handler.NewLiveHandler(handler.LiveSources{
			Categories: categoryService.LiveSource(),
			Brands:     brandService.LiveSource(),
			Products:   productService.LiveSource(),
			Orders:     orderService.LiveSource(),
			Users:      userService.LiveSource(),
		}, cfg.HTTP.CORSAllowOrigins),
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order:
	// RequestID, Recovery, Logger, Tracing, SpanErrorMarker, Security,
	// CORS, BodyLimit, RateLimit, Metrics
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig(cfg.App.IsProduction())))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Limits are shared across instances through Redis when it is enabled
	newLimiter := func(name string, requests int, window time.Duration) middleware.Limiter {
		if redisClient != nil {
			return middleware.NewRedisRateLimiter(redisClient, "ratelimit:"+name, requests, window)
		}
		limiter := middleware.NewRateLimiter(requests, window)
		go limiter.Run(ctx)
		return limiter
	}
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(newLimiter("api", cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
			zap.Bool("shared", redisClient != nil),
		)
	}
	if meterProvider.IsEnabled() {
		engine.Use(middleware.HTTPMetrics(meterProvider, log))
	}

	loginLimit := func(c *gin.Context) { c.Next() }
	if cfg.HTTP.LoginRateLimitEnabled {
		loginLimit = middleware.RateLimit(newLimiter("login", cfg.HTTP.LoginRateLimitRequests, cfg.HTTP.LoginRateLimitWindow))
	}

	if !cfg.App.IsProduction() {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.Register(router.NewRouter(engine, router.WithLogger(log)), handlers, router.Guards{
		Session:      middleware.Session(authService, sessionCookie),
		SuperAdmin:   middleware.RequireSuperAdmin(),
		LoginLimit:   loginLimit,
		AfterSession: []gin.HandlerFunc{middleware.TracingAttributeInjector()},
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
		BaseContext:    func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newIdentityProvider creates the admin identity provider selected by
// cfg.Identity.Driver. The local provider keeps its accounts in the
// database and registers a database health check.
func newIdentityProvider(ctx context.Context, cfg *config.Config, redisClient *redis.Client, checks map[string]handler.HealthCheck, log *zap.Logger) (auth.IdentityProvider, func()) {
	if cfg.Identity.Driver == "firebase" {
		provider, err := auth.NewFirebaseProvider(ctx, &cfg.Identity, log)
		if err != nil {
			log.Fatal("Failed to initialize Firebase identity provider", zap.Error(err))
		}
		return provider, func() {}
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:          cfg.Database.Driver,
		SlowQueryThresh: 200 * time.Millisecond,
	}, log); err != nil {
		log.Warn("Failed to enable database tracing", zap.Error(err))
	}
	checks["database"] = func(context.Context) error {
		return db.Ping()
	}
	log.Info("Identity database connected", zap.String("driver", cfg.Database.Driver))

	var revoked auth.RevocationList = auth.NewInMemoryRevocationList()
	if redisClient != nil {
		revoked = auth.NewRedisRevocationList(redisClient)
	}
	provider := auth.NewLocalProvider(
		persistence.NewGormCredentialRepository(db.DB),
		auth.NewTokenService(cfg.JWT),
		revoked,
		log,
	)
	return provider, func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}
}
