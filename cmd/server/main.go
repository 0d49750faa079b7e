package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appcatalog "github.com/karobar/backend/internal/application/catalog"
	appordering "github.com/karobar/backend/internal/application/ordering"
	apporg "github.com/karobar/backend/internal/application/org"
	apppartner "github.com/karobar/backend/internal/application/partner"
	apptreasury "github.com/karobar/backend/internal/application/treasury"
	"github.com/karobar/backend/internal/domain/shared"
	"github.com/karobar/backend/internal/infrastructure/auth"
	"github.com/karobar/backend/internal/infrastructure/cache"
	"github.com/karobar/backend/internal/infrastructure/config"
	"github.com/karobar/backend/internal/infrastructure/logger"
	"github.com/karobar/backend/internal/infrastructure/persistence"
	"github.com/karobar/backend/internal/interfaces/http/dto"
	"github.com/karobar/backend/internal/interfaces/http/handler"
	"github.com/karobar/backend/internal/interfaces/http/middleware"
	"github.com/karobar/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	idempotencyStore := newIdempotencyStore(cfg, log)
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Failed to close idempotency store", zap.Error(err))
		}
	}()

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	entityRepo := persistence.NewGormEntityRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)
	txRunner := persistence.NewGormTransactionRunner(db.DB)

	// Application services
	draftService := appordering.NewDraftService(settingsRepo, accountRepo, productRepo)
	orderService := appordering.NewOrderService(
		draftService, orderRepo, accountRepo, transactionRepo,
		entityRepo, productRepo, txRunner, idempotencyStore, log,
	)
	sweepService := apptreasury.NewSweepService(
		orderRepo, accountRepo, transactionRepo, entityRepo,
		txRunner, idempotencyStore, log,
	)
	accountService := apptreasury.NewAccountService(accountRepo, transactionRepo, txRunner)
	entityService := apppartner.NewEntityService(entityRepo)
	productService := appcatalog.NewProductService(productRepo)
	settingsService := apporg.NewSettingsService(settingsRepo)

	jwtService := auth.NewJWTService(cfg.JWT)

	if err := dto.RegisterValidators(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	// HTTP engine and middleware
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(corsConfig),
		middleware.JWTWithConfig(middleware.JWTMiddlewareConfig{
			JWTService: jwtService,
			SkipPaths:  []string{"/health", "/api/v1/system/ping", "/api/v1/system/info"},
		}),
	)

	engine.GET("/health", healthHandler(db))

	// Routes
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewSystemHandler(cfg.App.Name, version)).
		Register(handler.NewDraftHandler(draftService)).
		Register(handler.NewOrderHandler(orderService)).
		Register(handler.NewAccountHandler(accountService, sweepService)).
		Register(handler.NewEntityHandler(entityService, orderService)).
		Register(handler.NewProductHandler(productService)).
		Register(handler.NewSettingsHandler(settingsService)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}

// newIdempotencyStore connects to Redis, falling back to the in-memory
// store when Redis is unreachable. The fallback keeps single-instance
// deployments working without a Redis dependency.
func newIdempotencyStore(cfg *config.Config, log *zap.Logger) shared.IdempotencyStore {
	store, err := cache.NewRedisIdempotencyStore(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory idempotency store",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Error(err),
		)
		return cache.NewInMemoryIdempotencyStore()
	}
	log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr()))
	return store
}

// healthHandler reports readiness, including database connectivity
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}
