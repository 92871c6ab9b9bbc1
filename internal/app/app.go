// Package app wires configuration, storage, services and the HTTP server
// together and runs them until shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/recipe-api/internal/api"
	"github.com/EgehanKilicarslan/recipe-api/internal/config"
	"github.com/EgehanKilicarslan/recipe-api/internal/database"
	"github.com/EgehanKilicarslan/recipe-api/internal/database/repository"
	"github.com/EgehanKilicarslan/recipe-api/internal/database/service"
	"github.com/EgehanKilicarslan/recipe-api/internal/handler"
	"github.com/EgehanKilicarslan/recipe-api/internal/middleware"
	"github.com/EgehanKilicarslan/recipe-api/internal/storage"
	"github.com/EgehanKilicarslan/recipe-api/internal/worker"
)

// App is a fully wired API server
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
	redis  *redis.Client
	pool   *worker.Pool
	auth   service.AuthService
	server *http.Server
}

// New builds the application on an open, migrated database. A Redis
// connection failure downgrades token throttling to the in-process limiter.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *slog.Logger) (*App, error) {
	images, err := storage.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up media storage: %w", err)
	}

	store := repository.NewStore(db)
	pool := worker.NewPool(logger)

	authService := service.NewAuthService(store, cfg, logger)
	userService := service.NewUserService(store, logger)
	recipeService := service.NewRecipeService(store, images, pool, logger)

	a := &App{
		cfg:    cfg,
		logger: logger,
		db:     db,
		pool:   pool,
		auth:   authService,
	}

	opts := api.Options{
		TokenLimiter: a.tokenLimiter(ctx),
		Ready:        func(ctx context.Context) error { return database.Ping(ctx, db) },
	}
	if local, ok := images.(*storage.LocalStore); ok {
		opts.MediaRoot = local.Root()
		opts.MediaURL = cfg.MediaURL
	}

	router := api.SetupRouter(api.Handlers{
		Users:       handler.NewUserHandler(userService, logger),
		Auth:        handler.NewAuthHandler(authService, logger),
		Recipes:     handler.NewRecipeHandler(recipeService, cfg.MaxImageSize, logger),
		Tags:        handler.NewAttributeHandler(service.NewTagService(store, logger), logger),
		Ingredients: handler.NewAttributeHandler(service.NewIngredientService(store, logger), logger),
	}, middleware.NewAuthMiddleware(authService, logger), opts, logger)

	a.server = &http.Server{
		Addr:              ":" + cfg.ApiServicePort,
		Handler:           router,
		ReadHeaderTimeout: config.Seconds(cfg.ReadTimeout),
		ReadTimeout:       config.Seconds(cfg.ReadTimeout),
		WriteTimeout:      config.Seconds(cfg.WriteTimeout),
		IdleTimeout:       2 * config.Seconds(cfg.WriteTimeout),
	}

	return a, nil
}

func (a *App) tokenLimiter(ctx context.Context) middleware.RateLimiter {
	if a.cfg.TokenRateLimit <= 0 {
		return middleware.NewNoOpRateLimiter(a.logger)
	}

	client, err := database.NewRedisClient(ctx, a.cfg, a.logger)
	if err != nil {
		a.logger.Warn("⚠️ [App] Redis unavailable, token throttling is per instance", "error", err)
		return middleware.NewLocalRateLimiter(a.cfg.TokenRateLimit)
	}
	a.redis = client
	return middleware.NewRedisRateLimiter(client, a.cfg.TokenRateLimit, a.logger)
}

// Handler exposes the router, mainly for tests
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves HTTP and the periodic token purge until ctx is cancelled or
// the server fails, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	a.pool.Every("purge-tokens", config.Seconds(a.cfg.TokenPurgeInterval), func(ctx context.Context) error {
		_, err := a.auth.PurgeTokens(ctx)
		return err
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("🌍 [App] HTTP Server running", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown()
	})

	return g.Wait()
}

func (a *App) shutdown() error {
	timeout := config.Seconds(a.cfg.ShutdownTimeout)
	a.logger.Info("🛑 [App] Shutting down", "timeout", timeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)

	a.pool.Shutdown(remaining(shutdownCtx))
	a.Close()

	if err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	a.logger.Info("✅ [App] Stopped gracefully")
	return nil
}

// Close releases the Redis and database connections
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("⚠️ [App] Failed to close Redis", "error", err)
		}
		a.redis = nil
	}
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func remaining(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	if d := time.Until(deadline); d > 0 {
		return d
	}
	return time.Second
}
