package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/EgehanKilicarslan/recipe-api/internal/database/models"
	"github.com/EgehanKilicarslan/recipe-api/internal/handler"
	"github.com/EgehanKilicarslan/recipe-api/internal/middleware"
)

const tokenScope = "token"

// Handlers groups the HTTP handlers mounted by SetupRouter
type Handlers struct {
	Users       *handler.UserHandler
	Auth        *handler.AuthHandler
	Recipes     *handler.RecipeHandler
	Tags        *handler.AttributeHandler[models.Tag]
	Ingredients *handler.AttributeHandler[models.Ingredient]
}

// Options configures the parts of the router that vary per deployment
type Options struct {
	// TokenLimiter throttles POST /api/user/token per client IP.
	TokenLimiter middleware.RateLimiter
	// MediaRoot is served under MediaURL when images are kept on disk.
	MediaRoot string
	MediaURL  string
	// Ready reports whether the database answers; nil means always ready.
	Ready func(ctx context.Context) error
}

func SetupRouter(h Handlers, auth *middleware.AuthMiddleware, opts Options, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.SetTrustedProxies(nil)
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.Metrics())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method \"" + c.Request.Method + "\" not allowed."})
	})

	if opts.TokenLimiter == nil {
		opts.TokenLimiter = middleware.NewNoOpRateLimiter(logger)
	}

	// Public routes
	r.GET("/api/health", func(c *gin.Context) {
		if opts.Ready != nil {
			if err := opts.Ready(c.Request.Context()); err != nil {
				logger.Warn("⚠️ [Health] Database not ready", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if opts.MediaRoot != "" && opts.MediaURL != "" {
		r.Static(opts.MediaURL, opts.MediaRoot)
	}

	requireAuth := auth.RequireAuth()

	// User routes
	user := r.Group("/api/user")
	{
		user.POST("/create", h.Users.Create)
		user.POST("/token", middleware.RateLimit(opts.TokenLimiter, tokenScope, logger), h.Auth.CreateToken)
		user.DELETE("/token", requireAuth, h.Auth.RevokeToken)

		me := user.Group("/me", requireAuth)
		me.GET("", h.Users.Me)
		me.PUT("", h.Users.UpdateMe)
		me.PATCH("", h.Users.UpdateMe)
	}

	// Recipe routes (owner scoped)
	recipe := r.Group("/api/recipe", requireAuth)
	{
		recipe.GET("/recipes", h.Recipes.List)
		recipe.POST("/recipes", h.Recipes.Create)
		recipe.GET("/recipes/:id", h.Recipes.Get)
		recipe.PUT("/recipes/:id", h.Recipes.Update)
		recipe.PATCH("/recipes/:id", h.Recipes.Update)
		recipe.DELETE("/recipes/:id", h.Recipes.Delete)
		recipe.POST("/recipes/:id/upload-image", h.Recipes.UploadImage)

		recipe.GET("/tags", h.Tags.List)
		recipe.GET("/tags/:id", h.Tags.Get)
		recipe.PUT("/tags/:id", h.Tags.Update)
		recipe.PATCH("/tags/:id", h.Tags.Update)
		recipe.DELETE("/tags/:id", h.Tags.Delete)

		recipe.GET("/ingredients", h.Ingredients.List)
		recipe.GET("/ingredients/:id", h.Ingredients.Get)
		recipe.PUT("/ingredients/:id", h.Ingredients.Update)
		recipe.PATCH("/ingredients/:id", h.Ingredients.Update)
		recipe.DELETE("/ingredients/:id", h.Ingredients.Delete)
	}

	return r
}
