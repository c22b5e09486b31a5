package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/handlers"
	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/checkout"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, sessions *service.SessionRegistry, catalog handlers.ProductCatalog, checkouts *checkout.Service, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Storefront Session API",
			"endpoints": []string{
				"GET /health",
				"GET /v1/cart",
				"POST /v1/cart/items",
				"GET /v1/search",
				"GET /v1/wishlist",
				"POST /v1/checkout",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		// Catalog facets are shared by every session
		v1.GET("/categories", handlers.HandleListCategories(catalog, logger))
		v1.GET("/brands", handlers.HandleListBrands(catalog, logger))

		sessionRoutes := v1.Group("")
		sessionRoutes.Use(middleware.SessionMiddleware(sessions, logger))
		{
			sessionRoutes.GET("/cart", handlers.HandleGetCart(logger))
			sessionRoutes.DELETE("/cart", handlers.HandleClearCart(logger))
			sessionRoutes.POST("/cart/items", handlers.HandleAddToCart(catalog, logger))
			sessionRoutes.DELETE("/cart/items", handlers.HandleRemoveFromCart(logger))
			sessionRoutes.PATCH("/cart/items/quantity", handlers.HandleUpdateQuantity(logger))
			sessionRoutes.PATCH("/cart/items/size", handlers.HandleUpdateSize(logger))
			sessionRoutes.PATCH("/cart/items/color", handlers.HandleUpdateColor(logger))
			sessionRoutes.POST("/cart/items/increment", handlers.HandleIncrement(logger))
			sessionRoutes.POST("/cart/items/decrement", handlers.HandleDecrement(logger))
			sessionRoutes.POST("/cart/items/toggle", handlers.HandleToggleSelection(logger))
			sessionRoutes.POST("/cart/select-all", handlers.HandleSelectAll(logger))

			sessionRoutes.GET("/wishlist", handlers.HandleGetWishlist(logger))
			sessionRoutes.POST("/wishlist/toggle", handlers.HandleToggleWishlist(catalog, logger))
			sessionRoutes.DELETE("/wishlist/:productId", handlers.HandleRemoveFromWishlist(logger))

			sessionRoutes.GET("/search", handlers.HandleSearch(logger))
			sessionRoutes.POST("/checkout", middleware.IdempotencyMiddleware(logger), handlers.HandleCheckout(checkouts, logger))
		}
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("session_id", c.Writer.Header().Get(middleware.SessionHeader)),
		)
	}
}
