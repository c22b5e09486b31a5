package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/middleware"
)

type ToggleWishlistRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// HandleGetWishlist handles GET /v1/wishlist
func HandleGetWishlist(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"items": session.Wishlist.Items(),
			"count": session.Wishlist.Count(),
		})
	}
}

// HandleToggleWishlist handles POST /v1/wishlist/toggle
func HandleToggleWishlist(catalog ProductCatalog, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
			return
		}

		var req ToggleWishlistRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		// removing needs no catalog round trip
		if session.Wishlist.Contains(req.ProductID) {
			session.Wishlist.Remove(req.ProductID)
			c.JSON(http.StatusOK, gin.H{"added": false, "count": session.Wishlist.Count()})
			return
		}

		product, err := catalog.GetProduct(c.Request.Context(), req.ProductID)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		added := session.Wishlist.Toggle(product)
		c.JSON(http.StatusOK, gin.H{"added": added, "count": session.Wishlist.Count()})
	}
}

// HandleRemoveFromWishlist handles DELETE /v1/wishlist/:productId
func HandleRemoveFromWishlist(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
			return
		}
		session.Wishlist.Remove(c.Param("productId"))
		c.JSON(http.StatusOK, gin.H{
			"items": session.Wishlist.Items(),
			"count": session.Wishlist.Count(),
		})
	}
}
