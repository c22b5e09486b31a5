package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/middleware"
)

// LineRequest identifies a cart line item
type LineRequest struct {
	ProductID string `json:"productId" form:"productId" binding:"required"`
	Size      string `json:"size" form:"size"`
	Color     string `json:"color" form:"color"`
}

type AddItemRequest struct {
	LineRequest
	Quantity int `json:"quantity"`
}

type UpdateQuantityRequest struct {
	LineRequest
	Quantity int `json:"quantity"`
}

type UpdateSizeRequest struct {
	LineRequest
	NewSize string `json:"newSize" binding:"required"`
}

type UpdateColorRequest struct {
	LineRequest
	NewColor string `json:"newColor" binding:"required"`
}

type SelectAllRequest struct {
	Selected *bool `json:"selected" binding:"required"`
}

// HandleGetCart handles GET /v1/cart
func HandleGetCart(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
			return
		}
		c.JSON(http.StatusOK, session.Cart.Snapshot())
	}
}

// HandleAddToCart handles POST /v1/cart/items. Product details and prices come from the catalog, not the client.
func HandleAddToCart(catalog ProductCatalog, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
			return
		}

		var req AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		product, err := catalog.GetProduct(c.Request.Context(), req.ProductID)
		if err != nil {
			respondError(c, err, logger)
			return
		}

		if err := session.Cart.AddToCart(product, req.Quantity, req.Size, req.Color); err != nil {
			respondError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, session.Cart.Snapshot())
	}
}

// HandleRemoveFromCart handles DELETE /v1/cart/items?productId=&size=&color=
func HandleRemoveFromCart(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
			return
		}

		var req LineRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			bindError(c, err)
			return
		}
		session.Cart.RemoveFromCart(req.ProductID, req.Size, req.Color)
		c.JSON(http.StatusOK, session.Cart.Snapshot())
	}
}

// HandleClearCart handles DELETE /v1/cart
func HandleClearCart(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
			return
		}
		session.Cart.Clear()
		c.JSON(http.StatusOK, session.Cart.Snapshot())
	}
}

// HandleUpdateQuantity handles PATCH /v1/cart/items/quantity; quantity <= 0 removes the line
func HandleUpdateQuantity(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
			return
		}

		var req UpdateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		session.Cart.UpdateQuantity(req.ProductID, req.Quantity, req.Size, req.Color)
		c.JSON(http.StatusOK, session.Cart.Snapshot())
	}
}

// HandleUpdateSize handles PATCH /v1/cart/items/size
func HandleUpdateSize(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
			return
		}

		var req UpdateSizeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		session.Cart.UpdateSize(req.ProductID, req.Size, req.NewSize, req.Color)
		c.JSON(http.StatusOK, session.Cart.Snapshot())
	}
}

// HandleUpdateColor handles PATCH /v1/cart/items/color
func HandleUpdateColor(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
			return
		}

		var req UpdateColorRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		session.Cart.UpdateColor(req.ProductID, req.Size, req.Color, req.NewColor)
		c.JSON(http.StatusOK, session.Cart.Snapshot())
	}
}

// HandleIncrement handles POST /v1/cart/items/increment.
// Reaching the stock ceiling answers 409 with a warning the UI can show as-is.
func HandleIncrement(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
			return
		}

		var req LineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		if err := session.Cart.IncrementQuantity(req.ProductID, req.Size, req.Color); err != nil {
			respondError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, session.Cart.Snapshot())
	}
}

// HandleDecrement handles POST /v1/cart/items/decrement
func HandleDecrement(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
			return
		}

		var req LineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		session.Cart.DecrementQuantity(req.ProductID, req.Size, req.Color)
		c.JSON(http.StatusOK, session.Cart.Snapshot())
	}
}

// HandleToggleSelection handles POST /v1/cart/items/toggle
func HandleToggleSelection(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
			return
		}

		var req LineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		session.Cart.ToggleItemSelection(req.ProductID, req.Size, req.Color)
		c.JSON(http.StatusOK, session.Cart.Snapshot())
	}
}

// HandleSelectAll handles POST /v1/cart/select-all
func HandleSelectAll(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
			return
		}

		var req SelectAllRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		session.Cart.SelectAllItems(*req.Selected)
		c.JSON(http.StatusOK, session.Cart.Snapshot())
	}
}
