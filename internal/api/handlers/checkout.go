package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/checkout"
)

// CheckoutRequest is the body of POST /v1/checkout
type CheckoutRequest struct {
	Customer checkout.CustomerInfo    `json:"customer" binding:"required"`
	Shipping checkout.ShippingAddress `json:"shipping" binding:"required"`
}

// HandleCheckout hands the selected cart lines to the backend and removes them from the cart
func HandleCheckout(checkouts *checkout.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
			return
		}

		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		result, err := checkouts.Submit(c.Request.Context(), session.ID, session.Cart, req.Customer, req.Shipping)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"checkout": result,
			"cart":     session.Cart.Snapshot(),
		})
	}
}
