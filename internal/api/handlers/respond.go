package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

// ProductCatalog is the part of the catalog client the handlers use
type ProductCatalog interface {
	GetProduct(ctx context.Context, id string) (domain.ProductSummary, error)
	ListCategories(ctx context.Context) ([]domain.CategoryRef, error)
	ListBrands(ctx context.Context) ([]string, error)
	SubmitOrder(ctx context.Context, payload interface{}) (json.RawMessage, error)
}

// respondError maps the typed errors to HTTP statuses
func respondError(c *gin.Context, err error, logger *zap.Logger) {
	var (
		validation *errors.ErrValidation
		notFound   *errors.ErrNotFound
		stock      *errors.ErrStockLimit
		upstream   *errors.ErrUpstream
		superseded *errors.ErrSuperseded
	)

	switch {
	case stderrors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   validation.Error(),
			"details": validation.Fields,
		})
	case stderrors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case stderrors.As(err, &stock):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "stock limit reached",
			"warning": stock.Error(),
			"limit":   stock.Limit,
		})
	case stderrors.As(err, &superseded):
		c.JSON(http.StatusConflict, gin.H{"error": superseded.Error()})
	case stderrors.As(err, &upstream):
		logger.Warn("Catalog API error", zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
	default:
		logger.Error("Request failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":   "validation failed",
		"details": err.Error(),
	})
}
