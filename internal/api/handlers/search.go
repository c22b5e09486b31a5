package handlers

import (
	stderrors "errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/filter"
	"github.com/jafarshop/storefront/pkg/errors"
)

type facetsResponse struct {
	Categories []filter.CategoryFacet `json:"categories"`
	Sizes      []string               `json:"sizes"`
	Brands     []string               `json:"brands"`
	Colors     []string               `json:"colors"`
}

// SearchResponse is the body of GET /v1/search
type SearchResponse struct {
	Query       string                  `json:"query"`
	Sort        domain.SortKey          `json:"sort"`
	Products    []domain.ProductSummary `json:"products"`
	Total       int                     `json:"total"`
	ResultCount int                     `json:"resultCount"`
	PriceBounds filter.PriceRange       `json:"priceBounds"`
	Facets      facetsResponse          `json:"facets"`
	Warning     string                  `json:"warning,omitempty"`
}

// HandleSearch handles GET /v1/search.
// Query parameters: q, sort, categories, brands, colors, sizes (repeated or comma separated),
// minPrice, maxPrice, discount, country.
// Facets are derived from the unfiltered result set so that options do not vanish while filtering.
// Changing only filters or sort reuses the session's last result for the same query.
func HandleSearch(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
			return
		}

		query := strings.TrimSpace(c.Query("q"))
		cfg, err := parseConfiguration(c)
		if err != nil {
			bindError(c, err)
			return
		}

		resp := SearchResponse{Query: query, Sort: cfg.SortKey}
		products, cached := session.Searcher.Current(query)
		if !cached {
			products, err = session.Searcher.Search(c.Request.Context(), query)
		}
		if err != nil {
			var superseded *errors.ErrSuperseded
			if stderrors.As(err, &superseded) {
				respondError(c, err, logger)
				return
			}
			// an upstream failure is shown as an empty result, not an error page
			resp.Warning = "search is temporarily unavailable"
			products = nil
		}

		visible := cfg.Apply(products)
		if visible == nil {
			visible = []domain.ProductSummary{}
		}
		resp.Products = visible
		resp.Total = len(products)
		resp.ResultCount = len(visible)
		resp.PriceBounds = filter.PriceBounds(products)
		resp.Facets = facetsResponse{
			Categories: filter.DeriveAvailableCategories(products),
			Sizes:      filter.DeriveAvailableSizes(products),
			Brands:     filter.DeriveAvailableBrands(products),
			Colors:     filter.DeriveAvailableColors(products),
		}
		c.JSON(http.StatusOK, resp)
	}
}

// HandleListCategories handles GET /v1/categories
func HandleListCategories(catalog ProductCatalog, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := catalog.ListCategories(c.Request.Context())
		if err != nil {
			respondError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": categories})
	}
}

// HandleListBrands handles GET /v1/brands
func HandleListBrands(catalog ProductCatalog, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		brands, err := catalog.ListBrands(c.Request.Context())
		if err != nil {
			respondError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": brands})
	}
}

func parseConfiguration(c *gin.Context) (filter.Configuration, error) {
	cfg := filter.Configuration{
		Filters: filter.Filters{
			Categories: queryList(c, "categories"),
			Brands:     queryList(c, "brands"),
			Colors:     queryList(c, "colors"),
			Sizes:      queryList(c, "sizes"),
			Country:    domain.ParseCountry(c.Query("country")),
		},
		SortKey: domain.ParseSortKey(c.Query("sort")),
	}

	minPrice, hasMin, err := queryFloat(c, "minPrice")
	if err != nil {
		return cfg, err
	}
	maxPrice, hasMax, err := queryFloat(c, "maxPrice")
	if err != nil {
		return cfg, err
	}
	if hasMin || hasMax {
		cfg.Filters.PriceRange = filter.PriceRange{Min: minPrice, Max: maxPrice, Bounded: true}
		if !hasMax {
			cfg.Filters.PriceRange.Max = math.MaxFloat64
		}
	}
	if cfg.Filters.DiscountMinPercent, _, err = queryFloat(c, "discount"); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// queryFloat parses an optional finite number
func queryFloat(c *gin.Context, key string) (float64, bool, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("%s must be a finite number", key)
	}
	return f, true, nil
}

// queryList accepts ?k=a&k=b as well as ?k=a,b
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
