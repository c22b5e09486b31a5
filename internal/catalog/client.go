package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

const (
	categoriesCacheKey = "facets:categories"
	brandsCacheKey     = "facets:brands"
)

// Client calls the backend catalog API
type Client struct {
	baseURL      string
	apiKey       string
	imageBaseURL string
	httpClient   *http.Client
	cache        *Cache
	logger       *zap.Logger
}

// NewClient creates a catalog HTTP client. Categories and brands are cached for cfg.CacheTTL.
func NewClient(cfg config.CatalogConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		imageBaseURL: cfg.ImageBaseURL,
		httpClient:   &http.Client{Timeout: timeout},
		cache:        NewCache(cfg.CacheTTL),
		logger:       logger,
	}
}

// envelope is the {success, data} wrapper every endpoint answers with
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Search runs a product search. Records that cannot be narrowed into a ProductSummary are skipped.
func (c *Client) Search(ctx context.Context, query string) ([]domain.ProductSummary, error) {
	q := url.Values{}
	q.Set("query", query)
	data, err := c.do(ctx, http.MethodGet, "/search", q, nil)
	if err != nil {
		return nil, err
	}
	raws, err := decodeList(data, "products", "data")
	if err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	products := make([]domain.ProductSummary, 0, len(raws))
	for _, raw := range raws {
		p, ok := NarrowProduct(raw, c.imageBaseURL)
		if !ok {
			c.logger.Debug("Skipping product without id", zap.String("query", query))
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// GetProduct fetches a single product
func (c *Client) GetProduct(ctx context.Context, id string) (domain.ProductSummary, error) {
	data, err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, nil)
	if err != nil {
		if ue, ok := err.(*errors.ErrUpstream); ok && ue.Status == http.StatusNotFound {
			return domain.ProductSummary{}, &errors.ErrNotFound{Resource: "product", ID: id}
		}
		return domain.ProductSummary{}, err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return domain.ProductSummary{}, &errors.ErrNotFound{Resource: "product", ID: id}
	}
	p, ok := NarrowProduct(raw, c.imageBaseURL)
	if !ok {
		return domain.ProductSummary{}, &errors.ErrNotFound{Resource: "product", ID: id}
	}
	return p, nil
}

// ListCategories returns the category list, served from cache while fresh
func (c *Client) ListCategories(ctx context.Context) ([]domain.CategoryRef, error) {
	if v, ok := c.cache.GetValue(categoriesCacheKey); ok {
		return v.([]domain.CategoryRef), nil
	}
	return c.fetchCategories(ctx)
}

// ListBrands returns the brand names, served from cache while fresh
func (c *Client) ListBrands(ctx context.Context) ([]string, error) {
	if v, ok := c.cache.GetValue(brandsCacheKey); ok {
		return v.([]string), nil
	}
	return c.fetchBrands(ctx)
}

// RefreshFacets reloads categories and brands into the cache regardless of freshness
func (c *Client) RefreshFacets(ctx context.Context) error {
	if _, err := c.fetchCategories(ctx); err != nil {
		return fmt.Errorf("refresh categories: %w", err)
	}
	if _, err := c.fetchBrands(ctx); err != nil {
		return fmt.Errorf("refresh brands: %w", err)
	}
	return nil
}

// SubmitOrder posts a checkout hand-off payload and returns the backend's data field
func (c *Client) SubmitOrder(ctx context.Context, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, "/orders", nil, body)
}

func (c *Client) fetchCategories(ctx context.Context) ([]domain.CategoryRef, error) {
	data, err := c.do(ctx, http.MethodGet, "/categories", nil, nil)
	if err != nil {
		return nil, err
	}
	raws, err := decodeList(data, "categories", "data")
	if err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	categories := make([]domain.CategoryRef, 0, len(raws))
	for _, raw := range raws {
		id := getID(raw, "id")
		if id == "" {
			continue
		}
		categories = append(categories, domain.CategoryRef{ID: id, Name: firstStr(raw, "name", "title")})
	}
	c.cache.Set(categoriesCacheKey, categories)
	return categories, nil
}

func (c *Client) fetchBrands(ctx context.Context) ([]string, error) {
	data, err := c.do(ctx, http.MethodGet, "/brands", nil, nil)
	if err != nil {
		return nil, err
	}
	raws, err := decodeList(data, "brands", "data")
	if err != nil {
		return nil, fmt.Errorf("decode brands: %w", err)
	}
	brands := make([]string, 0, len(raws))
	for _, raw := range raws {
		if name := firstStr(raw, "name", "title"); name != "" {
			brands = append(brands, name)
		}
	}
	c.cache.Set(brandsCacheKey, brands)
	return brands, nil
}

// do performs the request and unwraps the envelope.
// Non-200 answers and success=false both become *errors.ErrUpstream.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte) (json.RawMessage, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("catalog client not configured: base URL required")
	}
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Catalog request failed", zap.Error(err), zap.String("method", method), zap.String("path", path))
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &errors.ErrUpstream{Status: resp.StatusCode, Message: truncate(string(raw), 200)}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode catalog envelope: %w", err)
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = "success=false"
		}
		return nil, &errors.ErrUpstream{Message: msg}
	}
	return env.Data, nil
}

// decodeList accepts a bare JSON array or an object wrapping the array under one of keys
func decodeList(data json.RawMessage, keys ...string) ([]map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var list []map[string]interface{}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, err
	}
	for _, k := range keys {
		if inner, ok := obj[k]; ok {
			return decodeList(inner, keys...)
		}
	}
	return nil, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
