package catalog

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.CatalogConfig{
		BaseURL:      srv.URL,
		APIKey:       "secret",
		ImageBaseURL: "https://cdn.example.com/",
		Timeout:      5 * time.Second,
		CacheTTL:     time.Minute,
	}, nil)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestClient_Search(t *testing.T) {
	t.Run("narrows products from a bare array", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search", r.URL.Path)
			assert.Equal(t, "panjabi", r.URL.Query().Get("query"))
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"data": []interface{}{
					map[string]interface{}{"id": 7, "name": "Panjabi", "retails_price": 2000, "discount": 10, "image_path": "p/7.jpg"},
					map[string]interface{}{"name": "no id"},
				},
			})
		})

		products, err := c.Search(context.Background(), "panjabi")
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "7", products[0].ID)
		assert.Equal(t, 1800.0, products[0].Price)
		assert.Equal(t, 2000.0, products[0].OriginalPrice)
		assert.Equal(t, "https://cdn.example.com/p/7.jpg", products[0].Image)
	})

	t.Run("accepts a wrapped list", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"data":    map[string]interface{}{"products": []interface{}{map[string]interface{}{"id": "a"}}},
			})
		})

		products, err := c.Search(context.Background(), "x")
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "a", products[0].ID)
	})

	t.Run("success false is an upstream error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "message": "search disabled"})
		})

		_, err := c.Search(context.Background(), "x")
		var ue *errors.ErrUpstream
		require.True(t, stderrors.As(err, &ue))
		assert.Equal(t, "search disabled", ue.Message)
	})

	t.Run("non-2xx is an upstream error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := c.Search(context.Background(), "x")
		var ue *errors.ErrUpstream
		require.True(t, stderrors.As(err, &ue))
		assert.Equal(t, http.StatusBadGateway, ue.Status)
	})
}

func TestClient_GetProduct_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/42", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetProduct(context.Background(), "42")
	var nf *errors.ErrNotFound
	require.True(t, stderrors.As(err, &nf))
	assert.Equal(t, "42", nf.ID)
}

func TestClient_ListCategories_Cached(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    []interface{}{map[string]interface{}{"id": 1, "name": "Men"}, map[string]interface{}{"name": "orphan"}},
		})
	})

	for i := 0; i < 3; i++ {
		cats, err := c.ListCategories(context.Background())
		require.NoError(t, err)
		require.Len(t, cats, 1)
		assert.Equal(t, "Men", cats[0].Name)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	require.NoError(t, c.RefreshFacets(context.Background()))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_SubmitOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ref-1", body["reference"])
		writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "data": map[string]interface{}{"order_id": 99}})
	})

	data, err := c.SubmitOrder(context.Background(), map[string]string{"reference": "ref-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"order_id":99}`, string(data))
}

func TestDecodeList(t *testing.T) {
	list, err := decodeList(json.RawMessage(`null`), "data")
	require.NoError(t, err)
	assert.Nil(t, list)

	list, err = decodeList(json.RawMessage(`{"data":{"products":[{"id":1}]}}`), "products", "data")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = decodeList(json.RawMessage(`"nope"`), "data")
	assert.Error(t, err)
}
