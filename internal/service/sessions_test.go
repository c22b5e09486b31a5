package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/storage"
)

type noSearch struct{}

func (noSearch) Search(context.Context, string) ([]domain.ProductSummary, error) { return nil, nil }

func TestSessionRegistry(t *testing.T) {
	factory := storage.NewMemoryFactory()
	r := NewSessionRegistry(factory.Open, noSearch{}, cart.Options{}, nil)

	a := r.Get("a")
	assert.Same(t, a, r.Get("a"))
	assert.NotSame(t, a, r.Get("b"))

	require.NoError(t, a.Cart.AddToCart(domain.ProductSummary{ID: "p1", Price: 100}, 1, "M", ""))
	a.Wishlist.Add(domain.ProductSummary{ID: "p2"})
	assert.Zero(t, r.Get("b").Cart.CartCount())

	t.Run("evicted session is rehydrated from storage", func(t *testing.T) {
		now := time.Now()
		r.now = func() time.Time { return now }
		r.Get("b")

		now = now.Add(time.Hour)
		r.Get("b")
		assert.Equal(t, 1, r.EvictIdle(30*time.Minute))
		assert.Equal(t, 1, r.Len())

		reopened := r.Get("a")
		assert.NotSame(t, a, reopened)
		assert.Equal(t, 1, reopened.Cart.CartCount())
		assert.True(t, reopened.Wishlist.Contains("p2"))
		assert.Equal(t, 1, factory.Len(), "session b never stored anything")
	})
}
