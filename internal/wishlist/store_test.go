package wishlist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/storage"
)

func TestToggle(t *testing.T) {
	s := New(storage.NewMemory(), nil)
	p := domain.ProductSummary{ID: "p1", Name: "Panjabi", Price: 1500}

	assert.True(t, s.Toggle(p))
	assert.True(t, s.Contains("p1"))
	assert.Equal(t, 1, s.Count())

	assert.False(t, s.Toggle(p))
	assert.False(t, s.Contains("p1"))
	assert.Equal(t, 0, s.Count())
}

func TestAddRemove(t *testing.T) {
	s := New(storage.NewMemory(), nil)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.Add(domain.ProductSummary{ID: "p1", Price: 10})
	s.Add(domain.ProductSummary{ID: "p1", Price: 10})
	s.Add(domain.ProductSummary{ID: "p2", Price: 20})
	s.Add(domain.ProductSummary{ID: ""})

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, fixed, items[0].AddedAt)

	s.Remove("p1")
	s.Remove("unknown")
	items = s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ProductID)

	s.Clear()
	assert.Equal(t, 0, s.Count())
}

func TestPersistence(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		ls := storage.NewMemory()
		s := New(ls, nil)
		s.Add(domain.ProductSummary{ID: "p1", Name: "Saree", Price: 3200})

		again := New(ls, nil)
		items := again.Items()
		require.Len(t, items, 1)
		assert.Equal(t, "Saree", items[0].Name)
	})

	t.Run("malformed state is discarded", func(t *testing.T) {
		ls := storage.NewMemory()
		require.NoError(t, ls.SetItem(context.Background(), StorageKey, []byte("oops")))

		s := New(ls, nil)
		assert.Equal(t, 0, s.Count())
	})

	t.Run("duplicate stored ids collapse", func(t *testing.T) {
		ls := storage.NewMemory()
		require.NoError(t, ls.SetItem(context.Background(), StorageKey,
			[]byte(`[{"productId":"p1"},{"productId":"p1"},{"productId":""}]`)))

		s := New(ls, nil)
		assert.Equal(t, 1, s.Count())
	})
}
