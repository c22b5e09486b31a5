package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/domain"
)

func TestNarrowProduct(t *testing.T) {
	t.Run("missing id is rejected", func(t *testing.T) {
		_, ok := NarrowProduct(map[string]interface{}{"name": "x"}, "")
		assert.False(t, ok)
	})

	t.Run("full record", func(t *testing.T) {
		raw := map[string]interface{}{
			"id":            float64(12),
			"name":          " Cotton Saree ",
			"description":   "Handwoven in Bangladesh",
			"brand":         map[string]interface{}{"name": "Aarong"},
			"category":      map[string]interface{}{"id": float64(3), "name": "Women"},
			"retails_price": "1500",
			"discount":      float64(20),
			"image_path":    "/img/12.jpg",
			"color":         "Red",
			"colors":        []interface{}{"Blue"},
			"product_variants": []interface{}{
				map[string]interface{}{"name": "M", "quantity": float64(2)},
				map[string]interface{}{"name": "L", "quantity": float64(3)},
			},
			"sizes": []interface{}{"M", "XL"},
		}

		p, ok := NarrowProduct(raw, "https://cdn.example.com")
		require.True(t, ok)
		assert.Equal(t, "12", p.ID)
		assert.Equal(t, "Cotton Saree", p.Name)
		assert.Equal(t, "Aarong", p.Brand)
		assert.Equal(t, &domain.CategoryRef{ID: "3", Name: "Women"}, p.Category)
		assert.Equal(t, 1200.0, p.Price)
		assert.Equal(t, 1500.0, p.OriginalPrice)
		assert.Equal(t, 20.0, p.Discount)
		assert.Equal(t, "https://cdn.example.com/img/12.jpg", p.Image)
		assert.Equal(t, []string{"Red", "Blue"}, p.Colors)
		assert.Equal(t, []string{"M", "L", "XL"}, p.Sizes)
		assert.Equal(t, 5, p.MaxStock)
		assert.Equal(t, map[string]int{"M": 2, "L": 3}, p.VariantStockMap())
	})

	t.Run("no discount keeps list price", func(t *testing.T) {
		p, ok := NarrowProduct(map[string]interface{}{"id": "a", "price": float64(999), "quantity": float64(4)}, "")
		require.True(t, ok)
		assert.Equal(t, 999.0, p.Price)
		assert.Zero(t, p.OriginalPrice)
		assert.Equal(t, 4, p.MaxStock)
	})

	t.Run("bad numbers are zeroed", func(t *testing.T) {
		p, ok := NarrowProduct(map[string]interface{}{"id": "a", "retails_price": float64(-5), "discount": "NaN"}, "")
		require.True(t, ok)
		assert.Zero(t, p.Price)
		assert.Zero(t, p.Discount)
		assert.False(t, math.IsNaN(p.Discount))
	})

	t.Run("legacy items and category id", func(t *testing.T) {
		raw := map[string]interface{}{
			"id":            "b",
			"brand_name":    "Yellow",
			"category_id":   float64(9),
			"category_name": "Kids",
			"images":        []interface{}{map[string]interface{}{"url": "https://img/x.png"}},
			"items":         []interface{}{map[string]interface{}{"size": "S", "quantity": float64(1)}},
		}
		p, ok := NarrowProduct(raw, "https://cdn.example.com")
		require.True(t, ok)
		assert.Equal(t, "Yellow", p.Brand)
		assert.Equal(t, &domain.CategoryRef{ID: "9", Name: "Kids"}, p.Category)
		assert.Equal(t, "https://img/x.png", p.Image)
		assert.Equal(t, []string{"S"}, p.Sizes)
		assert.Equal(t, 1, p.MaxStock)
	})
}
