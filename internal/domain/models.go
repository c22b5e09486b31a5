package domain

import "time"

// CategoryRef is the category a product is listed under
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Variant is one size of a product with its stock count
type Variant struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ProductSummary is the typed view of a backend product record.
// Raw catalog JSON is narrowed into this shape before it reaches the cart or the filter pipeline.
type ProductSummary struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Brand         string       `json:"brand,omitempty"`
	Description   string       `json:"description,omitempty"`
	Image         string       `json:"image,omitempty"`
	Price         float64      `json:"price"`
	OriginalPrice float64      `json:"originalPrice,omitempty"`
	Discount      float64      `json:"discount,omitempty"` // percent, 0-100
	Category      *CategoryRef `json:"category,omitempty"`
	Colors        []string     `json:"colors,omitempty"`
	Sizes         []string     `json:"sizes,omitempty"`
	Variants      []Variant    `json:"variants,omitempty"`
	MaxStock      int          `json:"maxStock,omitempty"`
}

// VariantStockMap returns size -> stock count for the product's variants
func (p ProductSummary) VariantStockMap() map[string]int {
	if len(p.Variants) == 0 {
		return nil
	}
	m := make(map[string]int, len(p.Variants))
	for _, v := range p.Variants {
		m[v.Name] = v.Quantity
	}
	return m
}

// LineKey is the identity tuple of a cart line item
type LineKey struct {
	ProductID string
	Size      string
	Color     string
}

// CartLineItem is one entry in the cart
type CartLineItem struct {
	ProductID         string         `json:"productId"`
	SelectedSize      string         `json:"selectedSize,omitempty"`
	SelectedColor     string         `json:"selectedColor,omitempty"`
	Quantity          int            `json:"quantity"`
	UnitPrice         float64        `json:"unitPrice"`
	OriginalUnitPrice float64        `json:"originalUnitPrice,omitempty"`
	DiscountPercent   float64        `json:"discountPercent,omitempty"`
	Selected          bool           `json:"selected"`
	AvailableSizes    []string       `json:"availableSizes,omitempty"`
	VariantStockMap   map[string]int `json:"variantStockMap,omitempty"`
	MaxStock          int            `json:"maxStock,omitempty"`
	Name              string         `json:"name,omitempty"`
	Brand             string         `json:"brand,omitempty"`
	Image             string         `json:"image,omitempty"`
}

// Key returns the identity tuple of the line item
func (i CartLineItem) Key() LineKey {
	return LineKey{ProductID: i.ProductID, Size: i.SelectedSize, Color: i.SelectedColor}
}

// WishlistItem is a saved product
type WishlistItem struct {
	ProductID string    `json:"productId"`
	Name      string    `json:"name,omitempty"`
	Brand     string    `json:"brand,omitempty"`
	Image     string    `json:"image,omitempty"`
	Price     float64   `json:"price"`
	AddedAt   time.Time `json:"addedAt"`
}
