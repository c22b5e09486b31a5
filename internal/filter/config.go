package filter

import (
	"math"

	"github.com/jafarshop/storefront/internal/domain"
)

// PriceRange is an inclusive [Min, Max] bound. The zero value means the full range;
// set Bounded to make {0, 0} mean "free items only".
type PriceRange struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Bounded bool    `json:"bounded,omitempty"`
}

func (r PriceRange) IsZero() bool {
	return r.Min == 0 && r.Max == 0 && !r.Bounded
}

func (r PriceRange) Contains(price float64) bool {
	if r.IsZero() {
		return true
	}
	return price >= r.Min && price <= r.Max
}

// Filters are the search page's filter dimensions. Dimensions are ANDed together;
// values within one dimension are ORed. An empty dimension does not constrain.
type Filters struct {
	Categories         []string       `json:"categories,omitempty"`
	Brands             []string       `json:"brands,omitempty"`
	PriceRange         PriceRange     `json:"priceRange"`
	Colors             []string       `json:"colors,omitempty"`
	Sizes              []string       `json:"sizes,omitempty"`
	DiscountMinPercent float64        `json:"discountMinPercent,omitempty"`
	Country            domain.Country `json:"country"`
}

// Configuration is the page-local filter state plus the selected ordering
type Configuration struct {
	Filters
	SortKey domain.SortKey `json:"sortKey"`
}

// Defaults returns the configuration shown before the shopper touches any filter
func Defaults(bounds PriceRange) Configuration {
	return Configuration{
		Filters: Filters{
			PriceRange: bounds,
			Country:    domain.CountryAll,
		},
		SortKey: domain.SortRecommended,
	}
}

// Clear resets every filter and the ordering ("clear all")
func (c *Configuration) Clear(bounds PriceRange) {
	*c = Defaults(bounds)
}

// Apply runs the pipeline with this configuration
func (c Configuration) Apply(products []domain.ProductSummary) []domain.ProductSummary {
	return DeriveVisibleProducts(products, c.Filters, c.SortKey)
}

// PriceBounds is the smallest range covering every product's price
func PriceBounds(products []domain.ProductSummary) PriceRange {
	if len(products) == 0 {
		return PriceRange{}
	}
	r := PriceRange{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, p := range products {
		r.Min = math.Min(r.Min, p.Price)
		r.Max = math.Max(r.Max, p.Price)
	}
	return r
}
