package domain

import "strings"

// SortKey is the ordering applied to a visible product listing
type SortKey string

// SortRecommended keeps the order the backend returned. SortNewest reverses it,
// since the backend lists oldest first.
const (
	SortRecommended SortKey = "recommended"
	SortNewest      SortKey = "newest"
	SortPriceLow    SortKey = "price-low"
	SortPriceHigh   SortKey = "price-high"
)

// IsValid checks if the sort key is known
func (k SortKey) IsValid() bool {
	switch k {
	case SortRecommended, SortNewest, SortPriceLow, SortPriceHigh:
		return true
	default:
		return false
	}
}

// ParseSortKey maps a query value to a SortKey; unknown values fall back to recommended
func ParseSortKey(s string) SortKey {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return SortRecommended
	}
	return k
}

// Country is the origin filter shown on the search page
type Country string

const (
	CountryAll        Country = "all"
	CountryBangladesh Country = "bangladesh"
)

// IsValid checks if the country is known
func (c Country) IsValid() bool {
	return c == CountryAll || c == CountryBangladesh
}

// ParseCountry maps a query value to a Country; unknown values fall back to all
func ParseCountry(s string) Country {
	c := Country(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return CountryAll
	}
	return c
}
