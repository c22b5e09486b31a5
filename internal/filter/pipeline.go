package filter

import (
	"sort"
	"strings"

	"github.com/jafarshop/storefront/internal/domain"
)

// CategoryFacet is one entry of the category filter with the number of products in it
type CategoryFacet struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DeriveVisibleProducts filters products and orders the survivors by sortKey.
// The input slice is not modified.
func DeriveVisibleProducts(products []domain.ProductSummary, filters Filters, sortKey domain.SortKey) []domain.ProductSummary {
	visible := make([]domain.ProductSummary, 0, len(products))
	for _, p := range products {
		if matches(p, filters) {
			visible = append(visible, p)
		}
	}

	switch sortKey {
	case domain.SortPriceLow:
		sort.SliceStable(visible, func(i, j int) bool { return visible[i].Price < visible[j].Price })
	case domain.SortPriceHigh:
		sort.SliceStable(visible, func(i, j int) bool { return visible[i].Price > visible[j].Price })
	case domain.SortNewest:
		// backend order is oldest first; there is no timestamp to sort on
		for i, j := 0, len(visible)-1; i < j; i, j = i+1, j-1 {
			visible[i], visible[j] = visible[j], visible[i]
		}
	}
	return visible
}

func matches(p domain.ProductSummary, f Filters) bool {
	if len(f.Categories) > 0 {
		if p.Category == nil || !containsExact(f.Categories, p.Category.ID) {
			return false
		}
	}
	if len(f.Brands) > 0 && !containsFold(f.Brands, p.Brand) {
		return false
	}
	if !f.PriceRange.Contains(p.Price) {
		return false
	}
	if len(f.Colors) > 0 && !anyFold(p.Colors, f.Colors) {
		return false
	}
	if len(f.Sizes) > 0 && !anyExact(p.Sizes, f.Sizes) {
		return false
	}
	if f.DiscountMinPercent > 0 && p.Discount < f.DiscountMinPercent {
		return false
	}
	if f.Country == domain.CountryBangladesh && !madeInBangladesh(p) {
		return false
	}
	return true
}

// madeInBangladesh is a text heuristic; the catalog has no origin field
func madeInBangladesh(p domain.ProductSummary) bool {
	return strings.Contains(strings.ToLower(p.Description), "bangladesh") ||
		strings.Contains(strings.ToLower(p.Name), "bangladesh")
}

// DeriveAvailableCategories lists each distinct (id, name) category in order of first appearance.
// Products without a category are skipped.
func DeriveAvailableCategories(products []domain.ProductSummary) []CategoryFacet {
	var facets []CategoryFacet
	index := map[domain.CategoryRef]int{}
	for _, p := range products {
		if p.Category == nil {
			continue
		}
		key := *p.Category
		if i, ok := index[key]; ok {
			facets[i].Count++
			continue
		}
		index[key] = len(facets)
		facets = append(facets, CategoryFacet{ID: key.ID, Name: key.Name, Count: 1})
	}
	return facets
}

// DeriveAvailableSizes is the sorted set of sizes across all products
func DeriveAvailableSizes(products []domain.ProductSummary) []string {
	seen := map[string]bool{}
	var sizes []string
	for _, p := range products {
		for _, s := range p.Sizes {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			sizes = append(sizes, s)
		}
	}
	sort.Strings(sizes)
	return sizes
}

// DeriveAvailableBrands is the sorted set of brands, compared case-insensitively
func DeriveAvailableBrands(products []domain.ProductSummary) []string {
	values := make([][]string, 0, len(products))
	for _, p := range products {
		values = append(values, []string{p.Brand})
	}
	return distinctFold(values)
}

// DeriveAvailableColors is the sorted set of colors, compared case-insensitively
func DeriveAvailableColors(products []domain.ProductSummary) []string {
	values := make([][]string, 0, len(products))
	for _, p := range products {
		values = append(values, p.Colors)
	}
	return distinctFold(values)
}

func distinctFold(groups [][]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, g := range groups {
		for _, v := range g {
			v = strings.TrimSpace(v)
			k := strings.ToLower(v)
			if v == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}

func containsExact(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func containsFold(values []string, v string) bool {
	for _, x := range values {
		if strings.EqualFold(x, v) {
			return true
		}
	}
	return false
}

func anyExact(have, want []string) bool {
	for _, h := range have {
		if containsExact(want, h) {
			return true
		}
	}
	return false
}

func anyFold(have, want []string) bool {
	for _, h := range have {
		if containsFold(want, h) {
			return true
		}
	}
	return false
}
