package catalog

import (
	"math"
	"strconv"
	"strings"

	"github.com/jafarshop/storefront/internal/domain"
)

// NarrowProduct turns a loosely typed backend product record into a ProductSummary.
// It reports false when the record has no usable id.
//
// retails_price is the list price. When discount (percent) is set, Price is the
// discounted price rounded to whole Taka and OriginalPrice keeps the list price.
func NarrowProduct(raw map[string]interface{}, imageBaseURL string) (domain.ProductSummary, bool) {
	id := getID(raw, "id")
	if id == "" {
		return domain.ProductSummary{}, false
	}

	p := domain.ProductSummary{
		ID:          id,
		Name:        firstStr(raw, "name", "title"),
		Description: firstStr(raw, "description", "short_description"),
		Brand:       brandName(raw),
		Category:    categoryRef(raw),
		Image:       imageURL(raw, imageBaseURL),
	}

	listPrice, _ := firstNum(raw, "retails_price", "price")
	if listPrice < 0 || math.IsNaN(listPrice) || math.IsInf(listPrice, 0) {
		listPrice = 0
	}
	discount, _ := firstNum(raw, "discount")
	if math.IsNaN(discount) {
		discount = 0
	}
	discount = math.Max(0, math.Min(100, discount))
	p.Discount = discount
	p.Price = listPrice
	if discount > 0 {
		p.OriginalPrice = listPrice
		p.Price = math.Round(listPrice * (100 - discount) / 100)
	}

	p.Variants = variants(raw)
	seen := map[string]bool{}
	for _, v := range p.Variants {
		if !seen[v.Name] {
			seen[v.Name] = true
			p.Sizes = append(p.Sizes, v.Name)
		}
	}
	for _, s := range strList(raw["sizes"]) {
		if !seen[s] {
			seen[s] = true
			p.Sizes = append(p.Sizes, s)
		}
	}

	if c := getStr(raw, "color"); c != "" {
		p.Colors = append(p.Colors, c)
	}
	p.Colors = append(p.Colors, strList(raw["colors"])...)

	if n, ok := firstNum(raw, "quantity", "stock"); ok && n > 0 {
		p.MaxStock = int(n)
	} else {
		for _, v := range p.Variants {
			p.MaxStock += v.Quantity
		}
	}
	return p, true
}

// variants reads product_variants [{name, quantity}] or the legacy items [{size, quantity}]
func variants(raw map[string]interface{}) []domain.Variant {
	var out []domain.Variant
	if list, ok := raw["product_variants"].([]interface{}); ok && len(list) > 0 {
		for _, v := range list {
			vm, _ := v.(map[string]interface{})
			name := firstStr(vm, "name", "size")
			if name == "" {
				continue
			}
			qty, _ := firstNum(vm, "quantity")
			out = append(out, domain.Variant{Name: name, Quantity: int(math.Max(0, qty))})
		}
		return out
	}
	if list, ok := raw["items"].([]interface{}); ok {
		for _, v := range list {
			vm, _ := v.(map[string]interface{})
			name := firstStr(vm, "size", "name")
			if name == "" {
				continue
			}
			qty, _ := firstNum(vm, "quantity")
			out = append(out, domain.Variant{Name: name, Quantity: int(math.Max(0, qty))})
		}
	}
	return out
}

func brandName(raw map[string]interface{}) string {
	switch b := raw["brand"].(type) {
	case string:
		return strings.TrimSpace(b)
	case map[string]interface{}:
		return firstStr(b, "name", "title")
	}
	return getStr(raw, "brand_name")
}

func categoryRef(raw map[string]interface{}) *domain.CategoryRef {
	switch c := raw["category"].(type) {
	case map[string]interface{}:
		if id := getID(c, "id"); id != "" {
			return &domain.CategoryRef{ID: id, Name: firstStr(c, "name", "title")}
		}
	case string:
		if id := getID(raw, "category_id"); id != "" && c != "" {
			return &domain.CategoryRef{ID: id, Name: c}
		}
	}
	if id := getID(raw, "category_id"); id != "" {
		return &domain.CategoryRef{ID: id, Name: getStr(raw, "category_name")}
	}
	return nil
}

func imageURL(raw map[string]interface{}, base string) string {
	path := firstStr(raw, "image_path", "image")
	if path == "" {
		for _, key := range []string{"image_paths", "images"} {
			if list := strList(raw[key]); len(list) > 0 {
				path = list[0]
				break
			}
		}
	}
	if path == "" || base == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}

// getID reads an identifier that may be a JSON number or a string
func getID(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func getStr(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func firstStr(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s := getStr(m, k); s != "" {
			return s
		}
	}
	return ""
}

// firstNum reads the first key holding a number or a numeric string
func firstNum(m map[string]interface{}, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func strList(v interface{}) []string {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		switch s := item.(type) {
		case string:
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		case map[string]interface{}:
			if name := firstStr(s, "path", "url", "name"); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}
