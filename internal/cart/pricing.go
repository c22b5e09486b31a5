package cart

import (
	"github.com/shopspring/decimal"

	"github.com/jafarshop/storefront/internal/domain"
)

// Aggregates are summed in decimal so that e.g. 3 x 33.3 is 99.9 and not 99.89999999999999.

func lineAmount(price float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
}

func subtotal(items []domain.CartLineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		if it.Selected {
			sum = sum.Add(lineAmount(it.UnitPrice, it.Quantity))
		}
	}
	return sum
}

func mrpTotal(items []domain.CartLineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		if !it.Selected {
			continue
		}
		price := it.UnitPrice
		if it.OriginalUnitPrice > price {
			price = it.OriginalUnitPrice
		}
		sum = sum.Add(lineAmount(price, it.Quantity))
	}
	return sum
}

func total(items []domain.CartLineItem, deliveryFee float64) decimal.Decimal {
	return subtotal(items).Add(decimal.NewFromFloat(deliveryFee))
}

func selectedCount(items []domain.CartLineItem) int {
	n := 0
	for _, it := range items {
		if it.Selected {
			n += it.Quantity
		}
	}
	return n
}

func cartCount(items []domain.CartLineItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func allSelected(items []domain.CartLineItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if !it.Selected {
			return false
		}
	}
	return true
}
