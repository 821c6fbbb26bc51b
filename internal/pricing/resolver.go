// Package pricing resolves a product's displayed price from its discount
// windows at read time. All functions are pure: same inputs and the same
// instant always produce the same price. Order-time price snapshots are a
// separate code path and never go through this package, so catalog price
// changes cannot retroactively alter placed orders.
package pricing

import (
	"math"
	"sort"
	"time"

	"storefront-be/internal/discount"
)

// EffectiveDiscount returns the discount in effect at now, or nil.
// When several windows overlap, the one with the lowest id wins; no stacking.
func EffectiveDiscount(discounts []discount.Discount, now time.Time) *discount.Discount {
	if len(discounts) == 0 {
		return nil
	}

	sorted := make([]discount.Discount, len(discounts))
	copy(sorted, discounts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID.String() < sorted[j].ID.String()
	})

	for i := range sorted {
		if sorted[i].InEffect(now) {
			return &sorted[i]
		}
	}
	return nil
}

// DiscountedPrice applies the effective discount to the list price, rounded
// to the catalog's currency precision. Without an effective discount the
// list price is returned unchanged.
func DiscountedPrice(price float64, discounts []discount.Discount, now time.Time) float64 {
	d := EffectiveDiscount(discounts, now)
	if d == nil {
		return price
	}
	return RoundCurrency(price - price*(d.Percentage/100))
}

// DiscountPercentage returns the effective discount's percentage, or zero.
func DiscountPercentage(discounts []discount.Discount, now time.Time) float64 {
	d := EffectiveDiscount(discounts, now)
	if d == nil {
		return 0
	}
	return d.Percentage
}

// RoundCurrency rounds to two decimal places.
func RoundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}
