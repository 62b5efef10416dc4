// Package pricing computes cart and order totals. Every function is pure;
// amounts are int64 cents and tax rates are basis points (10% = 1000).
package pricing

import (
	"context"

	"shopcore/internal/domain"
)

// CouponResolver turns an opaque coupon code into a discount amount for the
// given cart. Implementations fail with *domain.InvalidCouponError when the
// code does not apply.
type CouponResolver interface {
	ResolveDiscount(ctx context.Context, code string, cart *domain.Cart) (int64, error)
}

// LineTotal is unit price times quantity minus the per-line discount,
// floored at zero.
func LineTotal(unitPriceCents int64, quantity int, discountCents int64) int64 {
	total := unitPriceCents*int64(quantity) - discountCents
	if total < 0 {
		return 0
	}
	return total
}

// CartSubtotal sums the line totals of a cart's items.
func CartSubtotal(items []domain.CartItem) int64 {
	var sum int64
	for _, it := range items {
		sum += LineTotal(it.UnitPriceCents, it.Quantity, 0)
	}
	return sum
}

// OrderSubtotal sums the line totals of an order's item snapshots.
func OrderSubtotal(items []domain.OrderItem) int64 {
	var sum int64
	for _, it := range items {
		sum += LineTotal(it.UnitPriceCents, it.Quantity, it.DiscountCents)
	}
	return sum
}

// BasisPoints applies bp basis points to amountCents, rounding half-up to
// the nearest cent.
func BasisPoints(amountCents, bp int64) int64 {
	if amountCents <= 0 || bp <= 0 {
		return 0
	}
	return (amountCents*bp + 5_000) / 10_000
}

// Tax computes the tax on a subtotal at rateBP basis points.
func Tax(subtotalCents, rateBP int64) int64 {
	return BasisPoints(subtotalCents, rateBP)
}

// Total combines all charge and discount components, floored at zero.
func Total(subtotal, tax, shipping, discount, couponDiscount int64) int64 {
	total := subtotal + tax + shipping - discount - couponDiscount
	if total < 0 {
		return 0
	}
	return total
}
