package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuantity indicates a non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrEmptyCart indicates a checkout attempt on a cart with no items.
	ErrEmptyCart = errors.New("cannot create an order from an empty cart")
	// ErrCartNotActive indicates a mutation on a cart that is no longer active.
	ErrCartNotActive = errors.New("cart is not active")
)

// InsufficientStockError carries requested vs. available quantities so the
// caller can react without parsing free text.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// CartFullError indicates the distinct-product limit for a cart was reached.
type CartFullError struct {
	Limit int
}

func (e *CartFullError) Error() string {
	return fmt.Sprintf("cart is full: at most %d distinct products allowed", e.Limit)
}

// InvalidCouponError indicates a coupon code that does not resolve to a discount.
type InvalidCouponError struct {
	Code   string
	Reason string
}

func (e *InvalidCouponError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid coupon %q", e.Code)
	}
	return fmt.Sprintf("invalid coupon %q: %s", e.Code, e.Reason)
}

// IllegalTransitionError names the current and attempted order states.
type IllegalTransitionError struct {
	Current   OrderStatus
	Attempted OrderStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal order transition: %s -> %s", e.Current, e.Attempted)
}
