package domain

import "time"

type CartStatus string

const (
	CartStatusActive    CartStatus = "ACTIVE"
	CartStatusAbandoned CartStatus = "ABANDONED"
	CartStatusConverted CartStatus = "CONVERTED"
	CartStatusExpired   CartStatus = "EXPIRED"
)

// CartOwner distinguishes an authenticated customer from a guest session.
// Exactly one of the two fields is set.
type CartOwner struct {
	CustomerID *string `json:"customerId,omitempty"`
	GuestToken *string `json:"guestToken,omitempty"`
}

func OwnedByCustomer(customerID string) CartOwner {
	return CartOwner{CustomerID: &customerID}
}

func OwnedByGuest(token string) CartOwner {
	return CartOwner{GuestToken: &token}
}

func (o CartOwner) IsGuest() bool {
	return o.CustomerID == nil
}

type Cart struct {
	ID             string     `json:"id"`
	Owner          CartOwner  `json:"owner"`
	Status         CartStatus `json:"status"`
	Items          []CartItem `json:"items,omitempty"`
	CouponCode     *string    `json:"couponCode,omitempty"`
	DiscountCents  int64      `json:"discountCents"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// CartItem is a value-like line owned by its cart; the unit price is
// captured when the product is first added.
type CartItem struct {
	ProductID      string    `json:"productId"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	AddedAt        time.Time `json:"addedAt"`
}

// Item returns the line for productID, or nil if absent.
func (c *Cart) Item(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// Quantity returns the current quantity of productID, zero if absent.
func (c *Cart) Quantity(productID string) int {
	if item := c.Item(productID); item != nil {
		return item.Quantity
	}
	return 0
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) IsActive() bool {
	return c.Status == CartStatusActive
}

// Upsert merges qty into an existing line or appends a new one. A product
// appears at most once per cart.
func (c *Cart) Upsert(productID string, qty int, unitPriceCents int64, now time.Time) {
	if item := c.Item(productID); item != nil {
		item.Quantity += qty
		return
	}
	c.Items = append(c.Items, CartItem{
		ProductID:      productID,
		Quantity:       qty,
		UnitPriceCents: unitPriceCents,
		AddedAt:        now.UTC(),
	})
}

// SetQuantity replaces the quantity of an existing line; qty of zero removes it.
func (c *Cart) SetQuantity(productID string, qty int) error {
	item := c.Item(productID)
	if item == nil {
		return ErrNotFound
	}
	if qty == 0 {
		c.Remove(productID)
		return nil
	}
	item.Quantity = qty
	return nil
}

// Remove drops the line for productID if present.
func (c *Cart) Remove(productID string) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Clear removes every line and any applied coupon.
func (c *Cart) Clear() {
	c.Items = nil
	c.CouponCode = nil
	c.DiscountCents = 0
}
