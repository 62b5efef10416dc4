package domain

import "time"

// StockStatus is derived from the current counters, never stored.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "IN_STOCK"
	StockStatusLowStock   StockStatus = "LOW_STOCK"
	StockStatusOutOfStock StockStatus = "OUT_OF_STOCK"
	StockStatusBackorder  StockStatus = "BACKORDER"
)

type Product struct {
	ID                string     `json:"id"`
	SKU               string     `json:"sku"`
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	PriceCents        int64      `json:"priceCents"`
	Currency          string     `json:"currency"`
	Active            bool       `json:"active"`
	StockQuantity     int        `json:"stockQuantity"`
	ReservedQuantity  int        `json:"reservedQuantity"`
	LowStockThreshold int        `json:"lowStockThreshold"`
	ReorderPoint      int        `json:"reorderPoint"`
	TrackInventory    bool       `json:"trackInventory"`
	AllowBackorder    bool       `json:"allowBackorder"`
	LastRestockedAt   *time.Time `json:"lastRestockedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// Available is the quantity eligible for new reservations. It is always
// derived from the two stored counters and may be negative only when
// backorders are allowed.
func (p *Product) Available() int {
	return p.StockQuantity - p.ReservedQuantity
}

// HasAvailable reports whether qty units could be sold right now. Products
// that do not track inventory are treated as unlimited.
func (p *Product) HasAvailable(qty int) bool {
	if !p.TrackInventory || p.AllowBackorder {
		return true
	}
	return p.Available() >= qty
}

// Reserve places a soft hold of qty units. No-op for untracked products.
func (p *Product) Reserve(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if !p.TrackInventory {
		return nil
	}
	if p.Available() < qty && !p.AllowBackorder {
		return &InsufficientStockError{ProductID: p.ID, Requested: qty, Available: p.Available()}
	}
	p.ReservedQuantity += qty
	return nil
}

// Release undoes up to qty units of reservation. Over-release floors the
// reserved counter at zero so the call is idempotent.
func (p *Product) Release(qty int) {
	if qty <= 0 || !p.TrackInventory {
		return
	}
	if qty > p.ReservedQuantity {
		qty = p.ReservedQuantity
	}
	p.ReservedQuantity -= qty
}

// Deduct makes a reservation permanent at order-confirmation time: it
// releases up to qty from the reserved counter, then removes qty from
// on-hand stock.
func (p *Product) Deduct(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if !p.TrackInventory {
		return nil
	}
	if p.StockQuantity < qty && !p.AllowBackorder {
		return &InsufficientStockError{ProductID: p.ID, Requested: qty, Available: p.StockQuantity}
	}
	p.Release(qty)
	p.StockQuantity -= qty
	return nil
}

// AddStock records a restock of qty units.
func (p *Product) AddStock(qty int, now time.Time) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	p.StockQuantity += qty
	t := now.UTC()
	p.LastRestockedAt = &t
	return nil
}

// StockStatus derives the selling state from the current counters.
func (p *Product) StockStatus() StockStatus {
	if !p.TrackInventory {
		return StockStatusInStock
	}
	available := p.Available()
	switch {
	case available <= 0 && p.AllowBackorder:
		return StockStatusBackorder
	case available <= 0:
		return StockStatusOutOfStock
	case available <= p.LowStockThreshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// NeedsReorder reports whether on-hand stock fell to the reorder point.
func (p *Product) NeedsReorder() bool {
	return p.TrackInventory && p.StockQuantity <= p.ReorderPoint
}
