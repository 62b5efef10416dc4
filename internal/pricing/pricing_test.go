package pricing

import (
	"testing"

	"shopcore/internal/domain"
)

func TestLineTotalFloorsAtZero(t *testing.T) {
	if got := LineTotal(500, 2, 2000); got != 0 {
		t.Fatalf("expected floored total 0, got %d", got)
	}
	if got := LineTotal(500, 2, 100); got != 900 {
		t.Fatalf("expected 900, got %d", got)
	}
}

func TestCartSubtotal(t *testing.T) {
	items := []domain.CartItem{
		{ProductID: "p1", Quantity: 2, UnitPriceCents: 1999},
		{ProductID: "p2", Quantity: 1, UnitPriceCents: 1299},
	}
	if got := CartSubtotal(items); got != 5297 {
		t.Fatalf("expected 5297, got %d", got)
	}
}

func TestTaxRoundsHalfUp(t *testing.T) {
	cases := []struct {
		subtotal int64
		rateBP   int64
		want     int64
	}{
		{20000, 1000, 2000}, // 10% of 200.00
		{999, 1000, 100},    // 99.9 cents rounds up
		{994, 1000, 99},     // 99.4 cents rounds down
		{995, 1000, 100},    // exactly .5 rounds up
		{0, 1000, 0},
		{20000, 0, 0},
	}
	for _, c := range cases {
		if got := Tax(c.subtotal, c.rateBP); got != c.want {
			t.Fatalf("Tax(%d, %d) = %d, want %d", c.subtotal, c.rateBP, got, c.want)
		}
	}
}

func TestTotalScenario(t *testing.T) {
	// One item at 100.00 x2, 10% tax, 5.99 shipping.
	subtotal := CartSubtotal([]domain.CartItem{{ProductID: "p1", Quantity: 2, UnitPriceCents: 10000}})
	if subtotal != 20000 {
		t.Fatalf("expected subtotal 20000, got %d", subtotal)
	}
	tax := Tax(subtotal, 1000)
	if tax != 2000 {
		t.Fatalf("expected tax 2000, got %d", tax)
	}
	if got := Total(subtotal, tax, 599, 0, 0); got != 22599 {
		t.Fatalf("expected total 22599, got %d", got)
	}
}

func TestTotalFloorsAtZero(t *testing.T) {
	if got := Total(1000, 100, 0, 500, 900); got != 0 {
		t.Fatalf("expected total floored at 0, got %d", got)
	}
}
