package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	SKU            string
	Name           string
	Description    string
	PriceCents     int64
	Currency       string
	Stock          int
	LowStock       int
	TrackInventory bool
	AllowBackorder bool
}

type couponSeed struct {
	Code        string
	Kind        string
	Value       int64
	MinSubtotal int64
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{
			SKU:            "SKU-DEMO-TSHIRT",
			Name:           "Demo T-Shirt",
			Description:    "Soft cotton tee for demo purposes",
			PriceCents:     1999,
			Currency:       "USD",
			Stock:          50,
			LowStock:       5,
			TrackInventory: true,
		},
		{
			SKU:            "SKU-DEMO-MUG",
			Name:           "Demo Mug",
			Description:    "Ceramic mug with demo logo",
			PriceCents:     1299,
			Currency:       "USD",
			Stock:          3,
			LowStock:       5,
			TrackInventory: true,
		},
		{
			SKU:            "SKU-DEMO-POSTER",
			Name:           "Demo Poster",
			Description:    "Print-on-demand poster, can be backordered",
			PriceCents:     899,
			Currency:       "USD",
			Stock:          0,
			LowStock:       0,
			TrackInventory: true,
			AllowBackorder: true,
		},
		{
			SKU:            "SKU-DEMO-GIFTCARD",
			Name:           "Demo Gift Card",
			Description:    "Digital gift card, unlimited stock",
			PriceCents:     2500,
			Currency:       "USD",
			TrackInventory: false,
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	coupons := []couponSeed{
		{Code: "WELCOME10", Kind: "percent", Value: 1000},
		{Code: "FIVEOFF", Kind: "fixed", Value: 500, MinSubtotal: 2000},
	}
	for _, c := range coupons {
		if err := upsertCoupon(ctx, pool, c); err != nil {
			return fmt.Errorf("upsert coupon %s: %w", c.Code, err)
		}
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (sku, name, description, price_cents, currency, stock_quantity, low_stock_threshold, track_inventory, allow_backorder)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (sku) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency
`
	_, err := pool.Exec(ctx, q, p.SKU, p.Name, p.Description, p.PriceCents, p.Currency, p.Stock, p.LowStock, p.TrackInventory, p.AllowBackorder)
	return err
}

func upsertCoupon(ctx context.Context, pool *pgxpool.Pool, c couponSeed) error {
	const q = `
INSERT INTO coupons (code, kind, value, min_subtotal_cents, active)
VALUES ($1, $2, $3, $4, true)
ON CONFLICT (code) DO UPDATE
SET kind = EXCLUDED.kind,
    value = EXCLUDED.value,
    min_subtotal_cents = EXCLUDED.min_subtotal_cents
`
	_, err := pool.Exec(ctx, q, c.Code, c.Kind, c.Value, c.MinSubtotal)
	return err
}
