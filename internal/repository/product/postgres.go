package product

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"shopcore/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id::text, sku, name, COALESCE(description, ''), price_cents, currency, active,
stock_quantity, reserved_quantity, low_stock_threshold, reorder_point, track_inventory, allow_backorder,
last_restocked_at, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE id = $1
`
	var p domain.Product
	if err := scanProduct(r.pool.QueryRow(ctx, q, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE sku = $1
`
	var p domain.Product
	if err := scanProduct(r.pool.QueryRow(ctx, q, sku), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get sku=%s error=%v", sku, err)
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, sku, name, description, price_cents, currency, active,
	stock_quantity, reserved_quantity, low_stock_threshold, reorder_point, track_inventory, allow_backorder)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (sku) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    active = EXCLUDED.active,
    low_stock_threshold = EXCLUDED.low_stock_threshold,
    reorder_point = EXCLUDED.reorder_point,
    track_inventory = EXCLUDED.track_inventory,
    allow_backorder = EXCLUDED.allow_backorder
RETURNING id::text, created_at
`
	res := product
	err := r.pool.QueryRow(ctx, q,
		product.ID,
		product.SKU,
		product.Name,
		product.Description,
		product.PriceCents,
		product.Currency,
		product.Active,
		product.StockQuantity,
		product.ReservedQuantity,
		product.LowStockThreshold,
		product.ReorderPoint,
		product.TrackInventory,
		product.AllowBackorder,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Printf("product repo: upsert sku=%s error=%v", product.SKU, err)
		return nil, err
	}
	r.logger.Printf("product repo: upserted sku=%s id=%s", res.SKU, res.ID)
	return &res, nil
}

// mutateStock loads the product row FOR UPDATE, applies fn to the in-memory
// counters and writes them back, all inside one transaction. Concurrent
// mutations on the same product serialize on the row lock.
func (r *postgresRepo) mutateStock(ctx context.Context, productID string, fn func(*domain.Product) error) (*domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	p, err := lockProduct(ctx, tx, productID)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := writeStock(ctx, tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Reserve(ctx context.Context, productID string, qty int) (*domain.Product, error) {
	p, err := r.mutateStock(ctx, productID, func(p *domain.Product) error {
		return p.Reserve(qty)
	})
	if err != nil {
		return nil, err
	}
	r.logger.Printf("product repo: reserved id=%s qty=%d reserved=%d", productID, qty, p.ReservedQuantity)
	return p, nil
}

func (r *postgresRepo) Release(ctx context.Context, productID string, qty int) (*domain.Product, error) {
	p, err := r.mutateStock(ctx, productID, func(p *domain.Product) error {
		p.Release(qty)
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.logger.Printf("product repo: released id=%s qty=%d reserved=%d", productID, qty, p.ReservedQuantity)
	return p, nil
}

func (r *postgresRepo) Deduct(ctx context.Context, productID string, qty int) (*domain.Product, error) {
	p, err := r.mutateStock(ctx, productID, func(p *domain.Product) error {
		return p.Deduct(qty)
	})
	if err != nil {
		return nil, err
	}
	r.logger.Printf("product repo: deducted id=%s qty=%d stock=%d", productID, qty, p.StockQuantity)
	return p, nil
}

func (r *postgresRepo) AddStock(ctx context.Context, productID string, qty int, now time.Time) (*domain.Product, error) {
	p, err := r.mutateStock(ctx, productID, func(p *domain.Product) error {
		return p.AddStock(qty, now)
	})
	if err != nil {
		return nil, err
	}
	r.logger.Printf("product repo: restocked id=%s qty=%d stock=%d", productID, qty, p.StockQuantity)
	return p, nil
}

func lockProduct(ctx context.Context, tx pgx.Tx, productID string) (*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE id = $1
FOR UPDATE
`
	var p domain.Product
	if err := scanProduct(tx.QueryRow(ctx, q, productID), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func writeStock(ctx context.Context, tx pgx.Tx, p *domain.Product) error {
	const q = `
UPDATE products
SET stock_quantity = $1, reserved_quantity = $2, last_restocked_at = $3
WHERE id = $4
`
	_, err := tx.Exec(ctx, q, p.StockQuantity, p.ReservedQuantity, p.LastRestockedAt, p.ID)
	return err
}

func scanProduct(row pgx.Row, p *domain.Product) error {
	return row.Scan(
		&p.ID,
		&p.SKU,
		&p.Name,
		&p.Description,
		&p.PriceCents,
		&p.Currency,
		&p.Active,
		&p.StockQuantity,
		&p.ReservedQuantity,
		&p.LowStockThreshold,
		&p.ReorderPoint,
		&p.TrackInventory,
		&p.AllowBackorder,
		&p.LastRestockedAt,
		&p.CreatedAt,
	)
}
