package cart

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

const cartColumns = `id::text, customer_id, guest_token, status, coupon_code, discount_cents, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (customer_id, guest_token, status)
VALUES ($1, $2, 'ACTIVE')
RETURNING ` + cartColumns + `
`
	var cart domain.Cart
	if err := scanCart(r.pool.QueryRow(ctx, q, owner.CustomerID, owner.GuestToken), &cart); err != nil {
		r.logger.Printf("cart repo: create error=%v", err)
		return nil, err
	}
	r.logger.Printf("cart repo: created id=%s guest=%t", cart.ID, cart.Owner.IsGuest())
	return &cart, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE id = $1
`
	return r.fetchCart(ctx, q, id)
}

func (r *postgresRepo) GetActiveByCustomer(ctx context.Context, customerID string) (*domain.Cart, error) {
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE customer_id = $1 AND status = 'ACTIVE'
ORDER BY created_at DESC
LIMIT 1
`
	return r.fetchCart(ctx, q, customerID)
}

func (r *postgresRepo) GetActiveByGuest(ctx context.Context, guestToken string) (*domain.Cart, error) {
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE guest_token = $1 AND status = 'ACTIVE'
ORDER BY created_at DESC
LIMIT 1
`
	return r.fetchCart(ctx, q, guestToken)
}

// Save rewrites the cart's lines and header inside one transaction. The
// UPDATE is guarded on ACTIVE so a cart converted or abandoned by a
// concurrent request is not silently resurrected.
func (r *postgresRepo) Save(ctx context.Context, cart *domain.Cart) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE carts
SET coupon_code = $1, discount_cents = $2, updated_at = now()
WHERE id = $3 AND status = 'ACTIVE'
`, cart.CouponCode, cart.DiscountCents, cart.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrCartNotActive
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cart.ID); err != nil {
		return err
	}
	for _, item := range cart.Items {
		if _, err := tx.Exec(ctx, `
INSERT INTO cart_items (cart_id, product_id, quantity, unit_price_cents, added_at)
VALUES ($1, $2, $3, $4, $5)
`, cart.ID, item.ProductID, item.Quantity, item.UnitPriceCents, item.AddedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Printf("cart repo: saved id=%s items=%d", cart.ID, len(cart.Items))
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("cart repo: deleted id=%s", id)
	return nil
}

func (r *postgresRepo) AbandonIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `
UPDATE carts
SET status = 'ABANDONED', updated_at = now()
WHERE status = 'ACTIVE' AND updated_at < $1
`, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *postgresRepo) PurgeEmpty(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `
DELETE FROM carts
WHERE updated_at < $1
  AND status IN ('ACTIVE', 'ABANDONED', 'EXPIRED')
  AND NOT EXISTS (SELECT 1 FROM cart_items WHERE cart_items.cart_id = carts.id)
`, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *postgresRepo) fetchCart(ctx context.Context, q string, args ...any) (*domain.Cart, error) {
	var cart domain.Cart
	if err := scanCart(r.pool.QueryRow(ctx, q, args...), &cart); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const linesQuery = `
SELECT product_id::text, quantity, unit_price_cents, added_at
FROM cart_items
WHERE cart_id = $1
ORDER BY added_at ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.UnitPriceCents, &item.AddedAt); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &cart, nil
}

func scanCart(row pgx.Row, cart *domain.Cart) error {
	return row.Scan(
		&cart.ID,
		&cart.Owner.CustomerID,
		&cart.Owner.GuestToken,
		&cart.Status,
		&cart.CouponCode,
		&cart.DiscountCents,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
}
