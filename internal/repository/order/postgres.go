package order

import (
	"context"
	"errors"
	"io"
	"log"

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

const orderColumns = `id::text, order_number, customer_id, subtotal_cents, tax_cents, shipping_cents,
discount_cents, coupon_discount_cents, total_cents, status, payment_status,
COALESCE(payment_tx_id, ''), COALESCE(tracking_number, ''), COALESCE(carrier, ''),
COALESCE(cancel_reason, ''), COALESCE(refund_reason, ''), refunded_cents,
created_at, paid_at, shipped_at, delivered_at, cancelled_at, refunded_at`

// CreateFromCart is the checkout transaction. The cart row is re-locked and
// re-validated so a sweeper that abandoned it, or a second checkout, loses
// the race cleanly. Stock is deducted per item under product row locks; any
// shortfall rolls back every prior deduction in the same order.
func (r *postgresRepo) CreateFromCart(ctx context.Context, o *domain.Order, cartID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var cartStatus domain.CartStatus
	err = tx.QueryRow(ctx, `SELECT status FROM carts WHERE id = $1 FOR UPDATE`, cartID).Scan(&cartStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if cartStatus != domain.CartStatusActive {
		return domain.ErrCartNotActive
	}

	for _, item := range o.Items {
		if err := deductStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	err = tx.QueryRow(ctx, `
INSERT INTO orders (order_number, customer_id, subtotal_cents, tax_cents, shipping_cents,
	discount_cents, coupon_discount_cents, total_cents, status, payment_status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id::text, created_at
`,
		o.OrderNumber,
		o.CustomerID,
		o.SubtotalCents,
		o.TaxCents,
		o.ShippingCents,
		o.DiscountCents,
		o.CouponDiscountCents,
		o.TotalCents,
		o.Status,
		o.PaymentStatus,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return err
	}

	for _, item := range o.Items {
		if _, err := tx.Exec(ctx, `
INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price_cents, discount_cents)
VALUES ($1, $2, $3, $4, $5, $6)
`, o.ID, item.ProductID, item.ProductName, item.Quantity, item.UnitPriceCents, item.DiscountCents); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `
UPDATE carts SET status = $1, updated_at = now() WHERE id = $2
`, domain.CartStatusConverted, cartID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Printf("order repo: created order=%s number=%s items=%d total=%d cart=%s",
		o.ID, o.OrderNumber, len(o.Items), o.TotalCents, cartID)
	return nil
}

// deductStock applies reserve-then-deduct to one product row under its lock.
// The stock rules live on the domain type so checkout and the standalone
// ledger endpoints cannot drift apart.
func deductStock(ctx context.Context, tx pgx.Tx, productID string, qty int) error {
	var p domain.Product
	err := tx.QueryRow(ctx, `
SELECT id::text, stock_quantity, reserved_quantity, track_inventory, allow_backorder
FROM products
WHERE id = $1
FOR UPDATE
`, productID).Scan(&p.ID, &p.StockQuantity, &p.ReservedQuantity, &p.TrackInventory, &p.AllowBackorder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	if err := p.Reserve(qty); err != nil {
		return err
	}
	if err := p.Deduct(qty); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
UPDATE products SET stock_quantity = $1, reserved_quantity = $2 WHERE id = $3
`, p.StockQuantity, p.ReservedQuantity, p.ID)
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`
	return r.fetchOrder(ctx, q, id)
}

func (r *postgresRepo) GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE order_number = $1
`
	return r.fetchOrder(ctx, q, orderNumber)
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE customer_id = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, customerID)
	if err != nil {
		r.logger.Printf("order repo: list customer=%s error=%v", customerID, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		if err := r.loadItems(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *postgresRepo) UpdateState(ctx context.Context, o *domain.Order) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders
SET status = $1,
    payment_status = $2,
    payment_tx_id = NULLIF($3, ''),
    tracking_number = NULLIF($4, ''),
    carrier = NULLIF($5, ''),
    cancel_reason = NULLIF($6, ''),
    refund_reason = NULLIF($7, ''),
    refunded_cents = $8,
    paid_at = $9,
    shipped_at = $10,
    delivered_at = $11,
    cancelled_at = $12,
    refunded_at = $13
WHERE id = $14
`,
		o.Status,
		o.PaymentStatus,
		o.PaymentTxID,
		o.TrackingNumber,
		o.Carrier,
		o.CancelReason,
		o.RefundReason,
		o.RefundedCents,
		o.PaidAt,
		o.ShippedAt,
		o.DeliveredAt,
		o.CancelledAt,
		o.RefundedAt,
	)
	if err != nil {
		r.logger.Printf("order repo: update state id=%s error=%v", o.ID, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("order repo: updated id=%s status=%s payment=%s", o.ID, o.Status, o.PaymentStatus)
	return nil
}

// CancelWithRestock writes the cancelled state and puts the deducted
// quantities back on stock, all or nothing.
func (r *postgresRepo) CancelWithRestock(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE orders
SET status = $1, cancel_reason = NULLIF($2, ''), cancelled_at = $3
WHERE id = $4
`, o.Status, o.CancelReason, o.CancelledAt, o.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	for _, item := range o.Items {
		var trackInventory bool
		err := tx.QueryRow(ctx, `
SELECT track_inventory FROM products WHERE id = $1 FOR UPDATE
`, item.ProductID).Scan(&trackInventory)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return err
		}
		if !trackInventory {
			continue
		}
		if _, err := tx.Exec(ctx, `
UPDATE products SET stock_quantity = stock_quantity + $1 WHERE id = $2
`, item.Quantity, item.ProductID); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Printf("order repo: cancelled id=%s restocked_items=%d", o.ID, len(o.Items))
	return nil
}

func (r *postgresRepo) fetchOrder(ctx context.Context, q string, args ...any) (*domain.Order, error) {
	var o domain.Order
	if err := scanOrder(r.pool.QueryRow(ctx, q, args...), &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) loadItems(ctx context.Context, o *domain.Order) error {
	const q = `
SELECT product_id::text, product_name, quantity, unit_price_cents, discount_cents
FROM order_items
WHERE order_id = $1
ORDER BY product_name ASC
`
	rows, err := r.pool.Query(ctx, q, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPriceCents, &item.DiscountCents); err != nil {
			return err
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}

func scanOrder(row pgx.Row, o *domain.Order) error {
	return row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.CustomerID,
		&o.SubtotalCents,
		&o.TaxCents,
		&o.ShippingCents,
		&o.DiscountCents,
		&o.CouponDiscountCents,
		&o.TotalCents,
		&o.Status,
		&o.PaymentStatus,
		&o.PaymentTxID,
		&o.TrackingNumber,
		&o.Carrier,
		&o.CancelReason,
		&o.RefundReason,
		&o.RefundedCents,
		&o.CreatedAt,
		&o.PaidAt,
		&o.ShippedAt,
		&o.DeliveredAt,
		&o.CancelledAt,
		&o.RefundedAt,
	)
}
