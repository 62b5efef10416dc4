// Package coupon resolves opaque coupon codes into discount amounts. The
// core treats codes as lookups against this table, never hard-coded rules.
package coupon

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"shopcore/internal/domain"
	"shopcore/internal/pricing"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	kindPercent = "percent" // value is basis points off the subtotal
	kindFixed   = "fixed"   // value is a flat cent amount
)

type postgresResolver struct {
	pool   *pgxpool.Pool
	logger *log.Logger
	now    func() time.Time
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) pricing.CouponResolver {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresResolver{pool: pool, logger: logger, now: time.Now}
}

func (r *postgresResolver) ResolveDiscount(ctx context.Context, code string, cart *domain.Cart) (int64, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return 0, &domain.InvalidCouponError{Code: code, Reason: "empty code"}
	}

	const q = `
SELECT kind, value, min_subtotal_cents, active, expires_at
FROM coupons
WHERE code = $1
`
	var (
		kind        string
		value       int64
		minSubtotal int64
		active      bool
		expiresAt   *time.Time
	)
	err := r.pool.QueryRow(ctx, q, code).Scan(&kind, &value, &minSubtotal, &active, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, &domain.InvalidCouponError{Code: code, Reason: "unknown code"}
		}
		return 0, err
	}

	if !active {
		return 0, &domain.InvalidCouponError{Code: code, Reason: "no longer active"}
	}
	if expiresAt != nil && expiresAt.Before(r.now()) {
		return 0, &domain.InvalidCouponError{Code: code, Reason: "expired"}
	}

	subtotal := pricing.CartSubtotal(cart.Items)
	if subtotal < minSubtotal {
		return 0, &domain.InvalidCouponError{Code: code, Reason: "cart subtotal below coupon minimum"}
	}

	var discount int64
	switch kind {
	case kindPercent:
		discount = pricing.BasisPoints(subtotal, value)
	case kindFixed:
		discount = value
	default:
		return 0, &domain.InvalidCouponError{Code: code, Reason: "unsupported coupon kind"}
	}
	if discount > subtotal {
		discount = subtotal
	}
	r.logger.Printf("coupon repo: resolved code=%s discount=%d", code, discount)
	return discount, nil
}
