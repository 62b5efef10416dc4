package cart

import (
	"context"
	"time"

	"shopcore/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetActiveByCustomer(ctx context.Context, customerID string) (*domain.Cart, error)
	GetActiveByGuest(ctx context.Context, guestToken string) (*domain.Cart, error)

	// Save persists the cart's items, coupon and timestamps as currently held
	// in memory, guarded by the cart still being ACTIVE in the store.
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, id string) error

	// AbandonIdle marks ACTIVE carts with no activity since the cutoff as
	// ABANDONED and returns how many rows changed.
	AbandonIdle(ctx context.Context, cutoff time.Time) (int64, error)
	// PurgeEmpty deletes item-less carts untouched since the cutoff.
	PurgeEmpty(ctx context.Context, cutoff time.Time) (int64, error)
}
