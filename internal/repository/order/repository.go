package order

import (
	"context"

	"shopcore/internal/domain"
)

type Repository interface {
	// CreateFromCart atomically deducts stock for every order item, inserts
	// the order with its snapshots, and marks the source cart CONVERTED.
	// On any failure nothing is committed.
	CreateFromCart(ctx context.Context, o *domain.Order, cartID string) error

	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)

	// UpdateState persists the mutable lifecycle fields of an order. Item
	// snapshots and amounts are immutable after creation and never written.
	UpdateState(ctx context.Context, o *domain.Order) error

	// CancelWithRestock persists a cancelled order and returns its deducted
	// stock to the products in the same transaction.
	CancelWithRestock(ctx context.Context, o *domain.Order) error
}
