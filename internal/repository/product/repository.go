package product

import (
	"context"
	"time"

	"shopcore/internal/domain"
)

// Repository owns product rows, including the stock counters. Every stock
// mutation is applied as one atomic read-modify-write under a row lock.
type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)

	Reserve(ctx context.Context, productID string, qty int) (*domain.Product, error)
	Release(ctx context.Context, productID string, qty int) (*domain.Product, error)
	Deduct(ctx context.Context, productID string, qty int) (*domain.Product, error)
	AddStock(ctx context.Context, productID string, qty int, now time.Time) (*domain.Product, error)
}
