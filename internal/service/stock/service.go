// Package stock is the sole authority over product stock counters. Other
// components read availability but route every mutation through here.
package stock

import (
	"context"
	"io"
	"log"
	"time"

	"shopcore/internal/cache"
	"shopcore/internal/domain"
	"shopcore/internal/events"
)

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Reserve(ctx context.Context, productID string, qty int) (*domain.Product, error)
	Release(ctx context.Context, productID string, qty int) (*domain.Product, error)
	Deduct(ctx context.Context, productID string, qty int) (*domain.Product, error)
	AddStock(ctx context.Context, productID string, qty int, now time.Time) (*domain.Product, error)
}

type Service struct {
	repo      productRepo
	publisher events.Publisher
	cache     *cache.Cache
	logger    *log.Logger
	now       func() time.Time
}

func New(repo productRepo, publisher events.Publisher, c *cache.Cache, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{repo: repo, publisher: publisher, cache: c, logger: logger, now: time.Now}
}

// Reserve places a soft hold on qty units of the product.
func (s *Service) Reserve(ctx context.Context, productID string, qty int) (*domain.Product, error) {
	p, err := s.repo.Reserve(ctx, productID, qty)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, p, "reserve", qty)
	return p, nil
}

// Release undoes up to qty units of a prior reservation; idempotent.
func (s *Service) Release(ctx context.Context, productID string, qty int) (*domain.Product, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	p, err := s.repo.Release(ctx, productID, qty)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, p, "release", qty)
	return p, nil
}

// Deduct converts a reservation into a permanent stock decrement.
func (s *Service) Deduct(ctx context.Context, productID string, qty int) (*domain.Product, error) {
	p, err := s.repo.Deduct(ctx, productID, qty)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, p, "deduct", qty)
	return p, nil
}

// AddStock records a restock.
func (s *Service) AddStock(ctx context.Context, productID string, qty int) (*domain.Product, error) {
	p, err := s.repo.AddStock(ctx, productID, qty, s.now())
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, p, "restock", qty)
	if p.NeedsReorder() {
		s.logger.Printf("stock: product %s still at or below reorder point (%d <= %d)", p.ID, p.StockQuantity, p.ReorderPoint)
	}
	return p, nil
}

// Available returns the quantity eligible for new reservations.
func (s *Service) Available(ctx context.Context, productID string) (int, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	return p.Available(), nil
}

// StatusFor derives the selling state of the product.
func (s *Service) StatusFor(ctx context.Context, productID string) (domain.StockStatus, error) {
	status, err := s.cache.GetOrCompute(ctx, cache.StockKey(productID), func(ctx context.Context) ([]byte, error) {
		p, err := s.repo.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		return []byte(p.StockStatus()), nil
	})
	if err != nil {
		return "", err
	}
	return domain.StockStatus(status), nil
}

func (s *Service) afterMutation(ctx context.Context, p *domain.Product, op string, qty int) {
	s.logger.Printf("stock: %s product=%s qty=%d stock=%d reserved=%d status=%s",
		op, p.ID, qty, p.StockQuantity, p.ReservedQuantity, p.StockStatus())
	s.cache.Invalidate(ctx, cache.ProductKey(p.ID), cache.StockKey(p.ID))
	s.publisher.Publish(ctx, events.EventStockChanged, p.ID, events.StockChangedPayload{
		ProductID: p.ID,
		Operation: op,
		Quantity:  qty,
		Stock:     p.StockQuantity,
		Reserved:  p.ReservedQuantity,
		Status:    string(p.StockStatus()),
	})
}
