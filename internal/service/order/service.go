// Package order drives the order lifecycle: cart conversion and every
// subsequent status transition, each one atomic and published as an event.
package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"shopcore/internal/cache"
	"shopcore/internal/domain"
	"shopcore/internal/events"
	"shopcore/internal/pricing"
	"github.com/google/uuid"
)

type orderRepo interface {
	CreateFromCart(ctx context.Context, o *domain.Order, cartID string) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	UpdateState(ctx context.Context, o *domain.Order) error
	CancelWithRestock(ctx context.Context, o *domain.Order) error
}

type cartRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// Pricing holds the checkout defaults applied when totals are computed.
type Pricing struct {
	TaxRateBP     int64
	ShippingCents int64
}

type Service struct {
	orders    orderRepo
	carts     cartRepo
	products  productRepo
	publisher events.Publisher
	cache     *cache.Cache
	pricing   Pricing
	logger    *log.Logger
	now       func() time.Time
}

func New(orders orderRepo, carts cartRepo, products productRepo, publisher events.Publisher, c *cache.Cache, p Pricing, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		orders:    orders,
		carts:     carts,
		products:  products,
		publisher: publisher,
		cache:     c,
		pricing:   p,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateFromCart converts an active, non-empty cart into a PENDING order.
// Item prices and names are snapshotted; stock is deducted all-or-nothing
// inside the repository transaction, which also re-validates the cart status
// under lock so a concurrent sweep or second checkout cannot interleave.
func (s *Service) CreateFromCart(ctx context.Context, cartID, customerID string) (*domain.Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, errors.New("customer id required")
	}
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !cart.IsActive() {
		return nil, domain.ErrCartNotActive
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.OrderItem{
			ProductID:      line.ProductID,
			ProductName:    product.Name,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
		})
	}

	o := &domain.Order{
		OrderNumber:         newOrderNumber(s.now()),
		CustomerID:          customerID,
		Items:               items,
		CouponDiscountCents: cart.DiscountCents,
		Status:              domain.OrderStatusPending,
		PaymentStatus:       domain.PaymentStatusPending,
	}
	s.RecalculateTotals(o)

	if err := s.orders.CreateFromCart(ctx, o, cartID); err != nil {
		return nil, err
	}

	s.invalidateStock(ctx, o.Items)
	s.publish(ctx, events.EventOrderCreated, o)
	s.publisher.Publish(ctx, events.EventCartConverted, cartID, events.CartConvertedPayload{CartID: cartID, OrderID: o.ID})
	s.logger.Printf("order: created id=%s number=%s customer=%s total=%d", o.ID, o.OrderNumber, customerID, o.TotalCents)
	return o, nil
}

// RecalculateTotals recomputes every derived amount from the item snapshots
// and current modifiers. Safe to run any number of times.
func (s *Service) RecalculateTotals(o *domain.Order) {
	o.SubtotalCents = pricing.OrderSubtotal(o.Items)
	o.TaxCents = pricing.Tax(o.SubtotalCents, s.pricing.TaxRateBP)
	o.ShippingCents = s.pricing.ShippingCents
	o.TotalCents = pricing.Total(o.SubtotalCents, o.TaxCents, o.ShippingCents, o.DiscountCents, o.CouponDiscountCents)
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Service) GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return s.orders.GetByOrderNumber(ctx, orderNumber)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return s.orders.ListByCustomer(ctx, customerID)
}

func (s *Service) Confirm(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.transition(ctx, orderID, events.EventOrderConfirmed, func(o *domain.Order) error {
		return o.Confirm()
	})
}

func (s *Service) Process(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.transition(ctx, orderID, events.EventOrderProcessing, func(o *domain.Order) error {
		return o.Process()
	})
}

func (s *Service) Ship(ctx context.Context, orderID, carrier, trackingNumber string) (*domain.Order, error) {
	return s.transition(ctx, orderID, events.EventOrderShipped, func(o *domain.Order) error {
		return o.Ship(carrier, trackingNumber, s.now())
	})
}

func (s *Service) OutForDelivery(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.transition(ctx, orderID, events.EventOrderOutForDelivery, func(o *domain.Order) error {
		return o.OutForDelivery()
	})
}

func (s *Service) Deliver(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.transition(ctx, orderID, events.EventOrderDelivered, func(o *domain.Order) error {
		return o.Deliver(s.now())
	})
}

// Cancel aborts an unshipped order and returns its stock in one transaction.
func (s *Service) Cancel(ctx context.Context, orderID, reason string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.Cancel(reason, s.now()); err != nil {
		return nil, err
	}
	if err := s.orders.CancelWithRestock(ctx, o); err != nil {
		return nil, err
	}
	s.invalidateStock(ctx, o.Items)
	s.publish(ctx, events.EventOrderCancelled, o)
	s.logger.Printf("order: cancelled id=%s reason=%q", o.ID, reason)
	return o, nil
}

func (s *Service) Refund(ctx context.Context, orderID string, amountCents int64, reason string) (*domain.Order, error) {
	return s.transition(ctx, orderID, events.EventOrderRefunded, func(o *domain.Order) error {
		return o.Refund(amountCents, reason, s.now())
	})
}

func (s *Service) MarkPaid(ctx context.Context, orderID, txID string) (*domain.Order, error) {
	return s.transition(ctx, orderID, events.EventOrderPaid, func(o *domain.Order) error {
		o.MarkPaid(txID, s.now())
		return nil
	})
}

func (s *Service) MarkPaymentFailed(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.transition(ctx, orderID, events.EventPaymentFailed, func(o *domain.Order) error {
		o.MarkPaymentFailed()
		return nil
	})
}

// transition loads the order, applies the guard-checked mutation and
// persists it. The guard runs before anything is written, so an illegal
// attempt leaves no partial mutation behind.
func (s *Service) transition(ctx context.Context, orderID, eventType string, apply func(*domain.Order) error) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := apply(o); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateState(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, eventType, o)
	s.logger.Printf("order: transition id=%s event=%s status=%s payment=%s", o.ID, eventType, o.Status, o.PaymentStatus)
	return o, nil
}

func (s *Service) publish(ctx context.Context, eventType string, o *domain.Order) {
	s.publisher.Publish(ctx, eventType, o.ID, events.OrderStatusPayload{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Status:      string(o.Status),
		TotalCents:  o.TotalCents,
	})
}

func (s *Service) invalidateStock(ctx context.Context, items []domain.OrderItem) {
	keys := make([]string, 0, len(items)*2)
	for _, it := range items {
		keys = append(keys, cache.ProductKey(it.ProductID), cache.StockKey(it.ProductID))
	}
	s.cache.Invalidate(ctx, keys...)
}

// newOrderNumber builds the human-readable unique order number, e.g.
// ORD-20260829-1A2B3C4D.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix)
}
