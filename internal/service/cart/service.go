package cart

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"shopcore/internal/domain"
	"shopcore/internal/pricing"
	"github.com/google/uuid"
)

type cartRepo interface {
	Create(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetActiveByCustomer(ctx context.Context, customerID string) (*domain.Cart, error)
	GetActiveByGuest(ctx context.Context, guestToken string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, id string) error
	AbandonIdle(ctx context.Context, cutoff time.Time) (int64, error)
	PurgeEmpty(ctx context.Context, cutoff time.Time) (int64, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type Service struct {
	repo      cartRepo
	products  productRepo
	coupons   pricing.CouponResolver
	itemLimit int
	logger    *log.Logger
	now       func() time.Time
}

func New(repo cartRepo, products productRepo, coupons pricing.CouponResolver, itemLimit int, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if itemLimit <= 0 {
		itemLimit = 100
	}
	return &Service{
		repo:      repo,
		products:  products,
		coupons:   coupons,
		itemLimit: itemLimit,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateForCustomer opens a new active cart owned by the customer.
func (s *Service) CreateForCustomer(ctx context.Context, customerID string) (*domain.Cart, error) {
	if customerID == "" {
		return nil, errors.New("customer id required")
	}
	return s.repo.Create(ctx, domain.OwnedByCustomer(customerID))
}

// CreateForGuest opens a new active cart bound to a fresh guest session token.
func (s *Service) CreateForGuest(ctx context.Context) (*domain.Cart, error) {
	return s.repo.Create(ctx, domain.OwnedByGuest(uuid.NewString()))
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Cart, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetActiveByCustomer(ctx context.Context, customerID string) (*domain.Cart, error) {
	return s.repo.GetActiveByCustomer(ctx, customerID)
}

func (s *Service) GetActiveByGuest(ctx context.Context, guestToken string) (*domain.Cart, error) {
	return s.repo.GetActiveByGuest(ctx, guestToken)
}

// AddItem merges qty of the product into the cart. Availability is checked
// as an advisory only; the hard check happens at checkout under row locks.
func (s *Service) AddItem(ctx context.Context, cartID, productID string, qty int) (*domain.Cart, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	cart, err := s.activeCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	product, err := s.sellableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	newQty := cart.Quantity(productID) + qty
	if err := checkAdvisory(product, newQty); err != nil {
		return nil, err
	}
	if cart.Item(productID) == nil && len(cart.Items) >= s.itemLimit {
		return nil, &domain.CartFullError{Limit: s.itemLimit}
	}

	cart.Upsert(productID, qty, product.PriceCents, s.now())
	if err := s.saveAndRefreshCoupon(ctx, cart); err != nil {
		return nil, err
	}
	s.logger.Printf("cart: added cart=%s product=%s qty=%d total_qty=%d", cartID, productID, qty, newQty)
	return cart, nil
}

// UpdateQuantity replaces the quantity of a line; zero removes it.
func (s *Service) UpdateQuantity(ctx context.Context, cartID, productID string, qty int) (*domain.Cart, error) {
	if qty < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if qty == 0 {
		return s.RemoveItem(ctx, cartID, productID)
	}
	cart, err := s.activeCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	product, err := s.sellableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := checkAdvisory(product, qty); err != nil {
		return nil, err
	}
	if err := cart.SetQuantity(productID, qty); err != nil {
		return nil, err
	}
	if err := s.saveAndRefreshCoupon(ctx, cart); err != nil {
		return nil, err
	}
	s.logger.Printf("cart: updated cart=%s product=%s qty=%d", cartID, productID, qty)
	return cart, nil
}

func (s *Service) RemoveItem(ctx context.Context, cartID, productID string) (*domain.Cart, error) {
	cart, err := s.activeCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	cart.Remove(productID)
	if err := s.saveAndRefreshCoupon(ctx, cart); err != nil {
		return nil, err
	}
	s.logger.Printf("cart: removed cart=%s product=%s", cartID, productID)
	return cart, nil
}

func (s *Service) Clear(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart, err := s.activeCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	cart.Clear()
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	s.logger.Printf("cart: cleared cart=%s", cartID)
	return cart, nil
}

// ApplyCoupon resolves the code through the injected strategy and stores the
// resulting discount on the cart.
func (s *Service) ApplyCoupon(ctx context.Context, cartID, code string) (*domain.Cart, error) {
	cart, err := s.activeCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	discount, err := s.coupons.ResolveDiscount(ctx, code, cart)
	if err != nil {
		return nil, err
	}
	cart.CouponCode = &code
	cart.DiscountCents = discount
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	s.logger.Printf("cart: coupon applied cart=%s code=%s discount=%d", cartID, code, discount)
	return cart, nil
}

func (s *Service) RemoveCoupon(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart, err := s.activeCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	cart.CouponCode = nil
	cart.DiscountCents = 0
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Merge moves as much of the source cart into the target as stock allows,
// then deletes the source. Partial merges are not an error; a typical use is
// adopting a guest cart when its owner signs in.
func (s *Service) Merge(ctx context.Context, sourceCartID, targetCartID string) (*domain.Cart, error) {
	source, err := s.repo.GetByID(ctx, sourceCartID)
	if err != nil {
		return nil, err
	}
	target, err := s.activeCart(ctx, targetCartID)
	if err != nil {
		return nil, err
	}

	for _, item := range source.Items {
		product, err := s.sellableProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if target.Item(item.ProductID) == nil && len(target.Items) >= s.itemLimit {
			continue
		}

		addable := item.Quantity
		if product.TrackInventory && !product.AllowBackorder {
			headroom := product.Available() - target.Quantity(item.ProductID)
			if headroom < 0 {
				headroom = 0
			}
			if addable > headroom {
				addable = headroom
			}
		}
		if addable == 0 {
			continue
		}
		target.Upsert(item.ProductID, addable, item.UnitPriceCents, s.now())
	}

	if err := s.saveAndRefreshCoupon(ctx, target); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, sourceCartID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	s.logger.Printf("cart: merged source=%s into target=%s items=%d", sourceCartID, targetCartID, len(target.Items))
	return target, nil
}

// AbandonIdle and PurgeEmpty are invoked by the background sweeper.
func (s *Service) AbandonIdle(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.repo.AbandonIdle(ctx, s.now().Add(-olderThan))
}

func (s *Service) PurgeEmpty(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.repo.PurgeEmpty(ctx, s.now().Add(-olderThan))
}

func (s *Service) activeCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart, err := s.repo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !cart.IsActive() {
		return nil, domain.ErrCartNotActive
	}
	return cart, nil
}

func (s *Service) sellableProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// saveAndRefreshCoupon re-resolves an applied coupon after the items changed
// so the stored discount tracks the new subtotal; a coupon the cart no
// longer qualifies for is dropped rather than failing the mutation.
func (s *Service) saveAndRefreshCoupon(ctx context.Context, cart *domain.Cart) error {
	if cart.CouponCode != nil {
		discount, err := s.coupons.ResolveDiscount(ctx, *cart.CouponCode, cart)
		var invalid *domain.InvalidCouponError
		switch {
		case err == nil:
			cart.DiscountCents = discount
		case errors.As(err, &invalid):
			cart.CouponCode = nil
			cart.DiscountCents = 0
		default:
			return err
		}
	}
	return s.repo.Save(ctx, cart)
}

func checkAdvisory(product *domain.Product, wantQty int) error {
	if !product.HasAvailable(wantQty) {
		return &domain.InsufficientStockError{
			ProductID: product.ID,
			Requested: wantQty,
			Available: product.Available(),
		}
	}
	return nil
}
