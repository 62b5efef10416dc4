package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopcore/internal/domain"
)

type stubCartRepo struct {
	carts map[string]*domain.Cart
}

func newStubCartRepo(carts ...*domain.Cart) *stubCartRepo {
	r := &stubCartRepo{carts: make(map[string]*domain.Cart)}
	for _, c := range carts {
		r.carts[c.ID] = c
	}
	return r
}

func (r *stubCartRepo) Create(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	c := &domain.Cart{ID: "generated", Owner: owner, Status: domain.CartStatusActive}
	r.carts[c.ID] = c
	return c, nil
}

func (r *stubCartRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	c, ok := r.carts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (r *stubCartRepo) GetActiveByCustomer(ctx context.Context, customerID string) (*domain.Cart, error) {
	for _, c := range r.carts {
		if c.Status == domain.CartStatusActive && c.Owner.CustomerID != nil && *c.Owner.CustomerID == customerID {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubCartRepo) GetActiveByGuest(ctx context.Context, guestToken string) (*domain.Cart, error) {
	for _, c := range r.carts {
		if c.Status == domain.CartStatusActive && c.Owner.GuestToken != nil && *c.Owner.GuestToken == guestToken {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubCartRepo) Save(ctx context.Context, cart *domain.Cart) error {
	r.carts[cart.ID] = cart
	return nil
}

func (r *stubCartRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.carts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.carts, id)
	return nil
}

func (r *stubCartRepo) AbandonIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (r *stubCartRepo) PurgeEmpty(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type stubProductRepo struct {
	products map[string]*domain.Product
}

func (r *stubProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

type stubCoupons struct {
	discounts map[string]int64
}

func (c *stubCoupons) ResolveDiscount(ctx context.Context, code string, cart *domain.Cart) (int64, error) {
	d, ok := c.discounts[code]
	if !ok {
		return 0, &domain.InvalidCouponError{Code: code, Reason: "unknown code"}
	}
	return d, nil
}

func activeCart(id string) *domain.Cart {
	return &domain.Cart{ID: id, Owner: domain.OwnedByCustomer("cust-1"), Status: domain.CartStatusActive}
}

func sellable(id string, priceCents int64, stock int) *domain.Product {
	return &domain.Product{
		ID:             id,
		Name:           "product " + id,
		PriceCents:     priceCents,
		StockQuantity:  stock,
		TrackInventory: true,
		Active:         true,
	}
}

func newTestService(carts *stubCartRepo, products map[string]*domain.Product, discounts map[string]int64) *Service {
	return New(carts, &stubProductRepo{products: products}, &stubCoupons{discounts: discounts}, 3, nil)
}

func TestAddItemMergesExistingLine(t *testing.T) {
	repo := newStubCartRepo(activeCart("c1"))
	svc := newTestService(repo, map[string]*domain.Product{"p1": sellable("p1", 1999, 50)}, nil)

	if _, err := svc.AddItem(context.Background(), "c1", "p1", 2); err != nil {
		t.Fatalf("first add: %v", err)
	}
	cart, err := svc.AddItem(context.Background(), "c1", "p1", 3)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(cart.Items) != 1 || cart.Quantity("p1") != 5 {
		t.Fatalf("expected one merged line of qty 5, got %+v", cart.Items)
	}
	if cart.Items[0].UnitPriceCents != 1999 {
		t.Fatalf("unit price not snapshotted: %d", cart.Items[0].UnitPriceCents)
	}
}

func TestAddItemInsufficientStock(t *testing.T) {
	repo := newStubCartRepo(activeCart("c1"))
	svc := newTestService(repo, map[string]*domain.Product{"p1": sellable("p1", 1999, 5)}, nil)

	_, err := svc.AddItem(context.Background(), "c1", "p1", 6)
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Requested != 6 || stockErr.Available != 5 {
		t.Fatalf("unexpected detail: requested=%d available=%d", stockErr.Requested, stockErr.Available)
	}
}

func TestAddItemChecksMergedQuantityAgainstStock(t *testing.T) {
	repo := newStubCartRepo(activeCart("c1"))
	svc := newTestService(repo, map[string]*domain.Product{"p1": sellable("p1", 1999, 5)}, nil)

	if _, err := svc.AddItem(context.Background(), "c1", "p1", 4); err != nil {
		t.Fatalf("first add: %v", err)
	}
	_, err := svc.AddItem(context.Background(), "c1", "p1", 2)
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError on merged qty, got %v", err)
	}
	if stockErr.Requested != 6 {
		t.Fatalf("advisory must check the merged quantity, requested=%d", stockErr.Requested)
	}
}

func TestAddItemEnforcesLineLimit(t *testing.T) {
	repo := newStubCartRepo(activeCart("c1"))
	products := map[string]*domain.Product{
		"p1": sellable("p1", 100, 10),
		"p2": sellable("p2", 100, 10),
		"p3": sellable("p3", 100, 10),
		"p4": sellable("p4", 100, 10),
	}
	svc := newTestService(repo, products, nil)

	for _, pid := range []string{"p1", "p2", "p3"} {
		if _, err := svc.AddItem(context.Background(), "c1", pid, 1); err != nil {
			t.Fatalf("add %s: %v", pid, err)
		}
	}
	_, err := svc.AddItem(context.Background(), "c1", "p4", 1)
	var fullErr *domain.CartFullError
	if !errors.As(err, &fullErr) {
		t.Fatalf("expected CartFullError, got %v", err)
	}
	if fullErr.Limit != 3 {
		t.Fatalf("unexpected limit: %d", fullErr.Limit)
	}
	if _, err := svc.AddItem(context.Background(), "c1", "p1", 1); err != nil {
		t.Fatalf("merging into an existing line must bypass the limit: %v", err)
	}
}

func TestAddItemRejectsInactiveCart(t *testing.T) {
	converted := activeCart("c1")
	converted.Status = domain.CartStatusConverted
	repo := newStubCartRepo(converted)
	svc := newTestService(repo, map[string]*domain.Product{"p1": sellable("p1", 100, 10)}, nil)

	if _, err := svc.AddItem(context.Background(), "c1", "p1", 1); !errors.Is(err, domain.ErrCartNotActive) {
		t.Fatalf("expected ErrCartNotActive, got %v", err)
	}
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	repo := newStubCartRepo(activeCart("c1"))
	p := sellable("p1", 100, 10)
	p.Active = false
	svc := newTestService(repo, map[string]*domain.Product{"p1": p}, nil)

	if _, err := svc.AddItem(context.Background(), "c1", "p1", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for inactive product, got %v", err)
	}
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	repo := newStubCartRepo(activeCart("c1"))
	svc := newTestService(repo, map[string]*domain.Product{"p1": sellable("p1", 100, 10)}, nil)

	if _, err := svc.AddItem(context.Background(), "c1", "p1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err := svc.UpdateQuantity(context.Background(), "c1", "p1", 0)
	if err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("expected empty cart, got %+v", cart.Items)
	}
}

func TestUpdateQuantityUnknownLine(t *testing.T) {
	repo := newStubCartRepo(activeCart("c1"))
	svc := newTestService(repo, map[string]*domain.Product{"p1": sellable("p1", 100, 10)}, nil)

	if _, err := svc.UpdateQuantity(context.Background(), "c1", "p1", 2); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyCouponStoresDiscount(t *testing.T) {
	repo := newStubCartRepo(activeCart("c1"))
	svc := newTestService(repo, map[string]*domain.Product{"p1": sellable("p1", 10000, 10)}, map[string]int64{"TEN": 1000})

	if _, err := svc.AddItem(context.Background(), "c1", "p1", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err := svc.ApplyCoupon(context.Background(), "c1", "TEN")
	if err != nil {
		t.Fatalf("apply coupon: %v", err)
	}
	if cart.CouponCode == nil || *cart.CouponCode != "TEN" || cart.DiscountCents != 1000 {
		t.Fatalf("coupon not stored: %+v", cart)
	}
}

func TestApplyCouponUnknownCode(t *testing.T) {
	repo := newStubCartRepo(activeCart("c1"))
	svc := newTestService(repo, nil, nil)

	_, err := svc.ApplyCoupon(context.Background(), "c1", "NOPE")
	var invalid *domain.InvalidCouponError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidCouponError, got %v", err)
	}
}

func TestMutationDropsCouponThatNoLongerResolves(t *testing.T) {
	cart := activeCart("c1")
	code := "GONE"
	cart.CouponCode = &code
	cart.DiscountCents = 500
	repo := newStubCartRepo(cart)
	svc := newTestService(repo, map[string]*domain.Product{"p1": sellable("p1", 100, 10)}, nil)

	got, err := svc.AddItem(context.Background(), "c1", "p1", 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got.CouponCode != nil || got.DiscountCents != 0 {
		t.Fatalf("stale coupon must be dropped, got %+v", got)
	}
}

func TestMergeCapsAtAvailableStock(t *testing.T) {
	source := activeCart("guest")
	source.Owner = domain.OwnedByGuest("tok")
	source.Upsert("p1", 3, 100, time.Now())
	target := activeCart("cust")
	target.Upsert("p1", 2, 100, time.Now())
	repo := newStubCartRepo(source, target)
	svc := newTestService(repo, map[string]*domain.Product{"p1": sellable("p1", 100, 4)}, nil)

	got, err := svc.Merge(context.Background(), "guest", "cust")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got.Quantity("p1") != 4 {
		t.Fatalf("expected merge capped at 4, got %d", got.Quantity("p1"))
	}
	if _, err := repo.GetByID(context.Background(), "guest"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("source cart must be deleted after merge, got %v", err)
	}
}

func TestMergeSkipsVanishedProducts(t *testing.T) {
	source := activeCart("guest")
	source.Upsert("gone", 2, 100, time.Now())
	source.Upsert("p1", 1, 100, time.Now())
	target := activeCart("cust")
	repo := newStubCartRepo(source, target)
	svc := newTestService(repo, map[string]*domain.Product{"p1": sellable("p1", 100, 10)}, nil)

	got, err := svc.Merge(context.Background(), "guest", "cust")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(got.Items) != 1 || got.Quantity("p1") != 1 {
		t.Fatalf("expected only the surviving product, got %+v", got.Items)
	}
}

func TestCreateForGuestIssuesToken(t *testing.T) {
	repo := newStubCartRepo()
	svc := newTestService(repo, nil, nil)

	cart, err := svc.CreateForGuest(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !cart.Owner.IsGuest() || cart.Owner.GuestToken == nil || *cart.Owner.GuestToken == "" {
		t.Fatalf("expected guest token, got %+v", cart.Owner)
	}
}

func TestCreateForCustomerRequiresID(t *testing.T) {
	svc := newTestService(newStubCartRepo(), nil, nil)
	if _, err := svc.CreateForCustomer(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty customer id")
	}
}
