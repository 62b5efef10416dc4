package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusProcessing     OrderStatus = "PROCESSING"
	OrderStatusShipped        OrderStatus = "SHIPPED"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
	OrderStatusRefunded       OrderStatus = "REFUNDED"
	OrderStatusFailed         OrderStatus = "FAILED"
)

type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "PENDING"
	PaymentStatusAuthorized        PaymentStatus = "AUTHORIZED"
	PaymentStatusPaid              PaymentStatus = "PAID"
	PaymentStatusRefunded          PaymentStatus = "REFUNDED"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
	PaymentStatusFailed            PaymentStatus = "FAILED"
)

// OrderItem is an immutable snapshot of a cart line at order-creation time.
// Nothing here is ever re-derived from the live product.
type OrderItem struct {
	ProductID      string `json:"productId"`
	ProductName    string `json:"productName"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	DiscountCents  int64  `json:"discountCents"`
}

type Order struct {
	ID                  string        `json:"id"`
	OrderNumber         string        `json:"orderNumber"`
	CustomerID          string        `json:"customerId"`
	Items               []OrderItem   `json:"items"`
	SubtotalCents       int64         `json:"subtotalCents"`
	TaxCents            int64         `json:"taxCents"`
	ShippingCents       int64         `json:"shippingCents"`
	DiscountCents       int64         `json:"discountCents"`
	CouponDiscountCents int64         `json:"couponDiscountCents"`
	TotalCents          int64         `json:"totalCents"`
	Status              OrderStatus   `json:"status"`
	PaymentStatus       PaymentStatus `json:"paymentStatus"`
	PaymentTxID         string        `json:"paymentTxId,omitempty"`
	TrackingNumber      string        `json:"trackingNumber,omitempty"`
	Carrier             string        `json:"carrier,omitempty"`
	CancelReason        string        `json:"cancelReason,omitempty"`
	RefundReason        string        `json:"refundReason,omitempty"`
	RefundedCents       int64         `json:"refundedCents"`
	CreatedAt           time.Time     `json:"createdAt"`
	PaidAt              *time.Time    `json:"paidAt,omitempty"`
	ShippedAt           *time.Time    `json:"shippedAt,omitempty"`
	DeliveredAt         *time.Time    `json:"deliveredAt,omitempty"`
	CancelledAt         *time.Time    `json:"cancelledAt,omitempty"`
	RefundedAt          *time.Time    `json:"refundedAt,omitempty"`
}

func (o *Order) illegal(attempted OrderStatus) error {
	return &IllegalTransitionError{Current: o.Status, Attempted: attempted}
}

// Confirm moves a freshly placed order into fulfillment.
func (o *Order) Confirm() error {
	if o.Status != OrderStatusPending {
		return o.illegal(OrderStatusConfirmed)
	}
	o.Status = OrderStatusConfirmed
	return nil
}

// Process marks the order as being picked and packed.
func (o *Order) Process() error {
	if o.Status != OrderStatusConfirmed {
		return o.illegal(OrderStatusProcessing)
	}
	o.Status = OrderStatusProcessing
	return nil
}

// Ship records the handoff to the carrier together with tracking info.
func (o *Order) Ship(carrier, trackingNumber string, now time.Time) error {
	if o.Status != OrderStatusProcessing {
		return o.illegal(OrderStatusShipped)
	}
	o.Status = OrderStatusShipped
	o.Carrier = carrier
	o.TrackingNumber = trackingNumber
	t := now.UTC()
	o.ShippedAt = &t
	return nil
}

// OutForDelivery marks the last leg of delivery.
func (o *Order) OutForDelivery() error {
	if o.Status != OrderStatusShipped {
		return o.illegal(OrderStatusOutForDelivery)
	}
	o.Status = OrderStatusOutForDelivery
	return nil
}

// Deliver completes the happy path. Accepted from SHIPPED as well since
// carriers do not always report the out-for-delivery scan.
func (o *Order) Deliver(now time.Time) error {
	if o.Status != OrderStatusShipped && o.Status != OrderStatusOutForDelivery {
		return o.illegal(OrderStatusDelivered)
	}
	o.Status = OrderStatusDelivered
	t := now.UTC()
	o.DeliveredAt = &t
	return nil
}

// CanCancel reports whether the order has not yet shipped.
func (o *Order) CanCancel() bool {
	switch o.Status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing:
		return true
	}
	return false
}

// Cancel aborts an order that has not shipped yet. Stock restoration is the
// caller's responsibility since it requires the ledger.
func (o *Order) Cancel(reason string, now time.Time) error {
	if !o.CanCancel() {
		return o.illegal(OrderStatusCancelled)
	}
	o.Status = OrderStatusCancelled
	o.CancelReason = reason
	t := now.UTC()
	o.CancelledAt = &t
	return nil
}

// Refund returns amountCents of a paid, shipped-or-delivered order. A refund
// below the order total is recorded as partial.
func (o *Order) Refund(amountCents int64, reason string, now time.Time) error {
	if o.Status != OrderStatusDelivered && o.Status != OrderStatusShipped {
		return o.illegal(OrderStatusRefunded)
	}
	if o.PaymentStatus != PaymentStatusPaid {
		return o.illegal(OrderStatusRefunded)
	}
	if amountCents <= 0 || amountCents > o.TotalCents {
		return ErrInvalidQuantity
	}
	o.Status = OrderStatusRefunded
	if amountCents < o.TotalCents {
		o.PaymentStatus = PaymentStatusPartiallyRefunded
	} else {
		o.PaymentStatus = PaymentStatusRefunded
	}
	o.RefundedCents = amountCents
	o.RefundReason = reason
	t := now.UTC()
	o.RefundedAt = &t
	return nil
}

// MarkPaid records a successful payment callback. The fulfillment status is
// left untouched.
func (o *Order) MarkPaid(txID string, now time.Time) {
	o.PaymentStatus = PaymentStatusPaid
	o.PaymentTxID = txID
	t := now.UTC()
	o.PaidAt = &t
}

// MarkPaymentFailed records a failed payment callback and fails the order.
func (o *Order) MarkPaymentFailed() {
	o.PaymentStatus = PaymentStatusFailed
	o.Status = OrderStatusFailed
}
