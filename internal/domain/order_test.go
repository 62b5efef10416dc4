package domain

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)

func pendingOrder() *Order {
	return &Order{
		ID:            "o1",
		OrderNumber:   "ORD-20260815-AAAA1111",
		CustomerID:    "cust",
		Status:        OrderStatusPending,
		PaymentStatus: PaymentStatusPending,
		TotalCents:    22599,
	}
}

func assertIllegal(t *testing.T, err error, current, attempted OrderStatus) {
	t.Helper()
	var trErr *IllegalTransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
	if trErr.Current != current || trErr.Attempted != attempted {
		t.Fatalf("unexpected detail: current=%s attempted=%s", trErr.Current, trErr.Attempted)
	}
}

func TestHappyPathTransitions(t *testing.T) {
	o := pendingOrder()
	if err := o.Confirm(); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := o.Process(); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := o.Ship("UPS", "1Z999", testNow); err != nil {
		t.Fatalf("ship: %v", err)
	}
	if o.Carrier != "UPS" || o.TrackingNumber != "1Z999" || o.ShippedAt == nil {
		t.Fatalf("tracking info not recorded: %+v", o)
	}
	if err := o.OutForDelivery(); err != nil {
		t.Fatalf("out for delivery: %v", err)
	}
	if err := o.Deliver(testNow); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if o.Status != OrderStatusDelivered || o.DeliveredAt == nil {
		t.Fatalf("unexpected final state: %+v", o)
	}
}

func TestDeliverDirectlyFromShipped(t *testing.T) {
	o := pendingOrder()
	o.Status = OrderStatusShipped
	if err := o.Deliver(testNow); err != nil {
		t.Fatalf("deliver from shipped: %v", err)
	}
}

func TestShipFromPendingIsIllegal(t *testing.T) {
	o := pendingOrder()
	err := o.Ship("UPS", "1Z999", testNow)
	assertIllegal(t, err, OrderStatusPending, OrderStatusShipped)
	if o.Status != OrderStatusPending || o.ShippedAt != nil {
		t.Fatalf("illegal transition must not mutate: %+v", o)
	}
}

func TestCancelFromDeliveredIsIllegal(t *testing.T) {
	o := pendingOrder()
	o.Status = OrderStatusDelivered
	err := o.Cancel("changed my mind", testNow)
	assertIllegal(t, err, OrderStatusDelivered, OrderStatusCancelled)
}

func TestCancelBeforeShipping(t *testing.T) {
	for _, status := range []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing} {
		o := pendingOrder()
		o.Status = status
		if err := o.Cancel("why not", testNow); err != nil {
			t.Fatalf("cancel from %s: %v", status, err)
		}
		if o.Status != OrderStatusCancelled || o.CancelledAt == nil || o.CancelReason != "why not" {
			t.Fatalf("unexpected state after cancel: %+v", o)
		}
	}
}

func TestRefundRequiresPaid(t *testing.T) {
	o := pendingOrder()
	o.Status = OrderStatusDelivered
	err := o.Refund(22599, "damaged", testNow)
	assertIllegal(t, err, OrderStatusDelivered, OrderStatusRefunded)
}

func TestRefundFull(t *testing.T) {
	o := pendingOrder()
	o.Status = OrderStatusDelivered
	o.PaymentStatus = PaymentStatusPaid
	if err := o.Refund(22599, "damaged", testNow); err != nil {
		t.Fatalf("refund: %v", err)
	}
	if o.Status != OrderStatusRefunded || o.PaymentStatus != PaymentStatusRefunded {
		t.Fatalf("unexpected state: %+v", o)
	}
	if o.RefundedCents != 22599 || o.RefundedAt == nil {
		t.Fatalf("refund not recorded: %+v", o)
	}
}

func TestRefundPartial(t *testing.T) {
	o := pendingOrder()
	o.Status = OrderStatusShipped
	o.PaymentStatus = PaymentStatusPaid
	if err := o.Refund(1000, "late delivery", testNow); err != nil {
		t.Fatalf("refund: %v", err)
	}
	if o.PaymentStatus != PaymentStatusPartiallyRefunded {
		t.Fatalf("expected partial refund, got %s", o.PaymentStatus)
	}
}

func TestRefundRejectsBadAmounts(t *testing.T) {
	o := pendingOrder()
	o.Status = OrderStatusDelivered
	o.PaymentStatus = PaymentStatusPaid
	if err := o.Refund(0, "x", testNow); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity for zero amount, got %v", err)
	}
	if err := o.Refund(o.TotalCents+1, "x", testNow); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity for overshoot, got %v", err)
	}
}

func TestMarkPaidLeavesStatusUntouched(t *testing.T) {
	o := pendingOrder()
	if err := o.Confirm(); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	o.MarkPaid("tx-42", testNow)
	if o.Status != OrderStatusConfirmed {
		t.Fatalf("payment callback must not change fulfillment status, got %s", o.Status)
	}
	if o.PaymentStatus != PaymentStatusPaid || o.PaymentTxID != "tx-42" || o.PaidAt == nil {
		t.Fatalf("payment not recorded: %+v", o)
	}
}

func TestMarkPaymentFailedFailsOrder(t *testing.T) {
	o := pendingOrder()
	o.MarkPaymentFailed()
	if o.Status != OrderStatusFailed || o.PaymentStatus != PaymentStatusFailed {
		t.Fatalf("unexpected state: %+v", o)
	}
}

func TestConfirmTwiceIsIllegal(t *testing.T) {
	o := pendingOrder()
	if err := o.Confirm(); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	assertIllegal(t, o.Confirm(), OrderStatusConfirmed, OrderStatusConfirmed)
}
