package orders

import (
	"testing"

	"github.com/shopfront/storefront/pkg/enums"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to enums.OrderStatus
		want     bool
	}{
		{enums.OrderStatusPending, enums.OrderStatusConfirmed, true},
		{enums.OrderStatusPending, enums.OrderStatusCancelled, true},
		{enums.OrderStatusPending, enums.OrderStatusShipped, false},
		{enums.OrderStatusConfirmed, enums.OrderStatusShipped, true},
		{enums.OrderStatusConfirmed, enums.OrderStatusCancelled, true},
		{enums.OrderStatusConfirmed, enums.OrderStatusPending, false},
		{enums.OrderStatusShipped, enums.OrderStatusDelivered, true},
		{enums.OrderStatusShipped, enums.OrderStatusCancelled, false},
		{enums.OrderStatusDelivered, enums.OrderStatusCancelled, false},
		{enums.OrderStatusCancelled, enums.OrderStatusPending, false},
		{enums.OrderStatusPending, enums.OrderStatusPending, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCancellableAndTerminal(t *testing.T) {
	for _, status := range []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusConfirmed} {
		if !IsCancellable(status) {
			t.Fatalf("%s should be cancellable", status)
		}
		if IsTerminal(status) {
			t.Fatalf("%s should not be terminal", status)
		}
	}
	for _, status := range []enums.OrderStatus{enums.OrderStatusShipped, enums.OrderStatusDelivered, enums.OrderStatusCancelled} {
		if IsCancellable(status) {
			t.Fatalf("%s should not be cancellable", status)
		}
	}
	if !IsTerminal(enums.OrderStatusDelivered) || !IsTerminal(enums.OrderStatusCancelled) {
		t.Fatalf("delivered and cancelled are terminal")
	}
	if IsTerminal(enums.OrderStatusShipped) {
		t.Fatalf("shipped is not terminal")
	}
}
