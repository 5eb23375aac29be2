package orders

import "github.com/shopfront/storefront/pkg/enums"

// transitions lists the forward moves of the coarse order status. Delivery
// sub-steps live on the timeline, not here.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:   {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:   {enums.OrderStatusDelivered},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transition.
func IsTerminal(status enums.OrderStatus) bool {
	return status.IsTerminal()
}

// IsCancellable reports whether the order can still be cancelled.
func IsCancellable(status enums.OrderStatus) bool {
	return CanTransition(status, enums.OrderStatusCancelled)
}

// timelineFor maps a coarse status change to the checkpoint shown to the
// customer.
func timelineFor(status enums.OrderStatus) (enums.TimelineStatus, string) {
	switch status {
	case enums.OrderStatusConfirmed:
		return enums.TimelineConfirmed, "Order confirmed"
	case enums.OrderStatusShipped:
		return enums.TimelineShopToDelivery, "Order handed over for delivery"
	case enums.OrderStatusDelivered:
		return enums.TimelineDelivered, "Order delivered"
	case enums.OrderStatusCancelled:
		return enums.TimelineCancelled, "Order cancelled"
	default:
		return enums.TimelinePending, "Your order has been placed successfully"
	}
}
