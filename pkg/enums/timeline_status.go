package enums

import "fmt"

// TimelineStatus labels a delivery-tracking checkpoint. It is finer grained
// than OrderStatus and never replaces it.
type TimelineStatus string

const (
	TimelinePending        TimelineStatus = "pending"
	TimelineConfirmed      TimelineStatus = "confirmed"
	TimelineProcessing     TimelineStatus = "processing"
	TimelineShopToDelivery TimelineStatus = "shop-to-delivery"
	TimelineInTransit      TimelineStatus = "in-transit"
	TimelineOutForDelivery TimelineStatus = "out-for-delivery"
	TimelineDelivered      TimelineStatus = "delivered"
	TimelineCancelled      TimelineStatus = "cancelled"
)

var validTimelineStatuses = []TimelineStatus{
	TimelinePending,
	TimelineConfirmed,
	TimelineProcessing,
	TimelineShopToDelivery,
	TimelineInTransit,
	TimelineOutForDelivery,
	TimelineDelivered,
	TimelineCancelled,
}

// String implements fmt.Stringer.
func (s TimelineStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TimelineStatus.
func (s TimelineStatus) IsValid() bool {
	for _, candidate := range validTimelineStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTimelineStatus converts raw input into a TimelineStatus.
func ParseTimelineStatus(value string) (TimelineStatus, error) {
	for _, candidate := range validTimelineStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid timeline status %q", value)
}
