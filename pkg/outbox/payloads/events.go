package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopfront/storefront/pkg/enums"
)

// OrderLine is the line snapshot carried on order.placed.
type OrderLine struct {
	ProductID  *uuid.UUID `json:"product_id,omitempty"`
	Name       string     `json:"name"`
	Quantity   int        `json:"quantity"`
	PriceCents int64      `json:"price_cents"`
}

// OrderPlacedEvent fires once per order, cart or direct.
type OrderPlacedEvent struct {
	OrderID       uuid.UUID           `json:"order_id"`
	UserID        uuid.UUID           `json:"user_id"`
	Source        string              `json:"source"`
	TotalCents    int64               `json:"total_cents"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	Lines         []OrderLine         `json:"lines"`
	PlacedAt      time.Time           `json:"placed_at"`
}

// OrderPaidEvent fires when payment status becomes paid.
type OrderPaidEvent struct {
	OrderID       uuid.UUID           `json:"order_id"`
	UserID        uuid.UUID           `json:"user_id"`
	AmountCents   int64               `json:"amount_cents"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	PaidAt        time.Time           `json:"paid_at"`
}

// OrderStatusChangedEvent fires on every non-cancel status transition.
type OrderStatusChangedEvent struct {
	OrderID   uuid.UUID         `json:"order_id"`
	From      enums.OrderStatus `json:"from"`
	To        enums.OrderStatus `json:"to"`
	ChangedAt time.Time         `json:"changed_at"`
}

// OrderCancelledEvent carries the refund outcome of a cancellation.
type OrderCancelledEvent struct {
	OrderID       uuid.UUID               `json:"order_id"`
	UserID        uuid.UUID               `json:"user_id"`
	CancelledBy   enums.CancellationActor `json:"cancelled_by"`
	Reason        string                  `json:"reason,omitempty"`
	PaymentStatus enums.PaymentStatus     `json:"payment_status"`
	RefundedCents int64                   `json:"refunded_cents"`
	StockRestored bool                    `json:"stock_restored"`
	CancelledAt   time.Time               `json:"cancelled_at"`
}

// WalletDriftDetectedEvent is emitted by reconciliation when a stored balance
// disagrees with its ledger.
type WalletDriftDetectedEvent struct {
	UserID              uuid.UUID `json:"user_id"`
	BalanceCents        int64     `json:"balance_cents"`
	ExpectedCents       int64     `json:"expected_cents"`
	OpeningBalanceCents int64     `json:"opening_balance_cents"`
	LedgerCents         int64     `json:"ledger_cents"`
	DetectedAt          time.Time `json:"detected_at"`
}
