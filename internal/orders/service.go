package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfront/storefront/pkg/config"
	"github.com/shopfront/storefront/pkg/db/models"
	"github.com/shopfront/storefront/pkg/enums"
	pkgerrors "github.com/shopfront/storefront/pkg/errors"
	"github.com/shopfront/storefront/pkg/logger"
	"github.com/shopfront/storefront/pkg/metrics"
	"github.com/shopfront/storefront/pkg/outbox"
	"github.com/shopfront/storefront/pkg/outbox/payloads"
	"github.com/shopfront/storefront/pkg/pagination"
)

// Service is the order placement, cancellation and fulfilment surface.
type Service interface {
	PlaceFromCart(ctx context.Context, actor Actor, simulatePayment bool) (*OrderDTO, error)
	PlaceDirect(ctx context.Context, actor Actor, input DirectOrderInput) (*OrderDTO, error)
	CancelByCustomer(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
	CancelByAdmin(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
	Approve(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, status string) (*OrderDTO, error)
	AddTimelineEntry(ctx context.Context, actor Actor, orderID uuid.UUID, input TimelineInput) (*OrderDTO, error)
	Pay(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, actor Actor, input ListInput) (*OrderList, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	stores  Stores
	outbox  outboxPublisher
	cfg     config.OrdersConfig
	logg    *logger.Logger
	metrics *metrics.OrderMetrics
	now     func() time.Time
}

// NewService builds the order service. m may be nil.
func NewService(repo Repository, tx txRunner, stores Stores, outbox outboxPublisher, cfg config.OrdersConfig, logg *logger.Logger, m *metrics.OrderMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if !stores.complete() {
		return nil, fmt.Errorf("product, cart and wallet stores required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.CancellationLimit <= 0 || cfg.CancellationWindow <= 0 {
		return nil, fmt.Errorf("cancellation limit and window must be positive")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		stores:  stores,
		outbox:  outbox,
		cfg:     cfg,
		logg:    logg,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Approve confirms a pending order.
func (s *service) Approve(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	err := s.transition(ctx, actor, orderID, enums.OrderStatusConfirmed, enums.TimelineConfirmed, "Order approved by admin")
	if err != nil {
		s.reject(ctx, "approve", err)
		return nil, err
	}
	return s.load(ctx, orderID)
}

// UpdateStatus moves an order along the state machine. A move to cancelled
// is an admin cancellation with its wallet refund.
func (s *service) UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, raw string) (*OrderDTO, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	status, err := enums.ParseOrderStatus(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status")
	}
	if status == enums.OrderStatusCancelled {
		return s.CancelByAdmin(ctx, actor, orderID)
	}
	timelineStatus, description := timelineFor(status)
	if err := s.transition(ctx, actor, orderID, status, timelineStatus, description); err != nil {
		s.reject(ctx, "update_status", err)
		return nil, err
	}
	return s.load(ctx, orderID)
}

func (s *service) transition(ctx context.Context, actor Actor, orderID uuid.UUID, to enums.OrderStatus, timelineStatus enums.TimelineStatus, description string) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return mapOrderErr(err, "load order")
		}
		from := order.Status
		if !CanTransition(from, to) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order cannot move from %s to %s", from, to)).
				WithDetails(map[string]any{"from": from, "to": to})
		}
		if err := repo.Update(ctx, order.ID, map[string]any{"status": to}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if err := repo.AddTimeline(ctx, &models.OrderTimelineEntry{
			OrderID:     order.ID,
			Status:      timelineStatus,
			Description: description,
			OccurredAt:  s.now(),
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
		}
		return s.emit(ctx, tx, actor, enums.EventOrderStatusChanged, order.ID, payloads.OrderStatusChangedEvent{
			OrderID:   order.ID,
			From:      from,
			To:        to,
			ChangedAt: s.now(),
		})
	})
}

// AddTimelineEntry appends an admin delivery checkpoint without touching the
// coarse status.
func (s *service) AddTimelineEntry(ctx context.Context, actor Actor, orderID uuid.UUID, input TimelineInput) (*OrderDTO, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	status, err := enums.ParseTimelineStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid timeline status")
	}
	description := input.Description
	if description == "" {
		description = defaultTimelineDescription(status)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return mapOrderErr(err, "load order")
		}
		if IsTerminal(order.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is closed").
				WithDetails(map[string]any{"status": order.Status})
		}
		return mapOrderErr(repo.AddTimeline(ctx, &models.OrderTimelineEntry{
			OrderID:     order.ID,
			Status:      status,
			Description: description,
			Location:    optional(input.Location),
			OccurredAt:  s.now(),
		}), "append timeline")
	})
	if err != nil {
		s.reject(ctx, "timeline", err)
		return nil, err
	}
	return s.load(ctx, orderID)
}

// Pay simulates a successful payment. No wallet funds move.
func (s *service) Pay(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return mapOrderErr(err, "load order")
		}
		if order.UserID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
		}
		if order.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is cancelled").
				WithDetails(map[string]any{"status": order.Status})
		}
		switch order.PaymentStatus {
		case enums.PaymentStatusPaid:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
		case enums.PaymentStatusRefunded:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order was refunded").
				WithDetails(map[string]any{"payment_status": order.PaymentStatus})
		}
		paidAt := s.now()
		if err := repo.Update(ctx, order.ID, map[string]any{
			"payment_status": enums.PaymentStatusPaid,
			"paid_at":        paidAt,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
		}
		return s.emit(ctx, tx, actor, enums.EventOrderPaid, order.ID, payloads.OrderPaidEvent{
			OrderID:       order.ID,
			UserID:        order.UserID,
			AmountCents:   order.TotalCents,
			PaymentMethod: order.PaymentMethod,
			PaidAt:        paidAt,
		})
	})
	if err != nil {
		s.reject(ctx, "pay", err)
		return nil, err
	}
	return s.load(ctx, orderID)
}

// Get returns an order to its owner or to an admin.
func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, mapOrderErr(err, "load order")
	}
	if order.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	return NewOrderDTO(order), nil
}

// List returns the caller's orders newest first. Admins may list every order
// and filter by status.
func (s *service) List(ctx context.Context, actor Actor, input ListInput) (*OrderList, error) {
	if (input.All || input.Status != "") && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	filter := ListFilter{Cursor: cursor, Limit: input.Pagination.Limit}
	if !input.All {
		userID := actor.UserID
		filter.UserID = &userID
	}
	if input.Status != "" {
		status, err := enums.ParseOrderStatus(input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status")
		}
		filter.Status = &status
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	page, next := pagination.Page(rows, input.Pagination.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	result := &OrderList{Orders: make([]OrderDTO, 0, len(page)), NextCursor: next}
	for i := range page {
		result.Orders = append(result.Orders, *NewOrderDTO(&page[i]))
	}
	return result, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, mapOrderErr(err, "reload order")
	}
	return NewOrderDTO(order), nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, actor Actor, eventType enums.OutboxEventType, orderID uuid.UUID, data any) error {
	err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Version:       1,
		Actor:         buildActor(actor),
		Data:          data,
		OccurredAt:    s.now(),
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit outbox event")
	}
	return nil
}

// reject counts a failed operation by code. Internal failures are logged.
func (s *service) reject(ctx context.Context, operation string, err error) {
	code := pkgerrors.CodeInternal
	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
	}
	s.metrics.IncRejected(operation, string(code))
	if pkgerrors.Retryable(err) {
		s.logg.Error(s.logg.WithField(ctx, "operation", operation), "order operation failed", err)
	}
}

func requireAdmin(actor Actor) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}
	return nil
}

func buildActor(actor Actor) *outbox.ActorRef {
	if actor.UserID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role}
}

func mapOrderErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func defaultTimelineDescription(status enums.TimelineStatus) string {
	switch status {
	case enums.TimelineProcessing:
		return "Order is being prepared"
	case enums.TimelineShopToDelivery:
		return "Order handed over to the delivery partner"
	case enums.TimelineInTransit:
		return "Order is in transit"
	case enums.TimelineOutForDelivery:
		return "Order is out for delivery"
	case enums.TimelineDelivered:
		return "Order delivered"
	default:
		return string(status)
	}
}
