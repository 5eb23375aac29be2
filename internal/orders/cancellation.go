package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfront/storefront/internal/wallet"
	"github.com/shopfront/storefront/pkg/db/models"
	"github.com/shopfront/storefront/pkg/enums"
	pkgerrors "github.com/shopfront/storefront/pkg/errors"
	"github.com/shopfront/storefront/pkg/outbox/payloads"
)

// CancelByCustomer lets the owner cancel a pending or confirmed order. Stock
// is restored for lines that reference a product. A paid order is marked
// refunded without crediting the wallet; only the admin path moves money.
func (s *service) CancelByCustomer(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return mapOrderErr(err, "load order")
		}
		if order.UserID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "you can only cancel your own order")
		}
		if !IsCancellable(order.Status) {
			return notCancellable(order.Status)
		}
		// Lock order: order row, then user row.
		if err := s.lockActiveUser(ctx, tx, actor.UserID); err != nil {
			return err
		}

		since := s.now().Add(-s.cfg.CancellationWindow)
		count, err := repo.CountCustomerCancellationsSince(ctx, actor.UserID, since)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count cancellations")
		}
		if count >= int64(s.cfg.CancellationLimit) {
			return pkgerrors.New(pkgerrors.CodeRateLimit,
				fmt.Sprintf("cancellation limit of %d reached", s.cfg.CancellationLimit)).
				WithDetails(map[string]any{
					"limit":  s.cfg.CancellationLimit,
					"window": s.cfg.CancellationWindow.String(),
				})
		}

		products := s.stores.Products(tx)
		for _, item := range order.LineItems {
			if item.ProductID == nil {
				continue
			}
			if _, err := products.AdjustStock(ctx, *item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
			}
		}

		paymentStatus := order.PaymentStatus.AfterCancel()
		if err := s.markCancelled(ctx, repo, order, enums.CancelledByCustomer, paymentStatus, "Order cancelled by customer"); err != nil {
			return err
		}
		return s.emit(ctx, tx, actor, enums.EventOrderCancelled, order.ID, payloads.OrderCancelledEvent{
			OrderID:       order.ID,
			UserID:        order.UserID,
			CancelledBy:   enums.CancelledByCustomer,
			PaymentStatus: paymentStatus,
			StockRestored: true,
			CancelledAt:   s.now(),
		})
	})
	if err != nil {
		s.reject(ctx, "cancel_customer", err)
		return nil, err
	}
	s.metrics.IncCancelled(string(enums.CancelledByCustomer))
	s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), "order cancelled by customer")
	return s.load(ctx, orderID)
}

// CancelByAdmin cancels a pending or confirmed order. A paid order is
// refunded to the wallet with a credit entry. Stock is not restored and
// there is no cancellation cap.
func (s *service) CancelByAdmin(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	var refunded int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return mapOrderErr(err, "load order")
		}
		if !IsCancellable(order.Status) {
			return notCancellable(order.Status)
		}

		paymentStatus := order.PaymentStatus
		description := "Order cancelled by admin"
		if paymentStatus == enums.PaymentStatusPaid {
			if order.TotalCents > 0 {
				_, err := s.stores.Wallets(tx).ApplyTransaction(ctx, wallet.Entry{
					UserID:      order.UserID,
					OrderID:     order.ID,
					AmountCents: order.TotalCents,
					Type:        enums.WalletCredit,
				})
				if err != nil {
					return mapUserErr(err)
				}
				refunded = order.TotalCents
			}
			paymentStatus = paymentStatus.AfterCancel()
			description = "Order cancelled by admin - refund processed"
		}
		if err := s.markCancelled(ctx, repo, order, enums.CancelledByAdmin, paymentStatus, description); err != nil {
			return err
		}
		return s.emit(ctx, tx, actor, enums.EventOrderCancelled, order.ID, payloads.OrderCancelledEvent{
			OrderID:       order.ID,
			UserID:        order.UserID,
			CancelledBy:   enums.CancelledByAdmin,
			PaymentStatus: paymentStatus,
			RefundedCents: refunded,
			CancelledAt:   s.now(),
		})
	})
	if err != nil {
		s.reject(ctx, "cancel_admin", err)
		return nil, err
	}
	s.metrics.IncCancelled(string(enums.CancelledByAdmin))
	s.metrics.AddWalletMovement(string(enums.WalletCredit), refunded)
	s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), "order cancelled by admin")
	return s.load(ctx, orderID)
}

func (s *service) markCancelled(ctx context.Context, repo Repository, order *models.Order, by enums.CancellationActor, paymentStatus enums.PaymentStatus, description string) error {
	now := s.now()
	if err := repo.Update(ctx, order.ID, map[string]any{
		"status":         enums.OrderStatusCancelled,
		"payment_status": paymentStatus,
		"cancelled_at":   now,
		"cancelled_by":   by,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	if err := repo.AddTimeline(ctx, &models.OrderTimelineEntry{
		OrderID:     order.ID,
		Status:      enums.TimelineCancelled,
		Description: description,
		OccurredAt:  now,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
	}
	return nil
}

func notCancellable(status enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be cancelled").
		WithDetails(map[string]any{"status": status})
}
