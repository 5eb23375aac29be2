package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfront/storefront/internal/cart"
	"github.com/shopfront/storefront/internal/wallet"
	"github.com/shopfront/storefront/pkg/db/models"
	"github.com/shopfront/storefront/pkg/enums"
	"github.com/shopfront/storefront/pkg/outbox"
	"github.com/shopfront/storefront/pkg/pagination"
)

// Repository defines persistence operations for orders, their line items
// and timelines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	AddTimeline(ctx context.Context, entry *models.OrderTimelineEntry) error
	List(ctx context.Context, filter ListFilter) ([]models.Order, error)
	CountCustomerCancellationsSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
	LockUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// ListFilter narrows List. Nil fields are not applied.
type ListFilter struct {
	UserID *uuid.UUID
	Status *enums.OrderStatus
	Cursor *pagination.Cursor
	Limit  int
}

// ProductStore is the inventory ledger as placement and cancellation see it.
type ProductStore interface {
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error)
}

// CartStore reads and clears the caller's cart.
type CartStore interface {
	Load(ctx context.Context, userID uuid.UUID) (*cart.Cart, error)
	ClearByUserID(ctx context.Context, userID uuid.UUID) error
}

// WalletStore moves balances in lockstep with the ledger.
type WalletStore interface {
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	ApplyTransaction(ctx context.Context, entry wallet.Entry) (*models.WalletTransaction, error)
}

// Stores binds each ledger to a transaction handle.
type Stores struct {
	Products func(tx *gorm.DB) ProductStore
	Carts    func(tx *gorm.DB) CartStore
	Wallets  func(tx *gorm.DB) WalletStore
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}
