package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfront/storefront/pkg/enums"
)

// WalletTransaction is an append-only wallet ledger entry. AmountCents is
// always positive; Type carries the direction.
type WalletTransaction struct {
	ID          uuid.UUID                     `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID                     `gorm:"column:user_id;type:uuid;not null;index"`
	OrderID     uuid.UUID                     `gorm:"column:order_id;type:uuid;not null;index"`
	AmountCents int64                         `gorm:"column:amount_cents;not null"`
	Type        enums.WalletTransactionType   `gorm:"column:type;not null"`
	Status      enums.WalletTransactionStatus `gorm:"column:status;not null;default:'completed'"`
	CreatedAt   time.Time                     `gorm:"column:created_at;autoCreateTime"`
}

func (w *WalletTransaction) BeforeCreate(*gorm.DB) error {
	ensureID(&w.ID)
	return nil
}

// SignedCents returns the amount with the direction applied.
func (w WalletTransaction) SignedCents() int64 {
	return w.Type.Sign() * w.AmountCents
}
