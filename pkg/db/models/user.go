package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfront/storefront/pkg/enums"
)

// User is the customer/admin identity and owns the wallet balance.
// BalanceCents is only ever changed together with a WalletTransaction row.
// OpeningBalanceCents is the signup credit, which has no transaction of its
// own; reconciliation adds it to the ledger sum.
type User struct {
	ID                  uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email               string         `gorm:"column:email;not null;uniqueIndex"`
	Name                string         `gorm:"column:name;not null"`
	Role                enums.UserRole `gorm:"column:role;not null;default:'customer'"`
	IsActive            bool           `gorm:"column:is_active;not null"`
	BalanceCents        int64          `gorm:"column:balance_cents;not null;default:0"`
	OpeningBalanceCents int64          `gorm:"column:opening_balance_cents;not null;default:0"`
	CreatedAt           time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
