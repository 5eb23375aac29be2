package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderLineItem is the immutable snapshot of one purchased product.
// ProductID is nil for lines placed from external product data.
type OrderLineItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      *uuid.UUID `gorm:"column:product_id;type:uuid"`
	ProductName    string     `gorm:"column:product_name;not null"`
	Quantity       int        `gorm:"column:quantity;not null;check:quantity >= 1"`
	UnitPriceCents int64      `gorm:"column:unit_price_cents;not null"`
	SubtotalCents  int64      `gorm:"column:subtotal_cents;not null"`
	ImageURL       *string    `gorm:"column:image_url"`
	Position       int        `gorm:"column:position;not null;default:0"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (l *OrderLineItem) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
