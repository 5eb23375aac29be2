package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfront/storefront/pkg/enums"
)

// ShippingAddress is stored inline on the order row.
type ShippingAddress struct {
	FullName   string  `gorm:"column:full_name;not null;default:''"`
	Line       string  `gorm:"column:address_line;not null;default:''"`
	City       *string `gorm:"column:city"`
	PostalCode *string `gorm:"column:postal_code"`
	Phone      *string `gorm:"column:phone"`
	Country    string  `gorm:"column:country;not null;default:''"`
}

// Order is the durable purchase record. Line items are frozen at creation;
// only the status, payment and cancellation columns change afterwards.
type Order struct {
	ID              uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	UserID          uuid.UUID                `gorm:"column:user_id;type:uuid;not null;index"`
	User            *User                    `gorm:"foreignKey:UserID;references:ID"`
	TotalCents      int64                    `gorm:"column:total_cents;not null"`
	Status          enums.OrderStatus        `gorm:"column:status;not null;default:'pending';index"`
	PaymentStatus   enums.PaymentStatus      `gorm:"column:payment_status;not null;default:'pending'"`
	PaymentMethod   enums.PaymentMethod      `gorm:"column:payment_method;not null;default:'wallet'"`
	ShippingAddress ShippingAddress          `gorm:"embedded;embeddedPrefix:shipping_"`
	Notes           *string                  `gorm:"column:notes"`
	CancelledAt     *time.Time               `gorm:"column:cancelled_at"`
	CancelledBy     *enums.CancellationActor `gorm:"column:cancelled_by"`
	PaidAt          *time.Time               `gorm:"column:paid_at"`
	LineItems       []OrderLineItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Timeline        []OrderTimelineEntry     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time                `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt       time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
