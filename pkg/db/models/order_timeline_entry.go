package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfront/storefront/pkg/enums"
)

// OrderTimelineEntry is a customer-facing delivery checkpoint.
type OrderTimelineEntry struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	Status      enums.TimelineStatus `gorm:"column:status;not null"`
	Description string               `gorm:"column:description;not null"`
	Location    *string              `gorm:"column:location"`
	OccurredAt  time.Time            `gorm:"column:occurred_at;not null"`
}

func (e *OrderTimelineEntry) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	return nil
}
