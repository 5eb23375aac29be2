package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopfront/storefront/pkg/db/models"
	"github.com/shopfront/storefront/pkg/enums"
	"github.com/shopfront/storefront/pkg/types"
)

// OwnerDTO is the customer attached to an order response.
type OwnerDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// LineItemDTO is the frozen price snapshot of one purchased product.
type LineItemDTO struct {
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	Name           string     `json:"name"`
	Quantity       int        `json:"quantity"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	UnitPrice      string     `json:"unit_price"`
	SubtotalCents  int64      `json:"subtotal_cents"`
	Subtotal       string     `json:"subtotal"`
	ImageURL       *string    `json:"image_url,omitempty"`
}

// TimelineDTO is one delivery checkpoint.
type TimelineDTO struct {
	Status      enums.TimelineStatus `json:"status"`
	Description string               `json:"description"`
	Location    *string              `json:"location,omitempty"`
	OccurredAt  time.Time            `json:"occurred_at"`
}

// AddressDTO mirrors the shipping columns of the order.
type AddressDTO struct {
	FullName    string  `json:"full_name"`
	AddressLine string  `json:"address_line"`
	City        *string `json:"city,omitempty"`
	PostalCode  *string `json:"postal_code,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Country     string  `json:"country"`
}

// OrderDTO is the order payload returned to clients.
type OrderDTO struct {
	ID              uuid.UUID                `json:"id"`
	UserID          uuid.UUID                `json:"user_id"`
	Owner           *OwnerDTO                `json:"owner,omitempty"`
	Items           []LineItemDTO            `json:"items"`
	TotalCents      int64                    `json:"total_cents"`
	Total           string                   `json:"total"`
	Status          enums.OrderStatus        `json:"status"`
	PaymentStatus   enums.PaymentStatus      `json:"payment_status"`
	PaymentMethod   enums.PaymentMethod      `json:"payment_method"`
	ShippingAddress AddressDTO               `json:"shipping_address"`
	Notes           *string                  `json:"notes,omitempty"`
	Timeline        []TimelineDTO            `json:"timeline"`
	PaidAt          *time.Time               `json:"paid_at,omitempty"`
	CancelledAt     *time.Time               `json:"cancelled_at,omitempty"`
	CancelledBy     *enums.CancellationActor `json:"cancelled_by,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// OrderList is one page of orders.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// NewOrderDTO builds the response payload from a fully loaded order.
func NewOrderDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:            order.ID,
		UserID:        order.UserID,
		Items:         make([]LineItemDTO, 0, len(order.LineItems)),
		TotalCents:    order.TotalCents,
		Total:         types.FormatCents(order.TotalCents),
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		PaymentMethod: order.PaymentMethod,
		ShippingAddress: AddressDTO{
			FullName:    order.ShippingAddress.FullName,
			AddressLine: order.ShippingAddress.Line,
			City:        order.ShippingAddress.City,
			PostalCode:  order.ShippingAddress.PostalCode,
			Phone:       order.ShippingAddress.Phone,
			Country:     order.ShippingAddress.Country,
		},
		Notes:       order.Notes,
		Timeline:    make([]TimelineDTO, 0, len(order.Timeline)),
		PaidAt:      order.PaidAt,
		CancelledAt: order.CancelledAt,
		CancelledBy: order.CancelledBy,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
	if order.User != nil {
		dto.Owner = &OwnerDTO{ID: order.User.ID, Name: order.User.Name, Email: order.User.Email}
	}
	for _, item := range order.LineItems {
		dto.Items = append(dto.Items, LineItemDTO{
			ProductID:      item.ProductID,
			Name:           item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			UnitPrice:      types.FormatCents(item.UnitPriceCents),
			SubtotalCents:  item.SubtotalCents,
			Subtotal:       types.FormatCents(item.SubtotalCents),
			ImageURL:       item.ImageURL,
		})
	}
	for _, entry := range order.Timeline {
		dto.Timeline = append(dto.Timeline, TimelineDTO{
			Status:      entry.Status,
			Description: entry.Description,
			Location:    entry.Location,
			OccurredAt:  entry.OccurredAt,
		})
	}
	return dto
}
