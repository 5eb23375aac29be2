package cart

import (
	"github.com/google/uuid"

	"github.com/shopfront/storefront/pkg/db/models"
	"github.com/shopfront/storefront/pkg/types"
)

// CartDTO is the hydrated cart returned to clients. Totals use current
// catalog prices; the order snapshot is taken at placement.
type CartDTO struct {
	ID         *uuid.UUID    `json:"id,omitempty"`
	UserID     uuid.UUID     `json:"user_id"`
	Items      []CartItemDTO `json:"items"`
	ItemCount  int           `json:"item_count"`
	TotalCents int64         `json:"total_cents"`
	Total      string        `json:"total"`
}

// CartItemDTO is one cart line joined with its product.
type CartItemDTO struct {
	ProductID     uuid.UUID `json:"product_id"`
	Name          string    `json:"name,omitempty"`
	ImageURL      *string   `json:"image_url,omitempty"`
	PriceCents    int64     `json:"price_cents"`
	Quantity      int       `json:"quantity"`
	SubtotalCents int64     `json:"subtotal_cents"`
	Stock         int       `json:"stock"`
	Available     bool      `json:"available"`
}

func newCartDTO(c *Cart, products map[uuid.UUID]*models.Product) *CartDTO {
	dto := &CartDTO{UserID: c.UserID, Items: make([]CartItemDTO, 0, c.Len())}
	if c.ID != uuid.Nil {
		id := c.ID
		dto.ID = &id
	}
	for _, line := range c.Lines() {
		item := CartItemDTO{ProductID: line.ProductID, Quantity: line.Quantity}
		if p, ok := products[line.ProductID]; ok {
			item.Name = p.Name
			item.ImageURL = p.ImageURL
			item.PriceCents = p.PriceCents
			item.Stock = p.Stock
			item.SubtotalCents = p.PriceCents * int64(line.Quantity)
			item.Available = p.IsActive && p.Stock >= line.Quantity
			dto.TotalCents += item.SubtotalCents
		}
		dto.ItemCount += line.Quantity
		dto.Items = append(dto.Items, item)
	}
	dto.Total = types.FormatCents(dto.TotalCents)
	return dto
}
