package orders

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopfront/storefront/pkg/enums"
	"github.com/shopfront/storefront/pkg/pagination"
)

// Actor is the authenticated caller of an order operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == enums.RoleAdmin
}

// DirectItemInput is one externally priced line. Price accepts a JSON string
// or number; Quantity defaults to 1 when omitted.
type DirectItemInput struct {
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"gte=0,lte=10000"`
	Image    string          `json:"image"`
}

// ShippingInput is the delivery address supplied by the client.
type ShippingInput struct {
	FullName    string `json:"full_name" validate:"required"`
	AddressLine string `json:"address_line" validate:"required"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	Phone       string `json:"phone"`
	Country     string `json:"country"`
}

// DirectOrderInput places an order from product data that bypasses the
// catalog and the inventory ledger.
type DirectOrderInput struct {
	Items         []DirectItemInput `json:"items" validate:"required,min=1,dive"`
	Shipping      ShippingInput     `json:"shipping_address"`
	PaymentMethod string            `json:"payment_method"`
	Email         string            `json:"email"`
}

// TimelineInput appends a delivery checkpoint.
type TimelineInput struct {
	Status      string `json:"status" validate:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// ListInput selects a page of orders. All and Status are admin-only.
type ListInput struct {
	All        bool
	Status     string
	Pagination pagination.Params
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
