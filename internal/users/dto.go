package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopfront/storefront/pkg/db/models"
	"github.com/shopfront/storefront/pkg/enums"
	"github.com/shopfront/storefront/pkg/types"
)

// UserDTO is the transport shape of a user, wallet balance included.
type UserDTO struct {
	ID           uuid.UUID      `json:"id"`
	Email        string         `json:"email"`
	Name         string         `json:"name"`
	Role         enums.UserRole `json:"role"`
	IsActive     bool           `json:"is_active"`
	BalanceCents int64          `json:"balance_cents"`
	Balance      string         `json:"balance"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email               string
	Name                string
	Role                enums.UserRole
	OpeningBalanceCents int64
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		IsActive:     u.IsActive,
		BalanceCents: u.BalanceCents,
		Balance:      types.FormatCents(u.BalanceCents),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// ToModel starts the wallet at the opening balance so the ledger invariant
// holds from the first row.
func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.RoleCustomer
	}
	return &models.User{
		Email:               c.Email,
		Name:                c.Name,
		Role:                role,
		IsActive:            true,
		BalanceCents:        c.OpeningBalanceCents,
		OpeningBalanceCents: c.OpeningBalanceCents,
	}
}
