package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfront/storefront/pkg/config"
	"github.com/shopfront/storefront/pkg/db"
	"github.com/shopfront/storefront/pkg/db/models"
	"github.com/shopfront/storefront/pkg/enums"
	pkgerrors "github.com/shopfront/storefront/pkg/errors"
	"github.com/shopfront/storefront/pkg/pagination"
)

// Service covers the thin user surface the storefront needs: profile reads,
// admin listing, blocking and account creation with the signup wallet
// credit.
type Service interface {
	Create(ctx context.Context, input CreateUserInput) (*UserDTO, error)
	EnsureAdmin(ctx context.Context, email, name string) (*UserDTO, error)
	Get(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	List(ctx context.Context, params pagination.Params) (*UserList, error)
	SetActive(ctx context.Context, actorID, userID uuid.UUID, active bool) (*UserDTO, error)
}

// CreateUserInput is the validated account payload.
type CreateUserInput struct {
	Email string
	Name  string
	Role  enums.UserRole
}

// UserList is one page of users.
type UserList struct {
	Users      []UserDTO `json:"users"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

type userRepository interface {
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.User, error)
}

type service struct {
	repo   userRepository
	wallet config.WalletConfig
}

// NewService wires the user service. The wallet config supplies the opening
// balance credited to customers at creation.
func NewService(repo userRepository, wallet config.WalletConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if wallet.StartingBalanceCents < 0 {
		return nil, fmt.Errorf("starting balance must not be negative")
	}
	return &service{repo: repo, wallet: wallet}, nil
}

func (s *service) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid email is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	role := input.Role
	if role == "" {
		role = enums.RoleCustomer
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	var opening int64
	if role == enums.RoleCustomer {
		opening = s.wallet.StartingBalanceCents
	}

	user, err := s.repo.Create(ctx, CreateUserDTO{
		Email:               email,
		Name:                name,
		Role:                role,
		OpeningBalanceCents: opening,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return FromModel(user), nil
}

// EnsureAdmin creates the bootstrap administrator unless the email already
// exists. An existing non-admin account is reported as a conflict rather than
// being promoted.
func (s *service) EnsureAdmin(ctx context.Context, email, name string) (*UserDTO, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != enums.RoleAdmin {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "bootstrap email belongs to a non-admin user")
		}
		return FromModel(existing), nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup bootstrap admin")
	}
	return s.Create(ctx, CreateUserInput{Email: email, Name: name, Role: enums.RoleAdmin})
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*UserList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	page, next := pagination.Page(rows, params.Limit, func(u models.User) pagination.Cursor {
		return pagination.Cursor{CreatedAt: u.CreatedAt, ID: u.ID}
	})
	out := &UserList{Users: make([]UserDTO, 0, len(page)), NextCursor: next}
	for i := range page {
		out.Users = append(out.Users, *FromModel(&page[i]))
	}
	return out, nil
}

// SetActive blocks or unblocks an account. Blocked users keep their history
// but cannot place or cancel orders. Admins cannot block themselves.
func (s *service) SetActive(ctx context.Context, actorID, userID uuid.UUID, active bool) (*UserDTO, error) {
	if !active && actorID == userID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "you cannot block your own account")
	}
	user, err := s.repo.SetActive(ctx, userID, active)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user status")
	}
	return FromModel(user), nil
}
