package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfront/storefront/pkg/db/models"
	"github.com/shopfront/storefront/pkg/enums"
	pkgerrors "github.com/shopfront/storefront/pkg/errors"
	"github.com/shopfront/storefront/pkg/pagination"
	"github.com/shopfront/storefront/pkg/types"
)

// Service exposes wallet reads and ledger reconciliation.
type Service interface {
	Balance(ctx context.Context, userID uuid.UUID) (*BalanceDTO, error)
	Transactions(ctx context.Context, userID uuid.UUID, params pagination.Params) (*TransactionList, error)
	Reconcile(ctx context.Context) ([]Drift, error)
}

// BalanceDTO is the wallet balance payload.
type BalanceDTO struct {
	UserID       uuid.UUID `json:"user_id"`
	BalanceCents int64     `json:"balance_cents"`
	Balance      string    `json:"balance"`
}

// TransactionDTO is one ledger row.
type TransactionDTO struct {
	ID          uuid.UUID                     `json:"id"`
	OrderID     uuid.UUID                     `json:"order_id"`
	AmountCents int64                         `json:"amount_cents"`
	Amount      string                        `json:"amount"`
	Type        enums.WalletTransactionType   `json:"type"`
	Status      enums.WalletTransactionStatus `json:"status"`
	CreatedAt   time.Time                     `json:"created_at"`
}

// TransactionList is one page of transactions, newest first.
type TransactionList struct {
	Transactions []TransactionDTO `json:"transactions"`
	NextCursor   string           `json:"next_cursor,omitempty"`
}

type service struct {
	repo Repository
}

// NewService wires a wallet service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (*BalanceDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	balance, err := s.repo.Balance(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load balance")
	}
	return &BalanceDTO{UserID: userID, BalanceCents: balance, Balance: types.FormatCents(balance)}, nil
}

func (s *service) Transactions(ctx context.Context, userID uuid.UUID, params pagination.Params) (*TransactionList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListByUser(ctx, userID, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallet transactions")
	}
	page, next := pagination.Page(rows, params.Limit, func(t models.WalletTransaction) pagination.Cursor {
		return pagination.Cursor{CreatedAt: t.CreatedAt, ID: t.ID}
	})
	out := &TransactionList{Transactions: make([]TransactionDTO, 0, len(page)), NextCursor: next}
	for _, t := range page {
		out.Transactions = append(out.Transactions, TransactionDTO{
			ID:          t.ID,
			OrderID:     t.OrderID,
			AmountCents: t.AmountCents,
			Amount:      types.FormatCents(t.AmountCents),
			Type:        t.Type,
			Status:      t.Status,
			CreatedAt:   t.CreatedAt,
		})
	}
	return out, nil
}

// Reconcile returns every user whose balance has drifted from the ledger.
func (s *service) Reconcile(ctx context.Context) ([]Drift, error) {
	drift, err := s.repo.FindDrift(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reconcile wallets")
	}
	return drift, nil
}
