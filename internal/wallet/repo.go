package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfront/storefront/pkg/db/models"
	"github.com/shopfront/storefront/pkg/enums"
	"github.com/shopfront/storefront/pkg/pagination"
)

var (
	// ErrInsufficientBalance is returned when a debit exceeds the balance.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	// ErrInvalidAmount is returned for non-positive movements.
	ErrInvalidAmount = errors.New("wallet amount must be positive")
)

// Entry describes one balance movement tied to an order.
type Entry struct {
	UserID      uuid.UUID
	OrderID     uuid.UUID
	AmountCents int64
	Type        enums.WalletTransactionType
}

// Drift is a user whose balance disagrees with their ledger.
type Drift struct {
	UserID              uuid.UUID
	BalanceCents        int64
	OpeningBalanceCents int64
	LedgerCents         int64
}

// Expected is the balance the ledger implies.
func (d Drift) Expected() int64 {
	return d.OpeningBalanceCents + d.LedgerCents
}

// Repository manages balances and the append-only transaction ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	ApplyTransaction(ctx context.Context, entry Entry) (*models.WalletTransaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.WalletTransaction, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.WalletTransaction, error)
	FindDrift(ctx context.Context) ([]Drift, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Select("id", "balance_cents").
		First(&user, "id = ?", userID).Error; err != nil {
		return 0, err
	}
	return user.BalanceCents, nil
}

// ApplyTransaction moves the balance and appends the completed ledger row.
// Call it inside a transaction so both writes commit together. Debits are
// conditional on the balance covering the amount.
func (r *repository) ApplyTransaction(ctx context.Context, entry Entry) (*models.WalletTransaction, error) {
	if entry.AmountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	if !entry.Type.IsValid() {
		return nil, errors.New("invalid wallet transaction type")
	}

	q := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", entry.UserID)
	if entry.Type == enums.WalletDebit {
		q = q.Where("balance_cents >= ?", entry.AmountCents)
	}
	res := q.UpdateColumn("balance_cents", gorm.Expr("balance_cents + ?", entry.Type.Sign()*entry.AmountCents))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.Balance(ctx, entry.UserID); err != nil {
			return nil, err
		}
		return nil, ErrInsufficientBalance
	}

	txn := &models.WalletTransaction{
		UserID:      entry.UserID,
		OrderID:     entry.OrderID,
		AmountCents: entry.AmountCents,
		Type:        entry.Type,
		Status:      enums.WalletTxCompleted,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.WalletTransaction, error) {
	qb := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var rows []models.WalletTransaction
	err := qb.Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.WalletTransaction, error) {
	var rows []models.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

const driftQuery = `
SELECT u.id AS user_id,
       u.balance_cents,
       u.opening_balance_cents,
       COALESCE(SUM(CASE WHEN t.type = 'credit' THEN t.amount_cents ELSE -t.amount_cents END), 0) AS ledger_cents
FROM users u
LEFT JOIN wallet_transactions t
  ON t.user_id = u.id AND t.status = 'completed'
GROUP BY u.id, u.balance_cents, u.opening_balance_cents
HAVING u.balance_cents <> u.opening_balance_cents
   + COALESCE(SUM(CASE WHEN t.type = 'credit' THEN t.amount_cents ELSE -t.amount_cents END), 0)
`

// FindDrift lists users whose balance is not opening balance plus the signed
// sum of their completed transactions.
func (r *repository) FindDrift(ctx context.Context) ([]Drift, error) {
	var rows []Drift
	if err := r.db.WithContext(ctx).Raw(driftQuery).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
