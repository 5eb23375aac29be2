package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/storefront/pkg/db/dbtest"
	"github.com/shopfront/storefront/pkg/enums"
	pkgerrors "github.com/shopfront/storefront/pkg/errors"
	"github.com/shopfront/storefront/pkg/pagination"
)

func TestNewServiceRequiresRepository(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error for nil repository")
	}
}

func TestBalance(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()))
	require.NoError(t, err)
	user := dbtest.CreateUser(t, client, 100000)

	got, err := svc.Balance(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(100000), got.BalanceCents)
	require.Equal(t, "1000.00", got.Balance)

	_, err = svc.Balance(context.Background(), uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	_, err = svc.Balance(context.Background(), uuid.Nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestTransactionsPaginateNewestFirst(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	svc, err := NewService(repo)
	require.NoError(t, err)
	user := dbtest.CreateUser(t, client, 10000)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.ApplyTransaction(ctx, Entry{UserID: user.ID, OrderID: uuid.New(), AmountCents: int64(100 * (i + 1)), Type: enums.WalletDebit})
		require.NoError(t, err)
	}

	first, err := svc.Transactions(ctx, user.ID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Transactions, 2)
	require.Equal(t, int64(300), first.Transactions[0].AmountCents)
	require.NotEmpty(t, first.NextCursor)

	rest, err := svc.Transactions(ctx, user.ID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Transactions, 1)
	require.Equal(t, int64(100), rest.Transactions[0].AmountCents)

	_, err = svc.Transactions(ctx, user.ID, pagination.Params{Cursor: "@@"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestReconcileCleanLedger(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	svc, err := NewService(repo)
	require.NoError(t, err)
	user := dbtest.CreateUser(t, client, 2500)
	ctx := context.Background()

	_, err = repo.ApplyTransaction(ctx, Entry{UserID: user.ID, OrderID: uuid.New(), AmountCents: 2500, Type: enums.WalletDebit})
	require.NoError(t, err)
	_, err = repo.ApplyTransaction(ctx, Entry{UserID: user.ID, OrderID: uuid.New(), AmountCents: 700, Type: enums.WalletCredit})
	require.NoError(t, err)

	drift, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	require.Empty(t, drift)
}
