package cron

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/storefront/internal/wallet"
	"github.com/shopfront/storefront/pkg/db/dbtest"
	"github.com/shopfront/storefront/pkg/db/models"
	"github.com/shopfront/storefront/pkg/enums"
	"github.com/shopfront/storefront/pkg/metrics"
	"github.com/shopfront/storefront/pkg/outbox"
	"github.com/shopfront/storefront/pkg/outbox/payloads"
)

func TestWalletReconcileJobReportsDrift(t *testing.T) {
	ctx := context.Background()
	client := dbtest.Open(t)
	healthy := dbtest.CreateUser(t, client, 5000)
	drifted := dbtest.CreateUser(t, client, 5000)

	walletRepo := wallet.NewRepository(client.DB())
	_, err := walletRepo.ApplyTransaction(ctx, wallet.Entry{UserID: healthy.ID, AmountCents: 1200, Type: enums.WalletDebit})
	require.NoError(t, err)
	// Balance moved without a ledger row.
	require.NoError(t, client.DB().Model(&models.User{}).Where("id = ?", drifted.ID).
		Update("balance_cents", 9000).Error)

	reconciler, err := wallet.NewService(walletRepo)
	require.NoError(t, err)
	events := outbox.NewRepository(client.DB())
	reg := prometheus.NewRegistry()
	orderMetrics := metrics.NewOrderMetrics(reg)

	job, err := NewWalletReconcileJob(WalletReconcileJobParams{
		Logger:     testLogger(),
		DB:         client,
		Reconciler: reconciler,
		Outbox:     outbox.NewService(events, testLogger()),
		Metrics:    orderMetrics,
	})
	require.NoError(t, err)
	require.Equal(t, "wallet-reconcile", job.Name())
	require.NoError(t, job.Run(ctx))

	rows, err := events.ListByAggregate(ctx, drifted.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, enums.EventWalletDrift, rows[0].EventType)
	require.Equal(t, enums.AggregateWallet, rows[0].AggregateType)

	var env outbox.PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &env))
	var data payloads.WalletDriftDetectedEvent
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.EqualValues(t, 9000, data.BalanceCents)
	require.EqualValues(t, 5000, data.ExpectedCents)

	healthyRows, err := events.ListByAggregate(ctx, healthy.ID)
	require.NoError(t, err)
	require.Empty(t, healthyRows)

	require.Equal(t, float64(1), gaugeValue(t, reg, "storefront_wallet_drifted_accounts"))
	require.EqualValues(t, 9000, dbtest.BalanceOf(t, client, drifted.ID))
}

func TestWalletReconcileJobQuietWhenConsistent(t *testing.T) {
	ctx := context.Background()
	client := dbtest.Open(t)
	dbtest.CreateUser(t, client, 100)
	reconciler, err := wallet.NewService(wallet.NewRepository(client.DB()))
	require.NoError(t, err)

	job, err := NewWalletReconcileJob(WalletReconcileJobParams{
		Logger:     testLogger(),
		DB:         client,
		Reconciler: reconciler,
		Outbox:     outbox.NewService(outbox.NewRepository(client.DB()), testLogger()),
	})
	require.NoError(t, err)
	require.NoError(t, job.Run(ctx))

	var count int64
	require.NoError(t, client.DB().Model(&models.OutboxEvent{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestNewWalletReconcileJobValidation(t *testing.T) {
	_, err := NewWalletReconcileJob(WalletReconcileJobParams{Logger: testLogger()})
	require.Error(t, err)
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() == name && len(family.GetMetric()) > 0 {
			return family.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
