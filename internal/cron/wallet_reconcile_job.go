package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/shopfront/storefront/internal/wallet"
	"github.com/shopfront/storefront/pkg/enums"
	"github.com/shopfront/storefront/pkg/logger"
	"github.com/shopfront/storefront/pkg/metrics"
	"github.com/shopfront/storefront/pkg/outbox"
	"github.com/shopfront/storefront/pkg/outbox/payloads"
)

type walletReconciler interface {
	Reconcile(ctx context.Context) ([]wallet.Drift, error)
}

// WalletReconcileJobParams configure the ledger consistency check.
type WalletReconcileJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Reconciler walletReconciler
	Outbox     outboxEmitter
	Metrics    *metrics.OrderMetrics
}

// NewWalletReconcileJob builds the job that compares every balance with
// opening balance plus ledger. It only reports; balances are never rewritten.
func NewWalletReconcileJob(params WalletReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Reconciler == nil {
		return nil, fmt.Errorf("wallet reconciler required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &walletReconcileJob{
		logg:       params.Logger,
		db:         params.DB,
		reconciler: params.Reconciler,
		outbox:     params.Outbox,
		metrics:    params.Metrics,
		now:        time.Now,
	}, nil
}

type walletReconcileJob struct {
	logg       *logger.Logger
	db         txRunner
	reconciler walletReconciler
	outbox     outboxEmitter
	metrics    *metrics.OrderMetrics
	now        func() time.Time
}

func (j *walletReconcileJob) Name() string { return "wallet-reconcile" }

func (j *walletReconcileJob) Run(ctx context.Context) error {
	drifts, err := j.reconciler.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("reconcile wallets: %w", err)
	}
	j.metrics.SetWalletDrift(len(drifts))
	if len(drifts) == 0 {
		j.logg.Info(ctx, "wallet ledger consistent")
		return nil
	}

	var errs error
	for _, drift := range drifts {
		userCtx := j.logg.WithFields(j.logg.WithUserID(ctx, drift.UserID.String()), map[string]any{
			"balance_cents":  drift.BalanceCents,
			"expected_cents": drift.Expected(),
		})
		j.logg.Warn(userCtx, "wallet balance drifted from ledger")
		if err := j.report(ctx, drift); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("report drift for %s: %w", drift.UserID, err))
		}
	}
	return errs
}

func (j *walletReconcileJob) report(ctx context.Context, drift wallet.Drift) error {
	now := j.now().UTC()
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		return j.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWalletDrift,
			AggregateType: enums.AggregateWallet,
			AggregateID:   drift.UserID,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.WalletDriftDetectedEvent{
				UserID:              drift.UserID,
				BalanceCents:        drift.BalanceCents,
				ExpectedCents:       drift.Expected(),
				OpeningBalanceCents: drift.OpeningBalanceCents,
				LedgerCents:         drift.LedgerCents,
				DetectedAt:          now,
			},
		})
	})
}
