package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopfront/storefront/pkg/db/dbtest"
	"github.com/shopfront/storefront/pkg/db/models"
	"github.com/shopfront/storefront/pkg/enums"
	"github.com/shopfront/storefront/pkg/logger"
	"github.com/shopfront/storefront/pkg/outbox"
)

func newService(t *testing.T) (*outbox.Service, *outbox.Repository, *gorm.DB, func(fn func(tx *gorm.DB) error) error) {
	t.Helper()
	client := dbtest.Open(t)
	repo := outbox.NewRepository(client.DB())
	svc := outbox.NewService(repo, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	run := func(fn func(tx *gorm.DB) error) error {
		return client.WithTx(context.Background(), fn)
	}
	return svc, repo, client.DB(), run
}

func TestEmitWritesEnvelope(t *testing.T) {
	svc, repo, _, run := newService(t)
	ctx := logger.New(logger.Options{ServiceName: "test", Output: io.Discard}).WithRequestID(context.Background(), "req-42")
	orderID := uuid.New()
	actor := &outbox.ActorRef{UserID: uuid.New(), Role: enums.RoleCustomer}

	err := run(func(tx *gorm.DB) error {
		return svc.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         actor,
			Data:          map[string]any{"orderId": orderID},
		})
	})
	require.NoError(t, err)

	rows, err := repo.ListByAggregate(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Nil(t, rows[0].PublishedAt)

	var env outbox.PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &env))
	require.Equal(t, 1, env.Version)
	require.NotEmpty(t, env.EventID)
	require.Equal(t, actor.UserID, env.Actor.UserID)
	require.Equal(t, "req-42", env.CorrelationID)
	require.JSONEq(t, `{"orderId":"`+orderID.String()+`"}`, string(env.Data))
}

func TestEmitRollsBackWithTransaction(t *testing.T) {
	svc, repo, _, run := newService(t)
	ctx := context.Background()
	orderID := uuid.New()

	boom := errors.New("boom")
	err := run(func(tx *gorm.DB) error {
		if err := svc.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Data:          struct{}{},
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	rows, err := repo.ListByAggregate(ctx, orderID)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestEmitRejectsUnknownEventAndNilTx(t *testing.T) {
	svc, _, _, run := newService(t)
	ctx := context.Background()

	require.Error(t, svc.Emit(ctx, nil, outbox.DomainEvent{EventType: enums.EventOrderPaid}))
	err := run(func(tx *gorm.DB) error {
		return svc.Emit(ctx, tx, outbox.DomainEvent{EventType: "order.unknown"})
	})
	require.Error(t, err)
}

func TestPublishLifecycle(t *testing.T) {
	svc, repo, conn, run := newService(t)
	ctx := context.Background()
	dlq := outbox.NewDLQRepository(conn)

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	require.NoError(t, run(func(tx *gorm.DB) error {
		for _, id := range ids {
			if err := svc.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderStatusChanged,
				AggregateType: enums.AggregateOrder,
				AggregateID:   id,
				Data:          map[string]string{"to": "confirmed"},
			}); err != nil {
				return err
			}
		}
		return nil
	}))

	var fetched []models.OutboxEvent
	require.NoError(t, run(func(tx *gorm.DB) error {
		var err error
		fetched, err = repo.FetchUnpublishedForPublish(tx, 10, 3)
		if err != nil {
			return err
		}
		if err := repo.MarkPublishedTx(tx, fetched[0].ID); err != nil {
			return err
		}
		if err := repo.MarkFailedTx(tx, fetched[1].ID, errors.New("stream down")); err != nil {
			return err
		}
		terminal := errors.New("bad payload")
		if err := repo.MarkTerminalTx(tx, fetched[2].ID, terminal, 3); err != nil {
			return err
		}
		msg := terminal.Error()
		return dlq.InsertTx(tx, models.OutboxDLQ{
			EventID:       fetched[2].ID,
			EventType:     fetched[2].EventType,
			AggregateType: fetched[2].AggregateType,
			AggregateID:   fetched[2].AggregateID,
			Payload:       fetched[2].Payload,
			ErrorReason:   enums.OutboxDLQReasonNonRetryable,
			ErrorMessage:  &msg,
			AttemptCount:  3,
		})
	}))
	require.Len(t, fetched, 3)

	var again []models.OutboxEvent
	require.NoError(t, run(func(tx *gorm.DB) error {
		var err error
		again, err = repo.FetchUnpublishedForPublish(tx, 10, 3)
		return err
	}))
	require.Len(t, again, 1)
	require.Equal(t, fetched[1].ID, again[0].ID)
	require.Equal(t, 1, again[0].AttemptCount)
	require.NotNil(t, again[0].LastError)

	dead, err := dlq.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	require.Equal(t, fetched[2].ID, dead[0].EventID)

	deleted, err := repo.DeletePublishedBefore(ctx, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)
}
