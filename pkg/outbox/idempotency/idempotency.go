package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shopfront/storefront/pkg/redis"
)

// Manager remembers which outbox events already reached a stream, so a row
// re-fetched after a crash between XADD and commit is not appended twice.
// Keys follow `idempotency:evt:published:<stream>:<event_id>`.
type Manager struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

func NewManager(store redis.IdempotencyStore, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// MarkPublished claims the event for the stream. It reports true when a
// previous attempt already claimed it.
func (m *Manager) MarkPublished(ctx context.Context, stream string, eventID uuid.UUID) (bool, error) {
	key, err := m.publishedKey(stream, eventID)
	if err != nil {
		return false, err
	}
	set, err := m.store.SetNX(ctx, key, "1", m.ttl)
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Release drops the claim after a failed append so the next attempt retries.
func (m *Manager) Release(ctx context.Context, stream string, eventID uuid.UUID) error {
	key, err := m.publishedKey(stream, eventID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

func (m *Manager) publishedKey(stream string, eventID uuid.UUID) (string, error) {
	if stream == "" {
		return "", errors.New("stream name is required")
	}
	if eventID == uuid.Nil {
		return "", errors.New("event id is required")
	}
	return m.store.IdempotencyKey(fmt.Sprintf("evt:published:%s", stream), eventID.String()), nil
}
