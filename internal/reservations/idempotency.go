package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrNoIdempotencyRecord means the key has not been seen before.
var ErrNoIdempotencyRecord = errors.New("idempotency record not found")

// idempotencyTTL bounds how long a replayed token keeps returning the
// original outcome. Client retries happen within seconds; a day is plenty.
const idempotencyTTL = 24 * time.Hour

// IdempotencyStore records the outcome of mutating operations keyed by
// (caller, token, operation) so a retried request does not double-create or
// double-refund. The operation is part of the key: a token reused for a
// different operation must execute, not replay the other operation's outcome.
type IdempotencyStore interface {
	Lookup(ctx context.Context, callerID, key, operation string) (*IdempotencyRecord, error)
	Record(ctx context.Context, record *IdempotencyRecord) error
}

type idempotencyStore struct {
	db *gorm.DB
}

// NewIdempotencyStore creates a gorm-backed idempotency store.
func NewIdempotencyStore(db *gorm.DB) IdempotencyStore {
	return &idempotencyStore{db: db}
}

func (s *idempotencyStore) Lookup(ctx context.Context, callerID, key, operation string) (*IdempotencyRecord, error) {
	var record IdempotencyRecord
	err := s.db.WithContext(ctx).
		Where("caller_id = ? AND key = ? AND operation = ? AND expires_at > ?", callerID, key, operation, time.Now()).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoIdempotencyRecord
		}
		return nil, fmt.Errorf("failed to look up idempotency record: %w", err)
	}
	return &record, nil
}

func (s *idempotencyStore) Record(ctx context.Context, record *IdempotencyRecord) error {
	if record.ExpiresAt.IsZero() {
		record.ExpiresAt = time.Now().Add(idempotencyTTL)
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to record idempotency key: %w", err)
	}
	return nil
}
