// Package transaction defines the persistence contract for transaction
// records. Implementations must enforce unique constraints on Reference and
// IdempotencyKey and index (status, created_at) for the sweeper queries.
package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/obiora/bankcore/pkg/domain/transaction"
)

// Repository persists and queries transaction records.
type Repository interface {
	// Create inserts a new record. Violating the reference or idempotency-key
	// uniqueness returns an error.
	Create(ctx context.Context, tx *transaction.Transaction) error

	// Update persists the record's mutable fields (status, fee, balance,
	// metadata, processed time).
	Update(ctx context.Context, tx *transaction.Transaction) error

	// Get returns the record by id, or transaction.ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)

	// GetByReference returns the record by caller-visible reference.
	GetByReference(ctx context.Context, reference string) (*transaction.Transaction, error)

	// GetByIdempotencyKey returns the record for a dedup key, or
	// transaction.ErrNotFound when the key has never been seen.
	GetByIdempotencyKey(ctx context.Context, key string) (*transaction.Transaction, error)

	// ListRetryable returns FAILED records created before olderThan that have
	// not been flagged permanently failed.
	ListRetryable(ctx context.Context, olderThan time.Time, limit int) ([]*transaction.Transaction, error)

	// ListStuck returns PROCESSING records created before olderThan, i.e.
	// work abandoned by a crashed or timed-out worker.
	ListStuck(ctx context.Context, olderThan time.Time, limit int) ([]*transaction.Transaction, error)

	// UpdateStatusIf performs an optimistic compare-and-swap on the status
	// column. It reports false when the record's status no longer matches
	// from, which means another worker claimed it.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to transaction.Status) (bool, error)
}
