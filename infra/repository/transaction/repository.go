// Package transaction provides the gorm-backed transaction store.
package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/obiora/bankcore/pkg/domain/transaction"
	txrepo "github.com/obiora/bankcore/pkg/repository/transaction"
)

type repository struct {
	db *gorm.DB
}

// New creates a transaction repository using the provided *gorm.DB.
func New(db *gorm.DB) txrepo.Repository {
	return &repository{db: db}
}

// Migrate creates or updates the transactions table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Model{})
}

// Create implements txrepo.Repository.
func (r *repository) Create(ctx context.Context, tx *transaction.Transaction) error {
	return r.db.WithContext(ctx).Create(toModel(tx)).Error
}

// Update implements txrepo.Repository.
func (r *repository) Update(ctx context.Context, tx *transaction.Transaction) error {
	m := toModel(tx)
	return r.db.WithContext(ctx).Model(&Model{}).Where("id = ?", m.ID).Updates(map[string]any{
		"status":        m.Status,
		"fee":           m.Fee,
		"balance_after": m.BalanceAfter,
		"metadata":      m.Metadata,
		"processed_at":  m.ProcessedAt,
	}).Error
}

// Get implements txrepo.Repository.
func (r *repository) Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	var m Model
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return toDomain(&m)
}

// GetByReference implements txrepo.Repository.
func (r *repository) GetByReference(ctx context.Context, reference string) (*transaction.Transaction, error) {
	var m Model
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&m).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return toDomain(&m)
}

// GetByIdempotencyKey implements txrepo.Repository.
func (r *repository) GetByIdempotencyKey(ctx context.Context, key string) (*transaction.Transaction, error) {
	var m Model
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&m).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return toDomain(&m)
}

// ListRetryable implements txrepo.Repository. Permanently failed records are
// excluded in memory since the flag lives inside the metadata document.
func (r *repository) ListRetryable(ctx context.Context, olderThan time.Time, limit int) ([]*transaction.Transaction, error) {
	var models []Model
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", transaction.StatusFailed, olderThan).
		Order("updated_at").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]*transaction.Transaction, 0, len(models))
	for i := range models {
		tx, err := toDomain(&models[i])
		if err != nil {
			return nil, err
		}
		if tx.PermanentlyFailed() {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

// ListStuck implements txrepo.Repository.
func (r *repository) ListStuck(ctx context.Context, olderThan time.Time, limit int) ([]*transaction.Transaction, error) {
	var models []Model
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", transaction.StatusProcessing, olderThan).
		Order("updated_at").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]*transaction.Transaction, 0, len(models))
	for i := range models {
		tx, err := toDomain(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// UpdateStatusIf implements txrepo.Repository with an optimistic
// compare-and-swap on the status column.
func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to transaction.Status) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Model{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return transaction.ErrNotFound
	}
	return err
}
