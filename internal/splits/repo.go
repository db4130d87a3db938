package splits

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tracksplit/tracksplit-backend/pkg/db/models"
)

// Repository manages persistence for split ledgers and their entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetByWorkID(ctx context.Context, workID uuid.UUID) (*models.SplitLedger, error)
	Create(ctx context.Context, ledger *models.SplitLedger) error
	ReplaceEntries(ctx context.Context, ledgerID uuid.UUID, entries []models.SplitEntry) error
	Lock(ctx context.Context, ledgerID uuid.UUID, lockedAt time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a split ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetByWorkID(ctx context.Context, workID uuid.UUID) (*models.SplitLedger, error) {
	var ledger models.SplitLedger
	err := r.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("work_id = ?", workID).
		First(&ledger).Error
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (r *repository) Create(ctx context.Context, ledger *models.SplitLedger) error {
	return r.db.WithContext(ctx).Create(ledger).Error
}

func (r *repository) ReplaceEntries(ctx context.Context, ledgerID uuid.UUID, entries []models.SplitEntry) error {
	if err := r.db.WithContext(ctx).
		Where("ledger_id = ?", ledgerID).
		Delete(&models.SplitEntry{}).Error; err != nil {
		return err
	}
	for i := range entries {
		entries[i].LedgerID = ledgerID
		entries[i].Position = i
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

// Lock stamps locked_at if it has not been set yet. The guard in the WHERE
// clause keeps the first purchase's timestamp under concurrent disbursements.
func (r *repository) Lock(ctx context.Context, ledgerID uuid.UUID, lockedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.SplitLedger{}).
		Where("id = ? AND locked_at IS NULL", ledgerID).
		Update("locked_at", lockedAt).Error
}
