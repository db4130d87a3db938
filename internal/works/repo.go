package works

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tracksplit/tracksplit-backend/pkg/db/models"
)

// Repository manages persistence for catalog works.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetByID(ctx context.Context, id uuid.UUID) (*models.Work, error)
	Create(ctx context.Context, work *models.Work) error
	RecordLicense(ctx context.Context, id uuid.UUID, revenueCents int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a work repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Work, error) {
	var work models.Work
	if err := r.db.WithContext(ctx).First(&work, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &work, nil
}

func (r *repository) Create(ctx context.Context, work *models.Work) error {
	if work.ID == uuid.Nil {
		work.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(work).Error
}

// RecordLicense bumps the aggregates with SQL-side increments. Concurrent
// purchases of the same work must never lose an update, so the counters are
// never read back and re-written.
func (r *repository) RecordLicense(ctx context.Context, id uuid.UUID, revenueCents int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Work{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"license_count":       gorm.Expr("license_count + 1"),
			"total_revenue_cents": gorm.Expr("total_revenue_cents + ?", revenueCents),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
