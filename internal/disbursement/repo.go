package disbursement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tracksplit/tracksplit-backend/pkg/db/models"
	"github.com/tracksplit/tracksplit-backend/pkg/enums"
	"github.com/tracksplit/tracksplit-backend/pkg/pagination"
)

// Repository manages transaction records, their distribution lines and the
// append-only payout event trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateRecord(ctx context.Context, record *models.TransactionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error)
	GetByPurchaseID(ctx context.Context, purchaseID uuid.UUID) (*models.TransactionRecord, error)
	UpdateLineOutcome(ctx context.Context, line *models.DistributionLine) error
	SetOverallStatus(ctx context.Context, id uuid.UUID, status enums.TransactionStatus, completedAt *time.Time) error
	InsertPayoutEvent(ctx context.Context, event *models.PayoutEvent) error
	ListLinesByRecipient(ctx context.Context, recipientID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.DistributionLine, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a disbursement repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreateRecord persists the record and any attached distribution lines in one
// insert chain. The unique purchase_id index surfaces duplicate submissions
// as a unique violation for the caller to translate.
func (r *repository) CreateRecord(ctx context.Context, record *models.TransactionRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error) {
	var record models.TransactionRecord
	err := r.db.WithContext(ctx).
		Preload("Distributions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&record, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) GetByPurchaseID(ctx context.Context, purchaseID uuid.UUID) (*models.TransactionRecord, error) {
	var record models.TransactionRecord
	err := r.db.WithContext(ctx).
		Preload("Distributions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&record, "purchase_id = ?", purchaseID).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateLineOutcome writes the terminal fields of a single line. Only the
// outcome columns are touched so concurrent sibling updates never clobber
// each other.
func (r *repository) UpdateLineOutcome(ctx context.Context, line *models.DistributionLine) error {
	return r.db.WithContext(ctx).
		Model(&models.DistributionLine{}).
		Where("id = ?", line.ID).
		Updates(map[string]any{
			"status":             line.Status,
			"external_reference": line.ExternalReference,
			"failure_reason":     line.FailureReason,
			"executed_at":        line.ExecutedAt,
		}).Error
}

func (r *repository) SetOverallStatus(ctx context.Context, id uuid.UUID, status enums.TransactionStatus, completedAt *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.TransactionRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"overall_status": status,
			"completed_at":   completedAt,
		}).Error
}

func (r *repository) InsertPayoutEvent(ctx context.Context, event *models.PayoutEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) ListLinesByRecipient(ctx context.Context, recipientID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.DistributionLine, error) {
	query := r.db.WithContext(ctx).
		Model(&models.DistributionLine{}).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var lines []models.DistributionLine
	if err := query.Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}
