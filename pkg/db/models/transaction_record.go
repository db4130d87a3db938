package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tracksplit/tracksplit-backend/pkg/enums"
)

// TransactionRecord is the append-only audit record for one purchase event.
// The unique purchase_id index is what makes submission idempotent. Records
// are never deleted; once OverallStatus is terminal the row is immutable.
type TransactionRecord struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PurchaseID       uuid.UUID               `gorm:"column:purchase_id;type:uuid;not null;uniqueIndex:ux_transaction_records_purchase_id"`
	WorkID           uuid.UUID               `gorm:"column:work_id;type:uuid;not null;index"`
	BuyerID          uuid.UUID               `gorm:"column:buyer_id;type:uuid;not null"`
	TotalCents       int64                   `gorm:"column:total_cents;not null"`
	Currency         enums.Currency          `gorm:"column:currency;type:currency;not null;default:'USD'"`
	RequestedRail    enums.PaymentRail       `gorm:"column:requested_rail;type:payment_rail;not null"`
	ValidationScore  int                     `gorm:"column:validation_score;not null;default:0"`
	ValidationErrors json.RawMessage         `gorm:"column:validation_errors;type:jsonb"`
	OverallStatus    enums.TransactionStatus `gorm:"column:overall_status;type:transaction_status;not null;default:'processing'"`
	Distributions    []DistributionLine      `gorm:"foreignKey:TransactionID;references:ID"`
	OccurredAt       time.Time               `gorm:"column:occurred_at;not null"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
	CompletedAt      *time.Time              `gorm:"column:completed_at"`
}
