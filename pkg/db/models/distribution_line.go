package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tracksplit/tracksplit-backend/pkg/enums"
)

// DistributionLine is one recipient's computed share of one purchase.
// AmountCents values across a transaction always sum to the purchase total.
type DistributionLine struct {
	ID                uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionID     uuid.UUID                `gorm:"column:transaction_id;type:uuid;not null;index"`
	RecipientID       *uuid.UUID               `gorm:"column:recipient_id;type:uuid;index"`
	RecipientName     string                   `gorm:"column:recipient_name;not null"`
	Role              enums.RecipientRole      `gorm:"column:role;type:recipient_role;not null"`
	Percentage        decimal.Decimal          `gorm:"column:percentage;type:numeric(5,2);not null"`
	AmountCents       int64                    `gorm:"column:amount_cents;not null"`
	Status            enums.DistributionStatus `gorm:"column:status;type:distribution_status;not null;default:'pending'"`
	ExternalReference *string                  `gorm:"column:external_reference"`
	FailureReason     *string                  `gorm:"column:failure_reason"`
	Position          int                      `gorm:"column:position;not null"`
	ExecutedAt        *time.Time               `gorm:"column:executed_at"`
	CreatedAt         time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
