package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tracksplit/tracksplit-backend/pkg/enums"
)

// PayoutEvent records an immutable money lifecycle event tied to one
// distribution line.
type PayoutEvent struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionID uuid.UUID             `gorm:"column:transaction_id;type:uuid;not null;index"`
	LineID        uuid.UUID             `gorm:"column:line_id;type:uuid;not null;index"`
	RecipientID   *uuid.UUID            `gorm:"column:recipient_id;type:uuid"`
	Type          enums.PayoutEventType `gorm:"column:type;type:payout_event_type;not null"`
	AmountCents   int64                 `gorm:"column:amount_cents;not null"`
	Rail          enums.PaymentRail     `gorm:"column:rail;type:payment_rail;not null"`
	Metadata      json.RawMessage       `gorm:"column:metadata;type:jsonb"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
}
