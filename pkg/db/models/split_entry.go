package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tracksplit/tracksplit-backend/pkg/enums"
)

// SplitEntry is one (recipient, role, percentage) row of a split ledger.
// RecipientID is nullable: a payee may be named before they register.
type SplitEntry struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LedgerID      uuid.UUID           `gorm:"column:ledger_id;type:uuid;not null;index"`
	RecipientID   *uuid.UUID          `gorm:"column:recipient_id;type:uuid"`
	RecipientName string              `gorm:"column:recipient_name;not null"`
	Role          enums.RecipientRole `gorm:"column:role;type:recipient_role;not null"`
	Percentage    decimal.Decimal     `gorm:"column:percentage;type:numeric(5,2);not null"`
	Position      int                 `gorm:"column:position;not null"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}
