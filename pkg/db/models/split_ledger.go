package models

import (
	"time"

	"github.com/google/uuid"
)

// SplitLedger is the declared ownership table for a work. LockedAt is set the
// first time a purchase references the work; after that the entries are
// immutable and amendments require a new ledger version.
type SplitLedger struct {
	ID        uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WorkID    uuid.UUID    `gorm:"column:work_id;type:uuid;not null;uniqueIndex"`
	Entries   []SplitEntry `gorm:"foreignKey:LedgerID;references:ID"`
	LockedAt  *time.Time   `gorm:"column:locked_at"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

// Locked reports whether the ledger may still be amended.
func (l *SplitLedger) Locked() bool {
	return l != nil && l.LockedAt != nil
}
