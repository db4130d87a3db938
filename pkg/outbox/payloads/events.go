package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/tracksplit/tracksplit-backend/pkg/enums"
)

// TransactionOutcomeEvent is emitted whenever a disbursement reaches a terminal
// status. The same payload backs the completed, partially_failed and failed
// event types.
type TransactionOutcomeEvent struct {
	TransactionID uuid.UUID               `json:"transaction_id"`
	PurchaseID    string                  `json:"purchase_id"`
	WorkID        uuid.UUID               `json:"work_id"`
	TotalCents    int64                   `json:"total_cents"`
	Currency      enums.Currency          `json:"currency"`
	Status        enums.TransactionStatus `json:"status"`
	LineCount     int                     `json:"line_count"`
	FailedCount   int                     `json:"failed_count"`
}

// TransactionRedrivenEvent reports that failed lines of a transaction were replayed.
type TransactionRedrivenEvent struct {
	TransactionID  uuid.UUID   `json:"transaction_id"`
	RedrivenLineID []uuid.UUID `json:"redriven_line_ids"`
	RequestedBy    uuid.UUID   `json:"requested_by"`
}

// PayoutSettledEvent is emitted per distribution line that settled on a rail.
type PayoutSettledEvent struct {
	TransactionID     uuid.UUID         `json:"transaction_id"`
	LineID            uuid.UUID         `json:"line_id"`
	RecipientID       *uuid.UUID        `json:"recipient_id,omitempty"`
	RecipientName     string            `json:"recipient_name"`
	AmountCents       int64             `json:"amount_cents"`
	Currency          enums.Currency    `json:"currency"`
	Rail              enums.PaymentRail `json:"rail"`
	ExternalReference string            `json:"external_reference,omitempty"`
}

// PayoutFailedEvent is emitted per distribution line that a rail rejected.
type PayoutFailedEvent struct {
	TransactionID uuid.UUID         `json:"transaction_id"`
	LineID        uuid.UUID         `json:"line_id"`
	RecipientID   *uuid.UUID        `json:"recipient_id,omitempty"`
	RecipientName string            `json:"recipient_name"`
	AmountCents   int64             `json:"amount_cents"`
	Currency      enums.Currency    `json:"currency"`
	Rail          enums.PaymentRail `json:"rail"`
	FailureReason string            `json:"failure_reason"`
}

// SplitLedgerUpdatedEvent signals a replacement of a work's split entries.
type SplitLedgerUpdatedEvent struct {
	LedgerID   uuid.UUID `json:"ledger_id"`
	WorkID     uuid.UUID `json:"work_id"`
	EntryCount int       `json:"entry_count"`
}

// SplitLedgerLockedEvent signals the first successful distribution froze the split.
type SplitLedgerLockedEvent struct {
	LedgerID uuid.UUID `json:"ledger_id"`
	WorkID   uuid.UUID `json:"work_id"`
	LockedAt time.Time `json:"locked_at"`
}
