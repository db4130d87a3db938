package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateTransactionRecord OutboxAggregateType = "transaction_record"
	AggregateDistributionLine  OutboxAggregateType = "distribution_line"
	AggregateSplitLedger       OutboxAggregateType = "split_ledger"
	AggregateWork              OutboxAggregateType = "work"
	AggregateNotification      OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateTransactionRecord,
	AggregateDistributionLine,
	AggregateSplitLedger,
	AggregateWork,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventTransactionCompleted       OutboxEventType = "transaction_completed"
	EventTransactionPartiallyFailed OutboxEventType = "transaction_partially_failed"
	EventTransactionFailed          OutboxEventType = "transaction_failed"
	EventTransactionRedriven        OutboxEventType = "transaction_redriven"
	EventPayoutSettled              OutboxEventType = "payout_settled"
	EventPayoutFailed               OutboxEventType = "payout_failed"
	EventSplitLedgerUpdated         OutboxEventType = "split_ledger_updated"
	EventSplitLedgerLocked          OutboxEventType = "split_ledger_locked"
)

var validOutboxEventTypes = []OutboxEventType{
	EventTransactionCompleted,
	EventTransactionPartiallyFailed,
	EventTransactionFailed,
	EventTransactionRedriven,
	EventPayoutSettled,
	EventPayoutFailed,
	EventSplitLedgerUpdated,
	EventSplitLedgerLocked,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
