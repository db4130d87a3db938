package enums

import "fmt"

// TransactionStatus is the overall outcome of one purchase disbursement.
type TransactionStatus string

const (
	TransactionStatusProcessing      TransactionStatus = "processing"
	TransactionStatusCompleted       TransactionStatus = "completed"
	TransactionStatusPartiallyFailed TransactionStatus = "partially_failed"
	TransactionStatusFailed          TransactionStatus = "failed"
)

var validTransactionStatuses = []TransactionStatus{
	TransactionStatusProcessing,
	TransactionStatusCompleted,
	TransactionStatusPartiallyFailed,
	TransactionStatusFailed,
}

// String implements fmt.Stringer.
func (t TransactionStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is known.
func (t TransactionStatus) IsValid() bool {
	for _, candidate := range validTransactionStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the record is immutable.
func (t TransactionStatus) IsTerminal() bool {
	switch t {
	case TransactionStatusCompleted, TransactionStatusPartiallyFailed, TransactionStatusFailed:
		return true
	}
	return false
}

// ParseTransactionStatus converts raw input into a TransactionStatus.
func ParseTransactionStatus(value string) (TransactionStatus, error) {
	for _, candidate := range validTransactionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction status %q", value)
}
