package enums

import "fmt"

// DistributionStatus tracks one recipient line through a disbursement.
type DistributionStatus string

const (
	DistributionStatusPending   DistributionStatus = "pending"
	DistributionStatusExecuting DistributionStatus = "executing"
	DistributionStatusCompleted DistributionStatus = "completed"
	DistributionStatusFailed    DistributionStatus = "failed"
)

var validDistributionStatuses = []DistributionStatus{
	DistributionStatusPending,
	DistributionStatusExecuting,
	DistributionStatusCompleted,
	DistributionStatusFailed,
}

// String implements fmt.Stringer.
func (d DistributionStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is known.
func (d DistributionStatus) IsValid() bool {
	for _, candidate := range validDistributionStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the line can no longer change.
func (d DistributionStatus) IsTerminal() bool {
	return d == DistributionStatusCompleted || d == DistributionStatusFailed
}

// ParseDistributionStatus converts raw input into a DistributionStatus.
func ParseDistributionStatus(value string) (DistributionStatus, error) {
	for _, candidate := range validDistributionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid distribution status %q", value)
}
