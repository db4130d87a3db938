package enums

import "fmt"

// PayoutEventType labels append-only audit events for a distribution line.
type PayoutEventType string

const (
	PayoutEventRequested PayoutEventType = "payout_requested"
	PayoutEventSettled   PayoutEventType = "payout_settled"
	PayoutEventFailed    PayoutEventType = "payout_failed"
	PayoutEventRedriven  PayoutEventType = "payout_redriven"
)

var validPayoutEventTypes = []PayoutEventType{
	PayoutEventRequested,
	PayoutEventSettled,
	PayoutEventFailed,
	PayoutEventRedriven,
}

// String implements fmt.Stringer.
func (p PayoutEventType) String() string {
	return string(p)
}

// IsValid reports whether the value is known.
func (p PayoutEventType) IsValid() bool {
	for _, candidate := range validPayoutEventTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePayoutEventType converts raw input into a PayoutEventType.
func ParsePayoutEventType(value string) (PayoutEventType, error) {
	for _, candidate := range validPayoutEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout event type %q", value)
}
