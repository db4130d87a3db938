package enums

import "fmt"

// PaymentRail names the settlement path a purchase asked for.
type PaymentRail string

const (
	PaymentRailCard    PaymentRail = "card"
	PaymentRailOnChain PaymentRail = "onchain"
)

var validPaymentRails = []PaymentRail{
	PaymentRailCard,
	PaymentRailOnChain,
}

// String implements fmt.Stringer.
func (p PaymentRail) String() string {
	return string(p)
}

// IsValid reports whether the rail is recognized.
func (p PaymentRail) IsValid() bool {
	for _, candidate := range validPaymentRails {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentRail converts a raw string into a PaymentRail.
func ParsePaymentRail(value string) (PaymentRail, error) {
	for _, candidate := range validPaymentRails {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment rail %q", value)
}
