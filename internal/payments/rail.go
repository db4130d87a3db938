package payments

import (
	"context"

	"github.com/google/uuid"

	"github.com/tracksplit/tracksplit-backend/pkg/enums"
)

// PayoutRequest carries everything a rail needs to settle a single
// distribution line.
type PayoutRequest struct {
	LineID        uuid.UUID
	TransactionID uuid.UUID
	RecipientID   *uuid.UUID
	RecipientName string
	AmountCents   int64
	Currency      enums.Currency
	Reference     string
}

// PayoutResult reports the outcome of a rail call. Rail rejections are
// outcomes, not errors: a declined payout comes back with Settled=false and
// a FailureReason so the caller can fail the line and keep processing its
// siblings. Errors are reserved for malformed requests and broken wiring.
type PayoutResult struct {
	Settled           bool
	ExternalReference string
	FailureReason     string
}

// Rail is the settlement port. Implementations must be safe for concurrent
// use: the disbursement engine fans lines out across goroutines.
type Rail interface {
	Name() enums.PaymentRail
	Execute(ctx context.Context, req PayoutRequest) (PayoutResult, error)
}

func failure(reason string) PayoutResult {
	return PayoutResult{Settled: false, FailureReason: reason}
}

func settled(reference string) PayoutResult {
	return PayoutResult{Settled: true, ExternalReference: reference}
}
