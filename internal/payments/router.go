package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/tracksplit/tracksplit-backend/pkg/enums"
	pkgerrors "github.com/tracksplit/tracksplit-backend/pkg/errors"
	"github.com/tracksplit/tracksplit-backend/pkg/logger"
)

// Router dispatches payout requests to the rail the purchase asked for and
// enforces the port timeout. A rail that blows the deadline yields a failed
// result rather than an error so one slow payout never wedges the batch.
type Router struct {
	rails   map[enums.PaymentRail]Rail
	timeout time.Duration
	logg    *logger.Logger
}

// NewRouter wires the available rails. At least one rail is required.
func NewRouter(timeout time.Duration, logg *logger.Logger, rails ...Rail) (*Router, error) {
	if logg == nil {
		return nil, fmt.Errorf("payment router logger required")
	}
	if len(rails) == 0 {
		return nil, fmt.Errorf("payment router requires at least one rail")
	}
	byName := make(map[enums.PaymentRail]Rail, len(rails))
	for _, rail := range rails {
		if rail == nil {
			return nil, fmt.Errorf("payment router received a nil rail")
		}
		if _, dup := byName[rail.Name()]; dup {
			return nil, fmt.Errorf("duplicate payment rail %s", rail.Name())
		}
		byName[rail.Name()] = rail
	}
	return &Router{rails: byName, timeout: timeout, logg: logg}, nil
}

// Supports reports whether a rail is registered for the given name.
func (r *Router) Supports(rail enums.PaymentRail) bool {
	_, ok := r.rails[rail]
	return ok
}

// Execute runs the payout on the named rail under the port timeout.
func (r *Router) Execute(ctx context.Context, rail enums.PaymentRail, req PayoutRequest) (PayoutResult, error) {
	target, ok := r.rails[rail]
	if !ok {
		return PayoutResult{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported payment rail %q", rail))
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	result, err := target.Execute(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return failure(fmt.Sprintf("payout timed out on rail %s", rail)), nil
		}
		return PayoutResult{}, err
	}
	return result, nil
}
