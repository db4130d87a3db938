package payments

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/tracksplit/tracksplit-backend/pkg/config"
	"github.com/tracksplit/tracksplit-backend/pkg/enums"
	"github.com/tracksplit/tracksplit-backend/pkg/logger"
)

// ChainRail simulates stablecoin settlement. Real chain submission is stubbed
// behind configurable latency and a failure rate so the disbursement path can
// be exercised end to end without a node connection.
type ChainRail struct {
	network     string
	latency     time.Duration
	failureRate float64
	logg        *logger.Logger

	mu  sync.Mutex
	rng *mathrand.Rand
}

// NewChainRail builds the simulated on-chain rail from payments config.
func NewChainRail(cfg config.PaymentsConfig, logg *logger.Logger) (*ChainRail, error) {
	if logg == nil {
		return nil, errors.New("chain rail logger is required")
	}
	if cfg.ChainFailureRate < 0 || cfg.ChainFailureRate > 1 {
		return nil, fmt.Errorf("chain failure rate must be within [0,1], got %f", cfg.ChainFailureRate)
	}
	network := cfg.ChainNetwork
	if network == "" {
		network = "testnet"
	}
	return &ChainRail{
		network:     network,
		latency:     cfg.ChainLatency,
		failureRate: cfg.ChainFailureRate,
		logg:        logg,
		rng:         mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Name implements Rail.
func (r *ChainRail) Name() enums.PaymentRail {
	return enums.PaymentRailOnChain
}

// Execute simulates a transfer. The latency sleep honors context
// cancellation so a port timeout is not stuck behind a slow "chain".
func (r *ChainRail) Execute(ctx context.Context, req PayoutRequest) (PayoutResult, error) {
	if err := checkRequest(req); err != nil {
		return PayoutResult{}, err
	}
	if req.Currency == enums.CurrencyUSD {
		return PayoutResult{}, fmt.Errorf("on-chain rail settles USDC or ETH, got %s", req.Currency)
	}

	logCtx := r.logg.WithFields(ctx, map[string]any{
		"rail":    enums.PaymentRailOnChain.String(),
		"network": r.network,
		"line_id": req.LineID.String(),
		"amount":  req.AmountCents,
	})
	r.logg.Info(logCtx, "dispatching on-chain payout")

	if r.latency > 0 {
		timer := time.NewTimer(r.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return failure(fmt.Sprintf("chain transfer aborted: %v", ctx.Err())), nil
		case <-timer.C:
		}
	}

	if r.roll() < r.failureRate {
		reason := fmt.Sprintf("chain transfer reverted on %s", r.network)
		r.logg.Warn(r.logg.WithField(logCtx, "failure_reason", reason), "on-chain payout rejected")
		return failure(reason), nil
	}

	hash, err := txHash()
	if err != nil {
		return PayoutResult{}, fmt.Errorf("generating tx hash: %w", err)
	}
	r.logg.Info(r.logg.WithField(logCtx, "tx_hash", hash), "on-chain payout settled")
	return settled(hash), nil
}

func (r *ChainRail) roll() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func txHash() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(buf), nil
}
