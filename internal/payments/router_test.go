package payments

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tracksplit/tracksplit-backend/pkg/enums"
	pkgerrors "github.com/tracksplit/tracksplit-backend/pkg/errors"
)

type scriptedRail struct {
	name enums.PaymentRail
	fn   func(ctx context.Context, req PayoutRequest) (PayoutResult, error)
}

func (s *scriptedRail) Name() enums.PaymentRail { return s.name }

func (s *scriptedRail) Execute(ctx context.Context, req PayoutRequest) (PayoutResult, error) {
	return s.fn(ctx, req)
}

func TestRouterDispatchesToNamedRail(t *testing.T) {
	card := &scriptedRail{name: enums.PaymentRailCard, fn: func(context.Context, PayoutRequest) (PayoutResult, error) {
		return settled("pay_1"), nil
	}}
	chain := &scriptedRail{name: enums.PaymentRailOnChain, fn: func(context.Context, PayoutRequest) (PayoutResult, error) {
		return settled("0xabc"), nil
	}}
	router, err := NewRouter(time.Second, testLogger(t), card, chain)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	result, err := router.Execute(context.Background(), enums.PaymentRailOnChain, chainRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExternalReference != "0xabc" {
		t.Fatalf("dispatched to wrong rail: %+v", result)
	}
}

func TestRouterRejectsUnknownRail(t *testing.T) {
	card := &scriptedRail{name: enums.PaymentRailCard, fn: func(context.Context, PayoutRequest) (PayoutResult, error) {
		return settled("pay_1"), nil
	}}
	router, err := NewRouter(time.Second, testLogger(t), card)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	_, err = router.Execute(context.Background(), enums.PaymentRail("wire"), cardRequest())
	if err == nil {
		t.Fatal("expected error for unknown rail")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
	if router.Supports(enums.PaymentRail("wire")) {
		t.Fatal("router must not claim support for unknown rails")
	}
}

func TestRouterTimeoutBecomesFailureOutcome(t *testing.T) {
	slow := &scriptedRail{name: enums.PaymentRailCard, fn: func(ctx context.Context, _ PayoutRequest) (PayoutResult, error) {
		<-ctx.Done()
		return PayoutResult{}, ctx.Err()
	}}
	router, err := NewRouter(10*time.Millisecond, testLogger(t), slow)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	result, err := router.Execute(context.Background(), enums.PaymentRailCard, cardRequest())
	if err != nil {
		t.Fatalf("timeout must be a failure outcome, got error: %v", err)
	}
	if result.Settled {
		t.Fatal("timed out payout must not settle")
	}
	if !strings.Contains(result.FailureReason, "timed out") {
		t.Fatalf("unexpected failure reason %q", result.FailureReason)
	}
}

func TestNewRouterValidatesRails(t *testing.T) {
	if _, err := NewRouter(time.Second, testLogger(t)); err == nil {
		t.Fatal("expected error for zero rails")
	}
	card := &scriptedRail{name: enums.PaymentRailCard, fn: func(context.Context, PayoutRequest) (PayoutResult, error) {
		return settled("pay_1"), nil
	}}
	if _, err := NewRouter(time.Second, testLogger(t), card, card); err == nil {
		t.Fatal("expected error for duplicate rails")
	}
}
