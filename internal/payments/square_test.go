package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	sq "github.com/square/square-go-sdk"

	"github.com/tracksplit/tracksplit-backend/pkg/config"
	"github.com/tracksplit/tracksplit-backend/pkg/enums"
)

func cardRequest() PayoutRequest {
	return PayoutRequest{
		LineID:        uuid.New(),
		TransactionID: uuid.New(),
		RecipientName: "Sam Producer",
		AmountCents:   300,
		Currency:      enums.CurrencyUSD,
	}
}

func newCardRail(t *testing.T, create createPaymentFn) *CardRail {
	t.Helper()
	return &CardRail{createPayment: create, locationID: "LOC1", logg: testLogger(t)}
}

func paymentResponse(id, status string) *sq.CreatePaymentResponse {
	return &sq.CreatePaymentResponse{
		Payment: &sq.Payment{ID: &id, Status: &status},
	}
}

func TestCardRailSettles(t *testing.T) {
	var captured *sq.CreatePaymentRequest
	rail := newCardRail(t, func(_ context.Context, req *sq.CreatePaymentRequest) (*sq.CreatePaymentResponse, error) {
		captured = req
		return paymentResponse("pay_123", "COMPLETED"), nil
	})

	req := cardRequest()
	result, err := rail.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Settled || result.ExternalReference != "pay_123" {
		t.Fatalf("unexpected result %+v", result)
	}
	if captured == nil {
		t.Fatal("expected a payment request")
	}
	wantKey := fmt.Sprintf("payout-%s", req.LineID)
	if captured.IdempotencyKey != wantKey {
		t.Fatalf("expected idempotency key %q, got %q", wantKey, captured.IdempotencyKey)
	}
	if captured.AmountMoney == nil || *captured.AmountMoney.Amount != 300 {
		t.Fatalf("unexpected amount money %+v", captured.AmountMoney)
	}
}

func TestCardRailAPIErrorIsFailureOutcome(t *testing.T) {
	rail := newCardRail(t, func(context.Context, *sq.CreatePaymentRequest) (*sq.CreatePaymentResponse, error) {
		return nil, errors.New("card declined")
	})

	result, err := rail.Execute(context.Background(), cardRequest())
	if err != nil {
		t.Fatalf("rail rejection must not be an error: %v", err)
	}
	if result.Settled {
		t.Fatal("expected failed payout")
	}
	if !strings.Contains(result.FailureReason, "card declined") {
		t.Fatalf("unexpected failure reason %q", result.FailureReason)
	}
}

func TestCardRailTerminalStatusIsFailure(t *testing.T) {
	rail := newCardRail(t, func(context.Context, *sq.CreatePaymentRequest) (*sq.CreatePaymentResponse, error) {
		return paymentResponse("pay_456", "FAILED"), nil
	})

	result, err := rail.Execute(context.Background(), cardRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Settled {
		t.Fatal("expected failed payout")
	}
	if !strings.Contains(result.FailureReason, "FAILED") {
		t.Fatalf("unexpected failure reason %q", result.FailureReason)
	}
}

func TestCardRailRejectsNonUSD(t *testing.T) {
	rail := newCardRail(t, func(context.Context, *sq.CreatePaymentRequest) (*sq.CreatePaymentResponse, error) {
		t.Fatal("request must not reach square")
		return nil, nil
	})

	req := cardRequest()
	req.Currency = enums.CurrencyUSDC
	if _, err := rail.Execute(context.Background(), req); err == nil {
		t.Fatal("expected error for non-USD currency on the card rail")
	}
}

func TestNewCardRailRequiresCredentials(t *testing.T) {
	ctx := context.Background()
	logg := testLogger(t)

	if _, err := NewCardRail(ctx, config.PaymentsConfig{SquareLocationID: "LOC1"}, logg); err == nil {
		t.Fatal("expected error for missing access token")
	}
	if _, err := NewCardRail(ctx, config.PaymentsConfig{SquareAccessToken: "tok"}, logg); err == nil {
		t.Fatal("expected error for missing location id")
	}
	if _, err := NewCardRail(ctx, config.PaymentsConfig{
		SquareAccessToken: "tok",
		SquareLocationID:  "LOC1",
		SquareEnv:         "staging",
	}, logg); err == nil {
		t.Fatal("expected error for unknown square environment")
	}
}
