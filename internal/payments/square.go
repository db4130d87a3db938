package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	sq "github.com/square/square-go-sdk"
	sqclient "github.com/square/square-go-sdk/client"
	sqcore "github.com/square/square-go-sdk/core"
	sqoption "github.com/square/square-go-sdk/option"

	"github.com/tracksplit/tracksplit-backend/pkg/config"
	"github.com/tracksplit/tracksplit-backend/pkg/enums"
	"github.com/tracksplit/tracksplit-backend/pkg/logger"
)

const (
	squareSandboxEnv    = "sandbox"
	squareProductionEnv = "production"
)

var (
	errSquareTokenRequired    = errors.New("square access token is required")
	errSquareLocationRequired = errors.New("square location id is required")
	errInvalidSquareEnv       = fmt.Errorf("square environment must be %q or %q", squareSandboxEnv, squareProductionEnv)
)

var squareBaseURLs = map[string]string{
	squareSandboxEnv:    "https://connect.squareupsandbox.com",
	squareProductionEnv: "https://connect.squareup.com",
}

// createPaymentFn is the slice of the Square SDK the card rail touches.
type createPaymentFn func(ctx context.Context, req *sq.CreatePaymentRequest) (*sq.CreatePaymentResponse, error)

// CardRail settles USD distribution lines through Square. Each line maps to
// one Square payment keyed by the line id, so a retried call for the same
// line collapses into the original payment instead of paying twice.
type CardRail struct {
	createPayment createPaymentFn
	locationID    string
	logg          *logger.Logger
}

// NewCardRail builds the Square-backed rail from payments config.
func NewCardRail(ctx context.Context, cfg config.PaymentsConfig, logg *logger.Logger) (*CardRail, error) {
	if logg == nil {
		return nil, errors.New("card rail logger is required")
	}
	env, err := normalizeSquareEnv(cfg.SquareEnvironment())
	if err != nil {
		return nil, err
	}
	token := strings.TrimSpace(cfg.SquareAccessToken)
	if token == "" {
		return nil, errSquareTokenRequired
	}
	locationID := strings.TrimSpace(cfg.SquareLocationID)
	if locationID == "" {
		return nil, errSquareLocationRequired
	}

	sdk := sqclient.NewClient(
		sqoption.WithBaseURL(squareBaseURLs[env]),
		sqoption.WithToken(token),
	)
	create := func(ctx context.Context, req *sq.CreatePaymentRequest) (*sq.CreatePaymentResponse, error) {
		return sdk.Payments.Create(ctx, req)
	}

	logg.Info(ctx, "square card rail initialized")
	return &CardRail{createPayment: create, locationID: locationID, logg: logg}, nil
}

// Name implements Rail.
func (r *CardRail) Name() enums.PaymentRail {
	return enums.PaymentRailCard
}

// Execute pushes one payout through Square. Wire-level rejections come back
// as failed results; only malformed requests surface as errors.
func (r *CardRail) Execute(ctx context.Context, req PayoutRequest) (PayoutResult, error) {
	if err := checkRequest(req); err != nil {
		return PayoutResult{}, err
	}
	if req.Currency != enums.CurrencyUSD {
		return PayoutResult{}, fmt.Errorf("card rail settles USD only, got %s", req.Currency)
	}

	logCtx := r.logg.WithFields(ctx, map[string]any{
		"rail":    enums.PaymentRailCard.String(),
		"line_id": req.LineID.String(),
		"amount":  req.AmountCents,
	})
	r.logg.Info(logCtx, "dispatching card payout")

	amount := req.AmountCents
	currency := sq.Currency(req.Currency.String())
	note := fmt.Sprintf("royalty payout %s", req.RecipientName)
	reference := req.Reference
	if reference == "" {
		reference = req.LineID.String()
	}

	resp, err := r.createPayment(ctx, &sq.CreatePaymentRequest{
		IdempotencyKey: fmt.Sprintf("payout-%s", req.LineID),
		LocationID:     &r.locationID,
		SourceID:       payoutSourceID(req),
		AmountMoney:    &sq.Money{Amount: &amount, Currency: &currency},
		Note:           &note,
		ReferenceID:    &reference,
	})
	if err != nil {
		reason := squareFailureReason(err)
		r.logg.Warn(r.logg.WithField(logCtx, "failure_reason", reason), "card payout rejected")
		return failure(reason), nil
	}

	payment := resp.GetPayment()
	paymentID := stringValue(payment.GetID())
	status := stringValue(payment.GetStatus())
	if status == "FAILED" || status == "CANCELED" {
		reason := fmt.Sprintf("square payment %s ended in status %s", paymentID, status)
		r.logg.Warn(r.logg.WithField(logCtx, "failure_reason", reason), "card payout rejected")
		return failure(reason), nil
	}

	r.logg.Info(r.logg.WithField(logCtx, "payment_id", paymentID), "card payout settled")
	return settled(paymentID), nil
}

// payoutSourceID names the stored payout instrument for the recipient.
// Recipients without an account on file fall back to the shared external
// wallet source so sandbox runs still settle.
func payoutSourceID(req PayoutRequest) string {
	if req.RecipientID != nil {
		return fmt.Sprintf("recipient:%s", req.RecipientID)
	}
	return "EXTERNAL"
}

// squareFailureReason flattens a Square API error into a line failure reason.
func squareFailureReason(err error) string {
	var apiErr *sqcore.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Sprintf("square payout failed: %v", err)
	}
	for _, sqErr := range extractSquareErrors(apiErr) {
		if sqErr == nil {
			continue
		}
		detail := stringValue(sqErr.Detail)
		if detail == "" {
			detail = string(sqErr.Code)
		}
		return fmt.Sprintf("square rejected payout: %s", detail)
	}
	return fmt.Sprintf("square rejected payout with status %d", apiErr.StatusCode)
}

func extractSquareErrors(apiErr *sqcore.APIError) []*sq.Error {
	if apiErr == nil {
		return nil
	}
	inner := apiErr.Unwrap()
	if inner == nil {
		return nil
	}
	raw := strings.TrimSpace(inner.Error())
	if raw == "" {
		return nil
	}
	var payload struct {
		Errors []*sq.Error `json:"errors"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}
	return payload.Errors
}

func stringValue(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func normalizeSquareEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = squareSandboxEnv
	}
	switch env {
	case squareSandboxEnv, squareProductionEnv:
		return env, nil
	default:
		return "", errInvalidSquareEnv
	}
}

func checkRequest(req PayoutRequest) error {
	if req.LineID == uuid.Nil {
		return errors.New("payout request requires a line id")
	}
	if req.AmountCents <= 0 {
		return fmt.Errorf("payout amount must be positive, got %d", req.AmountCents)
	}
	if !req.Currency.IsValid() {
		return fmt.Errorf("invalid payout currency %q", req.Currency)
	}
	return nil
}
