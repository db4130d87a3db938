package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tracksplit/tracksplit-backend/api/middleware"
	"github.com/tracksplit/tracksplit-backend/api/responses"
	"github.com/tracksplit/tracksplit-backend/api/validators"
	"github.com/tracksplit/tracksplit-backend/internal/disbursement"
	"github.com/tracksplit/tracksplit-backend/pkg/enums"
	pkgerrors "github.com/tracksplit/tracksplit-backend/pkg/errors"
	"github.com/tracksplit/tracksplit-backend/pkg/logger"
)

type purchaseRequest struct {
	PurchaseID uuid.UUID  `json:"purchase_id" validate:"required"`
	WorkID     uuid.UUID  `json:"work_id" validate:"required"`
	TotalCents int64      `json:"total_cents" validate:"required,min=1"`
	Currency   string     `json:"currency" validate:"required"`
	Rail       string     `json:"rail" validate:"required"`
	OccurredAt *time.Time `json:"occurred_at,omitempty"`
}

// SubmitPurchase accepts a completed license sale and distributes the
// proceeds across the work's split.
func SubmitPurchase(svc disbursement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "disbursement service unavailable"))
			return
		}

		buyerRaw := middleware.UserIDFromContext(r.Context())
		buyerID, err := uuid.Parse(buyerRaw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing"))
			return
		}

		var body purchaseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		currency, err := enums.ParseCurrency(body.Currency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
			return
		}
		rail, err := enums.ParsePaymentRail(body.Rail)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rail"))
			return
		}

		input := disbursement.PurchaseInput{
			PurchaseID: body.PurchaseID,
			WorkID:     body.WorkID,
			BuyerID:    buyerID,
			TotalCents: body.TotalCents,
			Currency:   currency,
			Rail:       rail,
		}
		if body.OccurredAt != nil {
			input.OccurredAt = *body.OccurredAt
		}

		record, created, err := svc.SubmitPurchase(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		// an idempotent replay returns the original record, not a new one
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, record)
	}
}
