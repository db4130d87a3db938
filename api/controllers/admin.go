package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tracksplit/tracksplit-backend/api/middleware"
	"github.com/tracksplit/tracksplit-backend/api/responses"
	"github.com/tracksplit/tracksplit-backend/internal/disbursement"
	pkgerrors "github.com/tracksplit/tracksplit-backend/pkg/errors"
	"github.com/tracksplit/tracksplit-backend/pkg/logger"
)

// RedriveTransaction re-executes the failed lines of a terminal transaction.
// Admin only; the route group enforces the role.
func RedriveTransaction(svc disbursement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "disbursement service unavailable"))
			return
		}

		transactionID, err := parseIDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestedBy, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity missing"))
			return
		}

		record, err := svc.Redrive(r.Context(), transactionID, requestedBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}
