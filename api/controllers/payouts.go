package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/tracksplit/tracksplit-backend/api/middleware"
	"github.com/tracksplit/tracksplit-backend/api/responses"
	"github.com/tracksplit/tracksplit-backend/internal/disbursement"
	"github.com/tracksplit/tracksplit-backend/pkg/db/models"
	"github.com/tracksplit/tracksplit-backend/pkg/enums"
	pkgerrors "github.com/tracksplit/tracksplit-backend/pkg/errors"
	"github.com/tracksplit/tracksplit-backend/pkg/logger"
	"github.com/tracksplit/tracksplit-backend/pkg/pagination"
)

type payoutPage struct {
	Items  []models.DistributionLine `json:"items"`
	Cursor string                    `json:"cursor"`
}

// ListRecipientPayouts returns the payout history for a recipient, newest
// first. Recipients may only read their own history; admins may read any.
func ListRecipientPayouts(svc disbursement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "disbursement service unavailable"))
			return
		}

		recipientID, err := parseIDParam(r, "recipientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role := middleware.RoleFromContext(r.Context())
		if role != string(enums.AccessRoleAdmin) {
			own := middleware.RecipientIDFromContext(r.Context())
			if own != recipientID.String() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "cannot read another recipient's payouts"))
				return
			}
		}

		params := pagination.Params{}
		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			params.Limit = value
		}
		if cursor := strings.TrimSpace(r.URL.Query().Get("cursor")); cursor != "" {
			params.Cursor = cursor
		}

		lines, next, err := svc.ListRecipientPayouts(r.Context(), recipientID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payoutPage{Items: lines, Cursor: next})
	}
}
