package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tracksplit/tracksplit-backend/api/middleware"
	"github.com/tracksplit/tracksplit-backend/api/responses"
	"github.com/tracksplit/tracksplit-backend/api/validators"
	"github.com/tracksplit/tracksplit-backend/internal/splits"
	pkgerrors "github.com/tracksplit/tracksplit-backend/pkg/errors"
	"github.com/tracksplit/tracksplit-backend/pkg/logger"
	"github.com/tracksplit/tracksplit-backend/pkg/outbox"
)

type splitRequest struct {
	Entries []splits.EntryInput `json:"entries" validate:"required,min=1"`
}

// GetWorkSplit returns the split ledger attached to a work.
func GetWorkSplit(svc splits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "splits service unavailable"))
			return
		}

		workID, err := parseIDParam(r, "workId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ledger, err := svc.GetByWorkID(r.Context(), workID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ledger)
	}
}

// ProposeSplit validates a candidate split for a work without persisting it.
// Upload flows call this for pre-publish feedback.
func ProposeSplit(svc splits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "splits service unavailable"))
			return
		}

		if _, err := parseIDParam(r, "workId"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body splitRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result := svc.Propose(r.Context(), body.Entries)
		responses.WriteSuccess(w, result)
	}
}

// ReplaceWorkSplit replaces the split entries for a work. Locked ledgers
// reject the write with a state conflict.
func ReplaceWorkSplit(svc splits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "splits service unavailable"))
			return
		}

		workID, err := parseIDParam(r, "workId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body splitRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ledger, err := svc.ReplaceEntries(r.Context(), workID, body.Entries, actorFromContext(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ledger)
	}
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "missing "+name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

func actorFromContext(r *http.Request) *outbox.ActorRef {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return nil
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &outbox.ActorRef{
		UserID: userID,
		Role:   middleware.RoleFromContext(r.Context()),
	}
}
