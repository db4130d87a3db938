package controllers

import (
	"net/http"

	"github.com/tracksplit/tracksplit-backend/api/responses"
	"github.com/tracksplit/tracksplit-backend/internal/works"
	pkgerrors "github.com/tracksplit/tracksplit-backend/pkg/errors"
	"github.com/tracksplit/tracksplit-backend/pkg/logger"
)

// GetWork returns a work with its lifetime license aggregates.
func GetWork(svc works.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "works service unavailable"))
			return
		}

		workID, err := parseIDParam(r, "workId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		work, err := svc.GetByID(r.Context(), workID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, work)
	}
}
