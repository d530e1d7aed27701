package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aurumworks/jewelpos-backend/api/middleware"
	"github.com/aurumworks/jewelpos-backend/api/responses"
	"github.com/aurumworks/jewelpos-backend/api/validators"
	approvalsvc "github.com/aurumworks/jewelpos-backend/internal/approval"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
)

// ApprovalListPending returns the store's open discount requests, oldest
// first, for the manager console.
func ApprovalListPending(svc approvalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListPending(r.Context(), middleware.StoreIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ApprovalGet returns one discount request, letting billing clients poll its
// status.
func ApprovalGet(svc approvalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := svc.Get(r.Context(), chi.URLParam(r, "requestId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, req)
	}
}

type decisionRequest struct {
	Approve bool `json:"approve"`
}

// ApprovalDecide resolves a pending discount request. First decision wins.
func ApprovalDecide(svc approvalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload decisionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req, err := svc.Decide(r.Context(), chi.URLParam(r, "requestId"), payload.Approve,
			middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, req)
	}
}
