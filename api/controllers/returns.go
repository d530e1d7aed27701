package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aurumworks/jewelpos-backend/api/middleware"
	"github.com/aurumworks/jewelpos-backend/api/responses"
	"github.com/aurumworks/jewelpos-backend/api/validators"
	returnsvc "github.com/aurumworks/jewelpos-backend/internal/returns"
	"github.com/aurumworks/jewelpos-backend/pkg/enums"
	pkgerrors "github.com/aurumworks/jewelpos-backend/pkg/errors"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
)

type returnItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type returnSubmitRequest struct {
	BillID string              `json:"bill_id" validate:"required"`
	Reason string              `json:"reason,omitempty"`
	Items  []returnItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ReturnSubmit files a return request against a completed bill.
func ReturnSubmit(svc returnsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload returnSubmitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]returnsvc.ItemInput, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, returnsvc.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		req, err := svc.Submit(r.Context(), returnsvc.SubmitInput{
			BillID:    validators.SanitizeString(payload.BillID, 40),
			Reason:    validators.SanitizeString(payload.Reason, 500),
			CreatedBy: middleware.UserIDFromContext(r.Context()),
			Items:     items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, req)
	}
}

// ReturnList returns the store's return requests, optionally filtered by
// status.
func ReturnList(svc returnsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.ReturnStatus
		if raw := validators.SanitizeString(r.URL.Query().Get("status"), 20); raw != "" {
			parsed, err := enums.ParseReturnStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid return status"))
				return
			}
			status = &parsed
		}

		rows, err := svc.ListByStore(r.Context(), middleware.StoreIDFromContext(r.Context()), status, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ReturnGet loads a single return request.
func ReturnGet(svc returnsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := svc.Get(r.Context(), chi.URLParam(r, "returnId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, req)
	}
}

// ReturnDecide approves or denies a pending return. Approval restores stock
// and marks the bill returned.
func ReturnDecide(svc returnsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload decisionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req, err := svc.Decide(r.Context(), chi.URLParam(r, "returnId"), payload.Approve,
			middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, req)
	}
}
