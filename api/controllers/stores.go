package controllers

import (
	"net/http"

	"github.com/aurumworks/jewelpos-backend/api/middleware"
	"github.com/aurumworks/jewelpos-backend/api/responses"
	"github.com/aurumworks/jewelpos-backend/api/validators"
	storesvc "github.com/aurumworks/jewelpos-backend/internal/stores"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
)

// StoreProfile returns the caller's store record.
func StoreProfile(svc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := svc.GetByID(r.Context(), middleware.StoreIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

type storeUpdateRequest struct {
	Name    *string `json:"name,omitempty"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	GSTIN   *string `json:"gstin,omitempty"`
}

// StoreUpdate edits the invoice-header fields of the caller's store.
func StoreUpdate(svc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload storeUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.Update(r.Context(), middleware.StoreIDFromContext(r.Context()), storesvc.UpdateStoreInput{
			Name:    payload.Name,
			Address: payload.Address,
			Phone:   payload.Phone,
			GSTIN:   payload.GSTIN,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}
