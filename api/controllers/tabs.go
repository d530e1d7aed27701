package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aurumworks/jewelpos-backend/api/middleware"
	"github.com/aurumworks/jewelpos-backend/api/responses"
	"github.com/aurumworks/jewelpos-backend/api/validators"
	billingsvc "github.com/aurumworks/jewelpos-backend/internal/billing"
	invoicesvc "github.com/aurumworks/jewelpos-backend/internal/invoices"
	"github.com/aurumworks/jewelpos-backend/pkg/enums"
	pkgerrors "github.com/aurumworks/jewelpos-backend/pkg/errors"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
)

func writeTabView(w http.ResponseWriter, view *billingsvc.TabView) {
	notices := make([]any, 0, len(view.Notices))
	for _, n := range view.Notices {
		notices = append(notices, n)
	}
	responses.WriteWithNotices(w, view.Cart, notices)
}

func tabIDFromPath(r *http.Request) (uuid.UUID, error) {
	return validators.ParsePathUUID(chi.URLParam(r, "tabId"), "tabId")
}

// TabOpen starts a fresh billing tab for the caller's store.
func TabOpen(svc billingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.OpenTab(r.Context(), middleware.StoreIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view.Cart)
	}
}

// TabGet returns the tab's current cart plus any queued notices.
func TabGet(svc billingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tabID, err := tabIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.GetTab(r.Context(), tabID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeTabView(w, view)
	}
}

// TabClose tears the tab down and stops its background workers.
func TabClose(svc billingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tabID, err := tabIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.CloseTab(r.Context(), tabID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "closed"})
	}
}

type addItemRequest struct {
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	Barcode   *string    `json:"barcode,omitempty"`
	Quantity  int        `json:"quantity" validate:"required,min=1"`
}

// TabAddItem puts a product on the tab, by id or scanned barcode.
func TabAddItem(svc billingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tabID, err := tabIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var view *billingsvc.TabView
		switch {
		case payload.ProductID != nil:
			view, err = svc.AddItem(r.Context(), tabID, *payload.ProductID, payload.Quantity)
		case payload.Barcode != nil:
			view, err = svc.AddItemByBarcode(r.Context(), tabID, validators.SanitizeString(*payload.Barcode, 64), payload.Quantity)
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "product_id or barcode required")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeTabView(w, view)
	}
}

// TabRemoveItem drops a line from the tab.
func TabRemoveItem(svc billingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tabID, err := tabIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := validators.ParsePathUUID(chi.URLParam(r, "lineId"), "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.RemoveItem(r.Context(), tabID, lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeTabView(w, view)
	}
}

type setQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

// TabSetQuantity changes a line's quantity; zero removes the line.
func TabSetQuantity(svc billingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tabID, err := tabIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := validators.ParsePathUUID(chi.URLParam(r, "lineId"), "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.SetQuantity(r.Context(), tabID, lineID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeTabView(w, view)
	}
}

type setDiscountRequest struct {
	Percent string `json:"percent" validate:"required"`
}

// TabSetDiscount applies an invoice-level discount percentage.
func TabSetDiscount(svc billingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tabID, err := tabIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setDiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		percent, err := decimal.NewFromString(payload.Percent)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount percent"))
			return
		}

		view, err := svc.SetDiscount(r.Context(), tabID, percent)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeTabView(w, view)
	}
}

type overrideTotalRequest struct {
	Total string `json:"total" validate:"required"`
}

// TabOverrideTotal back-computes the discount from a negotiated final amount.
func TabOverrideTotal(svc billingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tabID, err := tabIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload overrideTotalRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		total, err := decimal.NewFromString(payload.Total)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid total"))
			return
		}

		view, err := svc.OverrideTotal(r.Context(), tabID, total)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeTabView(w, view)
	}
}

type setCustomerRequest struct {
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	Name       string     `json:"name,omitempty"`
	Phone      string     `json:"phone,omitempty"`
}

// TabSetCustomer attaches a customer to the tab; an empty payload resets to
// the walk-in default.
func TabSetCustomer(svc billingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tabID, err := tabIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setCustomerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.SetCustomer(r.Context(), tabID, payload.CustomerID,
			validators.SanitizeString(payload.Name, 200),
			validators.SanitizeString(payload.Phone, 20))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeTabView(w, view)
	}
}

type setPaymentMethodRequest struct {
	Method string `json:"method" validate:"required"`
}

// TabSetPaymentMethod records how the customer will pay.
func TabSetPaymentMethod(svc billingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tabID, err := tabIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setPaymentMethodRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParsePaymentMethod(payload.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		view, err := svc.SetPaymentMethod(r.Context(), tabID, method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeTabView(w, view)
	}
}

type setPaperSizeRequest struct {
	Size string `json:"size" validate:"required"`
}

// TabSetPaperSize selects the print target for the eventual receipt.
func TabSetPaperSize(svc billingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tabID, err := tabIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setPaperSizeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		size, err := enums.ParsePaperSize(payload.Size)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid paper size"))
			return
		}

		view, err := svc.SetPaperSize(r.Context(), tabID, size)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeTabView(w, view)
	}
}

// TabFinalize turns the tab's cart into a saved bill, enforcing the discount
// approval gate and decrementing stock.
func TabFinalize(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tabID, err := tabIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bill, err := svc.Finalize(r.Context(), tabID, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, bill)
	}
}
