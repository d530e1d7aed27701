package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aurumworks/jewelpos-backend/api/middleware"
	"github.com/aurumworks/jewelpos-backend/api/responses"
	"github.com/aurumworks/jewelpos-backend/api/validators"
	invoicesvc "github.com/aurumworks/jewelpos-backend/internal/invoices"
	"github.com/aurumworks/jewelpos-backend/internal/printing"
	storesvc "github.com/aurumworks/jewelpos-backend/internal/stores"
	"github.com/aurumworks/jewelpos-backend/pkg/enums"
	pkgerrors "github.com/aurumworks/jewelpos-backend/pkg/errors"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
)

// BillList returns recent bills for the caller's store.
func BillList(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bills, err := svc.ListBills(r.Context(), middleware.StoreIDFromContext(r.Context()), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bills)
	}
}

// BillSearch finds bills by invoice id, customer name, phone, or date range.
func BillSearch(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := invoicesvc.SearchFilters{
			BillID:        validators.SanitizeString(r.URL.Query().Get("bill_id"), 40),
			CustomerName:  validators.SanitizeString(r.URL.Query().Get("customer_name"), 200),
			CustomerPhone: validators.SanitizeString(r.URL.Query().Get("customer_phone"), 20),
		}
		if raw := validators.SanitizeString(r.URL.Query().Get("from"), 10); raw != "" {
			from, err := time.Parse("2006-01-02", raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "from must be YYYY-MM-DD"))
				return
			}
			filters.From = &from
		}
		if raw := validators.SanitizeString(r.URL.Query().Get("to"), 10); raw != "" {
			to, err := time.Parse("2006-01-02", raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "to must be YYYY-MM-DD"))
				return
			}
			end := to.Add(24*time.Hour - time.Nanosecond)
			filters.To = &end
		}

		bills, err := svc.SearchBills(r.Context(), middleware.StoreIDFromContext(r.Context()), filters, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bills)
	}
}

// BillGet loads one bill with its items.
func BillGet(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bill, err := svc.GetBill(r.Context(), chi.URLParam(r, "billId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bill)
	}
}

// BillPrint renders a saved bill as a plain-text receipt for the requested
// paper size.
func BillPrint(bills invoicesvc.Service, stores storesvc.Service, renderer printing.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bill, err := bills.GetBill(r.Context(), chi.URLParam(r, "billId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		size := enums.PaperSizeThermal80
		if raw := validators.SanitizeString(r.URL.Query().Get("size"), 20); raw != "" {
			size, err = enums.ParsePaperSize(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid paper size"))
				return
			}
		}

		store, err := stores.GetByID(r.Context(), bill.StoreID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := renderer.Render(bill, store, size)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(receipt))
	}
}
