package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/aurumworks/jewelpos-backend/api/middleware"
	"github.com/aurumworks/jewelpos-backend/api/responses"
	"github.com/aurumworks/jewelpos-backend/api/validators"
	productsvc "github.com/aurumworks/jewelpos-backend/internal/products"
	pkgerrors "github.com/aurumworks/jewelpos-backend/pkg/errors"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
)

// ProductList returns the active catalog for the caller's store.
func ProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID := middleware.StoreIDFromContext(r.Context())

		if query := validators.SanitizeString(r.URL.Query().Get("q"), 120); query != "" {
			limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			rows, err := svc.SearchProducts(r.Context(), storeID, query, limit)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, rows)
			return
		}

		rows, err := svc.ListProducts(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ProductByBarcode resolves a scanned barcode to a product.
func ProductByBarcode(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID := middleware.StoreIDFromContext(r.Context())
		barcode := validators.SanitizeString(r.URL.Query().Get("barcode"), 64)
		if barcode == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "barcode query parameter required"))
			return
		}

		product, err := svc.GetByBarcode(r.Context(), storeID, barcode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type productRequest struct {
	Name           string   `json:"name" validate:"required"`
	Stock          int      `json:"stock" validate:"min=0"`
	SellingPrice   string   `json:"selling_price" validate:"required"`
	TaxRatePercent string   `json:"tax_rate_percent" validate:"required"`
	Barcodes       []string `json:"barcodes,omitempty"`
	HSNCode        *string  `json:"hsn_code,omitempty"`
}

func (p productRequest) toCreateInput() (productsvc.CreateProductInput, error) {
	price, err := decimal.NewFromString(p.SellingPrice)
	if err != nil {
		return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid selling price")
	}
	rate, err := decimal.NewFromString(p.TaxRatePercent)
	if err != nil {
		return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tax rate")
	}
	return productsvc.CreateProductInput{
		Name:           validators.SanitizeString(p.Name, 200),
		Stock:          p.Stock,
		SellingPrice:   price,
		TaxRatePercent: rate,
		Barcodes:       p.Barcodes,
		HSNCode:        p.HSNCode,
	}, nil
}

// ProductCreate adds a catalog item to the caller's store.
func ProductCreate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID := middleware.StoreIDFromContext(r.Context())

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), storeID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type productUpdateRequest struct {
	Name           *string   `json:"name,omitempty"`
	Stock          *int      `json:"stock,omitempty" validate:"omitempty,min=0"`
	SellingPrice   *string   `json:"selling_price,omitempty"`
	TaxRatePercent *string   `json:"tax_rate_percent,omitempty"`
	Barcodes       *[]string `json:"barcodes,omitempty"`
	HSNCode        *string   `json:"hsn_code,omitempty"`
}

func (p productUpdateRequest) toUpdateInput() (productsvc.UpdateProductInput, error) {
	input := productsvc.UpdateProductInput{
		Name:     p.Name,
		Stock:    p.Stock,
		Barcodes: p.Barcodes,
		HSNCode:  p.HSNCode,
	}
	if p.SellingPrice != nil {
		price, err := decimal.NewFromString(*p.SellingPrice)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid selling price")
		}
		input.SellingPrice = &price
	}
	if p.TaxRatePercent != nil {
		rate, err := decimal.NewFromString(*p.TaxRatePercent)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tax rate")
		}
		input.TaxRatePercent = &rate
	}
	return input, nil
}

// ProductUpdate mutates a catalog item owned by the caller's store.
func ProductUpdate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID := middleware.StoreIDFromContext(r.Context())
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), storeID, productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductDelete deactivates a catalog item.
func ProductDelete(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID := middleware.StoreIDFromContext(r.Context())
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), storeID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}
