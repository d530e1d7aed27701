package controllers

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aurumworks/jewelpos-backend/api/middleware"
	"github.com/aurumworks/jewelpos-backend/api/responses"
	"github.com/aurumworks/jewelpos-backend/api/validators"
	"github.com/aurumworks/jewelpos-backend/internal/users"
	"github.com/aurumworks/jewelpos-backend/pkg/db/models"
	pkgerrors "github.com/aurumworks/jewelpos-backend/pkg/errors"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
)

// UserDirectory is the slice of the users repository the account endpoints
// need.
type UserDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.User, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// UserList returns every account attached to the caller's store.
func UserList(directory UserDirectory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := directory.ListByStore(r.Context(), middleware.StoreIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list users"))
			return
		}
		out := make([]*users.UserDTO, 0, len(rows))
		for i := range rows {
			out = append(out, users.FromModel(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// UserDeactivate disables an account in the caller's store. The row stays so
// past bills keep their cashier reference.
func UserDeactivate(directory UserDirectory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.ParsePathUUID(chi.URLParam(r, "userId"), "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if userID == middleware.UserIDFromContext(r.Context()) {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "cannot deactivate your own account"))
			return
		}

		target, err := directory.FindByID(r.Context(), userID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeNotFound, "user not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load user"))
			return
		}
		if target.StoreID != middleware.StoreIDFromContext(r.Context()) {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeForbidden, "user belongs to another store"))
			return
		}

		if err := directory.Deactivate(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodePersistence, err, "deactivate user"))
			return
		}
		target.IsActive = false
		responses.WriteSuccess(w, users.FromModel(target))
	}
}
