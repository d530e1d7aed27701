package controllers

import (
	"net/http"

	"github.com/aurumworks/jewelpos-backend/api/middleware"
	"github.com/aurumworks/jewelpos-backend/api/responses"
	"github.com/aurumworks/jewelpos-backend/api/validators"
	authsvc "github.com/aurumworks/jewelpos-backend/internal/auth"
	pkgerrors "github.com/aurumworks/jewelpos-backend/pkg/errors"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
)

// AuthLogin exchanges credentials for an access token and session.
func AuthLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload authsvc.LoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Login(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// AuthLogout revokes the caller's server-side session.
func AuthLogout(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessID := middleware.AccessIDFromContext(r.Context())
		if accessID == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeUnauthorized, "no active session"))
			return
		}
		if err := svc.Logout(r.Context(), accessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
