package middleware

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/aurumworks/jewelpos-backend/api/responses"
	pkgauth "github.com/aurumworks/jewelpos-backend/pkg/auth"
	"github.com/aurumworks/jewelpos-backend/pkg/auth/session"
	"github.com/aurumworks/jewelpos-backend/pkg/config"
	pkgerrors "github.com/aurumworks/jewelpos-backend/pkg/errors"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
)

// Auth validates the bearer token, touches the server-side session to enforce
// idle expiry, and seeds the request context with the session identity.
func Auth(cfg config.JWTConfig, sessions session.Checker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			sess, err := sessions.Touch(r.Context(), claims.ID)
			if err != nil {
				switch {
				case stderrors.Is(err, session.ErrNoSession), stderrors.Is(err, session.ErrSessionExpired):
					responses.WriteError(r.Context(), logg, w,
						pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "session unavailable"))
				default:
					responses.WriteError(r.Context(), logg, w,
						pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
				}
				return
			}

			ctx := WithSession(r.Context(), sess)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":  sess.UserID.String(),
					"store_id": sess.StoreID.String(),
					"role":     sess.Role,
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
