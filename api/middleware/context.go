package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/aurumworks/jewelpos-backend/pkg/auth/session"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "role"
	ctxStoreID  contextKey = "store_id"
	ctxAccessID contextKey = "access_id"
)

// WithSession seeds the request context with the authenticated session.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	if sess == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, ctxUserID, sess.UserID)
	ctx = context.WithValue(ctx, ctxRole, sess.Role)
	ctx = context.WithValue(ctx, ctxStoreID, sess.StoreID)
	return context.WithValue(ctx, ctxAccessID, sess.AccessID)
}

func UserIDFromContext(ctx context.Context) uuid.UUID {
	if v, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func StoreIDFromContext(ctx context.Context) uuid.UUID {
	if v, ok := ctx.Value(ctxStoreID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func RoleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

func AccessIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}
