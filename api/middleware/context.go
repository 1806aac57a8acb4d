package middleware

import (
	"context"

	"github.com/gabrielasoto/aurelia-backend/internal/session"
)

type contextKey string

const (
	ctxSessionID contextKey = "session_id"
	ctxUser      contextKey = "session_user"
)

// SessionIDFromContext returns the gateway session ID, or "".
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// UserFromContext returns the rehydrated session user, or nil.
func UserFromContext(ctx context.Context) *session.User {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxUser).(session.User); ok {
		return &v
	}
	return nil
}

// WithSession seeds the context with the rehydrated session.
func WithSession(ctx context.Context, sessionID string, user session.User) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxSessionID, sessionID)
	return context.WithValue(ctx, ctxUser, user)
}
