package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gabrielasoto/aurelia-backend/api/responses"
	"github.com/gabrielasoto/aurelia-backend/internal/session"
	pkgerrors "github.com/gabrielasoto/aurelia-backend/pkg/errors"
	"github.com/gabrielasoto/aurelia-backend/pkg/logger"
)

// SessionRehydrator loads a persisted session by its gateway ID.
type SessionRehydrator interface {
	Rehydrate(ctx context.Context, sessionID string) (*session.Session, error)
}

// Auth resolves the bearer session ID into a live session and seeds the
// request context with it. Expired sessions are purged by the store and
// reported as unauthorized.
func Auth(sessions SessionRehydrator, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := bearerToken(r)
			if sessionID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			if sessions == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session store unavailable"))
				return
			}

			sess, err := sessions.Rehydrate(r.Context(), sessionID)
			if err != nil {
				switch {
				case errors.Is(err, session.ErrSessionExpired):
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired, please log in again"))
				case errors.Is(err, session.ErrNoSession):
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "no active session"))
				default:
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session"))
				}
				return
			}

			ctx := WithSession(r.Context(), sess.ID, sess.User)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sess.ID)
				ctx = logg.WithUserID(ctx, sess.User.ID)
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
