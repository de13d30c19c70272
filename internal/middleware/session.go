package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/GregMSThompson/copilot-dashboard/internal/response"
	"github.com/GregMSThompson/copilot-dashboard/internal/session"
	"github.com/GregMSThompson/copilot-dashboard/pkg/logger"
)

// SessionHeader lets a browser tab carry its own session token.
const SessionHeader = "X-Session-ID"

type sessionProvider interface {
	SessionID(ctx context.Context) (string, error)
}

type sessionMiddleware struct {
	Sessions        sessionProvider
	ResponseHandler response.ResponseHandler
}

func NewSessionMiddleware(sessions sessionProvider, rh response.ResponseHandler) *sessionMiddleware {
	return &sessionMiddleware{Sessions: sessions, ResponseHandler: rh}
}

// SessionMiddleware resolves the active session for the request: the
// X-Session-ID header when present, otherwise the process session. It must run
// after LoggerMiddleware.
func (m *sessionMiddleware) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sid := strings.TrimSpace(r.Header.Get(SessionHeader))
		if sid == "" {
			var err error
			sid, err = m.Sessions.SessionID(ctx)
			if err != nil {
				m.ResponseHandler.HandleError(w, r, err)
				return
			}
		}

		_, ctx = logger.With(ctx, "session_id", sid)
		ctx = session.ToContext(ctx, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionID returns the session resolved by SessionMiddleware.
func SessionID(ctx context.Context) string {
	return session.FromContext(ctx)
}
