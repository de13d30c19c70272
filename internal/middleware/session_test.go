package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GregMSThompson/copilot-dashboard/internal/response"
	"github.com/GregMSThompson/copilot-dashboard/pkg/helpers"
)

type stubSessions struct {
	id    string
	err   error
	calls int
}

func (s *stubSessions) SessionID(context.Context) (string, error) {
	s.calls++
	return s.id, s.err
}

func runSession(t *testing.T, sessions *stubSessions, header string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	mw := NewSessionMiddleware(sessions, response.New(nil))
	req := httptest.NewRequest(http.MethodGet, "/widgets", nil).WithContext(helpers.TestCtx())
	if header != "" {
		req.Header.Set(SessionHeader, header)
	}
	rr := httptest.NewRecorder()
	mw.SessionMiddleware(next).ServeHTTP(rr, req)
	return rr, seen
}

func TestSessionMiddleware_UsesHeader(t *testing.T) {
	sessions := &stubSessions{id: "process"}

	rr, seen := runSession(t, sessions, "tab-1")

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if seen != "tab-1" {
		t.Errorf("expected header session, got %q", seen)
	}
	if sessions.calls != 0 {
		t.Error("process session should not be consulted when a header is sent")
	}
}

func TestSessionMiddleware_FallsBackToProcessSession(t *testing.T) {
	_, seen := runSession(t, &stubSessions{id: "process"}, "")

	if seen != "process" {
		t.Errorf("expected process session, got %q", seen)
	}
}

func TestSessionMiddleware_ProviderError(t *testing.T) {
	rr, seen := runSession(t, &stubSessions{err: errors.New("disk")}, "")

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if seen != "" {
		t.Error("next handler should not run")
	}
}
