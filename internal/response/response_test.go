package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GregMSThompson/copilot-dashboard/internal/errs"
	"github.com/GregMSThompson/copilot-dashboard/pkg/helpers"
)

func newRequest() *http.Request {
	return httptest.NewRequest(http.MethodGet, "/", nil).WithContext(helpers.TestCtx())
}

func TestWriteSuccess(t *testing.T) {
	h := New(nil)
	rr := httptest.NewRecorder()

	h.WriteSuccess(rr, newRequest(), http.StatusCreated, map[string]string{"id": "w1"})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	var env struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !env.Success || env.Data["id"] != "w1" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestHandleError_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", errs.NewNotFoundError("widget not found"), http.StatusNotFound, "not_found"},
		{"wrapped not found", fmt.Errorf("update: %w", errs.NewNotFoundError("widget not found")), http.StatusNotFound, "not_found"},
		{"already exists", errs.NewAlreadyExistsError("taken"), http.StatusConflict, "already_exists"},
		{"validation", errs.NewValidationError("bad"), http.StatusBadRequest, "invalid_input"},
		{"malformed json", &json.SyntaxError{}, http.StatusBadRequest, "invalid_input"},
		{"empty body", io.EOF, http.StatusBadRequest, "invalid_input"},
		{"truncated body", io.ErrUnexpectedEOF, http.StatusBadRequest, "invalid_input"},
		{"local storage", errs.NewLocalStorageError("write", "disk full", nil), http.StatusInternalServerError, "storage_error"},
		{"remote", errs.NewRemoteUnavailableError("list", "down", nil), http.StatusInternalServerError, "internal_error"},
		{"transient external", errs.NewExternalServiceError("vertex", "busy", true, nil), http.StatusServiceUnavailable, "service_unavailable"},
		{"permanent external", errs.NewExternalServiceError("vertex", "bad output", false, nil), http.StatusBadGateway, "service_unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := New(nil)
			rr := httptest.NewRecorder()

			h.HandleError(rr, newRequest(), tc.err)

			if rr.Code != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, rr.Code)
			}
			var body ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tc.code {
				t.Errorf("expected code %q, got %q", tc.code, body.Code)
			}
		})
	}
}

func TestHandleError_HidesInternalDetail(t *testing.T) {
	h := New(nil)
	rr := httptest.NewRecorder()

	h.HandleError(rr, newRequest(), errs.NewLocalStorageError("write", "sqlite: database is locked", nil))

	var body ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "Widget storage is unavailable" {
		t.Errorf("internal detail leaked: %q", body.Message)
	}
}
