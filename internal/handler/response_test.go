package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sakif/jobtrack/internal/apperror"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"validation", apperror.ValidationFailed("company", "company is required"), http.StatusBadRequest, "validation_error"},
		{"unauthenticated", apperror.Unauthenticated("valid authentication required"), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", apperror.Forbidden("not yours"), http.StatusForbidden, "forbidden"},
		{"not found", apperror.NotFound("question", "abc"), http.StatusNotFound, "not_found"},
		{"conflict", apperror.Conflict("email", "email already exists"), http.StatusConflict, "conflict"},
		{"unknown", errors.New("sql: connection reset"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeError(rr, tt.err)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}

			var body ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if body.Error != tt.wantType {
				t.Errorf("error type = %q, want %q", body.Error, tt.wantType)
			}
		})
	}
}

func TestWriteError_WrappedErrorStillMaps(t *testing.T) {
	wrapped := fmt.Errorf("creating question: %w", apperror.ValidationFailed("", "no valid fields"))

	rr := httptest.NewRecorder()
	writeError(rr, wrapped)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a wrapped validation error", rr.Code)
	}
}

func TestWriteError_UnknownErrorHidesDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, errors.New("SELECT * FROM users failed: disk I/O error"))

	var body ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Message != "An internal error occurred" {
		t.Errorf("message = %q, internal details must not leak", body.Message)
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusCreated, map[string]string{"message": "ok"})

	if rr.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["message"] != "ok" {
		t.Errorf("body = %v", body)
	}
}
