package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/milassn/fitness-tracker/internal/models"
)

// TestCORSPreflight verifies OPTIONS requests short-circuit with the
// permissive headers.
func TestCORSPreflight(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight reached the inner handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/tables/exercises", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
}

// TestCORSPassesThrough verifies non-OPTIONS requests reach the handler
// with headers attached.
func TestCORSPassesThrough(t *testing.T) {
	reached := false
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !reached {
		t.Error("request did not reach the inner handler")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
}

// TestRequestLoggingCapturesStatus verifies the status writer records what
// the handler wrote.
func TestRequestLoggingCapturesStatus(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := RequestLogging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
}

// TestUserFromContext verifies the context round trip used by APIKeyAuth
// and the nil fallback without middleware.
func TestUserFromContext(t *testing.T) {
	if userFrom(context.Background()) != nil {
		t.Error("userFrom without middleware must be nil")
	}

	user := &models.User{ID: "user-1", Email: "a@example.com"}
	ctx := context.WithValue(context.Background(), userKey, user)
	if got := userFrom(ctx); got == nil || got.ID != "user-1" {
		t.Errorf("userFrom = %v, want the stored user", got)
	}
}

// TestValidTable verifies only synchronized table names pass.
func TestValidTable(t *testing.T) {
	for _, table := range models.SyncTables() {
		if !validTable(table) {
			t.Errorf("validTable(%q) = false", table)
		}
	}
	for _, table := range []string{"users", "records", "", "exercises; DROP TABLE"} {
		if validTable(table) {
			t.Errorf("validTable(%q) = true", table)
		}
	}
}
