package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/milassn/fitness-tracker/internal/models"
)

// TestSelectByUser verifies the request shape (path, query, auth header)
// and record decoding.
func TestSelectByUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/tables/exercises" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("user_id"); got != "user-1" {
			t.Errorf("user_id = %q", got)
		}
		if got := r.Header.Get("X-API-Key"); got != "key-1" {
			t.Errorf("X-API-Key = %q", got)
		}
		json.NewEncoder(w).Encode([]models.Record{{"id": "ex-1", "name": "Bench"}})
	}))
	defer srv.Close()

	c := New(srv.URL, "key-1")
	records, err := c.SelectByUser(context.Background(), "exercises", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].ID() != "ex-1" {
		t.Errorf("records = %v", records)
	}
}

// TestSelectAllOmitsUserFilter verifies the unfiltered variant sends no
// user_id parameter.
func TestSelectAllOmitsUserFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("user_id") {
			t.Error("user_id sent on SelectAll")
		}
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "k").SelectAll(context.Background(), "workouts"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestSelectErrorStatus verifies non-200 responses surface as errors.
func TestSelectErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "k").SelectAll(context.Background(), "workouts"); err == nil {
		t.Fatal("expected error for status 500")
	}
}

// TestUpsertRetries verifies the retry loop: two failures then success.
func TestUpsertRetries(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		var records []models.Record
		if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		if len(records) != 1 || records[0].ID() != "w-1" {
			t.Errorf("records = %v", records)
		}
		w.Write([]byte(`{"upserted":1}`))
	}))
	defer srv.Close()

	err := New(srv.URL, "k").Upsert(context.Background(), "workouts", []models.Record{{"id": "w-1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

// TestUpsertEmptyIsNoop verifies no request goes out for an empty batch.
func TestUpsertEmptyIsNoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request for empty upsert")
	}))
	defer srv.Close()

	if err := New(srv.URL, "k").Upsert(context.Background(), "workouts", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestCurrentUser verifies identity resolution and the nil return for a
// rejected key.
func TestCurrentUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "good" {
			http.Error(w, `{"error":"invalid API key"}`, http.StatusForbidden)
			return
		}
		json.NewEncoder(w).Encode(models.User{ID: "user-1", Email: "a@example.com"})
	}))
	defer srv.Close()

	user, err := New(srv.URL, "good").CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil || user.ID != "user-1" {
		t.Errorf("user = %v", user)
	}

	user, err = New(srv.URL, "bad").CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("user = %v, want nil for rejected key", user)
	}
}
