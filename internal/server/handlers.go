package server

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/milassn/fitness-tracker/internal/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r.Context()))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if !validTable(table) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown table: " + table})
		return
	}

	user := userFrom(r.Context())
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = user.ID
	}
	if userID != user.ID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "cannot read another user's data"})
		return
	}

	records, err := s.db.SelectRecords(r.Context(), table, userID)
	if err != nil {
		s.log.Error("select failed", "table", table, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleUpsert(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if !validTable(table) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown table: " + table})
		return
	}

	var records []models.Record
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	user := userFrom(r.Context())
	for _, rec := range records {
		if rec.ID() == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "record without id"})
			return
		}
		rec.SetUser(user.ID)
	}

	count, err := s.db.UpsertRecords(r.Context(), table, user.ID, records)
	if err != nil {
		s.log.Error("upsert failed", "table", table, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"received": len(records),
		"upserted": count,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if !validTable(table) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown table: " + table})
		return
	}

	user := userFrom(r.Context())
	deleted, err := s.db.DeleteRecord(r.Context(), table, user.ID, chi.URLParam(r, "id"))
	if err != nil {
		s.log.Error("delete failed", "table", table, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "record not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func validTable(table string) bool {
	return slices.Contains(models.SyncTables(), table)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
