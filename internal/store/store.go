package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// keyPrefix namespaces all keys so the replica file can be shared with other
// tooling without collisions.
const keyPrefix = "fitness_tracker_"

// Store is the local replica: a namespaced key/value store over SQLite.
// Keys are table names; values are whole-collection JSON documents.
//
// Write and delete failures are logged and surfaced as a false return; a
// false return means the state may not have been durably saved and the caller
// may retry.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (or creates) the replica database at dir/replica.db.
func Open(dir string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "replica.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening replica db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating kv table: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// Load returns the value stored under key, or nil if the key is absent or
// the read failed.
func (s *Store) Load(key string) []byte {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, keyPrefix+key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.log.Error("loading key", "key", key, "error", err)
		return nil
	}
	return value
}

// Save stores value under key, replacing any previous value.
func (s *Store) Save(key string, value []byte) bool {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		keyPrefix+key, value,
	)
	if err != nil {
		s.log.Error("saving key", "key", key, "error", err)
		return false
	}
	return true
}

// Remove deletes the value stored under key. Removing an absent key succeeds.
func (s *Store) Remove(key string) bool {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, keyPrefix+key)
	if err != nil {
		s.log.Error("removing key", "key", key, "error", err)
		return false
	}
	return true
}

// Clear deletes every key in this store's namespace.
func (s *Store) Clear() bool {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key LIKE ?`, keyPrefix+"%")
	if err != nil {
		s.log.Error("clearing store", "error", err)
		return false
	}
	return true
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadJSON loads and unmarshals the collection stored under key. A missing
// key or a decode failure yields the zero value and false.
func LoadJSON[T any](s *Store, key string) (T, bool) {
	var v T
	data := s.Load(key)
	if data == nil {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		s.log.Error("decoding stored value", "key", key, "error", err)
		var zero T
		return zero, false
	}
	return v, true
}

// SaveJSON marshals v and stores it under key.
func SaveJSON[T any](s *Store, key string, v T) bool {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("encoding value", "key", key, "error", err)
		return false
	}
	return s.Save(key, data)
}
