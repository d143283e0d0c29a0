package models

import (
	"encoding/json"
	"time"
)

// Record is the schema-free representation of a synchronized row. The sync
// engine reconciles every table through this type so it does not need to know
// each table's concrete shape; typed structs and Records round-trip through
// the same JSON.
//
// Every record crossing the sync boundary carries "id", "user_id", and
// "updated_at" fields. A missing or unparsable updated_at is treated as older
// than anything.
type Record map[string]any

// ID returns the record's stable identifier, or "" if absent.
func (r Record) ID() string {
	s, _ := r["id"].(string)
	return s
}

// UserID returns the owning user's identifier, or "" if absent.
func (r Record) UserID() string {
	s, _ := r["user_id"].(string)
	return s
}

// UpdatedAt returns the record's modification timestamp. The zero time means
// the record carries no usable timestamp.
func (r Record) UpdatedAt() time.Time {
	s, ok := r["updated_at"].(string)
	if !ok {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// NewerThan reports whether r's timestamp is strictly later than other's.
// Equal timestamps favor neither side.
func (r Record) NewerThan(other Record) bool {
	return r.UpdatedAt().After(other.UpdatedAt())
}

// SetUser sets the record's owner. Sync paths deliberately leave
// updated_at alone so conflict resolution compares the original write
// times.
func (r Record) SetUser(userID string) {
	r["user_id"] = userID
}

// ToRecord converts any JSON-serializable value into a Record.
func ToRecord(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return r, nil
}

// RecordIndex builds an id → record lookup map.
func RecordIndex(records []Record) map[string]Record {
	index := make(map[string]Record, len(records))
	for _, r := range records {
		if id := r.ID(); id != "" {
			index[id] = r
		}
	}
	return index
}
