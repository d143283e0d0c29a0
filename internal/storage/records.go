package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/milassn/fitness-tracker/internal/models"
)

// UpsertRecords writes records into a table partition. Conflicts on
// (table_name, id) keep the row with the newer updated_at, so replaying
// an upload is harmless.
func (db *DB) UpsertRecords(ctx context.Context, table, userID string, records []models.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := `INSERT INTO records (table_name, id, user_id, updated_at, payload) VALUES `
	args := make([]any, 0, len(records)*5)
	valueStrings := make([]string, 0, len(records))

	for i, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("encoding record %s: %w", rec.ID(), err)
		}
		updatedAt := rec.UpdatedAt()
		if updatedAt.IsZero() {
			updatedAt = time.Now().UTC()
		}
		base := i * 5
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5,
		))
		args = append(args, table, rec.ID(), userID, updatedAt, payload)
	}

	query += strings.Join(valueStrings, ",") + `
		ON CONFLICT (table_name, id) DO UPDATE
			SET user_id = EXCLUDED.user_id,
			    updated_at = EXCLUDED.updated_at,
			    payload = EXCLUDED.payload
			WHERE EXCLUDED.updated_at > records.updated_at`

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("upserting into %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

// SelectRecords returns a table partition's payloads, optionally filtered
// by user, ordered by updated_at.
func (db *DB) SelectRecords(ctx context.Context, table, userID string) ([]models.Record, error) {
	query := `SELECT payload FROM records WHERE table_name = $1`
	args := []any{table}
	if userID != "" {
		query += ` AND user_id = $2`
		args = append(args, userID)
	}
	query += ` ORDER BY updated_at`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting from %s: %w", table, err)
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		var rec models.Record
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteRecord removes one record from a table partition. Returns true if
// a row was deleted.
func (db *DB) DeleteRecord(ctx context.Context, table, userID, id string) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM records WHERE table_name = $1 AND user_id = $2 AND id = $3`,
		table, userID, id)
	if err != nil {
		return false, fmt.Errorf("deleting from %s: %w", table, err)
	}
	return tag.RowsAffected() > 0, nil
}
