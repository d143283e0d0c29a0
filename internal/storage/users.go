package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/milassn/fitness-tracker/internal/models"
)

// GetUserByAPIKey resolves an API key to its user. Returns nil when the
// key is unknown.
func (db *DB) GetUserByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	var u models.User
	err := db.Pool.QueryRow(ctx,
		`SELECT id, email FROM users WHERE api_key = $1`,
		apiKey).Scan(&u.ID, &u.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up api key: %w", err)
	}
	return &u, nil
}

// CreateUser registers a user with a fresh API key and returns it.
func (db *DB) CreateUser(ctx context.Context, email string) (*models.User, error) {
	u := models.User{
		ID:     models.NewID(),
		Email:  email,
		APIKey: models.NewID(),
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO users (id, email, api_key) VALUES ($1, $2, $3)`,
		u.ID, u.Email, u.APIKey)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return &u, nil
}
