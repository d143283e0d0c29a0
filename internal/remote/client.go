package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/milassn/fitness-tracker/internal/models"
)

// Client talks to the fittrack server's table API over HTTP. All calls are
// bounded by the client timeout; the sync engine relies on that bound to keep
// a hung table from stalling the rest of a pass.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// New creates a client for the given server URL.
func New(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SelectAll fetches every record of a table.
func (c *Client) SelectAll(ctx context.Context, table string) ([]models.Record, error) {
	return c.selectRecords(ctx, table, "")
}

// SelectByUser fetches only the given user's records of a table.
func (c *Client) SelectByUser(ctx context.Context, table, userID string) ([]models.Record, error) {
	return c.selectRecords(ctx, table, userID)
}

func (c *Client) selectRecords(ctx context.Context, table, userID string) ([]models.Record, error) {
	endpoint := c.serverURL + "/api/v1/tables/" + url.PathEscape(table)
	if userID != "" {
		endpoint += "?user_id=" + url.QueryEscape(userID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building select request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("selecting %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("select %s failed (status %d): %s", table, resp.StatusCode, body)
	}

	var records []models.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding %s records: %w", table, err)
	}
	return records, nil
}

// Upsert inserts or replaces records by identifier. Retries up to 3 times
// with exponential backoff on failure.
func (c *Client) Upsert(ctx context.Context, table string, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling %s records: %w", table, err)
	}

	endpoint := c.serverURL + "/api/v1/tables/" + url.PathEscape(table)

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(1<<uint(attempt-1)) * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("building upsert request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			return nil
		}
		lastErr = fmt.Errorf("upsert %s failed (status %d): %s", table, resp.StatusCode, body)
	}

	return fmt.Errorf("after 3 attempts: %w", lastErr)
}

// CurrentUser returns the identity the API key authenticates as, or nil when
// the server rejects the key.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/api/v1/me", nil)
	if err != nil {
		return nil, fmt.Errorf("building me request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching identity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("me request failed (status %d): %s", resp.StatusCode, body)
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decoding identity: %w", err)
	}
	return &user, nil
}
