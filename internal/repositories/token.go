package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/desertthunder/vdx/internal/auth"
)

// tokenKey is the single key/value entry holding the session token.
const tokenKey = "session_token"

// TokenRepository persists the session token in the kv_store table. It
// implements [auth.TokenStore].
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a token store over the database.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Save upserts the token record.
func (r *TokenRepository) Save(token *auth.StoredToken) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, tokenKey, string(data))
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Load returns the stored token, or (nil, nil) when none is stored.
func (r *TokenRepository) Load() (*auth.StoredToken, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM kv_store WHERE key = ?", tokenKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}

	var token auth.StoredToken
	if err := json.Unmarshal([]byte(value), &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &token, nil
}

// Clear removes the stored token. Clearing an absent token is not an error.
func (r *TokenRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM kv_store WHERE key = ?", tokenKey); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}
