package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/shared"
)

// SQLiteTokenStore persists token records in the tokens table created by [shared.RunMigrations].
type SQLiteTokenStore struct {
	db *sql.DB
}

// NewSQLiteTokenStore creates a new [SQLiteTokenStore] with the given database connection
func NewSQLiteTokenStore(db *sql.DB) *SQLiteTokenStore {
	return &SQLiteTokenStore{db: db}
}

// Get retrieves the token record for userID.
func (s *SQLiteTokenStore) Get(ctx context.Context, userID string) (*models.TokenRecord, error) {
	query := `
		SELECT user_id, access_token, refresh_token, token_type, scope, expires_at, updated_at
		FROM tokens
		WHERE user_id = ?
	`

	var (
		record    models.TokenRecord
		expiresAt sql.NullTime
	)

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&record.UserID, &record.AccessToken, &record.RefreshToken, &record.TokenType, &record.Scope,
		&expiresAt, &record.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrTokenNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token: %w", err)
	}

	if expiresAt.Valid {
		record.ExpiresAt = expiresAt.Time
	}

	return &record, nil
}

// Put inserts the record or replaces the existing one for the same user.
func (s *SQLiteTokenStore) Put(ctx context.Context, record *models.TokenRecord) error {
	if record == nil || record.UserID == "" {
		return fmt.Errorf("%w: token record requires a user ID", shared.ErrInvalidInput)
	}

	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	var expiresAt sql.NullTime
	if !record.ExpiresAt.IsZero() {
		expiresAt = sql.NullTime{Time: record.ExpiresAt, Valid: true}
	}

	query := `
		INSERT INTO tokens (id, user_id, access_token, refresh_token, token_type, scope, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			scope = excluded.scope,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		shared.GenerateID(), record.UserID, record.AccessToken, record.RefreshToken, record.TokenType, record.Scope,
		expiresAt, updatedAt, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert token: %w", err)
	}

	return nil
}

// Delete removes the token record for userID.
func (s *SQLiteTokenStore) Delete(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM tokens WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteTokenStore) Close() error {
	return s.db.Close()
}
