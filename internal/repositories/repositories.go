package repositories

import (
	"context"

	"github.com/desertthunder/spotctl/internal/models"
)

// TokenStore persists [models.TokenRecord] values keyed by user identifier.
//
// Get returns an error wrapping [shared.ErrTokenNotFound] when no record exists.
// Implementations are safe for concurrent use and never hand out a pointer to their stored value.
type TokenStore interface {
	Get(ctx context.Context, userID string) (*models.TokenRecord, error)
	Put(ctx context.Context, record *models.TokenRecord) error
	Delete(ctx context.Context, userID string) error
	Close() error
}
