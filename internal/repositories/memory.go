package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/shared"
)

// MemoryTokenStore keeps token records for the lifetime of the process.
type MemoryTokenStore struct {
	mu      sync.RWMutex
	records map[string]*models.TokenRecord
}

// NewMemoryTokenStore creates an empty [MemoryTokenStore].
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{records: make(map[string]*models.TokenRecord)}
}

// Get returns a copy of the record for userID.
func (s *MemoryTokenStore) Get(ctx context.Context, userID string) (*models.TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrTokenNotFound, userID)
	}
	return record.Clone(), nil
}

// Put stores a copy of record, replacing any existing one.
func (s *MemoryTokenStore) Put(ctx context.Context, record *models.TokenRecord) error {
	if record == nil || record.UserID == "" {
		return fmt.Errorf("%w: token record requires a user ID", shared.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.UserID] = record.Clone()
	return nil
}

// Delete removes the record for userID. Deleting a missing record is not an error.
func (s *MemoryTokenStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, userID)
	return nil
}

func (s *MemoryTokenStore) Close() error { return nil }
