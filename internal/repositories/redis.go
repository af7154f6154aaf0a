package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/shared"
	"github.com/redis/go-redis/v9"
)

// RedisTokenStore keeps JSON encoded token records in Redis so several relay processes can share them.
type RedisTokenStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisClient connects to Redis with the given settings and verifies the connection.
func NewRedisClient(ctx context.Context, cfg shared.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return client, nil
}

// NewRedisTokenStore creates a [RedisTokenStore]. A zero ttl keeps records until they are deleted.
func NewRedisTokenStore(client *redis.Client, prefix string, ttl time.Duration) *RedisTokenStore {
	return &RedisTokenStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisTokenStore) key(userID string) string {
	return s.prefix + userID
}

// Get retrieves and decodes the record for userID.
func (s *RedisTokenStore) Get(ctx context.Context, userID string) (*models.TokenRecord, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", shared.ErrTokenNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	var record models.TokenRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return &record, nil
}

// Put encodes and stores record.
func (s *RedisTokenStore) Put(ctx context.Context, record *models.TokenRecord) error {
	if record == nil || record.UserID == "" {
		return fmt.Errorf("%w: token record requires a user ID", shared.ErrInvalidInput)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := s.client.Set(ctx, s.key(record.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set token: %w", err)
	}
	return nil
}

// Delete removes the record for userID.
func (s *RedisTokenStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisTokenStore) Close() error {
	return s.client.Close()
}
