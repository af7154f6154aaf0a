package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/desertthunder/spotctl/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisTest(t *testing.T, ttl time.Duration) (*RedisTokenStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), shared.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)

	return NewRedisTokenStore(client, "spotctl:token:", ttl), mr
}

func TestRedisTokenStore(t *testing.T) {
	store, _ := setupRedisTest(t, 0)
	defer store.Close()

	testTokenStore(t, store)
}

func TestRedisTokenStoreKeys(t *testing.T) {
	store, mr := setupRedisTest(t, 0)
	defer store.Close()

	require.NoError(t, store.Put(context.Background(), testRecord("42", "access")))
	assert.True(t, mr.Exists("spotctl:token:42"))

	ttl := mr.TTL("spotctl:token:42")
	assert.Equal(t, time.Duration(0), ttl, "records without a configured ttl should not expire")
}

func TestRedisTokenStoreTTL(t *testing.T) {
	store, mr := setupRedisTest(t, time.Second)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, testRecord("42", "access")))

	_, err := store.Get(ctx, "42")
	assert.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = store.Get(ctx, "42")
	assert.ErrorIs(t, err, shared.ErrTokenNotFound)
}

func TestNewRedisClientUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisClient(context.Background(), shared.RedisConfig{Addr: addr})
	assert.Error(t, err)
}
