package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/storefront-edge/internal/credential"
	domainauth "github.com/target/storefront-edge/internal/domain/auth"
	"github.com/target/storefront-edge/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func TestCredentialBackend_SaveAndGet(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	backend := NewCredentialBackend(client)
	ctx := context.Background()

	cred := domainauth.Credential{
		Token:     "test-token-1",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}

	require.NoError(t, backend.Save(ctx, cred))

	got, err := backend.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, cred.Token, got.Token)
	assert.WithinDuration(t, cred.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestCredentialBackend_GetAbsent(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	backend := NewCredentialBackend(client)

	_, err := backend.Get(context.Background())
	assert.ErrorIs(t, err, credential.ErrNotFound)
}

func TestCredentialBackend_SaveRejectsExpired(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	backend := NewCredentialBackend(client)
	err := backend.Save(context.Background(), domainauth.Credential{
		Token:     "stale",
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	assert.Error(t, err)
}

func TestCredentialBackend_Delete(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	backend := NewCredentialBackend(client)
	ctx := context.Background()

	require.NoError(t, backend.Save(ctx, domainauth.Credential{
		Token:     "to-delete",
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, backend.Delete(ctx))

	_, err := backend.Get(ctx)
	assert.ErrorIs(t, err, credential.ErrNotFound)
}

func TestCredentialBackend_CustomKey(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	backend := NewCredentialBackendWithKey(client, "edge:staging:token")
	ctx := context.Background()

	require.NoError(t, backend.Save(ctx, domainauth.Credential{
		Token:     "scoped",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	val, err := client.Get(ctx, "edge:staging:token").Result()
	require.NoError(t, err)
	assert.Contains(t, val, "scoped")
}
