package redis

// Package redis provides Redis-based adapters for the storefront edge.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/storefront-edge/internal/credential"
	domainauth "github.com/target/storefront-edge/internal/domain/auth"
)

// CredentialBackend is a Redis-based credential backend for deployments
// where the edge runs more than one instance. TTL semantics follow the
// credential's ExpiresAt so Redis expires the record with the token.
type CredentialBackend struct {
	client redis.UniversalClient
	key    string
}

// NewCredentialBackend creates a Redis-backed credential backend.
func NewCredentialBackend(client redis.UniversalClient) *CredentialBackend {
	return &CredentialBackend{
		client: client,
		key:    "credential:token",
	}
}

// NewCredentialBackendWithKey creates a Redis backend with a custom key,
// for deployments sharing one Redis across environments.
func NewCredentialBackendWithKey(client redis.UniversalClient, key string) *CredentialBackend {
	return &CredentialBackend{
		client: client,
		key:    key,
	}
}

func (b *CredentialBackend) Save(ctx context.Context, cred domainauth.Credential) error {
	if cred.Token == "" {
		return errors.New("credential token cannot be empty")
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}

	ttl := time.Until(cred.ExpiresAt)
	if ttl <= 0 {
		// Credential is already expired, don't save it
		return errors.New("credential is expired")
	}

	return b.client.Set(ctx, b.key, data, ttl).Err()
}

func (b *CredentialBackend) Get(ctx context.Context) (domainauth.Credential, error) {
	data, err := b.client.Get(ctx, b.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Credential{}, credential.ErrNotFound
		}
		return domainauth.Credential{}, fmt.Errorf("redis get: %w", err)
	}

	var cred domainauth.Credential
	if unmarshalErr := json.Unmarshal([]byte(data), &cred); unmarshalErr != nil {
		return domainauth.Credential{}, fmt.Errorf("unmarshal credential: %w", unmarshalErr)
	}

	// Redis TTL can lag the wall clock; expiry is re-checked here.
	if time.Now().After(cred.ExpiresAt) {
		if deleteErr := b.Delete(ctx); deleteErr != nil {
			return domainauth.Credential{}, fmt.Errorf("cleanup expired credential: %w", deleteErr)
		}
		return domainauth.Credential{}, credential.ErrNotFound
	}

	return cred, nil
}

func (b *CredentialBackend) Delete(ctx context.Context) error {
	return b.client.Del(ctx, b.key).Err()
}
