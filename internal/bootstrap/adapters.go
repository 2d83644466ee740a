package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/storefront-edge/config"
	"github.com/target/storefront-edge/internal/adapters/devauth"
	"github.com/target/storefront-edge/internal/adapters/oidc"
	redisadapter "github.com/target/storefront-edge/internal/adapters/redis"
	"github.com/target/storefront-edge/internal/credential"
	"github.com/target/storefront-edge/internal/observability/statsd"
	"github.com/target/storefront-edge/internal/ports"
)

// ConnectRedis establishes a connection to Redis and verifies it with a ping.
//
//nolint:ireturn // returning redis.UniversalClient keeps client selection flexible.
func ConnectRedis(cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis: %w", pingErr)
	}

	if logger != nil {
		logger.Info("redis connected", "addr", cfg.Addr, "db", cfg.DB)
	}

	return client, nil
}

// buildMetricsSink configures the StatsD sink. A nil return disables
// emission; every metrics call site is nil-safe.
func buildMetricsSink(logger *slog.Logger, cfg config.ObservabilityMetricsConfig) *statsd.Client {
	if !cfg.IsEnabled() {
		return nil
	}

	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}

// buildCredentialBackend selects the durable storage domain: Redis when
// configured, otherwise an in-process backend.
//
//nolint:ireturn // backend selection happens at runtime.
func buildCredentialBackend(cfg config.RedisConfig, logger *slog.Logger) (ports.CredentialBackend, error) {
	if !cfg.Enabled {
		logger.Info("using in-process credential backend")
		return credential.NewMemoryBackend(), nil
	}

	client, err := ConnectRedis(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return redisadapter.NewCredentialBackend(client), nil
}

// buildTokenProvider selects the federated login provider by auth mode.
// Local mode exchanges credentials directly with the upstream API and needs
// no provider.
//
//nolint:ireturn // provider selection happens at runtime.
func buildTokenProvider(cfg config.AuthConfig, logger *slog.Logger) (ports.TokenProvider, error) {
	switch cfg.Mode {
	case config.AuthModeLocal:
		return nil, nil
	case config.AuthModeOAuth:
		provider, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			RedirectURL:  cfg.OAuth.RedirectURL,
			Scope:        cfg.OAuth.Scope,
			DiscoveryURL: cfg.OAuth.DiscoveryURL,
		})
		if err != nil {
			return nil, fmt.Errorf("create oidc provider: %w", err)
		}
		return provider, nil
	case config.AuthModeMock:
		logger.Warn("mock auth mode issues a fixed credential; do not use in production")
		return devauth.NewProvider(cfg.Mock.Token, cfg.CookieMaxAge)
	default:
		return nil, fmt.Errorf("unknown auth mode: %q", cfg.Mode)
	}
}
