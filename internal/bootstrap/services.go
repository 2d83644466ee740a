package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/storefront-edge/config"
	"github.com/target/storefront-edge/internal/adapters/upstream"
	"github.com/target/storefront-edge/internal/credential"
	"github.com/target/storefront-edge/internal/gateway"
	"github.com/target/storefront-edge/internal/notify"
	"github.com/target/storefront-edge/internal/observability/statsd"
	"github.com/target/storefront-edge/internal/service"
)

// ServiceDeps contains the dependencies needed to build the service layer.
type ServiceDeps struct {
	Config *config.AppConfig
	Logger *slog.Logger
}

// ServiceContainer holds the constructed service layer and its shared
// infrastructure.
type ServiceContainer struct {
	Gateway     *gateway.Client
	Store       *credential.Store
	Auth        *service.AuthService
	Orders      *service.OrdersService
	Verifier    *upstream.AdminVerifier
	Broadcaster *notify.Broadcaster
	Metrics     statsd.Sink
}

// Close releases service-held resources. Safe to call once on shutdown.
func (c *ServiceContainer) Close() {
	if c == nil {
		return
	}
	if c.Orders != nil {
		c.Orders.Close()
	}
	if c.Broadcaster != nil {
		c.Broadcaster.StopAll()
	}
}

// NewServices wires adapters and services from configuration.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("service dependencies are required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := buildMetricsSink(logger, cfg.Observability.Metrics)

	backend, err := buildCredentialBackend(cfg.Redis, logger)
	if err != nil {
		return nil, err
	}

	store, err := credential.NewStore(credential.StoreOptions{
		Backend:      backend,
		CookieName:   cfg.Auth.CookieName,
		CookieDomain: cfg.HTTP.CookieDomain,
		MaxAge:       cfg.Auth.CookieMaxAge,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create credential store: %w", err)
	}

	gw, err := gateway.NewClient(gateway.ClientOptions{
		BaseURL:     cfg.API.BaseURL,
		Credentials: store,
		Timeout:     cfg.API.Timeout,
		Logger:      logger,
		Metrics:     metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("create gateway client: %w", err)
	}

	provider, err := buildTokenProvider(cfg.Auth, logger)
	if err != nil {
		return nil, err
	}

	auth, err := service.NewAuthService(service.AuthServiceOptions{
		Gateway:  gw,
		Provider: provider,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create auth service: %w", err)
	}

	broadcaster := notify.NewBroadcaster()

	orders, err := service.NewOrdersService(service.OrdersServiceOptions{
		Gateway:     gw,
		Broadcaster: broadcaster,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create orders service: %w", err)
	}

	verifier, err := upstream.NewAdminVerifier(upstream.AdminVerifierOptions{
		Gateway: gw,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create admin verifier: %w", err)
	}

	return &ServiceContainer{
		Gateway:     gw,
		Store:       store,
		Auth:        auth,
		Orders:      orders,
		Verifier:    verifier,
		Broadcaster: broadcaster,
		Metrics:     metrics,
	}, nil
}
