package bootstrap

import (
	"log/slog"
	"testing"
	"time"

	"github.com/target/storefront-edge/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.AppConfig {
	cfg := &config.AppConfig{
		Auth: config.AuthConfig{
			Mode:         config.AuthModeLocal,
			CookieName:   "token",
			CookieMaxAge: 24 * time.Hour,
			LoginPath:    "/login",
			AdminPrefix:  "/admin/",
		},
		API: config.APIConfig{
			BaseURL: "http://localhost:3000",
			Timeout: 30 * time.Second,
		},
	}
	cfg.Sanitize()
	return cfg
}

func TestNewServices_WiresServiceLayer(t *testing.T) {
	services, err := NewServices(&ServiceDeps{
		Config: testConfig(),
		Logger: slog.Default(),
	})
	require.NoError(t, err)
	defer services.Close()

	assert.NotNil(t, services.Gateway)
	assert.NotNil(t, services.Store)
	assert.NotNil(t, services.Auth)
	assert.NotNil(t, services.Orders)
	assert.NotNil(t, services.Verifier)
	assert.NotNil(t, services.Broadcaster)
	assert.Equal(t, "token", services.Store.CookieName())
}

func TestNewServices_RequiresConfig(t *testing.T) {
	_, err := NewServices(nil)
	assert.Error(t, err)

	_, err = NewServices(&ServiceDeps{})
	assert.Error(t, err)
}

func TestBuildTokenProvider_ModeSelection(t *testing.T) {
	logger := slog.Default()

	provider, err := buildTokenProvider(config.AuthConfig{Mode: config.AuthModeLocal}, logger)
	require.NoError(t, err)
	assert.Nil(t, provider)

	provider, err = buildTokenProvider(config.AuthConfig{
		Mode:         config.AuthModeMock,
		Mock:         config.MockAuthConfig{Token: "dev-token"},
		CookieMaxAge: time.Hour,
	}, logger)
	require.NoError(t, err)
	assert.NotNil(t, provider)

	_, err = buildTokenProvider(config.AuthConfig{Mode: "saml"}, logger)
	assert.Error(t, err)
}

func TestBuildMetricsSink_DisabledReturnsNil(t *testing.T) {
	sink := buildMetricsSink(slog.Default(), config.ObservabilityMetricsConfig{})
	assert.Nil(t, sink)
}
