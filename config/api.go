package config

import (
	"strings"
	"time"
)

// APIConfig describes the upstream storefront API every gateway call targets.
type APIConfig struct {
	// BaseURL is the origin relative request paths are joined to
	// (e.g., "https://api.shop.example.com").
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:3000"`

	// Timeout bounds each upstream request. The gateway itself never
	// enforces a second timeout; this is the transport's.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// Sanitize applies guardrails to upstream API configuration values.
func (a *APIConfig) Sanitize() {
	a.BaseURL = strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	if a.Timeout <= 0 {
		a.Timeout = 30 * time.Second
	}
}
