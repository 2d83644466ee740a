package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeLocal exchanges username/password credentials with the upstream API.
	AuthModeLocal AuthMode = "local"
	// AuthModeOAuth uses OAuth/OIDC for federated authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock issues a fixed credential (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "local", "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: local, oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration for federated login.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"storefront"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:"storefront"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// MockAuthConfig controls the fixed credential issued when AUTH_MODE=mock.
type MockAuthConfig struct {
	Token string `env:"TOKEN" envDefault:"dev-token"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"local"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// Mock configuration (used when Mode=mock).
	Mock MockAuthConfig `envPrefix:"MOCK_AUTH_"`

	// CookieName is the name of the credential cookie mirrored for the
	// access guard. The durable store uses the same logical key.
	CookieName string `env:"AUTH_COOKIE_NAME" envDefault:"token"`

	// CookieMaxAge bounds the credential cookie lifetime. It approximates
	// the credential's validity window; when the upstream login response
	// carries an explicit expiry, that expiry wins.
	CookieMaxAge time.Duration `env:"AUTH_COOKIE_MAX_AGE" envDefault:"24h"`

	// LoginPath is the authentication entry point users are redirected to
	// when the access guard denies a request.
	LoginPath string `env:"AUTH_LOGIN_PATH" envDefault:"/login"`

	// AdminPrefix is the route namespace restricted to admin identities.
	AdminPrefix string `env:"AUTH_ADMIN_PREFIX" envDefault:"/admin/"`
}

// Sanitize applies guardrails to authentication configuration values.
func (a *AuthConfig) Sanitize() {
	if a.CookieName == "" {
		a.CookieName = "token"
	}
	if a.CookieMaxAge <= 0 {
		a.CookieMaxAge = 24 * time.Hour
	}
	if !strings.HasPrefix(a.LoginPath, "/") {
		a.LoginPath = "/login"
	}
	if !strings.HasPrefix(a.AdminPrefix, "/") {
		a.AdminPrefix = "/admin/"
	}
	if !strings.HasSuffix(a.AdminPrefix, "/") {
		a.AdminPrefix += "/"
	}
}
