package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/target/storefront-edge/internal/domain/auth"
	"github.com/target/storefront-edge/internal/gateway"
	"github.com/target/storefront-edge/internal/ports"
)

const (
	loginPath  = "/api/auth/login"
	logoutPath = "/api/auth/logout"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Gateway  *gateway.Client
	Provider ports.TokenProvider // optional; required only for federated login
	Logger   *slog.Logger
}

// AuthService orchestrates credential acquisition and release. It never
// touches the transport layer: handlers persist the returned credential
// through the store, which owns both storage domains.
type AuthService struct {
	gw       *gateway.Client
	provider ports.TokenProvider
	logger   *slog.Logger
}

// NewAuthService constructs an AuthService. A gateway client is required.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Gateway == nil {
		return nil, errors.New("gateway client is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		gw:       opts.Gateway,
		provider: opts.Provider,
		logger:   logger.With("component", "auth_service"),
	}, nil
}

// LoginInput groups parameters for a local credential login.
type LoginInput struct {
	Email    string
	Password string
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login exchanges local credentials for a bearer token via the upstream
// login endpoint. Failures surface as gateway errors so handlers can
// translate them with DescribeError.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (domainauth.Credential, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return domainauth.Credential{}, errors.New("email and password are required")
	}

	var resp loginResponse
	_, err := s.gw.Do(ctx, loginPath, gateway.Options{
		Method: http.MethodPost,
		Body: map[string]string{
			"email":    in.Email,
			"password": in.Password,
		},
		Out: &resp,
	})
	if err != nil {
		return domainauth.Credential{}, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return domainauth.Credential{}, errors.New("login: upstream returned no token")
	}

	return domainauth.Credential{
		Token:     strings.TrimPrefix(resp.Token, "Bearer "),
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

// BeginOAuthResult contains the provider redirect plus the flow state the
// handler must pin in short-lived cookies.
type BeginOAuthResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginOAuth initiates a federated login flow.
func (s *AuthService) BeginOAuth(ctx context.Context, redirectURL string) (*BeginOAuthResult, error) {
	if s.provider == nil {
		return nil, errors.New("federated login is not configured")
	}
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, redirectURL)
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginOAuthResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteOAuth finishes a federated login flow and returns the credential
// to persist.
func (s *AuthService) CompleteOAuth(ctx context.Context, in ports.ExchangeInput) (domainauth.Credential, error) {
	if s.provider == nil {
		return domainauth.Credential{}, errors.New("federated login is not configured")
	}
	if in.Code == "" {
		return domainauth.Credential{}, errors.New("authorization code is required")
	}
	if in.State == "" {
		return domainauth.Credential{}, errors.New("state parameter is required")
	}

	cred, err := s.provider.Exchange(ctx, in)
	if err != nil {
		return domainauth.Credential{}, fmt.Errorf("exchange authorization code: %w", err)
	}
	if cred.IsZero() {
		return domainauth.Credential{}, errors.New("provider returned an empty credential")
	}
	return cred, nil
}

// Logout tells the upstream to revoke the credential. Best effort: local
// destruction (handled by the store) matters more than upstream revocation,
// so failures are logged and swallowed.
func (s *AuthService) Logout(ctx context.Context) {
	_, err := s.gw.Do(ctx, logoutPath, gateway.Options{
		Method: http.MethodPost,
		Auth:   true,
		Parse:  gateway.ParseNone,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "upstream logout failed", "error", err)
	}
}
