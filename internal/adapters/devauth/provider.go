// Package devauth implements the TokenProvider port with a fixed
// credential for local development. The auth URL points straight back at
// the callback so the flow completes without an identity provider.
package devauth

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/target/storefront-edge/internal/domain/auth"
	"github.com/target/storefront-edge/internal/ports"
)

// Provider issues a fixed token. Development only; never wire it in
// production mode.
type Provider struct {
	token string
	ttl   time.Duration
}

var _ ports.TokenProvider = (*Provider)(nil)

// NewProvider constructs a dev provider. A token is required so separate
// developers don't silently share one default.
func NewProvider(token string, ttl time.Duration) (*Provider, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("dev auth token is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Provider{token: token, ttl: ttl}, nil
}

// Begin short-circuits the flow: the "auth URL" is the callback itself
// with a synthetic code already attached.
func (p *Provider) Begin(_ context.Context, redirectURL string) (string, string, string, error) {
	if redirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state := uuid.NewString()
	nonce := uuid.NewString()

	u, err := url.Parse(redirectURL)
	if err != nil {
		return "", "", "", err
	}
	q := u.Query()
	q.Set("code", "dev-"+uuid.NewString())
	q.Set("state", state)
	u.RawQuery = q.Encode()

	return u.String(), state, nonce, nil
}

// Exchange returns the fixed credential for any non-empty code.
func (p *Provider) Exchange(_ context.Context, in ports.ExchangeInput) (domainauth.Credential, error) {
	if in.Code == "" {
		return domainauth.Credential{}, errors.New("authorization code is required")
	}
	return domainauth.Credential{
		Token:     p.token,
		ExpiresAt: time.Now().Add(p.ttl),
	}, nil
}
