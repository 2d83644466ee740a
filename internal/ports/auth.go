package ports

// Package ports defines interfaces (hexagonal ports) for the session and
// admin-access boundary. Implementations live in internal/adapters;
// orchestration in internal/service.

import (
	"context"

	domainauth "github.com/target/storefront-edge/internal/domain/auth"
)

// CredentialBackend is the private storage domain for the bearer credential.
// It holds at most one credential per logical operator session key.
type CredentialBackend interface {
	Save(ctx context.Context, cred domainauth.Credential) error
	Get(ctx context.Context) (domainauth.Credential, error)
	Delete(ctx context.Context) error
}

// AdminVerifier performs the remote admin validation check for a raw bearer
// token. Implementations must not cache results: the access guard relies on
// a fresh answer per request so privilege revocation takes effect immediately.
type AdminVerifier interface {
	// VerifyAdmin returns the parsed admin status and the upstream HTTP
	// status. A non-nil error means the check itself failed (network or
	// malformed response), not that access was denied.
	VerifyAdmin(ctx context.Context, token string) (domainauth.AdminStatus, int, error)
}

// TokenProvider initiates and completes a federated authentication flow,
// yielding the bearer credential the storefront API accepts.
type TokenProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an
	// opaque state, and a nonce.
	Begin(ctx context.Context, redirectURL string) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and
	// returns the credential to store.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Credential, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}
