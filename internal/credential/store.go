package credential

// Package credential owns the single source of truth for the bearer
// credential. The credential lives in two storage domains: a durable private
// backend read by page-serving code, and the token cookie read by the access
// guard, which cannot see the private backend. Both are written on Set and
// invalidated on Clear; the narrow window between the two writes is a known,
// documented race (no cross-domain transaction primitive exists).

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/target/storefront-edge/internal/domain/auth"
	"github.com/target/storefront-edge/internal/ports"
)

// ErrNotFound is returned when no credential is held.
type notFoundError struct{}

func (notFoundError) Error() string { return "credential not found" }

var ErrNotFound error = notFoundError{}

// StoreOptions groups dependencies for Store.
type StoreOptions struct {
	Backend      ports.CredentialBackend
	CookieName   string        // defaults to "token"
	CookieDomain string        // empty uses the request domain
	MaxAge       time.Duration // cookie lifetime bound, defaults to 24h
	Logger       *slog.Logger
}

// Store persists the credential in both storage domains.
type Store struct {
	backend      ports.CredentialBackend
	cookieName   string
	cookieDomain string
	maxAge       time.Duration
	logger       *slog.Logger
}

// NewStore constructs a Store. A backend is required.
func NewStore(opts StoreOptions) (*Store, error) {
	if opts.Backend == nil {
		return nil, errors.New("credential backend is required")
	}
	name := opts.CookieName
	if name == "" {
		name = "token"
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend:      opts.Backend,
		cookieName:   name,
		cookieDomain: opts.CookieDomain,
		maxAge:       maxAge,
		logger:       logger,
	}, nil
}

// CookieName returns the name of the cookie-domain copy, for readers that
// only see the cookie domain (the access guard).
func (s *Store) CookieName() string { return s.cookieName }

// Set writes the credential to the private backend and mirrors it to the
// cookie domain. The token is normalised so the stored value never carries a
// "Bearer " prefix. A zero ExpiresAt is bounded by the configured max age.
func (s *Store) Set(ctx context.Context, w http.ResponseWriter, r *http.Request, cred domainauth.Credential) error {
	cred.Token = strings.TrimPrefix(cred.Token, "Bearer ")
	if cred.Token == "" {
		return errors.New("credential token cannot be empty")
	}
	if cred.ExpiresAt.IsZero() || time.Until(cred.ExpiresAt) > s.maxAge {
		cred.ExpiresAt = time.Now().Add(s.maxAge)
	}

	if err := s.backend.Save(ctx, cred); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    cred.Token,
		Path:     "/",
		Domain:   s.cookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(cred.ExpiresAt).Seconds()),
	})
	return nil
}

// Get reads the credential from the private backend only. Expired
// credentials are treated as absent and lazily removed.
func (s *Store) Get(ctx context.Context) (domainauth.Credential, error) {
	cred, err := s.backend.Get(ctx)
	if err != nil {
		return domainauth.Credential{}, err
	}
	if !cred.ExpiresAt.IsZero() && time.Now().After(cred.ExpiresAt) {
		if delErr := s.backend.Delete(ctx); delErr != nil {
			s.logger.WarnContext(ctx, "cleanup expired credential failed", "error", delErr)
		}
		return domainauth.Credential{}, ErrNotFound
	}
	return cred, nil
}

// Clear deletes the credential from both domains. The cookie copy is removed
// with the platform's explicit removal primitive (MaxAge < 0).
func (s *Store) Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	err := s.backend.Delete(ctx)

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		Domain:   s.cookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})

	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

// IsAuthenticated is the derived predicate: a live credential is present.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	_, err := s.Get(ctx)
	return err == nil
}

// isSecureRequest mirrors how cookies were set when clearing them, so
// deletion stays compatible across browsers.
func isSecureRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
