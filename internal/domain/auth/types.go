package auth

// Package auth contains domain-level types for the session and admin-access
// boundary. It is pure and free of transport/adapter concerns.

import (
	"net/url"
	"strings"
	"time"
)

// Credential is the opaque bearer token scoped to one authenticated identity.
// It is presented on each upstream request; there is no rotation, just a
// fixed lifetime token destroyed on logout or on a rejected validation.
type Credential struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsZero reports whether no credential is held.
func (c Credential) IsZero() bool { return c.Token == "" }

// Bearer returns the token normalised for use in an Authorization header.
// The store must never contain a prefixed value, but consumers tolerate one.
func (c Credential) Bearer() string {
	return strings.TrimPrefix(c.Token, "Bearer ")
}

// AdminStatus is the transient result of the remote admin validation
// endpoint. It is never persisted; the access guard computes it fresh on
// every protected-route request.
type AdminStatus struct {
	IsAdmin bool `json:"isAdmin"`
}

// Reason is the machine-readable code carried to the authentication entry
// point when the access guard denies a request.
type Reason string

const (
	// ReasonUnauthorized means the validation endpoint rejected the credential (401).
	ReasonUnauthorized Reason = "unauthorized"
	// ReasonForbidden means the credential is valid but lacks admin privilege (403 or isAdmin=false).
	ReasonForbidden Reason = "forbidden"
	// ReasonValidationFailed means the validation endpoint answered with an unexpected status.
	ReasonValidationFailed Reason = "validation_failed"
	// ReasonServerError means the validation call itself failed (network/parse).
	ReasonServerError Reason = "server_error"
)

// RedirectIntent is constructed by the access guard when validation fails:
// the path to return to after authentication plus an optional denial reason.
// An empty Reason means no credential was presented at all.
type RedirectIntent struct {
	Redirect string
	Reason   Reason
}

// EntryURL renders the intent as the authentication entry point URL.
func (ri RedirectIntent) EntryURL(loginPath string) string {
	q := url.Values{}
	q.Set("redirect", ri.Redirect)
	if ri.Reason != "" {
		q.Set("error", string(ri.Reason))
	}
	u := url.URL{Path: loginPath, RawQuery: q.Encode()}
	return u.String()
}
