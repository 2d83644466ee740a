// Package guard intercepts requests to the admin namespace. It sees only
// the cookie copy of the credential, never the private store, and turns
// every failure into a redirect to the login entry point. A half-rendered
// admin page is treated as strictly worse than a denied request, so no
// error ever reaches the protected handler.
package guard

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/target/storefront-edge/internal/domain/auth"
	"github.com/target/storefront-edge/internal/observability/statsd"
	"github.com/target/storefront-edge/internal/ports"
)

// CredentialCookies is the guard's narrow view of the credential store:
// the cookie name it reads, and invalidation of both storage domains when
// the upstream says the credential is dead.
type CredentialCookies interface {
	CookieName() string
	Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Options groups dependencies for the admin guard.
type Options struct {
	Verifier    ports.AdminVerifier
	Credentials CredentialCookies
	LoginPath   string // defaults to "/login"
	Logger      *slog.Logger
	Metrics     statsd.Sink
}

// RequireAdmin returns middleware enforcing admin access on every matched
// request. There is no memoization: each request triggers a fresh upstream
// check, trading latency for freshness against revoked privileges.
func RequireAdmin(opts Options) func(http.Handler) http.Handler {
	loginPath := opts.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "guard")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			cookie, err := r.Cookie(opts.Credentials.CookieName())
			if err != nil || cookie.Value == "" {
				// No token: the request never reaches the backend.
				observe(opts.Metrics, "redirect_login")
				redirect(w, r, loginPath, "")
				return
			}

			status, code, err := opts.Verifier.VerifyAdmin(ctx, cookie.Value)
			switch {
			case err != nil:
				logger.ErrorContext(ctx, "admin validation failed", "path", r.URL.Path, "error", err)
				observe(opts.Metrics, "server_error")
				redirect(w, r, loginPath, domainauth.ReasonServerError)

			case code == http.StatusUnauthorized:
				clearCredential(ctx, opts.Credentials, w, r, logger)
				observe(opts.Metrics, "unauthorized")
				redirect(w, r, loginPath, domainauth.ReasonUnauthorized)

			case code == http.StatusForbidden:
				clearCredential(ctx, opts.Credentials, w, r, logger)
				observe(opts.Metrics, "forbidden")
				redirect(w, r, loginPath, domainauth.ReasonForbidden)

			case code < 200 || code > 299:
				observe(opts.Metrics, "validation_failed")
				redirect(w, r, loginPath, domainauth.ReasonValidationFailed)

			case !status.IsAdmin:
				// A 2xx alone never grants access; the flag must be true.
				observe(opts.Metrics, "forbidden")
				redirect(w, r, loginPath, domainauth.ReasonForbidden)

			default:
				observe(opts.Metrics, "allowed")
				next.ServeHTTP(w, r)
			}
		})
	}
}

// redirect sends the browser to the login entry point, preserving the
// originally requested path so the user can be returned there.
func redirect(w http.ResponseWriter, r *http.Request, loginPath string, reason domainauth.Reason) {
	intent := domainauth.RedirectIntent{
		Redirect: r.URL.RequestURI(),
		Reason:   reason,
	}
	http.Redirect(w, r, intent.EntryURL(loginPath), http.StatusSeeOther)
}

// clearCredential invalidates both storage domains. The upstream has told
// us the token is dead, so keeping it only causes repeat failures.
func clearCredential(ctx context.Context, creds CredentialCookies, w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	if err := creds.Clear(ctx, w, r); err != nil {
		logger.WarnContext(ctx, "clear rejected credential failed", "error", err)
	}
}

func observe(sink statsd.Sink, outcome string) {
	if sink == nil {
		return
	}
	sink.Count("guard.decision", 1, map[string]string{"outcome": outcome})
}
