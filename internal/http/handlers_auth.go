package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/target/storefront-edge/internal/credential"
	domainauth "github.com/target/storefront-edge/internal/domain/auth"
	"github.com/target/storefront-edge/internal/gateway"
	"github.com/target/storefront-edge/internal/ports"
	"github.com/target/storefront-edge/internal/service"
)

// AuthServiceInterface defines the auth service operations the handlers need.
type AuthServiceInterface interface {
	Login(ctx context.Context, in service.LoginInput) (domainauth.Credential, error)
	BeginOAuth(ctx context.Context, redirectURL string) (*service.BeginOAuthResult, error)
	CompleteOAuth(ctx context.Context, in ports.ExchangeInput) (domainauth.Credential, error)
	Logout(ctx context.Context)
}

// AuthHandlers provides HTTP handlers for credential acquisition and release.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	Store        *credential.Store
	CookieDomain string
	BaseURL      string // public origin of this edge, used for the OAuth callback
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// LoginPage is the authentication entry point.
// GET /login?redirect=<path>&error=<reason>.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	reason := domainauth.Reason(r.URL.Query().Get("error"))
	WriteJSON(w, http.StatusOK, map[string]string{
		"redirect": safeRedirectPath(r.URL.Query().Get("redirect")),
		"error":    string(reason),
		"message":  reasonMessage(reason),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Redirect string `json:"redirect"`
}

// Login exchanges local credentials for a token and persists it in both
// storage domains.
// POST /login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	cred, err := h.Svc.Login(r.Context(), service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    upstreamFailureCode(err),
			ErrCode: "login_failed",
			Err:     errors.New(gateway.DescribeError(err, "login failed")),
		})
		return
	}

	if err := h.Store.Set(r.Context(), w, r, cred); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "credential_store_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":      "success",
		"redirect_to": safeRedirectPath(req.Redirect),
	})
}

// OAuthBegin starts the federated login flow.
// GET /auth/oauth?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) OAuthBegin(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	callbackURL := strings.TrimRight(h.BaseURL, "/") + "/auth/callback"
	result, err := h.Svc.BeginOAuth(r.Context(), callbackURL)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "login_failed", Err: err})
		return
	}

	h.setOAuthCookies(w, r, oauthCookieParams{State: result.State, Nonce: result.Nonce, RedirectURI: redirectURI})
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback completes the federated login flow.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("authorization code is required"),
		})
		return
	}
	if state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_state",
			Err:     errors.New("state parameter is required"),
		})
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie("oauth_nonce")
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce parameter"),
		})
		return
	}

	cred, err := h.Svc.CompleteOAuth(r.Context(), ports.ExchangeInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_completion_failed",
			Err:     err,
		})
		return
	}

	if err := h.Store.Set(r.Context(), w, r, cred); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "credential_store_failed", Err: err})
		return
	}

	h.clearCookie(w, r, "oauth_state")
	h.clearCookie(w, r, "oauth_nonce")

	http.Redirect(w, r, h.getPostLoginRedirect(w, r), http.StatusFound)
}

// Logout destroys the credential in both storage domains and tells the
// upstream to revoke it.
// POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	// Upstream revocation first, while the credential still exists.
	h.Svc.Logout(r.Context())

	if err := h.Store.Clear(r.Context(), w, r); err != nil {
		h.logger().WarnContext(r.Context(), "clear credential on logout failed", "error", err)
	}

	redirectURI := r.FormValue("redirect_uri")
	if redirectURI == "" {
		redirectURI = r.URL.Query().Get("redirect_uri")
	}
	redirectURI = safeRedirectPath(redirectURI)

	u := url.URL{Path: "/login"}
	q := url.Values{}
	q.Set("redirect", redirectURI)
	u.RawQuery = q.Encode()
	loginURL := u.String()

	if isAJAX(r) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": loginURL,
		})
		return
	}

	http.Redirect(w, r, loginURL, http.StatusFound)
}

// Status reports whether a live credential is held.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	cred, err := h.Store.Get(r.Context())
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"expires_at":    cred.ExpiresAt,
	})
}

// getPostLoginRedirect returns the post-login redirect URL and clears the cookie.
func (h *AuthHandlers) getPostLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := "/"
	if redirectCookie, err := r.Cookie("post_login_redirect"); err == nil {
		redirectURI = safeRedirectPath(redirectCookie.Value)
		h.clearCookie(w, r, "post_login_redirect")
	}
	return redirectURI
}

// oauthCookieParams groups values needed to pin the OAuth flow in cookies.
type oauthCookieParams struct {
	State       string
	Nonce       string
	RedirectURI string
}

// setOAuthCookies stores OAuth state, nonce, and the post-login redirect in
// short-lived secure cookies.
func (h *AuthHandlers) setOAuthCookies(w http.ResponseWriter, r *http.Request, p oauthCookieParams) {
	isSecure := isSecureRequest(r)
	for name, value := range map[string]string{
		"oauth_state":         p.State,
		"oauth_nonce":         p.Nonce,
		"post_login_redirect": p.RedirectURI,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   isSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   600, // 10 minutes
		})
	}
}

// clearCookie clears a cookie by setting it to expire immediately,
// mirroring the attributes used when setting it.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func isAJAX(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

// upstreamFailureCode mirrors an upstream auth failure's status where it is
// meaningful for the browser, and maps transport failures to 502.
func upstreamFailureCode(err error) int {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusBadRequest
}

// reasonMessage renders the entry-point messaging for a denial reason.
func reasonMessage(reason domainauth.Reason) string {
	switch reason {
	case domainauth.ReasonUnauthorized:
		return "Your session is no longer valid. Please sign in again."
	case domainauth.ReasonForbidden:
		return "You do not have permission to access that page."
	case domainauth.ReasonValidationFailed:
		return "We could not verify your access. Please sign in again."
	case domainauth.ReasonServerError:
		return "Something went wrong while checking your access. Please try again."
	default:
		return "Please sign in to continue."
	}
}
