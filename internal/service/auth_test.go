package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainauth "github.com/target/storefront-edge/internal/domain/auth"
	"github.com/target/storefront-edge/internal/gateway"
	"github.com/target/storefront-edge/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	beginErr    error
	exchangeErr error
	cred        domainauth.Credential
}

func (p stubProvider) Begin(context.Context, string) (string, string, string, error) {
	if p.beginErr != nil {
		return "", "", "", p.beginErr
	}
	return "https://idp.example/authorize?x=1", "state-1", "nonce-1", nil
}

func (p stubProvider) Exchange(context.Context, ports.ExchangeInput) (domainauth.Credential, error) {
	return p.cred, p.exchangeErr
}

func newAuthService(t *testing.T, handler http.Handler, provider ports.TokenProvider) *AuthService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	gw, err := gateway.NewClient(gateway.ClientOptions{BaseURL: srv.URL})
	require.NoError(t, err)

	svc, err := NewAuthService(AuthServiceOptions{Gateway: gw, Provider: provider})
	require.NoError(t, err)
	return svc
}

func TestAuthService_Login(t *testing.T) {
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	svc := newAuthService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ops@example.com", body["email"])
		assert.Equal(t, "hunter2", body["password"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(loginResponse{Token: "Bearer tok-7", ExpiresAt: expires})
	}), nil)

	cred, err := svc.Login(context.Background(), LoginInput{Email: "ops@example.com", Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, "tok-7", cred.Token, "stored value must never carry the Bearer prefix")
	assert.True(t, cred.ExpiresAt.Equal(expires))
}

func TestAuthService_LoginRejectedUpstream(t *testing.T) {
	svc := newAuthService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"bad credentials"}`))
	}), nil)

	_, err := svc.Login(context.Background(), LoginInput{Email: "a@b.c", Password: "nope"})
	require.Error(t, err)

	var apiErr *gateway.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "authentication required", gateway.DescribeError(err, "login failed"))
}

func TestAuthService_LoginValidatesInput(t *testing.T) {
	svc := newAuthService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called with empty input")
	}), nil)

	_, err := svc.Login(context.Background(), LoginInput{})
	assert.Error(t, err)
}

func TestAuthService_LoginEmptyTokenIsAnError(t *testing.T) {
	svc := newAuthService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}), nil)

	_, err := svc.Login(context.Background(), LoginInput{Email: "a@b.c", Password: "x"})
	assert.Error(t, err)
}

func TestAuthService_BeginOAuth(t *testing.T) {
	svc := newAuthService(t, http.NotFoundHandler(), stubProvider{})

	res, err := svc.BeginOAuth(context.Background(), "https://edge.example/auth/callback")
	require.NoError(t, err)
	assert.Equal(t, "state-1", res.State)
	assert.Equal(t, "nonce-1", res.Nonce)
	assert.Contains(t, res.AuthURL, "https://idp.example/authorize")
}

func TestAuthService_BeginOAuthWithoutProvider(t *testing.T) {
	svc := newAuthService(t, http.NotFoundHandler(), nil)

	_, err := svc.BeginOAuth(context.Background(), "https://edge.example/auth/callback")
	assert.Error(t, err)
}

func TestAuthService_CompleteOAuth(t *testing.T) {
	cred := domainauth.Credential{Token: "tok-oauth", ExpiresAt: time.Now().Add(time.Hour)}
	svc := newAuthService(t, http.NotFoundHandler(), stubProvider{cred: cred})

	got, err := svc.CompleteOAuth(context.Background(), ports.ExchangeInput{
		Code: "code-1", State: "state-1", Nonce: "nonce-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-oauth", got.Token)
}

func TestAuthService_CompleteOAuthValidation(t *testing.T) {
	svc := newAuthService(t, http.NotFoundHandler(), stubProvider{})

	_, err := svc.CompleteOAuth(context.Background(), ports.ExchangeInput{State: "s"})
	assert.Error(t, err, "missing code must be rejected")

	_, err = svc.CompleteOAuth(context.Background(), ports.ExchangeInput{Code: "c"})
	assert.Error(t, err, "missing state must be rejected")

	_, err = svc.CompleteOAuth(context.Background(), ports.ExchangeInput{Code: "c", State: "s"})
	assert.Error(t, err, "empty provider credential must be rejected")
}

func TestAuthService_CompleteOAuthProviderFailure(t *testing.T) {
	svc := newAuthService(t, http.NotFoundHandler(), stubProvider{exchangeErr: errors.New("idp down")})

	_, err := svc.CompleteOAuth(context.Background(), ports.ExchangeInput{Code: "c", State: "s"})
	assert.Error(t, err)
}

func TestAuthService_LogoutIsBestEffort(t *testing.T) {
	var called bool
	svc := newAuthService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, "/api/auth/logout", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}), nil)

	// No error surfaces even when the upstream rejects the call.
	svc.Logout(context.Background())
	assert.True(t, called)
}
