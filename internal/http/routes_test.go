package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/target/storefront-edge/internal/credential"
	domainauth "github.com/target/storefront-edge/internal/domain/auth"
	"github.com/target/storefront-edge/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	status domainauth.AdminStatus
	code   int
	err    error
}

func (v *stubVerifier) VerifyAdmin(context.Context, string) (domainauth.AdminStatus, int, error) {
	return v.status, v.code, v.err
}

func newTestRouter(t *testing.T, verifier *stubVerifier) (http.Handler, *credential.MemoryBackend, *credential.Store) {
	t.Helper()
	backend := credential.NewMemoryBackend()
	store, err := credential.NewStore(credential.StoreOptions{Backend: backend})
	require.NoError(t, err)

	router := NewRouter(RouterServices{
		Auth:            &stubAuthService{},
		Orders:          &stubOrdersService{orders: []service.Order{}},
		Store:           store,
		Verifier:        verifier,
		UpstreamBaseURL: "http://upstream.example",
		BaseURL:         "https://edge.example",
	})
	return router, backend, store
}

func TestRouter_AdminRequiresCredential(t *testing.T) {
	router, _, _ := newTestRouter(t, &stubVerifier{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/orders?page=2", nil))

	require.Equal(t, http.StatusSeeOther, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/login", loc.Path)
	assert.Equal(t, "/admin/orders?page=2", loc.Query().Get("redirect"))
	assert.Empty(t, loc.Query().Get("error"))
}

func TestRouter_AdminPassesWithAdminCredential(t *testing.T) {
	router, backend, _ := newTestRouter(t, &stubVerifier{
		status: domainauth.AdminStatus{IsAdmin: true},
		code:   http.StatusOK,
	})
	require.NoError(t, backend.Save(context.Background(), domainauth.Credential{
		Token:     "tok-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	r := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: "tok-1"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
}

func TestRouter_NonAdminCredentialIsForbidden(t *testing.T) {
	router, _, _ := newTestRouter(t, &stubVerifier{
		status: domainauth.AdminStatus{IsAdmin: false},
		code:   http.StatusOK,
	})

	r := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: "tok-1"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusSeeOther, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "forbidden", loc.Query().Get("error"))
}

func TestRouter_OpenRoutesBypassGuard(t *testing.T) {
	// The verifier fails hard, proving these routes never consult it.
	router, _, _ := newTestRouter(t, &stubVerifier{err: assert.AnError})

	for _, target := range []string{"/healthz", "/login", "/auth/status"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusOK, w.Code, target)
	}
}

func TestRouter_UnknownAdminPathStillGuarded(t *testing.T) {
	router, _, _ := newTestRouter(t, &stubVerifier{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/anything", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestRouter_HealthHead(t *testing.T) {
	router, _, _ := newTestRouter(t, &stubVerifier{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}
