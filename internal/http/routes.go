package httpx

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/target/storefront-edge/internal/credential"
	"github.com/target/storefront-edge/internal/guard"
	"github.com/target/storefront-edge/internal/notify"
	"github.com/target/storefront-edge/internal/observability/statsd"
	"github.com/target/storefront-edge/internal/ports"
)

// RouterServices holds the services and configuration the router needs.
type RouterServices struct {
	Auth     AuthServiceInterface
	Orders   OrdersServiceInterface
	Store    *credential.Store
	Verifier ports.AdminVerifier

	Broadcaster     *notify.Broadcaster
	UpstreamBaseURL string
	StreamClient    *http.Client

	BaseURL      string // public origin of this edge
	CookieDomain string
	LoginPath    string // defaults to "/login"
	AdminPrefix  string // defaults to "/admin/"

	Logger  *slog.Logger
	Metrics statsd.Sink
}

// NewRouter creates and configures the HTTP router. Admin routes sit behind
// the access guard; the login entry point, auth flows, and health checks do
// not. Static asset paths are routed outside the admin namespace and never
// pass through the guard.
func NewRouter(services RouterServices) http.Handler {
	loginPath := services.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	adminPrefix := services.AdminPrefix
	if adminPrefix == "" {
		adminPrefix = "/admin/"
	}
	if !strings.HasSuffix(adminPrefix, "/") {
		adminPrefix += "/"
	}

	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		Store:        services.Store,
		CookieDomain: services.CookieDomain,
		BaseURL:      services.BaseURL,
		Logger:       services.Logger,
	}

	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)

	mux.HandleFunc("GET "+loginPath, authHandlers.LoginPage)
	mux.HandleFunc("POST "+loginPath, authHandlers.Login)
	mux.HandleFunc("GET /auth/oauth", authHandlers.OAuthBegin)
	mux.HandleFunc("GET /auth/callback", authHandlers.Callback)
	mux.HandleFunc("POST /logout", authHandlers.Logout)
	mux.HandleFunc("GET /auth/status", authHandlers.Status)

	adminHandlers := &AdminHandlers{
		Orders:          services.Orders,
		Store:           services.Store,
		Broadcaster:     services.Broadcaster,
		UpstreamBaseURL: services.UpstreamBaseURL,
		StreamClient:    services.StreamClient,
		Logger:          services.Logger,
		Metrics:         services.Metrics,
	}

	admin := http.NewServeMux()
	admin.HandleFunc("GET "+adminPrefix+"orders", adminHandlers.ListOrders)
	admin.HandleFunc("GET "+adminPrefix+"notifications/stream", adminHandlers.NotificationsStream)

	requireAdmin := guard.RequireAdmin(guard.Options{
		Verifier:    services.Verifier,
		Credentials: services.Store,
		LoginPath:   loginPath,
		Logger:      services.Logger,
		Metrics:     services.Metrics,
	})
	mux.Handle(adminPrefix, requireAdmin(admin))

	return mux
}
