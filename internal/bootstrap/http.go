package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/target/storefront-edge/config"
	httpx "github.com/target/storefront-edge/internal/http"
	"golang.org/x/sync/errgroup"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// RunHTTPServer starts the HTTP server and blocks until the context is
// cancelled or the listener fails, then shuts down gracefully.
func RunHTTPServer(ctx context.Context, cfg *HTTPServerConfig) error {
	if cfg == nil || cfg.Config == nil || cfg.Services == nil {
		return errors.New("http server config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	svc := cfg.Services

	services := httpx.RouterServices{
		Auth:            svc.Auth,
		Orders:          svc.Orders,
		Store:           svc.Store,
		Verifier:        svc.Verifier,
		Broadcaster:     svc.Broadcaster,
		UpstreamBaseURL: appCfg.API.BaseURL,
		BaseURL:         appCfg.HTTP.BaseURL,
		CookieDomain:    appCfg.HTTP.CookieDomain,
		LoginPath:       appCfg.Auth.LoginPath,
		AdminPrefix:     appCfg.Auth.AdminPrefix,
		Logger:          logger,
		Metrics:         svc.Metrics,
	}

	handler := buildHTTPHandler(logger, services)
	server := newServer(handler, appCfg.HTTP.Addr)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}

func buildHTTPHandler(logger *slog.Logger, services httpx.RouterServices) http.Handler {
	router := httpx.NewRouter(services)

	// Order: Recover -> Logging -> Router
	h := httpx.Logging(logger)(router)
	h = httpx.Recover(logger)(h)
	return h
}

func newServer(handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		// No write timeout: the notification relay holds its response
		// open for the lifetime of the subscriber.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}
}
