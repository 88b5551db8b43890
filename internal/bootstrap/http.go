package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/clustermaster/clustermaster-ui/config"
	httpx "github.com/clustermaster/clustermaster-ui/internal/http"
)

const (
	defaultHTTPAddr     = "127.0.0.1:8080"
	httpShutdownTimeout = 10 * time.Second
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// routerServices maps the service container onto the router's dependencies.
func routerServices(cfg *HTTPServerConfig, logger *slog.Logger) httpx.RouterServices {
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		Gate:            cfg.Services.Gate,
		Clusters:        cfg.Services.Clusters,
		Activity:        cfg.Services.Activity,
		Notifications:   cfg.Services.Notifications,
		CookieDomain:    appCfg.HTTP.CookieDomain,
		StaticDir:       appCfg.HTTP.StaticDir,
		StreamHeartbeat: appCfg.Stores.StreamHeartbeat,
		Logger:          logger,
	}
	// Typed nils must not reach the router's interface fields.
	if cfg.Services.Auth != nil {
		services.Auth = cfg.Services.Auth
	}
	if cfg.Services.Backend != nil {
		services.Backend = cfg.Services.Backend
	}
	if appCfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", appCfg.HTTP.CompressionLevel)
		services.Compression = &httpx.CompressionConfig{Level: appCfg.HTTP.CompressionLevel, Logger: logger}
	}
	if appCfg.HTTP.CSRFEnabled {
		services.CSRF = &httpx.CSRFConfig{CookieDomain: appCfg.HTTP.CookieDomain}
	}
	return services
}

// NewHTTPServer builds the dashboard server. It is not started.
func NewHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	addr := defaultHTTPAddr
	if cfg.Config != nil && cfg.Config.HTTP.Addr != "" {
		addr = cfg.Config.HTTP.Addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           httpx.NewRouter(routerServices(cfg, logger)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// No WriteTimeout: notification streams stay open for the life of the page.
		IdleTimeout: 120 * time.Second,
	}
}

// ServeHTTP runs server until ctx is done, then shuts it down gracefully.
// A listener may be supplied by tests; nil listens on server.Addr.
func ServeHTTP(ctx context.Context, server *http.Server, ln net.Listener, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if ln == nil {
		var err error
		ln, err = (&net.ListenConfig{}).Listen(ctx, "tcp", server.Addr)
		if err != nil {
			return err
		}
	}

	// Request contexts end with ctx so open notification streams let Shutdown finish.
	if server.BaseContext == nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "starting HTTP server", "addr", ln.Addr().String())
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), httpShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}
