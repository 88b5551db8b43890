package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clustermaster/clustermaster-ui/config"
)

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
	// Listener overrides the HTTP listen address; used by tests.
	Listener net.Listener
}

// backgroundService describes a startable component bound to one service mode.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// RunServicesWithShutdown starts all enabled services and blocks until SIGINT
// or SIGTERM is received or one of the services fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return RunServices(ctx, cfg)
}

// RunServices runs every enabled service until ctx is done or a service
// fails. The navigation gate is closed on the way out so queued navigations
// resolve with cancel instead of hanging.
func RunServices(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	logger := cfg.Logger

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	if cfg.Services.Gate != nil {
		defer cfg.Services.Gate.Close()
	}
	restoreClusterSnapshot(ctx, cfg)

	g, gctx := errgroup.WithContext(ctx)
	for _, svc := range buildBackgroundServices(cfg) {
		if !enabled[svc.mode] {
			continue
		}
		logger.InfoContext(ctx, "service started", "service", svc.name, "mode", svc.mode)
		g.Go(func() error {
			if err := svc.start(gctx); err != nil {
				return fmt.Errorf("%s failed: %w", svc.name, err)
			}
			logger.Info(svc.name + " stopped")
			return nil
		})
	}

	err = g.Wait()
	if err != nil {
		logger.Error("service error", "error", err)
	}
	return err
}

func restoreClusterSnapshot(ctx context.Context, cfg *ServiceOrchestrationConfig) {
	if cfg.Services.Clusters == nil {
		return
	}
	restored, err := cfg.Services.Clusters.Restore(ctx)
	switch {
	case err != nil:
		cfg.Logger.WarnContext(ctx, "cluster snapshot restore failed", "error", err)
	case restored:
		cfg.Logger.InfoContext(ctx, "cluster snapshot restored", "clusters", cfg.Services.Clusters.Count())
	}
}

func buildBackgroundServices(cfg *ServiceOrchestrationConfig) []backgroundService {
	return []backgroundService{
		newHTTPBackgroundService(cfg),
		newNotificationBackgroundService(cfg),
		newRefreshBackgroundService(cfg),
	}
}

func newHTTPBackgroundService(cfg *ServiceOrchestrationConfig) backgroundService {
	return backgroundService{
		mode: config.ServiceModeHTTP,
		name: "http server",
		start: func(ctx context.Context) error {
			if cfg.Services.Gate == nil {
				return errors.New("navigation gate is not configured")
			}
			server := NewHTTPServer(&HTTPServerConfig{
				Config:   cfg.Config,
				Services: cfg.Services,
				Logger:   cfg.Logger,
			})
			return ServeHTTP(ctx, server, cfg.Listener, cfg.Logger)
		},
	}
}

func newNotificationBackgroundService(cfg *ServiceOrchestrationConfig) backgroundService {
	return backgroundService{
		mode: config.ServiceModeNotifications,
		name: "notification stream",
		start: func(ctx context.Context) error {
			store := cfg.Services.Notifications
			if store == nil {
				return nil
			}
			if err := store.FetchHistory(ctx, cfg.Config.Backend.HistoryLimit); err != nil {
				cfg.Logger.WarnContext(ctx, "notification history unavailable", "error", err)
			}
			return store.Run(ctx)
		},
	}
}

func newRefreshBackgroundService(cfg *ServiceOrchestrationConfig) backgroundService {
	return backgroundService{
		mode: config.ServiceModeRefresh,
		name: "store refresh",
		start: func(ctx context.Context) error {
			clusters, activity := cfg.Services.Clusters, cfg.Services.Activity
			if clusters != nil {
				// Failures are recorded on the store and retried by the loop.
				_, _ = clusters.Fetch(ctx, false)
				clusters.StartAutoRefresh(ctx, positiveOr(cfg.Config.Stores.ClusterRefreshInterval, 10*time.Second))
				defer clusters.StopAutoRefresh()
			}
			if activity != nil {
				_, _ = activity.Fetch(ctx, 0)
				activity.StartAutoRefresh(ctx, positiveOr(cfg.Config.Stores.ActivityRefreshInterval, 3*time.Second))
				defer activity.StopAutoRefresh()
			}
			<-ctx.Done()
			return nil
		},
	}
}

func positiveOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

