package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/clustermaster/clustermaster-ui/config"
	"github.com/clustermaster/clustermaster-ui/internal/adapters/backend"
	redisadapter "github.com/clustermaster/clustermaster-ui/internal/adapters/redis"
	"github.com/clustermaster/clustermaster-ui/internal/gate"
	"github.com/clustermaster/clustermaster-ui/internal/observability/notify"
	"github.com/clustermaster/clustermaster-ui/internal/observability/notify/slack"
	"github.com/clustermaster/clustermaster-ui/internal/observability/statsd"
	"github.com/clustermaster/clustermaster-ui/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Backend       *backend.Client
	Gate          *gate.Gate
	Auth          *service.AuthService
	Clusters      *service.ClusterStore
	Activity      *service.ActivityStore
	Notifications *service.NotificationStore
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
	Forwarder     *notify.Forwarder
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// buildObservability configures metrics and notification forwarding. Failures
// degrade to no-op sinks: observability never blocks startup.
func buildObservability(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) ObservabilityContainer {
	obs := ObservabilityContainer{MetricsConfig: cfg.Observability.Metrics}

	metricsCfg := cfg.Observability.Metrics
	client, err := statsd.NewClient(statsd.Config{
		Enabled:       metricsCfg.IsEnabled(),
		Address:       metricsCfg.StatsdAddress,
		Prefix:        metricsCfg.Prefix,
		FlushInterval: metricsCfg.FlushInterval,
		Logger:        logger,
	})
	if err != nil {
		logger.WarnContext(ctx, "statsd client unavailable, metrics disabled", "error", err)
		client, _ = statsd.NewClient(statsd.Config{Logger: logger})
	}
	obs.MetricsSink = client

	obs.Forwarder = buildForwarder(ctx, logger, cfg)
	return obs
}

func buildForwarder(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) *notify.Forwarder {
	notifCfg := cfg.Observability.Notifications
	if !notifCfg.Enabled || !notifCfg.Slack.Enabled {
		return nil
	}

	filter, err := notify.NewFilter(notifCfg.Filter)
	if err != nil {
		logger.WarnContext(ctx, "invalid notification filter, forwarding disabled", "filter", notifCfg.Filter, "error", err)
		return nil
	}

	sink, err := slack.NewClient(slack.Config{
		WebhookURL:   notifCfg.Slack.WebhookURL,
		Channel:      notifCfg.Slack.Channel,
		Username:     notifCfg.Slack.Username,
		Timeout:      notifCfg.Timeout,
		RetryLimit:   notifCfg.RetryLimit,
		DashboardURL: cfg.HTTP.BaseURL,
	})
	if err != nil {
		logger.WarnContext(ctx, "slack client unavailable, forwarding disabled", "error", err)
		return nil
	}
	logger.InfoContext(ctx, "forwarding notifications to slack", "channel", notifCfg.Slack.Channel, "filter", notifCfg.Filter)
	return notify.NewForwarder(sink, filter, logger.With("component", "notification_forwarder"))
}

// NewServices wires the backend client, the state stores, the auth service and
// the navigation gate. ctx is the parent of the gate's session bootstrap.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	obs := buildObservability(ctx, logger, cfg)

	client, err := backend.New(backend.Config{
		BaseURL:             cfg.Backend.BaseURL,
		APIPrefix:           cfg.Backend.APIPrefix,
		NotificationsPrefix: cfg.Backend.NotificationsPrefix,
		Timeout:             cfg.Backend.Timeout,
		StatusConcurrency:   cfg.Backend.StatusConcurrency,
		Logger:              logger,
		Metrics:             obs.MetricsSink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("backend client: %w", err)
	}

	stores, err := newStores(deps, client, obs)
	if err != nil {
		return ServiceContainer{}, err
	}
	stores.Backend = client
	stores.Observability = obs

	stores.Auth = BuildAuthService(ctx, AuthConfig{
		Auth:        cfg.Auth,
		RedisClient: deps.RedisClient,
		Logger:      logger,
	})
	stores.Gate = newGate(ctx, cfg.Gate, stores.Auth, obs.MetricsSink, logger)
	if stores.Auth != nil {
		stores.Auth.AttachGate(stores.Gate)
	}
	return stores, nil
}

func newStores(deps *ServiceDeps, client *backend.Client, obs ObservabilityContainer) (ServiceContainer, error) {
	cfg := deps.Config
	clusterOpts := service.ClusterStoreOptions{
		API:     client,
		Logger:  deps.Logger,
		Metrics: obs.MetricsSink,
	}
	if deps.RedisClient != nil {
		clusterOpts.Cache = redisadapter.NewSnapshotCache(deps.RedisClient, cfg.Cache.SnapshotKey, cfg.Cache.SnapshotTTL)
	}
	clusters, err := service.NewClusterStore(clusterOpts)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("cluster store: %w", err)
	}

	activity, err := service.NewActivityStore(service.ActivityStoreOptions{
		API:     client,
		Limit:   cfg.Stores.ActivityLimit,
		Logger:  deps.Logger,
		Metrics: obs.MetricsSink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("activity store: %w", err)
	}

	notifOpts := service.NotificationStoreOptions{
		API:            client,
		UserID:         cfg.Backend.NotificationUser,
		ReconnectDelay: cfg.Backend.ReconnectDelay,
		Logger:         deps.Logger,
		Metrics:        obs.MetricsSink,
	}
	if obs.Forwarder != nil {
		notifOpts.Forwarder = obs.Forwarder
	}
	notifications, err := service.NewNotificationStore(notifOpts)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("notification store: %w", err)
	}

	return ServiceContainer{Clusters: clusters, Activity: activity, Notifications: notifications}, nil
}

func newGate(
	ctx context.Context,
	cfg config.GateConfig,
	auth *service.AuthService,
	metrics statsd.Sink,
	logger *slog.Logger,
) *gate.Gate {
	opts := gate.Options{
		SignInPath:       cfg.SignInPath,
		BootstrapTimeout: cfg.BootstrapTimeout,
		Context:          ctx,
		Logger:           logger,
		Metrics:          metrics,
	}
	// A nil *AuthService must not become a non-nil Bootstrapper.
	if auth != nil {
		opts.Bootstrapper = auth
	}
	return gate.New(opts)
}
