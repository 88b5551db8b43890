package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clustermaster/clustermaster-ui/config"
	"github.com/clustermaster/clustermaster-ui/internal/adapters/devauth"
	"github.com/clustermaster/clustermaster-ui/internal/adapters/oidc"
	redisadapter "github.com/clustermaster/clustermaster-ui/internal/adapters/redis"
	"github.com/clustermaster/clustermaster-ui/internal/ports"
	"github.com/clustermaster/clustermaster-ui/internal/service"
)

// oidcDiscoveryTimeout bounds provider discovery at startup.
const oidcDiscoveryTimeout = 15 * time.Second

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildAuthService creates an auth service based on the configured auth mode.
// Returns nil when auth cannot be configured; the gate then treats every
// protected navigation as unauthenticated.
func BuildAuthService(ctx context.Context, cfg AuthConfig) *service.AuthService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RedisClient == nil {
		logger.WarnContext(ctx, "auth service disabled: redis client not configured", "mode", cfg.Auth.Mode)
		return nil
	}

	provider, err := buildAuthProvider(ctx, cfg.Auth)
	if err != nil {
		logger.WarnContext(ctx, "auth provider unavailable, auth disabled", "mode", cfg.Auth.Mode, "error", err)
		return nil
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: redisadapter.NewSessionStoreWithKey(cfg.RedisClient, sessionKey(cfg.Auth)),
		Logger:   logger,
	})
}

func sessionKey(cfg config.AuthConfig) string {
	if cfg.SessionKey == "" {
		return redisadapter.DefaultSessionKey
	}
	return cfg.SessionKey
}

//nolint:ireturn // the provider is chosen by auth mode at runtime.
func buildAuthProvider(ctx context.Context, cfg config.AuthConfig) (ports.AuthProvider, error) {
	switch cfg.Mode {
	case config.AuthModeMock:
		return devauth.NewProvider(devauth.Config{
			UserID:          cfg.DevAuth.UserID,
			Email:           cfg.DevAuth.Email,
			Name:            cfg.DevAuth.Name,
			SessionDuration: cfg.DevAuth.SessionDuration,
		})

	case config.AuthModeOAuth:
		oauth := cfg.OAuth
		if !oauth.Configured() {
			return nil, fmt.Errorf(
				"oauth requires discovery URL, client ID and client secret (discovery_url_empty=%t client_id_empty=%t client_secret_empty=%t)",
				oauth.DiscoveryURL == "", oauth.ClientID == "", oauth.ClientSecret == "",
			)
		}
		discoverCtx, cancel := context.WithTimeout(ctx, oidcDiscoveryTimeout)
		defer cancel()
		return oidc.NewProvider(discoverCtx, oidc.ProviderConfig{
			ClientID:     oauth.ClientID,
			ClientSecret: oauth.ClientSecret,
			RedirectURL:  oauth.RedirectURL,
			Scope:        oauth.Scope,
			DiscoveryURL: oauth.DiscoveryURL,
		})

	default:
		return nil, errors.New("unknown auth mode " + string(cfg.Mode))
	}
}
