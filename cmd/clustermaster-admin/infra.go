package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/clustermaster/clustermaster-ui/config"
	"github.com/clustermaster/clustermaster-ui/internal/adapters/backend"
	redisadapter "github.com/clustermaster/clustermaster-ui/internal/adapters/redis"
	"github.com/clustermaster/clustermaster-ui/internal/bootstrap"
	"github.com/clustermaster/clustermaster-ui/internal/ports"
)

var errRedisNotConfigured = errors.New("redis not configured; set REDIS_URI, REDIS_SENTINEL_NODES or REDIS_CLUSTER_NODES")

// newBackendClient builds a backend client from the loaded configuration.
func newBackendClient(logger *slog.Logger, cfg *config.AppConfig) (*backend.Client, error) {
	client, err := backend.New(backend.Config{
		BaseURL:             cfg.Backend.BaseURL,
		APIPrefix:           cfg.Backend.APIPrefix,
		NotificationsPrefix: cfg.Backend.NotificationsPrefix,
		Timeout:             cfg.Backend.Timeout,
		StatusConcurrency:   cfg.Backend.StatusConcurrency,
		Logger:              logger,
	})
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}
	return client, nil
}

// connectSessionStore connects to Redis and returns the session store along
// with a function that releases the connection.
func connectSessionStore(
	ctx context.Context,
	logger *slog.Logger,
	cfg *config.AppConfig,
) (ports.SessionStore, func() error, error) {
	client, err := connectRedis(ctx, logger, &cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	key := strings.TrimSpace(cfg.Auth.SessionKey)
	if key == "" {
		key = redisadapter.DefaultSessionKey
	}
	return redisadapter.NewSessionStoreWithKey(client, key), func() error { return closeRedis(client) }, nil
}

// connectRedis returns a connected client when configuration is present.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func connectRedis(ctx context.Context, logger *slog.Logger, cfg *config.RedisConfig) (redis.UniversalClient, error) {
	client, err := bootstrap.ConnectRedis(ctx, bootstrap.RedisOptions{Config: *cfg, Logger: logger})
	if errors.Is(err, bootstrap.ErrRedisNotConfigured) {
		return nil, errRedisNotConfigured
	}
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

func closeRedis(client redis.UniversalClient) error {
	if client == nil {
		return nil
	}
	if err := client.Close(); err != nil {
		return errors.Join(errors.New("close redis"), err)
	}
	return nil
}

func closeWithLog(logger *slog.Logger, closeFn func() error) {
	if closeFn == nil {
		return
	}
	if err := closeFn(); err != nil {
		logger.Warn("release connection failed", "error", err)
	}
}

// confirm asks a yes/no question and reports whether the answer was yes.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	if err := writef(out, "%s [y/N]: ", question); err != nil {
		return false, fmt.Errorf("print confirmation prompt: %w", err)
	}
	resp, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation input: %w", err)
	}
	resp = strings.ToLower(strings.TrimSpace(resp))
	return resp == "y" || resp == "yes", nil
}
