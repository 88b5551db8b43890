package config

import (
	"strings"
	"time"
)

// BackendConfig describes how to reach the ClusterMaster backend.
type BackendConfig struct {
	BaseURL             string        `env:"URL"                  envDefault:"http://localhost:8000"`
	APIPrefix           string        `env:"API_PREFIX"           envDefault:"/api/v1"`
	NotificationsPrefix string        `env:"NOTIFICATIONS_PREFIX" envDefault:"/api/notifications"`
	Timeout             time.Duration `env:"TIMEOUT"              envDefault:"30s"`
	// StatusConcurrency bounds the per-cluster status calls made while listing clusters.
	StatusConcurrency int `env:"STATUS_CONCURRENCY" envDefault:"4"`

	// NotificationUser is the user_id sent when opening the notification stream.
	NotificationUser string        `env:"NOTIFICATION_USER" envDefault:"default_user"`
	ReconnectDelay   time.Duration `env:"RECONNECT_DELAY"   envDefault:"5s"`
	HistoryLimit     int           `env:"HISTORY_LIMIT"     envDefault:"20"`
}

// Sanitize applies guardrails to backend configuration values.
func (b *BackendConfig) Sanitize() {
	b.BaseURL = strings.TrimRight(strings.TrimSpace(b.BaseURL), "/")
	if b.Timeout <= 0 {
		b.Timeout = 30 * time.Second
	}
	b.StatusConcurrency = min(max(b.StatusConcurrency, 1), 32)
	if b.NotificationUser = strings.TrimSpace(b.NotificationUser); b.NotificationUser == "" {
		b.NotificationUser = "default_user"
	}
	if b.ReconnectDelay < 100*time.Millisecond {
		b.ReconnectDelay = 5 * time.Second
	}
	b.HistoryLimit = min(max(b.HistoryLimit, 1), 100)
}

// GateConfig controls the navigation gate.
type GateConfig struct {
	// SignInPath is where unauthenticated page navigations are redirected.
	SignInPath string `env:"SIGN_IN_PATH" envDefault:"/sign-in"`

	// BootstrapTimeout bounds the session restore performed before the first decision.
	// Zero disables the bound.
	BootstrapTimeout time.Duration `env:"BOOTSTRAP_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to gate configuration values.
func (g *GateConfig) Sanitize() {
	g.SignInPath = strings.TrimSpace(g.SignInPath)
	if g.SignInPath == "" || !strings.HasPrefix(g.SignInPath, "/") || strings.HasPrefix(g.SignInPath, "//") {
		g.SignInPath = "/sign-in"
	}
	if g.BootstrapTimeout < 0 {
		g.BootstrapTimeout = 0
	}
}

// StoreConfig controls the server-side state stores.
type StoreConfig struct {
	ClusterRefreshInterval  time.Duration `env:"CLUSTER_REFRESH_INTERVAL"  envDefault:"10s"`
	ActivityRefreshInterval time.Duration `env:"ACTIVITY_REFRESH_INTERVAL" envDefault:"3s"`
	ActivityLimit           int           `env:"ACTIVITY_LIMIT"            envDefault:"10"`
	// StreamHeartbeat is the ping interval on browser notification streams.
	StreamHeartbeat time.Duration `env:"STREAM_HEARTBEAT" envDefault:"30s"`
}

// Sanitize applies guardrails to store configuration values.
func (s *StoreConfig) Sanitize() {
	// Enforce minimum intervals to keep the backend from being polled in a tight loop
	if s.ClusterRefreshInterval < time.Second {
		s.ClusterRefreshInterval = time.Second
	}
	if s.ActivityRefreshInterval < time.Second {
		s.ActivityRefreshInterval = time.Second
	}
	s.ActivityLimit = min(max(s.ActivityLimit, 1), 100)
	if s.StreamHeartbeat < time.Second {
		s.StreamHeartbeat = 30 * time.Second
	}
}
