package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Authentication configuration
//   - backend.go: Backend API, navigation gate, and store configuration
//   - redis.go: Session store and cache configuration
//   - http.go: HTTP server configuration
//   - services.go: Service mode configuration
type AppConfig struct {
	// IsDev controls development mode behavior.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// Session and snapshot storage
	Redis RedisConfig `envPrefix:"REDIS_"`
	Cache CacheConfig

	// HTTP server configuration
	HTTP HTTPConfig

	// ClusterMaster backend configuration
	Backend BackendConfig `envPrefix:"BACKEND_"`

	// Navigation gate configuration
	Gate GateConfig `envPrefix:"GATE_"`

	// Store refresh configuration
	Stores StoreConfig `envPrefix:"STORES_"`

	// Service mode configuration
	Services string `env:"SERVICES" envDefault:"http,notifications,refresh"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Cache.Sanitize()
	c.Backend.Sanitize()
	c.Gate.Sanitize()
	c.Stores.Sanitize()
	c.Observability.Sanitize()

	// Check NODE_ENV for dev mode
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	return c.serviceEnabled(ServiceModeHTTP)
}

// IsNotificationStreamEnabled returns true if the backend notification stream is consumed.
func (c *AppConfig) IsNotificationStreamEnabled() bool {
	return c.serviceEnabled(ServiceModeNotifications)
}

// IsRefreshEnabled returns true if the cluster and activity stores auto-refresh.
func (c *AppConfig) IsRefreshEnabled() bool {
	return c.serviceEnabled(ServiceModeRefresh)
}

func (c *AppConfig) serviceEnabled(mode ServiceMode) bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[mode]
}
