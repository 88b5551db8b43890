package config

import "time"

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// Configured reports whether enough settings are present to attempt a connection.
func (c *RedisConfig) Configured() bool {
	if c == nil {
		return false
	}
	if c.UseCluster {
		return len(c.ClusterNodes) > 0 || c.URI != ""
	}
	if c.UseSentinel {
		return len(c.SentinelNodes) > 0
	}
	return c.URI != ""
}

// CacheConfig contains cache configuration (Redis-based).
type CacheConfig struct {
	// SnapshotKey is the Redis key holding the last cluster listing.
	SnapshotKey string `env:"CACHE_SNAPSHOT_KEY" envDefault:"clusters:snapshot"`

	// SnapshotTTL is how long the cached listing survives; zero keeps it until overwritten.
	SnapshotTTL time.Duration `env:"CACHE_SNAPSHOT_TTL" envDefault:"1h"`
}

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	if c.SnapshotKey == "" {
		c.SnapshotKey = "clusters:snapshot"
	}
	if c.SnapshotTTL < 0 {
		c.SnapshotTTL = 0
	}
}
