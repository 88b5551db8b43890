package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clustermaster/clustermaster-ui/internal/domain/model"
	"github.com/clustermaster/clustermaster-ui/internal/ports"
)

// DefaultClusterSnapshotKey is where the last successful cluster listing is cached.
const DefaultClusterSnapshotKey = "clusters:snapshot"

var _ ports.ClusterSnapshotCache = (*SnapshotCache)(nil)

// SnapshotCache caches the cluster listing so a restarted dashboard can serve
// the last known state before the first refresh completes.
type SnapshotCache struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewSnapshotCache creates a SnapshotCache; ttl <= 0 stores without expiry.
func NewSnapshotCache(client redis.UniversalClient, key string, ttl time.Duration) *SnapshotCache {
	if key == "" {
		key = DefaultClusterSnapshotKey
	}
	return &SnapshotCache{client: client, key: key, ttl: max(ttl, 0)}
}

// SaveClusters stores the listing fetched at fetchedAt.
func (c *SnapshotCache) SaveClusters(ctx context.Context, clusters []model.ClusterInfo, fetchedAt time.Time) error {
	data, err := json.Marshal(model.ClusterSnapshot{Clusters: clusters, FetchedAt: fetchedAt})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// LoadClusters returns the cached listing; ok is false when nothing is cached.
func (c *SnapshotCache) LoadClusters(ctx context.Context) (snap model.ClusterSnapshot, ok bool, err error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.ClusterSnapshot{}, false, nil
		}
		return model.ClusterSnapshot{}, false, fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.ClusterSnapshot{}, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, true, nil
}

// Invalidate drops the cached listing.
func (c *SnapshotCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
