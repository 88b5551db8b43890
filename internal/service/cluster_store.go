package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/clustermaster/clustermaster-ui/internal/domain/model"
	"github.com/clustermaster/clustermaster-ui/internal/observability/metrics"
	"github.com/clustermaster/clustermaster-ui/internal/observability/statsd"
	"github.com/clustermaster/clustermaster-ui/internal/ports"
)

// DefaultClusterRefreshInterval is how often the cluster list auto-refreshes.
const DefaultClusterRefreshInterval = 10 * time.Second

// ClusterStoreOptions groups dependencies for ClusterStore.
type ClusterStoreOptions struct {
	API     ports.ClusterAPI           // Required
	Cache   ports.ClusterSnapshotCache // Optional: persists successful listings
	Logger  *slog.Logger
	Metrics statsd.Sink
	Now     func() time.Time
}

// ClusterState is a point-in-time copy of the store.
type ClusterState struct {
	Clusters   []model.ClusterInfo `json:"clusters"`
	Loading    bool                `json:"loading"`
	Refreshing bool                `json:"refreshing"`
	Error      string              `json:"error,omitempty"`
	LastUpdate *time.Time          `json:"last_update,omitempty"`
	Stale      bool                `json:"stale,omitempty"`
}

// ClusterStore mirrors the backend's cluster list for the dashboard.
type ClusterStore struct {
	api     ports.ClusterAPI
	cache   ports.ClusterSnapshotCache
	logger  *slog.Logger
	metrics statsd.Sink
	now     func() time.Time

	mu         sync.RWMutex
	clusters   []model.ClusterInfo
	loading    bool
	refreshing bool
	lastErr    string
	lastUpdate time.Time
	// stale marks clusters restored from the cache that no fetch has confirmed yet.
	stale bool

	auto refresher
}

// NewClusterStore constructs a ClusterStore.
func NewClusterStore(opts ClusterStoreOptions) (*ClusterStore, error) {
	if opts.API == nil {
		return nil, errors.New("ClusterAPI is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "cluster_store")
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &ClusterStore{
		api:     opts.API,
		cache:   opts.Cache,
		logger:  logger,
		metrics: opts.Metrics,
		now:     now,
		auto:    refresher{name: "clusters", logger: logger},
	}, nil
}

// Fetch reloads the cluster list. A silent fetch, or any fetch once clusters
// are known, flags refreshing instead of loading.
func (s *ClusterStore) Fetch(ctx context.Context, silent bool) ([]model.ClusterInfo, error) {
	return s.fetch(ctx, silent, "manual")
}

func (s *ClusterStore) fetch(ctx context.Context, silent bool, trigger string) ([]model.ClusterInfo, error) {
	s.mu.Lock()
	if !silent && len(s.clusters) == 0 {
		s.loading = true
	} else {
		s.refreshing = true
	}
	s.lastErr = ""
	s.mu.Unlock()

	start := s.now()
	clusters, err := s.api.ListClusters(ctx)
	elapsed := s.now().Sub(start)

	s.mu.Lock()
	s.loading = false
	s.refreshing = false
	if err != nil {
		s.lastErr = err.Error()
		s.mu.Unlock()
		s.logger.WarnContext(ctx, "fetching clusters failed", "trigger", trigger, "error", err)
		metrics.EmitRefresh(s.metrics, metrics.RefreshMetric{
			Store: "clusters", Trigger: trigger, Result: metrics.ResultError, Duration: elapsed, Err: err,
		})
		return nil, err
	}
	if clusters == nil {
		clusters = []model.ClusterInfo{}
	}
	fetchedAt := s.now()
	s.clusters = clusters
	s.lastUpdate = fetchedAt
	s.stale = false
	out := cloneClusters(clusters)
	s.mu.Unlock()

	metrics.EmitRefresh(s.metrics, metrics.RefreshMetric{
		Store: "clusters", Trigger: trigger, Result: metrics.ResultSuccess, Items: len(out), Duration: elapsed,
	})
	if s.cache != nil {
		if cacheErr := s.cache.SaveClusters(ctx, out, fetchedAt); cacheErr != nil {
			s.logger.WarnContext(ctx, "caching cluster snapshot failed", "error", cacheErr)
		}
	}
	return out, nil
}

// Restore seeds the store from the cached snapshot. It never overwrites data
// that a fetch has already produced.
func (s *ClusterStore) Restore(ctx context.Context) (bool, error) {
	if s.cache == nil {
		return false, nil
	}
	snap, ok, err := s.cache.LoadClusters(ctx)
	if err != nil || !ok {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.lastUpdate.IsZero() {
		return false, nil
	}
	s.clusters = cloneClusters(snap.Clusters)
	s.lastUpdate = snap.FetchedAt
	s.stale = true
	s.logger.InfoContext(ctx, "restored cluster snapshot", "clusters", len(snap.Clusters), "fetched_at", snap.FetchedAt)
	return true, nil
}

// State returns a copy of the store.
func (s *ClusterStore) State() ClusterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := ClusterState{
		Clusters:   cloneClusters(s.clusters),
		Loading:    s.loading,
		Refreshing: s.refreshing,
		Error:      s.lastErr,
		Stale:      s.stale,
	}
	if st.Clusters == nil {
		st.Clusters = []model.ClusterInfo{}
	}
	if !s.lastUpdate.IsZero() {
		t := s.lastUpdate
		st.LastUpdate = &t
	}
	return st
}

// Clusters returns every known cluster.
func (s *ClusterStore) Clusters() []model.ClusterInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneClusters(s.clusters)
}

// Active returns the running clusters.
func (s *ClusterStore) Active() []model.ClusterInfo {
	return s.filter(func(c model.ClusterInfo) bool { return c.Status.Running() })
}

// Inactive returns every cluster that is not running.
func (s *ClusterStore) Inactive() []model.ClusterInfo {
	return s.filter(func(c model.ClusterInfo) bool { return !c.Status.Running() })
}

// Count returns the number of known clusters.
func (s *ClusterStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clusters)
}

// ByName returns the cluster called name.
func (s *ClusterStore) ByName(name string) (model.ClusterInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clusters {
		if c.Name == name {
			return c, true
		}
	}
	return model.ClusterInfo{}, false
}

// Update applies u to the cluster called name; unknown names are ignored.
func (s *ClusterStore) Update(name string, u model.ClusterUpdate) bool {
	if !u.HasUpdates() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.clusters {
		if c.Name == name {
			next := cloneClusters(s.clusters)
			next[i] = u.Apply(c)
			s.clusters = next
			return true
		}
	}
	return false
}

// Remove drops the cluster called name from the list.
func (s *ClusterStore) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]model.ClusterInfo, 0, len(s.clusters))
	for _, c := range s.clusters {
		if c.Name != name {
			next = append(next, c)
		}
	}
	removed := len(next) != len(s.clusters)
	s.clusters = next
	return removed
}

// Reset clears every field and stops auto refresh.
func (s *ClusterStore) Reset() {
	s.auto.stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clusters = nil
	s.loading = false
	s.refreshing = false
	s.lastErr = ""
	s.lastUpdate = time.Time{}
	s.stale = false
}

// StartAutoRefresh silently refetches every interval (DefaultClusterRefreshInterval
// when interval <= 0), replacing any running refresh loop.
func (s *ClusterStore) StartAutoRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultClusterRefreshInterval
	}
	s.auto.start(ctx, interval, func(ctx context.Context) {
		_, _ = s.fetch(ctx, true, "timer")
	})
}

// StopAutoRefresh stops the refresh loop, if any.
func (s *ClusterStore) StopAutoRefresh() { s.auto.stop() }

// AutoRefreshing reports whether the refresh loop is running.
func (s *ClusterStore) AutoRefreshing() bool { return s.auto.running() }

func (s *ClusterStore) filter(keep func(model.ClusterInfo) bool) []model.ClusterInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ClusterInfo, 0, len(s.clusters))
	for _, c := range s.clusters {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func cloneClusters(in []model.ClusterInfo) []model.ClusterInfo {
	if in == nil {
		return nil
	}
	out := make([]model.ClusterInfo, len(in))
	copy(out, in)
	return out
}
