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

// DefaultActivityRefreshInterval is how often the activity log auto-refreshes.
const DefaultActivityRefreshInterval = 3 * time.Second

// ActivityStoreOptions groups dependencies for ActivityStore.
type ActivityStoreOptions struct {
	API     ports.ActivityAPI // Required
	Limit   int               // Entries per fetch; defaults to model.DefaultActivityLimit
	Logger  *slog.Logger
	Metrics statsd.Sink
	Now     func() time.Time
}

// ActivityState is a point-in-time copy of the store.
type ActivityState struct {
	Logs    []model.ActivityLog `json:"logs"`
	Loading bool                `json:"loading"`
	Error   string              `json:"error,omitempty"`
}

// ActivityStore mirrors the most recent entries of the backend's operation log.
type ActivityStore struct {
	api     ports.ActivityAPI
	limit   int
	logger  *slog.Logger
	metrics statsd.Sink
	now     func() time.Time

	mu      sync.RWMutex
	logs    []model.ActivityLog
	loading bool
	lastErr string

	auto refresher
}

// NewActivityStore constructs an ActivityStore.
func NewActivityStore(opts ActivityStoreOptions) (*ActivityStore, error) {
	if opts.API == nil {
		return nil, errors.New("ActivityAPI is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "activity_store")
	limit := opts.Limit
	if limit <= 0 {
		limit = model.DefaultActivityLimit
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &ActivityStore{
		api:     opts.API,
		limit:   limit,
		logger:  logger,
		metrics: opts.Metrics,
		now:     now,
		auto:    refresher{name: "activity", logger: logger},
	}, nil
}

// Fetch loads the newest limit entries; limit <= 0 uses the store's default.
// The previous logs are kept when the fetch fails.
func (s *ActivityStore) Fetch(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	return s.fetch(ctx, limit, "manual")
}

func (s *ActivityStore) fetch(ctx context.Context, limit int, trigger string) ([]model.ActivityLog, error) {
	if limit <= 0 {
		limit = s.limit
	}

	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()

	start := s.now()
	resp, err := s.api.RecentActivity(ctx, limit)
	elapsed := s.now().Sub(start)
	if err == nil && !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "failed to fetch activity logs"
		}
		err = errors.New(msg)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = err.Error()
		s.logger.WarnContext(ctx, "fetching activity log failed", "trigger", trigger, "error", err)
		metrics.EmitRefresh(s.metrics, metrics.RefreshMetric{
			Store: "activity", Trigger: trigger, Result: metrics.ResultError, Duration: elapsed, Err: err,
		})
		return nil, err
	}

	logs := resp.Logs
	if logs == nil {
		logs = []model.ActivityLog{}
	}
	s.logs = logs
	metrics.EmitRefresh(s.metrics, metrics.RefreshMetric{
		Store: "activity", Trigger: trigger, Result: metrics.ResultSuccess, Items: len(logs), Duration: elapsed,
	})
	out := make([]model.ActivityLog, len(logs))
	copy(out, logs)
	return out, nil
}

// State returns a copy of the store.
func (s *ActivityStore) State() ActivityState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	logs := make([]model.ActivityLog, len(s.logs))
	copy(logs, s.logs)
	return ActivityState{Logs: logs, Loading: s.loading, Error: s.lastErr}
}

// Reset clears the store and stops auto refresh.
func (s *ActivityStore) Reset() {
	s.auto.stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = nil
	s.loading = false
	s.lastErr = ""
}

// StartAutoRefresh refetches every interval (DefaultActivityRefreshInterval when
// interval <= 0), replacing any running refresh loop.
func (s *ActivityStore) StartAutoRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultActivityRefreshInterval
	}
	s.auto.start(ctx, interval, func(ctx context.Context) {
		_, _ = s.fetch(ctx, 0, "timer")
	})
}

// StopAutoRefresh stops the refresh loop, if any.
func (s *ActivityStore) StopAutoRefresh() { s.auto.stop() }
