package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// refresher runs fn on a fixed interval until stopped. Starting it again replaces
// the running loop, matching the dashboard stores' startAutoRefresh semantics.
type refresher struct {
	name   string
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func (r *refresher) start(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		return
	}
	r.stop()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	r.mu.Lock()
	r.cancel = cancel
	r.done = done
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.DebugContext(ctx, "auto refresh started", "store", r.name, "interval", interval)
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				fn(loopCtx)
			}
		}
	}()
}

// stop cancels the loop and waits for an in-flight refresh to return.
func (r *refresher) stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	if r.logger != nil {
		r.logger.Debug("auto refresh stopped", "store", r.name)
	}
}

func (r *refresher) running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}
