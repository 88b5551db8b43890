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

const (
	// DefaultNotificationUser is the user_id sent on the notification stream.
	DefaultNotificationUser = "default_user"
	// DefaultReconnectDelay is the pause between notification stream reconnects.
	DefaultReconnectDelay = 5 * time.Second

	// DefaultForwardTimeout bounds a single forwarder delivery.
	DefaultForwardTimeout = 15 * time.Second

	defaultSubscriberBuffer = 16
	defaultForwardBuffer    = 64
)

// NotificationForwarder hands pushed notifications to an external sink.
type NotificationForwarder interface {
	Forward(ctx context.Context, n model.Notification) bool
}

// NotificationStoreOptions groups dependencies for NotificationStore.
type NotificationStoreOptions struct {
	API            ports.NotificationAPI // Required
	UserID         string
	ReconnectDelay time.Duration
	Forwarder      NotificationForwarder // Optional
	// ForwardBuffer is how many notifications may wait for the forwarder;
	// further ones are dropped. ForwardTimeout bounds each delivery.
	ForwardBuffer  int
	ForwardTimeout time.Duration
	Logger         *slog.Logger
	Metrics        statsd.Sink
	Now            func() time.Time
}

// NotificationState is a point-in-time copy of the store.
type NotificationState struct {
	Notifications []model.Notification `json:"notifications"`
	Connected     bool                 `json:"connected"`
	Loading       bool                 `json:"loading"`
	UnreadCount   int                  `json:"unread_count"`
}

// NotificationStore keeps the newest notifications, fed by the backend's SSE
// stream and by history fetches, and fans pushed notifications out to subscribers.
type NotificationStore struct {
	api            ports.NotificationAPI
	userID         string
	reconnectDelay time.Duration
	forwarder      NotificationForwarder
	forwardTimeout time.Duration
	logger         *slog.Logger
	metrics        statsd.Sink
	now            func() time.Time

	forwardQ   chan forwardJob
	fwdMu      sync.Mutex
	forwarding bool

	mu            sync.RWMutex
	notifications []model.Notification
	connected     bool
	loading       bool

	connMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	subMu  sync.Mutex
	subs   map[int]chan model.Notification
	nextID int
}

// NewNotificationStore constructs a NotificationStore.
func NewNotificationStore(opts NotificationStoreOptions) (*NotificationStore, error) {
	if opts.API == nil {
		return nil, errors.New("NotificationAPI is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	userID := opts.UserID
	if userID == "" {
		userID = DefaultNotificationUser
	}
	delay := opts.ReconnectDelay
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &NotificationStore{
		api:            opts.API,
		userID:         userID,
		reconnectDelay: delay,
		forwarder:      opts.Forwarder,
		forwardTimeout: opts.ForwardTimeout,
		logger:         logger.With("component", "notification_store"),
		metrics:        opts.Metrics,
		now:            now,
		subs:           make(map[int]chan model.Notification),
	}
	if s.forwarder != nil {
		if s.forwardTimeout <= 0 {
			s.forwardTimeout = DefaultForwardTimeout
		}
		buffer := opts.ForwardBuffer
		if buffer <= 0 {
			buffer = defaultForwardBuffer
		}
		s.forwardQ = make(chan forwardJob, buffer)
	}
	return s, nil
}

// Connect starts the stream loop. It returns false when a loop is already running.
// The loop reconnects after ReconnectDelay whenever the stream ends, until
// Disconnect is called or ctx is done.
func (s *NotificationStore) Connect(ctx context.Context) bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.cancel != nil {
		s.logger.DebugContext(ctx, "notification stream already connected")
		return false
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(loopCtx, s.done)
	return true
}

// Disconnect stops the stream loop and waits for it to exit.
func (s *NotificationStore) Disconnect() {
	s.connMu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.connMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.setConnected(false)
	s.logger.Info("notification stream closed")
}

// Run connects and blocks until ctx is done. It lets the stream loop run as a
// background service.
func (s *NotificationStore) Run(ctx context.Context) error {
	if !s.Connect(ctx) {
		return errors.New("notification stream already running")
	}
	<-ctx.Done()
	s.Disconnect()
	return nil
}

func (s *NotificationStore) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		err := s.api.StreamNotifications(ctx, s.userID, func() {
			s.setConnected(true)
		}, func(n model.Notification) {
			s.push(ctx, n)
		})
		s.setConnected(false)
		if ctx.Err() != nil {
			return
		}

		s.logger.WarnContext(ctx, "notification stream lost; reconnecting",
			"error", err, "delay", s.reconnectDelay)
		if s.metrics != nil {
			s.metrics.Count("notifications.stream.reconnect", 1, nil)
		}

		timer := time.NewTimer(s.reconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (s *NotificationStore) setConnected(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = v
}

// Push records a notification as if it had arrived on the stream.
func (s *NotificationStore) Push(ctx context.Context, n model.Notification) {
	s.push(ctx, n)
}

func (s *NotificationStore) push(ctx context.Context, n model.Notification) {
	s.mu.Lock()
	next := make([]model.Notification, 0, min(len(s.notifications)+1, model.MaxNotifications))
	next = append(next, n)
	for _, existing := range s.notifications {
		if len(next) == model.MaxNotifications {
			break
		}
		next = append(next, existing)
	}
	s.notifications = next
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.Count("notifications.received", 1, map[string]string{"severity": string(n.Severity)})
	}
	s.broadcast(n)
	if s.forwarder != nil {
		s.enqueueForward(ctx, n)
	}
}

type forwardJob struct {
	ctx context.Context
	n   model.Notification
}

// enqueueForward hands n to the forward worker, starting it when idle. The
// stream goroutine never waits on the forwarder; a full queue drops n.
func (s *NotificationStore) enqueueForward(ctx context.Context, n model.Notification) {
	select {
	case s.forwardQ <- forwardJob{ctx: context.WithoutCancel(ctx), n: n}:
	default:
		s.logger.WarnContext(ctx, "forward queue full; dropping notification", "id", n.ID)
		if s.metrics != nil {
			s.metrics.Count("notifications.forward.dropped", 1, nil)
		}
		return
	}

	s.fwdMu.Lock()
	defer s.fwdMu.Unlock()
	if !s.forwarding {
		s.forwarding = true
		go s.forwardLoop()
	}
}

// forwardLoop delivers queued notifications in order and exits once the
// queue is empty.
func (s *NotificationStore) forwardLoop() {
	for {
		select {
		case job := <-s.forwardQ:
			ctx, cancel := context.WithTimeout(job.ctx, s.forwardTimeout)
			s.forwarder.Forward(ctx, job.n)
			cancel()
		default:
			s.fwdMu.Lock()
			if len(s.forwardQ) == 0 {
				s.forwarding = false
				s.fwdMu.Unlock()
				return
			}
			s.fwdMu.Unlock()
		}
	}
}

// Subscribe returns a channel receiving every notification pushed after the
// call, and a function that cancels the subscription and closes the channel.
// Slow subscribers miss notifications instead of blocking the stream.
func (s *NotificationStore) Subscribe(buffer int) (<-chan model.Notification, func()) {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	ch := make(chan model.Notification, buffer)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *NotificationStore) broadcast(n model.Notification) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- n:
		default:
			s.logger.Debug("dropping notification for slow subscriber", "subscriber", id, "id", n.ID)
		}
	}
}

// FetchHistory replaces the list with the newest limit notifications
// (model.DefaultHistoryLimit when limit <= 0).
func (s *NotificationStore) FetchHistory(ctx context.Context, limit int) error {
	if limit <= 0 {
		limit = model.DefaultHistoryLimit
	}
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	start := s.now()
	hist, err := s.api.NotificationHistory(ctx, limit)
	elapsed := s.now().Sub(start)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err == nil && !hist.Success {
		err = errors.New("notification history request was not successful")
	}
	if err != nil {
		s.logger.WarnContext(ctx, "fetching notification history failed", "error", err)
		metrics.EmitRefresh(s.metrics, metrics.RefreshMetric{
			Store: "notifications", Trigger: "manual", Result: metrics.ResultError, Duration: elapsed, Err: err,
		})
		return err
	}

	list := hist.Notifications
	if len(list) > model.MaxNotifications {
		list = list[:model.MaxNotifications]
	}
	s.notifications = append([]model.Notification{}, list...)
	metrics.EmitRefresh(s.metrics, metrics.RefreshMetric{
		Store: "notifications", Trigger: "manual", Result: metrics.ResultSuccess, Items: len(list), Duration: elapsed,
	})
	return nil
}

// MarkAsRead marks id as read on the backend, then locally.
func (s *NotificationStore) MarkAsRead(ctx context.Context, id string) error {
	if err := s.api.MarkNotificationRead(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := append([]model.Notification(nil), s.notifications...)
	for i := range next {
		if next[i].ID == id {
			next[i].Read = true
		}
	}
	s.notifications = next
	return nil
}

// MarkAllAsRead marks every notification as read on the backend, then locally.
func (s *NotificationStore) MarkAllAsRead(ctx context.Context) error {
	if err := s.api.MarkAllNotificationsRead(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := append([]model.Notification(nil), s.notifications...)
	for i := range next {
		next[i].Read = true
	}
	s.notifications = next
	return nil
}

// Delete removes id on the backend, then locally.
func (s *NotificationStore) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteNotification(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]model.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if n.ID != id {
			next = append(next, n)
		}
	}
	s.notifications = next
	return nil
}

// Notifications returns the list, newest first.
func (s *NotificationStore) Notifications() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Notification{}, s.notifications...)
}

// Recent returns the newest model.RecentNotifications notifications.
func (s *NotificationStore) Recent() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := min(len(s.notifications), model.RecentNotifications)
	return append([]model.Notification{}, s.notifications[:n]...)
}

// UnreadCount returns how many notifications are unread.
func (s *NotificationStore) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return unread(s.notifications)
}

// Connected reports whether the stream is currently open.
func (s *NotificationStore) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// State returns a copy of the store.
func (s *NotificationStore) State() NotificationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return NotificationState{
		Notifications: append([]model.Notification{}, s.notifications...),
		Connected:     s.connected,
		Loading:       s.loading,
		UnreadCount:   unread(s.notifications),
	}
}

func unread(list []model.Notification) int {
	count := 0
	for _, n := range list {
		if !n.Read {
			count++
		}
	}
	return count
}
