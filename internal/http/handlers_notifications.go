package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/clustermaster/clustermaster-ui/internal/adapters/backend"
	apperrors "github.com/clustermaster/clustermaster-ui/internal/errors"
	"github.com/clustermaster/clustermaster-ui/internal/service"
)

const (
	defaultStreamHeartbeat = 15 * time.Second
	eventState             = "state"
)

// NotificationHandlers serves the NotificationStore and relays pushed
// notifications to browsers over server-sent events.
type NotificationHandlers struct {
	Store     *service.NotificationStore
	Heartbeat time.Duration
	Logger    *slog.Logger
}

func (h *NotificationHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// List handles GET /api/notifications.
func (h *NotificationHandlers) List(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, h.Store.State())
}

// Recent handles GET /api/notifications/recent.
func (h *NotificationHandlers) Recent(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"notifications": h.Store.Recent(),
		"unread_count":  h.Store.UnreadCount(),
	})
}

// History handles GET /api/notifications/history[?limit=n], replacing the list
// with the backend's history.
func (h *NotificationHandlers) History(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.FetchHistory(r.Context(), boundedIntQuery(r, "limit", 0, 0, maxHistoryLimit)); err != nil {
		WriteAppError(w, err, "history_failed")
		return
	}
	WriteJSON(w, http.StatusOK, h.Store.State())
}

// MarkRead handles POST /api/notifications/{id}/read.
func (h *NotificationHandlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := notificationID(w, r)
	if !ok {
		return
	}
	if err := h.Store.MarkAsRead(r.Context(), id); err != nil {
		WriteAppError(w, err, "mark_read_failed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"unread_count": h.Store.UnreadCount()})
}

// MarkAllRead handles POST /api/notifications/read-all.
func (h *NotificationHandlers) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.MarkAllAsRead(r.Context()); err != nil {
		WriteAppError(w, err, "mark_all_read_failed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"unread_count": 0})
}

// Delete handles DELETE /api/notifications/{id}.
func (h *NotificationHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := notificationID(w, r)
	if !ok {
		return
	}
	if err := h.Store.Delete(r.Context(), id); err != nil {
		WriteAppError(w, err, "delete_failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stream handles GET /api/notifications/stream. It sends the current state,
// then every pushed notification, with ping heartbeats in between, until the
// client disconnects.
func (h *NotificationHandlers) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := http.NewResponseController(w)

	updates, cancel := h.Store.Subscribe(0)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	send := func(name, id string, v any) bool {
		data, err := json.Marshal(v)
		if err != nil {
			h.logger().ErrorContext(ctx, "encoding stream event failed", "event", name, "error", err)
			return true
		}
		if err := backend.WriteEvent(w, backend.Event{ID: id, Name: name, Data: string(data)}); err != nil {
			return false
		}
		return rc.Flush() == nil
	}

	if !send(eventState, "", h.Store.State()) {
		return
	}

	interval := h.Heartbeat
	if interval <= 0 {
		interval = defaultStreamHeartbeat
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-updates:
			if !ok {
				return
			}
			if !send(backend.EventNotification, n.ID, n) {
				return
			}
		case <-ticker.C:
			if !send(backend.EventPing, "", map[string]int64{"ts": time.Now().Unix()}) {
				return
			}
		}
	}
}

func notificationID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		WriteAppError(w, apperrors.ValidationField("id", "notification id is required"), "invalid_path")
		return "", false
	}
	return id, true
}
