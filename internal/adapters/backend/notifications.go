package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/clustermaster/clustermaster-ui/internal/domain/model"
	apperrors "github.com/clustermaster/clustermaster-ui/internal/errors"
)

// Event names pushed on the notification stream.
const (
	EventNotification = "notification"
	EventPing         = "ping"
)

// ErrStreamClosed is returned when the backend ends the notification stream.
var ErrStreamClosed = errors.New("notification stream closed by backend")

// NotificationHistory returns the newest limit notifications.
func (c *Client) NotificationHistory(ctx context.Context, limit int) (model.NotificationHistory, error) {
	if limit <= 0 {
		limit = model.DefaultHistoryLimit
	}
	var out model.NotificationHistory
	err := c.do(ctx, call{
		op:     "notifications.history",
		method: http.MethodGet,
		path:   c.notifications("history"),
		query:  url.Values{"limit": {strconv.Itoa(limit)}},
		out:    &out,
	})
	return out, err
}

// MarkNotificationRead marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, call{op: "notifications.read", method: http.MethodPost, path: c.notifications(id, "read")})
}

// MarkAllNotificationsRead marks every notification as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, call{op: "notifications.read_all", method: http.MethodPost, path: c.notifications("read-all")})
}

// DeleteNotification removes one notification.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.do(ctx, call{op: "notifications.delete", method: http.MethodDelete, path: c.notifications(id)})
}

// StreamNotifications opens the server-sent event stream for userID and calls fn
// for every notification event, in arrival order. It returns when ctx is done
// (nil error) or when the stream fails or ends.
func (c *Client) StreamNotifications(ctx context.Context, userID string, onOpen func(), fn func(model.Notification)) error {
	q := url.Values{}
	if userID != "" {
		q.Set("user_id", userID)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(c.notifications("stream"), q), nil)
	if err != nil {
		return fmt.Errorf("build notification stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := c.stream.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return transportError(ctx, "notifications.stream", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return FromResponse(resp)
	}
	c.logger.InfoContext(ctx, "notification stream connected", "user_id", userID, "connect_time", time.Since(start))
	if onOpen != nil {
		onOpen()
	}

	err = ReadEvents(resp.Body, func(ev Event) {
		switch ev.Name {
		case EventPing:
			return
		case EventNotification, "":
			var n model.Notification
			if jsonErr := json.Unmarshal([]byte(ev.Data), &n); jsonErr != nil {
				c.logger.WarnContext(ctx, "dropping malformed notification", "error", jsonErr)
				return
			}
			if fn != nil {
				fn(n)
			}
		default:
			c.logger.DebugContext(ctx, "ignoring stream event", "event", ev.Name)
		}
	})
	if ctx.Err() != nil {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return ErrStreamClosed
	}
	return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "read notification stream")
}
