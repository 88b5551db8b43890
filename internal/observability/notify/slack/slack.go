// Package slack delivers dashboard notifications to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/clustermaster/clustermaster-ui/internal/domain/model"
	"github.com/clustermaster/clustermaster-ui/internal/observability/notify"
)

// Config captures the subset of Slack webhook behaviour we need.
type Config struct {
	WebhookURL string
	Channel    string
	Username   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	// DashboardURL, when set, turns cluster names into links to the dashboard's cluster page.
	DashboardURL string
}

// Client posts notifications to a Slack webhook.
type Client struct {
	webhookURL   string
	channel      string
	username     string
	retryLimit   int
	dashboardURL string
	client       *http.Client
}

var _ notify.Sink = (*Client)(nil)

// NewClient builds a Slack webhook client.
func NewClient(cfg Config) (*Client, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	username := strings.TrimSpace(cfg.Username)
	if username == "" {
		username = "clustermaster"
	}

	return &Client{
		webhookURL:   webhookURL,
		channel:      strings.TrimSpace(cfg.Channel),
		username:     username,
		retryLimit:   max(cfg.RetryLimit, 0),
		dashboardURL: strings.TrimSpace(cfg.DashboardURL),
		client:       hc,
	}, nil
}

// SendNotification posts a formatted message, retrying with linear backoff.
func (c *Client) SendNotification(ctx context.Context, n model.Notification) error {
	body, err := json.Marshal(c.formatMessage(n))
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}

	attempts := c.retryLimit + 1
	var lastErr error
	for attempt := range attempts {
		if lastErr = c.post(ctx, body); lastErr == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * 200 * time.Millisecond)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

func (c *Client) formatMessage(n model.Notification) map[string]any {
	var text strings.Builder

	text.WriteString(severityIcon(n.Severity))
	text.WriteString(" *")
	text.WriteString(escape(fallback(n.Title, "Notification")))
	text.WriteByte('*')
	if n.Type != "" {
		text.WriteString(" (")
		text.WriteString(escape(n.Type))
		text.WriteByte(')')
	}
	text.WriteByte('\n')

	appendField(&text, "Message", escape(n.Message))
	appendField(&text, "Severity", string(n.Severity))
	appendField(&text, "Cluster", c.clusterValue(n.Cluster()))
	appendMetadata(&text, n.Metadata)

	ts := n.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	text.WriteString("• Timestamp: ")
	text.WriteString(ts.UTC().Format(time.RFC3339))

	msg := map[string]any{
		"text":     text.String(),
		"username": c.username,
	}
	if c.channel != "" {
		msg["channel"] = c.channel
	}
	return msg
}

func (c *Client) clusterValue(cluster string) string {
	name := escape(strings.TrimSpace(cluster))
	if name == "" {
		return ""
	}
	if link := c.clusterLink(strings.TrimSpace(cluster)); link != "" {
		return fmt.Sprintf("<%s|%s>", link, name)
	}
	return name
}

func (c *Client) clusterLink(cluster string) string {
	if c.dashboardURL == "" {
		return ""
	}
	u, err := url.Parse(c.dashboardURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	link, err := url.JoinPath(u.String(), "clusters", cluster)
	if err != nil {
		return ""
	}
	return link
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			return fmt.Errorf("read slack error response: %w", readErr)
		}
		return fmt.Errorf("slack webhook %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("drain slack response body: %w", err)
	}
	return nil
}

func severityIcon(s model.Severity) string {
	switch s {
	case model.SeveritySuccess:
		return ":white_check_mark:"
	case model.SeverityError:
		return ":x:"
	case model.SeverityWarning:
		return ":warning:"
	default:
		return ":information_source:"
	}
}

func escape(value string) string {
	if value == "" {
		return ""
	}
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(value)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

func appendField(text *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	text.WriteString("• ")
	text.WriteString(label)
	text.WriteString(": ")
	text.WriteString(value)
	text.WriteByte('\n')
}

func appendMetadata(text *strings.Builder, metadata map[string]any) {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		if k == "cluster" {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return
	}
	sort.Strings(keys)

	text.WriteString("• Metadata:\n")
	for _, k := range keys {
		text.WriteString("    • ")
		text.WriteString(escape(k))
		text.WriteString(": ")
		text.WriteString(escape(fmt.Sprint(metadata[k])))
		text.WriteByte('\n')
	}
}
