// Package backend is the typed REST/SSE client for the ClusterMaster backend API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	apperrors "github.com/clustermaster/clustermaster-ui/internal/errors"
	"github.com/clustermaster/clustermaster-ui/internal/observability/metrics"
	"github.com/clustermaster/clustermaster-ui/internal/observability/statsd"
	"github.com/clustermaster/clustermaster-ui/internal/ports"
)

const (
	// DefaultAPIPrefix is where the backend mounts its versioned REST API.
	DefaultAPIPrefix = "/api/v1"
	// DefaultNotificationsPrefix is where the backend mounts the notification endpoints.
	DefaultNotificationsPrefix = "/api/notifications"

	defaultTimeout           = 30 * time.Second
	defaultStatusConcurrency = 4
	maxErrorBody             = 64 << 10
	maxDetailLen             = 200
)

// Config configures a Client.
type Config struct {
	BaseURL             string
	APIPrefix           string
	NotificationsPrefix string
	Timeout             time.Duration
	// StatusConcurrency bounds the per-cluster status calls made by ListClusters.
	StatusConcurrency int
	// HTTPClient overrides the request client. Its Timeout is left untouched.
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    statsd.Sink
}

// Client talks to the backend over HTTP. It is safe for concurrent use.
type Client struct {
	base        *url.URL
	apiPrefix   string
	notifPrefix string
	concurrency int

	http   *http.Client
	stream *http.Client

	logger  *slog.Logger
	metrics statsd.Sink
}

var _ ports.BackendAPI = (*Client)(nil)

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("backend base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend base URL must be http or https, got %q", base.Scheme)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		jar, jarErr := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if jarErr != nil {
			return nil, fmt.Errorf("create cookie jar: %w", jarErr)
		}
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout, Jar: jar}
	}
	// The SSE stream stays open indefinitely, so it shares the transport and jar but not the timeout.
	stream := &http.Client{Transport: httpClient.Transport, Jar: httpClient.Jar}

	concurrency := cfg.StatusConcurrency
	if concurrency <= 0 {
		concurrency = defaultStatusConcurrency
	}

	return &Client{
		base:        base,
		apiPrefix:   normalizePrefix(cfg.APIPrefix, DefaultAPIPrefix),
		notifPrefix: normalizePrefix(cfg.NotificationsPrefix, DefaultNotificationsPrefix),
		concurrency: concurrency,
		http:        httpClient,
		stream:      stream,
		logger:      logger.With("component", "backend"),
		metrics:     cfg.Metrics,
	}, nil
}

// BaseURL returns the backend root the client was configured with.
func (c *Client) BaseURL() string { return c.base.String() }

func normalizePrefix(p, def string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		p = def
	}
	return "/" + strings.Trim(p, "/")
}

// call describes one backend request.
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	out    any
}

func (c *Client) api(parts ...string) string {
	return c.apiPrefix + joinPath(parts...)
}

func (c *Client) notifications(parts ...string) string {
	return c.notifPrefix + joinPath(parts...)
}

func joinPath(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s request: %w", cl.op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.endpoint(cl.path, cl.query), body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do performs cl and decodes a 2xx JSON body into cl.out.
func (c *Client) do(ctx context.Context, cl call) (err error) {
	start := time.Now()
	status := 0
	defer func() {
		metrics.EmitRequest(c.metrics, metrics.RequestMetric{
			Operation: cl.op,
			Status:    status,
			Duration:  time.Since(start),
			Err:       err,
		})
	}()

	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(ctx, cl.op, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		appErr := FromResponse(resp)
		c.logger.DebugContext(ctx, "backend request rejected",
			"op", cl.op, "status", resp.StatusCode, "error", appErr.Message)
		return appErr
	}

	if cl.out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.Wrapf(err, apperrors.ErrCodeInternal, "decode %s response", cl.op)
	}
	return nil
}

// FromResponse converts a non-2xx backend response into an AppError. FastAPI error
// bodies ({"detail": ...}) and {"error": ...} bodies contribute their text.
func FromResponse(resp *http.Response) *apperrors.AppError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return apperrors.FromHTTPStatus(resp.StatusCode, errorDetail(body))
}

func errorDetail(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if len(payload.Detail) > 0 {
			var s string
			if json.Unmarshal(payload.Detail, &s) == nil {
				return truncate(s)
			}
			// Validation errors arrive as a list of objects.
			return truncate(string(payload.Detail))
		}
		if payload.Error != "" {
			return truncate(payload.Error)
		}
		return ""
	}
	return truncate(string(body))
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxDetailLen {
		return s[:maxDetailLen] + "..."
	}
	return s
}

// transportError classifies failures that happened before a response arrived.
func transportError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return apperrors.Wrapf(err, apperrors.ErrCodeTimeout, "%s timed out", op)
		}
		return apperrors.Wrapf(err, apperrors.ErrCodeCanceled, "%s canceled", op)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.Wrapf(err, apperrors.ErrCodeTimeout, "%s timed out", op)
	}
	return apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "%s: backend unreachable", op)
}
