// Package notify forwards backend notifications to external chat sinks.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/clustermaster/clustermaster-ui/internal/domain/model"
)

// Sink describes a destination capable of consuming notifications.
type Sink interface {
	SendNotification(ctx context.Context, n model.Notification) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, n model.Notification) error

// SendNotification implements the Sink interface.
func (f SinkFunc) SendNotification(ctx context.Context, n model.Notification) error {
	if f == nil {
		return nil
	}
	return f(ctx, n)
}

// Filter selects notifications with a JMESPath expression evaluated against the
// notification's JSON form, e.g. `severity == 'error' || severity == 'warning'`.
// An empty expression matches everything.
type Filter struct {
	expr string
}

// NewFilter validates expr and returns a Filter.
func NewFilter(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr != "" {
		if _, err := jmespath.Compile(expr); err != nil {
			return nil, fmt.Errorf("invalid notification filter: %w", err)
		}
	}
	return &Filter{expr: expr}, nil
}

// Match reports whether n satisfies the filter. Results follow JMESPath truthiness:
// false, null, empty strings, arrays and objects do not match.
func (f *Filter) Match(n model.Notification) (bool, error) {
	if f == nil || f.expr == "" {
		return true, nil
	}

	raw, err := json.Marshal(n)
	if err != nil {
		return false, fmt.Errorf("encode notification: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false, fmt.Errorf("decode notification: %w", err)
	}

	out, err := jmespath.Search(f.expr, doc)
	if err != nil {
		return false, fmt.Errorf("evaluate notification filter: %w", err)
	}
	return truthy(out), nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// Forwarder sends matching notifications to a sink. Delivery failures are
// logged and never propagate into the notification stream.
type Forwarder struct {
	sink   Sink
	filter *Filter
	logger *slog.Logger
}

// NewForwarder builds a Forwarder; a nil filter forwards everything.
func NewForwarder(sink Sink, filter *Filter, logger *slog.Logger) *Forwarder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Forwarder{sink: sink, filter: filter, logger: logger}
}

// Forward delivers n if it matches the filter. It reports whether n was sent.
func (f *Forwarder) Forward(ctx context.Context, n model.Notification) bool {
	if f == nil || f.sink == nil {
		return false
	}
	ok, err := f.filter.Match(n)
	if err != nil {
		f.logger.WarnContext(ctx, "notification filter failed", "id", n.ID, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := f.sink.SendNotification(ctx, n); err != nil {
		f.logger.WarnContext(ctx, "notification forward failed", "id", n.ID, "error", err)
		return false
	}
	return true
}
