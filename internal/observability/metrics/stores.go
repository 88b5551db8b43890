// Package metrics emits the standard metric shapes shared by the stores and the backend client.
package metrics

import (
	"time"

	obserrors "github.com/clustermaster/clustermaster-ui/internal/observability/errors"
	"github.com/clustermaster/clustermaster-ui/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// RefreshMetric describes one store refresh (clusters, activity, notification history).
type RefreshMetric struct {
	Store    string
	Trigger  string // "manual", "timer" or "stream"
	Result   string
	Items    int
	Duration time.Duration
	Err      error
}

// EmitRefresh emits store refresh counters, timings and the resulting item gauge.
func EmitRefresh(sink statsd.Sink, in RefreshMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"store":   in.Store,
		"trigger": in.Trigger,
		"result":  in.Result,
	}
	addErrorClass(tags, in.Result, in.Err)

	sink.Count("store.refresh", 1, tags)
	if in.Duration > 0 {
		sink.Timing("store.refresh.duration", in.Duration, CloneTags(tags))
	}
	if in.Result == ResultSuccess {
		sink.Gauge("store.items", float64(in.Items), map[string]string{"store": in.Store})
	}
}

// RequestMetric describes one backend API call.
type RequestMetric struct {
	Operation string
	Status    int
	Duration  time.Duration
	Err       error
}

// EmitRequest emits backend request counters and latency.
func EmitRequest(sink statsd.Sink, in RequestMetric) {
	if sink == nil {
		return
	}

	result := ResultSuccess
	if in.Err != nil {
		result = ResultError
	}
	tags := map[string]string{
		"operation": in.Operation,
		"result":    result,
	}
	if in.Status > 0 {
		tags["status_class"] = statusClass(in.Status)
	}
	addErrorClass(tags, result, in.Err)

	sink.Count("backend.request", 1, tags)
	if in.Duration > 0 {
		sink.Timing("backend.request.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func addErrorClass(tags map[string]string, result string, err error) {
	if err == nil || result != ResultError {
		return
	}
	if class := obserrors.Classify(err); class != "" {
		tags["error_class"] = class
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
