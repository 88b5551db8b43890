package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/clustermaster/clustermaster-ui/internal/errors"
	"github.com/clustermaster/clustermaster-ui/internal/observability/statsd"
)

func TestEmitRefresh_Success(t *testing.T) {
	var rec statsd.Recorder
	EmitRefresh(&rec, RefreshMetric{
		Store:    "clusters",
		Trigger:  "timer",
		Result:   ResultSuccess,
		Items:    4,
		Duration: 20 * time.Millisecond,
	})

	samples := rec.Samples()
	require.Len(t, samples, 3)
	assert.Equal(t, "store.refresh", samples[0].Name)
	assert.Equal(t, "timer", samples[0].Tags["trigger"])
	assert.Equal(t, "store.refresh.duration", samples[1].Name)
	assert.Equal(t, "store.items", samples[2].Name)
	assert.InDelta(t, 4.0, samples[2].Value, 0.0001)
}

func TestEmitRefresh_ErrorAddsClassAndSkipsGauge(t *testing.T) {
	var rec statsd.Recorder
	EmitRefresh(&rec, RefreshMetric{
		Store:  "activity",
		Result: ResultError,
		Err:    apperrors.Unavailable("backend down"),
	})

	samples := rec.Samples()
	require.Len(t, samples, 1)
	assert.Equal(t, "unavailable", samples[0].Tags["error_class"])
}

func TestEmitRequest(t *testing.T) {
	var rec statsd.Recorder
	EmitRequest(&rec, RequestMetric{Operation: "clusters.list", Status: 502, Err: errors.New("bad gateway")})
	EmitRequest(&rec, RequestMetric{Operation: "clusters.list", Status: 200, Duration: time.Millisecond})

	assert.InDelta(t, 1.0, rec.Sum("backend.request", map[string]string{"result": ResultError, "status_class": "5xx"}), 0.0001)
	assert.InDelta(t, 1.0, rec.Sum("backend.request", map[string]string{"result": ResultSuccess}), 0.0001)
}

func TestEmitNilSink(t *testing.T) {
	EmitRefresh(nil, RefreshMetric{Store: "clusters"})
	EmitRequest(nil, RequestMetric{Operation: "x"})
}
