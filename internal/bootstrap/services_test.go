package bootstrap

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clustermaster/clustermaster-ui/config"
	"github.com/clustermaster/clustermaster-ui/internal/adapters/backend"
	"github.com/clustermaster/clustermaster-ui/internal/domain/model"
	"github.com/clustermaster/clustermaster-ui/internal/gate"
	"github.com/clustermaster/clustermaster-ui/internal/testutil"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// newStubBackend serves one running cluster, one activity entry and a
// notification stream that emits a single notification.
func newStubBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/local-cluster/list", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"clusters": []string{"dev"}})
	})
	mux.HandleFunc("GET /api/v1/local-cluster/{name}/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"cluster_name": r.PathValue("name"), "status": "running", "nodes": "2"})
	})
	mux.HandleFunc("GET /api/v1/activity-log", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, model.ActivityLogResponse{Success: true, Logs: []model.ActivityLog{{
			ID: "a1", Timestamp: testutil.TestTime(), OperationType: "cluster_create", ClusterName: "dev", Status: model.ActivityStatusSuccess,
		}}})
	})
	mux.HandleFunc("GET /api/notifications/history", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, model.NotificationHistory{Success: true, Notifications: []model.Notification{
			testutil.NewNotification("h1").Build(),
		}})
	})
	mux.HandleFunc("GET /api/notifications/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		rc := http.NewResponseController(w)
		data, _ := json.Marshal(testutil.NewNotification("n1").WithCluster("dev").Build())
		_ = backend.WriteEvent(w, backend.Event{Name: backend.EventNotification, Data: string(data)})
		_ = rc.Flush()
		<-r.Context().Done()
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testAppConfig(backendURL, services string) *config.AppConfig {
	cfg := &config.AppConfig{
		Services: services,
		Backend:  config.BackendConfig{BaseURL: backendURL, Timeout: 5 * time.Second},
		Gate:     config.GateConfig{BootstrapTimeout: time.Second},
		Stores: config.StoreConfig{
			ClusterRefreshInterval:  time.Hour,
			ActivityRefreshInterval: time.Hour,
			StreamHeartbeat:         time.Hour,
		},
	}
	cfg.Sanitize()
	cfg.Backend.ReconnectDelay = 20 * time.Millisecond
	return cfg
}

func TestNewServices(t *testing.T) {
	cfg := testAppConfig("http://127.0.0.1:1", "http")
	svcs, err := NewServices(context.Background(), &ServiceDeps{Config: cfg, Logger: discardLogger()})
	require.NoError(t, err)
	t.Cleanup(svcs.Gate.Close)

	assert.NotNil(t, svcs.Backend)
	assert.NotNil(t, svcs.Clusters)
	assert.NotNil(t, svcs.Activity)
	assert.NotNil(t, svcs.Notifications)
	assert.Nil(t, svcs.Auth, "auth needs redis")
	assert.Nil(t, svcs.Observability.Forwarder)
	assert.False(t, svcs.Observability.MetricsSink.Enabled())
	assert.Equal(t, "/sign-in", svcs.Gate.SignInPath())
}

func TestNewServices_Errors(t *testing.T) {
	_, err := NewServices(context.Background(), nil)
	require.Error(t, err)

	cfg := testAppConfig("ftp://backend", "http")
	_, err = NewServices(context.Background(), &ServiceDeps{Config: cfg, Logger: discardLogger()})
	assert.ErrorContains(t, err, "backend client")
}

func TestBuildForwarder(t *testing.T) {
	ctx := context.Background()
	notifications := func(filter string) *config.AppConfig {
		cfg := &config.AppConfig{}
		cfg.Observability.Notifications = config.ObservabilityNotificationsConfig{
			Enabled: true,
			Filter:  filter,
			Slack:   config.SlackNotificationConfig{Enabled: true, WebhookURL: "https://hooks.slack.test/T000"},
		}
		return cfg
	}

	assert.NotNil(t, buildForwarder(ctx, discardLogger(), notifications("severity == 'error'")))
	assert.Nil(t, buildForwarder(ctx, discardLogger(), notifications("severity ==")), "invalid filter")
	assert.Nil(t, buildForwarder(ctx, discardLogger(), &config.AppConfig{}), "disabled")
}

func TestRunServices(t *testing.T) {
	backendSrv := newStubBackend(t)
	cfg := testAppConfig(backendSrv.URL, "http,notifications,refresh")
	logger := discardLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svcs, err := NewServices(ctx, &ServiceDeps{Config: cfg, Logger: logger})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	errCh := make(chan error, 1)
	go func() {
		errCh <- RunServices(ctx, &ServiceOrchestrationConfig{Config: cfg, Services: svcs, Logger: logger, Listener: ln})
	}()

	testutil.Eventually(t, 3*time.Second, func() bool {
		return svcs.Clusters.Count() == 1 && len(svcs.Activity.State().Logs) == 1
	}, "stores were not refreshed")
	testutil.Eventually(t, 3*time.Second, func() bool {
		return svcs.Notifications.Connected() && len(svcs.Notifications.Notifications()) == 2
	}, "notification history and stream were not consumed")
	assert.Equal(t, "n1", svcs.Notifications.Notifications()[0].ID)

	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, base+"/api/clusters", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/json")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "no auth service means no session")

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunServices did not return after cancel")
	}
	assert.False(t, svcs.Notifications.Connected())

	decided := make(chan gate.Decision, 1)
	svcs.Gate.Evaluate(gate.Request{Target: gate.Route{Path: "/clusters", RequiresAuth: true}, Resolve: func(d gate.Decision) { decided <- d }})
	assert.Equal(t, gate.DecisionCancel, (<-decided).Kind, "gate is closed on shutdown")
}

func TestRunServices_InvalidConfig(t *testing.T) {
	require.Error(t, RunServices(context.Background(), nil))
	require.Error(t, RunServices(context.Background(), &ServiceOrchestrationConfig{}))
	err := RunServices(context.Background(), &ServiceOrchestrationConfig{Config: &config.AppConfig{Services: "nope"}})
	assert.ErrorContains(t, err, "determine enabled services")
}

func TestRunServices_HTTPRequiresGate(t *testing.T) {
	cfg := testAppConfig("http://127.0.0.1:1", "http")
	err := RunServices(context.Background(), &ServiceOrchestrationConfig{Config: cfg, Logger: discardLogger()})
	assert.ErrorContains(t, err, "navigation gate is not configured")
}
