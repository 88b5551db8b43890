package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clustermaster/clustermaster-ui/config"
	domainauth "github.com/clustermaster/clustermaster-ui/internal/domain/auth"
	mockauth "github.com/clustermaster/clustermaster-ui/internal/mocks/auth"
)

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/local-cluster/list", func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(w, map[string]any{"clusters": []string{"dev", "stage"}})
	})
	mux.HandleFunc("GET /api/v1/local-cluster/{name}/status", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		if name == "stage" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		writeTestJSON(w, map[string]any{"cluster_name": name, "status": "running", "nodes": "3/3 ready"})
	})
	mux.HandleFunc("GET /api/v1/activity-log", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		writeTestJSON(w, map[string]any{
			"success": true,
			"logs": []map[string]any{{
				"id": "a1", "timestamp": "2024-01-15T10:30:00Z", "operation_type": "cluster_create",
				"cluster_name": "dev", "status": "success", "details": "created",
			}},
		})
	})
	mux.HandleFunc("GET /api/notifications/history", func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(w, map[string]any{
			"success": true,
			"notifications": []map[string]any{
				{"id": "n1", "type": "cluster", "severity": "error", "title": "Cluster failed", "read": false,
					"timestamp": "2024-01-15T10:30:00Z", "metadata": map[string]any{"cluster": "dev"}},
				{"id": "n2", "type": "cluster", "severity": "success", "title": "Cluster ready", "read": true,
					"timestamp": "2024-01-15T10:31:00Z"},
			},
		})
	})
	mux.HandleFunc("GET /api/v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(w, map[string]any{"status": "healthy"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeTestJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestContext(t *testing.T, backendURL string) (*commandContext, *bytes.Buffer) {
	t.Helper()
	var cfg config.AppConfig
	cfg.Backend = config.BackendConfig{
		BaseURL:             backendURL,
		APIPrefix:           "/api/v1",
		NotificationsPrefix: "/api/notifications",
		Timeout:             5 * time.Second,
		StatusConcurrency:   2,
		HistoryLimit:        20,
	}
	cfg.Stores.ActivityLimit = 10
	out := &bytes.Buffer{}
	return &commandContext{
		Ctx:    context.Background(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: cfg,
		Out:    out,
	}, out
}

func TestPrintUsageListsCommandsSorted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))

	out := buf.String()
	require.Contains(t, out, "Usage: clustermaster-admin <command> [flags]")
	last := -1
	for _, name := range []string{"activity", "clusters", "health", "logout", "notifications", "session"} {
		idx := strings.Index(out, "  "+name)
		require.GreaterOrEqual(t, idx, 0, name)
		assert.Greater(t, idx, last, "commands are listed alphabetically")
		last = idx
	}
}

func TestRunClusters(t *testing.T) {
	srv := fakeBackend(t)
	ctx, out := newTestContext(t, srv.URL)

	require.NoError(t, runClusters(ctx, nil))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "dev")
	assert.Contains(t, lines[1], "3/3 ready")
	assert.Contains(t, lines[2], "stage")
	assert.Contains(t, lines[2], "unknown")
}

func TestRunClusters_JSON(t *testing.T) {
	srv := fakeBackend(t)
	ctx, out := newTestContext(t, srv.URL)

	require.NoError(t, runClusters(ctx, []string{"-json"}))
	var got []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "running", got[0]["status"])
}

func TestRunClusters_BackendDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	ctx, _ := newTestContext(t, srv.URL)

	err := runClusters(ctx, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list clusters")
}

func TestRunActivity(t *testing.T) {
	srv := fakeBackend(t)
	ctx, out := newTestContext(t, srv.URL)

	require.NoError(t, runActivity(ctx, []string{"-limit", "3"}))
	assert.Contains(t, out.String(), "cluster_create")
	assert.Contains(t, out.String(), "created")

	err := runActivity(ctx, []string{"-limit", "0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-limit must be positive")
}

func TestRunNotifications(t *testing.T) {
	srv := fakeBackend(t)
	ctx, out := newTestContext(t, srv.URL)

	require.NoError(t, runNotifications(ctx, nil))
	s := out.String()
	assert.Contains(t, s, "Cluster failed")
	assert.Contains(t, s, "Cluster ready")
	assert.Contains(t, s, "2 notification(s), 1 unread")
}

func TestRunHealth(t *testing.T) {
	srv := fakeBackend(t)
	ctx, out := newTestContext(t, srv.URL)

	require.NoError(t, runHealth(ctx, nil))
	assert.Contains(t, out.String(), `"status": "healthy"`)

	err := runHealth(ctx, []string{"-component", "etcd"})
	require.Error(t, err)
}

func TestPrintSession(t *testing.T) {
	ctx, out := newTestContext(t, "http://127.0.0.1:1")
	store := mockauth.NewMemorySessionStore()

	require.NoError(t, printSession(ctx, store, false))
	assert.Equal(t, "No active session.\n", out.String())

	now := time.Now()
	require.NoError(t, store.Save(ctx.Ctx, domainauth.Session{
		ID: "s1", UserID: "dev-operator", Email: "operator@localhost",
		CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}))
	out.Reset()
	require.NoError(t, printSession(ctx, store, false))
	assert.Contains(t, out.String(), "dev-operator")
	assert.Contains(t, out.String(), "operator@localhost")
	assert.Contains(t, out.String(), "Name:")

	out.Reset()
	require.NoError(t, printSession(ctx, store, true))
	var got domainauth.Session
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "s1", got.ID)

	store.Err = errors.New("redis down")
	require.Error(t, printSession(ctx, store, false))
}

func TestClearSession(t *testing.T) {
	tests := []struct {
		name        string
		opts        logoutOptions
		input       string
		wantCleared bool
		wantOutput  string
	}{
		{"yes flag", logoutOptions{Yes: true}, "", true, "Session for dev-operator cleared."},
		{"confirmed", logoutOptions{}, "y\n", true, "Session for dev-operator cleared."},
		{"declined", logoutOptions{}, "n\n", false, "Aborted."},
		{"no input", logoutOptions{}, "", false, "Aborted."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := newTestContext(t, "http://127.0.0.1:1")
			ctx.In = strings.NewReader(tt.input)
			store := mockauth.NewMemorySessionStore()
			require.NoError(t, store.Save(ctx.Ctx, domainauth.Session{
				ID: "s1", UserID: "dev-operator", ExpiresAt: time.Now().Add(time.Hour),
			}))

			require.NoError(t, clearSession(ctx, store, tt.opts))
			assert.Contains(t, out.String(), tt.wantOutput)

			_, err := store.Current(ctx.Ctx)
			assert.Equal(t, tt.wantCleared, err != nil)
		})
	}
}

func TestClearSession_NoSession(t *testing.T) {
	ctx, out := newTestContext(t, "http://127.0.0.1:1")
	require.NoError(t, clearSession(ctx, mockauth.NewMemorySessionStore(), logoutOptions{Yes: true}))
	assert.Equal(t, "No active session.\n", out.String())
}

func TestRunSession_RedisNotConfigured(t *testing.T) {
	ctx, _ := newTestContext(t, "http://127.0.0.1:1")
	err := runSession(ctx, nil)
	require.ErrorIs(t, err, errRedisNotConfigured)
}

func TestCommandOutputDefaultsToStdout(t *testing.T) {
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)

	defer func() {
		os.Stdout = oldStdout
	}()

	os.Stdout = w

	ctx := &commandContext{Ctx: context.Background()}
	err = printClusters(ctx.out(), nil)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	os.Stdout = oldStdout

	output, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	require.Equal(t, "No clusters found.\n", string(output))
}
