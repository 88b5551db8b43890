package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clustermaster/clustermaster-ui/internal/domain/model"
	apperrors "github.com/clustermaster/clustermaster-ui/internal/errors"
)

// recordingResources records the arguments of apps, backup and monitoring calls.
type recordingResources struct {
	cluster    string
	app        string
	install    model.AppInstallRequest
	query      string
	maxResults int
	backup     string
	create     model.BackupCreateRequest
	restore    model.RestoreRequest
	err        error
}

func (s *recordingResources) InstallMonitoring(_ context.Context, cluster string) (model.MonitoringStatus, error) {
	s.cluster = cluster
	return model.MonitoringStatus{ClusterName: cluster, Status: "installed"}, s.err
}

func (s *recordingResources) MonitoringStatus(_ context.Context, cluster string) (model.MonitoringStatus, error) {
	s.cluster = cluster
	return model.MonitoringStatus{ClusterName: cluster, Status: "running"}, s.err
}

func (s *recordingResources) UninstallMonitoring(_ context.Context, cluster string) (model.MessageResponse, error) {
	s.cluster = cluster
	return model.MessageResponse{Message: "uninstalled"}, s.err
}

func (s *recordingResources) HelmReleases(_ context.Context, cluster string) (model.HelmReleases, error) {
	s.cluster = cluster
	return model.HelmReleases{ClusterName: cluster, Releases: []model.HelmRelease{{Name: "prometheus", Status: "deployed"}}}, s.err
}

func (s *recordingResources) InstallApp(_ context.Context, cluster string, req model.AppInstallRequest) (model.AppOperationResult, error) {
	s.cluster, s.install = cluster, req
	return model.AppOperationResult{Success: true}, s.err
}

func (s *recordingResources) InstalledApps(_ context.Context, cluster string) (model.InstalledApps, error) {
	s.cluster = cluster
	return model.InstalledApps{Success: true}, s.err
}

func (s *recordingResources) UninstallApp(_ context.Context, cluster, app string) (model.AppOperationResult, error) {
	s.cluster, s.app = cluster, app
	return model.AppOperationResult{Success: true}, s.err
}

func (s *recordingResources) AvailableApps(context.Context) (model.AppCatalog, error) {
	return model.AppCatalog{Success: true}, s.err
}

func (s *recordingResources) SearchCharts(_ context.Context, query string, maxResults int) (model.ChartSearch, error) {
	s.query, s.maxResults = query, maxResults
	return model.ChartSearch{Success: true}, s.err
}

func (s *recordingResources) ListBackups(_ context.Context, cluster string) (model.BackupList, error) {
	s.cluster = cluster
	return model.BackupList{Success: true}, s.err
}

func (s *recordingResources) GetBackup(_ context.Context, name string) (model.Backup, error) {
	s.backup = name
	return model.Backup{BackupName: name}, s.err
}

func (s *recordingResources) CreateBackup(_ context.Context, req model.BackupCreateRequest) (model.BackupOperationResult, error) {
	s.create = req
	return model.BackupOperationResult{Success: true}, s.err
}

func (s *recordingResources) RestoreBackup(_ context.Context, name string, req model.RestoreRequest) (model.BackupOperationResult, error) {
	s.backup, s.restore = name, req
	return model.BackupOperationResult{Success: true}, s.err
}

func (s *recordingResources) DeleteBackup(_ context.Context, name string) (model.BackupOperationResult, error) {
	s.backup = name
	return model.BackupOperationResult{Success: true}, s.err
}

func resourcesMux(api *recordingResources) *http.ServeMux {
	mux := http.NewServeMux()
	mon := &MonitoringHandlers{API: api}
	mux.HandleFunc("GET /api/monitoring/{cluster}", mon.Status)
	mux.HandleFunc("POST /api/monitoring/{cluster}/install", mon.Install)
	mux.HandleFunc("DELETE /api/monitoring/{cluster}", mon.Uninstall)
	mux.HandleFunc("GET /api/monitoring/{cluster}/releases", mon.Releases)

	apps := &AppsHandlers{API: api}
	mux.HandleFunc("GET /api/apps", apps.Available)
	mux.HandleFunc("GET /api/apps/search", apps.Search)
	mux.HandleFunc("GET /api/apps/{cluster}", apps.Installed)
	mux.HandleFunc("POST /api/apps/{cluster}", apps.Install)
	mux.HandleFunc("DELETE /api/apps/{cluster}/{app}", apps.Uninstall)

	backups := &BackupHandlers{API: api}
	mux.HandleFunc("GET /api/backups", backups.List)
	mux.HandleFunc("POST /api/backups", backups.Create)
	mux.HandleFunc("GET /api/backups/{name}", backups.Get)
	mux.HandleFunc("POST /api/backups/{name}/restore", backups.Restore)
	mux.HandleFunc("DELETE /api/backups/{name}", backups.Delete)
	return mux
}

func serve(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestMonitoringHandlers(t *testing.T) {
	api := &recordingResources{}
	mux := resourcesMux(api)

	tests := []struct {
		method     string
		target     string
		wantStatus int
		wantBody   string
	}{
		{http.MethodPost, "/api/monitoring/dev/install", http.StatusAccepted, `"status":"installed"`},
		{http.MethodGet, "/api/monitoring/dev", http.StatusOK, `"status":"running"`},
		{http.MethodGet, "/api/monitoring/dev/releases", http.StatusOK, `"name":"prometheus"`},
		{http.MethodDelete, "/api/monitoring/dev", http.StatusOK, `"message":"uninstalled"`},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			api.cluster = ""
			rec := serve(mux, tt.method, tt.target, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.Equal(t, "dev", api.cluster)
		})
	}

	rec := serve(mux, http.MethodGet, "/api/monitoring/Not_Valid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, api.cluster, "backend is not called for an invalid name")
}

func TestMonitoringHandlers_BackendError(t *testing.T) {
	api := &recordingResources{err: apperrors.FromHTTPStatus(http.StatusNotFound, "cluster not found")}
	rec := serve(resourcesMux(api), http.MethodGet, "/api/monitoring/ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body["error"])
	assert.Equal(t, "API Error: 404 Not Found: cluster not found", body["message"])
}

func TestAppsHandlers_Search(t *testing.T) {
	tests := []struct {
		query          string
		wantMaxResults int
	}{
		{"?query=redis", defaultSearchResults},
		{"?query=redis&max_results=5", 5},
		{"?query=redis&max_results=0", 1},
		{"?query=redis&max_results=1000", maxSearchResults},
		{"?query=redis&max_results=abc", defaultSearchResults},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			api := &recordingResources{}
			rec := serve(resourcesMux(api), http.MethodGet, "/api/apps/search"+tt.query, "")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "redis", api.query)
			assert.Equal(t, tt.wantMaxResults, api.maxResults)
		})
	}
}

func TestAppsHandlers_Install(t *testing.T) {
	api := &recordingResources{}
	mux := resourcesMux(api)

	rec := serve(mux, http.MethodPost, "/api/apps/dev", `{"name":" redis ","helmChart":"bitnami/redis"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "dev", api.cluster)
	assert.Equal(t, model.AppInstallRequest{
		Name: "redis", DisplayName: "redis", Namespace: "redis", HelmChart: "bitnami/redis",
	}, api.install)

	rec = serve(mux, http.MethodPost, "/api/apps/dev", `{"name":"redis"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "helmChart is required")

	rec = serve(mux, http.MethodDelete, "/api/apps/dev/redis", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "redis", api.app)

	for _, target := range []string{"/api/apps", "/api/apps/dev"} {
		assert.Equal(t, http.StatusOK, serve(mux, http.MethodGet, target, "").Code, target)
	}
}

func TestBackupHandlers(t *testing.T) {
	api := &recordingResources{}
	mux := resourcesMux(api)

	rec := serve(mux, http.MethodGet, "/api/backups?cluster=dev", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev", api.cluster)

	rec = serve(mux, http.MethodGet, "/api/backups?cluster=Bad_Name", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"cluster"`)

	rec = serve(mux, http.MethodPost, "/api/backups", `{"cluster_name":"dev","backup_name":" nightly "}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, model.BackupCreateRequest{ClusterName: "dev", BackupName: "nightly"}, api.create)

	rec = serve(mux, http.MethodPost, "/api/backups", `{"cluster_name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(mux, http.MethodGet, "/api/backups/dev-20240115", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev-20240115", api.backup)

	rec = serve(mux, http.MethodGet, "/api/backups/..", "")
	assert.NotEqual(t, http.StatusOK, rec.Code)

	rec = serve(mux, http.MethodDelete, "/api/backups/dev-20240115", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBackupHandlers_Restore(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantTarget string
	}{
		{"no body", "", http.StatusAccepted, ""},
		{"target cluster", `{"target_cluster":"stage"}`, http.StatusAccepted, "stage"},
		{"invalid target", `{"target_cluster":"Stage!"}`, http.StatusBadRequest, ""},
		{"unknown field", `{"cluster":"stage"}`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &recordingResources{}
			rec := serve(resourcesMux(api), http.MethodPost, "/api/backups/dev-1/restore", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusAccepted {
				assert.Equal(t, "dev-1", api.backup)
				assert.Equal(t, tt.wantTarget, api.restore.TargetCluster)
			} else {
				assert.Empty(t, api.backup)
			}
		})
	}
}
