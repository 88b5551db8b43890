package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/clustermaster/clustermaster-ui/internal/domain/model"
	apperrors "github.com/clustermaster/clustermaster-ui/internal/errors"
)

// Health reports the backend's own health document.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, call{op: "health", method: http.MethodGet, path: c.api("health"), out: &out})
	return out, err
}

// Debug returns the backend's diagnostics for component ("docker" or "kind").
func (c *Client) Debug(ctx context.Context, component string) (map[string]any, error) {
	switch component {
	case "docker", "kind":
	default:
		return nil, apperrors.ValidationField("component", "component must be docker or kind")
	}
	var out map[string]any
	err := c.do(ctx, call{op: "debug." + component, method: http.MethodGet, path: c.api("debug", component), out: &out})
	return out, err
}

// InstallMonitoring installs the Prometheus/Grafana stack into cluster.
func (c *Client) InstallMonitoring(ctx context.Context, cluster string) (model.MonitoringStatus, error) {
	var out model.MonitoringStatus
	err := c.do(ctx, call{
		op:     "monitoring.install",
		method: http.MethodPost,
		path:   c.api("monitoring", "install", cluster),
		out:    &out,
	})
	return out, err
}

// MonitoringStatus reports the monitoring stack of cluster.
func (c *Client) MonitoringStatus(ctx context.Context, cluster string) (model.MonitoringStatus, error) {
	var out model.MonitoringStatus
	err := c.do(ctx, call{
		op:     "monitoring.status",
		method: http.MethodGet,
		path:   c.api("monitoring", "status", cluster),
		out:    &out,
	})
	return out, err
}

// UninstallMonitoring removes the monitoring stack from cluster.
func (c *Client) UninstallMonitoring(ctx context.Context, cluster string) (model.MessageResponse, error) {
	return c.message(ctx, call{
		op:     "monitoring.uninstall",
		method: http.MethodDelete,
		path:   c.api("monitoring", "uninstall", cluster),
	})
}

// HelmReleases lists the Helm releases installed in cluster.
func (c *Client) HelmReleases(ctx context.Context, cluster string) (model.HelmReleases, error) {
	var out model.HelmReleases
	err := c.do(ctx, call{
		op:     "monitoring.releases",
		method: http.MethodGet,
		path:   c.api("monitoring", "releases", cluster),
		out:    &out,
	})
	return out, err
}

// InstallApp installs a Helm-packaged application into cluster.
func (c *Client) InstallApp(ctx context.Context, cluster string, req model.AppInstallRequest) (model.AppOperationResult, error) {
	return c.appOperation(ctx, call{
		op:     "apps.install",
		method: http.MethodPost,
		path:   c.api("apps", "install", cluster),
		body:   req,
	})
}

// InstalledApps lists the applications installed in cluster.
func (c *Client) InstalledApps(ctx context.Context, cluster string) (model.InstalledApps, error) {
	var out model.InstalledApps
	err := c.do(ctx, call{op: "apps.installed", method: http.MethodGet, path: c.api("apps", "installed", cluster), out: &out})
	return out, err
}

// UninstallApp removes app from cluster.
func (c *Client) UninstallApp(ctx context.Context, cluster, app string) (model.AppOperationResult, error) {
	return c.appOperation(ctx, call{
		op:     "apps.uninstall",
		method: http.MethodDelete,
		path:   c.api("apps", "uninstall", cluster, app),
	})
}

// AvailableApps returns the curated application catalog.
func (c *Client) AvailableApps(ctx context.Context) (model.AppCatalog, error) {
	var out model.AppCatalog
	err := c.do(ctx, call{op: "apps.available", method: http.MethodGet, path: c.api("apps", "available"), out: &out})
	return out, err
}

// SearchCharts searches the configured Helm repositories.
func (c *Client) SearchCharts(ctx context.Context, query string, maxResults int) (model.ChartSearch, error) {
	if err := model.ValidateSearchQuery(query); err != nil {
		return model.ChartSearch{}, apperrors.ValidationField("query", err.Error())
	}
	q := url.Values{"query": {query}}
	if maxResults > 0 {
		q.Set("max_results", strconv.Itoa(maxResults))
	}
	var out model.ChartSearch
	err := c.do(ctx, call{op: "apps.search", method: http.MethodGet, path: c.api("apps", "search"), query: q, out: &out})
	return out, err
}

func (c *Client) appOperation(ctx context.Context, cl call) (model.AppOperationResult, error) {
	var out model.AppOperationResult
	cl.out = &out
	if err := c.do(ctx, cl); err != nil {
		return model.AppOperationResult{}, err
	}
	if !out.Success && out.Error != "" {
		return out, apperrors.Internal(cl.op + ": " + out.Error)
	}
	return out, nil
}

// ListBackups lists backups, optionally restricted to one cluster.
func (c *Client) ListBackups(ctx context.Context, cluster string) (model.BackupList, error) {
	var q url.Values
	if cluster != "" {
		q = url.Values{"cluster_name": {cluster}}
	}
	var out model.BackupList
	err := c.do(ctx, call{op: "backups.list", method: http.MethodGet, path: c.api("backups"), query: q, out: &out})
	return out, err
}

// GetBackup returns one backup's metadata.
func (c *Client) GetBackup(ctx context.Context, name string) (model.Backup, error) {
	var out struct {
		model.Backup
		Wrapped *model.Backup `json:"backup,omitempty"`
	}
	if err := c.do(ctx, call{op: "backups.get", method: http.MethodGet, path: c.api("backups", name), out: &out}); err != nil {
		return model.Backup{}, err
	}
	if out.Wrapped != nil {
		return *out.Wrapped, nil
	}
	return out.Backup, nil
}

// CreateBackup snapshots a cluster.
func (c *Client) CreateBackup(ctx context.Context, req model.BackupCreateRequest) (model.BackupOperationResult, error) {
	var out model.BackupOperationResult
	err := c.do(ctx, call{op: "backups.create", method: http.MethodPost, path: c.api("backups", "create"), body: req, out: &out})
	return out, err
}

// RestoreBackup restores backup name, into req.TargetCluster when set.
func (c *Client) RestoreBackup(ctx context.Context, name string, req model.RestoreRequest) (model.BackupOperationResult, error) {
	var out model.BackupOperationResult
	err := c.do(ctx, call{
		op:     "backups.restore",
		method: http.MethodPost,
		path:   c.api("backups", name, "restore"),
		body:   req,
		out:    &out,
	})
	return out, err
}

// DeleteBackup removes backup name.
func (c *Client) DeleteBackup(ctx context.Context, name string) (model.BackupOperationResult, error) {
	var out model.BackupOperationResult
	err := c.do(ctx, call{op: "backups.delete", method: http.MethodDelete, path: c.api("backups", name), out: &out})
	return out, err
}

// RecentActivity returns the newest limit entries of the operation log.
func (c *Client) RecentActivity(ctx context.Context, limit int) (model.ActivityLogResponse, error) {
	if limit <= 0 {
		limit = model.DefaultActivityLimit
	}
	var out model.ActivityLogResponse
	err := c.do(ctx, call{
		op:     "activity.recent",
		method: http.MethodGet,
		path:   c.api("activity-log"),
		query:  url.Values{"limit": {strconv.Itoa(limit)}},
		out:    &out,
	})
	if err != nil {
		return model.ActivityLogResponse{}, err
	}
	if !out.Success && out.Error != "" {
		return out, apperrors.Internal("activity log: " + out.Error)
	}
	return out, nil
}
