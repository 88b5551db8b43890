package ports

import (
	"context"

	"github.com/clustermaster/clustermaster-ui/internal/domain/model"
)

// ClusterAPI manages local Kubernetes clusters on the backend.
type ClusterAPI interface {
	ListClusters(ctx context.Context) ([]model.ClusterInfo, error)
	ClusterStatus(ctx context.Context, name string) (model.ClusterInfo, error)
	CreateCluster(ctx context.Context, req model.ClusterCreateRequest) (model.ClusterResponse, error)
	DeleteCluster(ctx context.Context, name string) (model.MessageResponse, error)
	ScaleCluster(ctx context.Context, name string, req model.ScaleRequest) (model.MessageResponse, error)
}

// MonitoringAPI manages the Prometheus/Grafana stack of a cluster.
type MonitoringAPI interface {
	InstallMonitoring(ctx context.Context, cluster string) (model.MonitoringStatus, error)
	MonitoringStatus(ctx context.Context, cluster string) (model.MonitoringStatus, error)
	UninstallMonitoring(ctx context.Context, cluster string) (model.MessageResponse, error)
	HelmReleases(ctx context.Context, cluster string) (model.HelmReleases, error)
}

// AppsAPI manages Helm-packaged applications.
type AppsAPI interface {
	InstallApp(ctx context.Context, cluster string, req model.AppInstallRequest) (model.AppOperationResult, error)
	InstalledApps(ctx context.Context, cluster string) (model.InstalledApps, error)
	UninstallApp(ctx context.Context, cluster, app string) (model.AppOperationResult, error)
	AvailableApps(ctx context.Context) (model.AppCatalog, error)
	SearchCharts(ctx context.Context, query string, maxResults int) (model.ChartSearch, error)
}

// BackupAPI manages cluster backups.
type BackupAPI interface {
	ListBackups(ctx context.Context, cluster string) (model.BackupList, error)
	GetBackup(ctx context.Context, name string) (model.Backup, error)
	CreateBackup(ctx context.Context, req model.BackupCreateRequest) (model.BackupOperationResult, error)
	RestoreBackup(ctx context.Context, name string, req model.RestoreRequest) (model.BackupOperationResult, error)
	DeleteBackup(ctx context.Context, name string) (model.BackupOperationResult, error)
}

// ActivityAPI reads the backend's operation log.
type ActivityAPI interface {
	RecentActivity(ctx context.Context, limit int) (model.ActivityLogResponse, error)
}

// NotificationAPI reads and updates backend notifications.
type NotificationAPI interface {
	NotificationHistory(ctx context.Context, limit int) (model.NotificationHistory, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
	// StreamNotifications blocks, calling fn for each pushed notification, until the
	// stream ends or ctx is done. onOpen is called once the stream is established.
	StreamNotifications(ctx context.Context, userID string, onOpen func(), fn func(model.Notification)) error
}

// HealthAPI reports backend reachability.
type HealthAPI interface {
	Health(ctx context.Context) (map[string]any, error)
	Debug(ctx context.Context, component string) (map[string]any, error)
}

// BackendAPI is the full backend surface.
type BackendAPI interface {
	ClusterAPI
	MonitoringAPI
	AppsAPI
	BackupAPI
	ActivityAPI
	NotificationAPI
	HealthAPI
}
