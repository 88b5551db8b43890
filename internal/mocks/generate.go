// Package mocks provides mock implementations of the backend ports for tests.
//
// The mocks are produced by go.uber.org/mock (gomock) and checked in. To regenerate
// after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	api := mocks.NewMockClusterAPI(ctrl)
//	api.EXPECT().ListClusters(gomock.Any()).Return(clusters, nil)
package mocks

// Generate mock for ClusterAPI interface from internal/ports package.
// Methods: ListClusters, ClusterStatus, CreateCluster, DeleteCluster, ScaleCluster
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cluster_api_mock.go github.com/clustermaster/clustermaster-ui/internal/ports ClusterAPI

// Generate mock for ActivityAPI interface from internal/ports package.
// Methods: RecentActivity
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=activity_api_mock.go github.com/clustermaster/clustermaster-ui/internal/ports ActivityAPI

// Generate mock for NotificationAPI interface from internal/ports package.
// Methods: NotificationHistory, MarkNotificationRead, MarkAllNotificationsRead, DeleteNotification, StreamNotifications
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=notification_api_mock.go github.com/clustermaster/clustermaster-ui/internal/ports NotificationAPI
