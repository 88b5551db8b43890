package testutil

import (
	"fmt"
	"time"

	"github.com/clustermaster/clustermaster-ui/internal/domain/model"
)

// NotificationBuilder provides a fluent interface for building notifications in tests.
type NotificationBuilder struct {
	n model.Notification
}

// NewNotification creates a builder with sensible defaults.
func NewNotification(id string) *NotificationBuilder {
	return &NotificationBuilder{n: model.Notification{
		ID:        id,
		Type:      "operation",
		Severity:  model.SeverityInfo,
		Title:     "Notification " + id,
		Message:   "message " + id,
		Timestamp: TestTime(),
	}}
}

// WithSeverity sets the severity.
func (b *NotificationBuilder) WithSeverity(s model.Severity) *NotificationBuilder {
	b.n.Severity = s
	return b
}

// WithCluster sets metadata.cluster.
func (b *NotificationBuilder) WithCluster(cluster string) *NotificationBuilder {
	if b.n.Metadata == nil {
		b.n.Metadata = map[string]any{}
	}
	b.n.Metadata["cluster"] = cluster
	return b
}

// Read marks the notification as read.
func (b *NotificationBuilder) Read() *NotificationBuilder {
	b.n.Read = true
	return b
}

// At sets the timestamp.
func (b *NotificationBuilder) At(ts time.Time) *NotificationBuilder {
	b.n.Timestamp = ts
	return b
}

// Build returns the notification.
func (b *NotificationBuilder) Build() model.Notification {
	return b.n
}

// Notifications returns n notifications with ids prefix-0..prefix-(n-1).
func Notifications(prefix string, n int) []model.Notification {
	out := make([]model.Notification, n)
	for i := range n {
		out[i] = NewNotification(fmt.Sprintf("%s-%d", prefix, i)).Build()
	}
	return out
}

// Clusters returns ClusterInfo values for name:status pairs.
func Clusters(pairs ...string) []model.ClusterInfo {
	out := make([]model.ClusterInfo, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, model.ClusterInfo{Name: pairs[i], Status: model.ClusterStatus(pairs[i+1])})
	}
	return out
}
