//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// DefaultActivityLimit is the page size used when none is requested.
const DefaultActivityLimit = 10

// ActivityStatus is the state of a logged operation.
type ActivityStatus string

const (
	ActivityStatusInProgress ActivityStatus = "in_progress"
	ActivityStatusSuccess    ActivityStatus = "success"
	ActivityStatusFailed     ActivityStatus = "failed"
)

// ActivityLog is one backend operation (cluster create, app install, ...).
type ActivityLog struct {
	ID            string         `json:"id"`
	Timestamp     time.Time      `json:"timestamp"`
	OperationType string         `json:"operation_type"`
	ClusterName   string         `json:"cluster_name,omitempty"`
	Details       string         `json:"details,omitempty"`
	Status        ActivityStatus `json:"status"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty"`
}

// ActivityLogResponse wraps the activity listing.
type ActivityLogResponse struct {
	Success bool          `json:"success"`
	Logs    []ActivityLog `json:"logs"`
	Error   string        `json:"error,omitempty"`
}
