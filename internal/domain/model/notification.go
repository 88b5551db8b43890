//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

const (
	// MaxNotifications bounds the in-memory notification list.
	MaxNotifications    = 50
	// RecentNotifications is the size of the "recent" view.
	RecentNotifications = 10
	// DefaultHistoryLimit is used when history is fetched without a limit.
	DefaultHistoryLimit = 20
)

// Severity classifies a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Valid reports whether the severity is known.
func (s Severity) Valid() bool {
	switch s {
	case SeveritySuccess, SeverityError, SeverityWarning, SeverityInfo:
		return true
	default:
		return false
	}
}

// Notification is a real-time event pushed by the backend.
type Notification struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Severity  Severity       `json:"severity"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Read      bool           `json:"read"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Cluster returns metadata.cluster when present.
func (n Notification) Cluster() string {
	if v, ok := n.Metadata["cluster"].(string); ok {
		return v
	}
	return ""
}

// NotificationHistory wraps the history response.
type NotificationHistory struct {
	Success       bool           `json:"success"`
	Notifications []Notification `json:"notifications"`
}
