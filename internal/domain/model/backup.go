//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

// BackupType distinguishes operator-triggered from scheduled backups.
type BackupType string

const (
	BackupTypeManual    BackupType = "manual"
	BackupTypeScheduled BackupType = "scheduled"
)

// Backup is a stored cluster backup.
type Backup struct {
	BackupName     string     `json:"backup_name"`
	ClusterName    string     `json:"cluster_name"`
	CreatedAt      time.Time  `json:"created_at"`
	SizeMB         float64    `json:"size_mb"`
	ResourcesCount int        `json:"resources_count"`
	BackupType     BackupType `json:"backup_type"`
	FilePath       string     `json:"file_path,omitempty"`
}

// BackupList is the backup listing response.
type BackupList struct {
	Success bool     `json:"success"`
	Backups []Backup `json:"backups"`
}

// BackupCreateRequest starts a backup of a cluster.
type BackupCreateRequest struct {
	ClusterName string `json:"cluster_name"`
	BackupName  string `json:"backup_name,omitempty"`
}

// Validate checks the cluster name.
func (r *BackupCreateRequest) Validate() error {
	r.ClusterName = strings.TrimSpace(r.ClusterName)
	r.BackupName = strings.TrimSpace(r.BackupName)
	return ValidateClusterName(r.ClusterName)
}

// RestoreRequest restores a backup, optionally into a different cluster.
type RestoreRequest struct {
	TargetCluster string `json:"target_cluster,omitempty"`
}

// BackupOperationResult is returned by create, restore and delete.
type BackupOperationResult struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message,omitempty"`
	BackupName string  `json:"backup_name,omitempty"`
	Backup     *Backup `json:"backup,omitempty"`
}

// ValidateBackupName rejects names that could escape the backup directory.
func ValidateBackupName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("backup_name is required")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return errors.New("backup_name contains invalid characters")
	}
	return nil
}
