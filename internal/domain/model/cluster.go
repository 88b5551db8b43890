//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	maxClusterNameLen = 63
	maxNodeCount      = 10

	// DefaultNodeCount is used when a create request omits node_count.
	DefaultNodeCount  = 2
	// DefaultK8sVersion is used when a create request omits k8s_version.
	DefaultK8sVersion = "v1.26.0"
)

// ClusterStatus is the lifecycle state reported by the backend.
type ClusterStatus string

const (
	ClusterStatusRunning  ClusterStatus = "running"
	ClusterStatusStopped  ClusterStatus = "stopped"
	ClusterStatusCreating ClusterStatus = "creating"
	ClusterStatusError    ClusterStatus = "error"
	ClusterStatusUnknown  ClusterStatus = "unknown"
)

// Running reports whether the cluster counts as active.
func (s ClusterStatus) Running() bool { return s == ClusterStatusRunning }

var clusterNameRe = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

// ClusterInfo is a cluster as listed on the dashboard.
type ClusterInfo struct {
	Name   string        `json:"name"`
	Status ClusterStatus `json:"status"`
	Nodes  string        `json:"nodes,omitempty"`
}

// ClusterUpdate carries a partial update applied to a cached ClusterInfo.
type ClusterUpdate struct {
	Status *ClusterStatus `json:"status,omitempty"`
	Nodes  *string        `json:"nodes,omitempty"`
}

// HasUpdates reports whether any field is set.
func (u ClusterUpdate) HasUpdates() bool { return u.Status != nil || u.Nodes != nil }

// Apply returns c with every set field of u applied.
func (u ClusterUpdate) Apply(c ClusterInfo) ClusterInfo {
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.Nodes != nil {
		c.Nodes = *u.Nodes
	}
	return c
}

// ClusterCreateRequest is the payload for creating a local cluster.
type ClusterCreateRequest struct {
	ClusterName string `json:"cluster_name"`
	NodeCount   int    `json:"node_count"`
	K8sVersion  string `json:"k8s_version,omitempty"`
}

// Normalize trims input and fills defaults.
func (r *ClusterCreateRequest) Normalize() {
	r.ClusterName = strings.TrimSpace(r.ClusterName)
	r.K8sVersion = strings.TrimSpace(r.K8sVersion)
	if r.NodeCount == 0 {
		r.NodeCount = DefaultNodeCount
	}
	if r.K8sVersion == "" {
		r.K8sVersion = DefaultK8sVersion
	}
}

// Validate checks the request after normalization.
func (r *ClusterCreateRequest) Validate() error {
	r.Normalize()
	if err := ValidateClusterName(r.ClusterName); err != nil {
		return err
	}
	if r.NodeCount < 1 || r.NodeCount > maxNodeCount {
		return errors.New("node_count must be between 1 and 10")
	}
	if !strings.HasPrefix(r.K8sVersion, "v") {
		return errors.New("k8s_version must look like v1.26.0")
	}
	return nil
}

// ValidateClusterName enforces DNS-label cluster names.
func ValidateClusterName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("cluster_name is required and cannot be empty")
	}
	if len(name) > maxClusterNameLen {
		return errors.New("cluster_name cannot exceed 63 characters")
	}
	if !clusterNameRe.MatchString(name) {
		return errors.New("cluster_name must be lowercase alphanumeric or '-'")
	}
	return nil
}

// ClusterResponse is returned by create operations.
type ClusterResponse struct {
	ClusterName    string `json:"cluster_name"`
	Status         string `json:"status"`
	Message        string `json:"message"`
	KubeconfigPath string `json:"kubeconfig_path,omitempty"`
}

// ScaleRequest resizes a cluster's worker pool.
type ScaleRequest struct {
	NodeCount int `json:"node_count"`
}

// Validate checks the requested node count.
func (r ScaleRequest) Validate() error {
	if r.NodeCount < 1 || r.NodeCount > maxNodeCount {
		return errors.New("node_count must be between 1 and 10")
	}
	return nil
}

// MessageResponse is the generic `{"message": ...}` acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ClusterSnapshot is a cluster listing together with the time it was fetched.
type ClusterSnapshot struct {
	Clusters  []ClusterInfo `json:"clusters"`
	FetchedAt time.Time     `json:"fetched_at"`
}
