//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// MonitoringPod is a pod belonging to the monitoring stack.
type MonitoringPod struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Ready  bool   `json:"ready"`
}

// MonitoringComponent summarises one component (prometheus, grafana).
type MonitoringComponent struct {
	Pods     []MonitoringPod `json:"pods"`
	PodCount int             `json:"pod_count"`
	Running  int             `json:"running"`
}

// ServicePort is an exposed port of a monitoring service.
type ServicePort struct {
	Port     int `json:"port"`
	NodePort int `json:"nodePort,omitempty"`
}

// MonitoringService describes a Kubernetes service of the monitoring stack.
type MonitoringService struct {
	Type  string        `json:"type"`
	Ports []ServicePort `json:"ports"`
}

// MonitoringStatus is the monitoring stack state for one cluster.
// Status is "not_installed", "installed" or "running".
type MonitoringStatus struct {
	ClusterName string                       `json:"cluster_name"`
	Namespace   string                       `json:"namespace"`
	Status      string                       `json:"status"`
	Message     string                       `json:"message,omitempty"`
	Prometheus  *MonitoringComponent         `json:"prometheus,omitempty"`
	Grafana     *MonitoringComponent         `json:"grafana,omitempty"`
	Services    map[string]MonitoringService `json:"services,omitempty"`
	AccessInfo  map[string]string            `json:"access_info,omitempty"`
}

// Installed reports whether any monitoring component is present.
func (s MonitoringStatus) Installed() bool {
	return s.Status != "" && s.Status != "not_installed"
}

// HelmRelease is a release installed on a cluster.
type HelmRelease struct {
	Name       string `json:"name"`
	Namespace  string `json:"namespace"`
	Revision   string `json:"revision,omitempty"`
	Status     string `json:"status"`
	Chart      string `json:"chart"`
	AppVersion string `json:"app_version,omitempty"`
	Updated    string `json:"updated,omitempty"`
}

// HelmReleases lists releases for a cluster.
type HelmReleases struct {
	ClusterName string        `json:"cluster_name"`
	Namespace   string        `json:"namespace"`
	Releases    []HelmRelease `json:"releases"`
}
