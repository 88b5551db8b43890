//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
)

// MinSearchQueryLen is the shortest chart search the backend accepts.
const MinSearchQueryLen = 2

// AppInstallRequest installs a Helm-packaged application.
type AppInstallRequest struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"displayName"`
	Namespace   string         `json:"namespace"`
	HelmChart   string         `json:"helmChart"`
	Values      map[string]any `json:"values,omitempty"`
}

// Validate checks required fields.
func (r *AppInstallRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Namespace = strings.TrimSpace(r.Namespace)
	r.HelmChart = strings.TrimSpace(r.HelmChart)
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.HelmChart == "" {
		return errors.New("helmChart is required")
	}
	if r.Namespace == "" {
		r.Namespace = r.Name
	}
	if r.DisplayName == "" {
		r.DisplayName = r.Name
	}
	return nil
}

// InstalledApp is an application currently deployed to a cluster.
type InstalledApp struct {
	Name       string `json:"name"`
	Namespace  string `json:"namespace"`
	Status     string `json:"status"`
	Chart      string `json:"chart,omitempty"`
	AppVersion string `json:"app_version,omitempty"`
}

// InstalledApps is the installed-apps listing for a cluster.
type InstalledApps struct {
	Success bool           `json:"success"`
	Apps    []InstalledApp `json:"apps"`
}

// AvailableApp is one entry in the application catalogue.
type AvailableApp struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Icon        string `json:"icon,omitempty"`
}

// AppCategory groups catalogue entries.
type AppCategory struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"displayName"`
	Apps        []AvailableApp `json:"apps"`
}

// AppCatalog is the available-apps response.
type AppCatalog struct {
	Success    bool          `json:"success"`
	Categories []AppCategory `json:"categories"`
}

// ChartSearchResult is a Helm chart matching a search.
type ChartSearchResult struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	AppVersion  string `json:"app_version,omitempty"`
	Description string `json:"description,omitempty"`
}

// ChartSearch is the search response.
type ChartSearch struct {
	Success bool                `json:"success"`
	Results []ChartSearchResult `json:"results"`
}

// AppOperationResult is returned by install/uninstall.
type AppOperationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ValidateSearchQuery rejects queries the backend would refuse.
func ValidateSearchQuery(q string) error {
	if len(strings.TrimSpace(q)) < MinSearchQueryLen {
		return errors.New("query must be at least 2 characters")
	}
	return nil
}
