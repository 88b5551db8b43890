package httpx

import (
	"net/http"

	"github.com/clustermaster/clustermaster-ui/internal/ports"
)

// MonitoringHandlers forwards monitoring stack operations to the backend.
type MonitoringHandlers struct {
	API ports.MonitoringAPI
}

// Install handles POST /api/monitoring/{cluster}/install.
func (h *MonitoringHandlers) Install(w http.ResponseWriter, r *http.Request) {
	cluster, ok := clusterName(w, r)
	if !ok {
		return
	}
	st, err := h.API.InstallMonitoring(r.Context(), cluster)
	if err != nil {
		WriteAppError(w, err, "install_failed")
		return
	}
	WriteJSON(w, http.StatusAccepted, st)
}

// Status handles GET /api/monitoring/{cluster}.
func (h *MonitoringHandlers) Status(w http.ResponseWriter, r *http.Request) {
	cluster, ok := clusterName(w, r)
	if !ok {
		return
	}
	st, err := h.API.MonitoringStatus(r.Context(), cluster)
	if err != nil {
		WriteAppError(w, err, "status_failed")
		return
	}
	WriteJSON(w, http.StatusOK, st)
}

// Uninstall handles DELETE /api/monitoring/{cluster}.
func (h *MonitoringHandlers) Uninstall(w http.ResponseWriter, r *http.Request) {
	cluster, ok := clusterName(w, r)
	if !ok {
		return
	}
	resp, err := h.API.UninstallMonitoring(r.Context(), cluster)
	if err != nil {
		WriteAppError(w, err, "uninstall_failed")
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Releases handles GET /api/monitoring/{cluster}/releases.
func (h *MonitoringHandlers) Releases(w http.ResponseWriter, r *http.Request) {
	cluster, ok := clusterName(w, r)
	if !ok {
		return
	}
	rel, err := h.API.HelmReleases(r.Context(), cluster)
	if err != nil {
		WriteAppError(w, err, "releases_failed")
		return
	}
	WriteJSON(w, http.StatusOK, rel)
}
