package httpx

import (
	"net/http"
	"strings"

	"github.com/clustermaster/clustermaster-ui/internal/domain/model"
	apperrors "github.com/clustermaster/clustermaster-ui/internal/errors"
	"github.com/clustermaster/clustermaster-ui/internal/ports"
)

const (
	defaultSearchResults = 20
	maxSearchResults     = 100
)

// AppsHandlers forwards application catalogue operations to the backend.
type AppsHandlers struct {
	API ports.AppsAPI
}

// Available handles GET /api/apps.
func (h *AppsHandlers) Available(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.API.AvailableApps(r.Context())
	if err != nil {
		WriteAppError(w, err, "catalog_failed")
		return
	}
	WriteJSON(w, http.StatusOK, catalog)
}

// Search handles GET /api/apps/search?query=&max_results=.
func (h *AppsHandlers) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	maxResults := boundedIntQuery(r, "max_results", defaultSearchResults, 1, maxSearchResults)

	res, err := h.API.SearchCharts(r.Context(), query, maxResults)
	if err != nil {
		WriteAppError(w, err, "search_failed")
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// Installed handles GET /api/apps/{cluster}.
func (h *AppsHandlers) Installed(w http.ResponseWriter, r *http.Request) {
	cluster, ok := clusterName(w, r)
	if !ok {
		return
	}
	apps, err := h.API.InstalledApps(r.Context(), cluster)
	if err != nil {
		WriteAppError(w, err, "installed_failed")
		return
	}
	WriteJSON(w, http.StatusOK, apps)
}

// Install handles POST /api/apps/{cluster}.
func (h *AppsHandlers) Install(w http.ResponseWriter, r *http.Request) {
	cluster, ok := clusterName(w, r)
	if !ok {
		return
	}
	var req model.AppInstallRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteAppError(w, apperrors.Validation(err.Error()), "validation_failed")
		return
	}
	res, err := h.API.InstallApp(r.Context(), cluster, req)
	if err != nil {
		WriteAppError(w, err, "install_failed")
		return
	}
	WriteJSON(w, http.StatusAccepted, res)
}

// Uninstall handles DELETE /api/apps/{cluster}/{app}.
func (h *AppsHandlers) Uninstall(w http.ResponseWriter, r *http.Request) {
	cluster, ok := clusterName(w, r)
	if !ok {
		return
	}
	app := strings.TrimSpace(r.PathValue("app"))
	if app == "" {
		WriteAppError(w, apperrors.ValidationField("app", "app name is required"), "invalid_path")
		return
	}
	res, err := h.API.UninstallApp(r.Context(), cluster, app)
	if err != nil {
		WriteAppError(w, err, "uninstall_failed")
		return
	}
	WriteJSON(w, http.StatusOK, res)
}
