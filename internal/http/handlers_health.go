package httpx

import (
	"io"
	"net/http"

	"github.com/clustermaster/clustermaster-ui/internal/ports"
)

const healthResponse = `{"status":"ok"}`

// healthHandler returns a simple 200 OK status for readiness/liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}

// BackendHealthHandlers proxies the backend's health and debug endpoints.
type BackendHealthHandlers struct {
	API ports.HealthAPI
}

// Health handles GET /api/health.
func (h *BackendHealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	out, err := h.API.Health(r.Context())
	if err != nil {
		WriteAppError(w, err, "backend_health_failed")
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

// Debug handles GET /api/debug/{component}.
func (h *BackendHealthHandlers) Debug(w http.ResponseWriter, r *http.Request) {
	out, err := h.API.Debug(r.Context(), r.PathValue("component"))
	if err != nil {
		WriteAppError(w, err, "backend_debug_failed")
		return
	}
	WriteJSON(w, http.StatusOK, out)
}
