package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/clustermaster/clustermaster-ui/internal/domain/model"
	apperrors "github.com/clustermaster/clustermaster-ui/internal/errors"
	"github.com/clustermaster/clustermaster-ui/internal/ports"
	"github.com/clustermaster/clustermaster-ui/internal/service"
)

// ClusterHandlers serves the cluster list from the ClusterStore and forwards
// lifecycle operations to the backend, keeping the store in step.
type ClusterHandlers struct {
	Store  *service.ClusterStore
	API    ports.ClusterAPI
	Logger *slog.Logger
}

func (h *ClusterHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// List handles GET /api/clusters[?refresh=true&silent=true].
// The store is fetched on first use or when refresh is requested.
func (h *ClusterHandlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	st := h.Store.State()
	if q.Get("refresh") == "true" || st.LastUpdate == nil {
		if _, err := h.Store.Fetch(r.Context(), q.Get("silent") == "true"); err != nil && h.Store.Count() == 0 {
			WriteAppError(w, err, "list_failed")
			return
		}
		st = h.Store.State()
	}
	WriteJSON(w, http.StatusOK, st)
}

// Summary handles GET /api/clusters/summary.
func (h *ClusterHandlers) Summary(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]int{
		"total":    h.Store.Count(),
		"active":   len(h.Store.Active()),
		"inactive": len(h.Store.Inactive()),
	})
}

// Get handles GET /api/clusters/{name}. The fresh status is written back to the store.
func (h *ClusterHandlers) Get(w http.ResponseWriter, r *http.Request) {
	name, ok := clusterName(w, r)
	if !ok {
		return
	}
	info, err := h.API.ClusterStatus(r.Context(), name)
	if err != nil {
		WriteAppError(w, err, "status_failed")
		return
	}
	upd := model.ClusterUpdate{Status: &info.Status}
	if info.Nodes != "" {
		upd.Nodes = &info.Nodes
	}
	h.Store.Update(name, upd)
	WriteJSON(w, http.StatusOK, info)
}

// Create handles POST /api/clusters.
func (h *ClusterHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ClusterCreateRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteAppError(w, apperrors.Validation(err.Error()), "validation_failed")
		return
	}

	resp, err := h.API.CreateCluster(r.Context(), req)
	if err != nil {
		WriteAppError(w, err, "create_failed")
		return
	}
	h.logger().InfoContext(r.Context(), "cluster create requested",
		"cluster", resp.ClusterName, "nodes", req.NodeCount, "k8s_version", req.K8sVersion)
	h.refresh(r.Context())
	WriteJSON(w, http.StatusCreated, resp)
}

// Delete handles DELETE /api/clusters/{name}.
func (h *ClusterHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	name, ok := clusterName(w, r)
	if !ok {
		return
	}
	resp, err := h.API.DeleteCluster(r.Context(), name)
	if err != nil {
		WriteAppError(w, err, "delete_failed")
		return
	}
	h.Store.Remove(name)
	h.logger().InfoContext(r.Context(), "cluster deleted", "cluster", name)
	WriteJSON(w, http.StatusOK, resp)
}

// Scale handles POST /api/clusters/{name}/scale.
func (h *ClusterHandlers) Scale(w http.ResponseWriter, r *http.Request) {
	name, ok := clusterName(w, r)
	if !ok {
		return
	}
	var req model.ScaleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteAppError(w, apperrors.ValidationField("node_count", err.Error()), "validation_failed")
		return
	}

	resp, err := h.API.ScaleCluster(r.Context(), name, req)
	if err != nil {
		WriteAppError(w, err, "scale_failed")
		return
	}
	nodes := strconv.Itoa(req.NodeCount)
	h.Store.Update(name, model.ClusterUpdate{Nodes: &nodes})
	WriteJSON(w, http.StatusOK, resp)
}

func (h *ClusterHandlers) refresh(ctx context.Context) {
	if _, err := h.Store.Fetch(ctx, true); err != nil {
		h.logger().WarnContext(ctx, "refreshing clusters after change failed", "error", err)
	}
}

// clusterName reads and validates the {name} (or {cluster}) path value.
func clusterName(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := r.PathValue("name")
	if name == "" {
		name = r.PathValue("cluster")
	}
	if err := model.ValidateClusterName(name); err != nil {
		WriteAppError(w, apperrors.ValidationField("cluster_name", err.Error()), "invalid_path")
		return "", false
	}
	return name, true
}
