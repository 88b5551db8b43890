package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/clustermaster/clustermaster-ui/internal/domain/model"
	apperrors "github.com/clustermaster/clustermaster-ui/internal/errors"
	"github.com/clustermaster/clustermaster-ui/internal/ports"
)

// BackupHandlers forwards backup operations to the backend.
type BackupHandlers struct {
	API ports.BackupAPI
}

// List handles GET /api/backups[?cluster=name].
func (h *BackupHandlers) List(w http.ResponseWriter, r *http.Request) {
	cluster := strings.TrimSpace(r.URL.Query().Get("cluster"))
	if cluster != "" {
		if err := model.ValidateClusterName(cluster); err != nil {
			WriteAppError(w, apperrors.ValidationField("cluster", err.Error()), "invalid_query")
			return
		}
	}
	list, err := h.API.ListBackups(r.Context(), cluster)
	if err != nil {
		WriteAppError(w, err, "list_failed")
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

// Get handles GET /api/backups/{name}.
func (h *BackupHandlers) Get(w http.ResponseWriter, r *http.Request) {
	name, ok := backupName(w, r)
	if !ok {
		return
	}
	b, err := h.API.GetBackup(r.Context(), name)
	if err != nil {
		WriteAppError(w, err, "get_failed")
		return
	}
	WriteJSON(w, http.StatusOK, b)
}

// Create handles POST /api/backups.
func (h *BackupHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.BackupCreateRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteAppError(w, apperrors.ValidationField("cluster_name", err.Error()), "validation_failed")
		return
	}
	res, err := h.API.CreateBackup(r.Context(), req)
	if err != nil {
		WriteAppError(w, err, "create_failed")
		return
	}
	WriteJSON(w, http.StatusCreated, res)
}

// Restore handles POST /api/backups/{name}/restore with an optional body.
func (h *BackupHandlers) Restore(w http.ResponseWriter, r *http.Request) {
	name, ok := backupName(w, r)
	if !ok {
		return
	}
	var req model.RestoreRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return
	}
	if req.TargetCluster != "" {
		if err := model.ValidateClusterName(req.TargetCluster); err != nil {
			WriteAppError(w, apperrors.ValidationField("target_cluster", err.Error()), "validation_failed")
			return
		}
	}
	res, err := h.API.RestoreBackup(r.Context(), name, req)
	if err != nil {
		WriteAppError(w, err, "restore_failed")
		return
	}
	WriteJSON(w, http.StatusAccepted, res)
}

// Delete handles DELETE /api/backups/{name}.
func (h *BackupHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	name, ok := backupName(w, r)
	if !ok {
		return
	}
	res, err := h.API.DeleteBackup(r.Context(), name)
	if err != nil {
		WriteAppError(w, err, "delete_failed")
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func backupName(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := r.PathValue("name")
	if err := model.ValidateBackupName(name); err != nil {
		WriteAppError(w, apperrors.ValidationField("backup_name", err.Error()), "invalid_path")
		return "", false
	}
	return name, true
}
