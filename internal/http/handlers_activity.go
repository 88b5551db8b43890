package httpx

import (
	"net/http"

	"github.com/clustermaster/clustermaster-ui/internal/service"
)

const maxActivityLimit = 100

// ActivityHandlers serves the operation log through the ActivityStore.
type ActivityHandlers struct {
	Store *service.ActivityStore
}

// List handles GET /api/activity[?limit=n]. Each call refetches; a failed
// fetch still answers with the previous entries when there are any.
func (h *ActivityHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit := boundedIntQuery(r, "limit", 0, 0, maxActivityLimit)
	if _, err := h.Store.Fetch(r.Context(), limit); err != nil && len(h.Store.State().Logs) == 0 {
		WriteAppError(w, err, "activity_failed")
		return
	}
	WriteJSON(w, http.StatusOK, h.Store.State())
}
