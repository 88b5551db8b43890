package httpx

import (
	"net/http"
	"strconv"
)

const maxHistoryLimit = 100

// boundedIntQuery reads an integer query param clamped to [lo, hi]. Missing or
// malformed values yield def, which is returned unclamped.
func boundedIntQuery(r *http.Request, key string, def, lo, hi int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return min(max(v, lo), hi)
}
