package httpx

import (
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"

	"github.com/clustermaster/clustermaster-ui/internal/gate"
)

// PageHandlers serves dashboard pages. With a StaticDir the built single-page
// app is served for every page route; without one each page answers with a
// JSON descriptor of the route and the signed-in operator.
type PageHandlers struct {
	StaticDir  string
	SignInPath string
	Routes     gate.RouteTable
}

type pageDescriptor struct {
	Path         string          `json:"path"`
	RequiresAuth bool            `json:"requires_auth"`
	Operator     *gate.Principal `json:"operator,omitempty"`
	LoginURL     string          `json:"login_url,omitempty"`
}

// Page handles the dashboard page routes.
func (h *PageHandlers) Page(w http.ResponseWriter, r *http.Request) {
	if h.serveIndex(w, r) {
		return
	}
	route := h.Routes.Resolve(r.URL.Path)
	desc := pageDescriptor{Path: route.Path, RequiresAuth: route.RequiresAuth}
	if p, ok := PrincipalFromContext(r.Context()); ok {
		desc.Operator = &p
	}
	WriteJSON(w, http.StatusOK, desc)
}

// SignIn handles the sign-in page. The descriptor carries the login URL that
// returns the operator to redirect_uri afterwards.
func (h *PageHandlers) SignIn(w http.ResponseWriter, r *http.Request) {
	if h.serveIndex(w, r) {
		return
	}
	q := url.Values{}
	q.Set("redirect_uri", safeRedirectPath(r.URL.Query().Get("redirect_uri")))
	desc := pageDescriptor{
		Path:     r.URL.Path,
		LoginURL: (&url.URL{Path: "/auth/login", RawQuery: q.Encode()}).String(),
	}
	if p, ok := PrincipalFromContext(r.Context()); ok {
		desc.Operator = &p
	}
	WriteJSON(w, http.StatusOK, desc)
}

// Assets serves /assets/* from StaticDir.
func (h *PageHandlers) Assets() http.Handler {
	if h.StaticDir == "" {
		return http.NotFoundHandler()
	}
	fs := http.FileServer(http.Dir(filepath.Join(h.StaticDir, "assets")))
	return staticWithCacheHeaders(http.StripPrefix("/assets/", fs))
}

func (h *PageHandlers) serveIndex(w http.ResponseWriter, r *http.Request) bool {
	if h.StaticDir == "" {
		return false
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, filepath.Join(h.StaticDir, "index.html"))
	return true
}

var hashedAssetPattern = regexp.MustCompile(`[.-][A-Za-z0-9_]{8,}\.(?:js|css)(?:\.map)?$`)

// staticWithCacheHeaders wraps a static file handler to add appropriate cache headers.
func staticWithCacheHeaders(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hashedAssetPattern.MatchString(r.URL.Path) {
			// Hashed assets can be cached for a long time (1 year)
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}
		handler.ServeHTTP(w, r)
	})
}
