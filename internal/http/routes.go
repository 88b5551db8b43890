package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/clustermaster/clustermaster-ui/internal/gate"
	"github.com/clustermaster/clustermaster-ui/internal/ports"
	"github.com/clustermaster/clustermaster-ui/internal/service"
)

// DefaultRoutes returns the dashboard's route table. Keys ending in "/" cover
// every path below them; anything unlisted (the login endpoints, /healthz,
// assets) is public.
func DefaultRoutes() gate.RouteTable {
	return gate.NewRouteTable(map[string]bool{
		"/":              true,
		"/register":      false,
		"/sign-in":       false,
		"/clusters":      true,
		"/clusters/":     true,
		"/monitoring/":   true,
		"/apps":          true,
		"/apps/":         true,
		"/backups":       true,
		"/backups/":      true,
		"/activity":      true,
		"/notifications": true,
		"/api/":          true,
		"/auth/logout":   true,
	})
}

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Gate          *gate.Gate // Required
	Routes        *gate.RouteTable
	Auth          AuthServiceInterface
	Backend       ports.BackendAPI
	Clusters      *service.ClusterStore
	Activity      *service.ActivityStore
	Notifications *service.NotificationStore
	CookieDomain  string
	StaticDir     string
	// Optional: gzip responses when set.
	Compression     *CompressionConfig
	// Optional: require the double-submit CSRF token on state-changing requests.
	CSRF            *CSRFConfig
	StreamHeartbeat time.Duration
	Logger          *slog.Logger
}

// NewRouter creates and configures the HTTP router. Every request passes the
// Navigation Gate before reaching a handler.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	routes := DefaultRoutes()
	if services.Routes != nil {
		routes = *services.Routes
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	if services.Auth != nil {
		registerAuthRoutes(mux, &AuthHandlers{
			Svc:          services.Auth,
			CookieDomain: services.CookieDomain,
			SignInPath:   services.Gate.SignInPath(),
			Logger:       logger,
		})
	}

	pages := &PageHandlers{StaticDir: services.StaticDir, SignInPath: services.Gate.SignInPath(), Routes: routes}
	registerPageRoutes(mux, pages)

	if services.Backend != nil {
		registerBackendRoutes(mux, services.Backend)
	}
	if services.Clusters != nil && services.Backend != nil {
		registerClusterRoutes(mux, &ClusterHandlers{Store: services.Clusters, API: services.Backend, Logger: logger})
	}
	if services.Activity != nil {
		mux.HandleFunc("GET /api/activity", (&ActivityHandlers{Store: services.Activity}).List)
	}
	if services.Notifications != nil {
		registerNotificationRoutes(mux, &NotificationHandlers{
			Store:     services.Notifications,
			Heartbeat: services.StreamHeartbeat,
			Logger:    logger,
		})
	}

	var sessions SessionVerifier = noSessions{}
	if services.Auth != nil {
		sessions = services.Auth
	}
	gated := Navigation(services.Gate, routes, sessions)(mux)
	// Liveness checks must not wait for the auth bootstrap.
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			mux.ServeHTTP(w, r)
			return
		}
		gated.ServeHTTP(w, r)
	})
	if services.CSRF != nil {
		handler = CSRFProtection(*services.CSRF)(handler)
	}
	handler = BrowserDetection()(handler)
	if services.Compression != nil {
		handler = Compression(*services.Compression)(handler)
	}
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return RequestID()(handler)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}

func registerPageRoutes(mux *http.ServeMux, h *PageHandlers) {
	mux.HandleFunc("GET /{$}", h.Page)
	mux.HandleFunc("GET /register", h.Page)
	mux.HandleFunc("GET "+h.SignInPath, h.SignIn)
	for _, p := range []string{"/clusters", "/apps", "/backups"} {
		mux.HandleFunc("GET "+p, h.Page)
		mux.HandleFunc("GET "+p+"/", h.Page)
	}
	mux.HandleFunc("GET /monitoring/", h.Page)
	mux.HandleFunc("GET /activity", h.Page)
	mux.HandleFunc("GET /notifications", h.Page)
	mux.Handle("GET /assets/", h.Assets())
}

func registerBackendRoutes(mux *http.ServeMux, api ports.BackendAPI) {
	health := &BackendHealthHandlers{API: api}
	mux.HandleFunc("GET /api/health", health.Health)
	mux.HandleFunc("GET /api/debug/{component}", health.Debug)

	mon := &MonitoringHandlers{API: api}
	mux.HandleFunc("GET /api/monitoring/{cluster}", mon.Status)
	mux.HandleFunc("POST /api/monitoring/{cluster}/install", mon.Install)
	mux.HandleFunc("DELETE /api/monitoring/{cluster}", mon.Uninstall)
	mux.HandleFunc("GET /api/monitoring/{cluster}/releases", mon.Releases)

	apps := &AppsHandlers{API: api}
	mux.HandleFunc("GET /api/apps", apps.Available)
	mux.HandleFunc("GET /api/apps/search", apps.Search)
	mux.HandleFunc("GET /api/apps/{cluster}", apps.Installed)
	mux.HandleFunc("POST /api/apps/{cluster}", apps.Install)
	mux.HandleFunc("DELETE /api/apps/{cluster}/{app}", apps.Uninstall)

	backups := &BackupHandlers{API: api}
	mux.HandleFunc("GET /api/backups", backups.List)
	mux.HandleFunc("POST /api/backups", backups.Create)
	mux.HandleFunc("GET /api/backups/{name}", backups.Get)
	mux.HandleFunc("POST /api/backups/{name}/restore", backups.Restore)
	mux.HandleFunc("DELETE /api/backups/{name}", backups.Delete)
}

func registerClusterRoutes(mux *http.ServeMux, h *ClusterHandlers) {
	mux.HandleFunc("GET /api/clusters", h.List)
	mux.HandleFunc("POST /api/clusters", h.Create)
	mux.HandleFunc("GET /api/clusters/summary", h.Summary)
	mux.HandleFunc("GET /api/clusters/{name}", h.Get)
	mux.HandleFunc("DELETE /api/clusters/{name}", h.Delete)
	mux.HandleFunc("POST /api/clusters/{name}/scale", h.Scale)
}

func registerNotificationRoutes(mux *http.ServeMux, h *NotificationHandlers) {
	mux.HandleFunc("GET /api/notifications", h.List)
	mux.HandleFunc("GET /api/notifications/recent", h.Recent)
	mux.HandleFunc("GET /api/notifications/history", h.History)
	mux.HandleFunc("GET /api/notifications/stream", h.Stream)
	mux.HandleFunc("POST /api/notifications/read-all", h.MarkAllRead)
	mux.HandleFunc("POST /api/notifications/{id}/read", h.MarkRead)
	mux.HandleFunc("DELETE /api/notifications/{id}", h.Delete)
}
