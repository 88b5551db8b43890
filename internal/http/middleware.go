package httpx

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/clustermaster/clustermaster-ui/internal/domain/auth"
	"github.com/clustermaster/clustermaster-ui/internal/gate"
	"github.com/clustermaster/clustermaster-ui/internal/ports"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestID returns a middleware that assigns each request an id, reusing a
// well-formed inbound X-Request-Id.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)
			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext returns the id assigned by RequestID, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", RequestIDFromContext(r.Context())),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush lets streaming handlers flush through the logging wrapper.
func (w *respWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SessionVerifier returns the persisted operator session. *service.AuthService implements it.
type SessionVerifier interface {
	CurrentSession(ctx context.Context) (domainauth.Session, error)
}

// Navigation returns a middleware that routes every request through the
// Navigation Gate. The request waits until the gate resolves it (or the client
// goes away) and then:
//   - proceeds, with the operator principal in its context when it carries the session;
//   - is sent to the sign-in page (browsers) or answered 401 (API callers);
//   - is answered 503 when the gate has shut down.
//
// The gate's identity belongs to the process, so a request only acts as the
// operator when its session_id cookie names the persisted session. Requests
// without it are treated as anonymous. A nil sessions trusts the gate alone.
func Navigation(g *gate.Gate, routes gate.RouteTable, sessions SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			target := routes.Resolve(r.URL.Path)
			decided := make(chan gate.Decision, 1)
			g.Evaluate(gate.Request{
				Target:  target,
				Resolve: func(d gate.Decision) { decided <- d },
			})

			var d gate.Decision
			select {
			case d = <-decided:
			case <-r.Context().Done():
				return
			}

			switch d.Kind {
			case gate.DecisionProceed:
				ctx := r.Context()
				st := g.State()
				if st.Identity != nil && (sessions == nil || holdsSession(r, sessions)) {
					ctx = SetPrincipalInContext(ctx, *st.Identity)
				} else if target.RequiresAuth {
					redirectToSignIn(w, r, g.SignInPath())
					return
				}
				next.ServeHTTP(w, r.WithContext(ctx))
			case gate.DecisionRedirect:
				redirectToSignIn(w, r, d.Path)
			default:
				WriteError(w, ErrorParams{
					Code:    http.StatusServiceUnavailable,
					ErrCode: "navigation_canceled",
					Err:     errors.New("server is shutting down"),
				})
			}
		})
	}
}

// holdsSession reports whether r carries the cookie of the current operator session.
func holdsSession(r *http.Request, sessions SessionVerifier) bool {
	c, err := r.Cookie(cookieSessionID)
	if err != nil || c.Value == "" {
		return false
	}
	sess, err := sessions.CurrentSession(r.Context())
	if err != nil {
		if !errors.Is(err, ports.ErrSessionNotFound) {
			slog.Default().WarnContext(r.Context(), "session lookup failed", "error", err)
		}
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Value), []byte(sess.ID)) == 1
}

// noSessions rejects every session cookie. The router uses it when no auth
// service is configured, so nobody can act as the operator.
type noSessions struct{}

func (noSessions) CurrentSession(context.Context) (domainauth.Session, error) {
	return domainauth.Session{}, ports.ErrSessionNotFound
}

// redirectToSignIn sends browsers to signInPath with the current URL as
// redirect_uri; API callers get a 401 JSON response instead.
func redirectToSignIn(w http.ResponseWriter, r *http.Request, signInPath string) {
	if !IsBrowserRequest(r) {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	u := url.URL{Path: signInPath}
	if current := safeRedirectPath(r.URL.RequestURI()); current != signInPath {
		q := url.Values{}
		q.Set("redirect_uri", current)
		u.RawQuery = q.Encode()
	}
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

// browserRequestKey is an unexported context key type for browser request detection.
type browserRequestKey struct{}

// BrowserDetection returns a middleware that detects browser requests vs API requests.
// It sets a context value that can be used by downstream handlers to determine
// whether to redirect or answer with JSON.
func BrowserDetection() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			isBrowser := isBrowserRequest(r)
			ctx := context.WithValue(r.Context(), browserRequestKey{}, isBrowser)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsBrowserRequest returns true if the current request is from a browser.
func IsBrowserRequest(r *http.Request) bool {
	if val := r.Context().Value(browserRequestKey{}); val != nil {
		if isBrowser, ok := val.(bool); ok {
			return isBrowser
		}
	}
	// Fallback to direct detection if middleware wasn't used
	return isBrowserRequest(r)
}

// isBrowserRequest determines if a request is from a browser based on:
// 1. Path prefix - API routes start with /api/
// 2. XHR/fetch markers - the dashboard's own fetch calls want JSON
// 3. Accept header - browsers typically accept text/html.
func isBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}

	if strings.HasPrefix(r.URL.Path, "/assets/") {
		return false
	}

	if strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest") {
		return false
	}

	accept := r.Header.Get("Accept")
	if accept == "" {
		// No Accept header, assume browser for non-API routes
		return true
	}

	return strings.Contains(accept, "text/html")
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(candidate, "//") {
		return "/"
	}
	return candidate
}
