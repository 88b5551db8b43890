package httpx

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/clustermaster/clustermaster-ui/internal/domain/auth"
	"github.com/clustermaster/clustermaster-ui/internal/gate"
)

func staticGate(t *testing.T, p *gate.Principal) *gate.Gate {
	t.Helper()
	g := gate.New(gate.Options{Bootstrapper: gate.BootstrapFunc(func(context.Context) (gate.Outcome, error) {
		if p == nil {
			return gate.Unauthenticated(), nil
		}
		return gate.Authenticated(*p), nil
	})})
	t.Cleanup(g.Close)
	return g
}

// whoami echoes the principal attached by Navigation.
func whoami(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		WriteJSON(w, http.StatusOK, map[string]string{"subject": ""})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"subject": p.SubjectID})
}

func navigationHandler(g *gate.Gate) http.Handler {
	return BrowserDetection()(Navigation(g, DefaultRoutes(), nil)(http.HandlerFunc(whoami)))
}

func TestNavigation_ProceedsWithPrincipal(t *testing.T) {
	g := staticGate(t, &gate.Principal{SubjectID: "u1", ExpiresAt: time.Now().Add(time.Hour)})
	h := navigationHandler(g)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clusters", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"subject":"u1"}`, rec.Body.String())
}

func TestNavigation_IdentityRequiresSessionCookie(t *testing.T) {
	g := staticGate(t, &gate.Principal{SubjectID: "u1", ExpiresAt: time.Now().Add(time.Hour)})
	sessions := &mockAuthService{session: &domainauth.Session{ID: "s1", UserID: "u1"}}
	h := BrowserDetection()(Navigation(g, DefaultRoutes(), sessions)(http.HandlerFunc(whoami)))

	tests := []struct {
		name       string
		path       string
		cookie     string
		wantStatus int
		wantBody   string
	}{
		{"matching cookie", "/api/clusters", "s1", http.StatusOK, `{"subject":"u1"}`},
		{"no cookie", "/api/clusters", "", http.StatusUnauthorized, ""},
		{"stale cookie", "/api/clusters", "s0", http.StatusUnauthorized, ""},
		{"logout without cookie", "/auth/logout", "", http.StatusUnauthorized, ""},
		{"public route without cookie", "/sign-in", "", http.StatusOK, `{"subject":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Accept", "application/json")
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "session_id", Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}

	sessions.session = nil
	req := httptest.NewRequest(http.MethodGet, "/clusters", nil)
	req.Header.Set("Accept", "text/html")
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "s1"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code, "a cleared session no longer counts")
	assert.Equal(t, "/sign-in?redirect_uri=%2Fclusters", rec.Header().Get("Location"))
}

func TestNavigation_PublicRouteWithoutSession(t *testing.T) {
	h := navigationHandler(staticGate(t, nil))

	for _, path := range []string{"/sign-in", "/register", "/auth/login"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"subject":""}`, rec.Body.String(), path)
	}
}

func TestNavigation_RedirectsUnauthenticated(t *testing.T) {
	h := navigationHandler(staticGate(t, nil))

	tests := []struct {
		name         string
		path         string
		accept       string
		wantStatus   int
		wantLocation string
	}{
		{"browser page", "/clusters/dev?tab=nodes", "text/html", http.StatusSeeOther, "/sign-in?redirect_uri=%2Fclusters%2Fdev%3Ftab%3Dnodes"},
		{"browser root", "/", "text/html", http.StatusSeeOther, "/sign-in?redirect_uri=%2F"},
		{"api call", "/api/clusters", "application/json", http.StatusUnauthorized, ""},
		{"page fetched as json", "/activity", "application/json", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Accept", tt.accept)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), "authentication_required")
			}
		})
	}
}

func TestNavigation_CustomSignInPath(t *testing.T) {
	g := gate.New(gate.Options{
		SignInPath: "/login",
		Bootstrapper: gate.BootstrapFunc(func(context.Context) (gate.Outcome, error) {
			return gate.Unauthenticated(), nil
		}),
	})
	t.Cleanup(g.Close)

	req := httptest.NewRequest(http.MethodGet, "/backups", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	navigationHandler(g).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?redirect_uri=%2Fbackups", rec.Header().Get("Location"))
}

func TestNavigation_WaitsForBootstrap(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	g := gate.New(gate.Options{Bootstrapper: gate.BootstrapFunc(func(ctx context.Context) (gate.Outcome, error) {
		calls.Add(1)
		select {
		case <-release:
		case <-ctx.Done():
		}
		return gate.Authenticated(gate.Principal{SubjectID: "u1", ExpiresAt: time.Now().Add(time.Hour)}), nil
	})})
	t.Cleanup(g.Close)
	srv := httptest.NewServer(navigationHandler(g))
	t.Cleanup(srv.Close)

	results := make(chan int, 3)
	for range 3 {
		go func() {
			resp, err := http.Get(srv.URL + "/api/clusters")
			if err != nil {
				results <- 0
				return
			}
			_ = resp.Body.Close()
			results <- resp.StatusCode
		}()
	}

	select {
	case code := <-results:
		t.Fatalf("request answered before bootstrap completed: %d", code)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	for range 3 {
		select {
		case code := <-results:
			assert.Equal(t, http.StatusOK, code)
		case <-time.After(2 * time.Second):
			t.Fatal("queued request was not released")
		}
	}
	assert.Equal(t, int32(1), calls.Load(), "bootstrap runs once")
}

func TestNavigation_CanceledAfterClose(t *testing.T) {
	g := staticGate(t, nil)
	g.Close()

	rec := httptest.NewRecorder()
	navigationHandler(g).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clusters", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "navigation_canceled")
}

func TestNavigation_ClientGoneWhileQueued(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	g := gate.New(gate.Options{Bootstrapper: gate.BootstrapFunc(func(context.Context) (gate.Outcome, error) {
		<-release
		return gate.Unauthenticated(), nil
	})})
	t.Cleanup(g.Close)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/clusters", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		navigationHandler(g).ServeHTTP(rec, req)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after the client went away")
	}
	assert.Empty(t, rec.Body.String())
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	inbound := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, inbound)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, inbound, seen, "well-formed inbound id is reused")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid\r\n")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, "not-a-uuid\r\n", seen)
}

func TestLoggingRecordsStatusAndFlushes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := RequestID()(Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		require.NoError(t, http.NewResponseController(w).Flush())
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/apps/dev", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.True(t, rec.Flushed)
	assert.Contains(t, buf.String(), `"status":202`)
	assert.Contains(t, buf.String(), `"request_id":"`+rec.Header().Get(RequestIDHeader)+`"`)
}

func TestRecover(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	h := Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
