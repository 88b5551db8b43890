package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrowserDetection(t *testing.T) {
	handler := BrowserDetection()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsBrowserRequest(r) {
			w.Header().Set("Content-Type", "text/html")
		} else {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name            string
		path            string
		accept          string
		requestedWith   string
		expectedBrowser bool
	}{
		{"API route with JSON accept", "/api/clusters", "application/json", "", false},
		{"API route with HTML accept", "/api/clusters", "text/html", "", false},
		{"Asset", "/assets/index-3f9a0c1b.js", "*/*", "", false},
		{"Page with HTML accept", "/clusters/dev", "text/html,application/xhtml+xml,*/*;q=0.8", "", true},
		{"Dashboard fetch call", "/clusters/dev", "text/html", "XMLHttpRequest", false},
		{"Root path with HTML accept", "/", "text/html", "", true},
		{"No accept header on page", "/activity", "", "", true},
		{"JSON accept on page", "/activity", "application/json", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			if tt.requestedWith != "" {
				req.Header.Set("X-Requested-With", tt.requestedWith)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			want := "application/json"
			if tt.expectedBrowser {
				want = "text/html"
			}
			assert.Equal(t, want, w.Header().Get("Content-Type"))
		})
	}
}

func TestIsBrowserRequest_WithContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/clusters", nil)

	req = req.WithContext(context.WithValue(req.Context(), browserRequestKey{}, true))
	assert.True(t, IsBrowserRequest(req), "context value wins over detection")

	req = req.WithContext(context.WithValue(req.Context(), browserRequestKey{}, "invalid"))
	assert.False(t, IsBrowserRequest(req), "invalid value falls back to detection")
}

func TestSafeRedirectPath(t *testing.T) {
	tests := map[string]string{
		"":                        "/",
		"/clusters/dev?tab=nodes": "/clusters/dev?tab=nodes",
		"https://evil.example/":   "/",
		"//evil.example/":         "/",
		"relative/path":           "/",
		"://bad":                  "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeRedirectPath(in), in)
	}
}
