package config

import "strings"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to. The dashboard serves a
	// single local operator, so it listens on loopback unless told otherwise.
	Addr string `env:"HTTP_ADDR" envDefault:"127.0.0.1:8080"`

	// BaseURL is the externally visible URL of the dashboard.
	// Used for links in forwarded notifications.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://127.0.0.1:8080"`

	// CookieDomain is the domain for auth flow cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// StaticDir is the built dashboard bundle. When empty, pages are answered
	// with JSON route descriptors instead of index.html.
	StaticDir string `env:"STATIC_DIR" envDefault:""`

	// CSRFEnabled requires the double-submit token on state-changing requests.
	CSRFEnabled bool `env:"HTTP_CSRF_ENABLED" envDefault:"true"`

	// CompressionEnabled enables gzip compression for text-based responses.
	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"false"`

	// CompressionLevel is the gzip compression level (1-9).
	// Default is 6 (standard gzip default).
	CompressionLevel int `env:"HTTP_COMPRESSION_LEVEL" envDefault:"6"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.Addr = strings.TrimSpace(h.Addr)
	if h.Addr == "" {
		h.Addr = "127.0.0.1:8080"
	}
	h.BaseURL = strings.TrimRight(strings.TrimSpace(h.BaseURL), "/")
	h.StaticDir = strings.TrimSpace(h.StaticDir)

	// Clamp compression level to valid gzip range (1-9)
	h.CompressionLevel = min(max(h.CompressionLevel, 1), 9)
}
