package httpx

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
)

const (
	// DefaultCSRFCookieName is the cookie holding the double-submit token.
	DefaultCSRFCookieName = "csrf_token"
	// DefaultCSRFHeaderName is the header the dashboard echoes the token in.
	DefaultCSRFHeaderName = "X-Csrf-Token"

	csrfTokenBytes   = 32
	csrfCookieMaxAge = 12 * 60 * 60
)

// CSRFConfig configures CSRFProtection.
type CSRFConfig struct {
	CookieName   string
	HeaderName   string
	CookieDomain string
}

// CSRFProtection guards state-changing requests with the double-submit cookie
// pattern: a random token is issued in a readable cookie and every POST, PUT,
// PATCH or DELETE must echo it in the header.
func CSRFProtection(cfg CSRFConfig) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCSRFCookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultCSRFHeaderName
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(cfg.CookieName); err == nil {
				token = c.Value
			}
			if token == "" {
				var err error
				if token, err = generateCSRFToken(); err != nil {
					WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "csrf_unavailable", Err: err})
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					Domain:   cfg.CookieDomain,
					HttpOnly: false, // read by the dashboard's fetch wrapper
					Secure:   isSecureRequest(r),
					SameSite: http.SameSiteStrictMode,
					MaxAge:   csrfCookieMaxAge,
				})
			}
			r = r.WithContext(context.WithValue(r.Context(), csrfTokenKey{}, token))

			if requiresCSRFValidation(r.Method) && !validCSRFHeader(r.Header.Get(cfg.HeaderName), token) {
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "csrf_failed",
					Err:     errors.New("CSRF token validation failed"),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requiresCSRFValidation(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}

func validCSRFHeader(header, cookieToken string) bool {
	if header == "" || cookieToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(header), []byte(cookieToken)) == 1
}

// generateCSRFToken fails closed: a predictable fallback token is never issued.
func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("csrf token generation failed: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

type csrfTokenKey struct{}

// CSRFToken returns the token CSRFProtection attached to the request, if any.
func CSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfTokenKey{}).(string)
	return token
}
