package devauth

// Package devauth provides a config-driven AuthProvider for running the dashboard
// locally without an identity provider.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	domainauth "github.com/clustermaster/clustermaster-ui/internal/domain/auth"
	"github.com/clustermaster/clustermaster-ui/internal/ports"
)

// DefaultCallbackPath is the dashboard route that completes a login.
const DefaultCallbackPath = "/auth/callback"

// Config controls the dev auth provider behavior.
type Config struct {
	UserID          string
	Email           string
	Name            string
	SessionDuration time.Duration // default 8h when zero
	CallbackPath    string        // default /auth/callback
}

// Provider implements ports.AuthProvider for local development.
// Begin redirects straight back to the dashboard callback with a locally
// generated state; Exchange ignores the code and returns the configured identity.
type Provider struct {
	mu              sync.Mutex
	identity        domainauth.Identity
	sessionDuration time.Duration
	callbackPath    string
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = 8 * time.Hour
	}
	callback := cfg.CallbackPath
	if callback == "" {
		callback = DefaultCallbackPath
	}
	name := cfg.Name
	if name == "" {
		name = cfg.Email
	}
	return &Provider{
		identity: domainauth.Identity{
			UserID: cfg.UserID,
			Email:  cfg.Email,
			Name:   name,
		},
		sessionDuration: dur,
		callbackPath:    callback,
	}, nil
}

// Begin returns a local callback URL and cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	q := url.Values{"code": {"dev"}, "state": {state}}
	return p.callbackPath + "?" + q.Encode(), state, nonce, nil
}

// Exchange returns the dev identity with a fresh expiry. State and nonce are
// validated by the callback handler.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.identity
	id.ExpiresAt = time.Now().Add(p.sessionDuration)
	return id, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, (n*3+3)/4+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
