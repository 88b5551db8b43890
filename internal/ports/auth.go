package ports

// Package ports defines interfaces (hexagonal ports) for auth and backend behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/clustermaster/clustermaster-ui/internal/domain/auth"
)

// ErrSessionNotFound is returned by SessionStore when no operator session is persisted.
var ErrSessionNotFound = errors.New("session not found")

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// SessionStore persists the session of the single operator signed in to this process.
// Current returns ErrSessionNotFound when nothing (or only an expired session) is stored.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Current(ctx context.Context) (domainauth.Session, error)
	Clear(ctx context.Context) error
}
