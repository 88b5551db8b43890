package gate

import (
	"context"
	"time"
)

// Principal is the authenticated identity the gate caches for the process.
type Principal struct {
	SubjectID string
	Email     string
	// ExpiresAt is zero when the identity does not expire.
	ExpiresAt time.Time
}

func (p Principal) expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}

// Outcome is the result of the authentication bootstrap.
type Outcome struct {
	principal *Principal
}

// Authenticated returns an outcome carrying p.
func Authenticated(p Principal) Outcome { return Outcome{principal: &p} }

// Unauthenticated returns an outcome without an identity.
func Unauthenticated() Outcome { return Outcome{} }

// Principal returns the authenticated identity, if any.
func (o Outcome) Principal() (Principal, bool) {
	if o.principal == nil {
		return Principal{}, false
	}
	return *o.principal, true
}

// Bootstrapper determines the initial authentication state of the process.
// The gate calls it at most once.
type Bootstrapper interface {
	Bootstrap(ctx context.Context) (Outcome, error)
}

// BootstrapFunc adapts a function to Bootstrapper.
type BootstrapFunc func(ctx context.Context) (Outcome, error)

// Bootstrap calls f(ctx).
func (f BootstrapFunc) Bootstrap(ctx context.Context) (Outcome, error) { return f(ctx) }

// SessionState is a point-in-time copy of the gate's session.
type SessionState struct {
	Ready    bool
	Identity *Principal
}

// Authenticated reports whether the snapshot carries an identity.
func (s SessionState) Authenticated() bool { return s.Identity != nil }
