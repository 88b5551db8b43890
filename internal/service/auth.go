package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/clustermaster/clustermaster-ui/internal/domain/auth"
	"github.com/clustermaster/clustermaster-ui/internal/gate"
	"github.com/clustermaster/clustermaster-ui/internal/ports"
)

// SessionGate receives login and logout actions. *gate.Gate implements it.
type SessionGate interface {
	SignIn(p gate.Principal)
	SignOut()
	State() gate.SessionState
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Logger   *slog.Logger
	Now      func() time.Time
}

// AuthService orchestrates the login flow, persists the operator session and
// bootstraps the navigation gate from it.
type AuthService struct {
	provider ports.AuthProvider
	sessions ports.SessionStore
	logger   *slog.Logger
	now      func() time.Time

	mu   sync.RWMutex
	gate SessionGate
}

var _ gate.Bootstrapper = (*AuthService)(nil)

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		logger:   logger.With("component", "auth_service"),
		now:      now,
	}
}

// AttachGate wires the gate that login and logout are reported to. The gate is
// built with this service as its Bootstrapper, so it can only be attached afterwards.
func (s *AuthService) AttachGate(g SessionGate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = g
}

func (s *AuthService) sessionGate() SessionGate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gate
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the result of completing a login flow.
type CompleteLoginResult struct {
	Session domainauth.Session
}

// CompleteLogin exchanges the code for an identity, persists the operator
// session and signs the gate in.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	session := domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    identity.UserID,
		Email:     identity.Email,
		Name:      identity.Name,
		CreatedAt: s.now().UTC(),
		ExpiresAt: identity.ExpiresAt,
	}
	if session.Expired(s.now()) {
		return nil, errors.New("identity provider returned an already expired identity")
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	if g := s.sessionGate(); g != nil {
		g.SignIn(PrincipalFromSession(session))
	}
	s.logger.InfoContext(ctx, "operator signed in", "user_id", session.UserID, "expires_at", session.ExpiresAt)

	return &CompleteLoginResult{Session: session}, nil
}

// Bootstrap restores the persisted operator session. A missing or expired
// session is a definitive anonymous outcome; a store failure is a bootstrap failure.
func (s *AuthService) Bootstrap(ctx context.Context) (gate.Outcome, error) {
	session, err := s.sessions.Current(ctx)
	switch {
	case errors.Is(err, ports.ErrSessionNotFound):
		return gate.Unauthenticated(), nil
	case err != nil:
		return gate.Unauthenticated(), fmt.Errorf("restore operator session: %w", err)
	case session.Expired(s.now()):
		return gate.Unauthenticated(), nil
	}
	return gate.Authenticated(PrincipalFromSession(session)), nil
}

// CurrentSession returns the persisted operator session, or ports.ErrSessionNotFound.
func (s *AuthService) CurrentSession(ctx context.Context) (domainauth.Session, error) {
	session, err := s.sessions.Current(ctx)
	if err != nil {
		return domainauth.Session{}, err
	}
	if session.Expired(s.now()) {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return session, nil
}

// AuthStatus is what /auth/status reports.
type AuthStatus struct {
	Ready         bool                `json:"ready"`
	Authenticated bool                `json:"authenticated"`
	Session       *domainauth.Session `json:"session,omitempty"`
}

// Status combines the gate's session state with the persisted session details.
func (s *AuthService) Status(ctx context.Context) AuthStatus {
	g := s.sessionGate()
	if g == nil {
		return AuthStatus{}
	}
	st := g.State()
	out := AuthStatus{Ready: st.Ready, Authenticated: st.Authenticated()}
	if !out.Authenticated {
		return out
	}
	if session, err := s.CurrentSession(ctx); err == nil {
		out.Session = &session
	}
	return out
}

// Logout clears the persisted session and signs the gate out. The gate is
// signed out even when the store fails so the process never stays signed in.
func (s *AuthService) Logout(ctx context.Context) error {
	if g := s.sessionGate(); g != nil {
		g.SignOut()
	}
	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.InfoContext(ctx, "operator signed out")
	return nil
}

// PrincipalFromSession maps a persisted session onto the gate's identity.
func PrincipalFromSession(s domainauth.Session) gate.Principal {
	return gate.Principal{SubjectID: s.UserID, Email: s.Email, ExpiresAt: s.ExpiresAt}
}
