package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/clustermaster/clustermaster-ui/internal/domain/auth"
	"github.com/clustermaster/clustermaster-ui/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider = (*MockAuthProvider)(nil)
	_ ports.SessionStore = (*MemorySessionStore)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	mu        sync.Mutex
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: domainauth.Identity{
			UserID: "mock-user-1",
			Name:   "Mock Operator",
			Email:  "mock.operator@example.com",
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	authURL := fallback(m.AuthURL, "https://mock-idp/auth")
	state := fmt.Sprintf("%s-%d", fallback(m.StatePrefix, "state"), n)
	nonce := fmt.Sprintf("%s-%d", fallback(m.NoncePrefix, "nonce"), n)
	return authURL, state, nonce, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	user := m.DefaultUser
	if user.UserID == "" {
		user = domainauth.Identity{UserID: "mock-user-1", Email: "mock.operator@example.com"}
	}
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// MemorySessionStore is an in-memory operator session store for unit tests.
// Set Err to make every call fail.
type MemorySessionStore struct {
	mu   sync.Mutex
	sess *domainauth.Session
	Err  error
	Now  func() time.Time
}

// NewMemorySessionStore creates a new, empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.sess = &sess
	return nil
}

func (m *MemorySessionStore) Current(_ context.Context) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return domainauth.Session{}, m.Err
	}
	if m.sess == nil {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	now := time.Now()
	if m.Now != nil {
		now = m.Now()
	}
	if m.sess.Expired(now) {
		m.sess = nil
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return *m.sess, nil
}

func (m *MemorySessionStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sess = nil
	return nil
}
