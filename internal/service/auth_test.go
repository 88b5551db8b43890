package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/clustermaster/clustermaster-ui/internal/domain/auth"
	"github.com/clustermaster/clustermaster-ui/internal/gate"
	mocks "github.com/clustermaster/clustermaster-ui/internal/mocks/auth"
	"github.com/clustermaster/clustermaster-ui/internal/ports"
	"github.com/clustermaster/clustermaster-ui/internal/testutil"
)

func newAuthFixture(t *testing.T) (*AuthService, *mocks.MemorySessionStore, *gate.Gate) {
	t.Helper()
	sessions := mocks.NewMemorySessionStore()
	svc := NewAuthService(AuthServiceOptions{
		Provider: mocks.NewMockAuthProvider(),
		Sessions: sessions,
	})
	g := gate.New(gate.Options{Bootstrapper: svc})
	svc.AttachGate(g)
	t.Cleanup(g.Close)
	return svc, sessions, g
}

func evaluate(t *testing.T, g *gate.Gate, route gate.Route) gate.Decision {
	t.Helper()
	ch := make(chan gate.Decision, 1)
	g.Evaluate(gate.Request{Target: route, Resolve: func(d gate.Decision) { ch <- d }})
	select {
	case d := <-ch:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("navigation was not resolved")
		return gate.Decision{}
	}
}

func TestAuthService_BeginLogin(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	result, err := svc.BeginLogin(context.Background(), "/clusters/dev")
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", result.AuthURL)
	assert.Equal(t, "state-1", result.State)
	assert.Equal(t, "nonce-1", result.Nonce)

	_, err = svc.BeginLogin(context.Background(), "")
	assert.Error(t, err)
}

func TestAuthService_BeginLogin_ProviderError(t *testing.T) {
	provider := mocks.NewMockAuthProvider()
	provider.BeginFunc = func(context.Context, ports.BeginInput) (string, string, string, error) {
		return "", "", "", errors.New("discovery failed")
	}
	svc := NewAuthService(AuthServiceOptions{Provider: provider, Sessions: mocks.NewMemorySessionStore()})

	_, err := svc.BeginLogin(context.Background(), "/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin auth flow")
}

func TestAuthService_CompleteLogin_PersistsAndSignsIn(t *testing.T) {
	svc, sessions, g := newAuthFixture(t)
	ctx := context.Background()

	// Settle the gate anonymously first so the sign-in is observable.
	assert.Equal(t, gate.Redirect(gate.DefaultSignInPath), evaluate(t, g, gate.Route{Path: "/", RequiresAuth: true}))

	result, err := svc.CompleteLogin(ctx, CompleteLoginInput{Code: "code", State: "state-1", Nonce: "nonce-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Session.ID)
	assert.Equal(t, "mock-user-1", result.Session.UserID)
	assert.Equal(t, "Mock Operator", result.Session.Name)

	stored, err := sessions.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.Session.ID, stored.ID)

	assert.Equal(t, gate.Proceed(), evaluate(t, g, gate.Route{Path: "/", RequiresAuth: true}))
	st := svc.Status(ctx)
	assert.True(t, st.Ready)
	assert.True(t, st.Authenticated)
	require.NotNil(t, st.Session)
	assert.Equal(t, "mock.operator@example.com", st.Session.Email)
}

func TestAuthService_CompleteLogin_Validation(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CompleteLoginInput
	}{
		{"missing code", CompleteLoginInput{State: "s", Nonce: "n"}},
		{"missing state", CompleteLoginInput{Code: "c", Nonce: "n"}},
		{"missing nonce", CompleteLoginInput{Code: "c", State: "s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CompleteLogin(ctx, tt.input)
			assert.Error(t, err)
		})
	}
}

func TestAuthService_CompleteLogin_SaveFailure(t *testing.T) {
	svc, sessions, g := newAuthFixture(t)
	sessions.Err = errors.New("redis down")

	_, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save session")
	assert.Nil(t, g.State().Identity)
}

func TestAuthService_CompleteLogin_RejectsExpiredIdentity(t *testing.T) {
	provider := mocks.NewMockAuthProvider()
	provider.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
		return domainauth.Identity{UserID: "u1", ExpiresAt: testutil.TestTime().Add(-time.Minute)}, nil
	}
	svc := NewAuthService(AuthServiceOptions{
		Provider: provider,
		Sessions: mocks.NewMemorySessionStore(),
		Now:      testutil.FixedTimeFunc(testutil.TestTime()),
	})

	_, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	assert.Error(t, err)
}

func TestAuthService_Bootstrap(t *testing.T) {
	now := testutil.TestTime()
	valid := domainauth.Session{ID: "s1", UserID: "u1", Email: "a@x.com", ExpiresAt: now.Add(time.Hour)}

	t.Run("restores persisted session", func(t *testing.T) {
		sessions := mocks.NewMemorySessionStore()
		sessions.Now = testutil.FixedTimeFunc(now)
		require.NoError(t, sessions.Save(context.Background(), valid))
		svc := NewAuthService(AuthServiceOptions{Sessions: sessions, Now: testutil.FixedTimeFunc(now)})

		outcome, err := svc.Bootstrap(context.Background())
		require.NoError(t, err)
		p, ok := outcome.Principal()
		require.True(t, ok)
		assert.Equal(t, gate.Principal{SubjectID: "u1", Email: "a@x.com", ExpiresAt: valid.ExpiresAt}, p)
	})

	t.Run("no session is anonymous", func(t *testing.T) {
		svc := NewAuthService(AuthServiceOptions{Sessions: mocks.NewMemorySessionStore()})
		outcome, err := svc.Bootstrap(context.Background())
		require.NoError(t, err)
		_, ok := outcome.Principal()
		assert.False(t, ok)
	})

	t.Run("expired session is anonymous", func(t *testing.T) {
		sessions := mocks.NewMemorySessionStore()
		require.NoError(t, sessions.Save(context.Background(), valid))
		svc := NewAuthService(AuthServiceOptions{
			Sessions: sessions,
			Now:      testutil.FixedTimeFunc(now.Add(2 * time.Hour)),
		})
		outcome, err := svc.Bootstrap(context.Background())
		require.NoError(t, err)
		_, ok := outcome.Principal()
		assert.False(t, ok)
	})

	t.Run("store failure is a bootstrap failure", func(t *testing.T) {
		sessions := mocks.NewMemorySessionStore()
		sessions.Err = errors.New("connection refused")
		svc := NewAuthService(AuthServiceOptions{Sessions: sessions})
		_, err := svc.Bootstrap(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "restore operator session")
	})
}

func TestAuthService_BootstrapDrivesGate(t *testing.T) {
	sessions := mocks.NewMemorySessionStore()
	require.NoError(t, sessions.Save(context.Background(), domainauth.Session{
		ID: "s1", UserID: "u1", Email: "a@x.com", ExpiresAt: time.Now().Add(time.Hour),
	}))
	svc := NewAuthService(AuthServiceOptions{Provider: mocks.NewMockAuthProvider(), Sessions: sessions})
	g := gate.New(gate.Options{Bootstrapper: svc})
	svc.AttachGate(g)
	defer g.Close()

	assert.Equal(t, gate.Proceed(), evaluate(t, g, gate.Route{Path: "/clusters/", RequiresAuth: true}))
	require.NotNil(t, g.State().Identity)
	assert.Equal(t, "u1", g.State().Identity.SubjectID)
}

func TestAuthService_Logout(t *testing.T) {
	svc, sessions, g := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.CompleteLogin(ctx, CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.NoError(t, err)
	assert.Equal(t, gate.Proceed(), evaluate(t, g, gate.Route{Path: "/", RequiresAuth: true}))

	require.NoError(t, svc.Logout(ctx))

	_, err = sessions.Current(ctx)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
	st := g.State()
	assert.True(t, st.Ready, "logout must not reset readiness")
	assert.Nil(t, st.Identity)
	assert.Equal(t, gate.Redirect(gate.DefaultSignInPath), evaluate(t, g, gate.Route{Path: "/", RequiresAuth: true}))
	assert.False(t, svc.Status(ctx).Authenticated)
}

func TestAuthService_LogoutStoreFailureStillSignsOut(t *testing.T) {
	svc, sessions, g := newAuthFixture(t)
	g.SignIn(gate.Principal{SubjectID: "u1"})
	sessions.Err = errors.New("redis down")

	err := svc.Logout(context.Background())
	require.Error(t, err)
	assert.Nil(t, g.State().Identity)
}

func TestAuthService_StatusWithoutGate(t *testing.T) {
	svc := NewAuthService(AuthServiceOptions{Sessions: mocks.NewMemorySessionStore()})
	assert.Equal(t, AuthStatus{}, svc.Status(context.Background()))
}
