package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/clustermaster/clustermaster-ui/internal/domain/auth"
	"github.com/clustermaster/clustermaster-ui/internal/ports"
)

func TestMockAuthProvider_Begin_Defaults(t *testing.T) {
	provider := NewMockAuthProvider()
	ctx := context.Background()

	input := ports.BeginInput{RedirectURL: "http://127.0.0.1:8080/auth/callback"}
	authURL, state, nonce, err := provider.Begin(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", authURL)
	assert.Equal(t, "state-1", state)
	assert.Equal(t, "nonce-1", nonce)

	_, state2, nonce2, err := provider.Begin(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "state-2", state2)
	assert.Equal(t, "nonce-2", nonce2)
}

func TestMockAuthProvider_Exchange(t *testing.T) {
	provider := NewMockAuthProvider()
	id, err := provider.Exchange(context.Background(), ports.ExchangeInput{Code: "c"})
	require.NoError(t, err)
	assert.Equal(t, "mock-user-1", id.UserID)
	assert.True(t, id.ExpiresAt.After(time.Now()))

	provider.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
		return domainauth.Identity{}, errors.New("denied")
	}
	_, err = provider.Exchange(context.Background(), ports.ExchangeInput{})
	assert.EqualError(t, err, "denied")
}

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	_, err := store.Current(ctx)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	sess := domainauth.Session{ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Current(ctx)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	assert.Error(t, store.Save(ctx, domainauth.Session{}))
}

func TestMemorySessionStore_ExpiredIsNotFound(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "s1", ExpiresAt: time.Now().Add(-time.Minute)}))

	_, err := store.Current(ctx)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}
