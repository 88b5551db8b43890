package redis

// Package redis provides Redis-backed adapters for clustermaster.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/clustermaster/clustermaster-ui/internal/domain/auth"
	"github.com/clustermaster/clustermaster-ui/internal/ports"
)

// DefaultSessionKey holds the session of the operator signed in to the dashboard.
const DefaultSessionKey = "clustermaster:session:current"

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore persists the single operator session in Redis. The key's TTL
// follows the session's ExpiresAt so a restarted process only restores live sessions.
type SessionStore struct {
	client redis.UniversalClient
	key    string
	now    func() time.Time
}

// NewSessionStore creates a Redis-backed session store using DefaultSessionKey.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return NewSessionStoreWithKey(client, DefaultSessionKey)
}

// NewSessionStoreWithKey creates a Redis session store under a custom key.
func NewSessionStoreWithKey(client redis.UniversalClient, key string) *SessionStore {
	return &SessionStore{client: client, key: key, now: time.Now}
}

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	var ttl time.Duration
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return errors.New("session is expired")
		}
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *SessionStore) Current(ctx context.Context) (domainauth.Session, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, ports.ErrSessionNotFound
		}
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}

	// Redis TTL normally removes expired sessions; clock skew can leave one behind.
	if sess.Expired(s.now()) {
		if err := s.Clear(ctx); err != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", err)
		}
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
