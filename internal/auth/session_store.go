// Package auth implements the cookie-session identity layer: a Redis-backed
// store mapping opaque session ids to authenticated identities.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound indicates the session id is unknown or expired.
var ErrSessionNotFound = errors.New("auth session not found")

// Identity is the resolved user behind a session cookie.
type Identity struct {
	UserID   string `json:"user_id"`
	Provider string `json:"provider"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
}

// SessionStore persists login sessions in Redis with a sliding TTL.
type SessionStore struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSessionStore constructs a session store. The prefix namespaces keys so
// the instance can share a Redis database with other concerns.
func NewSessionStore(client *redis.Client, prefix string, ttl time.Duration) *SessionStore {
	if prefix == "" {
		prefix = "prep:session"
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &SessionStore{redis: client, prefix: prefix, ttl: ttl}
}

// Create stores the identity under a fresh opaque session id.
func (s *SessionStore) Create(ctx context.Context, identity Identity) (string, error) {
	payload, err := json.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("marshal identity: %w", err)
	}

	sid := uuid.NewString()
	if err := s.redis.Set(ctx, s.key(sid), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return sid, nil
}

// Get resolves a session id and refreshes its TTL.
func (s *SessionStore) Get(ctx context.Context, sid string) (Identity, error) {
	if sid == "" {
		return Identity{}, ErrSessionNotFound
	}

	payload, err := s.redis.Get(ctx, s.key(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Identity{}, ErrSessionNotFound
	}
	if err != nil {
		return Identity{}, fmt.Errorf("load session: %w", err)
	}

	var identity Identity
	if err := json.Unmarshal(payload, &identity); err != nil {
		return Identity{}, fmt.Errorf("decode session: %w", err)
	}

	// Sliding expiration: active users stay logged in.
	_ = s.redis.Expire(ctx, s.key(sid), s.ttl).Err()

	return identity, nil
}

// Destroy removes the session. Unknown ids are a no-op.
func (s *SessionStore) Destroy(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	return s.redis.Del(ctx, s.key(sid)).Err()
}

// TTL reports the configured session lifetime.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

func (s *SessionStore) key(sid string) string {
	return s.prefix + ":" + sid
}
