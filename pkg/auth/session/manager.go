package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/stockroom-backend/pkg/config"
	redisclient "github.com/angelmondragon/stockroom-backend/pkg/redis"
)

// ErrSessionNotFound is returned when a session has expired or was revoked.
var ErrSessionNotFound = errors.New("session not found")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// Manager stores login sessions in Redis. The session id doubles as the
// access token jti, so revoking the key invalidates the token.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Checker exposes the read-only surface needed by middleware.
type Checker interface {
	HasSession(ctx context.Context, sessionID string) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.TokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{store: client, keyer: client, ttl: ttl}, nil
}

// Create opens a session for userID and returns its id.
func (m *Manager) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	if userID == uuid.Nil {
		return "", fmt.Errorf("user id is required")
	}
	sessionID := NewSessionID()
	if err := m.store.Set(ctx, m.keyer.SessionKey(sessionID), userID.String(), m.ttl); err != nil {
		return "", err
	}
	return sessionID, nil
}

// UserID returns the owner of a live session.
func (m *Manager) UserID(ctx context.Context, sessionID string) (uuid.UUID, error) {
	if strings.TrimSpace(sessionID) == "" {
		return uuid.Nil, ErrSessionNotFound
	}
	raw, err := m.store.Get(ctx, m.keyer.SessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return uuid.Nil, ErrSessionNotFound
		}
		return uuid.Nil, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt session value: %w", err)
	}
	return id, nil
}

// Revoke deletes the session.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.Del(ctx, m.keyer.SessionKey(sessionID))
}

// HasSession reports whether the session is still live.
func (m *Manager) HasSession(ctx context.Context, sessionID string) (bool, error) {
	_, err := m.UserID(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return false, nil
	}
	return err == nil, err
}

// NewSessionID produces the identifier used as the JWT jti and Redis key.
func NewSessionID() string {
	return uuid.NewString()
}
