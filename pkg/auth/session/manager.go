package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aurumworks/jewelpos-backend/pkg/config"
	redisclient "github.com/aurumworks/jewelpos-backend/pkg/redis"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

var (
	ErrNoSession      = errors.New("no active session")
	ErrSessionExpired = errors.New("session expired")
)

// Session is the explicit server-side session record: who is logged in, which
// store they operate, and when the session dies. Idle expiry is tracked through
// LastSeen rather than ambient global state.
type Session struct {
	AccessID  string    `json:"access_id"`
	UserID    uuid.UUID `json:"user_id"`
	StoreID   uuid.UUID `json:"store_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
	LastSeen  time.Time `json:"last_seen"`
}

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	AccessSessionKey(accessID string) string
}

// Checker exposes the read-only surface needed by middleware.
type Checker interface {
	Touch(ctx context.Context, accessID string) (*Session, error)
}

// Manager stores sessions in Redis with absolute and idle expiry.
type Manager struct {
	store       sessionStore
	keyer       sessionKeyer
	ttl         time.Duration
	idleTimeout time.Duration
	now         func() time.Time
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.AccessTokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("access token ttl must be positive")
	}
	return &Manager{
		store:       client,
		keyer:       client,
		ttl:         ttl,
		idleTimeout: cfg.IdleTimeout(),
		now:         time.Now,
	}, nil
}

// NewAccessID mints an opaque session identifier.
func NewAccessID() string {
	return uuid.NewString()
}

// Create stores a fresh session for the given user and returns it.
func (m *Manager) Create(ctx context.Context, userID, storeID uuid.UUID, role string) (*Session, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	now := m.now()
	sess := &Session{
		AccessID:  NewAccessID(),
		UserID:    userID,
		StoreID:   storeID,
		Role:      role,
		ExpiresAt: now.Add(m.ttl),
		LastSeen:  now,
	}
	if err := m.persist(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Touch loads the session, enforces absolute and idle expiry, and refreshes
// the last-seen timestamp. Expired sessions are revoked eagerly.
func (m *Manager) Touch(ctx context.Context, accessID string) (*Session, error) {
	if strings.TrimSpace(accessID) == "" {
		return nil, ErrNoSession
	}

	key := m.keyer.AccessSessionKey(accessID)
	raw, err := m.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("corrupt session record: %w", err)
	}

	now := m.now()
	if now.After(sess.ExpiresAt) {
		_ = m.store.Del(ctx, key)
		return nil, ErrSessionExpired
	}
	if m.idleTimeout > 0 && now.Sub(sess.LastSeen) > m.idleTimeout {
		_ = m.store.Del(ctx, key)
		return nil, ErrSessionExpired
	}

	sess.LastSeen = now
	if err := m.persist(ctx, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Revoke deletes the session record.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.store.Del(ctx, m.keyer.AccessSessionKey(accessID))
}

func (m *Manager) persist(ctx context.Context, sess *Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ttl := sess.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return ErrSessionExpired
	}
	return m.store.Set(ctx, m.keyer.AccessSessionKey(sess.AccessID), payload, ttl)
}
