package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

type memoryStore struct {
	data map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}}
}

func (m *memoryStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	return nil
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redislib.Nil
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type staticKeyer struct{}

func (staticKeyer) AccessSessionKey(accessID string) string { return "session:" + accessID }

func newTestManager(store *memoryStore, idle time.Duration) (*Manager, *time.Time) {
	now := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	clock := &now
	m := &Manager{
		store:       store,
		keyer:       staticKeyer{},
		ttl:         8 * time.Hour,
		idleTimeout: idle,
		now:         func() time.Time { return *clock },
	}
	return m, clock
}

func TestCreateAndTouch(t *testing.T) {
	t.Parallel()

	mgr, _ := newTestManager(newMemoryStore(), 30*time.Minute)

	sess, err := mgr.Create(context.Background(), uuid.New(), uuid.New(), "cashier")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := mgr.Touch(context.Background(), sess.AccessID)
	if err != nil {
		t.Fatalf("touch failed: %v", err)
	}
	if got.UserID != sess.UserID {
		t.Fatalf("session user mismatch")
	}
}

func TestTouchMissingSession(t *testing.T) {
	t.Parallel()

	mgr, _ := newTestManager(newMemoryStore(), 0)
	if _, err := mgr.Touch(context.Background(), "absent"); err != ErrNoSession {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, err := mgr.Touch(context.Background(), ""); err != ErrNoSession {
		t.Fatalf("expected ErrNoSession for empty id, got %v", err)
	}
}

func TestIdleTimeoutExpiresSession(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	mgr, clock := newTestManager(store, 30*time.Minute)

	sess, err := mgr.Create(context.Background(), uuid.New(), uuid.New(), "cashier")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	*clock = clock.Add(31 * time.Minute)

	if _, err := mgr.Touch(context.Background(), sess.AccessID); err != ErrSessionExpired {
		t.Fatalf("expected idle expiry, got %v", err)
	}
	if len(store.data) != 0 {
		t.Fatal("expired session should be deleted eagerly")
	}
}

func TestAbsoluteExpiry(t *testing.T) {
	t.Parallel()

	mgr, clock := newTestManager(newMemoryStore(), 0)

	sess, err := mgr.Create(context.Background(), uuid.New(), uuid.New(), "manager")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	*clock = clock.Add(9 * time.Hour)

	if _, err := mgr.Touch(context.Background(), sess.AccessID); err != ErrSessionExpired {
		t.Fatalf("expected absolute expiry, got %v", err)
	}
}

func TestTouchRefreshesLastSeen(t *testing.T) {
	t.Parallel()

	mgr, clock := newTestManager(newMemoryStore(), 30*time.Minute)

	sess, err := mgr.Create(context.Background(), uuid.New(), uuid.New(), "cashier")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// repeated activity keeps the session alive past a single idle window
	for i := 0; i < 4; i++ {
		*clock = clock.Add(20 * time.Minute)
		if _, err := mgr.Touch(context.Background(), sess.AccessID); err != nil {
			t.Fatalf("touch %d failed: %v", i, err)
		}
	}
}
