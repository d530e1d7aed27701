package stock

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// stubRedis satisfies the hub's channel interfaces for tests that never
// touch a real server.
type stubRedis struct{}

func (stubRedis) Subscribe(_ context.Context, _ string) *goredis.PubSub { return nil }

func (stubRedis) Publish(_ context.Context, _ string, _ any) error { return nil }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
