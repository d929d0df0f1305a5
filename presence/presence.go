// Package presence tracks when a device was last heard from. The data is
// cache-only and feeds the dashboard device list; losing it loses nothing
// but the display.
package presence

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tracker records device heartbeats and recent uploads.
type Tracker interface {
	Touch(ctx context.Context, deviceID string)
	LastSeen(ctx context.Context, deviceID string) (time.Time, bool)
}

// memoryTracker keeps last-seen timestamps in process memory.
type memoryTracker struct {
	mu   sync.RWMutex
	seen map[string]time.Time
	ttl  time.Duration
}

// NewMemoryTracker returns an in-process tracker. Entries older than ttl
// are reported as absent; ttl <= 0 keeps entries forever.
func NewMemoryTracker(ttl time.Duration) Tracker {
	return &memoryTracker{seen: make(map[string]time.Time), ttl: ttl}
}

func (t *memoryTracker) Touch(_ context.Context, deviceID string) {
	t.mu.Lock()
	t.seen[deviceID] = time.Now().UTC()
	t.mu.Unlock()
}

func (t *memoryTracker) LastSeen(_ context.Context, deviceID string) (time.Time, bool) {
	t.mu.RLock()
	ts, ok := t.seen[deviceID]
	t.mu.RUnlock()
	if !ok {
		return time.Time{}, false
	}
	if t.ttl > 0 && time.Since(ts) > t.ttl {
		return time.Time{}, false
	}
	return ts, true
}

// redisTracker stores last-seen timestamps as TTL'd redis keys so multiple
// instances share one view.
type redisTracker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTracker returns a tracker backed by redis.
func NewRedisTracker(client *redis.Client, ttl time.Duration) Tracker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisTracker{client: client, ttl: ttl}
}

func presenceKey(deviceID string) string {
	return "device:lastseen:" + deviceID
}

func (t *redisTracker) Touch(ctx context.Context, deviceID string) {
	now := time.Now().UTC().Format(time.RFC3339)
	// Best-effort; a redis hiccup must not fail the request.
	_ = t.client.Set(ctx, presenceKey(deviceID), now, t.ttl).Err()
}

func (t *redisTracker) LastSeen(ctx context.Context, deviceID string) (time.Time, bool) {
	val, err := t.client.Get(ctx, presenceKey(deviceID)).Result()
	if err != nil {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
