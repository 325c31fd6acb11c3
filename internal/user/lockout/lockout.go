// Package lockout tracks failed login attempts so repeated credential
// guessing trips a temporary lockout — prime honeypot signal.
package lockout

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const failureKeyPrefix = "lockout:login:"

// Tracker counts login failures per key (email + client IP) inside a
// sliding window.
type Tracker interface {
	// RecordFailure increments the failure count for key and returns the
	// new count. The count expires after window.
	RecordFailure(ctx context.Context, key string, window time.Duration) (int64, error)
	// Failures returns the current failure count for key.
	Failures(ctx context.Context, key string) (int64, error)
	// Reset clears the failure count after a successful login.
	Reset(ctx context.Context, key string) error
}

// RedisTracker is the production implementation; counts are shared across
// instances and expire server-side.
type RedisTracker struct {
	client *redis.Client
}

func NewRedisTracker(client *redis.Client) *RedisTracker {
	return &RedisTracker{client: client}
}

func (t *RedisTracker) RecordFailure(ctx context.Context, key string, window time.Duration) (int64, error) {
	redisKey := failureKeyPrefix + key
	count, err := t.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		// First failure starts the window; later failures ride it out.
		if err := t.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

func (t *RedisTracker) Failures(ctx context.Context, key string) (int64, error) {
	count, err := t.client.Get(ctx, failureKeyPrefix+key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (t *RedisTracker) Reset(ctx context.Context, key string) error {
	return t.client.Del(ctx, failureKeyPrefix+key).Err()
}

// MemoryTracker backs tests and redis-less deployments.
type MemoryTracker struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{entries: make(map[string]*memoryEntry)}
}

func (t *MemoryTracker) RecordFailure(_ context.Context, key string, window time.Duration) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		e = &memoryEntry{expiresAt: time.Now().Add(window)}
		t.entries[key] = e
	}
	e.count++
	return e.count, nil
}

func (t *MemoryTracker) Failures(_ context.Context, key string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return 0, nil
	}
	return e.count, nil
}

func (t *MemoryTracker) Reset(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.entries, key)
	return nil
}
