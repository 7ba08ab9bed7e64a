package persistence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// JobLock serializes scheduled jobs across processes via a Redis mutex, so a
// second instance of the same job cannot run before the first commits its
// dedup/bookkeeping rows.
type JobLock struct {
	client *redis.Client
}

// NewJobLock wraps the Redis client. A nil client disables locking (single
// instance deployments).
func NewJobLock(client *redis.Client) *JobLock {
	return &JobLock{client: client}
}

// Acquire claims the named lock for ttl. Returns false when another holder
// owns it.
func (l *JobLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	if l == nil || l.client == nil {
		return true, nil
	}
	return l.client.SetNX(ctx, lockKey(name), "1", ttl).Result()
}

// Release frees the named lock.
func (l *JobLock) Release(ctx context.Context, name string) error {
	if l == nil || l.client == nil {
		return nil
	}
	return l.client.Del(ctx, lockKey(name)).Err()
}

func lockKey(name string) string {
	return "legal-desk:joblock:" + name
}
