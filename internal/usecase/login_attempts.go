package usecase

import (
	"context"
	"time"
)

const (
	MaxLoginAttempts   = 5
	LoginAttemptWindow = 15 * time.Minute
	loginAttemptPrefix = "login_attempts:"
)

// LoginAttemptTracker counts failed logins per identifier. Keys are compared
// as given, so "A@x.com" and "a@x.com" are separate counters.
type LoginAttemptTracker struct {
	store       AttemptStore
	maxAttempts int64
	window      time.Duration
}

func NewLoginAttemptTracker(store AttemptStore) *LoginAttemptTracker {
	return &LoginAttemptTracker{
		store:       store,
		maxAttempts: MaxLoginAttempts,
		window:      LoginAttemptWindow,
	}
}

// RecordFailedAttempt increments the counter; the TTL starts on first write.
func (t *LoginAttemptTracker) RecordFailedAttempt(ctx context.Context, key string) (int64, error) {
	return t.store.Incr(ctx, loginAttemptPrefix+key, t.window)
}

func (t *LoginAttemptTracker) GetAttempts(ctx context.Context, key string) (int64, bool, error) {
	return t.store.Get(ctx, loginAttemptPrefix+key)
}

func (t *LoginAttemptTracker) IsBlocked(ctx context.Context, key string) (bool, error) {
	n, ok, err := t.GetAttempts(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	return n >= t.maxAttempts, nil
}

func (t *LoginAttemptTracker) ResetAttempts(ctx context.Context, key string) error {
	return t.store.Delete(ctx, loginAttemptPrefix+key)
}
