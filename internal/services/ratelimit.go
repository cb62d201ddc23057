package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parsegate/internal/store"
)

var ErrRateLimited = errors.New("rate limit exceeded")

const (
	rateLimitPrefix = "rate_limit:"
	rateWindow      = time.Minute

	// The stored window lives longer than the logical 60s one; entries
	// outside the logical window are filtered on read, not proactively
	// deleted.
	rateWindowTTL = time.Hour
)

// RateLimiter enforces a per-device ceiling over a sliding 60-second
// window, with the request timestamps held as shared counters in the
// key-value store under "rate_limit:{device_id}".
//
// The read-filter-append-write cycle is not atomic: the store offers no
// compare-and-swap through this interface, so two concurrent requests
// from one device can both observe the same count and both pass,
// transiently exceeding the ceiling by the degree of concurrency.
// Enforcement is best-effort, not exact.
type RateLimiter struct {
	store store.Store
	limit int
	now   func() time.Time
}

func NewRateLimiter(s store.Store, perMinute int) *RateLimiter {
	return &RateLimiter{
		store: s,
		limit: perMinute,
		now:   time.Now,
	}
}

// CheckAndRecord admits the request and records its timestamp, or
// returns ErrRateLimited without recording anything when the device is
// already at the ceiling.
func (l *RateLimiter) CheckAndRecord(ctx context.Context, deviceID string) error {
	key := rateLimitPrefix + deviceID
	now := l.now().UnixMilli()
	cutoff := now - rateWindow.Milliseconds()

	jsonData, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read rate window: %w", err)
	}

	var window []int64
	if ok {
		if err := json.Unmarshal(jsonData, &window); err != nil {
			return fmt.Errorf("failed to unmarshal rate window: %w", err)
		}
	}

	recent := window[:0]
	for _, ts := range window {
		if ts > cutoff {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= l.limit {
		return ErrRateLimited
	}

	recent = append(recent, now)
	jsonData, err = json.Marshal(recent)
	if err != nil {
		return fmt.Errorf("failed to marshal rate window: %w", err)
	}
	if err := l.store.Put(ctx, key, jsonData, rateWindowTTL); err != nil {
		return fmt.Errorf("failed to write rate window: %w", err)
	}
	return nil
}
