package ratelimit

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	count       int
	windowStart time.Time
}

// MemoryStore is an in-process fixed-window limiter. A single mutex guards
// the bucket map so concurrent requests from one key cannot over-admit.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	policy  Policy

	now func() time.Time
}

// NewMemoryStore constructs an in-memory limiter for one policy.
func NewMemoryStore(policy Policy) *MemoryStore {
	return &MemoryStore{
		buckets: make(map[string]*bucket),
		policy:  policy,
		now:     time.Now,
	}
}

// Consume admits or rejects one request from key. Window boundaries only
// move forward: a bucket resets exactly when its window has fully elapsed.
func (s *MemoryStore) Consume(_ context.Context, key string) (Result, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok || now.Sub(b.windowStart) >= s.policy.Window {
		b = &bucket{windowStart: now}
		s.buckets[key] = b
	}
	resetAt := b.windowStart.Add(s.policy.Window)

	if b.count >= s.policy.Limit {
		return Result{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: resetAt.Sub(now),
			ResetAt:    resetAt,
		}, nil
	}
	b.count++
	return Result{
		Allowed:   true,
		Remaining: s.policy.Limit - b.count,
		ResetAt:   resetAt,
	}, nil
}

// Cleanup drops buckets whose windows have elapsed.
func (s *MemoryStore) Cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, b := range s.buckets {
		if now.Sub(b.windowStart) >= s.policy.Window {
			delete(s.buckets, key)
		}
	}
}

// StartJanitor evicts idle buckets periodically until ctx is done.
func (s *MemoryStore) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

var _ Limiter = (*MemoryStore)(nil)
