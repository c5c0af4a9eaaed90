// Package ratelimit implements fixed-window request limiting keyed by client
// address. Each policy owns its own limiter instance; nothing here is a
// package-level singleton.
package ratelimit

import (
	"context"
	"time"
)

// Policy describes one fixed-window admission rule.
type Policy struct {
	// Name prefixes storage keys so policies sharing a backend stay independent.
	Name string
	// Limit is the bucket capacity per window.
	Limit int
	// Window is the fixed window length.
	Window time.Duration
	// Message is returned in the 429 body when the policy rejects.
	Message string
}

// GeneralPolicy admits ordinary API traffic.
func GeneralPolicy(limit int, window time.Duration) Policy {
	return Policy{
		Name:    "general",
		Limit:   limit,
		Window:  window,
		Message: "too many requests, please try again later",
	}
}

// AuthPolicy throttles login and registration attempts.
func AuthPolicy(limit int, window time.Duration) Policy {
	return Policy{
		Name:    "auth",
		Limit:   limit,
		Window:  window,
		Message: "too many login attempts, please try again later",
	}
}

// Result is one admission decision.
type Result struct {
	Allowed bool
	// Remaining is the allowance left in the current window, 0 when denied.
	Remaining int
	// RetryAfter is how long until the window resets; meaningful when denied.
	RetryAfter time.Duration
	// ResetAt is the wall-clock end of the current window.
	ResetAt time.Time
}

// Limiter decides whether a request from key is admitted right now.
type Limiter interface {
	Consume(ctx context.Context, key string) (Result, error)
}
