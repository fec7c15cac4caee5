package research

import (
	"math/rand"
	"time"

	"github.com/ternarybob/vestigo/internal/models"
)

// RetryPolicy defines retry behavior with exponential backoff
type RetryPolicy struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// NewRetryPolicy creates a default retry policy
func NewRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:       3,
		InitialBackoff:    time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// ShouldRetry reports whether another attempt is allowed. Only transient
// failures consume retry budget; everything else fails on the spot.
func (p *RetryPolicy) ShouldRetry(reason models.FailureReason, attempts int) bool {
	if reason != models.FailureTransient {
		return false
	}
	return attempts < p.MaxAttempts
}

// Backoff calculates the backoff duration before the given attempt number
// with exponential growth and ±25% jitter
func (p *RetryPolicy) Backoff(attempt int) time.Duration {
	backoff := float64(p.InitialBackoff)
	for i := 1; i < attempt; i++ {
		backoff *= p.BackoffMultiplier
	}
	if backoff > float64(p.MaxBackoff) {
		backoff = float64(p.MaxBackoff)
	}

	// Jitter (±25%)
	jitter := backoff * 0.25 * (rand.Float64()*2 - 1)
	backoff += jitter

	if backoff < 0 {
		backoff = float64(p.InitialBackoff)
	}

	return time.Duration(backoff)
}
