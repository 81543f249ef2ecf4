// Package ratelimiter throttles requests per client key with token buckets.
package ratelimiter

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultIdleTTL = 10 * time.Minute
	sweepEvery     = 512
)

// Keyed holds one token bucket per client key. Buckets not touched for
// idleTTL are dropped on a periodic sweep. A nil *Keyed allows everything.
type Keyed struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	calls   uint64
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New returns nil when rps or burst is not positive, which disables limiting.
func New(rps float64, burst int, idleTTL time.Duration) *Keyed {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	return &Keyed{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		buckets: make(map[string]*bucket),
	}
}

// Allow consumes one token for key at now. Blank keys are never limited.
func (k *Keyed) Allow(key string, now time.Time) bool {
	if k == nil {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return true
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.buckets[key] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)

	k.calls++
	if k.calls%sweepEvery == 0 {
		k.sweepLocked(now)
	}
	return allowed
}

func (k *Keyed) sweepLocked(now time.Time) {
	cutoff := now.Add(-k.idleTTL)
	for key, b := range k.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(k.buckets, key)
		}
	}
}
