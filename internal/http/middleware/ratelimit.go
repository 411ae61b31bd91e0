package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/wellnessbuddy/wellness-platform/internal/tenancy"
)

const (
	sweepEvery = 5 * time.Minute
	idleTTL    = 10 * time.Minute
)

// RateLimiter hands out per-key token buckets refilled at rate tokens per
// second up to burst.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64
	burst   float64
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type bucket struct {
	tokens float64
	seen   time.Time
}

// NewRateLimiter starts a limiter and its idle-bucket sweeper. Stop ends the
// sweeper.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   float64(max(burst, 1)),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Allow spends one token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b := rl.buckets[key]
	if b == nil {
		b = &bucket{tokens: rl.burst, seen: now}
		rl.buckets[key] = b
	}
	b.tokens = math.Min(rl.burst, b.tokens+now.Sub(b.seen).Seconds()*rl.rate)
	b.seen = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) sweep() {
	t := time.NewTicker(sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-t.C:
			rl.evict(rl.now().Add(-idleTTL))
		}
	}
}

func (rl *RateLimiter) evict(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, b := range rl.buckets {
		if b.seen.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

// retryAfter is the whole number of seconds until one token refills.
func (rl *RateLimiter) retryAfter() string {
	if rl.rate <= 0 || rl.rate >= 1 {
		return "1"
	}
	return strconv.Itoa(int(math.Round(1 / rl.rate)))
}

// RateLimit throttles signed-in users by user id and everyone else (including
// the shared demo user) by client address, answering 429 when a bucket is dry.
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	retry := limiter.retryAfter()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(limitKey(r)) {
				w.Header().Set("Retry-After", retry)
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func limitKey(r *http.Request) string {
	if id, ok := tenancy.UserIDFromContext(r.Context()); ok && id != tenancy.DemoUserID {
		return "user:" + id
	}
	// chi's RealIP has already rewritten RemoteAddr when X-Real-Ip was sent.
	if ip := r.Header.Get("X-Real-Ip"); ip != "" {
		return "ip:" + ip
	}
	return "ip:" + r.RemoteAddr
}
