package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wellnessbuddy/wellness-platform/internal/tenancy"
)

func newTestLimiter(rate float64, burst int, clock *time.Time) *RateLimiter {
	rl := NewRateLimiter(rate, burst)
	rl.now = func() time.Time { return *clock }
	return rl
}

func TestRateLimiter_BurstThenRefill(t *testing.T) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rl := newTestLimiter(1, 2, &clock)
	defer rl.Stop()

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "keys are independent")

	clock = clock.Add(time.Second)
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rl := newTestLimiter(1, 1, &clock)
	defer rl.Stop()

	rl.Allow("idle")
	rl.evict(clock.Add(time.Minute))

	rl.mu.Lock()
	_, ok := rl.buckets["idle"]
	rl.mu.Unlock()
	assert.False(t, ok)
}

func TestRateLimit_Middleware(t *testing.T) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rl := newTestLimiter(0.5, 1, &clock)
	defer rl.Stop()
	handler := RateLimit(rl)(okHandler(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.Header.Set("X-Real-Ip", "203.0.113.9")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))

	rl.Stop()
	rl.Stop()
}

func TestRateLimit_KeysBySignedInUser(t *testing.T) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rl := newTestLimiter(0.5, 1, &clock)
	defer rl.Stop()
	handler := RateLimit(rl)(okHandler(nil))

	send := func(user, ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.Header.Set("X-Real-Ip", ip)
		if user != "" {
			req = req.WithContext(tenancy.WithUserID(req.Context(), user))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("alice", "198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("alice", "198.51.100.2"), "same user, new address")
	assert.Equal(t, http.StatusOK, send("bob", "198.51.100.1"))
	assert.Equal(t, http.StatusOK, send(tenancy.DemoUserID, "198.51.100.3"))
	assert.Equal(t, http.StatusTooManyRequests, send(tenancy.DemoUserID, "198.51.100.3"), "demo users share by address")
}
