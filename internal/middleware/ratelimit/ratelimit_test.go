package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowWindow(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 2})
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("a"))

	m := rl.GetMetrics()
	assert.Equal(t, int64(1), m.Rejected)
	assert.Equal(t, int64(2), m.ClientCount)
}

func TestCleanupStaleEntries(t *testing.T) {
	rl := NewLimiter(Config{})
	defer rl.Stop()

	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.Allow("a")

	now = now.Add(11 * time.Minute)
	rl.cleanupStaleEntries()
	assert.Equal(t, 0, rl.ActiveClients())
}

func TestMiddlewareRejects(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1})
	defer rl.Stop()

	h := rl.Middleware(func(*http.Request) string { return "c" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/tools/x", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/tools/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
}
