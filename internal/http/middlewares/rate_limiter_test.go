package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func hitFrom(t *testing.T, handler gin.HandlerFunc, ip string) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = ip + ":1234"
	handler(c)
	if c.IsAborted() {
		return w.Code
	}
	return http.StatusOK
}

func TestRateLimiterExhaustsBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	handler := rl.RateLimitMiddleware()

	require.Equal(t, http.StatusOK, hitFrom(t, handler, "10.0.0.1"))
	require.Equal(t, http.StatusOK, hitFrom(t, handler, "10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, hitFrom(t, handler, "10.0.0.1"))

	// A different client has its own bucket.
	require.Equal(t, http.StatusOK, hitFrom(t, handler, "10.0.0.2"))
}

func TestRateLimiterPrunesIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	handler := rl.RateLimitMiddleware()

	require.Equal(t, http.StatusOK, hitFrom(t, handler, "10.0.0.1"))
	require.Equal(t, http.StatusOK, hitFrom(t, handler, "10.0.0.2"))

	// Age one client past the idle TTL and force the next sweep.
	rl.mu.Lock()
	rl.lastTime["10.0.0.1"] = time.Now().Add(-idleTTL - time.Minute)
	rl.lastPrune = time.Now().Add(-pruneInterval - time.Second)
	rl.mu.Unlock()

	require.Equal(t, http.StatusOK, hitFrom(t, handler, "10.0.0.2"))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	require.NotContains(t, rl.tokens, "10.0.0.1")
	require.NotContains(t, rl.lastTime, "10.0.0.1")
	require.Contains(t, rl.tokens, "10.0.0.2")
}
