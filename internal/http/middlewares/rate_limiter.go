package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// pruneInterval bounds how often the bucket maps are swept.
	pruneInterval = time.Minute
	// idleTTL is how long a client may stay idle before its bucket is dropped.
	idleTTL = 10 * time.Minute
)

// RateLimiter is a per-client-IP token bucket. Buckets idle for longer than
// idleTTL are evicted so the maps stay bounded by the active client set.
type RateLimiter struct {
	mu        sync.Mutex
	rate      int
	burst     int
	tokens    map[string]int
	lastTime  map[string]time.Time
	lastPrune time.Time
}

func NewRateLimiter(rate, burst int) *RateLimiter {
	return &RateLimiter{
		rate:      rate,
		burst:     burst,
		tokens:    make(map[string]int),
		lastTime:  make(map[string]time.Time),
		lastPrune: time.Now(),
	}
}

// prune drops buckets that have been idle past idleTTL. Caller holds mu.
func (rl *RateLimiter) prune(now time.Time) {
	for ip, last := range rl.lastTime {
		if now.Sub(last) > idleTTL {
			delete(rl.tokens, ip)
			delete(rl.lastTime, ip)
		}
	}
	rl.lastPrune = now
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		rl.mu.Lock()
		now := time.Now()

		if now.Sub(rl.lastPrune) >= pruneInterval {
			rl.prune(now)
		}

		if _, exists := rl.tokens[ip]; !exists {
			rl.tokens[ip] = rl.burst
			rl.lastTime[ip] = now
		}

		elapsed := now.Sub(rl.lastTime[ip])
		rl.lastTime[ip] = now

		tokensToAdd := int(elapsed.Seconds()) * rl.rate
		rl.tokens[ip] += tokensToAdd
		if rl.tokens[ip] > rl.burst {
			rl.tokens[ip] = rl.burst
		}

		if rl.tokens[ip] <= 0 {
			rl.mu.Unlock()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		rl.tokens[ip]--
		rl.mu.Unlock()

		c.Next()
	}
}
