// Package cache provides a short-TTL slot for slowly-changing external facts.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hxuan190/price-engine/internal/metrics"
)

// CachedValue stores one value together with its fetch timestamp. The slot
// transition is atomic: concurrent refreshes may both execute the fetch (last
// write wins) but a reader never observes a partially written value. Callers
// that need single-flight refresh compose this with sharing.RequestSharing.
type CachedValue[T any] struct {
	mu        sync.Mutex
	value     T
	fetchedAt time.Time
}

// GetOrRefresh returns the stored value when its age is within maxAge,
// otherwise calls fetch, stores the result with the current time, and returns
// it. A failed fetch leaves the slot untouched.
func (c *CachedValue[T]) GetOrRefresh(ctx context.Context, maxAge time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	c.mu.Lock()
	if !c.fetchedAt.IsZero() && time.Since(c.fetchedAt) <= maxAge {
		value := c.value
		c.mu.Unlock()
		return value, nil
	}
	c.mu.Unlock()

	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	c.value = value
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	metrics.CacheRefreshes.Inc()
	return value, nil
}
