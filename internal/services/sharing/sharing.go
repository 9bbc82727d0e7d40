// Package sharing deduplicates concurrent identical requests into one shared
// in-flight computation.
package sharing

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hxuan190/price-engine/internal/metrics"
)

// RequestSharing maps a request key to a handle for an in-flight computation.
// Callers arriving while a computation for their key is running attach to it
// and observe the identical outcome. The entry is removed in the same critical
// section that publishes the outcome, so a retry after completion always
// triggers fresh work; failures are never replayed.
type RequestSharing[K comparable, V any] struct {
	label string

	mu       sync.Mutex
	inflight map[K]*inflightRequest[V]
}

type inflightRequest[V any] struct {
	done    chan struct{}
	waiters int
	value   V
	err     error
}

// New creates a RequestSharing instance. The label identifies the instance in
// logs and has no effect on behavior.
func New[K comparable, V any](label string) *RequestSharing[K, V] {
	return &RequestSharing[K, V]{
		label:    label,
		inflight: make(map[K]*inflightRequest[V]),
	}
}

// Shared returns the outcome of the in-flight computation registered for key,
// starting one with compute if none exists. The computation runs detached
// from the calling context: a caller whose ctx is canceled stops waiting but
// does not cancel work other callers still rely on.
func (s *RequestSharing[K, V]) Shared(ctx context.Context, key K, compute func(context.Context) (V, error)) (V, error) {
	s.mu.Lock()
	if req, ok := s.inflight[key]; ok {
		req.waiters++
		s.mu.Unlock()
		log.Debug().Str("sharing", s.label).Msg("joined in-flight request")
		metrics.SharedRequests.WithLabelValues(s.label).Inc()
		return req.wait(ctx)
	}

	req := &inflightRequest[V]{done: make(chan struct{}), waiters: 1}
	s.inflight[key] = req
	s.mu.Unlock()

	go func() {
		value, err := compute(context.WithoutCancel(ctx))

		// Removing the entry and publishing the outcome under one lock
		// guarantees no caller can observe the key as in-flight after the
		// outcome is visible.
		s.mu.Lock()
		delete(s.inflight, key)
		req.value, req.err = value, err
		close(req.done)
		s.mu.Unlock()
	}()

	return req.wait(ctx)
}

// ActiveRequests returns the number of distinct in-flight computations.
func (s *RequestSharing[K, V]) ActiveRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

// Waiters returns how many callers are attached to the computation for key,
// zero if none is in flight.
func (s *RequestSharing[K, V]) Waiters(key K) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req, ok := s.inflight[key]; ok {
		return req.waiters
	}
	return 0
}

func (r *inflightRequest[V]) wait(ctx context.Context) (V, error) {
	select {
	case <-r.done:
		return r.value, r.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}
