package sharing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSharedCoalescesConcurrentCallers(t *testing.T) {
	s := New[string, int]("test")

	var computations atomic.Int32
	gate := make(chan struct{})

	const callers = 8
	var wg sync.WaitGroup
	results := make([]int, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = s.Shared(context.Background(), "key", func(context.Context) (int, error) {
				computations.Add(1)
				<-gate
				return 42, nil
			})
		}()
	}

	// Wait until every caller is attached before releasing the computation.
	require.Eventually(t, func() bool {
		return s.Waiters("key") == callers
	}, time.Second, time.Millisecond)
	close(gate)
	wg.Wait()

	require.Equal(t, int32(1), computations.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, 42, results[i])
	}
	require.Zero(t, s.ActiveRequests())
}

func TestSharedDoesNotReplayFailures(t *testing.T) {
	s := New[string, int]("test")

	boom := errors.New("boom")
	_, err := s.Shared(context.Background(), "key", func(context.Context) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)

	// The entry is gone, so a retry computes fresh.
	value, err := s.Shared(context.Background(), "key", func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	require.Equal(t, 7, value)
}

func TestSharedCallerCancellationDoesNotCancelComputation(t *testing.T) {
	s := New[string, int]("test")

	gate := make(chan struct{})
	computed := make(chan int, 1)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_, _ = s.Shared(ctx, "key", func(ctx context.Context) (int, error) {
			<-gate
			// The computation context must survive the caller's cancel.
			if err := ctx.Err(); err != nil {
				computed <- -1
				return 0, err
			}
			computed <- 1
			return 1, nil
		})
	}()

	require.Eventually(t, func() bool {
		return s.Waiters("key") == 1
	}, time.Second, time.Millisecond)

	cancel()
	close(gate)

	select {
	case result := <-computed:
		require.Equal(t, 1, result)
	case <-time.After(time.Second):
		t.Fatal("computation never finished")
	}
}

func TestSharedDistinctKeysRunIndependently(t *testing.T) {
	s := New[string, int]("test")

	a, err := s.Shared(context.Background(), "a", func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)
	b, err := s.Shared(context.Background(), "b", func(context.Context) (int, error) { return 2, nil })
	require.NoError(t, err)
	require.Equal(t, 1, a)
	require.Equal(t, 2, b)
}
