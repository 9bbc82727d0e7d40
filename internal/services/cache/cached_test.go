package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetOrRefreshCachesWithinMaxAge(t *testing.T) {
	var c CachedValue[int]
	fetches := 0
	fetch := func(context.Context) (int, error) {
		fetches++
		return fetches, nil
	}

	value, err := c.GetOrRefresh(context.Background(), time.Minute, fetch)
	require.NoError(t, err)
	require.Equal(t, 1, value)

	// Within maxAge the fetch must not run again.
	value, err = c.GetOrRefresh(context.Background(), time.Minute, fetch)
	require.NoError(t, err)
	require.Equal(t, 1, value)
	require.Equal(t, 1, fetches)

	// A zero maxAge forces a refresh.
	value, err = c.GetOrRefresh(context.Background(), 0, fetch)
	require.NoError(t, err)
	require.Equal(t, 2, value)
}

func TestGetOrRefreshFailedFetchLeavesSlotUntouched(t *testing.T) {
	var c CachedValue[int]

	_, err := c.GetOrRefresh(context.Background(), time.Minute, func(context.Context) (int, error) {
		return 0, errors.New("boom")
	})
	require.Error(t, err)

	// The slot is still empty, so the next call fetches.
	value, err := c.GetOrRefresh(context.Background(), time.Minute, func(context.Context) (int, error) {
		return 5, nil
	})
	require.NoError(t, err)
	require.Equal(t, 5, value)

	// A later failure must not clobber the stored value.
	_, err = c.GetOrRefresh(context.Background(), 0, func(context.Context) (int, error) {
		return 0, errors.New("boom")
	})
	require.Error(t, err)

	value, err = c.GetOrRefresh(context.Background(), time.Minute, func(context.Context) (int, error) {
		return 9, nil
	})
	require.NoError(t, err)
	require.Equal(t, 5, value)
}
