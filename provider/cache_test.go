package provider

import (
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/carlink-io/carlink/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedGet(t *testing.T) {
	var calls int

	c := NewCached(func() (int, error) {
		calls++
		return 42, nil
	}, time.Hour)

	mock := clock.NewMock()
	c.clock = mock

	val, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, 42, val)

	_, _ = c.Get()
	assert.Equal(t, 1, calls, "cached value must be reused")

	mock.Add(2 * time.Hour)
	_, _ = c.Get()
	assert.Equal(t, 2, calls, "expired value must be refreshed")

	c.Reset()
	_, _ = c.Get()
	assert.Equal(t, 3, calls, "reset must invalidate the value")
}

func TestCachedRetryableErrorNotCached(t *testing.T) {
	var calls int

	c := NewCached(func() (int, error) {
		calls++
		if calls == 1 {
			return 0, fmt.Errorf("glitch: %w", api.ErrMustRetry)
		}
		return 42, nil
	}, time.Hour)

	_, err := c.Get()
	require.ErrorIs(t, err, api.ErrMustRetry)

	val, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.Equal(t, 2, calls)
}

func TestResetCached(t *testing.T) {
	var calls int

	c := NewCached(func() (int, error) {
		calls++
		return calls, nil
	}, time.Hour)

	_, _ = c.Get()
	ResetCached()
	val, _ := c.Get()

	assert.Equal(t, 2, val, "global reset must invalidate the value")
}
