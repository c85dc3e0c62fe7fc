package renault

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/carlink-io/carlink/api"
	"github.com/carlink-io/carlink/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinatorSingleFlight(t *testing.T) {
	var calls int32

	c := NewCoordinator(util.NewLogger("test"), "single-flight", func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		return 42, nil
	}, time.Hour)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			val, err := c.Get(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, 42, val)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "concurrent callers must share one fetch")
}

func TestCoordinatorTransientErrorKeepsCache(t *testing.T) {
	var fail int32

	c := NewCoordinator(util.NewLogger("test"), "transient", func(ctx context.Context) (int, error) {
		if atomic.LoadInt32(&fail) != 0 {
			return 0, errors.New("remote glitch")
		}
		return 42, nil
	}, time.Hour)
	defer c.Close()

	require.NoError(t, c.Refresh(context.Background()))

	val, ok := c.Cached()
	require.True(t, ok)
	require.Equal(t, 42, val)
	updated := c.Updated()

	atomic.StoreInt32(&fail, 1)
	require.Error(t, c.Refresh(context.Background()))

	val, ok = c.Cached()
	assert.True(t, ok, "stale data must remain readable")
	assert.Equal(t, 42, val)
	assert.Equal(t, updated, c.Updated(), "failed refresh must not advance the timestamp")
	assert.False(t, c.Suspended())
	assert.Error(t, c.Err())
}

func TestCoordinatorSuspendsOnDenial(t *testing.T) {
	var deny int32

	c := NewCoordinator(util.NewLogger("test"), "denial", func(ctx context.Context) (int, error) {
		if atomic.LoadInt32(&deny) != 0 {
			return 0, fmt.Errorf("remote: %w", api.ErrAccessDenied)
		}
		return 42, nil
	}, time.Hour)
	defer c.Close()

	require.NoError(t, c.Refresh(context.Background()))

	atomic.StoreInt32(&deny, 1)
	err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, api.ErrAccessDenied)

	assert.True(t, c.Suspended())
	assert.True(t, c.AccessDenied())
	assert.False(t, c.NotSupported())

	// suspension is sticky even when later calls would succeed
	atomic.StoreInt32(&deny, 0)
	assert.True(t, c.Suspended())
}

func TestCoordinatorSuspensionStopsPolling(t *testing.T) {
	mock := clock.NewMock()
	var calls int32

	c := NewCoordinator(util.NewLogger("test"), "schedule", func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, fmt.Errorf("remote: %w", api.ErrNotSupported)
	}, time.Minute)
	c.clock = mock

	c.Run()

	mock.Add(time.Minute)
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 1
	}, time.Second, time.Millisecond)

	assert.True(t, c.NotSupported())

	mock.Add(10 * time.Minute)
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "a suspended schedule must not fetch again")
}

func TestCoordinatorTimeoutIsTransient(t *testing.T) {
	c := NewCoordinator(util.NewLogger("test"), "timeout", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}, time.Hour)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx)
	assert.ErrorIs(t, err, api.ErrTimeout)
	assert.False(t, c.Suspended(), "an expired fetch must not suspend the schedule")
}

func TestCoordinatorSubscribe(t *testing.T) {
	c := NewCoordinator(util.NewLogger("test"), "notify", func(ctx context.Context) (int, error) {
		return 1, nil
	}, time.Hour)
	defer c.Close()

	notified := make(chan struct{}, 2)
	c.Subscribe(func() {
		notified <- struct{}{}
	})

	require.NoError(t, c.Refresh(context.Background()))

	select {
	case <-notified:
	case <-time.After(time.Second):
		t.Fatal("missing refresh notification")
	}
}
