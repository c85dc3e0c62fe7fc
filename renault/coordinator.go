package renault

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/benbjohnson/clock"
	"github.com/carlink-io/carlink/api"
	"github.com/carlink-io/carlink/util"
	"golang.org/x/sync/singleflight"
)

// refreshTimeout bounds a single fetch. Expiry counts as a transient fault.
const refreshTimeout = 30 * time.Second

const topicUpdate = "update"

// controller is the type-independent coordinator surface used by the vehicle
// aggregate for housekeeping
type controller interface {
	Refresh(context.Context) error
	Run()
	Close()
	Subscribe(func())
	Suspended() bool
	AccessDenied() bool
	NotSupported() bool
}

// Coordinator owns the scheduled refresh and cache for one vehicle data
// domain. Refresh failures are classified: access-denied and not-supported
// responses suspend the schedule permanently, transient faults keep the last
// good payload and the schedule running.
type Coordinator[T any] struct {
	log      *util.Logger
	clock    clock.Clock
	bus      EventBus.Bus
	name     string
	fetch    func(context.Context) (T, error)
	interval time.Duration

	group singleflight.Group

	mu           sync.RWMutex
	val          T
	ok           bool
	updated      time.Time
	err          error
	accessDenied bool
	notSupported bool

	stopOnce sync.Once
	stopC    chan struct{}
}

var _ controller = (*Coordinator[int])(nil)

// NewCoordinator creates a coordinator for the given fetch function
func NewCoordinator[T any](log *util.Logger, name string, fetch func(context.Context) (T, error), interval time.Duration) *Coordinator[T] {
	return &Coordinator[T]{
		log:      log,
		clock:    clock.New(),
		bus:      EventBus.New(),
		name:     name,
		fetch:    fetch,
		interval: interval,
		stopC:    make(chan struct{}),
	}
}

// Run starts the refresh schedule. It returns immediately. The ticker is
// created here so the schedule is registered with the clock before Run returns.
func (c *Coordinator[T]) Run() {
	ticker := c.clock.Ticker(c.interval)
	go c.loop(ticker)
}

func (c *Coordinator[T]) loop(ticker *clock.Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-c.stopC:
			return
		case <-ticker.C:
			if err := c.Refresh(context.Background()); err != nil {
				c.log.DEBUG.Printf("%s: %v", c.name, err)
			}
		}
	}
}

// Get fetches the endpoint once and returns the fresh payload. Concurrent
// callers await the in-flight fetch instead of issuing duplicate calls.
func (c *Coordinator[T]) Get(ctx context.Context) (T, error) {
	val, err, _ := c.group.Do(topicUpdate, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
		defer cancel()

		val, err := c.fetch(ctx)
		if errors.Is(err, context.DeadlineExceeded) {
			err = api.ErrTimeout
		}
		c.update(val, err)

		return val, err
	})

	return val.(T), err
}

// Refresh fetches the endpoint once, sharing in-flight fetches
func (c *Coordinator[T]) Refresh(ctx context.Context) error {
	_, err := c.Get(ctx)
	return err
}

func (c *Coordinator[T]) update(val T, err error) {
	var suspend bool
	result := "success"

	c.mu.Lock()
	c.err = err

	switch {
	case err == nil:
		c.val = val
		c.ok = true
		c.updated = c.clock.Now()
	case errors.Is(err, api.ErrAccessDenied):
		c.accessDenied = true
		suspend = true
		result = "access_denied"
	case errors.Is(err, api.ErrNotSupported):
		c.notSupported = true
		suspend = true
		result = "not_supported"
	default:
		// transient: previous data remains the last known good value
		result = "error"
	}
	c.mu.Unlock()

	refreshCounter.WithLabelValues(c.name, result).Inc()

	if suspend {
		suspendedGauge.WithLabelValues(c.name, result).Set(1)
		c.log.WARN.Printf("%s: polling suspended: %v", c.name, err)
		c.Close()
	}

	c.bus.Publish(topicUpdate)
}

// Cached returns the last successful payload, or false if none exists yet
func (c *Coordinator[T]) Cached() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.val, c.ok
}

// Updated returns the time of the last successful refresh
func (c *Coordinator[T]) Updated() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updated
}

// Err returns the error of the last refresh attempt
func (c *Coordinator[T]) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Subscribe registers a listener notified after every refresh attempt,
// successful or not
func (c *Coordinator[T]) Subscribe(fn func()) {
	_ = c.bus.Subscribe(topicUpdate, fn)
}

// AccessDenied returns true if polling was suspended by a denial response
func (c *Coordinator[T]) AccessDenied() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessDenied
}

// NotSupported returns true if polling was suspended by a not-supported response
func (c *Coordinator[T]) NotSupported() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.notSupported
}

// Suspended returns true once the schedule is permanently stopped
func (c *Coordinator[T]) Suspended() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessDenied || c.notSupported
}

// Close stops the refresh schedule. Idempotent.
func (c *Coordinator[T]) Close() {
	c.stopOnce.Do(func() {
		close(c.stopC)
	})
}
