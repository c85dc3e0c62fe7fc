package provider

import (
	"errors"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/benbjohnson/clock"
	"github.com/carlink-io/carlink/api"
)

var bus = EventBus.New()

const reset = "reset"

// ResetCached invalidates all cached getters
func ResetCached() {
	bus.Publish(reset)
}

// Cached wraps a getter with a mutex-guarded cache. Concurrent callers
// hitting an expired value block on the mutex and reuse the refreshed
// result, so exactly one underlying call is made per expiry.
type Cached[T any] struct {
	mux     sync.Mutex
	clock   clock.Clock
	updated time.Time
	cache   time.Duration
	getter  func() (T, error)
	val     T
	err     error
}

// NewCached wraps a getter with a cache of the given duration
func NewCached[T any](g func() (T, error), cache time.Duration) *Cached[T] {
	c := &Cached[T]{
		clock:  clock.New(),
		cache:  cache,
		getter: g,
	}

	_ = bus.Subscribe(reset, c.Reset)

	return c
}

// Get returns the cached value, refreshing it when expired.
// Errors wrapping api.ErrMustRetry are not cached.
func (c *Cached[T]) Get() (T, error) {
	c.mux.Lock()
	defer c.mux.Unlock()

	if c.mustUpdate() {
		c.val, c.err = c.getter()
		c.updated = c.clock.Now()
	}

	return c.val, c.err
}

// Reset invalidates the cached value
func (c *Cached[T]) Reset() {
	c.mux.Lock()
	c.updated = time.Time{}
	c.mux.Unlock()
}

func (c *Cached[T]) mustUpdate() bool {
	return c.clock.Since(c.updated) > c.cache || errors.Is(c.err, api.ErrMustRetry)
}
