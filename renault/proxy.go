package renault

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/carlink-io/carlink/renault/kamereon"
	"github.com/carlink-io/carlink/util"
	"golang.org/x/sync/errgroup"
)

// Vehicle aggregates the coordinators for one car. Coordinators are created
// only for endpoints passing the capability probe, and removed again when a
// refresh reveals a denial the probe missed.
type Vehicle struct {
	log       *util.Logger
	api       *kamereon.API
	accountID string
	details   kamereon.VehicleDetails
	interval  time.Duration

	battery  *Coordinator[kamereon.BatteryStatus]
	hvac     *Coordinator[kamereon.HvacStatus]
	cockpit  *Coordinator[kamereon.Cockpit]
	mode     *Coordinator[kamereon.ChargeMode]
	location *Coordinator[kamereon.Location]
	settings *Coordinator[kamereon.ChargingSettings]

	mu           sync.Mutex
	coordinators map[Endpoint]controller
}

// NewVehicle creates the proxy for one vehicle. Initialise must be called
// before the proxy is used.
func NewVehicle(log *util.Logger, api *kamereon.API, accountID string, details kamereon.VehicleDetails, interval time.Duration) *Vehicle {
	return &Vehicle{
		log:          log,
		api:          api,
		accountID:    accountID,
		details:      details,
		interval:     interval,
		coordinators: make(map[Endpoint]controller),
	}
}

// VIN returns the vehicle identification number
func (v *Vehicle) VIN() string {
	return strings.ToUpper(v.details.VIN)
}

// Details returns the static vehicle metadata
func (v *Vehicle) Details() kamereon.VehicleDetails {
	return v.details
}

// Initialise probes the endpoint capabilities, creates coordinators for the
// available endpoints and performs one blocking refresh per coordinator.
// Coordinators suspended by their first refresh are swept before the
// schedules start.
func (v *Vehicle) Initialise(ctx context.Context) error {
	prober := newProber(v.log, v.api, v.accountID, v.details)

	for _, e := range Endpoints {
		if electricOnly[e] && !v.details.UsesElectricity() {
			continue
		}
		if !prober.Available(ctx, e) {
			continue
		}
		v.create(e)
	}

	var g errgroup.Group
	v.mu.Lock()
	for e, c := range v.coordinators {
		e, c := e, c
		g.Go(func() error {
			if err := c.Refresh(ctx); err != nil {
				v.log.DEBUG.Printf("%s %s: initial refresh: %v", v.VIN(), e, err)
			}
			return nil
		})
	}
	v.mu.Unlock()
	_ = g.Wait()

	v.sweep()

	v.mu.Lock()
	for _, c := range v.coordinators {
		c := c
		c.Run()
		// a denial discovered while polling triggers the next housekeeping pass
		c.Subscribe(func() {
			if c.Suspended() {
				v.sweep()
			}
		})
	}
	v.mu.Unlock()

	return ctx.Err()
}

func (v *Vehicle) create(e Endpoint) {
	name := fmt.Sprintf("%s %s", v.VIN(), e)

	v.mu.Lock()
	defer v.mu.Unlock()

	switch e {
	case Battery:
		v.battery = NewCoordinator(v.log, name, func(ctx context.Context) (kamereon.BatteryStatus, error) {
			return v.api.BatteryStatus(ctx, v.accountID, v.VIN())
		}, v.interval)
		v.coordinators[e] = v.battery
	case HvacStatus:
		v.hvac = NewCoordinator(v.log, name, func(ctx context.Context) (kamereon.HvacStatus, error) {
			return v.api.HvacStatus(ctx, v.accountID, v.VIN())
		}, v.interval)
		v.coordinators[e] = v.hvac
	case Cockpit:
		// mileage changes slowly, poll at half rate
		v.cockpit = NewCoordinator(v.log, name, func(ctx context.Context) (kamereon.Cockpit, error) {
			return v.api.Cockpit(ctx, v.accountID, v.VIN())
		}, 2*v.interval)
		v.coordinators[e] = v.cockpit
	case ChargeMode:
		v.mode = NewCoordinator(v.log, name, func(ctx context.Context) (kamereon.ChargeMode, error) {
			return v.api.ChargeMode(ctx, v.accountID, v.VIN())
		}, v.interval)
		v.coordinators[e] = v.mode
	case Location:
		v.location = NewCoordinator(v.log, name, func(ctx context.Context) (kamereon.Location, error) {
			return v.api.Location(ctx, v.accountID, v.VIN())
		}, v.interval)
		v.coordinators[e] = v.location
	case ChargingSettings:
		v.settings = NewCoordinator(v.log, name, func(ctx context.Context) (kamereon.ChargingSettings, error) {
			return v.api.ChargingSettings(ctx, v.accountID, v.VIN())
		}, 2*v.interval)
		v.coordinators[e] = v.settings
	}
}

// sweep drops coordinators whose refresh revealed a permanent denial
func (v *Vehicle) sweep() {
	v.mu.Lock()
	defer v.mu.Unlock()

	for e, c := range v.coordinators {
		if !c.Suspended() {
			continue
		}

		c.Close()
		delete(v.coordinators, e)

		switch e {
		case Battery:
			v.battery = nil
		case HvacStatus:
			v.hvac = nil
		case Cockpit:
			v.cockpit = nil
		case ChargeMode:
			v.mode = nil
		case Location:
			v.location = nil
		case ChargingSettings:
			v.settings = nil
		}

		v.log.INFO.Printf("%s: dropped %s", v.VIN(), e)
	}
}

// Active returns the endpoints with a live coordinator, in probe order
func (v *Vehicle) Active() []Endpoint {
	v.mu.Lock()
	defer v.mu.Unlock()

	res := make([]Endpoint, 0, len(v.coordinators))
	for _, e := range Endpoints {
		if _, ok := v.coordinators[e]; ok {
			res = append(res, e)
		}
	}
	return res
}

// Has returns true if the endpoint has a live coordinator
func (v *Vehicle) Has(e Endpoint) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.coordinators[e]
	return ok
}

// Refresh triggers an on-demand refresh of the given endpoint
func (v *Vehicle) Refresh(ctx context.Context, e Endpoint) error {
	v.mu.Lock()
	c, ok := v.coordinators[e]
	v.mu.Unlock()

	if !ok {
		return fmt.Errorf("%s: no active coordinator for %s", v.VIN(), e)
	}
	return c.Refresh(ctx)
}

// Subscribe registers a listener on the given endpoint's coordinator
func (v *Vehicle) Subscribe(e Endpoint, fn func()) bool {
	v.mu.Lock()
	c, ok := v.coordinators[e]
	v.mu.Unlock()

	if ok {
		c.Subscribe(fn)
	}
	return ok
}

// cached returns the coordinator's cache if the coordinator is still active
func cached[T any](v *Vehicle, c **Coordinator[T]) (T, bool) {
	v.mu.Lock()
	co := *c
	v.mu.Unlock()

	if co == nil {
		var zero T
		return zero, false
	}
	return co.Cached()
}

// Battery returns the cached battery status
func (v *Vehicle) Battery() (kamereon.BatteryStatus, bool) {
	return cached(v, &v.battery)
}

// Hvac returns the cached hvac status
func (v *Vehicle) Hvac() (kamereon.HvacStatus, bool) {
	return cached(v, &v.hvac)
}

// Cockpit returns the cached cockpit data
func (v *Vehicle) Cockpit() (kamereon.Cockpit, bool) {
	return cached(v, &v.cockpit)
}

// ChargeMode returns the cached charge mode
func (v *Vehicle) ChargeMode() (kamereon.ChargeMode, bool) {
	return cached(v, &v.mode)
}

// Location returns the cached location
func (v *Vehicle) Location() (kamereon.Location, bool) {
	return cached(v, &v.location)
}

// ChargingSettings returns the cached charging settings
func (v *Vehicle) ChargingSettings() (kamereon.ChargingSettings, bool) {
	return cached(v, &v.settings)
}

// Close cancels all scheduled refreshes
func (v *Vehicle) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	for e, c := range v.coordinators {
		c.Close()
		delete(v.coordinators, e)
	}
}
