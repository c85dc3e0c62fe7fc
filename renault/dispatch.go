package renault

import (
	"context"
	"fmt"
	"time"

	"github.com/carlink-io/carlink/api"
	"github.com/carlink-io/carlink/renault/kamereon"
	"github.com/carlink-io/carlink/util"
)

// Commander forwards write commands to the vehicle api. Commands are
// stateless and never retried here: retrying a charge start without positive
// confirmation of the original's outcome risks duplicate physical effects.
// Errors carry the remote code and message and surface to the caller as-is.
type Commander struct {
	log       *util.Logger
	api       *kamereon.API
	accountID string
	vin       string
	settings  func(context.Context) (kamereon.ChargingSettings, error)
}

// Commander returns the command dispatcher for the vehicle
func (v *Vehicle) Commander() *Commander {
	return &Commander{
		log:       v.log,
		api:       v.api,
		accountID: v.accountID,
		vin:       v.VIN(),
		settings:  v.freshChargingSettings,
	}
}

// freshChargingSettings returns the current full schedule set via the
// charging-settings coordinator
func (v *Vehicle) freshChargingSettings(ctx context.Context) (kamereon.ChargingSettings, error) {
	v.mu.Lock()
	c := v.settings
	v.mu.Unlock()

	if c == nil {
		return kamereon.ChargingSettings{}, api.ErrNotAvailable
	}
	return c.Get(ctx)
}

// ClimateStart requests climatisation at the given target temperature,
// optionally scheduled for a later point in time
func (c *Commander) ClimateStart(ctx context.Context, temperature float64, when *time.Time) (kamereon.ActionResponse, error) {
	res, err := c.api.HvacStart(ctx, c.accountID, c.vin, temperature, when)
	if err != nil {
		err = fmt.Errorf("climate start: %w", err)
	}
	return res, err
}

// ClimateStop cancels a pending or running climatisation
func (c *Commander) ClimateStop(ctx context.Context) (kamereon.ActionResponse, error) {
	res, err := c.api.HvacStop(ctx, c.accountID, c.vin)
	if err != nil {
		err = fmt.Errorf("climate stop: %w", err)
	}
	return res, err
}

// SetChargeMode switches the charge mode
func (c *Commander) SetChargeMode(ctx context.Context, mode string) (kamereon.ActionResponse, error) {
	res, err := c.api.SetChargeMode(ctx, c.accountID, c.vin, mode)
	if err != nil {
		err = fmt.Errorf("charge mode: %w", err)
	}
	return res, err
}

// ChargeStart requests an immediate charge
func (c *Commander) ChargeStart(ctx context.Context) (kamereon.ActionResponse, error) {
	res, err := c.api.ChargeStart(ctx, c.accountID, c.vin)
	if err != nil {
		err = fmt.Errorf("charge start: %w", err)
	}
	return res, err
}

// SetChargeSchedules merges the partial update into the current schedule set
// and submits the merged whole. The remote api does not support partial
// schedule updates.
func (c *Commander) SetChargeSchedules(ctx context.Context, update []kamereon.ChargeSchedule) (kamereon.ActionResponse, error) {
	current, err := c.settings(ctx)
	if err != nil {
		return kamereon.ActionResponse{}, fmt.Errorf("charge schedules: %w", err)
	}

	merged := mergeSchedules(current.Schedules, update)

	res, err := c.api.SetChargeSchedules(ctx, c.accountID, c.vin, kamereon.ChargingSettings{Schedules: merged})
	if err != nil {
		err = fmt.Errorf("charge schedules: %w", err)
	}
	return res, err
}

// mergeSchedules replaces schedules with matching ids and keeps the rest
func mergeSchedules(current, update []kamereon.ChargeSchedule) []kamereon.ChargeSchedule {
	res := make([]kamereon.ChargeSchedule, len(current))
	copy(res, current)

	for _, u := range update {
		var found bool
		for i, s := range res {
			if s.ID == u.ID {
				res[i] = u
				found = true
				break
			}
		}
		if !found {
			res = append(res, u)
		}
	}

	return res
}
