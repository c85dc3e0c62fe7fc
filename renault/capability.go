package renault

import (
	"context"
	"sync"

	"github.com/carlink-io/carlink/renault/kamereon"
	"github.com/carlink-io/carlink/util"
)

// prober implements the two-part endpoint capability check. Model support
// and contract coverage are independent, both must hold. The probe is a
// best-effort filter: combinations it misjudges are corrected by the dynamic
// failure signal of the coordinator.
type prober struct {
	log       *util.Logger
	api       *kamereon.API
	accountID string
	details   kamereon.VehicleDetails

	once      sync.Once
	contracts []kamereon.Contract
	err       error
}

func newProber(log *util.Logger, api *kamereon.API, accountID string, details kamereon.VehicleDetails) *prober {
	return &prober{
		log:       log,
		api:       api,
		accountID: accountID,
		details:   details,
	}
}

// Available returns true if the vehicle model supports the endpoint and the
// account contract covers it. Probe failures fail closed: an endpoint whose
// availability cannot be confirmed is treated as unavailable and logged,
// never raised.
func (p *prober) Available(ctx context.Context, e Endpoint) bool {
	if !p.modelSupports(e) {
		p.log.DEBUG.Printf("%s: model %s does not support %s", p.details.VIN, p.details.Model.Code, e)
		return false
	}

	covered, err := p.contractCovers(ctx, e)
	if err != nil {
		p.log.WARN.Printf("%s: contract check for %s failed: %v", p.details.VIN, e, err)
		return false
	}
	if !covered {
		p.log.DEBUG.Printf("%s: contract does not cover %s", p.details.VIN, e)
	}

	return covered
}

// modelSupports is the hardware/firmware capability check
func (p *prober) modelSupports(e Endpoint) bool {
	switch e {
	case Location:
		return p.details.SupportsLocation()
	case Battery, ChargeMode, ChargingSettings:
		return p.details.UsesElectricity()
	default:
		return true
	}
}

// contractCovers is the subscription entitlement check. Contracts are
// fetched once per probe run.
func (p *prober) contractCovers(ctx context.Context, e Endpoint) (bool, error) {
	p.once.Do(func() {
		p.contracts, p.err = p.api.Contracts(ctx, p.accountID, p.details.VIN)
	})
	if p.err != nil {
		return false, p.err
	}

	required := requiredContract[e]
	if required == "" {
		return true, nil
	}

	for _, c := range p.contracts {
		if c.Type == required && c.Status == kamereon.ContractActive {
			return true, nil
		}
	}

	return false, nil
}
