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

// Hub owns the cloud session and the set of initialised vehicles
type Hub struct {
	log      *util.Logger
	identity *Identity
	api      *kamereon.API
	interval time.Duration

	mu       sync.Mutex
	vehicles map[string]*Vehicle
}

// NewHub creates the api clients for the given locale settings
func NewHub(log *util.Logger, settings Settings, interval time.Duration) *Hub {
	identity := NewIdentity(log, settings)

	return &Hub{
		log:      log,
		identity: identity,
		api:      kamereon.NewAPI(log, settings.KamereonURL, settings.KamereonAPIKey, settings.Country, identity),
		interval: interval,
		vehicles: make(map[string]*Vehicle),
	}
}

// Login authenticates with the given credentials
func (h *Hub) Login(user, password string) error {
	return h.identity.Login(user, password)
}

// Identity returns the hub's token source
func (h *Hub) Identity() *Identity {
	return h.identity
}

// Accounts returns the accounts of the logged-in person that carry at least
// one vehicle. Vehicle lists are fetched per account in parallel.
func (h *Hub) Accounts(ctx context.Context) ([]kamereon.Account, error) {
	personID, err := h.identity.PersonID()
	if err != nil {
		return nil, err
	}

	accounts, err := h.api.Persons(ctx, personID)
	if err != nil {
		return nil, err
	}

	populated := make([]bool, len(accounts))

	g, ctx := errgroup.WithContext(ctx)
	for i, account := range accounts {
		i, account := i, account
		g.Go(func() error {
			vehicles, err := h.api.Vehicles(ctx, account.AccountID)
			if err != nil {
				h.log.DEBUG.Printf("account %s: %v", account.AccountID, err)
				return nil
			}
			populated[i] = len(vehicles) > 0
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var res []kamereon.Account
	for i, account := range accounts {
		if populated[i] {
			res = append(res, account)
		}
	}

	return res, nil
}

// Vehicles returns the vehicle links of the given account
func (h *Hub) Vehicles(ctx context.Context, accountID string) ([]kamereon.VehicleLink, error) {
	return h.api.Vehicles(ctx, accountID)
}

// Add initialises the vehicle and registers it with the hub. A vehicle
// already registered under the same vin is closed and replaced.
func (h *Hub) Add(ctx context.Context, accountID string, details kamereon.VehicleDetails) (*Vehicle, error) {
	v := NewVehicle(h.log, h.api, accountID, details, h.interval)

	if err := v.Initialise(ctx); err != nil {
		v.Close()
		return nil, fmt.Errorf("initialise %s: %w", v.VIN(), err)
	}

	h.mu.Lock()
	if prev, ok := h.vehicles[v.VIN()]; ok {
		prev.Close()
	}
	h.vehicles[v.VIN()] = v
	h.mu.Unlock()

	return v, nil
}

// VehicleByVIN returns the registered vehicle with the given vin. If vin is
// empty and exactly one vehicle is registered, that vehicle is returned.
func (h *Hub) VehicleByVIN(vin string) (*Vehicle, error) {
	vin = strings.ToUpper(strings.TrimSpace(vin))

	h.mu.Lock()
	defer h.mu.Unlock()

	if vin == "" {
		if len(h.vehicles) == 1 {
			for _, v := range h.vehicles {
				return v, nil
			}
		}
		return nil, fmt.Errorf("cannot identify vehicle: %d candidates", len(h.vehicles))
	}

	v, ok := h.vehicles[vin]
	if !ok {
		return nil, fmt.Errorf("unknown vehicle: %s", vin)
	}

	return v, nil
}

// All returns the registered vehicles
func (h *Hub) All() []*Vehicle {
	h.mu.Lock()
	defer h.mu.Unlock()

	res := make([]*Vehicle, 0, len(h.vehicles))
	for _, v := range h.vehicles {
		res = append(res, v)
	}

	return res
}

// Close stops all vehicles and releases idle connections
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for vin, v := range h.vehicles {
		v.Close()
		delete(h.vehicles, vin)
	}

	h.api.CloseIdleConnections()
}
