package kamereon

import "github.com/thoas/go-funk"

type personResponse struct {
	errorsResponse
	Accounts []Account `json:"accounts"` // /commerce/v1/persons/%s
}

// Account is one commerce account reachable from the identity
type Account struct {
	AccountID     string `json:"accountId"`
	AccountType   string `json:"accountType"`
	AccountStatus string `json:"accountStatus"`
}

type vehiclesResponse struct {
	errorsResponse
	AccountID    string        `json:"accountId"`
	VehicleLinks []VehicleLink `json:"vehicleLinks"` // /commerce/v1/accounts/%s/vehicles
}

// VehicleLink ties a vehicle to an account
type VehicleLink struct {
	Brand          string         `json:"brand"`
	VIN            string         `json:"vin"`
	Status         string         `json:"status"`
	VehicleDetails VehicleDetails `json:"vehicleDetails"`
}

// Tag is a code/label pair used throughout the vehicle metadata
type Tag struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// VehicleDetails is the static vehicle metadata. Immutable after fetch, it
// identifies the vehicle and its model traits across all subsequent calls.
type VehicleDetails struct {
	VIN                string `json:"vin"`
	RegistrationNumber string `json:"registrationNumber"`
	Brand              Tag    `json:"brand"`
	Model              Tag    `json:"model"`
	Energy             Tag    `json:"energy"`
}

var (
	electricEnergies = []string{"ELEC", "PHEV"}

	// model-specific quirk: these models report charge power in watts
	// rather than kilowatts
	wattsModels = []string{"X102VE"}

	// models fitted with a gps module
	locationModels = []string{"X102VE", "XJB1SU", "XJA1VP"}
)

// UsesElectricity returns true if the vehicle has a traction battery
func (v VehicleDetails) UsesElectricity() bool {
	return funk.ContainsString(electricEnergies, v.Energy.Code)
}

// UsesFuel returns true if the vehicle has a combustion engine
func (v VehicleDetails) UsesFuel() bool {
	return v.Energy.Code != "ELEC"
}

// ReportsChargingPowerInWatts returns true for models reporting
// chargingInstantaneousPower in watts instead of kilowatts
func (v VehicleDetails) ReportsChargingPowerInWatts() bool {
	return funk.ContainsString(wattsModels, v.Model.Code)
}

// SupportsLocation returns true for models fitted with a gps module
func (v VehicleDetails) SupportsLocation() bool {
	return funk.ContainsString(locationModels, v.Model.Code)
}

type contractsResponse struct {
	errorsResponse
	Contracts []Contract `json:"contractList"` // /commerce/v1/accounts/%s/vehicles/%s/contracts
}

// ContractActive is the status of a currently valid contract
const ContractActive = "ACTIVE"

// Contract is one subscription entitlement attached to a vehicle
type Contract struct {
	Type   string `json:"type"`
	Code   string `json:"code"`
	Status string `json:"contractStatus"`
}

// dataResponse is the car-adapter JSON-API envelope
type dataResponse[T any] struct {
	errorsResponse
	Data struct {
		ID         string `json:"id"`
		Attributes T      `json:"attributes"`
	} `json:"data"`
}

// plug states reported by battery-status
const (
	PlugStateUnplugged = 0
	PlugStatePlugged   = 1
)

// charging states reported by battery-status
const (
	ChargeStateNotInCharge = 0.0
	ChargeStateInProgress  = 1.0
)

// BatteryStatus is the battery-status payload
type BatteryStatus struct {
	Timestamp                  string   `json:"timestamp"`
	BatteryLevel               *int     `json:"batteryLevel"`
	BatteryAutonomy            *float64 `json:"batteryAutonomy"`
	BatteryAvailableEnergy     *float64 `json:"batteryAvailableEnergy"`
	BatteryTemperature         *int     `json:"batteryTemperature"`
	PlugStatus                 *int     `json:"plugStatus"`
	ChargingStatus             *float64 `json:"chargingStatus"`
	ChargingRemainingTime      *int     `json:"chargingRemainingTime"`
	ChargingInstantaneousPower *float64 `json:"chargingInstantaneousPower"`
}

// PluggedIn returns true if the charge cable is connected
func (b BatteryStatus) PluggedIn() bool {
	return b.PlugStatus != nil && *b.PlugStatus == PlugStatePlugged
}

// Charging returns true if a charge is in progress
func (b BatteryStatus) Charging() bool {
	return b.ChargingStatus != nil && *b.ChargingStatus == ChargeStateInProgress
}

// HvacStatus is the hvac-status payload
type HvacStatus struct {
	ExternalTemperature *float64 `json:"externalTemperature"`
	HvacStatus          string   `json:"hvacStatus"`
	NextHvacStartDate   string   `json:"nextHvacStartDate,omitempty"`
}

// Cockpit is the cockpit payload. Fuel fields are absent for electric vehicles.
type Cockpit struct {
	TotalMileage *float64 `json:"totalMileage"`
	FuelAutonomy *float64 `json:"fuelAutonomy"`
	FuelQuantity *float64 `json:"fuelQuantity"`
}

// charge modes accepted by the charge-mode action
const (
	ChargeModeAlways   = "always"
	ChargeModeSchedule = "schedule_mode"
)

// ChargeMode is the charge-mode payload
type ChargeMode struct {
	ChargeMode string `json:"chargeMode"`
}

// Location is the location payload
type Location struct {
	Latitude       *float64 `json:"gpsLatitude"`
	Longitude      *float64 `json:"gpsLongitude"`
	LastUpdateTime string   `json:"lastUpdateTime"`
}

// ChargingSettings is the charging-settings payload. The remote api only
// accepts full schedule sets, partial updates must be merged by the caller.
type ChargingSettings struct {
	Mode      string           `json:"mode,omitempty"`
	Schedules []ChargeSchedule `json:"schedules"`
}

// ChargeSchedule is one weekly charge schedule slot
type ChargeSchedule struct {
	ID        int        `json:"id"`
	Activated bool       `json:"activated"`
	Monday    *ChargeDay `json:"monday,omitempty"`
	Tuesday   *ChargeDay `json:"tuesday,omitempty"`
	Wednesday *ChargeDay `json:"wednesday,omitempty"`
	Thursday  *ChargeDay `json:"thursday,omitempty"`
	Friday    *ChargeDay `json:"friday,omitempty"`
	Saturday  *ChargeDay `json:"saturday,omitempty"`
	Sunday    *ChargeDay `json:"sunday,omitempty"`
}

// ChargeDay is the charging window for one weekday
type ChargeDay struct {
	StartTime string `json:"startTime"`
	Duration  int    `json:"duration"`
}

// ActionResponse acknowledges a forwarded command
type ActionResponse struct {
	ID     string `json:"id,omitempty"`
	Action string `json:"action,omitempty"`
}
