package renault

// Endpoint identifies one remote vehicle data domain
type Endpoint string

const (
	Battery          Endpoint = "battery-status"
	HvacStatus       Endpoint = "hvac-status"
	Cockpit          Endpoint = "cockpit"
	ChargeMode       Endpoint = "charge-mode"
	Location         Endpoint = "location"
	ChargingSettings Endpoint = "charging-settings"
)

// Endpoints is the closed set of data endpoints, in probe order
var Endpoints = []Endpoint{Cockpit, HvacStatus, Battery, ChargeMode, Location, ChargingSettings}

// electricOnly endpoints are skipped entirely for vehicles without a
// traction battery, without probing
var electricOnly = map[Endpoint]bool{
	Battery:          true,
	ChargeMode:       true,
	ChargingSettings: true,
}

// requiredContract maps endpoints to the contract type that must be active
// for the account to query them. Like the remote error codes this is
// configuration data to confirm against current provider documentation.
var requiredContract = map[Endpoint]string{
	Cockpit:          "CONNECTED_SERVICES",
	HvacStatus:       "REMOTE_HVAC",
	Battery:          "ZE_SERVICES",
	ChargeMode:       "ZE_SERVICES",
	ChargingSettings: "ZE_SERVICES",
	Location:         "GPS_MONITORING",
}
