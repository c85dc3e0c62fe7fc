package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/carlink-io/carlink/api"
	"github.com/carlink-io/carlink/renault"
	"github.com/carlink-io/carlink/renault/kamereon"
	"github.com/gorilla/mux"
)

type vehicleSummary struct {
	VIN          string   `json:"vin"`
	Brand        string   `json:"brand"`
	Model        string   `json:"model"`
	Registration string   `json:"registration,omitempty"`
	Endpoints    []string `json:"endpoints"`
}

// vehicle resolves the request's vin to a registered vehicle. A nil return
// means the response has already been written.
func vehicle(w http.ResponseWriter, r *http.Request, hub *renault.Hub) *renault.Vehicle {
	vin := mux.Vars(r)["vin"]

	if !vinPattern.MatchString(vin) {
		jsonError(w, http.StatusBadRequest, fmt.Errorf("invalid vin: %s", vin))
		return nil
	}

	v, err := hub.VehicleByVIN(vin)
	if err != nil {
		jsonError(w, http.StatusNotFound, err)
		return nil
	}

	return v
}

// commandError maps command failures to response status codes
func commandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, api.ErrNotSupported):
		jsonError(w, http.StatusNotImplemented, err)
	case errors.Is(err, api.ErrAccessDenied):
		jsonError(w, http.StatusForbidden, err)
	case errors.Is(err, api.ErrNotAvailable):
		jsonError(w, http.StatusServiceUnavailable, err)
	default:
		jsonError(w, http.StatusBadGateway, err)
	}
}

// vehiclesHandler lists the registered vehicles and their active endpoints
func vehiclesHandler(hub *renault.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := make([]vehicleSummary, 0)

		for _, v := range hub.All() {
			details := v.Details()

			endpoints := make([]string, 0)
			for _, e := range v.Active() {
				endpoints = append(endpoints, string(e))
			}

			res = append(res, vehicleSummary{
				VIN:          v.VIN(),
				Brand:        details.Brand.Label,
				Model:        details.Model.Label,
				Registration: details.RegistrationNumber,
				Endpoints:    endpoints,
			})
		}

		jsonResult(w, res)
	}
}

// dataHandler returns the cached reading of a single endpoint
func dataHandler(hub *renault.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := vehicle(w, r, hub)
		if v == nil {
			return
		}

		var res interface{}
		var ok bool

		switch e := renault.Endpoint(mux.Vars(r)["endpoint"]); e {
		case renault.Battery:
			res, ok = v.Battery()
		case renault.HvacStatus:
			res, ok = v.Hvac()
		case renault.Cockpit:
			res, ok = v.Cockpit()
		case renault.ChargeMode:
			res, ok = v.ChargeMode()
		case renault.Location:
			res, ok = v.Location()
		case renault.ChargingSettings:
			res, ok = v.ChargingSettings()
		default:
			jsonError(w, http.StatusNotFound, fmt.Errorf("unknown endpoint: %s", e))
			return
		}

		if !ok {
			jsonError(w, http.StatusServiceUnavailable, api.ErrNotAvailable)
			return
		}

		jsonResult(w, res)
	}
}

func hvacStartHandler(hub *renault.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := vehicle(w, r, hub)
		if v == nil {
			return
		}

		var req struct {
			Temperature float64    `json:"temperature"`
			When        *time.Time `json:"when,omitempty"`
		}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		res, err := v.Commander().ClimateStart(r.Context(), req.Temperature, req.When)
		if err != nil {
			commandError(w, err)
			return
		}

		jsonResult(w, res)
	}
}

func hvacStopHandler(hub *renault.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := vehicle(w, r, hub)
		if v == nil {
			return
		}

		res, err := v.Commander().ClimateStop(r.Context())
		if err != nil {
			commandError(w, err)
			return
		}

		jsonResult(w, res)
	}
}

func chargeStartHandler(hub *renault.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := vehicle(w, r, hub)
		if v == nil {
			return
		}

		res, err := v.Commander().ChargeStart(r.Context())
		if err != nil {
			commandError(w, err)
			return
		}

		jsonResult(w, res)
	}
}

func chargeModeHandler(hub *renault.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := vehicle(w, r, hub)
		if v == nil {
			return
		}

		res, err := v.Commander().SetChargeMode(r.Context(), mux.Vars(r)["value"])
		if err != nil {
			commandError(w, err)
			return
		}

		jsonResult(w, res)
	}
}

func chargeSchedulesHandler(hub *renault.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := vehicle(w, r, hub)
		if v == nil {
			return
		}

		var req struct {
			Schedules []kamereon.ChargeSchedule `json:"schedules"`
		}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		res, err := v.Commander().SetChargeSchedules(r.Context(), req.Schedules)
		if err != nil {
			commandError(w, err)
			return
		}

		jsonResult(w, res)
	}
}
