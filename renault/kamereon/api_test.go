package kamereon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carlink-io/carlink/api"
	"github.com/carlink-io/carlink/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticIdentity struct{}

func (staticIdentity) JWT() (string, error)               { return "id-token", nil }
func (staticIdentity) AccessToken(string) (string, error) { return "access-token", nil }

func testAPI(t *testing.T, handler http.HandlerFunc) (*API, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewAPI(util.NewLogger("test"), srv.URL, "testkey", "FR", staticIdentity{}), srv
}

func TestVehicles(t *testing.T) {
	v, _ := testAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/commerce/v1/accounts/account-1/vehicles", r.URL.Path)
		require.Equal(t, "FR", r.URL.Query().Get("country"))
		require.Equal(t, "testkey", r.Header.Get("apikey"))
		require.Equal(t, "id-token", r.Header.Get("x-gigya-id_token"))
		require.Equal(t, "Bearer access-token", r.Header.Get("x-kamereon-authorization"))

		fmt.Fprint(w, `{"accountId":"account-1","vehicleLinks":[{
			"brand":"RENAULT","vin":"vf1aaaaa555777999","status":"ACTIVE",
			"vehicleDetails":{
				"vin":"vf1aaaaa555777999",
				"registrationNumber":"REG-NUMBER",
				"brand":{"label":"RENAULT"},
				"model":{"code":"X102VE","label":"ZOE"},
				"energy":{"code":"ELEC","label":"electric"}
			}}]}`)
	})

	links, err := v.Vehicles(context.Background(), "account-1")
	require.NoError(t, err)
	require.Len(t, links, 1)

	details := links[0].VehicleDetails
	assert.Equal(t, "ZOE", details.Model.Label)
	assert.True(t, details.UsesElectricity())
	assert.False(t, details.UsesFuel())
	assert.True(t, details.SupportsLocation())
	assert.True(t, details.ReportsChargingPowerInWatts())
}

func TestContracts(t *testing.T) {
	v, _ := testAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/commerce/v1/accounts/account-1/vehicles/VF1AAAAA555777999/contracts", r.URL.Path)

		fmt.Fprint(w, `{"contractList":[
			{"type":"ZE_SERVICES","code":"ZE1","contractStatus":"ACTIVE"},
			{"type":"GPS_MONITORING","code":"GPS1","contractStatus":"EXPIRED"}
		]}`)
	})

	contracts, err := v.Contracts(context.Background(), "account-1", "VF1AAAAA555777999")
	require.NoError(t, err)
	require.Len(t, contracts, 2)
	assert.Equal(t, ContractActive, contracts[0].Status)
	assert.Equal(t, "EXPIRED", contracts[1].Status)
}

func TestBatteryStatus(t *testing.T) {
	v, _ := testAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/commerce/v1/accounts/account-1/kamereon/kca/car-adapter/v2/cars/VF1AAAAA555777999/battery-status", r.URL.Path)

		fmt.Fprint(w, `{"data":{"id":"VF1AAAAA555777999","attributes":{
			"timestamp":"2026-08-30T08:00:00Z",
			"batteryLevel":60,
			"batteryAutonomy":128,
			"plugStatus":1,
			"chargingStatus":1.0,
			"chargingInstantaneousPower":11000
		}}}`)
	})

	res, err := v.BatteryStatus(context.Background(), "account-1", "VF1AAAAA555777999")
	require.NoError(t, err)

	require.NotNil(t, res.BatteryLevel)
	assert.Equal(t, 60, *res.BatteryLevel)
	assert.True(t, res.PluggedIn())
	assert.True(t, res.Charging())
	assert.Nil(t, res.BatteryTemperature)
}

func TestErrorClassification(t *testing.T) {
	for _, tc := range []struct {
		code     string
		expected error
	}{
		{"err.tech.501", api.ErrNotSupported},
		{"err.func.403", api.ErrAccessDenied},
		{"err.func.wired.overloaded", api.ErrMustRetry},
	} {
		t.Run(tc.code, func(t *testing.T) {
			v, _ := testAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprintf(w, `{"errors":[{"errorCode":%q,"errorMessage":"remote failure"}]}`, tc.code)
			})

			_, err := v.BatteryStatus(context.Background(), "account-1", "VF1AAAAA555777999")
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestErrorUnmappedCodeStaysTransient(t *testing.T) {
	v, _ := testAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"errors":[{"errorCode":"err.tech.unknown","errorMessage":"oops"}]}`)
	})

	_, err := v.BatteryStatus(context.Background(), "account-1", "VF1AAAAA555777999")
	require.Error(t, err)
	assert.NotErrorIs(t, err, api.ErrNotSupported)
	assert.NotErrorIs(t, err, api.ErrAccessDenied)
}

func TestHvacStart(t *testing.T) {
	v, _ := testAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/commerce/v1/accounts/account-1/kamereon/kca/car-adapter/v1/cars/VF1AAAAA555777999/actions/hvac-start", r.URL.Path)
		require.Equal(t, "application/vnd.api+json", r.Header.Get("Content-Type"))

		var payload struct {
			Data struct {
				Type       string `json:"type"`
				Attributes struct {
					Action            string  `json:"action"`
					TargetTemperature float64 `json:"targetTemperature"`
				} `json:"attributes"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "HvacStart", payload.Data.Type)
		require.Equal(t, "start", payload.Data.Attributes.Action)
		require.Equal(t, 21.0, payload.Data.Attributes.TargetTemperature)

		fmt.Fprint(w, `{"data":{"id":"action-1","type":"HvacStart","attributes":{"action":"start"}}}`)
	})

	res, err := v.HvacStart(context.Background(), "account-1", "VF1AAAAA555777999", 21, nil)
	require.NoError(t, err)
	assert.Equal(t, "action-1", res.ID)
	assert.Equal(t, "start", res.Action)
}

func TestSetChargeSchedules(t *testing.T) {
	v, _ := testAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/commerce/v1/accounts/account-1/kamereon/kca/car-adapter/v2/cars/VF1AAAAA555777999/actions/charge-schedule", r.URL.Path)

		var payload struct {
			Data struct {
				Type       string           `json:"type"`
				Attributes ChargingSettings `json:"attributes"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "ChargeSchedule", payload.Data.Type)
		require.Len(t, payload.Data.Attributes.Schedules, 1)

		fmt.Fprint(w, `{"data":{"id":"action-2","type":"ChargeSchedule","attributes":{}}}`)
	})

	settings := ChargingSettings{Schedules: []ChargeSchedule{
		{ID: 1, Activated: true, Monday: &ChargeDay{StartTime: "T22:00Z", Duration: 420}},
	}}

	res, err := v.SetChargeSchedules(context.Background(), "account-1", "VF1AAAAA555777999", settings)
	require.NoError(t, err)
	assert.Equal(t, "action-2", res.ID)
}
