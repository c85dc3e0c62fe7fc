package kamereon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/carlink-io/carlink/util"
	"github.com/carlink-io/carlink/util/request"
	"github.com/carlink-io/carlink/util/transport"
)

// Identity provides the token headers for the two kamereon scopes
type Identity interface {
	// JWT returns the gigya identity token
	JWT() (string, error)
	// AccessToken returns the account-scoped vehicle api token
	AccessToken(accountID string) (string, error)
}

// API is the kamereon vehicle data and command client
type API struct {
	*request.Helper
	uri      string
	country  string
	identity Identity
}

// NewAPI creates the kamereon api client. Every request carries the api key
// and identity token, account-scoped requests additionally carry the access
// token obtained from the identity.
func NewAPI(log *util.Logger, uri, apiKey, country string, identity Identity) *API {
	v := &API{
		Helper:   request.NewHelper(log),
		uri:      strings.TrimSuffix(uri, "/"),
		country:  country,
		identity: identity,
	}

	v.Client.Transport = &transport.Decorator{
		Decorator: func(req *http.Request) error {
			jwt, err := identity.JWT()
			if err == nil {
				req.Header.Set("apikey", apiKey)
				req.Header.Set("x-gigya-id_token", jwt)
			}
			return err
		},
		Base: v.Client.Transport,
	}

	return v
}

// request builds an api request. Account-scoped requests are decorated with
// the access token for the given account.
func (v *API) request(ctx context.Context, method, uri, accountID string, body io.Reader, headers ...map[string]string) (*http.Request, error) {
	req, err := request.New(method, uri, body, headers...)
	if err != nil {
		return nil, err
	}

	if accountID != "" {
		token, err := v.identity.AccessToken(accountID)
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-kamereon-authorization", "Bearer "+token)
	}

	return req.WithContext(ctx), nil
}

type enveloped interface {
	error() error
}

// doJSON executes the request and surfaces remote envelope errors in
// preference over bare http status errors
func (v *API) doJSON(req *http.Request, res enveloped) error {
	err := v.DoJSON(req, res)
	if rerr := res.error(); rerr != nil {
		return rerr
	}
	return err
}

// Persons returns the accounts linked to the given person id
func (v *API) Persons(ctx context.Context, personID string) ([]Account, error) {
	var res personResponse
	uri := fmt.Sprintf("%s/commerce/v1/persons/%s?country=%s", v.uri, personID, v.country)

	req, err := v.request(ctx, http.MethodGet, uri, "", nil, request.AcceptJSON)
	if err == nil {
		err = v.doJSON(req, &res)
	}

	return res.Accounts, err
}

// Vehicles returns the vehicles linked to the given account
func (v *API) Vehicles(ctx context.Context, accountID string) ([]VehicleLink, error) {
	var res vehiclesResponse
	uri := fmt.Sprintf("%s/commerce/v1/accounts/%s/vehicles?country=%s", v.uri, accountID, v.country)

	req, err := v.request(ctx, http.MethodGet, uri, accountID, nil, request.AcceptJSON)
	if err == nil {
		err = v.doJSON(req, &res)
	}

	return res.VehicleLinks, err
}

// Contracts returns the subscription contracts attached to the given vehicle
func (v *API) Contracts(ctx context.Context, accountID, vin string) ([]Contract, error) {
	var res contractsResponse
	uri := fmt.Sprintf("%s/commerce/v1/accounts/%s/vehicles/%s/contracts?country=%s", v.uri, accountID, vin, v.country)

	req, err := v.request(ctx, http.MethodGet, uri, accountID, nil, request.AcceptJSON)
	if err == nil {
		err = v.doJSON(req, &res)
	}

	return res.Contracts, err
}

// apiData fetches one car-adapter data endpoint
func apiData[T any](v *API, ctx context.Context, accountID, vin, version, endpoint string) (T, error) {
	var res dataResponse[T]
	uri := fmt.Sprintf("%s/commerce/v1/accounts/%s/kamereon/kca/car-adapter/%s/cars/%s/%s?country=%s",
		v.uri, accountID, version, vin, endpoint, v.country)

	req, err := v.request(ctx, http.MethodGet, uri, accountID, nil, request.AcceptJSON)
	if err == nil {
		err = v.doJSON(req, &res)
	}

	return res.Data.Attributes, err
}

// BatteryStatus returns the battery-status endpoint
func (v *API) BatteryStatus(ctx context.Context, accountID, vin string) (BatteryStatus, error) {
	return apiData[BatteryStatus](v, ctx, accountID, vin, "v2", "battery-status")
}

// HvacStatus returns the hvac-status endpoint
func (v *API) HvacStatus(ctx context.Context, accountID, vin string) (HvacStatus, error) {
	return apiData[HvacStatus](v, ctx, accountID, vin, "v1", "hvac-status")
}

// Cockpit returns the cockpit endpoint
func (v *API) Cockpit(ctx context.Context, accountID, vin string) (Cockpit, error) {
	return apiData[Cockpit](v, ctx, accountID, vin, "v2", "cockpit")
}

// ChargeMode returns the charge-mode endpoint
func (v *API) ChargeMode(ctx context.Context, accountID, vin string) (ChargeMode, error) {
	return apiData[ChargeMode](v, ctx, accountID, vin, "v1", "charge-mode")
}

// Location returns the location endpoint
func (v *API) Location(ctx context.Context, accountID, vin string) (Location, error) {
	return apiData[Location](v, ctx, accountID, vin, "v1", "location")
}

// ChargingSettings returns the charging-settings endpoint
func (v *API) ChargingSettings(ctx context.Context, accountID, vin string) (ChargingSettings, error) {
	return apiData[ChargingSettings](v, ctx, accountID, vin, "v1", "charging-settings")
}

type actionRequest struct {
	Data struct {
		Type       string      `json:"type"`
		Attributes interface{} `json:"attributes"`
	} `json:"data"`
}

type actionAttributes struct {
	Action string `json:"action"`
}

type hvacStartAttributes struct {
	Action            string  `json:"action"`
	TargetTemperature float64 `json:"targetTemperature,omitempty"`
	StartDateTime     string  `json:"startDateTime,omitempty"`
}

// action posts one car-adapter action endpoint
func (v *API) action(ctx context.Context, accountID, vin, version, endpoint, typ string, attributes interface{}) (ActionResponse, error) {
	var payload actionRequest
	payload.Data.Type = typ
	payload.Data.Attributes = attributes

	var res dataResponse[ActionResponse]
	uri := fmt.Sprintf("%s/commerce/v1/accounts/%s/kamereon/kca/car-adapter/%s/cars/%s/actions/%s?country=%s",
		v.uri, accountID, version, vin, endpoint, v.country)

	body, err := request.MarshalJSON(payload)

	var req *http.Request
	if err == nil {
		req, err = v.request(ctx, http.MethodPost, uri, accountID, body, map[string]string{
			"Content-Type": "application/vnd.api+json",
			"Accept":       "application/json",
		})
	}
	if err == nil {
		err = v.doJSON(req, &res)
	}

	ack := res.Data.Attributes
	ack.ID = res.Data.ID

	return ack, err
}

// HvacStart requests climatisation at the given target temperature,
// optionally scheduled for a later point in time
func (v *API) HvacStart(ctx context.Context, accountID, vin string, temperature float64, when *time.Time) (ActionResponse, error) {
	attrs := hvacStartAttributes{
		Action:            "start",
		TargetTemperature: temperature,
	}
	if when != nil {
		attrs.StartDateTime = when.UTC().Format("2006-01-02T15:04:05Z")
	}

	return v.action(ctx, accountID, vin, "v1", "hvac-start", "HvacStart", attrs)
}

// HvacStop cancels a pending or running climatisation
func (v *API) HvacStop(ctx context.Context, accountID, vin string) (ActionResponse, error) {
	return v.action(ctx, accountID, vin, "v1", "hvac-start", "HvacStart", actionAttributes{Action: "cancel"})
}

// SetChargeMode switches the charge mode
func (v *API) SetChargeMode(ctx context.Context, accountID, vin, mode string) (ActionResponse, error) {
	return v.action(ctx, accountID, vin, "v1", "charge-mode", "ChargeMode", actionAttributes{Action: mode})
}

// ChargeStart requests an immediate charge
func (v *API) ChargeStart(ctx context.Context, accountID, vin string) (ActionResponse, error) {
	return v.action(ctx, accountID, vin, "v1", "charging-start", "ChargingStart", actionAttributes{Action: "start"})
}

// SetChargeSchedules submits a full schedule set. The remote api does not
// support partial updates, callers must merge before submitting.
func (v *API) SetChargeSchedules(ctx context.Context, accountID, vin string, settings ChargingSettings) (ActionResponse, error) {
	return v.action(ctx, accountID, vin, "v2", "charge-schedule", "ChargeSchedule", settings)
}
