package renault

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carlink-io/carlink/renault/kamereon"
	"github.com/carlink-io/carlink/util"
	"github.com/stretchr/testify/require"
)

const (
	testAccount = "account-1"
	evVIN       = "VF1AAAAA555777999"
	fuelVIN     = "VF1BBBBB555777999"
)

func evDetails() kamereon.VehicleDetails {
	return kamereon.VehicleDetails{
		VIN:                evVIN,
		RegistrationNumber: "EV-REG",
		Brand:              kamereon.Tag{Label: "RENAULT"},
		Model:              kamereon.Tag{Code: "X102VE", Label: "ZOE"},
		Energy:             kamereon.Tag{Code: "ELEC", Label: "electric"},
	}
}

func fuelDetails() kamereon.VehicleDetails {
	return kamereon.VehicleDetails{
		VIN:                fuelVIN,
		RegistrationNumber: "FUEL-REG",
		Brand:              kamereon.Tag{Label: "RENAULT"},
		Model:              kamereon.Tag{Code: "XJB1SU", Label: "CAPTUR"},
		Energy:             kamereon.Tag{Code: "ESS", Label: "petrol"},
	}
}

// authRoutes registers the identity and token exchange endpoints every hub
// interaction depends on
func authRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/accounts.login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errorCode":0,"sessionInfo":{"cookieValue":"session-cookie"}}`)
	})
	mux.HandleFunc("/accounts.getJWT", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errorCode":0,"id_token":"id-token"}`)
	})
	mux.HandleFunc("/accounts.getAccountInfo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errorCode":0,"data":{"personId":"person-1"}}`)
	})
	mux.HandleFunc("/commerce/v1/accounts/"+testAccount+"/kamereon/token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"accessToken":"access-token"}`)
	})
}

// dataPath returns the car-adapter path of a data endpoint
func dataPath(version, vin string, e Endpoint) string {
	return fmt.Sprintf("/commerce/v1/accounts/%s/kamereon/kca/car-adapter/%s/cars/%s/%s", testAccount, version, vin, e)
}

// contractsPath returns the contracts path of a vehicle
func contractsPath(vin string) string {
	return fmt.Sprintf("/commerce/v1/accounts/%s/vehicles/%s/contracts", testAccount, vin)
}

// serveJSON registers a static JSON payload
func serveJSON(mux *http.ServeMux, path, payload string) {
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, payload)
	})
}

// serveRemoteError registers a kamereon error payload
func serveRemoteError(mux *http.ServeMux, path, code string) {
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprintf(w, `{"errors":[{"errorCode":%q,"errorMessage":"remote failure"}]}`, code)
	})
}

// newTestHub creates a logged-in hub backed by the given handler
func newTestHub(t *testing.T, handler http.Handler) *Hub {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	settings := Settings{
		Locale:         "fr_FR",
		Country:        "FR",
		GigyaURL:       srv.URL,
		GigyaAPIKey:    "gigya-key",
		KamereonURL:    srv.URL,
		KamereonAPIKey: "kamereon-key",
	}

	hub := NewHub(util.NewLogger("test"), settings, 100*time.Millisecond)
	t.Cleanup(hub.Close)

	require.NoError(t, hub.Login("user@example.org", "secret"))

	return hub
}
