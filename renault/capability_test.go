package renault

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/carlink-io/carlink/renault/kamereon"
	"github.com/carlink-io/carlink/util"
	"github.com/stretchr/testify/assert"
)

func testProber(t *testing.T, details kamereon.VehicleDetails, mux *http.ServeMux) *prober {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	api := kamereon.NewAPI(util.NewLogger("test"), srv.URL, "testkey", "FR", staticTestIdentity{})
	return newProber(util.NewLogger("test"), api, testAccount, details)
}

type staticTestIdentity struct{}

func (staticTestIdentity) JWT() (string, error)               { return "id-token", nil }
func (staticTestIdentity) AccessToken(string) (string, error) { return "access-token", nil }

func TestProberModelGate(t *testing.T) {
	mux := http.NewServeMux()
	serveJSON(mux, contractsPath(fuelVIN), `{"contractList":[
		{"type":"CONNECTED_SERVICES","contractStatus":"ACTIVE"}
	]}`)

	p := testProber(t, fuelDetails(), mux)
	ctx := context.Background()

	assert.False(t, p.Available(ctx, Battery), "combustion vehicle has no battery endpoint")
	assert.False(t, p.Available(ctx, ChargingSettings))
	assert.True(t, p.Available(ctx, Cockpit))
}

func TestProberContractGate(t *testing.T) {
	// gps-capable model without an active monitoring contract
	mux := http.NewServeMux()
	serveJSON(mux, contractsPath(fuelVIN), `{"contractList":[
		{"type":"CONNECTED_SERVICES","contractStatus":"ACTIVE"},
		{"type":"GPS_MONITORING","contractStatus":"EXPIRED"}
	]}`)

	p := testProber(t, fuelDetails(), mux)
	ctx := context.Background()

	assert.False(t, p.Available(ctx, Location))
	assert.True(t, p.Available(ctx, Cockpit))
}

func TestProberFullEntitlement(t *testing.T) {
	mux := http.NewServeMux()
	serveJSON(mux, contractsPath(evVIN), `{"contractList":[
		{"type":"CONNECTED_SERVICES","contractStatus":"ACTIVE"},
		{"type":"REMOTE_HVAC","contractStatus":"ACTIVE"},
		{"type":"ZE_SERVICES","contractStatus":"ACTIVE"},
		{"type":"GPS_MONITORING","contractStatus":"ACTIVE"}
	]}`)

	p := testProber(t, evDetails(), mux)
	ctx := context.Background()

	for _, e := range Endpoints {
		assert.True(t, p.Available(ctx, e), "endpoint %s", e)
	}
}

func TestProberFailsClosed(t *testing.T) {
	var calls int32

	mux := http.NewServeMux()
	mux.HandleFunc(contractsPath(evVIN), func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	p := testProber(t, evDetails(), mux)
	ctx := context.Background()

	// probe failures disable the endpoint instead of raising
	assert.False(t, p.Available(ctx, Battery))
	assert.False(t, p.Available(ctx, Cockpit))

	// contracts are fetched once per probe run
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}
