package server

import (
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/carlink-io/carlink/renault"
	"github.com/carlink-io/carlink/util"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

var log = util.NewLogger("http")

// vinPattern matches Renault vin numbers
var vinPattern = regexp.MustCompile(`(?i)^VF1[0-9A-Z]{14}$`)

type route struct {
	Methods     []string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

// HTTPd wraps an http.Server and adds the root router
type HTTPd struct {
	*http.Server
}

// NewHTTPd creates an HTTP server with configured routes for the vehicle hub
func NewHTTPd(addr string, hub *renault.Hub) *HTTPd {
	router := mux.NewRouter().StrictSlash(true)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(jsonHandler)
	api.Use(handlers.CompressHandler)
	api.Use(handlers.CORS(
		handlers.AllowedHeaders([]string{
			"Accept", "Accept-Language", "Content-Language", "Content-Type", "Origin",
		}),
	))

	routes := map[string]route{
		"health":    {[]string{"GET"}, "/health", healthHandler},
		"vehicles":  {[]string{"GET"}, "/vehicles", vehiclesHandler(hub)},
		"data":      {[]string{"GET"}, "/vehicles/{vin}/{endpoint}", dataHandler(hub)},
		"hvacstart": {[]string{"POST", "OPTIONS"}, "/vehicles/{vin}/hvac/start", hvacStartHandler(hub)},
		"hvacstop":  {[]string{"POST", "OPTIONS"}, "/vehicles/{vin}/hvac/stop", hvacStopHandler(hub)},
		"charge":    {[]string{"POST", "OPTIONS"}, "/vehicles/{vin}/charge/start", chargeStartHandler(hub)},
		"mode":      {[]string{"POST", "OPTIONS"}, "/vehicles/{vin}/charge/mode/{value:[a-z_]+}", chargeModeHandler(hub)},
		"schedules": {[]string{"POST", "OPTIONS"}, "/vehicles/{vin}/charge/schedules", chargeSchedulesHandler(hub)},
	}

	for _, r := range routes {
		api.Methods(r.Methods...).Path(r.Pattern).Handler(r.HandlerFunc)
	}

	srv := &HTTPd{
		Server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
			ErrorLog:     log.ERROR,
		},
	}
	srv.SetKeepAlivesEnabled(true)

	return srv
}

// Router returns the main router
func (s *HTTPd) Router() *mux.Router {
	return s.Handler.(*mux.Router)
}

// jsonHandler is a middleware that decorates responses with JSON and CORS headers
func jsonHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		h.ServeHTTP(w, r)
	})
}

func jsonWrite(w http.ResponseWriter, content interface{}) {
	if err := json.NewEncoder(w).Encode(content); err != nil {
		log.ERROR.Printf("httpd: failed to encode JSON: %v", err)
	}
}

func jsonResult(w http.ResponseWriter, res interface{}) {
	w.WriteHeader(http.StatusOK)
	jsonWrite(w, map[string]interface{}{"result": res})
}

func jsonError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	jsonWrite(w, map[string]interface{}{"error": err.Error()})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
