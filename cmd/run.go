package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof" // pprof handler
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/avast/retry-go/v3"
	"github.com/carlink-io/carlink/api"
	"github.com/carlink-io/carlink/core/storage"
	"github.com/carlink-io/carlink/renault"
	"github.com/carlink-io/carlink/server"
	"github.com/carlink-io/carlink/util"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/thoas/go-funk"
)

// runCmd represents the base command when called without any subcommands
var runCmd = &cobra.Command{
	Use:              "run",
	Hidden:           true,
	Version:          fmt.Sprintf("%s (%s)", server.Version, server.Commit),
	PersistentPreRun: persistentConfig,
	PreRun:           runConfig,
	Run:              runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// setupHub logs in and populates the hub with the configured vehicles
func setupHub(ctx context.Context, conf config) (*renault.Hub, error) {
	settings, err := renault.SettingsForLocale(conf.Locale, conf.Region)
	if err != nil {
		return nil, err
	}

	hub := renault.NewHub(util.NewLogger("renault"), settings, viper.GetDuration("interval"))

	// transient login failures are retried, rejected credentials are not
	err = retry.Do(
		func() error {
			return hub.Login(conf.User, conf.Password)
		},
		retry.Attempts(3),
		retry.Delay(5*time.Second),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, api.ErrInvalidCredentials)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	accountID := conf.Account
	if accountID == "" {
		accounts, err := hub.Accounts(ctx)
		if err != nil {
			return nil, err
		}

		if len(accounts) != 1 {
			return nil, fmt.Errorf("cannot identify account: %d candidates", len(accounts))
		}
		accountID = accounts[0].AccountID
	}

	links, err := hub.Vehicles(ctx, accountID)
	if err != nil {
		return nil, err
	}

	for _, link := range links {
		vin := strings.ToUpper(link.VIN)
		if len(conf.Vehicles) > 0 && !funk.ContainsString(conf.Vehicles, vin) {
			continue
		}

		v, err := hub.Add(ctx, accountID, link.VehicleDetails)
		if err != nil {
			log.ERROR.Printf("vehicle %s: %v", vin, err)
			continue
		}

		log.INFO.Printf("vehicle %s: active endpoints %v", v.VIN(), v.Active())
	}

	if len(hub.All()) == 0 {
		return nil, errors.New("no vehicles")
	}

	return hub, nil
}

// recordTelemetry stores a battery sample whenever a vehicle's battery
// coordinator delivers a fresh reading
func recordTelemetry(store *storage.Store, hub *renault.Hub) {
	for _, v := range hub.All() {
		v := v
		ok := v.Subscribe(renault.Battery, func() {
			status, ok := v.Battery()
			if !ok {
				return
			}
			if err := store.RecordBattery(v.VIN(), status); err != nil {
				log.ERROR.Printf("vehicle %s: record battery: %v", v.VIN(), err)
			}
		})
		if ok {
			log.DEBUG.Printf("vehicle %s: recording battery samples", v.VIN())
		}
	}
}

func runRun(cmd *cobra.Command, args []string) {
	util.LogLevel(viper.GetString("log"), viper.GetStringMapString("levels"))
	log.INFO.Printf("carlink %s (%s)", server.Version, server.Commit)

	// load config and re-configure logging after reading config file
	conf, err := loadConfigFile(cfgFile)
	if err != nil {
		log.FATAL.Fatal(err)
	}

	util.LogLevel(viper.GetString("log"), viper.GetStringMapString("levels"))

	hub, err := setupHub(context.Background(), conf)
	if err != nil {
		log.FATAL.Fatal(err)
	}

	// setup database
	if conf.Database != "" {
		store, err := storage.Open(util.NewLogger("sqlite"), conf.Database)
		if err != nil {
			log.FATAL.Fatal(err)
		}
		recordTelemetry(store, hub)
	}

	// create webserver
	uri := viper.GetString("uri")
	httpd := server.NewHTTPd(uri, hub)

	if addr, err := server.SiteAddr(uri); err == nil {
		log.INFO.Println("listening at", addr)
	}

	// metrics
	if viper.GetBool("metrics") {
		httpd.Router().Handle("/metrics", promhttp.Handler())
	}

	// pprof
	if viper.GetBool("profile") {
		httpd.Router().PathPrefix("/debug/").Handler(http.DefaultServeMux)
	}

	// catch signals
	go func() {
		signalC := make(chan os.Signal, 1)
		signal.Notify(signalC, os.Interrupt, syscall.SIGTERM)

		<-signalC // wait for signal
		hub.Close()

		os.Exit(1)
	}()

	log.FATAL.Println(httpd.ListenAndServe())
}
