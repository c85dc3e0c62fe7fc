package cmd

import (
	"fmt"
	"time"

	"github.com/carlink-io/carlink/renault"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type config struct {
	URI      string
	Log      string
	Levels   map[string]string
	Interval time.Duration
	Metrics  bool
	Profile  bool
	Database string           // sqlite file for telemetry recording, empty disables
	Locale   string           // api locale, e.g. fr_FR
	User     string           // account email
	Password string
	Account  string           // account id, optional with a single account
	Vehicles []string         // vins to track, empty tracks all
	Region   renault.Settings // endpoint overrides
}

// loadConfigFile unmarshals the configuration read by viper
func loadConfigFile(cfgFile string) (config, error) {
	var conf config

	if cfgFile != "" {
		log.INFO.Println("using config file", cfgFile)
	}

	if err := viper.UnmarshalExact(&conf, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)); err != nil {
		return conf, fmt.Errorf("failed parsing config file %s: %w", cfgFile, err)
	}

	if conf.Locale == "" {
		conf.Locale = "fr_FR"
	}

	return conf, nil
}
