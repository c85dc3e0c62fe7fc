package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/carlink-io/carlink/renault"
	"github.com/carlink-io/carlink/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// vehiclesCmd represents the vehicles command
var vehiclesCmd = &cobra.Command{
	Use:   "vehicles",
	Short: "Query accounts and vehicles",
	Run:   vehiclesRun,
}

func init() {
	rootCmd.AddCommand(vehiclesCmd)
}

func vehiclesRun(cmd *cobra.Command, args []string) {
	util.LogLevel(viper.GetString("log"), viper.GetStringMapString("levels"))

	conf, err := loadConfigFile(cfgFile)
	if err != nil {
		log.FATAL.Fatal(err)
	}

	settings, err := renault.SettingsForLocale(conf.Locale, conf.Region)
	if err != nil {
		log.FATAL.Fatal(err)
	}

	hub := renault.NewHub(util.NewLogger("renault"), settings, time.Minute)
	defer hub.Close()

	if err := hub.Login(conf.User, conf.Password); err != nil {
		log.FATAL.Fatal(err)
	}

	ctx := context.Background()

	accounts, err := hub.Accounts(ctx)
	if err != nil {
		log.FATAL.Fatal(err)
	}

	for _, account := range accounts {
		fmt.Printf("account %s (%s, %s)\n", account.AccountID, account.AccountType, account.AccountStatus)

		links, err := hub.Vehicles(ctx, account.AccountID)
		if err != nil {
			log.ERROR.Printf("account %s: %v", account.AccountID, err)
			continue
		}

		for _, link := range links {
			d := link.VehicleDetails
			fmt.Printf("  %s %s %s (%s, %s)\n",
				strings.ToUpper(link.VIN), d.Brand.Label, d.Model.Label, d.Energy.Label, link.Status,
			)
		}
	}
}
