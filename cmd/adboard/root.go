package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"ad-revenue-lab/internal/config"
)

// cfg is the configuration loaded for the running command.
var cfg *config.Config

// newRootCmd builds the command tree. Each call returns fresh flags bound
// to the global viper instance.
func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "adboard",
		Short: "adboard reports advertising revenue, BD headcount and productivity",
		Long: `adboard reads the finance ledger of advertising revenue and computes
fifteen metrics for the Global block and every configured country:
revenue split by country department and the AD department, BD headcount
and revenue per BD.

Every summary cell can be expanded into the exact ledger rows behind it,
previewed in the terminal or exported as CSV, XLSX or Parquet. The same
views are served over HTTP by the serve sub-command.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initConfig(cfgFile)

			loaded, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			cfg = loaded

			zerolog.SetGlobalLevel(cfg.ZerologLevel())
			if cfg.Log.JSON {
				log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.adboard.yaml)")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.Int("period", config.DefaultPeriod, "accounting period, YYYYMM")
	flags.String("attr", config.DefaultBusinessAttribute, "business attribute counted as country BD")
	flags.StringSlice("countries", config.DefaultCountries, "country departments, in output order")
	flags.String("source", config.SourceSample, "ledger source (csv, sample, postgres, clickhouse)")
	flags.String("csv", "", "ledger CSV path for the csv source")
	flags.Bool("skip-invalid", false, "skip invalid ledger rows instead of failing")
	flags.String("postgres-dsn", "", "PostgreSQL connection string")
	flags.String("clickhouse-dsn", "", "ClickHouse connection string")

	bindFlags(flags, map[string]string{
		"log.level":             "log-level",
		"period":                "period",
		"business_attribute":    "attr",
		"countries":             "countries",
		"source.kind":           "source",
		"source.csv_path":       "csv",
		"source.skip_invalid":   "skip-invalid",
		"source.postgres_dsn":   "postgres-dsn",
		"source.clickhouse_dsn": "clickhouse-dsn",
	})

	rootCmd.AddCommand(
		newSummaryCmd(),
		newDetailCmd(),
		newVerifyCmd(),
		newServeCmd(),
		newIngestCmd(),
		newSampleCmd(),
	)
	return rootCmd
}

// Execute builds the command tree and runs it.
// This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// bindFlags binds viper keys to flags.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			log.Panic().Err(err).Str("flag", name).Msg("BindPFlag failed")
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".adboard" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".adboard")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}
