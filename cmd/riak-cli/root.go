package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tautek/riak"
)

const Version = "0.3.0"

var (
	client *riak.Client
	logger zerolog.Logger

	rootCmd = &cobra.Command{
		Use:   "riak-cli",
		Short: "talk to a Riak node over protocol buffers",
		Long: fmt.Sprintf(`riak-cli (v%s)

Runs single operations against one Riak node: objects, bucket properties,
listings, preflists and Yokozuna search. Flags can also be set through
RIAK_* environment variables or a .env file.`, Version),
		SilenceUsage:       true,
		PersistentPreRunE:  setupClient,
		PersistentPostRunE: closeClient,
	}

	versionCmd = &cobra.Command{
		Use:               "version",
		Short:             "Print the version number of riak-cli",
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("riak-cli v%s\n", Version)
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("address", "127.0.0.1:8087", wrapString("host:port of the Riak protocol buffers listener"))
	flags.Int("timeout", 10, wrapString("socket timeout in seconds, 0 disables it"))
	flags.String("config", "", wrapString("TOML file with client settings, flags and environment take precedence"))
	flags.String("log-level", "warn", wrapString("log level (debug, info, warn, error)"))
	flags.Bool("stats", false, wrapString("print client statistics after the command"))

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(pingCmd, infoCmd)
	rootCmd.AddCommand(getCmd, putCmd, deleteCmd, preflistCmd)
	rootCmd.AddCommand(bucketsCmd, keysCmd, propsCmd, bucketTypeCmd)
	rootCmd.AddCommand(schemaCmd, indexCmd, searchCmd)
}

// initConfig loads .env files and maps RIAK_* variables onto flags.
func initConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("riak")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Str("app", "riak-cli").Logger(), nil
}

// clientConfig layers the config file, then flags and environment.
func clientConfig() (riak.Config, error) {
	var cfg riak.Config

	if path := viper.GetString("config"); path != "" {
		var err error
		if cfg, err = riak.LoadConfigFile(path, cfg); err != nil {
			return riak.Config{}, err
		}
		logger.Debug().Str("path", path).Msg("loaded config file")
	}

	if cfg.Address == "" || viper.IsSet("address") {
		cfg.Address = viper.GetString("address")
	}
	if cfg.Timeout == 0 || viper.IsSet("timeout") {
		cfg.Timeout = time.Duration(viper.GetInt("timeout")) * time.Second
		if cfg.Timeout == 0 {
			cfg.Timeout = -1
		}
	}

	cfg.Logger = &logger
	return cfg, nil
}

func setupClient(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	var err error
	if logger, err = newLogger(viper.GetString("log-level")); err != nil {
		return err
	}

	cfg, err := clientConfig()
	if err != nil {
		return err
	}

	client, err = riak.NewClient(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	logger.Debug().Str("address", cfg.Address).Msg("connected")
	return nil
}

func closeClient(*cobra.Command, []string) error {
	if client == nil {
		return nil
	}
	if viper.GetBool("stats") {
		printStats(client.Stats())
	}
	return client.Close()
}

func printStats(stats riak.ClientStats) {
	fmt.Fprintf(os.Stderr, "exchanges=%d streams=%d batches=%d errors=%d server_errors=%d reconnects=%d sent=%dB received=%dB\n",
		stats.Exchanges, stats.StreamsOpened, stats.StreamBatches, stats.Errors,
		stats.ServerErrors, stats.Reconnects, stats.BytesSent, stats.BytesReceived)
}
