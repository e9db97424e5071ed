package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/psantana5/benchtime/internal/config"
	"github.com/psantana5/benchtime/internal/logging"
)

var (
	cfgFile   string
	cfg       *config.Config
	logger    *logging.Logger
	configErr error
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "benchtime",
	Short: "Time CPU benchmarks with platform clocks and hardware counters",
	Long: `benchtime brackets a workload with clock captures, converts the elapsed
ticks to seconds and, where the hardware allows, reports cycle and
instruction counts alongside. The platform is validated once before any
measurement is trusted.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Close()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.benchtime/config.yaml)")
	flags.String("clock", "", "clock source: monotonic, process, cycles")
	flags.Int64("divider", 0, "clock resolution divider (>= 1)")
	flags.String("seconds", "", "seconds representation: float, fixed")
	flags.Bool("counters", true, "use hardware performance counters when available")
	flags.String("counters-backend", "", "counter backend: auto, simulated")
	flags.String("validation", "", "platform mismatch policy: warn, fail")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.Bool("log-json", false, "log in JSON")

	bindFlag("clock.source", "clock")
	bindFlag("clock.divider", "divider")
	bindFlag("seconds.policy", "seconds")
	bindFlag("perfmon.enabled", "counters")
	bindFlag("perfmon.backend", "counters-backend")
	bindFlag("validation.policy", "validation")
	bindFlag("log.level", "log-level")
	bindFlag("log.json", "log-json")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	config.SetDefaults(viper.GetViper())
	config.ConfigureEnv(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".benchtime"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			configErr = fmt.Errorf("read config: %w", err)
		}
	}
}

// setup loads the configuration and creates the logger for every command.
// Flags left at their defaults do not override the config file.
func setup(cmd *cobra.Command, args []string) error {
	if configErr != nil {
		return configErr
	}
	loaded, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	cfg = loaded

	level := logging.ParseLevel(cfg.Log.Level)
	if cfg.Log.Dir != "" {
		logger, err = logging.NewFileLogger(cfg.Log.Dir, "benchtime", level, cfg.Log.JSON)
		if err != nil {
			return err
		}
	} else {
		logger = logging.NewLogger(level, cfg.Log.JSON)
	}
	logger.Debug("Configuration loaded", map[string]interface{}{"file": viper.ConfigFileUsed()})
	return nil
}
