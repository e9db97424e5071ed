// Package config holds benchtime's settings. Values come from, in order of
// precedence: command-line flags, BENCHTIME_* environment variables, the
// config file and the defaults below.
package config

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/psantana5/benchtime/internal/clock"
	"github.com/psantana5/benchtime/internal/perfcounter"
	"github.com/psantana5/benchtime/internal/platform"
	"github.com/psantana5/benchtime/internal/seconds"
)

// EnvPrefix is prepended to environment variable names: clock.source is
// read from BENCHTIME_CLOCK_SOURCE.
const EnvPrefix = "BENCHTIME"

// Config is the complete benchtime configuration.
type Config struct {
	Clock      ClockConfig      `mapstructure:"clock" yaml:"clock"`
	Seconds    SecondsConfig    `mapstructure:"seconds" yaml:"seconds"`
	Perfmon    PerfmonConfig    `mapstructure:"perfmon" yaml:"perfmon"`
	Validation ValidationConfig `mapstructure:"validation" yaml:"validation"`
	Run        RunConfig        `mapstructure:"run" yaml:"run"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Store      StoreConfig      `mapstructure:"store" yaml:"store"`
	Tracing    TracingConfig    `mapstructure:"tracing" yaml:"tracing"`
	Metrics    MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
	Serve      ServeConfig      `mapstructure:"serve" yaml:"serve"`
}

// ClockConfig selects the time source.
type ClockConfig struct {
	Source  string `mapstructure:"source" yaml:"source"`   // monotonic, process, cycles
	Divider int64  `mapstructure:"divider" yaml:"divider"` // resolution divider, >= 1
}

// SecondsConfig selects how elapsed time is reported.
type SecondsConfig struct {
	Policy string `mapstructure:"policy" yaml:"policy"` // float, fixed
}

// PerfmonConfig controls hardware performance counters.
type PerfmonConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Backend string `mapstructure:"backend" yaml:"backend"` // auto, simulated
	Event3  string `mapstructure:"event3" yaml:"event3"`   // raw selector, e.g. "0x8000"
	Event4  string `mapstructure:"event4" yaml:"event4"`
}

// ValidationConfig controls the platform check.
type ValidationConfig struct {
	Policy string `mapstructure:"policy" yaml:"policy"` // warn, fail
}

// RunConfig holds workload defaults.
type RunConfig struct {
	Iterations int    `mapstructure:"iterations" yaml:"iterations"`
	Label      string `mapstructure:"label" yaml:"label"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
	Dir   string `mapstructure:"dir" yaml:"dir"` // empty: stderr only
}

// StoreConfig selects where results are persisted.
type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // none, memory, sqlite, postgres
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
}

// TracingConfig controls OpenTelemetry export.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

// MetricsConfig controls metrics output.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"` // node_exporter textfile path
}

// ServeConfig controls the serve command.
type ServeConfig struct {
	Listen   string `mapstructure:"listen" yaml:"listen"`
	Interval string `mapstructure:"interval" yaml:"interval"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Clock:      ClockConfig{Source: clock.SourceMonotonic, Divider: 1},
		Seconds:    SecondsConfig{Policy: seconds.PolicyFloat.String()},
		Perfmon:    PerfmonConfig{Enabled: true, Backend: perfcounter.BackendAuto, Event3: "0x8000", Event4: "0x4000"},
		Validation: ValidationConfig{Policy: platform.PolicyWarn.String()},
		Run:        RunConfig{Iterations: 1_000_000, Label: "spin"},
		Log:        LogConfig{Level: "info"},
		Store:      StoreConfig{Driver: "none"},
		Tracing:    TracingConfig{Endpoint: "localhost:4318"},
		Serve:      ServeConfig{Listen: ":9464", Interval: "30s"},
	}
}

// SetDefaults registers Default's values with v so that every key is known
// to viper, including for environment lookups.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("clock.source", d.Clock.Source)
	v.SetDefault("clock.divider", d.Clock.Divider)
	v.SetDefault("seconds.policy", d.Seconds.Policy)
	v.SetDefault("perfmon.enabled", d.Perfmon.Enabled)
	v.SetDefault("perfmon.backend", d.Perfmon.Backend)
	v.SetDefault("perfmon.event3", d.Perfmon.Event3)
	v.SetDefault("perfmon.event4", d.Perfmon.Event4)
	v.SetDefault("validation.policy", d.Validation.Policy)
	v.SetDefault("run.iterations", d.Run.Iterations)
	v.SetDefault("run.label", d.Run.Label)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.dir", d.Log.Dir)
	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dsn", d.Store.DSN)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
	v.SetDefault("serve.listen", d.Serve.Listen)
	v.SetDefault("serve.interval", d.Serve.Interval)
}

// ConfigureEnv makes v read BENCHTIME_SECTION_KEY variables.
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes v into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if !clock.Known(c.Clock.Source) {
		add("clock.source %q: want one of %s", c.Clock.Source, strings.Join(clock.Sources(), ", "))
	}
	if c.Clock.Divider < 1 {
		add("clock.divider %d: must be >= 1", c.Clock.Divider)
	}
	if _, err := seconds.ParsePolicy(c.Seconds.Policy); err != nil {
		add("seconds.policy %q: want float or fixed", c.Seconds.Policy)
	}
	if _, err := platform.ParsePolicy(c.Validation.Policy); err != nil {
		add("validation.policy %q: want warn or fail", c.Validation.Policy)
	}
	if !contains([]string{perfcounter.BackendAuto, perfcounter.BackendSimulated}, strings.ToLower(c.Perfmon.Backend)) {
		add("perfmon.backend %q: want auto or simulated", c.Perfmon.Backend)
	}
	if _, err := parseSelector(c.Perfmon.Event3); err != nil {
		add("perfmon.event3: %v", err)
	}
	if _, err := parseSelector(c.Perfmon.Event4); err != nil {
		add("perfmon.event4: %v", err)
	}
	if c.Run.Iterations < 0 {
		add("run.iterations %d: must be >= 0", c.Run.Iterations)
	}
	if !contains([]string{"debug", "info", "warn", "warning", "error", "fatal"}, strings.ToLower(c.Log.Level)) {
		add("log.level %q: want debug, info, warn or error", c.Log.Level)
	}
	switch strings.ToLower(c.Store.Driver) {
	case "", "none", "memory":
	case "sqlite", "postgres":
		if c.Store.DSN == "" {
			add("store.dsn: required for driver %s", c.Store.Driver)
		}
	default:
		add("store.driver %q: want none, memory, sqlite or postgres", c.Store.Driver)
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		add("tracing.endpoint: required when tracing is enabled")
	}
	if d, err := time.ParseDuration(c.Serve.Interval); err != nil || d <= 0 {
		add("serve.interval %q: must be a positive duration", c.Serve.Interval)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Perfcounter returns the counter controller settings.
func (c *Config) Perfcounter() perfcounter.Config {
	e3, _ := parseSelector(c.Perfmon.Event3)
	e4, _ := parseSelector(c.Perfmon.Event4)
	return perfcounter.Config{
		Enabled: c.Perfmon.Enabled,
		Backend: strings.ToLower(c.Perfmon.Backend),
		Event3:  e3,
		Event4:  e4,
	}
}

// SecondsPolicy returns the parsed seconds policy.
func (c *Config) SecondsPolicy() seconds.Policy {
	p, _ := seconds.ParsePolicy(c.Seconds.Policy)
	return p
}

// ValidationPolicy returns the parsed platform policy.
func (c *Config) ValidationPolicy() platform.Policy {
	p, _ := platform.ParsePolicy(c.Validation.Policy)
	return p
}

// ServeInterval returns the parsed serve interval.
func (c *Config) ServeInterval() time.Duration {
	d, _ := time.ParseDuration(c.Serve.Interval)
	return d
}

// WriteYAML renders the configuration.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// parseSelector accepts decimal, 0x hex, 0o octal and 0b binary.
func parseSelector(s string) (perfcounter.EventSelector, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("event selector %q: %w", s, err)
	}
	return perfcounter.EventSelector(v), nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
