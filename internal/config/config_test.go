package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/psantana5/benchtime/internal/perfcounter"
	"github.com/psantana5/benchtime/internal/platform"
	"github.com/psantana5/benchtime/internal/seconds"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	ConfigureEnv(v)
	return v
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	pc := cfg.Perfcounter()
	assert.True(t, pc.Enabled)
	assert.Equal(t, perfcounter.DefaultEvent3, pc.Event3)
	assert.Equal(t, perfcounter.DefaultEvent4, pc.Event4)
	assert.Equal(t, seconds.PolicyFloat, cfg.SecondsPolicy())
	assert.Equal(t, platform.PolicyWarn, cfg.ValidationPolicy())
	assert.Equal(t, 30*time.Second, cfg.ServeInterval())
}

func TestValidateEmptyClockSource(t *testing.T) {
	cfg := Default()
	cfg.Clock.Source = ""
	assert.NoError(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
clock:
  source: process
  divider: 1000
seconds:
  policy: fixed
perfmon:
  enabled: false
  event3: "0x10"
validation:
  policy: fail
store:
  driver: sqlite
  dsn: /tmp/bench.db
`), 0o644))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "process", cfg.Clock.Source)
	assert.Equal(t, int64(1000), cfg.Clock.Divider)
	assert.Equal(t, seconds.PolicyFixed, cfg.SecondsPolicy())
	assert.False(t, cfg.Perfcounter().Enabled)
	assert.Equal(t, perfcounter.EventSelector(0x10), cfg.Perfcounter().Event3)
	assert.Equal(t, perfcounter.DefaultEvent4, cfg.Perfcounter().Event4)
	assert.Equal(t, platform.PolicyFail, cfg.ValidationPolicy())
	assert.Equal(t, "sqlite", cfg.Store.Driver)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("BENCHTIME_CLOCK_SOURCE", "cycles")
	t.Setenv("BENCHTIME_PERFMON_BACKEND", "simulated")

	cfg, err := Load(newViper())
	require.NoError(t, err)
	assert.Equal(t, "cycles", cfg.Clock.Source)
	assert.Equal(t, perfcounter.BackendSimulated, cfg.Perfcounter().Backend)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"clock source", func(c *Config) { c.Clock.Source = "sundial" }, "clock.source"},
		{"divider", func(c *Config) { c.Clock.Divider = 0 }, "clock.divider"},
		{"seconds policy", func(c *Config) { c.Seconds.Policy = "double" }, "seconds.policy"},
		{"validation policy", func(c *Config) { c.Validation.Policy = "abort" }, "validation.policy"},
		{"backend", func(c *Config) { c.Perfmon.Backend = "pmu" }, "perfmon.backend"},
		{"event", func(c *Config) { c.Perfmon.Event3 = "jal" }, "perfmon.event3"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"store driver", func(c *Config) { c.Store.Driver = "redis" }, "store.driver"},
		{"store dsn", func(c *Config) { c.Store.Driver = "postgres" }, "store.dsn"},
		{"tracing endpoint", func(c *Config) { c.Tracing.Enabled = true; c.Tracing.Endpoint = "" }, "tracing.endpoint"},
		{"serve interval", func(c *Config) { c.Serve.Interval = "-1s" }, "serve.interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().WriteYAML(&buf))

	var decoded Config
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *Default(), decoded)
}
