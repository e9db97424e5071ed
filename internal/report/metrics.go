package report

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Metrics exports run results as Prometheus metrics. Every value is a
// projection of a single Result.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal      *prometheus.CounterVec
	ticks          *prometheus.GaugeVec
	seconds        *prometheus.GaugeVec
	ticksPerSecond *prometheus.GaugeVec
	cycles         *prometheus.GaugeVec
	instructions   *prometheus.GaugeVec
	portableID     prometheus.Gauge
	diagnostics    *prometheus.CounterVec
}

// NewMetrics registers the benchtime metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "benchtime_runs_total",
			Help: "Completed timed runs",
		}, []string{"label", "clock", "valid"}),
		ticks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "benchtime_last_elapsed_ticks",
			Help: "Elapsed ticks of the most recent run",
		}, []string{"label", "clock"}),
		seconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "benchtime_last_elapsed_seconds",
			Help: "Elapsed seconds of the most recent run",
		}, []string{"label", "clock"}),
		ticksPerSecond: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "benchtime_clock_ticks_per_second",
			Help: "Resolution of the clock source",
		}, []string{"clock"}),
		cycles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "benchtime_last_cycles_delta",
			Help: "Cycle counter delta of the most recent run",
		}, []string{"label"}),
		instructions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "benchtime_last_instructions_delta",
			Help: "Retired instruction delta of the most recent run",
		}, []string{"label"}),
		portableID: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "benchtime_portable_id",
			Help: "1 if the platform configuration is valid, 0 otherwise",
		}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "benchtime_diagnostics_total",
			Help: "Diagnostics emitted during runs",
		}, []string{"component", "severity"}),
	}

	m.registry.MustRegister(
		m.runsTotal,
		m.ticks,
		m.seconds,
		m.ticksPerSecond,
		m.cycles,
		m.instructions,
		m.portableID,
		m.diagnostics,
	)
	return m
}

// Registry returns the registry backing the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordResult updates all metrics from r.
func (m *Metrics) RecordResult(r *Result) {
	m.runsTotal.WithLabelValues(r.Label, r.Clock, strconv.FormatBool(r.Valid())).Inc()
	m.ticks.WithLabelValues(r.Label, r.Clock).Set(float64(r.Ticks))
	m.seconds.WithLabelValues(r.Label, r.Clock).Set(r.SecondsFloat)
	m.ticksPerSecond.WithLabelValues(r.Clock).Set(float64(r.TicksPerSecond))
	m.portableID.Set(float64(r.PortableID))

	if r.Counters.HasDelta() {
		m.cycles.WithLabelValues(r.Label).Set(float64(r.Counters.CycleDelta))
		m.instructions.WithLabelValues(r.Label).Set(float64(r.Counters.InstretDelta))
	}
	for _, d := range r.Diagnostics {
		m.diagnostics.WithLabelValues(d.Component, string(d.Severity)).Inc()
	}
}

// Handler serves the registry at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Families gathers the current metric families.
func (m *Metrics) Families() ([]*dto.MetricFamily, error) {
	return m.registry.Gather()
}

// WriteText writes all metrics in the Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.Families()
	if err != nil {
		return err
	}
	encoder := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := encoder.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

// WriteTextfile writes the metrics to path for the node_exporter textfile
// collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".benchtime-*.prom")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := m.WriteText(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
