// Package report turns a finished timing session into a Result and
// publishes it: log summary, Prometheus metrics, tables, JSON and YAML.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/psantana5/benchtime/internal/clock"
	"github.com/psantana5/benchtime/internal/diag"
	"github.com/psantana5/benchtime/internal/logging"
	"github.com/psantana5/benchtime/internal/observe"
	"github.com/psantana5/benchtime/internal/perfcounter"
	"github.com/psantana5/benchtime/internal/platform"
	"github.com/psantana5/benchtime/internal/seconds"
)

// Result is one measured run. It is filled once when the run finishes.
type Result struct {
	// Identity
	RunID    string `json:"run_id" yaml:"run_id"`
	Label    string `json:"label" yaml:"label"`
	Workload string `json:"workload" yaml:"workload"`

	// Measurement
	Clock          string      `json:"clock" yaml:"clock"`
	TicksPerSecond int64       `json:"ticks_per_second" yaml:"ticks_per_second"`
	Ticks          clock.Ticks `json:"ticks" yaml:"ticks"`
	Seconds        string      `json:"seconds" yaml:"seconds"`
	SecondsFloat   float64     `json:"seconds_float" yaml:"seconds_float"`
	SecondsPolicy  string      `json:"seconds_policy" yaml:"seconds_policy"`
	Iterations     int         `json:"iterations" yaml:"iterations"`
	Overhead       clock.Ticks `json:"capture_overhead_ticks" yaml:"capture_overhead_ticks"`

	// Platform
	PortableID  int `json:"portable_id" yaml:"portable_id"`
	NumContexts int `json:"num_contexts" yaml:"num_contexts"`

	// Wall clock (informational)
	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	EndTime   time.Time     `json:"end_time" yaml:"end_time"`
	Duration  time.Duration `json:"wall_duration" yaml:"wall_duration"`

	// Outcome of an external command workload
	ExitCode int `json:"exit_code" yaml:"exit_code"`

	// Diagnostics
	Counters    *perfcounter.Report `json:"counters,omitempty" yaml:"counters,omitempty"`
	Diagnostics []diag.Entry        `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// NewResult creates a result for a finished run with a fresh run id.
func NewResult(label, workload string, src clock.Source, elapsed clock.Ticks, secs seconds.Value, policy seconds.Policy, timing *observe.Timing) *Result {
	r := &Result{
		RunID:          uuid.NewString(),
		Label:          label,
		Workload:       workload,
		Clock:          src.Name(),
		TicksPerSecond: src.TicksPerSecond(),
		Ticks:          elapsed,
		Seconds:        secs.String(),
		SecondsFloat:   secs.Float64(),
		SecondsPolicy:  policy.String(),
		NumContexts:    platform.DefaultNumContexts,
	}
	if timing != nil {
		r.StartTime = timing.StartedAt
		r.EndTime = timing.CompletedAt
		r.Duration = timing.Duration()
	}
	return r
}

// Valid reports whether the platform passed validation for this run.
func (r *Result) Valid() bool {
	return r.PortableID == 1
}

// LogSummary emits a one-line summary of the run.
func (r *Result) LogSummary(logger *logging.Logger) {
	fields := map[string]interface{}{
		"run_id":      r.RunID,
		"clock":       r.Clock,
		"ticks":       int64(r.Ticks),
		"tps":         r.TicksPerSecond,
		"seconds":     r.Seconds,
		"portable_id": r.PortableID,
	}
	if r.Counters.HasDelta() {
		fields["cycles"] = r.Counters.CycleDelta
		fields["instret"] = r.Counters.InstretDelta
	}
	logger.Info(fmt.Sprintf("RUN %s | %s | %s s", r.Label, r.Workload, r.Seconds), fields)
}
