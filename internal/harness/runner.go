// Package harness drives a workload through a timing session and publishes
// the result.
//
// The platform is validated once when a Runner is created. Every Run then
// brackets the workload with a fresh session, converts the elapsed ticks
// and hands the Result to the configured sinks.
package harness

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/psantana5/benchtime/internal/clock"
	"github.com/psantana5/benchtime/internal/diag"
	"github.com/psantana5/benchtime/internal/logging"
	"github.com/psantana5/benchtime/internal/observe"
	"github.com/psantana5/benchtime/internal/perfcounter"
	"github.com/psantana5/benchtime/internal/platform"
	"github.com/psantana5/benchtime/internal/report"
	"github.com/psantana5/benchtime/internal/seconds"
	"github.com/psantana5/benchtime/internal/session"
	"github.com/psantana5/benchtime/internal/store"
	"github.com/psantana5/benchtime/internal/tracing"
	"github.com/psantana5/benchtime/internal/workload"
)

// Options configure a Runner. Source is required; everything else has a
// usable zero value.
type Options struct {
	Label    string
	Source   clock.Source
	Counters perfcounter.Controller
	Seconds  seconds.Policy

	Widths     platform.Widths // zero: NativeWidths
	Validation platform.Policy

	Diagnostics *diag.Log
	Logger      *logging.Logger
	Store       store.Store
	Metrics     *report.Metrics
	Textfile    string
	Tracer      *tracing.Provider

	// OverheadSamples > 0 measures capture overhead once at start-up.
	OverheadSamples int
}

// Runner executes timed runs.
type Runner struct {
	opts     Options
	conv     seconds.Converter
	platform platform.Result
	overhead clock.Ticks
	logger   *logging.Logger
}

// New validates the platform and prepares a runner. Under
// platform.PolicyFail a mismatch is returned as an error.
func New(opts Options) (*Runner, error) {
	if opts.Source == nil {
		return nil, errors.New("harness: clock source required")
	}
	if opts.Counters == nil {
		opts.Counters = perfcounter.Noop{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Diagnostics == nil {
		opts.Diagnostics = diag.NewLog(opts.Logger, diag.DefaultSize)
	}
	if opts.Tracer == nil {
		opts.Tracer, _ = tracing.InitTracer(context.Background(), tracing.Config{ServiceName: "benchtime"}, opts.Logger)
	}
	if opts.Widths == (platform.Widths{}) {
		opts.Widths = platform.NativeWidths()
	}

	conv, err := seconds.For(opts.Source, opts.Seconds)
	if err != nil {
		return nil, err
	}

	res, err := platform.Validate(opts.Widths, opts.Diagnostics, opts.Validation)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		opts:     opts,
		conv:     conv,
		platform: res,
		logger:   opts.Logger.WithComponent("harness"),
	}
	if opts.OverheadSamples > 0 {
		r.overhead = clock.MeasureOverhead(opts.Source, opts.OverheadSamples)
	}
	r.logger.Debug("Runner ready", map[string]interface{}{
		"clock":       opts.Source.Name(),
		"tps":         opts.Source.TicksPerSecond(),
		"portable_id": res.PortableID,
		"counters":    fmt.Sprintf("%T", opts.Counters),
	})
	return r, nil
}

// Platform returns the validation result.
func (r *Runner) Platform() platform.Result { return r.platform }

// Overhead returns the measured capture overhead, or 0 if not measured.
func (r *Runner) Overhead() clock.Ticks { return r.overhead }

// Diagnostics returns the runner's diagnostic log.
func (r *Runner) Diagnostics() *diag.Log { return r.opts.Diagnostics }

// Close finalizes the platform result.
func (r *Runner) Close() {
	platform.Fini(&r.platform)
}

// Run times w once. The result is returned even when the workload fails.
func (r *Runner) Run(ctx context.Context, w workload.Workload) (*report.Result, error) {
	ctx, span := r.opts.Tracer.StartSpan(ctx, "benchtime.run",
		attribute.String("label", r.opts.Label),
		attribute.String("workload", w.Name()),
		attribute.String("clock", r.opts.Source.Name()),
	)
	defer span.End()

	if err := w.Prepare(ctx); err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("prepare %s: %w", w.Name(), err)
	}

	mark := r.opts.Diagnostics.Mark()
	timing := observe.NewTiming()
	sess := session.New(r.opts.Source, r.opts.Counters)

	if err := sess.Start(); err != nil {
		return nil, err
	}
	runErr := w.Run(ctx)
	if err := sess.Stop(); err != nil {
		return nil, err
	}
	timing.Complete()

	elapsed, err := sess.Elapsed()
	if err != nil {
		return nil, err
	}

	res := report.NewResult(r.opts.Label, w.Name(), r.opts.Source, elapsed, r.conv.ToSeconds(elapsed), r.conv.Policy(), timing)
	res.PortableID = r.platform.PortableID
	res.Overhead = r.overhead
	res.Counters = sess.Counters()
	res.Diagnostics = r.opts.Diagnostics.Since(mark)
	if it, ok := w.(workload.Iterator); ok {
		res.Iterations = it.Iterations()
	}
	if ex, ok := w.(workload.Exiter); ok {
		res.ExitCode = ex.ExitCode()
	}

	span.SetAttributes(
		attribute.String("run_id", res.RunID),
		attribute.Int64("ticks", int64(res.Ticks)),
		attribute.Float64("seconds", res.SecondsFloat),
	)
	if runErr != nil {
		tracing.RecordError(span, runErr)
		return res, fmt.Errorf("run %s: %w", w.Name(), runErr)
	}

	if err := r.publish(ctx, res); err != nil {
		tracing.RecordError(span, err)
		return res, err
	}
	return res, nil
}

func (r *Runner) publish(ctx context.Context, res *report.Result) error {
	res.LogSummary(r.logger)
	if res.ExitCode != 0 {
		r.logger.Warn("Workload exited non-zero", map[string]interface{}{
			"run_id":    res.RunID,
			"exit_code": res.ExitCode,
		})
	}

	if r.opts.Metrics != nil {
		r.opts.Metrics.RecordResult(res)
		if r.opts.Textfile != "" {
			if err := r.opts.Metrics.WriteTextfile(r.opts.Textfile); err != nil {
				r.logger.Warn(fmt.Sprintf("Failed to write metrics textfile: %v", err))
			}
		}
	}
	if r.opts.Store != nil {
		if err := r.opts.Store.SaveResult(ctx, res); err != nil {
			return fmt.Errorf("store result: %w", err)
		}
	}
	return nil
}
