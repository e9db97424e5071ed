package cmd

import (
	"context"
	"fmt"

	"github.com/psantana5/benchtime/internal/clock"
	"github.com/psantana5/benchtime/internal/diag"
	"github.com/psantana5/benchtime/internal/harness"
	"github.com/psantana5/benchtime/internal/perfcounter"
	"github.com/psantana5/benchtime/internal/report"
	"github.com/psantana5/benchtime/internal/store"
	"github.com/psantana5/benchtime/internal/tracing"
)

// buildRunner wires the configured clock, counters, store, metrics and
// tracer into a runner. The returned cleanup must be called once.
func buildRunner(ctx context.Context, label string, metrics *report.Metrics) (*harness.Runner, func(), error) {
	src, err := clock.New(cfg.Clock.Source, cfg.Clock.Divider)
	if err != nil {
		return nil, nil, err
	}

	diags := diag.NewLog(logger, diag.DefaultSize)
	counters, err := perfcounter.New(cfg.Perfcounter(), diags)
	if err != nil {
		return nil, nil, err
	}

	st, err := store.Open(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	tracer, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "benchtime",
		ServiceVersion: version,
		OTLPEndpoint:   cfg.Tracing.Endpoint,
		Enabled:        cfg.Tracing.Enabled,
	}, logger)
	if err != nil {
		if st != nil {
			st.Close()
		}
		return nil, nil, err
	}

	if metrics == nil && cfg.Metrics.Textfile != "" {
		metrics = report.NewMetrics()
	}

	runner, err := harness.New(harness.Options{
		Label:           label,
		Source:          src,
		Counters:        counters,
		Seconds:         cfg.SecondsPolicy(),
		Validation:      cfg.ValidationPolicy(),
		Diagnostics:     diags,
		Logger:          logger,
		Store:           st,
		Metrics:         metrics,
		Textfile:        cfg.Metrics.Textfile,
		Tracer:          tracer,
		OverheadSamples: clock.DefaultOverheadSamples,
	})

	cleanup := func() {
		if runner != nil {
			runner.Close()
		}
		if err := tracer.Shutdown(context.Background()); err != nil {
			logger.Warn(fmt.Sprintf("Tracer shutdown: %v", err))
		}
		if st != nil {
			st.Close()
		}
	}
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return runner, cleanup, nil
}
