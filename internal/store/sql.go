package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/psantana5/benchtime/internal/clock"
	"github.com/psantana5/benchtime/internal/diag"
	"github.com/psantana5/benchtime/internal/perfcounter"
	"github.com/psantana5/benchtime/internal/report"
)

const resultColumns = `run_id, label, workload, clock, ticks_per_second, ticks, seconds,
	seconds_float, seconds_policy, iterations, overhead_ticks, portable_id,
	num_contexts, start_time, end_time, duration_ns, exit_code, counters, diagnostics`

// resultArgs flattens r into resultColumns order.
func resultArgs(r *report.Result) ([]interface{}, error) {
	counters := ""
	if r.Counters != nil {
		data, err := json.Marshal(r.Counters)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal counters: %w", err)
		}
		counters = string(data)
	}
	diagnostics, err := json.Marshal(r.Diagnostics)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal diagnostics: %w", err)
	}

	return []interface{}{
		r.RunID, r.Label, r.Workload, r.Clock, r.TicksPerSecond, int64(r.Ticks), r.Seconds,
		r.SecondsFloat, r.SecondsPolicy, r.Iterations, int64(r.Overhead), r.PortableID,
		r.NumContexts, r.StartTime.UTC(), r.EndTime.UTC(), int64(r.Duration), r.ExitCode,
		counters, string(diagnostics),
	}, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanResult(row rowScanner) (*report.Result, error) {
	var (
		r                         report.Result
		ticks, overhead, duration int64
		counters, diagnostics     sql.NullString
		start, end                time.Time
	)
	err := row.Scan(
		&r.RunID, &r.Label, &r.Workload, &r.Clock, &r.TicksPerSecond, &ticks, &r.Seconds,
		&r.SecondsFloat, &r.SecondsPolicy, &r.Iterations, &overhead, &r.PortableID,
		&r.NumContexts, &start, &end, &duration, &r.ExitCode, &counters, &diagnostics,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	r.Ticks = clock.Ticks(ticks)
	r.Overhead = clock.Ticks(overhead)
	r.Duration = time.Duration(duration)
	r.StartTime = start
	r.EndTime = end

	if counters.Valid && counters.String != "" {
		var rep perfcounter.Report
		if err := json.Unmarshal([]byte(counters.String), &rep); err != nil {
			return nil, fmt.Errorf("failed to unmarshal counters: %w", err)
		}
		r.Counters = &rep
	}
	if diagnostics.Valid && diagnostics.String != "" && diagnostics.String != "null" {
		var entries []diag.Entry
		if err := json.Unmarshal([]byte(diagnostics.String), &entries); err != nil {
			return nil, fmt.Errorf("failed to unmarshal diagnostics: %w", err)
		}
		r.Diagnostics = entries
	}
	return &r, nil
}

func queryResults(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]*report.Result, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*report.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
