package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/psantana5/benchtime/internal/report"
)

// Config holds PostgreSQL connection settings.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PostgreSQLStore persists results in PostgreSQL.
type PostgreSQLStore struct {
	db *sql.DB
}

// NewPostgreSQLStore connects and creates the schema.
func NewPostgreSQLStore(config Config) (*PostgreSQLStore, error) {
	db, err := sql.Open("postgres", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	} else {
		db.SetMaxOpenConns(4)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	} else {
		db.SetMaxIdleConns(2)
	}
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	} else {
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgreSQLStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *PostgreSQLStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS results (
		run_id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		workload TEXT NOT NULL,
		clock TEXT NOT NULL,
		ticks_per_second BIGINT NOT NULL,
		ticks BIGINT NOT NULL,
		seconds TEXT NOT NULL,
		seconds_float DOUBLE PRECISION NOT NULL,
		seconds_policy TEXT NOT NULL,
		iterations INTEGER NOT NULL,
		overhead_ticks BIGINT NOT NULL,
		portable_id INTEGER NOT NULL,
		num_contexts INTEGER NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		duration_ns BIGINT NOT NULL,
		exit_code INTEGER NOT NULL,
		counters TEXT,
		diagnostics TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_results_start ON results(start_time);
	CREATE INDEX IF NOT EXISTS idx_results_label ON results(label);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveResult inserts or replaces r.
func (s *PostgreSQLStore) SaveResult(ctx context.Context, r *report.Result) error {
	args, err := resultArgs(r)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO results (`+resultColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (run_id) DO UPDATE SET
			ticks = EXCLUDED.ticks,
			seconds = EXCLUDED.seconds,
			seconds_float = EXCLUDED.seconds_float,
			end_time = EXCLUDED.end_time,
			duration_ns = EXCLUDED.duration_ns,
			exit_code = EXCLUDED.exit_code,
			counters = EXCLUDED.counters,
			diagnostics = EXCLUDED.diagnostics`, args...)
	if err != nil {
		return fmt.Errorf("failed to save result %s: %w", r.RunID, err)
	}
	return nil
}

// GetResult returns the result with runID.
func (s *PostgreSQLStore) GetResult(ctx context.Context, runID string) (*report.Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+resultColumns+` FROM results WHERE run_id = $1`, runID)
	return scanResult(row)
}

// ListResults returns results newest first.
func (s *PostgreSQLStore) ListResults(ctx context.Context, limit int) ([]*report.Result, error) {
	if limit <= 0 {
		return queryResults(ctx, s.db,
			`SELECT `+resultColumns+` FROM results ORDER BY start_time DESC, run_id`)
	}
	return queryResults(ctx, s.db,
		`SELECT `+resultColumns+` FROM results ORDER BY start_time DESC, run_id LIMIT $1`, limit)
}

// Close closes the database.
func (s *PostgreSQLStore) Close() error {
	return s.db.Close()
}

// HealthCheck verifies database connectivity
func (s *PostgreSQLStore) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}
