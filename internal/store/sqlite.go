package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/psantana5/benchtime/internal/report"
)

// SQLiteStore persists results in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// - _journal_mode=WAL: readers do not block the writer
	// - _busy_timeout=10000: wait up to 10 seconds when the database is locked
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=10000&_synchronous=NORMAL", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // Serialize writes to avoid SQLITE_BUSY
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS results (
		run_id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		workload TEXT NOT NULL,
		clock TEXT NOT NULL,
		ticks_per_second INTEGER NOT NULL,
		ticks INTEGER NOT NULL,
		seconds TEXT NOT NULL,
		seconds_float REAL NOT NULL,
		seconds_policy TEXT NOT NULL,
		iterations INTEGER NOT NULL,
		overhead_ticks INTEGER NOT NULL,
		portable_id INTEGER NOT NULL,
		num_contexts INTEGER NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME NOT NULL,
		duration_ns INTEGER NOT NULL,
		exit_code INTEGER NOT NULL,
		counters TEXT,
		diagnostics TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_results_start ON results(start_time);
	CREATE INDEX IF NOT EXISTS idx_results_label ON results(label);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveResult inserts or replaces r.
func (s *SQLiteStore) SaveResult(ctx context.Context, r *report.Result) error {
	args, err := resultArgs(r)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO results (`+resultColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return fmt.Errorf("failed to save result %s: %w", r.RunID, err)
	}
	return nil
}

// GetResult returns the result with runID.
func (s *SQLiteStore) GetResult(ctx context.Context, runID string) (*report.Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+resultColumns+` FROM results WHERE run_id = ?`, runID)
	return scanResult(row)
}

// ListResults returns results newest first.
func (s *SQLiteStore) ListResults(ctx context.Context, limit int) ([]*report.Result, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	return queryResults(ctx, s.db,
		`SELECT `+resultColumns+` FROM results ORDER BY start_time DESC, rowid DESC LIMIT ?`, limit)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
