// Package store persists run results for the history command.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/psantana5/benchtime/internal/report"
)

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("result not found")

// Store defines result persistence.
// Memory, SQLite and PostgreSQL implement this interface.
type Store interface {
	SaveResult(ctx context.Context, r *report.Result) error
	GetResult(ctx context.Context, runID string) (*report.Result, error)
	// ListResults returns the newest results first. limit <= 0 returns all.
	ListResults(ctx context.Context, limit int) ([]*report.Result, error)
	Close() error
}

// Open returns the store for driver. "none" and "" return nil.
func Open(driver, dsn string) (Store, error) {
	switch strings.ToLower(driver) {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		s, err := NewSQLiteStore(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := NewPostgreSQLStore(Config{DSN: dsn})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
