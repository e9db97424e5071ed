package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psantana5/benchtime/internal/diag"
	"github.com/psantana5/benchtime/internal/perfcounter"
	"github.com/psantana5/benchtime/internal/report"
)

func newResult(label string, start time.Time) *report.Result {
	return &report.Result{
		RunID:          uuid.NewString(),
		Label:          label,
		Workload:       "spin",
		Clock:          "monotonic",
		TicksPerSecond: 1_000_000_000,
		Ticks:          250_000_000,
		Seconds:        "0.25",
		SecondsFloat:   0.25,
		SecondsPolicy:  "float",
		Iterations:     1000,
		Overhead:       20,
		PortableID:     1,
		NumContexts:    1,
		StartTime:      start,
		EndTime:        start.Add(250 * time.Millisecond),
		Duration:       250 * time.Millisecond,
	}
}

func testStore(t *testing.T, s Store) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	first := newResult("first", base)
	second := newResult("second", base.Add(time.Minute))
	second.Counters = &perfcounter.Report{
		Cycles: 5000, CycleDelta: 4000, Instret: 20, InstretDelta: 10,
		Generic: []perfcounter.GenericCounter{{ID: perfcounter.Counter3, Value: 3, Event: perfcounter.DefaultEvent3}},
	}
	second.Diagnostics = []diag.Entry{{Component: "platform", Severity: diag.SeverityWarning, Message: "w"}}

	require.NoError(t, s.SaveResult(ctx, first))
	require.NoError(t, s.SaveResult(ctx, second))

	got, err := s.GetResult(ctx, second.RunID)
	require.NoError(t, err)
	assert.Equal(t, second.Label, got.Label)
	assert.Equal(t, second.Ticks, got.Ticks)
	assert.Equal(t, second.Seconds, got.Seconds)
	assert.Equal(t, second.Duration, got.Duration)
	assert.True(t, second.StartTime.Equal(got.StartTime))
	require.NotNil(t, got.Counters)
	assert.Equal(t, *second.Counters, *got.Counters)
	require.Len(t, got.Diagnostics, 1)
	assert.Equal(t, "w", got.Diagnostics[0].Message)

	got, err = s.GetResult(ctx, first.RunID)
	require.NoError(t, err)
	assert.Nil(t, got.Counters)

	_, err = s.GetResult(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := s.ListResults(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].Label)
	assert.Equal(t, "first", all[1].Label)

	limited, err := s.ListResults(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "second", limited[0].Label)

	second.Ticks = 300_000_000
	require.NoError(t, s.SaveResult(ctx, second))
	got, err = s.GetResult(ctx, second.RunID)
	require.NoError(t, err)
	assert.EqualValues(t, 300_000_000, got.Ticks)

	all, err = s.ListResults(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer s.Close()

	testStore(t, s)
}

// Set BENCHTIME_TEST_POSTGRES_DSN to run against a real database.
func TestPostgreSQLStore(t *testing.T) {
	dsn := os.Getenv("BENCHTIME_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("BENCHTIME_TEST_POSTGRES_DSN not set")
	}
	s, err := NewPostgreSQLStore(Config{DSN: dsn})
	require.NoError(t, err)
	defer s.Close()
	_, err = s.db.Exec(`DELETE FROM results`)
	require.NoError(t, err)

	require.NoError(t, s.HealthCheck(context.Background()))
	testStore(t, s)
}

func TestOpen(t *testing.T) {
	s, err := Open("none", "")
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = Open("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open("sqlite", filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open("redis", "")
	assert.Error(t, err)
}
