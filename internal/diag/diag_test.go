package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psantana5/benchtime/internal/logging"
)

func TestLog_RecordsAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.DEBUG, false)
	logger.SetOutput(&buf)

	l := NewLog(logger, 10)
	l.Warn("platform", "pointer width mismatch")
	l.Info("perfcounter", "Counter 0 holds 5000 (cycles) for a delta of 4000")

	assert.Contains(t, buf.String(), "WARN: pointer width mismatch")
	assert.Contains(t, buf.String(), "INFO: Counter 0 holds 5000")

	recent := l.Recent(0)
	require.Len(t, recent, 2)
	assert.Equal(t, "perfcounter", recent[0].Component)
	assert.Equal(t, SeverityWarning, recent[1].Severity)
	assert.Equal(t, 1, l.Warnings())
}

func TestLog_RingBuffer(t *testing.T) {
	l := NewLog(nil, 3)
	for _, m := range []string{"a", "b", "c", "d", "e"} {
		l.Info("x", m)
	}

	assert.Equal(t, 3, l.Count())
	recent := l.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "e", recent[0].Message)
	assert.Equal(t, "d", recent[1].Message)
}

func TestLog_MarkSince(t *testing.T) {
	l := NewLog(nil, 3)
	l.Info("x", "before")
	mark := l.Mark()

	assert.Empty(t, l.Since(mark))

	l.Warn("x", "one")
	l.Warn("x", "two")
	l.Warn("x", "three") // evicts "before"

	since := l.Since(mark)
	require.Len(t, since, 3)
	assert.Equal(t, "one", since[0].Message)
	assert.Equal(t, "three", since[2].Message)
}

func TestDiscard(t *testing.T) {
	var s Sink = Discard{}
	s.Warn("a", "b")
	s.Info("a", "b")
}
