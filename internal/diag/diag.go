// Package diag is the text sink for human-readable diagnostics: platform
// validation warnings and hardware counter reports.
package diag

import (
	"sync"
	"time"

	"github.com/psantana5/benchtime/internal/logging"
)

// Sink receives diagnostic messages. Emitting never fails and never
// interrupts the caller.
type Sink interface {
	Warn(component, message string)
	Info(component, message string)
}

// Severity of a recorded entry.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Entry is one recorded diagnostic.
type Entry struct {
	Time      time.Time `json:"time" yaml:"time"`
	Component string    `json:"component" yaml:"component"`
	Severity  Severity  `json:"severity" yaml:"severity"`
	Message   string    `json:"message" yaml:"message"`
}

// Log forwards diagnostics to a logger and keeps the last N in a ring buffer
// so they can be attached to results and served over HTTP.
type Log struct {
	logger  *logging.Logger
	entries []Entry
	maxSize int
	dropped int
	mu      sync.RWMutex
}

// DefaultSize is the ring buffer capacity used by the CLI.
const DefaultSize = 100

// NewLog creates a diagnostic log. A nil logger discards log output but
// still records entries.
func NewLog(logger *logging.Logger, maxSize int) *Log {
	if logger == nil {
		logger = logging.Nop()
	}
	if maxSize < 1 {
		maxSize = DefaultSize
	}
	return &Log{
		logger:  logger,
		entries: make([]Entry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Warn records and logs a warning.
func (l *Log) Warn(component, message string) {
	l.logger.WithComponent(component).Warn(message)
	l.record(component, SeverityWarning, message)
}

// Info records and logs an informational message.
func (l *Log) Info(component, message string) {
	l.logger.WithComponent(component).Info(message)
	l.record(component, SeverityInfo, message)
}

func (l *Log) record(component string, sev Severity, message string) {
	entry := Entry{
		Time:      time.Now(),
		Component: component,
		Severity:  sev,
		Message:   message,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Ring buffer: if full, drop oldest
	if len(l.entries) >= l.maxSize {
		l.entries = l.entries[1:]
		l.dropped++
	}
	l.entries = append(l.entries, entry)
}

// Recent returns up to n entries, newest first. n <= 0 returns all.
func (l *Log) Recent(n int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}

	result := make([]Entry, n)
	for i := 0; i < n; i++ {
		result[i] = l.entries[len(l.entries)-1-i]
	}
	return result
}

// Mark returns a position that Since can later read from.
func (l *Log) Mark() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dropped + len(l.entries)
}

// Since returns entries recorded after mark, oldest first. Entries already
// evicted from the ring buffer are lost.
func (l *Log) Since(mark int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx := mark - l.dropped
	if idx < 0 {
		idx = 0
	}
	if idx >= len(l.entries) {
		return nil
	}
	out := make([]Entry, len(l.entries)-idx)
	copy(out, l.entries[idx:])
	return out
}

// Count returns the number of buffered entries.
func (l *Log) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Warnings returns the number of buffered warning entries.
func (l *Log) Warnings() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := 0
	for _, e := range l.entries {
		if e.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// Discard is a Sink that drops everything.
type Discard struct{}

func (Discard) Warn(string, string) {}
func (Discard) Info(string, string) {}
