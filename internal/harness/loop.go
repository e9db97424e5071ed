package harness

import (
	"context"
	"sync"
	"time"

	"github.com/psantana5/benchtime/internal/report"
	"github.com/psantana5/benchtime/internal/workload"
)

// Latest keeps the most recent results for readers on other goroutines.
type Latest struct {
	mu      sync.RWMutex
	results []*report.Result
	max     int
}

// NewLatest keeps up to max results.
func NewLatest(max int) *Latest {
	if max < 1 {
		max = 1
	}
	return &Latest{max: max}
}

// Add records r, dropping the oldest result when full.
func (l *Latest) Add(r *report.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.results) >= l.max {
		l.results = l.results[1:]
	}
	l.results = append(l.results, r)
}

// Results returns the kept results, newest first.
func (l *Latest) Results() []*report.Result {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*report.Result, len(l.results))
	for i, r := range l.results {
		out[len(out)-1-i] = r
	}
	return out
}

// Loop runs a fresh workload immediately and then every interval until ctx
// is done. Failed runs are logged and do not stop the loop.
func (r *Runner) Loop(ctx context.Context, interval time.Duration, next func() workload.Workload, latest *Latest) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		res, err := r.Run(ctx, next())
		if err != nil {
			r.logger.Error("Run failed", map[string]interface{}{"error": err.Error()})
		}
		if res != nil && latest != nil {
			latest.Add(res)
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
