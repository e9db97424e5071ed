package store

import (
	"context"
	"sort"
	"sync"

	"github.com/psantana5/benchtime/internal/report"
)

// MemoryStore keeps results for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[string]*report.Result
	order   []string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{results: make(map[string]*report.Result)}
}

// SaveResult stores a copy of r, replacing any result with the same id.
func (s *MemoryStore) SaveResult(_ context.Context, r *report.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *r
	if _, ok := s.results[r.RunID]; !ok {
		s.order = append(s.order, r.RunID)
	}
	s.results[r.RunID] = &cp
	return nil
}

// GetResult returns the result with runID.
func (s *MemoryStore) GetResult(_ context.Context, runID string) (*report.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.results[runID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// ListResults returns results newest first by start time.
func (s *MemoryStore) ListResults(_ context.Context, limit int) ([]*report.Result, error) {
	s.mu.RLock()
	out := make([]*report.Result, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		cp := *s.results[s.order[i]]
		out = append(out, &cp)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
