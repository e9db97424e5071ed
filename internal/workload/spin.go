package workload

import (
	"context"
	"fmt"
)

// sink keeps the spin result observable so the loop is not eliminated.
var sink uint64

// Spin is a CPU-bound loop of xorshift steps. It exists to exercise the
// timing path and has no benchmark meaning of its own.
type Spin struct {
	N    int
	Seed uint64

	result uint64
}

// NewSpin returns a spin workload of n iterations.
func NewSpin(n int) *Spin {
	return &Spin{N: n, Seed: 0x9e3779b97f4a7c15}
}

func (s *Spin) Name() string { return fmt.Sprintf("spin/%d", s.N) }

func (s *Spin) Iterations() int { return s.N }

func (s *Spin) Prepare(context.Context) error {
	if s.N < 0 {
		return fmt.Errorf("spin: negative iteration count %d", s.N)
	}
	if s.Seed == 0 {
		s.Seed = 1
	}
	return nil
}

// Run does not check ctx inside the loop.
func (s *Spin) Run(context.Context) error {
	x := s.Seed
	for i := 0; i < s.N; i++ {
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
	}
	s.result = x
	sink = x
	return nil
}

// Result returns the final xorshift state.
func (s *Spin) Result() uint64 { return s.result }
