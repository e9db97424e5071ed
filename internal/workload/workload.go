// Package workload provides the code run inside a timed region: a built-in
// spin loop and external commands.
package workload

import "context"

// Workload is run between session Start and Stop.
type Workload interface {
	Name() string
	// Prepare runs before the timed region.
	Prepare(ctx context.Context) error
	// Run is the timed region. It must run on the calling goroutine.
	Run(ctx context.Context) error
}

// Iterator is implemented by workloads with a fixed iteration count.
type Iterator interface {
	Iterations() int
}

// Exiter is implemented by workloads that report an exit status.
type Exiter interface {
	ExitCode() int
}
