package platform

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/psantana5/benchtime/internal/perfcounter"
)

// DefaultNumContexts is the number of execution contexts a run uses.
const DefaultNumContexts = 1

// Capabilities describes the host a run executes on.
type Capabilities struct {
	Widths           Widths  `json:"widths" yaml:"widths"`
	CountersCompiled bool    `json:"counters_compiled" yaml:"counters_compiled"`
	OS               string  `json:"os" yaml:"os"`
	Arch             string  `json:"arch" yaml:"arch"`
	Platform         string  `json:"platform,omitempty" yaml:"platform,omitempty"`
	KernelVersion    string  `json:"kernel_version,omitempty" yaml:"kernel_version,omitempty"`
	CPUModel         string  `json:"cpu_model,omitempty" yaml:"cpu_model,omitempty"`
	CPUMhz           float64 `json:"cpu_mhz,omitempty" yaml:"cpu_mhz,omitempty"`
	LogicalCores     int     `json:"logical_cores" yaml:"logical_cores"`
	PhysicalCores    int     `json:"physical_cores,omitempty" yaml:"physical_cores,omitempty"`
	MemoryTotalBytes uint64  `json:"memory_total_bytes,omitempty" yaml:"memory_total_bytes,omitempty"`
	NumContexts      int     `json:"num_contexts" yaml:"num_contexts"`
}

// Detect gathers host facts. Probe failures leave fields at their runtime
// defaults and are never returned as errors.
func Detect(ctx context.Context) Capabilities {
	caps := Capabilities{
		Widths:           NativeWidths(),
		CountersCompiled: perfcounter.Available,
		OS:               runtime.GOOS,
		Arch:             runtime.GOARCH,
		LogicalCores:     runtime.NumCPU(),
		NumContexts:      DefaultNumContexts,
	}

	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		caps.CPUModel = infos[0].ModelName
		caps.CPUMhz = infos[0].Mhz
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil && n > 0 {
		caps.LogicalCores = n
	}
	if n, err := cpu.CountsWithContext(ctx, false); err == nil && n > 0 {
		caps.PhysicalCores = n
	}
	if info, err := host.InfoWithContext(ctx); err == nil {
		caps.Platform = info.Platform
		caps.KernelVersion = info.KernelVersion
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		caps.MemoryTotalBytes = vm.Total
	}
	return caps
}
