//go:build linux

package perfcounter

import (
	"encoding/binary"
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Host returns the perf_event backend. Counters follow the calling thread
// and any child processes it starts.
func Host() Hardware {
	return &PerfEvent{Inherit: true}
}

// PerfEvent exposes the kernel's perf_event interface as a counter bank.
// Cycles and instructions map to the generic hardware events; the two
// event counters take raw PMU selectors.
type PerfEvent struct {
	Inherit bool
}

// CurrentUnit locks the calling goroutine to its OS thread until the unit
// is closed, so reads always hit the thread the counters were opened on.
func (p *PerfEvent) CurrentUnit() (Unit, error) {
	runtime.LockOSThread()
	return &perfUnit{fds: make(map[CounterID]int), inherit: p.Inherit}, nil
}

type perfUnit struct {
	fds     map[CounterID]int
	inherit bool
	closed  bool
}

func (u *perfUnit) Init() error {
	u.closeAll()
	fixed := []struct {
		id     CounterID
		config uint64
	}{
		{CounterCycle, unix.PERF_COUNT_HW_CPU_CYCLES},
		{CounterInstret, unix.PERF_COUNT_HW_INSTRUCTIONS},
	}
	for _, f := range fixed {
		fd, err := openEvent(unix.PERF_TYPE_HARDWARE, f.config, u.inherit)
		if err != nil {
			u.closeAll()
			return fmt.Errorf("counter %d: %w", f.id, err)
		}
		u.fds[f.id] = fd
	}
	return nil
}

func (u *perfUnit) SetEvent(id CounterID, sel EventSelector) error {
	if id != Counter3 && id != Counter4 {
		return fmt.Errorf("counter %d has a fixed event", id)
	}
	if fd, ok := u.fds[id]; ok {
		unix.Close(fd)
		delete(u.fds, id)
	}
	fd, err := openEvent(unix.PERF_TYPE_RAW, uint64(sel), u.inherit)
	if err != nil {
		return err
	}
	u.fds[id] = fd
	return nil
}

func (u *perfUnit) Read(id CounterID) (uint64, error) {
	fd, ok := u.fds[id]
	if !ok {
		return 0, fmt.Errorf("counter %d not open", id)
	}
	var buf [8]byte
	n, err := unix.Read(fd, buf[:])
	if err != nil {
		return 0, fmt.Errorf("read counter %d: %w", id, err)
	}
	if n != len(buf) {
		return 0, fmt.Errorf("read counter %d: short read of %d bytes", id, n)
	}
	return binary.NativeEndian.Uint64(buf[:]), nil
}

// ClearEvent disables the counter. perf_event has no partial event masks,
// so any non-zero mask stops it; the count stays readable.
func (u *perfUnit) ClearEvent(id CounterID, mask EventSelector) error {
	fd, ok := u.fds[id]
	if !ok || mask == 0 {
		return nil
	}
	if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_DISABLE, 0); err != nil {
		return fmt.Errorf("disable counter %d: %w", id, err)
	}
	return nil
}

func (u *perfUnit) Close() error {
	if u.closed {
		return nil
	}
	u.closed = true
	u.closeAll()
	runtime.UnlockOSThread()
	return nil
}

func (u *perfUnit) closeAll() {
	for id, fd := range u.fds {
		unix.Close(fd)
		delete(u.fds, id)
	}
}

func openEvent(typ uint32, config uint64, inherit bool) (int, error) {
	attr := unix.PerfEventAttr{
		Type:   typ,
		Config: config,
		Size:   uint32(unsafe.Sizeof(unix.PerfEventAttr{})),
		Bits:   unix.PerfBitDisabled | unix.PerfBitExcludeKernel | unix.PerfBitExcludeHv,
	}
	if inherit {
		attr.Bits |= unix.PerfBitInherit
	}

	fd, err := unix.PerfEventOpen(&attr, 0, -1, -1, unix.PERF_FLAG_FD_CLOEXEC)
	if err != nil {
		return -1, fmt.Errorf("perf_event_open type=%d config=0x%x: %w", typ, config, err)
	}
	if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_RESET, 0); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("reset counter: %w", err)
	}
	if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_ENABLE, 0); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("enable counter: %w", err)
	}
	return fd, nil
}
