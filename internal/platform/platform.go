// Package platform checks, once per process, that the basic type widths the
// timing code relies on hold on this host, and gathers descriptive host
// facts for reports.
package platform

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/psantana5/benchtime/internal/diag"
)

const component = "platform"

// Diagnostics emitted by Validate.
const (
	MsgPointerInt = "ERROR! Please define the pointer-sized integer to a type that holds a pointer!"
	MsgUint32     = "ERROR! Please define the 32-bit unsigned type to a 32b unsigned type!"
)

// ErrPlatformMismatch is returned under PolicyFail when a check fails.
var ErrPlatformMismatch = errors.New("platform: configuration mismatch")

// Widths are type sizes in bytes.
type Widths struct {
	Pointer    int `json:"pointer" yaml:"pointer"`
	PointerInt int `json:"pointer_int" yaml:"pointer_int"`
	Uint32     int `json:"uint32" yaml:"uint32"`
}

// NativeWidths measures the types the harness uses.
func NativeWidths() Widths {
	return Widths{
		Pointer:    int(unsafe.Sizeof(unsafe.Pointer(nil))),
		PointerInt: int(unsafe.Sizeof(uintptr(0))),
		Uint32:     int(unsafe.Sizeof(uint32(0))),
	}
}

// Policy decides what a failed check does.
type Policy int

const (
	// PolicyWarn emits diagnostics and continues.
	PolicyWarn Policy = iota
	// PolicyFail emits diagnostics and returns ErrPlatformMismatch.
	PolicyFail
)

func (p Policy) String() string {
	if p == PolicyFail {
		return "fail"
	}
	return "warn"
}

// ParsePolicy accepts "warn" and "fail"; "" means warn.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "warn":
		return PolicyWarn, nil
	case "fail":
		return PolicyFail, nil
	default:
		return 0, fmt.Errorf("platform: unknown validation policy %q", s)
	}
}

// Result is the outcome of validation.
type Result struct {
	// PortableID is 1 when the configuration is valid and 0 when it is
	// not or after Fini.
	PortableID int      `json:"portable_id" yaml:"portable_id"`
	Warnings   []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Valid reports whether all checks passed and Fini has not run.
func (r Result) Valid() bool {
	return r.PortableID == 1
}

// Validate checks w. Every failed check emits exactly one diagnostic
// through sink. Under PolicyWarn the error is always nil.
func Validate(w Widths, sink diag.Sink, policy Policy) (Result, error) {
	if sink == nil {
		sink = diag.Discard{}
	}

	var warnings []string
	if w.PointerInt != w.Pointer {
		warnings = append(warnings, MsgPointerInt)
	}
	if w.Uint32 != 4 {
		warnings = append(warnings, MsgUint32)
	}
	for _, msg := range warnings {
		sink.Warn(component, msg)
	}

	res := Result{PortableID: 1, Warnings: warnings}
	if len(warnings) > 0 {
		res.PortableID = 0
		if policy == PolicyFail {
			return res, fmt.Errorf("%w: %s", ErrPlatformMismatch, strings.Join(warnings, "; "))
		}
	}
	return res, nil
}

// Fini marks the platform as finalized.
func Fini(r *Result) {
	r.PortableID = 0
}
