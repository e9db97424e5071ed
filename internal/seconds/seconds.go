// Package seconds converts elapsed clock ticks into seconds.
//
// Two representations are offered. Float is a float64 and suits hosts with
// floating point. Fixed is an exact rational rendered with integer
// arithmetic only, for targets where floating point is unavailable or
// untrusted in the timing path.
package seconds

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/psantana5/benchtime/internal/clock"
)

// Value is a duration in seconds.
type Value interface {
	Float64() float64
	String() string
	// Cmp returns -1, 0 or +1 as the receiver is less than, equal to or
	// greater than v.
	Cmp(v Value) int
}

// Float is seconds as a float64.
type Float float64

func (f Float) Float64() float64 { return float64(f) }

func (f Float) String() string {
	return strconv.FormatFloat(float64(f), 'f', -1, 64)
}

func (f Float) Cmp(v Value) int {
	if fx, ok := v.(Fixed); ok {
		return -fx.Cmp(f)
	}
	other := v.Float64()
	switch {
	case float64(f) < other:
		return -1
	case float64(f) > other:
		return 1
	}
	return 0
}

// FixedDigits is the number of fractional digits Fixed.String renders.
const FixedDigits = 9

// Fixed is seconds as an exact fraction ticks/tps, kept in lowest terms.
type Fixed struct {
	r *big.Rat
}

// NewFixed returns num/den seconds. den must be non-zero.
func NewFixed(num, den int64) Fixed {
	return Fixed{r: big.NewRat(num, den)}
}

func (x Fixed) rat() *big.Rat {
	if x.r == nil {
		return new(big.Rat)
	}
	return x.r
}

// Num returns the reduced numerator.
func (x Fixed) Num() int64 { return x.rat().Num().Int64() }

// Denom returns the reduced denominator.
func (x Fixed) Denom() int64 { return x.rat().Denom().Int64() }

func (x Fixed) Float64() float64 {
	f, _ := x.rat().Float64()
	return f
}

// String renders up to FixedDigits fractional digits, rounded half away
// from zero, with trailing zeros removed.
func (x Fixed) String() string {
	s := x.rat().FloatString(FixedDigits)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}

func (x Fixed) Cmp(v Value) int {
	switch o := v.(type) {
	case Fixed:
		return x.rat().Cmp(o.rat())
	default:
		other := new(big.Rat)
		if other.SetFloat64(v.Float64()) == nil {
			// NaN or Inf: fall back to float comparison.
			return Float(x.Float64()).Cmp(v)
		}
		return x.rat().Cmp(other)
	}
}

// Policy selects the Value representation.
type Policy int

const (
	PolicyFloat Policy = iota
	PolicyFixed
)

func (p Policy) String() string {
	switch p {
	case PolicyFloat:
		return "float"
	case PolicyFixed:
		return "fixed"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ErrUnknownPolicy is returned by ParsePolicy.
var ErrUnknownPolicy = errors.New("seconds: unknown policy")

// ParsePolicy accepts "float" and "fixed"; "" means float.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "float":
		return PolicyFloat, nil
	case "fixed":
		return PolicyFixed, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// ErrInvalidRate is returned when ticks per second is not positive.
var ErrInvalidRate = errors.New("seconds: ticks per second must be positive")

// Converter turns ticks of one clock domain into seconds.
type Converter struct {
	tps    int64
	policy Policy
}

// NewConverter returns a converter for a clock running at tps ticks/s.
func NewConverter(tps int64, policy Policy) (Converter, error) {
	if tps <= 0 {
		return Converter{}, fmt.Errorf("%w: %d", ErrInvalidRate, tps)
	}
	return Converter{tps: tps, policy: policy}, nil
}

// For returns a converter matching src.
func For(src clock.Source, policy Policy) (Converter, error) {
	return NewConverter(src.TicksPerSecond(), policy)
}

// TicksPerSecond returns the converter's rate.
func (c Converter) TicksPerSecond() int64 { return c.tps }

// Policy returns the output representation.
func (c Converter) Policy() Policy { return c.policy }

// ToSeconds returns t / tps.
func (c Converter) ToSeconds(t clock.Ticks) Value {
	if c.policy == PolicyFixed {
		return NewFixed(int64(t), c.tps)
	}
	return Float(float64(t) / float64(c.tps))
}
