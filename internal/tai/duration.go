package tai

import (
	"math"
	"strconv"
	"time"

	"github.com/roach88/tscale/internal/checked"
	"github.com/roach88/tscale/internal/timeerr"
)

// NanosPerSecond is the number of nanoseconds in one SI second.
const NanosPerSecond = 1_000_000_000

// Duration is a signed amount of SI time: whole seconds plus a
// nanosecond remainder in [0, 1e9). The sign is carried by the seconds,
// so -0.5s is (-1 s, 500000000 ns).
type Duration struct {
	seconds int64
	nanos   int32
}

// NewDuration builds a Duration from seconds and an arbitrary nanosecond
// adjustment, which may be negative or larger than one second.
func NewDuration(seconds, nanoAdjustment int64) (Duration, error) {
	secs, ok := checked.Add(seconds, checked.FloorDiv(nanoAdjustment, NanosPerSecond))
	if !ok {
		return Duration{}, timeerr.Overflow("tai.NewDuration",
			"%d s + %d ns exceeds the seconds range", seconds, nanoAdjustment)
	}
	return Duration{seconds: secs, nanos: int32(checked.FloorMod(nanoAdjustment, NanosPerSecond))}, nil
}

// DurationOf converts a time.Duration.
func DurationOf(d time.Duration) Duration {
	n := int64(d)
	return Duration{
		seconds: checked.FloorDiv(n, NanosPerSecond),
		nanos:   int32(checked.FloorMod(n, NanosPerSecond)),
	}
}

// Seconds returns the whole-second part, which carries the sign.
func (d Duration) Seconds() int64 {
	return d.seconds
}

// Nano returns the nanosecond remainder in [0, 1e9).
func (d Duration) Nano() int {
	return int(d.nanos)
}

// IsZero reports whether d is zero length.
func (d Duration) IsZero() bool {
	return d.seconds == 0 && d.nanos == 0
}

// IsNegative reports whether d is less than zero.
func (d Duration) IsNegative() bool {
	return d.seconds < 0
}

// Negate returns -d. Only the most negative whole-second duration overflows.
func (d Duration) Negate() (Duration, error) {
	if d.nanos == 0 {
		secs, ok := checked.Neg(d.seconds)
		if !ok {
			return Duration{}, timeerr.Overflow("tai.Duration.Negate", "cannot negate %d s", d.seconds)
		}
		return Duration{seconds: secs}, nil
	}
	// -(s + n) = (-s - 1) + (1e9 - n), and -s-1 == ^s never overflows.
	return Duration{seconds: ^d.seconds, nanos: NanosPerSecond - d.nanos}, nil
}

// Std converts d to a time.Duration.
func (d Duration) Std() (time.Duration, error) {
	secs, nanos := d.seconds, int64(d.nanos)
	if secs < 0 && nanos > 0 {
		// borrow so time.Duration(math.MinInt64) round-trips
		secs++
		nanos -= NanosPerSecond
	}
	ns, ok := checked.Mul(secs, NanosPerSecond)
	if ok {
		ns, ok = checked.Add(ns, nanos)
	}
	if !ok {
		return 0, timeerr.Overflow("tai.Duration.Std", "%s does not fit in time.Duration", d)
	}
	return time.Duration(ns), nil
}

// String formats d as signed decimal seconds with nine fraction digits,
// e.g. "-0.500000000s".
func (d Duration) String() string {
	if d.seconds >= 0 {
		return strconv.FormatInt(d.seconds, 10) + "." + pad9(d.nanos) + "s"
	}
	whole := d.seconds
	frac := d.nanos
	if frac != 0 {
		whole++
		frac = NanosPerSecond - frac
	}
	var mag uint64
	if whole == math.MinInt64 {
		mag = uint64(math.MaxInt64) + 1
	} else {
		mag = uint64(-whole)
	}
	return "-" + strconv.FormatUint(mag, 10) + "." + pad9(frac) + "s"
}

func pad9(n int32) string {
	s := strconv.FormatInt(int64(n), 10)
	const zeros = "000000000"
	return zeros[:9-len(s)] + s
}
