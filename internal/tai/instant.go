package tai

import (
	"cmp"

	"github.com/roach88/tscale/internal/checked"
	"github.com/roach88/tscale/internal/timeerr"
)

const (
	// EpochMJD is the Modified Julian Day of the TAI epoch, 1958-01-01.
	EpochMJD = 36204

	// unixEpochSeconds is 1970-01-01T00:00:00(TAI) on this scale.
	unixEpochSeconds = (40587 - EpochMJD) * 86400
)

// Instant is a point on the TAI scale. The zero value is the epoch.
type Instant struct {
	seconds int64
	nanos   int32
}

// OfSeconds builds an instant from seconds and an arbitrary nanosecond
// adjustment. The adjustment is folded into the seconds with floor
// division, so OfSeconds(3, -1) is 2.999999999s.
func OfSeconds(seconds, nanoAdjustment int64) (Instant, error) {
	secs, ok := checked.Add(seconds, checked.FloorDiv(nanoAdjustment, NanosPerSecond))
	if !ok {
		return Instant{}, timeerr.Overflow("tai.OfSeconds",
			"%d s + %d ns exceeds the seconds range", seconds, nanoAdjustment)
	}
	return Instant{seconds: secs, nanos: int32(checked.FloorMod(nanoAdjustment, NanosPerSecond))}, nil
}

// Seconds returns the seconds since the TAI epoch.
func (i Instant) Seconds() int64 {
	return i.seconds
}

// Nano returns the nanosecond-of-second in [0, 1e9).
func (i Instant) Nano() int {
	return int(i.nanos)
}

// WithSeconds returns a copy with the seconds replaced.
func (i Instant) WithSeconds(seconds int64) Instant {
	return Instant{seconds: seconds, nanos: i.nanos}
}

// WithNano returns a copy with the nanosecond-of-second replaced.
func (i Instant) WithNano(nano int) (Instant, error) {
	if nano < 0 || nano >= NanosPerSecond {
		return Instant{}, timeerr.Validation("tai.WithNano", "nano-of-second %d outside [0, 999999999]", nano)
	}
	return Instant{seconds: i.seconds, nanos: int32(nano)}, nil
}

// Plus adds seconds and an arbitrary nanosecond adjustment.
func (i Instant) Plus(seconds, nanoAdjustment int64) (Instant, error) {
	d, err := NewDuration(seconds, nanoAdjustment)
	if err != nil {
		return Instant{}, err
	}
	return i.PlusDuration(d)
}

// Minus subtracts seconds and an arbitrary nanosecond adjustment.
func (i Instant) Minus(seconds, nanoAdjustment int64) (Instant, error) {
	d, err := NewDuration(seconds, nanoAdjustment)
	if err != nil {
		return Instant{}, err
	}
	return i.MinusDuration(d)
}

// PlusDuration returns i+d or an overflow error.
func (i Instant) PlusDuration(d Duration) (Instant, error) {
	nanos := int64(i.nanos) + int64(d.nanos)
	carry := nanos / NanosPerSecond
	secs, ok := add3(i.seconds, d.seconds, carry)
	if !ok {
		return Instant{}, timeerr.Overflow("tai.Plus", "%s + %s exceeds the seconds range", i, d)
	}
	return Instant{seconds: secs, nanos: int32(nanos % NanosPerSecond)}, nil
}

// MinusDuration returns i-d or an overflow error.
func (i Instant) MinusDuration(d Duration) (Instant, error) {
	secs, nanos, ok := diff(i.seconds, i.nanos, d.seconds, d.nanos)
	if !ok {
		return Instant{}, timeerr.Overflow("tai.Minus", "%s - %s exceeds the seconds range", i, d)
	}
	return Instant{seconds: secs, nanos: nanos}, nil
}

// DurationUntil returns the elapsed time from i to end, negative if end
// is before i.
func (i Instant) DurationUntil(end Instant) (Duration, error) {
	secs, nanos, ok := diff(end.seconds, end.nanos, i.seconds, i.nanos)
	if !ok {
		return Duration{}, timeerr.Overflow("tai.DurationUntil", "%s until %s exceeds the seconds range", i, end)
	}
	return Duration{seconds: secs, nanos: nanos}, nil
}

// Compare returns -1, 0 or +1 ordering by seconds then nanos.
func (i Instant) Compare(other Instant) int {
	if c := cmp.Compare(i.seconds, other.seconds); c != 0 {
		return c
	}
	return cmp.Compare(i.nanos, other.nanos)
}

// Equal reports whether both fields match.
func (i Instant) Equal(other Instant) bool {
	return i == other
}

// IsBefore reports whether i is strictly earlier than other.
func (i Instant) IsBefore(other Instant) bool {
	return i.Compare(other) < 0
}

// IsAfter reports whether i is strictly later than other.
func (i Instant) IsAfter(other Instant) bool {
	return i.Compare(other) > 0
}

// diff computes (as + an) - (bs + bn) normalized.
func diff(as int64, an int32, bs int64, bn int32) (int64, int32, bool) {
	nanos := an - bn
	borrow := int64(0)
	if nanos < 0 {
		nanos += NanosPerSecond
		borrow = -1
	}
	secs, ok := sub3(as, bs, borrow)
	return secs, nanos, ok
}

// add3 returns a+b+c for |c| <= 1, succeeding whenever the total fits.
func add3(a, b, c int64) (int64, bool) {
	if s, ok := checked.Add(a, b); ok {
		if r, ok := checked.Add(s, c); ok {
			return r, true
		}
	}
	if s, ok := checked.Add(a, c); ok {
		return checked.Add(s, b)
	}
	return 0, false
}

// sub3 returns a-b+c for |c| <= 1, succeeding whenever the total fits.
func sub3(a, b, c int64) (int64, bool) {
	if s, ok := checked.Sub(a, b); ok {
		if r, ok := checked.Add(s, c); ok {
			return r, true
		}
	}
	if s, ok := checked.Add(a, c); ok {
		return checked.Sub(s, b)
	}
	return 0, false
}
