package utc

import (
	"cmp"

	"github.com/roach88/tscale/internal/checked"
	"github.com/roach88/tscale/internal/leapsec"
	"github.com/roach88/tscale/internal/tai"
	"github.com/roach88/tscale/internal/timeerr"
)

const (
	secondsPerDay  = leapsec.SecondsPerDay
	nanosPerSecond = leapsec.NanosPerSecond
	nanosPerDay    = leapsec.NanosPerDay
)

// Instant is a point on the UTC calendar. The zero value is midnight at the
// start of MJD 0 (1858-11-17).
type Instant struct {
	mjd       int64
	nanoOfDay int64
}

func validate(op string, mjd, nanoOfDay int64, rules leapsec.Rules) error {
	if length := rules.DayLength(mjd); nanoOfDay < 0 || nanoOfDay >= length {
		return timeerr.Validation(op, "nano-of-day %d outside [0, %d) for MJD %d", nanoOfDay, length, mjd)
	}
	return nil
}

// Of returns the instant nanoOfDay nanoseconds after the start of mjd.
// nanoOfDay must be less than the day's length under rules.
func Of(mjd, nanoOfDay int64, rules leapsec.Rules) (Instant, error) {
	const op = "utc.Of"
	if err := leapsec.Require(op, rules); err != nil {
		return Instant{}, err
	}
	if err := validate(op, mjd, nanoOfDay, rules); err != nil {
		return Instant{}, err
	}
	return Instant{mjd: mjd, nanoOfDay: nanoOfDay}, nil
}

// ModifiedJulianDay returns the calendar day.
func (i Instant) ModifiedJulianDay() int64 {
	return i.mjd
}

// NanoOfDay returns the nanoseconds elapsed since the start of the day.
func (i Instant) NanoOfDay() int64 {
	return i.nanoOfDay
}

// IsLeapSecond reports whether i falls inside an inserted second, 23:59:60.
func (i Instant) IsLeapSecond() bool {
	return i.nanoOfDay >= nanosPerDay
}

// WithModifiedJulianDay moves i to another day at the same nano-of-day.
// A leap-second instant cannot move onto an ordinary day.
func (i Instant) WithModifiedJulianDay(mjd int64, rules leapsec.Rules) (Instant, error) {
	const op = "utc.WithModifiedJulianDay"
	if err := leapsec.Require(op, rules); err != nil {
		return Instant{}, err
	}
	if err := validate(op, mjd, i.nanoOfDay, rules); err != nil {
		return Instant{}, err
	}
	return Instant{mjd: mjd, nanoOfDay: i.nanoOfDay}, nil
}

// WithNanoOfDay replaces the nano-of-day, validated against the current day.
func (i Instant) WithNanoOfDay(nanoOfDay int64, rules leapsec.Rules) (Instant, error) {
	const op = "utc.WithNanoOfDay"
	if err := leapsec.Require(op, rules); err != nil {
		return Instant{}, err
	}
	if err := validate(op, i.mjd, nanoOfDay, rules); err != nil {
		return Instant{}, err
	}
	return Instant{mjd: i.mjd, nanoOfDay: nanoOfDay}, nil
}

// Plus adds seconds and an arbitrary nanosecond adjustment of elapsed SI
// time. Leap seconds crossed on the way count as ordinary seconds.
func (i Instant) Plus(seconds, nanoAdjustment int64, rules leapsec.Rules) (Instant, error) {
	d, err := tai.NewDuration(seconds, nanoAdjustment)
	if err != nil {
		return Instant{}, err
	}
	return i.PlusDuration(d, rules)
}

// Minus subtracts seconds and an arbitrary nanosecond adjustment.
func (i Instant) Minus(seconds, nanoAdjustment int64, rules leapsec.Rules) (Instant, error) {
	d, err := tai.NewDuration(seconds, nanoAdjustment)
	if err != nil {
		return Instant{}, err
	}
	return i.MinusDuration(d, rules)
}

// PlusDuration returns i+d.
func (i Instant) PlusDuration(d tai.Duration, rules leapsec.Rules) (Instant, error) {
	const op = "utc.Plus"
	c, nanos, err := i.cursor(op, rules)
	if err != nil {
		return Instant{}, err
	}
	nanos += int64(d.Nano())
	if err := c.shift(d.Seconds()); err != nil {
		return Instant{}, err
	}
	if nanos >= nanosPerSecond {
		nanos -= nanosPerSecond
		if err := c.forward(1); err != nil {
			return Instant{}, err
		}
	}
	return c.instant(nanos), nil
}

// MinusDuration returns i-d.
func (i Instant) MinusDuration(d tai.Duration, rules leapsec.Rules) (Instant, error) {
	const op = "utc.Minus"
	c, nanos, err := i.cursor(op, rules)
	if err != nil {
		return Instant{}, err
	}
	nanos -= int64(d.Nano())
	if s := d.Seconds(); s >= 0 {
		err = c.backward(uint64(s))
	} else {
		err = c.forward(magnitude(s))
	}
	if err != nil {
		return Instant{}, err
	}
	if nanos < 0 {
		nanos += nanosPerSecond
		if err := c.backward(1); err != nil {
			return Instant{}, err
		}
	}
	return c.instant(nanos), nil
}

// DurationUntil returns the SI time elapsed from i to end, counting every
// leap second in between. It is negative when end is before i.
func (i Instant) DurationUntil(end Instant, rules leapsec.Rules) (tai.Duration, error) {
	const op = "utc.DurationUntil"
	if err := leapsec.Require(op, rules); err != nil {
		return tai.Duration{}, err
	}
	// Day starts differ by 86400 s per day plus the leap seconds between,
	// which is exactly the change in TAI-UTC.
	days, ok := checked.Sub(end.mjd, i.mjd)
	var secs int64
	if ok {
		secs, ok = checked.Mul(days, secondsPerDay)
	}
	var leaps int64
	if ok {
		leaps, ok = checked.Sub(rules.TAIOffset(end.mjd), rules.TAIOffset(i.mjd))
	}
	if ok {
		secs, ok = checked.Add(secs, leaps)
	}
	if ok {
		secs, ok = checked.Add(secs, end.nanoOfDay/nanosPerSecond-i.nanoOfDay/nanosPerSecond)
	}
	if !ok {
		return tai.Duration{}, timeerr.Overflow(op, "%s until %s exceeds the seconds range", i, end)
	}
	return tai.NewDuration(secs, end.nanoOfDay%nanosPerSecond-i.nanoOfDay%nanosPerSecond)
}

// Compare orders instants by day, then by nano-of-day.
func (i Instant) Compare(other Instant) int {
	if c := cmp.Compare(i.mjd, other.mjd); c != 0 {
		return c
	}
	return cmp.Compare(i.nanoOfDay, other.nanoOfDay)
}

// Equal reports whether i and other are the same instant.
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

// dayCursor walks the calendar in whole seconds. sod is the second of day
// and stays within [0, DaySeconds(mjd)] while walking.
type dayCursor struct {
	op    string
	rules leapsec.Rules
	mjd   int64
	sod   int64
}

func (i Instant) cursor(op string, rules leapsec.Rules) (*dayCursor, int64, error) {
	if err := leapsec.Require(op, rules); err != nil {
		return nil, 0, err
	}
	if err := validate(op, i.mjd, i.nanoOfDay, rules); err != nil {
		return nil, 0, err
	}
	c := &dayCursor{op: op, rules: rules, mjd: i.mjd, sod: i.nanoOfDay / nanosPerSecond}
	return c, i.nanoOfDay % nanosPerSecond, nil
}

func (c *dayCursor) instant(nanos int64) Instant {
	return Instant{mjd: c.mjd, nanoOfDay: c.sod*nanosPerSecond + nanos}
}

func (c *dayCursor) overflow() error {
	return timeerr.Overflow(c.op, "Modified Julian Day leaves the int64 range")
}

func (c *dayCursor) shift(seconds int64) error {
	if seconds >= 0 {
		return c.forward(uint64(seconds))
	}
	return c.backward(magnitude(seconds))
}

// forward advances n seconds. It leaves sod strictly inside the final day.
func (c *dayCursor) forward(n uint64) error {
	for {
		left := c.rules.DaySeconds(c.mjd) - c.sod
		if n < uint64(left) {
			c.sod += int64(n)
			return nil
		}
		n -= uint64(left)
		c.sod = 0
		var ok bool
		if c.mjd, ok = checked.Add(c.mjd, 1); !ok {
			return c.overflow()
		}

		// Skip the ordinary days before the next leap day in one step.
		// days < 2^64/86400, so it always converts to int64.
		days := n / secondsPerDay
		if next, found := c.rules.NextLeapDay(c.mjd); found {
			if span, ok := checked.Sub(next, c.mjd); ok && uint64(span) < days {
				days = uint64(span)
			}
		}
		if days == 0 {
			continue
		}
		if c.mjd, ok = checked.Add(c.mjd, int64(days)); !ok {
			return c.overflow()
		}
		n -= days * secondsPerDay
	}
}

// backward retreats n seconds. An instant landing exactly on the end of a
// day is normalized to the start of the following day.
func (c *dayCursor) backward(n uint64) error {
	for n > uint64(c.sod) {
		n -= uint64(c.sod)
		var ok bool
		if c.mjd, ok = checked.Sub(c.mjd, 1); !ok {
			return c.overflow()
		}
		c.sod = c.rules.DaySeconds(c.mjd)

		// Skip back over the ordinary days after the previous leap day.
		days := n / secondsPerDay
		if prev, found := c.rules.PrevLeapDay(c.mjd); found {
			if span, ok := checked.Sub(c.mjd, prev); ok && uint64(span) < days {
				days = uint64(span)
			}
		}
		if days == 0 {
			continue
		}
		if c.mjd, ok = checked.Sub(c.mjd, int64(days)); !ok {
			return c.overflow()
		}
		c.sod = c.rules.DaySeconds(c.mjd)
		n -= days * secondsPerDay
	}
	c.sod -= int64(n)

	if c.sod == c.rules.DaySeconds(c.mjd) {
		var ok bool
		if c.mjd, ok = checked.Add(c.mjd, 1); !ok {
			return c.overflow()
		}
		c.sod = 0
	}
	return nil
}

// magnitude returns |s| for a negative s, including math.MinInt64.
func magnitude(s int64) uint64 {
	return uint64(-(s + 1)) + 1
}
