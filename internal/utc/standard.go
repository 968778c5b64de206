package utc

import (
	"time"

	"github.com/roach88/tscale/internal/checked"
	"github.com/roach88/tscale/internal/civil"
	"github.com/roach88/tscale/internal/leapsec"
	"github.com/roach88/tscale/internal/timeerr"
)

// smoothingWindow is the number of UTC seconds at the end of a leap day
// that UTC-SLS stretches or compresses.
const smoothingWindow = 1000

// StandardInstant is a leap-second-agnostic point in time: seconds since
// 1970-01-01T00:00:00Z with every day exactly 86400 seconds long.
// time.Time satisfies it.
type StandardInstant interface {
	Unix() int64
	Nanosecond() int
}

// OfStandardInstant maps a standard instant onto the UTC calendar. On a
// leap day the final 999 standard seconds (from 23:43:21) are spread over
// the final 1000 UTC seconds, leap second included, so every standard
// instant has exactly one UTC image.
func OfStandardInstant(std StandardInstant, rules leapsec.Rules) (Instant, error) {
	const op = "utc.OfStandardInstant"
	if std == nil {
		return Instant{}, timeerr.NullReference(op, "standard instant")
	}
	if err := leapsec.Require(op, rules); err != nil {
		return Instant{}, err
	}
	ns := std.Nanosecond()
	if ns < 0 || ns >= nanosPerSecond {
		return Instant{}, timeerr.Validation(op, "nanosecond %d outside [0, 999999999]", ns)
	}
	secs := std.Unix()
	// |secs/86400| is far below the int64 limit, so adding the epoch is safe.
	mjd := checked.FloorDiv(secs, secondsPerDay) + civil.EpochUnixMJD
	sls := checked.FloorMod(secs, secondsPerDay)*nanosPerSecond + int64(ns)

	nanoOfDay := sls
	if adj := int64(rules.LeapAdjustment(mjd)); adj != 0 {
		start := (secondsPerDay + adj - smoothingWindow) * nanosPerSecond
		if sls >= start {
			nanoOfDay = start + (sls-start)*smoothingWindow/(smoothingWindow-adj)
		}
	}
	return Instant{mjd: mjd, nanoOfDay: nanoOfDay}, nil
}

// OfTime maps a time.Time onto the UTC calendar. See OfStandardInstant.
func OfTime(t time.Time, rules leapsec.Rules) (Instant, error) {
	return OfStandardInstant(t, rules)
}

// ToStandard is the inverse of OfStandardInstant. It returns seconds since
// 1970-01-01T00:00:00Z and the nanosecond-of-second.
func (i Instant) ToStandard(rules leapsec.Rules) (seconds int64, nanos int32, err error) {
	const op = "utc.ToStandard"
	if err := leapsec.Require(op, rules); err != nil {
		return 0, 0, err
	}
	sls := i.nanoOfDay
	if adj := int64(rules.LeapAdjustment(i.mjd)); adj != 0 {
		start := (secondsPerDay + adj - smoothingWindow) * nanosPerSecond
		if sls >= start {
			sls -= (sls - start) * adj / smoothingWindow
		}
	}

	days, ok := checked.Sub(i.mjd, civil.EpochUnixMJD)
	if ok {
		seconds, ok = checked.Mul(days, secondsPerDay)
	}
	if ok {
		seconds, ok = checked.Add(seconds, sls/nanosPerSecond)
	}
	if !ok {
		return 0, 0, timeerr.Overflow(op, "%s is outside the standard seconds range", i)
	}
	return seconds, int32(sls % nanosPerSecond), nil
}

// Time converts i to a time.Time in the UTC location.
func (i Instant) Time(rules leapsec.Rules) (time.Time, error) {
	secs, nanos, err := i.ToStandard(rules)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(secs, int64(nanos)).UTC(), nil
}
