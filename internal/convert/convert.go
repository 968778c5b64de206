package convert

import (
	"github.com/roach88/tscale/internal/checked"
	"github.com/roach88/tscale/internal/civil"
	"github.com/roach88/tscale/internal/leapsec"
	"github.com/roach88/tscale/internal/tai"
	"github.com/roach88/tscale/internal/timeerr"
	"github.com/roach88/tscale/internal/utc"
)

const (
	secondsPerDay  = leapsec.SecondsPerDay
	nanosPerSecond = leapsec.NanosPerSecond
)

// ToTAI returns the TAI instant of u.
func ToTAI(u utc.Instant, rules leapsec.Rules) (tai.Instant, error) {
	const op = "convert.ToTAI"
	if err := leapsec.Require(op, rules); err != nil {
		return tai.Instant{}, err
	}
	days, ok := checked.Sub(u.ModifiedJulianDay(), civil.EpochTAIMJD)
	sod := u.NanoOfDay() / nanosPerSecond
	if days < 0 {
		// count from the end of the day so instants near the bottom of the
		// range do not overflow in the day product
		days++
		sod -= secondsPerDay
	}
	var secs int64
	if ok {
		secs, ok = checked.Mul(days, secondsPerDay)
	}
	if ok {
		secs, ok = checked.Add(secs, rules.TAIOffset(u.ModifiedJulianDay()))
	}
	if ok {
		secs, ok = checked.Add(secs, sod)
	}
	if !ok {
		return tai.Instant{}, timeerr.Overflow(op, "%s is outside the TAI seconds range", u)
	}
	return tai.OfSeconds(secs, u.NanoOfDay()%nanosPerSecond)
}

// ToUTC returns the UTC instant of t.
func ToUTC(t tai.Instant, rules leapsec.Rules) (utc.Instant, error) {
	const op = "convert.ToUTC"
	if err := leapsec.Require(op, rules); err != nil {
		return utc.Instant{}, err
	}
	// Guess the day from t less the TAI-UTC in force on the naive day,
	// then walk to the day whose span contains t. Both values are split
	// into whole days and a remainder so the subtraction cannot overflow.
	// rel is t minus the current day's start minus the guessed offset, so
	// the walk only covers leap seconds between the guess and the answer.
	secs := t.Seconds()
	guess := rules.TAIOffset(checked.FloorDiv(secs, secondsPerDay) + civil.EpochTAIMJD)
	mjd := checked.FloorDiv(secs, secondsPerDay) - checked.FloorDiv(guess, secondsPerDay) + civil.EpochTAIMJD
	rel := checked.FloorMod(secs, secondsPerDay) - checked.FloorMod(guess, secondsPerDay)
	for {
		drift, ok := checked.Sub(rules.TAIOffset(mjd), guess)
		if !ok {
			return utc.Instant{}, timeerr.Overflow(op, "TAI-UTC on MJD %d is out of range", mjd)
		}
		sod, ok := checked.Sub(rel, drift)
		if !ok {
			return utc.Instant{}, timeerr.Overflow(op, "TAI-UTC on MJD %d is out of range", mjd)
		}
		switch {
		case sod < 0:
			mjd--
			rel += secondsPerDay
		case sod >= rules.DaySeconds(mjd):
			mjd++
			rel -= secondsPerDay
		default:
			return utc.Of(mjd, sod*nanosPerSecond+int64(t.Nano()), rules)
		}
	}
}

// TAIFromStandard maps a leap-agnostic instant onto the TAI scale through
// its UTC-SLS image.
func TAIFromStandard(std utc.StandardInstant, rules leapsec.Rules) (tai.Instant, error) {
	u, err := utc.OfStandardInstant(std, rules)
	if err != nil {
		return tai.Instant{}, err
	}
	return ToTAI(u, rules)
}

// TAIToStandard returns the leap-agnostic seconds and nanoseconds since
// 1970-01-01T00:00:00Z for t.
func TAIToStandard(t tai.Instant, rules leapsec.Rules) (seconds int64, nanos int32, err error) {
	u, err := ToUTC(t, rules)
	if err != nil {
		return 0, 0, err
	}
	return u.ToStandard(rules)
}
