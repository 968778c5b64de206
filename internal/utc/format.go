package utc

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/tscale/internal/civil"
	"github.com/roach88/tscale/internal/leapsec"
	"github.com/roach88/tscale/internal/timeerr"
)

// String returns the ISO 8601 form YYYY-MM-DDTHH:MM:SS[.nnnnnnnnn]Z.
// The fraction is omitted when the nanosecond-of-second is zero and has
// exactly nine digits otherwise. A leap second renders as 23:59:60.
func (i Instant) String() string {
	var b strings.Builder
	b.WriteString(civil.FromMJD(i.mjd).String())

	sod := i.nanoOfDay / nanosPerSecond
	nanos := i.nanoOfDay % nanosPerSecond
	hour, minute, second := sod/3600, sod/60%60, sod%60
	if sod >= secondsPerDay {
		hour, minute, second = 23, 59, 60+sod-secondsPerDay
	}
	fmt.Fprintf(&b, "T%02d:%02d:%02d", hour, minute, second)
	if nanos != 0 {
		fmt.Fprintf(&b, ".%09d", nanos)
	}
	b.WriteByte('Z')
	return b.String()
}

// Parse reads the output of String. A seconds field of 60 is accepted only
// at 23:59 on a day that ends with a leap second under rules.
func Parse(text string, rules leapsec.Rules) (Instant, error) {
	const op = "utc.Parse"
	if err := leapsec.Require(op, rules); err != nil {
		return Instant{}, err
	}

	datePart, clock, ok := strings.Cut(text, "T")
	if !ok {
		return Instant{}, timeerr.Parse(op, text, "missing 'T' between date and time")
	}
	date, err := civil.ParseDate(datePart)
	if err != nil {
		perr := timeerr.Parse(op, text, "invalid date")
		perr.Err = err
		return Instant{}, perr
	}
	mjd, ok := civil.ToMJD(date)
	if !ok {
		return Instant{}, timeerr.Parse(op, text, "date is outside the representable day range")
	}

	clock, ok = strings.CutSuffix(clock, "Z")
	if !ok {
		return Instant{}, timeerr.Parse(op, text, "missing 'Z' suffix")
	}
	hms, frac, hasFrac := strings.Cut(clock, ".")
	if len(hms) != 8 || hms[2] != ':' || hms[5] != ':' {
		return Instant{}, timeerr.Parse(op, text, "time must be HH:MM:SS")
	}
	hour, okH := twoDigits(hms[0:2])
	minute, okM := twoDigits(hms[3:5])
	second, okS := twoDigits(hms[6:8])
	if !okH || !okM || !okS {
		return Instant{}, timeerr.Parse(op, text, "time fields must be decimal digits")
	}
	if hour > 23 || minute > 59 || second > 60 {
		return Instant{}, timeerr.Parse(op, text, "time %s out of range", hms)
	}

	var nanos int64
	if hasFrac {
		// String never writes an all-zero fraction.
		if len(frac) != 9 || !allDigits(frac) || frac == "000000000" {
			return Instant{}, timeerr.Parse(op, text, "fraction must be nine digits and non-zero")
		}
		nanos, _ = strconv.ParseInt(frac, 10, 64)
	}

	sod := hour*3600 + minute*60 + second
	if second == 60 {
		if hour != 23 || minute != 59 || rules.LeapAdjustment(mjd) < 1 {
			return Instant{}, timeerr.Parse(op, text, "second 60 is only valid at 23:59 on a leap day")
		}
		sod = secondsPerDay
	}
	return Instant{mjd: mjd, nanoOfDay: sod*nanosPerSecond + nanos}, nil
}

func twoDigits(s string) (int64, bool) {
	if len(s) != 2 || !allDigits(s) {
		return 0, false
	}
	return int64(s[0]-'0')*10 + int64(s[1]-'0'), true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// MarshalText implements encoding.TextMarshaler. There is no
// UnmarshalText: decoding needs a leap-second table, so use Parse.
func (i Instant) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// Value implements driver.Valuer, storing the canonical text.
func (i Instant) Value() (driver.Value, error) {
	return i.String(), nil
}
