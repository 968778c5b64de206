package civil

import "github.com/roach88/tscale/internal/checked"

const (
	daysPer400Years = 146097

	// mjdShift is the number of days from 0000-03-01 to MJD 0.
	mjdShift = 678881

	// EpochUnixMJD is the MJD of 1970-01-01.
	EpochUnixMJD = 40587

	// EpochTAIMJD is the MJD of 1958-01-01, the TAI epoch.
	EpochTAIMJD = 36204
)

// Date is a proleptic Gregorian calendar date.
type Date struct {
	Year  int64
	Month int
	Day   int
}

// FromMJD returns the calendar date of a Modified Julian Day.
func FromMJD(mjd int64) Date {
	era := checked.FloorDiv(mjd, daysPer400Years)
	doe := checked.FloorMod(mjd, daysPer400Years) + mjdShift
	era += doe / daysPer400Years
	doe %= daysPer400Years

	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	year := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	day := int(doy - (153*mp+2)/5 + 1)
	month := int(mp + 3)
	if mp >= 10 {
		month = int(mp - 9)
	}
	if month <= 2 {
		year++
	}
	return Date{Year: year, Month: month, Day: day}
}

// ToMJD returns the Modified Julian Day of a calendar date.
// The date must already be valid (see Valid); ok is false on overflow.
func ToMJD(d Date) (mjd int64, ok bool) {
	y := d.Year
	if d.Month <= 2 {
		if y, ok = checked.Sub(y, 1); !ok {
			return 0, false
		}
	}
	era := checked.FloorDiv(y, 400)
	yoe := y - era*400
	mp := int64(d.Month - 3)
	if d.Month <= 2 {
		mp = int64(d.Month + 9)
	}
	doy := (153*mp+2)/5 + int64(d.Day) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy

	// Near the top of the range era*146097 alone can exceed int64 even when
	// the result fits, so borrow five eras into the day-of-era term.
	if era > 0 {
		base, ok := checked.Mul(era-5, daysPer400Years)
		if !ok {
			return 0, false
		}
		return checked.Add(base, doe+5*daysPer400Years-mjdShift)
	}
	base, ok := checked.Mul(era, daysPer400Years)
	if !ok {
		return 0, false
	}
	return checked.Add(base, doe-mjdShift)
}

// IsLeapYear reports whether year has a February 29th.
func IsLeapYear(year int64) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the length of month in year, or 0 for an invalid month.
func DaysInMonth(year int64, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

// Valid reports whether d names an existing calendar day.
func (d Date) Valid() bool {
	if d.Month < 1 || d.Month > 12 {
		return false
	}
	return d.Day >= 1 && d.Day <= DaysInMonth(d.Year, d.Month)
}
