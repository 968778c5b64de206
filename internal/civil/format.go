package civil

import (
	"errors"
	"fmt"
	"strconv"
)

// maxYearDigits keeps the year inside int64; ToMJD still rejects years
// whose day number does not fit.
const maxYearDigits = 18

// String formats d as YYYY-MM-DD. Years outside 0000..9999 use the ISO 8601
// expanded form: "+" and all digits above 9999, "-" and at least four
// digits below zero.
func (d Date) String() string {
	return fmt.Sprintf("%s-%02d-%02d", formatYear(d.Year), d.Month, d.Day)
}

func formatYear(y int64) string {
	switch {
	case y > 9999:
		return "+" + strconv.FormatInt(y, 10)
	case y < 0:
		return fmt.Sprintf("-%04d", -y)
	default:
		return fmt.Sprintf("%04d", y)
	}
}

// ParseDate parses exactly the output of Date.String and checks that the
// day exists in the proleptic Gregorian calendar.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, errors.New("empty date")
	}
	start := 0
	sign := byte(0)
	if s[0] == '+' || s[0] == '-' {
		sign = s[0]
		start = 1
	}
	// year digits run up to the next '-'
	end := start
	for end < len(s) && s[end] != '-' {
		end++
	}
	if end == len(s) {
		return Date{}, errors.New("missing month")
	}
	digits := s[start:end]
	if !allDigits(digits) || len(digits) < 4 || len(digits) > maxYearDigits {
		return Date{}, fmt.Errorf("invalid year %q", s[:end])
	}
	year, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return Date{}, fmt.Errorf("invalid year %q", s[:end])
	}
	switch sign {
	case '+':
		if year <= 9999 || digits[0] == '0' {
			return Date{}, fmt.Errorf("year %q must not carry '+'", s[:end])
		}
	case '-':
		if year == 0 || (len(digits) > 4 && digits[0] == '0') {
			return Date{}, fmt.Errorf("invalid negative year %q", s[:end])
		}
		year = -year
	default:
		if len(digits) != 4 {
			return Date{}, fmt.Errorf("year %q above 9999 needs '+'", digits)
		}
	}

	rest := s[end+1:]
	if len(rest) != 5 || rest[2] != '-' || !allDigits(rest[:2]) || !allDigits(rest[3:]) {
		return Date{}, fmt.Errorf("month and day must be MM-DD, got %q", rest)
	}
	month, _ := strconv.Atoi(rest[:2])
	day, _ := strconv.Atoi(rest[3:])
	d := Date{Year: year, Month: month, Day: day}
	if month < 1 || month > 12 {
		return Date{}, fmt.Errorf("invalid month %02d", month)
	}
	if !d.Valid() {
		return Date{}, fmt.Errorf("invalid day %02d for %s-%02d", day, formatYear(year), month)
	}
	return d, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
