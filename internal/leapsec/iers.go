package leapsec

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/tscale/internal/timeerr"
)

// ntpEpochMJD is the MJD of 1900-01-01, the NTP era 0 epoch.
const ntpEpochMJD = 15020

// ParseIERS reads the IERS/NIST leap-seconds.list format.
//
// Every data line holds an NTP timestamp (seconds since 1900-01-01) and the
// TAI-UTC offset that takes effect at that instant. The first data line
// gives the base offset; each later line must raise the offset by one
// second, and the insertion is recorded at the end of the preceding day.
// Lines starting with '#' are comments.
func ParseIERS(r io.Reader) (*Table, error) {
	const op = "leapsec.ParseIERS"

	var (
		base    int64
		prev    int64
		seen    bool
		entries []Entry
	)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, timeerr.Parse(op, scanner.Text(), "line %d: want 2 fields, got %d", lineNo, len(fields))
		}
		ntp, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil || ntp < 0 {
			return nil, timeerr.Parse(op, scanner.Text(), "line %d: invalid NTP timestamp", lineNo)
		}
		offset, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, timeerr.Parse(op, scanner.Text(), "line %d: invalid TAI-UTC offset", lineNo)
		}
		if ntp%SecondsPerDay != 0 {
			return nil, timeerr.Validation(op, "line %d: timestamp %d is not at midnight", lineNo, ntp)
		}
		mjd := ntpEpochMJD + ntp/SecondsPerDay

		if !seen {
			base, prev, seen = offset, offset, true
			continue
		}
		if offset != prev+1 {
			return nil, timeerr.Validation(op, "line %d: offset %d does not follow %d by one second", lineNo, offset, prev)
		}
		entries = append(entries, Entry{MJD: mjd - 1, Adjustment: 1})
		prev = offset
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !seen {
		return nil, timeerr.Validation(op, "no data lines")
	}
	return New(base, entries)
}
