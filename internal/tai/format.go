package tai

import (
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/tscale/internal/checked"
	"github.com/roach88/tscale/internal/timeerr"
)

const suffix = "s(TAI)"

// String returns the canonical text form, e.g. "-123.123456789s(TAI)".
func (i Instant) String() string {
	return strconv.FormatInt(i.seconds, 10) + "." + pad9(i.nanos) + suffix
}

// Parse reads exactly the canonical text form. Leading '+', leading zeros,
// "-0", and fractions other than nine digits are rejected.
func Parse(text string) (Instant, error) {
	const op = "tai.Parse"
	body, ok := strings.CutSuffix(text, suffix)
	if !ok {
		return Instant{}, timeerr.Parse(op, text, "missing %q suffix", suffix)
	}
	whole, frac, ok := strings.Cut(body, ".")
	if !ok {
		return Instant{}, timeerr.Parse(op, text, "missing '.' before the fraction")
	}

	digits := strings.TrimPrefix(whole, "-")
	if !isDigits(digits) {
		return Instant{}, timeerr.Parse(op, text, "seconds must be decimal digits with an optional '-'")
	}
	if len(digits) > 1 && digits[0] == '0' {
		return Instant{}, timeerr.Parse(op, text, "seconds must not have leading zeros")
	}
	if whole == "-0" {
		return Instant{}, timeerr.Parse(op, text, "negative zero seconds")
	}
	if len(frac) != 9 || !isDigits(frac) {
		return Instant{}, timeerr.Parse(op, text, "fraction must be exactly 9 digits")
	}

	secs, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Instant{}, timeerr.Parse(op, text, "seconds out of int64 range")
	}
	nanos, _ := strconv.ParseInt(frac, 10, 32)
	return Instant{seconds: secs, nanos: int32(nanos)}, nil
}

func isDigits(s string) bool {
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

// MarshalText implements encoding.TextMarshaler.
func (i Instant) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Instant) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// TAI64NSize is the length of a binary TAI64N label.
const TAI64NSize = 12

const tai64Base = uint64(1) << 62

// MarshalBinary encodes i as a TAI64N label: 8 big-endian bytes of
// 2^62 + seconds since 1970-01-01T00:00:00(TAI), then 4 bytes of nanos.
// Instants outside the label range are an overflow error.
func (i Instant) MarshalBinary() ([]byte, error) {
	rel, ok := checked.Sub(i.seconds, unixEpochSeconds)
	if !ok || rel < -int64(tai64Base) || rel >= int64(tai64Base) {
		return nil, timeerr.Overflow("tai.MarshalBinary", "%s is outside the TAI64 label range", i)
	}
	buf := make([]byte, TAI64NSize)
	binary.BigEndian.PutUint64(buf, uint64(rel)+tai64Base)
	binary.BigEndian.PutUint32(buf[8:], uint32(i.nanos))
	return buf, nil
}

// UnmarshalBinary decodes a TAI64N label.
func (i *Instant) UnmarshalBinary(data []byte) error {
	const op = "tai.UnmarshalBinary"
	if len(data) != TAI64NSize {
		return timeerr.Validation(op, "TAI64N label is %d bytes, want %d", len(data), TAI64NSize)
	}
	label := binary.BigEndian.Uint64(data)
	if label >= tai64Base<<1 {
		return timeerr.Validation(op, "label %#x has the reserved top bit set", label)
	}
	nanos := binary.BigEndian.Uint32(data[8:])
	if nanos >= NanosPerSecond {
		return timeerr.Validation(op, "nanoseconds %d outside [0, 999999999]", nanos)
	}
	// label < 2^63, so the relative seconds stay far from the int64 limits
	rel := int64(label) - int64(tai64Base)
	*i = Instant{seconds: rel + unixEpochSeconds, nanos: int32(nanos)}
	return nil
}

// Value implements driver.Valuer; instants are stored as canonical text.
func (i Instant) Value() (driver.Value, error) {
	return i.String(), nil
}

// Scan implements sql.Scanner.
func (i *Instant) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return i.UnmarshalText([]byte(v))
	case []byte:
		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("tai.Scan: unsupported type %T", value)
	}
}
