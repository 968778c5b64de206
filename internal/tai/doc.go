// Package tai implements instants on the International Atomic Time scale.
//
// An Instant is a count of SI seconds since 1958-01-01T00:00:00(TAI) plus a
// nanosecond-of-second in [0, 1e9). TAI has no leap seconds, so arithmetic
// on an Instant never consults a leap-second table. Conversion to and from
// the UTC calendar lives in package convert.
//
// Instants and Durations are immutable values. Every operation that could
// leave int64 range reports a timeerr overflow error; nothing wraps.
//
// The canonical text form is
//
//	<seconds>.<nnnnnnnnn>s(TAI)
//
// with an optional leading '-' on the seconds and exactly nine fraction
// digits, e.g. "123.123456789s(TAI)". The fraction is always the positive
// nanosecond-of-second, so "-1.500000000s(TAI)" is half a second before the
// epoch.
package tai
