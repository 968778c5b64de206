// Package utc implements instants on the UTC calendar.
//
// An Instant is a Modified Julian Day plus a nanosecond-of-day. UTC days are
// not all the same length: a day that ends with an inserted leap second is
// 86401 SI seconds long, and only on such a day may the nanosecond-of-day
// reach 86_400_000_000_000 (the second labelled 23:59:60).
//
// Whether a day is a leap day is not a property of the Instant. Every
// operation that needs day lengths takes a leapsec.Rules argument, and a nil
// rules value is a timeerr null-reference error. Instants are immutable
// values and safe to share between goroutines.
//
// Adding a duration walks the calendar one day at a time using the length of
// each day it enters or leaves; runs of ordinary days between two leap days
// are folded in a single step.
//
// Conventional time libraries ignore leap seconds. OfStandardInstant and
// ToStandard bridge to them with UTC-SLS: the final 1000 UTC seconds of a
// leap day are spread evenly over the final 999 seconds of the standard day,
// so the standard clock never repeats or jumps.
package utc
