// Package leapsec holds the leap-second table that relates the UTC calendar
// to the continuous TAI scale.
//
// A Table records the days that end with an inserted leap second, keyed by
// Modified Julian Day, plus the TAI-UTC offset in effect before the first
// recorded insertion. From that it answers, for any MJD:
//   - the day length (86400 or 86401 SI seconds)
//   - the TAI-UTC offset valid during the day
//
// Tables are immutable once built and safe for concurrent use. Consumers
// depend on the Rules interface so tests can supply synthetic tables.
//
// Days outside the recorded history are ordinary days. Before the first
// entry the base offset applies; after the last entry the final cumulative
// offset applies. No extrapolation of future leap seconds is attempted.
//
// Only positive leap seconds are accepted. A negative leap second would make
// the TAI-UTC offset decrease and a day 86399 seconds long; no such second
// has ever been scheduled and the table rejects one as a validation error.
package leapsec
