// Package civil converts between Modified Julian Day numbers and proleptic
// Gregorian calendar dates.
//
// MJD 0 is 1858-11-17. The conversions cover the whole int64 day range
// without intermediate overflow; only ToMJD can fail, for dates whose
// day number does not fit in int64.
package civil
