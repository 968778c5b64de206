// Package timeerr defines the error kinds shared by the time-scale packages.
//
// Every failure in tai, utc, leapsec and convert is an *Error carrying one
// of four codes:
//   - PARSE: malformed text input
//   - VALIDATION: a well-formed value that violates a field invariant
//   - OVERFLOW: a result that does not fit in int64
//   - NULL_REFERENCE: a required collaborator (table, standard instant) is nil
//
// None of these are transient. Callers classify errors with the Is* helpers,
// which see through fmt.Errorf("%w") wrapping.
package timeerr
