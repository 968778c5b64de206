// Package store keeps imported leap-second tables in SQLite.
//
// Each import becomes a revision:
//   - table_revisions: id (UUIDv7), seq, source label, imported-at UTC
//     instant, base offset and content digest
//   - leap_seconds: the entries of one revision
//
// Revisions are ordered by seq, a logical counter assigned at insert time,
// never by the imported-at timestamp. Saving a table whose digest is
// already stored returns the existing revision.
//
// The file runs in WAL mode with foreign keys on, so a command reading the
// latest table and an import can share it. Open checks every setting after
// applying it and refuses files written by a newer schema version.
package store
