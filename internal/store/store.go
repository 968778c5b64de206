package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema versions, stored in PRAGMA user_version:
// 0 - revisions and leap_seconds tables only
// 1 - index on leap_seconds.mjd
const currentSchemaVersion = 1

// migrations[v] upgrades a database at user_version v to v+1.
var migrations = []func(*sql.Tx) error{
	migrateToV1,
}

// pragma is a connection setting and the value SQLite reports once it
// has been applied.
type pragma struct {
	name, set, want string
}

// Readers (config resolving --table store) and the importer may hold the
// file at the same time, so the journal is WAL and writers wait for locks.
var pragmas = []pragma{
	{"journal_mode", "WAL", "wal"},
	{"synchronous", "NORMAL", "1"},
	{"busy_timeout", "5000", "5000"},
	{"foreign_keys", "ON", "1"},
}

// Store holds leap-second table revisions in a SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens the table database at path, creating it on first use, and
// brings its schema up to the current version. Opening an up-to-date
// database again changes nothing.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open table store %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open table store %s: %w", path, err)
	}

	// One connection: pragmas are per connection and SQLite has a single
	// writer anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.configure(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open table store %s: %w", path, err)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open table store %s: %w", path, err)
	}
	return s, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the connection behind the store.
func (s *Store) DB() *sql.DB {
	return s.db
}

// configure applies each pragma and reads it back. journal_mode silently
// stays on the old mode when WAL is unavailable, so the read is not
// optional.
func (s *Store) configure() error {
	for _, p := range pragmas {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.set)); err != nil {
			return fmt.Errorf("set %s: %w", p.name, err)
		}
		if err := s.verifyPragma(p.name, p.want); err != nil {
			return err
		}
	}
	return nil
}

// migrate creates missing tables, then runs the migrations between the
// file's user_version and currentSchemaVersion, each in its own
// transaction together with the version bump.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("schema version %d is newer than this tscale (%d)", version, currentSchemaVersion)
	}

	for ; version < currentSchemaVersion; version++ {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if err := migrations[version](tx); err != nil {
			tx.Rollback()
			return err
		}
		// PRAGMA does not take bound parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("set schema version %d: %w", version+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate to v%d: %w", version+1, err)
		}
	}
	return nil
}

// migrateToV1 indexes leap_seconds by day so "which revisions know about
// MJD n" lookups avoid a full scan.
func migrateToV1(tx *sql.Tx) error {
	if _, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_leap_seconds_mjd ON leap_seconds(mjd)`); err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

func (s *Store) verifyPragma(name, want string) error {
	var got string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&got); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if got != want {
		return fmt.Errorf("%s = %q, want %q", name, got, want)
	}
	return nil
}
