package store

import (
	"context"
	"fmt"

	"github.com/roach88/tscale/internal/leapsec"
	"github.com/roach88/tscale/internal/utc"
)

// Revision describes one stored table.
type Revision struct {
	ID         string `json:"id"`
	Seq        int64  `json:"seq"`
	Source     string `json:"source"`
	ImportedAt string `json:"imported_at"`
	BaseOffset int64  `json:"base_offset"`
	Digest     string `json:"digest"`
	Entries    int    `json:"entries"`
}

// ImportedInstant parses ImportedAt. The text may name a leap second, so
// it is read against rules, normally the revision's own table.
func (r Revision) ImportedInstant(rules leapsec.Rules) (utc.Instant, error) {
	return utc.Parse(r.ImportedAt, rules)
}

const revisionSelect = `
	SELECT r.id, r.seq, r.source, r.imported_at, r.base_offset, r.digest, COUNT(l.mjd)
	FROM table_revisions r
	LEFT JOIN leap_seconds l ON l.revision_id = r.id`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRevision(row rowScanner) (Revision, error) {
	var r Revision
	err := row.Scan(&r.ID, &r.Seq, &r.Source, &r.ImportedAt, &r.BaseOffset, &r.Digest, &r.Entries)
	return r, err
}

// ListRevisions returns every stored revision, oldest first.
// Results ordered by seq ASC, id ASC.
func (s *Store) ListRevisions(ctx context.Context) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx, revisionSelect+`
		GROUP BY r.id
		ORDER BY r.seq ASC, r.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	revisions := []Revision{}
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revisions = append(revisions, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revisions: %w", err)
	}
	return revisions, nil
}

// LoadTable rebuilds the table stored under id.
// Returns sql.ErrNoRows if not found.
func (s *Store) LoadTable(ctx context.Context, id string) (*leapsec.Table, Revision, error) {
	rev, err := scanRevision(s.db.QueryRowContext(ctx, revisionSelect+` WHERE r.id = ? GROUP BY r.id`, id))
	if err != nil {
		return nil, Revision{}, fmt.Errorf("load table %s: %w", id, err)
	}
	table, err := s.readEntries(ctx, rev)
	if err != nil {
		return nil, Revision{}, err
	}
	return table, rev, nil
}

// LatestTable returns the most recently saved table.
// Returns sql.ErrNoRows if the store is empty.
func (s *Store) LatestTable(ctx context.Context) (*leapsec.Table, Revision, error) {
	rev, err := scanRevision(s.db.QueryRowContext(ctx, revisionSelect+`
		GROUP BY r.id
		ORDER BY r.seq DESC
		LIMIT 1
	`))
	if err != nil {
		return nil, Revision{}, fmt.Errorf("load latest table: %w", err)
	}
	table, err := s.readEntries(ctx, rev)
	if err != nil {
		return nil, Revision{}, err
	}
	return table, rev, nil
}

func (s *Store) readEntries(ctx context.Context, rev Revision) (*leapsec.Table, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT mjd, adjustment
		FROM leap_seconds
		WHERE revision_id = ?
		ORDER BY mjd ASC
	`, rev.ID)
	if err != nil {
		return nil, fmt.Errorf("query leap seconds of %s: %w", rev.ID, err)
	}
	defer rows.Close()

	var entries []leapsec.Entry
	for rows.Next() {
		var e leapsec.Entry
		if err := rows.Scan(&e.MJD, &e.Adjustment); err != nil {
			return nil, fmt.Errorf("scan leap second: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leap seconds: %w", err)
	}

	table, err := leapsec.New(rev.BaseOffset, entries)
	if err != nil {
		return nil, fmt.Errorf("revision %s: %w", rev.ID, err)
	}
	if table.Digest() != rev.Digest {
		return nil, fmt.Errorf("revision %s: stored digest does not match its entries", rev.ID)
	}
	return table, nil
}
