package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/tscale/internal/leapsec"
	"github.com/roach88/tscale/internal/utc"
)

// SaveTable records table as a new revision and returns it.
// Saving a table with the same digest as a stored revision is a no-op that
// returns the stored revision, so repeated imports of one file are idempotent.
//
// source labels where the table came from (a file path, "builtin") and is
// stored NFC-normalized. importedAt is the caller's clock reading.
func (s *Store) SaveTable(ctx context.Context, table *leapsec.Table, source string, importedAt utc.Instant) (Revision, error) {
	if table == nil {
		return Revision{}, errors.New("save table: nil table")
	}
	digest := table.Digest()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Revision{}, fmt.Errorf("save table: %w", err)
	}
	defer tx.Rollback()

	existing, err := scanRevision(tx.QueryRowContext(ctx, revisionSelect+` WHERE r.digest = ? GROUP BY r.id`, digest))
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return Revision{}, fmt.Errorf("save table: %w", err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM table_revisions`).Scan(&seq); err != nil {
		return Revision{}, fmt.Errorf("save table: next seq: %w", err)
	}

	rev := Revision{
		ID:         uuid.Must(uuid.NewV7()).String(),
		Seq:        seq,
		Source:     norm.NFC.String(source),
		ImportedAt: importedAt.String(),
		BaseOffset: table.BaseOffset(),
		Digest:     digest,
		Entries:    table.Len(),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO table_revisions
		(id, seq, source, imported_at, base_offset, digest)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		rev.ID,
		rev.Seq,
		rev.Source,
		rev.ImportedAt,
		rev.BaseOffset,
		rev.Digest,
	)
	if err != nil {
		return Revision{}, fmt.Errorf("save table: insert revision: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO leap_seconds (revision_id, mjd, adjustment)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return Revision{}, fmt.Errorf("save table: %w", err)
	}
	defer stmt.Close()

	for _, e := range table.Entries() {
		if _, err := stmt.ExecContext(ctx, rev.ID, e.MJD, e.Adjustment); err != nil {
			return Revision{}, fmt.Errorf("save table: insert MJD %d: %w", e.MJD, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Revision{}, fmt.Errorf("save table: commit: %w", err)
	}
	return rev, nil
}
