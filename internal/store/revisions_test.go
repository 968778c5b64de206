package store

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tscale/internal/leapsec"
	"github.com/roach88/tscale/internal/utc"
)

func TestSaveTable_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rev, err := s.SaveTable(ctx, leapsec.Default(), "builtin", importedAt(t))
	require.NoError(t, err)

	id, err := uuid.Parse(rev.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, int64(1), rev.Seq)
	assert.Equal(t, "2017-01-01T00:00:00Z", rev.ImportedAt)
	assert.Equal(t, 27, rev.Entries)
	assert.Equal(t, int64(10), rev.BaseOffset)

	table, loaded, err := s.LoadTable(ctx, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, rev, loaded)
	assert.Equal(t, leapsec.Default().Entries(), table.Entries())
	assert.Equal(t, leapsec.Default().Digest(), table.Digest())
}

func TestSaveTable_IdempotentByDigest(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.SaveTable(ctx, leapsec.Default(), "builtin", importedAt(t))
	require.NoError(t, err)
	again, err := s.SaveTable(ctx, leapsec.Default(), "other-source", importedAt(t))
	require.NoError(t, err)
	assert.Equal(t, first, again)

	revisions, err := s.ListRevisions(ctx)
	require.NoError(t, err)
	assert.Len(t, revisions, 1)
}

func TestSaveTable_NormalizesSource(t *testing.T) {
	s := createTestStore(t)

	// "e" followed by a combining acute accent
	rev, err := s.SaveTable(context.Background(), leapsec.Default(), "tables/re\u0301sume\u0301.yaml", importedAt(t))
	require.NoError(t, err)
	assert.Equal(t, "tables/r\u00e9sum\u00e9.yaml", rev.Source)
}

func TestSaveTable_NilTable(t *testing.T) {
	s := createTestStore(t)
	_, err := s.SaveTable(context.Background(), nil, "x", importedAt(t))
	assert.Error(t, err)
}

func TestLatestTable(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, _, err := s.LatestTable(ctx)
	require.ErrorIs(t, err, sql.ErrNoRows)

	_, err = s.SaveTable(ctx, leapsec.Default(), "builtin", importedAt(t))
	require.NoError(t, err)

	next, err := leapsec.Default().WithLeapSecond(61771, 1) // hypothetical future leap day
	require.NoError(t, err)
	rev, err := s.SaveTable(ctx, next, "bulletin-c", importedAt(t))
	require.NoError(t, err)
	assert.Equal(t, int64(2), rev.Seq)

	table, latest, err := s.LatestTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, rev.ID, latest.ID)
	assert.Equal(t, 28, table.Len())
	assert.True(t, table.IsLeapDay(61771))
}

func TestLoadTable_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, _, err := s.LoadTable(context.Background(), "no-such-revision")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestLoadTable_DetectsTampering(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rev, err := s.SaveTable(ctx, leapsec.Default(), "builtin", importedAt(t))
	require.NoError(t, err)
	_, err = s.db.Exec(`DELETE FROM leap_seconds WHERE revision_id = ? AND mjd = 57753`, rev.ID)
	require.NoError(t, err)

	_, _, err = s.LoadTable(ctx, rev.ID)
	assert.ErrorContains(t, err, "digest")
}

func TestListRevisions_Ordered(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	revisions, err := s.ListRevisions(ctx)
	require.NoError(t, err)
	assert.Empty(t, revisions)

	empty, err := leapsec.New(10, nil)
	require.NoError(t, err)
	var want []string
	for _, table := range []*leapsec.Table{leapsec.Default(), empty} {
		rev, err := s.SaveTable(ctx, table, "t", importedAt(t))
		require.NoError(t, err)
		want = append(want, rev.ID)
	}

	revisions, err = s.ListRevisions(ctx)
	require.NoError(t, err)
	require.Len(t, revisions, 2)
	assert.Equal(t, want[0], revisions[0].ID)
	assert.Equal(t, want[1], revisions[1].ID)
	assert.Equal(t, 0, revisions[1].Entries)
}

func TestRevision_ImportedInstantOnLeapSecond(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	leap, err := utc.Of(57753, 86_400_000_000_000, leapsec.Default())
	require.NoError(t, err)
	rev, err := s.SaveTable(ctx, leapsec.Default(), "builtin", leap)
	require.NoError(t, err)
	assert.Equal(t, "2016-12-31T23:59:60Z", rev.ImportedAt)

	table, loaded, err := s.LoadTable(ctx, rev.ID)
	require.NoError(t, err)
	got, err := loaded.ImportedInstant(table)
	require.NoError(t, err)
	assert.Equal(t, leap, got)
}

func TestSaveTable_Concurrent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	at := importedAt(t)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			table, err := leapsec.New(int64(i), nil)
			if err != nil {
				errs <- err
				return
			}
			_, err = s.SaveTable(ctx, table, "concurrent", at)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	revisions, err := s.ListRevisions(ctx)
	require.NoError(t, err)
	require.Len(t, revisions, 8)
	for i, rev := range revisions {
		assert.Equal(t, int64(i+1), rev.Seq)
	}
}
