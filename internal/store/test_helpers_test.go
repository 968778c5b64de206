package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/tscale/internal/leapsec"
	"github.com/roach88/tscale/internal/utc"
)

// createTestStore creates a new on-disk store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// importedAt returns 2017-01-01T00:00:00Z.
func importedAt(t *testing.T) utc.Instant {
	t.Helper()
	u, err := utc.Of(57754, 0, leapsec.Default())
	if err != nil {
		t.Fatalf("utc.Of() failed: %v", err)
	}
	return u
}
