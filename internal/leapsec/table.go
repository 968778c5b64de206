package leapsec

import (
	"bytes"
	"cmp"
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/tscale/internal/checked"
	"github.com/roach88/tscale/internal/timeerr"
)

const (
	// SecondsPerDay is the length of an ordinary UTC day.
	SecondsPerDay = 86400

	// NanosPerSecond is the number of nanoseconds in one SI second.
	NanosPerSecond = 1_000_000_000

	// NanosPerDay is the length of an ordinary UTC day in nanoseconds.
	NanosPerDay = SecondsPerDay * NanosPerSecond
)

//go:embed data/leap_seconds.yaml
var builtinYAML []byte

// Rules answers day-length and offset queries for the UTC calendar.
// *Table implements Rules.
type Rules interface {
	// LeapAdjustment returns the number of seconds inserted at the end of mjd.
	LeapAdjustment(mjd int64) int

	// DayLength returns the length of mjd in nanoseconds.
	DayLength(mjd int64) int64

	// DaySeconds returns the length of mjd in seconds.
	DaySeconds(mjd int64) int64

	// TAIOffset returns TAI-UTC in seconds valid during mjd.
	TAIOffset(mjd int64) int64

	// NextLeapDay returns the first leap day on or after mjd.
	NextLeapDay(mjd int64) (int64, bool)

	// PrevLeapDay returns the last leap day on or before mjd.
	PrevLeapDay(mjd int64) (int64, bool)
}

// Entry records a leap second inserted at the end of day MJD.
type Entry struct {
	MJD        int64 `json:"mjd" yaml:"mjd"`
	Adjustment int   `json:"adjustment" yaml:"adjustment"`
}

// Table is an immutable leap-second table.
type Table struct {
	base    int64
	entries []Entry
	// offsets[i] is TAI-UTC for the days after entries[i].
	offsets []int64
}

var _ Rules = (*Table)(nil)

// New builds a table from a base TAI-UTC offset and a set of insertions.
// Entries may be given in any order; duplicates and adjustments other than
// +1 are validation errors.
func New(baseOffset int64, entries []Entry) (*Table, error) {
	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, func(a, b Entry) int { return cmp.Compare(a.MJD, b.MJD) })

	offsets := make([]int64, len(sorted))
	offset := baseOffset
	for i, e := range sorted {
		if e.Adjustment != 1 {
			return nil, timeerr.Validation("leapsec.New",
				"leap second adjustment %d on MJD %d is not supported, only +1", e.Adjustment, e.MJD)
		}
		if i > 0 && sorted[i-1].MJD == e.MJD {
			return nil, timeerr.Validation("leapsec.New", "duplicate leap second on MJD %d", e.MJD)
		}
		var ok bool
		if offset, ok = checked.Add(offset, int64(e.Adjustment)); !ok {
			return nil, timeerr.Overflow("leapsec.New", "TAI-UTC offset exceeds int64 at MJD %d", e.MJD)
		}
		offsets[i] = offset
	}

	return &Table{base: baseOffset, entries: sorted, offsets: offsets}, nil
}

var builtin = sync.OnceValue(func() *Table {
	t, err := LoadYAML(bytes.NewReader(builtinYAML))
	if err != nil {
		panic(fmt.Sprintf("leapsec: embedded table is invalid: %v", err))
	}
	return t
})

// Default returns the built-in historical table: 27 insertions from
// 1972-06-30 to 2016-12-31 on top of a 10 second base offset.
// The table is parsed once and shared.
func Default() *Table {
	return builtin()
}

// BaseOffset returns TAI-UTC before the first recorded insertion.
func (t *Table) BaseOffset() int64 {
	return t.base
}

// Entries returns a copy of the insertions in ascending MJD order.
func (t *Table) Entries() []Entry {
	return slices.Clone(t.entries)
}

// Len returns the number of recorded insertions.
func (t *Table) Len() int {
	return len(t.entries)
}

// search returns the index of the first entry with MJD >= mjd.
func (t *Table) search(mjd int64) int {
	i, _ := slices.BinarySearchFunc(t.entries, mjd, func(e Entry, target int64) int {
		return cmp.Compare(e.MJD, target)
	})
	return i
}

// LeapAdjustment implements Rules.
func (t *Table) LeapAdjustment(mjd int64) int {
	i := t.search(mjd)
	if i < len(t.entries) && t.entries[i].MJD == mjd {
		return t.entries[i].Adjustment
	}
	return 0
}

// IsLeapDay reports whether mjd ends with an inserted leap second.
func (t *Table) IsLeapDay(mjd int64) bool {
	return t.LeapAdjustment(mjd) != 0
}

// DaySeconds implements Rules.
func (t *Table) DaySeconds(mjd int64) int64 {
	return SecondsPerDay + int64(t.LeapAdjustment(mjd))
}

// DayLength implements Rules.
func (t *Table) DayLength(mjd int64) int64 {
	return t.DaySeconds(mjd) * NanosPerSecond
}

// TAIOffset implements Rules.
func (t *Table) TAIOffset(mjd int64) int64 {
	i := t.search(mjd)
	if i == 0 {
		return t.base
	}
	return t.offsets[i-1]
}

// NextLeapDay implements Rules.
func (t *Table) NextLeapDay(mjd int64) (int64, bool) {
	i := t.search(mjd)
	if i == len(t.entries) {
		return 0, false
	}
	return t.entries[i].MJD, true
}

// PrevLeapDay implements Rules.
func (t *Table) PrevLeapDay(mjd int64) (int64, bool) {
	i := t.search(mjd)
	if i < len(t.entries) && t.entries[i].MJD == mjd {
		return mjd, true
	}
	if i == 0 {
		return 0, false
	}
	return t.entries[i-1].MJD, true
}

// WithLeapSecond returns a new table with one more insertion at the end of
// mjd. The day must come after every recorded leap day. t is not modified.
func (t *Table) WithLeapSecond(mjd int64, adjustment int) (*Table, error) {
	if n := len(t.entries); n > 0 && mjd <= t.entries[n-1].MJD {
		return nil, timeerr.Validation("leapsec.WithLeapSecond",
			"MJD %d is not after the last recorded leap day %d", mjd, t.entries[n-1].MJD)
	}
	return New(t.base, append(t.Entries(), Entry{MJD: mjd, Adjustment: adjustment}))
}

// Require returns a null-reference error for op when r is nil or a nil
// *Table.
func Require(op string, r Rules) error {
	if r == nil {
		return timeerr.NullReference(op, "leap-second rules")
	}
	if t, ok := r.(*Table); ok && t == nil {
		return timeerr.NullReference(op, "leap-second table")
	}
	return nil
}
