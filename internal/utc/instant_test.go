package utc

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tscale/internal/leapsec"
	"github.com/roach88/tscale/internal/tai"
	"github.com/roach88/tscale/internal/timeerr"
)

const (
	leapDay  = 41682 // 1972-12-31
	plainDay = 41681 // 1972-12-30
)

func rules() *leapsec.Table {
	return leapsec.Default()
}

func mustOf(t *testing.T, mjd, nanoOfDay int64) Instant {
	t.Helper()
	i, err := Of(mjd, nanoOfDay, rules())
	require.NoError(t, err)
	return i
}

func TestOf_BoundaryRejection(t *testing.T) {
	tests := []struct {
		name      string
		mjd       int64
		nanoOfDay int64
		wantErr   bool
	}{
		{"ordinary day midnight", plainDay, 0, false},
		{"ordinary day last nano", plainDay, nanosPerDay - 1, false},
		{"ordinary day length", plainDay, nanosPerDay, true},
		{"leap second", leapDay, nanosPerDay, false},
		{"leap day last nano", leapDay, nanosPerDay + nanosPerSecond - 1, false},
		{"leap day length", leapDay, nanosPerDay + nanosPerSecond, true},
		{"negative", plainDay, -1, true},
		{"far future ordinary", 1_000_000, nanosPerDay, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Of(tt.mjd, tt.nanoOfDay, rules())
			if tt.wantErr {
				assert.True(t, timeerr.IsValidation(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mjd, got.ModifiedJulianDay())
			assert.Equal(t, tt.nanoOfDay, got.NanoOfDay())
		})
	}
}

func TestOf_NilRules(t *testing.T) {
	_, err := Of(leapDay, 0, nil)
	assert.True(t, timeerr.IsNullReference(err))

	var table *leapsec.Table
	_, err = Of(leapDay, 0, table)
	assert.True(t, timeerr.IsNullReference(err))

	_, err = Instant{}.Plus(1, 0, nil)
	assert.True(t, timeerr.IsNullReference(err))

	_, err = Parse("1972-12-31T23:59:60Z", nil)
	assert.True(t, timeerr.IsNullReference(err))
}

func TestWithModifiedJulianDay(t *testing.T) {
	leap := mustOf(t, leapDay, nanosPerDay)
	assert.True(t, leap.IsLeapSecond())

	_, err := leap.WithModifiedJulianDay(plainDay, rules())
	assert.True(t, timeerr.IsValidation(err))

	moved, err := leap.WithModifiedJulianDay(41498, rules())
	require.NoError(t, err)
	assert.Equal(t, int64(41498), moved.ModifiedJulianDay())
	assert.Equal(t, leap.NanoOfDay(), moved.NanoOfDay())

	noon := mustOf(t, leapDay, nanosPerDay/2)
	moved, err = noon.WithModifiedJulianDay(-5, rules())
	require.NoError(t, err)
	assert.Equal(t, noon.NanoOfDay(), moved.NanoOfDay())
}

func TestWithNanoOfDay(t *testing.T) {
	plain := mustOf(t, plainDay, 0)
	_, err := plain.WithNanoOfDay(nanosPerDay, rules())
	assert.True(t, timeerr.IsValidation(err))
	_, err = plain.WithNanoOfDay(-1, rules())
	assert.True(t, timeerr.IsValidation(err))

	leap := mustOf(t, leapDay, 0)
	got, err := leap.WithNanoOfDay(nanosPerDay, rules())
	require.NoError(t, err)
	assert.Equal(t, int64(leapDay), got.ModifiedJulianDay())
	assert.True(t, got.IsLeapSecond())
}

func TestPlus_LeapDayCarry(t *testing.T) {
	got, err := mustOf(t, leapDay, nanosPerDay+nanosPerSecond-1).Plus(0, 2, rules())
	require.NoError(t, err)
	assert.Equal(t, mustOf(t, leapDay+1, 1), got)

	// Two nanoseconds into the leap second is still the leap second.
	got, err = mustOf(t, leapDay, nanosPerDay).Plus(0, 2, rules())
	require.NoError(t, err)
	assert.Equal(t, mustOf(t, leapDay, nanosPerDay+2), got)
}

func TestPlusMinus_Table(t *testing.T) {
	tests := []struct {
		name        string
		start       [2]int64
		secs, nanos int64
		want        [2]int64
	}{
		{"within day", [2]int64{plainDay, 0}, 60, 0, [2]int64{plainDay, 60 * nanosPerSecond}},
		{"into leap day", [2]int64{plainDay, 86399 * nanosPerSecond}, 2, 0, [2]int64{leapDay, nanosPerSecond}},
		{"onto leap second", [2]int64{leapDay, 0}, secondsPerDay, 0, [2]int64{leapDay, nanosPerDay}},
		{"over leap second", [2]int64{leapDay, 86399 * nanosPerSecond}, 2, 0, [2]int64{leapDay + 1, 0}},
		{"leap day is 86401 s", [2]int64{leapDay, 0}, secondsPerDay + 1, 0, [2]int64{leapDay + 1, 0}},
		{"ordinary day is 86400 s", [2]int64{plainDay, 0}, secondsPerDay, 0, [2]int64{leapDay, 0}},
		{"nano carry", [2]int64{plainDay, 999_999_999}, 0, 1, [2]int64{plainDay, nanosPerSecond}},
		{"negative nanos", [2]int64{leapDay + 1, 0}, 0, -1, [2]int64{leapDay, nanosPerDay + nanosPerSecond - 1}},
		{"beyond the table", [2]int64{100_000, 0}, 1000 * secondsPerDay, 5, [2]int64{101_000, 5}},
		{"before the table", [2]int64{0, 0}, -secondsPerDay, 0, [2]int64{-1, 0}},
		{
			// 1972-01-01 to 1973-01-01 spans the two leap seconds of 1972.
			"across a year", [2]int64{41317, 0}, 366*secondsPerDay + 2, 0, [2]int64{41683, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := mustOf(t, tt.start[0], tt.start[1])
			want := mustOf(t, tt.want[0], tt.want[1])

			got, err := start.Plus(tt.secs, tt.nanos, rules())
			require.NoError(t, err)
			assert.Equal(t, want, got, "plus: got %s want %s", got, want)

			back, err := want.Minus(tt.secs, tt.nanos, rules())
			require.NoError(t, err)
			assert.Equal(t, start, back, "minus: got %s want %s", back, start)
		})
	}
}

func TestMinus_OntoLeapSecond(t *testing.T) {
	got, err := mustOf(t, leapDay+1, 0).Minus(1, 0, rules())
	require.NoError(t, err)
	assert.Equal(t, mustOf(t, leapDay, nanosPerDay), got)
	assert.Equal(t, "1972-12-31T23:59:60Z", got.String())
}

func TestPlus_ExtremeDurations(t *testing.T) {
	got, err := Instant{}.Plus(math.MinInt64, 0, rules())
	require.NoError(t, err)
	assert.Equal(t, Instant{mjd: -106751991167301, nanoOfDay: 30592 * nanosPerSecond}, got)

	back, err := got.Minus(math.MinInt64, 0, rules())
	require.NoError(t, err)
	assert.Equal(t, Instant{}, back)
}

func TestPlus_Overflow(t *testing.T) {
	_, err := Instant{mjd: math.MaxInt64}.Plus(secondsPerDay, 0, rules())
	assert.True(t, timeerr.IsOverflow(err))

	_, err = Instant{mjd: math.MaxInt64, nanoOfDay: nanosPerDay - 1}.Plus(0, 1, rules())
	assert.True(t, timeerr.IsOverflow(err))

	_, err = Instant{mjd: math.MinInt64}.Minus(0, 1, rules())
	assert.True(t, timeerr.IsOverflow(err))

	_, err = Instant{}.Plus(math.MaxInt64, 1_000_000_000, rules())
	assert.True(t, timeerr.IsOverflow(err))
}

func TestPlus_RejectsInstantInvalidForRules(t *testing.T) {
	leap := mustOf(t, leapDay, nanosPerDay)
	empty, err := leapsec.New(10, nil)
	require.NoError(t, err)

	_, err = leap.Plus(1, 0, empty)
	assert.True(t, timeerr.IsValidation(err))
}

func TestDurationUntil(t *testing.T) {
	d, err := mustOf(t, leapDay, 0).DurationUntil(mustOf(t, leapDay+1, 0), rules())
	require.NoError(t, err)
	assert.Equal(t, int64(86401), d.Seconds())

	d, err = mustOf(t, leapDay+1, 0).DurationUntil(mustOf(t, leapDay, nanosPerDay+500_000_000), rules())
	require.NoError(t, err)
	assert.Equal(t, int64(-1), d.Seconds())
	assert.Equal(t, 500_000_000, d.Nano())

	_, err = Instant{mjd: math.MinInt64}.DurationUntil(Instant{mjd: math.MaxInt64}, rules())
	assert.True(t, timeerr.IsOverflow(err))
}

func TestCompare(t *testing.T) {
	a := mustOf(t, plainDay, nanosPerDay-1)
	b := mustOf(t, leapDay, 0)
	c := mustOf(t, leapDay, nanosPerDay)

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, c.Compare(b))
	assert.True(t, b.IsBefore(c))
	assert.True(t, c.IsAfter(a))
	assert.True(t, b.Equal(mustOf(t, leapDay, 0)))
}

// randomInstant returns a valid instant between 1950 and 2050.
func randomInstant(r *rand.Rand) Instant {
	mjd := 33282 + r.Int63n(36525)
	return Instant{mjd: mjd, nanoOfDay: r.Int63n(rules().DayLength(mjd))}
}

func TestProperties_AdditiveInverse(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for n := 0; n < 3000; n++ {
		x := randomInstant(r)
		secs := r.Int63n(4_000_000_000) - 2_000_000_000
		nanos := r.Int63n(3*nanosPerSecond) - nanosPerSecond
		if n%4 == 0 {
			// land near a day boundary
			secs = r.Int63n(3*secondsPerDay) - secondsPerDay
		}

		y, err := x.Plus(secs, nanos, rules())
		require.NoError(t, err)
		require.NoError(t, validate("test", y.mjd, y.nanoOfDay, rules()), "%s plus %d s %d ns", x, secs, nanos)

		back, err := y.Minus(secs, nanos, rules())
		require.NoError(t, err)
		require.Equal(t, x, back, "%s plus %d s %d ns = %s", x, secs, nanos, y)

		// elapsed time is computed from TAI-UTC offsets, independently of
		// the day walk
		d, err := x.DurationUntil(y, rules())
		require.NoError(t, err)
		want, err := tai.NewDuration(secs, nanos)
		require.NoError(t, err)
		require.Equal(t, want, d, "%s plus %d s %d ns = %s", x, secs, nanos, y)
	}
}

func TestProperties_SyntheticTable(t *testing.T) {
	// dense leap days exercise the stepwise path between bulk jumps
	var entries []leapsec.Entry
	for mjd := int64(1000); mjd < 1100; mjd += 3 {
		entries = append(entries, leapsec.Entry{MJD: mjd, Adjustment: 1})
	}
	table, err := leapsec.New(0, entries)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(8))
	for n := 0; n < 1000; n++ {
		mjd := 950 + r.Int63n(200)
		x, err := Of(mjd, r.Int63n(table.DayLength(mjd)), table)
		require.NoError(t, err)
		secs := r.Int63n(200*secondsPerDay) - 100*secondsPerDay

		y, err := x.Plus(secs, 0, table)
		require.NoError(t, err)
		d, err := x.DurationUntil(y, table)
		require.NoError(t, err)
		require.Equal(t, secs, d.Seconds())
		require.Equal(t, 0, d.Nano())

		back, err := y.Minus(secs, 0, table)
		require.NoError(t, err)
		require.Equal(t, x, back)
	}
}

func TestProperties_FieldIndependence(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	for n := 0; n < 500; n++ {
		x := randomInstant(r)

		got, err := x.WithNanoOfDay(r.Int63n(nanosPerDay), rules())
		require.NoError(t, err)
		require.Equal(t, x.ModifiedJulianDay(), got.ModifiedJulianDay())

		if got, err := x.WithModifiedJulianDay(33282+r.Int63n(36525), rules()); err == nil {
			require.Equal(t, x.NanoOfDay(), got.NanoOfDay())
		} else {
			require.True(t, x.IsLeapSecond())
		}
	}
}

func TestProperties_TotalOrder(t *testing.T) {
	r := rand.New(rand.NewSource(10))
	for n := 0; n < 2000; n++ {
		a, b := randomInstant(r), randomInstant(r)
		if n%3 == 0 {
			b.mjd = a.mjd
		}
		c := a.Compare(b)
		require.Equal(t, -c, b.Compare(a))
		require.Equal(t, c == 0, a.Equal(b))
		require.Equal(t, c < 0, a.IsBefore(b))
		require.Equal(t, c > 0, a.IsAfter(b))
	}
}
