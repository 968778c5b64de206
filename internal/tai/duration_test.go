package tai

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tscale/internal/timeerr"
)

func TestNewDuration(t *testing.T) {
	d, err := NewDuration(1, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), d.Seconds())
	assert.Equal(t, 999_999_999, d.Nano())
	assert.False(t, d.IsNegative())

	d, err = NewDuration(0, -500_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), d.Seconds())
	assert.Equal(t, 500_000_000, d.Nano())
	assert.True(t, d.IsNegative())

	_, err = NewDuration(math.MaxInt64, 1_000_000_000)
	assert.True(t, timeerr.IsOverflow(err))
}

func TestDurationOf(t *testing.T) {
	d := DurationOf(-1500 * time.Millisecond)
	assert.Equal(t, int64(-2), d.Seconds())
	assert.Equal(t, 500_000_000, d.Nano())

	std, err := d.Std()
	require.NoError(t, err)
	assert.Equal(t, -1500*time.Millisecond, std)

	d = DurationOf(time.Duration(math.MinInt64))
	std, err = d.Std()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(math.MinInt64), std)
}

func TestDuration_StdOverflow(t *testing.T) {
	d, err := NewDuration(math.MaxInt64/NanosPerSecond+1, 0)
	require.NoError(t, err)
	_, err = d.Std()
	assert.True(t, timeerr.IsOverflow(err))
}

func TestDuration_Negate(t *testing.T) {
	d, err := NewDuration(0, -500_000_000)
	require.NoError(t, err)

	neg, err := d.Negate()
	require.NoError(t, err)
	assert.Equal(t, int64(0), neg.Seconds())
	assert.Equal(t, 500_000_000, neg.Nano())

	d, err = NewDuration(math.MinInt64, 1)
	require.NoError(t, err)
	neg, err = d.Negate()
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), neg.Seconds())
	assert.Equal(t, 999_999_999, neg.Nano())

	d, err = NewDuration(math.MinInt64, 0)
	require.NoError(t, err)
	_, err = d.Negate()
	assert.True(t, timeerr.IsOverflow(err))
}

func TestDuration_String(t *testing.T) {
	tests := []struct {
		secs, nanos int64
		want        string
	}{
		{0, 0, "0.000000000s"},
		{1, 500_000_000, "1.500000000s"},
		{0, -500_000_000, "-0.500000000s"},
		{-2, 0, "-2.000000000s"},
		{-2, 1, "-1.999999999s"},
		{math.MinInt64, 0, "-9223372036854775808.000000000s"},
		{math.MinInt64, 1, "-9223372036854775807.999999999s"},
	}
	for _, tt := range tests {
		d, err := NewDuration(tt.secs, tt.nanos)
		require.NoError(t, err)
		assert.Equal(t, tt.want, d.String())
	}
}
