package civil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateString(t *testing.T) {
	tests := []struct {
		date Date
		want string
	}{
		{Date{1972, 12, 31}, "1972-12-31"},
		{Date{5, 1, 2}, "0005-01-02"},
		{Date{0, 1, 1}, "0000-01-01"},
		{Date{-1, 12, 31}, "-0001-12-31"},
		{Date{-12345, 3, 4}, "-12345-03-04"},
		{Date{10000, 1, 1}, "+10000-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.date.String())
			back, err := ParseDate(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.date, back)
		})
	}
}

func TestParseDate_Rejects(t *testing.T) {
	inputs := []string{
		"",
		"1972",
		"1972-13-01",
		"1972-00-10",
		"1972-02-30",
		"1900-02-29",
		"72-01-01",
		"01972-01-01",
		"+1972-01-01",
		"+09999-01-01",
		"-0000-01-01",
		"-00001-01-01",
		"1972-1-01",
		"1972-01-1",
		"1972-01-01x",
		"1972/01/01",
		"19a2-01-01",
		"1972-0a-01",
		"12345-01-01",
		"+1234567890123456789-01-01",
	}
	for _, in := range inputs {
		_, err := ParseDate(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseDate_ExtremeRoundTrip(t *testing.T) {
	for _, mjd := range []int64{math.MaxInt64, math.MinInt64} {
		d := FromMJD(mjd)
		back, err := ParseDate(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, back)
	}
}
