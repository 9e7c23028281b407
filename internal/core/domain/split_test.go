package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSplit(t *testing.T) {
	for _, s := range Splits() {
		got, err := ParseSplit(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseSplit("weeks")
	assert.ErrorIs(t, err, ErrInvalidSplit)
	_, err = ParseSplit("")
	assert.ErrorIs(t, err, ErrInvalidSplit)
}

func TestSplit_Suffix(t *testing.T) {
	ts := time.Date(2023, 7, 4, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "", SplitNone.Suffix(ts))
	assert.Equal(t, "-2023", SplitYears.Suffix(ts))
	assert.Equal(t, "-2023-07", SplitMonths.Suffix(ts))
	assert.Equal(t, "-2023-07-04", SplitDays.Suffix(ts))
}

func TestSplit_SuffixUsesUTC(t *testing.T) {
	zone := time.FixedZone("NZST", 12*60*60)
	ts := time.Date(2024, 1, 1, 6, 0, 0, 0, zone)

	assert.Equal(t, "-2023-12-31", SplitDays.Suffix(ts))
}

func TestDefaultSplit(t *testing.T) {
	assert.Equal(t, SplitMonths, DefaultSplit)
}
