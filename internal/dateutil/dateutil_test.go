package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestParseFormatRoundTrip(t *testing.T) {
	d, err := ParseDate("2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", FormatDate(d))
	assert.Equal(t, time.UTC, d.Location())
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "2024-1-1", "not-a-date", "2024/01/01"} {
		_, err := ParseDate(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestAddDays(t *testing.T) {
	assert.Equal(t, "2024-02-01", FormatDate(AddDays(date(t, "2024-01-31"), 1)))
	assert.Equal(t, "2023-12-31", FormatDate(AddDays(date(t, "2024-01-01"), -1)))
}

func TestWeekStart(t *testing.T) {
	// 2024-01-03 is a Wednesday; its week begins Sunday 2023-12-31.
	assert.Equal(t, "2023-12-31", FormatDate(WeekStart(date(t, "2024-01-03"))))
	// A Sunday is its own week start.
	assert.Equal(t, "2024-01-07", FormatDate(WeekStart(date(t, "2024-01-07"))))
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 28, DaysInMonth(2023, time.February))
	assert.Equal(t, 30, DaysInMonth(2024, time.April))
	assert.Equal(t, 31, DaysInMonth(2024, time.December))
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		start  string
		months int
		want   string
	}{
		{"2024-01-31", 1, "2024-02-29"},
		{"2023-01-31", 1, "2023-02-28"},
		{"2024-03-31", 1, "2024-04-30"},
		{"2024-01-15", 2, "2024-03-15"},
		{"2024-11-30", 3, "2025-02-28"},
		{"2024-03-31", -1, "2024-02-29"},
	}
	for _, tc := range tests {
		got := AddMonthsClamped(date(t, tc.start), tc.months)
		assert.Equal(t, tc.want, FormatDate(got), "%s +%d months", tc.start, tc.months)
	}
}

func TestAddYearsClamped(t *testing.T) {
	assert.Equal(t, "2025-02-28", FormatDate(AddYearsClamped(date(t, "2024-02-29"), 1)))
	assert.Equal(t, "2028-02-29", FormatDate(AddYearsClamped(date(t, "2024-02-29"), 4)))
	assert.Equal(t, "2026-07-04", FormatDate(AddYearsClamped(date(t, "2024-07-04"), 2)))
}
