package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodDates(t *testing.T) {
	// 2021-06-16 is a Wednesday.
	today := day(2021, time.June, 16)

	cases := []struct {
		option string
		start  time.Time
		end    time.Time
	}{
		{"current-week", day(2021, time.June, 14), day(2021, time.June, 20)},
		{"previous-week", day(2021, time.June, 7), day(2021, time.June, 13)},
		{"current-month", day(2021, time.June, 1), day(2021, time.June, 30)},
		{"previous-month", day(2021, time.May, 1), day(2021, time.May, 31)},
		{"ytd", day(2021, time.January, 1), day(2021, time.December, 31)},
		{"last-6-months", day(2021, time.January, 1), day(2021, time.June, 30)},
		{"previous-year", day(2020, time.January, 1), day(2020, time.December, 31)},
	}

	for _, c := range cases {
		t.Run(c.option, func(t *testing.T) {
			start, end, ok := PeriodDates(c.option, today)
			require.True(t, ok)
			assert.Equal(t, c.start, start)
			assert.Equal(t, c.end, end)
		})
	}
}

func TestPeriodDatesMondayStart(t *testing.T) {
	// A Monday is the first day of its own week.
	monday := day(2021, time.June, 14)
	start, end, ok := PeriodDates("current-week", monday)
	require.True(t, ok)
	assert.Equal(t, monday, start)
	assert.Equal(t, day(2021, time.June, 20), end)

	// A Sunday still belongs to the week that started the previous Monday.
	sunday := day(2021, time.June, 20)
	start, end, ok = PeriodDates("current-week", sunday)
	require.True(t, ok)
	assert.Equal(t, monday, start)
	assert.Equal(t, sunday, end)
}

func TestPeriodDatesRunToCalendarEnds(t *testing.T) {
	// Year-to-date and last-6-months extend to the end of the year and
	// the end of the current month, not to today.
	today := day(2024, time.May, 15)

	start, end, ok := PeriodDates("ytd", today)
	require.True(t, ok)
	assert.Equal(t, day(2024, time.January, 1), start)
	assert.Equal(t, day(2024, time.December, 31), end)

	start, end, ok = PeriodDates("last-6-months", today)
	require.True(t, ok)
	assert.Equal(t, day(2023, time.December, 1), start)
	assert.Equal(t, day(2024, time.May, 31), end)
}

func TestPeriodDatesUnknown(t *testing.T) {
	_, _, ok := PeriodDates("fortnight", day(2021, time.June, 16))
	assert.False(t, ok)
}
