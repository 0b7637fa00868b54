package application

import (
	"testing"
	"time"

	"pickupstand/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProjectOccurrencesWeekly(t *testing.T) {
	anchor := date(2026, time.March, 7) // a Saturday
	freq := domain.Frequency{Unit: domain.IntervalWeek, Count: 1}

	got := ProjectOccurrences(anchor, freq, 4, nil)

	require.Len(t, got, 4)
	assert.Equal(t, date(2026, time.March, 14), got[0])
	assert.Equal(t, date(2026, time.March, 21), got[1])
	assert.Equal(t, date(2026, time.March, 28), got[2])
	assert.Equal(t, date(2026, time.April, 4), got[3])
	for _, d := range got {
		assert.Equal(t, time.Saturday, d.Weekday())
	}
}

func TestProjectOccurrencesMonthly(t *testing.T) {
	anchor := date(2026, time.January, 15)
	freq := domain.Frequency{Unit: domain.IntervalMonth, Count: 1}

	got := ProjectOccurrences(anchor, freq, 3, nil)

	require.Len(t, got, 3)
	assert.Equal(t, date(2026, time.February, 15), got[0])
	assert.Equal(t, date(2026, time.March, 15), got[1])
	assert.Equal(t, date(2026, time.April, 15), got[2])
}

func TestProjectOccurrencesBlackoutSlidesOneWeek(t *testing.T) {
	anchor := date(2026, time.March, 7)
	freq := domain.Frequency{Unit: domain.IntervalWeek, Count: 2}
	holiday := date(2026, time.April, 4)
	blocked := func(d time.Time) bool { return d.Equal(holiday) }

	got := ProjectOccurrences(anchor, freq, 3, blocked)

	require.Len(t, got, 3)
	assert.Equal(t, date(2026, time.March, 21), got[0])
	// Second occurrence slides past the blackout, keeping the weekday.
	assert.Equal(t, date(2026, time.April, 11), got[1])
	assert.Equal(t, time.Saturday, got[1].Weekday())
	// The slide does not shift the cadence of later occurrences.
	assert.Equal(t, date(2026, time.April, 18), got[2])
}

func TestProjectOccurrencesZeroHorizon(t *testing.T) {
	got := ProjectOccurrences(date(2026, time.March, 7), domain.Frequency{Unit: domain.IntervalWeek, Count: 1}, 0, nil)
	assert.Empty(t, got)
}
