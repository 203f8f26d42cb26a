package logic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEaster(t *testing.T) {
	tests := map[int]string{
		2024: "2024-03-31",
		2025: "2025-04-20",
		2026: "2026-04-05",
	}
	for year, want := range tests {
		assert.Equal(t, want, easter(year).Format("2006-01-02"), "year %d", year)
	}
}

func TestHolidaysOf(t *testing.T) {
	days := HolidaysOf("RW", 2025)
	require.Len(t, days, 13)
	byName := make(map[string]string)
	for i, h := range days {
		byName[h.Name] = h.Date
		if i > 0 {
			assert.LessOrEqual(t, days[i-1].Date, h.Date)
		}
	}
	assert.Equal(t, "2025-04-18", byName["Good Friday"])
	assert.Equal(t, "2025-04-21", byName["Easter Monday"])
	assert.Equal(t, "2025-08-01", byName["Umuganura Day"])
	assert.Nil(t, HolidaysOf("KE", 2025))
}

func TestUpcomingHolidays(t *testing.T) {
	now := time.Date(2025, time.December, 25, 15, 0, 0, 0, time.UTC)
	got := UpcomingHolidays("RW", now, 3)
	// 当天不算，不跨年
	require.Len(t, got, 1)
	assert.Equal(t, "Boxing Day", got[0].Name)
}

func TestHolidayCalendar_RefreshesOnNewDay(t *testing.T) {
	h := NewHolidayCalendar("RW")
	day1 := time.Date(2025, time.June, 30, 8, 0, 0, 0, time.UTC)
	first := h.Upcoming(day1)
	require.NotEmpty(t, first)
	assert.Equal(t, "2025-07-01", first[0].Date)

	first[0].Name = "changed"
	assert.Equal(t, "Independence Day", h.Upcoming(day1)[0].Name)

	day2 := time.Date(2025, time.July, 2, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-07-04", h.Upcoming(day2)[0].Date)
}
