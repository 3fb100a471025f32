package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"readtrack/internal/common"
)

func day(t time.Time, offset int) string {
	return common.DateKey(t.AddDate(0, 0, offset))
}

func TestClampPages(t *testing.T) {
	testCases := []struct {
		name       string
		current    int
		increment  int
		totalPages int
		expected   int
	}{
		{
			name:       "within total",
			current:    10,
			increment:  20,
			totalPages: 100,
			expected:   30,
		},
		{
			name:       "exactly at total",
			current:    90,
			increment:  10,
			totalPages: 100,
			expected:   100,
		},
		{
			name:       "clamped at total",
			current:    95,
			increment:  20,
			totalPages: 100,
			expected:   100,
		},
		{
			name:       "already finished",
			current:    100,
			increment:  5,
			totalPages: 100,
			expected:   100,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := ClampPages(tc.current, tc.increment, tc.totalPages)
			assert.Equal(t, tc.expected, result)
			assert.LessOrEqual(t, result, tc.totalPages, "pages read must never exceed total pages")
		})
	}
}

func TestBuildDailyStats(t *testing.T) {
	today := time.Date(2025, 8, 20, 15, 30, 0, 0, time.UTC) // a Wednesday

	totals := map[string]int{
		day(today, 0):  20,
		day(today, -1): 10,
	}

	stats := BuildDailyStats(totals, today, 7)

	assert.Len(t, stats, 7)
	assert.Equal(t, "2025-08-14", stats[0].Date, "window starts 6 days back")
	assert.Equal(t, "2025-08-20", stats[6].Date, "window ends today")
	assert.Equal(t, 20, stats[6].PagesRead)
	assert.Equal(t, 10, stats[5].PagesRead)
	for i := 0; i < 5; i++ {
		assert.Equal(t, 0, stats[i].PagesRead, "days without entries get zero buckets")
	}
	assert.Equal(t, "Wed", stats[6].DayName)
	assert.Equal(t, "Thu", stats[0].DayName)
}

func TestBuildDailyStats_EmptyLedger(t *testing.T) {
	today := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)

	stats := BuildDailyStats(map[string]int{}, today, 7)

	assert.Len(t, stats, 7)
	for _, s := range stats {
		assert.Equal(t, 0, s.PagesRead)
	}
}

func TestDailyAverage(t *testing.T) {
	testCases := []struct {
		name     string
		total    int
		days     int
		expected float64
	}{
		{name: "30 pages over 7 days", total: 30, days: 7, expected: 4.3},
		{name: "zero pages", total: 0, days: 7, expected: 0},
		{name: "exact division", total: 70, days: 7, expected: 10},
		{name: "rounds to one decimal", total: 10, days: 3, expected: 3.3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DailyAverage(tc.total, tc.days))
		})
	}
}

func TestComputeStreak(t *testing.T) {
	today := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name            string
		totals          map[string]int
		expectedCurrent int
		expectedLongest int
	}{
		{
			name:            "empty ledger",
			totals:          map[string]int{},
			expectedCurrent: 0,
			expectedLongest: 0,
		},
		{
			name: "three consecutive days ending today",
			totals: map[string]int{
				day(today, 0):  5,
				day(today, -1): 8,
				day(today, -2): 3,
			},
			expectedCurrent: 3,
			expectedLongest: 3,
		},
		{
			name: "gap breaks current streak",
			totals: map[string]int{
				day(today, 0):  5,
				day(today, -2): 3,
				day(today, -3): 4,
			},
			expectedCurrent: 1,
			expectedLongest: 2,
		},
		{
			name: "no reading today",
			totals: map[string]int{
				day(today, -1): 5,
				day(today, -2): 3,
			},
			expectedCurrent: 0,
			expectedLongest: 2,
		},
		{
			name: "longer run in the past than the current one",
			totals: func() map[string]int {
				totals := map[string]int{}
				// 10-day run three weeks back
				for i := 30; i < 40; i++ {
					totals[day(today, -i)] = 12
				}
				// 3-day run ending today
				for i := 0; i < 3; i++ {
					totals[day(today, -i)] = 6
				}
				return totals
			}(),
			expectedCurrent: 3,
			expectedLongest: 10,
		},
		{
			name: "zero-valued bucket does not extend a streak",
			totals: map[string]int{
				day(today, 0):  5,
				day(today, -1): 0,
				day(today, -2): 7,
			},
			expectedCurrent: 1,
			expectedLongest: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			streak := ComputeStreak(tc.totals, today, StreakLookbackDays)
			assert.Equal(t, tc.expectedCurrent, streak.CurrentStreak, "current streak")
			assert.Equal(t, tc.expectedLongest, streak.LongestStreak, "longest streak")
		})
	}
}

func TestComputeStreak_RunOutsideLookbackIgnored(t *testing.T) {
	today := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)

	totals := map[string]int{
		day(today, -StreakLookbackDays):       10,
		day(today, -StreakLookbackDays-1):     10,
		day(today, -(StreakLookbackDays - 1)): 10,
	}

	streak := ComputeStreak(totals, today, StreakLookbackDays)
	assert.Equal(t, 1, streak.LongestStreak, "only days inside the window count")
}
