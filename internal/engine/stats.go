package engine

import (
	"math"
	"time"

	"readtrack/internal/common"
	"readtrack/internal/models"
)

// StreakLookbackDays is the trailing window scanned when deriving streaks
// from the history ledger.
const StreakLookbackDays = 60

// ClampPages returns the new cumulative pages-read after applying an
// increment, capped at totalPages.
func ClampPages(current, increment, totalPages int) int {
	next := current + increment
	if next > totalPages {
		return totalPages
	}
	return next
}

// BuildDailyStats expands per-date ledger totals into one bucket per
// calendar day for the trailing window ending on today (inclusive). Days
// with no ledger entry get a zero bucket.
func BuildDailyStats(totals map[string]int, today time.Time, windowDays int) []models.DailyStat {
	stats := make([]models.DailyStat, 0, windowDays)
	for i := windowDays - 1; i >= 0; i-- {
		day := common.DayStart(today).AddDate(0, 0, -i)
		key := common.DateKey(day)
		stats = append(stats, models.DailyStat{
			Date:      key,
			DayName:   day.Format("Mon"),
			PagesRead: totals[key],
		})
	}
	return stats
}

// DailyAverage returns total/windowDays rounded to one decimal place.
func DailyAverage(total, windowDays int) float64 {
	return math.Round(float64(total)/float64(windowDays)*10) / 10
}

// ComputeStreak derives current and longest streaks from per-date ledger
// totals over a trailing lookback window ending on today.
//
// The two values are computed in two independent passes on purpose: the
// current streak scans backward from today until the first zero-pages day,
// while the longest streak is a forward rolling scan over the whole window.
func ComputeStreak(totals map[string]int, today time.Time, lookbackDays int) models.Streak {
	var streak models.Streak
	day := common.DayStart(today)

	// Backward pass: consecutive non-zero days ending today.
	for cursor := day; totals[common.DateKey(cursor)] > 0; cursor = cursor.AddDate(0, 0, -1) {
		streak.CurrentStreak++
	}

	// Forward pass: longest run anywhere in the window.
	rolling := 0
	start := day.AddDate(0, 0, -(lookbackDays - 1))
	for i := 0; i < lookbackDays; i++ {
		cursor := start.AddDate(0, 0, i)
		if totals[common.DateKey(cursor)] > 0 {
			rolling++
			if rolling > streak.LongestStreak {
				streak.LongestStreak = rolling
			}
		} else {
			rolling = 0
		}
	}

	return streak
}
