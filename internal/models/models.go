package models

import (
	"math"
	"time"
)

// DefaultTotalPages is used when neither the remote record nor the local
// metadata cache knows the real page count.
const DefaultTotalPages = 300

// UnknownAuthor is the fallback shown when no author is cached for a book.
const UnknownAuthor = "Unknown Author"

// Categories lists the supported book category tags. "Other" is the default.
var Categories = []string{
	"Fiction",
	"Non-Fiction",
	"Self-Help",
	"Biography",
	"Science Fiction",
	"Mystery",
	"Romance",
	"Thriller",
	"Fantasy",
	"History",
	"Philosophy",
	"Business",
	"Technology",
	"Health",
	"Travel",
	"Other",
}

// Book is the canonical remote record for a book, scoped per user.
type Book struct {
	ID         string
	UserID     string
	Title      string
	TotalPages int
	PagesRead  int
	Category   string
	CoverImage string
	CreatedAt  time.Time
}

// BookMetadata holds the supplementary per-book fields kept in the local
// cache. All fields are optional; present values override or fill gaps in
// the remote record.
type BookMetadata struct {
	Author      string `json:"author,omitempty"`
	CoverImage  string `json:"cover_image,omitempty"`
	GutenbergID int    `json:"gutenberg_id,omitempty"`
	ReadURL     string `json:"read_url,omitempty"`
	TotalPages  int    `json:"total_pages,omitempty"`
}

// BookView is the composed book presented to callers: remote canonical
// fields merged with cached metadata and the local progress of record.
type BookView struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Category        string    `json:"category"`
	TotalPages      int       `json:"total_pages"`
	PagesRead       int       `json:"pages_read"`
	ProgressPercent int       `json:"progress_percent"`
	CoverImage      string    `json:"cover_image,omitempty"`
	GutenbergID     int       `json:"gutenberg_id,omitempty"`
	ReadURL         string    `json:"read_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ProgressPercent is the rounded completion percentage, defined as 0 when
// the total page count is 0 or unknown.
func ProgressPercent(pagesRead, totalPages int) int {
	if totalPages <= 0 {
		return 0
	}
	return int(math.Round(float64(pagesRead) / float64(totalPages) * 100))
}

// DailyStat is one calendar-day bucket of the reading history series.
type DailyStat struct {
	Date      string `json:"date"` // YYYY-MM-DD
	DayName   string `json:"day_name"`
	PagesRead int    `json:"pages_read"`
}

// ReadingStats bundles the day-bucketed series with its aggregates, in the
// shape chart rendering needs.
type ReadingStats struct {
	Days         []DailyStat `json:"days"`
	WeeklyPages  int         `json:"weekly_pages"`
	DailyAverage float64     `json:"daily_average"`
}

// Streak reports consecutive-day reading activity derived from the ledger.
type Streak struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}
