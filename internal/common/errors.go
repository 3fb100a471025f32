// Package common defines shared sentinel errors and calendar-day helpers
// used across the storage, engine and API layers. Callers should match the
// sentinel values with errors.Is.
package common

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned for operations against a missing record.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails. It is always
	// raised before any mutation takes place.
	ErrInvalidInput = errors.New("invalid input")
)

// DateLayout is the calendar-day key format used by the history ledger.
const DateLayout = "2006-01-02"

// DateKey returns the ledger bucket key for the calendar day of t.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// DayStart truncates t to midnight in its own location.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
