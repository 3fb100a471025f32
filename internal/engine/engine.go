// Package engine implements the progress and history core: clamped progress
// updates, the date-bucketed history ledger, and the statistics and streaks
// derived from it.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"readtrack/internal/cache"
	"readtrack/internal/common"
	"readtrack/internal/models"
	"readtrack/internal/storage"
)

// BookViewer resolves a composed book view. Satisfied by catalog.Service.
type BookViewer interface {
	Get(ctx context.Context, userID, bookID string) (models.BookView, error)
}

// Engine records reading progress and computes derived statistics.
type Engine struct {
	store  storage.RecordStore
	cache  *cache.MetadataCache
	books  BookViewer
	logger *zap.Logger

	// now is injectable so tests can pin the calendar day.
	now func() time.Time
}

// New creates an engine over the given stores.
func New(store storage.RecordStore, metaCache *cache.MetadataCache, books BookViewer, logger *zap.Logger) *Engine {
	return &Engine{
		store:  store,
		cache:  metaCache,
		books:  books,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the engine's clock. Intended for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// ExceedsTotal reports whether applying the increment would run past the
// book's effective total pages. The presentation layer uses this to ask for
// confirmation before committing a capped update; RecordProgress clamps
// regardless.
func ExceedsTotal(view models.BookView, pages int) bool {
	return view.PagesRead+pages > view.TotalPages
}

// RecordProgress applies a positive page increment to a book: clamps the
// cumulative pages-read at the effective total, persists the progress of
// record to the local cache, mirrors it to the remote record, and appends
// the clamped delta to today's history ledger bucket.
//
// The ledger deliberately records the clamped delta rather than the raw
// increment, so statistics never count pages that were not credited to the
// book. Validation failures reject before any mutation. The two persisted
// writes are not atomic; a ledger failure after a progress write is
// propagated and left unreconciled.
func (e *Engine) RecordProgress(ctx context.Context, userID, bookID string, pages int) (models.BookView, error) {
	if pages <= 0 {
		return models.BookView{}, fmt.Errorf("%w: pages increment must be a positive integer", common.ErrInvalidInput)
	}

	view, err := e.books.Get(ctx, userID, bookID)
	if err != nil {
		return models.BookView{}, err
	}

	newPagesRead := ClampPages(view.PagesRead, pages, view.TotalPages)
	delta := newPagesRead - view.PagesRead

	if err := e.cache.SetProgress(ctx, userID, bookID, newPagesRead); err != nil {
		return models.BookView{}, fmt.Errorf("failed to persist progress: %w", err)
	}

	// The local cache is the progress of record; the remote column is a
	// mirror, so a failure here is logged rather than surfaced.
	if err := e.store.UpdatePagesRead(ctx, userID, bookID, newPagesRead); err != nil {
		e.logger.Warn("failed to mirror progress to record store",
			zap.String("book_id", bookID), zap.Error(err))
	}

	if delta > 0 {
		if err := e.store.AddHistory(ctx, userID, bookID, e.now(), delta); err != nil {
			return models.BookView{}, fmt.Errorf("failed to append history: %w", err)
		}
	}

	view.PagesRead = newPagesRead
	view.ProgressPercent = models.ProgressPercent(newPagesRead, view.TotalPages)

	e.logger.Info("progress recorded",
		zap.String("book_id", bookID),
		zap.Int("increment", pages),
		zap.Int("credited", delta),
		zap.Int("pages_read", newPagesRead))

	return view, nil
}

// ReadingStats builds the day-bucketed reading series for the trailing
// windowDays-day window ending today, along with its total and one-decimal
// daily average.
func (e *Engine) ReadingStats(ctx context.Context, userID string, windowDays int) (models.ReadingStats, error) {
	if windowDays <= 0 {
		return models.ReadingStats{}, fmt.Errorf("%w: window must be a positive number of days", common.ErrInvalidInput)
	}

	today := e.now()
	since := common.DayStart(today).AddDate(0, 0, -(windowDays - 1))
	totals, err := e.store.HistoryTotals(ctx, userID, since)
	if err != nil {
		return models.ReadingStats{}, fmt.Errorf("failed to load history: %w", err)
	}

	days := BuildDailyStats(totals, today, windowDays)
	total := 0
	for _, d := range days {
		total += d.PagesRead
	}

	return models.ReadingStats{
		Days:         days,
		WeeklyPages:  total,
		DailyAverage: DailyAverage(total, windowDays),
	}, nil
}

// Streak recomputes current and longest streaks from the ledger over the
// standard lookback window. The ledger is the single source of truth; no
// last-read cursor is kept.
func (e *Engine) Streak(ctx context.Context, userID string) (models.Streak, error) {
	today := e.now()
	since := common.DayStart(today).AddDate(0, 0, -(StreakLookbackDays - 1))
	totals, err := e.store.HistoryTotals(ctx, userID, since)
	if err != nil {
		return models.Streak{}, fmt.Errorf("failed to load history: %w", err)
	}
	return ComputeStreak(totals, today, StreakLookbackDays), nil
}

// CurrentStreak is a convenience wrapper returning only the current run.
func (e *Engine) CurrentStreak(ctx context.Context, userID string) (int, error) {
	streak, err := e.Streak(ctx, userID)
	if err != nil {
		return 0, err
	}
	return streak.CurrentStreak, nil
}
