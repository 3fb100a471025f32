package storage

import (
	"context"
	"time"

	"readtrack/internal/models"
)

// RecordStore is the record store holding book records and the reading
// history ledger, scoped per user. The ClickHouse implementation is the
// account-backed deployment; the local implementation is the offline/guest
// mode on device storage.
type RecordStore interface {
	// Book operations
	CreateBook(ctx context.Context, book models.Book) error
	GetBook(ctx context.Context, userID, bookID string) (models.Book, error)
	// ListBooks returns the user's books ordered by creation time
	// descending, insertion order as the tie-break.
	ListBooks(ctx context.Context, userID string) ([]models.Book, error)
	UpdatePagesRead(ctx context.Context, userID, bookID string, pagesRead int) error
	DeleteBook(ctx context.Context, userID, bookID string) error

	// History ledger operations

	// AddHistory increments the (user, book, day) ledger bucket by pages,
	// creating the bucket when absent.
	AddHistory(ctx context.Context, userID, bookID string, day time.Time, pages int) error
	// HistoryTotals returns pages read per calendar day, summed across all
	// books, for days on or after since. Keys are YYYY-MM-DD.
	HistoryTotals(ctx context.Context, userID string, since time.Time) (map[string]int, error)
	// DeleteBookHistory removes every ledger entry scoped to a book.
	DeleteBookHistory(ctx context.Context, userID, bookID string) error

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
