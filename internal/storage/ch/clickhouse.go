package ch

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"readtrack/internal/common"
	"readtrack/internal/models"
)

// ClickHouseStore is the account-backed record store.
//
// books is a ReplacingMergeTree versioned by updated_at: updates insert a
// new row version and reads collapse with FINAL. reading_history is a
// SummingMergeTree keyed by (user_id, book_id, date), so a ledger increment
// is a plain insert and per-day totals are sum() group-bys.
type ClickHouseStore struct {
	conn clickhouse.Conn
}

// NewClickHouseStore opens and pings a ClickHouse connection.
func NewClickHouseStore(host string, port int, database, user, password string, useTLS bool) (*ClickHouseStore, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}
	if useTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseStore{conn: conn}, nil
}

// Initialize is a no-op - tables are managed via migrations (see the
// migrations/ directory and cmd/migrate).
func (s *ClickHouseStore) Initialize(ctx context.Context) error {
	return nil
}

// CreateBook inserts a new book record.
func (s *ClickHouseStore) CreateBook(ctx context.Context, book models.Book) error {
	err := s.conn.Exec(ctx, `
		INSERT INTO books (id, user_id, title, total_pages, pages_read, category, cover_image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID, book.UserID, book.Title, int32(book.TotalPages), int32(book.PagesRead),
		book.Category, book.CoverImage, book.CreatedAt, book.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// GetBook returns a single book record or common.ErrNotFound.
func (s *ClickHouseStore) GetBook(ctx context.Context, userID, bookID string) (models.Book, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, user_id, title, total_pages, pages_read, category, cover_image, created_at
		FROM books FINAL
		WHERE user_id = ? AND id = ?`, userID, bookID)
	if err != nil {
		return models.Book{}, fmt.Errorf("failed to get book: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return models.Book{}, common.ErrNotFound
	}
	book, err := scanBook(rows)
	if err != nil {
		return models.Book{}, err
	}
	return book, nil
}

// ListBooks returns all books for the user, newest first.
func (s *ClickHouseStore) ListBooks(ctx context.Context, userID string) ([]models.Book, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, user_id, title, total_pages, pages_read, category, cover_image, created_at
		FROM books FINAL
		WHERE user_id = ?
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}

// UpdatePagesRead writes a new row version with the given cumulative
// pages-read count.
func (s *ClickHouseStore) UpdatePagesRead(ctx context.Context, userID, bookID string, pagesRead int) error {
	book, err := s.GetBook(ctx, userID, bookID)
	if err != nil {
		return err
	}

	err = s.conn.Exec(ctx, `
		INSERT INTO books (id, user_id, title, total_pages, pages_read, category, cover_image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, now())`,
		book.ID, book.UserID, book.Title, int32(book.TotalPages), int32(pagesRead),
		book.Category, book.CoverImage, book.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to update pages read: %w", err)
	}
	return nil
}

// DeleteBook removes the book record. History entries must already be gone;
// the catalog enforces that ordering.
func (s *ClickHouseStore) DeleteBook(ctx context.Context, userID, bookID string) error {
	err := s.conn.Exec(ctx, `DELETE FROM books WHERE user_id = ? AND id = ?`, userID, bookID)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}

// AddHistory appends pages to the (user, book, day) ledger bucket. With the
// summing table an increment is just an insert; rows for the same key merge
// into one accumulated bucket.
func (s *ClickHouseStore) AddHistory(ctx context.Context, userID, bookID string, day time.Time, pages int) error {
	err := s.conn.Exec(ctx, `
		INSERT INTO reading_history (user_id, book_id, date, pages_read, created_at)
		VALUES (?, ?, ?, ?, now())`,
		userID, bookID, common.DayStart(day), int32(pages))
	if err != nil {
		return fmt.Errorf("failed to add history entry: %w", err)
	}
	return nil
}

// HistoryTotals returns per-day page totals across all books since the
// given day (inclusive).
func (s *ClickHouseStore) HistoryTotals(ctx context.Context, userID string, since time.Time) (map[string]int, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT date, sum(pages_read)
		FROM reading_history
		WHERE user_id = ? AND date >= ?
		GROUP BY date
		ORDER BY date`, userID, common.DayStart(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query history totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var date time.Time
		var pages int64
		if err := rows.Scan(&date, &pages); err != nil {
			return nil, fmt.Errorf("failed to scan history total: %w", err)
		}
		totals[common.DateKey(date)] = int(pages)
	}
	return totals, nil
}

// DeleteBookHistory removes all ledger entries for a book.
func (s *ClickHouseStore) DeleteBookHistory(ctx context.Context, userID, bookID string) error {
	err := s.conn.Exec(ctx, `DELETE FROM reading_history WHERE user_id = ? AND book_id = ?`, userID, bookID)
	if err != nil {
		return fmt.Errorf("failed to delete book history: %w", err)
	}
	return nil
}

// Close closes the connection.
func (s *ClickHouseStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(rows rowScanner) (models.Book, error) {
	var book models.Book
	var totalPages, pagesRead int32
	if err := rows.Scan(&book.ID, &book.UserID, &book.Title, &totalPages, &pagesRead,
		&book.Category, &book.CoverImage, &book.CreatedAt); err != nil {
		return models.Book{}, fmt.Errorf("failed to scan book: %w", err)
	}
	book.TotalPages = int(totalPages)
	book.PagesRead = int(pagesRead)
	return book, nil
}
