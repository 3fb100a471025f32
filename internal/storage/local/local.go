// Package local implements the record store on device storage. It is the
// offline/guest deployment mode: books live as a JSON list and the history
// ledger as a JSON map in the key-value store, so it works with no account
// and no network.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"readtrack/internal/common"
	"readtrack/internal/kvstore"
	"readtrack/internal/models"
)

const (
	booksPrefix   = "books:"
	historyPrefix = "history:"
)

// Store is a kvstore-backed RecordStore.
type Store struct {
	kv kvstore.Store
}

// New creates a local record store on top of kv.
func New(kv kvstore.Store) *Store {
	return &Store{kv: kv}
}

// Initialize is a no-op; keys are created lazily on first write.
func (s *Store) Initialize(ctx context.Context) error {
	return nil
}

func (s *Store) booksKey(userID string) string {
	return booksPrefix + userID
}

func (s *Store) historyKey(userID string) string {
	return historyPrefix + userID
}

func (s *Store) loadBooks(ctx context.Context, userID string) ([]models.Book, error) {
	data, err := s.kv.Get(ctx, s.booksKey(userID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read book list: %w", err)
	}

	var books []models.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("failed to unmarshal book list: %w", err)
	}
	return books, nil
}

func (s *Store) saveBooks(ctx context.Context, userID string, books []models.Book) error {
	data, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("failed to marshal book list: %w", err)
	}
	if err := s.kv.Set(ctx, s.booksKey(userID), data); err != nil {
		return fmt.Errorf("failed to store book list: %w", err)
	}
	return nil
}

// ledger maps bookID -> date key (YYYY-MM-DD) -> pages read.
type ledger map[string]map[string]int

func (s *Store) loadLedger(ctx context.Context, userID string) (ledger, error) {
	data, err := s.kv.Get(ctx, s.historyKey(userID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return ledger{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var l ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return l, nil
}

func (s *Store) saveLedger(ctx context.Context, userID string, l ledger) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := s.kv.Set(ctx, s.historyKey(userID), data); err != nil {
		return fmt.Errorf("failed to store history: %w", err)
	}
	return nil
}

// CreateBook appends a new book to the user's list.
func (s *Store) CreateBook(ctx context.Context, book models.Book) error {
	books, err := s.loadBooks(ctx, book.UserID)
	if err != nil {
		return err
	}
	books = append(books, book)
	return s.saveBooks(ctx, book.UserID, books)
}

// GetBook returns a single book or common.ErrNotFound.
func (s *Store) GetBook(ctx context.Context, userID, bookID string) (models.Book, error) {
	books, err := s.loadBooks(ctx, userID)
	if err != nil {
		return models.Book{}, err
	}
	for _, book := range books {
		if book.ID == bookID {
			return book, nil
		}
	}
	return models.Book{}, common.ErrNotFound
}

// ListBooks returns the user's books, newest first. Insertion order breaks
// ties since the list is kept in append order.
func (s *Store) ListBooks(ctx context.Context, userID string) ([]models.Book, error) {
	books, err := s.loadBooks(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(books, func(i, j int) bool {
		return books[i].CreatedAt.After(books[j].CreatedAt)
	})
	return books, nil
}

// UpdatePagesRead sets the cumulative pages-read on a book.
func (s *Store) UpdatePagesRead(ctx context.Context, userID, bookID string, pagesRead int) error {
	books, err := s.loadBooks(ctx, userID)
	if err != nil {
		return err
	}
	for i := range books {
		if books[i].ID == bookID {
			books[i].PagesRead = pagesRead
			return s.saveBooks(ctx, userID, books)
		}
	}
	return common.ErrNotFound
}

// DeleteBook removes a book from the list.
func (s *Store) DeleteBook(ctx context.Context, userID, bookID string) error {
	books, err := s.loadBooks(ctx, userID)
	if err != nil {
		return err
	}
	filtered := books[:0]
	for _, book := range books {
		if book.ID != bookID {
			filtered = append(filtered, book)
		}
	}
	return s.saveBooks(ctx, userID, filtered)
}

// AddHistory increments the (book, day) ledger bucket.
func (s *Store) AddHistory(ctx context.Context, userID, bookID string, day time.Time, pages int) error {
	l, err := s.loadLedger(ctx, userID)
	if err != nil {
		return err
	}
	if l[bookID] == nil {
		l[bookID] = make(map[string]int)
	}
	l[bookID][common.DateKey(day)] += pages
	return s.saveLedger(ctx, userID, l)
}

// HistoryTotals sums the ledger across all books per calendar day since the
// given day (inclusive).
func (s *Store) HistoryTotals(ctx context.Context, userID string, since time.Time) (map[string]int, error) {
	l, err := s.loadLedger(ctx, userID)
	if err != nil {
		return nil, err
	}

	cutoff := common.DateKey(since)
	totals := make(map[string]int)
	for _, days := range l {
		for date, pages := range days {
			if date >= cutoff {
				totals[date] += pages
			}
		}
	}
	return totals, nil
}

// DeleteBookHistory drops every ledger bucket for a book.
func (s *Store) DeleteBookHistory(ctx context.Context, userID, bookID string) error {
	l, err := s.loadLedger(ctx, userID)
	if err != nil {
		return err
	}
	delete(l, bookID)
	return s.saveLedger(ctx, userID, l)
}

// Close is a no-op; the key-value store owns the underlying handle.
func (s *Store) Close() error {
	return nil
}
