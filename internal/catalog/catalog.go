// Package catalog implements the book catalog: CRUD over book records,
// composing the record store with the local metadata cache into unified
// book views.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"readtrack/internal/cache"
	"readtrack/internal/common"
	"readtrack/internal/models"
	"readtrack/internal/storage"
)

// MaxTitleLength is the longest accepted book title.
const MaxTitleLength = 100

// Service is the book catalog.
type Service struct {
	store  storage.RecordStore
	cache  *cache.MetadataCache
	logger *zap.Logger

	now func() time.Time
}

// New creates a catalog over the given record store and metadata cache.
func New(store storage.RecordStore, metaCache *cache.MetadataCache, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		cache:  metaCache,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// AddBookParams are the fields accepted when adding a book. Author, cover,
// Gutenberg id and read URL are supplementary and go to the local cache.
type AddBookParams struct {
	Title       string
	TotalPages  int
	Category    string
	Author      string
	CoverImage  string
	GutenbergID int
	ReadURL     string
}

// EffectiveTotalPages resolves the page count used for clamping: the remote
// value when present and non-zero, else the locally cached one, else the
// fixed default.
func EffectiveTotalPages(book models.Book, meta models.BookMetadata) int {
	if book.TotalPages > 0 {
		return book.TotalPages
	}
	if meta.TotalPages > 0 {
		return meta.TotalPages
	}
	return models.DefaultTotalPages
}

// Compose merges a remote book record with its cached metadata and the
// local progress of record into a unified view. Pure function of its inputs.
func Compose(book models.Book, meta models.BookMetadata, pagesRead int) models.BookView {
	author := meta.Author
	if author == "" {
		author = models.UnknownAuthor
	}

	cover := book.CoverImage
	if cover == "" {
		cover = meta.CoverImage
	}

	category := book.Category
	if category == "" {
		category = "Other"
	}

	totalPages := EffectiveTotalPages(book, meta)

	return models.BookView{
		ID:              book.ID,
		Title:           book.Title,
		Author:          author,
		Category:        category,
		TotalPages:      totalPages,
		PagesRead:       pagesRead,
		ProgressPercent: models.ProgressPercent(pagesRead, totalPages),
		CoverImage:      cover,
		GutenbergID:     meta.GutenbergID,
		ReadURL:         meta.ReadURL,
		CreatedAt:       book.CreatedAt,
	}
}

func validateAddParams(p AddBookParams) error {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return fmt.Errorf("%w: title must not be empty", common.ErrInvalidInput)
	}
	if len([]rune(title)) > MaxTitleLength {
		return fmt.Errorf("%w: title must be at most %d characters", common.ErrInvalidInput, MaxTitleLength)
	}
	if p.TotalPages <= 0 {
		return fmt.Errorf("%w: total pages must be a positive integer", common.ErrInvalidInput)
	}
	return nil
}

// Add validates and creates a book: the remote record first, then, only on
// success, the cached metadata and a zero progress entry. A remote failure
// leaves no local state behind.
func (s *Service) Add(ctx context.Context, userID string, p AddBookParams) (models.BookView, error) {
	if err := validateAddParams(p); err != nil {
		return models.BookView{}, err
	}

	category := p.Category
	if category == "" {
		category = "Other"
	}

	book := models.Book{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      strings.TrimSpace(p.Title),
		TotalPages: p.TotalPages,
		PagesRead:  0,
		Category:   category,
		CoverImage: p.CoverImage,
		CreatedAt:  s.now(),
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		return models.BookView{}, fmt.Errorf("failed to create book record: %w", err)
	}

	meta := models.BookMetadata{
		Author:      p.Author,
		CoverImage:  p.CoverImage,
		GutenbergID: p.GutenbergID,
		ReadURL:     p.ReadURL,
		TotalPages:  p.TotalPages,
	}
	if err := s.cache.SetMetadata(ctx, userID, book.ID, meta); err != nil {
		return models.BookView{}, fmt.Errorf("failed to cache book metadata: %w", err)
	}
	if err := s.cache.SetProgress(ctx, userID, book.ID, 0); err != nil {
		return models.BookView{}, fmt.Errorf("failed to initialize progress: %w", err)
	}

	s.logger.Info("book added",
		zap.String("book_id", book.ID),
		zap.String("title", book.Title),
		zap.Int("total_pages", book.TotalPages))

	return Compose(book, meta, 0), nil
}

// Get returns the composed view for a single book.
func (s *Service) Get(ctx context.Context, userID, bookID string) (models.BookView, error) {
	book, err := s.store.GetBook(ctx, userID, bookID)
	if err != nil {
		return models.BookView{}, err
	}
	return s.compose(ctx, book)
}

// List returns the user's books, newest first, each merged with its cached
// metadata and local progress.
func (s *Service) List(ctx context.Context, userID string) ([]models.BookView, error) {
	books, err := s.store.ListBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	views := make([]models.BookView, 0, len(books))
	for _, book := range books {
		view, err := s.compose(ctx, book)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Service) compose(ctx context.Context, book models.Book) (models.BookView, error) {
	meta, err := s.cache.GetMetadata(ctx, book.UserID, book.ID)
	if err != nil {
		return models.BookView{}, err
	}
	progress, err := s.cache.GetProgress(ctx, book.UserID, book.ID)
	if err != nil {
		return models.BookView{}, err
	}
	return Compose(book, meta, progress), nil
}

// Delete removes a book. Dependent history entries go first; if that fails
// the book record is left untouched so no book-less history can remain.
func (s *Service) Delete(ctx context.Context, userID, bookID string) error {
	if _, err := s.store.GetBook(ctx, userID, bookID); err != nil {
		return err
	}

	if err := s.store.DeleteBookHistory(ctx, userID, bookID); err != nil {
		return fmt.Errorf("failed to delete book history: %w", err)
	}
	if err := s.store.DeleteBook(ctx, userID, bookID); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	// Cache cleanup is best effort; a stale entry is harmless once the
	// record is gone.
	if err := s.cache.DeleteMetadata(ctx, userID, bookID); err != nil {
		s.logger.Warn("failed to delete cached metadata", zap.String("book_id", bookID), zap.Error(err))
	}
	if err := s.cache.DeleteProgress(ctx, userID, bookID); err != nil {
		s.logger.Warn("failed to delete cached progress", zap.String("book_id", bookID), zap.Error(err))
	}

	s.logger.Info("book deleted", zap.String("book_id", bookID))
	return nil
}
