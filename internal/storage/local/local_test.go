package local_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readtrack/internal/common"
	"readtrack/internal/kvstore"
	"readtrack/internal/models"
	"readtrack/internal/storage/local"
)

const testUser = "user-1"

func newStore() *local.Store {
	return local.New(kvstore.NewMemoryStore())
}

func makeBook(id string, createdAt time.Time) models.Book {
	return models.Book{
		ID:         id,
		UserID:     testUser,
		Title:      "Book " + id,
		TotalPages: 200,
		Category:   "Fiction",
		CreatedAt:  createdAt,
	}
}

func TestBookCRUD(t *testing.T) {
	store := newStore()
	ctx := context.Background()
	created := makeBook("b1", time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, store.CreateBook(ctx, created))

	book, err := store.GetBook(ctx, testUser, "b1")
	require.NoError(t, err)
	assert.Equal(t, created, book)

	require.NoError(t, store.UpdatePagesRead(ctx, testUser, "b1", 50))
	book, err = store.GetBook(ctx, testUser, "b1")
	require.NoError(t, err)
	assert.Equal(t, 50, book.PagesRead)

	require.NoError(t, store.DeleteBook(ctx, testUser, "b1"))
	_, err = store.GetBook(ctx, testUser, "b1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetBook_NotFound(t *testing.T) {
	store := newStore()

	_, err := store.GetBook(context.Background(), testUser, "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdatePagesRead_NotFound(t *testing.T) {
	store := newStore()

	err := store.UpdatePagesRead(context.Background(), testUser, "nope", 10)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListBooks_NewestFirst(t *testing.T) {
	store := newStore()
	ctx := context.Background()
	base := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateBook(ctx, makeBook("oldest", base)))
	require.NoError(t, store.CreateBook(ctx, makeBook("newest", base.AddDate(0, 0, 2))))
	require.NoError(t, store.CreateBook(ctx, makeBook("middle", base.AddDate(0, 0, 1))))

	books, err := store.ListBooks(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "newest", books[0].ID)
	assert.Equal(t, "middle", books[1].ID)
	assert.Equal(t, "oldest", books[2].ID)
}

func TestListBooks_ScopedPerUser(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	book := makeBook("b1", time.Now())
	require.NoError(t, store.CreateBook(ctx, book))

	books, err := store.ListBooks(ctx, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestHistory(t *testing.T) {
	store := newStore()
	ctx := context.Background()
	today := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.AddHistory(ctx, testUser, "b1", today, 5))
	require.NoError(t, store.AddHistory(ctx, testUser, "b1", today, 3))
	require.NoError(t, store.AddHistory(ctx, testUser, "b2", today, 7))
	require.NoError(t, store.AddHistory(ctx, testUser, "b1", today.AddDate(0, 0, -1), 4))

	totals, err := store.HistoryTotals(ctx, testUser, today.AddDate(0, 0, -7))
	require.NoError(t, err)

	assert.Equal(t, 15, totals[common.DateKey(today)], "same-day entries accumulate across books")
	assert.Equal(t, 4, totals[common.DateKey(today.AddDate(0, 0, -1))])
}

func TestHistoryTotals_CutoffExcludesOlderDays(t *testing.T) {
	store := newStore()
	ctx := context.Background()
	today := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.AddHistory(ctx, testUser, "b1", today, 5))
	require.NoError(t, store.AddHistory(ctx, testUser, "b1", today.AddDate(0, 0, -10), 9))

	totals, err := store.HistoryTotals(ctx, testUser, today.AddDate(0, 0, -6))
	require.NoError(t, err)

	assert.Len(t, totals, 1)
	assert.Equal(t, 5, totals[common.DateKey(today)])
}

func TestDeleteBookHistory(t *testing.T) {
	store := newStore()
	ctx := context.Background()
	today := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.AddHistory(ctx, testUser, "b1", today, 5))
	require.NoError(t, store.AddHistory(ctx, testUser, "b2", today, 7))

	require.NoError(t, store.DeleteBookHistory(ctx, testUser, "b1"))

	totals, err := store.HistoryTotals(ctx, testUser, today.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, 7, totals[common.DateKey(today)], "other books' history is untouched")
}
