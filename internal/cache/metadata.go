// Package cache implements the local metadata cache: per-book supplementary
// fields (author, cover, external ids, cached page count) and the per-book
// progress of record, layered on the key-value store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"readtrack/internal/kvstore"
	"readtrack/internal/models"
)

const (
	metaPrefix     = "meta:"
	progressPrefix = "progress:"
)

// MetadataCache reads and writes locally-cached book fields.
type MetadataCache struct {
	kv kvstore.Store
}

// New creates a metadata cache on top of kv.
func New(kv kvstore.Store) *MetadataCache {
	return &MetadataCache{kv: kv}
}

func metaKey(userID, bookID string) string {
	return fmt.Sprintf("%s%s:%s", metaPrefix, userID, bookID)
}

func progressKey(userID, bookID string) string {
	return fmt.Sprintf("%s%s:%s", progressPrefix, userID, bookID)
}

// progressEntry is the stored shape of a per-book progress record.
type progressEntry struct {
	CurrentPage int `json:"current_page"`
}

// SetMetadata merges fields into the cached metadata for a book. Zero-valued
// fields of the update are left as previously cached.
func (c *MetadataCache) SetMetadata(ctx context.Context, userID, bookID string, update models.BookMetadata) error {
	current, err := c.GetMetadata(ctx, userID, bookID)
	if err != nil {
		return err
	}

	if update.Author != "" {
		current.Author = update.Author
	}
	if update.CoverImage != "" {
		current.CoverImage = update.CoverImage
	}
	if update.GutenbergID != 0 {
		current.GutenbergID = update.GutenbergID
	}
	if update.ReadURL != "" {
		current.ReadURL = update.ReadURL
	}
	if update.TotalPages != 0 {
		current.TotalPages = update.TotalPages
	}

	data, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := c.kv.Set(ctx, metaKey(userID, bookID), data); err != nil {
		return fmt.Errorf("failed to store metadata: %w", err)
	}
	return nil
}

// GetMetadata returns the cached metadata for a book. A missing entry is not
// an error; it yields the zero value.
func (c *MetadataCache) GetMetadata(ctx context.Context, userID, bookID string) (models.BookMetadata, error) {
	var meta models.BookMetadata

	data, err := c.kv.Get(ctx, metaKey(userID, bookID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return meta, nil
	}
	if err != nil {
		return meta, fmt.Errorf("failed to read metadata: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return models.BookMetadata{}, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return meta, nil
}

// DeleteMetadata removes the cached metadata for a book.
func (c *MetadataCache) DeleteMetadata(ctx context.Context, userID, bookID string) error {
	if err := c.kv.Delete(ctx, metaKey(userID, bookID)); err != nil {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}
	return nil
}

// SetProgress stores the current cumulative pages-read for a book.
func (c *MetadataCache) SetProgress(ctx context.Context, userID, bookID string, pagesRead int) error {
	data, err := json.Marshal(progressEntry{CurrentPage: pagesRead})
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	if err := c.kv.Set(ctx, progressKey(userID, bookID), data); err != nil {
		return fmt.Errorf("failed to store progress: %w", err)
	}
	return nil
}

// GetProgress returns the cached cumulative pages-read for a book, 0 when no
// progress has been recorded yet.
func (c *MetadataCache) GetProgress(ctx context.Context, userID, bookID string) (int, error) {
	data, err := c.kv.Get(ctx, progressKey(userID, bookID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read progress: %w", err)
	}

	var entry progressEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return 0, fmt.Errorf("failed to unmarshal progress: %w", err)
	}
	return entry.CurrentPage, nil
}

// DeleteProgress removes the cached progress for a book.
func (c *MetadataCache) DeleteProgress(ctx context.Context, userID, bookID string) error {
	if err := c.kv.Delete(ctx, progressKey(userID, bookID)); err != nil {
		return fmt.Errorf("failed to delete progress: %w", err)
	}
	return nil
}
