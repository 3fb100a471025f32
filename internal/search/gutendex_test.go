package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const samplePayload = `{
	"results": [
		{
			"id": 84,
			"title": "Frankenstein; Or, The Modern Prometheus",
			"authors": [{"name": "Shelley, Mary Wollstonecraft"}],
			"formats": {
				"image/jpeg": "https://www.gutenberg.org/cache/epub/84/pg84.cover.medium.jpg",
				"application/epub+zip": "https://www.gutenberg.org/ebooks/84.epub3.images",
				"text/html": "https://www.gutenberg.org/ebooks/84.html.images"
			}
		},
		{
			"id": 345,
			"title": "Anonymous Pamphlet",
			"authors": [],
			"formats": {
				"application/pdf": "https://example.org/345.pdf"
			}
		}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, zap.NewNop())
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "frankenstein", r.URL.Query().Get("search"))
		w.Write([]byte(samplePayload))
	})

	results, err := client.Search(context.Background(), "frankenstein")
	require.NoError(t, err)
	require.Len(t, results, 2)

	first := results[0]
	assert.Equal(t, 84, first.GutenbergID)
	assert.Equal(t, "Shelley, Mary Wollstonecraft", first.Author)
	assert.Equal(t, "https://www.gutenberg.org/cache/epub/84/pg84.cover.medium.jpg", first.CoverImage)
	assert.Equal(t, "https://www.gutenberg.org/ebooks/84.html.images", first.ReadURL, "html beats epub")
	assert.Equal(t, "text/html", first.ReadMime)

	second := results[1]
	assert.Equal(t, "Unknown Author", second.Author, "missing authors fall back")
	assert.Equal(t, "https://example.org/345.pdf", second.ReadURL)
}

func TestLookup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "84", r.URL.Query().Get("ids"))
		w.Write([]byte(samplePayload))
	})

	result, err := client.Lookup(context.Background(), 84)
	require.NoError(t, err)
	assert.Equal(t, 84, result.GutenbergID)
}

func TestLookup_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	})

	_, err := client.Lookup(context.Background(), 999999)
	assert.Error(t, err)
}

func TestSearch_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Search(context.Background(), "anything")
	assert.Error(t, err)
}

func TestPickBestFormat(t *testing.T) {
	testCases := []struct {
		name         string
		formats      map[string]string
		expectedMime string
		expectedOK   bool
	}{
		{
			name: "prefers html over plain text",
			formats: map[string]string{
				"text/plain": "https://example.org/plain",
				"text/html":  "https://example.org/html",
			},
			expectedMime: "text/html",
			expectedOK:   true,
		},
		{
			name: "html variant with unusual charset",
			formats: map[string]string{
				"text/html; charset=us-ascii": "https://example.org/html",
			},
			expectedMime: "text/html; charset=us-ascii",
			expectedOK:   true,
		},
		{
			name: "any http link as last resort",
			formats: map[string]string{
				"application/x-mobipocket-ebook": "https://example.org/book.mobi",
			},
			expectedMime: "application/x-mobipocket-ebook",
			expectedOK:   true,
		},
		{
			name:       "nothing usable",
			formats:    map[string]string{"text/qr": "data:something"},
			expectedOK: false,
		},
		{
			name:       "empty formats",
			formats:    map[string]string{},
			expectedOK: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			best, ok := pickBestFormat(tc.formats)
			assert.Equal(t, tc.expectedOK, ok)
			if tc.expectedOK {
				assert.Equal(t, tc.expectedMime, best.mime)
			}
		})
	}
}
