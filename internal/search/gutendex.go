// Package search finds public-domain books through the Gutendex (Project
// Gutenberg) API, for adding reading candidates to the catalog.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"readtrack/internal/models"
)

// DefaultBaseURL is the public Gutendex endpoint.
const DefaultBaseURL = "https://gutendex.com/books"

// Result is one discovered book candidate.
type Result struct {
	GutenbergID int    `json:"gutenberg_id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	CoverImage  string `json:"cover_image,omitempty"`
	ReadURL     string `json:"read_url,omitempty"`
	ReadMime    string `json:"read_mime,omitempty"`
}

// Client is a Gutendex API client.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a client against the given base URL (the public
// endpoint when empty).
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

type gutendexBook struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Formats map[string]string `json:"formats"`
}

type gutendexResponse struct {
	Results []gutendexBook `json:"results"`
}

// Search queries Gutendex by free-text query and returns candidates with a
// preferred readable format already picked.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	u := fmt.Sprintf("%s/?search=%s", c.baseURL, url.QueryEscape(strings.TrimSpace(query)))
	return c.fetch(ctx, u)
}

// Lookup fetches a single book by its Gutenberg id.
func (c *Client) Lookup(ctx context.Context, gutenbergID int) (Result, error) {
	u := fmt.Sprintf("%s/?ids=%s", c.baseURL, strconv.Itoa(gutenbergID))
	results, err := c.fetch(ctx, u)
	if err != nil {
		return Result{}, err
	}
	if len(results) == 0 {
		return Result{}, fmt.Errorf("gutenberg book %d not found", gutenbergID)
	}
	return results[0], nil
}

func (c *Client) fetch(ctx context.Context, u string) ([]Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gutendex request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gutendex request failed: status %d", resp.StatusCode)
	}

	var payload gutendexResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode gutendex response: %w", err)
	}

	results := make([]Result, 0, len(payload.Results))
	for _, book := range payload.Results {
		author := models.UnknownAuthor
		if len(book.Authors) > 0 && book.Authors[0].Name != "" {
			author = book.Authors[0].Name
		}

		result := Result{
			GutenbergID: book.ID,
			Title:       book.Title,
			Author:      author,
			CoverImage:  book.Formats["image/jpeg"],
		}
		if best, ok := pickBestFormat(book.Formats); ok {
			result.ReadURL = best.url
			result.ReadMime = best.mime
		}
		results = append(results, result)
	}

	c.logger.Debug("gutendex fetch", zap.String("url", u), zap.Int("results", len(results)))
	return results, nil
}

type format struct {
	mime string
	url  string
}

// formatPreference orders readable formats best-first.
var formatPreference = []string{
	"text/html; charset=utf-8",
	"text/html",
	"text/plain; charset=utf-8",
	"text/plain",
	"application/epub+zip",
	"application/pdf",
}

// pickBestFormat selects the most readable format link. Falls back to any
// text/html variant, then to any http(s) link at all.
func pickBestFormat(formats map[string]string) (format, bool) {
	for _, mime := range formatPreference {
		if u, ok := formats[mime]; ok && u != "" {
			return format{mime: mime, url: u}, true
		}
	}
	for mime, u := range formats {
		if strings.HasPrefix(mime, "text/html") && u != "" {
			return format{mime: mime, url: u}, true
		}
	}
	for mime, u := range formats {
		if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
			return format{mime: mime, url: u}, true
		}
	}
	return format{}, false
}
