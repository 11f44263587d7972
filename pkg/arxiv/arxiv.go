// Package arxiv provides a client for the arXiv Atom API: free-text and
// category search plus single-paper lookup. It composes with the vector
// store only at the application layer; the store never depends on it.
package arxiv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the arXiv Atom API endpoint.
const DefaultBaseURL = "https://export.arxiv.org/api/query"

// featuredQuery stands in when the caller supplies an empty query.
const featuredQuery = "cat:cs.AI+OR+cat:cs.LG+OR+cat:cs.CL+OR+cat:cs.CV"

// Paper is one bibliographic record returned by the arXiv API.
type Paper struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       string   `json:"authors"`
	Category      string   `json:"category"`
	PublishedDate string   `json:"published_date"`
	AbstractText  string   `json:"abstract_text"`
	DownloadURL   string   `json:"download_url"`
	PDFURL        string   `json:"pdf_url"`
	Categories    []string `json:"categories"`
}

// SearchOptions controls result count and ordering.
type SearchOptions struct {
	MaxResults int
	SortBy     string // "relevance" or "submittedDate"
	SortOrder  string // "ascending" or "descending"
}

// DefaultSearchOptions returns the API defaults: 20 results by descending
// relevance.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		MaxResults: 20,
		SortBy:     "relevance",
		SortOrder:  "descending",
	}
}

// Client queries the arXiv Atom API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// Config holds configuration for the arXiv client.
type Config struct {
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string

	// Timeout bounds each request. Defaults to 30s.
	Timeout time.Duration
}

// NewClient creates an arXiv API client.
func NewClient(c Config, logger *zap.Logger) *Client {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := c.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Search runs a free-text or fielded query against the API. An empty query
// falls back to the featured-categories query. The query string is passed
// through as-is apart from space encoding, so fielded terms like "cat:cs.AI"
// and "+OR+" joins work unchanged.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) ([]Paper, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 20
	}
	if opts.SortBy == "" {
		opts.SortBy = "relevance"
	}
	if opts.SortOrder == "" {
		opts.SortOrder = "descending"
	}

	actual := strings.TrimSpace(query)
	if actual == "" {
		actual = featuredQuery
	}
	encoded := strings.ReplaceAll(actual, " ", "+")

	url := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=%s&sortOrder=%s",
		c.baseURL, encoded, opts.MaxResults, opts.SortBy, opts.SortOrder)

	c.logger.Debug("fetching arxiv papers", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building arxiv request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching arxiv results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, fmt.Errorf("arxiv rate limit exceeded, wait a moment and retry")
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("arxiv service temporarily unavailable (%d), retry later", resp.StatusCode)
		default:
			return nil, fmt.Errorf("arxiv api error: %s", resp.Status)
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading arxiv response: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response from arxiv")
	}

	papers, err := parseFeed(body)
	if err != nil {
		return nil, fmt.Errorf("parsing arxiv response: %w", err)
	}

	c.logger.Debug("parsed arxiv papers",
		zap.String("query", actual),
		zap.Int("count", len(papers)),
	)

	return papers, nil
}

// ByCategories fetches the most recent papers of the given categories. With
// no categories it returns the featured set instead.
func (c *Client) ByCategories(ctx context.Context, categories []string, maxResults int) ([]Paper, error) {
	opts := SearchOptions{
		MaxResults: maxResults,
		SortBy:     "submittedDate",
		SortOrder:  "descending",
	}

	if len(categories) == 0 {
		return c.Search(ctx, "", opts)
	}

	terms := make([]string, len(categories))
	for i, cat := range categories {
		terms[i] = "cat:" + cat
	}

	return c.Search(ctx, strings.Join(terms, "+OR+"), opts)
}

// PaperByID looks up a single paper by its arXiv identifier. A paper that
// does not exist yields nil, not an error.
func (c *Client) PaperByID(ctx context.Context, arxivID string) (*Paper, error) {
	papers, err := c.Search(ctx, "id:"+arxivID, SearchOptions{
		MaxResults: 1,
		SortBy:     "relevance",
		SortOrder:  "descending",
	})
	if err != nil {
		return nil, err
	}
	if len(papers) == 0 {
		return nil, nil
	}

	return &papers[0], nil
}
