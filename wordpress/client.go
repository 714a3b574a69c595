// Package wordpress fetches posts and media attachments from the
// municipality's WordPress multisite over the WP REST API.
package wordpress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public root of the WordPress multisite.
const DefaultBaseURL = "https://www.marche.be"

// perPage is the WP REST API page size used for listing endpoints.
const perPage = 100

// Client lists posts, media attachments and categories from the WP REST
// API. Requests across all sites share one rate limiter.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the site root. Useful for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRPS sets the request rate limit. Defaults to 2 requests per second
// with no bursting.
func WithRPS(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithLogger sets the logger for fetch failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a Client for the WP REST API.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(2), 1),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// renderedField is the WP REST representation of a rendered text field.
type renderedField struct {
	Rendered string `json:"rendered"`
}

// Post is a WP REST posts record.
type Post struct {
	ID      int           `json:"id"`
	Link    string        `json:"link"`
	Title   renderedField `json:"title"`
	Content renderedField `json:"content"`
}

// Attachment is a WP REST media record with media_type application.
type Attachment struct {
	ID        int           `json:"id"`
	Link      string        `json:"link"`
	SourceURL string        `json:"source_url"`
	Title     renderedField `json:"title"`
}

// Category is a WP REST categories record.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// sitePath returns the URL path segment for a site. The main site
// (citoyen) lives at the multisite root and has no segment.
func sitePath(siteName string) string {
	if siteName == "citoyen" {
		return ""
	}
	return "/" + siteName
}

// Posts returns all posts of a site, paginating until the API returns an
// empty page. Fetch failures end the pagination and return what was
// collected so far.
func (c *Client) Posts(ctx context.Context, siteName string) ([]Post, error) {
	var all []Post
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s%s/wp-json/wp/v2/posts?per_page=%d&page=%d", c.baseURL, sitePath(siteName), perPage, page)

		var batch []Post
		if err := c.getJSON(ctx, url, &batch); err != nil {
			return all, err
		}
		if len(batch) == 0 {
			return all, nil
		}
		all = append(all, batch...)
	}
}

// Attachments returns all application-type media records of a site,
// paginating until the API returns an empty page.
func (c *Client) Attachments(ctx context.Context, siteName string) ([]Attachment, error) {
	var all []Attachment
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s%s/wp-json/wp/v2/media?per_page=%d&media_type=application&page=%d", c.baseURL, sitePath(siteName), perPage, page)

		var batch []Attachment
		if err := c.getJSON(ctx, url, &batch); err != nil {
			return all, err
		}
		if len(batch) == 0 {
			return all, nil
		}
		all = append(all, batch...)
	}
}

// Categories returns the categories assigned to a post.
func (c *Client) Categories(ctx context.Context, siteName string, postID int) ([]Category, error) {
	url := fmt.Sprintf("%s%s/wp-json/wp/v2/categories?post=%d", c.baseURL, sitePath(siteName), postID)

	var categories []Category
	if err := c.getJSON(ctx, url, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// getJSON fetches url and decodes the response into out, honoring the
// rate limiter.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	return json.Unmarshal(body, out)
}
