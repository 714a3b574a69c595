// Package openai provides OpenAI-backed implementations of civdoc.Embedder,
// civdoc.Answerer, and civdoc.Titler over the HTTP API.
package openai

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/civdoc/civdoc"
)

// DefaultBaseURL is the OpenAI API endpoint.
const DefaultBaseURL = "https://api.openai.com"

// Model names. The "small" embedding model produces vectors of 1536 dimensions.
const (
	embeddingModel = "text-embedding-3-small"
	chatModel      = "gpt-4o"
	titleModel     = "gpt-4o-mini"
)

// Compile-time interface verification.
var (
	_ civdoc.Embedder = (*Client)(nil)
	_ civdoc.Titler   = (*Client)(nil)
)

// Client calls the OpenAI API. Embedding responses are cached by content
// hash so identical (post-truncation) inputs trigger at most one remote
// call, subject to cache retention.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      civdoc.Cache
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Useful for tests and proxies.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithCache sets the embedding response cache. Without a cache every Embed
// call goes to the API.
func WithCache(cache civdoc.Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger for cache write failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a Client authenticating with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 90 * time.Second},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Embed returns the embedding vector for text.
//
// Text is trimmed and truncated to civdoc.EmbedMaxChars before the cache
// key is computed, so inputs identical after truncation share one cache
// entry. Cache write failures are logged, never fatal.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, civdoc.Errorf(civdoc.EINVALID, "embedding input is empty")
	}
	if len(text) > civdoc.EmbedMaxChars {
		text = text[:civdoc.EmbedMaxChars]
	}

	key := "embedding:" + hashKey(text)

	raw, hit := c.cacheGet(ctx, key)
	if !hit {
		var err error
		raw, err = c.post(ctx, "/v1/embeddings", map[string]any{
			"model": embeddingModel,
			"input": text,
		})
		if err != nil {
			return nil, err
		}
		c.cacheSet(ctx, key, raw)
	}

	var parsed struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, civdoc.Errorf(civdoc.EEXTERNAL, "parse embedding response: %s", err)
	}
	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, civdoc.Errorf(civdoc.EEXTERNAL, "no embedding in response")
	}

	return parsed.Data[0].Embedding, nil
}

// Title generates a short discussion title (max 5 words) from the first
// message. Falls back to a truncated copy of the message on any failure.
func (c *Client) Title(ctx context.Context, firstMessage string) (string, error) {
	answer, err := c.complete(ctx, titleModel, []chatMessage{
		{Role: "system", Content: "Generate a very short, concise title (max 5 words) for a conversation that starts with the following message. Only respond with the title, nothing else."},
		{Role: "user", Content: firstMessage},
	}, 20)
	if err != nil || strings.TrimSpace(answer) == "" {
		return fallbackTitle(firstMessage), nil
	}
	return strings.TrimSpace(answer), nil
}

func fallbackTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= 50 {
		return message
	}
	return string(runes[:50]) + "..."
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// complete calls the chat completions endpoint and returns the first
// choice's content. maxTokens <= 0 leaves the limit unset.
func (c *Client) complete(ctx context.Context, model string, messages []chatMessage, maxTokens int) (string, error) {
	body := map[string]any{
		"model":    model,
		"messages": messages,
	}
	if maxTokens > 0 {
		body["max_tokens"] = maxTokens
	}

	raw, err := c.post(ctx, "/v1/chat/completions", body)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", civdoc.Errorf(civdoc.EEXTERNAL, "parse completion response: %s", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", civdoc.Errorf(civdoc.EEXTERNAL, "no completion choices in response")
	}

	return parsed.Choices[0].Message.Content, nil
}

// post sends an authenticated JSON request and returns the raw response body.
func (c *Client) post(ctx context.Context, endpoint string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, civdoc.Errorf(civdoc.EUNAVAILABLE, "request %s: %s", endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, civdoc.Errorf(civdoc.EUNAVAILABLE, "read response from %s: %s", endpoint, err)
	}
	if resp.StatusCode >= 300 {
		return nil, civdoc.Errorf(civdoc.EEXTERNAL, "%s returned status %d", endpoint, resp.StatusCode)
	}

	return raw, nil
}

func (c *Client) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	value, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("embedding cache read failed", "key", key, "err", err)
		return nil, false
	}
	return value, hit
}

func (c *Client) cacheSet(ctx context.Context, key string, value []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, value); err != nil {
		c.logger.Warn("embedding cache write failed", "key", key, "err", err)
	}
}

// hashKey computes the hex xxHash of content for use as a cache key.
func hashKey(content string) string {
	h := xxhash.Sum64String(content)
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}
