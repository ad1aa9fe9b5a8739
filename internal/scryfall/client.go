/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package scryfall looks up card art on the Scryfall API.
package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/time/rate"

	"github.com/Seednode/commandle/internal/cards"
)

const (
	DefaultBaseURL = "https://api.scryfall.com"
	rateLimitDelay = 100 * time.Millisecond // Scryfall asks for at most 10 req/sec
	maxRetries     = 2
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 4 * time.Second
)

// Client represents a Scryfall API client with rate limiting and an LRU of
// image lookups by exact name.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
	timeout     time.Duration
	backoff     time.Duration
	images      *lru.Cache
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps outbound requests per second. Zero disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.rateLimiter = nil
			return
		}
		c.rateLimiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithCacheSize sets the number of image lookups kept. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(c *Client) {
		if n <= 0 {
			c.images = nil
			return
		}
		cache, err := lru.New(n)
		if err == nil {
			c.images = cache
		}
	}
}

func withBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// NewClient creates a new Scryfall API client.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		httpClient:  http.DefaultClient,
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		userAgent:   "commandle/1.0",
		backoff:     initialBackoff,
	}
	WithCacheSize(512)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Named retrieves a card by its exact name.
func (c *Client) Named(ctx context.Context, name string) (*Card, error) {
	u := fmt.Sprintf("%s/cards/named?exact=%s", c.baseURL, url.QueryEscape(name))

	var card Card
	if err := c.doRequest(ctx, u, &card); err != nil {
		return nil, fmt.Errorf("failed to get card %q: %w", name, err)
	}
	return &card, nil
}

// Images returns the image URIs for the card named name. Successful lookups
// are cached.
func (c *Client) Images(ctx context.Context, name string) (cards.ImageURIs, error) {
	if c.images != nil {
		if v, ok := c.images.Get(name); ok {
			return v.(cards.ImageURIs), nil
		}
	}

	card, err := c.Named(ctx, name)
	if err != nil {
		return cards.ImageURIs{}, err
	}

	images := card.Images()
	if c.images != nil && !images.Empty() {
		c.images.Add(name, images)
	}
	return images, nil
}

// RandomCommander retrieves a random card that can lead a commander deck.
func (c *Client) RandomCommander(ctx context.Context) (*Card, error) {
	u := fmt.Sprintf("%s/cards/random?q=%s", c.baseURL, url.QueryEscape("is:commander"))

	var card Card
	if err := c.doRequest(ctx, u, &card); err != nil {
		return nil, fmt.Errorf("failed to get random commander: %w", err)
	}
	return &card, nil
}

// doRequest performs an HTTP request with rate limiting and retries on
// network errors and 429 responses.
func (c *Client) doRequest(ctx context.Context, u string, result any) error {
	var lastErr error
	backoff := c.backoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
		}

		retry, err := c.do(ctx, u, result)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) do(ctx context.Context, u string, result any) (retry bool, err error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return false, fmt.Errorf("rate limiter error: %w", err)
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return false, fmt.Errorf("failed to parse JSON response: %w", err)
		}
		return false, nil

	case http.StatusTooManyRequests:
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(time.Duration(secs) * time.Second):
			}
		}
		return true, fmt.Errorf("rate limited (HTTP 429)")

	case http.StatusNotFound:
		return false, &NotFoundError{URL: u}

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
			return false, &apiErr
		}
		return false, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
}
