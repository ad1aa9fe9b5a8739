/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package rank resolves a commander's popularity rank from the ranking
// service. Lower ranks are more popular.
package rank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://json.edhrec.com"
	userAgent      = "commandle/1.0"
	maxBodyBytes   = 8 << 20
)

// Resolver resolves a card name to its rank. ok is false when the rank is
// unknown; that is a normal result, not an error.
type Resolver interface {
	ResolveRank(ctx context.Context, name string) (rank int, ok bool)
}

// Client is a Resolver backed by the ranking service's static JSON pages.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	strategies  []Strategy
	timeout     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
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

// WithTimeout bounds each request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithStrategies appends extraction strategies after the defaults.
func WithStrategies(s ...Strategy) Option {
	return func(c *Client) { c.strategies = append(c.strategies, s...) }
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
		strategies: DefaultStrategies(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URLs returns the pages tried for name, in order.
func (c *Client) URLs(name string) []string {
	slug := Slugify(name)
	if slug == "" {
		return nil
	}
	return []string{
		fmt.Sprintf("%s/pages/commanders/%s.json", c.baseURL, slug),
		fmt.Sprintf("%s/pages/commanders/%s-1.json", c.baseURL, slug),
	}
}

// ResolveRank tries each page for name and returns the first rank found.
// Failures of any kind move on to the next page; when every page fails the
// rank is unknown.
func (c *Client) ResolveRank(ctx context.Context, name string) (int, bool) {
	for _, u := range c.URLs(name) {
		doc, err := c.fetch(ctx, u)
		if err != nil {
			continue
		}
		if n, ok := Extract(doc, c.strategies); ok {
			return n, true
		}
	}
	return 0, false
}

func (c *Client) fetch(ctx context.Context, url string) (any, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return doc, nil
}
