// Package pokeapi fetches raw resources from the upstream species-data API and
// normalizes them into canonical catalog records.
//
// Every request goes through a fixed-delay retry loop and an optional
// token bucket ceiling. Pacing across many requests is the worker pool's job.
package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrNotFound is returned by GetOptional when the resource does not exist.
	ErrNotFound = errors.New("pokeapi: resource not found")
	// ErrDecode matches a response body that did not parse.
	ErrDecode = errors.New("pokeapi: malformed payload")
)

// StatusError is a non-2xx upstream response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pokeapi %s returned %d: %s", e.URL, e.StatusCode, e.Body)
}

// Transient reports whether the status is worth retrying later
// (timeouts, throttling, server errors).
func (e *StatusError) Transient() bool {
	switch {
	case e.StatusCode == http.StatusRequestTimeout,
		e.StatusCode == http.StatusTooEarly,
		e.StatusCode == http.StatusTooManyRequests,
		e.StatusCode >= 500:
		return true
	}
	return false
}

// decodeError marks a body that arrived intact but did not parse.
// Retrying cannot fix it.
type decodeError struct {
	url string
	err error
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.url, e.err)
}

func (e *decodeError) Unwrap() error { return e.err }

func (e *decodeError) Is(target error) bool { return target == ErrDecode }

// Observer receives per-request telemetry. Resource is the first path
// segment of the request ("pokemon", "type", ...).
type Observer interface {
	ObserveFetch(resource, outcome string, elapsed time.Duration)
	ObserveRetry(resource string)
}

// Fetch outcomes reported to the Observer.
const (
	OutcomeOK        = "ok"
	OutcomeNotFound  = "not_found"
	OutcomeTransient = "transient"
	OutcomePermanent = "permanent"
	OutcomeNetwork   = "network"
)

// Options configures a Client.
type Options struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerMinute int // <= 0 means no client-side ceiling
	MaxAttempts       int
	RetryDelay        time.Duration
	Observer          Observer
}

// Client is the shared HTTP client for all upstream resources.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	limiter     *rate.Limiter
	maxAttempts int
	retryDelay  time.Duration
	observer    Observer
	logger      *slog.Logger
}

// NewClient creates an upstream client with retry and an optional rate ceiling.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(opts.RequestsPerMinute) / 60.0)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	attempts := opts.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		userAgent:   opts.UserAgent,
		limiter:     rate.NewLimiter(limit, 1),
		maxAttempts: attempts,
		retryDelay:  opts.RetryDelay,
		observer:    opts.Observer,
		logger:      logger,
	}
}

// URL resolves a resource path against the base URL. Absolute URLs, as found
// inside upstream payloads, are returned unchanged.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Get fetches path and decodes it into out. Any failure, including a 404,
// is retried up to the configured attempt count.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.withRetry(ctx, c.URL(path), false, out)
}

// GetOptional is Get with allow-not-found semantics: a 404 returns
// ErrNotFound immediately instead of being retried.
func (c *Client) GetOptional(ctx context.Context, path string, out any) error {
	return c.withRetry(ctx, c.URL(path), true, out)
}

// do performs a single rate-limited GET and decodes the body into out.
func (c *Client) do(ctx context.Context, u string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request %s: %w", u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{URL: u, StatusCode: resp.StatusCode, Body: truncate(body, 200)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &decodeError{url: u, err: err}
	}
	return nil
}

func (c *Client) observe(u string, err error, elapsed time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveFetch(resourceOf(u, c.baseURL), classify(err), elapsed)
}

// classify maps a fetch error onto an Observer outcome.
func classify(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound:
		return OutcomeNotFound
	case errors.As(err, &statusErr) && statusErr.Transient():
		return OutcomeTransient
	case errors.As(err, &statusErr):
		return OutcomePermanent
	case errors.As(err, new(*decodeError)):
		return OutcomePermanent
	default:
		return OutcomeNetwork
	}
}

// resourceOf returns the first path segment below the base URL.
func resourceOf(u, base string) string {
	rest, ok := strings.CutPrefix(u, base)
	if !ok {
		i := strings.Index(u, "/api/v2/")
		if i < 0 {
			return "unknown"
		}
		rest = u[i+len("/api/v2"):]
	}
	rest = strings.TrimLeft(rest, "/")
	if i := strings.IndexAny(rest, "/?"); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return "unknown"
	}
	return rest
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
