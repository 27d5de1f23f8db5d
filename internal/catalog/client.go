// Package catalog is a client for the AniLibria catalog API.
package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/vmunix/anistrm/internal/backoff"
)

const (
	defaultBaseURL   = "https://api.anilibria.app/api/v1"
	defaultMediaBase = "https://www.anilibria.tv"
	defaultTimeout   = 30 * time.Second
	defaultRetries   = 3
	maxLoggedBody    = 300
)

// Client fetches titles from the catalog API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retries    int
	retry      backoff.Policy
	decoder    decoder
	observer   RequestObserver
	log        *slog.Logger
}

// RequestObserver is notified once per HTTP attempt. status is 0 on
// transport errors.
type RequestObserver interface {
	ObserveCatalogRequest(endpoint string, status int, elapsed time.Duration)
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithMediaBase sets the host used to resolve relative poster and preview paths.
func WithMediaBase(u string) Option {
	return func(c *Client) {
		c.decoder.mediaBase = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n < 0 {
			n = 0
		}
		c.retries = n
	}
}

// WithRetryPolicy sets the delay curve between retries.
func WithRetryPolicy(p backoff.Policy) Option {
	return func(c *Client) {
		c.retry = p
	}
}

// WithObserver registers a per-request observer, typically metrics.
func WithObserver(o RequestObserver) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a new catalog client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		retries: defaultRetries,
		retry: backoff.Policy{
			Base:   time.Second,
			Max:    8 * time.Second,
			Jitter: 500 * time.Millisecond,
		},
		decoder: decoder{mediaBase: defaultMediaBase},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	c.log = c.log.With("component", "catalog")
	return c
}

// FetchAllTitles walks /titles/updates page by page. It never fails: a
// transport or decode error ends paging and whatever was collected so far is
// returned.
func (c *Client) FetchAllTitles(ctx context.Context, pageSize, maxPages int) []Title {
	return c.paginate(ctx, "all", pageSize, maxPages, func(page int) (string, string) {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(pageSize))
		q.Set("page", strconv.Itoa(page))
		return "/titles/updates?" + q.Encode(), ""
	})
}

// FetchFavorites walks the favorites of the token's owner with the same
// paging rules as FetchAllTitles.
func (c *Client) FetchFavorites(ctx context.Context, token string, pageSize, maxPages int) []Title {
	return c.paginate(ctx, "favorites", pageSize, maxPages, func(page int) (string, string) {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("items_per_page", strconv.Itoa(pageSize))
		return "/users/me/favorites?" + q.Encode(), token
	})
}

// FetchTitle fetches a single title by id.
func (c *Client) FetchTitle(ctx context.Context, id int) (*Title, error) {
	body, err := c.get(ctx, "title", fmt.Sprintf("/titles/%d", id), "")
	if err != nil {
		return nil, err
	}
	t, err := c.decoder.decodeSingle(body)
	if err != nil {
		return nil, fmt.Errorf("title %d: %w", id, err)
	}
	return &t, nil
}

// paginate implements the shared paging rules. build returns the request
// path and bearer token for a page.
func (c *Client) paginate(ctx context.Context, kind string, pageSize, maxPages int, build func(page int) (string, string)) []Title {
	var result []Title
	if pageSize <= 0 || maxPages <= 0 {
		return result
	}

	for page := 1; page <= maxPages; page++ {
		if ctx.Err() != nil {
			c.log.Info("fetch canceled", "kind", kind, "page", page)
			break
		}

		path, token := build(page)
		start := time.Now()
		body, err := c.get(ctx, kind, path, token)
		if err != nil {
			c.log.Warn("page request failed", "kind", kind, "page", page, "error", err)
			break
		}

		titles, n, err := c.decoder.decodePage(body)
		if err != nil {
			c.log.Warn("page decode failed", "kind", kind, "page", page, "error", err)
			break
		}
		c.log.Debug("page fetched", "kind", kind, "page", page, "items", n,
			"elapsed_ms", time.Since(start).Milliseconds())

		if n == 0 {
			if page == 1 && token != "" {
				c.log.Warn("favorites returned no items on first page, token may be invalid")
			}
			break
		}
		result = append(result, titles...)
		if n < pageSize {
			break
		}
	}
	return result
}

// get performs a rate-limited GET with retries on transport errors, 429
// and 5xx responses.
func (c *Client) get(ctx context.Context, endpoint, path, token string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			if err := backoff.Sleep(ctx, c.retry.Delay(attempt-1)); err != nil {
				return nil, err
			}
		}

		body, retryable, err := c.do(ctx, endpoint, path, token)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			return nil, err
		}
		c.log.Debug("retrying request", "path", path, "attempt", attempt+1, "error", err)
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, endpoint, path, token string) ([]byte, bool, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, false, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(endpoint, 0, start)
		return nil, true, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	c.observe(endpoint, resp.StatusCode, start)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("catalog request failed", "status", resp.StatusCode, "path", path,
			"body", truncate(string(body), maxLoggedBody))
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		return body, false, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, false, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	default:
		return nil, false, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}
}

func (c *Client) observe(endpoint string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveCatalogRequest(endpoint, status, time.Since(start))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + " …"
}
