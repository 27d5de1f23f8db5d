// Package mediahost implements generator.MediaLibrary over the media host's
// JSON API.
package mediahost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vmunix/anistrm/internal/generator"
)

// ErrUnauthorized is returned when the API key is rejected.
var ErrUnauthorized = errors.New("media host: unauthorized")

const apiKeyHeader = "X-Api-Key"

// Client talks to the media host.
type Client struct {
	baseURL    string
	apiKey     string
	localPath  string // path prefix on this machine
	remotePath string // same location as seen by the host
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPathMapping translates local pointer paths to the host's view.
func WithPathMapping(localPath, remotePath string) Option {
	return func(c *Client) {
		c.localPath = localPath
		c.remotePath = remotePath
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a media host client.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "mediahost")
	return c
}

var _ generator.MediaLibrary = (*Client)(nil)

// translateToRemote converts a local path to the path the host expects.
func (c *Client) translateToRemote(path string) string {
	if c.localPath == "" || c.remotePath == "" {
		return path
	}
	if strings.HasPrefix(path, c.localPath) {
		return c.remotePath + path[len(c.localPath):]
	}
	return path
}

type item struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

type itemsResponse struct {
	Items []item `json:"items"`
}

// chapterJSON is the wire form of a chapter; positions are in seconds.
type chapterJSON struct {
	Name  string  `json:"name"`
	Start float64 `json:"start_seconds"`
}

type chaptersBody struct {
	Chapters []chapterJSON `json:"chapters"`
}

// FindItemByPath returns the id of the item indexed at path.
func (c *Client) FindItemByPath(ctx context.Context, path string) (string, error) {
	remote := c.translateToRemote(path)

	var resp itemsResponse
	if err := c.do(ctx, http.MethodGet, "/items?path="+url.QueryEscape(remote), nil, &resp); err != nil {
		return "", err
	}
	for _, it := range resp.Items {
		if it.Path == "" || it.Path == remote {
			if it.ID != "" {
				return it.ID, nil
			}
		}
	}
	return "", generator.ErrItemNotFound
}

// GetChapters returns the item's chapters.
func (c *Client) GetChapters(ctx context.Context, itemID string) ([]generator.Chapter, error) {
	var body chaptersBody
	if err := c.do(ctx, http.MethodGet, "/items/"+url.PathEscape(itemID)+"/chapters", nil, &body); err != nil {
		return nil, err
	}
	chapters := make([]generator.Chapter, 0, len(body.Chapters))
	for _, ch := range body.Chapters {
		chapters = append(chapters, generator.Chapter{
			Name:  ch.Name,
			Start: time.Duration(ch.Start * float64(time.Second)),
		})
	}
	return chapters, nil
}

// SaveChapters replaces the item's chapters.
func (c *Client) SaveChapters(ctx context.Context, itemID string, chapters []generator.Chapter) error {
	body := chaptersBody{Chapters: make([]chapterJSON, 0, len(chapters))}
	for _, ch := range chapters {
		body.Chapters = append(body.Chapters, chapterJSON{Name: ch.Name, Start: ch.Start.Seconds()})
	}
	return c.do(ctx, http.MethodPut, "/items/"+url.PathEscape(itemID)+"/chapters", body, nil)
}

// Ping checks that the host is reachable and accepts the API key.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/system/ping", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return generator.ErrItemNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		c.log.Debug("media host error", "method", method, "path", path, "status", resp.StatusCode, "body", string(snippet))
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
