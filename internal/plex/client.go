// Package plex is a client for the Plex Media Server API: library listing,
// paginated item enumeration, poster download, poster upload and locking.
package plex

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Default timeouts used when Options leaves them zero.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultTimeout        = 30 * time.Second
)

// DefaultMaxImageBytes bounds a single poster download.
const DefaultMaxImageBytes = 50 << 20

// Options configures the HTTP transport.
type Options struct {
	ConnectTimeout time.Duration
	Timeout        time.Duration
	MaxImageBytes  int64 // 0 uses DefaultMaxImageBytes
}

// Client interacts with the Plex Media Server API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxImage   int64
	log        *slog.Logger
}

// NewClient creates a new Plex client.
func NewClient(baseURL, token string, opts Options, log *slog.Logger) *Client {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = DefaultMaxImageBytes
	}
	if log == nil {
		log = slog.Default()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: opts.ConnectTimeout}).DialContext

	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		token:    token,
		maxImage: opts.MaxImageBytes,
		log:      log.With("component", "plex"),
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
	}
}

// newRequest builds an authenticated request for path, which may carry a
// query string.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/xml")
	return req, nil
}

// do executes req and returns the response when the status is 2xx.
func (c *Client) do(op string, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Op: op, Path: req.URL.Path, Err: fmt.Errorf("request failed: %w", err)}
	}

	c.log.Debug("plex request",
		"op", op,
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		sentinel := ErrUnexpectedStatus
		if resp.StatusCode == http.StatusNotFound {
			sentinel = ErrNotFound
		}
		return nil, &APIError{Op: op, Path: req.URL.Path, StatusCode: resp.StatusCode, Err: sentinel}
	}
	return resp, nil
}

// getXML fetches path and decodes the XML body into v.
func (c *Client) getXML(ctx context.Context, op, path string, header http.Header, v any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	for k, vals := range header {
		for _, val := range vals {
			req.Header.Add(k, val)
		}
	}

	resp, err := c.do(op, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := xml.NewDecoder(resp.Body).Decode(v); err != nil {
		return &APIError{Op: op, Path: req.URL.Path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// GetIdentity returns the Plex server name and version.
func (c *Client) GetIdentity(ctx context.Context) (*Identity, error) {
	var result identityResponse
	if err := c.getXML(ctx, "identity", "/", nil, &result); err != nil {
		return nil, err
	}
	return &Identity{
		Name:    result.FriendlyName,
		Version: result.Version,
	}, nil
}

// GetSections returns all library sections.
func (c *Client) GetSections(ctx context.Context) ([]Section, error) {
	var result sectionsResponse
	if err := c.getXML(ctx, "sections", "/library/sections", nil, &result); err != nil {
		return nil, err
	}
	return result.Sections, nil
}

// pageHeader sets the pagination headers Plex reads.
func pageHeader(start, size int) http.Header {
	h := http.Header{}
	h.Set("X-Plex-Container-Start", strconv.Itoa(start))
	h.Set("X-Plex-Container-Size", strconv.Itoa(size))
	return h
}

func (c *Client) listPage(ctx context.Context, op, path string, start, size int) (*Page, error) {
	var result containerResponse
	if err := c.getXML(ctx, op, path, pageHeader(start, size), &result); err != nil {
		return nil, err
	}

	total := result.TotalSize
	if total == 0 {
		// Servers that ignore pagination return everything at once.
		total = start + result.Size
	}
	return &Page{
		Items:     result.items(),
		Offset:    start,
		TotalSize: total,
	}, nil
}

// ListItems returns one page of the movies or shows in a section.
func (c *Client) ListItems(ctx context.Context, sectionKey string, start, size int) (*Page, error) {
	return c.listPage(ctx, "items", "/library/sections/"+url.PathEscape(sectionKey)+"/all", start, size)
}

// ListCollections returns one page of the collections in a section.
func (c *Client) ListCollections(ctx context.Context, sectionKey string, start, size int) (*Page, error) {
	return c.listPage(ctx, "collections", "/library/sections/"+url.PathEscape(sectionKey)+"/collections", start, size)
}

// ListChildren returns the children of an item, such as a show's seasons.
func (c *Client) ListChildren(ctx context.Context, ratingKey string) ([]Item, error) {
	var result containerResponse
	if err := c.getXML(ctx, "children", "/library/metadata/"+url.PathEscape(ratingKey)+"/children", nil, &result); err != nil {
		return nil, err
	}
	return result.items(), nil
}

// GetMetadata returns a single item.
func (c *Client) GetMetadata(ctx context.Context, ratingKey string) (*Item, error) {
	var result containerResponse
	if err := c.getXML(ctx, "metadata", "/library/metadata/"+url.PathEscape(ratingKey), nil, &result); err != nil {
		return nil, err
	}
	items := result.items()
	if len(items) == 0 {
		return nil, &APIError{Op: "metadata", Path: ratingKey, Err: ErrNotFound}
	}
	return &items[0], nil
}

// FetchImage downloads the image at a Plex-relative path such as an item's
// thumb attribute.
func (c *Client) FetchImage(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, &APIError{Op: "image", Err: ErrNotFound}
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "image/*")

	resp, err := c.do("image", req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxImage+1))
	if err != nil {
		return nil, &APIError{Op: "image", Path: path, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(data)) > c.maxImage {
		return nil, &APIError{Op: "image", Path: path, Err: fmt.Errorf("%w: over %d bytes", ErrImageTooLarge, c.maxImage)}
	}
	return data, nil
}

// uploadStrategy is one endpoint/verb combination for a poster upload.
type uploadStrategy struct {
	method string
	path   string
}

func uploadStrategies(ratingKey string, collection bool) []uploadStrategy {
	key := url.PathEscape(ratingKey)
	metadata := []uploadStrategy{
		{http.MethodPost, "/library/metadata/" + key + "/posters"},
		{http.MethodPut, "/library/metadata/" + key + "/posters"},
	}
	if !collection {
		return metadata[:1]
	}
	return append([]uploadStrategy{
		{http.MethodPost, "/library/collections/" + key + "/posters"},
		{http.MethodPut, "/library/collections/" + key + "/posters"},
	}, metadata...)
}

// UploadPoster sends image bytes as the poster of an item. Collections try
// several endpoints in order; the first 2xx wins and the last failure is
// returned when none succeeds.
func (c *Client) UploadPoster(ctx context.Context, ratingKey string, data []byte, collection bool) error {
	var lastErr error
	for _, s := range uploadStrategies(ratingKey, collection) {
		req, err := c.newRequest(ctx, s.method, s.path, bytes.NewReader(data))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", http.DetectContentType(data))

		resp, err := c.do("upload", req)
		if err != nil {
			lastErr = err
			c.log.Debug("poster upload strategy failed", "method", s.method, "path", s.path, "error", err)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		_ = resp.Body.Close()
		c.log.Info("poster uploaded", "rating_key", ratingKey, "method", s.method, "path", s.path)
		return nil
	}
	return fmt.Errorf("%w: %w", ErrAllStrategiesFailed, lastErr)
}

// LockPoster marks the poster of an item as locked so Plex does not replace
// it during metadata refreshes.
func (c *Client) LockPoster(ctx context.Context, sectionID, ratingKey, itemType string) error {
	code := TypeCode(itemType)
	if code == 0 {
		return fmt.Errorf("lock poster: unknown item type %q", itemType)
	}

	q := url.Values{}
	q.Set("type", strconv.Itoa(code))
	q.Set("id", ratingKey)
	q.Set("thumb.locked", "1")
	path := "/library/sections/" + url.PathEscape(sectionID) + "/all?" + q.Encode()

	req, err := c.newRequest(ctx, http.MethodPut, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.do("lock", req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

// IsNotFound reports whether err means the remote item does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
