package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hbollon/go-edlib"
)

const defaultBaseURL = "https://api.themoviedb.org"
const defaultCacheTTL = 24 * time.Hour

var (
	// ErrNotFound is returned when a movie doesn't exist in TMDB.
	ErrNotFound = errors.New("movie not found")

	// ErrNoAPIKey is returned when the client has no API key.
	ErrNoAPIKey = errors.New("tmdb api key not configured")
)

// Client is a TMDB API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *cache
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithCacheTTL sets the cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = newCache(ttl)
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: newCache(defaultCacheTTL),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "tmdb")
	return c
}

// getJSON fetches path with params and decodes the body into v.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("TMDB API error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// GetMovie fetches movie metadata by TMDB ID.
func (c *Client) GetMovie(ctx context.Context, tmdbID int64) (*Movie, error) {
	key := "movie:" + strconv.FormatInt(tmdbID, 10)
	if v, ok := c.cache.get(key); ok {
		return v.(*Movie), nil
	}

	var movie Movie
	if err := c.getJSON(ctx, fmt.Sprintf("/3/movie/%d", tmdbID), nil, &movie); err != nil {
		return nil, err
	}

	c.cache.set(key, &movie)
	return &movie, nil
}

// Query is a poster search.
type Query struct {
	Title string
	Year  int
	Kind  MediaKind // defaults to movie
}

// Search returns matches for q ordered by title similarity, best first.
// Ties keep TMDB's popularity order.
func (c *Client) Search(ctx context.Context, q Query) ([]Result, error) {
	kind := q.Kind
	if kind == "" {
		kind = KindMovie
	}

	key := fmt.Sprintf("search:%s:%d:%s", kind, q.Year, strings.ToLower(q.Title))
	if v, ok := c.cache.get(key); ok {
		return slices.Clone(v.([]Result)), nil
	}

	params := url.Values{}
	params.Set("query", q.Title)
	if q.Year > 0 {
		if kind == KindTV {
			params.Set("first_air_date_year", strconv.Itoa(q.Year))
		} else {
			params.Set("year", strconv.Itoa(q.Year))
		}
	}

	var body searchResponse
	if err := c.getJSON(ctx, "/3/search/"+string(kind), params, &body); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(body.Results))
	for _, e := range body.Results {
		r := e.result(kind)
		r.Score = similarity(q.Title, r.Title)
		results = append(results, r)
	}
	slices.SortStableFunc(results, func(a, b Result) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	c.log.Debug("search complete", "kind", kind, "query", q.Title, "year", q.Year, "results", len(results))
	c.cache.set(key, results)
	return slices.Clone(results), nil
}

// similarity compares titles with Jaro-Winkler after case and whitespace
// folding.
func similarity(a, b string) float64 {
	norm := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(s)), " ")
	}
	return float64(edlib.JaroWinklerSimilarity(norm(a), norm(b)))
}
