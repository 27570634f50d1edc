package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.themoviedb.org"

// TMDB allows roughly 50 requests/second; stay under it client-side so the
// aggregator's fan-out doesn't trip the server limiter in the first place.
const defaultRequestsPerSecond = 40

// Backoff applied to a 429 response that carries no Retry-After header.
const defaultRetryAfter = time.Second

// Sentinel errors for TMDB API responses.
var (
	ErrNotFound     = errors.New("title not found")
	ErrUnauthorized = errors.New("unauthorized: invalid or expired access token")
)

const movieAppend = "keywords,recommendations,similar,release_dates,translations,reviews"
const showAppend = "keywords,content_ratings,translations,reviews"

// Client is a TMDB API v3 client using bearer token authentication.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	sleep      func(ctx context.Context, d time.Duration) error
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

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "tmdb")
	}
}

// WithRequestsPerSecond overrides the client-side rate limit.
func WithRequestsPerSecond(n int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(n), n)
	}
}

// WithSleep replaces the backoff sleep used after a 429 (for testing with
// a fake clock).
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// New creates a new TMDB API client.
func New(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultRequestsPerSecond),
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// doRequest performs an authenticated GET, waiting out 429 responses.
// Each retry is gated by the server's Retry-After hint, so a misbehaving
// upstream throttles us rather than the other way around.
func (c *Client) doRequest(ctx context.Context, endpoint string) (*http.Response, error) {
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("execute request: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		delay := retryAfter(resp)
		resp.Body.Close()

		if c.log != nil {
			c.log.Debug("rate limited, backing off", "endpoint", endpoint, "delay", delay)
		}
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// retryAfter reads the Retry-After header in seconds.
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultRetryAfter
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	resp, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// checkResponse maps the HTTP status to sentinel errors.
func checkResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return fmt.Errorf("TMDB API error: %s", resp.Status)
	}
}

// GetMovie fetches movie details by TMDB ID. Keywords, recommendations,
// similar titles, certifications, translations and reviews are appended to
// the same call.
func (c *Client) GetMovie(ctx context.Context, id int64) (*Movie, error) {
	start := time.Now()

	endpoint := fmt.Sprintf("/3/movie/%d?append_to_response=%s", id, movieAppend)
	var movie Movie
	if err := c.getJSON(ctx, endpoint, &movie); err != nil {
		return nil, err
	}

	if c.log != nil {
		c.log.Debug("fetched movie", "id", id, "title", movie.Title, "duration_ms", time.Since(start).Milliseconds())
	}
	return &movie, nil
}

// GetShow fetches TV show details by TMDB ID. Unlike movies, the show
// recommendation and similar lists are not appendable and need
// GetShowRecommendations / GetShowSimilar.
func (c *Client) GetShow(ctx context.Context, id int64) (*Show, error) {
	start := time.Now()

	endpoint := fmt.Sprintf("/3/tv/%d?append_to_response=%s", id, showAppend)
	var show Show
	if err := c.getJSON(ctx, endpoint, &show); err != nil {
		return nil, err
	}

	if c.log != nil {
		c.log.Debug("fetched show", "id", id, "name", show.Name, "duration_ms", time.Since(start).Milliseconds())
	}
	return &show, nil
}

// GetShowRecommendations fetches the recommendation list for a show.
func (c *Client) GetShowRecommendations(ctx context.Context, id int64) ([]ListItem, error) {
	endpoint := fmt.Sprintf("/3/tv/%d/recommendations", id)
	var resp list
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// GetShowSimilar fetches the similar-titles list for a show.
func (c *Client) GetShowSimilar(ctx context.Context, id int64) ([]ListItem, error) {
	endpoint := fmt.Sprintf("/3/tv/%d/similar", id)
	var resp list
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// SearchMulti searches movies and TV shows in a single query.
// Non-title results (people, collections) are filtered out.
func (c *Client) SearchMulti(ctx context.Context, query string) ([]ListItem, error) {
	start := time.Now()

	endpoint := "/3/search/multi?query=" + url.QueryEscape(query)
	var resp list
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	results := make([]ListItem, 0, len(resp.Results))
	for _, item := range resp.Results {
		if item.MediaType == "movie" || item.MediaType == "tv" {
			results = append(results, item)
		}
	}

	if c.log != nil {
		c.log.Debug("search completed", "query", query, "results", len(results), "duration_ms", time.Since(start).Milliseconds())
	}
	return results, nil
}
