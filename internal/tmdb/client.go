// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tmdb provides the catalog client used for candidate gathering.
//
// Every call acquires a permit from a shared rate limiter (the public TMDB
// quota is roughly 40 requests per 10-second window) and runs through a
// circuit breaker, so a misbehaving catalog degrades into "no candidates from
// that call" instead of cascading failures. No retry logic lives here beyond
// a single Retry-After honor on HTTP 429; a failed call simply yields an
// error the discovery engine treats as an empty source.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gocache "github.com/patrickmn/go-cache"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"reelquest/internal/config"
	"reelquest/internal/logging"
	"reelquest/internal/metrics"
	"reelquest/internal/models"
)

// maxErrorBodySize limits how much of an error response body is read for
// diagnostics.
const maxErrorBodySize = 64 * 1024

// SortPopularity and SortRating are the two discover sort orders the engine
// issues.
const (
	SortPopularity = "popularity.desc"
	SortRating     = "vote_average.desc"
)

// DiscoverQuery describes a filtered discover call.
type DiscoverQuery struct {
	// GenreIDs combine with OR semantics (any match counts).
	GenreIDs []int

	// YearFrom/YearTo bound the release window; zero means unbounded.
	YearFrom int
	YearTo   int

	// RuntimeMaxMinutes caps runtime server-side; zero means no cap.
	RuntimeMaxMinutes int

	// MinVoteCount is the quality floor suppressing long-tail entries.
	MinVoteCount int

	// PersonIDs filter to entries crediting all listed people.
	PersonIDs []int

	// SortBy is SortPopularity or SortRating.
	SortBy string

	Page int
}

// Client is the TMDB v3 API client.
//
// Thread safety: all methods are safe for concurrent use; the limiter and
// breaker are shared across callers by design.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	genres     *gocache.Cache
}

// NewClient creates a catalog client from configuration.
func NewClient(cfg *config.TMDBConfig) *Client {
	window := cfg.RateLimitWindow
	if window <= 0 {
		window = 10 * time.Second
	}
	requests := cfg.RateLimitRequests
	if requests <= 0 {
		requests = 40
	}

	breakerName := "tmdb-api"
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.BreakerFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		// rate.Every spreads the window quota into a steady per-request
		// interval; burst allows the initial fan-out to proceed unthrottled.
		limiter: rate.NewLimiter(rate.Every(window/time.Duration(requests)), requests),
		breaker: breaker,
		genres:  gocache.New(cfg.GenreCacheTTL, cfg.GenreCacheTTL),
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// get performs a rate-limited, breaker-protected GET and returns the body.
func (c *Client) get(ctx context.Context, operation, path string, params url.Values) ([]byte, error) {
	// Limiter acquisition blocks the calling goroutine only and honors
	// cancellation.
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doRequest(ctx, path, params)
	})
	metrics.CatalogCallDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.CatalogCalls.WithLabelValues(operation, "ok").Inc()
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CatalogCalls.WithLabelValues(operation, "breaker_open").Inc()
	default:
		metrics.CatalogCalls.WithLabelValues(operation, "error").Inc()
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return body, nil
}

// doRequest issues the HTTP request. HTTP 429 is retried once after the
// server-advertised delay; everything else maps directly to success or error.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt == 0 {
			delay := retryAfter(resp)
			_ = resp.Body.Close()
			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("failed to read response: %w", readErr)
		}

		if resp.StatusCode != http.StatusOK {
			return nil, decodeError(resp.StatusCode, body)
		}
		return body, nil
	}
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Second
}

func decodeError(status int, body []byte) error {
	if len(body) > maxErrorBodySize {
		body = body[:maxErrorBodySize]
	}
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.StatusMessage != "" {
		return fmt.Errorf("catalog returned status %d: %s", status, apiErr.StatusMessage)
	}
	return fmt.Errorf("catalog returned status %d: %s", status, string(body))
}

// SearchMulti performs a multi-type search returning movie, TV and person
// rows together.
func (c *Client) SearchMulti(ctx context.Context, query string, page int) ([]MultiResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	body, err := c.get(ctx, "search_multi", "/search/multi", params)
	if err != nil {
		return nil, err
	}

	var resp SearchMultiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search_multi response: %w", err)
	}
	return resp.Results, nil
}

// Discover issues a filtered discover query for the given media type.
func (c *Client) Discover(ctx context.Context, mt models.MediaType, q DiscoverQuery) ([]MediaResult, error) {
	path := "/discover/movie"
	operation := "discover_movie"
	if mt == models.MediaTypeShow {
		path = "/discover/tv"
		operation = "discover_tv"
	}

	body, err := c.get(ctx, operation, path, discoverParams(mt, q))
	if err != nil {
		return nil, err
	}

	var resp MediaPageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", operation, err)
	}
	return resp.Results, nil
}

func discoverParams(mt models.MediaType, q DiscoverQuery) url.Values {
	params := url.Values{}
	params.Set("include_adult", "false")

	if len(q.GenreIDs) > 0 {
		// Pipe-joined ids are OR semantics on TMDB; comma would be AND and
		// over-constrain vague queries.
		params.Set("with_genres", joinInts(q.GenreIDs, "|"))
	}
	if q.MinVoteCount > 0 {
		params.Set("vote_count.gte", strconv.Itoa(q.MinVoteCount))
	}
	if q.RuntimeMaxMinutes > 0 {
		params.Set("with_runtime.lte", strconv.Itoa(q.RuntimeMaxMinutes))
	}
	if len(q.PersonIDs) > 0 {
		params.Set("with_people", joinInts(q.PersonIDs, ","))
	}
	if q.SortBy != "" {
		params.Set("sort_by", q.SortBy)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}

	dateField := "primary_release_date"
	if mt == models.MediaTypeShow {
		dateField = "first_air_date"
	}
	if q.YearFrom > 0 {
		params.Set(dateField+".gte", fmt.Sprintf("%d-01-01", q.YearFrom))
	}
	if q.YearTo > 0 {
		params.Set(dateField+".lte", fmt.Sprintf("%d-12-31", q.YearTo))
	}

	return params
}

func joinInts(ids []int, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, sep)
}

// Similar returns catalog entries similar to the given title.
func (c *Client) Similar(ctx context.Context, mt models.MediaType, id int) ([]MediaResult, error) {
	return c.mediaList(ctx, mt, id, "similar")
}

// Recommendations returns the catalog's recommendations for the given title.
func (c *Client) Recommendations(ctx context.Context, mt models.MediaType, id int) ([]MediaResult, error) {
	return c.mediaList(ctx, mt, id, "recommendations")
}

func (c *Client) mediaList(ctx context.Context, mt models.MediaType, id int, kind string) ([]MediaResult, error) {
	segment := "movie"
	if mt == models.MediaTypeShow {
		segment = "tv"
	}
	operation := segment + "_" + kind

	body, err := c.get(ctx, operation, fmt.Sprintf("/%s/%d/%s", segment, id, kind), nil)
	if err != nil {
		return nil, err
	}

	var resp MediaPageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", operation, err)
	}
	return resp.Results, nil
}

// GenreMap returns the lowercase genre-name to id mapping for a media type.
// The map is memoized with a TTL since genre taxonomies change rarely.
func (c *Client) GenreMap(ctx context.Context, mt models.MediaType) (map[string]int, error) {
	cacheKey := "genres:" + string(mt)
	if cached, ok := c.genres.Get(cacheKey); ok {
		return cached.(map[string]int), nil
	}

	segment := "movie"
	if mt == models.MediaTypeShow {
		segment = "tv"
	}

	body, err := c.get(ctx, "genre_list", "/genre/"+segment+"/list", nil)
	if err != nil {
		return nil, err
	}

	var resp GenreListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode genre_list response: %w", err)
	}

	genreMap := make(map[string]int, len(resp.Genres))
	for _, g := range resp.Genres {
		genreMap[strings.ToLower(g.Name)] = g.ID
	}
	c.genres.Set(cacheKey, genreMap, gocache.DefaultExpiration)
	return genreMap, nil
}

// MovieDetails fetches full movie details; the pipeline uses it for runtime
// lookups on short-listed candidates.
func (c *Client) MovieDetails(ctx context.Context, id int) (*MovieDetails, error) {
	body, err := c.get(ctx, "movie_details", fmt.Sprintf("/movie/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var details MovieDetails
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, fmt.Errorf("failed to decode movie_details response: %w", err)
	}
	return &details, nil
}
