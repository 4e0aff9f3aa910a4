package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"log/slog"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	coreconfig "github.com/m3rciful/moviebot/core/config"
	"github.com/m3rciful/moviebot/core/logger"
	"github.com/m3rciful/moviebot/core/telegram/netutil"
)

const logComponent = "tmdb"

var (
	// ErrBadRequest marks a 400 response; the request will never succeed as built.
	ErrBadRequest = errors.New("tmdb: bad request")
	// ErrExhausted marks a request that ran out of retry attempts.
	ErrExhausted = errors.New("tmdb: retry attempts exhausted")
	// ErrUnavailable marks a request rejected by the open circuit breaker.
	ErrUnavailable = errors.New("tmdb: catalog unavailable")
)

type apiResponse struct {
	status int
	body   []byte
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("tmdb: http %d", e.code)
}

// Client talks to the TMDB HTTP API with bounded concurrency and retries.
type Client struct {
	cfg  coreconfig.CatalogConfig
	http *http.Client
	sem  *semaphore.Weighted
	cb   *gobreaker.CircuitBreaker[apiResponse]
	sf   singleflight.Group

	genreMu      sync.RWMutex
	genresByName map[string]int
	genresByID   map[int]string

	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a Client from catalog configuration.
func New(cfg coreconfig.CatalogConfig) *Client {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 5
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 4
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 50
	}
	if cfg.Language == "" {
		cfg.Language = "ru-RU"
	}
	timeout := 30 * time.Second
	if cfg.RequestTimeoutSec > 0 {
		timeout = time.Duration(cfg.RequestTimeoutSec) * time.Second
	}

	c := &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: timeout},
		sem:   semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		sleep: sleepCtx,
	}

	c.cb = gobreaker.NewCircuitBreaker[apiResponse](gobreaker.Settings{
		Name:     "tmdb",
		Interval: time.Minute,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 8
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), logComponent, "breaker.state",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return c
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) baseParams() url.Values {
	v := url.Values{}
	if c.cfg.APIKey != "" {
		v.Set("api_key", c.cfg.APIKey)
	}
	if c.cfg.Language != "" {
		v.Set("language", c.cfg.Language)
	}
	return v
}

func (c *Client) retryDelay(attempt int) time.Duration {
	base := c.cfg.BaseRetryDelaySec
	if base < 0 {
		base = 0
	}
	return time.Duration(base * math.Pow(2, float64(attempt-1)) * float64(time.Second))
}

// do performs a single HTTP attempt under the concurrency permit.
func (c *Client) do(ctx context.Context, u string) (apiResponse, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return apiResponse{}, err
	}
	defer c.sem.Release(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return apiResponse{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return apiResponse{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiResponse{}, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return apiResponse{}, &statusError{code: resp.StatusCode}
	}
	return apiResponse{status: resp.StatusCode, body: body}, nil
}

// get fetches path with params, retrying per the backoff policy, and decodes
// a 200 body into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.cfg.BaseURL + path + "?" + params.Encode()

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		resp, err := c.cb.Execute(func() (apiResponse, error) {
			return c.do(ctx, u)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return ErrUnavailable
			}
			if errors.Is(err, context.Canceled) {
				return err
			}
			// Unexpected statuses are permanent: the breaker has already
			// counted the failure, retrying the same request cannot help.
			var se *statusError
			if errors.As(err, &se) {
				logger.Error(ctx, logComponent, "request.failed",
					slog.String("path", path),
					slog.Int("status", se.code),
				)
				return err
			}
			lastErr = err
			logger.Warn(ctx, logComponent, "request.transient",
				slog.String("path", path),
				slog.Int("attempt", attempt),
				slog.Bool("timeout", netutil.IsTimeout(err)),
				slog.String("err", err.Error()),
			)
			if serr := c.sleep(ctx, time.Second); serr != nil {
				return serr
			}
			continue
		}

		switch resp.status {
		case http.StatusOK:
			if out == nil {
				return nil
			}
			return json.Unmarshal(resp.body, out)
		case http.StatusTooManyRequests:
			delay := c.retryDelay(attempt)
			logger.Warn(ctx, logComponent, "request.rate_limited",
				slog.String("path", path),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
			)
			lastErr = &statusError{code: resp.status}
			if serr := c.sleep(ctx, delay); serr != nil {
				return serr
			}
			continue
		case http.StatusBadRequest:
			logger.Error(ctx, logComponent, "request.bad_request",
				slog.String("path", path),
				slog.String("body", logger.SanitizeLimit(string(resp.body), 256)),
			)
			return ErrBadRequest
		default:
			logger.Error(ctx, logComponent, "request.failed",
				slog.String("path", path),
				slog.Int("status", resp.status),
			)
			return &statusError{code: resp.status}
		}
	}

	if lastErr != nil {
		return fmt.Errorf("%w: %w", ErrExhausted, lastErr)
	}
	return ErrExhausted
}

// Genres returns the genre catalog as a lowercased name to id map. The result
// is cached after the first successful fetch; concurrent callers share one
// in-flight request. On failure it returns an empty map and stays uncached.
func (c *Client) Genres(ctx context.Context) map[string]int {
	c.genreMu.RLock()
	if c.genresByName != nil {
		cached := c.genresByName
		c.genreMu.RUnlock()
		return cached
	}
	c.genreMu.RUnlock()

	v, _, _ := c.sf.Do("genres", func() (any, error) {
		var list genreList
		params := c.baseParams()
		if err := c.get(ctx, "/genre/movie/list", params, &list); err != nil {
			logger.Warn(ctx, logComponent, "genres.fetch.failed",
				slog.String("status", "degraded"),
				slog.String("err", err.Error()),
			)
			return map[string]int{}, nil
		}

		byName := make(map[string]int, len(list.Genres))
		byID := make(map[int]string, len(list.Genres))
		for _, g := range list.Genres {
			byName[strings.ToLower(g.Name)] = g.ID
			byID[g.ID] = g.Name
		}
		if len(byName) > 0 {
			c.genreMu.Lock()
			c.genresByName = byName
			c.genresByID = byID
			c.genreMu.Unlock()
		}
		logger.Info(ctx, logComponent, "genres.fetched",
			slog.Int("count", len(byName)),
			slog.String("cache", "miss"),
		)
		return byName, nil
	})
	return v.(map[string]int)
}

// GenresByID returns the id to display-name genre map, fetching the
// catalog on first use.
func (c *Client) GenresByID(ctx context.Context) map[int]string {
	c.Genres(ctx)
	c.genreMu.RLock()
	defer c.genreMu.RUnlock()
	if c.genresByID == nil {
		return map[int]string{}
	}
	return c.genresByID
}

// GenreNames resolves genre ids to display names using the cached catalog.
func (c *Client) GenreNames(ctx context.Context, ids []int) []string {
	c.Genres(ctx)
	c.genreMu.RLock()
	byID := c.genresByID
	c.genreMu.RUnlock()

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// SearchOptions narrows text search.
type SearchOptions struct {
	Year         int
	IncludeAdult bool
	Language     string
}

// SearchByText queries the text search endpoint across all result pages.
func (c *Client) SearchByText(ctx context.Context, query string, opts SearchOptions) ([]Movie, error) {
	params := c.baseParams()
	if opts.Language != "" {
		params.Set("language", opts.Language)
	}
	params.Set("query", query)
	params.Set("include_adult", strconv.FormatBool(opts.IncludeAdult))
	if opts.Year > 0 {
		params.Set("year", strconv.Itoa(opts.Year))
	}
	return c.fetchAllPages(ctx, "/search/movie", params)
}

// DiscoverFilter shapes a discover request. Zero values are omitted from the
// wire request; HasMinRating distinguishes "no threshold" from 0.0.
type DiscoverFilter struct {
	GenreIDs     []int
	Year         int
	MinRating    float64
	HasMinRating bool
	Language     string
	Region       string
	IncludeAdult bool
	SortBy       string
}

// Discover queries the discover endpoint across all result pages.
func (c *Client) Discover(ctx context.Context, f DiscoverFilter) ([]Movie, error) {
	params := c.baseParams()
	if f.Language != "" {
		params.Set("language", f.Language)
	}
	if len(f.GenreIDs) > 0 {
		ids := make([]string, len(f.GenreIDs))
		for i, id := range f.GenreIDs {
			ids[i] = strconv.Itoa(id)
		}
		params.Set("with_genres", strings.Join(ids, ","))
	}
	if f.Year > 0 {
		params.Set("primary_release_year", strconv.Itoa(f.Year))
	}
	if f.HasMinRating {
		params.Set("vote_average.gte", strconv.FormatFloat(f.MinRating, 'f', -1, 64))
	}
	if f.Region != "" {
		params.Set("region", f.Region)
	}
	params.Set("include_adult", strconv.FormatBool(f.IncludeAdult))
	if f.SortBy != "" {
		params.Set("sort_by", f.SortBy)
	}
	return c.fetchAllPages(ctx, "/discover/movie", params)
}

// Details fetches the full movie card with credits and videos appended.
func (c *Client) Details(ctx context.Context, movieID int64) (*Details, error) {
	params := c.baseParams()
	params.Set("append_to_response", "credits,videos")

	var d Details
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(movieID, 10), params, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// fetchAllPages downloads page 1 serially to learn the page count, then the
// remaining pages concurrently. Pages that fail after retries are skipped so
// a partial tail still yields results.
func (c *Client) fetchAllPages(ctx context.Context, path string, base url.Values) ([]Movie, error) {
	params := cloneValues(base)
	params.Set("page", "1")

	var first page
	if err := c.get(ctx, path, params, &first); err != nil {
		return nil, err
	}

	totalPages := first.TotalPages
	if totalPages > c.cfg.MaxPages {
		totalPages = c.cfg.MaxPages
	}

	movies := make([]Movie, 0, len(first.Results))
	movies = append(movies, first.Results...)
	if totalPages <= 1 {
		return movies, nil
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for p := 2; p <= totalPages; p++ {
		pageNo := p
		g.Go(func() error {
			pageParams := cloneValues(base)
			pageParams.Set("page", strconv.Itoa(pageNo))

			var pg page
			if err := c.get(ctx, path, pageParams, &pg); err != nil {
				logger.Warn(ctx, logComponent, "page.skipped",
					slog.String("path", path),
					slog.Int("page", pageNo),
					slog.String("err", err.Error()),
				)
				return nil
			}
			mu.Lock()
			movies = append(movies, pg.Results...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return movies, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
