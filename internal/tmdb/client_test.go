package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/moviebot/core/config"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(coreconfig.CatalogConfig{
		APIKey:            "test-key",
		BaseURL:           srv.URL,
		Language:          "ru-RU",
		MaxConcurrent:     5,
		MaxRetries:        4,
		BaseRetryDelaySec: 0,
		MaxPages:          50,
	})
	c.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return c, srv
}

func TestGetRetriesOnRateLimitUntilExhausted(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := c.SearchByText(context.Background(), "dune", SearchOptions{})
	require.ErrorIs(t, err, ErrExhausted)
	assert.EqualValues(t, 4, calls.Load())
}

func TestGetAbortsOnBadRequest(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))

	_, err := c.SearchByText(context.Background(), "dune", SearchOptions{})
	require.ErrorIs(t, err, ErrBadRequest)
	assert.EqualValues(t, 1, calls.Load(), "bad request must not be retried")
}

func TestGetAbortsOnUnexpectedStatus(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := c.SearchByText(context.Background(), "dune", SearchOptions{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrExhausted)
}

func TestGetAbortsOnServerError(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.SearchByText(context.Background(), "dune", SearchOptions{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrExhausted)
	assert.EqualValues(t, 1, calls.Load(), "server errors must not be retried")
}

func TestBaseParamsOmitBlankAPIKey(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"total_pages":1,"results":[]}`))
	}))
	t.Cleanup(srv.Close)

	c := New(coreconfig.CatalogConfig{BaseURL: srv.URL, MaxRetries: 1})
	c.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }

	_, err := c.SearchByText(context.Background(), "dune", SearchOptions{})
	require.NoError(t, err)
	assert.False(t, got.Has("api_key"))
}

func TestFetchAllPagesFansOut(t *testing.T) {
	var (
		mu    sync.Mutex
		pages = map[string]int{}
	)
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Query().Get("page")
		mu.Lock()
		pages[p]++
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch p {
		case "1":
			_, _ = w.Write([]byte(`{"page":1,"total_pages":3,"results":[{"id":1,"title":"a"},{"id":2,"title":"b"}]}`))
		case "2":
			_, _ = w.Write([]byte(`{"page":2,"total_pages":3,"results":[{"id":3,"title":"c"}]}`))
		case "3":
			_, _ = w.Write([]byte(`{"page":3,"total_pages":3,"results":[{"id":4,"title":"d"}]}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))

	movies, err := c.SearchByText(context.Background(), "dune", SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, movies, 4)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[string]int{"1": 1, "2": 1, "3": 1}, pages)
}

func TestFetchAllPagesSkipsFailedTailPages(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`{"page":1,"total_pages":2,"results":[{"id":1,"title":"a"}]}`))
		default:
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}))

	movies, err := c.SearchByText(context.Background(), "dune", SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, movies, 1, "failed tail page must be skipped, not fatal")
}

func TestFetchAllPagesCapsTotalPages(t *testing.T) {
	var calls atomic.Int32
	srvHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"total_pages":500,"results":[{"id":1,"title":"a"}]}`))
	})
	srv := httptest.NewServer(srvHandler)
	t.Cleanup(srv.Close)

	c := New(coreconfig.CatalogConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		MaxRetries: 1,
		MaxPages:   3,
	})
	c.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }

	_, err := c.SearchByText(context.Background(), "dune", SearchOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load(), "page count must honor the configured cap")
}

func TestGenresCachedAfterFirstFetch(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"genres":[{"id":28,"name":"Боевик"},{"id":35,"name":"Комедия"}]}`))
	}))

	first := c.Genres(context.Background())
	second := c.Genres(context.Background())

	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, map[string]int{"боевик": 28, "комедия": 35}, first)
	assert.Equal(t, first, second)
}

func TestGenresEmptyOnErrorIsNotCached(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if n == 1 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"genres":[{"id":18,"name":"Драма"}]}`))
	}))

	assert.Empty(t, c.Genres(context.Background()))
	assert.Equal(t, map[string]int{"драма": 18}, c.Genres(context.Background()))
	assert.EqualValues(t, 2, calls.Load())
}

func TestDiscoverOmitsBlankParams(t *testing.T) {
	var got url.Values
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"total_pages":1,"results":[]}`))
	}))

	_, err := c.Discover(context.Background(), DiscoverFilter{
		GenreIDs: []int{28, 35},
		SortBy:   "popularity.desc",
	})
	require.NoError(t, err)

	assert.Equal(t, "28,35", got.Get("with_genres"))
	assert.Equal(t, "false", got.Get("include_adult"))
	assert.Equal(t, "popularity.desc", got.Get("sort_by"))
	assert.False(t, got.Has("primary_release_year"))
	assert.False(t, got.Has("vote_average.gte"))
	assert.False(t, got.Has("region"))
}

func TestDiscoverSendsZeroRatingWhenSet(t *testing.T) {
	var got url.Values
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"total_pages":1,"results":[]}`))
	}))

	_, err := c.Discover(context.Background(), DiscoverFilter{MinRating: 0, HasMinRating: true})
	require.NoError(t, err)
	assert.Equal(t, "0", got.Get("vote_average.gte"))
}

func TestPosterURL(t *testing.T) {
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", PosterURL("/abc.jpg"))
	assert.Empty(t, PosterURL(""))
}

func TestDetailsDecodesCreditsAndVideos(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/603", r.URL.Path)
		assert.Equal(t, "credits,videos", r.URL.Query().Get("append_to_response"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":603,"title":"Матрица","runtime":136,
			"genres":[{"id":28,"name":"Боевик"}],
			"credits":{"cast":[{"name":"Keanu Reeves","character":"Neo","order":0}],
			           "crew":[{"name":"Lana Wachowski","job":"Director"}]},
			"videos":{"results":[{"key":"abc123","site":"YouTube","type":"Trailer"}]}
		}`))
	}))

	d, err := c.Details(context.Background(), 603)
	require.NoError(t, err)
	assert.Equal(t, "Матрица", d.Title)
	assert.Equal(t, "Lana Wachowski", d.Director())
	assert.Equal(t, "abc123", d.Trailer())
}
