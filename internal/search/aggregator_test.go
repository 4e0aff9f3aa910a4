package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/moviebot/internal/tmdb"
)

type fakeCatalog struct {
	textMovies []tmdb.Movie
	textErr    error
	textCalls  int

	discMovies []tmdb.Movie
	discErr    error
	discFilter tmdb.DiscoverFilter
}

func (f *fakeCatalog) SearchByText(_ context.Context, _ string, _ tmdb.SearchOptions) ([]tmdb.Movie, error) {
	f.textCalls++
	return f.textMovies, f.textErr
}

func (f *fakeCatalog) Discover(_ context.Context, filter tmdb.DiscoverFilter) ([]tmdb.Movie, error) {
	f.discFilter = filter
	return f.discMovies, f.discErr
}

func movie(id int64, poster string, popularity float64) tmdb.Movie {
	return tmdb.Movie{ID: id, Title: "m", PosterPath: poster, Popularity: popularity}
}

func TestSearchSkipsTextLegWithoutTitle(t *testing.T) {
	cat := &fakeCatalog{discMovies: []tmdb.Movie{movie(1, "/p.jpg", 1)}}
	res := NewService(cat).Search(context.Background(), Filters{GenreIDs: []int{28}})

	require.False(t, res.Degraded)
	assert.Zero(t, cat.textCalls)
	assert.Len(t, res.Movies, 1)
}

func TestSearchFiltersTextLegOnly(t *testing.T) {
	// The discover leg filters server-side; only text results are narrowed
	// locally by genre and rating.
	cat := &fakeCatalog{
		textMovies: []tmdb.Movie{
			{ID: 1, PosterPath: "/a.jpg", GenreIDs: []int{28, 35}, VoteAverage: 8},
			{ID: 2, PosterPath: "/b.jpg", GenreIDs: []int{28}, VoteAverage: 8},   // missing genre 35
			{ID: 3, PosterPath: "/c.jpg", GenreIDs: []int{28, 35}, VoteAverage: 5}, // below rating
		},
		discMovies: []tmdb.Movie{
			{ID: 4, PosterPath: "/d.jpg", GenreIDs: []int{18}, VoteAverage: 2},
		},
	}
	res := NewService(cat).Search(context.Background(), Filters{
		Title:        "x",
		GenreIDs:     []int{28, 35},
		MinRating:    7,
		HasMinRating: true,
	})

	require.False(t, res.Degraded)
	ids := moviesIDs(res.Movies)
	assert.Equal(t, []int64{1, 4}, ids, "discover rows pass through untouched")
}

func TestSearchRejectsUnratedMoviesWhenRatingSet(t *testing.T) {
	cat := &fakeCatalog{
		textMovies: []tmdb.Movie{
			{ID: 1, PosterPath: "/a.jpg", VoteAverage: 0, VoteCount: 0},  // never rated
			{ID: 2, PosterPath: "/b.jpg", VoteAverage: 0, VoteCount: 12}, // rated at zero
		},
	}
	res := NewService(cat).Search(context.Background(), Filters{
		Title:        "x",
		MinRating:    0,
		HasMinRating: true,
	})

	assert.Equal(t, []int64{2}, moviesIDs(res.Movies), "a missing rating is not a zero rating")
}

func TestSearchDedupKeepsFirstOccurrence(t *testing.T) {
	cat := &fakeCatalog{
		textMovies: []tmdb.Movie{{ID: 7, Title: "text", PosterPath: "/t.jpg"}},
		discMovies: []tmdb.Movie{{ID: 7, Title: "disc", PosterPath: "/d.jpg"}, movie(8, "/x.jpg", 0)},
	}
	res := NewService(cat).Search(context.Background(), Filters{Title: "x", SortBy: "vote_average.desc"})

	require.Len(t, res.Movies, 2)
	assert.Equal(t, "text", res.Movies[0].Title, "text match wins over discover duplicate")
}

func TestSearchDropsPosterlessMovies(t *testing.T) {
	cat := &fakeCatalog{discMovies: []tmdb.Movie{movie(1, "", 9), movie(2, "/p.jpg", 1)}}
	res := NewService(cat).Search(context.Background(), Filters{})

	require.Len(t, res.Movies, 1)
	assert.EqualValues(t, 2, res.Movies[0].ID)
}

func TestSearchResortsByPopularityOnDefaultSort(t *testing.T) {
	movies := []tmdb.Movie{movie(1, "/a.jpg", 1), movie(2, "/b.jpg", 9), movie(3, "/c.jpg", 5)}

	cat := &fakeCatalog{discMovies: movies}
	res := NewService(cat).Search(context.Background(), Filters{SortBy: DefaultSort})
	assert.Equal(t, []int64{2, 3, 1}, moviesIDs(res.Movies))

	cat = &fakeCatalog{discMovies: movies}
	res = NewService(cat).Search(context.Background(), Filters{SortBy: "vote_average.desc"})
	assert.Equal(t, []int64{1, 2, 3}, moviesIDs(res.Movies), "custom sort preserves catalog order")
}

func TestSearchDegradesWhenOneLegFails(t *testing.T) {
	cat := &fakeCatalog{
		textErr:    errors.New("boom"),
		discMovies: []tmdb.Movie{movie(1, "/p.jpg", 1)},
	}
	res := NewService(cat).Search(context.Background(), Filters{Title: "x"})

	assert.True(t, res.Degraded)
	assert.Equal(t, "text_search_failed", res.Reason)
	assert.Len(t, res.Movies, 1)
}

func TestSearchDegradesWhenAllLegsFail(t *testing.T) {
	cat := &fakeCatalog{textErr: errors.New("boom"), discErr: errors.New("boom")}
	res := NewService(cat).Search(context.Background(), Filters{Title: "x"})

	assert.True(t, res.Degraded)
	assert.Equal(t, "all_sources_failed", res.Reason)
	assert.Empty(t, res.Movies)
}

func TestSearchForwardsFiltersToDiscover(t *testing.T) {
	cat := &fakeCatalog{}
	NewService(cat).Search(context.Background(), Filters{
		GenreIDs:     []int{28},
		Year:         1999,
		MinRating:    7.5,
		HasMinRating: true,
		Language:     "ru-RU",
		Region:       "RU",
		IncludeAdult: true,
		SortBy:       "vote_average.desc",
	})

	assert.Equal(t, tmdb.DiscoverFilter{
		GenreIDs:     []int{28},
		Year:         1999,
		MinRating:    7.5,
		HasMinRating: true,
		Language:     "ru-RU",
		Region:       "RU",
		IncludeAdult: true,
		SortBy:       "vote_average.desc",
	}, cat.discFilter)
}

func moviesIDs(movies []tmdb.Movie) []int64 {
	ids := make([]int64, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}
	return ids
}
