package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/moviebot/internal/tmdb"
)

type fakeCompleter struct {
	answer string
	err    error
	prompt string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.answer, f.err
}

func TestTopGenresOrderedByFrequencyThenFirstSeen(t *testing.T) {
	st := NewStore()
	st.Record(1, []int{28, 35}, tmdb.Movie{ID: 10, Title: "A"})
	st.Record(1, []int{35, 18}, tmdb.Movie{ID: 11, Title: "B"})
	st.Record(1, []int{28}, tmdb.Movie{ID: 12, Title: "C"})

	top := st.TopGenres(1, 5)
	require.Len(t, top, 3)
	assert.Equal(t, GenreCount{ID: 28, Count: 2}, top[0], "28 was seen before 35")
	assert.Equal(t, GenreCount{ID: 35, Count: 2}, top[1])
	assert.Equal(t, GenreCount{ID: 18, Count: 1}, top[2])
}

func TestTopGenresCapped(t *testing.T) {
	st := NewStore()
	st.Record(1, []int{1, 2, 3, 4, 5, 6, 7}, tmdb.Movie{ID: 1, Title: "X"})
	assert.Len(t, st.TopGenres(1, 5), 5)
}

func TestRecentMoviesKeepsLatest(t *testing.T) {
	st := NewStore()
	for i := 0; i < 8; i++ {
		st.Record(1, nil, tmdb.Movie{ID: int64(i), Title: strings.Repeat("m", i+1)})
	}
	recent := st.RecentMovies(1, 5)
	require.Len(t, recent, 5)
	assert.Equal(t, int64(3), recent[0].ID)
	assert.Equal(t, int64(7), recent[4].ID)
}

func TestStoreKeepsFullHistory(t *testing.T) {
	st := NewStore()
	for i := 0; i < 25; i++ {
		st.Record(7, []int{28}, tmdb.Movie{ID: int64(i), Title: "m", GenreIDs: []int{28, 12}})
	}
	all := st.RecentMovies(7, 0)
	require.Len(t, all, 25)
	assert.Equal(t, int64(0), all[0].ID)
	assert.Equal(t, int64(24), all[24].ID)
	assert.Equal(t, []int{28, 12}, all[0].Genres)
}

func TestRecommendWithoutHistory(t *testing.T) {
	r := New(NewStore(), &fakeCompleter{answer: "ignored"})
	got := r.Recommend(context.Background(), 1, nil)
	assert.Equal(t, MsgNotEnoughData, got)
}

func TestRecommendFallsBackWhenBackendFails(t *testing.T) {
	st := NewStore()
	st.Record(1, []int{28}, tmdb.Movie{ID: 1, Title: "Матрица", VoteAverage: 8.2})

	r := New(st, &fakeCompleter{err: errors.New("boom")})
	assert.Equal(t, MsgUnavailable, r.Recommend(context.Background(), 1, nil))

	r = New(st, &fakeCompleter{answer: "   "})
	assert.Equal(t, MsgUnavailable, r.Recommend(context.Background(), 1, nil))
}

func TestBuildPromptIncludesGenresAndMovies(t *testing.T) {
	st := NewStore()
	st.Record(7, []int{28, 28, 35}, tmdb.Movie{ID: 1, Title: "Матрица", VoteAverage: 8.2})
	st.Record(7, []int{28}, tmdb.Movie{ID: 2, Title: "Шрек"})

	fc := &fakeCompleter{answer: "Смотрите боевики."}
	r := New(st, fc)
	got := r.Recommend(context.Background(), 7, map[int]string{28: "боевик", 35: "комедия"})
	assert.Equal(t, "Смотрите боевики.", got)

	assert.Contains(t, fc.prompt, "Боевик (3 раз)")
	assert.Contains(t, fc.prompt, "Комедия (1 раз)")
	assert.Contains(t, fc.prompt, "- Матрица (рейтинг: 8.2)")
	assert.Contains(t, fc.prompt, "- Шрек (рейтинг: N/A)")
	assert.NotContains(t, fc.prompt, "Нет данных")
}

func TestBuildPromptNamesUnknownGenresByID(t *testing.T) {
	st := NewStore()
	st.Record(7, []int{99}, tmdb.Movie{ID: 1, Title: "X"})

	r := New(st, &fakeCompleter{})
	prompt := r.BuildPrompt(7, map[int]string{})
	assert.Contains(t, prompt, "Жанр 99 (1 раз)")
}
