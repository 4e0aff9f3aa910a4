package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/moviebot/internal/search"
	"github.com/m3rciful/moviebot/internal/tmdb"
)

func TestFormatMovieShort(t *testing.T) {
	m := tmdb.Movie{
		Title:         "Матрица",
		OriginalTitle: "The Matrix",
		ReleaseDate:   "1999-03-31",
		VoteAverage:   8.2,
		VoteCount:     25431,
	}
	got := formatMovieShort(m, 3)
	assert.Contains(t, got, "<b>3.</b> <b>Матрица</b> (1999)")
	assert.Contains(t, got, "<i>The Matrix</i>")
	assert.Contains(t, got, "⭐ <b>8.2</b> (25,431 оценок)")
}

func TestFormatMovieShortEscapesHTML(t *testing.T) {
	m := tmdb.Movie{Title: "Fast & Furious <3", VoteAverage: 4.0}
	got := formatMovieShort(m, 1)
	assert.Contains(t, got, "Fast &amp; Furious &lt;3")
	assert.Contains(t, got, "⚪")
	assert.NotContains(t, got, "оценок")
}

func TestFormatMoviesPageHeader(t *testing.T) {
	movies := []tmdb.Movie{
		{ID: 1, Title: "A", VoteAverage: 7.1},
		{ID: 2, Title: "B", VoteAverage: 6.0},
	}
	info := search.PageInfo{Current: 2, TotalPages: 3, TotalItems: 25, StartIndex: 11}
	got := formatMoviesPage(movies, info)
	assert.Contains(t, got, "Страница 2 • Найдено: 25")
	assert.Contains(t, got, "<b>11.</b> <b>A</b>")
	assert.Contains(t, got, "<b>12.</b> <b>B</b>")
}

func TestFormatMovieDetails(t *testing.T) {
	d := &tmdb.Details{
		Title:         "Дюна",
		OriginalTitle: "Dune",
		Overview:      "Пустынная планета.",
		Tagline:       "За гранью страха",
		ReleaseDate:   "2021-09-13",
		Runtime:       155,
		Budget:        165000000,
		Revenue:       402027830,
		VoteAverage:   7.8,
		VoteCount:     9800,
		Genres:        []tmdb.Genre{{ID: 878, Name: "фантастика"}, {ID: 12, Name: "приключения"}},
		ProductionCountries: []tmdb.ProductionCountry{
			{ISO: "US", Name: "United States of America"},
		},
		Credits: tmdb.Credits{Crew: []tmdb.CrewMember{{Name: "Denis Villeneuve", Job: "Director"}}},
	}
	got := formatMovieDetails(d)
	assert.Contains(t, got, "🎬 <b>Дюна</b>")
	assert.Contains(t, got, "<i>Dune</i>")
	assert.Contains(t, got, "📅 <b>Дата выхода:</b> 13 сентября 2021")
	assert.Contains(t, got, "⏱ <b>Длительность:</b> 2ч 35м")
	assert.Contains(t, got, "⭐ <b>Рейтинг:</b> 7.8/10 (9,800 оценок)")
	assert.Contains(t, got, "🎭 <b>Жанры:</b> фантастика, приключения")
	assert.Contains(t, got, "🎥 <b>Режиссёр:</b> Denis Villeneuve")
	assert.Contains(t, got, "💰 <b>Бюджет:</b> $165,000,000")
	assert.Contains(t, got, "💵 <b>Сборы:</b> $402,027,830")
	assert.Contains(t, got, "Пустынная планета.")
	assert.Contains(t, got, "<i>За гранью страха</i>")
}

func TestFormatMovieDetailsDefaults(t *testing.T) {
	got := formatMovieDetails(&tmdb.Details{})
	assert.Contains(t, got, "Без названия")
	assert.Contains(t, got, "Описание недоступно")
	assert.NotContains(t, got, "Дата выхода")
	assert.NotContains(t, got, "Рейтинг")
}

func TestFormatReleaseDate(t *testing.T) {
	assert.Equal(t, "31 марта 1999", formatReleaseDate("1999-03-31"))
	assert.Equal(t, "1 января 2024", formatReleaseDate("2024-01-01"))
	assert.Equal(t, "Неизвестно", formatReleaseDate(""))
	assert.Equal(t, "garbage", formatReleaseDate("garbage"))
}

func TestFormatSearchParams(t *testing.T) {
	f := search.Filters{
		Title:        "Matrix",
		Year:         1999,
		MinRating:    7.5,
		HasMinRating: true,
		Language:     "en-US",
		Region:       "US",
	}
	got := formatSearchParams(f, []string{"Боевик", "Фантастика"})
	assert.Contains(t, got, "📝 Название: Matrix")
	assert.Contains(t, got, "🎭 Жанры: Боевик, Фантастика")
	assert.Contains(t, got, "📅 Год: 1999")
	assert.Contains(t, got, "⭐ Мин. рейтинг: 7.5")
	assert.Contains(t, got, "🌐 Язык: en-US")
	assert.Contains(t, got, "🌍 Регион: US")
}

func TestFormatSearchParamsSkipsEmpty(t *testing.T) {
	got := formatSearchParams(search.Filters{MinRating: 0}, nil)
	assert.Equal(t, "🔍 <b>Параметры поиска:</b>\n\n", got)
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "0", groupThousands(0))
	assert.Equal(t, "999", groupThousands(999))
	assert.Equal(t, "1,000", groupThousands(1000))
	assert.Equal(t, "165,000,000", groupThousands(165000000))
	assert.Equal(t, "-12,345", groupThousands(-12345))
}

func TestTruncateKeepsValidUTF8(t *testing.T) {
	long := strings.Repeat("ф", 3000)
	got := truncate(long)
	require.LessOrEqual(t, len(got), maxMessageLen)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.True(t, strings.HasPrefix(got, "ф"))

	short := "короткий текст"
	assert.Equal(t, short, truncate(short))
}

func TestTruncateToCaptionLimit(t *testing.T) {
	long := strings.Repeat("ф", 2000)
	got := truncateTo(long, maxCaptionLen)
	require.LessOrEqual(t, len(got), maxCaptionLen)
	assert.True(t, strings.HasSuffix(got, "..."))
}
