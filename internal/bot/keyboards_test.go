package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/moviebot/internal/search"
)

func TestGenresMarkupOrderingAndMarks(t *testing.T) {
	genres := map[string]int{
		"вестерн": 37,
		"боевик":  28,
		"комедия": 35,
	}
	selected := func(id int) bool { return id == 35 }
	markup := genresMarkup(genres, selected)

	require.NotEmpty(t, markup.InlineKeyboard)
	first := markup.InlineKeyboard[0]
	require.Len(t, first, 2)
	assert.Equal(t, "Боевик", first[0].Text, "popular genres come first")
	assert.Equal(t, "✅ Комедия", first[1].Text)
	assert.Equal(t, "genre", first[0].Unique)
	assert.Equal(t, "28", first[0].Data)

	// control row carries clear only while something is selected
	var texts []string
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			texts = append(texts, btn.Text)
		}
	}
	assert.Contains(t, texts, "Вестерн")
	assert.Contains(t, texts, "🗑 Очистить")
	assert.Contains(t, texts, "✅ Готово")

	markup = genresMarkup(genres, func(int) bool { return false })
	texts = texts[:0]
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			texts = append(texts, btn.Text)
		}
	}
	assert.NotContains(t, texts, "🗑 Очистить")
}

func TestSortMarkupMarksCurrent(t *testing.T) {
	markup := sortMarkup("vote_average.desc")
	var marked []string
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			if btn.Unique == cbSort && strings.HasPrefix(btn.Text, "✅") {
				marked = append(marked, btn.Data)
			}
		}
	}
	assert.Equal(t, []string{"vote_average.desc"}, marked)
}

func TestResultsMarkupNavigation(t *testing.T) {
	info := search.PageInfo{Current: 2, TotalPages: 5, TotalItems: 42, HasPrev: true, HasNext: true}
	markup := resultsMarkup(info, []int{1, 2, 3, 4})

	nav := markup.InlineKeyboard[0]
	require.Len(t, nav, 3)
	assert.Equal(t, "1", nav[0].Data)
	assert.Equal(t, "2/5", nav[1].Text)
	assert.Equal(t, cbCurrentPage, nav[1].Unique)
	assert.Equal(t, "3", nav[2].Data)

	quick := markup.InlineKeyboard[1]
	require.Len(t, quick, 4)
	assert.Equal(t, "·2·", quick[1].Text)
	assert.Equal(t, "4", quick[3].Data)
}

func TestResultsMarkupSinglePage(t *testing.T) {
	info := search.PageInfo{Current: 1, TotalPages: 1, TotalItems: 3}
	markup := resultsMarkup(info, []int{1})

	nav := markup.InlineKeyboard[0]
	require.Len(t, nav, 1, "no arrows on a single page")
	assert.Equal(t, "1/1", nav[0].Text)

	// no quick-nav row for short result sets
	for _, row := range markup.InlineKeyboard[1:] {
		for _, btn := range row {
			assert.NotEqual(t, cbSearchPage, btn.Unique)
		}
	}
}

func TestSortNameFallsBackToKey(t *testing.T) {
	assert.Equal(t, "По рейтингу", sortName("vote_average.desc"))
	assert.Equal(t, "custom.key", sortName("custom.key"))
}
