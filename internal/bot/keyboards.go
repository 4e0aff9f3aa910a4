package bot

import (
	"sort"
	"strconv"
	"strings"

	"github.com/m3rciful/moviebot/core/telegram/keyboard"
	"github.com/m3rciful/moviebot/internal/search"

	tele "gopkg.in/telebot.v4"
)

// Callback keys. Keys with payloads carry it after the telebot separator.
const (
	cbMainMenu      = "main_menu"
	cbHelp          = "help"
	cbSimpleSearch  = "simple_search"
	cbAdvanced      = "advanced_search"
	cbSkip          = "skip"
	cbGenre         = "genre"
	cbClearGenres   = "clear_genres"
	cbGenresDone    = "genres_done"
	cbAdultYes      = "adult_yes"
	cbAdultNo       = "adult_no"
	cbSort          = "sort"
	cbSortDone      = "sort_done"
	cbSearchPage    = "search_page"
	cbCurrentPage   = "current_page"
	cbNewSearch     = "new_search"
	cbDetails       = "details"
	cbBackToResults = "back_to_results"
	cbRecommend     = "ai_recommendations"
	cbAskMovie      = "ask_movie_choice"
	cbSkipMovie     = "skip_movie_choice"
)

// Frequently picked genres shown at the top of the grid.
var popularGenres = []string{
	"боевик", "комедия", "драма", "фантастика", "триллер",
	"ужасы", "романтика", "приключения", "криминал", "детектив",
}

// sortOptions in display order.
var sortOptions = []struct {
	Key  string
	Name string
}{
	{"popularity.desc", "По популярности"},
	{"vote_average.desc", "По рейтингу"},
	{"primary_release_date.desc", "По дате выхода"},
	{"original_title.asc", "По названию"},
}

func sortName(key string) string {
	for _, opt := range sortOptions {
		if opt.Key == key {
			return opt.Name
		}
	}
	return key
}

func mainMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "🔍 Простой поиск", Unique: cbSimpleSearch},
		{Text: "🎯 Расширенный поиск", Unique: cbAdvanced},
		{Text: "ℹ️ Помощь", Unique: cbHelp},
	})
}

func skipMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "⏭ Пропустить", Unique: cbSkip},
	})
}

func titleCase(name string) string {
	runes := []rune(name)
	if len(runes) == 0 {
		return name
	}
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}

// genresMarkup renders the genre grid: popular genres first, the rest in
// alphabetical order, selected ones marked.
func genresMarkup(genresByName map[string]int, selected func(int) bool) *tele.ReplyMarkup {
	var buttons []keyboard.InlineBtn
	addGenre := func(name string, id int) {
		text := titleCase(name)
		if selected != nil && selected(id) {
			text = "✅ " + text
		}
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   text,
			Unique: cbGenre,
			Data:   strconv.Itoa(id),
		})
	}

	popular := make(map[string]bool, len(popularGenres))
	for _, name := range popularGenres {
		popular[name] = true
		if id, ok := genresByName[name]; ok {
			addGenre(name, id)
		}
	}
	var rest []string
	for name := range genresByName {
		if !popular[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		addGenre(name, genresByName[name])
	}

	markup := keyboard.InlineButtonsNPerRow(buttons, 2)

	hasSelection := false
	if selected != nil {
		for _, id := range genresByName {
			if selected(id) {
				hasSelection = true
				break
			}
		}
	}
	var control []keyboard.InlineBtn
	if hasSelection {
		control = append(control, keyboard.InlineBtn{Text: "🗑 Очистить", Unique: cbClearGenres})
	}
	control = append(control, keyboard.InlineBtn{Text: "✅ Готово", Unique: cbGenresDone})

	extra := keyboard.InlineButtonsRows(
		control,
		[]keyboard.InlineBtn{{Text: "🏠 Главное меню", Unique: cbMainMenu}},
	)
	markup.InlineKeyboard = append(markup.InlineKeyboard, extra.InlineKeyboard...)
	return markup
}

func yesNoMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "✅ Да", Unique: cbAdultYes},
		{Text: "❌ Нет", Unique: cbAdultNo},
	})
}

func sortMarkup(current string) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(sortOptions)+1)
	icons := []string{"🔥", "⭐", "📅", "🔤"}
	for i, opt := range sortOptions {
		text := icons[i] + " " + opt.Name
		if opt.Key == current {
			text = "✅ " + text
		}
		buttons = append(buttons, keyboard.InlineBtn{Text: text, Unique: cbSort, Data: opt.Key})
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: "✅ Готово", Unique: cbSortDone})
	return keyboard.InlineButtons(buttons)
}

// resultsMarkup builds page navigation plus result actions.
func resultsMarkup(info search.PageInfo, quickNav []int) *tele.ReplyMarkup {
	var rows [][]keyboard.InlineBtn

	var nav []keyboard.InlineBtn
	if info.HasPrev {
		nav = append(nav, keyboard.InlineBtn{
			Text: "⬅️", Unique: cbSearchPage, Data: strconv.Itoa(info.Current - 1),
		})
	}
	nav = append(nav, keyboard.InlineBtn{
		Text:   strconv.Itoa(info.Current) + "/" + strconv.Itoa(info.TotalPages),
		Unique: cbCurrentPage,
	})
	if info.HasNext {
		nav = append(nav, keyboard.InlineBtn{
			Text: "➡️", Unique: cbSearchPage, Data: strconv.Itoa(info.Current + 1),
		})
	}
	rows = append(rows, nav)

	if info.TotalPages > 3 && len(quickNav) > 1 {
		var quick []keyboard.InlineBtn
		for _, page := range quickNav {
			text := strconv.Itoa(page)
			if page == info.Current {
				text = "·" + text + "·"
			}
			quick = append(quick, keyboard.InlineBtn{
				Text: text, Unique: cbSearchPage, Data: strconv.Itoa(page),
			})
		}
		rows = append(rows, quick)
	}

	rows = append(rows,
		[]keyboard.InlineBtn{
			{Text: "🎯 Выбрать фильм", Unique: cbAskMovie},
			{Text: "🤖 Рекомендации", Unique: cbRecommend},
		},
		[]keyboard.InlineBtn{
			{Text: "🔄 Новый поиск", Unique: cbNewSearch},
			{Text: "🏠 Главное меню", Unique: cbMainMenu},
		},
	)
	return keyboard.InlineButtonsRows(rows...)
}

func detailsBackMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "🔙 К результатам", Unique: cbBackToResults},
	})
}

func pickedMovieMarkup(movieID int64) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "📖 Подробнее", Unique: cbDetails, Data: strconv.FormatInt(movieID, 10)},
		{Text: "🏠 Главное меню", Unique: cbMainMenu},
	})
}

func movieChoiceMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "⏭ Пропустить", Unique: cbSkipMovie},
		{Text: "🏠 Главное меню", Unique: cbMainMenu},
	})
}
