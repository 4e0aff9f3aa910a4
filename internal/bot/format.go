package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/m3rciful/moviebot/internal/search"
	"github.com/m3rciful/moviebot/internal/tmdb"
)

// maxMessageLen keeps rendered texts inside Telegram's message limit.
const maxMessageLen = 4000

// maxCaptionLen keeps photo captions inside Telegram's caption limit.
const maxCaptionLen = 1024

const divider = "──────────────────────────────"

var ruMonths = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

func ratingEmoji(rating float64) string {
	switch {
	case rating >= 7.0:
		return "⭐"
	case rating >= 5.0:
		return "🌟"
	default:
		return "⚪"
	}
}

// formatMovieShort renders one numbered list entry for the results page.
func formatMovieShort(m tmdb.Movie, index int) string {
	title := m.Title
	if title == "" {
		title = "Без названия"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%d.</b> <b>%s</b>", index, html.EscapeString(title))
	if year := m.Year(); year != "" {
		fmt.Fprintf(&b, " (%s)", year)
	}
	if m.OriginalTitle != "" && m.OriginalTitle != m.Title {
		fmt.Fprintf(&b, "\n<i>%s</i>", html.EscapeString(m.OriginalTitle))
	}
	fmt.Fprintf(&b, "\n%s <b>%.1f</b>", ratingEmoji(m.VoteAverage), m.VoteAverage)
	if m.VoteCount > 0 {
		fmt.Fprintf(&b, " (%s оценок)", groupThousands(int64(m.VoteCount)))
	}
	return b.String()
}

// formatMoviesPage renders one page of results with its header.
func formatMoviesPage(movies []tmdb.Movie, info search.PageInfo) string {
	if len(movies) == 0 {
		return "😔 Фильмы не найдены"
	}
	var b strings.Builder
	b.WriteString("🎬 <b>Результаты поиска</b>\n")
	fmt.Fprintf(&b, "📄 Страница %d • Найдено: %d\n", info.Current, info.TotalItems)
	b.WriteString(divider + "\n\n")

	entries := make([]string, 0, len(movies))
	for i, m := range movies {
		entries = append(entries, formatMovieShort(m, info.StartIndex+i))
	}
	b.WriteString(strings.Join(entries, "\n\n"))
	return truncate(b.String())
}

// formatMovieDetails renders the full movie card.
func formatMovieDetails(d *tmdb.Details) string {
	title := d.Title
	if title == "" {
		title = "Без названия"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🎬 <b>%s</b>\n", html.EscapeString(title))
	if d.OriginalTitle != "" && d.OriginalTitle != d.Title {
		fmt.Fprintf(&b, "<i>%s</i>\n", html.EscapeString(d.OriginalTitle))
	}
	b.WriteString(divider + "\n\n")

	var info []string
	if d.ReleaseDate != "" {
		info = append(info, "📅 <b>Дата выхода:</b> "+formatReleaseDate(d.ReleaseDate))
	}
	if d.Runtime > 0 {
		hours, minutes := d.Runtime/60, d.Runtime%60
		duration := fmt.Sprintf("%dм", minutes)
		if hours > 0 {
			duration = fmt.Sprintf("%dч %dм", hours, minutes)
		}
		info = append(info, "⏱ <b>Длительность:</b> "+duration)
	}
	if d.VoteAverage > 0 {
		line := fmt.Sprintf("%s <b>Рейтинг:</b> %.1f/10", ratingEmoji(d.VoteAverage), d.VoteAverage)
		if d.VoteCount > 0 {
			line += fmt.Sprintf(" (%s оценок)", groupThousands(int64(d.VoteCount)))
		}
		info = append(info, line)
	}
	if len(d.Genres) > 0 {
		names := make([]string, 0, len(d.Genres))
		for _, g := range d.Genres {
			names = append(names, g.Name)
		}
		info = append(info, "🎭 <b>Жанры:</b> "+strings.Join(names, ", "))
	}
	if director := d.Director(); director != "" {
		info = append(info, "🎥 <b>Режиссёр:</b> "+html.EscapeString(director))
	}
	if len(d.ProductionCountries) > 0 {
		countries := d.ProductionCountries
		if len(countries) > 3 {
			countries = countries[:3]
		}
		names := make([]string, 0, len(countries))
		for _, c := range countries {
			names = append(names, c.Name)
		}
		info = append(info, "🌍 <b>Страны:</b> "+strings.Join(names, ", "))
	}
	if d.Budget > 0 {
		info = append(info, "💰 <b>Бюджет:</b> $"+groupThousands(d.Budget))
	}
	if d.Revenue > 0 {
		info = append(info, "💵 <b>Сборы:</b> $"+groupThousands(d.Revenue))
	}
	if key := d.Trailer(); key != "" {
		info = append(info, fmt.Sprintf("🎞 <a href=\"https://www.youtube.com/watch?v=%s\">Трейлер</a>", key))
	}
	b.WriteString(strings.Join(info, "\n"))

	overview := d.Overview
	if overview == "" {
		overview = "Описание недоступно"
	}
	if len([]rune(overview)) > 500 {
		overview = string([]rune(overview)[:500]) + "…"
	}
	b.WriteString("\n\n📖 <b>Описание:</b>\n" + html.EscapeString(overview))
	if d.Tagline != "" {
		b.WriteString("\n\n<i>" + html.EscapeString(d.Tagline) + "</i>")
	}
	return truncate(b.String())
}

// formatReleaseDate turns "2023-07-19" into "19 июля 2023".
func formatReleaseDate(date string) string {
	if date == "" {
		return "Неизвестно"
	}
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return date
	}
	month, errM := strconv.Atoi(parts[1])
	day, errD := strconv.Atoi(parts[2])
	if errM != nil || errD != nil || month < 1 || month > 12 {
		return date
	}
	return fmt.Sprintf("%d %s %s", day, ruMonths[month-1], parts[0])
}

// formatSearchParams shows the collected filters above the loading notice.
func formatSearchParams(f search.Filters, genreNames []string) string {
	lines := []string{"🔍 <b>Параметры поиска:</b>"}
	if f.Title != "" {
		lines = append(lines, "📝 Название: "+html.EscapeString(f.Title))
	}
	if len(genreNames) > 0 {
		lines = append(lines, "🎭 Жанры: "+strings.Join(genreNames, ", "))
	}
	if f.Year != 0 {
		lines = append(lines, fmt.Sprintf("📅 Год: %d", f.Year))
	}
	if f.HasMinRating {
		lines = append(lines, fmt.Sprintf("⭐ Мин. рейтинг: %.1f", f.MinRating))
	}
	if f.Language != "" {
		lines = append(lines, "🌐 Язык: "+f.Language)
	}
	if f.Region != "" {
		lines = append(lines, "🌍 Регион: "+f.Region)
	}
	return strings.Join(lines, "\n") + "\n\n"
}

// groupThousands formats n with comma thousand separators.
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// truncate bounds text to the Telegram message limit, cutting on a rune.
func truncate(text string) string {
	return truncateTo(text, maxMessageLen)
}

func truncateTo(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := text[:limit-3]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut + "..."
}

const helpMessage = `🎬 <b>Movie Search Bot - Справка</b>

<b>🔍 Простой поиск:</b>
• Поиск по названию фильма
• Фильтрация по жанру (обязательно)
• Указание года выпуска

<b>🎯 Расширенный поиск:</b>
• Все параметры простого поиска
• Минимальный рейтинг
• Язык фильма
• Регион релиза
• Включение контента 18+
• Сортировка результатов

<b>📖 Как пользоваться:</b>
1. Выберите тип поиска
2. Заполните параметры (следуйте подсказкам)
3. Просматривайте результаты с помощью кнопок
4. Нажмите на фильм для подробной информации

<b>💡 Советы:</b>
• Используйте "Пропустить" для необязательных полей
• Выбирайте несколько жанров для точного поиска
• Указывайте год для фильмов с популярными названиями`
