package bot

// User-facing texts. Everything is HTML parse mode.
const (
	msgStart = "🎬 <b>Добро пожаловать в Movie Search Bot!</b>\n\n" +
		"Я помогу вам найти фильмы по различным критериям.\n\n" +
		"Выберите тип поиска:"

	msgSimpleStart = "🔍 <b>Простой поиск</b>\n\n" +
		"Введите название фильма или нажмите \"Пропустить\" для поиска по жанру:"

	msgAdvancedStart = "🎯 <b>Расширенный поиск</b>\n\nВведите название фильма:"

	msgAskGenres = "🎭 Выберите жанры (обязательно для простого поиска):"
	msgAskYear   = "📅 Введите год выпуска фильма (например: 2023):"
	msgAskRating = "⭐ Введите минимальный рейтинг (0-10, например: 7.5):"

	msgAskLanguage = "🌐 Введите код языка фильма (например: en-US, ru-RU, fr-FR):\n\n" +
		"По умолчанию: ru-RU"

	msgAskRegion = "🌍 Введите код региона/страны (например: US, RU, GB):\n\n" +
		"Необязательный параметр."

	msgAskAdult = "🔞 Включать фильмы для взрослых в результаты поиска?"
	msgAskSort  = "📊 Выберите тип сортировки результатов:"

	msgBadYear     = "⚠️ Введите корректный год (1900-2030) или нажмите 'Пропустить'"
	msgBadRating   = "⚠️ Введите рейтинг от 0 до 10 (например: 7.5) или нажмите 'Пропустить'"
	msgBadLanguage = "⚠️ Введите корректный код языка (например: ru-RU, en-US) или нажмите 'Пропустить'"
	msgBadRegion   = "⚠️ Введите двухбуквенный код страны (например: US, RU) или нажмите 'Пропустить'"

	msgNeedGenre     = "Выберите хотя бы один жанр для простого поиска!"
	msgGenresCleared = "Жанры очищены"

	msgLoading = "🔄 Ищем фильмы..."

	msgNoMovies = "😔 К сожалению, фильмы по вашим критериям не найдены.\n" +
		"Попробуйте изменить параметры поиска."

	msgSearchError = "🔧 Проблемы с API фильмов. Попробуйте позже."

	msgPickHint = "💡 Выберите понравившийся фильм для персональных рекомендаций!"

	msgAskMovieChoice = "🎬 <b>Выбор фильма</b>\n\n" +
		"Введите номер (ID) фильма из результатов или его название:"

	msgMovieSaved = "✅ <b>Отлично!</b>\n\n" +
		"Ваш выбор сохранён. Теперь рекомендации станут точнее.\n\n" +
		"Выберите тип поиска:"

	msgMovieNotFound = "❌ Фильм не найден. Попробуйте ввести точное название или выберите из результатов поиска."

	msgDetailsFailed = "Не удалось загрузить информацию о фильме"

	msgRecommendHeader = "🤖 <b>Персональные рекомендации</b>\n\n"

	msgCancelled = "Поиск отменён."

	msgUnknownText = "Я понимаю только команды и кнопки. Нажмите /start, чтобы начать поиск."
)
