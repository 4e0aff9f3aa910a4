package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/moviebot/core/logger"
	"github.com/m3rciful/moviebot/internal/ai"
)

const logComponent = "recommend"

const (
	// MsgNotEnoughData is shown when the user has no search history yet.
	MsgNotEnoughData = "Пока недостаточно данных для рекомендаций. Воспользуйтесь поиском несколько раз."
	// MsgUnavailable is shown when the AI backend fails.
	MsgUnavailable = "Не удалось получить рекомендации. Попробуйте позже."
)

const (
	topGenres    = 5
	recentPicks  = 5
	noDataMarker = "Нет данных"
)

// Recommender builds taste prompts from the store and asks the completer.
type Recommender struct {
	store     *Store
	completer ai.Completer
}

// New wires a recommender over the given preference store and AI backend.
func New(store *Store, completer ai.Completer) *Recommender {
	return &Recommender{store: store, completer: completer}
}

// Recommend produces a recommendation text for the user. It always returns
// something presentable: the not-enough-data notice when history is empty,
// or the unavailable notice when the backend fails.
func (r *Recommender) Recommend(ctx context.Context, userID int64, genreNames map[int]string) string {
	if !r.store.HasData(userID) {
		return MsgNotEnoughData
	}
	prompt := r.BuildPrompt(userID, genreNames)
	start := time.Now()
	answer, err := r.completer.Complete(ctx, prompt)
	if err != nil || strings.TrimSpace(answer) == "" {
		logger.Warn(ctx, logComponent, "recommend.failed",
			slog.String("status", "error"),
			slog.Int64("user_id", userID),
			slog.Duration("took", logger.Took(start)),
		)
		return MsgUnavailable
	}
	logger.Info(ctx, logComponent, "recommend.done",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.Duration("took", logger.Took(start)),
	)
	return answer
}

// BuildPrompt renders the user's favorite genres and recent picks into the
// recommendation prompt.
func (r *Recommender) BuildPrompt(userID int64, genreNames map[int]string) string {
	var genreLines []string
	for _, gc := range r.store.TopGenres(userID, topGenres) {
		name, ok := genreNames[gc.ID]
		if !ok {
			name = fmt.Sprintf("Жанр %d", gc.ID)
		}
		genreLines = append(genreLines, fmt.Sprintf("%s (%d раз)", title(name), gc.Count))
	}
	genresBlock := noDataMarker
	if len(genreLines) > 0 {
		genresBlock = strings.Join(genreLines, "\n")
	}

	var movieLines []string
	for _, m := range r.store.RecentMovies(userID, recentPicks) {
		rating := "N/A"
		if m.Rating > 0 {
			rating = fmt.Sprintf("%.1f", m.Rating)
		}
		movieLines = append(movieLines, fmt.Sprintf("- %s (рейтинг: %s)", m.Title, rating))
	}
	moviesBlock := noDataMarker
	if len(movieLines) > 0 {
		moviesBlock = strings.Join(movieLines, "\n")
	}

	return fmt.Sprintf(`Пользователь выбирал фильмы и жанры со следующими предпочтениями:

Любимые жанры (по частоте выбора):
%s

Последние выбранные фильмы:
%s

На основе этих данных дай краткие рекомендации (максимум 300 символов):
1. Какие жанры лучше всего подходят этому пользователю
2. Конкретные названия 2-3 фильмов которые могут понравиться
3. Краткое объяснение почему именно эти рекомендации

Отвечай на русском языке, кратко и по делу.`, genresBlock, moviesBlock)
}

// title uppercases the first rune, matching how genre names are shown.
func title(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}
