// Package bot assembles the Telegram movie-search bot: commands,
// callback handlers and the question-flow wiring.
package bot

import (
	"context"

	"github.com/m3rciful/moviebot/core/config"
	tg "github.com/m3rciful/moviebot/core/telegram"
	"github.com/m3rciful/moviebot/core/telegram/commands"
	"github.com/m3rciful/moviebot/core/telegram/router"
	"github.com/m3rciful/moviebot/internal/ai"
	"github.com/m3rciful/moviebot/internal/dialog"
	"github.com/m3rciful/moviebot/internal/recommend"
	"github.com/m3rciful/moviebot/internal/search"
	"github.com/m3rciful/moviebot/internal/tmdb"

	tele "gopkg.in/telebot.v4"
)

// App holds the bot's long-lived components.
type App struct {
	cfg      *config.Config
	registry *tg.Registry

	catalog  *tmdb.Client
	searcher *search.Service
	sessions *dialog.Store
	machine  *dialog.Machine
	prefs    *recommend.Store
	rec      *recommend.Recommender

	perPage int
}

// New wires all components from config and registers the bot surface.
func New(cfg *config.Config) *App {
	catalog := tmdb.New(cfg.Catalog)
	prefs := recommend.NewStore()

	perPage := cfg.Catalog.PageSize
	if perPage <= 0 {
		perPage = 10
	}

	a := &App{
		cfg:      cfg,
		registry: tg.NewRegistry(),
		catalog:  catalog,
		searcher: search.NewService(catalog),
		sessions: dialog.NewStore(),
		machine:  dialog.NewMachine(),
		prefs:    prefs,
		rec:      recommend.New(prefs, ai.NewOpenAI(cfg.AI)),
		perPage:  perPage,
	}
	a.registerCommands()
	a.registerCallbacks()
	return a
}

// Run starts the bot and blocks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{})
	routes = append(routes,
		router.TextRoute(a, a.registry, router.TextOptions{UnknownText: a.onUnknownText}),
		router.CallbackRoute(a.registry, router.CallbackOptions{}),
	)

	return tg.RunTelegram(ctx, tg.RunOptions{
		Config:      a.cfg,
		Registry:    a.registry,
		Middlewares: tg.DefaultMiddlewares(a.cfg, nil),
		Routes:      routes,
	})
}

// InProgress reports whether the user's text belongs to an active dialog.
func (a *App) InProgress(userID int64) bool {
	return a.sessions.InProgress(userID)
}

// TextHandler feeds free-form text into the active dialog.
func (a *App) TextHandler(c tele.Context) error {
	return a.onDialogText(c)
}

func (a *App) registerCommands() {
	a.registry.RegisterCommand("/start", commands.Command{
		Handler:     a.cmdStart,
		Description: "Начать поиск фильмов",
	})
	a.registry.RegisterCommand("/help", commands.Command{
		Handler:     a.cmdHelp,
		Description: "Справка по боту",
		Aliases:     []string{"h"},
	})
	a.registry.RegisterCommand("/recommend", commands.Command{
		Handler:     a.cmdRecommend,
		Description: "Персональные рекомендации",
	})
	a.registry.RegisterCommand("/cancel", commands.Command{
		Handler:     a.cmdCancel,
		Description: "Отменить текущий поиск",
		Hidden:      true,
	})
}

func (a *App) registerCallbacks() {
	for key, handler := range map[string]tele.HandlerFunc{
		cbMainMenu:      a.onMainMenu,
		cbHelp:          a.onHelpCallback,
		cbSimpleSearch:  a.onSimpleSearch,
		cbAdvanced:      a.onAdvancedSearch,
		cbSkip:          a.onSkip,
		cbGenre:         a.onGenreToggle,
		cbClearGenres:   a.onClearGenres,
		cbGenresDone:    a.onGenresDone,
		cbAdultYes:      a.onAdultChoice(true),
		cbAdultNo:       a.onAdultChoice(false),
		cbSort:          a.onSortChoice,
		cbSortDone:      a.onSortDone,
		cbSearchPage:    a.onSearchPage,
		cbCurrentPage:   a.onNoop,
		cbNewSearch:     a.onMainMenu,
		cbDetails:       a.onDetails,
		cbBackToResults: a.onBackToResults,
		cbRecommend:     a.onRecommendCallback,
		cbAskMovie:      a.onAskMovieChoice,
		cbSkipMovie:     a.onSkipMovieChoice,
	} {
		_ = a.registry.RegisterCallback(key, handler)
	}
}
