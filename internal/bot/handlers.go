package bot

import (
	"html"
	"strconv"
	"strings"

	"github.com/m3rciful/moviebot/core/telegram/callbacks"
	"github.com/m3rciful/moviebot/core/telegram/helpers"
	"github.com/m3rciful/moviebot/internal/dialog"
	"github.com/m3rciful/moviebot/internal/recommend"
	"github.com/m3rciful/moviebot/internal/search"
	"github.com/m3rciful/moviebot/internal/tmdb"

	tele "gopkg.in/telebot.v4"
)

// ----- commands -----

func (a *App) cmdStart(c tele.Context) error {
	if sender := c.Sender(); sender != nil {
		a.sessions.Clear(sender.ID)
	}
	return helpers.SendHTML(c, msgStart, mainMenuMarkup())
}

func (a *App) cmdHelp(c tele.Context) error {
	return helpers.SendHTML(c, helpMessage, mainMenuMarkup())
}

func (a *App) cmdRecommend(c tele.Context) error {
	return helpers.SendHTML(c, a.recommendationText(c), mainMenuMarkup())
}

func (a *App) cmdCancel(c tele.Context) error {
	if sender := c.Sender(); sender != nil {
		a.sessions.Clear(sender.ID)
	}
	return helpers.SendHTML(c, msgCancelled+"\n\n"+msgStart, mainMenuMarkup())
}

func (a *App) onUnknownText(c tele.Context) error {
	return helpers.SendHTML(c, msgUnknownText)
}

// ----- dialog plumbing -----

func (a *App) session(c tele.Context) *dialog.Session {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	return a.sessions.Get(sender.ID)
}

// feed routes one event through the machine for whatever session is active.
func (a *App) feed(c tele.Context, ev dialog.Event) error {
	s := a.session(c)
	if s == nil {
		return helpers.EditOrSendHTML(c, msgStart, mainMenuMarkup())
	}
	out, err := a.machine.Handle(s, ev)
	if err != nil {
		return helpers.SendHTML(c, msgUnknownText)
	}
	return a.apply(c, s, out)
}

func (a *App) onDialogText(c tele.Context) error {
	return a.feed(c, dialog.Event{Kind: dialog.EventText, Text: strings.TrimSpace(c.Text())})
}

// apply turns a machine outcome into Telegram actions.
func (a *App) apply(c tele.Context, s *dialog.Session, out dialog.Outcome) error {
	switch out.Action {
	case dialog.ActionPrompt:
		return a.prompt(c, s)
	case dialog.ActionRefresh:
		return a.refreshMarkup(c, s)
	case dialog.ActionExecute:
		return a.runSearch(c, s)
	case dialog.ActionReject:
		return helpers.SendHTML(c, noticeText(out.Notice))
	case dialog.ActionAlert:
		return helpers.SendHTML(c, noticeText(out.Notice))
	case dialog.ActionPick:
		return a.resolvePick(c, s)
	case dialog.ActionCancel:
		if sender := c.Sender(); sender != nil {
			a.sessions.Clear(sender.ID)
		}
		return helpers.EditOrSendHTML(c, msgStart, mainMenuMarkup())
	}
	return nil
}

func noticeText(n dialog.Notice) string {
	switch n {
	case dialog.NoticeBadYear:
		return msgBadYear
	case dialog.NoticeBadRating:
		return msgBadRating
	case dialog.NoticeBadLanguage:
		return msgBadLanguage
	case dialog.NoticeBadRegion:
		return msgBadRegion
	case dialog.NoticeNeedGenre:
		return msgNeedGenre
	}
	return msgUnknownText
}

// prompt shows the question for the session's current state.
func (a *App) prompt(c tele.Context, s *dialog.Session) error {
	ctx := helpers.BuildContext(c)
	switch s.State {
	case dialog.StateGenres:
		return helpers.EditOrSendHTML(c, msgAskGenres, genresMarkup(a.catalog.Genres(ctx), s.HasGenre))
	case dialog.StateYear:
		return helpers.EditOrSendHTML(c, msgAskYear, skipMarkup())
	case dialog.StateRating:
		return helpers.EditOrSendHTML(c, msgAskRating, skipMarkup())
	case dialog.StateLanguage:
		return helpers.EditOrSendHTML(c, msgAskLanguage, skipMarkup())
	case dialog.StateRegion:
		return helpers.EditOrSendHTML(c, msgAskRegion, skipMarkup())
	case dialog.StateAdult:
		return helpers.EditOrSendHTML(c, msgAskAdult, yesNoMarkup())
	case dialog.StateSort:
		return helpers.EditOrSendHTML(c, msgAskSort, sortMarkup(s.Filters.SortBy))
	case dialog.StateBrowsing:
		return a.renderResults(c, s)
	}
	return helpers.EditOrSendHTML(c, msgStart, mainMenuMarkup())
}

// refreshMarkup redraws the keyboard in place after a toggle. An unchanged
// markup makes Telegram reject the edit, that error is not interesting.
func (a *App) refreshMarkup(c tele.Context, s *dialog.Session) error {
	ctx := helpers.BuildContext(c)
	switch s.State {
	case dialog.StateGenres:
		_ = c.Edit(genresMarkup(a.catalog.Genres(ctx), s.HasGenre))
	case dialog.StateSort:
		text := msgAskSort + "\n\n✅ Выбрана сортировка: " + sortName(s.Filters.SortBy)
		_ = helpers.EditHTML(c, text, sortMarkup(s.Filters.SortBy))
	}
	return nil
}

// ----- search flow callbacks -----

func (a *App) onMainMenu(c tele.Context) error {
	if sender := c.Sender(); sender != nil {
		a.sessions.Clear(sender.ID)
	}
	return helpers.EditOrSendHTML(c, msgStart, mainMenuMarkup())
}

func (a *App) onHelpCallback(c tele.Context) error {
	return helpers.EditOrSendHTML(c, helpMessage, mainMenuMarkup())
}

func (a *App) onSimpleSearch(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	a.sessions.Begin(sender.ID, dialog.ModeSimple)
	return helpers.EditOrSendHTML(c, msgSimpleStart, skipMarkup())
}

func (a *App) onAdvancedSearch(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	a.sessions.Begin(sender.ID, dialog.ModeAdvanced)
	return helpers.EditOrSendHTML(c, msgAdvancedStart, skipMarkup())
}

func (a *App) onSkip(c tele.Context) error {
	return a.feed(c, dialog.Event{Kind: dialog.EventSkip})
}

func (a *App) onGenreToggle(c tele.Context) error {
	id, err := callbacks.PayloadInt(c)
	if err != nil {
		return nil
	}
	return a.feed(c, dialog.Event{Kind: dialog.EventToggleGenre, GenreID: id})
}

func (a *App) onClearGenres(c tele.Context) error {
	return a.feed(c, dialog.Event{Kind: dialog.EventClearGenres})
}

func (a *App) onGenresDone(c tele.Context) error {
	return a.feed(c, dialog.Event{Kind: dialog.EventGenresDone})
}

func (a *App) onAdultChoice(include bool) tele.HandlerFunc {
	return func(c tele.Context) error {
		return a.feed(c, dialog.Event{Kind: dialog.EventAdult, Adult: include})
	}
}

func (a *App) onSortChoice(c tele.Context) error {
	key := callbacks.CallbackPayload(c)
	if key == "" {
		return nil
	}
	return a.feed(c, dialog.Event{Kind: dialog.EventSort, Sort: key})
}

func (a *App) onSortDone(c tele.Context) error {
	return a.feed(c, dialog.Event{Kind: dialog.EventSortDone})
}

func (a *App) onNoop(tele.Context) error {
	return nil
}

// ----- results -----

func (a *App) runSearch(c tele.Context, s *dialog.Session) error {
	ctx := helpers.BuildContext(c)

	loading := msgLoading
	if s.Mode == dialog.ModeAdvanced {
		names := a.catalog.GenreNames(ctx, s.Filters.GenreIDs)
		loading = formatSearchParams(s.Filters, names) + msgLoading
	}
	_ = helpers.EditOrSendHTML(c, loading)

	res := a.searcher.Search(ctx, s.Filters)
	if len(res.Movies) == 0 {
		sender := c.Sender()
		if sender != nil {
			a.sessions.Clear(sender.ID)
		}
		text := msgNoMovies
		if res.Degraded {
			text = msgSearchError
		}
		return helpers.EditOrSendHTML(c, text, mainMenuMarkup())
	}

	s.Results = res.Movies
	s.Page = 1
	return a.renderResults(c, s)
}

func (a *App) renderResults(c tele.Context, s *dialog.Session) error {
	if len(s.Results) == 0 {
		return helpers.EditOrSendHTML(c, msgNoMovies, mainMenuMarkup())
	}
	pg := search.NewPaginator(s.Results, a.perPage)
	if s.Page < 1 || s.Page > pg.TotalPages() {
		s.Page = 1
	}
	movies, info := pg.Page(s.Page)
	text := formatMoviesPage(movies, info) + "\n\n" + msgPickHint
	markup := resultsMarkup(info, pg.PageRange(info.Current, 2))
	return helpers.EditOrSendHTML(c, text, markup)
}

func (a *App) onSearchPage(c tele.Context) error {
	page, err := callbacks.PayloadInt(c)
	if err != nil {
		return nil
	}
	s := a.session(c)
	if s == nil || len(s.Results) == 0 {
		return helpers.EditOrSendHTML(c, msgStart, mainMenuMarkup())
	}
	s.Page = page
	return a.renderResults(c, s)
}

func (a *App) onBackToResults(c tele.Context) error {
	s := a.session(c)
	if s == nil || len(s.Results) == 0 {
		return helpers.EditOrSendHTML(c, msgStart, mainMenuMarkup())
	}
	if s.State == dialog.StatePick {
		s.State = dialog.StateBrowsing
	}
	return a.renderResults(c, s)
}

func (a *App) onDetails(c tele.Context) error {
	id, err := callbacks.PayloadInt64(c)
	if err != nil {
		return nil
	}
	ctx := helpers.BuildContext(c)
	details, err := a.catalog.Details(ctx, id)
	if err != nil {
		return helpers.SendHTML(c, msgDetailsFailed)
	}
	card := formatMovieDetails(details)
	if url := tmdb.PosterURL(details.PosterPath); url != "" {
		return helpers.SendPhotoHTML(c, url, truncateTo(card, maxCaptionLen), detailsBackMarkup())
	}
	return helpers.EditOrSendHTML(c, card, detailsBackMarkup())
}

// ----- movie pick and recommendations -----

func (a *App) onAskMovieChoice(c tele.Context) error {
	s := a.session(c)
	if s == nil || len(s.Results) == 0 {
		return helpers.EditOrSendHTML(c, msgStart, mainMenuMarkup())
	}
	s.State = dialog.StatePick
	return helpers.EditOrSendHTML(c, msgAskMovieChoice, movieChoiceMarkup())
}

func (a *App) onSkipMovieChoice(c tele.Context) error {
	return a.feed(c, dialog.Event{Kind: dialog.EventSkip})
}

// resolvePick matches the typed text against the shown results: a number is
// treated as a movie id (with a catalog lookup as fallback), anything else
// as a case-insensitive title fragment.
func (a *App) resolvePick(c tele.Context, s *dialog.Session) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	choice := strings.TrimSpace(c.Text())
	ctx := helpers.BuildContext(c)

	var picked *tmdb.Movie
	if id, err := strconv.ParseInt(choice, 10, 64); err == nil {
		for i := range s.Results {
			if s.Results[i].ID == id {
				picked = &s.Results[i]
				break
			}
		}
		if picked == nil {
			if details, err := a.catalog.Details(ctx, id); err == nil {
				picked = movieFromDetails(details)
			}
		}
	} else {
		needle := strings.ToLower(choice)
		for i := range s.Results {
			m := &s.Results[i]
			if strings.Contains(strings.ToLower(m.Title), needle) ||
				strings.Contains(strings.ToLower(m.OriginalTitle), needle) {
				picked = m
				break
			}
		}
	}

	if picked == nil {
		return helpers.SendHTML(c, msgMovieNotFound, movieChoiceMarkup())
	}

	a.prefs.Record(sender.ID, s.Filters.GenreIDs, *picked)
	a.sessions.Clear(sender.ID)
	return helpers.SendHTML(c, msgMovieSaved, pickedMovieMarkup(picked.ID))
}

func movieFromDetails(d *tmdb.Details) *tmdb.Movie {
	genreIDs := make([]int, 0, len(d.Genres))
	for _, g := range d.Genres {
		genreIDs = append(genreIDs, g.ID)
	}
	return &tmdb.Movie{
		ID:            d.ID,
		Title:         d.Title,
		OriginalTitle: d.OriginalTitle,
		Overview:      d.Overview,
		PosterPath:    d.PosterPath,
		ReleaseDate:   d.ReleaseDate,
		GenreIDs:      genreIDs,
		VoteAverage:   d.VoteAverage,
		VoteCount:     d.VoteCount,
		Popularity:    d.Popularity,
	}
}

func (a *App) recommendationText(c tele.Context) string {
	sender := c.Sender()
	if sender == nil {
		return msgRecommendHeader + html.EscapeString(recommend.MsgNotEnoughData)
	}
	ctx := helpers.BuildContext(c)
	answer := a.rec.Recommend(ctx, sender.ID, a.catalog.GenresByID(ctx))
	return msgRecommendHeader + html.EscapeString(answer)
}

func (a *App) onRecommendCallback(c tele.Context) error {
	markup := mainMenuMarkup()
	if s := a.session(c); s != nil && len(s.Results) > 0 {
		markup = detailsBackMarkup()
	}
	return helpers.EditOrSendHTML(c, a.recommendationText(c), markup)
}
