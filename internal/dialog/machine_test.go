package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/moviebot/internal/search"
)

func step(t *testing.T, m *Machine, s *Session, ev Event) Outcome {
	t.Helper()
	out, err := m.Handle(s, ev)
	require.NoError(t, err)
	return out
}

func TestSimpleFlowRunsSearchAfterYear(t *testing.T) {
	m := NewMachine()
	s := NewSession(ModeSimple)

	out := step(t, m, s, Event{Kind: EventText, Text: "Матрица"})
	assert.Equal(t, ActionPrompt, out.Action)
	assert.Equal(t, StateGenres, s.State)
	assert.Equal(t, "Матрица", s.Filters.Title)

	step(t, m, s, Event{Kind: EventToggleGenre, GenreID: 28})
	out = step(t, m, s, Event{Kind: EventGenresDone})
	assert.Equal(t, StateYear, s.State)

	out = step(t, m, s, Event{Kind: EventText, Text: "1999"})
	assert.Equal(t, ActionExecute, out.Action)
	assert.Equal(t, StateBrowsing, s.State)
	assert.Equal(t, 1999, s.Filters.Year)
}

func TestSimpleFlowRequiresAGenre(t *testing.T) {
	m := NewMachine()
	s := NewSession(ModeSimple)
	step(t, m, s, Event{Kind: EventSkip})

	out := step(t, m, s, Event{Kind: EventGenresDone})
	assert.Equal(t, ActionAlert, out.Action)
	assert.Equal(t, NoticeNeedGenre, out.Notice)
	assert.Equal(t, StateGenres, s.State)

	step(t, m, s, Event{Kind: EventToggleGenre, GenreID: 35})
	out = step(t, m, s, Event{Kind: EventGenresDone})
	assert.Equal(t, ActionPrompt, out.Action)
	assert.Equal(t, StateYear, s.State)
}

func TestAdvancedFlowWalksAllSteps(t *testing.T) {
	m := NewMachine()
	s := NewSession(ModeAdvanced)

	step(t, m, s, Event{Kind: EventText, Text: "Дюна"})
	out := step(t, m, s, Event{Kind: EventGenresDone})
	assert.Equal(t, StateYear, out.State, "advanced flow allows an empty genre set")

	step(t, m, s, Event{Kind: EventText, Text: "2021"})
	assert.Equal(t, StateRating, s.State)

	step(t, m, s, Event{Kind: EventText, Text: "7.5"})
	assert.Equal(t, StateLanguage, s.State)
	assert.True(t, s.Filters.HasMinRating)
	assert.InDelta(t, 7.5, s.Filters.MinRating, 0.001)

	step(t, m, s, Event{Kind: EventText, Text: "en-US"})
	assert.Equal(t, StateRegion, s.State)

	step(t, m, s, Event{Kind: EventText, Text: "us"})
	assert.Equal(t, StateAdult, s.State)
	assert.Equal(t, "US", s.Filters.Region)

	step(t, m, s, Event{Kind: EventAdult, Adult: false})
	assert.Equal(t, StateSort, s.State)

	step(t, m, s, Event{Kind: EventSort, Sort: "vote_average.desc"})
	out = step(t, m, s, Event{Kind: EventSortDone})
	assert.Equal(t, ActionExecute, out.Action)
	assert.Equal(t, StateBrowsing, s.State)
	assert.Equal(t, "vote_average.desc", s.Filters.SortBy)
}

func TestAdvancedFlowSkipsKeepDefaults(t *testing.T) {
	m := NewMachine()
	s := NewSession(ModeAdvanced)

	for _, kind := range []EventKind{EventSkip, EventGenresDone, EventSkip, EventSkip, EventSkip, EventSkip} {
		step(t, m, s, Event{Kind: kind})
	}
	require.Equal(t, StateAdult, s.State)

	step(t, m, s, Event{Kind: EventAdult, Adult: true})
	out := step(t, m, s, Event{Kind: EventSortDone})
	assert.Equal(t, ActionExecute, out.Action)

	assert.Empty(t, s.Filters.Title)
	assert.Empty(t, s.Filters.GenreIDs)
	assert.Zero(t, s.Filters.Year)
	assert.False(t, s.Filters.HasMinRating)
	assert.Equal(t, "ru-RU", s.Filters.Language)
	assert.Empty(t, s.Filters.Region)
	assert.True(t, s.Filters.IncludeAdult)
	assert.Equal(t, search.DefaultSort, s.Filters.SortBy)
}

func TestInvalidInputRepeatsTheQuestion(t *testing.T) {
	m := NewMachine()
	s := NewSession(ModeAdvanced)
	step(t, m, s, Event{Kind: EventSkip})
	step(t, m, s, Event{Kind: EventGenresDone})

	out := step(t, m, s, Event{Kind: EventText, Text: "1850"})
	assert.Equal(t, ActionReject, out.Action)
	assert.Equal(t, NoticeBadYear, out.Notice)
	assert.Equal(t, StateYear, s.State)

	step(t, m, s, Event{Kind: EventText, Text: "2005"})
	require.Equal(t, StateRating, s.State)

	out = step(t, m, s, Event{Kind: EventText, Text: "11"})
	assert.Equal(t, NoticeBadRating, out.Notice)
	assert.Equal(t, StateRating, s.State)
}

func TestGenreToggleAndClear(t *testing.T) {
	m := NewMachine()
	s := NewSession(ModeSimple)
	step(t, m, s, Event{Kind: EventSkip})

	step(t, m, s, Event{Kind: EventToggleGenre, GenreID: 28})
	step(t, m, s, Event{Kind: EventToggleGenre, GenreID: 35})
	assert.Equal(t, []int{28, 35}, s.Filters.GenreIDs)

	out := step(t, m, s, Event{Kind: EventToggleGenre, GenreID: 28})
	assert.Equal(t, ActionRefresh, out.Action)
	assert.Equal(t, []int{35}, s.Filters.GenreIDs)

	step(t, m, s, Event{Kind: EventClearGenres})
	assert.Empty(t, s.Filters.GenreIDs)
}

func TestCancelWorksInAnyState(t *testing.T) {
	m := NewMachine()
	for _, mode := range []Mode{ModeSimple, ModeAdvanced} {
		s := NewSession(mode)
		step(t, m, s, Event{Kind: EventText, Text: "x"})
		out := step(t, m, s, Event{Kind: EventCancel})
		assert.Equal(t, ActionCancel, out.Action)
		assert.Equal(t, StateIdle, s.State)
	}
}

func TestUnhandledEventReturnsError(t *testing.T) {
	m := NewMachine()
	s := NewSession(ModeSimple)

	_, err := m.Handle(s, Event{Kind: EventSortDone})
	assert.ErrorIs(t, err, ErrUnhandled)
}

func TestPickStepResolvesOrReturnsToBrowsing(t *testing.T) {
	m := NewMachine()
	s := NewSession(ModeSimple)
	s.State = StatePick

	out := step(t, m, s, Event{Kind: EventText, Text: "2"})
	assert.Equal(t, ActionPick, out.Action)

	out = step(t, m, s, Event{Kind: EventSkip})
	assert.Equal(t, ActionPrompt, out.Action)
	assert.Equal(t, StateBrowsing, s.State)
}

func TestStoreLifecycle(t *testing.T) {
	st := NewStore()
	assert.False(t, st.InProgress(1))
	assert.Equal(t, StateIdle, st.StateOf(1))

	st.Begin(1, ModeAdvanced)
	assert.True(t, st.InProgress(1))
	assert.Equal(t, StateTitle, st.StateOf(1))

	ok := st.Update(1, func(s *Session) { s.State = StateBrowsing })
	assert.True(t, ok)
	assert.False(t, st.InProgress(1), "browsing must not capture free-form text")

	st.Clear(1)
	assert.Nil(t, st.Get(1))
	assert.False(t, st.Update(1, func(*Session) {}))
}
