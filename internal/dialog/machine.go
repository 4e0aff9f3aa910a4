package dialog

import (
	"errors"
	"fmt"
)

// ErrUnhandled is returned when the current state has no handler for
// the incoming event kind.
var ErrUnhandled = errors.New("dialog: event not handled in current state")

// EventKind classifies user input arriving at the machine.
type EventKind int

const (
	// EventText is free-form text typed by the user.
	EventText EventKind = iota
	// EventSkip skips the current optional step.
	EventSkip
	// EventToggleGenre flips one genre in the selection.
	EventToggleGenre
	// EventClearGenres drops the whole genre selection.
	EventClearGenres
	// EventGenresDone confirms the genre selection.
	EventGenresDone
	// EventAdult carries the adult-content yes/no answer.
	EventAdult
	// EventSort selects a sort order.
	EventSort
	// EventSortDone confirms the sort selection.
	EventSortDone
	// EventCancel aborts the conversation.
	EventCancel
)

// Event is one unit of user input with its kind-specific payload.
type Event struct {
	Kind    EventKind
	Text    string
	GenreID int
	Adult   bool
	Sort    string
}

// Action tells the presentation layer what to do after a transition.
type Action int

const (
	// ActionPrompt asks the question for the session's new state.
	ActionPrompt Action = iota
	// ActionRefresh redraws the current step's keyboard in place.
	ActionRefresh
	// ActionExecute runs the search with the collected filters.
	ActionExecute
	// ActionReject re-asks the current question after invalid input.
	ActionReject
	// ActionAlert shows a callback alert without changing state.
	ActionAlert
	// ActionPick resolves the typed text against the shown results.
	ActionPick
	// ActionCancel ends the conversation.
	ActionCancel
)

// Notice names the reason behind a reject or alert outcome.
type Notice string

const (
	NoticeNone        Notice = ""
	NoticeBadYear     Notice = "bad_year"
	NoticeBadRating   Notice = "bad_rating"
	NoticeBadLanguage Notice = "bad_language"
	NoticeBadRegion   Notice = "bad_region"
	NoticeNeedGenre   Notice = "need_genre"
)

// Outcome is the result of feeding one event into the machine.
type Outcome struct {
	Action Action
	State  State
	Notice Notice
}

type handlerFunc func(*Session, Event) Outcome

// Machine drives the question flow through a per-state transition table.
type Machine struct {
	table map[State]map[EventKind]handlerFunc
}

// NewMachine builds the transition table and verifies every step of both
// flows has handlers for the events its keyboard can produce. The table is
// static, so a gap is a programming error and panics.
func NewMachine() *Machine {
	m := &Machine{table: map[State]map[EventKind]handlerFunc{
		StateTitle: {
			EventText: func(s *Session, ev Event) Outcome {
				s.Filters.Title = ev.Text
				return advance(s, StateGenres)
			},
			EventSkip: func(s *Session, _ Event) Outcome {
				return advance(s, StateGenres)
			},
		},
		StateGenres: {
			EventToggleGenre: func(s *Session, ev Event) Outcome {
				s.ToggleGenre(ev.GenreID)
				return Outcome{Action: ActionRefresh, State: s.State}
			},
			EventClearGenres: func(s *Session, _ Event) Outcome {
				s.Filters.GenreIDs = nil
				return Outcome{Action: ActionRefresh, State: s.State}
			},
			EventGenresDone: func(s *Session, _ Event) Outcome {
				// The short flow has no further narrowing steps, so it
				// needs at least one genre to produce a meaningful query.
				if s.Mode == ModeSimple && len(s.Filters.GenreIDs) == 0 {
					return Outcome{Action: ActionAlert, State: s.State, Notice: NoticeNeedGenre}
				}
				return advance(s, StateYear)
			},
		},
		StateYear: {
			EventText: func(s *Session, ev Event) Outcome {
				year, ok := ParseYear(ev.Text)
				if !ok {
					return reject(s, NoticeBadYear)
				}
				s.Filters.Year = year
				return afterYear(s)
			},
			EventSkip: func(s *Session, _ Event) Outcome {
				return afterYear(s)
			},
		},
		StateRating: {
			EventText: func(s *Session, ev Event) Outcome {
				rating, ok := ParseRating(ev.Text)
				if !ok {
					return reject(s, NoticeBadRating)
				}
				s.Filters.MinRating = rating
				s.Filters.HasMinRating = true
				return advance(s, StateLanguage)
			},
			EventSkip: func(s *Session, _ Event) Outcome {
				return advance(s, StateLanguage)
			},
		},
		StateLanguage: {
			EventText: func(s *Session, ev Event) Outcome {
				code, ok := ParseLanguage(ev.Text)
				if !ok {
					return reject(s, NoticeBadLanguage)
				}
				s.Filters.Language = code
				return advance(s, StateRegion)
			},
			EventSkip: func(s *Session, _ Event) Outcome {
				return advance(s, StateRegion)
			},
		},
		StateRegion: {
			EventText: func(s *Session, ev Event) Outcome {
				code, ok := ParseRegion(ev.Text)
				if !ok {
					return reject(s, NoticeBadRegion)
				}
				s.Filters.Region = code
				return advance(s, StateAdult)
			},
			EventSkip: func(s *Session, _ Event) Outcome {
				return advance(s, StateAdult)
			},
		},
		StateAdult: {
			EventAdult: func(s *Session, ev Event) Outcome {
				s.Filters.IncludeAdult = ev.Adult
				return advance(s, StateSort)
			},
		},
		StateSort: {
			EventSort: func(s *Session, ev Event) Outcome {
				s.Filters.SortBy = ev.Sort
				return Outcome{Action: ActionRefresh, State: s.State}
			},
			EventSortDone: func(s *Session, _ Event) Outcome {
				return execute(s)
			},
		},
		StateBrowsing: {},
		StatePick: {
			EventText: func(s *Session, _ Event) Outcome {
				return Outcome{Action: ActionPick, State: s.State}
			},
			EventSkip: func(s *Session, _ Event) Outcome {
				s.State = StateBrowsing
				return Outcome{Action: ActionPrompt, State: s.State}
			},
		},
	}}
	if err := m.validate(); err != nil {
		panic(err)
	}
	return m
}

// Handle feeds one event into the machine for the given session.
// Cancel is accepted in every state.
func (m *Machine) Handle(s *Session, ev Event) (Outcome, error) {
	if ev.Kind == EventCancel {
		s.State = StateIdle
		return Outcome{Action: ActionCancel, State: StateIdle}, nil
	}
	handlers, ok := m.table[s.State]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: state %q", ErrUnhandled, s.State)
	}
	h, ok := handlers[ev.Kind]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: state %q, event %d", ErrUnhandled, s.State, ev.Kind)
	}
	return h(s, ev), nil
}

func (m *Machine) validate() error {
	required := map[State][]EventKind{
		StateTitle:    {EventText, EventSkip},
		StateGenres:   {EventToggleGenre, EventClearGenres, EventGenresDone},
		StateYear:     {EventText, EventSkip},
		StateRating:   {EventText, EventSkip},
		StateLanguage: {EventText, EventSkip},
		StateRegion:   {EventText, EventSkip},
		StateAdult:    {EventAdult},
		StateSort:     {EventSort, EventSortDone},
		StatePick:     {EventText, EventSkip},
	}
	for state, kinds := range required {
		handlers, ok := m.table[state]
		if !ok {
			return fmt.Errorf("dialog: no handlers for state %q", state)
		}
		for _, kind := range kinds {
			if _, ok := handlers[kind]; !ok {
				return fmt.Errorf("dialog: state %q missing handler for event %d", state, kind)
			}
		}
	}
	return nil
}

func advance(s *Session, next State) Outcome {
	s.State = next
	return Outcome{Action: ActionPrompt, State: next}
}

func reject(s *Session, notice Notice) Outcome {
	return Outcome{Action: ActionReject, State: s.State, Notice: notice}
}

// afterYear is the point where the two flows diverge: the short flow
// searches right away, the full one keeps asking.
func afterYear(s *Session) Outcome {
	if s.Mode == ModeSimple {
		return execute(s)
	}
	return advance(s, StateRating)
}

func execute(s *Session) Outcome {
	s.State = StateBrowsing
	return Outcome{Action: ActionExecute, State: StateBrowsing}
}
