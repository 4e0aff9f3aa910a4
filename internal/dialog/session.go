package dialog

import (
	"sync"

	"github.com/m3rciful/moviebot/internal/search"
	"github.com/m3rciful/moviebot/internal/tmdb"
)

// State identifies a conversation step.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
	// StateTitle waits for a movie title or a skip.
	StateTitle State = "title"
	// StateGenres waits for genre toggles until the user confirms.
	StateGenres State = "genres"
	// StateYear waits for a release year or a skip.
	StateYear State = "year"
	// StateRating waits for a minimum rating or a skip.
	StateRating State = "rating"
	// StateLanguage waits for a language code or a skip.
	StateLanguage State = "language"
	// StateRegion waits for a region code or a skip.
	StateRegion State = "region"
	// StateAdult waits for the adult-content yes/no choice.
	StateAdult State = "adult"
	// StateSort waits for sort selection until the user confirms.
	StateSort State = "sort"
	// StateBrowsing means results are shown and paging is active.
	StateBrowsing State = "browsing"
	// StatePick waits for the user to name a movie from the results.
	StatePick State = "pick"
)

// Mode selects the short or the full question flow.
type Mode string

const (
	// ModeSimple asks only title, genres and year.
	ModeSimple Mode = "simple"
	// ModeAdvanced adds rating, language, region, adult and sort steps.
	ModeAdvanced Mode = "advanced"
)

// Session holds one user's conversation state and collected filters.
type Session struct {
	State State
	Mode  Mode

	Filters search.Filters

	// Results of the last executed search, kept for paging and picking.
	Results []tmdb.Movie
	Page    int
}

// NewSession starts a fresh session in the title step with mode defaults.
func NewSession(mode Mode) *Session {
	s := &Session{
		State: StateTitle,
		Mode:  mode,
		Page:  1,
	}
	s.Filters.SortBy = search.DefaultSort
	if mode == ModeAdvanced {
		s.Filters.Language = "ru-RU"
	}
	return s
}

// ToggleGenre adds or removes a genre id from the selection.
func (s *Session) ToggleGenre(id int) {
	for i, g := range s.Filters.GenreIDs {
		if g == id {
			s.Filters.GenreIDs = append(s.Filters.GenreIDs[:i], s.Filters.GenreIDs[i+1:]...)
			return
		}
	}
	s.Filters.GenreIDs = append(s.Filters.GenreIDs, id)
}

// HasGenre reports whether a genre id is currently selected.
func (s *Session) HasGenre(id int) bool {
	for _, g := range s.Filters.GenreIDs {
		if g == id {
			return true
		}
	}
	return false
}

// Store keeps per-user sessions in memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewStore constructs an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// Begin replaces any current session with a fresh one for the given mode.
func (st *Store) Begin(userID int64, mode Mode) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := NewSession(mode)
	st.sessions[userID] = s
	return s
}

// Get returns the user's session, or nil when none is active.
func (st *Store) Get(userID int64) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[userID]
}

// Update runs fn on the user's session under the store lock.
// It reports whether a session existed.
func (st *Store) Update(userID int64, fn func(*Session)) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[userID]
	if !ok {
		return false
	}
	fn(s)
	return true
}

// Clear removes the user's session.
func (st *Store) Clear(userID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userID)
}

// InProgress reports whether the user is inside an input-collecting step.
// Browsing does not claim free-form text: a user paging through results can
// still run commands.
func (st *Store) InProgress(userID int64) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[userID]
	if !ok {
		return false
	}
	switch s.State {
	case StateIdle, StateBrowsing:
		return false
	default:
		return true
	}
}

// StateOf returns the user's current state, StateIdle when no session exists.
func (st *Store) StateOf(userID int64) State {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if s, ok := st.sessions[userID]; ok {
		return s.State
	}
	return StateIdle
}
