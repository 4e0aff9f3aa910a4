// Package recommend tracks user taste and turns it into AI movie
// recommendations.
package recommend

import (
	"sort"
	"sync"

	"github.com/m3rciful/moviebot/internal/tmdb"
)

// MovieSummary is the slice of a picked movie kept for prompts.
type MovieSummary struct {
	ID     int64
	Title  string
	Genres []int
	Rating float64
}

// preferences accumulates one user's genre counts and recent picks.
type preferences struct {
	genreFreq  map[int]int
	genreOrder []int // first-seen order, breaks frequency ties
	movies     []MovieSummary
}

// Store keeps per-user preferences in memory.
type Store struct {
	mu    sync.RWMutex
	users map[int64]*preferences
}

// NewStore constructs an empty preference store.
func NewStore() *Store {
	return &Store{users: make(map[int64]*preferences)}
}

// Record notes the genres the user searched with and the movie they picked.
func (st *Store) Record(userID int64, genreIDs []int, movie tmdb.Movie) {
	st.mu.Lock()
	defer st.mu.Unlock()
	p, ok := st.users[userID]
	if !ok {
		p = &preferences{genreFreq: make(map[int]int)}
		st.users[userID] = p
	}
	for _, id := range genreIDs {
		if _, seen := p.genreFreq[id]; !seen {
			p.genreOrder = append(p.genreOrder, id)
		}
		p.genreFreq[id]++
	}
	p.movies = append(p.movies, MovieSummary{
		ID:     movie.ID,
		Title:  movie.Title,
		Genres: append([]int(nil), movie.GenreIDs...),
		Rating: movie.VoteAverage,
	})
}

// HasData reports whether the user has any recorded history.
func (st *Store) HasData(userID int64) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	p, ok := st.users[userID]
	return ok && (len(p.genreFreq) > 0 || len(p.movies) > 0)
}

// GenreCount is one genre with how often the user picked it.
type GenreCount struct {
	ID    int
	Count int
}

// TopGenres returns up to max genres ordered by frequency, ties resolved
// by which genre the user selected first.
func (st *Store) TopGenres(userID int64, max int) []GenreCount {
	st.mu.RLock()
	defer st.mu.RUnlock()
	p, ok := st.users[userID]
	if !ok {
		return nil
	}
	firstSeen := make(map[int]int, len(p.genreOrder))
	for i, id := range p.genreOrder {
		firstSeen[id] = i
	}
	out := make([]GenreCount, 0, len(p.genreFreq))
	for id, count := range p.genreFreq {
		out = append(out, GenreCount{ID: id, Count: count})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return firstSeen[out[i].ID] < firstSeen[out[j].ID]
	})
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// RecentMovies returns up to max of the user's latest picks, newest last.
func (st *Store) RecentMovies(userID int64, max int) []MovieSummary {
	st.mu.RLock()
	defer st.mu.RUnlock()
	p, ok := st.users[userID]
	if !ok {
		return nil
	}
	movies := p.movies
	if max > 0 && len(movies) > max {
		movies = movies[len(movies)-max:]
	}
	out := make([]MovieSummary, len(movies))
	copy(out, movies)
	return out
}
