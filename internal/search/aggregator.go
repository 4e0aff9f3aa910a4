package search

import (
	"context"
	"sort"
	"time"

	"log/slog"

	"github.com/m3rciful/moviebot/core/logger"
	"github.com/m3rciful/moviebot/internal/tmdb"
)

const logComponent = "service.search"

// DefaultSort orders results by popularity, the catalog default.
const DefaultSort = "popularity.desc"

// Degrade reasons reported in Result.Reason.
const (
	ReasonAllSourcesFailed = "all_sources_failed"
	ReasonTextFailed       = "text_search_failed"
	ReasonDiscoverFailed   = "discover_failed"
)

// Catalog is the slice of the catalog client the aggregator needs.
type Catalog interface {
	SearchByText(ctx context.Context, query string, opts tmdb.SearchOptions) ([]tmdb.Movie, error)
	Discover(ctx context.Context, f tmdb.DiscoverFilter) ([]tmdb.Movie, error)
}

// Filters is the full set of user-selected search criteria.
type Filters struct {
	Title        string
	GenreIDs     []int
	Year         int
	MinRating    float64
	HasMinRating bool
	Language     string
	Region       string
	IncludeAdult bool
	SortBy       string
}

// Result carries merged movies plus a degrade marker when one or both
// catalog legs failed and the list may be incomplete.
type Result struct {
	Movies   []tmdb.Movie
	Degraded bool
	Reason   string
}

// Service merges text search and discover results into one ranked list.
type Service struct {
	catalog Catalog
}

// NewService builds a search Service over the given catalog.
func NewService(catalog Catalog) *Service {
	return &Service{catalog: catalog}
}

// Search runs the text leg (when a title is present) and the discover leg,
// merges them with first-occurrence dedupe, and applies presentation filters.
// Catalog failures degrade the result instead of failing it.
func (s *Service) Search(ctx context.Context, f Filters) Result {
	start := time.Now()

	var (
		merged     []tmdb.Movie
		textFailed bool
		discFailed bool
	)

	if f.Title != "" {
		found, err := s.catalog.SearchByText(ctx, f.Title, tmdb.SearchOptions{
			Year:         f.Year,
			IncludeAdult: f.IncludeAdult,
			Language:     f.Language,
		})
		if err != nil {
			textFailed = true
			logger.Warn(ctx, logComponent, "text_leg.failed",
				slog.String("status", "degraded"),
				slog.String("err", err.Error()),
			)
		} else {
			// Text results ignore genre and rating on the wire, so they are
			// narrowed here; discover already filtered server-side.
			merged = append(merged, filterMovies(found, f.GenreIDs, f.MinRating, f.HasMinRating)...)
		}
	}

	discovered, err := s.catalog.Discover(ctx, tmdb.DiscoverFilter{
		GenreIDs:     f.GenreIDs,
		Year:         f.Year,
		MinRating:    f.MinRating,
		HasMinRating: f.HasMinRating,
		Language:     f.Language,
		Region:       f.Region,
		IncludeAdult: f.IncludeAdult,
		SortBy:       f.SortBy,
	})
	if err != nil {
		discFailed = true
		logger.Warn(ctx, logComponent, "discover_leg.failed",
			slog.String("status", "degraded"),
			slog.String("err", err.Error()),
		)
	} else {
		merged = append(merged, discovered...)
	}

	movies := postProcess(dedupe(merged), f.SortBy)

	res := Result{Movies: movies}
	switch {
	case textFailed && discFailed:
		res.Degraded = true
		res.Reason = ReasonAllSourcesFailed
	case textFailed:
		res.Degraded = true
		res.Reason = ReasonTextFailed
	case discFailed:
		res.Degraded = true
		res.Reason = ReasonDiscoverFailed
	}

	outcome := "ok"
	if len(movies) == 0 {
		outcome = "empty"
	}
	logger.Info(ctx, logComponent, "search.done",
		slog.String("status", searchStatus(res)),
		slog.String("outcome", outcome),
		slog.Int("results", len(movies)),
		slog.Duration("duration", logger.Took(start)),
	)
	return res
}

func searchStatus(r Result) string {
	if r.Degraded {
		return "degraded"
	}
	return "ok"
}

// filterMovies keeps movies carrying every requested genre and meeting the
// rating threshold.
func filterMovies(movies []tmdb.Movie, genreIDs []int, minRating float64, hasRating bool) []tmdb.Movie {
	if len(genreIDs) == 0 && !hasRating {
		return movies
	}
	filtered := make([]tmdb.Movie, 0, len(movies))
	for _, m := range movies {
		if len(genreIDs) > 0 && !hasAllGenres(m.GenreIDs, genreIDs) {
			continue
		}
		if hasRating {
			// An unvoted movie has no rating at all, not a rating of zero.
			if m.VoteAverage == 0 && m.VoteCount == 0 {
				continue
			}
			if m.VoteAverage < minRating {
				continue
			}
		}
		filtered = append(filtered, m)
	}
	return filtered
}

func hasAllGenres(have []int, want []int) bool {
	set := make(map[int]struct{}, len(have))
	for _, id := range have {
		set[id] = struct{}{}
	}
	for _, id := range want {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}

// dedupe drops repeated movie ids keeping the first occurrence, which gives
// text matches priority over discover rows.
func dedupe(movies []tmdb.Movie) []tmdb.Movie {
	seen := make(map[int64]struct{}, len(movies))
	out := make([]tmdb.Movie, 0, len(movies))
	for _, m := range movies {
		if m.ID == 0 {
			continue
		}
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}

// postProcess drops posterless movies and re-sorts by popularity unless the
// user picked a custom sort.
func postProcess(movies []tmdb.Movie, sortBy string) []tmdb.Movie {
	out := make([]tmdb.Movie, 0, len(movies))
	for _, m := range movies {
		if m.PosterPath == "" {
			continue
		}
		out = append(out, m)
	}
	if sortBy == "" || sortBy == DefaultSort {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Popularity > out[j].Popularity
		})
	}
	return out
}
