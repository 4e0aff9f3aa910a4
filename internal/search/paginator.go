package search

import "github.com/m3rciful/moviebot/internal/tmdb"

// PageInfo describes one page of a paginated result list.
type PageInfo struct {
	Current    int
	TotalPages int
	TotalItems int
	StartIndex int // 1-based index of the first item on the page
	EndIndex   int // 1-based index of the last item on the page
	HasPrev    bool
	HasNext    bool
}

// Paginator slices a fixed result list into pages.
type Paginator struct {
	items   []tmdb.Movie
	perPage int
	total   int
}

// NewPaginator wraps items with the given page size. A non-positive perPage
// falls back to 10.
func NewPaginator(items []tmdb.Movie, perPage int) *Paginator {
	if perPage <= 0 {
		perPage = 10
	}
	total := 0
	if len(items) > 0 {
		total = (len(items) + perPage - 1) / perPage
	}
	return &Paginator{items: items, perPage: perPage, total: total}
}

// TotalPages returns the number of pages.
func (p *Paginator) TotalPages() int {
	return p.total
}

// Page returns the items of a 1-based page and its info. Out-of-range pages
// return an empty slice and a zero PageInfo.
func (p *Paginator) Page(page int) ([]tmdb.Movie, PageInfo) {
	if page < 1 || page > p.total {
		return nil, PageInfo{}
	}

	start := (page - 1) * p.perPage
	end := start + p.perPage
	if end > len(p.items) {
		end = len(p.items)
	}

	items := p.items[start:end]
	return items, PageInfo{
		Current:    page,
		TotalPages: p.total,
		TotalItems: len(p.items),
		StartIndex: start + 1,
		EndIndex:   end,
		HasPrev:    page > 1,
		HasNext:    page < p.total,
	}
}

// PageRange returns up to 2*delta+1 page numbers centred on current for
// quick-navigation buttons, clamped to the valid range.
func (p *Paginator) PageRange(current, delta int) []int {
	if delta < 0 {
		delta = 0
	}
	if p.total <= 2*delta+1 {
		pages := make([]int, 0, p.total)
		for i := 1; i <= p.total; i++ {
			pages = append(pages, i)
		}
		return pages
	}

	start := current - delta
	end := current + delta
	if start < 1 {
		start = 1
	}
	if end > p.total {
		end = p.total
	}
	if start == 1 {
		end = 2*delta + 1
	} else if end == p.total {
		start = p.total - 2*delta
	}

	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}
