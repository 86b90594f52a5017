package query

import (
	"github.com/courtside-lab/project-courtside/internal/core/join"
)

// Config declares, per screen, which derived fields are searchable and how
// each sortable field compares. It replaces the per-screen copies of
// search/sort/paginate state the admin views used to carry.
type Config struct {
	SearchFields []string
	SortTypes    map[string]FieldType
	PageSize     int
}

// Session holds the query state for one screen: search term, sort spec and
// current page. It is the boundary where out-of-range page requests are
// rejected — the slice math in Paginate never sees them.
type Session struct {
	cfg  Config
	sort SortSpec
	term string
	page int

	// totalPages from the most recent Run; page requests validate
	// against it.
	lastTotalPages int
}

// NewSession creates a session starting at page 1 with no sort applied.
func NewSession(cfg Config) *Session {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	return &Session{cfg: cfg, page: 1}
}

// SetSearch replaces the search term and returns to the first page.
func (s *Session) SetSearch(term string) {
	if term == s.term {
		return
	}
	s.term = term
	s.page = 1
}

// ToggleSort applies a sort request: toggling the current field flips the
// direction, selecting a new field resets the direction to descending.
func (s *Session) ToggleSort(field string) {
	if field == "" {
		return
	}
	if s.sort.Field == field {
		s.sort.Descending = !s.sort.Descending
		return
	}
	s.sort = SortSpec{Field: field, Descending: true}
}

// Sort returns the current sort spec.
func (s *Session) Sort() SortSpec { return s.sort }

// Page returns the current page number.
func (s *Session) Page() int { return s.page }

// SetPage requests a page change. Out-of-range requests (below 1, or past
// the last known total) are a no-op that keeps the current page, and the
// return value reports whether the request was applied.
func (s *Session) SetPage(page int) bool {
	if page < 1 {
		return false
	}
	if page != 1 && page > s.lastTotalPages {
		return false
	}
	s.page = page
	return true
}

// Run executes the full query pipeline over a snapshot: search, sort, then
// paginate at the session's current page. When a refresh shrank the
// collection under the current page, the session falls back to the last
// non-empty page.
func (s *Session) Run(records []join.ViewRecord) Result {
	filtered := Search(records, s.term, s.cfg.SearchFields)
	sorted := Sort(filtered, s.sort, s.cfg.SortTypes)

	totalPages := 0
	if s.cfg.PageSize > 0 {
		totalPages = (len(sorted) + s.cfg.PageSize - 1) / s.cfg.PageSize
	}
	if totalPages > 0 && s.page > totalPages {
		s.page = totalPages
	}
	if s.page < 1 {
		s.page = 1
	}
	s.lastTotalPages = totalPages

	return Paginate(sorted, s.page, s.cfg.PageSize)
}
