package listing

import (
	"slices"
	"sync"

	"github.com/nrfta/listing-go/pagerange"
)

// DefaultVisiblePages is the width of the strip returned by State.PageNumbers
// when no positive width is given.
const DefaultVisiblePages = 5

// StateOption configures a State.
type StateOption func(*stateConfig)

type stateConfig struct {
	perPage          int
	resetOnAnyChange bool
}

// WithPerPage sets the construction-time page size. Reset restores it.
// Default: 10
func WithPerPage(n int) StateOption {
	return func(c *stateConfig) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// WithPageResetOnAnyChange makes every search, sort and filter mutation reset
// the current page to 1, including RemoveSort, ClearSorts, RemoveFilter,
// ClearFilters and SetCustomFilter. By default only SetSearch, AddSort and
// AddFilter reset the page.
func WithPageResetOnAnyChange() StateOption {
	return func(c *stateConfig) {
		c.resetOnAnyChange = true
	}
}

// State is the query state of one list view: which page of which searched,
// sorted and filtered set is shown. It is the only place where the
// "changing X resets the page" policy lives.
//
// Mutators never fail. Guarded mutators that may be ignored (SetPage,
// NextPage, PrevPage, RemoveSort, RemoveFilter) report whether they applied.
//
// A State is safe for concurrent use; debounced search writes to it from a
// timer goroutine.
type State struct {
	mu sync.RWMutex

	cfg           stateConfig
	pagination    Pagination
	search        string
	sorts         []Sort
	filters       []Filter
	customFilters []CustomFilter

	watchers map[int]chan struct{}
	nextID   int
}

// NewState creates the state of a new list view.
//
// Example:
//
//	state := listing.NewState(listing.WithPerPage(20))
//	state.SetSearch("banjir")
//	state.AddSort("tanggal", listing.Desc)
//	q := state.Query() // {Page: 1, Limit: 20, Search: "banjir", Sort: "tanggal:desc"}
func NewState(opts ...StateOption) *State {
	cfg := stateConfig{perPage: DefaultPerPage}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &State{
		cfg:        cfg,
		pagination: initialPagination(cfg.perPage),
		watchers:   map[int]chan struct{}{},
	}
}

func initialPagination(perPage int) Pagination {
	return Pagination{
		CurrentPage: 1,
		PerPage:     perPage,
		FirstPage:   1,
	}
}

// update runs fn under the write lock and notifies watchers afterwards.
func (s *State) update(fn func()) {
	s.mu.Lock()
	fn()
	s.mu.Unlock()
	s.notify()
}

// guarded runs fn under the write lock and notifies watchers only if fn applied.
func (s *State) guarded(fn func() bool) bool {
	s.mu.Lock()
	applied := fn()
	s.mu.Unlock()

	if applied {
		s.notify()
	}
	return applied
}

// SetPagination overwrites all pagination fields, typically with the metadata
// of a server response.
func (s *State) SetPagination(p Pagination) {
	s.update(func() {
		s.pagination = p
	})
}

// SetPage moves to page p if 1 ≤ p ≤ LastPage. Out of range pages (for
// instance a stale click after the list shrank) are ignored and false is
// returned.
func (s *State) SetPage(p int) bool {
	return s.guarded(func() bool {
		if p < 1 || p > s.pagination.LastPage {
			return false
		}
		s.pagination.CurrentPage = p
		return true
	})
}

// SetPerPage sets the page size and returns to page 1. n is not checked.
func (s *State) SetPerPage(n int) {
	s.update(func() {
		s.pagination.PerPage = n
		s.pagination.CurrentPage = 1
	})
}

// SetDefaultPerPage replaces the construction-time page size that Reset
// restores, applies it and returns to page 1. Non-positive n is ignored.
func (s *State) SetDefaultPerPage(n int) {
	if n <= 0 {
		return
	}

	s.update(func() {
		s.cfg.perPage = n
		s.pagination.PerPage = n
		s.pagination.CurrentPage = 1
	})
}

// NextPage advances one page if there is a next page.
func (s *State) NextPage() bool {
	return s.guarded(func() bool {
		if !s.hasNextPage() {
			return false
		}
		s.pagination.CurrentPage++
		return true
	})
}

// PrevPage goes back one page if there is a previous page.
func (s *State) PrevPage() bool {
	return s.guarded(func() bool {
		if !s.hasPrevPage() {
			return false
		}
		s.pagination.CurrentPage--
		return true
	})
}

// GoToFirstPage jumps to page 1.
func (s *State) GoToFirstPage() {
	s.update(func() {
		s.pagination.CurrentPage = 1
	})
}

// GoToLastPage jumps to LastPage as last reported by the server.
// Before the first response LastPage is 0, so the state then points at
// page 0 and Query carries page=0 until SetPagination or another page
// mutation runs. List endpoints built on ParseQuery serve that as page 1.
func (s *State) GoToLastPage() {
	s.update(func() {
		s.pagination.CurrentPage = s.pagination.LastPage
	})
}

// SetSearch sets the search string and returns to page 1.
func (s *State) SetSearch(search string) {
	s.update(func() {
		s.search = search
		s.pagination.CurrentPage = 1
	})
}

// AddSort sorts by field. An existing sort on field keeps its position and
// takes the new direction; otherwise the sort is appended. Returns to page 1.
func (s *State) AddSort(field string, direction Direction) {
	s.update(func() {
		if i := slices.IndexFunc(s.sorts, func(st Sort) bool { return st.Field == field }); i >= 0 {
			s.sorts[i].Direction = direction
		} else {
			s.sorts = append(s.sorts, Sort{Field: field, Direction: direction})
		}
		s.pagination.CurrentPage = 1
	})
}

// RemoveSort drops the sort on field. Reports whether one existed.
func (s *State) RemoveSort(field string) bool {
	return s.guarded(func() bool {
		before := len(s.sorts)
		s.sorts = slices.DeleteFunc(s.sorts, func(st Sort) bool { return st.Field == field })
		if len(s.sorts) == before {
			return false
		}
		s.resetPageOnRemoval()
		return true
	})
}

// ClearSorts drops all sorts.
func (s *State) ClearSorts() {
	s.update(func() {
		s.sorts = nil
		s.resetPageOnRemoval()
	})
}

// AddFilter filters on field. An empty operator means OpEq. An existing
// filter on field is replaced in place; otherwise the filter is appended.
// Returns to page 1.
func (s *State) AddFilter(field string, value any, op Operator) {
	f := Filter{Field: field, Value: value, Operator: normalizeOperator(op)}

	s.update(func() {
		if i := slices.IndexFunc(s.filters, func(existing Filter) bool { return existing.Field == field }); i >= 0 {
			s.filters[i] = f
		} else {
			s.filters = append(s.filters, f)
		}
		s.pagination.CurrentPage = 1
	})
}

// RemoveFilter drops the filter on field. Reports whether one existed.
func (s *State) RemoveFilter(field string) bool {
	return s.guarded(func() bool {
		before := len(s.filters)
		s.filters = slices.DeleteFunc(s.filters, func(f Filter) bool { return f.Field == field })
		if len(s.filters) == before {
			return false
		}
		s.resetPageOnRemoval()
		return true
	})
}

// ClearFilters drops all filters.
func (s *State) ClearFilters() {
	s.update(func() {
		s.filters = nil
		s.resetPageOnRemoval()
	})
}

// SetCustomFilter replaces the custom filter collection.
func (s *State) SetCustomFilter(filters ...CustomFilter) {
	s.update(func() {
		s.customFilters = slices.Clone(filters)
		s.resetPageOnRemoval()
	})
}

// resetPageOnRemoval applies the configured page policy for mutations that
// do not reset the page by default. Callers hold the write lock.
func (s *State) resetPageOnRemoval() {
	if s.cfg.resetOnAnyChange {
		s.pagination.CurrentPage = 1
	}
}

// Reset restores the construction-time defaults: page 1, construction
// page size, no search, sorts or filters, counts zeroed.
func (s *State) Reset() {
	s.update(func() {
		s.pagination = initialPagination(s.cfg.perPage)
		s.search = ""
		s.sorts = nil
		s.filters = nil
		s.customFilters = nil
	})
}

// PageNumbers returns a fixed strip of up to maxVisible consecutive pages
// around the current page. A maxVisible below 1 means DefaultVisiblePages.
// See pagerange.Window.
func (s *State) PageNumbers(maxVisible int) []int {
	if maxVisible < 1 {
		maxVisible = DefaultVisiblePages
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return pagerange.Window(s.pagination.CurrentPage, s.pagination.LastPage, maxVisible)
}

// PageRange returns the compact, ellipsis-aware page entries for the current
// page. See pagerange.Build.
func (s *State) PageRange(opts ...pagerange.Option) []pagerange.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pagerange.Build(s.pagination.LastPage, s.pagination.CurrentPage, opts...)
}

// Pagination returns a snapshot of the pagination fields.
func (s *State) Pagination() Pagination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pagination
}

// Search returns the current search string.
func (s *State) Search() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.search
}

// Sorts returns a copy of the sort list.
func (s *State) Sorts() []Sort {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sorts)
}

// Filters returns a copy of the filter list.
func (s *State) Filters() []Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.filters)
}

// CustomFilters returns a copy of the custom filter collection.
func (s *State) CustomFilters() []CustomFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.customFilters)
}

// HasData reports whether the server reported any items.
func (s *State) HasData() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pagination.Total > 0
}

// HasNextPage reports whether CurrentPage < LastPage.
func (s *State) HasNextPage() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasNextPage()
}

// HasPrevPage reports whether CurrentPage > 1.
func (s *State) HasPrevPage() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasPrevPage()
}

func (s *State) hasNextPage() bool {
	return s.pagination.CurrentPage < s.pagination.LastPage
}

func (s *State) hasPrevPage() bool {
	return s.pagination.CurrentPage > 1
}

// StartItem is the 1-based index of the first item on the current page,
// (CurrentPage-1)*PerPage + 1.
func (s *State) StartItem() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return (s.pagination.CurrentPage-1)*s.pagination.PerPage + 1
}

// EndItem is the 1-based index of the last item on the current page,
// capped at Total.
func (s *State) EndItem() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return min(s.pagination.CurrentPage*s.pagination.PerPage, s.pagination.Total)
}

// Query derives the query for the list endpoint from the current state.
func (s *State) Query() Query {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := Query{
		Page:          s.pagination.CurrentPage,
		Limit:         s.pagination.PerPage,
		Search:        s.search,
		Sort:          FormatSort(s.sorts),
		CustomFilters: mergeCustomFilters(s.customFilters),
	}
	if len(s.filters) > 0 {
		q.Filters = slices.Clone(s.filters)
	}
	return q
}

// Watch subscribes to state changes. The returned channel receives a signal
// after mutations; signals coalesce, so a reader sees at least one signal per
// burst of changes. Call the returned func to unsubscribe.
func (s *State) Watch() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers, id)
			s.mu.Unlock()
		})
	}
}

func (s *State) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
