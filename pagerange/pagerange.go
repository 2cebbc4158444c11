// Package pagerange computes the page numbers shown by pagination controls.
//
// Build produces the compact form used by most list views: boundary pages
// are always visible, the current page is surrounded by its siblings, and
// longer runs of hidden pages collapse into an ellipsis. A single hidden page
// is never collapsed; it is shown as a "bridge" page instead.
//
// Example:
//
//	pagerange.Build(20, 10)
//	// [1 … 9 10 11 … 20]
//
//	pagerange.Build(10, 2)
//	// [1 2 3 … 10]
//
// Window produces the simpler fixed-width strip of consecutive pages.
package pagerange

import "strconv"

// Entry is a page number, or Ellipsis.
type Entry int

// Ellipsis marks a run of two or more hidden pages.
const Ellipsis Entry = -1

const ellipsisText = "…"

// IsEllipsis reports whether e stands for hidden pages.
func (e Entry) IsEllipsis() bool {
	return e == Ellipsis
}

// String returns "…" for Ellipsis and the page number otherwise.
func (e Entry) String() string {
	if e.IsEllipsis() {
		return ellipsisText
	}
	return strconv.Itoa(int(e))
}

// Strings renders entries for templates.
func Strings(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.String()
	}
	return out
}

const (
	defaultBoundaryCount = 1
	defaultSiblingCount  = 1
)

// Option configures Build.
type Option func(*config)

type config struct {
	boundaryCount int
	siblingCount  int
}

// WithBoundaryCount sets how many pages stay visible at each end.
// Default: 1
func WithBoundaryCount(n int) Option {
	return func(c *config) {
		c.boundaryCount = max(n, 0)
	}
}

// WithSiblingCount sets how many pages stay visible on each side of the current page.
// Default: 1
func WithSiblingCount(n int) Option {
	return func(c *config) {
		c.siblingCount = max(n, 0)
	}
}

// Build returns the page entries to render for totalPages pages with
// currentPage selected. totalPages is clamped to at least 1 and currentPage
// into [1, totalPages].
//
// When every page fits (totalPages ≤ 2*boundary + 2*sibling + 3) the full
// range is returned. Otherwise the result is
//
//	boundary pages, left marker, current ± siblings, right marker, boundary pages
//
// where each marker is Ellipsis when it hides two or more pages and the
// single hidden page itself when it hides exactly one.
func Build(totalPages, currentPage int, opts ...Option) []Entry {
	cfg := &config{
		boundaryCount: defaultBoundaryCount,
		siblingCount:  defaultSiblingCount,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	boundary, sibling := cfg.boundaryCount, cfg.siblingCount

	total := max(1, totalPages)
	current := min(max(currentPage, 1), total)

	maxWithoutEllipsis := boundary*2 + sibling*2 + 3
	if total <= maxWithoutEllipsis {
		return span(1, total)
	}

	left := max(current-sibling, boundary+2)
	right := min(current+sibling, total-boundary-1)

	entries := make([]Entry, 0, maxWithoutEllipsis+2)
	entries = append(entries, span(1, boundary)...)

	switch {
	case left > boundary+2:
		entries = append(entries, Ellipsis)
	case left == boundary+2:
		entries = append(entries, Entry(boundary+1))
	}

	entries = append(entries, span(left, right)...)

	switch {
	case right < total-boundary-1:
		entries = append(entries, Ellipsis)
	case right == total-boundary-1:
		entries = append(entries, Entry(total-boundary))
	}

	return append(entries, span(total-boundary+1, total)...)
}

// Window returns min(lastPage, maxVisible) consecutive page numbers centred
// as closely as possible on currentPage and clamped to [1, lastPage]. When
// the centred window runs off one edge it is shifted toward the side with
// room. Returns an empty slice if lastPage or maxVisible is below 1.
//
// Example:
//
//	pagerange.Window(1, 10, 5)  // [1 2 3 4 5]
//	pagerange.Window(6, 10, 5)  // [4 5 6 7 8]
//	pagerange.Window(10, 10, 5) // [6 7 8 9 10]
func Window(currentPage, lastPage, maxVisible int) []int {
	if lastPage < 1 || maxVisible < 1 {
		return []int{}
	}

	start := max(1, currentPage-maxVisible/2)
	end := min(lastPage, start+maxVisible-1)
	if end-start+1 < maxVisible {
		start = max(1, end-maxVisible+1)
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// span returns the entries from..to inclusive, or nil when from > to.
func span(from, to int) []Entry {
	if from > to {
		return nil
	}
	entries := make([]Entry, 0, to-from+1)
	for p := from; p <= to; p++ {
		entries = append(entries, Entry(p))
	}
	return entries
}
