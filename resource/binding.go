// Package resource binds a listing.State to a list function: it fetches the
// page the state describes, feeds the server-reported pagination back into the
// state and keeps the fetched items together with loading and error status.
//
// A Binding is the glue a list view needs; it does not own the state, so the
// same State can be inspected and mutated directly by the caller.
//
// Example:
//
//	state := listing.NewState()
//	news := resource.New(state, httplist.List[News](client, "/berita"),
//		resource.WithSearchDebounce(300*time.Millisecond))
//	defer news.Close()
//
//	go news.Run(ctx) // refetches whenever the derived query changes
//	news.HandleSearch("banjir")
package resource

import (
	"context"
	"reflect"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nrfta/listing-go"
)

// DefaultSearchDebounce is the quiet period HandleSearch waits for before
// applying the search string.
const DefaultSearchDebounce = 500 * time.Millisecond

// Option configures a Binding.
type Option func(*options)

type options struct {
	perPage        int
	searchDebounce time.Duration
	logger         *zap.Logger
}

// WithPerPage sets the page size of the bound state and makes it the size
// State.Reset restores.
func WithPerPage(n int) Option {
	return func(o *options) {
		o.perPage = n
	}
}

// WithSearchDebounce sets the HandleSearch quiet period.
// Default: 500ms. Zero applies searches immediately.
func WithSearchDebounce(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.searchDebounce = d
		}
	}
}

// WithLogger sets the logger. Default: zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Binding keeps the items of the page a State describes.
type Binding[T any] struct {
	state  *listing.State
	list   listing.ListFunc[T]
	logger *zap.Logger
	search *debouncer

	mu        sync.Mutex
	items     []T
	meta      *listing.Meta
	loading   bool
	err       error
	seq       uint64
	cancel    context.CancelFunc
	requested *listing.Query
}

// New binds list to state.
func New[T any](state *listing.State, list listing.ListFunc[T], opts ...Option) *Binding[T] {
	o := options{
		searchDebounce: DefaultSearchDebounce,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	state.SetDefaultPerPage(o.perPage)

	return &Binding[T]{
		state:  state,
		list:   list,
		logger: o.logger,
		search: newDebouncer(o.searchDebounce),
		items:  []T{},
	}
}

// State returns the bound state.
func (b *Binding[T]) State() *listing.State {
	return b.state
}

// FetchData fetches the page described by the current state.
//
// On success the items are replaced and, when the response carries metadata,
// the state pagination is overwritten with it. On failure the error is kept
// and returned and the previous items stay visible.
//
// Overlapping calls are ordered by issue: only the most recently started
// fetch may update the binding. Starting a fetch cancels the context of the
// one it supersedes, and a superseded fetch returns nil without touching
// items, metadata, error or loading status.
func (b *Binding[T]) FetchData(ctx context.Context) error {
	q := b.state.Query()

	b.mu.Lock()
	b.seq++
	seq := b.seq
	if b.cancel != nil {
		b.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.loading = true
	b.requested = &q
	b.mu.Unlock()

	defer cancel()

	log := b.logger.With(zap.Uint64("seq", seq), zap.String("query", q.Key()))
	log.Debug("fetching list page")

	res, err := b.list(fetchCtx, q)

	b.mu.Lock()
	defer b.mu.Unlock()

	if seq != b.seq {
		log.Debug("discarding superseded list response", zap.Uint64("latest", b.seq))
		return nil
	}

	b.cancel = nil
	b.loading = false

	if err != nil {
		b.err = err
		log.Warn("list fetch failed", zap.Error(err))
		return err
	}

	b.err = nil
	if res == nil {
		b.items = []T{}
		return nil
	}

	b.items = slices.Clone(res.Data)
	if b.items == nil {
		b.items = []T{}
	}

	if res.Meta == nil {
		log.Debug("list response without pagination metadata")
		return nil
	}

	meta := *res.Meta
	b.meta = &meta
	b.state.SetPagination(meta.Pagination())

	log.Debug("fetched list page",
		zap.Int("items", len(b.items)),
		zap.Int("current_page", meta.CurrentPage),
		zap.Int("total", meta.Total))
	return nil
}

// Run fetches the current page, then refetches whenever the state changes in
// a way that alters the derived query. It blocks until ctx is done and
// returns ctx.Err(). Fetch errors are kept in the binding, not returned.
func (b *Binding[T]) Run(ctx context.Context) error {
	changes, stop := b.state.Watch()
	defer stop()

	_ = b.FetchData(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changes:
			if !b.queryChanged() {
				continue
			}
			_ = b.FetchData(ctx)
		}
	}
}

func (b *Binding[T]) queryChanged() bool {
	q := b.state.Query()

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requested == nil || !reflect.DeepEqual(*b.requested, q)
}

// HandleSearch applies value as the search string once no further call
// arrived for the debounce period. Rapid calls coalesce into one state
// mutation carrying the last value.
func (b *Binding[T]) HandleSearch(value string) {
	b.search.Trigger(func() {
		b.state.SetSearch(value)
	})
}

// FlushSearch applies a pending debounced search immediately.
func (b *Binding[T]) FlushSearch() {
	b.search.Flush()
}

// HandlePageChange moves the state to page. It does not fetch; Run or an
// explicit FetchData picks the change up.
func (b *Binding[T]) HandlePageChange(page int) bool {
	return b.state.SetPage(page)
}

// HandleCustomFilter replaces the custom filters of the state.
func (b *Binding[T]) HandleCustomFilter(filters ...listing.CustomFilter) {
	b.state.SetCustomFilter(filters...)
}

// Items returns a copy of the last successfully fetched items.
func (b *Binding[T]) Items() []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.items)
}

// Meta returns the last reported pagination metadata, or nil.
func (b *Binding[T]) Meta() *listing.Meta {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.meta == nil {
		return nil
	}
	meta := *b.meta
	return &meta
}

// IsLoading reports whether the latest fetch is in flight.
func (b *Binding[T]) IsLoading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

// IsError reports whether the latest fetch failed.
func (b *Binding[T]) IsError() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err != nil
}

// Err returns the error of the latest fetch, or nil.
func (b *Binding[T]) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Close drops a pending debounced search and cancels the in-flight fetch,
// whose response is then discarded. Later HandleSearch calls are ignored.
func (b *Binding[T]) Close() {
	b.search.Close()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.seq++
	b.loading = false
}
