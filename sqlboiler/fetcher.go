// Package sqlboiler serves list endpoints from SQLBoiler models.
//
// A Schema maps the fields a client may sort and filter by to columns and
// turns a listing.Query into query mods. A Fetcher combines the schema with a
// model's query and count functions into a listing.Lister, ready to be served
// by httplist.Handler.
//
// Example usage:
//
//	fetcher := sqlboiler.NewFetcher(
//	    func(ctx context.Context, mods ...qm.QueryMod) ([]*models.Berita, error) {
//	        return models.Berita(mods...).All(ctx, db)
//	    },
//	    func(ctx context.Context, mods ...qm.QueryMod) (int64, error) {
//	        return models.Berita(mods...).Count(ctx, db)
//	    },
//	    schema,
//	    listing.NewPageConfig(),
//	)
//
//	http.Handle("/berita", httplist.NewHandler(fetcher, pageConfig))
package sqlboiler

import (
	"context"
	"slices"

	"github.com/aarondl/sqlboiler/v4/queries/qm"
	"github.com/friendsofgo/errors"

	"github.com/nrfta/listing-go"
	"github.com/nrfta/listing-go/offset"
)

// QueryFunc executes a SQLBoiler query and returns results.
//
// Type parameter T is the SQLBoiler model type (e.g., *models.Berita).
type QueryFunc[T any] func(ctx context.Context, mods ...qm.QueryMod) ([]T, error)

// CountFunc executes a SQLBoiler count query.
type CountFunc func(ctx context.Context, mods ...qm.QueryMod) (int64, error)

// Fetcher implements listing.Lister[T] for SQLBoiler queries.
type Fetcher[T any] struct {
	queryFunc QueryFunc[T]
	countFunc CountFunc
	schema    *Schema
	cfg       *listing.PageConfig
	baseMods  []qm.QueryMod
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*fetcherOptions)

type fetcherOptions struct {
	baseMods []qm.QueryMod
}

// WithBaseMods adds query mods applied to both count and page queries, for
// instance a scope the client cannot lift:
//
//	sqlboiler.WithBaseMods(qm.Where("status = ?", "publish"))
func WithBaseMods(mods ...qm.QueryMod) FetcherOption {
	return func(o *fetcherOptions) {
		o.baseMods = append(o.baseMods, mods...)
	}
}

// NewFetcher creates a Fetcher.
//
// Parameters:
//   - queryFunc: Function that executes SQLBoiler queries with query mods
//   - countFunc: Function that counts records with query mods
//   - schema: Fields the list may be sorted and filtered by
//   - cfg: Page size policy; nil means listing.NewPageConfig()
func NewFetcher[T any](
	queryFunc QueryFunc[T],
	countFunc CountFunc,
	schema *Schema,
	cfg *listing.PageConfig,
	opts ...FetcherOption,
) *Fetcher[T] {
	var o fetcherOptions
	for _, opt := range opts {
		opt(&o)
	}
	if schema == nil {
		schema = NewSchema()
	}

	return &Fetcher[T]{
		queryFunc: queryFunc,
		countFunc: countFunc,
		schema:    schema,
		cfg:       cfg,
		baseMods:  o.baseMods,
	}
}

// List counts the rows matching q, then fetches the requested page.
// Queries on fields the schema does not know fail with *listing.QueryError
// before the database is touched.
func (f *Fetcher[T]) List(ctx context.Context, q listing.Query) (*listing.Result[T], error) {
	where, err := f.schema.WhereMods(q)
	if err != nil {
		return nil, err
	}
	order, err := f.schema.OrderMods(q)
	if err != nil {
		return nil, err
	}
	where = slices.Concat(f.baseMods, where)

	total, err := f.countFunc(ctx, where...)
	if err != nil {
		return nil, errors.Wrap(err, "count list rows")
	}

	paginator := offset.New(q, total, f.cfg)

	rows, err := f.queryFunc(ctx, slices.Concat(where, order, paginator.QueryMods())...)
	if err != nil {
		return nil, errors.Wrap(err, "query list rows")
	}
	if rows == nil {
		rows = []T{}
	}

	return &listing.Result[T]{Data: rows, Meta: &paginator.Meta}, nil
}
