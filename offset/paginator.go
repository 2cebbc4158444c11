// Package offset translates a page-number list query into LIMIT/OFFSET.
//
// Page p of size n starts at offset (p-1)*n. The paginator also computes the
// metadata the list endpoint reports back, so the client state and the rows
// served always agree.
//
// Example usage:
//
//	total, err := models.Berita(where...).Count(ctx, db)
//	paginator := offset.New(q, total, pageConfig)
//	rows, err := models.Berita(append(where, paginator.QueryMods()...)...).All(ctx, db)
//	return &listing.Result[*models.Berita]{Data: rows, Meta: &paginator.Meta}, nil
package offset

import (
	"github.com/aarondl/sqlboiler/v4/queries/qm"

	"github.com/nrfta/listing-go"
)

// Paginator is the paginator for page-number pagination.
// It encapsulates limit, offset, and page metadata for database queries.
type Paginator struct {
	Limit  int
	Offset int
	Meta   listing.Meta
}

// New creates a new offset paginator.
//
// Parameters:
//   - q: the list query; only Page and Limit are read
//   - totalCount: number of records matching the query's filters
//   - cfg: page size policy; nil means listing.NewPageConfig()
//
// The paginator automatically handles:
//   - Default and maximum page size from cfg
//   - Pages below 1, which become page 1
//   - Pages past the last page, which become the last page so a client
//     holding a stale page number is moved to the closest existing page;
//     an empty list is served as page 1
func New(q listing.Query, totalCount int64, cfg *listing.PageConfig) Paginator {
	limit := cfg.EffectiveLimit(q.Limit)
	total := int(max(totalCount, 0))

	page := max(q.Page, 1)
	if lastPage := max((total+limit-1)/limit, 1); page > lastPage {
		page = lastPage
	}

	return Paginator{
		Limit:  limit,
		Offset: (page - 1) * limit,
		Meta:   listing.NewMeta(page, limit, total),
	}
}

// QueryMods returns SQLBoiler query modifiers for pagination.
// A zero offset is omitted.
//
// Example usage:
//
//	items, err := models.Items(append(where, paginator.QueryMods()...)...).All(ctx, db)
func (p *Paginator) QueryMods() []qm.QueryMod {
	mods := make([]qm.QueryMod, 0, 2)
	if p.Offset > 0 {
		mods = append(mods, qm.Offset(p.Offset))
	}
	return append(mods, qm.Limit(p.Limit))
}

// HasNextPage reports whether a page follows the paginated one.
func (p *Paginator) HasNextPage() bool {
	return p.Meta.CurrentPage < p.Meta.LastPage
}

// HasPreviousPage reports whether a page precedes the paginated one.
func (p *Paginator) HasPreviousPage() bool {
	return p.Meta.CurrentPage > 1
}
