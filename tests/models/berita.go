package models

import (
	"context"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/aarondl/sqlboiler/v4/queries/qm"
	"github.com/friendsofgo/errors"
)

// Beritum is an object representing the database table.
type Beritum struct {
	ID          string    `boil:"id" json:"id"`
	OpdID       int       `boil:"opd_id" json:"opd_id"`
	Judul       string    `boil:"judul" json:"judul"`
	Ringkasan   string    `boil:"ringkasan" json:"ringkasan"`
	Status      string    `boil:"status" json:"status"`
	Dibaca      int       `boil:"dibaca" json:"dibaca"`
	PublishedAt null.Time `boil:"published_at" json:"published_at"`
	CreatedAt   time.Time `boil:"created_at" json:"created_at"`
}

// BeritumSlice is an alias for a slice of pointers to Berita.
type BeritumSlice []*Beritum

type beritaQuery struct {
	*queries.Query
}

// Berita retrieves all the records using an executor.
func Berita(mods ...qm.QueryMod) beritaQuery {
	mods = append(mods, qm.From("\"berita\""))
	q := NewQuery(mods...)
	if len(queries.GetSelect(q)) == 0 {
		queries.SetSelect(q, []string{"\"berita\".*"})
	}

	return beritaQuery{q}
}

// All returns all Berita records from the query.
func (q beritaQuery) All(ctx context.Context, exec boil.ContextExecutor) (BeritumSlice, error) {
	var o []*Beritum

	err := q.Bind(ctx, exec, &o)
	if err != nil {
		return nil, errors.Wrap(err, "models: failed to assign all query results to Berita slice")
	}

	return o, nil
}

// Count returns the count of all Berita records in the query.
func (q beritaQuery) Count(ctx context.Context, exec boil.ContextExecutor) (int64, error) {
	var count int64

	queries.SetSelect(q.Query, nil)
	queries.SetCount(q.Query)

	err := q.Query.QueryRowContext(ctx, exec).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "models: failed to count berita rows")
	}

	return count, nil
}
