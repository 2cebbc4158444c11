package listing

import (
	"github.com/aarondl/null/v8"
)

// Direction is the sort direction of a single Sort entry.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Valid reports whether d is one of Asc or Desc.
func (d Direction) Valid() bool {
	return d == Asc || d == Desc
}

// Sort orders a list by one field.
type Sort struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Operator is the comparison applied by a Filter.
type Operator string

const (
	OpEq   Operator = "eq"
	OpNe   Operator = "ne"
	OpGt   Operator = "gt"
	OpGte  Operator = "gte"
	OpLt   Operator = "lt"
	OpLte  Operator = "lte"
	OpLike Operator = "like"
	OpIn   Operator = "in"
	OpNin  Operator = "nin"
)

var operators = map[Operator]struct{}{
	OpEq: {}, OpNe: {}, OpGt: {}, OpGte: {}, OpLt: {}, OpLte: {}, OpLike: {}, OpIn: {}, OpNin: {},
}

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	_, ok := operators[op]
	return ok
}

// Multi reports whether the operator takes a list of values.
func (op Operator) Multi() bool {
	return op == OpIn || op == OpNin
}

func normalizeOperator(op Operator) Operator {
	if op == "" {
		return OpEq
	}
	return op
}

// Filter restricts a list to items whose Field compares to Value with Operator.
type Filter struct {
	Field    string   `json:"field"`
	Value    any      `json:"value"`
	Operator Operator `json:"operator"`
}

// CustomFilter is a free-form set of query parameters for list endpoints
// whose filters do not fit the Filter model. Entries are merged shallowly
// into the outgoing query.
type CustomFilter map[string]any

// Pagination is the in-memory pagination state of a list view.
type Pagination struct {
	CurrentPage int
	PerPage     int
	Total       int
	LastPage    int
	FirstPage   int
	From        int
	To          int
}

// Meta is the pagination metadata as it travels on the wire.
// From and To are null when the page is empty.
type Meta struct {
	Total       int      `json:"total"`
	PerPage     int      `json:"per_page"`
	CurrentPage int      `json:"current_page"`
	LastPage    int      `json:"last_page"`
	FirstPage   int      `json:"first_page"`
	From        null.Int `json:"from"`
	To          null.Int `json:"to"`
}

// Pagination translates the wire metadata into the in-memory model.
// Null From/To become 0.
func (m Meta) Pagination() Pagination {
	return Pagination{
		CurrentPage: m.CurrentPage,
		PerPage:     m.PerPage,
		Total:       m.Total,
		LastPage:    m.LastPage,
		FirstPage:   m.FirstPage,
		From:        m.From.Int,
		To:          m.To.Int,
	}
}

// MetaFrom translates in-memory pagination into wire metadata.
// A zero From/To is sent as null.
func MetaFrom(p Pagination) Meta {
	return Meta{
		Total:       p.Total,
		PerPage:     p.PerPage,
		CurrentPage: p.CurrentPage,
		LastPage:    p.LastPage,
		FirstPage:   p.FirstPage,
		From:        null.NewInt(p.From, p.From > 0),
		To:          null.NewInt(p.To, p.To > 0),
	}
}

// NewMeta computes the metadata a server reports for one page of a list.
//
// Example:
//
//	meta := listing.NewMeta(3, 10, 25)
//	// LastPage 3, From 21, To 25
func NewMeta(page, perPage, total int) Meta {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page <= 0 {
		page = 1
	}
	if total < 0 {
		total = 0
	}

	lastPage := (total + perPage - 1) / perPage
	meta := Meta{
		Total:       total,
		PerPage:     perPage,
		CurrentPage: page,
		LastPage:    lastPage,
		FirstPage:   1,
	}

	from := (page-1)*perPage + 1
	if from <= total {
		meta.From = null.IntFrom(from)
		meta.To = null.IntFrom(min(page*perPage, total))
	}

	return meta
}
