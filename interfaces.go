package listing

import "context"

// ListFunc fetches one page of a list resource.
// Implementations include httplist.List (REST), cache.Wrap (Redis decorator)
// and any hand-written function over a domain service.
//
// Type parameter T is the item type of the resource (e.g., News, Document).
type ListFunc[T any] func(ctx context.Context, q Query) (*Result[T], error)

// Result is one page of a list resource as returned by a list endpoint.
//
// Example wire form:
//
//	{
//	  "data": [{"id": 1, "judul": "..."}],
//	  "meta": {"total": 25, "per_page": 10, "current_page": 3, "last_page": 3,
//	           "first_page": 1, "from": 21, "to": 25}
//	}
type Result[T any] struct {
	// Data contains the items for this page.
	Data []T `json:"data"`

	// Meta is the server-reported pagination. Nil when the endpoint
	// does not paginate; the list state is then left untouched.
	Meta *Meta `json:"meta,omitempty"`
}

// Lister serves pages of a list resource from storage.
// It is the server-side counterpart of ListFunc.
type Lister[T any] interface {
	List(ctx context.Context, q Query) (*Result[T], error)
}

// ListerFunc adapts a ListFunc to the Lister interface.
type ListerFunc[T any] ListFunc[T]

// List calls f(ctx, q).
func (f ListerFunc[T]) List(ctx context.Context, q Query) (*Result[T], error) {
	return f(ctx, q)
}
