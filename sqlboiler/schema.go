package sqlboiler

import (
	"reflect"
	"sort"
	"strings"

	"github.com/aarondl/sqlboiler/v4/queries/qm"
	"github.com/aarondl/strmangle"
	"github.com/spf13/cast"

	"github.com/nrfta/listing-go"
)

var comparisons = map[listing.Operator]string{
	listing.OpEq:  "=",
	listing.OpNe:  "<>",
	listing.OpGt:  ">",
	listing.OpGte: ">=",
	listing.OpLt:  "<",
	listing.OpLte: "<=",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Schema whitelists the fields a list endpoint may be sorted and filtered by
// and maps them to columns. Queries naming any other field are rejected with
// *listing.QueryError, so client input never reaches SQL as an identifier.
//
// Example:
//
//	schema := sqlboiler.NewSchema().
//		Field("judul", "berita.judul").
//		Field("tanggal", "berita.published_at").
//		Fields("status", "opd_id").
//		Searchable("berita.judul", "berita.ringkasan").
//		DefaultOrder(listing.Sort{Field: "tanggal", Direction: listing.Desc})
type Schema struct {
	columns      map[string]string
	searchable   []string
	defaultOrder []listing.Sort
}

// NewSchema creates an empty Schema.
func NewSchema() *Schema {
	return &Schema{columns: map[string]string{}}
}

// Field registers the API field name for column. Columns may be qualified
// with a table name ("berita.judul").
func (s *Schema) Field(name, column string) *Schema {
	s.columns[name] = quote(column)
	return s
}

// Fields registers fields whose API name is the column name.
func (s *Schema) Fields(names ...string) *Schema {
	for _, name := range names {
		s.Field(name, name)
	}
	return s
}

// Searchable sets the columns matched case-insensitively by Query.Search.
func (s *Schema) Searchable(columns ...string) *Schema {
	s.searchable = s.searchable[:0]
	for _, column := range columns {
		s.searchable = append(s.searchable, quote(column))
	}
	return s
}

// DefaultOrder sets the order used when a query carries no sort.
func (s *Schema) DefaultOrder(sorts ...listing.Sort) *Schema {
	s.defaultOrder = sorts
	return s
}

// Column returns the quoted column of field.
func (s *Schema) Column(field string) (string, bool) {
	column, ok := s.columns[field]
	return column, ok
}

// WhereMods converts the filters, search and custom filters of q into
// WHERE query mods.
//
// The conversion follows these rules:
//   - eq, ne, gt, gte, lt, lte → "col OP ?"; eq and ne against nil → IS [NOT] NULL
//   - like → "col ILIKE ?" with the value as a contains pattern
//   - in, nin → qm.WhereIn / qm.WhereNotIn; an empty in-list matches nothing
//   - Search → "(col1 ILIKE ? OR col2 ILIKE ?)" over the searchable columns
//   - custom filters on registered fields → equality (IN for lists);
//     custom filters on other keys are left to the caller
func (s *Schema) WhereMods(q listing.Query) ([]qm.QueryMod, error) {
	var mods []qm.QueryMod

	for _, f := range q.Filters {
		column, ok := s.Column(f.Field)
		if !ok {
			return nil, unknownField(f)
		}

		mod, err := filterMod(column, f)
		if err != nil {
			return nil, err
		}
		if mod != nil {
			mods = append(mods, mod)
		}
	}

	if mod := s.searchMod(q.Search); mod != nil {
		mods = append(mods, mod)
	}

	keys := make([]string, 0, len(q.CustomFilters))
	for key := range q.CustomFilters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		column, ok := s.Column(key)
		if !ok {
			continue
		}

		value := q.CustomFilters[key]
		op := listing.OpEq
		if isList(value) {
			op = listing.OpIn
		}

		mod, err := filterMod(column, listing.Filter{Field: key, Value: value, Operator: op})
		if err != nil {
			return nil, err
		}
		if mod != nil {
			mods = append(mods, mod)
		}
	}

	return mods, nil
}

// OrderMods converts the sort of q, or the default order when q has none,
// into an ORDER BY query mod.
//
// Example:
//
//	"tanggal:desc,judul:asc" → qm.OrderBy(`"berita"."published_at" DESC, "berita"."judul" ASC`)
func (s *Schema) OrderMods(q listing.Query) ([]qm.QueryMod, error) {
	sorts, err := listing.ParseSort(q.Sort)
	if err != nil {
		return nil, err
	}
	if len(sorts) == 0 {
		sorts = s.defaultOrder
	}
	if len(sorts) == 0 {
		return nil, nil
	}

	parts := make([]string, len(sorts))
	for i, st := range sorts {
		column, ok := s.Column(st.Field)
		if !ok {
			return nil, &listing.QueryError{Param: listing.ParamSort, Value: q.Sort, Reason: "unknown sort field " + st.Field}
		}

		if st.Direction == listing.Desc {
			parts[i] = column + " DESC"
		} else {
			parts[i] = column + " ASC"
		}
	}

	return []qm.QueryMod{qm.OrderBy(strings.Join(parts, ", "))}, nil
}

func (s *Schema) searchMod(search string) qm.QueryMod {
	search = strings.TrimSpace(search)
	if search == "" || len(s.searchable) == 0 {
		return nil
	}

	pattern := "%" + likeEscaper.Replace(search) + "%"
	parts := make([]string, len(s.searchable))
	args := make([]any, len(s.searchable))
	for i, column := range s.searchable {
		parts[i] = column + " ILIKE ?"
		args[i] = pattern
	}

	return qm.Where("("+strings.Join(parts, " OR ")+")", args...)
}

func filterMod(column string, f listing.Filter) (qm.QueryMod, error) {
	op := f.Operator
	if op == "" {
		op = listing.OpEq
	}

	switch op {
	case listing.OpIn, listing.OpNin:
		values := toList(f.Value)
		if len(values) == 0 {
			if op == listing.OpIn {
				return qm.Where("FALSE"), nil
			}
			return nil, nil
		}
		if op == listing.OpIn {
			return qm.WhereIn(column+" IN ?", values...), nil
		}
		return qm.WhereNotIn(column+" NOT IN ?", values...), nil

	case listing.OpLike:
		return qm.Where(column+" ILIKE ?", "%"+likeEscaper.Replace(cast.ToString(f.Value))+"%"), nil

	case listing.OpEq, listing.OpNe:
		if f.Value == nil {
			if op == listing.OpEq {
				return qm.Where(column + " IS NULL"), nil
			}
			return qm.Where(column + " IS NOT NULL"), nil
		}
	}

	cmp, ok := comparisons[op]
	if !ok {
		return nil, unknownOperator(f)
	}
	if isList(f.Value) {
		return nil, &listing.QueryError{Param: paramName(f), Value: cast.ToString(f.Value), Reason: "operator " + string(op) + " takes a single value"}
	}
	return qm.Where(column+" "+cmp+" ?", f.Value), nil
}

func unknownField(f listing.Filter) error {
	return &listing.QueryError{Param: paramName(f), Value: cast.ToString(f.Value), Reason: "unknown filter field " + f.Field}
}

func unknownOperator(f listing.Filter) error {
	return &listing.QueryError{Param: paramName(f), Value: cast.ToString(f.Value), Reason: "unknown operator " + string(f.Operator)}
}

func paramName(f listing.Filter) string {
	op := f.Operator
	if op == "" {
		op = listing.OpEq
	}
	return "filter[" + f.Field + "][" + string(op) + "]"
}

// isList reports whether v is a slice of values, excluding []byte.
func isList(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8
}

// toList flattens a filter value into query arguments. A string is split on
// commas, the way list values travel in query parameters.
func toList(v any) []any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		parts := strings.Split(val, ",")
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = strings.TrimSpace(p)
		}
		return out
	}

	if !isList(v) {
		return []any{v}
	}

	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func quote(column string) string {
	return strmangle.IdentQuote('"', '"', column)
}
