package listing

import (
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Query parameter names of the list contract.
const (
	ParamPage   = "page"
	ParamLimit  = "limit"
	ParamSearch = "search"
	ParamSort   = "sort"

	filterParamPrefix = "filter["
)

var filterParamPattern = regexp.MustCompile(`^filter\[([^\[\]]+)\](?:\[([^\[\]]+)\])?$`)

// Query is the derived query a list view sends to a list endpoint.
// Empty collections are nil and empty strings are omitted, so they never
// travel as empty parameters.
type Query struct {
	Page          int            `json:"page"`
	Limit         int            `json:"limit"`
	Search        string         `json:"search,omitempty"`
	Sort          string         `json:"sort,omitempty"`
	Filters       []Filter       `json:"filters,omitempty"`
	CustomFilters map[string]any `json:"customFilters,omitempty"`
}

// FormatSort serializes sorts as the comma-joined "field:direction" list
// the list endpoints expect. Returns "" for no sorts.
//
// Example:
//
//	listing.FormatSort([]listing.Sort{{"a", listing.Asc}, {"b", listing.Desc}})
//	// "a:asc,b:desc"
func FormatSort(sorts []Sort) string {
	if len(sorts) == 0 {
		return ""
	}

	parts := make([]string, len(sorts))
	for i, s := range sorts {
		parts[i] = s.Field + ":" + string(s.Direction)
	}
	return strings.Join(parts, ",")
}

// ParseSort parses a "field:direction" list. A missing direction means Asc.
func ParseSort(raw string) ([]Sort, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var sorts []Sort
	for _, part := range strings.Split(raw, ",") {
		field, dir, _ := strings.Cut(strings.TrimSpace(part), ":")
		if field == "" {
			return nil, &QueryError{Param: ParamSort, Value: raw, Reason: "empty sort field"}
		}

		direction := Direction(strings.ToLower(dir))
		if direction == "" {
			direction = Asc
		}
		if !direction.Valid() {
			return nil, &QueryError{Param: ParamSort, Value: raw, Reason: "unknown direction " + dir}
		}

		sorts = append(sorts, Sort{Field: field, Direction: direction})
	}
	return sorts, nil
}

// Sorts returns the parsed Sort field of the query, skipping it when malformed.
func (q Query) Sorts() []Sort {
	sorts, err := ParseSort(q.Sort)
	if err != nil {
		return nil
	}
	return sorts
}

// Values encodes the query as URL parameters:
//
//	page=3&limit=10&search=banjir&sort=tanggal:desc
//	&filter[status][eq]=publish&filter[opd_id][in]=1,2
//	&kategori=berita
//
// Custom filters are merged as top-level keys, a slice as a repeated key
// (kategori=a&kategori=b) that ParseQuery reads back as a list. Keys that
// collide with the reserved parameters or the filter[...] namespace are
// dropped.
func (q Query) Values() url.Values {
	values := url.Values{}
	values.Set(ParamPage, strconv.Itoa(q.Page))
	values.Set(ParamLimit, strconv.Itoa(q.Limit))

	if q.Search != "" {
		values.Set(ParamSearch, q.Search)
	}
	if q.Sort != "" {
		values.Set(ParamSort, q.Sort)
	}

	for _, f := range q.Filters {
		values.Set(filterParam(f.Field, normalizeOperator(f.Operator)), formatValue(f.Value))
	}

	for key, value := range q.CustomFilters {
		if reservedParam(key) {
			continue
		}
		values[key] = formatList(value)
	}

	return values
}

// Key returns a canonical string for the query, stable across calls.
func (q Query) Key() string {
	return q.Values().Encode()
}

// ParseQuery decodes list parameters sent by Query.Values.
// Missing page and limit default to 1 and cfg.DefaultSize; a limit above
// cfg.MaxSize is rejected with *PageSizeError. Malformed numbers, sort
// directions and filter operators yield *QueryError. Any other parameter
// becomes a custom filter.
func ParseQuery(values url.Values, cfg *PageConfig) (Query, error) {
	q := Query{Page: 1, Limit: cfg.EffectiveLimit(0)}

	if raw := values.Get(ParamPage); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return Query{}, &QueryError{Param: ParamPage, Value: raw, Reason: "not an integer"}
		}
		q.Page = max(page, 1)
	}

	if raw := values.Get(ParamLimit); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return Query{}, &QueryError{Param: ParamLimit, Value: raw, Reason: "not an integer"}
		}
		if err := cfg.Validate(limit); err != nil {
			return Query{}, err
		}
		q.Limit = cfg.EffectiveLimit(limit)
	}

	q.Search = strings.TrimSpace(values.Get(ParamSearch))

	sorts, err := ParseSort(values.Get(ParamSort))
	if err != nil {
		return Query{}, err
	}
	q.Sort = FormatSort(sorts)

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw := values.Get(key)

		switch {
		case key == ParamPage, key == ParamLimit, key == ParamSearch, key == ParamSort:
			continue

		case strings.HasPrefix(key, filterParamPrefix):
			f, err := parseFilterParam(key, raw)
			if err != nil {
				return Query{}, err
			}
			q.Filters = append(q.Filters, f)

		default:
			if q.CustomFilters == nil {
				q.CustomFilters = map[string]any{}
			}
			if all := values[key]; len(all) > 1 {
				q.CustomFilters[key] = all
			} else {
				q.CustomFilters[key] = raw
			}
		}
	}

	return q, nil
}

func parseFilterParam(key, raw string) (Filter, error) {
	m := filterParamPattern.FindStringSubmatch(key)
	if m == nil {
		return Filter{}, &QueryError{Param: key, Value: raw, Reason: "malformed filter parameter"}
	}

	op := normalizeOperator(Operator(m[2]))
	if !op.Valid() {
		return Filter{}, &QueryError{Param: key, Value: raw, Reason: "unknown operator " + m[2]}
	}

	var value any = raw
	if op.Multi() {
		value = strings.Split(raw, ",")
	}

	return Filter{Field: m[1], Value: value, Operator: op}, nil
}

func filterParam(field string, op Operator) string {
	return filterParamPrefix + field + "][" + string(op) + "]"
}

func reservedParam(key string) bool {
	switch key {
	case ParamPage, ParamLimit, ParamSearch, ParamSort:
		return true
	}
	return strings.HasPrefix(key, filterParamPrefix)
}

// formatValue renders a filter value as a parameter. Slices are comma-joined.
func formatValue(value any) string {
	return strings.Join(formatList(value), ",")
}

// formatList renders each element of a slice value, or a scalar value as a
// single element.
func formatList(value any) []string {
	if value == nil {
		return []string{""}
	}

	rv := reflect.ValueOf(value)
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = cast.ToString(rv.Index(i).Interface())
		}
		return parts
	}

	return []string{cast.ToString(value)}
}

// mergeCustomFilters shallow-merges filters in order; later keys win.
// Reserved keys are dropped so custom filters cannot shadow structured ones.
func mergeCustomFilters(filters []CustomFilter) map[string]any {
	var merged map[string]any
	for _, cf := range filters {
		for key, value := range cf {
			if reservedParam(key) {
				continue
			}
			if merged == nil {
				merged = map[string]any{}
			}
			merged[key] = value
		}
	}
	return merged
}
