package repository

// search.go implements the generic filter/search/sort builder shared by the
// clothing item and outfit search endpoints. The builder is a set of pure
// functions that translate a request into a parameterized WHERE fragment,
// an ORDER BY clause and LIMIT/OFFSET values; the entity repositories splice
// those into their own SELECTs. Three rules compose, always ANDed together:
//
//  1. the mandatory ownership clause (tenant isolation, never omitted),
//  2. an OR across searchable attributes when search text is present,
//  3. one clause per filter item.
//
// Attribute names are resolved through a per-entity column map, which is
// also what makes unknown (or hostile) attribute and sort names inert: a
// name that is not in the map never reaches the SQL text.

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SortOrder is the wire value for sort direction.
type SortOrder string

const (
	SortAscending  SortOrder = "ASCENDING"
	SortDescending SortOrder = "DESCENDING"
)

// FilterItem narrows a search by one attribute. Exactly one of Value or
// ValueList applies: a non-empty ValueList is a membership test and takes
// precedence, a non-empty Value is a case-insensitive equality. Items with
// neither are skipped, not rejected.
type FilterItem struct {
	Attribute string   `json:"attribute"`
	Value     string   `json:"value"`
	ValueList []string `json:"valueList"`
}

// Filter is the set of filter items, combined with AND.
type Filter struct {
	Filters []FilterItem `json:"filters"`
}

// Search carries free text matched case-insensitively as a substring
// against the entity's searchable attributes (or the SearchIn subset).
type Search struct {
	SearchText string   `json:"searchText"`
	SearchIn   []string `json:"searchIn"`
}

// Sort names the attribute and direction for ordering results.
type Sort struct {
	SortBy    string    `json:"sortBy"`
	SortOrder SortOrder `json:"sortOrder"`
}

// EntitySearchSpec describes how one entity participates in search.
type EntitySearchSpec struct {
	// Columns maps exposed attribute names (dotted paths included, e.g.
	// "user.id") to SQL column names. Only mapped attributes are
	// filterable, searchable or sortable.
	Columns map[string]string
	// SearchableAttrs are the scalar text attributes searched by default.
	SearchableAttrs []string
	// SearchableArrayAttrs are JSON-encoded text-array columns (tags)
	// searched by containment.
	SearchableArrayAttrs []string
	// DefaultSortAttr is used when the request names no sort attribute.
	DefaultSortAttr string
}

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// BuildWhere composes the WHERE fragment and its arguments. The ownership
// clause is always first and always present, even for an empty request.
func BuildWhere(spec EntitySearchSpec, filter *Filter, search *Search, userID uuid.UUID) (string, []any) {
	clauses := []string{"user_id = ?"}
	args := []any{userID.String()}

	if search != nil {
		c, a := searchClause(spec, search)
		if c != "" {
			clauses = append(clauses, c)
			args = append(args, a...)
		}
	}

	if filter != nil {
		for _, item := range filter.Filters {
			c, a := filterClause(spec, item)
			if c != "" {
				clauses = append(clauses, c)
				args = append(args, a...)
			}
		}
	}

	return strings.Join(clauses, " AND "), args
}

// searchClause ORs a case-insensitive substring match across the effective
// attribute set. Empty search text is a no-op.
func searchClause(spec EntitySearchSpec, search *Search) (string, []any) {
	text := strings.ToLower(strings.TrimSpace(search.SearchText))
	if text == "" {
		return "", nil
	}

	attrs := spec.SearchableAttrs
	arrayAttrs := spec.SearchableArrayAttrs
	if search.SearchIn != nil {
		attrs = search.SearchIn
		arrayAttrs = intersect(spec.SearchableArrayAttrs, search.SearchIn)
	}

	var ors []string
	var args []any
	pattern := "%" + text + "%"
	for _, attr := range attrs {
		col, ok := spec.Columns[attr]
		if !ok {
			continue
		}
		ors = append(ors, fmt.Sprintf("LOWER(%s) LIKE ?", col))
		args = append(args, pattern)
	}
	for _, attr := range arrayAttrs {
		col, ok := spec.Columns[attr]
		if !ok {
			continue
		}
		// Tags are stored as a JSON array in a text column; containment is
		// a substring match over the lower-cased encoding.
		ors = append(ors, fmt.Sprintf("LOWER(%s) LIKE ?", col))
		args = append(args, pattern)
	}
	if len(ors) == 0 {
		return "", nil
	}
	return "(" + strings.Join(ors, " OR ") + ")", args
}

// filterClause renders one filter item. Unknown attributes and items with
// no value are skipped so a sloppy client narrows nothing instead of
// erroring.
func filterClause(spec EntitySearchSpec, item FilterItem) (string, []any) {
	col, ok := spec.Columns[item.Attribute]
	if !ok {
		return "", nil
	}
	isArray := contains(spec.SearchableArrayAttrs, item.Attribute)

	if len(item.ValueList) > 0 {
		if isArray {
			// Membership against an array column means "contains any".
			var ors []string
			var args []any
			for _, v := range item.ValueList {
				ors = append(ors, fmt.Sprintf("LOWER(%s) LIKE ?", col))
				args = append(args, "%"+strings.ToLower(v)+"%")
			}
			return "(" + strings.Join(ors, " OR ") + ")", args
		}
		placeholders := strings.TrimSuffix(strings.Repeat("LOWER(?),", len(item.ValueList)), ",")
		args := make([]any, 0, len(item.ValueList))
		for _, v := range item.ValueList {
			args = append(args, v)
		}
		return fmt.Sprintf("LOWER(%s) IN (%s)", col, placeholders), args
	}

	if item.Value != "" {
		if isArray {
			return fmt.Sprintf("LOWER(%s) LIKE ?", col), []any{"%" + strings.ToLower(item.Value) + "%"}
		}
		return fmt.Sprintf("LOWER(%s) = LOWER(?)", col), []any{item.Value}
	}

	return "", nil
}

// OrderBy renders the ORDER BY clause, defaulting to the entity's default
// sort attribute descending. Sort attributes resolve through the column
// map; unmapped names fall back to the default.
func OrderBy(spec EntitySearchSpec, sort *Sort) string {
	attr := spec.DefaultSortAttr
	order := SortDescending
	if sort != nil {
		if sort.SortBy != "" {
			attr = sort.SortBy
		}
		if sort.SortOrder == SortAscending {
			order = SortAscending
		}
	}
	col, ok := spec.Columns[attr]
	if !ok {
		col = spec.Columns[spec.DefaultSortAttr]
	}
	dir := "DESC"
	if order == SortAscending {
		dir = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s", col, dir)
}

// Pagination normalizes a zero-based page and page size into LIMIT/OFFSET
// values. Size defaults to 50 and is bounded to [1,100].
func Pagination(page, maxSize int) (limit, offset int) {
	if page < 0 {
		page = 0
	}
	if maxSize <= 0 {
		maxSize = defaultPageSize
	}
	if maxSize > maxPageSize {
		maxSize = maxPageSize
	}
	return maxSize, page * maxSize
}

func intersect(base, allowed []string) []string {
	var out []string
	for _, b := range base {
		if contains(allowed, b) {
			out = append(out, b)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
