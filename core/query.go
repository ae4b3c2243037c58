package core

import (
	"os"
	"strconv"
	"strings"
)

// Constants for pagination
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// SortDirection represents the sort order
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortPrecedence represents the precedence of sort configuration
type SortPrecedence int

const (
	SortPrecedenceNone          SortPrecedence = iota // Not configured (use auto-detection)
	SortPrecedenceExplicit                            // Explicitly configured via WithDefaultSort
	SortPrecedenceAutoCreatedAt                       // Auto-detected CreatedAt field
	SortPrecedenceAutoID                              // Fallback to primary-key field
)

// SortField represents a field to sort by with precedence tracking
type SortField struct {
	Field      string         `json:"field"`
	Direction  SortDirection  `json:"direction"`
	Precedence SortPrecedence `json:"precedence"`
}

// Comparison is a single (column, operator, value) predicate layered on top
// of a query's equality filter.
type Comparison struct {
	Column   string
	Operator string
	Value    any
}

// InClause restricts a column to a set of values.
type InClause struct {
	Column string
	Values []any
}

// Query describes a select against a single resource: equality filters,
// optional extra predicates, eager-load relations, grouping, sorting, and a
// row window. Limit <= 0 means unbounded.
type Query struct {
	Filters      Filter
	Comparisons  []Comparison
	In           []InClause
	Like         map[string]string
	GroupColumns []string
	With         []string
	Sort         []SortField
	Limit        int
	Offset       int
	Lock         bool
}

// NewQuery creates an empty, unbounded Query.
func NewQuery() *Query {
	return &Query{
		Filters: make(Filter),
		Like:    make(map[string]string),
	}
}

// WithFilters adds equality predicates to the query.
func (q *Query) WithFilters(filters Filter) *Query {
	for k, v := range filters {
		q.Filters[k] = v
	}
	return q
}

// WithComparison adds a (column, operator, value) predicate.
func (q *Query) WithComparison(column, operator string, value any) *Query {
	q.Comparisons = append(q.Comparisons, Comparison{Column: column, Operator: operator, Value: value})
	return q
}

// WithIn restricts column to the given set of values.
func (q *Query) WithIn(column string, values []any) *Query {
	q.In = append(q.In, InClause{Column: column, Values: values})
	return q
}

// WithSearch adds a case-insensitive substring predicate per non-nil term.
// Nil terms are skipped entirely, so a search with only nil terms behaves
// like no search at all.
func (q *Query) WithSearch(terms map[string]*string) *Query {
	for column, term := range terms {
		if term == nil {
			continue
		}
		q.Like[column] = *term
	}
	return q
}

// WithGroupBy pushes grouping by the given columns into the query.
func (q *Query) WithGroupBy(columns ...string) *Query {
	q.GroupColumns = append(q.GroupColumns, columns...)
	return q
}

// WithRelations adds named relations to eager-load with the results.
func (q *Query) WithRelations(relations ...string) *Query {
	q.With = append(q.With, relations...)
	return q
}

// WithSort adds a sort field to the query
func (q *Query) WithSort(field string, direction SortDirection) *Query {
	q.Sort = append(q.Sort, SortField{Field: field, Direction: direction})
	return q
}

// WithLimit bounds the number of returned rows. Values <= 0 leave the query
// unbounded.
func (q *Query) WithLimit(limit int) *Query {
	if limit > 0 {
		q.Limit = limit
	}
	return q
}

// WithLock requests a row-level write lock from the adapter. Only meaningful
// inside a caller-owned transaction.
func (q *Query) WithLock() *Query {
	q.Lock = true
	return q
}

// WithPagination sets a bounded page window, clamping the page size.
func (q *Query) WithPagination(limit, offset int) *Query {
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if limit <= 0 {
		limit = getPageSizeFromEnv()
	}
	if offset < 0 {
		offset = 0
	}
	q.Limit = limit
	q.Offset = offset
	return q
}

// GetCurrentPage returns the current page number (1-indexed)
func (q *Query) GetCurrentPage() int {
	if q.Limit <= 0 {
		return 1
	}
	return (q.Offset / q.Limit) + 1
}

// HasFilters returns true if the query has any filters
func (q *Query) HasFilters() bool {
	return len(q.Filters) > 0
}

// HasSort returns true if the query has sorting
func (q *Query) HasSort() bool {
	return len(q.Sort) > 0
}

// GetPrimarySort returns the first sort field, or nil if none
func (q *Query) GetPrimarySort() *SortField {
	if len(q.Sort) > 0 {
		return &q.Sort[0]
	}
	return nil
}

// ApplyDefaultSort applies the resource's default sorting if the query does
// not sort already. Grouped queries are left alone.
func (q *Query) ApplyDefaultSort(resource *Resource) {
	if q.HasSort() || len(q.GroupColumns) > 0 {
		return
	}
	defaultSort := resource.GetEffectiveDefaultSort()
	q.WithSort(defaultSort.Field, defaultSort.Direction)
}

// getPageSizeFromEnv gets page size from environment variable or default
func getPageSizeFromEnv() int {
	if envSize := os.Getenv("SERVICEREPO_PAGE_SIZE"); envSize != "" {
		if size, err := strconv.Atoi(envSize); err == nil && size > 0 && size <= MaxPageSize {
			return size
		}
	}
	return DefaultPageSize
}

// ParseSortDirection normalizes user-supplied direction strings, falling
// back to ascending for anything unrecognized.
func ParseSortDirection(raw string) SortDirection {
	if strings.EqualFold(raw, string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// String returns a string representation of the sort direction
func (sd SortDirection) String() string {
	return string(sd)
}

// IsValid checks if the sort direction is valid
func (sd SortDirection) IsValid() bool {
	return sd == SortAsc || sd == SortDesc
}

// Opposite returns the opposite sort direction
func (sd SortDirection) Opposite() SortDirection {
	if sd == SortAsc {
		return SortDesc
	}
	return SortAsc
}
