package core

// Filter scopes a query to records whose columns equal the given values. All
// entries are combined conjunctively.
type Filter map[string]any

// identifierKind tags the two shapes an Identifier can take.
type identifierKind int

const (
	identifierKey identifierKind = iota + 1
	identifierFilter
)

// Identifier targets a single record: either a scalar primary-key value or a
// Filter of equality predicates. Construct one with ByKey or ByFilter; the
// zero value is invalid.
type Identifier struct {
	kind   identifierKind
	key    any
	filter Filter
}

// ByKey returns an Identifier targeting the record whose primary key equals
// key.
func ByKey(key any) Identifier {
	return Identifier{kind: identifierKey, key: key}
}

// ByFilter returns an Identifier targeting the record matching the given
// equality filter.
func ByFilter(filter Filter) Identifier {
	return Identifier{kind: identifierFilter, filter: filter}
}

// IsFilter reports whether the identifier was built from a Filter.
func (id Identifier) IsFilter() bool {
	return id.kind == identifierFilter
}

// IsZero reports whether the identifier was never constructed.
func (id Identifier) IsZero() bool {
	return id.kind == 0
}

// Resolve converts the identifier into an equality filter. Filter
// identifiers are used verbatim; scalar identifiers become a single predicate
// against the given primary-key column.
func (id Identifier) Resolve(pkColumn string) Filter {
	if id.kind == identifierFilter {
		return id.filter
	}
	return Filter{pkColumn: id.key}
}
