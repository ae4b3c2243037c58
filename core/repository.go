package core

import (
	"context"
	"time"
)

// Hook observes completed repository operations; used for instrumentation.
type Hook func(resource, op string, duration time.Duration, err error)

// Page is one window of a paginated listing.
type Page struct {
	Items   []any `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	HasMore bool  `json:"has_more"`
}

// Repository translates generic filter and aggregation requests for one
// resource into adapter calls. It owns identifier resolution, validation
// orchestration, and the time-bucketing logic; it never opens transactions.
type Repository struct {
	resource *Resource
	adapter  Adapter
	clock    Clock
	hook     Hook
}

// RepositoryOption configures a Repository at construction.
type RepositoryOption func(*Repository)

// WithClock injects the time source used for relative-window cutoffs.
func WithClock(clock Clock) RepositoryOption {
	return func(r *Repository) { r.clock = clock }
}

// WithHook attaches an instrumentation hook invoked after every operation.
func WithHook(hook Hook) RepositoryOption {
	return func(r *Repository) { r.hook = hook }
}

// NewRepository creates a Repository for the given resource and adapter.
func NewRepository(resource *Resource, adapter Adapter, opts ...RepositoryOption) *Repository {
	r := &Repository{
		resource: resource,
		adapter:  adapter,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resource returns the resource this repository operates on.
func (r *Repository) Resource() *Resource {
	return r.resource
}

// track reports a completed operation to the hook, if any. Meant to be
// deferred with time.Now() and a pointer to the named error return.
func (r *Repository) track(op string, start time.Time, err *error) {
	if r.hook == nil {
		return
	}
	r.hook(r.resource.Name, op, time.Since(start), *err)
}

// Count returns the number of records matching the equality filter.
func (r *Repository) Count(ctx context.Context, where Filter) (n int64, err error) {
	defer r.track("count", time.Now(), &err)
	return r.adapter.CountRows(ctx, r.resource, NewQuery().WithFilters(where))
}

// CountWhere counts records matching the equality filter plus one extra
// comparison predicate.
func (r *Repository) CountWhere(ctx context.Context, column, operator string, value any, where Filter) (n int64, err error) {
	defer r.track("count_where", time.Now(), &err)
	q := NewQuery().WithFilters(where).WithComparison(column, operator, value)
	return r.adapter.CountRows(ctx, r.resource, q)
}

// Min returns the minimum value of column over the matching records. Zero
// matching rows yield 0.
func (r *Repository) Min(ctx context.Context, column string, where Filter) (v float64, err error) {
	defer r.track("min", time.Now(), &err)
	return r.adapter.Aggregate(ctx, r.resource, AggregateMin, column, NewQuery().WithFilters(where))
}

// Max returns the maximum value of column over the matching records. Zero
// matching rows yield 0.
func (r *Repository) Max(ctx context.Context, column string, where Filter) (v float64, err error) {
	defer r.track("max", time.Now(), &err)
	return r.adapter.Aggregate(ctx, r.resource, AggregateMax, column, NewQuery().WithFilters(where))
}

// Sum returns the sum of column over the matching records. Zero matching
// rows yield 0, not NULL.
func (r *Repository) Sum(ctx context.Context, column string, where Filter) (v float64, err error) {
	defer r.track("sum", time.Now(), &err)
	return r.adapter.Aggregate(ctx, r.resource, AggregateSum, column, NewQuery().WithFilters(where))
}

// Avg returns the average of column over the matching records. Zero matching
// rows yield 0, not NULL.
func (r *Repository) Avg(ctx context.Context, column string, where Filter) (v float64, err error) {
	defer r.track("avg", time.Now(), &err)
	return r.adapter.Aggregate(ctx, r.resource, AggregateAvg, column, NewQuery().WithFilters(where))
}

// Increment adds amount to a numeric column of the identified records.
func (r *Repository) Increment(ctx context.Context, id Identifier, column string, amount float64) (err error) {
	defer r.track("increment", time.Now(), &err)
	return r.adapter.AdjustColumn(ctx, r.resource, id.Resolve(r.resource.PrimaryKeyColumn()), column, amount)
}

// Decrement subtracts amount from a numeric column of the identified records.
func (r *Repository) Decrement(ctx context.Context, id Identifier, column string, amount float64) (err error) {
	defer r.track("decrement", time.Now(), &err)
	return r.adapter.AdjustColumn(ctx, r.resource, id.Resolve(r.resource.PrimaryKeyColumn()), column, -amount)
}

// Get returns the records matching the equality filter, with the named
// relations eager-loaded. limit <= 0 means unbounded.
func (r *Repository) Get(ctx context.Context, where Filter, with []string, limit int) (items []any, err error) {
	defer r.track("get", time.Now(), &err)
	q := NewQuery().WithFilters(where).WithRelations(with...).WithLimit(limit)
	return r.adapter.Select(ctx, r.resource, q)
}

// GetWhere is Get with one extra comparison predicate.
func (r *Repository) GetWhere(ctx context.Context, column, operator string, value any, where Filter, with []string, limit int) (items []any, err error) {
	defer r.track("get_where", time.Now(), &err)
	q := NewQuery().WithFilters(where).WithComparison(column, operator, value).WithRelations(with...).WithLimit(limit)
	return r.adapter.Select(ctx, r.resource, q)
}

// WhereIn returns records whose column value is one of values.
func (r *Repository) WhereIn(ctx context.Context, column string, values []any, where Filter, with []string) (items []any, err error) {
	defer r.track("where_in", time.Now(), &err)
	q := NewQuery().WithFilters(where).WithIn(column, values).WithRelations(with...)
	return r.adapter.Select(ctx, r.resource, q)
}

// GroupBy returns records grouped by the given columns; the grouping is
// pushed to the query, not computed client-side.
func (r *Repository) GroupBy(ctx context.Context, groups []string, where Filter, with []string) (items []any, err error) {
	defer r.track("group_by", time.Now(), &err)
	q := NewQuery().WithFilters(where).WithGroupBy(groups...).WithRelations(with...)
	return r.adapter.Select(ctx, r.resource, q)
}

// Search returns records matching a case-insensitive substring predicate per
// non-nil search term. Nil terms are no-ops, so a search with only nil terms
// is equivalent to Get.
func (r *Repository) Search(ctx context.Context, terms map[string]*string, where Filter, with []string) (items []any, err error) {
	defer r.track("search", time.Now(), &err)
	q := NewQuery().WithFilters(where).WithSearch(terms).WithRelations(with...)
	return r.adapter.Select(ctx, r.resource, q)
}

// Exists reports whether any record matches the identifier.
func (r *Repository) Exists(ctx context.Context, id Identifier) (ok bool, err error) {
	defer r.track("exists", time.Now(), &err)
	q := NewQuery().WithFilters(id.Resolve(r.resource.PrimaryKeyColumn()))
	return r.adapter.Exists(ctx, r.resource, q)
}

// Find retrieves the single record matching the identifier, with the named
// relations eager-loaded. A miss returns NotFoundError; a scalar identifier
// matching more than one row returns AmbiguousMatchError.
func (r *Repository) Find(ctx context.Context, id Identifier, with ...string) (item any, err error) {
	defer r.track("find", time.Now(), &err)
	return r.findOne(ctx, id, with, false)
}

// LockForUpdate is Find with a row-level write lock. The caller must already
// hold an open transaction; the repository never opens one.
func (r *Repository) LockForUpdate(ctx context.Context, id Identifier, with ...string) (item any, err error) {
	defer r.track("lock_for_update", time.Now(), &err)
	return r.findOne(ctx, id, with, true)
}

// findOne is the single retrieval path shared by Find and LockForUpdate. It
// probes for a second row so scalar-identifier ambiguity is detectable;
// filter identifiers keep the documented first-row-wins behavior.
func (r *Repository) findOne(ctx context.Context, id Identifier, with []string, lock bool) (any, error) {
	q := NewQuery().
		WithFilters(id.Resolve(r.resource.PrimaryKeyColumn())).
		WithRelations(with...).
		WithLimit(2)
	if lock {
		q.WithLock()
	}
	items, err := r.adapter.Select(ctx, r.resource, q)
	if err != nil {
		return nil, err
	}
	switch {
	case len(items) == 0:
		return nil, &NotFoundError{Resource: r.resource.Name}
	case len(items) > 1 && !id.IsFilter():
		return nil, &AmbiguousMatchError{Resource: r.resource.Name}
	}
	return items[0], nil
}

// Create validates and persists a new record built from data, honoring the
// resource's mass-assignment whitelist. It returns the new primary-key
// value. Data rejected by validation never reaches the database; constraint
// violations surface as IntegrityViolationError.
func (r *Repository) Create(ctx context.Context, data map[string]any) (pk any, err error) {
	defer r.track("create", time.Now(), &err)

	model := r.resource.NewModel()
	if err := r.resource.Fill(model, data); err != nil {
		return nil, err
	}
	if verrs := r.resource.Validate(model); !verrs.Empty() {
		return nil, &ValidationError{Message: "Failed to create the new record.", Errors: verrs}
	}
	return r.adapter.Insert(ctx, r.resource, model)
}

// Insert bulk-inserts raw rows, bypassing validation and the fillable
// whitelist.
func (r *Repository) Insert(ctx context.Context, rows []map[string]any) (err error) {
	defer r.track("insert", time.Now(), &err)
	return r.adapter.InsertRows(ctx, r.resource, rows)
}

// Update retrieves the identified record, applies data through the fillable
// whitelist, validates, and saves. A miss propagates NotFoundError;
// rejected data returns ValidationError.
func (r *Repository) Update(ctx context.Context, id Identifier, data map[string]any) (err error) {
	defer r.track("update", time.Now(), &err)

	model, err := r.findOne(ctx, id, nil, false)
	if err != nil {
		return err
	}
	if err := r.resource.Fill(model, data); err != nil {
		return err
	}
	if verrs := r.resource.Validate(model); !verrs.Empty() {
		return &ValidationError{Message: "Failed to save the record.", Errors: verrs}
	}
	return r.adapter.UpdateModel(ctx, r.resource, model)
}

// DirectUpdate executes a bulk UPDATE against the resolved filter without
// retrieving records or running validation, returning the number of affected
// rows. Deliberately unsafe fast path; callers own any validation.
func (r *Repository) DirectUpdate(ctx context.Context, id Identifier, data map[string]any) (n int64, err error) {
	defer r.track("direct_update", time.Now(), &err)
	return r.adapter.UpdateWhere(ctx, r.resource, id.Resolve(r.resource.PrimaryKeyColumn()), data)
}

// Delete retrieves the identified record and deletes it. A miss propagates
// NotFoundError.
func (r *Repository) Delete(ctx context.Context, id Identifier) (err error) {
	defer r.track("delete", time.Now(), &err)

	model, err := r.findOne(ctx, id, nil, false)
	if err != nil {
		return err
	}
	pk := r.resource.PrimaryKeyValue(model)
	_, err = r.adapter.DeleteWhere(ctx, r.resource, Filter{r.resource.PrimaryKeyColumn(): pk})
	return err
}

// Clear bulk-deletes every record matching the filter (all records when the
// filter is empty), returning the count deleted.
func (r *Repository) Clear(ctx context.Context, where Filter) (n int64, err error) {
	defer r.track("clear", time.Now(), &err)
	return r.adapter.DeleteWhere(ctx, r.resource, where)
}

// Paginate returns one page of matching records ordered by orderBy (the
// resource's default sort when empty), along with the total count.
func (r *Repository) Paginate(ctx context.Context, page, perPage int, where Filter, with []string, orderBy string, dir SortDirection) (p *Page, err error) {
	defer r.track("paginate", time.Now(), &err)
	return r.paginate(ctx, page, perPage, where, with, orderBy, dir, nil)
}

// PaginateWhere is Paginate with one extra comparison predicate.
func (r *Repository) PaginateWhere(ctx context.Context, column, operator string, value any, page, perPage int, where Filter, with []string, orderBy string, dir SortDirection) (p *Page, err error) {
	defer r.track("paginate_where", time.Now(), &err)
	cmp := &Comparison{Column: column, Operator: operator, Value: value}
	return r.paginate(ctx, page, perPage, where, with, orderBy, dir, cmp)
}

func (r *Repository) paginate(ctx context.Context, page, perPage int, where Filter, with []string, orderBy string, dir SortDirection, cmp *Comparison) (*Page, error) {
	if page < 1 {
		page = 1
	}

	base := NewQuery().WithFilters(where)
	if cmp != nil {
		base.WithComparison(cmp.Column, cmp.Operator, cmp.Value)
	}
	total, err := r.adapter.CountRows(ctx, r.resource, base)
	if err != nil {
		return nil, err
	}

	q := NewQuery().WithFilters(where).WithRelations(with...)
	if cmp != nil {
		q.WithComparison(cmp.Column, cmp.Operator, cmp.Value)
	}
	if orderBy != "" {
		if !dir.IsValid() {
			dir = SortAsc
		}
		q.WithSort(orderBy, dir)
	}
	q.WithPagination(perPage, (page-1)*perPage)

	items, err := r.adapter.Select(ctx, r.resource, q)
	if err != nil {
		return nil, err
	}

	return &Page{
		Items:   items,
		Total:   total,
		Page:    page,
		PerPage: q.Limit,
		HasMore: int64(q.Offset+len(items)) < total,
	}, nil
}

// countBuckets runs a bucketed COUNT(*) over the window ending now and
// re-groups the adapter rows into the keyed mapping callers consume.
func (r *Repository) countBuckets(ctx context.Context, g Granularity, minutes int, where Filter) (map[string]int64, error) {
	spec := BucketSpec{
		Granularity: g,
		Column:      r.resource.CreatedAtColumn(),
		Cutoff:      cutoffFor(r.clock(), minutes),
	}
	rows, err := r.adapter.TimeBuckets(ctx, r.resource, spec, NewQuery().WithFilters(where))
	if err != nil {
		return nil, err
	}
	return groupCounts(rows), nil
}

// sumBuckets runs a bucketed SUM(column) over the window ending now. Sum
// variants order by the creation timestamp, newest first.
func (r *Repository) sumBuckets(ctx context.Context, g Granularity, column string, minutes int, where Filter) (map[string]float64, error) {
	spec := BucketSpec{
		Granularity: g,
		Column:      r.resource.CreatedAtColumn(),
		Cutoff:      cutoffFor(r.clock(), minutes),
		SumColumn:   column,
		OrderDesc:   true,
	}
	rows, err := r.adapter.TimeBuckets(ctx, r.resource, spec, NewQuery().WithFilters(where))
	if err != nil {
		return nil, err
	}
	return groupSums(rows), nil
}

// CountCreatedPerDayForMinutesAgo counts records created in the last minutes
// minutes, bucketed by day. Buckets with zero rows are absent from the
// result.
func (r *Repository) CountCreatedPerDayForMinutesAgo(ctx context.Context, minutes int, where Filter) (m map[string]int64, err error) {
	defer r.track("count_created_per_day", time.Now(), &err)
	return r.countBuckets(ctx, PerDay, minutes, where)
}

// CountCreatedPerDayForDaysAgo counts records created in the last days days,
// bucketed by day.
func (r *Repository) CountCreatedPerDayForDaysAgo(ctx context.Context, days int, where Filter) (map[string]int64, error) {
	return r.CountCreatedPerDayForMinutesAgo(ctx, clampCount(days)*MinutesPerDay, where)
}

// CountCreatedPerDayForWeeksAgo counts records created in the last weeks
// weeks, bucketed by day.
func (r *Repository) CountCreatedPerDayForWeeksAgo(ctx context.Context, weeks int, where Filter) (map[string]int64, error) {
	return r.CountCreatedPerDayForMinutesAgo(ctx, clampCount(weeks)*MinutesPerWeek, where)
}

// CountCreatedPerDayForMonthsAgo counts records created in the last months
// months, bucketed by day. A month is exactly 30 days.
func (r *Repository) CountCreatedPerDayForMonthsAgo(ctx context.Context, months int, where Filter) (map[string]int64, error) {
	return r.CountCreatedPerDayForMinutesAgo(ctx, clampCount(months)*MinutesPerMonth, where)
}

// CountCreatedPerHourForMinutesAgo counts records created in the last
// minutes minutes, bucketed by hour.
func (r *Repository) CountCreatedPerHourForMinutesAgo(ctx context.Context, minutes int, where Filter) (m map[string]int64, err error) {
	defer r.track("count_created_per_hour", time.Now(), &err)
	return r.countBuckets(ctx, PerHour, minutes, where)
}

// CountCreatedPerHourForHoursAgo counts records created in the last hours
// hours, bucketed by hour.
func (r *Repository) CountCreatedPerHourForHoursAgo(ctx context.Context, hours int, where Filter) (map[string]int64, error) {
	return r.CountCreatedPerHourForMinutesAgo(ctx, clampCount(hours)*MinutesPerHour, where)
}

// SumPerDayForMinutesAgo sums column over records created in the last
// minutes minutes, bucketed by day.
func (r *Repository) SumPerDayForMinutesAgo(ctx context.Context, column string, minutes int, where Filter) (m map[string]float64, err error) {
	defer r.track("sum_per_day", time.Now(), &err)
	return r.sumBuckets(ctx, PerDay, column, minutes, where)
}

// SumPerDayForDaysAgo sums column over records created in the last days
// days, bucketed by day.
func (r *Repository) SumPerDayForDaysAgo(ctx context.Context, column string, days int, where Filter) (map[string]float64, error) {
	return r.SumPerDayForMinutesAgo(ctx, column, clampCount(days)*MinutesPerDay, where)
}

// SumPerDayForWeeksAgo sums column over records created in the last weeks
// weeks, bucketed by day.
func (r *Repository) SumPerDayForWeeksAgo(ctx context.Context, column string, weeks int, where Filter) (map[string]float64, error) {
	return r.SumPerDayForMinutesAgo(ctx, column, clampCount(weeks)*MinutesPerWeek, where)
}

// SumPerDayForMonthsAgo sums column over records created in the last months
// months, bucketed by day. A month is exactly 30 days.
func (r *Repository) SumPerDayForMonthsAgo(ctx context.Context, column string, months int, where Filter) (map[string]float64, error) {
	return r.SumPerDayForMinutesAgo(ctx, column, clampCount(months)*MinutesPerMonth, where)
}

// SumPerHourForMinutesAgo sums column over records created in the last
// minutes minutes, bucketed by hour.
func (r *Repository) SumPerHourForMinutesAgo(ctx context.Context, column string, minutes int, where Filter) (m map[string]float64, err error) {
	defer r.track("sum_per_hour", time.Now(), &err)
	return r.sumBuckets(ctx, PerHour, column, minutes, where)
}

// SumPerHourForHoursAgo sums column over records created in the last hours
// hours, bucketed by hour.
func (r *Repository) SumPerHourForHoursAgo(ctx context.Context, column string, hours int, where Filter) (map[string]float64, error) {
	return r.SumPerHourForMinutesAgo(ctx, column, clampCount(hours)*MinutesPerHour, where)
}
