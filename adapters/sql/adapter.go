package sql

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/garrett9/servicerepo/core"

	"github.com/iancoleman/strcase"
)

// Queryer is the subset of database/sql the adapter issues statements
// through. Both *sql.DB and *sql.Tx satisfy it.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Adapter implements the core.Adapter interface over database/sql.
type Adapter struct {
	db      Queryer
	dialect Dialect
	logger  *QueryLogger
}

// New creates a new SQL adapter for the given dialect
func New(db Queryer, dialect Dialect) *Adapter {
	return &Adapter{
		db:      db,
		dialect: dialect,
		logger:  NewQueryLogger(false),
	}
}

// NewWithDebug creates a new SQL adapter with debug logging enabled
func NewWithDebug(db Queryer, dialect Dialect, debugEnabled bool) *Adapter {
	return &Adapter{
		db:      db,
		dialect: dialect,
		logger:  NewQueryLogger(debugEnabled),
	}
}

// WithTx returns a copy of the adapter bound to tx. Row locks taken through
// it (SELECT ... FOR UPDATE) are held until the caller commits or rolls
// back, so lock-then-update sequences stay atomic.
func (a *Adapter) WithTx(tx *sql.Tx) *Adapter {
	return &Adapter{
		db:      tx,
		dialect: a.dialect,
		logger:  a.logger,
	}
}

// SetDebugEnabled enables or disables SQL debug logging
func (a *Adapter) SetDebugEnabled(enabled bool) {
	a.logger.SetEnabled(enabled)
}

// loggedQueryContext wraps QueryContext with logging
func (a *Adapter) loggedQueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		a.logger.LogError(query, args, time.Since(start), err)
		return nil, err
	}
	// The row count is logged after scanning in the calling function.
	return rows, nil
}

// loggedExecContext wraps ExecContext with logging
func (a *Adapter) loggedExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := a.db.ExecContext(ctx, query, args...)
	duration := time.Since(start)

	if err != nil {
		a.logger.LogError(query, args, duration, err)
		return nil, err
	}

	a.logger.LogExec(query, args, duration, result)
	return result, nil
}

// buildWhere renders the query's predicates into a WHERE clause (with
// leading " WHERE ", or empty) and its argument list. Filter keys iterate in
// sorted order so generated SQL is deterministic.
func (a *Adapter) buildWhere(resource *core.Resource, query *core.Query) (string, []any) {
	var conditions []string
	var args []any

	keys := make([]string, 0, len(query.Filters))
	for key := range query.Filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		conditions = append(conditions, fmt.Sprintf("%s = ?", resource.GetColumnName(key)))
		args = append(args, query.Filters[key])
	}

	for _, cmp := range query.Comparisons {
		conditions = append(conditions, fmt.Sprintf("%s %s ?", resource.GetColumnName(cmp.Column), strings.ToUpper(cmp.Operator)))
		args = append(args, cmp.Value)
	}

	for _, in := range query.In {
		if len(in.Values) == 0 {
			// Empty membership sets match nothing.
			conditions = append(conditions, "1 = 0")
			continue
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(in.Values)), ", ")
		conditions = append(conditions, fmt.Sprintf("%s IN (%s)", resource.GetColumnName(in.Column), placeholders))
		args = append(args, in.Values...)
	}

	likeKeys := make([]string, 0, len(query.Like))
	for key := range query.Like {
		likeKeys = append(likeKeys, key)
	}
	sort.Strings(likeKeys)
	for _, key := range likeKeys {
		conditions = append(conditions, fmt.Sprintf("%s %s ?", resource.GetColumnName(key), a.dialect.LikeOperator()))
		args = append(args, "%"+query.Like[key]+"%")
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// buildOrderBy renders the query's sort fields into an ORDER BY clause (with
// leading " ORDER BY ", or empty).
func (a *Adapter) buildOrderBy(resource *core.Resource, query *core.Query) string {
	if len(query.Sort) == 0 {
		return ""
	}
	clauses := make([]string, 0, len(query.Sort))
	for _, s := range query.Sort {
		direction := "ASC"
		if s.Direction == core.SortDesc {
			direction = "DESC"
		}
		clauses = append(clauses, fmt.Sprintf("%s %s", resource.GetColumnName(s.Field), direction))
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}

// buildSelect renders the full SELECT statement for a query, including the
// dialect's row-lock clause when requested.
func (a *Adapter) buildSelect(resource *core.Resource, query *core.Query) (string, []any) {
	query.ApplyDefaultSort(resource)

	queryStr := fmt.Sprintf("SELECT * FROM %s", resource.DeriveTableName())
	where, args := a.buildWhere(resource, query)
	queryStr += where

	if len(query.GroupColumns) > 0 {
		groups := make([]string, 0, len(query.GroupColumns))
		for _, g := range query.GroupColumns {
			groups = append(groups, resource.GetColumnName(g))
		}
		queryStr += " GROUP BY " + strings.Join(groups, ", ")
	}

	queryStr += a.buildOrderBy(resource, query)

	if query.Limit > 0 {
		queryStr += fmt.Sprintf(" LIMIT %d", query.Limit)
		if query.Offset > 0 {
			queryStr += fmt.Sprintf(" OFFSET %d", query.Offset)
		}
	}

	if query.Lock && a.dialect.SupportsRowLocks() {
		queryStr += " FOR UPDATE"
	}

	return a.dialect.Rebind(queryStr), args
}

// Select retrieves all records matching the query, eager-loading any
// requested relations.
func (a *Adapter) Select(ctx context.Context, resource *core.Resource, query *core.Query) ([]any, error) {
	if query == nil {
		return nil, fmt.Errorf("query cannot be nil")
	}
	queryStr, args := a.buildSelect(resource, query)

	start := time.Now()
	rows, err := a.loggedQueryContext(ctx, queryStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var items []any
	for rows.Next() {
		item := resource.NewModel()
		if err := a.scanRowIntoStruct(rows, item); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	a.logger.LogQuery(queryStr, args, time.Since(start), len(items))

	if len(query.With) > 0 && len(items) > 0 {
		if err := a.loadRelations(ctx, resource, items, query.With); err != nil {
			return nil, err
		}
	}

	return items, nil
}

// Exists reports whether any row matches the query.
func (a *Adapter) Exists(ctx context.Context, resource *core.Resource, query *core.Query) (bool, error) {
	where, args := a.buildWhere(resource, query)
	queryStr := a.dialect.Rebind(fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s%s)", resource.DeriveTableName(), where))

	var exists bool
	start := time.Now()
	err := a.db.QueryRowContext(ctx, queryStr, args...).Scan(&exists)
	duration := time.Since(start)
	if err != nil {
		a.logger.LogError(queryStr, args, duration, err)
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	a.logger.LogQuery(queryStr, args, duration, 1)
	return exists, nil
}

// CountRows returns the number of rows matching the query.
func (a *Adapter) CountRows(ctx context.Context, resource *core.Resource, query *core.Query) (int64, error) {
	where, args := a.buildWhere(resource, query)
	queryStr := a.dialect.Rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s%s", resource.DeriveTableName(), where))

	var count int64
	start := time.Now()
	err := a.db.QueryRowContext(ctx, queryStr, args...).Scan(&count)
	duration := time.Since(start)
	if err != nil {
		a.logger.LogError(queryStr, args, duration, err)
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	a.logger.LogQuery(queryStr, args, duration, 1)
	return count, nil
}

// Aggregate applies fn to column over the rows matching the query. NULL
// results (empty sets) come back as 0.
func (a *Adapter) Aggregate(ctx context.Context, resource *core.Resource, fn core.AggregateFunc, column string, query *core.Query) (float64, error) {
	where, args := a.buildWhere(resource, query)
	queryStr := a.dialect.Rebind(fmt.Sprintf("SELECT %s(%s) FROM %s%s",
		fn, resource.GetColumnName(column), resource.DeriveTableName(), where))

	var value sql.NullFloat64
	start := time.Now()
	err := a.db.QueryRowContext(ctx, queryStr, args...).Scan(&value)
	duration := time.Since(start)
	if err != nil {
		a.logger.LogError(queryStr, args, duration, err)
		return 0, fmt.Errorf("failed to aggregate: %w", err)
	}
	a.logger.LogQuery(queryStr, args, duration, 1)
	return value.Float64, nil
}

// TimeBuckets groups rows created after the spec's cutoff by the truncated
// creation timestamp and computes one aggregate value per bucket.
func (a *Adapter) TimeBuckets(ctx context.Context, resource *core.Resource, spec core.BucketSpec, query *core.Query) ([]core.BucketRow, error) {
	expr := a.dialect.BucketExpr(spec.Granularity, spec.Column)

	aggregate := "COUNT(*)"
	if spec.SumColumn != "" {
		aggregate = fmt.Sprintf("SUM(%s)", resource.GetColumnName(spec.SumColumn))
	}

	where, args := a.buildWhere(resource, query)
	if where == "" {
		where = fmt.Sprintf(" WHERE %s > ?", spec.Column)
	} else {
		where += fmt.Sprintf(" AND %s > ?", spec.Column)
	}
	args = append(args, spec.Cutoff)

	queryStr := fmt.Sprintf("SELECT %s AS bucket, %s AS value FROM %s%s GROUP BY bucket",
		expr, aggregate, resource.DeriveTableName(), where)
	if spec.OrderDesc {
		queryStr += fmt.Sprintf(" ORDER BY MAX(%s) DESC", spec.Column)
	}
	queryStr = a.dialect.Rebind(queryStr)

	start := time.Now()
	rows, err := a.loggedQueryContext(ctx, queryStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute bucket query: %w", err)
	}
	defer rows.Close()

	var buckets []core.BucketRow
	for rows.Next() {
		var row core.BucketRow
		var value sql.NullFloat64
		if err := rows.Scan(&row.Bucket, &value); err != nil {
			return nil, fmt.Errorf("failed to scan bucket row: %w", err)
		}
		row.Value = value.Float64
		buckets = append(buckets, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bucket rows: %w", err)
	}

	a.logger.LogQuery(queryStr, args, time.Since(start), len(buckets))
	return buckets, nil
}

// Insert persists a new record and returns its primary-key value. Zero
// primary keys are treated as database-generated; non-zero ones (for
// example UUID strings) are written as given.
func (a *Adapter) Insert(ctx context.Context, resource *core.Resource, model any) (any, error) {
	elem := reflect.ValueOf(model).Elem()

	var columns []string
	var placeholders []string
	var values []any
	pkProvided := false

	for i := range resource.Fields {
		f := &resource.Fields[i]
		field := elem.FieldByName(f.Name)
		if !field.IsValid() {
			continue
		}
		if f.PrimaryKey {
			if field.IsZero() {
				continue
			}
			pkProvided = true
		}
		// Zero-valued read-only fields (created_at and friends) are left to
		// database defaults.
		if f.ReadOnly && !f.PrimaryKey && field.IsZero() {
			continue
		}
		columns = append(columns, resource.GetColumnName(f.Name))
		placeholders = append(placeholders, "?")
		values = append(values, field.Interface())
	}

	queryStr := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		resource.DeriveTableName(),
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "))

	if a.dialect.InsertReturning() {
		queryStr += " RETURNING " + resource.PrimaryKeyColumn()
		queryStr = a.dialect.Rebind(queryStr)

		var pk any
		start := time.Now()
		err := a.db.QueryRowContext(ctx, queryStr, values...).Scan(&pk)
		duration := time.Since(start)
		if err != nil {
			a.logger.LogError(queryStr, values, duration, err)
			return nil, a.writeError(err)
		}
		a.logger.LogQuery(queryStr, values, duration, 1)
		a.assignPrimaryKey(resource, model, pk)
		return pk, nil
	}

	result, err := a.loggedExecContext(ctx, a.dialect.Rebind(queryStr), values...)
	if err != nil {
		return nil, a.writeError(err)
	}
	if pkProvided {
		return resource.PrimaryKeyValue(model), nil
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read generated key: %w", err)
	}
	a.assignPrimaryKey(resource, model, id)
	return resource.PrimaryKeyValue(model), nil
}

// InsertRows bulk-inserts raw rows. All rows must share the first row's
// keys; missing keys insert NULL.
func (a *Adapter) InsertRows(ctx context.Context, resource *core.Resource, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}

	keys := make([]string, 0, len(rows[0]))
	for key := range rows[0] {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	columns := make([]string, 0, len(keys))
	for _, key := range keys {
		columns = append(columns, resource.GetColumnName(key))
	}
	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", ") + ")"

	var b strings.Builder
	var values []any
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", resource.DeriveTableName(), strings.Join(columns, ", "))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(rowPlaceholder)
		for _, key := range keys {
			values = append(values, row[key])
		}
	}

	_, err := a.loggedExecContext(ctx, a.dialect.Rebind(b.String()), values...)
	if err != nil {
		return a.writeError(err)
	}
	return nil
}

// UpdateModel writes all fillable fields of an already-retrieved model back
// to its row.
func (a *Adapter) UpdateModel(ctx context.Context, resource *core.Resource, model any) error {
	elem := reflect.ValueOf(model).Elem()

	var setClauses []string
	var values []any
	for i := range resource.Fields {
		f := &resource.Fields[i]
		if !f.Fillable() {
			continue
		}
		field := elem.FieldByName(f.Name)
		if !field.IsValid() {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", resource.GetColumnName(f.Name)))
		values = append(values, field.Interface())
	}
	if len(setClauses) == 0 {
		return nil
	}

	values = append(values, resource.PrimaryKeyValue(model))
	queryStr := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		resource.DeriveTableName(),
		strings.Join(setClauses, ", "),
		resource.PrimaryKeyColumn())

	_, err := a.loggedExecContext(ctx, a.dialect.Rebind(queryStr), values...)
	if err != nil {
		return a.writeError(err)
	}
	return nil
}

// UpdateWhere executes a bulk UPDATE against the filter, returning the
// number of affected rows.
func (a *Adapter) UpdateWhere(ctx context.Context, resource *core.Resource, filter core.Filter, data map[string]any) (int64, error) {
	if len(data) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var setClauses []string
	var values []any
	for _, key := range keys {
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", resource.GetColumnName(key)))
		values = append(values, data[key])
	}

	where, args := a.buildWhere(resource, core.NewQuery().WithFilters(filter))
	values = append(values, args...)

	queryStr := fmt.Sprintf("UPDATE %s SET %s%s",
		resource.DeriveTableName(), strings.Join(setClauses, ", "), where)

	result, err := a.loggedExecContext(ctx, a.dialect.Rebind(queryStr), values...)
	if err != nil {
		return 0, a.writeError(err)
	}
	return result.RowsAffected()
}

// DeleteWhere bulk-deletes all rows matching the filter, returning the count
// deleted. An empty filter deletes every row.
func (a *Adapter) DeleteWhere(ctx context.Context, resource *core.Resource, filter core.Filter) (int64, error) {
	where, args := a.buildWhere(resource, core.NewQuery().WithFilters(filter))
	queryStr := a.dialect.Rebind(fmt.Sprintf("DELETE FROM %s%s", resource.DeriveTableName(), where))

	result, err := a.loggedExecContext(ctx, queryStr, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete records: %w", err)
	}
	return result.RowsAffected()
}

// AdjustColumn adds delta to a numeric column of all rows matching the
// filter.
func (a *Adapter) AdjustColumn(ctx context.Context, resource *core.Resource, filter core.Filter, column string, delta float64) error {
	columnName := resource.GetColumnName(column)
	where, args := a.buildWhere(resource, core.NewQuery().WithFilters(filter))
	queryStr := fmt.Sprintf("UPDATE %s SET %s = %s + ?%s",
		resource.DeriveTableName(), columnName, columnName, where)

	_, err := a.loggedExecContext(ctx, a.dialect.Rebind(queryStr), append([]any{delta}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to adjust column: %w", err)
	}
	return nil
}

// writeError maps driver constraint violations to the typed error the
// repository layer contracts on; anything else propagates unchanged.
func (a *Adapter) writeError(err error) error {
	if constraint, ok := a.dialect.ConstraintViolation(err); ok {
		return &core.IntegrityViolationError{Constraint: constraint, Err: err}
	}
	return err
}

// assignPrimaryKey writes a generated key back onto the model when the types
// line up.
func (a *Adapter) assignPrimaryKey(resource *core.Resource, model any, pk any) {
	if pk == nil {
		return
	}
	field := reflect.ValueOf(model).Elem().FieldByName(resource.PrimaryKey)
	if !field.IsValid() || !field.CanSet() {
		return
	}
	v := reflect.ValueOf(pk)
	if v.Type().AssignableTo(field.Type()) {
		field.Set(v)
	} else if v.Type().ConvertibleTo(field.Type()) {
		field.Set(v.Convert(field.Type()))
	}
}

// scanRowIntoStruct scans a sql.Rows into a struct using reflection
func (a *Adapter) scanRowIntoStruct(rows *sql.Rows, dest any) error {
	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	destValue := reflect.ValueOf(dest).Elem()
	destType := destValue.Type()

	// Map column names to struct fields
	fieldMap := make(map[string]reflect.Value)
	for i := 0; i < destType.NumField(); i++ {
		field := destType.Field(i)
		fieldValue := destValue.Field(i)

		columnName := field.Tag.Get("db")
		if columnName == "" {
			columnName = strcase.ToSnake(field.Name)
		} else if columnName == "-" {
			continue
		}

		fieldMap[columnName] = fieldValue
	}

	// Set up scan destinations
	valuePtrs := make([]any, len(columns))
	for i, column := range columns {
		if fieldValue, exists := fieldMap[column]; exists && fieldValue.CanSet() {
			valuePtrs[i] = fieldValue.Addr().Interface()
		} else {
			// Unknown column, scan into a discard variable
			var discard any
			valuePtrs[i] = &discard
		}
	}

	return rows.Scan(valuePtrs...)
}

// fieldNameForColumn resolves a database column back to the struct field
// holding it.
func fieldNameForColumn(resource *core.Resource, column string) string {
	for i := range resource.Fields {
		f := &resource.Fields[i]
		name := f.DBColumnName
		if name == "" {
			name = strcase.ToSnake(f.Name)
		}
		if name == column {
			return f.Name
		}
	}
	return ""
}

// loadRelations eager-loads the named relations for the retrieved items with
// one IN query per relation.
func (a *Adapter) loadRelations(ctx context.Context, resource *core.Resource, items []any, with []string) error {
	for _, name := range with {
		rel, ok := resource.Relations[name]
		if !ok {
			return fmt.Errorf("unknown relation %q on resource %s", name, resource.Name)
		}
		var err error
		switch rel.Kind {
		case core.HasMany:
			err = a.loadHasMany(ctx, resource, items, rel)
		case core.BelongsTo:
			err = a.loadBelongsTo(ctx, resource, items, rel)
		default:
			err = fmt.Errorf("unknown relation kind for %q", name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// loadHasMany fetches all children whose foreign key is one of the parents'
// primary keys and groups them onto the parents' slice fields.
func (a *Adapter) loadHasMany(ctx context.Context, resource *core.Resource, items []any, rel core.Relation) error {
	keys := make([]any, 0, len(items))
	for _, item := range items {
		keys = append(keys, resource.PrimaryKeyValue(item))
	}

	children, err := a.Select(ctx, rel.Related, core.NewQuery().WithIn(rel.ForeignKey, keys))
	if err != nil {
		return err
	}

	fkField := fieldNameForColumn(rel.Related, rel.ForeignKey)
	if fkField == "" {
		return fmt.Errorf("relation foreign key %q matches no field on %s", rel.ForeignKey, rel.Related.Name)
	}

	grouped := make(map[string][]any)
	for _, child := range children {
		fk := reflect.ValueOf(child).Elem().FieldByName(fkField)
		if !fk.IsValid() {
			continue
		}
		key := normalizeKey(fk.Interface())
		grouped[key] = append(grouped[key], child)
	}

	for _, item := range items {
		field := reflect.ValueOf(item).Elem().FieldByName(rel.Field)
		if !field.IsValid() || field.Kind() != reflect.Slice {
			return fmt.Errorf("relation field %q must be a slice on %s", rel.Field, resource.Name)
		}
		slice := reflect.MakeSlice(field.Type(), 0, 0)
		for _, child := range grouped[normalizeKey(resource.PrimaryKeyValue(item))] {
			slice = reflect.Append(slice, relationValue(reflect.ValueOf(child), field.Type().Elem()))
		}
		field.Set(slice)
	}
	return nil
}

// loadBelongsTo fetches the parents referenced by the items' foreign-key
// column and assigns each onto its item's field.
func (a *Adapter) loadBelongsTo(ctx context.Context, resource *core.Resource, items []any, rel core.Relation) error {
	fkField := fieldNameForColumn(resource, rel.ForeignKey)
	if fkField == "" {
		return fmt.Errorf("relation foreign key %q matches no field on %s", rel.ForeignKey, resource.Name)
	}

	var keys []any
	for _, item := range items {
		fk := reflect.ValueOf(item).Elem().FieldByName(fkField)
		if !fk.IsValid() || fk.IsZero() {
			continue
		}
		if fk.Kind() == reflect.Ptr {
			fk = fk.Elem()
		}
		keys = append(keys, fk.Interface())
	}
	if len(keys) == 0 {
		return nil
	}

	parents, err := a.Select(ctx, rel.Related, core.NewQuery().WithIn(rel.Related.PrimaryKeyColumn(), keys))
	if err != nil {
		return err
	}

	byKey := make(map[string]any, len(parents))
	for _, parent := range parents {
		byKey[normalizeKey(rel.Related.PrimaryKeyValue(parent))] = parent
	}

	for _, item := range items {
		fk := reflect.ValueOf(item).Elem().FieldByName(fkField)
		if !fk.IsValid() || fk.IsZero() {
			continue
		}
		if fk.Kind() == reflect.Ptr {
			fk = fk.Elem()
		}
		parent, ok := byKey[normalizeKey(fk.Interface())]
		if !ok {
			continue
		}
		field := reflect.ValueOf(item).Elem().FieldByName(rel.Field)
		if !field.IsValid() || !field.CanSet() {
			return fmt.Errorf("relation field %q is not assignable on %s", rel.Field, resource.Name)
		}
		field.Set(relationValue(reflect.ValueOf(parent), field.Type()))
	}
	return nil
}

// relationValue adapts a loaded *Model value to the target field type,
// dereferencing when the field holds the struct by value.
func relationValue(v reflect.Value, target reflect.Type) reflect.Value {
	if v.Type().AssignableTo(target) {
		return v
	}
	if v.Kind() == reflect.Ptr && v.Type().Elem().AssignableTo(target) {
		return v.Elem()
	}
	return v
}

// normalizeKey renders join-key values into a comparable form so numeric
// type differences between parent and child structs do not break matching.
func normalizeKey(v any) string {
	return fmt.Sprintf("%v", v)
}
