package core

import "context"

// AggregateFunc names the SQL aggregate the adapter applies to a column.
type AggregateFunc string

const (
	AggregateMin AggregateFunc = "MIN"
	AggregateMax AggregateFunc = "MAX"
	AggregateSum AggregateFunc = "SUM"
	AggregateAvg AggregateFunc = "AVG"
)

// Adapter defines the interface for persistence adapters. Implementations
// translate queries into their storage engine and are responsible for
// classifying constraint violations as IntegrityViolationError.
type Adapter interface {
	// Row retrieval
	Select(ctx context.Context, resource *Resource, query *Query) ([]any, error)
	Exists(ctx context.Context, resource *Resource, query *Query) (bool, error)

	// Aggregation
	CountRows(ctx context.Context, resource *Resource, query *Query) (int64, error)
	Aggregate(ctx context.Context, resource *Resource, fn AggregateFunc, column string, query *Query) (float64, error)
	TimeBuckets(ctx context.Context, resource *Resource, spec BucketSpec, query *Query) ([]BucketRow, error)

	// Writes
	Insert(ctx context.Context, resource *Resource, model any) (any, error)
	InsertRows(ctx context.Context, resource *Resource, rows []map[string]any) error
	UpdateModel(ctx context.Context, resource *Resource, model any) error
	UpdateWhere(ctx context.Context, resource *Resource, filter Filter, data map[string]any) (int64, error)
	DeleteWhere(ctx context.Context, resource *Resource, filter Filter) (int64, error)
	AdjustColumn(ctx context.Context, resource *Resource, filter Filter, column string, delta float64) error
}
