package core

import "time"

// Granularity selects the truncation applied to creation timestamps when
// bucketing aggregate results.
type Granularity int

const (
	PerDay Granularity = iota + 1
	PerHour
)

// Bucket key layouts. The hour layout keeps the date prefix so keys stay
// unique across days.
const (
	dayKeyLayout  = "2006-01-02"
	hourKeyLayout = "2006-01-02 15"
)

// Key formats a timestamp as the bucket key for this granularity.
func (g Granularity) Key(t time.Time) string {
	if g == PerHour {
		return t.Format(hourKeyLayout)
	}
	return t.Format(dayKeyLayout)
}

// Fixed conversion constants for relative time windows. A month is always 30
// days: the approximation is part of the reporting contract, not a bug.
const (
	MinutesPerHour  = 60
	MinutesPerDay   = 24 * MinutesPerHour
	MinutesPerWeek  = 7 * MinutesPerDay
	MinutesPerMonth = 30 * MinutesPerDay
)

// Clock supplies the current time. Injected so cutoff computation stays
// deterministic under test.
type Clock func() time.Time

// clampCount normalizes a caller-supplied time count. Zero and negative
// counts are treated as 1 so a cutoff never lands in the future.
func clampCount(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// cutoffFor converts a count of minutes into the absolute timestamp rows
// must be created after.
func cutoffFor(now time.Time, minutes int) time.Time {
	return now.Add(-time.Duration(clampCount(minutes)) * time.Minute)
}

// BucketSpec tells the adapter how to compute a bucketed aggregate: which
// timestamp column to truncate, at what granularity, the window cutoff, and
// the aggregate to compute per bucket (COUNT(*) when SumColumn is empty).
type BucketSpec struct {
	Granularity Granularity
	Column      string // creation-timestamp column
	Cutoff      time.Time
	SumColumn   string // summed column; empty means count rows
	OrderDesc   bool   // order buckets by newest creation timestamp first
}

// BucketRow is one grouped row returned by the adapter: the truncated bucket
// key and the aggregate value for that bucket.
type BucketRow struct {
	Bucket string
	Value  float64
}

// groupCounts re-groups adapter bucket rows into the count mapping callers
// consume. The SQL GROUP BY fixes aggregation granularity only; shaping the
// keyed collection happens here.
func groupCounts(rows []BucketRow) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Bucket] += int64(row.Value)
	}
	return out
}

// groupSums re-groups adapter bucket rows into the sum mapping callers
// consume.
func groupSums(rows []BucketRow) map[string]float64 {
	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.Bucket] += row.Value
	}
	return out
}
