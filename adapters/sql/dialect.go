package sql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/garrett9/servicerepo/core"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Dialect abstracts the differences between the supported database drivers:
// placeholder style, case-insensitive matching, row locking, timestamp
// truncation, and constraint-violation detection.
type Dialect interface {
	Name() string

	// Rebind rewrites a query written with ? placeholders into the
	// driver's placeholder style.
	Rebind(query string) string

	// LikeOperator returns the operator for case-insensitive substring
	// matching.
	LikeOperator() string

	// SupportsRowLocks reports whether SELECT ... FOR UPDATE is
	// available. Engines with a single writer ignore lock requests.
	SupportsRowLocks() bool

	// InsertReturning reports whether INSERT ... RETURNING must be used
	// to obtain generated keys instead of LastInsertId.
	InsertReturning() bool

	// BucketExpr returns the SQL expression truncating a timestamp
	// column to the bucket key for the given granularity.
	BucketExpr(g core.Granularity, column string) string

	// ConstraintViolation classifies a driver error, returning the
	// violated constraint's description when err is a uniqueness or
	// foreign-key violation.
	ConstraintViolation(err error) (string, bool)
}

// DialectForDriver returns the dialect matching a database/sql driver name.
func DialectForDriver(driver string) (Dialect, error) {
	switch driver {
	case "sqlite3":
		return SQLiteDialect{}, nil
	case "postgres":
		return PostgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// SQLiteDialect targets mattn/go-sqlite3.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string { return "sqlite3" }

func (SQLiteDialect) Rebind(query string) string { return query }

// SQLite LIKE is case-insensitive for ASCII by default.
func (SQLiteDialect) LikeOperator() string { return "LIKE" }

func (SQLiteDialect) SupportsRowLocks() bool { return false }

func (SQLiteDialect) InsertReturning() bool { return false }

func (SQLiteDialect) BucketExpr(g core.Granularity, column string) string {
	if g == core.PerHour {
		return fmt.Sprintf("strftime('%%Y-%%m-%%d %%H', %s)", column)
	}
	return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", column)
}

func (SQLiteDialect) ConstraintViolation(err error) (string, bool) {
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		return se.Error(), true
	}
	return "", false
}

// PostgresDialect targets lib/pq.
type PostgresDialect struct{}

func (PostgresDialect) Name() string { return "postgres" }

// Rebind rewrites ? placeholders into $1, $2, ... skipping quoted literals.
func (PostgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			fmt.Fprintf(&b, "$%d", n)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (PostgresDialect) LikeOperator() string { return "ILIKE" }

func (PostgresDialect) SupportsRowLocks() bool { return true }

func (PostgresDialect) InsertReturning() bool { return true }

func (PostgresDialect) BucketExpr(g core.Granularity, column string) string {
	if g == core.PerHour {
		return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD HH24')", column)
	}
	return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", column)
}

// Class 23 covers all integrity constraint violations (23505 unique_violation,
// 23503 foreign_key_violation, ...).
func (PostgresDialect) ConstraintViolation(err error) (string, bool) {
	var pe *pq.Error
	if errors.As(err, &pe) && pe.Code.Class() == "23" {
		if pe.Constraint != "" {
			return pe.Constraint, true
		}
		return pe.Message, true
	}
	return "", false
}
