package sql

import (
	"errors"
	"fmt"
	"testing"

	"github.com/garrett9/servicerepo/core"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

func TestDialectForDriver(t *testing.T) {
	d, err := DialectForDriver("sqlite3")
	if err != nil {
		t.Fatalf("DialectForDriver(sqlite3) error: %v", err)
	}
	if d.Name() != "sqlite3" {
		t.Errorf("Name() = %q", d.Name())
	}

	d, err = DialectForDriver("postgres")
	if err != nil {
		t.Fatalf("DialectForDriver(postgres) error: %v", err)
	}
	if d.Name() != "postgres" {
		t.Errorf("Name() = %q", d.Name())
	}

	if _, err := DialectForDriver("mysql"); err == nil {
		t.Error("expected an error for an unsupported driver")
	}
}

func TestPostgresRebind(t *testing.T) {
	d := PostgresDialect{}

	tests := []struct {
		in   string
		want string
	}{
		{"SELECT * FROM users WHERE id = ?", "SELECT * FROM users WHERE id = $1"},
		{"UPDATE users SET name = ?, email = ? WHERE id = ?", "UPDATE users SET name = $1, email = $2 WHERE id = $3"},
		{"SELECT * FROM users", "SELECT * FROM users"},
		// ? inside string literals stays untouched
		{"SELECT * FROM users WHERE name = '?' AND id = ?", "SELECT * FROM users WHERE name = '?' AND id = $1"},
	}
	for _, tt := range tests {
		if got := d.Rebind(tt.in); got != tt.want {
			t.Errorf("Rebind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSQLiteRebindIsIdentity(t *testing.T) {
	q := "SELECT * FROM users WHERE id = ? AND name = ?"
	if got := (SQLiteDialect{}).Rebind(q); got != q {
		t.Errorf("Rebind changed the query: %q", got)
	}
}

func TestLikeOperators(t *testing.T) {
	if op := (SQLiteDialect{}).LikeOperator(); op != "LIKE" {
		t.Errorf("sqlite LikeOperator = %q", op)
	}
	if op := (PostgresDialect{}).LikeOperator(); op != "ILIKE" {
		t.Errorf("postgres LikeOperator = %q", op)
	}
}

func TestBucketExpr(t *testing.T) {
	tests := []struct {
		dialect Dialect
		g       core.Granularity
		want    string
	}{
		{SQLiteDialect{}, core.PerDay, "strftime('%Y-%m-%d', created_at)"},
		{SQLiteDialect{}, core.PerHour, "strftime('%Y-%m-%d %H', created_at)"},
		{PostgresDialect{}, core.PerDay, "to_char(created_at, 'YYYY-MM-DD')"},
		{PostgresDialect{}, core.PerHour, "to_char(created_at, 'YYYY-MM-DD HH24')"},
	}
	for _, tt := range tests {
		if got := tt.dialect.BucketExpr(tt.g, "created_at"); got != tt.want {
			t.Errorf("%s BucketExpr(%v) = %q, want %q", tt.dialect.Name(), tt.g, got, tt.want)
		}
	}
}

func TestSQLiteConstraintViolation(t *testing.T) {
	d := SQLiteDialect{}

	se := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	if _, ok := d.ConstraintViolation(se); !ok {
		t.Error("expected constraint errors to be classified")
	}
	if _, ok := d.ConstraintViolation(fmt.Errorf("wrapped: %w", se)); !ok {
		t.Error("expected wrapped constraint errors to be classified")
	}
	if _, ok := d.ConstraintViolation(errors.New("disk I/O error")); ok {
		t.Error("unrelated errors must not classify as constraint violations")
	}
}

func TestPostgresConstraintViolation(t *testing.T) {
	d := PostgresDialect{}

	pe := &pq.Error{Code: "23505", Constraint: "users_email_key", Message: "duplicate key"}
	constraint, ok := d.ConstraintViolation(pe)
	if !ok {
		t.Fatal("expected unique violations to be classified")
	}
	if constraint != "users_email_key" {
		t.Errorf("constraint = %q", constraint)
	}

	// A class-23 error without a named constraint falls back to the message
	pe = &pq.Error{Code: "23503", Message: "violates foreign key"}
	constraint, ok = d.ConstraintViolation(pe)
	if !ok || constraint != "violates foreign key" {
		t.Errorf("foreign-key violation = %q, %v", constraint, ok)
	}

	if _, ok := d.ConstraintViolation(&pq.Error{Code: "42601", Message: "syntax error"}); ok {
		t.Error("non-constraint errors must not classify")
	}
}
