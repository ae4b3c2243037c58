package core

import (
	"testing"
	"time"
)

type queryTestModel struct {
	ID        uint      `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func TestWithSearchSkipsNilTerms(t *testing.T) {
	term := "alice"
	q := NewQuery().WithSearch(map[string]*string{
		"Name":  &term,
		"Email": nil,
	})

	if len(q.Like) != 1 {
		t.Fatalf("expected 1 like predicate, got %d", len(q.Like))
	}
	if q.Like["Name"] != "alice" {
		t.Errorf("expected Name term 'alice', got %q", q.Like["Name"])
	}
}

func TestWithSearchAllNilIsNoOp(t *testing.T) {
	q := NewQuery().WithSearch(map[string]*string{"Name": nil, "Email": nil})
	if len(q.Like) != 0 {
		t.Errorf("all-nil search should add no predicates, got %v", q.Like)
	}
}

func TestWithPaginationClamps(t *testing.T) {
	q := NewQuery().WithPagination(5000, -3)
	if q.Limit != MaxPageSize {
		t.Errorf("expected limit clamped to %d, got %d", MaxPageSize, q.Limit)
	}
	if q.Offset != 0 {
		t.Errorf("expected negative offset clamped to 0, got %d", q.Offset)
	}
}

func TestWithPaginationDefaultsFromEnv(t *testing.T) {
	t.Setenv("SERVICEREPO_PAGE_SIZE", "25")
	q := NewQuery().WithPagination(0, 0)
	if q.Limit != 25 {
		t.Errorf("expected limit 25 from environment, got %d", q.Limit)
	}
}

func TestGetCurrentPage(t *testing.T) {
	q := NewQuery().WithPagination(10, 20)
	if page := q.GetCurrentPage(); page != 3 {
		t.Errorf("expected page 3, got %d", page)
	}
}

func TestApplyDefaultSortPrefersCreatedAt(t *testing.T) {
	resource := MustNewResource(&queryTestModel{})
	q := NewQuery()
	q.ApplyDefaultSort(resource)

	sort := q.GetPrimarySort()
	if sort == nil {
		t.Fatal("expected a default sort")
	}
	if sort.Field != "CreatedAt" || sort.Direction != SortDesc {
		t.Errorf("expected CreatedAt desc, got %s %s", sort.Field, sort.Direction)
	}
}

func TestApplyDefaultSortSkipsGroupedQueries(t *testing.T) {
	resource := MustNewResource(&queryTestModel{})
	q := NewQuery().WithGroupBy("Name")
	q.ApplyDefaultSort(resource)

	if q.HasSort() {
		t.Error("grouped queries should not receive a default sort")
	}
}

func TestApplyDefaultSortKeepsExplicitSort(t *testing.T) {
	resource := MustNewResource(&queryTestModel{})
	q := NewQuery().WithSort("Name", SortAsc)
	q.ApplyDefaultSort(resource)

	if len(q.Sort) != 1 || q.Sort[0].Field != "Name" {
		t.Errorf("explicit sort should survive, got %v", q.Sort)
	}
}

func TestParseSortDirection(t *testing.T) {
	if ParseSortDirection("DESC") != SortDesc {
		t.Error("expected case-insensitive desc")
	}
	if ParseSortDirection("sideways") != SortAsc {
		t.Error("unknown directions should fall back to asc")
	}
}
