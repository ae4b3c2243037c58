package ui

import (
	"net/http/httptest"
	"testing"

	"github.com/garrett9/servicerepo/core"
)

type linkModel struct {
	ID   uint   `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

func linkResource(t *testing.T) *core.Resource {
	t.Helper()
	return core.MustNewResource(&linkModel{})
}

func TestListURLBarePath(t *testing.T) {
	got := ListURL("/admin", linkResource(t)).String()
	if got != "/admin/link-models" {
		t.Errorf("ListURL = %q", got)
	}
}

func TestListURLWithSortAndPage(t *testing.T) {
	got := ListURL("", linkResource(t)).
		WithSort("Name", core.SortDesc).
		WithPage(3, 25).
		String()
	want := "/link-models?dir=desc&order_by=Name&page=3&per_page=25"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWithSortIgnoresEmptyField(t *testing.T) {
	got := ListURL("", linkResource(t)).WithSort("", core.SortAsc).String()
	if got != "/link-models" {
		t.Errorf("empty sort field should add nothing, got %q", got)
	}
}

func TestWithPageOmitsZeroPerPage(t *testing.T) {
	got := ListURL("", linkResource(t)).WithPage(2, 0).String()
	if got != "/link-models?page=2" {
		t.Errorf("got %q", got)
	}
}

func TestPreserveFromRequestSkipsOneShotParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/link-models?order_by=Name&dir=asc&success=create&return=%2Fhome", nil)

	got := ListURL("", linkResource(t)).PreserveFromRequest(r).String()
	want := "/link-models?dir=asc&order_by=Name"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWithSuccessTagsURL(t *testing.T) {
	got := ListURL("", linkResource(t)).WithSuccess("delete").String()
	if got != "/link-models?success=delete" {
		t.Errorf("got %q", got)
	}
}
