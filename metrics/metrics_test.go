package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRepositoryHookRecordsOutcomes(t *testing.T) {
	hook := RepositoryHook()

	hook("User", "count", 5*time.Millisecond, nil)
	hook("User", "create", 2*time.Millisecond, errors.New("boom"))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `servicerepo_repository_ops_total{op="count",outcome="ok",resource="User"}`) {
		t.Error("expected an ok counter for the count op")
	}
	if !strings.Contains(body, `servicerepo_repository_ops_total{op="create",outcome="error",resource="User"}`) {
		t.Error("expected an error counter for the failed create")
	}
	if !strings.Contains(body, "servicerepo_repository_op_duration_seconds") {
		t.Error("expected latency histograms in the scrape output")
	}
}

func TestHandlerServesScrapeFormat(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("scrape returned %d", rec.Code)
	}
	// Standard Go runtime collectors come with the default registry
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("expected default runtime metrics")
	}
}
