// End-to-end smoke tests running the full stack (adapter, repository,
// service, API and view controllers) against an in-memory SQLite database
// and an in-process HTTP server.
package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/garrett9/servicerepo/api"
	"github.com/garrett9/servicerepo/core"
	"github.com/garrett9/servicerepo/metrics"
	"github.com/garrett9/servicerepo/middleware/auth"
	"github.com/garrett9/servicerepo/ui"

	sqladapter "github.com/garrett9/servicerepo/adapters/sql"

	_ "github.com/mattn/go-sqlite3"
)

type Article struct {
	ID        uint      `json:"id" db:"id" crud:"pk"`
	Title     string    `json:"title" db:"title" validate:"required,max=160" crud:"searchable"`
	Slug      string    `json:"slug" db:"slug" validate:"required" crud:"unique"`
	Views     int       `json:"views" db:"views"`
	CreatedAt time.Time `json:"created_at" db:"created_at" crud:"readonly"`
}

type TestResult struct {
	Name   string
	Passed bool
	Error  string
}

type TestRunner struct {
	baseURL    string
	client     *http.Client
	results    []TestResult
	subtestErr error
}

func NewTestRunner(baseURL string) *TestRunner {
	// Cookie-less client so redirects stay visible to assertions
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &TestRunner{
		baseURL: baseURL,
		client:  client,
		results: make([]TestResult, 0),
	}
}

func (tr *TestRunner) Run(name string, testFunc func(*TestRunner) error) {
	fmt.Printf("Running test: %s\n", name)

	result := TestResult{Name: name}
	tr.subtestErr = nil

	if err := testFunc(tr); err != nil {
		result.Error = err.Error()
		fmt.Printf("FAIL %s: %v\n", name, err)
	} else if tr.subtestErr != nil {
		result.Error = fmt.Sprintf("subtests failed: %v", tr.subtestErr)
		fmt.Printf("FAIL %s: %v\n", name, tr.subtestErr)
	} else {
		result.Passed = true
		fmt.Printf("PASS %s\n", name)
	}

	tr.results = append(tr.results, result)
}

func (tr *TestRunner) RunSubtest(parentName, name string, testFunc func(*TestRunner) error) {
	if err := testFunc(tr); err != nil {
		if tr.subtestErr == nil {
			tr.subtestErr = fmt.Errorf("%s/%s: %v", parentName, name, err)
		}
		fmt.Printf("  FAIL %s/%s: %v\n", parentName, name, err)
		return
	}
	fmt.Printf("  PASS %s/%s\n", parentName, name)
}

func (tr *TestRunner) AllPassed() bool {
	for _, result := range tr.results {
		if !result.Passed {
			return false
		}
	}
	return true
}

func (tr *TestRunner) getJSON(path string, out any) (*http.Response, error) {
	resp, err := tr.client.Get(tr.baseURL + path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, fmt.Errorf("failed to decode response: %v", err)
		}
	}
	return resp, nil
}

func (tr *TestRunner) sendJSON(method, path string, body any, out any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(method, tr.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := tr.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, fmt.Errorf("failed to decode response: %v", err)
		}
	}
	return resp, nil
}

func buildServer() (*httptest.Server, func(), error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, nil, err
	}
	// In-memory SQLite vanishes when a second connection opens
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE articles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		slug TEXT UNIQUE NOT NULL,
		views INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, nil, err
	}

	adapter := sqladapter.New(db, sqladapter.SQLiteDialect{})
	articles := core.MustNewResource(&Article{}).WithDisplayName("Article", "Articles")
	service := core.NewService(core.NewRepository(articles, adapter, core.WithHook(metrics.RepositoryHook())))

	mux := http.NewServeMux()
	api.NewController(service).Register(mux, "/api")
	mux.Handle("/metrics", metrics.Handler())

	views := ui.NewHandler("", "E2E Admin").
		WithAuth(auth.WithNoAuth()).
		Register(service)
	mux.Handle("/", views.Router())

	server := httptest.NewServer(mux)
	cleanup := func() {
		server.Close()
		db.Close()
	}
	return server, cleanup, nil
}

func testAPICrud(tr *TestRunner) error {
	var createBody map[string]any
	resp, err := tr.sendJSON(http.MethodPost, "/api/articles", map[string]any{
		"title": "Hello World",
		"slug":  "hello-world",
		"views": 3,
	}, &createBody)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("expected 201 on create, got %d", resp.StatusCode)
	}
	if createBody["id"] == nil {
		return fmt.Errorf("create response missing id")
	}
	id := fmt.Sprintf("%v", createBody["id"])

	tr.RunSubtest("APICrud", "Show", func(tr *TestRunner) error {
		var article map[string]any
		resp, err := tr.getJSON("/api/articles/"+id, &article)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("expected 200, got %d", resp.StatusCode)
		}
		if article["title"] != "Hello World" {
			return fmt.Errorf("unexpected title %v", article["title"])
		}
		return nil
	})

	tr.RunSubtest("APICrud", "Update", func(tr *TestRunner) error {
		resp, err := tr.sendJSON(http.MethodPut, "/api/articles/"+id, map[string]any{
			"title": "Hello Again",
			"slug":  "hello-world",
		}, nil)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("expected 200 on update, got %d", resp.StatusCode)
		}
		return nil
	})

	tr.RunSubtest("APICrud", "Count", func(tr *TestRunner) error {
		var body map[string]int64
		if _, err := tr.getJSON("/api/articles/count", &body); err != nil {
			return err
		}
		if body["count"] != 1 {
			return fmt.Errorf("expected count 1, got %d", body["count"])
		}
		return nil
	})

	tr.RunSubtest("APICrud", "Delete", func(tr *TestRunner) error {
		req, _ := http.NewRequest(http.MethodDelete, tr.baseURL+"/api/articles/"+id, nil)
		resp, err := tr.client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("expected 200 on delete, got %d", resp.StatusCode)
		}
		return nil
	})

	return nil
}

func testValidationAndErrors(tr *TestRunner) error {
	tr.RunSubtest("Errors", "ValidationFailure", func(tr *TestRunner) error {
		var body map[string]any
		resp, err := tr.sendJSON(http.MethodPost, "/api/articles", map[string]any{"views": 1}, &body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusBadRequest {
			return fmt.Errorf("expected 400 on missing fields, got %d", resp.StatusCode)
		}
		if body["errors"] == nil {
			return fmt.Errorf("expected per-field errors in response")
		}
		return nil
	})

	tr.RunSubtest("Errors", "NotFound", func(tr *TestRunner) error {
		resp, err := tr.client.Get(tr.baseURL + "/api/articles/99999")
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			return fmt.Errorf("expected 404, got %d", resp.StatusCode)
		}
		return nil
	})

	tr.RunSubtest("Errors", "DuplicateSlug", func(tr *TestRunner) error {
		payload := map[string]any{"title": "Dup", "slug": "dup-slug"}
		if _, err := tr.sendJSON(http.MethodPost, "/api/articles", payload, nil); err != nil {
			return err
		}
		resp, err := tr.sendJSON(http.MethodPost, "/api/articles", payload, nil)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusConflict {
			return fmt.Errorf("expected 409 on duplicate slug, got %d", resp.StatusCode)
		}
		return nil
	})

	return nil
}

func testStats(tr *TestRunner) error {
	var buckets map[string]int64
	resp, err := tr.getJSON("/api/articles/stats/created-per-day/7", &buckets)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expected 200, got %d", resp.StatusCode)
	}
	total := int64(0)
	for _, n := range buckets {
		total += n
	}
	if total < 1 {
		return fmt.Errorf("expected at least one bucketed record, got %d", total)
	}
	return nil
}

func testViews(tr *TestRunner) error {
	tr.RunSubtest("Views", "List", func(tr *TestRunner) error {
		resp, err := tr.client.Get(tr.baseURL + "/articles")
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("expected 200, got %d", resp.StatusCode)
		}
		body, _ := io.ReadAll(resp.Body)
		if !strings.Contains(string(body), "Articles") {
			return fmt.Errorf("list page missing resource heading")
		}
		return nil
	})

	tr.RunSubtest("Views", "CreateRedirects", func(tr *TestRunner) error {
		form := "title=From+Form&slug=from-form&views=0"
		resp, err := tr.client.Post(tr.baseURL+"/articles", "application/x-www-form-urlencoded", strings.NewReader(form))
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusSeeOther {
			return fmt.Errorf("expected 303 redirect on create, got %d", resp.StatusCode)
		}
		return nil
	})

	tr.RunSubtest("Views", "ValidationReRenders", func(tr *TestRunner) error {
		resp, err := tr.client.Post(tr.baseURL+"/articles", "application/x-www-form-urlencoded", strings.NewReader("title=&slug="))
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnprocessableEntity {
			return fmt.Errorf("expected 422 re-render, got %d", resp.StatusCode)
		}
		body, _ := io.ReadAll(resp.Body)
		if !strings.Contains(string(body), "required") {
			return fmt.Errorf("re-rendered form missing validation message")
		}
		return nil
	})

	return nil
}

func testMetrics(tr *TestRunner) error {
	resp, err := tr.client.Get(tr.baseURL + "/metrics")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "servicerepo_repository_ops_total") {
		return fmt.Errorf("metrics endpoint missing repository counters")
	}
	return nil
}

func main() {
	server, cleanup, err := buildServer()
	if err != nil {
		log.Fatal("failed to build test server:", err)
	}
	defer cleanup()

	tr := NewTestRunner(server.URL)

	tr.Run("APICrud", testAPICrud)
	tr.Run("Errors", testValidationAndErrors)
	tr.Run("Stats", testStats)
	tr.Run("Views", testViews)
	tr.Run("Metrics", testMetrics)

	fmt.Println()
	passed := 0
	for _, result := range tr.results {
		if result.Passed {
			passed++
		}
	}
	fmt.Printf("%d/%d tests passed\n", passed, len(tr.results))

	if !tr.AllPassed() {
		os.Exit(1)
	}
}
