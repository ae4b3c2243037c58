package ui

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/garrett9/servicerepo/core"
	"github.com/garrett9/servicerepo/middleware/auth"

	sqladapter "github.com/garrett9/servicerepo/adapters/sql"

	_ "github.com/mattn/go-sqlite3"
)

type Product struct {
	ID        uint      `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" validate:"required,max=80" crud:"searchable"`
	Sku       string    `json:"sku" db:"sku" validate:"required" crud:"unique"`
	Price     float64   `json:"price" db:"price"`
	CreatedAt time.Time `json:"created_at" db:"created_at" crud:"readonly"`
}

func setupViews(t *testing.T) (*httptest.Server, *core.Service) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		sku TEXT UNIQUE,
		price REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	resource := core.MustNewResource(&Product{}).WithDisplayName("Product", "Products")
	adapter := sqladapter.New(db, sqladapter.SQLiteDialect{})
	service := core.NewService(core.NewRepository(resource, adapter))

	handler := NewHandler("", "Test Admin").Register(service)
	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)
	return server, service
}

// noRedirectClient surfaces 3xx responses instead of following them.
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(b)
}

func TestIndexListsRegisteredResources(t *testing.T) {
	server, _ := setupViews(t)

	resp, err := http.Get(server.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("index returned %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Products") {
		t.Error("index page should link to the registered resource")
	}
}

func TestListPageRendersRecords(t *testing.T) {
	server, service := setupViews(t)

	service.Insert(t.Context(), []map[string]any{
		{"name": "Keyboard", "sku": "KB-1", "price": 49.99},
		{"name": "Mouse", "sku": "MS-1", "price": 19.99},
	})

	resp, err := http.Get(server.URL + "/products")
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Keyboard") || !strings.Contains(body, "Mouse") {
		t.Error("list page should show seeded records")
	}
}

func TestCreateRedirectsToList(t *testing.T) {
	server, service := setupViews(t)
	client := noRedirectClient()

	form := url.Values{"name": {"Monitor"}, "sku": {"MN-1"}, "price": {"199.50"}}
	resp, err := client.PostForm(server.URL+"/products", form)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); !strings.Contains(loc, "/products") || !strings.Contains(loc, "success=create") {
		t.Errorf("redirect location = %q", loc)
	}

	n, _ := service.Count(t.Context(), nil)
	if n != 1 {
		t.Errorf("expected 1 record, got %d", n)
	}
}

func TestCreateValidationReRendersForm(t *testing.T) {
	server, service := setupViews(t)

	form := url.Values{"name": {""}, "sku": {""}, "price": {"10"}}
	resp, err := http.PostForm(server.URL+"/products", form)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "required") {
		t.Error("form should show validation messages")
	}
	// Submitted values survive the round trip
	if !strings.Contains(body, "10") {
		t.Error("form should re-render submitted values")
	}

	n, _ := service.Count(t.Context(), nil)
	if n != 0 {
		t.Errorf("rejected create wrote %d records", n)
	}
}

func TestDetailPage(t *testing.T) {
	server, service := setupViews(t)

	pk, err := service.Create(t.Context(), map[string]any{"name": "Desk", "sku": "DK-1"})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(server.URL + "/products/" + pkSegment(pk))
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Desk") {
		t.Error("detail page should show the record")
	}
}

func TestDetailMissingReturns404(t *testing.T) {
	server, _ := setupViews(t)

	resp, err := http.Get(server.URL + "/products/999")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestUpdateViaMethodOverride(t *testing.T) {
	server, service := setupViews(t)
	client := noRedirectClient()

	pk, _ := service.Create(t.Context(), map[string]any{"name": "Before", "sku": "UP-1"})

	form := url.Values{"_method": {"PUT"}, "name": {"After"}, "sku": {"UP-1"}, "price": {"5"}}
	resp, err := client.PostForm(server.URL+"/products/"+pkSegment(pk)+"/edit", form)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}

	item, _ := service.Find(t.Context(), core.ByFilter(core.Filter{"sku": "UP-1"}))
	if item.(*Product).Name != "After" {
		t.Error("update did not persist")
	}
}

func TestDeleteViaMethodOverride(t *testing.T) {
	server, service := setupViews(t)
	client := noRedirectClient()

	pk, _ := service.Create(t.Context(), map[string]any{"name": "Gone", "sku": "DEL-1"})

	form := url.Values{"_method": {"DELETE"}}
	resp, err := client.PostForm(server.URL+"/products/"+pkSegment(pk), form)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}

	n, _ := service.Count(t.Context(), nil)
	if n != 0 {
		t.Errorf("expected 0 records after delete, got %d", n)
	}
}

func TestPostWithoutMethodOverrideIsRejected(t *testing.T) {
	server, service := setupViews(t)

	pk, _ := service.Create(t.Context(), map[string]any{"name": "Lamp", "sku": "LP-1"})

	// A mutation-shaped POST must carry a _method override
	resp, err := http.PostForm(server.URL+"/products/"+pkSegment(pk), url.Values{"name": {"x"}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 on detail POST, got %d", resp.StatusCode)
	}

	resp, err = http.PostForm(server.URL+"/products/"+pkSegment(pk)+"/edit", url.Values{"name": {"x"}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 on edit POST, got %d", resp.StatusCode)
	}

	item, _ := service.Find(t.Context(), core.ByFilter(core.Filter{"sku": "LP-1"}))
	if item.(*Product).Name != "Lamp" {
		t.Error("rejected POST must not mutate the record")
	}
}

func TestUnknownResourceReturns404(t *testing.T) {
	server, _ := setupViews(t)

	resp, err := http.Get(server.URL + "/widgets")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestAuthRedirectsAnonymousBrowsers(t *testing.T) {
	server, _ := setupViewsWithAuth(t)
	client := noRedirectClient()

	resp, err := client.Get(server.URL + "/products")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther && resp.StatusCode != http.StatusFound {
		t.Fatalf("expected a redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); !strings.Contains(loc, "/login") {
		t.Errorf("redirect location = %q", loc)
	}
}

func TestLoginFlow(t *testing.T) {
	server, _ := setupViewsWithAuth(t)
	client := noRedirectClient()

	// Bad credentials re-render the login form
	resp, err := client.PostForm(server.URL+"/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 on bad credentials, got %d", resp.StatusCode)
	}

	// Good credentials set a session cookie and redirect
	resp, err = client.PostForm(server.URL+"/login", url.Values{"username": {"admin"}, "password": {"secret"}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 on login, got %d", resp.StatusCode)
	}

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "servicerepo_session" {
			session = c
		}
	}
	if session == nil {
		t.Fatal("expected a session cookie")
	}

	// The cookie grants access to protected pages
	req, _ := http.NewRequest(http.MethodGet, server.URL+"/products", nil)
	req.AddCookie(session)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 with a session, got %d", resp.StatusCode)
	}
}

func setupViewsWithAuth(t *testing.T) (*httptest.Server, *core.Service) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`CREATE TABLE products (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, sku TEXT UNIQUE, price REAL DEFAULT 0, created_at DATETIME DEFAULT CURRENT_TIMESTAMP)`); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	resource := core.MustNewResource(&Product{}).WithDisplayName("Product", "Products")
	service := core.NewService(core.NewRepository(resource, sqladapter.New(db, sqladapter.SQLiteDialect{})))

	cred, err := auth.NewCredential("admin", "secret", "u1", "admin@example.com", []string{"admin"})
	if err != nil {
		t.Fatalf("failed to build credential: %v", err)
	}
	authCfg := auth.WithBasicAuth(map[string]auth.Credential{"admin": cred})
	handler := NewHandler("", "Test Admin").WithAuth(authCfg).Register(service)
	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)
	return server, service
}

func pkSegment(pk any) string {
	return fmt.Sprintf("%v", pk)
}
